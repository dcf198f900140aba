package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/go-homedir"
)

var conf *PublisherConfig

type PublisherConfig struct {
	Chain     Chain
	Contracts Contracts
	Storage   Storage
	Estimator Estimator
	Key       Key
	Addr      Addr
}

type Chain struct {
	Endpoint string
}

type Contracts struct {
	// market contract address
	Market string
	// consumer contract address and its call shape
	Consumer     string
	ConsumerKind string
	// program image id, 0x-prefixed 32 byte hex
	ProgramID string
}

type Storage struct {
	// upload target for images and inputs
	BaseURL string
	// dev artifact server
	Listen string
	Dir    string
}

type Estimator struct {
	Endpoint string
}

type Key struct {
	Path string
}

type Addr struct {
	Addr string
}

func InitConfig() error {
	currentDir, _ := os.Getwd()
	configFile := filepath.Join(currentDir, "config.toml")

	if metaData, err := toml.DecodeFile(configFile, &conf); err != nil {
		return fmt.Errorf("failed load config file, path: %s, error: %w", configFile, err)
	} else {
		if !requiredFieldsAreGiven(metaData) {
			log.Fatal("Required fields not given")
		}
	}

	// expand the keystore path
	p, err := homedir.Expand(conf.Key.Path)
	if err != nil {
		return err
	}
	conf.Key.Path = p

	return nil
}

func GetConfig() *PublisherConfig {
	return conf
}

// persist config changes, used by wallet commands
func WriteConf(c *PublisherConfig) error {
	currentDir, _ := os.Getwd()
	configFile := filepath.Join(currentDir, "config.toml")

	f, err := os.Create(configFile)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(c)
}

func requiredFieldsAreGiven(metaData toml.MetaData) bool {
	requiredFields := [][]string{
		{"Chain"},
		{"Contracts"},
		{"Storage"},
		{"Estimator"},
		{"Key"},

		{"Chain", "Endpoint"},

		{"Contracts", "Market"},
		{"Contracts", "Consumer"},
		{"Contracts", "ConsumerKind"},
		{"Contracts", "ProgramID"},

		{"Storage", "BaseURL"},

		{"Estimator", "Endpoint"},

		{"Key", "Path"},
	}

	for _, v := range requiredFields {
		if !metaData.IsDefined(v...) {
			log.Fatal("Required fields ", v)
		}
	}

	return true
}
