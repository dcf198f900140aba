package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/proofgrid/publisher-api/keystore"
	"github.com/proofgrid/publisher-api/publisher/config"
)

var WalletCmd = &cli.Command{
	Name:  "wallet",
	Usage: "wallet management",
	Subcommands: []*cli.Command{
		initCmd,
		importCmd,
		showCmd,
		useCmd,
	},
}

// create a new wallet
var initCmd = &cli.Command{
	Name:  "init",
	Usage: "create a new wallet",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"pw"},
			Usage:   "set the key password",
			Value:   "publisher",
		},
	},
	Action: func(ctx *cli.Context) error {
		pw := ctx.String("pw")
		if pw == "" {
			return fmt.Errorf("the password of the wallet must be given")
		}

		logger.Debug("new keystore")
		if err := keystore.InitRepo(config.GetConfig().Key.Path); err != nil {
			return err
		}
		ks := keystore.Repo

		logger.Debug("new key")
		ki, err := keystore.NewKey()
		if err != nil {
			return err
		}

		logger.Debug("put key")
		if err := ks.Put(ki.Address(), pw, *ki); err != nil {
			return err
		}

		// select the new address
		config.GetConfig().Addr.Addr = ki.Address()
		if err := config.WriteConf(config.GetConfig()); err != nil {
			return err
		}

		fmt.Println("address: ", ki.Address())

		return nil
	},
}

// import a wallet with an sk
var importCmd = &cli.Command{
	Name:  "import",
	Usage: "import a wallet with an sk",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "secretkey",
			Aliases: []string{"sk"},
			Usage:   "private key",
			Value:   "",
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"pw"},
			Usage:   "set the key password",
			Value:   "publisher",
		},
	},
	Action: func(ctx *cli.Context) error {
		sk := ctx.String("sk")
		pw := ctx.String("pw")

		if sk == "" {
			return fmt.Errorf("a sk must be given")
		}
		if pw == "" {
			return fmt.Errorf("the password of the wallet must be given")
		}

		if err := keystore.InitRepo(config.GetConfig().Key.Path); err != nil {
			return err
		}
		ks := keystore.Repo

		ki, err := keystore.Import(sk)
		if err != nil {
			return err
		}

		if err := ks.Put(ki.Address(), pw, *ki); err != nil {
			return err
		}

		// select the imported address
		config.GetConfig().Addr.Addr = ki.Address()
		if err := config.WriteConf(config.GetConfig()); err != nil {
			return err
		}

		fmt.Println("address: ", ki.Address())

		return nil
	},
}

// select an address to use
var useCmd = &cli.Command{
	Name:  "use",
	Usage: "select a wallet address",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "address",
			Aliases: []string{"addr"},
			Usage:   "wallet address",
			Value:   "",
		},
	},
	Action: func(ctx *cli.Context) error {
		addr := ctx.String("address")
		if addr == "" {
			return fmt.Errorf("a wallet address must be given")
		}

		if err := keystore.InitRepo(config.GetConfig().Key.Path); err != nil {
			return err
		}
		ks := keystore.Repo

		b, err := ks.Exist(addr)
		if err != nil {
			return err
		}
		if !b {
			return fmt.Errorf("this wallet does not exist: %s", addr)
		}

		config.GetConfig().Addr.Addr = addr
		return config.WriteConf(config.GetConfig())
	},
}

var showCmd = &cli.Command{
	Name:  "show",
	Usage: "show the sk of an account",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "address",
			Aliases: []string{"addr"},
			Usage:   "address",
			Value:   "",
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"pw"},
			Usage:   "set the key password",
			Value:   "publisher",
		},
	},
	Action: func(ctx *cli.Context) error {
		addr := ctx.String("address")
		pw := ctx.String("pw")

		if addr == "" {
			addr = config.GetConfig().Addr.Addr
		}
		if addr == "" {
			return fmt.Errorf("an address must be given or selected")
		}

		if err := keystore.InitRepo(config.GetConfig().Key.Path); err != nil {
			return err
		}
		ks := keystore.Repo

		ki, err := ks.Get(addr, pw)
		if err != nil {
			return err
		}

		fmt.Println("sk: ", ki.SK())

		return nil
	},
}
