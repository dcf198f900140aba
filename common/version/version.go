package version

import (
	"flag"
	"fmt"
)

const version = "0.1.0"

// BuildFlag is stamped at link time:
//
//	go build -ldflags "-X github.com/proofgrid/publisher-api/common/version.BuildFlag=$(git describe --always)"
var BuildFlag string

func CurrentVersion() string {
	if BuildFlag == "" {
		return version
	}
	return version + "+" + BuildFlag
}

// CheckVersion handles a bare -version invocation before the command
// tree parses the arguments
func CheckVersion() bool {
	check := flag.Bool("version", false, "print version")
	flag.Parse()
	if *check {
		fmt.Println("version: ", CurrentVersion())
		return true
	}
	return false
}
