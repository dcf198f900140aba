package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/proofgrid/publisher-api/common/version"
	"github.com/proofgrid/publisher-api/lib/logc"
	"github.com/proofgrid/publisher-api/publisher/app/cmd"
)

func main() {
	defer logc.Sync()

	// a bare -version invocation short-circuits the command tree
	if version.CheckVersion() {
		return
	}

	app := &cli.App{
		Name:    "publisher",
		Usage:   "procure proofs from the proof market and settle them on chain",
		Version: version.CurrentVersion(),
		Commands: []*cli.Command{
			cmd.RunCmd,
			cmd.WalletCmd,
			cmd.StorageCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
