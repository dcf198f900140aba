package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/proofgrid/publisher-api/publisher/config"
	"github.com/proofgrid/publisher-api/publisher/storage/devserver"
)

var StorageCmd = &cli.Command{
	Name:  "storage",
	Usage: "local artifact storage",
	Subcommands: []*cli.Command{
		serveCmd,
	},
}

// run the dev artifact server
var serveCmd = &cli.Command{
	Name:  "serve",
	Usage: "serve uploaded artifacts for local development",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "listen",
			Aliases: []string{"l"},
			Usage:   "listen address, overrides the config",
			Value:   "",
		},
		&cli.StringFlag{
			Name:    "dir",
			Aliases: []string{"d"},
			Usage:   "blob directory, overrides the config",
			Value:   "",
		},
	},
	Action: func(ctx *cli.Context) error {
		cfg := config.GetConfig()

		listen := ctx.String("listen")
		if listen == "" {
			listen = cfg.Storage.Listen
		}
		dir := ctx.String("dir")
		if dir == "" {
			dir = cfg.Storage.Dir
		}
		if listen == "" || dir == "" {
			return fmt.Errorf("both a listen address and a blob directory are required")
		}

		srv, err := devserver.NewServer(dir)
		if err != nil {
			return err
		}

		return srv.Run(listen)
	},
}
