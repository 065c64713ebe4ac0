package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"directory/pkg/crypto"
)

var tokenCmd = &cli.Command{
	Name:  "token",
	Usage: "write token helpers",
	Subcommands: []*cli.Command{
		tokenHashCmd,
	},
}

var tokenHashCmd = &cli.Command{
	Name:      "hash",
	Usage:     "print a bcrypt hash for WRITE_TOKEN_HASH",
	ArgsUsage: "<token>",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "cost",
			Usage: "bcrypt cost",
			Value: crypto.DefaultCost,
		},
	},
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return cli.ShowSubcommandHelp(cctx)
		}

		hash, err := crypto.HashTokenWithCost(cctx.Args().First(), cctx.Int("cost"))
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	},
}
