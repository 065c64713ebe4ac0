package main

import (
	"encoding/hex"
	"fmt"

	"github.com/urfave/cli/v2"

	"directory/internal/oracle"
)

var addressCmd = &cli.Command{
	Name:  "address",
	Usage: "cashaddr helpers",
	Subcommands: []*cli.Command{
		addressDecodeCmd,
	},
}

var addressDecodeCmd = &cli.Command{
	Name:      "decode",
	Usage:     "show the hash160 behind an SLP or BCH address",
	ArgsUsage: "<cashaddr>",
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return cli.ShowSubcommandHelp(cctx)
		}

		addr, err := oracle.DecodeAddress(cctx.Args().First())
		if err != nil {
			return err
		}

		kind := "p2pkh"
		if addr.Type == oracle.TypeP2SH {
			kind = "p2sh"
		}

		slp, err := oracle.EncodeAddress(oracle.PrefixSLP, addr.Type, addr.Hash)
		if err != nil {
			return err
		}
		bch, err := oracle.EncodeAddress(oracle.PrefixBCH, addr.Type, addr.Hash)
		if err != nil {
			return err
		}

		fmt.Printf("prefix:  %s\n", addr.Prefix)
		fmt.Printf("type:    %s\n", kind)
		fmt.Printf("hash160: %s\n", hex.EncodeToString(addr.Hash))
		fmt.Printf("slp:     %s\n", slp)
		fmt.Printf("bch:     %s\n", bch)
		return nil
	},
}
