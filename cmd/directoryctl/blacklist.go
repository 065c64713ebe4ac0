package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"directory/internal/app"
	"directory/internal/models"
)

// blacklistReader - чтение черного списка для ls и check
type blacklistReader interface {
	List(ctx context.Context) ([]*models.BlacklistRecord, error)
	GetCount(ctx context.Context) (int, error)
	IsBlacklisted(ctx context.Context, hash string) (bool, error)
}

var blacklistCmd = &cli.Command{
	Name:  "blacklist",
	Usage: "manage the moderation blacklist",
	Subcommands: []*cli.Command{
		blacklistAddCmd,
		blacklistRmCmd,
		blacklistLsCmd,
		blacklistCheckCmd,
	},
}

var blacklistAddCmd = &cli.Command{
	Name:      "add",
	Usage:     "hide an entry by its _id",
	ArgsUsage: "<hash>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "reason",
			Usage: "moderator note",
		},
	},
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return cli.ShowSubcommandHelp(cctx)
		}
		return withApp(cctx, func(ctx context.Context, a *app.App) error {
			record, err := a.BlacklistService.Add(ctx, cctx.Args().First(), cctx.String("reason"))
			if err != nil {
				return err
			}
			fmt.Printf("blacklisted %s\n", record.Hash)
			return nil
		})
	},
}

var blacklistRmCmd = &cli.Command{
	Name:      "rm",
	Usage:     "remove a hash from the blacklist",
	ArgsUsage: "<hash>",
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return cli.ShowSubcommandHelp(cctx)
		}
		return withApp(cctx, func(ctx context.Context, a *app.App) error {
			if err := a.BlacklistService.Remove(ctx, cctx.Args().First()); err != nil {
				return err
			}
			fmt.Printf("removed %s\n", cctx.Args().First())
			return nil
		})
	},
}

var blacklistLsCmd = &cli.Command{
	Name:  "ls",
	Usage: "list blacklisted hashes",
	Action: func(cctx *cli.Context) error {
		return withApp(cctx, func(ctx context.Context, a *app.App) error {
			return listBlacklist(ctx, a.BlacklistService, os.Stdout)
		})
	},
}

var blacklistCheckCmd = &cli.Command{
	Name:      "check",
	Usage:     "tell whether an entry is hidden",
	ArgsUsage: "<hash>",
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return cli.ShowSubcommandHelp(cctx)
		}
		return withApp(cctx, func(ctx context.Context, a *app.App) error {
			return checkBlacklist(ctx, a.BlacklistService, cctx.Args().First(), os.Stdout)
		})
	},
}

func listBlacklist(ctx context.Context, svc blacklistReader, out io.Writer) error {
	records, err := svc.List(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "Blacklist is empty.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "HASH\tADDED\tREASON")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Hash, r.CreatedAt.Format(time.RFC3339), r.Reason)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	total, err := svc.GetCount(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "total: %d\n", total)
	return nil
}

func checkBlacklist(ctx context.Context, svc blacklistReader, hash string, out io.Writer) error {
	hidden, err := svc.IsBlacklisted(ctx, hash)
	if err != nil {
		return err
	}
	if hidden {
		fmt.Fprintf(out, "%s is blacklisted\n", hash)
	} else {
		fmt.Fprintf(out, "%s is visible\n", hash)
	}
	return nil
}
