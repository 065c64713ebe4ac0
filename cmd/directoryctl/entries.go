package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"directory/internal/app"
	"directory/internal/models"
)

var entriesCmd = &cli.Command{
	Name:  "entries",
	Usage: "read and submit directory entries",
	Subcommands: []*cli.Command{
		entriesLsCmd,
		entriesSubmitCmd,
		entriesCountCmd,
	},
}

// entryCounter - размер журнала записей
type entryCounter interface {
	Count(ctx context.Context) (int, error)
}

var entriesCountCmd = &cli.Command{
	Name:  "count",
	Usage: "number of stored entries, blacklisted ones included",
	Action: func(cctx *cli.Context) error {
		return withApp(cctx, func(ctx context.Context, a *app.App) error {
			return countEntries(ctx, a.Entries, os.Stdout)
		})
	},
}

func countEntries(ctx context.Context, counter entryCounter, out io.Writer) error {
	n, err := counter.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, n)
	return nil
}

var entriesLsCmd = &cli.Command{
	Name:  "ls",
	Usage: "list entries with the blacklist applied",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "category",
			Usage: "only entries of this category",
		},
	},
	Action: func(cctx *cli.Context) error {
		return withApp(cctx, func(ctx context.Context, a *app.App) error {
			var (
				entries []*models.Entry
				err     error
			)
			if cctx.IsSet("category") {
				entries, err = a.EntryService.GetDbEntriesByCategory(ctx, cctx.String("category"))
			} else {
				entries, err = a.EntryService.GetDbEntries(ctx)
			}
			if err != nil {
				return err
			}
			return printJSON(entries)
		})
	},
}

var entriesSubmitCmd = &cli.Command{
	Name:  "submit",
	Usage: "run the admission checks and append an entry",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: models.FieldEntry, Usage: "site url", Required: true},
		&cli.StringFlag{Name: models.FieldDescription, Usage: "site description", Required: true},
		&cli.StringFlag{Name: "address", Usage: "SLP/BCH address of the PSF holder", Required: true},
		&cli.StringFlag{Name: models.FieldSignature, Usage: "base64 signature of the entry text", Required: true},
		&cli.StringFlag{Name: models.FieldCategory, Usage: "entry category", Required: true},
	},
	Action: func(cctx *cli.Context) error {
		candidate := models.EntryCandidate{
			models.FieldEntry:       cctx.String(models.FieldEntry),
			models.FieldDescription: cctx.String(models.FieldDescription),
			models.FieldSlpAddress:  cctx.String("address"),
			models.FieldSignature:   cctx.String(models.FieldSignature),
			models.FieldCategory:    cctx.String(models.FieldCategory),
		}

		return withApp(cctx, func(ctx context.Context, a *app.App) error {
			entry, err := a.EntryService.CreateEntry(ctx, candidate)
			if err != nil {
				return err
			}
			return printJSON(entry)
		})
	},
}
