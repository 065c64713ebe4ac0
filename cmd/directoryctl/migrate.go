package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"directory/internal/app"
)

var migrateCmd = &cli.Command{
	Name:  "migrate",
	Usage: "create the entries and blacklist tables if missing",
	Action: func(cctx *cli.Context) error {
		// app.New создает обе схемы
		return withApp(cctx, func(ctx context.Context, a *app.App) error {
			entries, err := a.Entries.Count(ctx)
			if err != nil {
				return err
			}
			hidden, err := a.Blacklist.Count(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("store %q ready: %d entries, %d blacklisted\n", a.Store.Name(), entries, hidden)
			return nil
		})
	},
}
