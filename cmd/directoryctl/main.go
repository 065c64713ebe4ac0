package main

import (
	"context"
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/urfave/cli/v2"

	"directory/internal/app"
	"directory/internal/config"
	"directory/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var FlagConfig = &cli.StringFlag{
	Name:    "config",
	Usage:   "path to YAML config (overrides DIRECTORY_CONFIG)",
	EnvVars: []string{"DIRECTORY_CONFIG"},
}

var FlagVerbose = &cli.BoolFlag{
	Name:  "verbose",
	Usage: "log at debug level",
}

func main() {
	cliApp := &cli.App{
		Name:  "directoryctl",
		Usage: "operator tool for the PSF site directory",
		Flags: []cli.Flag{
			FlagConfig,
			FlagVerbose,
		},
		Before: func(cctx *cli.Context) error {
			level := "warn"
			if cctx.Bool(FlagVerbose.Name) {
				level = "debug"
			}
			utils.InitGlobalLogger(utils.LogConfig{Level: level, Format: "text"})
			return nil
		},
		Commands: []*cli.Command{
			blacklistCmd,
			entriesCmd,
			addressCmd,
			tokenCmd,
			migrateCmd,
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}

// loadConfig читает конфигурацию так же, как сервер
func loadConfig(cctx *cli.Context) (*config.Config, error) {
	if path := cctx.String(FlagConfig.Name); path != "" {
		if err := os.Setenv("DIRECTORY_CONFIG", path); err != nil {
			return nil, err
		}
	}
	return config.Load()
}

// withApp собирает зависимости, вызывает fn и закрывает соединения
func withApp(cctx *cli.Context, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := loadConfig(cctx)
	if err != nil {
		return err
	}

	ctx := cctx.Context
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
