// Command feedscroll serves the mock feed provider and browses a feed in the
// terminal with infinite scrolling.
package main

import (
	"github.com/Sternrassler/feedscroll/pkg/config"
	"github.com/Sternrassler/feedscroll/pkg/logging"
	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"
)

// CLI is the command line of feedscroll.
type CLI struct {
	Config   string `help:"Path to a YAML config file." short:"c" type:"path"`
	LogLevel string `help:"Override log.level (debug, info, warn, error)." name:"log-level"`
	Pretty   bool   `help:"Human-readable log output."`

	Serve  ServeCmd  `cmd:"" help:"Run the mock feed provider and expose /metrics."`
	Browse BrowseCmd `cmd:"" help:"Scroll through a feed in the terminal."`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("feedscroll"),
		kong.Description("Infinite-scroll feed loader with a mock data provider."),
		kong.UsageOnError(),
	)

	cfg, err := config.Load(cli.Config)
	kctx.FatalIfErrorf(err)

	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
	}
	if cli.Pretty {
		cfg.Log.Pretty = true
	}
	logging.Setup(cfg.Logging())

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("Invalid configuration")
		kctx.Exit(2)
	}

	kctx.FatalIfErrorf(kctx.Run(cfg))
}
