//
// TOOLRANK
// ========
// An HTTP service that ranks AI coding tools month by month and keeps the
// live ranking moving as news is ingested.
//
// Boot the server:
// ----------------
// $ TOOLRANK_ADMIN_TOKEN=secret go run . serve
//
// Client requests:
// ----------------
// $ curl http://localhost:3333/ping
// pong
//
// $ curl -X POST -H 'Authorization: Bearer secret' -d @catalogue.json http://localhost:3333/admin/tools
// $ curl -X POST -H 'Authorization: Bearer secret' -d '{"period":"2025-06","publish":true}' \
//     http://localhost:3333/admin/rankings/build
//
// $ curl http://localhost:3333/rankings
// {"period":"2025-06","rankings":[...],"total":42}
//
// $ curl -X POST -H 'Authorization: Bearer secret' -d @analysis.json http://localhost:3333/admin/news/preview
// {"predictedChanges":[...],"summary":{...}}
//
// Pass the routes command to generate the router documentation:
// $ go run . routes
//
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/toolrank/internal/config"
	"github.com/SergeyParamoshkin/toolrank/internal/logging"
)

var (
	v          = viper.New()
	configFile string
)

var rootCmd = &cobra.Command{
	Use:           ServiceName,
	Short:         "Monthly rankings of AI coding tools",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default ./toolrank.{yaml,toml,json})")
	flags.String("db_path", "toolrank.db", "sqlite database path")
	flags.String("weights_file", "", "TOML file overriding the factor weights")
	flags.String("log_level", "info", "log level")
	flags.String("log_format", "json", "log format: json or console")

	for _, name := range []string{"db_path", "weights_file", "log_level", "log_format"} {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// loadApp reads the configuration and wires the services for a command.
func loadApp(ctx context.Context) (*App, *zap.SugaredLogger, error) {
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	logger = logger.With("service", ServiceName)

	a, err := NewApp(ctx, cfg, logger)
	if err != nil {
		return nil, logger, err
	}

	return a, logger, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
