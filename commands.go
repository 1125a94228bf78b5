package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-chi/docgen"
	"github.com/spf13/cobra"

	"github.com/SergeyParamoshkin/toolrank/internal/ranking"
	"github.com/SergeyParamoshkin/toolrank/internal/seed"
	"github.com/SergeyParamoshkin/toolrank/internal/user"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the router documentation as markdown",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v.Set("db_path", ":memory:")
		a, _, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close() // nolint

		fmt.Fprintln(cmd.OutOrStdout(), docgen.MarkdownRoutesDoc(a.Router(), docgen.MarkdownOpts{
			ProjectPath: "github.com/SergeyParamoshkin/toolrank",
			Intro:       "Welcome to the toolrank generated docs.",
		}))

		return nil
	},
}

var (
	buildPeriod  string
	buildCutoff  string
	buildPublish bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compute the ranking of a period",
	Long: `Compute the ranking of a period from the tool catalogue and the news
known at the cutoff. A draft of the period holding the current ranking is
refused; publish to rebuild it.

Examples:
  toolrank build --period 2025-06              # draft, not current
  toolrank build --period 2025-06 --publish    # make current and record a version
  toolrank build --period 2025-06 --cutoff 2025-06-15`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

var importCmd = &cobra.Command{
	Use:   "import <catalogue.yaml>",
	Short: "Upsert companies and tools from a YAML catalogue",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	buildCmd.Flags().StringVar(&buildPeriod, "period", time.Now().UTC().Format("2006-01"), "period, YYYY-MM")
	buildCmd.Flags().StringVar(&buildCutoff, "cutoff", "", "ignore news published after this date, YYYY-MM-DD")
	buildCmd.Flags().BoolVar(&buildPublish, "publish", false, "make the ranking current and record a version")

	rootCmd.AddCommand(routesCmd, buildCmd, importCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	opts := ranking.BuildOptions{Period: buildPeriod, Publish: buildPublish}
	if buildCutoff != "" {
		cutoff, err := time.Parse(time.DateOnly, buildCutoff)
		if err != nil {
			return fmt.Errorf("invalid cutoff %q: %w", buildCutoff, err)
		}
		opts.Cutoff = cutoff.Add(24*time.Hour - time.Nanosecond)
	}

	a, logger, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer logger.Sync() // nolint
	defer a.Close()     // nolint

	ctx := user.WithUser(cmd.Context(), &user.User{Name: "cli"})
	res, err := a.builder.Build(ctx, opts)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	return enc.Encode(res.Ranking)
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	catalogue, err := seed.Parse(f)
	if err != nil {
		return err
	}

	a, logger, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer logger.Sync() // nolint
	defer a.Close()     // nolint

	res, err := seed.Import(cmd.Context(), a.store, catalogue)
	if err != nil {
		return err
	}
	logger.Infow("catalogue imported", "file", args[0],
		"companies_created", res.CompaniesCreated,
		"tools_created", res.ToolsCreated,
		"tools_updated", res.ToolsUpdated)

	return nil
}
