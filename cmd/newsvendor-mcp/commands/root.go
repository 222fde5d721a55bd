package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"newsvendor-mcp/internal/config"
	"newsvendor-mcp/internal/logging"
	"newsvendor-mcp/internal/mcp"
	"newsvendor-mcp/internal/runstore"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose    bool
	paramsFile string
	cfg        *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "newsvendor-mcp",
	Short: "Newsvendor Monte-Carlo simulation MCP server",
	Long: `A specialized MCP Server that answers the single-period inventory question
"how many units should we order?" with the closed-form newsvendor solution
and Monte-Carlo simulation of competing order policies.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Init(logging.Options{Verbose: verbose}); err != nil {
			return err
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Error().Err(err).Msg("Failed to load configuration")
			return err
		}
		if paramsFile != "" {
			if err := cfg.LoadParameterFile(paramsFile); err != nil {
				return err
			}
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Str("command", cmd.Name()).
			Msg("Newsvendor-MCP starting")
		return nil
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the MCP tools over stdio (default)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := mcp.NewServer(cfg, runstore.NewWithLimit(cfg.MaxStoredRuns), Version)
	return server.Start(ctx)
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&paramsFile, "params", "p", "", "YAML file overriding the configured parameters")

	rootCmd.AddCommand(serveCmd, solveCmd, simulateCmd, compareCmd, examplesCmd)
}
