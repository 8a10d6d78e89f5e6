package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cestino/shopping-service/config"
	"github.com/cestino/shopping-service/internal/engine"
	"github.com/cestino/shopping-service/internal/store/localfile"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shopping-service",
	Short: "Shopping Service CLI - manage the on-device shopping list",
	Long: `A CLI for the on-device shopping list: add and buy products, manage
supermarkets, and inspect the remembered product database. The CLI always
operates on local state; the server handles cloud sync.`,
	PersistentPreRunE: persistentPreRun,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml or ./config.yaml)")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
	}
}

// persistentPreRun runs before each command and initializes the logger
func persistentPreRun(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}

	logger = initLogger()
	return nil
}

func initLogger() *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.WarnLevel
	if cfg != nil && cfg.Logging.Level != "" {
		if parsedLevel, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
			level = parsedLevel
		}
	}

	// Always use console format for CLI
	var output io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, NoColor: cfg != nil && cfg.Logging.NoColor}

	log := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return &log
}

// newEngine builds a local-mode engine over the configured state directory.
func newEngine(ctx context.Context) (*engine.Engine, error) {
	basePath := "./data/state"
	if cfg != nil && cfg.Storage.BasePath != "" {
		basePath = cfg.Storage.BasePath
	}

	local, err := localfile.New(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local state store: %w", err)
	}

	eng := engine.New(local, nil, logger)
	if err := eng.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize engine: %w", err)
	}
	return eng, nil
}

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
