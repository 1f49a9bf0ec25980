package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hamzaummer/Optical-Character-Recognition-OCR-Web-Application/internal/config"
	"github.com/hamzaummer/Optical-Character-Recognition-OCR-Web-Application/internal/logging"
)

var (
	cfgFile  string
	envFile  string
	logLevel string

	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ocr-web",
	Short: "OCR web application",
	Long: `Extracts text from uploaded images and PDF documents using Tesseract.
Run without a subcommand to start the HTTP server.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default $CONFIG_PATH)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL")
}

// setup loads .env, the configuration and the logger for every command.
func setup(cmd *cobra.Command, args []string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	path := cfgFile
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	var err error
	cfg, err = config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	logger = logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})

	if cfg.IsProduction() && cfg.Server.SecretKey == config.DefaultSecretKey {
		logger.Warn().Msg("SECRET_KEY is not set; using the development default in production")
	}
	return nil
}
