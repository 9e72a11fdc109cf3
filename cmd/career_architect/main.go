// Package main provides the entry point for the Executive Career Architect.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jonathan/career-architect/internal/config"
	"github.com/jonathan/career-architect/internal/logging"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "career_architect",
	Short: "Executive Career Architect",
	Long: "Executive Career Architect compares a résumé with a job description and produces a " +
		"BLUF career strategy report as a PDF, behind a license check.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Optional YAML or JSON config file")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration and builds the logger it describes
func loadConfig(cmd *cobra.Command) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	log := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Out:    cmd.ErrOrStderr(),
	})
	if cfg.GeneratedSecret {
		log.Warn("SESSION_SECRET is not set; using a random secret, sessions will not survive a restart")
	}
	return cfg, log, nil
}
