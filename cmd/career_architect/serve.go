package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-architect/internal/llm"
	"github.com/jonathan/career-architect/internal/server"
	"github.com/jonathan/career-architect/internal/session"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long:  `Start an HTTP server that serves the license form and the report pipeline.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Port = servePort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log, "")
	if err != nil {
		return err
	}
	defer a.Close()

	srv, err := server.New(server.Config{
		Port:           cfg.Port,
		LogoPath:       cfg.LogoPath,
		SessionSecret:  cfg.SessionSecret,
		CookieSecure:   cfg.CookieSecure,
		CORSOrigins:    cfg.AllowedOrigins(),
		MaxUploadBytes: cfg.MaxUploadBytes(),
		RateLimit:      cfg.RateLimit(),
	}, session.NewRegistry(a.ctrl), log)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	log.WithField("provider", cfg.LLMProvider).WithField("model", cfg.LLM().GetModel(llm.TierAdvanced)).Info("report backend ready")
	return srv.Start(ctx)
}
