package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-architect/internal/logging"
	"github.com/jonathan/career-architect/internal/observability"
)

var (
	generateKey     string
	generateResume  string
	generateJob     string
	generateOut     string
	generateVerbose bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Produce one report from the command line",
	Long: `Unlock a session with the license key, then run extraction, generation and
rendering for one résumé and job description. The report text goes to stdout.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateKey, "key", "", "License key (required)")
	generateCmd.Flags().StringVar(&generateResume, "resume", "", "Path to the résumé PDF (required)")
	generateCmd.Flags().StringVar(&generateJob, "job", "", "Path to the job description PDF (required)")
	generateCmd.Flags().StringVar(&generateOut, "out", "", "Report directory (overrides REPORT_DIR)")
	generateCmd.Flags().BoolVarP(&generateVerbose, "verbose", "v", false, "Print a run summary to stderr")
	_ = generateCmd.MarkFlagRequired("key")
	_ = generateCmd.MarkFlagRequired("resume")
	_ = generateCmd.MarkFlagRequired("job")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), cfg, log, generateOut)
	if err != nil {
		return err
	}
	defer a.Close()

	var printer *observability.Printer
	if generateVerbose {
		printer = observability.NewPrinter(cmd.ErrOrStderr())
	}

	sess := a.ctrl.NewSession()
	decision := sess.Login(cmd.Context(), generateKey)
	if printer != nil {
		printer.PrintDecision(decision, logging.Fingerprint(generateKey))
	}
	if !decision.Granted {
		return fmt.Errorf("%w: %s", errAccessDenied, decision.Reason)
	}

	out, err := sess.Generate(cmd.Context(), generateResume, generateJob)
	fmt.Fprintln(cmd.OutOrStdout(), out.Report)
	if printer != nil {
		printer.PrintOutcome(out)
	}
	if err != nil {
		return err
	}

	if out.ReportPath != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", out.ReportPath)
	}
	if out.RemoteURL != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Report mirrored to %s\n", out.RemoteURL)
	}
	return nil
}
