package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errAccessDenied = errors.New("access denied")

var verifyKey string

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check a license key",
	Long:  `Verify a license key against the licensing service and print the decision. Exits 1 on deny.`,
	RunE:  runVerify,
}

func init() {
	verifyCmd.Flags().StringVar(&verifyKey, "key", "", "License key (required)")
	_ = verifyCmd.MarkFlagRequired("key")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	decision := newVerifier(cfg, log).Verify(cmd.Context(), verifyKey)
	if !decision.Granted {
		fmt.Fprintf(cmd.OutOrStdout(), "Denied (%s): %s\n", decision.Outcome, decision.Reason)
		return fmt.Errorf("%w: %s", errAccessDenied, decision.Reason)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Granted: %s\n", decision.Reason)
	return nil
}
