package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/nao1215/leakscan/internal/log"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for leakscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leakscan",
		Short: "Check emails, phone numbers and passwords against breach data",
		Long: `leakscan checks whether an email address, phone number or password appears
in known data breaches, then scores the exposure.

Passwords are checked with the Pwned Passwords k-anonymity range API, so only
the first five characters of their SHA-1 digest leave the machine. Emails and
phone numbers are looked up in several public breach sources and in local
breach dumps at the same time.

Use --tor or --socks-proxy to send every lookup through Tor.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewCorpusCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getBoolFlag reads a local or inherited persistent boolean flag.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		value, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return value
}

// newLogger builds the sanitizing logger selected by --verbose and --log-json.
// Logs go to stderr so that reports on stdout stay machine-readable.
func newLogger(cmd *cobra.Command) *slog.Logger {
	return log.New(cmd.ErrOrStderr(), getBoolFlag(cmd, "verbose"), getBoolFlag(cmd, "log-json"))
}
