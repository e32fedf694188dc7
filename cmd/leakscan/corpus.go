package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/leakscan/internal/config"
	"github.com/nao1215/leakscan/internal/database"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewCorpusCmd creates the corpus command and its subcommands.
func NewCorpusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Manage the local breach index",
		Long: `Corpus manages the local breach index used by "leakscan check".

Importing a dump extracts every email address and phone number from it and
stores only their SHA3-256 digests, so the index can answer lookups without
keeping the dump's contents.

Dumps can also be placed as plain files in the corpus directory, where they
are searched line by line without importing.`,
	}

	cmd.PersistentFlags().String("index-dir", "",
		"Directory of the local breach index (default: XDG data dir)")

	cmd.AddCommand(newCorpusImportCmd())
	cmd.AddCommand(newCorpusListCmd())

	return cmd
}

func newCorpusImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE...",
		Short: "Import breach dumps into the local index",
		Long: `Import reads each file and indexes the email addresses and phone numbers
it contains. Entries already imported under the same name are skipped.

Examples:
  # Import a dump under its file name ("acme-2019")
  leakscan corpus import acme-2019.txt

  # Import several files under one breach name
  leakscan corpus import --name "Acme 2019" part1.csv part2.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCorpusImport,
	}

	cmd.Flags().StringP("name", "n", "",
		"Breach name to record (default: file name without extension)")

	return cmd
}

func newCorpusListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the breaches in the local index",
		Args:  cobra.NoArgs,
		RunE:  runCorpusList,
	}
}

// indexDir returns the --index-dir flag or the XDG data directory.
func indexDir(cmd *cobra.Command) (string, error) {
	dir, err := cmd.Flags().GetString("index-dir")
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = config.XDGDataDir()
	}
	return dir, nil
}

// breachName derives a breach name from a dump path.
func breachName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func runCorpusImport(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)

	dir, err := indexDir(cmd)
	if err != nil {
		return err
	}
	name, err := cmd.Flags().GetString("name")
	if err != nil {
		return err
	}

	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open local index: %w", err)
	}
	defer db.Close()

	total := 0
	for _, path := range args {
		source := name
		if source == "" {
			source = breachName(path)
		}

		f, err := os.Open(filepath.Clean(path))
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}

		start := time.Now()
		n, err := db.Import(cmd.Context(), source, f)
		_ = f.Close() //nolint:errcheck // read-only file
		if err != nil {
			return fmt.Errorf("failed to import %s: %w", path, err)
		}

		logger.Info("dump imported", "file", path, "breach", source, "entries", n, "elapsed", time.Since(start))
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries from %s as %q\n", n, path, source)
		total += n
	}

	if len(args) > 1 {
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries in total into %s\n", total, db.Path())
	}
	return nil
}

func runCorpusList(cmd *cobra.Command, _ []string) error {
	dir, err := indexDir(cmd)
	if err != nil {
		return err
	}

	db, err := database.Open(dir, database.Options{})
	if err != nil {
		return fmt.Errorf("failed to open local index: %w", err)
	}
	defer db.Close()

	summaries, err := db.Sources(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list breaches: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(summaries) == 0 {
		fmt.Fprintln(out, "The local index is empty")
		return nil
	}

	table := tablewriter.NewWriter(out)
	table.Header("Breach", "Entries", "Last Import")
	for _, s := range summaries {
		lastImport := "-"
		if !s.LastImport.IsZero() {
			lastImport = s.LastImport.Local().Format(time.DateTime)
		}
		if err := table.Append([]string{s.Name, strconv.Itoa(s.Entries), lastImport}); err != nil {
			return fmt.Errorf("failed to render breach list: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render breach list: %w", err)
	}
	return nil
}
