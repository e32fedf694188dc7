package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/nao1215/leakscan/internal/config"
	"github.com/nao1215/leakscan/internal/database"
	"github.com/nao1215/leakscan/internal/model"
	"github.com/nao1215/leakscan/internal/pipeline"
	"github.com/nao1215/leakscan/internal/report"
	"github.com/nao1215/leakscan/internal/source"
	"github.com/nao1215/leakscan/internal/timeline"
	"github.com/nao1215/leakscan/internal/tor"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// httpClientTimeout is the hard ceiling for a single HTTP exchange.
// Per-source deadlines are applied through contexts and are usually shorter.
const httpClientTimeout = time.Minute

// stdinName is the --list value that reads targets from standard input.
const stdinName = "-"

var errStdinConflict = errors.New("--list - and --prompt both read standard input")

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [target...]",
		Short: "Check emails, phone numbers or passwords for known breaches",
		Long: `Check looks each target up in the breach sources and prints a report.

Targets are classified automatically: anything that looks like an email
address is an email, 7 to 15 digits (optionally with a leading + and common
separators) are a phone number, and everything else is a password.

Email targets get a 0-100 risk score and a first-seen estimate. Password
targets get a strength score and the number of times the password appears
in the Pwned Passwords corpus.

Passing a password as an argument leaves it in your shell history.
Use --prompt to type it without echo instead.

Examples:
  # Check an email address
  leakscan check user@example.com

  # Check a password without exposing it to the shell
  leakscan check --prompt

  # Check every target listed in a file, four at a time
  leakscan check --list targets.txt --batch 4

  # Treat an ambiguous value as a password
  leakscan check --type password 5551234567

  # Route every lookup through an external Tor proxy
  leakscan check --socks-proxy 127.0.0.1:9050 user@example.com

  # Write a Markdown report
  leakscan check --markdown -o report.md user@example.com`,
		Args: cobra.ArbitraryArgs,
		RunE: runCheckCmd,
	}

	// Target flags
	cmd.Flags().String("type", config.TypeAuto,
		"Target type: auto, email or password")
	cmd.Flags().StringP("list", "l", "",
		"Read targets from a file, one per line (\"-\" reads standard input)")
	cmd.Flags().BoolP("prompt", "p", false,
		"Read a password from the terminal without echo")

	// Lookup flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultSourceTimeout,
		"Default deadline for each breach source")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of targets checked concurrently")
	cmd.Flags().String("corpus-dir", "",
		"Directory of local breach dumps (default: XDG data dir)/breaches")
	cmd.Flags().String("index-dir", "",
		"Directory of the local breach index (default: XDG data dir)")
	cmd.Flags().Bool("no-index", false,
		"Do not consult the local breach index")
	cmd.Flags().String("hibp-key", "",
		"Have I Been Pwned API key (or set "+config.EnvHIBPAPIKey+")")

	// Transport flags
	cmd.Flags().Bool("tor", false,
		"Start an embedded Tor daemon and route every lookup through it")
	cmd.Flags().StringP("socks-proxy", "e", "",
		"Route every lookup through a SOCKS5 proxy (e.g., 127.0.0.1:9050)")
	cmd.Flags().DurationP("tor-timeout", "T", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .leakscan in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cmd)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCheck(ctx, cmd, cfg, logger)
}

// buildConfig layers defaults, the configuration file, the environment and
// the flags the user actually set, in that order.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.Verbose = getBoolFlag(cmd, "verbose")
	cfg.LogJSON = getBoolFlag(cmd, "log-json")

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// A missing file is only an error when the user named it explicitly.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := file.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(file)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	cfg.ApplyEnv(os.Getenv)

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	cfg.Targets, err = collectTargets(cmd, args)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyFlags copies flag values into cfg. Flags that can also come from the
// configuration file or the environment only apply when set explicitly.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error

	if cfg.TargetType, err = flags.GetString("type"); err != nil {
		return err
	}
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return err
	}
	if cfg.TorStartupTimeout, err = flags.GetDuration("tor-timeout"); err != nil {
		return err
	}
	if cfg.UseTor, err = flags.GetBool("tor"); err != nil {
		return err
	}
	if cfg.TorProxyAddress, err = flags.GetString("socks-proxy"); err != nil {
		return err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return err
	}

	noIndex, err := flags.GetBool("no-index")
	if err != nil {
		return err
	}
	if noIndex {
		cfg.UseIndex = false
	}

	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("corpus-dir") {
		if cfg.CorpusDir, err = flags.GetString("corpus-dir"); err != nil {
			return err
		}
	}
	if flags.Changed("index-dir") {
		if cfg.IndexDir, err = flags.GetString("index-dir"); err != nil {
			return err
		}
	}
	if flags.Changed("hibp-key") {
		if cfg.HIBPAPIKey, err = flags.GetString("hibp-key"); err != nil {
			return err
		}
	}

	return nil
}

// collectTargets gathers targets from the arguments, the --list file and
// the --prompt input, in that order.
func collectTargets(cmd *cobra.Command, args []string) ([]string, error) {
	listPath, err := cmd.Flags().GetString("list")
	if err != nil {
		return nil, err
	}
	prompt, err := cmd.Flags().GetBool("prompt")
	if err != nil {
		return nil, err
	}
	if listPath == stdinName && prompt {
		return nil, errStdinConflict
	}

	targets := append([]string{}, args...)

	if listPath != "" {
		listed, err := readTargetList(listPath, cmd.InOrStdin())
		if err != nil {
			return nil, err
		}
		targets = append(targets, listed...)
	}

	if prompt {
		secret, err := readSecret(cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return nil, err
		}
		targets = append(targets, secret)
	}

	return targets, nil
}

// readTargetList reads one target per line from path, or from stdin when
// path is "-". Blank lines and lines starting with # are skipped.
func readTargetList(path string, stdin io.Reader) ([]string, error) {
	r := stdin
	if path != stdinName {
		f, err := os.Open(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("failed to open target list: %w", err)
		}
		defer f.Close()
		r = f
	}

	var targets []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets = append(targets, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read target list: %w", err)
	}
	return targets, nil
}

// readSecret reads one line without echo when in is a terminal, or a plain
// line otherwise so that secrets can be piped in.
func readSecret(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) { //nolint:gosec // fd fits in int
		fmt.Fprint(prompt, "Password: ")
		secret, err := term.ReadPassword(int(f.Fd())) //nolint:gosec // fd fits in int
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(secret), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// runCheck connects, wires the sources and checks every target.
func runCheck(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting check",
		"targets", len(cfg.Targets),
		"batchSize", cfg.BatchSize,
		"tor", cfg.UseTor,
	)

	conn, err := tor.Connect(ctx, tor.Options{
		ProxyAddress:   cfg.TorProxyAddress,
		UseEmbedded:    cfg.UseTor,
		StartupTimeout: cfg.TorStartupTimeout,
		Timeout:        httpClientTimeout,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("failed to set up transport: %w", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close transport", "error", err)
		}
	}()

	var index source.IndexLookup
	if cfg.UseIndex && cfg.SourceEnabled(source.NameLocalIndex) {
		db, err := openIndex(cfg.IndexDir, logger)
		if err != nil {
			return err
		}
		if db != nil {
			defer db.Close()
			index = db
		}
	}

	checker := newChecker(cfg, conn.HTTPClient, index, logger)

	out, closeOut, err := openOutput(cmd, cfg.ReportFile)
	if err != nil {
		return err
	}
	defer closeOut()

	writer := report.New(out, reportFormat(cfg), cfg.Verbose)
	forced := model.ParseKind(cfg.TargetType)

	if len(cfg.Targets) == 1 {
		if _, err := writer.Write(checker.Check(ctx, cfg.Targets[0], forced)); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		return interrupted(ctx)
	}

	bp := pipeline.NewBatchProcessor(checker,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	// JSON and Markdown are single documents; text reports stream as they finish.
	if reportFormat(cfg) != report.FormatText {
		reports, batchErr := bp.ProcessBatch(ctx, cfg.Targets, forced)
		if _, err := writer.WriteAll(reports); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		if batchErr != nil {
			return fmt.Errorf("check interrupted: %w", batchErr)
		}
		return interrupted(ctx)
	}

	var mu sync.Mutex
	batchErr := bp.ProcessBatchWithCallback(ctx, cfg.Targets, forced, func(r *model.Report, index int) {
		mu.Lock()
		defer mu.Unlock()

		logger.Debug("check completed", "index", index+1, "total", len(cfg.Targets))
		if _, err := writer.Write(r); err != nil {
			logger.Error("report failed", "target", r.Target.Redacted(), "error", err)
		}
	})
	if batchErr != nil {
		return fmt.Errorf("check interrupted: %w", batchErr)
	}
	return interrupted(ctx)
}

// interrupted reports a cancelled run after the partial reports were written.
func interrupted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("check interrupted: %w", err)
	}
	return nil
}

// openIndex opens the local breach index read-only. A missing index is not
// an error: the source is simply skipped.
func openIndex(dir string, logger *slog.Logger) (*database.CorpusDB, error) {
	db, err := database.Open(dir, database.Options{})
	if errors.Is(err, database.ErrDatabaseNotFound) {
		logger.Debug("local index not found, skipping", "dir", dir)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open local index: %w", err)
	}
	logger.Debug("local index opened", "path", db.Path())
	return db, nil
}

// newChecker builds the breach sources, the aggregator and the timeline
// estimator described by cfg.
func newChecker(cfg *config.Config, client *http.Client, index source.IndexLookup, logger *slog.Logger) *pipeline.Checker {
	common := func(name string, extra ...source.Option) []source.Option {
		opts := []source.Option{
			source.WithUserAgent(cfg.UserAgent),
			source.WithMaxBodySize(cfg.MaxBodySize),
			source.WithLogger(logger),
		}
		if endpoint := cfg.SourceEndpoint(name); endpoint != "" {
			opts = append(opts, source.WithEndpoint(endpoint))
		}
		return append(opts, extra...)
	}

	var sources []source.Source
	if cfg.SourceEnabled(source.NameEmailRep) {
		sources = append(sources, source.NewEmailRep(client,
			common(source.NameEmailRep, source.WithAPIKey(cfg.EmailRepAPIKey))...))
	}
	if cfg.SourceEnabled(source.NameLeakCheck) {
		sources = append(sources, source.NewLeakCheck(client, common(source.NameLeakCheck)...))
	}
	if cfg.SourceEnabled(source.NameProxyNova) {
		sources = append(sources, source.NewProxyNova(client, common(source.NameProxyNova)...))
	}
	if cfg.SourceEnabled(source.NameLocalCorpus) {
		sources = append(sources, source.NewLocalCorpus(cfg.CorpusDir, common(source.NameLocalCorpus)...))
	}
	if index != nil {
		sources = append(sources, source.NewLocalIndex(index, common(source.NameLocalIndex)...))
	}
	if cfg.HIBPAPIKey != "" && cfg.SourceEnabled(source.NameHIBP) {
		sources = append(sources, source.NewHIBPAccount(client,
			common(source.NameHIBP, source.WithAPIKey(cfg.HIBPAPIKey))...))
	}

	timeouts := make(map[string]time.Duration, len(sources))
	for _, src := range sources {
		timeouts[src.Name()] = cfg.SourceTimeout(src.Name())
	}

	aggregator := source.NewAggregator(sources,
		source.WithSourceTimeout(cfg.Timeout),
		source.WithSourceTimeouts(timeouts),
		source.WithAggregatorLogger(logger),
	)

	opts := []pipeline.CheckerOption{pipeline.WithCheckerLogger(logger)}
	if cfg.SourceEnabled(source.NamePwnedPasswords) {
		opts = append(opts, pipeline.WithPasswordSource(
			source.NewPwnedPasswords(client, common(source.NamePwnedPasswords)...)))
	}

	rdap := cfg.SourceEnabled(config.SourceRDAP)
	gravatar := cfg.SourceEnabled(config.SourceGravatar)
	if rdap || gravatar {
		opts = append(opts, pipeline.WithEstimator(timeline.NewEstimator(client,
			timeline.WithRDAPLookup(rdap),
			timeline.WithRDAPEndpoint(cfg.SourceEndpoint(config.SourceRDAP)),
			timeline.WithGravatarProbe(gravatar),
			timeline.WithGravatarEndpoint(cfg.SourceEndpoint(config.SourceGravatar)),
			timeline.WithProbeTimeout(cfg.TimelineTimeout),
			timeline.WithUserAgent(cfg.UserAgent),
			timeline.WithLogger(logger),
		)))
	}

	return pipeline.NewChecker(aggregator, opts...)
}

// reportFormat maps the report flags to a writer format.
func reportFormat(cfg *config.Config) report.Format {
	switch {
	case cfg.JSONReport:
		return report.FormatJSON
	case cfg.MarkdownReport:
		return report.FormatMarkdown
	default:
		return report.FormatText
	}
}

// openOutput returns the report destination: the command's stdout, or path
// created with owner-only permissions. The returned func closes the file.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	if path == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil //nolint:errcheck // best effort on exit
}
