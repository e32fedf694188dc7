package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultSourceTimeout bounds each breach source lookup. Upstreams that
	// have not answered by then contribute nothing to the report.
	DefaultSourceTimeout = 8 * time.Second

	// DefaultTimelineTimeout bounds the RDAP and Gravatar requests.
	DefaultTimelineTimeout = 5 * time.Second

	// DefaultBatchSize is the number of targets checked at once.
	// The public breach APIs throttle aggressively, so this stays small.
	DefaultBatchSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "leakscan"

	// DefaultUserAgent identifies leakscan in HTTP requests.
	// Several upstream APIs reject requests without a descriptive User-Agent.
	DefaultUserAgent = "leakscan/1.0 (+https://github.com/nao1215/leakscan)"

	// DefaultMaxBodySize limits the maximum response body size to read.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute

	// TypeAuto lets the classifier choose the target type.
	TypeAuto = "auto"

	// CorpusDirName is the name of the corpus directory inside the data directory.
	CorpusDirName = "breaches"
)

// Environment variables read by ApplyEnv.
const (
	EnvHIBPAPIKey     = "HIBP_API_KEY"
	EnvEmailRepAPIKey = "EMAILREP_API_KEY"
)

// Config holds all configuration options for leakscan.
// It is populated from defaults, the configuration file, the environment
// and CLI flags, and passed through the application explicitly.
type Config struct {
	// Targets are the raw identifiers to check.
	Targets []string

	// TargetType forces the target type: "auto", "email" or "password".
	// Phone numbers cannot be forced and are only detected automatically.
	TargetType string

	// Timeout is the default per-source lookup deadline.
	Timeout time.Duration

	// TimelineTimeout bounds each RDAP and Gravatar request.
	TimelineTimeout time.Duration

	// BatchSize is the number of concurrent checks when several targets are given.
	BatchSize int

	// Verbose enables debug logging.
	Verbose bool

	// LogJSON switches log output to JSON.
	LogJSON bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, FindConfigFile searches the default locations.
	ConfigFilePath string

	// Sources holds the per-source settings loaded from the configuration file.
	Sources *File

	// JSONReport enables JSON report output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When empty, the report is written to stdout.
	ReportFile string

	// CorpusDir holds plain breach dump files searched by the local corpus source.
	CorpusDir string

	// IndexDir holds the SQLite breach index built by "corpus import".
	IndexDir string

	// UseIndex enables the local index source. The index is still only
	// queried when it exists.
	UseIndex bool

	// HIBPAPIKey enables the Have I Been Pwned breached account source.
	HIBPAPIKey string

	// EmailRepAPIKey is sent to EmailRep when set.
	EmailRepAPIKey string

	// UseTor routes all upstream traffic through an embedded Tor daemon.
	UseTor bool

	// TorProxyAddress routes all upstream traffic through an external SOCKS5
	// proxy in "host:port" format. Empty means direct connections.
	TorProxyAddress string

	// TorStartupTimeout is the maximum time to wait for the embedded Tor daemon.
	TorStartupTimeout time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Set to 0 to use the default.
	MaxBodySize int64
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		TargetType:        TypeAuto,
		Timeout:           DefaultSourceTimeout,
		TimelineTimeout:   DefaultTimelineTimeout,
		BatchSize:         DefaultBatchSize,
		CorpusDir:         filepath.Join(XDGDataDir(), CorpusDirName),
		IndexDir:          XDGDataDir(),
		UseIndex:          true,
		TorStartupTimeout: DefaultTorStartupTimeout,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
		Sources:           NewFile(),
	}
}

// XDGDataDir returns the XDG data directory for leakscan.
// On Linux: ~/.local/share/leakscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for leakscan.
// On Linux: ~/.config/leakscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ApplyFile copies the global settings of a configuration file into c.
// Empty values in the file leave c unchanged.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	c.Sources = f

	if f.CorpusDir != "" {
		c.CorpusDir = f.CorpusDir
	}
	if f.IndexDir != "" {
		c.IndexDir = f.IndexDir
	}
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	if f.Defaults.Timeout > 0 {
		c.Timeout = f.Defaults.Timeout
	}
	if key := f.Sources[SourceHIBP].APIKey; key != "" {
		c.HIBPAPIKey = key
	}
	if key := f.Sources[SourceEmailRep].APIKey; key != "" {
		c.EmailRepAPIKey = key
	}
}

// ApplyEnv reads API keys from the environment through getenv
// (usually os.Getenv). Unset variables leave c unchanged.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if key := strings.TrimSpace(getenv(EnvHIBPAPIKey)); key != "" {
		c.HIBPAPIKey = key
	}
	if key := strings.TrimSpace(getenv(EnvEmailRepAPIKey)); key != "" {
		c.EmailRepAPIKey = key
	}
}

// SourceTimeout returns the lookup deadline for the named source: its own
// timeout from the configuration file, or c.Timeout. The file's defaults
// section reaches c.Timeout through ApplyFile so that --timeout can override it.
func (c *Config) SourceTimeout(name string) time.Duration {
	if c.Sources != nil {
		if d := c.Sources.Sources[name].Timeout; d > 0 {
			return d
		}
	}
	return c.Timeout
}

// SourceEnabled reports whether the named source is enabled in the configuration file.
func (c *Config) SourceEnabled(name string) bool {
	if c.Sources == nil {
		return true
	}
	return c.Sources.GetSourceConfig(name).IsEnabled()
}

// SourceEndpoint returns the configured endpoint override for the named source, if any.
func (c *Config) SourceEndpoint(name string) string {
	if c.Sources == nil {
		return ""
	}
	return c.Sources.GetSourceConfig(name).Endpoint
}

// Validate checks if the configuration is valid for a check run.
// It returns the first problem found as one of the sentinel errors.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	for _, target := range c.Targets {
		if target == "" {
			return ErrNoTarget
		}
	}

	switch strings.ToLower(c.TargetType) {
	case "", TypeAuto, "email", "password":
	default:
		return ErrInvalidTargetType
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.UseTor && c.TorProxyAddress != "" {
		return ErrConflictingTransports
	}

	if c.UseTor && c.TorStartupTimeout <= 0 {
		return ErrInvalidTorStartupTimeout
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
