package source

import (
	"context"
	"log/slog"
	"slices"

	"github.com/nao1215/leakscan/internal/model"
)

// Source names. They double as configuration keys under "sources:".
const (
	NamePwnedPasswords = "pwnedpasswords"
	NameEmailRep       = "emailrep"
	NameLeakCheck      = "leakcheck"
	NameProxyNova      = "proxynova"
	NameLocalCorpus    = "localcorpus"
	NameLocalIndex     = "localindex"
	NameHIBP           = "hibp"
)

// Source is a single breach or reputation data source.
type Source interface {
	// Name returns the stable source name used in logs and configuration.
	Name() string

	// Supports reports whether the source can look up targets of kind.
	Supports(kind model.Kind) bool

	// Fetch looks up target and returns its findings.
	// Failures are logged and yield an empty slice.
	Fetch(ctx context.Context, target model.Target) []model.Finding
}

// kindSet implements Supports for a fixed list of kinds.
type kindSet []model.Kind

func (k kindSet) Supports(kind model.Kind) bool {
	return slices.Contains(k, kind)
}

var (
	passwordOnly = kindSet{model.KindPassword}
	emailOnly    = kindSet{model.KindEmail}
	emailOrPhone = kindSet{model.KindEmail, model.KindPhone}
)

// settings holds the options shared by every source constructor.
type settings struct {
	endpoint    string
	userAgent   string
	apiKey      string
	maxBodySize int64
	logger      *slog.Logger
}

// Option configures a source.
type Option func(*settings)

// WithEndpoint overrides the upstream base URL. Tests point it at httptest servers.
func WithEndpoint(endpoint string) Option {
	return func(s *settings) {
		if endpoint != "" {
			s.endpoint = endpoint
		}
	}
}

// WithUserAgent sets the User-Agent header sent upstream.
func WithUserAgent(ua string) Option {
	return func(s *settings) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithAPIKey sets the API key for sources that accept one.
func WithAPIKey(key string) Option {
	return func(s *settings) {
		s.apiKey = key
	}
}

// WithMaxBodySize limits how many bytes of an upstream response are read.
func WithMaxBodySize(size int64) Option {
	return func(s *settings) {
		if size > 0 {
			s.maxBodySize = size
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// DefaultUserAgent identifies leakscan to upstream operators.
const DefaultUserAgent = "leakscan/1.0 (+https://github.com/nao1215/leakscan)"

// DefaultMaxBodySize caps upstream response bodies.
const DefaultMaxBodySize = 5 * 1024 * 1024

func newSettings(endpoint string, opts []Option) settings {
	s := settings{
		endpoint:    endpoint,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// fail logs a lookup failure and returns no findings.
func (s *settings) fail(name string, target model.Target, err error) []model.Finding {
	s.logger.Debug("source lookup failed",
		"source", name,
		"target", target.Redacted(),
		"error", err,
	)
	return nil
}
