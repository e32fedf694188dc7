package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// MaskValue replaces values that must never be logged.
const MaskValue = "***REDACTED***"

// sensitiveKeys are attribute keys whose values are always masked.
var sensitiveKeys = map[string]bool{
	// headers sent to breach APIs
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"hibp-api-key":        true,
	"key":                 true,
	"x-api-key":           true,

	// secrets
	"api_key":  true,
	"apikey":   true,
	"api-key":  true,
	"secret":   true,
	"token":    true,
	"password": true,
	"passwd":   true,

	// password candidates and their digests
	"candidate": true,
	"plaintext": true,
	"sha1":      true,
	"hash":      true,
	"digest":    true,
}

// sensitiveKeywords mask any key that contains them, e.g. "hibp_api_key".
// The bare "key" is only matched exactly since "source_key" style names are common.
var sensitiveKeywords = []string{
	"password", "passwd", "secret", "token", "apikey", "api_key", "api-key", "credential",
}

// sensitivePatterns mask a whole string value.
var sensitivePatterns = []*regexp.Regexp{
	// full SHA-1 digest, as computed for Pwned Passwords
	regexp.MustCompile(`^[A-Fa-f0-9]{40}$`),

	// bearer tokens
	regexp.MustCompile(`(?i)^bearer\s+.+`),

	// HIBP and EmailRep keys are long alphanumeric strings
	regexp.MustCompile(`^[a-zA-Z0-9]{32,}$`),
}

// emailPattern finds email addresses embedded in messages, URLs and errors.
var emailPattern = regexp.MustCompile(`([A-Za-z0-9._%+\-])[A-Za-z0-9._%+\-]*@([A-Za-z0-9.\-]+\.[A-Za-z]{2,})`)

// SecureHandler wraps an slog.Handler and sanitizes every attribute
// before the wrapped handler sees it. Attributes added through WithAttrs
// are sanitized as well.
type SecureHandler struct {
	handler slog.Handler
}

// NewSecureHandler creates a new SecureHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

// Enabled delegates to the wrapped handler.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle sanitizes the record's message and attributes and passes it on.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, maskEmails(r.Message), r.PC)

	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(sanitizeAttr(a))
		return true
	})

	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs returns a new handler with the sanitized attributes added.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitized := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitized[i] = sanitizeAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(sanitized)}
}

// WithGroup returns a new handler with the given group name.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

func sanitizeAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		sanitized := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			sanitized[i] = sanitizeAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(sanitized...)}
	}

	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, MaskValue)
	}

	switch a.Value.Kind() {
	case slog.KindString:
		s := a.Value.String()
		if isSensitiveValue(s) {
			return slog.String(a.Key, MaskValue)
		}
		if masked := maskEmails(s); masked != s {
			return slog.String(a.Key, masked)
		}
	case slog.KindAny:
		// Errors from the HTTP client embed request URLs, which may carry an email.
		if err, ok := a.Value.Any().(error); ok && err != nil {
			msg := err.Error()
			if masked := maskEmails(msg); masked != msg {
				return slog.String(a.Key, masked)
			}
		}
	}

	return a
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	if sensitiveKeys[lower] {
		return true
	}
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func isSensitiveValue(value string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// maskEmails rewrites every email address in s to "x***@domain".
func maskEmails(s string) string {
	if !strings.Contains(s, "@") {
		return s
	}
	return emailPattern.ReplaceAllString(s, "$1***@$2")
}

func levelFor(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// NewSecureLogger creates a text logger that sanitizes its output.
// verbose selects the Debug level; otherwise Warn.
// The result can be passed to slog.SetDefault and to tornago.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: levelFor(verbose)})
	return slog.New(NewSecureHandler(handler))
}

// NewSecureJSONLogger is NewSecureLogger with JSON output.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: levelFor(verbose)})
	return slog.New(NewSecureHandler(handler))
}

// New picks NewSecureJSONLogger or NewSecureLogger.
func New(w io.Writer, verbose, jsonOutput bool) *slog.Logger {
	if jsonOutput {
		return NewSecureJSONLogger(w, verbose)
	}
	return NewSecureLogger(w, verbose)
}
