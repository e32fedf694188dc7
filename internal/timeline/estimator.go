// Package timeline estimates when an email address was first plausibly
// exposed.
//
// The only dating signal is the registration date of the address's domain,
// taken from RDAP: an address cannot have leaked before its domain existed.
// A Gravatar profile probe runs alongside it and is logged for diagnostics,
// but Gravatar exposes no timestamps and never influences the estimate.
package timeline

import (
	"context"
	"crypto/md5" //nolint:gosec // Gravatar profile URLs are keyed by MD5
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/leakscan/internal/model"
)

// Default upstream endpoints.
const (
	DefaultRDAPEndpoint     = "https://rdap.org"
	DefaultGravatarEndpoint = "https://en.gravatar.com"
)

// DefaultProbeTimeout bounds each of the RDAP and Gravatar requests.
const DefaultProbeTimeout = 5 * time.Second

// maxBodySize caps RDAP responses.
const maxBodySize = 1 << 20

// registrationAction is the RDAP event action marking domain registration.
const registrationAction = "registration"

// Estimator derives a first-seen month for an email address.
type Estimator struct {
	client           *http.Client
	rdapEndpoint     string
	gravatarEndpoint string
	rdapEnabled      bool
	gravatarEnabled  bool
	timeout          time.Duration
	userAgent        string
	logger           *slog.Logger
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithRDAPEndpoint overrides the RDAP base URL.
func WithRDAPEndpoint(endpoint string) Option {
	return func(e *Estimator) {
		if endpoint != "" {
			e.rdapEndpoint = strings.TrimRight(endpoint, "/")
		}
	}
}

// WithGravatarEndpoint overrides the Gravatar base URL.
func WithGravatarEndpoint(endpoint string) Option {
	return func(e *Estimator) {
		if endpoint != "" {
			e.gravatarEndpoint = strings.TrimRight(endpoint, "/")
		}
	}
}

// WithRDAPLookup enables or disables the RDAP registration lookup.
func WithRDAPLookup(enabled bool) Option {
	return func(e *Estimator) {
		e.rdapEnabled = enabled
	}
}

// WithGravatarProbe enables or disables the Gravatar existence probe.
func WithGravatarProbe(enabled bool) Option {
	return func(e *Estimator) {
		e.gravatarEnabled = enabled
	}
}

// WithProbeTimeout sets the deadline applied to each request.
func WithProbeTimeout(d time.Duration) Option {
	return func(e *Estimator) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(e *Estimator) {
		if ua != "" {
			e.userAgent = ua
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Estimator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEstimator creates an estimator that issues requests with client.
func NewEstimator(client *http.Client, opts ...Option) *Estimator {
	if client == nil {
		client = http.DefaultClient
	}

	e := &Estimator{
		client:           client,
		rdapEndpoint:     DefaultRDAPEndpoint,
		gravatarEndpoint: DefaultGravatarEndpoint,
		rdapEnabled:      true,
		gravatarEnabled:  true,
		timeout:          DefaultProbeTimeout,
		userAgent:        "leakscan",
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// rdapDomain is the subset of an RDAP domain object we read.
type rdapDomain struct {
	Events []struct {
		EventAction string `json:"eventAction"`
		EventDate   string `json:"eventDate"`
	} `json:"events"`
}

// EstimateFirstSeen returns the earliest plausible exposure month of email
// as "YYYY-MM", or model.YearUnknown when nothing could be determined.
// domain may be empty, in which case no RDAP request is made.
func (e *Estimator) EstimateFirstSeen(ctx context.Context, email, domain string) string {
	var dates []string

	var g errgroup.Group
	if domain != "" && e.rdapEnabled {
		g.Go(func() error {
			dates = e.registrationMonths(ctx, domain)
			return nil
		})
	}
	if email != "" && e.gravatarEnabled {
		g.Go(func() error {
			e.probeGravatar(ctx, email)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // probes never return errors

	if len(dates) == 0 {
		return model.YearUnknown
	}
	return slices.Min(dates)
}

// RegistrableDomain reduces a host to its registrable domain (eTLD+1), so
// that "mail.example.co.uk" is looked up as "example.co.uk".
// Hosts that have no registrable part are returned lower-cased as they are.
func RegistrableDomain(host string) string {
	host = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
	if d, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return d
	}
	return host
}

// registrationMonths returns the YYYY-MM of every registration event.
func (e *Estimator) registrationMonths(ctx context.Context, domain string) []string {
	target := RegistrableDomain(domain)

	var resp rdapDomain
	if err := e.getJSON(ctx, e.rdapEndpoint+"/domain/"+url.PathEscape(target), &resp); err != nil {
		e.logger.Debug("rdap lookup failed", "domain", target, "error", err)
		return nil
	}

	var months []string
	for _, ev := range resp.Events {
		if ev.EventAction != registrationAction || len(ev.EventDate) < len("2006-01") {
			continue
		}
		months = append(months, ev.EventDate[:len("2006-01")])
	}
	return months
}

// probeGravatar checks whether a Gravatar profile exists for email.
func (e *Estimator) probeGravatar(ctx context.Context, email string) {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email)))) //nolint:gosec
	rawURL := e.gravatarEndpoint + "/" + hex.EncodeToString(sum[:]) + ".json"

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Debug("gravatar probe failed", "error", err)
		return
	}
	_ = resp.Body.Close()

	e.logger.Debug("gravatar probe finished", "profile_exists", resp.StatusCode == http.StatusOK)
}

func (e *Estimator) getJSON(ctx context.Context, rawURL string, v any) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "application/rdap+json, application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected HTTP status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return json.Unmarshal(body, v)
}
