package source

import (
	"context"
	"net/http"
	"net/url"

	"github.com/nao1215/leakscan/internal/model"
)

// DefaultLeakCheckEndpoint is the LeakCheck public API host.
const DefaultLeakCheckEndpoint = "https://leakcheck.io"

const leakCheckType = "LeakCheck.io"

// LeakCheck queries the LeakCheck public API, which names the breaches an
// email address or phone number appeared in.
type LeakCheck struct {
	fetcher
}

type leakCheckResponse struct {
	Success bool `json:"success"`
	Sources []struct {
		Name string `json:"name"`
		Date string `json:"date"`
	} `json:"sources"`
}

// NewLeakCheck creates the public breach index source.
func NewLeakCheck(client *http.Client, opts ...Option) *LeakCheck {
	return &LeakCheck{fetcher: newFetcher(client, DefaultLeakCheckEndpoint, opts)}
}

// Name implements Source.
func (l *LeakCheck) Name() string { return NameLeakCheck }

// Supports implements Source.
func (l *LeakCheck) Supports(kind model.Kind) bool { return emailOrPhone.Supports(kind) }

// Fetch implements Source. Each named upstream breach becomes one finding.
func (l *LeakCheck) Fetch(ctx context.Context, target model.Target) []model.Finding {
	query := url.Values{"check": {target.Value()}}

	var resp leakCheckResponse
	if err := l.getJSON(ctx, l.url("/api/public?"+query.Encode()), nil, &resp); err != nil {
		return l.fail(l.Name(), target, err)
	}
	if !resp.Success {
		return nil
	}

	findings := make([]model.Finding, 0, len(resp.Sources))
	for _, src := range resp.Sources {
		if src.Name == "" {
			continue
		}
		findings = append(findings, model.Finding{
			Name:       src.Name,
			Year:       model.YearOf(src.Date),
			SourceType: leakCheckType,
			DataLeaked: []string{model.DataClassUnknown},
		})
	}
	return findings
}
