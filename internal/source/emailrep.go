package source

import (
	"context"
	"net/http"
	"net/url"

	"github.com/nao1215/leakscan/internal/model"
)

// DefaultEmailRepEndpoint is the EmailRep reputation API.
const DefaultEmailRepEndpoint = "https://emailrep.io"

const (
	emailRepFinding = "EmailRep.io Detection"
	emailRepType    = "Reputation API"
)

// EmailRep asks the EmailRep reputation API whether an address has been
// seen in a data breach. It never names the breach.
type EmailRep struct {
	fetcher
}

// emailRepResponse is the subset of the EmailRep response we read.
type emailRepResponse struct {
	Details struct {
		DataBreach bool `json:"data_breach"`
	} `json:"details"`
}

// NewEmailRep creates the reputation source. The API key is optional.
func NewEmailRep(client *http.Client, opts ...Option) *EmailRep {
	return &EmailRep{fetcher: newFetcher(client, DefaultEmailRepEndpoint, opts)}
}

// Name implements Source.
func (e *EmailRep) Name() string { return NameEmailRep }

// Supports implements Source.
func (e *EmailRep) Supports(kind model.Kind) bool { return emailOnly.Supports(kind) }

// Fetch implements Source.
func (e *EmailRep) Fetch(ctx context.Context, target model.Target) []model.Finding {
	header := http.Header{}
	if e.apiKey != "" {
		header.Set("Key", e.apiKey)
	}

	var resp emailRepResponse
	if err := e.getJSON(ctx, e.url("/"+url.PathEscape(target.Value())), header, &resp); err != nil {
		return e.fail(e.Name(), target, err)
	}
	if !resp.Details.DataBreach {
		return nil
	}

	return []model.Finding{{
		Name:       emailRepFinding,
		Year:       model.YearUnknown,
		SourceType: emailRepType,
		DataLeaked: []string{model.DataClassUnknown},
	}}
}
