package source

import (
	"context"
	"net/http"
	"net/url"

	"github.com/nao1215/leakscan/internal/model"
)

// DefaultProxyNovaEndpoint is the ProxyNova COMB search API host.
const DefaultProxyNovaEndpoint = "https://api.proxynova.com"

const (
	proxyNovaFinding = "Proxynova COMB"
	proxyNovaType    = "COMB"
)

// ProxyNova searches the Compilation of Many Breaches (COMB) through the
// ProxyNova API. COMB entries are credential pairs, so any hit implies a
// leaked password.
type ProxyNova struct {
	fetcher
}

type proxyNovaResponse struct {
	Count int `json:"count"`
}

// NewProxyNova creates the COMB source.
func NewProxyNova(client *http.Client, opts ...Option) *ProxyNova {
	return &ProxyNova{fetcher: newFetcher(client, DefaultProxyNovaEndpoint, opts)}
}

// Name implements Source.
func (p *ProxyNova) Name() string { return NameProxyNova }

// Supports implements Source.
func (p *ProxyNova) Supports(kind model.Kind) bool { return emailOrPhone.Supports(kind) }

// Fetch implements Source.
func (p *ProxyNova) Fetch(ctx context.Context, target model.Target) []model.Finding {
	query := url.Values{"query": {target.Value()}}

	var resp proxyNovaResponse
	if err := p.getJSON(ctx, p.url("/comb?"+query.Encode()), nil, &resp); err != nil {
		return p.fail(p.Name(), target, err)
	}
	if resp.Count <= 0 {
		return nil
	}

	return []model.Finding{{
		Name:       proxyNovaFinding,
		Year:       model.YearUnknown,
		SourceType: proxyNovaType,
		DataLeaked: []string{model.DataClassPassword},
	}}
}
