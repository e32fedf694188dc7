package source

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/nao1215/leakscan/internal/model"
	"golang.org/x/net/html"
)

// DefaultHIBPEndpoint is the Have I Been Pwned API host.
const DefaultHIBPEndpoint = "https://haveibeenpwned.com"

const hibpType = "HIBP"

// HIBPAccount queries the Have I Been Pwned breached account API.
// It requires an API key and is only registered when one is configured.
type HIBPAccount struct {
	fetcher
}

type hibpBreach struct {
	Name        string   `json:"Name"`
	BreachDate  string   `json:"BreachDate"`
	DataClasses []string `json:"DataClasses"`
	Description string   `json:"Description"`
}

// NewHIBPAccount creates the premium breach source. Pass the key with WithAPIKey.
func NewHIBPAccount(client *http.Client, opts ...Option) *HIBPAccount {
	return &HIBPAccount{fetcher: newFetcher(client, DefaultHIBPEndpoint, opts)}
}

// Name implements Source.
func (h *HIBPAccount) Name() string { return NameHIBP }

// Supports implements Source. Without a key the source supports nothing.
func (h *HIBPAccount) Supports(kind model.Kind) bool {
	return h.apiKey != "" && emailOnly.Supports(kind)
}

// Fetch implements Source. A 404 means the account is in no known breach.
func (h *HIBPAccount) Fetch(ctx context.Context, target model.Target) []model.Finding {
	header := http.Header{}
	header.Set("hibp-api-key", h.apiKey)

	rawURL := h.url("/api/v3/breachedaccount/" + url.PathEscape(target.Value()) + "?truncateResponse=false")

	var breaches []hibpBreach
	if err := h.getJSON(ctx, rawURL, header, &breaches); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return h.fail(h.Name(), target, err)
	}

	findings := make([]model.Finding, 0, len(breaches))
	for _, b := range breaches {
		if b.Name == "" {
			continue
		}
		findings = append(findings, model.Finding{
			Name:        b.Name,
			Year:        model.YearOf(b.BreachDate),
			SourceType:  hibpType,
			DataLeaked:  b.DataClasses,
			Description: stripHTML(b.Description),
		})
	}
	return findings
}

// blockTags separate words when their markup is removed.
var blockTags = map[string]bool{
	"br": true, "p": true, "div": true, "li": true, "ul": true, "ol": true,
}

// stripHTML returns the text content of an HTML fragment with whitespace collapsed.
func stripHTML(fragment string) string {
	if fragment == "" {
		return ""
	}

	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(sb.String()), " ")
		case html.TextToken:
			sb.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			if name, _ := z.TagName(); blockTags[string(name)] {
				sb.WriteByte(' ')
			}
		}
	}
}
