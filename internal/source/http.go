package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// fetcher performs GET requests against one upstream with a shared client.
// The client is injected so that callers can route traffic directly, through
// an external SOCKS5 proxy or through an embedded Tor daemon.
type fetcher struct {
	client *http.Client
	settings
}

func newFetcher(client *http.Client, defaultEndpoint string, opts []Option) fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	s := newSettings(defaultEndpoint, opts)
	s.endpoint = strings.TrimRight(s.endpoint, "/")
	return fetcher{client: client, settings: s}
}

// url joins path onto the configured endpoint.
func (f *fetcher) url(path string) string {
	return f.endpoint + path
}

// get fetches rawURL and returns at most maxBodySize bytes of the body.
// A 404 yields ErrNotFound and any other non-2xx status ErrUnexpectedStatus.
func (f *fetcher) get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// getJSON fetches rawURL and decodes the JSON body into v.
func (f *fetcher) getJSON(ctx context.Context, rawURL string, header http.Header, v any) error {
	body, err := f.get(ctx, rawURL, header)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}
