package timeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/leakscan/internal/model"
)

type fakeUpstream struct {
	server        *httptest.Server
	rdapPaths     chan string
	gravatarCalls atomic.Int32
}

func newFakeUpstream(t *testing.T, rdapStatus int, rdapBody string) *fakeUpstream {
	t.Helper()

	f := &fakeUpstream{rdapPaths: make(chan string, 4)}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/domain/"):
			f.rdapPaths <- r.URL.Path
			w.WriteHeader(rdapStatus)
			_, _ = w.Write([]byte(rdapBody)) //nolint:errcheck
		case strings.HasSuffix(r.URL.Path, ".json"):
			f.gravatarCalls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		default:
			t.Errorf("unexpected request %q", r.URL.Path)
		}
	}))
	t.Cleanup(f.server.Close)

	return f
}

func (f *fakeUpstream) estimator(opts ...Option) *Estimator {
	base := []Option{
		WithRDAPEndpoint(f.server.URL),
		WithGravatarEndpoint(f.server.URL),
	}
	return NewEstimator(f.server.Client(), append(base, opts...)...)
}

const rdapBody = `{
  "objectClassName": "domain",
  "events": [
    {"eventAction": "expiration", "eventDate": "2030-01-01T00:00:00Z"},
    {"eventAction": "registration", "eventDate": "1997-08-12T04:00:00Z"},
    {"eventAction": "registration", "eventDate": "1995-03-01T00:00:00Z"},
    {"eventAction": "last changed", "eventDate": "1990-01-01T00:00:00Z"}
  ]
}`

func TestEstimateFirstSeen(t *testing.T) {
	t.Parallel()

	t.Run("earliest registration month", func(t *testing.T) {
		t.Parallel()

		up := newFakeUpstream(t, http.StatusOK, rdapBody)
		got := up.estimator().EstimateFirstSeen(context.Background(), "user@mail.example.co.uk", "mail.example.co.uk")

		if got != "1995-03" {
			t.Errorf("EstimateFirstSeen() = %q, want 1995-03", got)
		}
		if path := <-up.rdapPaths; path != "/domain/example.co.uk" {
			t.Errorf("RDAP queried %q, want registrable domain", path)
		}
		if up.gravatarCalls.Load() != 1 {
			t.Errorf("expected one gravatar probe, got %d", up.gravatarCalls.Load())
		}
	})

	t.Run("rdap failure yields unknown", func(t *testing.T) {
		t.Parallel()

		up := newFakeUpstream(t, http.StatusNotFound, `{}`)
		if got := up.estimator().EstimateFirstSeen(context.Background(), "a@example.com", "example.com"); got != model.YearUnknown {
			t.Errorf("EstimateFirstSeen() = %q, want Unknown", got)
		}
	})

	t.Run("no registration events yields unknown", func(t *testing.T) {
		t.Parallel()

		up := newFakeUpstream(t, http.StatusOK, `{"events":[{"eventAction":"expiration","eventDate":"2030-01-01"}]}`)
		if got := up.estimator().EstimateFirstSeen(context.Background(), "a@example.com", "example.com"); got != model.YearUnknown {
			t.Errorf("EstimateFirstSeen() = %q, want Unknown", got)
		}
	})

	t.Run("empty domain skips rdap", func(t *testing.T) {
		t.Parallel()

		up := newFakeUpstream(t, http.StatusOK, rdapBody)
		if got := up.estimator().EstimateFirstSeen(context.Background(), "a@example.com", ""); got != model.YearUnknown {
			t.Errorf("EstimateFirstSeen() = %q, want Unknown", got)
		}
		if len(up.rdapPaths) != 0 {
			t.Error("RDAP should not be queried without a domain")
		}
	})

	t.Run("gravatar lookup can be disabled", func(t *testing.T) {
		t.Parallel()

		up := newFakeUpstream(t, http.StatusOK, rdapBody)
		up.estimator(WithGravatarProbe(false)).EstimateFirstSeen(context.Background(), "a@example.com", "example.com")
		if up.gravatarCalls.Load() != 0 {
			t.Error("gravatar should not be probed when disabled")
		}
	})

	t.Run("rdap lookup can be disabled", func(t *testing.T) {
		t.Parallel()

		up := newFakeUpstream(t, http.StatusOK, rdapBody)
		got := up.estimator(WithRDAPLookup(false)).EstimateFirstSeen(context.Background(), "a@example.com", "example.com")
		if got != model.YearUnknown {
			t.Errorf("EstimateFirstSeen() = %q, want Unknown", got)
		}
		if len(up.rdapPaths) != 0 {
			t.Error("RDAP should not be queried when disabled")
		}
	})

	t.Run("slow rdap is cut off", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
		}))
		t.Cleanup(server.Close)

		est := NewEstimator(server.Client(),
			WithRDAPEndpoint(server.URL),
			WithGravatarProbe(false),
			WithProbeTimeout(50*time.Millisecond),
		)
		if got := est.EstimateFirstSeen(context.Background(), "a@example.com", "example.com"); got != model.YearUnknown {
			t.Errorf("EstimateFirstSeen() = %q, want Unknown", got)
		}
	})
}

func TestRegistrableDomain(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"example.com":        "example.com",
		"mail.example.co.uk": "example.co.uk",
		"Sub.Example.COM.":   "example.com",
		"localhost":          "localhost",
	}
	for input, want := range cases {
		if got := RegistrableDomain(input); got != want {
			t.Errorf("RegistrableDomain(%q) = %q, want %q", input, got, want)
		}
	}
}
