package source

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1" //nolint:gosec // the range API is keyed by SHA-1
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"

	"github.com/nao1215/leakscan/internal/model"
)

// DefaultPwnedPasswordsEndpoint is the public k-anonymity range API.
const DefaultPwnedPasswordsEndpoint = "https://api.pwnedpasswords.com"

// hashPrefixLen is the number of hash characters sent upstream.
const hashPrefixLen = 5

// Finding labels produced by PwnedPasswords.
const (
	pwnedPasswordsFinding = "HIBP Pwned Passwords"
	pwnedPasswordsType    = "HIBP k-Anonymity"
)

// PwnedPasswords checks a password against the Pwned Passwords range API.
// Only the first five characters of the upper-case SHA-1 hex digest leave
// the process; the suffix is matched locally.
type PwnedPasswords struct {
	fetcher
}

// NewPwnedPasswords creates the password range source.
func NewPwnedPasswords(client *http.Client, opts ...Option) *PwnedPasswords {
	return &PwnedPasswords{fetcher: newFetcher(client, DefaultPwnedPasswordsEndpoint, opts)}
}

// Name implements Source.
func (p *PwnedPasswords) Name() string { return NamePwnedPasswords }

// Supports implements Source.
func (p *PwnedPasswords) Supports(kind model.Kind) bool { return passwordOnly.Supports(kind) }

// Fetch implements Source. It returns at most one finding carrying the leak count.
func (p *PwnedPasswords) Fetch(ctx context.Context, target model.Target) []model.Finding {
	sum := sha1.Sum([]byte(target.Value())) //nolint:gosec
	digest := strings.ToUpper(hex.EncodeToString(sum[:]))
	prefix, suffix := digest[:hashPrefixLen], digest[hashPrefixLen:]

	header := http.Header{}
	header.Set("Add-Padding", "true")

	body, err := p.get(ctx, p.url("/range/"+prefix), header)
	if err != nil {
		return p.fail(p.Name(), target, err)
	}

	count := matchSuffix(body, suffix)
	if count <= 0 {
		return nil
	}

	return []model.Finding{{
		Name:       pwnedPasswordsFinding,
		Year:       model.YearUnknown,
		SourceType: pwnedPasswordsType,
		LeakCount:  count,
	}}
}

// matchSuffix scans "SUFFIX:COUNT" lines for suffix and returns its count.
// Padding entries carry a count of zero and malformed lines are skipped.
func matchSuffix(body []byte, suffix string) int {
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		hash, count, found := strings.Cut(strings.TrimSpace(scanner.Text()), ":")
		if !found || !strings.EqualFold(hash, suffix) {
			continue
		}
		n, err := strconv.Atoi(count)
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}
