package model

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind classifies a target identifier.
type Kind string

const (
	// KindUnknown is returned for empty input. Callers must treat it as invalid.
	KindUnknown Kind = "unknown"
	// KindEmail is an email address of the form local@domain.tld.
	KindEmail Kind = "email"
	// KindPhone is a phone number with 7 to 15 digits.
	KindPhone Kind = "phone"
	// KindPassword is anything that is neither an email nor a phone number.
	KindPassword Kind = "password"
)

const (
	// minPhoneDigits and maxPhoneDigits bound the phone heuristic (E.164 allows 15).
	minPhoneDigits = 7
	maxPhoneDigits = 15

	// redactMask replaces hidden characters in Redacted output.
	redactMask = "********"
)

// emailPattern matches local@domain.tld without internal whitespace.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+\-]+@[a-zA-Z0-9\-]+\.[a-zA-Z0-9\-.]+$`)

// String returns the kind name.
func (k Kind) String() string {
	return string(k)
}

// ParseKind converts a user supplied type name into a Kind.
// "auto", the empty string and unrecognised names map to KindUnknown,
// which NewTarget interprets as "classify automatically".
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "email":
		return KindEmail
	case "phone":
		return KindPhone
	case "password":
		return KindPassword
	default:
		return KindUnknown
	}
}

// Classify determines whether raw is an email, a phone number or a password.
// Empty input yields KindUnknown.
func Classify(raw string) Kind {
	if raw == "" {
		return KindUnknown
	}

	clean := strings.TrimSpace(raw)
	if strings.Contains(clean, "@") && emailPattern.MatchString(clean) {
		return KindEmail
	}

	if isPhone(clean) {
		return KindPhone
	}

	return KindPassword
}

// isPhone applies the phone heuristic: after removing whitespace, hyphens and
// parentheses the input must be an optional leading '+' followed only by
// ASCII digits, with a digit count between 7 and 15.
func isPhone(s string) bool {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' || r == '(' || r == ')' {
			return -1
		}
		return r
	}, s)

	digits := strings.TrimPrefix(stripped, "+")
	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Normalize canonicalizes raw according to kind.
//   - email: trimmed and lower-cased
//   - phone: only ASCII digits and a single leading '+' are kept
//   - password and anything else: returned verbatim
func Normalize(raw string, kind Kind) string {
	if raw == "" {
		return ""
	}

	switch kind {
	case KindEmail:
		return strings.ToLower(strings.TrimSpace(raw))
	case KindPhone:
		trimmed := strings.TrimSpace(raw)
		var sb strings.Builder
		if strings.HasPrefix(trimmed, "+") {
			sb.WriteByte('+')
		}
		for _, c := range trimmed {
			if c >= '0' && c <= '9' {
				sb.WriteRune(c)
			}
		}
		return sb.String()
	default:
		return raw
	}
}

// DomainOf returns the part of an email after the first '@'.
// The second return value is false when there is no '@'.
func DomainOf(email string) (string, bool) {
	_, domain, found := strings.Cut(email, "@")
	if !found {
		return "", false
	}
	return domain, true
}

// Target is an immutable, normalized identifier together with its Kind.
// The zero value is an unknown, empty target.
type Target struct {
	value string
	kind  Kind
}

// NewTarget classifies and normalizes raw.
// A forced kind is honoured only for KindEmail and KindPassword; any other
// value falls back to automatic classification.
func NewTarget(raw string, forced Kind) Target {
	kind := forced
	if kind != KindEmail && kind != KindPassword {
		kind = Classify(raw)
	}

	return Target{
		value: Normalize(raw, kind),
		kind:  kind,
	}
}

// Value returns the normalized identifier.
func (t Target) Value() string {
	return t.value
}

// Kind returns the classified kind.
func (t Target) Kind() Kind {
	if t.kind == "" {
		return KindUnknown
	}
	return t.kind
}

// IsZero reports whether the target holds no identifier.
func (t Target) IsZero() bool {
	return t.value == ""
}

// Domain returns the domain of an email target.
func (t Target) Domain() (string, bool) {
	if t.kind != KindEmail {
		return "", false
	}
	return DomainOf(t.value)
}

// Redacted returns a form of the target that is safe to log and display.
// Passwords are fully masked, emails keep the first character of the local
// part and the domain, phone numbers keep their last four digits.
func (t Target) Redacted() string {
	switch t.kind {
	case KindPassword:
		return redactMask
	case KindEmail:
		local, domain, found := strings.Cut(t.value, "@")
		if !found || local == "" {
			return redactMask
		}
		first, _ := utf8.DecodeRuneInString(local)
		return string(first) + "***@" + domain
	case KindPhone:
		if len(t.value) <= 4 {
			return redactMask
		}
		return strings.Repeat("*", len(t.value)-4) + t.value[len(t.value)-4:]
	default:
		return t.value
	}
}

// String returns the redacted form so targets never leak through %v.
func (t Target) String() string {
	return t.Redacted()
}
