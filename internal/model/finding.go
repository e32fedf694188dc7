package model

import (
	"encoding/json"
	"slices"
	"strconv"
)

// YearUnknown is the year recorded when a source does not date a breach.
const YearUnknown = "Unknown"

// unknownYearRank is the sort key used for non-numeric years so that they
// order after every real breach year.
const unknownYearRank = 9999

// Well-known data class values used by the built-in sources.
const (
	// DataClassPassword marks a finding whose breach exposed passwords.
	DataClassPassword = "password"
	// DataClassUnknown marks a finding whose leaked data classes are not known.
	DataClassUnknown = "unknown"
)

// Finding is one breach or exposure record attributed to a single named source.
// Findings are value objects; Name is their only identity.
type Finding struct {
	// Name identifies the breach and is the deduplication key.
	Name string `json:"name"`

	// Year is a four digit year or YearUnknown.
	Year string `json:"year"`

	// SourceType names the kind of source that reported the finding.
	SourceType string `json:"source_type"`

	// DataLeaked lists the data classes exposed in the breach, when known.
	DataLeaked []string `json:"data_leaked,omitempty"`

	// LeakCount is how often a password appeared in breach corpora.
	// Only the password range source sets it.
	LeakCount int `json:"leak_count,omitempty"`

	// Description is a plain-text summary of the breach, when the source provides one.
	Description string `json:"description,omitempty"`
}

// HasDataClass reports whether class appears in DataLeaked.
func (f Finding) HasDataClass(class string) bool {
	return slices.Contains(f.DataLeaked, class)
}

// YearRank returns the numeric sort key of the finding's year.
// Non-numeric years rank as 9999.
func (f Finding) YearRank() int {
	if f.Year == "" {
		return unknownYearRank
	}
	for _, c := range f.Year {
		if c < '0' || c > '9' {
			return unknownYearRank
		}
	}
	year, err := strconv.Atoi(f.Year)
	if err != nil {
		return unknownYearRank
	}
	return year
}

// YearOf extracts the breach year from a date string such as "2019-05-04".
// Empty dates yield YearUnknown and dates shorter than four characters are
// returned as they are.
func YearOf(date string) string {
	if date == "" {
		return YearUnknown
	}
	if len(date) < 4 {
		return date
	}
	return date[:4]
}

// FindingSet is an ordered collection of findings that never holds two
// findings with the same name.
type FindingSet struct {
	findings []Finding
	seen     map[string]struct{}
}

// NewFindingSet builds a set from findings, keeping the first occurrence of
// every name and then ordering the result by year (see Sort).
func NewFindingSet(findings ...Finding) *FindingSet {
	fs := &FindingSet{}
	for _, f := range findings {
		fs.Add(f)
	}
	fs.Sort()
	return fs
}

// Add appends f unless a finding with the same name is already present.
// It reports whether f was added.
func (fs *FindingSet) Add(f Finding) bool {
	if fs.seen == nil {
		fs.seen = make(map[string]struct{})
	}
	if _, exists := fs.seen[f.Name]; exists {
		return false
	}
	fs.seen[f.Name] = struct{}{}
	fs.findings = append(fs.findings, f)
	return true
}

// Sort orders findings ascending by numeric year. Findings with a
// non-numeric year sort last, and equal years keep their insertion order.
func (fs *FindingSet) Sort() {
	slices.SortStableFunc(fs.findings, func(a, b Finding) int {
		return a.YearRank() - b.YearRank()
	})
}

// Len returns the number of findings.
func (fs *FindingSet) Len() int {
	if fs == nil {
		return 0
	}
	return len(fs.findings)
}

// Findings returns a copy of the ordered findings.
func (fs *FindingSet) Findings() []Finding {
	if fs == nil {
		return []Finding{}
	}
	out := make([]Finding, len(fs.findings))
	copy(out, fs.findings)
	return out
}

// Contains reports whether a finding with the given name exists.
func (fs *FindingSet) Contains(name string) bool {
	if fs == nil || fs.seen == nil {
		return false
	}
	_, ok := fs.seen[name]
	return ok
}

// TotalLeakCount sums LeakCount across all findings.
func (fs *FindingSet) TotalLeakCount() int {
	total := 0
	for _, f := range fs.Findings() {
		total += f.LeakCount
	}
	return total
}

// MarshalJSON encodes the set as an ordered JSON array.
func (fs *FindingSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(fs.Findings())
}
