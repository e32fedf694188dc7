package source

import (
	"context"

	"github.com/nao1215/leakscan/internal/database"
	"github.com/nao1215/leakscan/internal/model"
)

const localIndexType = "Local Index"

// IndexLookup finds the imported dumps that contain a target.
// database.CorpusDB implements it.
type IndexLookup interface {
	Lookup(ctx context.Context, target model.Target) ([]database.Match, error)
}

// LocalIndex looks targets up in the hashed local breach index.
type LocalIndex struct {
	index IndexLookup
	settings
}

// NewLocalIndex creates a source backed by index.
func NewLocalIndex(index IndexLookup, opts ...Option) *LocalIndex {
	return &LocalIndex{index: index, settings: newSettings("", opts)}
}

// Name implements Source.
func (l *LocalIndex) Name() string { return NameLocalIndex }

// Supports implements Source.
func (l *LocalIndex) Supports(kind model.Kind) bool {
	return l.index != nil && emailOrPhone.Supports(kind)
}

// Fetch implements Source. Each matching dump yields one finding.
func (l *LocalIndex) Fetch(ctx context.Context, target model.Target) []model.Finding {
	matches, err := l.index.Lookup(ctx, target)
	if err != nil {
		return l.fail(l.Name(), target, err)
	}

	findings := make([]model.Finding, 0, len(matches))
	for _, m := range matches {
		findings = append(findings, model.Finding{
			Name:       "Index: " + m.Source,
			Year:       model.YearUnknown,
			SourceType: localIndexType,
			DataLeaked: []string{model.DataClassUnknown},
		})
	}
	return findings
}
