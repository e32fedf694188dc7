package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/nao1215/leakscan/internal/model"
)

const localCorpusType = "Local DB"

// LocalCorpus searches plain breach dump files in a directory for a literal
// occurrence of the target. Only regular files directly inside the directory
// are read. A UTF-8 or UTF-16 byte order mark selects the decoding and
// invalid byte sequences are dropped.
type LocalCorpus struct {
	dir string
	settings
}

// NewLocalCorpus creates a source over the dump files in dir.
// A missing directory is not an error; the source simply finds nothing.
func NewLocalCorpus(dir string, opts ...Option) *LocalCorpus {
	return &LocalCorpus{dir: dir, settings: newSettings("", opts)}
}

// Name implements Source.
func (l *LocalCorpus) Name() string { return NameLocalCorpus }

// Supports implements Source.
func (l *LocalCorpus) Supports(kind model.Kind) bool { return emailOrPhone.Supports(kind) }

// Dir returns the corpus directory.
func (l *LocalCorpus) Dir() string { return l.dir }

// Fetch implements Source. Each matching file yields one finding named after the file.
func (l *LocalCorpus) Fetch(ctx context.Context, target model.Target) []model.Finding {
	if l.dir == "" || target.IsZero() {
		return nil
	}

	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return l.fail(l.Name(), target, err)
	}

	var findings []model.Finding
	for _, entry := range entries {
		if ctx.Err() != nil {
			return l.fail(l.Name(), target, ctx.Err())
		}
		if !entry.Type().IsRegular() {
			continue
		}

		found, err := fileContains(ctx, filepath.Join(l.dir, entry.Name()), target.Value())
		if err != nil {
			l.logger.Debug("skipping corpus file",
				"source", l.Name(),
				"file", entry.Name(),
				"error", err,
			)
			continue
		}
		if found {
			findings = append(findings, model.Finding{
				Name:       "Local: " + entry.Name(),
				Year:       model.YearUnknown,
				SourceType: localCorpusType,
				DataLeaked: []string{model.DataClassUnknown},
			})
		}
	}
	return findings
}

// fileContains reports whether any line of the file at path contains needle.
func fileContains(ctx context.Context, path, needle string) (bool, error) {
	f, err := os.Open(path) //nolint:gosec // corpus directory is chosen by the user
	if err != nil {
		return false, err
	}
	defer f.Close()

	reader := bufio.NewReader(transform.NewReader(f, unicode.BOMOverride(transform.Nop)))
	for {
		line, readErr := reader.ReadString('\n')
		if strings.Contains(strings.ToValidUTF8(line, ""), needle) {
			return true, nil
		}
		if errors.Is(readErr, io.EOF) {
			return false, nil
		}
		if readErr != nil {
			return false, fmt.Errorf("failed to read %s: %w", filepath.Base(path), readErr)
		}
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
	}
}
