package config

import (
	"fmt"
	"slices"
	"time"
)

// Names of the configurable lookups. The breach source names mirror the
// identifiers used by the source package.
const (
	SourcePwnedPasswords = "pwnedpasswords"
	SourceEmailRep       = "emailrep"
	SourceLeakCheck      = "leakcheck"
	SourceProxyNova      = "proxynova"
	SourceLocalCorpus    = "localcorpus"
	SourceLocalIndex     = "localindex"
	SourceHIBP           = "hibp"
	SourceRDAP           = "rdap"
	SourceGravatar       = "gravatar"
)

// SourceConfig holds the settings for one source.
type SourceConfig struct {
	// Enabled turns the source on or off. Nil means enabled.
	Enabled *bool `yaml:"enabled,omitempty"`

	// Endpoint overrides the base URL of the upstream API.
	Endpoint string `yaml:"endpoint,omitempty"`

	// Timeout overrides the per-source lookup deadline, e.g. "3s".
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// APIKey is sent to sources that accept one (hibp, emailrep).
	APIKey string `yaml:"apiKey,omitempty"`
}

// IsEnabled reports whether the source is enabled.
func (sc SourceConfig) IsEnabled() bool {
	return sc.Enabled == nil || *sc.Enabled
}

// File represents the structure of the .leakscan configuration file.
//
// Example:
//
//	corpusDir: /srv/breaches
//	defaults:
//	  timeout: 10s
//	sources:
//	  proxynova:
//	    enabled: false
//	  hibp:
//	    apiKey: xxxxxxxx
//	    timeout: 4s
type File struct {
	// CorpusDir overrides the directory of plain breach dump files.
	CorpusDir string `yaml:"corpusDir,omitempty"`

	// IndexDir overrides the directory of the SQLite breach index.
	IndexDir string `yaml:"indexDir,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Sources maps source names to their settings.
	Sources map[string]SourceConfig `yaml:"sources,omitempty"`

	// Defaults are applied to every source before its own section.
	Defaults SourceConfig `yaml:"defaults,omitempty"`
}

// NewFile creates an empty configuration file.
func NewFile() *File {
	return &File{
		Sources: make(map[string]SourceConfig),
	}
}

// KnownSources returns every name accepted in the sources section.
func KnownSources() []string {
	return []string{
		SourcePwnedPasswords,
		SourceEmailRep,
		SourceLeakCheck,
		SourceProxyNova,
		SourceLocalCorpus,
		SourceLocalIndex,
		SourceHIBP,
		SourceRDAP,
		SourceGravatar,
	}
}

// GetSourceConfig returns the settings for a source, with the defaults
// merged underneath its own section.
func (cf *File) GetSourceConfig(name string) SourceConfig {
	result := cf.Defaults

	sc, ok := cf.Sources[name]
	if !ok {
		return result
	}

	if sc.Enabled != nil {
		result.Enabled = sc.Enabled
	}
	if sc.Endpoint != "" {
		result.Endpoint = sc.Endpoint
	}
	if sc.Timeout > 0 {
		result.Timeout = sc.Timeout
	}
	if sc.APIKey != "" {
		result.APIKey = sc.APIKey
	}

	return result
}

// Validate checks the source names and timeouts in the file.
func (cf *File) Validate() error {
	if cf.Defaults.Timeout < 0 {
		return fmt.Errorf("%w: defaults", ErrInvalidSourceTimeout)
	}

	known := KnownSources()
	for name, sc := range cf.Sources {
		if !slices.Contains(known, name) {
			return fmt.Errorf("%w: %q", ErrUnknownSource, name)
		}
		if sc.Timeout < 0 {
			return fmt.Errorf("%w: %s", ErrInvalidSourceTimeout, name)
		}
	}
	return nil
}
