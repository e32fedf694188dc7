package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// Changing a default should make this test fail so the change is intentional.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default Timeout is 8 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 8*time.Second {
			t.Errorf("expected Timeout to be 8s, got %v", cfg.Timeout)
		}
	})

	t.Run("default TimelineTimeout is 5 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.TimelineTimeout != 5*time.Second {
			t.Errorf("expected TimelineTimeout to be 5s, got %v", cfg.TimelineTimeout)
		}
	})

	t.Run("default BatchSize is 4", func(t *testing.T) {
		t.Parallel()
		if cfg.BatchSize != 4 {
			t.Errorf("expected BatchSize to be 4, got %d", cfg.BatchSize)
		}
	})

	t.Run("default TargetType is auto", func(t *testing.T) {
		t.Parallel()
		if cfg.TargetType != TypeAuto {
			t.Errorf("expected TargetType to be auto, got %q", cfg.TargetType)
		}
	})

	t.Run("transport is direct by default", func(t *testing.T) {
		t.Parallel()
		if cfg.UseTor || cfg.TorProxyAddress != "" {
			t.Errorf("expected direct connections, got UseTor=%v proxy=%q", cfg.UseTor, cfg.TorProxyAddress)
		}
	})

	t.Run("local corpus lives in the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if cfg.CorpusDir != filepath.Join(XDGDataDir(), CorpusDirName) {
			t.Errorf("unexpected CorpusDir %q", cfg.CorpusDir)
		}
		if cfg.IndexDir != XDGDataDir() {
			t.Errorf("unexpected IndexDir %q", cfg.IndexDir)
		}
		if !cfg.UseIndex {
			t.Error("expected UseIndex to be true")
		}
	})

	t.Run("no API keys by default", func(t *testing.T) {
		t.Parallel()
		if cfg.HIBPAPIKey != "" || cfg.EmailRepAPIKey != "" {
			t.Error("expected empty API keys")
		}
	})

	t.Run("default UserAgent and MaxBodySize", func(t *testing.T) {
		t.Parallel()
		if cfg.UserAgent != DefaultUserAgent {
			t.Errorf("unexpected UserAgent %q", cfg.UserAgent)
		}
		if cfg.MaxBodySize != 5*1024*1024 {
			t.Errorf("unexpected MaxBodySize %d", cfg.MaxBodySize)
		}
	})

	t.Run("Sources is initialized", func(t *testing.T) {
		t.Parallel()
		if cfg.Sources == nil || cfg.Sources.Sources == nil {
			t.Error("expected Sources to be initialized")
		}
	})
}

// TestConfigValidate tests the Validate method.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := NewConfig()
		cfg.Targets = []string{"user@example.com"}
		return cfg
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{name: "valid config", modify: func(*Config) {}},
		{name: "no targets", modify: func(c *Config) { c.Targets = nil }, wantErr: ErrNoTarget},
		{name: "empty target", modify: func(c *Config) { c.Targets = []string{"a@b.co", ""} }, wantErr: ErrNoTarget},
		{name: "forced password type", modify: func(c *Config) { c.TargetType = "Password" }},
		{name: "phone cannot be forced", modify: func(c *Config) { c.TargetType = "phone" }, wantErr: ErrInvalidTargetType},
		{name: "zero timeout", modify: func(c *Config) { c.Timeout = 0 }, wantErr: ErrInvalidTimeout},
		{name: "negative batch size", modify: func(c *Config) { c.BatchSize = -1 }, wantErr: ErrInvalidBatchSize},
		{
			name:    "json and markdown",
			modify:  func(c *Config) { c.JSONReport, c.MarkdownReport = true, true },
			wantErr: ErrConflictingReportFormats,
		},
		{
			name:    "tor and socks proxy",
			modify:  func(c *Config) { c.UseTor, c.TorProxyAddress = true, "127.0.0.1:9050" },
			wantErr: ErrConflictingTransports,
		},
		{
			name:    "tor without startup timeout",
			modify:  func(c *Config) { c.UseTor, c.TorStartupTimeout = true, 0 },
			wantErr: ErrInvalidTorStartupTimeout,
		},
		{name: "socks proxy alone", modify: func(c *Config) { c.TorProxyAddress = "127.0.0.1:9050" }},
		{name: "negative max body size", modify: func(c *Config) { c.MaxBodySize = -1 }, wantErr: ErrInvalidMaxBodySize},
		{name: "zero max body size", modify: func(c *Config) { c.MaxBodySize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestConfigApplyEnv tests API keys read from the environment.
func TestConfigApplyEnv(t *testing.T) {
	t.Parallel()

	t.Run("sets keys from the environment", func(t *testing.T) {
		t.Parallel()

		env := map[string]string{
			EnvHIBPAPIKey:     " hibp-key ",
			EnvEmailRepAPIKey: "rep-key",
		}
		cfg := NewConfig()
		cfg.ApplyEnv(func(k string) string { return env[k] })

		if cfg.HIBPAPIKey != "hibp-key" {
			t.Errorf("unexpected HIBPAPIKey %q", cfg.HIBPAPIKey)
		}
		if cfg.EmailRepAPIKey != "rep-key" {
			t.Errorf("unexpected EmailRepAPIKey %q", cfg.EmailRepAPIKey)
		}
	})

	t.Run("unset variables keep file values", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.HIBPAPIKey = "from-file"
		cfg.ApplyEnv(func(string) string { return "" })

		if cfg.HIBPAPIKey != "from-file" {
			t.Errorf("unexpected HIBPAPIKey %q", cfg.HIBPAPIKey)
		}
	})
}

// TestConfigApplyFile tests copying global file settings into the config.
func TestConfigApplyFile(t *testing.T) {
	t.Parallel()

	t.Run("copies non-empty values", func(t *testing.T) {
		t.Parallel()

		f := NewFile()
		f.CorpusDir = "/srv/breaches"
		f.UserAgent = "custom/1.0"
		f.Sources[SourceHIBP] = SourceConfig{APIKey: "hibp-key"}

		cfg := NewConfig()
		cfg.ApplyFile(f)

		if cfg.CorpusDir != "/srv/breaches" {
			t.Errorf("unexpected CorpusDir %q", cfg.CorpusDir)
		}
		if cfg.IndexDir != XDGDataDir() {
			t.Errorf("IndexDir should keep its default, got %q", cfg.IndexDir)
		}
		if cfg.UserAgent != "custom/1.0" {
			t.Errorf("unexpected UserAgent %q", cfg.UserAgent)
		}
		if cfg.HIBPAPIKey != "hibp-key" {
			t.Errorf("unexpected HIBPAPIKey %q", cfg.HIBPAPIKey)
		}
		if cfg.Sources != f {
			t.Error("expected Sources to point at the loaded file")
		}
	})

	t.Run("nil file is ignored", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ApplyFile(nil)
		if cfg.Sources == nil {
			t.Error("expected default Sources to remain")
		}
	})
}

// TestConfigSourceSettings tests the per-source accessors.
func TestConfigSourceSettings(t *testing.T) {
	t.Parallel()

	disabled := false
	cfg := NewConfig()
	cfg.ApplyFile(&File{
		Defaults: SourceConfig{Timeout: 10 * time.Second},
		Sources: map[string]SourceConfig{
			SourceProxyNova: {Enabled: &disabled},
			SourceHIBP:      {Timeout: 3 * time.Second, Endpoint: "http://localhost:8080"},
		},
	})

	if got := cfg.SourceTimeout(SourceHIBP); got != 3*time.Second {
		t.Errorf("hibp timeout = %v, want 3s", got)
	}
	if got := cfg.SourceTimeout(SourceLeakCheck); got != 10*time.Second {
		t.Errorf("leakcheck timeout = %v, want defaults 10s", got)
	}

	cfg.Timeout = 2 * time.Second
	if got := cfg.SourceTimeout(SourceLeakCheck); got != 2*time.Second {
		t.Errorf("leakcheck timeout = %v, want overridden 2s", got)
	}
	if got := cfg.SourceTimeout(SourceHIBP); got != 3*time.Second {
		t.Errorf("hibp timeout = %v, want its own 3s", got)
	}
	if cfg.SourceEnabled(SourceProxyNova) {
		t.Error("expected proxynova to be disabled")
	}
	if !cfg.SourceEnabled(SourceEmailRep) {
		t.Error("expected emailrep to be enabled")
	}
	if got := cfg.SourceEndpoint(SourceHIBP); got != "http://localhost:8080" {
		t.Errorf("unexpected endpoint %q", got)
	}

	cfg.Sources = nil
	if got := cfg.SourceTimeout(SourceHIBP); got != cfg.Timeout {
		t.Errorf("expected global timeout without a file, got %v", got)
	}
	if !cfg.SourceEnabled(SourceHIBP) || cfg.SourceEndpoint(SourceHIBP) != "" {
		t.Error("expected defaults without a file")
	}
}

// TestFileGetSourceConfig tests merging defaults under source sections.
func TestFileGetSourceConfig(t *testing.T) {
	t.Parallel()

	enabled := true
	disabled := false

	t.Run("unknown source returns defaults", func(t *testing.T) {
		t.Parallel()

		cf := &File{Defaults: SourceConfig{Timeout: 2 * time.Second, Enabled: &disabled}}
		sc := cf.GetSourceConfig(SourceLeakCheck)
		if sc.Timeout != 2*time.Second || sc.IsEnabled() {
			t.Errorf("unexpected config %+v", sc)
		}
	})

	t.Run("source section overrides defaults", func(t *testing.T) {
		t.Parallel()

		cf := &File{
			Defaults: SourceConfig{Timeout: 2 * time.Second, Enabled: &disabled, Endpoint: "http://default"},
			Sources: map[string]SourceConfig{
				SourceLeakCheck: {Enabled: &enabled, APIKey: "k"},
			},
		}
		sc := cf.GetSourceConfig(SourceLeakCheck)
		if !sc.IsEnabled() {
			t.Error("expected source to be enabled")
		}
		if sc.Timeout != 2*time.Second {
			t.Errorf("expected inherited timeout, got %v", sc.Timeout)
		}
		if sc.Endpoint != "http://default" || sc.APIKey != "k" {
			t.Errorf("unexpected config %+v", sc)
		}
	})

	t.Run("nil enabled means enabled", func(t *testing.T) {
		t.Parallel()

		if !(SourceConfig{}).IsEnabled() {
			t.Error("expected zero SourceConfig to be enabled")
		}
	})
}

// TestFileValidate tests validation of the configuration file.
func TestFileValidate(t *testing.T) {
	t.Parallel()

	t.Run("known sources pass", func(t *testing.T) {
		t.Parallel()

		cf := NewFile()
		for _, name := range KnownSources() {
			cf.Sources[name] = SourceConfig{Timeout: time.Second}
		}
		if err := cf.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("unknown source is rejected", func(t *testing.T) {
		t.Parallel()

		cf := NewFile()
		cf.Sources["pastebin"] = SourceConfig{}
		err := cf.Validate()
		if !errors.Is(err, ErrUnknownSource) {
			t.Fatalf("expected ErrUnknownSource, got %v", err)
		}
		if !strings.Contains(err.Error(), "pastebin") {
			t.Errorf("expected source name in error, got %v", err)
		}
	})

	t.Run("negative timeout is rejected", func(t *testing.T) {
		t.Parallel()

		cf := NewFile()
		cf.Sources[SourceHIBP] = SourceConfig{Timeout: -time.Second}
		if err := cf.Validate(); !errors.Is(err, ErrInvalidSourceTimeout) {
			t.Errorf("expected ErrInvalidSourceTimeout, got %v", err)
		}

		cf = NewFile()
		cf.Defaults.Timeout = -time.Second
		if err := cf.Validate(); !errors.Is(err, ErrInvalidSourceTimeout) {
			t.Errorf("expected ErrInvalidSourceTimeout for defaults, got %v", err)
		}
	})
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.leakscan")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".leakscan")
		content := `corpusDir: /srv/breaches
defaults:
  timeout: 10s
sources:
  proxynova:
    enabled: false
  hibp:
    apiKey: "secret"
    timeout: 4s
    endpoint: http://localhost:9000
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.CorpusDir != "/srv/breaches" {
			t.Errorf("unexpected corpusDir %q", cfg.CorpusDir)
		}
		if cfg.Defaults.Timeout != 10*time.Second {
			t.Errorf("expected default timeout 10s, got %v", cfg.Defaults.Timeout)
		}
		if cfg.GetSourceConfig(SourceProxyNova).IsEnabled() {
			t.Error("expected proxynova to be disabled")
		}
		hibp := cfg.GetSourceConfig(SourceHIBP)
		if hibp.APIKey != "secret" || hibp.Timeout != 4*time.Second || hibp.Endpoint != "http://localhost:9000" {
			t.Errorf("unexpected hibp config %+v", hibp)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".leakscan")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("initializes nil Sources map", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".leakscan")
		if err := os.WriteFile(configPath, []byte("defaults:\n  timeout: 1s\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Sources == nil {
			t.Error("expected Sources map to be initialized")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("defaults: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})

	t.Run("search does not panic", func(_ *testing.T) {
		// The result depends on the machine running the tests.
		_ = FindConfigFile("")
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if !strings.HasSuffix(XDGDataDir(), AppName) {
		t.Errorf("unexpected data dir %q", XDGDataDir())
	}
	if !strings.HasSuffix(XDGConfigDir(), AppName) {
		t.Errorf("unexpected config dir %q", XDGConfigDir())
	}
}
