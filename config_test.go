// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package compose

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeConfigFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %s", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config is invalid: %s", err)
	}
	if cfg.Charset != CharsetUTF8 {
		t.Errorf("unexpected charset. Expected: %s, got: %s", CharsetUTF8, cfg.Charset)
	}
	if cfg.Inline != DefaultInlineConfig() {
		t.Errorf("unexpected inline config: %+v", cfg.Inline)
	}
	if cfg.Resources.Default != LookupClasspath {
		t.Errorf("unexpected default lookup. Expected: %s, got: %s", LookupClasspath, cfg.Resources.Default)
	}
	if !slices.Equal(cfg.Templates.Engines, []string{EngineHTML, EngineMarkdown, EngineText}) {
		t.Errorf("unexpected engines: %v", cfg.Templates.Engines)
	}
}

func TestParseConfig(t *testing.T) {
	t.Setenv("COMPOSE_TEST_DEFAULT_SUBJECT", "Hello from env")
	cfg, err := ParseConfig([]byte(`
charset: ISO-8859-1
inline:
  css: true
  attach_images: false
  base64_images: true
subject:
  html_title: false
  default: ${COMPOSE_TEST_DEFAULT_SUBJECT}
templates:
  prefix: templates/
  suffix: .html
ids:
  kind: sequence
  start: 10
`))
	if err != nil {
		t.Fatalf("ParseConfig failed: %s", err)
	}
	if cfg.Charset != CharsetISO88591 {
		t.Errorf("unexpected charset. Expected: %s, got: %s", CharsetISO88591, cfg.Charset)
	}
	if cfg.Inline != (InlineConfig{CSS: true, Base64Images: true}) {
		t.Errorf("unexpected inline config: %+v", cfg.Inline)
	}
	if cfg.Subject.HTMLTitle || cfg.Subject.TextPrefix != "Subject:" || cfg.Subject.Default != "Hello from env" {
		t.Errorf("unexpected subject config: %+v", cfg.Subject)
	}
	if cfg.Templates.Prefix != "templates/" || cfg.Templates.Suffix != ".html" {
		t.Errorf("unexpected template config: %+v", cfg.Templates)
	}
	if len(cfg.Templates.Engines) != 3 {
		t.Errorf("missing keys are supposed to keep their default, got engines: %v", cfg.Templates.Engines)
	}
	if gen := cfg.IDs.idGenerator(); gen.Next() != "10" {
		t.Error("expected a sequence generator starting at 10")
	}
}

func TestParseConfig_invalid(t *testing.T) {
	if _, err := ParseConfig([]byte("inline: [not, a, map")); err == nil {
		t.Error("ParseConfig was supposed to fail on invalid YAML")
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "conf.d"), 0o700); err != nil {
		t.Fatalf("failed to create include directory: %s", err)
	}
	writeConfigFile(t, dir, "conf.d/resources.yaml", `
resources:
  classpath_dir: /srv/templates
  string_lookups: [literal]
subject:
  default: Included default
`)
	path := writeConfigFile(t, dir, "compose.yaml", `
subject:
  default: Main default
includes:
  - conf.d/*.yaml
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %s", err)
	}
	if cfg.Resources.ClasspathDir != "/srv/templates" {
		t.Errorf("include failed to fill the classpath dir, got: %q", cfg.Resources.ClasspathDir)
	}
	if cfg.Subject.Default != "Main default" {
		t.Errorf("include is not supposed to override the main file. Expected: %s, got: %s", "Main default",
			cfg.Subject.Default)
	}
	if !slices.Contains(cfg.Resources.StringLookups, "literal") || !slices.Contains(cfg.Resources.StringLookups, LookupString) {
		t.Errorf("include lists are supposed to be appended, got: %v", cfg.Resources.StringLookups)
	}
}

func TestLoadConfig_errors(t *testing.T) {
	dir := t.TempDir()
	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
			t.Error("LoadConfig was supposed to fail on a missing file")
		}
	})
	t.Run("broken include", func(t *testing.T) {
		writeConfigFile(t, dir, "broken.yaml", "charset: [")
		path := writeConfigFile(t, dir, "main.yaml", "includes: [broken.yaml]")
		if _, err := LoadConfig(path); err == nil {
			t.Error("LoadConfig was supposed to fail on a broken include")
		}
	})
}

func TestConfig_Merge(t *testing.T) {
	base := DefaultConfig()
	merged, err := base.Merge(Config{
		Charset:   CharsetWindows1252,
		Templates: TemplateConfig{Prefix: "mail/"},
		IDs:       IDConfig{Kind: IDKindUUID, Domain: "example.com"},
	})
	if err != nil {
		t.Fatalf("Merge failed: %s", err)
	}
	if merged.Charset != CharsetWindows1252 || merged.Templates.Prefix != "mail/" || merged.IDs.Kind != IDKindUUID {
		t.Errorf("Merge failed to override the values: %+v", merged)
	}
	if merged.Resources.Default != LookupClasspath || len(merged.Templates.Engines) != 3 {
		t.Errorf("Merge is not supposed to clear values that are empty in the override: %+v", merged)
	}
	if base.Charset != CharsetUTF8 {
		t.Error("Merge modified the receiver")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown charset", func(c *Config) { c.Charset = "x-no-such-charset" }},
		{"unknown engine", func(c *Config) { c.Templates.Engines = []string{"jinja"} }},
		{"unknown id kind", func(c *Config) { c.IDs.Kind = "snowflake" }},
		{"unknown default lookup", func(c *Config) { c.Resources.Default = "s3" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate was supposed to fail")
			}
		})
	}
}

func TestIDConfig_idGenerator(t *testing.T) {
	if _, ok := (IDConfig{Kind: IDKindUUID}).idGenerator().(*UUIDGenerator); !ok {
		t.Error("expected a UUIDGenerator")
	}
	if _, ok := (IDConfig{Kind: IDKindRandom, Length: 12}).idGenerator().(*RandomIDGenerator); !ok {
		t.Error("expected a RandomIDGenerator")
	}
	if _, ok := (IDConfig{}).idGenerator().(*RandomIDGenerator); !ok {
		t.Error("expected a RandomIDGenerator as default")
	}
}
