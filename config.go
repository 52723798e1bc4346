// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package compose

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"dario.cat/mergo"
	"golang.org/x/text/encoding/htmlindex"
	"gopkg.in/yaml.v3"
)

// List of IDConfig kinds
const (
	IDKindSequence = "sequence"
	IDKindRandom   = "random"
	IDKindUUID     = "uuid"
)

// List of template engine names usable in TemplateConfig
const (
	EngineHTML     = "html"
	EngineText     = "text"
	EngineMarkdown = "markdown"
)

// Config is the configuration of a Composer. It is built once, usually by LoadConfig,
// and not modified afterwards.
type Config struct {
	Charset   Charset        `yaml:"charset"`
	Inline    InlineConfig   `yaml:"inline"`
	Subject   SubjectConfig  `yaml:"subject"`
	Resources ResourceConfig `yaml:"resources"`
	Templates TemplateConfig `yaml:"templates"`
	IDs       IDConfig       `yaml:"ids"`

	// Includes lists other configuration files (glob patterns allowed) that provide the
	// values left empty by this file
	Includes []string `yaml:"includes,omitempty"`
}

// ResourceConfig configures the resolvers
type ResourceConfig struct {
	// ClasspathDir is the directory served by the classpath resolver, if no fs.FS is
	// given to the Composer
	ClasspathDir string `yaml:"classpath_dir"`

	ClasspathLookups []string `yaml:"classpath_lookups"`
	FileLookups      []string `yaml:"file_lookups"`
	StringLookups    []string `yaml:"string_lookups"`

	// Default is the lookup of the resolver used for references without lookup tag
	Default string `yaml:"default"`
}

// TemplateConfig configures the template resolution
type TemplateConfig struct {
	// Engines lists the template engines in detection order
	Engines []string `yaml:"engines"`

	// Prefix and Suffix are applied to the paths of the templates
	Prefix string `yaml:"prefix"`
	Suffix string `yaml:"suffix"`
}

// IDConfig configures the generation of Content-IDs
type IDConfig struct {
	Kind   string `yaml:"kind"`
	Start  int64  `yaml:"start"`
	Length int    `yaml:"length"`
	Domain string `yaml:"domain"`
}

// DefaultConfig returns the default Config
func DefaultConfig() Config {
	return Config{
		Charset: CharsetUTF8,
		Inline:  DefaultInlineConfig(),
		Subject: DefaultSubjectConfig(),
		Resources: ResourceConfig{
			ClasspathLookups: []string{LookupClasspath},
			FileLookups:      []string{LookupFile},
			StringLookups:    []string{LookupString, "s"},
			Default:          LookupClasspath,
		},
		Templates: TemplateConfig{
			Engines: []string{EngineHTML, EngineMarkdown, EngineText},
		},
		IDs: IDConfig{Kind: IDKindRandom, Length: 16},
	}
}

// LoadConfig loads the Config from a YAML file.
//
// Environment variables in the file are expanded. Keys missing from the file keep their
// default value. The files listed in Includes, relative to the directory of the file,
// fill the values that are still empty.
//
// Parameters:
//   - path: The path of the YAML file.
//
// Returns:
//   - The loaded Config.
//   - An error if a file can't be read, parsed or merged.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, err
	}

	baseDir := filepath.Dir(path)
	for _, include := range cfg.Includes {
		includePath := include
		if !filepath.IsAbs(includePath) {
			includePath = filepath.Join(baseDir, include)
		}
		matches, err := filepath.Glob(includePath)
		if err != nil {
			return Config{}, fmt.Errorf("invalid include pattern %s: %w", include, err)
		}
		for _, match := range matches {
			includeCfg, err := loadRawConfig(match)
			if err != nil {
				return Config{}, fmt.Errorf("failed to load include %s: %w", match, err)
			}
			if err = mergo.Merge(&cfg, includeCfg, mergo.WithAppendSlice); err != nil {
				return Config{}, fmt.Errorf("failed to merge include %s: %w", match, err)
			}
		}
	}
	return cfg, nil
}

// ParseConfig parses a YAML document onto the DefaultConfig
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// loadRawConfig loads an included file without defaults
func loadRawConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg Config
	if err = yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Merge returns a copy of the Config in which the non-empty values of o override the
// values of c
func (c Config) Merge(o Config) (Config, error) {
	merged := c
	merged.Includes = slices.Clone(c.Includes)
	if err := mergo.Merge(&merged, o, mergo.WithOverride); err != nil {
		return c, fmt.Errorf("failed to merge config: %w", err)
	}
	return merged, nil
}

// Validate checks the Config for unsupported values
func (c Config) Validate() error {
	if c.Charset != "" {
		if _, err := htmlindex.Get(c.Charset.String()); err != nil {
			return fmt.Errorf("unsupported charset %q: %w", c.Charset, err)
		}
	}
	for _, engine := range c.Templates.Engines {
		switch engine {
		case EngineHTML, EngineText, EngineMarkdown:
		default:
			return fmt.Errorf("unknown template engine %q", engine)
		}
	}
	switch c.IDs.Kind {
	case "", IDKindSequence, IDKindRandom, IDKindUUID:
	default:
		return fmt.Errorf("unknown id generator kind %q", c.IDs.Kind)
	}
	if def := c.Resources.Default; def != "" && !slices.Contains(c.Resources.ClasspathLookups, def) &&
		!slices.Contains(c.Resources.FileLookups, def) {
		return fmt.Errorf("default resolver %q is neither a classpath nor a file lookup", def)
	}
	return nil
}

// idGenerator returns the IDGenerator described by the IDConfig
func (c IDConfig) idGenerator() IDGenerator {
	switch c.Kind {
	case IDKindSequence:
		return NewSequenceIDGenerator(c.Start)
	case IDKindUUID:
		return NewUUIDGenerator(c.Domain)
	default:
		return NewRandomIDGenerator(c.Length)
	}
}
