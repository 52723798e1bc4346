// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package compose

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/go-compose/compose/log"
)

// ComposerOption returns a function that can be used for grouping Composer options
type ComposerOption func(*Composer)

// Composer resolves the Content of messages. It wires the resolvers, the template engines,
// the Inliner and the Translator described by a Config.
type Composer struct {
	config     Config
	classpath  fs.FS
	funcs      FuncMap
	ids        IDGenerator
	mime       MimeDetector
	logger     log.Logger
	resources  *ResolverChain
	templates  *ResolverChain
	translator *Translator
}

// NewComposer returns a new Composer for the given Config.
//
// Parameters:
//   - cfg: The Config, usually returned by LoadConfig or DefaultConfig.
//   - opts: Optional ComposerOption functions.
//
// Returns:
//   - The Composer.
//   - An error if the Config is invalid or the resolvers can't be set up.
func NewComposer(cfg Config, opts ...ComposerOption) (*Composer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	c := &Composer{config: cfg}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(c)
	}
	if c.classpath == nil && cfg.Resources.ClasspathDir != "" {
		c.classpath = os.DirFS(cfg.Resources.ClasspathDir)
	}
	if c.ids == nil {
		c.ids = cfg.IDs.idGenerator()
	}
	if c.mime == nil {
		c.mime = DefaultMimeDetector()
	}
	charset := cfg.Charset
	if charset == "" {
		charset = CharsetUTF8
	}

	var err error
	if c.resources, err = c.resolverChain(nil); err != nil {
		return nil, err
	}
	if c.templates, err = c.resolverChain(func(r Resolver) Resolver {
		return NewPrefixedResolver(r, cfg.Templates.Prefix, cfg.Templates.Suffix)
	}); err != nil {
		return nil, err
	}

	engines := make([]TemplateEngine, 0, len(cfg.Templates.Engines))
	for _, name := range cfg.Templates.Engines {
		switch name {
		case EngineHTML:
			engines = append(engines, NewHTMLTemplateEngine(c.funcs))
		case EngineText:
			engines = append(engines, NewTextTemplateEngine(c.funcs))
		case EngineMarkdown:
			engines = append(engines, NewMarkdownEngine(c.funcs))
		}
	}

	templates := NewTemplateResolver(c.templates, engines,
		WithTemplateCharset(charset), WithTemplateLogger(c.logger))
	inliner := NewInliner(c.resources,
		WithInlineConfig(cfg.Inline),
		WithIDGenerator(c.ids),
		WithMimeDetector(c.mime),
		WithInlinerCharset(charset),
		WithInlinerLogger(c.logger))
	c.translator = NewTranslator(templates, inliner, WithTranslatorLogger(c.logger))
	return c, nil
}

// WithClasspath sets the fs.FS served by the classpath resolver. It takes precedence over
// the classpath directory of the Config.
func WithClasspath(fsys fs.FS) ComposerOption {
	return func(c *Composer) {
		c.classpath = fsys
	}
}

// WithFuncs sets the functions available to the templates
func WithFuncs(funcs FuncMap) ComposerOption {
	return func(c *Composer) {
		c.funcs = funcs
	}
}

// WithComposerLogger sets a logger for debug output of every stage
func WithComposerLogger(logger log.Logger) ComposerOption {
	return func(c *Composer) {
		c.logger = logger
	}
}

// WithComposerIDGenerator overrides the IDGenerator described by the Config
func WithComposerIDGenerator(ids IDGenerator) ComposerOption {
	return func(c *Composer) {
		if ids != nil {
			c.ids = ids
		}
	}
}

// WithComposerMimeDetector overrides the default MimeDetector
func WithComposerMimeDetector(detector MimeDetector) ComposerOption {
	return func(c *Composer) {
		if detector != nil {
			c.mime = detector
		}
	}
}

// Resources returns the ResolverChain used for stylesheets and images
func (c *Composer) Resources() *ResolverChain {
	return c.resources
}

// Translate resolves a Content without touching any message
func (c *Composer) Translate(content Content) (Content, []*Attachment, error) {
	return c.translator.Translate(content)
}

// Compose resolves the Content of the Msg in place.
//
// Templates are rendered, stylesheets and images are inlined and the attachments created
// for the images are added to the embeds of the Msg. If the Msg has no subject, it is
// filled from the resolved Content as described by the SubjectConfig. On error the Msg is
// left unchanged.
func (c *Composer) Compose(m *Msg) error {
	content := m.GetContent()
	if content == nil {
		return newError(ErrNoContentFound, "", errors.New("message has no content"))
	}
	resolved, attachments, err := c.translator.Translate(content)
	if err != nil {
		return fmt.Errorf("failed to compose message: %w", err)
	}

	subjectCfg := c.config.Subject
	subjectCfg.Explicit = m.GetSubject()
	subject, resolved, ok := AutofillSubject(resolved, subjectCfg)
	if ok && subject != subjectCfg.Explicit {
		c.debugf(log.StageSubject, "using subject %q", subject)
		m.Subject(subject)
	}
	m.SetContent(resolved)
	m.addEmbeds(attachments...)
	return nil
}

// resolverChain builds a ResolverChain from the ResourceConfig. The optional wrap function
// is applied to the classpath and file resolvers.
func (c *Composer) resolverChain(wrap func(Resolver) Resolver) (*ResolverChain, error) {
	if wrap == nil {
		wrap = func(r Resolver) Resolver { return r }
	}
	rc := c.config.Resources
	var opts []ResolverOption
	register := func(r Resolver, lookups []string) {
		if slices.Contains(lookups, rc.Default) {
			c.debugf(log.StageResolve, "registering default resolver for %v", lookups)
			opts = append(opts, WithDefaultResolver(r))
			return
		}
		c.debugf(log.StageResolve, "registering resolver for %v", lookups)
		opts = append(opts, WithResolver(r))
	}
	if c.classpath != nil {
		register(wrap(NewFSResolver(c.classpath, rc.ClasspathLookups...)), rc.ClasspathLookups)
	}
	register(wrap(NewFileResolver(rc.FileLookups...)), rc.FileLookups)
	opts = append(opts, WithResolver(NewStringResolver(rc.StringLookups...)))

	chain, err := NewResolverChain(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to set up resolvers: %w", err)
	}
	return chain, nil
}

// debugf logs a debug message if a logger is set
func (c *Composer) debugf(stage log.Stage, format string, args ...interface{}) {
	if c.logger == nil {
		return
	}
	c.logger.Debugf(log.Log{Stage: stage, Format: format, Messages: args})
}
