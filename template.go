// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package compose

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/go-compose/compose/log"
)

// TemplateEngine renders templates of one template language.
//
// Supports is only asked if more than one engine is registered with a TemplateResolver.
// It recognizes a template by the extension of its reference or by its content.
type TemplateEngine interface {
	// Name returns a short name of the engine used in logs and errors
	Name() string

	// Supports checks if the engine can render the given template
	Supports(ref ResourceReference, source string) bool

	// Render renders the template source with the given model
	Render(ref ResourceReference, source string, model any) (string, error)
}

// TemplateResolverOption returns a function that can be used for grouping TemplateResolver
// options
type TemplateResolverOption func(*TemplateResolver)

// TemplateResolver loads and renders the variants of a TemplateContent
type TemplateResolver struct {
	loader  ResourceLoader
	engines []TemplateEngine
	charset Charset
	logger  log.Logger
}

// NewTemplateResolver returns a new TemplateResolver. The engines are asked in the given
// order.
func NewTemplateResolver(loader ResourceLoader, engines []TemplateEngine, opts ...TemplateResolverOption) *TemplateResolver {
	t := &TemplateResolver{
		loader:  loader,
		engines: engines,
		charset: CharsetUTF8,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(t)
	}
	return t
}

// WithTemplateCharset sets the charset of the template files
func WithTemplateCharset(charset Charset) TemplateResolverOption {
	return func(t *TemplateResolver) {
		t.charset = charset
	}
}

// WithTemplateLogger sets a logger for debug output
func WithTemplateLogger(logger log.Logger) TemplateResolverOption {
	return func(t *TemplateResolver) {
		t.logger = logger
	}
}

// Resolve renders every variant of the TemplateContent.
//
// A variant whose template does not exist is skipped. A template that exists but can't be
// read, that no engine recognizes or that fails to render aborts the resolution.
//
// Parameters:
//   - tc: The TemplateContent to resolve.
//
// Returns:
//   - A MultiContent with one variant per found template, in declaration order.
//   - An error with reason ErrNoContentFound if no template exists, or ErrResourceRead,
//     ErrNoTemplateEngineMatched or ErrTemplateParsingFailed.
func (t *TemplateResolver) Resolve(tc *TemplateContent) (*MultiContent, error) {
	result := &MultiContent{}
	var tried []string
	for _, tv := range tc.Variants {
		ref, source, found, err := t.load(tv)
		if err != nil {
			return nil, err
		}
		if !found {
			for _, c := range tv.Candidates {
				tried = append(tried, c.String())
			}
			t.debugf("no template found for variant %q", tv.Variant.Name)
			continue
		}

		engine, ok := t.engineFor(ref, source)
		if !ok {
			return nil, newError(ErrNoTemplateEngineMatched, ref.String(), nil).withVariant(tv.Variant.Name)
		}
		t.debugf("rendering template %q with engine %q", ref.String(), engine.Name())
		body, err := engine.Render(ref, source, tc.Model)
		if err != nil {
			return nil, newError(ErrTemplateParsingFailed, ref.String(), err).withVariant(tv.Variant.Name)
		}
		result.Variants = append(result.Variants, variantContent(tv.Variant, body, ref))
	}
	if len(result.Variants) == 0 {
		return nil, newError(ErrNoContentFound, strings.Join(tried, ", "), nil)
	}
	return result, nil
}

// load returns the first candidate of the variant that exists, decoded to UTF-8
func (t *TemplateResolver) load(tv TemplateVariant) (ResourceReference, string, bool, error) {
	for _, candidate := range tv.Candidates {
		data, err := t.loader.Resolve(candidate)
		if err != nil {
			if errors.Is(err, ErrResourceNotFound) || errors.Is(err, fs.ErrNotExist) {
				continue
			}
			var cerr *Error
			if errors.As(err, &cerr) {
				return candidate, "", false, cerr.withVariant(tv.Variant.Name)
			}
			return candidate, "", false, newError(ErrResourceRead, candidate.String(), err).withVariant(tv.Variant.Name)
		}
		source, err := decodeCharset(data, t.charset)
		if err != nil {
			return candidate, "", false, newError(ErrResourceRead, candidate.String(), err).withVariant(tv.Variant.Name)
		}
		return candidate, source, true, nil
	}
	return ResourceReference{}, "", false, nil
}

// engineFor returns the engine in charge of the template. A single registered engine is
// used unconditionally.
func (t *TemplateResolver) engineFor(ref ResourceReference, source string) (TemplateEngine, bool) {
	if len(t.engines) == 1 {
		return t.engines[0], true
	}
	for _, engine := range t.engines {
		if engine.Supports(ref, source) {
			return engine, true
		}
	}
	return nil, false
}

// debugf logs a debug message if a logger is set
func (t *TemplateResolver) debugf(format string, args ...interface{}) {
	if t.logger == nil {
		return
	}
	t.logger.Debugf(log.Log{Stage: log.StageTemplate, Format: format, Messages: args})
}

// variantContent wraps a rendered body in the Content of the variant
func variantContent(v Variant, body string, ref ResourceReference) Content {
	if v.ContentType == TypeTextHTML {
		return &HTMLContent{Body: body, Base: ref}
	}
	return &TextContent{Body: body, Base: ref}
}
