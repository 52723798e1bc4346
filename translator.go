// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package compose

import (
	"errors"
	"fmt"

	"github.com/go-compose/compose/log"
)

// TranslatorOption returns a function that can be used for grouping Translator options
type TranslatorOption func(*Translator)

// Translator turns a declared Content into a fully resolved Content tree.
//
// The stages are applied in a fixed order: templates are rendered, the variants of a
// MultiContent are translated one by one, then the stylesheets and images of every HTML
// body are inlined. Text bodies pass through unchanged.
type Translator struct {
	templates *TemplateResolver
	inliner   *Inliner
	logger    log.Logger
}

// NewTranslator returns a new Translator. A nil TemplateResolver makes TemplateContent
// unsupported, a nil Inliner disables inlining.
func NewTranslator(templates *TemplateResolver, inliner *Inliner, opts ...TranslatorOption) *Translator {
	t := &Translator{templates: templates, inliner: inliner}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(t)
	}
	return t
}

// WithTranslatorLogger sets a logger for debug output
func WithTranslatorLogger(logger log.Logger) TranslatorOption {
	return func(t *Translator) {
		t.logger = logger
	}
}

// Translate resolves the Content and returns the resolved tree along with the attachments
// created while inlining. The first failure aborts the translation, no partial result is
// returned.
func (t *Translator) Translate(c Content) (Content, []*Attachment, error) {
	switch content := c.(type) {
	case *TemplateContent:
		if t.templates == nil {
			return nil, nil, newError(ErrUnsupportedContent, "", fmt.Errorf("no template resolver configured"))
		}
		multi, err := t.templates.Resolve(content)
		if err != nil {
			return nil, nil, err
		}
		return t.Translate(multi)
	case *MultiContent:
		result := &MultiContent{Variants: make([]Content, 0, len(content.Variants))}
		var attachments []*Attachment
		for _, variant := range content.Variants {
			translated, atts, err := t.Translate(variant)
			if err != nil {
				var cerr *Error
				if errors.As(err, &cerr) && cerr.Variant == "" {
					cerr.withVariant(variantName(variant))
				}
				return nil, nil, err
			}
			result.Variants = append(result.Variants, translated)
			attachments = append(attachments, atts...)
		}
		return result, attachments, nil
	case *HTMLContent:
		if t.inliner == nil {
			return content, nil, nil
		}
		body, attachments, err := t.inliner.Inline(content.Body, content.Base)
		if err != nil {
			return nil, nil, err
		}
		t.debugf("inlined HTML body with %d attachment(s)", len(attachments))
		return &HTMLContent{Body: body, Base: content.Base}, attachments, nil
	case *TextContent:
		return content, nil, nil
	default:
		return nil, nil, newError(ErrUnsupportedContent, "", fmt.Errorf("content of type %T", c))
	}
}

// debugf logs a debug message if a logger is set
func (t *Translator) debugf(format string, args ...interface{}) {
	if t.logger == nil {
		return
	}
	t.logger.Debugf(log.Log{Stage: log.StageCompose, Format: format, Messages: args})
}

// variantName returns the name of the Variant matching the content type of a body
func variantName(c Content) string {
	switch ContentTypeOf(c) {
	case TypeTextHTML:
		return VariantHTML.Name
	case TypeTextPlain:
		return VariantText.Name
	default:
		return ""
	}
}
