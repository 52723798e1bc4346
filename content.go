// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package compose

import (
	"path"
	"slices"
	"strings"
)

// Content is the body of a message. It is one of *HTMLContent, *TextContent,
// *MultiContent or *TemplateContent.
type Content interface {
	isContent()
}

// HTMLContent is an HTML body. Base is the reference the HTML was loaded from, relative
// stylesheets and images are resolved against it. A zero Base resolves them as they are.
type HTMLContent struct {
	Body string
	Base ResourceReference
}

// TextContent is a plain text body
type TextContent struct {
	Body string
	Base ResourceReference
}

// MultiContent holds alternative representations of the same body. The first variant is
// the primary body, the others are alternatives in declaration order.
type MultiContent struct {
	Variants []Content
}

// TemplateContent is a body that still has to be rendered from templates with the Model
type TemplateContent struct {
	Variants []TemplateVariant
	Model    any
}

// TemplateVariant is one declared variant of a TemplateContent. The candidate references
// are tried in order, the first one that exists is rendered.
type TemplateVariant struct {
	Variant    Variant
	Candidates []ResourceReference
}

// Variant describes a kind of body: its name, content type and the file extensions of its
// templates
type Variant struct {
	Name        string
	ContentType ContentType
	Extensions  []string
}

var (
	// VariantHTML is the HTML body variant
	VariantHTML = Variant{Name: "html", ContentType: TypeTextHTML, Extensions: []string{".html", ".xhtml", ".md"}}

	// VariantText is the plain text body variant
	VariantText = Variant{Name: "text", ContentType: TypeTextPlain, Extensions: []string{".txt"}}
)

func (*HTMLContent) isContent()     {}
func (*TextContent) isContent()     {}
func (*MultiContent) isContent()    {}
func (*TemplateContent) isContent() {}

// NewHTML returns a new HTMLContent
func NewHTML(body string) *HTMLContent {
	return &HTMLContent{Body: body}
}

// NewText returns a new TextContent
func NewText(body string) *TextContent {
	return &TextContent{Body: body}
}

// NewMulti returns a new MultiContent. Nil variants are ignored.
func NewMulti(variants ...Content) *MultiContent {
	m := &MultiContent{}
	for _, v := range variants {
		if v != nil {
			m.Variants = append(m.Variants, v)
		}
	}
	return m
}

// NewTemplate returns a TemplateContent for the template reference and the model.
//
// If ref has no file extension, one TemplateVariant is created per variant and the
// extensions of the variant are appended to ref to build the candidates. If ref has an
// extension it is used as is, for the variant that owns this extension (or the first
// variant). Without variants, VariantHTML and VariantText are used.
//
// Parameters:
//   - ref: The template reference, e.g. "classpath:/templates/welcome".
//   - model: The data the templates are rendered with.
//   - variants: The body variants to look up, in priority order.
//
// Returns:
//   - A pointer to the TemplateContent.
func NewTemplate(ref string, model any, variants ...Variant) *TemplateContent {
	if len(variants) == 0 {
		variants = []Variant{VariantHTML, VariantText}
	}
	base := ParseReference(ref)
	tc := &TemplateContent{Model: model}

	if ext := strings.ToLower(path.Ext(base.Path())); ext != "" {
		variant := variants[0]
		for _, v := range variants {
			if slices.Contains(v.Extensions, ext) {
				variant = v
				break
			}
		}
		tc.Variants = []TemplateVariant{{Variant: variant, Candidates: []ResourceReference{base}}}
		return tc
	}

	for _, v := range variants {
		tv := TemplateVariant{Variant: v}
		for _, ext := range v.Extensions {
			tv.Candidates = append(tv.Candidates, base.WithPath(base.Path()+ext))
		}
		tc.Variants = append(tc.Variants, tv)
	}
	return tc
}

// NewTemplateVariants returns a TemplateContent with explicit references per variant. The
// keys of refs are variant names ("html", "text"). The variants are ordered HTML first,
// then text, then the remaining names in lexical order.
func NewTemplateVariants(refs map[string]string, model any) *TemplateContent {
	names := make([]string, 0, len(refs))
	for name := range refs {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		ra, rb := variantRank(a), variantRank(b)
		if ra != rb {
			return ra - rb
		}
		return strings.Compare(a, b)
	})

	tc := &TemplateContent{Model: model}
	for _, name := range names {
		tc.Variants = append(tc.Variants, TemplateVariant{
			Variant:    variantByName(name),
			Candidates: []ResourceReference{ParseReference(refs[name])},
		})
	}
	return tc
}

// ContentTypeOf returns the ContentType of a resolved Content. TemplateContent and nil
// have no content type.
func ContentTypeOf(c Content) ContentType {
	switch c.(type) {
	case *HTMLContent:
		return TypeTextHTML
	case *TextContent:
		return TypeTextPlain
	case *MultiContent:
		return TypeMultipartAlternative
	default:
		return ""
	}
}

// First returns the first variant of the given content type, searching nested
// MultiContent depth-first
func (m *MultiContent) First(ct ContentType) (Content, bool) {
	for _, v := range m.Variants {
		if nested, ok := v.(*MultiContent); ok {
			if c, ok := nested.First(ct); ok {
				return c, true
			}
			continue
		}
		if ContentTypeOf(v) == ct {
			return v, true
		}
	}
	return nil, false
}

// variantByName maps a variant name to a known Variant
func variantByName(name string) Variant {
	switch strings.ToLower(name) {
	case "html", "xhtml":
		return VariantHTML
	case "text", "txt", "plain":
		return VariantText
	default:
		return Variant{Name: name, ContentType: TypeTextPlain}
	}
}

// variantRank orders variant names HTML first, then text
func variantRank(name string) int {
	switch variantByName(name).Name {
	case VariantHTML.Name:
		return 0
	case VariantText.Name:
		return 1
	default:
		return 2
	}
}
