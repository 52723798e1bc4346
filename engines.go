// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package compose

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"path"
	"slices"
	"strings"
	texttemplate "text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// FuncMap is the set of functions available to the templates of one pipeline. It can be
// passed to all engines.
type FuncMap map[string]any

var (
	htmlTemplateExtensions     = []string{".html", ".htm", ".xhtml", ".gohtml"}
	textTemplateExtensions     = []string{".txt", ".text", ".tmpl", ".gotmpl"}
	markdownTemplateExtensions = []string{".md", ".markdown"}
)

// htmlTemplateEngine renders html/template templates
type htmlTemplateEngine struct {
	funcs FuncMap
}

// textTemplateEngine renders text/template templates
type textTemplateEngine struct {
	funcs FuncMap
}

// markdownEngine renders text/template templates written in Markdown to HTML
type markdownEngine struct {
	funcs    FuncMap
	markdown goldmark.Markdown
}

// NewHTMLTemplateEngine returns a TemplateEngine based on html/template. It recognizes the
// ".html", ".htm", ".xhtml" and ".gohtml" extensions, and HTML documents holding actions.
func NewHTMLTemplateEngine(funcs FuncMap) TemplateEngine {
	return &htmlTemplateEngine{funcs: funcs}
}

// Name satisfies the TemplateEngine interface for the htmlTemplateEngine
func (e *htmlTemplateEngine) Name() string {
	return "html/template"
}

// Supports satisfies the TemplateEngine interface for the htmlTemplateEngine
func (e *htmlTemplateEngine) Supports(ref ResourceReference, source string) bool {
	if hasExtension(ref, htmlTemplateExtensions) {
		return true
	}
	if path.Ext(ref.Path()) != "" {
		return false
	}
	lower := strings.ToLower(source)
	return strings.Contains(source, "{{") && (strings.Contains(lower, "<html") || strings.Contains(lower, "<!doctype html"))
}

// Render satisfies the TemplateEngine interface for the htmlTemplateEngine
func (e *htmlTemplateEngine) Render(ref ResourceReference, source string, model any) (string, error) {
	tpl, err := htmltemplate.New(ref.String()).Funcs(htmltemplate.FuncMap(e.funcs)).Parse(source)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML template: %w", err)
	}
	var buf bytes.Buffer
	if err = tpl.Execute(&buf, model); err != nil {
		return "", fmt.Errorf("failed to execute HTML template: %w", err)
	}
	return buf.String(), nil
}

// NewTextTemplateEngine returns a TemplateEngine based on text/template. It recognizes the
// ".txt", ".text", ".tmpl" and ".gotmpl" extensions.
func NewTextTemplateEngine(funcs FuncMap) TemplateEngine {
	return &textTemplateEngine{funcs: funcs}
}

// Name satisfies the TemplateEngine interface for the textTemplateEngine
func (e *textTemplateEngine) Name() string {
	return "text/template"
}

// Supports satisfies the TemplateEngine interface for the textTemplateEngine
func (e *textTemplateEngine) Supports(ref ResourceReference, _ string) bool {
	return hasExtension(ref, textTemplateExtensions)
}

// Render satisfies the TemplateEngine interface for the textTemplateEngine
func (e *textTemplateEngine) Render(ref ResourceReference, source string, model any) (string, error) {
	return renderText(ref, source, e.funcs, model)
}

// NewMarkdownEngine returns a TemplateEngine for Markdown templates. The template is
// rendered with text/template first, the result is converted to HTML with goldmark and
// the GitHub Flavored Markdown extensions. It recognizes the ".md" and ".markdown"
// extensions.
func NewMarkdownEngine(funcs FuncMap) TemplateEngine {
	return &markdownEngine{
		funcs: funcs,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
}

// Name satisfies the TemplateEngine interface for the markdownEngine
func (e *markdownEngine) Name() string {
	return "markdown"
}

// Supports satisfies the TemplateEngine interface for the markdownEngine
func (e *markdownEngine) Supports(ref ResourceReference, _ string) bool {
	return hasExtension(ref, markdownTemplateExtensions)
}

// Render satisfies the TemplateEngine interface for the markdownEngine
func (e *markdownEngine) Render(ref ResourceReference, source string, model any) (string, error) {
	text, err := renderText(ref, source, e.funcs, model)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err = e.markdown.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return buf.String(), nil
}

// renderText renders a text/template template
func renderText(ref ResourceReference, source string, funcs FuncMap, model any) (string, error) {
	tpl, err := texttemplate.New(ref.String()).Funcs(texttemplate.FuncMap(funcs)).Parse(source)
	if err != nil {
		return "", fmt.Errorf("failed to parse text template: %w", err)
	}
	var buf bytes.Buffer
	if err = tpl.Execute(&buf, model); err != nil {
		return "", fmt.Errorf("failed to execute text template: %w", err)
	}
	return buf.String(), nil
}

// hasExtension checks if the path of the reference ends with one of the extensions
func hasExtension(ref ResourceReference, extensions []string) bool {
	return slices.Contains(extensions, strings.ToLower(path.Ext(ref.Path())))
}
