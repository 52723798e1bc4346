// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package compose

import (
	"strings"
)

// SubjectConfig configures the sources of the subject of a message, in order of precedence
type SubjectConfig struct {
	// Explicit is a subject set by the caller. It always wins.
	Explicit string `yaml:"-"`

	// HTMLTitle enables the use of the <title> of the primary HTML body
	HTMLTitle bool `yaml:"html_title"`

	// TextPrefix enables the use of the first line of the primary text body if it starts
	// with the prefix. The line is removed from the body. Empty disables it.
	TextPrefix string `yaml:"text_prefix"`

	// Default is used if no other source provides a subject
	Default string `yaml:"default"`
}

// DefaultSubjectConfig returns a SubjectConfig with the HTML title and the "Subject:" text
// prefix enabled
func DefaultSubjectConfig() SubjectConfig {
	return SubjectConfig{HTMLTitle: true, TextPrefix: "Subject:"}
}

// AutofillSubject finds the subject of a resolved Content. The sources are tried in order:
// the explicit subject, the title of the first HTML body, the prefixed first line of the
// first text body and the default. Only the first HTML and text bodies of a MultiContent
// are inspected.
//
// Parameters:
//   - c: The resolved Content.
//   - cfg: The SubjectConfig.
//
// Returns:
//   - The subject.
//   - The Content, with the subject line removed if it was taken from a text body. The
//     given Content is never modified.
//   - A boolean indicating whether a subject was found.
func AutofillSubject(c Content, cfg SubjectConfig) (string, Content, bool) {
	if cfg.Explicit != "" {
		return cfg.Explicit, c, true
	}
	if cfg.HTMLTitle {
		if body, ok := firstOfType(c, TypeTextHTML).(*HTMLContent); ok {
			if title, ok := ExtractTitle(body.Body); ok {
				return title, c, true
			}
		}
	}
	if cfg.TextPrefix != "" {
		if body, ok := firstOfType(c, TypeTextPlain).(*TextContent); ok {
			if subject, rest, ok := cutSubjectLine(body.Body, cfg.TextPrefix); ok {
				return subject, replaceContent(c, body, &TextContent{Body: rest, Base: body.Base}), true
			}
		}
	}
	if cfg.Default != "" {
		return cfg.Default, c, true
	}
	return "", c, false
}

// firstOfType returns the Content itself or the first variant of a MultiContent with the
// given content type
func firstOfType(c Content, ct ContentType) Content {
	if multi, ok := c.(*MultiContent); ok {
		found, _ := multi.First(ct)
		return found
	}
	if ContentTypeOf(c) == ct {
		return c
	}
	return nil
}

// cutSubjectLine returns the subject and the remaining text if the first line of the text
// starts with the prefix
func cutSubjectLine(text, prefix string) (string, string, bool) {
	line, rest, _ := strings.Cut(text, "\n")
	line = strings.TrimSuffix(line, "\r")
	if !strings.HasPrefix(line, prefix) {
		return "", text, false
	}
	subject := strings.TrimSpace(line[len(prefix):])
	if subject == "" {
		return "", text, false
	}
	return subject, rest, true
}

// replaceContent returns a copy of the tree in which old is replaced by repl
func replaceContent(c, old, repl Content) Content {
	if c == old {
		return repl
	}
	multi, ok := c.(*MultiContent)
	if !ok {
		return c
	}
	copied := &MultiContent{Variants: make([]Content, len(multi.Variants))}
	for i, v := range multi.Variants {
		copied.Variants[i] = replaceContent(v, old, repl)
	}
	return copied
}
