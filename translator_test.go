// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package compose

import (
	"errors"
	"testing"
	"testing/fstest"
)

func newTestTranslator(t *testing.T, config InlineConfig) *Translator {
	t.Helper()
	fsys := fstest.MapFS{
		"mail/welcome.html":    {Data: []byte(`<html><head><link rel="stylesheet" href="css/main.css"></head><body><img src="images/logo.png">{{.}}</body></html>`)},
		"mail/welcome.txt":     {Data: []byte(`Hello {{.}}`)},
		"mail/css/main.css":    {Data: []byte("body { background: url(../images/bg.png); }")},
		"mail/images/logo.png": {Data: logoPNG},
		"mail/images/bg.png":   {Data: bgPNG},
		"mail/noimage.html":    {Data: []byte(`<img src="images/missing.png">`)},
	}
	chain, err := NewResolverChain(WithDefaultResolver(NewFSResolver(fsys)))
	if err != nil {
		t.Fatalf("failed to create resolver chain: %s", err)
	}
	templates := NewTemplateResolver(chain, []TemplateEngine{NewHTMLTemplateEngine(nil), NewTextTemplateEngine(nil)})
	inliner := NewInliner(chain, WithInlineConfig(config), WithIDGenerator(NewSequenceIDGenerator(0)))
	return NewTranslator(templates, inliner)
}

func TestTranslator_Translate(t *testing.T) {
	translator := newTestTranslator(t, DefaultInlineConfig())
	content, attachments, err := translator.Translate(NewTemplate("mail/welcome", "Toni"))
	if err != nil {
		t.Fatalf("Translate failed: %s", err)
	}
	multi, ok := content.(*MultiContent)
	if !ok || len(multi.Variants) != 2 {
		t.Fatalf("Translate failed. Expected a MultiContent with 2 variants, got: %+v", content)
	}
	html, ok := multi.Variants[0].(*HTMLContent)
	if !ok {
		t.Fatalf("Translate failed. Expected HTML content first, got: %T", multi.Variants[0])
	}
	want := "<html><head><style>\nbody { background: url(cid:0); }\n</style></head>" +
		`<body><img src="cid:1">Toni</body></html>`
	if html.Body != want {
		t.Errorf("Translate failed. Expected: %s, got: %s", want, html.Body)
	}
	if text, ok := multi.Variants[1].(*TextContent); !ok || text.Body != "Hello Toni" {
		t.Errorf("Translate failed to pass the text variant, got: %+v", multi.Variants[1])
	}
	if len(attachments) != 2 || attachments[0].ContentID != "0" || attachments[1].ContentID != "1" {
		t.Errorf("Translate failed. Expected attachments with ids 0 and 1, got: %v", attachments)
	}
}

func TestTranslator_Translate_skip(t *testing.T) {
	translator := newTestTranslator(t, InlineConfig{})
	body := `<link rel="stylesheet" href="css/main.css"><img src="images/logo.png">`
	input := NewMulti(&HTMLContent{Body: body, Base: ParseReference("mail/welcome.html")}, NewText("plain"))
	content, attachments, err := translator.Translate(input)
	if err != nil {
		t.Fatalf("Translate failed: %s", err)
	}
	again, _, err := translator.Translate(content)
	if err != nil {
		t.Fatalf("Translate failed: %s", err)
	}
	for _, result := range []Content{content, again} {
		html, ok := result.(*MultiContent).Variants[0].(*HTMLContent)
		if !ok || html.Body != body {
			t.Errorf("Translate with inlining disabled changed the body, got: %+v", result)
		}
	}
	if len(attachments) != 0 {
		t.Errorf("Translate with inlining disabled created attachments: %d", len(attachments))
	}
}

func TestTranslator_Translate_errors(t *testing.T) {
	translator := newTestTranslator(t, DefaultInlineConfig())
	t.Run("image failure aborts", func(t *testing.T) {
		content, attachments, err := translator.Translate(NewMulti(NewText("ok"), &HTMLContent{
			Body: `<img src="images/missing.png">`, Base: ParseReference("mail/noimage.html"),
		}))
		if !errors.Is(err, ErrImageInliningFailed) {
			t.Errorf("Translate was supposed to fail with %s, got: %s", ErrImageInliningFailed, err)
		}
		if content != nil || attachments != nil {
			t.Error("Translate is not supposed to return a partial result")
		}
		var cerr *Error
		if !errors.As(err, &cerr) {
			t.Fatalf("Translate was supposed to return an *Error, got: %T", err)
		}
		if cerr.Variant != VariantHTML.Name || cerr.Ref != "mail/images/missing.png" {
			t.Errorf("Translate error failed. Expected variant %s and ref %s, got: %s and %s",
				VariantHTML.Name, "mail/images/missing.png", cerr.Variant, cerr.Ref)
		}
	})
	t.Run("no template found", func(t *testing.T) {
		_, _, err := translator.Translate(NewTemplate("mail/missing", nil))
		if !errors.Is(err, ErrNoContentFound) {
			t.Errorf("Translate was supposed to fail with %s, got: %s", ErrNoContentFound, err)
		}
	})
	t.Run("template without resolver", func(t *testing.T) {
		_, _, err := NewTranslator(nil, nil).Translate(NewTemplate("mail/welcome", nil))
		if !errors.Is(err, ErrUnsupportedContent) {
			t.Errorf("Translate was supposed to fail with %s, got: %s", ErrUnsupportedContent, err)
		}
	})
	t.Run("nil content", func(t *testing.T) {
		_, _, err := translator.Translate(nil)
		if !errors.Is(err, ErrUnsupportedContent) {
			t.Errorf("Translate was supposed to fail with %s, got: %s", ErrUnsupportedContent, err)
		}
	})
}

func TestTranslator_Translate_withoutInliner(t *testing.T) {
	body := `<img src="images/logo.png">`
	content, _, err := NewTranslator(nil, nil).Translate(NewHTML(body))
	if err != nil {
		t.Fatalf("Translate failed: %s", err)
	}
	if html, ok := content.(*HTMLContent); !ok || html.Body != body {
		t.Errorf("Translate without inliner changed the body, got: %+v", content)
	}
}
