// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package compose

import (
	"testing"
)

func TestNewTemplate(t *testing.T) {
	t.Run("without extension", func(t *testing.T) {
		tc := NewTemplate("classpath:/mail/welcome", "model")
		if tc.Model != "model" {
			t.Errorf("unexpected model: %v", tc.Model)
		}
		want := map[string][]string{
			"html": {"classpath:/mail/welcome.html", "classpath:/mail/welcome.xhtml", "classpath:/mail/welcome.md"},
			"text": {"classpath:/mail/welcome.txt"},
		}
		if len(tc.Variants) != 2 {
			t.Fatalf("NewTemplate failed. Expected 2 variants, got: %d", len(tc.Variants))
		}
		if tc.Variants[0].Variant.Name != "html" || tc.Variants[1].Variant.Name != "text" {
			t.Errorf("NewTemplate failed. Expected html before text, got: %s, %s",
				tc.Variants[0].Variant.Name, tc.Variants[1].Variant.Name)
		}
		for _, tv := range tc.Variants {
			candidates := want[tv.Variant.Name]
			if len(tv.Candidates) != len(candidates) {
				t.Fatalf("unexpected candidates for %s: %v", tv.Variant.Name, tv.Candidates)
			}
			for i, c := range tv.Candidates {
				if c.String() != candidates[i] {
					t.Errorf("unexpected candidate. Expected: %s, got: %s", candidates[i], c.String())
				}
			}
		}
	})
	t.Run("with extension", func(t *testing.T) {
		tests := []struct {
			ref     string
			variant string
		}{
			{"mail/welcome.txt", "text"},
			{"mail/welcome.html", "html"},
			{"mail/welcome.MD", "html"},
			{"mail/welcome.tmpl", "html"},
		}
		for _, tt := range tests {
			t.Run(tt.ref, func(t *testing.T) {
				tc := NewTemplate(tt.ref, nil)
				if len(tc.Variants) != 1 {
					t.Fatalf("NewTemplate failed. Expected 1 variant, got: %d", len(tc.Variants))
				}
				tv := tc.Variants[0]
				if tv.Variant.Name != tt.variant {
					t.Errorf("unexpected variant. Expected: %s, got: %s", tt.variant, tv.Variant.Name)
				}
				if len(tv.Candidates) != 1 || tv.Candidates[0].String() != tt.ref {
					t.Errorf("unexpected candidates. Expected: [%s], got: %v", tt.ref, tv.Candidates)
				}
			})
		}
	})
	t.Run("custom variants", func(t *testing.T) {
		tc := NewTemplate("welcome", nil, VariantText)
		if len(tc.Variants) != 1 || tc.Variants[0].Candidates[0].String() != "welcome.txt" {
			t.Errorf("NewTemplate failed. Expected a single text variant, got: %+v", tc.Variants)
		}
	})
}

func TestNewTemplateVariants(t *testing.T) {
	tc := NewTemplateVariants(map[string]string{
		"text":  "s:Hello {{.}}",
		"amp":   "mail/amp.html",
		"html":  "mail/welcome.html",
		"plain": "mail/other.txt",
	}, "World")
	want := []struct {
		name string
		ref  string
	}{
		{"html", "mail/welcome.html"},
		{"text", "mail/other.txt"},
		{"text", "s:Hello {{.}}"},
		{"amp", "mail/amp.html"},
	}
	if len(tc.Variants) != len(want) {
		t.Fatalf("NewTemplateVariants failed. Expected %d variants, got: %d", len(want), len(tc.Variants))
	}
	for i, tv := range tc.Variants {
		if tv.Variant.Name != want[i].name {
			t.Errorf("unexpected variant at %d. Expected: %s, got: %s", i, want[i].name, tv.Variant.Name)
		}
		if tv.Candidates[0].String() != want[i].ref {
			t.Errorf("unexpected reference at %d. Expected: %s, got: %s", i, want[i].ref, tv.Candidates[0].String())
		}
	}
}

func TestContentTypeOf(t *testing.T) {
	tests := []struct {
		name    string
		content Content
		want    ContentType
	}{
		{"html", NewHTML("<p>x</p>"), TypeTextHTML},
		{"text", NewText("x"), TypeTextPlain},
		{"multi", NewMulti(NewHTML("x")), TypeMultipartAlternative},
		{"template", NewTemplate("x", nil), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContentTypeOf(tt.content); got != tt.want {
				t.Errorf("ContentTypeOf failed. Expected: %q, got: %q", tt.want, got)
			}
		})
	}
}

func TestMultiContent_First(t *testing.T) {
	html := NewHTML("<p>nested</p>")
	text := NewText("first text")
	multi := NewMulti(nil, NewMulti(html), text, NewText("second text"))
	if len(multi.Variants) != 3 {
		t.Fatalf("NewMulti failed to ignore nil variants, got %d variants", len(multi.Variants))
	}
	if got, ok := multi.First(TypeTextHTML); !ok || got != html {
		t.Errorf("First failed to find the nested HTML content, got: %v", got)
	}
	if got, ok := multi.First(TypeTextPlain); !ok || got != text {
		t.Errorf("First failed to find the first text content, got: %v", got)
	}
	if _, ok := NewMulti(text).First(TypeTextHTML); ok {
		t.Error("First is not supposed to find an HTML content")
	}
}
