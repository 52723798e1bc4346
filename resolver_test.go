// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package compose

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

// failResolver is a Resolver that always fails with the given error
type failResolver struct {
	lookups []string
	err     error
}

func (r *failResolver) Lookups() []string { return r.lookups }

func (r *failResolver) Resolve(ResourceReference) ([]byte, error) { return nil, r.err }

func testClasspath() fstest.MapFS {
	return fstest.MapFS{
		"templates/mail.html": {Data: []byte("<html>classpath</html>")},
		"css/main.css":        {Data: []byte("body { color: red; }")},
		"images/logo.png":     {Data: []byte("\x89PNG\r\n\x1a\nlogo")},
	}
}

func TestResolverChain_Resolve(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "mail.html")
	if err := os.WriteFile(filePath, []byte("<html>file</html>"), 0o600); err != nil {
		t.Fatalf("failed to write test file: %s", err)
	}
	chain, err := NewResolverChain(
		WithDefaultResolver(NewFSResolver(testClasspath())),
		WithResolver(NewFileResolver(LookupFile, "")),
		WithResolver(NewStringResolver()),
	)
	if err != nil {
		t.Fatalf("failed to create resolver chain: %s", err)
	}

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"classpath", "classpath:templates/mail.html", "<html>classpath</html>"},
		{"classpath with leading slash", "classpath:/templates/mail.html", "<html>classpath</html>"},
		{"default resolver", "templates/mail.html", "<html>classpath</html>"},
		{"fall through to unprefixed resolver", filePath, "<html>file</html>"},
		{"file", "file:" + filePath, "<html>file</html>"},
		{"string", "string:<p>hello</p>", "<p>hello</p>"},
		{"short string", "s:hi", "hi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := chain.Resolve(ParseReference(tt.ref))
			if err != nil {
				t.Fatalf("Resolve failed: %s", err)
			}
			if string(data) != tt.want {
				t.Errorf("Resolve failed. Expected: %s, got: %s", tt.want, data)
			}
		})
	}
}

func TestResolverChain_Resolve_errors(t *testing.T) {
	errPermission := errors.New("permission denied")
	chain, err := NewResolverChain(
		WithDefaultResolver(NewFSResolver(testClasspath())),
		WithResolver(&failResolver{lookups: []string{"broken", "classpath"}, err: errPermission}),
		WithResolver(&failResolver{lookups: []string{""}, err: errPermission}),
	)
	if err != nil {
		t.Fatalf("failed to create resolver chain: %s", err)
	}

	t.Run("unknown lookup", func(t *testing.T) {
		_, err := chain.Resolve(ParseReference("ftp:logo.png"))
		if !errors.Is(err, ErrResourceNotFound) {
			t.Errorf("Resolve was supposed to fail with %s, got: %s", ErrResourceNotFound, err)
		}
	})
	t.Run("missing resource does not fall through for explicit lookup", func(t *testing.T) {
		_, err := chain.Resolve(ParseReference("classpath:missing.png"))
		if !errors.Is(err, ErrResourceNotFound) {
			t.Errorf("Resolve was supposed to fail with %s, got: %s", ErrResourceNotFound, err)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("expected error to wrap fs.ErrNotExist, got: %s", err)
		}
		if errors.Is(err, errPermission) {
			t.Error("the explicit lookup is not supposed to reach the second resolver")
		}
	})
	t.Run("read failure", func(t *testing.T) {
		_, err := chain.Resolve(ParseReference("broken:logo.png"))
		if !errors.Is(err, ErrResourceRead) {
			t.Errorf("Resolve was supposed to fail with %s, got: %s", ErrResourceRead, err)
		}
		if !errors.Is(err, errPermission) {
			t.Errorf("expected error to wrap the resolver error, got: %s", err)
		}
		var cerr *Error
		if errors.As(err, &cerr) && cerr.Ref != "broken:logo.png" {
			t.Errorf("unexpected reference. Expected: %s, got: %s", "broken:logo.png", cerr.Ref)
		}
	})
	t.Run("untagged falls through only on not found", func(t *testing.T) {
		_, err := chain.Resolve(ParseReference("missing.png"))
		if !errors.Is(err, ErrResourceRead) {
			t.Errorf("Resolve was supposed to fail with %s, got: %s", ErrResourceRead, err)
		}
	})
	t.Run("invalid path", func(t *testing.T) {
		_, err := chain.Resolve(ParseReference("classpath:../secret"))
		if !errors.Is(err, ErrResourceNotFound) {
			t.Errorf("Resolve was supposed to fail with %s, got: %s", ErrResourceNotFound, err)
		}
	})
}

func TestResolverChain_Supports(t *testing.T) {
	chain, err := NewResolverChain(WithResolver(NewStringResolver()))
	if err != nil {
		t.Fatalf("failed to create resolver chain: %s", err)
	}
	if !chain.Supports(ParseReference("s:x")) {
		t.Error("expected chain to support the s lookup")
	}
	if chain.Supports(ParseReference("classpath:x")) {
		t.Error("chain is not supposed to support the classpath lookup")
	}
	if chain.Supports(ParseReference("x")) {
		t.Error("chain without default resolver is not supposed to support untagged references")
	}
}

func TestNewResolverChain_multipleDefaults(t *testing.T) {
	_, err := NewResolverChain(
		WithDefaultResolver(NewFSResolver(testClasspath())),
		WithDefaultResolver(NewFileResolver()),
	)
	if !errors.Is(err, ErrMultipleDefaults) {
		t.Errorf("NewResolverChain was supposed to fail with %s, got: %s", ErrMultipleDefaults, err)
	}
}

func TestNewPrefixedResolver(t *testing.T) {
	r := NewPrefixedResolver(NewFSResolver(testClasspath()), "templates/", ".html")
	tests := []struct {
		name string
		ref  string
	}{
		{"prefix and suffix", "classpath:mail"},
		{"suffix already present", "classpath:mail.html"},
		{"leading slash", "classpath:/mail"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := r.Resolve(ParseReference(tt.ref))
			if err != nil {
				t.Fatalf("Resolve failed: %s", err)
			}
			if string(data) != "<html>classpath</html>" {
				t.Errorf("Resolve failed. Expected: %s, got: %s", "<html>classpath</html>", data)
			}
		})
	}
	if len(r.Lookups()) != 1 || r.Lookups()[0] != LookupClasspath {
		t.Errorf("prefixed resolver is supposed to keep the lookups, got: %v", r.Lookups())
	}
	plain := NewFileResolver()
	if NewPrefixedResolver(plain, "", "") != plain {
		t.Error("prefixed resolver without prefix and suffix is supposed to return the resolver")
	}
}
