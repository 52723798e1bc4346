// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package compose

import (
	"strings"
)

// Reserved lookup tags used by the default resolvers
const (
	// LookupClasspath is the lookup tag of the embedded resource set
	LookupClasspath = "classpath"

	// LookupFile is the lookup tag of the file system resolver
	LookupFile = "file"

	// LookupString is the lookup tag of the literal string resolver
	LookupString = "string"
)

// lookupSeparator separates the lookup tag from the path
const lookupSeparator = ':'

// ResourceReference points to a resource, optionally prefixed by a lookup tag that selects
// the resolver in charge of loading it (e.g. "classpath:/templates/mail.html").
//
// A ResourceReference is immutable once parsed.
type ResourceReference struct {
	lookup string
	path   string
}

// ParseReference parses a reference string. The optional lookup tag must match
// [a-zA-Z][a-zA-Z0-9]* and be immediately followed by ':'. A ':' that appears after
// the first '/' never forms a lookup tag.
func ParseReference(s string) ResourceReference {
	idx := strings.IndexByte(s, lookupSeparator)
	if idx <= 0 || !isLookupTag(s[:idx]) {
		return ResourceReference{path: s}
	}
	return ResourceReference{lookup: s[:idx], path: s[idx+1:]}
}

// NewReference returns a ResourceReference for the given lookup tag and path. An empty
// lookup means that the reference is untagged.
func NewReference(lookup, path string) ResourceReference {
	return ResourceReference{lookup: lookup, path: path}
}

// Lookup returns the lookup tag of the reference or an empty string
func (r ResourceReference) Lookup() string {
	return r.lookup
}

// Path returns the path of the reference without the lookup tag
func (r ResourceReference) Path() string {
	return r.path
}

// HasLookup returns true if the reference carries a lookup tag
func (r ResourceReference) HasLookup() bool {
	return r.lookup != ""
}

// IsZero returns true for the empty reference
func (r ResourceReference) IsZero() bool {
	return r.lookup == "" && r.path == ""
}

// WithPath returns a copy of the reference with the same lookup tag and a new path
func (r ResourceReference) WithPath(path string) ResourceReference {
	return ResourceReference{lookup: r.lookup, path: path}
}

// String satisfies the fmt.Stringer interface. It returns the original reference string.
func (r ResourceReference) String() string {
	if r.lookup == "" {
		return r.path
	}
	return r.lookup + string(lookupSeparator) + r.path
}

// IsExternalURL returns true if the given URL uses the http or https scheme. External URLs
// are never fetched by the pipeline.
func IsExternalURL(s string) bool {
	return hasScheme(s, "http") || hasScheme(s, "https")
}

// IsInlinedURL returns true if the given URL was already produced by inlining, i.e. is a
// Content-ID or a data URI reference.
func IsInlinedURL(s string) bool {
	return hasScheme(s, "cid") || hasScheme(s, "data")
}

// hasScheme checks case-insensitively if s starts with the scheme followed by ':'
func hasScheme(s, scheme string) bool {
	s = strings.TrimSpace(s)
	if len(s) <= len(scheme) || s[len(scheme)] != lookupSeparator {
		return false
	}
	return strings.EqualFold(s[:len(scheme)], scheme)
}

// isLookupTag checks if the given string matches [a-zA-Z][a-zA-Z0-9]*
func isLookupTag(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return s != ""
}
