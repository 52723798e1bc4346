// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package compose

import (
	"fmt"
	"strings"
)

// escapedQuote is a single quote escaped with a backslash, as found in raw CSS url() values
const escapedQuote = `\'`

// quotePlaceholder temporarily replaces escapedQuote during path normalization. It
// contains a NUL byte which can't be part of a valid resource path.
const quotePlaceholder = "\x00q\x00"

var (
	quoteEscaper   = strings.NewReplacer(escapedQuote, quotePlaceholder)
	quoteUnescaper = strings.NewReplacer(quotePlaceholder, escapedQuote)
)

// Relativize resolves other against base.
//
// If other is absolute, i.e. starts with "/" or carries its own lookup tag (or scheme),
// it is returned parsed and unchanged. Otherwise other is relative to the parent
// directory of base (or to base itself if the path of base ends with "/"). The "." and
// ".." segments are normalized and the result inherits the lookup tag of base.
//
// Parameters:
//   - base: The reference of the resource that contains other (e.g. a stylesheet).
//   - other: The possibly relative reference to resolve.
//
// Returns:
//   - The resolved ResourceReference.
//   - An error with reason ErrPathOutsideRoot if ".." navigates above the root.
func Relativize(base ResourceReference, other string) (ResourceReference, error) {
	parsed := ParseReference(other)
	if parsed.HasLookup() || strings.HasPrefix(other, "/") {
		return parsed, nil
	}

	basePath := quoteEscaper.Replace(base.Path())
	dir := basePath
	if !strings.HasSuffix(basePath, "/") {
		if idx := strings.LastIndexByte(basePath, '/'); idx >= 0 {
			dir = basePath[:idx+1]
		} else {
			dir = ""
		}
	}

	merged, err := normalizePath(dir + quoteEscaper.Replace(other))
	if err != nil {
		return ResourceReference{}, newError(ErrPathOutsideRoot, other,
			fmt.Errorf("failed to resolve against %q: %w", base.String(), err))
	}
	return base.WithPath(quoteUnescaper.Replace(merged)), nil
}

// normalizePath removes "." segments and resolves ".." segments of a slash separated path.
// Leading slashes (e.g. "//host" in "http://host/...") and a trailing slash are kept.
func normalizePath(p string) (string, error) {
	rest := strings.TrimLeft(p, "/")
	lead := p[:len(p)-len(rest)]
	trailing := strings.HasSuffix(rest, "/")

	var segments []string
	for _, segment := range strings.Split(rest, "/") {
		switch segment {
		case "", ".":
			continue
		case "..":
			if len(segments) == 0 {
				return "", fmt.Errorf("path %q navigates above its root", p)
			}
			segments = segments[:len(segments)-1]
		default:
			segments = append(segments, segment)
		}
	}

	normalized := lead + strings.Join(segments, "/")
	if trailing && len(segments) > 0 {
		normalized += "/"
	}
	return normalized, nil
}
