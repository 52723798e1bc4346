// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package compose

import (
	"strings"
)

// urlFunctionToken is the literal that opens a CSS url() function.
//
// Only the lowercase form is matched even though CSS function names are case-insensitive.
// Existing templates rely on "URL(" being left untouched.
const urlFunctionToken = "url("

// URLFunction is a CSS url() function found in a CSS value.
//
// The text of a match is split so that Prefix + Quote + URL + Quote + Suffix == Source.
// Prefix starts where the scan started (beginning of the value or end of the previous
// match) and ends after "url(" and the following whitespace. Suffix starts after the
// closing quote (or after the URL for the unquoted form) and runs through the closing
// parenthesis up to the end of the CSS value. Offsets are byte positions in the scanned
// text.
type URLFunction struct {
	Source string
	Prefix string
	Quote  string
	URL    string
	Suffix string

	Start    int
	End      int
	URLStart int
	URLEnd   int
}

// Rewrite returns the text of the url() function with the URL replaced by newURL. The
// quote, prefix and suffix are kept as is.
func (f URLFunction) Rewrite(newURL string) string {
	return f.Prefix + f.Quote + newURL + f.Quote + f.Suffix
}

// ScanOption returns a function that can be used for grouping URLScanner options
type ScanOption func(*URLScanner)

// WithQuoteCandidates adds quote strings that may enclose the URL in addition to the
// single and double quote. This is used for raw HTML attribute text where quotes are
// written as "&quot;".
func WithQuoteCandidates(quotes ...string) ScanOption {
	return func(s *URLScanner) {
		for _, q := range quotes {
			if q != "" {
				s.quotes = append(s.quotes, q)
			}
		}
	}
}

// URLScanner lazily finds the url() functions of a CSS value. It performs a single pass
// over the text and never fails: malformed functions are reported on a best-effort basis.
type URLScanner struct {
	css    string
	pos    int
	quotes []string
	done   bool
}

// ScanURLFunctions returns a URLScanner for the given CSS text
func ScanURLFunctions(css string, opts ...ScanOption) *URLScanner {
	s := &URLScanner{css: css, quotes: []string{`'`, `"`}}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// Next returns the next url() function. The boolean is false once the text is exhausted.
func (s *URLScanner) Next() (URLFunction, bool) {
	if s.done {
		return URLFunction{}, false
	}
	idx := strings.Index(s.css[s.pos:], urlFunctionToken)
	if idx < 0 {
		s.done = true
		return URLFunction{}, false
	}

	css := s.css
	start := s.pos
	urlStart := skipSpaces(css, s.pos+idx+len(urlFunctionToken))
	fn := URLFunction{Start: start, Prefix: css[start:urlStart]}

	suffixStart, parenPos := -1, -1
	if quote := s.quoteAt(urlStart); quote != "" {
		if closing := indexUnescaped(css, urlStart+len(quote), quote); closing >= 0 {
			fn.Quote = quote
			fn.URLStart = urlStart + len(quote)
			fn.URLEnd = closing
			suffixStart = closing + len(quote)
			parenPos = indexUnescaped(css, suffixStart, ")")
		}
	}
	if suffixStart < 0 {
		// unquoted form, or a quote that is never closed
		parenPos = indexUnescaped(css, urlStart, ")")
		rawEnd := parenPos
		if rawEnd < 0 {
			rawEnd = len(css)
		}
		fn.URLStart = urlStart
		fn.URLEnd = urlStart + len(strings.TrimRight(css[urlStart:rawEnd], " \t\r\n\f"))
		suffixStart = fn.URLEnd
	}

	valueFrom := suffixStart
	if parenPos >= 0 {
		valueFrom = parenPos + 1
	}
	end := s.valueEnd(valueFrom)

	fn.URL = css[fn.URLStart:fn.URLEnd]
	fn.Suffix = css[suffixStart:end]
	fn.End = end
	fn.Source = css[start:end]
	s.pos = end
	return fn, true
}

// All consumes the scanner and returns the remaining url() functions
func (s *URLScanner) All() []URLFunction {
	var list []URLFunction
	for {
		fn, ok := s.Next()
		if !ok {
			return list
		}
		list = append(list, fn)
	}
}

// quoteAt returns the quote candidate found at the given position or an empty string
func (s *URLScanner) quoteAt(pos int) string {
	for _, q := range s.quotes {
		if strings.HasPrefix(s.css[pos:], q) {
			return q
		}
	}
	return ""
}

// valueEnd returns the position where the CSS value that contains a url() function ends:
// the end of the line, an unescaped ';', ',' or quote, or the start of the next url()
// function, whichever comes first
func (s *URLScanner) valueEnd(from int) int {
	css := s.css
	for i := from; i < len(css); i++ {
		switch css[i] {
		case '\n':
			return i
		case ';', ',':
			if !isEscaped(css, i) {
				return i
			}
		}
		if strings.HasPrefix(css[i:], urlFunctionToken) {
			return i
		}
		if q := s.quoteAt(i); q != "" && !isEscaped(css, i) {
			return i
		}
	}
	return len(css)
}

// RewriteURLFunctions rebuilds css, replacing the URL of every url() function for which
// rewrite returns true. An error returned by rewrite aborts the rewrite.
func RewriteURLFunctions(css string, rewrite func(URLFunction) (string, bool, error),
	opts ...ScanOption,
) (string, error) {
	var sb strings.Builder
	last := 0
	scanner := ScanURLFunctions(css, opts...)
	for {
		fn, ok := scanner.Next()
		if !ok {
			break
		}
		newURL, replace, err := rewrite(fn)
		if err != nil {
			return css, err
		}
		if !replace {
			continue
		}
		sb.WriteString(css[last:fn.URLStart])
		sb.WriteString(newURL)
		last = fn.URLEnd
	}
	if last == 0 {
		return css, nil
	}
	sb.WriteString(css[last:])
	return sb.String(), nil
}

// indexUnescaped returns the position of the first occurrence of token at or after from
// that is not escaped by a backslash, or -1
func indexUnescaped(s string, from int, token string) int {
	for from <= len(s) {
		idx := strings.Index(s[from:], token)
		if idx < 0 {
			return -1
		}
		pos := from + idx
		if !isEscaped(s, pos) {
			return pos
		}
		from = pos + 1
	}
	return -1
}

// isEscaped checks if the character at pos is preceded by an odd number of backslashes
func isEscaped(s string, pos int) bool {
	n := 0
	for i := pos - 1; i >= 0 && s[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

// skipSpaces returns the position of the first non-whitespace character at or after pos
func skipSpaces(s string, pos int) int {
	for pos < len(s) {
		switch s[pos] {
		case ' ', '\t', '\r', '\n', '\f':
			pos++
		default:
			return pos
		}
	}
	return pos
}
