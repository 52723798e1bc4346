// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package compose

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// List of ReferenceKind values
const (
	// KindImage is an image referenced by an <img> element or a CSS property
	KindImage ReferenceKind = iota

	// KindStylesheet is an external stylesheet referenced by a <link> element
	KindStylesheet
)

// List of InlineMode values
const (
	// InlineUnspecified means that the global configuration decides
	InlineUnspecified InlineMode = iota

	// InlineAttach attaches the resource and references it with a Content-ID
	InlineAttach

	// InlineBase64 embeds the resource as a base64 data URI
	InlineBase64

	// InlineSkip leaves the reference untouched
	InlineSkip
)

// Markers that override the inlining behavior of a single element or CSS rule
const (
	// InlineImageAttribute selects the InlineMode of an <img> element
	InlineImageAttribute = "data-inline-image"

	// InlineImageProperty selects the InlineMode of the images of a CSS rule. The value is
	// either a mode, or a list of "<url-substring>=<mode>" entries.
	InlineImageProperty = "--inline-image"

	// SkipInlineAttribute marks a stylesheet <link> that must not be inlined
	SkipInlineAttribute = "data-skip-inline"

	// InlineStylesAttribute set to "skip" marks a stylesheet <link> that must not be inlined
	InlineStylesAttribute = "data-inline-styles"
)

// attrQuoteEntities are the quotes of CSS inside HTML attributes, as written in raw HTML
var attrQuoteEntities = []string{"&quot;", "&#34;", "&#39;", "&apos;"}

var (
	// cssImagePropertyRegex matches the name and colon of the CSS properties that may
	// reference images
	cssImagePropertyRegex = regexp.MustCompile(
		`(?i)(?:^|[^a-z0-9_-])((?:background|list-style)(?:-image)?|cursor)\s*:`)

	// inlineImagePropertyRegex matches the name and colon of the inline mode marker
	inlineImagePropertyRegex = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(InlineImageProperty) + `\s*:`)
)

// ReferenceKind is the kind of resource a Reference points to
type ReferenceKind int

// InlineMode is the policy that decides how a referenced resource is embedded
type InlineMode int

// Reference is a resource reference found in an HTML document or a CSS text.
//
// Start and End are byte offsets in the scanned text. For images they delimit the raw
// URL, so that only this occurrence can be rewritten. For stylesheets they delimit the
// complete <link> element.
type Reference struct {
	Kind  ReferenceKind
	URL   string
	Mode  InlineMode
	Media string
	Start int
	End   int
}

// edit replaces the text between start and end
type edit struct {
	start int
	end   int
	text  string
}

// htmlToken is a token of an HTML document along with its raw text and offset
type htmlToken struct {
	html.Token
	raw   string
	start int
}

// attrSpan is the position of an attribute in the raw text of a tag. start includes the
// whitespace that precedes the attribute, valStart and valEnd are -1 if the attribute
// has no value.
type attrSpan struct {
	name     string
	start    int
	end      int
	valStart int
	valEnd   int
}

// cssSegment is a piece of CSS embedded in an HTML document
type cssSegment struct {
	text   string
	offset int
	attr   bool
}

// inlineModes holds the parsed value of an InlineImageProperty declaration
type inlineModes struct {
	global  InlineMode
	entries []modeEntry
}

// modeEntry maps a URL substring to an InlineMode
type modeEntry struct {
	match string
	mode  InlineMode
}

// ParseInlineMode parses an inline mode marker value. Unknown values yield InlineUnspecified.
func ParseInlineMode(s string) InlineMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "attach":
		return InlineAttach
	case "base64":
		return InlineBase64
	case "skip":
		return InlineSkip
	default:
		return InlineUnspecified
	}
}

// String satisfies the fmt.Stringer interface for the InlineMode type
func (m InlineMode) String() string {
	switch m {
	case InlineAttach:
		return "attach"
	case InlineBase64:
		return "base64"
	case InlineSkip:
		return "skip"
	default:
		return "unspecified"
	}
}

// String satisfies the fmt.Stringer interface for the ReferenceKind type
func (k ReferenceKind) String() string {
	if k == KindStylesheet {
		return "stylesheet"
	}
	return "image"
}

// ExtractImages returns the src references of all <img> elements of the document in
// document order. The InlineImageAttribute of an element overrides its mode.
func ExtractImages(doc string) []Reference {
	var refs []Reference
	walkTokens(doc, func(tok htmlToken) bool {
		if !isStartTag(tok, "img") {
			return true
		}
		attrs := scanAttrs(tok.raw)
		src, ok := findAttr(attrs, "src")
		if !ok || src.valStart < 0 {
			return true
		}
		ref := Reference{
			Kind:  KindImage,
			URL:   strings.TrimSpace(src.value(tok.raw)),
			Start: tok.start + src.valStart,
			End:   tok.start + src.valEnd,
		}
		if marker, ok := findAttr(attrs, InlineImageAttribute); ok {
			ref.Mode = ParseInlineMode(marker.value(tok.raw))
		}
		refs = append(refs, ref)
		return true
	})
	return refs
}

// ExtractStylesheetLinks returns the <link> elements of the document that point to a
// stylesheet: rel contains "stylesheet", type is "text/css" or href ends with ".css".
// Links marked with SkipInlineAttribute or InlineStylesAttribute="skip" get InlineSkip.
func ExtractStylesheetLinks(doc string) []Reference {
	var refs []Reference
	walkTokens(doc, func(tok htmlToken) bool {
		if !isStartTag(tok, "link") {
			return true
		}
		attrs := scanAttrs(tok.raw)
		href, ok := findAttr(attrs, "href")
		if !ok || href.valStart < 0 {
			return true
		}
		url := strings.TrimSpace(href.value(tok.raw))
		if !isStylesheetLink(attrs, tok.raw, url) {
			return true
		}
		ref := Reference{
			Kind:  KindStylesheet,
			URL:   url,
			Start: tok.start,
			End:   tok.start + len(tok.raw),
		}
		if media, ok := findAttr(attrs, "media"); ok {
			ref.Media = media.value(tok.raw)
		}
		if _, ok := findAttr(attrs, SkipInlineAttribute); ok {
			ref.Mode = InlineSkip
		}
		if styles, ok := findAttr(attrs, InlineStylesAttribute); ok && ParseInlineMode(styles.value(tok.raw)) == InlineSkip {
			ref.Mode = InlineSkip
		}
		refs = append(refs, ref)
		return true
	})
	return refs
}

// ExtractCSSImageURLs returns the url() references of the image related properties
// (background, background-image, list-style, list-style-image and cursor) of a CSS text.
// The mode of each reference comes from the InlineImageProperty declaration of the
// enclosing rule, if any.
func ExtractCSSImageURLs(css string) []Reference {
	return extractCSSImages(css, 0, false)
}

// ExtractStyleReferences returns the CSS image references of the <style> blocks and style
// attributes of an HTML document. Offsets are relative to the whole document.
func ExtractStyleReferences(doc string) []Reference {
	var refs []Reference
	for _, segment := range styleSegments(doc) {
		refs = append(refs, extractCSSImages(segment.text, segment.offset, segment.attr)...)
	}
	return refs
}

// ExtractTitle returns the text of the first <title> element of the document
func ExtractTitle(doc string) (string, bool) {
	var title string
	var found, inTitle bool
	walkTokens(doc, func(tok htmlToken) bool {
		switch {
		case isStartTag(tok, "title"):
			inTitle = true
		case inTitle && tok.Type == html.TextToken:
			title += tok.Data
		case inTitle && tok.Type == html.EndTagToken && tok.Data == "title":
			found = true
			return false
		}
		return true
	})
	title = strings.Join(strings.Fields(title), " ")
	if !found && !inTitle {
		return "", false
	}
	return title, title != ""
}

// DistinctURLs returns the URLs of the references without duplicates, in first-seen order
func DistinctURLs(refs []Reference) []string {
	seen := make(map[string]struct{}, len(refs))
	urls := make([]string, 0, len(refs))
	for _, ref := range refs {
		if _, ok := seen[ref.URL]; ok {
			continue
		}
		seen[ref.URL] = struct{}{}
		urls = append(urls, ref.URL)
	}
	return urls
}

// inlineMarkerEdits returns the edits that remove every InlineImageAttribute and every
// InlineImageProperty declaration from the document
func inlineMarkerEdits(doc string) []edit {
	var edits []edit
	walkTokens(doc, func(tok htmlToken) bool {
		if tok.Type != html.StartTagToken && tok.Type != html.SelfClosingTagToken {
			return true
		}
		for _, attr := range scanAttrs(tok.raw) {
			if attr.name == InlineImageAttribute {
				edits = append(edits, edit{start: tok.start + attr.start, end: tok.start + attr.end})
			}
		}
		return true
	})
	for _, segment := range styleSegments(doc) {
		edits = append(edits, cssMarkerEdits(segment.text, segment.offset)...)
	}
	return edits
}

// cssMarkerEdits returns the edits that remove the InlineImageProperty declarations of
// a CSS text
func cssMarkerEdits(css string, offset int) []edit {
	var edits []edit
	for _, m := range inlineImagePropertyRegex.FindAllStringIndex(css, -1) {
		end := declarationEnd(css, m[1])
		if end < len(css) && css[end] == ';' {
			end++
		}
		edits = append(edits, edit{start: offset + m[0], end: offset + end})
	}
	return edits
}

// extractCSSImages finds the image references of a CSS text. For CSS taken from an HTML
// attribute the quote entities are accepted as quotes and the URLs are unescaped.
func extractCSSImages(css string, offset int, attr bool) []Reference {
	var opts []ScanOption
	if attr {
		opts = append(opts, WithQuoteCandidates(attrQuoteEntities...))
	}

	var refs []Reference
	for _, m := range cssImagePropertyRegex.FindAllStringIndex(css, -1) {
		valueStart := m[1]
		value := css[valueStart:declarationEnd(css, valueStart)]
		modes := ruleInlineModes(css, valueStart)
		scanner := ScanURLFunctions(value, opts...)
		for {
			fn, ok := scanner.Next()
			if !ok {
				break
			}
			url := fn.URL
			if attr {
				url = html.UnescapeString(url)
			}
			refs = append(refs, Reference{
				Kind:  KindImage,
				URL:   url,
				Mode:  modes.modeFor(url),
				Start: offset + valueStart + fn.URLStart,
				End:   offset + valueStart + fn.URLEnd,
			})
		}
	}
	return refs
}

// ruleInlineModes parses the InlineImageProperty declaration of the CSS rule that
// contains the given position
func ruleInlineModes(css string, pos int) inlineModes {
	start := max(strings.LastIndexByte(css[:pos], '{'), strings.LastIndexByte(css[:pos], '}')) + 1
	end := len(css)
	if idx := strings.IndexByte(css[pos:], '}'); idx >= 0 {
		end = pos + idx
	}
	rule := css[start:end]
	loc := inlineImagePropertyRegex.FindStringIndex(rule)
	if loc == nil {
		return inlineModes{}
	}
	return parseInlineModes(rule[loc[1]:declarationEnd(rule, loc[1])])
}

// parseInlineModes parses a marker value such as "attach" or "logo.png=base64 bg=skip"
func parseInlineModes(value string) inlineModes {
	var modes inlineModes
	items := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	for _, item := range items {
		match, mode, ok := strings.Cut(item, "=")
		if !ok {
			modes.global = ParseInlineMode(item)
			continue
		}
		modes.entries = append(modes.entries, modeEntry{
			match: strings.Trim(match, `'"`),
			mode:  ParseInlineMode(strings.Trim(mode, `'"`)),
		})
	}
	return modes
}

// modeFor returns the InlineMode for the given URL
func (m inlineModes) modeFor(url string) InlineMode {
	for _, entry := range m.entries {
		if entry.match != "" && strings.Contains(url, entry.match) {
			return entry.mode
		}
	}
	return m.global
}

// declarationEnd returns the position of the ';' or '}' that ends the CSS declaration
// value starting at from. Quoted strings and parentheses are skipped.
func declarationEnd(css string, from int) int {
	var quote byte
	depth := 0
	for i := from; i < len(css); i++ {
		c := css[i]
		switch {
		case quote != 0:
			if c == quote && !isEscaped(css, i) {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case (c == ';' || c == '}') && depth == 0:
			return i
		}
	}
	return len(css)
}

// styleSegments returns the content of the <style> blocks and style attributes of the
// document
func styleSegments(doc string) []cssSegment {
	var segments []cssSegment
	inStyle := false
	walkTokens(doc, func(tok htmlToken) bool {
		switch tok.Type {
		case html.TextToken:
			if inStyle {
				segments = append(segments, cssSegment{text: tok.raw, offset: tok.start})
			}
		case html.EndTagToken:
			if tok.Data == "style" {
				inStyle = false
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			if tok.Type == html.StartTagToken && tok.Data == "style" {
				inStyle = true
			}
			attrs := scanAttrs(tok.raw)
			if style, ok := findAttr(attrs, "style"); ok && style.valStart >= 0 {
				segments = append(segments, cssSegment{
					text:   tok.raw[style.valStart:style.valEnd],
					offset: tok.start + style.valStart,
					attr:   true,
				})
			}
		}
		return true
	})
	return segments
}

// walkTokens tokenizes the document and calls fn for every token until fn returns false
func walkTokens(doc string, fn func(tok htmlToken) bool) {
	z := html.NewTokenizer(strings.NewReader(doc))
	pos := 0
	for {
		if z.Next() == html.ErrorToken {
			return
		}
		// Raw must be copied first, building the token modifies the underlying buffer
		raw := string(z.Raw())
		tok := htmlToken{Token: z.Token(), raw: raw, start: pos}
		pos += len(raw)
		if !fn(tok) {
			return
		}
	}
}

// isStartTag checks if the token opens an element with the given name
func isStartTag(tok htmlToken, name string) bool {
	return (tok.Type == html.StartTagToken || tok.Type == html.SelfClosingTagToken) && tok.Data == name
}

// isStylesheetLink checks if the attributes of a <link> denote a stylesheet
func isStylesheetLink(attrs []attrSpan, raw, href string) bool {
	if rel, ok := findAttr(attrs, "rel"); ok {
		for _, r := range strings.Fields(rel.value(raw)) {
			if strings.EqualFold(r, "stylesheet") {
				return true
			}
		}
	}
	if typ, ok := findAttr(attrs, "type"); ok && strings.EqualFold(strings.TrimSpace(typ.value(raw)), "text/css") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(href), ".css")
}

// findAttr returns the first attribute with the given name
func findAttr(attrs []attrSpan, name string) (attrSpan, bool) {
	for _, attr := range attrs {
		if attr.name == name {
			return attr, true
		}
	}
	return attrSpan{}, false
}

// value returns the unescaped value of the attribute
func (a attrSpan) value(raw string) string {
	if a.valStart < 0 {
		return ""
	}
	return html.UnescapeString(raw[a.valStart:a.valEnd])
}

// scanAttrs returns the attributes of the raw text of a start tag with their positions
func scanAttrs(raw string) []attrSpan {
	i := 1
	for i < len(raw) && !isTagSpace(raw[i]) && raw[i] != '>' && raw[i] != '/' {
		i++
	}

	var attrs []attrSpan
	for i < len(raw) {
		start := i
		for i < len(raw) && (isTagSpace(raw[i]) || raw[i] == '/') {
			i++
		}
		if i >= len(raw) || raw[i] == '>' {
			break
		}
		nameStart := i
		for i < len(raw) && !isTagSpace(raw[i]) && raw[i] != '=' && raw[i] != '>' && raw[i] != '/' {
			i++
		}
		if i == nameStart {
			i++
			continue
		}
		attr := attrSpan{name: strings.ToLower(raw[nameStart:i]), start: start, valStart: -1, valEnd: -1}

		j := i
		for j < len(raw) && isTagSpace(raw[j]) {
			j++
		}
		if j < len(raw) && raw[j] == '=' {
			j++
			for j < len(raw) && isTagSpace(raw[j]) {
				j++
			}
			switch {
			case j < len(raw) && (raw[j] == '"' || raw[j] == '\''):
				attr.valStart = j + 1
				if idx := strings.IndexByte(raw[j+1:], raw[j]); idx >= 0 {
					attr.valEnd = j + 1 + idx
					i = attr.valEnd + 1
				} else {
					attr.valEnd = len(raw)
					i = len(raw)
				}
			default:
				attr.valStart = j
				for j < len(raw) && !isTagSpace(raw[j]) && raw[j] != '>' {
					j++
				}
				attr.valEnd = j
				i = j
			}
		}
		attr.end = i
		attrs = append(attrs, attr)
	}
	return attrs
}

// isTagSpace checks if the byte is whitespace inside a tag
func isTagSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// applyEdits applies the edits to s. Edits that overlap a previous edit are ignored.
func applyEdits(s string, edits []edit) string {
	if len(edits) == 0 {
		return s
	}
	sorted := slices.Clone(edits)
	slices.SortStableFunc(sorted, func(a, b edit) int {
		return cmp.Compare(a.start, b.start)
	})

	var sb strings.Builder
	sb.Grow(len(s))
	last := 0
	for _, e := range sorted {
		if e.start < last {
			continue
		}
		sb.WriteString(s[last:e.start])
		sb.WriteString(e.text)
		last = e.end
	}
	sb.WriteString(s[last:])
	return sb.String()
}
