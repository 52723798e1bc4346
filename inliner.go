// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package compose

import (
	"cmp"
	"encoding/base64"
	"fmt"
	"html"
	"path"
	"slices"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/go-compose/compose/log"
)

// InlineConfig holds the global inlining switches. The per-element markers override the
// image settings.
type InlineConfig struct {
	// CSS enables the inlining of external stylesheets
	CSS bool `yaml:"css"`

	// AttachImages makes attach the default mode for images
	AttachImages bool `yaml:"attach_images"`

	// Base64Images makes base64 the default mode for images, if AttachImages is disabled
	Base64Images bool `yaml:"base64_images"`
}

// Asset is a resolved resource referenced from a body
type Asset struct {
	Ref      ResourceReference
	Data     []byte
	MimeType string

	// ID is the Content-ID assigned in attach mode
	ID string

	sum [32]byte
}

// InlinerOption returns a function that can be used for grouping Inliner options
type InlinerOption func(*Inliner)

// Inliner embeds the stylesheets and images referenced by an HTML body.
//
// An Inliner only holds read-only configuration and can be shared between goroutines,
// provided the IDGenerator is safe for concurrent use.
type Inliner struct {
	loader  ResourceLoader
	mime    MimeDetector
	ids     IDGenerator
	config  InlineConfig
	logger  log.Logger
	charset Charset
}

// inlineRun holds the state of a single inlining call. Resources referenced more than
// once, by the same reference or with identical content, share one attachment.
type inlineRun struct {
	*Inliner
	assets      map[string]*Asset
	attached    map[[32]byte]*Asset
	attachments []*Attachment

	// styles are the spans of the <style> blocks generated from stylesheets. Their
	// remaining URLs are relative to the stylesheet and are left alone by inlineImages.
	styles []edit
}

// DefaultInlineConfig returns the InlineConfig with every kind of inlining enabled
func DefaultInlineConfig() InlineConfig {
	return InlineConfig{CSS: true, AttachImages: true, Base64Images: true}
}

// NewInliner returns a new Inliner that loads resources with the given ResourceLoader
func NewInliner(loader ResourceLoader, opts ...InlinerOption) *Inliner {
	i := &Inliner{
		loader:  loader,
		mime:    DefaultMimeDetector(),
		ids:     NewRandomIDGenerator(16),
		config:  DefaultInlineConfig(),
		charset: CharsetUTF8,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(i)
	}
	return i
}

// WithMimeDetector overrides the MimeDetector of the Inliner
func WithMimeDetector(detector MimeDetector) InlinerOption {
	return func(i *Inliner) {
		if detector != nil {
			i.mime = detector
		}
	}
}

// WithIDGenerator overrides the IDGenerator used for Content-IDs
func WithIDGenerator(ids IDGenerator) InlinerOption {
	return func(i *Inliner) {
		if ids != nil {
			i.ids = ids
		}
	}
}

// WithInlineConfig overrides the default InlineConfig
func WithInlineConfig(config InlineConfig) InlinerOption {
	return func(i *Inliner) {
		i.config = config
	}
}

// WithInlinerLogger sets a logger for debug output
func WithInlinerLogger(logger log.Logger) InlinerOption {
	return func(i *Inliner) {
		i.logger = logger
	}
}

// WithInlinerCharset sets the charset of the stylesheets
func WithInlinerCharset(charset Charset) InlinerOption {
	return func(i *Inliner) {
		i.charset = charset
	}
}

// Config returns the InlineConfig of the Inliner
func (i *Inliner) Config() InlineConfig {
	return i.config
}

// InlineCSS replaces the stylesheet <link> elements of an HTML document with <style>
// blocks holding the content of the stylesheets.
//
// Links marked as skipped and http(s) links are left untouched. The images referenced by
// a stylesheet are resolved relative to the stylesheet and inlined before the stylesheet
// is embedded.
//
// Parameters:
//   - doc: The HTML document.
//   - base: The reference the document was loaded from.
//
// Returns:
//   - The rewritten document.
//   - The attachments created for the images of the stylesheets.
//   - An error with reason ErrCSSInliningFailed or ErrImageInliningFailed.
func (i *Inliner) InlineCSS(doc string, base ResourceReference) (string, []*Attachment, error) {
	run := i.newRun()
	out, err := run.inlineCSS(doc, base)
	if err != nil {
		return "", nil, err
	}
	return out, run.attachments, nil
}

// InlineImages rewrites the <img> elements and the image related CSS properties of an
// HTML document according to their InlineMode: attach mode references a new inline
// Attachment by "cid:<id>", base64 mode embeds a data URI and skip mode leaves the
// reference untouched. External (http/https) and already inlined references are never
// fetched. The inline mode markers are removed from the output.
func (i *Inliner) InlineImages(doc string, base ResourceReference) (string, []*Attachment, error) {
	run := i.newRun()
	out, err := run.inlineImages(doc, base)
	if err != nil {
		return "", nil, err
	}
	return out, run.attachments, nil
}

// Inline performs InlineCSS followed by InlineImages, honoring the InlineConfig. Identical
// resources referenced by the stylesheets and the document share one attachment.
func (i *Inliner) Inline(doc string, base ResourceReference) (string, []*Attachment, error) {
	run := i.newRun()
	var err error
	if i.config.CSS {
		if doc, err = run.inlineCSS(doc, base); err != nil {
			return "", nil, err
		}
	}
	if i.config.imagesEnabled() {
		if doc, err = run.inlineImages(doc, base); err != nil {
			return "", nil, err
		}
	}
	return doc, run.attachments, nil
}

// newRun returns a new inlineRun
func (i *Inliner) newRun() *inlineRun {
	return &inlineRun{
		Inliner:  i,
		assets:   make(map[string]*Asset),
		attached: make(map[[32]byte]*Asset),
	}
}

// inlineCSS replaces the stylesheet links of the document
func (r *inlineRun) inlineCSS(doc string, base ResourceReference) (string, error) {
	var edits []edit
	for _, link := range ExtractStylesheetLinks(doc) {
		if link.Mode == InlineSkip || link.URL == "" || IsExternalURL(link.URL) || IsInlinedURL(link.URL) {
			r.debugf(log.StageCSS, "leaving stylesheet %q untouched", link.URL)
			continue
		}
		ref, err := Relativize(base, link.URL)
		if err != nil {
			return "", newError(ErrCSSInliningFailed, link.URL, err)
		}
		data, err := r.loader.Resolve(ref)
		if err != nil {
			return "", newError(ErrCSSInliningFailed, ref.String(), err)
		}
		css, err := decodeCharset(data, r.charset)
		if err != nil {
			return "", newError(ErrCSSInliningFailed, ref.String(), err)
		}
		if css, err = r.inlineStylesheetImages(css, ref); err != nil {
			return "", err
		}
		r.debugf(log.StageCSS, "inlined stylesheet %q", ref.String())
		edits = append(edits, edit{start: link.Start, end: link.End, text: styleBlock(css, link.Media)})
	}
	r.styles = editedSpans(edits)
	return applyEdits(doc, edits), nil
}

// inlineStylesheetImages inlines the images of a stylesheet. The image references are
// relative to the stylesheet.
func (r *inlineRun) inlineStylesheetImages(css string, base ResourceReference) (string, error) {
	var edits []edit
	for _, ref := range ExtractCSSImageURLs(css) {
		newURL, ok, err := r.inlineImage(ref, base)
		if err != nil {
			return "", err
		}
		if ok {
			edits = append(edits, edit{start: ref.Start, end: ref.End, text: newURL})
		}
	}
	edits = append(edits, cssMarkerEdits(css, 0)...)
	return applyEdits(css, edits), nil
}

// inlineImages rewrites the image references of the document in document order
func (r *inlineRun) inlineImages(doc string, base ResourceReference) (string, error) {
	refs := append(ExtractImages(doc), ExtractStyleReferences(doc)...)
	slices.SortStableFunc(refs, func(a, b Reference) int {
		return cmp.Compare(a.Start, b.Start)
	})

	var edits []edit
	for _, ref := range refs {
		if r.inStyleBlock(ref.Start) {
			continue
		}
		newURL, ok, err := r.inlineImage(ref, base)
		if err != nil {
			return "", err
		}
		if ok {
			edits = append(edits, edit{start: ref.Start, end: ref.End, text: newURL})
		}
	}
	edits = append(edits, inlineMarkerEdits(doc)...)
	return applyEdits(doc, edits), nil
}

// inStyleBlock checks if the offset lies in a <style> block generated by inlineCSS
func (r *inlineRun) inStyleBlock(offset int) bool {
	for _, span := range r.styles {
		if offset >= span.start && offset < span.end {
			return true
		}
	}
	return false
}

// editedSpans returns the spans the replacement texts of the edits occupy once applied
// with applyEdits
func editedSpans(edits []edit) []edit {
	sorted := slices.Clone(edits)
	slices.SortStableFunc(sorted, func(a, b edit) int {
		return cmp.Compare(a.start, b.start)
	})
	var spans []edit
	shift, last := 0, 0
	for _, e := range sorted {
		if e.start < last {
			continue
		}
		start := e.start + shift
		spans = append(spans, edit{start: start, end: start + len(e.text)})
		shift += len(e.text) - (e.end - e.start)
		last = e.end
	}
	return spans
}

// inlineImage returns the new URL of an image reference. The boolean is false if the
// reference has to be left untouched.
func (r *inlineRun) inlineImage(ref Reference, base ResourceReference) (string, bool, error) {
	if ref.URL == "" || IsExternalURL(ref.URL) || IsInlinedURL(ref.URL) {
		return "", false, nil
	}
	mode := r.config.imageMode(ref.Mode)
	if mode == InlineSkip {
		r.debugf(log.StageImages, "skipping image %q", ref.URL)
		return "", false, nil
	}

	asset, err := r.asset(ref.URL, base)
	if err != nil {
		return "", false, err
	}
	switch mode {
	case InlineBase64:
		r.debugf(log.StageImages, "embedding image %q as data URI", asset.Ref.String())
		return "data:" + asset.MimeType + ";base64," + base64.StdEncoding.EncodeToString(asset.Data), true, nil
	default:
		id := r.attach(asset)
		r.debugf(log.StageImages, "attaching image %q with Content-ID %q", asset.Ref.String(), id)
		return "cid:" + id, true, nil
	}
}

// asset resolves a reference and detects its mime type. Assets are cached by resolved
// reference for the duration of the run.
func (r *inlineRun) asset(url string, base ResourceReference) (*Asset, error) {
	ref, err := Relativize(base, url)
	if err != nil {
		return nil, newError(ErrImageInliningFailed, url, err)
	}
	if asset, ok := r.assets[ref.String()]; ok {
		return asset, nil
	}

	data, err := r.loader.Resolve(ref)
	if err != nil {
		return nil, newError(ErrImageInliningFailed, ref.String(), err)
	}
	mimeType, err := r.mime.Detect(ref.Path(), data)
	if err != nil {
		return nil, newError(ErrImageInliningFailed, ref.String(), err)
	}
	asset := &Asset{Ref: ref, Data: data, MimeType: mimeType, sum: blake3.Sum256(data)}
	r.assets[ref.String()] = asset
	return asset, nil
}

// attach assigns a Content-ID to the asset and creates its inline Attachment. Assets
// with identical content share the same Content-ID.
func (r *inlineRun) attach(asset *Asset) string {
	if asset.ID != "" {
		return asset.ID
	}
	if prev, ok := r.attached[asset.sum]; ok {
		asset.ID = prev.ID
		return asset.ID
	}
	asset.ID = r.ids.Next()
	r.attached[asset.sum] = asset
	r.attachments = append(r.attachments, NewAttachment(path.Base(asset.Ref.Path()), asset.Data,
		WithAttachmentContentType(ContentType(asset.MimeType)),
		WithAttachmentContentID(asset.ID)))
	return asset.ID
}

// debugf logs a debug message if a logger is set
func (i *Inliner) debugf(stage log.Stage, format string, args ...interface{}) {
	if i.logger == nil {
		return
	}
	i.logger.Debugf(log.Log{Stage: stage, Format: format, Messages: args})
}

// imageMode resolves the InlineMode of an image: an explicit override wins, otherwise
// attach if enabled, then base64 if enabled, else skip
func (c InlineConfig) imageMode(override InlineMode) InlineMode {
	switch {
	case override != InlineUnspecified:
		return override
	case c.AttachImages:
		return InlineAttach
	case c.Base64Images:
		return InlineBase64
	default:
		return InlineSkip
	}
}

// imagesEnabled checks if any kind of image inlining is enabled
func (c InlineConfig) imagesEnabled() bool {
	return c.AttachImages || c.Base64Images
}

// styleBlock returns a <style> element holding the CSS
func styleBlock(css, media string) string {
	var sb strings.Builder
	sb.WriteString("<style")
	if media != "" {
		sb.WriteString(fmt.Sprintf(` media="%s"`, html.EscapeString(media)))
	}
	sb.WriteString(">\n")
	sb.WriteString(strings.TrimSpace(css))
	sb.WriteString("\n</style>")
	return sb.String()
}
