// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package compose

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/mail"
	"os"
	"path/filepath"
	"time"
)

// ErrUnresolvedContent is returned if a Msg with TemplateContent is written before it was
// composed
var ErrUnresolvedContent = errors.New("message content has not been composed")

// Msg is a message whose body is described by a Content. The Content can reference
// templates, stylesheets and images that are resolved by a Composer before the Msg is
// written.
type Msg struct {
	// addrHeader holds the address related header fields
	addrHeader map[AddrHeader][]*mail.Address

	// attachments represent the attachments of the Msg
	attachments []*Attachment

	// boundary is the MIME content boundary
	boundary string

	// charset represents the charset of the mail (defaults to UTF-8)
	charset Charset

	// content is the body of the Msg
	content Content

	// embeds represent the inline attachments of the Msg
	embeds []*Attachment

	// encoder represents a mime.WordEncoder from the std lib
	encoder mime.WordEncoder

	// encoding represents the message encoding (the encoder will be a corresponding WordEncoder)
	encoding Encoding

	// genHeader holds the generic header fields
	genHeader map[Header][]string

	// mimever represents the MIME version
	mimever MIMEVersion
}

// MsgOption returns a function that can be used for grouping Msg options
type MsgOption func(*Msg)

// NewMsg returns a new Msg pointer
func NewMsg(opts ...MsgOption) *Msg {
	m := &Msg{
		addrHeader: make(map[AddrHeader][]*mail.Address),
		charset:    CharsetUTF8,
		encoding:   EncodingQP,
		genHeader:  make(map[Header][]string),
		mimever:    Mime10,
	}

	// Override defaults with optionally provided MsgOption functions
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(m)
	}

	// Set the matching mime.WordEncoder for the Msg
	m.setEncoder()

	return m
}

// WithCharset overrides the default message charset
func WithCharset(c Charset) MsgOption {
	return func(m *Msg) {
		m.charset = c
	}
}

// WithEncoding overrides the default message encoding
func WithEncoding(e Encoding) MsgOption {
	return func(m *Msg) {
		m.encoding = e
	}
}

// WithMIMEVersion overrides the default MIME version
func WithMIMEVersion(mv MIMEVersion) MsgOption {
	return func(m *Msg) {
		m.mimever = mv
	}
}

// WithBoundary overrides the default MIME boundary
func WithBoundary(b string) MsgOption {
	return func(m *Msg) {
		m.boundary = b
	}
}

// SetCharset sets the encoding charset of the Msg
func (m *Msg) SetCharset(c Charset) {
	m.charset = c
}

// SetEncoding sets the encoding of the Msg
func (m *Msg) SetEncoding(e Encoding) {
	m.encoding = e
	m.setEncoder()
}

// SetBoundary sets the boundary of the Msg
func (m *Msg) SetBoundary(b string) {
	m.boundary = b
}

// Encoding returns the currently set encoding of the Msg
func (m *Msg) Encoding() string {
	return m.encoding.String()
}

// Charset returns the currently set charset of the Msg
func (m *Msg) Charset() string {
	return m.charset.String()
}

// SetHeader sets a generic header field of the Msg
func (m *Msg) SetHeader(h Header, v ...string) {
	values := make([]string, len(v))
	for i, hv := range v {
		values[i] = m.encodeString(hv)
	}
	m.genHeader[h] = values
}

// GetHeader returns the raw values of a generic header field of the Msg
func (m *Msg) GetHeader(h Header) []string {
	return m.genHeader[h]
}

// SetAddrHeader sets an address related header field of the Msg
func (m *Msg) SetAddrHeader(h AddrHeader, v ...string) error {
	var al []*mail.Address
	for _, av := range v {
		a, err := mail.ParseAddress(av)
		if err != nil {
			return fmt.Errorf("failed to parse mail address header %q: %w", av, err)
		}
		al = append(al, a)
	}
	switch h {
	case HeaderFrom:
		if len(al) > 0 {
			m.addrHeader[h] = []*mail.Address{al[0]}
		}
	default:
		m.addrHeader[h] = al
	}
	return nil
}

// From takes and validates a given mail address and sets it as "From" header of the Msg
func (m *Msg) From(f string) error {
	return m.SetAddrHeader(HeaderFrom, f)
}

// To takes and validates a given mail address list sets the To: addresses of the Msg
func (m *Msg) To(t ...string) error {
	return m.SetAddrHeader(HeaderTo, t...)
}

// Cc takes and validates a given mail address list sets the Cc: addresses of the Msg
func (m *Msg) Cc(c ...string) error {
	return m.SetAddrHeader(HeaderCc, c...)
}

// ReplyTo takes and validates a given mail address and sets it as "Reply-To" header of the Msg
func (m *Msg) ReplyTo(r string) error {
	return m.SetAddrHeader(HeaderReplyTo, r)
}

// Subject sets the "Subject" header field of the Msg
func (m *Msg) Subject(s string) {
	m.SetHeader(HeaderSubject, s)
}

// GetSubject returns the subject of the Msg as it was set, or an empty string
func (m *Msg) GetSubject() string {
	values, ok := m.genHeader[HeaderSubject]
	if !ok || len(values) == 0 {
		return ""
	}
	decoded, err := new(mime.WordDecoder).DecodeHeader(values[0])
	if err != nil {
		return values[0]
	}
	return decoded
}

// SetMessageID generates a random message id for the mail
func (m *Msg) SetMessageID() {
	hn, err := os.Hostname()
	if err != nil {
		hn = "localhost.localdomain"
	}
	rn, err := randomStringSecure(24)
	if err != nil {
		rn = fmt.Sprintf("%d", time.Now().UnixNano())
	}
	m.SetMessageIDWithValue(fmt.Sprintf("%s.%d@%s", rn, os.Getpid(), hn))
}

// SetMessageIDWithValue sets the message id for the mail
func (m *Msg) SetMessageIDWithValue(v string) {
	m.SetHeader(HeaderMessageID, fmt.Sprintf("<%s>", v))
}

// SetDate sets the Date header field to the current time in a valid format
func (m *Msg) SetDate() {
	m.SetDateWithValue(time.Now())
}

// SetDateWithValue sets the Date header field to the provided time in a valid format
func (m *Msg) SetDateWithValue(t time.Time) {
	m.SetHeader(HeaderDate, t.Format(time.RFC1123Z))
}

// SetContent sets the Content of the Msg, replacing any body set before
func (m *Msg) SetContent(c Content) {
	m.content = c
}

// GetContent returns the Content of the Msg
func (m *Msg) GetContent() Content {
	return m.content
}

// SetBodyString sets the body of the Msg to the given string. Only TypeTextHTML and
// TypeTextPlain are supported.
func (m *Msg) SetBodyString(ct ContentType, body string) {
	m.content = contentFromString(ct, body)
}

// AddAlternativeString adds an alternative body to the Msg. The existing body becomes the
// primary variant of a MultiContent.
func (m *Msg) AddAlternativeString(ct ContentType, body string) {
	alt := contentFromString(ct, body)
	switch content := m.content.(type) {
	case nil:
		m.content = alt
	case *MultiContent:
		m.content = NewMulti(append(append([]Content{}, content.Variants...), alt)...)
	default:
		m.content = NewMulti(content, alt)
	}
}

// SetBodyTemplate sets a template as the body of the Msg. See NewTemplate for the
// resolution of the variants.
func (m *Msg) SetBodyTemplate(ref string, model any, variants ...Variant) {
	m.content = NewTemplate(ref, model, variants...)
}

// AttachBytes adds an attachment with the given content to the Msg
func (m *Msg) AttachBytes(name string, data []byte, opts ...AttachmentOption) {
	m.attachments = append(m.attachments, NewAttachment(filepath.Base(name), data, opts...))
}

// AttachReader adds an attachment with the content of the io.Reader to the Msg. The
// io.Reader is read completely.
func (m *Msg) AttachReader(name string, r io.Reader, opts ...AttachmentOption) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read attachment %q: %w", name, err)
	}
	m.AttachBytes(name, data, opts...)
	return nil
}

// EmbedBytes adds an inline attachment with the given content to the Msg. Its Content-ID
// defaults to the name.
func (m *Msg) EmbedBytes(name string, data []byte, opts ...AttachmentOption) {
	name = filepath.Base(name)
	opts = append([]AttachmentOption{WithAttachmentContentID(name)}, opts...)
	m.embeds = append(m.embeds, NewAttachment(name, data, opts...))
}

// EmbedReader adds an inline attachment with the content of the io.Reader to the Msg
func (m *Msg) EmbedReader(name string, r io.Reader, opts ...AttachmentOption) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read embed %q: %w", name, err)
	}
	m.EmbedBytes(name, data, opts...)
	return nil
}

// GetAttachments returns the attachments of the Msg
func (m *Msg) GetAttachments() []*Attachment {
	return m.attachments
}

// GetEmbeds returns the inline attachments of the Msg
func (m *Msg) GetEmbeds() []*Attachment {
	return m.embeds
}

// addEmbeds adds inline attachments created by the composition
func (m *Msg) addEmbeds(embeds ...*Attachment) {
	m.embeds = append(m.embeds, embeds...)
}

// WriteTo writes the formatted Msg into the given io.Writer and satisfies the io.WriterTo
// interface. The Content must have been resolved.
func (m *Msg) WriteTo(w io.Writer) (int64, error) {
	if _, ok := m.content.(*TemplateContent); ok {
		return 0, ErrUnresolvedContent
	}
	mw := &msgWriter{w: w, c: m.charset, en: m.encoder}
	mw.writeMsg(m)
	return mw.n, mw.err
}

// Bytes returns the formatted Msg
func (m *Msg) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodeString encodes a string based on the configured message encoder and the corresponding
// charset for the Msg
func (m *Msg) encodeString(s string) string {
	return m.encoder.Encode(string(m.charset), s)
}

// bodyParts returns the resolved bodies of the Msg in order, nested variants flattened
func (m *Msg) bodyParts() []Content {
	var parts []Content
	var walk func(Content)
	walk = func(c Content) {
		switch content := c.(type) {
		case *MultiContent:
			for _, v := range content.Variants {
				walk(v)
			}
		case *HTMLContent, *TextContent:
			parts = append(parts, content)
		}
	}
	walk(m.content)
	return parts
}

// hasAlt returns true if the Msg has more than one body part
func (m *Msg) hasAlt() bool {
	return len(m.bodyParts()) > 1
}

// hasMixed returns true if the Msg has mixed parts
func (m *Msg) hasMixed() bool {
	return (len(m.bodyParts()) > 0 && len(m.attachments) > 0) || len(m.attachments) > 1
}

// hasRelated returns true if the Msg has related parts
func (m *Msg) hasRelated() bool {
	return (len(m.bodyParts()) > 0 && len(m.embeds) > 0) || len(m.embeds) > 1
}

// setEncoder creates a new mime.WordEncoder based on the encoding setting of the message
func (m *Msg) setEncoder() {
	m.encoder = getEncoder(m.encoding)
}

// addDefaultHeader sets some default headers, if they haven't been set before
func (m *Msg) addDefaultHeader() {
	if _, ok := m.genHeader[HeaderDate]; !ok {
		m.SetDate()
	}
	if _, ok := m.genHeader[HeaderMessageID]; !ok {
		m.SetMessageID()
	}
	if _, ok := m.genHeader[HeaderXMailer]; !ok {
		m.SetHeader(HeaderXMailer, fmt.Sprintf("go-compose v%s", VERSION))
	}
}

// contentFromString wraps a body string in the Content of the given type
func contentFromString(ct ContentType, body string) Content {
	if ct == TypeTextHTML {
		return NewHTML(body)
	}
	return NewText(body)
}

// getEncoder creates a new mime.WordEncoder based on the encoding setting of the message
func getEncoder(e Encoding) mime.WordEncoder {
	switch e {
	case EncodingQP:
		return mime.QEncoding
	case EncodingB64:
		return mime.BEncoding
	default:
		return mime.QEncoding
	}
}
