// SPDX-FileCopyrightText: 2022-2023 The go-mail Authors
//
// SPDX-License-Identifier: MIT

package compose

import (
	"bytes"
	"io"
	"net/textproto"
)

// List of Disposition values
const (
	// DispositionInline is used for resources referenced from the body by Content-ID
	DispositionInline Disposition = "inline"

	// DispositionAttachment is used for regular attachments
	DispositionAttachment Disposition = "attachment"
)

// Disposition is a type wrapper for the Content-Disposition of an Attachment
type Disposition string

// AttachmentOption is a function type used to modify properties of an Attachment
type AttachmentOption func(*Attachment)

// Attachment represents a resource that is sent along with the body of a message.
//
// Attachments with DispositionInline are referenced from the HTML body by their ContentID
// (e.g. "cid:0"). They are produced by the image inlining or added explicitly as embeds.
type Attachment struct {
	Name        string
	ContentType ContentType
	ContentID   string
	Description string
	Disposition Disposition
	Content     []byte
	Header      textproto.MIMEHeader
}

// NewAttachment returns a new Attachment with the given name and content. The disposition
// defaults to DispositionAttachment.
func NewAttachment(name string, content []byte, opts ...AttachmentOption) *Attachment {
	a := &Attachment{
		Name:        name,
		Content:     content,
		Disposition: DispositionAttachment,
		Header:      make(textproto.MIMEHeader),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(a)
	}
	return a
}

// WithAttachmentName sets the name of an Attachment to the provided value.
//
// Parameters:
//   - name: A string representing the name to be assigned to the Attachment.
//
// Returns:
//   - An AttachmentOption function that sets the Attachment's name.
func WithAttachmentName(name string) AttachmentOption {
	return func(a *Attachment) {
		a.Name = name
	}
}

// WithAttachmentContentType sets the content type of the Attachment.
//
// By default, the content type is guessed from the name when the message is written, and
// if no matching type is identified, "application/octet-stream" is used.
//
// Parameters:
//   - contentType: The ContentType to be assigned to the Attachment.
//
// Returns:
//   - An AttachmentOption function that sets the Attachment's content type.
func WithAttachmentContentType(contentType ContentType) AttachmentOption {
	return func(a *Attachment) {
		a.ContentType = contentType
	}
}

// WithAttachmentContentID sets the Content-ID of the Attachment and marks it as inline
func WithAttachmentContentID(id string) AttachmentOption {
	return func(a *Attachment) {
		a.ContentID = id
		a.Disposition = DispositionInline
	}
}

// WithAttachmentDescription sets an optional description for the Attachment, which is used
// in the Content-Description header of the MIME output.
func WithAttachmentDescription(description string) AttachmentOption {
	return func(a *Attachment) {
		a.Description = description
	}
}

// WithAttachmentDisposition overrides the Content-Disposition of the Attachment
func WithAttachmentDisposition(disposition Disposition) AttachmentOption {
	return func(a *Attachment) {
		a.Disposition = disposition
	}
}

// IsInline returns true if the Attachment is referenced from the body
func (a *Attachment) IsInline() bool {
	return a.Disposition == DispositionInline
}

// setHeader sets the value of a specified MIME header field for the Attachment.
func (a *Attachment) setHeader(header Header, value string) {
	if a.Header == nil {
		a.Header = make(textproto.MIMEHeader)
	}
	a.Header.Set(string(header), value)
}

// getHeader retrieves the value of the specified MIME header field.
//
// Returns:
//   - A string containing the value of the header.
//   - A boolean indicating whether the header was present (true) or not (false).
func (a *Attachment) getHeader(header Header) (string, bool) {
	v := a.Header.Get(string(header))
	return v, v != ""
}

// writeTo writes the content of the Attachment to the io.Writer
func (a *Attachment) writeTo(w io.Writer) (int64, error) {
	return io.Copy(w, bytes.NewReader(a.Content))
}
