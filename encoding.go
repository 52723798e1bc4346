// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package compose

// Charset is a type wrapper for a string representing different character encodings
type Charset string

// ContentType is a type wrapper for a string and represents the MIME type of the content
// being handled
type ContentType string

// Encoding represents a MIME encoding scheme like quoted-printable or base64.
type Encoding string

// MIMEType is a type wrapper for a string and represents the MIME type for the Msg content
// or parts
type MIMEType string

// MIMEVersion is a type wrapper for a string and represents the MIME version used in the
// email
type MIMEVersion string

const (
	// EncodingB64 represents the Base64 encoding as specified in RFC 2045.
	EncodingB64 Encoding = "base64"

	// EncodingQP represents the "quoted-printable" encoding as specified in RFC 2045.
	EncodingQP Encoding = "quoted-printable"

	// NoEncoding avoids any character encoding (except of the mail headers)
	NoEncoding Encoding = "8bit"
)

const (
	// CharsetUTF8 represents the "UTF-8" charset.
	CharsetUTF8 Charset = "UTF-8"

	// CharsetISO88591 represents the "ISO-8859-1" charset.
	CharsetISO88591 Charset = "ISO-8859-1"

	// CharsetISO885915 represents the "ISO-8859-15" charset.
	CharsetISO885915 Charset = "ISO-8859-15"

	// CharsetWindows1252 represents the "windows-1252" charset.
	CharsetWindows1252 Charset = "windows-1252"

	// CharsetUSASCII represents the "US-ASCII" charset.
	CharsetUSASCII Charset = "US-ASCII"
)

const (
	// TypeTextHTML represents the MIME type for HTML text content.
	TypeTextHTML ContentType = "text/html"

	// TypeTextPlain represents the MIME type for plain text content.
	TypeTextPlain ContentType = "text/plain"

	// TypeTextCSS represents the MIME type for stylesheets.
	TypeTextCSS ContentType = "text/css"

	// TypeAppOctetStream represents the MIME type for arbitrary binary data.
	TypeAppOctetStream ContentType = "application/octet-stream"

	// TypeMultipartAlternative represents a set of alternative representations of the
	// same content.
	TypeMultipartAlternative ContentType = "multipart/alternative"
)

const (
	// MIMEAlternative represents the MIME type for a message body that can contain
	// multiple alternative formats.
	MIMEAlternative MIMEType = "alternative"

	// MIMEMixed represents the MIME type for a multipart message containing different
	// content types.
	MIMEMixed MIMEType = "mixed"

	// MIMERelated represents the MIME type for a multipart message where each part is a
	// related file or resource.
	MIMERelated MIMEType = "related"
)

// Mime10 represents the MIME version "1.0" used in email messages.
const Mime10 MIMEVersion = "1.0"

// String satisfies the fmt.Stringer interface for the Charset type
func (c Charset) String() string {
	return string(c)
}

// String satisfies the fmt.Stringer interface for the ContentType type
func (c ContentType) String() string {
	return string(c)
}

// String satisfies the fmt.Stringer interface for the Encoding type
func (e Encoding) String() string {
	return string(e)
}
