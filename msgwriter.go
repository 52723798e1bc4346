// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package compose

import (
	"encoding/base64"
	"fmt"
	"io"
	"maps"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"path/filepath"
	"slices"
	"strings"
)

const (
	// MaxHeaderLength defines the maximum line length for a mail header
	// RFC 2047 suggests 76 characters
	MaxHeaderLength = 76

	// MaxBodyLength defines the maximum line length for the mail body
	// RFC 2047 suggests 76 characters
	MaxBodyLength = 76

	// SingleNewLine represents a new line that can be used by the msgWriter
	SingleNewLine = "\r\n"

	// DoubleNewLine represents a double new line that can be used by the msgWriter
	DoubleNewLine = "\r\n\r\n"
)

// msgWriter writes a formatted Msg to an io.Writer
type msgWriter struct {
	c   Charset
	d   int8
	en  mime.WordEncoder
	err error
	mpw [3]*multipart.Writer
	n   int64
	pw  io.Writer
	w   io.Writer
}

// Write implements the io.Writer interface for msgWriter
func (mw *msgWriter) Write(p []byte) (int, error) {
	if mw.err != nil {
		return 0, fmt.Errorf("failed to write due to previous error: %w", mw.err)
	}

	var n int
	n, mw.err = mw.w.Write(p)
	mw.n += int64(n)
	return n, mw.err
}

// writeMsg formats the message and writes it to its io.Writer. Headers are written in a
// stable order.
func (mw *msgWriter) writeMsg(m *Msg) {
	m.addDefaultHeader()
	for _, k := range slices.Sorted(maps.Keys(m.genHeader)) {
		mw.writeHeader(k, m.genHeader[k]...)
	}
	for _, t := range []AddrHeader{HeaderFrom, HeaderTo, HeaderCc, HeaderReplyTo} {
		if al, ok := m.addrHeader[t]; ok && len(al) > 0 {
			var v []string
			for _, a := range al {
				v = append(v, a.String())
			}
			mw.writeHeader(Header(t), v...)
		}
	}
	mw.writeHeader(HeaderMIMEVersion, string(m.mimever))

	if m.hasMixed() {
		mw.startMP(MIMEMixed, m.boundary)
		mw.writeString(DoubleNewLine)
	}
	if m.hasRelated() {
		mw.startMP(MIMERelated, m.boundary)
		mw.writeString(DoubleNewLine)
	}
	if m.hasAlt() {
		mw.startMP(MIMEAlternative, m.boundary)
		mw.writeString(DoubleNewLine)
	}

	for _, p := range m.bodyParts() {
		mw.writePart(p, m.charset, m.encoding)
	}
	if m.hasAlt() {
		mw.stopMP()
	}

	mw.addFiles(m.embeds, false)
	if m.hasRelated() {
		mw.stopMP()
	}

	mw.addFiles(m.attachments, true)
	if m.hasMixed() {
		mw.stopMP()
	}
}

// startMP writes a multipart beginning. Nested multiparts derive their boundary from the
// boundary of the Msg.
func (mw *msgWriter) startMP(mt MIMEType, b string) {
	mp := multipart.NewWriter(mw)
	if b != "" {
		if mw.d > 0 {
			b = fmt.Sprintf("%s_%d", b, mw.d)
		}
		mw.err = mp.SetBoundary(b)
	}

	ct := fmt.Sprintf("multipart/%s;\r\n boundary=%s", mt, mp.Boundary())
	mw.mpw[mw.d] = mp

	if mw.d == 0 {
		mw.writeString(fmt.Sprintf("%s: %s", HeaderContentType, ct))
	}
	if mw.d > 0 {
		mw.newPart(map[string][]string{HeaderContentType.String(): {ct}})
	}
	mw.d++
}

// stopMP closes the multipart
func (mw *msgWriter) stopMP() {
	if mw.d > 0 {
		mw.err = mw.mpw[mw.d-1].Close()
		mw.d--
	}
}

// addFiles adds the attachments/embeds content to the mail body
func (mw *msgWriter) addFiles(files []*Attachment, attach bool) {
	for _, f := range files {
		if _, ok := f.getHeader(HeaderContentType); !ok {
			mt := f.ContentType.String()
			if mt == "" {
				mt = mime.TypeByExtension(filepath.Ext(f.Name))
			}
			if mt == "" {
				mt = TypeAppOctetStream.String()
			}
			f.setHeader(HeaderContentType, fmt.Sprintf(`%s; name="%s"`, mt,
				mw.en.Encode(mw.c.String(), f.Name)))
		}

		if _, ok := f.getHeader(HeaderContentTransferEnc); !ok {
			f.setHeader(HeaderContentTransferEnc, string(EncodingB64))
		}

		if f.Description != "" {
			if _, ok := f.getHeader(HeaderContentDescription); !ok {
				f.setHeader(HeaderContentDescription, mw.en.Encode(mw.c.String(), f.Description))
			}
		}

		if _, ok := f.getHeader(HeaderContentDisposition); !ok {
			d := DispositionInline
			if attach {
				d = DispositionAttachment
			}
			f.setHeader(HeaderContentDisposition, fmt.Sprintf(`%s; filename="%s"`, d,
				mw.en.Encode(mw.c.String(), f.Name)))
		}

		if !attach {
			if _, ok := f.getHeader(HeaderContentID); !ok {
				id := f.ContentID
				if id == "" {
					id = f.Name
				}
				f.setHeader(HeaderContentID, fmt.Sprintf("<%s>", id))
			}
		}
		if mw.d == 0 {
			for _, h := range slices.Sorted(maps.Keys(f.Header)) {
				mw.writeHeader(Header(h), f.Header[h]...)
			}
			mw.writeString(SingleNewLine)
		}
		if mw.d > 0 {
			mw.newPart(f.Header)
		}
		mw.writeBody(f.writeTo, EncodingB64)
	}
}

// newPart creates a new MIME multipart io.Writer and sets the partwriter to it
func (mw *msgWriter) newPart(h map[string][]string) {
	mw.pw, mw.err = mw.mpw[mw.d-1].CreatePart(h)
}

// writePart writes a resolved body to the Msg
func (mw *msgWriter) writePart(c Content, cs Charset, enc Encoding) {
	var body string
	switch content := c.(type) {
	case *HTMLContent:
		body = content.Body
	case *TextContent:
		body = content.Body
	}
	ct := fmt.Sprintf("%s; charset=%s", ContentTypeOf(c), cs)
	cte := enc.String()
	if mw.d == 0 {
		mw.writeHeader(HeaderContentType, ct)
		mw.writeHeader(HeaderContentTransferEnc, cte)
		mw.writeString(SingleNewLine)
	}
	if mw.d > 0 {
		mh := textproto.MIMEHeader{}
		mh.Add(HeaderContentType.String(), ct)
		mh.Add(HeaderContentTransferEnc.String(), cte)
		mw.newPart(mh)
	}
	mw.writeBody(func(w io.Writer) (int64, error) {
		n, err := io.WriteString(w, body)
		return int64(n), err
	}, enc)
}

// writeString writes a string into the msgWriter's io.Writer interface
func (mw *msgWriter) writeString(s string) {
	if mw.err != nil {
		return
	}
	var n int
	n, mw.err = io.WriteString(mw.w, s)
	mw.n += int64(n)
}

// writeHeader writes a header into the msgWriter's io.Writer, folding long values
func (mw *msgWriter) writeHeader(k Header, v ...string) {
	mw.writeString(string(k))
	if len(v) == 0 {
		mw.writeString(":" + SingleNewLine)
		return
	}
	mw.writeString(": ")

	// Chars left: MaxHeaderLength - "<Headername>: " - "CRLF"
	cl := MaxHeaderLength - len(k) - 4
	for i, s := range v {
		if cl-len(s) < 1 {
			if p := strings.IndexByte(s, ' '); p != -1 {
				mw.writeString(s[:p])
				mw.writeString(SingleNewLine + " ")
				mw.writeString(s[p+1:])
				cl = MaxHeaderLength - 1 - len(s[p+1:])
				if i != len(v)-1 {
					mw.writeString(", ")
					cl -= 2
				}
				continue
			}
		}
		if i > 0 && cl-len(s) < 1 {
			mw.writeString(SingleNewLine + " ")
			cl = MaxHeaderLength - 1
		}
		mw.writeString(s)
		cl -= len(s)

		if i != len(v)-1 {
			mw.writeString(", ")
			cl -= 2
		}
	}
	mw.writeString(SingleNewLine)
}

// writeBody writes the output of the write function into the current part using the
// provided Encoding
func (mw *msgWriter) writeBody(f func(io.Writer) (int64, error), e Encoding) {
	if mw.err != nil {
		return
	}
	var w io.Writer
	if mw.d == 0 {
		w = mw.w
	}
	if mw.d > 0 {
		w = mw.pw
	}

	var n int64
	switch e {
	case EncodingB64:
		lb := &Base64LineBreaker{out: w}
		ew := base64.NewEncoder(base64.StdEncoding, lb)
		if n, mw.err = f(ew); mw.err != nil {
			return
		}
		if mw.err = ew.Close(); mw.err != nil {
			return
		}
		mw.err = lb.Close()
	case NoEncoding:
		n, mw.err = f(w)
	default:
		ew := quotedprintable.NewWriter(w)
		if n, mw.err = f(ew); mw.err != nil {
			return
		}
		mw.err = ew.Close()
	}
	if mw.d == 0 {
		mw.n += n
	}
}
