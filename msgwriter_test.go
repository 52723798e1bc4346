// SPDX-FileCopyrightText: 2022-2023 The go-mail Authors
//
// SPDX-License-Identifier: MIT

package compose

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"
	"time"
)

// leafPart is a non-multipart MIME part of a written message
type leafPart struct {
	contentType string
	header      map[string][]string
	body        string
}

// testMsg returns a Msg with fixed default headers
func testMsg(t *testing.T, opts ...MsgOption) *Msg {
	t.Helper()
	m := NewMsg(opts...)
	if err := m.From("sender@example.com"); err != nil {
		t.Fatalf("failed to set From: %s", err)
	}
	if err := m.To("rcpt@example.com"); err != nil {
		t.Fatalf("failed to set To: %s", err)
	}
	m.Subject("Hi")
	m.SetDateWithValue(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	m.SetMessageIDWithValue("1@example.com")
	return m
}

// collectParts walks a multipart body and returns its leaf parts with the boundaries of
// every multipart in the order they were entered
func collectParts(t *testing.T, r io.Reader, contentType string) ([]leafPart, []string) {
	t.Helper()
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		t.Fatalf("failed to parse content type %q: %s", contentType, err)
	}
	if !strings.HasPrefix(mediaType, "multipart/") {
		body, err := io.ReadAll(r)
		if err != nil {
			t.Fatalf("failed to read part: %s", err)
		}
		return []leafPart{{contentType: contentType, body: string(body)}}, nil
	}

	var leaves []leafPart
	boundaries := []string{mediaType + ":" + params["boundary"]}
	mr := multipart.NewReader(r, params["boundary"])
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("failed to read next part: %s", err)
		}
		ct := p.Header.Get("Content-Type")
		if strings.HasPrefix(ct, "multipart/") {
			l, b := collectParts(t, p, ct)
			leaves = append(leaves, l...)
			boundaries = append(boundaries, b...)
			continue
		}
		body, err := io.ReadAll(p)
		if err != nil {
			t.Fatalf("failed to read part: %s", err)
		}
		leaves = append(leaves, leafPart{contentType: ct, header: p.Header, body: string(body)})
	}
	return leaves, boundaries
}

// TestMsg_WriteTo_single tests the exact output of a single part message
func TestMsg_WriteTo_single(t *testing.T) {
	m := testMsg(t)
	m.SetBodyString(TypeTextPlain, "Hello")
	want := "Date: Tue, 02 Jan 2024 03:04:05 +0000\r\n" +
		"Message-ID: <1@example.com>\r\n" +
		"Subject: Hi\r\n" +
		"X-Mailer: go-compose v" + VERSION + "\r\n" +
		"From: <sender@example.com>\r\n" +
		"To: <rcpt@example.com>\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"Content-Transfer-Encoding: quoted-printable\r\n" +
		"\r\n" +
		"Hello"

	var buf bytes.Buffer
	n, err := m.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo failed: %s", err)
	}
	if buf.String() != want {
		t.Errorf("WriteTo failed. Expected:\n%q\ngot:\n%q", want, buf.String())
	}
	if n != int64(buf.Len()) {
		t.Errorf("WriteTo failed. Expected %d written bytes, got: %d", buf.Len(), n)
	}

	again, err := m.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %s", err)
	}
	if string(again) != want {
		t.Errorf("writing the Msg twice should produce the same output")
	}
}

// TestMsg_WriteTo_structure tests the nesting of the multiparts
func TestMsg_WriteTo_structure(t *testing.T) {
	m := testMsg(t, WithBoundary("b"))
	m.SetBodyString(TypeTextPlain, "Hello")
	m.AddAlternativeString(TypeTextHTML, `<p>Hello <img src="cid:logo.png"></p>`)
	m.EmbedBytes("logo.png", pngHeader)
	m.AttachBytes("doc.pdf", []byte("%PDF-1.4"), WithAttachmentDescription("Report"))

	raw, err := m.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %s", err)
	}
	for i, line := range strings.Split(string(raw), SingleNewLine) {
		if len(line) > MaxBodyLength {
			t.Errorf("line %d exceeds %d chars: %q", i, MaxBodyLength, line)
		}
	}

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("failed to parse message: %s", err)
	}
	if got := msg.Header.Get("Subject"); got != "Hi" {
		t.Errorf("Subject failed. Expected: Hi, got: %s", got)
	}
	leaves, boundaries := collectParts(t, msg.Body, msg.Header.Get("Content-Type"))

	wantBoundaries := []string{"multipart/mixed:b", "multipart/related:b_1", "multipart/alternative:b_2"}
	if strings.Join(boundaries, ",") != strings.Join(wantBoundaries, ",") {
		t.Errorf("multipart structure failed. Expected: %v, got: %v", wantBoundaries, boundaries)
	}
	if len(leaves) != 4 {
		t.Fatalf("expected 4 leaf parts, got: %d", len(leaves))
	}

	if leaves[0].contentType != "text/plain; charset=UTF-8" || leaves[0].body != "Hello" {
		t.Errorf("text part failed. Got: %s %q", leaves[0].contentType, leaves[0].body)
	}
	if leaves[1].contentType != "text/html; charset=UTF-8" ||
		leaves[1].body != `<p>Hello <img src="cid:logo.png"></p>` {
		t.Errorf("HTML part failed. Got: %s %q", leaves[1].contentType, leaves[1].body)
	}

	embed := leaves[2]
	if embed.contentType != `image/png; name="logo.png"` {
		t.Errorf("embed content type failed. Expected: %s, got: %s", `image/png; name="logo.png"`, embed.contentType)
	}
	if got := embed.header["Content-Id"]; len(got) != 1 || got[0] != "<logo.png>" {
		t.Errorf("embed Content-ID failed. Expected: <logo.png>, got: %v", got)
	}
	if got := embed.header["Content-Disposition"]; len(got) != 1 || got[0] != `inline; filename="logo.png"` {
		t.Errorf("embed disposition failed. Got: %v", got)
	}
	data, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(embed.body, SingleNewLine, ""))
	if err != nil {
		t.Fatalf("failed to decode embed: %s", err)
	}
	if !bytes.Equal(data, pngHeader) {
		t.Errorf("embed content failed. Decoded data does not match")
	}

	attachment := leaves[3]
	if attachment.contentType != `application/pdf; name="doc.pdf"` {
		t.Errorf("attachment content type failed. Got: %s", attachment.contentType)
	}
	if got := attachment.header["Content-Disposition"]; len(got) != 1 || got[0] != `attachment; filename="doc.pdf"` {
		t.Errorf("attachment disposition failed. Got: %v", got)
	}
	if got := attachment.header["Content-Description"]; len(got) != 1 || got[0] != "Report" {
		t.Errorf("attachment description failed. Got: %v", got)
	}
	if _, ok := attachment.header["Content-Id"]; ok {
		t.Errorf("regular attachments should not have a Content-ID")
	}
}

// TestMsg_WriteTo_encodings tests the body encodings of the Msg
func TestMsg_WriteTo_encodings(t *testing.T) {
	body := strings.Repeat("Grüße ", 20)
	tests := []struct {
		name string
		enc  Encoding
		want string
	}{
		{"quoted-printable", EncodingQP, "Gr=C3=BC=C3=9Fe"},
		{"base64", EncodingB64, base64.StdEncoding.EncodeToString([]byte(body))[:MaxBodyLength]},
		{"8bit", NoEncoding, body},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testMsg(t, WithEncoding(tt.enc))
			m.SetBodyString(TypeTextPlain, body)
			raw, err := m.Bytes()
			if err != nil {
				t.Fatalf("Bytes failed: %s", err)
			}
			if !strings.Contains(string(raw), "Content-Transfer-Encoding: "+tt.enc.String()) {
				t.Errorf("transfer encoding header missing for %s", tt.enc)
			}
			if !strings.Contains(string(raw), tt.want) {
				t.Errorf("body encoding failed. Expected %q in output:\n%s", tt.want, raw)
			}
		})
	}
}

// TestMsg_WriteTo_attachmentOnly tests a Msg without body and a single attachment
func TestMsg_WriteTo_attachmentOnly(t *testing.T) {
	m := testMsg(t)
	m.AttachBytes("data.bin", []byte{0x00, 0x01, 0x02}, WithAttachmentContentType(TypeAppOctetStream))
	raw, err := m.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %s", err)
	}
	out := string(raw)
	if strings.Contains(out, "multipart/") {
		t.Errorf("a single attachment should not be wrapped in a multipart")
	}
	for _, want := range []string{
		`Content-Type: application/octet-stream; name="data.bin"`,
		"Content-Transfer-Encoding: base64",
		`Content-Disposition: attachment; filename="data.bin"`,
		"AAEC\r\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q:\n%s", want, out)
		}
	}
}

// TestMsg_WriteTo_failingWriter tests that write errors are returned
func TestMsg_WriteTo_failingWriter(t *testing.T) {
	m := testMsg(t)
	m.SetBodyString(TypeTextPlain, "Hello")
	if _, err := m.WriteTo(&failWriter{ok: 2}); !errors.Is(err, errMockWrite) {
		t.Errorf("WriteTo failed. Expected: %s, got: %v", errMockWrite, err)
	}
}

// TestMsgWriter_writeHeader tests the folding of long header values
func TestMsgWriter_writeHeader(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"no value", nil, "X-Test:\r\n"},
		{"short", []string{"value"}, "X-Test: value\r\n"},
		{"list", []string{"a", "b"}, "X-Test: a, b\r\n"},
		{
			"folded", []string{strings.Repeat("a", 40) + " " + strings.Repeat("b", 40)},
			"X-Test: " + strings.Repeat("a", 40) + "\r\n " + strings.Repeat("b", 40) + "\r\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			mw := &msgWriter{w: &buf}
			mw.writeHeader("X-Test", tt.values...)
			if buf.String() != tt.want {
				t.Errorf("writeHeader failed. Expected: %q, got: %q", tt.want, buf.String())
			}
			for _, line := range strings.Split(strings.TrimSuffix(buf.String(), SingleNewLine), SingleNewLine) {
				if len(line) > MaxHeaderLength {
					t.Errorf("header line exceeds %d chars: %q", MaxHeaderLength, line)
				}
			}
		})
	}
}
