// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package compose

import (
	"testing"
)

func TestDecodeCharset(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		charset Charset
		want    string
	}{
		{"utf-8", []byte("Grüße"), CharsetUTF8, "Grüße"},
		{"empty charset", []byte("Grüße"), "", "Grüße"},
		{"utf-8 with BOM", append([]byte{0xEF, 0xBB, 0xBF}, "body"...), CharsetUTF8, "body"},
		{"iso-8859-1", []byte{'G', 'r', 0xFC, 0xDF, 'e'}, CharsetISO88591, "Grüße"},
		{"windows-1252", []byte{0x80, ' ', 'E', 'U', 'R'}, CharsetWindows1252, "€ EUR"},
		{"us-ascii", []byte("plain"), CharsetUSASCII, "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeCharset(tt.data, tt.charset)
			if err != nil {
				t.Fatalf("decodeCharset failed: %s", err)
			}
			if got != tt.want {
				t.Errorf("decodeCharset failed. Expected: %q, got: %q", tt.want, got)
			}
		})
	}
	t.Run("unsupported charset", func(t *testing.T) {
		if _, err := decodeCharset([]byte("x"), Charset("x-unknown-charset")); err == nil {
			t.Error("decodeCharset was supposed to fail for an unknown charset")
		}
	})
}
