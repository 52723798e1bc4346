// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package compose

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// utf8BOM is the byte order mark some editors put at the start of UTF-8 files
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeCharset converts resource bytes in the given charset to a UTF-8 string. An empty
// charset is treated as UTF-8.
func decodeCharset(data []byte, charset Charset) (string, error) {
	name := strings.ToLower(strings.TrimSpace(charset.String()))
	if name == "" || name == "utf-8" || name == "utf8" {
		return string(bytes.TrimPrefix(data, utf8BOM)), nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return "", fmt.Errorf("unsupported charset %q: %w", charset, err)
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s content: %w", charset, err)
	}
	return string(decoded), nil
}
