// SPDX-FileCopyrightText: 2022-2023 The go-mail Authors
//
// SPDX-License-Identifier: MIT

package compose

import (
	"errors"
	"io"
)

// ErrNoOutWriter is returned when no io.Writer is set for Base64LineBreaker
var ErrNoOutWriter = errors.New("no io.Writer set for Base64LineBreaker")

// Base64LineBreaker breaks base64 encoded output into lines of MaxBodyLength characters
// terminated by SingleNewLine.
//
// It satisfies the io.WriteCloser interface.
type Base64LineBreaker struct {
	line [MaxBodyLength]byte
	used int
	out  io.Writer
}

// NewBase64LineBreaker returns a Base64LineBreaker writing to out
func NewBase64LineBreaker(out io.Writer) *Base64LineBreaker {
	return &Base64LineBreaker{out: out}
}

// Write buffers data and writes every completed line to the underlying io.Writer
func (l *Base64LineBreaker) Write(data []byte) (int, error) {
	if l.out == nil {
		return 0, ErrNoOutWriter
	}
	written := 0
	for len(data) > 0 {
		n := copy(l.line[l.used:], data)
		l.used += n
		written += n
		data = data[n:]
		if l.used < MaxBodyLength {
			break
		}
		if err := l.flush(); err != nil {
			return written, err
		}
	}
	return written, nil
}

// Close writes the remaining buffered data as the last line
func (l *Base64LineBreaker) Close() error {
	if l.out == nil {
		return ErrNoOutWriter
	}
	if l.used == 0 {
		return nil
	}
	return l.flush()
}

// flush writes the buffered line followed by a line break
func (l *Base64LineBreaker) flush() error {
	if _, err := l.out.Write(l.line[:l.used]); err != nil {
		return err
	}
	l.used = 0
	_, err := io.WriteString(l.out, SingleNewLine)
	return err
}
