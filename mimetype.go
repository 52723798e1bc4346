// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package compose

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"
)

// defaultMimeType is the content type that means the detection was not conclusive
const defaultMimeType = "application/octet-stream"

// ErrMimeTypeUnknown is returned by a MimeDetector that can't tell the type of a resource
var ErrMimeTypeUnknown = errors.New("unable to detect mime type")

// MimeDetector detects the mime type of a resource from its name and content
type MimeDetector interface {
	Detect(name string, data []byte) (string, error)
}

// MimeDetectorFunc is an adapter to allow the use of ordinary functions as MimeDetector
type MimeDetectorFunc func(name string, data []byte) (string, error)

// Detect satisfies the MimeDetector interface for the MimeDetectorFunc type
func (f MimeDetectorFunc) Detect(name string, data []byte) (string, error) {
	return f(name, data)
}

// fallbackMimeDetector asks a list of detectors in order
type fallbackMimeDetector struct {
	detectors []MimeDetector
}

// NewFallbackMimeDetector returns a MimeDetector that asks each detector in order and
// returns the first successful answer. The last error is returned if all detectors fail.
func NewFallbackMimeDetector(detectors ...MimeDetector) MimeDetector {
	return &fallbackMimeDetector{detectors: detectors}
}

// Detect satisfies the MimeDetector interface for the fallbackMimeDetector
func (d *fallbackMimeDetector) Detect(name string, data []byte) (string, error) {
	err := ErrMimeTypeUnknown
	for _, detector := range d.detectors {
		mimeType, detectErr := detector.Detect(name, data)
		if detectErr == nil && mimeType != "" {
			return mimeType, nil
		}
		if detectErr != nil {
			err = detectErr
		}
	}
	return "", fmt.Errorf("failed to detect mime type of %q: %w", name, err)
}

// SniffMimeDetector detects the mime type from the content of a resource. Inconclusive
// results are reported as ErrMimeTypeUnknown.
var SniffMimeDetector = MimeDetectorFunc(func(_ string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrMimeTypeUnknown
	}
	mimeType := http.DetectContentType(data)
	if mimeType == defaultMimeType {
		return "", ErrMimeTypeUnknown
	}
	// text/* results are left to the extension lookup (CSS, SVG)
	if strings.HasPrefix(mimeType, "text/") {
		return "", ErrMimeTypeUnknown
	}
	return stripMimeParams(mimeType), nil
})

// ExtensionMimeDetector detects the mime type from the file extension of a resource
var ExtensionMimeDetector = MimeDetectorFunc(func(name string, _ []byte) (string, error) {
	ext := path.Ext(name)
	if ext == "" {
		return "", ErrMimeTypeUnknown
	}
	mimeType := mime.TypeByExtension(strings.ToLower(ext))
	if mimeType == "" {
		return "", ErrMimeTypeUnknown
	}
	return stripMimeParams(mimeType), nil
})

// DefaultMimeDetector returns the MimeDetector used if none is configured: content
// sniffing, then the file extension, then "application/octet-stream".
func DefaultMimeDetector() MimeDetector {
	return NewFallbackMimeDetector(SniffMimeDetector, ExtensionMimeDetector,
		MimeDetectorFunc(func(string, []byte) (string, error) {
			return defaultMimeType, nil
		}))
}

// stripMimeParams removes the parameters (e.g. "; charset=utf-8") of a mime type
func stripMimeParams(mimeType string) string {
	if idx := strings.IndexByte(mimeType, ';'); idx >= 0 {
		mimeType = mimeType[:idx]
	}
	return strings.TrimSpace(mimeType)
}
