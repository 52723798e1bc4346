// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

// Package compose turns declarative message content (templates, literal HTML/text and
// the resources they reference) into fully resolved, render-ready message bodies.
//
// Templates are resolved and rendered per variant (HTML and plain text), external
// stylesheets are inlined into the HTML and images referenced from <img> tags or CSS
// url() functions are either attached and referenced by Content-ID, embedded as base64
// data URIs or left untouched. The result is handed to a transport by the caller.
package compose

// VERSION is used in the default user agent string
const VERSION = "0.1.0"
