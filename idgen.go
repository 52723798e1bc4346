// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package compose

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator provides the Content-IDs of attached resources.
//
// Implementations must be safe for concurrent use, as one generator is shared by all
// messages composed by a pipeline. Ids must be unique within the lifetime of the process.
type IDGenerator interface {
	Next() string
}

// IDGeneratorFunc is an adapter to allow the use of ordinary functions as IDGenerator
type IDGeneratorFunc func() string

// Next satisfies the IDGenerator interface for the IDGeneratorFunc type
func (f IDGeneratorFunc) Next() string {
	return f()
}

// SequenceIDGenerator returns increasing decimal ids, starting at a fixed value
type SequenceIDGenerator struct {
	next atomic.Int64
}

// NewSequenceIDGenerator returns a SequenceIDGenerator whose first id is start. The
// sequence is deterministic, which makes it the generator of choice for tests.
func NewSequenceIDGenerator(start int64) *SequenceIDGenerator {
	g := &SequenceIDGenerator{}
	g.next.Store(start)
	return g
}

// Next satisfies the IDGenerator interface for the SequenceIDGenerator
func (g *SequenceIDGenerator) Next() string {
	return strconv.FormatInt(g.next.Add(1)-1, 10)
}

// RandomIDGenerator returns random alphanumeric ids
type RandomIDGenerator struct {
	length int
}

// NewRandomIDGenerator returns a RandomIDGenerator for ids of the given length. A length
// below 8 is raised to 8.
func NewRandomIDGenerator(length int) *RandomIDGenerator {
	if length < 8 {
		length = 8
	}
	return &RandomIDGenerator{length: length}
}

// Next satisfies the IDGenerator interface for the RandomIDGenerator. If the random
// source fails, the id falls back to a random UUID.
func (g *RandomIDGenerator) Next() string {
	id, err := randomStringSecure(g.length)
	if err != nil {
		return uuid.NewString()
	}
	return id
}

// UUIDGenerator returns random (version 4) UUIDs
type UUIDGenerator struct {
	domain string
}

// NewUUIDGenerator returns a UUIDGenerator. If domain is not empty the ids are formatted
// as "<uuid>@<domain>" like a message id.
func NewUUIDGenerator(domain string) *UUIDGenerator {
	return &UUIDGenerator{domain: domain}
}

// Next satisfies the IDGenerator interface for the UUIDGenerator
func (g *UUIDGenerator) Next() string {
	if g.domain == "" {
		return uuid.NewString()
	}
	return fmt.Sprintf("%s@%s", uuid.NewString(), g.domain)
}
