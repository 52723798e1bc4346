// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package compose

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Resolver converts a ResourceReference into raw bytes.
//
// A Resolver claims one or more lookup tags. The empty tag means that the resolver handles
// references without any lookup tag. Resolve must return an error that wraps
// fs.ErrNotExist if the underlying resource does not exist.
type Resolver interface {
	// Lookups returns the lookup tags claimed by the Resolver
	Lookups() []string

	// Resolve loads the content of the referenced resource
	Resolve(ref ResourceReference) ([]byte, error)
}

// ResourceLoader loads the content of a reference. A single Resolver as well as a
// ResolverChain satisfy it.
type ResourceLoader interface {
	Resolve(ref ResourceReference) ([]byte, error)
}

// ResolverOption returns a function that can be used for grouping ResolverChain options
type ResolverOption func(*ResolverChain) error

// ResolverChain dispatches references to the registered resolvers.
//
// A reference with a lookup tag is handed to the first resolver that claims the tag, no
// other resolver is tried. A reference without a lookup tag is handed to the default
// resolver first, then to every resolver that claims the empty tag, in registration order.
type ResolverChain struct {
	resolvers []Resolver
	def       Resolver
}

// NewResolverChain returns a new ResolverChain
func NewResolverChain(opts ...ResolverOption) (*ResolverChain, error) {
	c := &ResolverChain{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("failed to apply resolver option: %w", err)
		}
	}
	return c, nil
}

// WithResolver registers a Resolver in the ResolverChain
func WithResolver(r Resolver) ResolverOption {
	return func(c *ResolverChain) error {
		c.resolvers = append(c.resolvers, r)
		return nil
	}
}

// WithDefaultResolver registers a Resolver and flags it as the default one, used for
// references without lookup tag. Only one default resolver is allowed.
func WithDefaultResolver(r Resolver) ResolverOption {
	return func(c *ResolverChain) error {
		if c.def != nil {
			return newError(ErrMultipleDefaults, "", nil)
		}
		c.def = r
		c.resolvers = append(c.resolvers, r)
		return nil
	}
}

// Supports returns true if at least one resolver claims the given reference
func (c *ResolverChain) Supports(ref ResourceReference) bool {
	return len(c.candidates(ref)) > 0
}

// Resolve loads the content of the referenced resource using the matching resolvers
func (c *ResolverChain) Resolve(ref ResourceReference) ([]byte, error) {
	candidates := c.candidates(ref)
	if len(candidates) == 0 {
		return nil, newError(ErrResourceNotFound, ref.String(),
			errors.New("no resolver registered for the lookup"))
	}

	var lastErr error
	for _, r := range candidates {
		data, err := r.Resolve(ref)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, newError(ErrResourceRead, ref.String(), err)
		}
		// An explicit lookup tag selects exactly one resolver
		if ref.HasLookup() {
			return nil, newError(ErrResourceNotFound, ref.String(), err)
		}
		lastErr = err
	}
	return nil, newError(ErrResourceNotFound, ref.String(), lastErr)
}

// candidates returns the resolvers in charge of the given reference, in the order in
// which they have to be tried
func (c *ResolverChain) candidates(ref ResourceReference) []Resolver {
	if ref.HasLookup() {
		for _, r := range c.resolvers {
			if claims(r, ref.Lookup()) {
				return []Resolver{r}
			}
		}
		return nil
	}

	var list []Resolver
	if c.def != nil {
		list = append(list, c.def)
	}
	for _, r := range c.resolvers {
		if r != c.def && claims(r, "") {
			list = append(list, r)
		}
	}
	return list
}

// claims checks if the Resolver claims the given lookup tag
func claims(r Resolver, lookup string) bool {
	for _, l := range r.Lookups() {
		if l == lookup {
			return true
		}
	}
	return false
}

// fsResolver loads resources from an fs.FS
type fsResolver struct {
	fsys    fs.FS
	lookups []string
}

// NewFSResolver returns a Resolver that loads resources from the given fs.FS, typically
// an embed.FS holding the resources bundled with the application. Leading slashes of the
// path are ignored. If no lookup is given, the resolver claims the "classpath" tag.
func NewFSResolver(fsys fs.FS, lookups ...string) Resolver {
	if len(lookups) == 0 {
		lookups = []string{LookupClasspath}
	}
	return &fsResolver{fsys: fsys, lookups: lookups}
}

// Lookups satisfies the Resolver interface for the fsResolver
func (r *fsResolver) Lookups() []string {
	return r.lookups
}

// Resolve satisfies the Resolver interface for the fsResolver
func (r *fsResolver) Resolve(ref ResourceReference) ([]byte, error) {
	name := strings.TrimLeft(ref.Path(), "/")
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("invalid resource path %q: %w", ref.Path(), fs.ErrNotExist)
	}
	data, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read resource: %w", err)
	}
	return data, nil
}

// fileResolver loads resources from the file system
type fileResolver struct {
	lookups []string
}

// NewFileResolver returns a Resolver that reads files from the file system. If no lookup
// is given, the resolver claims the "file" tag.
func NewFileResolver(lookups ...string) Resolver {
	if len(lookups) == 0 {
		lookups = []string{LookupFile}
	}
	return &fileResolver{lookups: lookups}
}

// Lookups satisfies the Resolver interface for the fileResolver
func (r *fileResolver) Lookups() []string {
	return r.lookups
}

// Resolve satisfies the Resolver interface for the fileResolver
func (r *fileResolver) Resolve(ref ResourceReference) ([]byte, error) {
	data, err := os.ReadFile(ref.Path())
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// stringResolver uses the path of the reference as content
type stringResolver struct {
	lookups []string
}

// NewStringResolver returns a Resolver that treats the path of the reference as the
// literal UTF-8 content. If no lookup is given, the resolver claims the "string" and
// "s" tags.
func NewStringResolver(lookups ...string) Resolver {
	if len(lookups) == 0 {
		lookups = []string{LookupString, "s"}
	}
	return &stringResolver{lookups: lookups}
}

// Lookups satisfies the Resolver interface for the stringResolver
func (r *stringResolver) Lookups() []string {
	return r.lookups
}

// Resolve satisfies the Resolver interface for the stringResolver
func (r *stringResolver) Resolve(ref ResourceReference) ([]byte, error) {
	return []byte(ref.Path()), nil
}

// prefixedResolver adds a path prefix and suffix before delegating to another Resolver
type prefixedResolver struct {
	Resolver
	prefix string
	suffix string
}

// NewPrefixedResolver returns a Resolver that prepends prefix and appends suffix to the
// path of every reference before delegating to r. The suffix is not appended twice if the
// path already ends with it.
func NewPrefixedResolver(r Resolver, prefix, suffix string) Resolver {
	if prefix == "" && suffix == "" {
		return r
	}
	return &prefixedResolver{Resolver: r, prefix: prefix, suffix: suffix}
}

// Resolve satisfies the Resolver interface for the prefixedResolver
func (r *prefixedResolver) Resolve(ref ResourceReference) ([]byte, error) {
	path := ref.Path()
	if r.prefix != "" {
		path = strings.TrimSuffix(r.prefix, "/") + "/" + strings.TrimLeft(path, "/")
	}
	if r.suffix != "" && !strings.HasSuffix(path, r.suffix) {
		path += r.suffix
	}
	return r.Resolver.Resolve(ref.WithPath(path))
}
