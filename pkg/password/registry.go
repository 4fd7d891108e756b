package password

import (
	"crypto/subtle"
	"encoding/base64"
	"github.com/cockroachdb/errors"
	"sort"
	"sync"
)

// Registry maps hash scheme identifiers to Hashers. A Registry is safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	hashers map[string]Hasher
}

// NewRegistry returns a Registry holding the given hashers. Later hashers replace
// earlier ones registered under the same scheme.
func NewRegistry(hashers ...Hasher) *Registry {
	r := &Registry{hashers: make(map[string]Hasher, len(hashers))}
	for _, h := range hashers {
		r.hashers[h.Scheme()] = h
	}
	return r
}

// DefaultRegistry returns a Registry holding DefaultHashers.
func DefaultRegistry() *Registry { return NewRegistry(DefaultHashers()...) }

// Register adds or replaces the hasher for h.Scheme().
func (r *Registry) Register(h Hasher) error {
	if h == nil {
		return errors.New("[password] - cannot register a nil hasher")
	}
	if h.Scheme() == "" {
		return errors.New("[password] - hasher has an empty scheme")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hashers[h.Scheme()] = h
	return nil
}

// Has reports whether scheme is registered.
func (r *Registry) Has(scheme string) bool {
	_, err := r.hasher(scheme)
	return err == nil
}

// Schemes returns the registered scheme identifiers in sorted order.
func (r *Registry) Schemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	schemes := make([]string, 0, len(r.hashers))
	for s := range r.hashers {
		schemes = append(schemes, s)
	}
	sort.Strings(schemes)
	return schemes
}

// Hash hashes pwd under scheme and salt. The result is deterministic for identical
// arguments and hasher parameters.
func (r *Registry) Hash(scheme, salt string, pwd Raw) (Hashed, error) {
	h, err := r.hasher(scheme)
	if err != nil {
		return "", err
	}
	digest, err := h.Derive(h.Params(), []byte(salt), pwd)
	if err != nil {
		return "", err
	}
	return Descriptor{
		Scheme: scheme,
		Params: h.Params(),
		Salt:   []byte(salt),
		Digest: digest,
	}.Encode(), nil
}

// Verify reports whether pwd matches stored. Tagged values carry their own scheme,
// parameters and salt, which take precedence over the arguments. Untagged values are
// checked with scheme and salt: under SchemePlain the value is compared as-is, under
// any other scheme it must be the base64 encoded digest. A mismatch returns false with
// a nil error; errors are only returned for malformed values or unregistered schemes.
//
// When scheme is SchemePlain, a value that looks tagged but doesn't decode to a
// registered scheme is treated as a legacy cleartext password that happens to start
// with the separator.
func (r *Registry) Verify(scheme, salt string, pwd Raw, stored Hashed) (bool, error) {
	d, tagged, err := Decode(stored)
	if err == nil && tagged && !r.Has(d.Scheme) {
		err = unknownScheme(d.Scheme)
	}
	if err != nil {
		if scheme != SchemePlain {
			return false, err
		}
		tagged = false
	}
	if !tagged {
		if d, err = untagged(scheme, salt, stored); err != nil {
			return false, err
		}
	}
	h, err := r.hasher(d.Scheme)
	if err != nil {
		return false, err
	}
	digest, err := h.Derive(d.Params, d.Salt, pwd)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(digest, d.Digest) == 1, nil
}

func untagged(scheme, salt string, stored Hashed) (Descriptor, error) {
	d := Descriptor{Scheme: scheme, Salt: []byte(salt)}
	if scheme == SchemePlain {
		d.Digest = []byte(stored)
		return d, nil
	}
	digest, err := base64.StdEncoding.DecodeString(string(stored))
	if err != nil {
		if digest, err = base64.RawStdEncoding.DecodeString(string(stored)); err != nil {
			return d, malformed(err, "untagged %s digest", scheme)
		}
	}
	d.Digest = digest
	return d, nil
}

// NeedsRehash reports whether stored was produced by a scheme or parameters other
// than scheme's current ones. Untagged values always need a rehash.
func (r *Registry) NeedsRehash(stored Hashed, scheme string) (bool, error) {
	h, err := r.hasher(scheme)
	if err != nil {
		return false, err
	}
	d, tagged, err := Decode(stored)
	if err != nil {
		return false, err
	}
	if !tagged {
		return true, nil
	}
	return d.Scheme != scheme || d.Params != h.Params(), nil
}

func (r *Registry) hasher(scheme string) (Hasher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.hashers[scheme]
	if !ok {
		return nil, unknownScheme(scheme)
	}
	return h, nil
}
