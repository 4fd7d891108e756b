package password

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DefaultHashers returns the hashers registered by DefaultRegistry.
func DefaultHashers() []Hasher {
	return []Hasher{
		PlainHasher{},
		NewPBKDF2Hasher(PBKDF2Params{}),
		NewArgon2idHasher(Argon2Params{}),
		NewScryptHasher(ScryptParams{}),
	}
}

// Hasher derives a password digest for a single hash scheme. Implementations must be
// stateless with respect to a single call and safe for concurrent use.
type Hasher interface {
	// Scheme is the identifier the hasher is registered under. It tags every
	// value the hasher produces.
	Scheme() string
	// Params returns the canonical parameter string used for new hashes.
	Params() string
	// Derive computes the digest of pwd under params and salt. An empty params
	// string selects the hasher's own parameters.
	Derive(params string, salt []byte, pwd Raw) ([]byte, error)
}

// SchemePlain compares the stored value and the supplied password as-is.
const SchemePlain = "plain"

// PlainHasher is the legacy no-op scheme. It exists so that records written before
// passwords were hashed keep verifying through the same path as every other scheme.
type PlainHasher struct{}

// Scheme implements Hasher.
func (PlainHasher) Scheme() string { return SchemePlain }

// Params implements Hasher.
func (PlainHasher) Params() string { return "" }

// Derive implements Hasher.
func (PlainHasher) Derive(_ string, _ []byte, pwd Raw) ([]byte, error) {
	return []byte(pwd), nil
}

type params map[string]string

func parseParams(s string) (params, error) {
	p := make(params)
	if s == "" {
		return p, nil
	}
	for _, kv := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" || v == "" {
			return nil, malformed(nil, "parameter %q", kv)
		}
		p[k] = v
	}
	return p, nil
}

// bounded returns the integer stored under key, or def when absent. Values outside
// [1, limit] are rejected so a stored hash can't demand unbounded work.
func (p params) bounded(key string, def, limit uint64) (uint64, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, malformed(err, "parameter %s", key)
	}
	if n == 0 || n > limit {
		return 0, malformed(nil, "parameter %s=%d outside [1, %d]", key, n, limit)
	}
	return n, nil
}

func (p params) String() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = fmt.Sprintf("%s=%s", k, p[k])
	}
	return strings.Join(pairs, ",")
}
