package password

import (
	"crypto/sha512"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
	"strconv"
)

const (
	// SchemePBKDF2 is PBKDF2 with HMAC-SHA512.
	SchemePBKDF2 = "pbkdf2"
	// SchemeArgon2id is the Argon2id memory-hard KDF.
	SchemeArgon2id = "argon2id"
	// SchemeScrypt is the scrypt memory-hard KDF.
	SchemeScrypt = "scrypt"
)

const (
	pbkdf2KeyLen = 64
	argon2KeyLen = 32
	scryptKeyLen = 32
)

// DefaultPBKDF2Rounds is the iteration count used when PBKDF2Params leaves it unset.
const DefaultPBKDF2Rounds = 10000

// Upper bounds on the cost parameters accepted from stored hashes.
const (
	maxPBKDF2Rounds = 1_000_000
	// maxArgon2Memory is in KiB (1 GiB).
	maxArgon2Memory  = 1 << 20
	maxArgon2Time    = 64
	maxArgon2Threads = 255
	maxScryptN       = 1 << 20
	maxScryptR       = 32
	maxScryptP       = 16
	// maxScryptMemory bounds the 128*N*r bytes scrypt allocates.
	maxScryptMemory = 1 << 30
)

// PBKDF2Params configures the PBKDF2 hasher.
type PBKDF2Params struct {
	Iterations int
}

type pbkdf2Hasher struct{ p PBKDF2Params }

// NewPBKDF2Hasher returns a PBKDF2-HMAC-SHA512 hasher. Zero valued params are
// replaced with their defaults.
func NewPBKDF2Hasher(p PBKDF2Params) Hasher {
	if p.Iterations <= 0 {
		p.Iterations = DefaultPBKDF2Rounds
	}
	return pbkdf2Hasher{p: p}
}

func (h pbkdf2Hasher) Scheme() string { return SchemePBKDF2 }

func (h pbkdf2Hasher) Params() string {
	return params{"it": strconv.Itoa(h.p.Iterations)}.String()
}

func (h pbkdf2Hasher) Derive(s string, salt []byte, pwd Raw) ([]byte, error) {
	p, err := parseParams(s)
	if err != nil {
		return nil, err
	}
	it, err := p.bounded("it", uint64(h.p.Iterations), maxPBKDF2Rounds)
	if err != nil {
		return nil, err
	}
	return pbkdf2.Key([]byte(pwd), salt, int(it), pbkdf2KeyLen, sha512.New), nil
}

// Argon2Params configures the Argon2id hasher.
type Argon2Params struct {
	// Memory is the memory cost in KiB.
	Memory  uint32
	Time    uint32
	Threads uint8
}

type argon2idHasher struct{ p Argon2Params }

// NewArgon2idHasher returns an Argon2id hasher. Zero valued params default to
// m=65536 (64 MiB), t=3, p=2.
func NewArgon2idHasher(p Argon2Params) Hasher {
	if p.Memory == 0 {
		p.Memory = 64 * 1024
	}
	if p.Time == 0 {
		p.Time = 3
	}
	if p.Threads == 0 {
		p.Threads = 2
	}
	return argon2idHasher{p: p}
}

func (h argon2idHasher) Scheme() string { return SchemeArgon2id }

func (h argon2idHasher) Params() string {
	return params{
		"m": strconv.FormatUint(uint64(h.p.Memory), 10),
		"t": strconv.FormatUint(uint64(h.p.Time), 10),
		"p": strconv.FormatUint(uint64(h.p.Threads), 10),
	}.String()
}

func (h argon2idHasher) Derive(s string, salt []byte, pwd Raw) ([]byte, error) {
	p, err := parseParams(s)
	if err != nil {
		return nil, err
	}
	m, err := p.bounded("m", uint64(h.p.Memory), maxArgon2Memory)
	if err != nil {
		return nil, err
	}
	t, err := p.bounded("t", uint64(h.p.Time), maxArgon2Time)
	if err != nil {
		return nil, err
	}
	threads, err := p.bounded("p", uint64(h.p.Threads), maxArgon2Threads)
	if err != nil {
		return nil, err
	}
	return argon2.IDKey(
		[]byte(pwd),
		salt,
		uint32(t),
		uint32(m),
		uint8(threads),
		argon2KeyLen,
	), nil
}

// ScryptParams configures the scrypt hasher.
type ScryptParams struct {
	// N is the CPU/memory cost. It must be a power of two greater than one.
	N int
	R int
	P int
}

type scryptHasher struct{ p ScryptParams }

// NewScryptHasher returns a scrypt hasher. Zero valued params default to
// N=32768, r=8, p=1.
func NewScryptHasher(p ScryptParams) Hasher {
	if p.N == 0 {
		p.N = 1 << 15
	}
	if p.R == 0 {
		p.R = 8
	}
	if p.P == 0 {
		p.P = 1
	}
	return scryptHasher{p: p}
}

func (h scryptHasher) Scheme() string { return SchemeScrypt }

func (h scryptHasher) Params() string {
	return params{
		"n": strconv.Itoa(h.p.N),
		"r": strconv.Itoa(h.p.R),
		"p": strconv.Itoa(h.p.P),
	}.String()
}

func (h scryptHasher) Derive(s string, salt []byte, pwd Raw) ([]byte, error) {
	p, err := parseParams(s)
	if err != nil {
		return nil, err
	}
	n, err := p.bounded("n", uint64(h.p.N), maxScryptN)
	if err != nil {
		return nil, err
	}
	r, err := p.bounded("r", uint64(h.p.R), maxScryptR)
	if err != nil {
		return nil, err
	}
	par, err := p.bounded("p", uint64(h.p.P), maxScryptP)
	if err != nil {
		return nil, err
	}
	if 128*n*r > maxScryptMemory {
		return nil, malformed(nil, "scrypt parameters n=%d r=%d exceed %d bytes", n, r, maxScryptMemory)
	}
	key, err := scrypt.Key([]byte(pwd), salt, int(n), int(r), int(par), scryptKeyLen)
	if err != nil {
		return nil, malformed(err, "scrypt parameters")
	}
	return key, nil
}
