package password

import (
	"encoding/base64"
	"strings"
)

const separator = "$"

// Descriptor is the decoded form of a Hashed value.
type Descriptor struct {
	// Scheme is the identifier of the hasher that produced Digest.
	Scheme string
	// Params is the scheme specific parameter string (e.g. "it=10000"). An empty
	// string selects the hasher's own parameters.
	Params string
	Salt   []byte
	Digest []byte
}

// Encode encodes the descriptor as $scheme$params$salt$digest, with salt and digest
// in unpadded base64.
func (d Descriptor) Encode() Hashed {
	return Hashed(separator + strings.Join([]string{
		d.Scheme,
		d.Params,
		base64.RawStdEncoding.EncodeToString(d.Salt),
		base64.RawStdEncoding.EncodeToString(d.Digest),
	}, separator))
}

// Decode parses a Hashed value. Values that don't start with '$' were stored by a
// legacy writer that didn't tag its output: they are returned with tagged set to false
// and the whole value as the digest.
func Decode(h Hashed) (d Descriptor, tagged bool, err error) {
	if !strings.HasPrefix(string(h), separator) {
		return Descriptor{Digest: []byte(h)}, false, nil
	}
	parts := strings.Split(string(h)[1:], separator)
	if len(parts) != 4 {
		return d, true, malformed(nil, "expected 4 segments, found %d", len(parts))
	}
	if parts[0] == "" {
		return d, true, malformed(nil, "empty scheme")
	}
	d.Scheme, d.Params = parts[0], parts[1]
	if d.Salt, err = base64.RawStdEncoding.DecodeString(parts[2]); err != nil {
		return d, true, malformed(err, "salt")
	}
	if d.Digest, err = base64.RawStdEncoding.DecodeString(parts[3]); err != nil {
		return d, true, malformed(err, "digest")
	}
	return d, true, nil
}
