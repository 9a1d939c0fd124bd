// Package apikey generates the random credential strings attached to every
// provisioned account. Keys are the base64 encoding of 24 random bytes with
// a randomly chosen two-character alternate pair substituted for '+' and '/',
// which keeps them URL-safe-ish without a fixed substitution pair.
package apikey

import (
	"crypto/rand"
	"encoding/base64"
)

const (
	// Length is the size of every generated key: base64 of 24 bytes.
	Length = 32

	rawBytes = 24
	alphanum = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// New returns a fresh random API key. There are no error conditions: the
// underlying randomness source panics only when the platform CSPRNG is
// unavailable, matching crypto/rand semantics.
func New() string {
	alt := make([]byte, 2)
	random := make([]byte, 2)
	mustRead(random)
	for i := range alt {
		alt[i] = alphanum[int(random[i])%len(alphanum)]
	}

	raw := make([]byte, rawBytes)
	mustRead(raw)
	return substitute(base64.RawStdEncoding.EncodeToString(raw), alt)
}

// Valid reports whether the candidate has the shape of a generated key:
// fixed length, every character drawn from the alphanumeric set. The
// substitution pair is itself alphanumeric, so generated keys always pass.
func Valid(candidate string) bool {
	if len(candidate) != Length {
		return false
	}
	for i := 0; i < len(candidate); i++ {
		if !keyable(candidate[i]) {
			return false
		}
	}
	return true
}

// substitute swaps '+' and '/' in a standard base64 string for the alternate
// pair. The alternate characters come from the alphanumeric set, so they may
// coincide with symbols the standard alphabet already uses; plain replacement
// handles that where a custom encoding alphabet would reject the duplicates.
func substitute(encoded string, alt []byte) string {
	out := []byte(encoded)
	for i, c := range out {
		switch c {
		case '+':
			out[i] = alt[0]
		case '/':
			out[i] = alt[1]
		}
	}
	return string(out)
}

func keyable(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	default:
		return false
	}
}

func mustRead(buf []byte) {
	if _, err := rand.Read(buf); err != nil {
		panic("apikey: csprng unavailable: " + err.Error())
	}
}
