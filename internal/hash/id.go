// Package hash derives stable 64-bit identifiers with xxHash64: random-stream seeds
// for sampler chains and fingerprints of input datasets.
package hash

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Seed derives an independent seed for the stream named label from a base seed.
// The same (base, label) pair always yields the same seed.
func Seed(base uint64, label string) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], base)

	d := xxhash.New()
	_, _ = d.Write(buf[:])
	_, _ = d.WriteString(label)

	return d.Sum64()
}

// Fingerprint accumulates a content hash over strings and floats.
// The zero value is not usable; create one with NewFingerprint.
type Fingerprint struct {
	d   *xxhash.Digest
	buf [8]byte
}

// NewFingerprint creates an empty fingerprint.
func NewFingerprint() *Fingerprint {
	return &Fingerprint{d: xxhash.New()}
}

// String adds a length-prefixed string.
func (f *Fingerprint) String(s string) {
	binary.LittleEndian.PutUint64(f.buf[:], uint64(len(s)))
	_, _ = f.d.Write(f.buf[:])
	_, _ = f.d.WriteString(s)
}

// Float adds the IEEE-754 bits of v. NaN values hash identically regardless of payload.
func (f *Fingerprint) Float(v float64) {
	bits := math.Float64bits(v)
	if math.IsNaN(v) {
		bits = math.Float64bits(math.NaN())
	}
	binary.LittleEndian.PutUint64(f.buf[:], bits)
	_, _ = f.d.Write(f.buf[:])
}

// Sum64 returns the fingerprint of everything added so far.
func (f *Fingerprint) Sum64() uint64 {
	return f.d.Sum64()
}
