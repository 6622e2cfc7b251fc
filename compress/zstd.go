package compress

// ZstdCompressor provides Zstandard compression, the best ratio of the built-in codecs.
// The implementation is pure Go unless built with the gozstd tag and cgo enabled.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a Zstd codec with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
