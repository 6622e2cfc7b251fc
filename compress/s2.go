package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/s2"
)

// S2Compressor writes S2 streams, the fastest of the built-in codecs. Draw dumps
// compressed with it carry the .s2 suffix and decode with the s2d tool.
type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates an S2 codec.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Compress encodes data as a single-threaded S2 stream.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	if n := s2.MaxEncodedLen(len(data)); n > 0 {
		buf.Grow(n)
	}

	sw := s2.NewWriter(&buf, s2.WriterConcurrency(1), s2.WriterBetterCompression())
	if _, err := sw.Write(data); err != nil {
		return nil, fmt.Errorf("s2 write: %w", err)
	}
	if err := sw.Close(); err != nil {
		return nil, fmt.Errorf("s2 close: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress decodes an S2 stream.
func (c S2Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	out, err := io.ReadAll(s2.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}

	return out, nil
}
