package compress

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/arloliu/slumber/format"
	"github.com/stretchr/testify/require"
)

// drawsCSV mimics a posterior dump: many rows of similar decimal numbers.
func drawsCSV(rows int) []byte {
	var sb strings.Builder
	sb.WriteString("chain,draw,(Intercept),log_brainwt,sigma\n")
	for i := range rows {
		fmt.Fprintf(&sb, "%d,%d,%.6f,%.6f,%.6f\n", i%4+1, i/4+1, -0.9+float64(i%17)*0.001, -0.35+float64(i%13)*0.0005, 0.55+float64(i%7)*0.001)
	}

	return []byte(sb.String())
}

func TestCodecs_RoundTrip(t *testing.T) {
	payload := drawsCSV(2000)

	for _, ct := range []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	} {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			packed, err := codec.Compress(payload)
			require.NoError(t, err)
			if ct != format.CompressionNone {
				require.Less(t, len(packed), len(payload))
			}

			restored, err := codec.Decompress(packed)
			require.NoError(t, err)
			require.Equal(t, payload, restored)
		})
	}
}

func TestCodecs_EmptyInput(t *testing.T) {
	for _, codec := range []Codec{NewZstdCompressor(), NewS2Compressor(), NewLZ4Compressor()} {
		out, err := codec.Decompress(nil)
		require.NoError(t, err)
		require.Empty(t, out)
	}

	out, err := NewLZ4Compressor().Compress(nil)
	require.NoError(t, err)
	require.Nil(t, out)
}

func TestCodecs_CorruptInput(t *testing.T) {
	garbage := []byte("definitely not a compressed frame")

	_, err := NewZstdCompressor().Decompress(garbage)
	require.Error(t, err)

	_, err = NewLZ4Compressor().Decompress(garbage)
	require.Error(t, err)

	_, err = NewS2Compressor().Decompress(garbage)
	require.Error(t, err)
}

func TestS2Compressor_StreamFormat(t *testing.T) {
	payload := drawsCSV(100)

	packed, err := NewS2Compressor().Compress(payload)
	require.NoError(t, err)
	// Every S2 stream opens with the stream identifier chunk.
	require.True(t, bytes.HasPrefix(packed, []byte("\xff\x06\x00\x00S2sTwO")))
}

func TestNoOpCompressor_Copies(t *testing.T) {
	payload := []byte("chain,iteration,sigma\n1,1,0.5\n")

	out, err := NewNoOpCompressor().Compress(payload)
	require.NoError(t, err)
	require.Equal(t, payload, out)

	payload[0] = 'X'
	require.Equal(t, byte('c'), out[0])
}

func TestGetCodec_Unknown(t *testing.T) {
	_, err := GetCodec(format.CompressionType(0xFF))
	require.ErrorContains(t, err, "unsupported compression type")
}

func TestCompressWithStats(t *testing.T) {
	payload := drawsCSV(500)

	packed, stats, err := CompressWithStats(format.CompressionZstd, payload)
	require.NoError(t, err)
	require.Equal(t, format.CompressionZstd, stats.Algorithm)
	require.EqualValues(t, len(payload), stats.OriginalSize)
	require.EqualValues(t, len(packed), stats.CompressedSize)
	require.Less(t, stats.CompressionRatio(), 1.0)
	require.Greater(t, stats.SpaceSavings(), 0.0)

	_, _, err = CompressWithStats(format.CompressionType(0), payload)
	require.Error(t, err)
}

func TestCompressionStats_Empty(t *testing.T) {
	var s CompressionStats
	require.Zero(t, s.CompressionRatio())
	require.Zero(t, s.SpaceSavings())
}

func BenchmarkZstdCompress(b *testing.B) {
	payload := drawsCSV(4000)
	codec := NewZstdCompressor()
	b.SetBytes(int64(len(payload)))
	for b.Loop() {
		_, _ = codec.Compress(payload)
	}
}
