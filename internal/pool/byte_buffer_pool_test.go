package pool

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteBuffer(t *testing.T) {
	bb := NewByteBuffer(4)

	n, err := bb.WriteString("draw,")
	require.NoError(t, err)
	require.Equal(t, 5, n)

	n, err = bb.Write([]byte("sigma"))
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "draw,sigma", string(bb.Bytes()))
	require.Equal(t, 10, bb.Len())

	var out bytes.Buffer
	written, err := bb.WriteTo(&out)
	require.NoError(t, err)
	require.EqualValues(t, 10, written)
	require.Equal(t, "draw,sigma", out.String())

	bb.Reset()
	require.Zero(t, bb.Len())
	require.GreaterOrEqual(t, cap(bb.B), 10)
}

func TestByteBufferPool(t *testing.T) {
	t.Run("returns empty buffers", func(t *testing.T) {
		p := NewByteBufferPool(16, 0)
		bb := p.Get()
		_, _ = bb.WriteString("payload")
		p.Put(bb)

		again := p.Get()
		require.Zero(t, again.Len())
	})

	t.Run("drops oversized buffers", func(t *testing.T) {
		p := NewByteBufferPool(8, 32)
		bb := p.Get()
		_, _ = bb.Write(make([]byte, 64))
		p.Put(bb)

		fresh := p.Get()
		require.LessOrEqual(t, cap(fresh.B), 32)
	})

	t.Run("nil put is ignored", func(t *testing.T) {
		p := NewByteBufferPool(8, 0)
		require.NotPanics(t, func() { p.Put(nil) })
	})

	t.Run("shared artifact pool", func(t *testing.T) {
		bb := GetArtifactBuffer()
		require.NotNil(t, bb)
		require.Zero(t, bb.Len())
		PutArtifactBuffer(bb)
	})
}
