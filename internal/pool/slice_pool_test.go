package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetFloat64Slice(t *testing.T) {
	t.Run("returns slice with requested length", func(t *testing.T) {
		slice, cleanup := GetFloat64Slice(4000)
		defer cleanup()

		require.Len(t, slice, 4000)
		require.GreaterOrEqual(t, cap(slice), 4000)
	})

	t.Run("shrinks a larger pooled buffer", func(t *testing.T) {
		_, cleanup := GetFloat64Slice(1000)
		cleanup()

		slice, cleanup2 := GetFloat64Slice(10)
		defer cleanup2()
		require.Len(t, slice, 10)
	})

	t.Run("zero length", func(t *testing.T) {
		slice, cleanup := GetFloat64Slice(0)
		defer cleanup()
		require.Empty(t, slice)
	})
}

func BenchmarkGetFloat64Slice(b *testing.B) {
	for b.Loop() {
		s, cleanup := GetFloat64Slice(4000)
		s[0] = 1
		cleanup()
	}
}
