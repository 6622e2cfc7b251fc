package pool

import "sync"

// float64SlicePool holds scratch buffers for per-column reductions over draw matrices.
var float64SlicePool = sync.Pool{
	New: func() any { return &[]float64{} },
}

// GetFloat64Slice retrieves a float64 slice of length size from the pool.
//
// The contents of the returned slice are unspecified; callers overwrite it.
// The returned cleanup function must be called (typically with defer) to hand
// the buffer back, after which the slice must not be used.
//
// Example:
//
//	col, cleanup := pool.GetFloat64Slice(draws.Rows())
//	defer cleanup()
func GetFloat64Slice(size int) ([]float64, func()) {
	ptr, _ := float64SlicePool.Get().(*[]float64)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]float64, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { float64SlicePool.Put(ptr) }
}
