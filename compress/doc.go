// Package compress provides the codecs used to shrink posterior draw dumps written
// next to the rendered plots.
//
// A full run keeps 4000 draws of every model parameter. Written as CSV that is a few
// hundred kilobytes of highly repetitive decimal text, which compresses well with any
// general-purpose algorithm. The codec is selected by format.CompressionType:
//
//   - None: the CSV is written as is
//   - Zstd: best ratio; pure Go by default, cgo libzstd with the gozstd build tag
//   - S2: fast with a good ratio
//   - LZ4: fastest decompression
//
// All codecs share one interface:
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	packed, err := codec.Compress(csvBytes)
//
// Codecs are stateless values and safe for concurrent use.
package compress
