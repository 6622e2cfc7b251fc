// Package format defines the enumerations shared by slumber's artefact writers:
// compression codecs for draw dumps and output formats for rendered plots.
package format

import (
	"fmt"
	"strings"
)

type (
	CompressionType uint8
	PlotFormat      uint8
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.

	PlotSVG PlotFormat = 0x1 // PlotSVG renders scalable vector graphics.
	PlotPNG PlotFormat = 0x2 // PlotPNG renders a raster PNG image.
	PlotPDF PlotFormat = 0x3 // PlotPDF renders a single-page PDF.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Extension returns the file suffix appended to compressed artefacts, including
// the leading dot. CompressionNone has no suffix.
func (c CompressionType) Extension() string {
	switch c {
	case CompressionZstd:
		return ".zst"
	case CompressionS2:
		return ".s2"
	case CompressionLZ4:
		return ".lz4"
	default:
		return ""
	}
}

// ParseCompression maps a configuration name ("none", "zstd", "s2", "lz4") to a
// CompressionType. The empty string means none.
func ParseCompression(name string) (CompressionType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "s2":
		return CompressionS2, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression %q (valid: none, zstd, s2, lz4)", name)
	}
}

func (p PlotFormat) String() string {
	switch p {
	case PlotSVG:
		return "svg"
	case PlotPNG:
		return "png"
	case PlotPDF:
		return "pdf"
	default:
		return "unknown"
	}
}

// Extension returns the file suffix for the plot format, including the leading dot.
func (p PlotFormat) Extension() string {
	return "." + p.String()
}

// ParsePlotFormat maps "svg", "png" or "pdf" to a PlotFormat. The empty string means svg.
func ParsePlotFormat(name string) (PlotFormat, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "svg":
		return PlotSVG, nil
	case "png":
		return PlotPNG, nil
	case "pdf":
		return PlotPDF, nil
	default:
		return 0, fmt.Errorf("unknown plot format %q (valid: svg, png, pdf)", name)
	}
}
