// Package artifact writes the files produced by a run: plots, the posterior
// draws dump and the run manifest.
package artifact

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/arloliu/slumber/bayes"
	"github.com/arloliu/slumber/compress"
	"github.com/arloliu/slumber/format"
	"github.com/arloliu/slumber/internal/pool"
	"github.com/arloliu/slumber/plotspec"
	"github.com/arloliu/slumber/render"
)

// Artifact kinds.
const (
	KindPlot     = "plot"
	KindDraws    = "draws"
	KindManifest = "manifest"
)

// DrawsBaseName is the file name of the uncompressed draws dump.
const DrawsBaseName = "draws.csv"

// ManifestName is the file name of the run manifest.
const ManifestName = "manifest.json"

// Artifact is one written file.
type Artifact struct {
	Kind  string `json:"kind"`
	Name  string `json:"name"`
	Path  string `json:"path"`
	Bytes int64  `json:"bytes"`
}

// Writer writes artefacts into one directory and remembers what it wrote.
type Writer struct {
	dir       string
	artifacts []Artifact
}

// NewWriter creates dir if needed and returns a writer for it.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	return &Writer{dir: dir}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Artifacts returns the files written so far, in order.
func (w *Writer) Artifacts() []Artifact {
	return slices.Clone(w.artifacts)
}

// Plot renders p with r to <dir>/<p.Name><ext>.
func (w *Writer) Plot(ctx context.Context, r render.Renderer, p *plotspec.Plot) (Artifact, error) {
	buf := pool.GetArtifactBuffer()
	defer pool.PutArtifactBuffer(buf)

	if err := r.Render(ctx, p, buf); err != nil {
		return Artifact{}, err
	}

	return w.write(KindPlot, p.Name+r.Format().Extension(), buf.Bytes())
}

// Draws writes the pooled posterior draws as CSV, compressed with ct, to
// <dir>/draws.csv<ext>. Each row carries its chain and iteration.
func (w *Writer) Draws(fit *bayes.Fit, ct format.CompressionType) (Artifact, compress.CompressionStats, error) {
	buf := pool.GetArtifactBuffer()
	defer pool.PutArtifactBuffer(buf)

	if err := EncodeDraws(buf, fit); err != nil {
		return Artifact{}, compress.CompressionStats{}, err
	}

	data, stats, err := compress.CompressWithStats(ct, buf.Bytes())
	if err != nil {
		return Artifact{}, stats, fmt.Errorf("compress draws: %w", err)
	}

	a, err := w.write(KindDraws, DrawsBaseName+ct.Extension(), data)

	return a, stats, err
}

// EncodeDraws writes the draws of fit as CSV to buf.
func EncodeDraws(buf *pool.ByteBuffer, fit *bayes.Fit) error {
	cw := csv.NewWriter(buf)

	header := append([]string{"chain", "iteration"}, fit.Names...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("encode draws: %w", err)
	}

	iterations := fit.Chains.Iterations()
	record := make([]string, len(header))
	for i := range fit.NumDraws() {
		record[0] = strconv.Itoa(i/iterations + 1)
		record[1] = strconv.Itoa(i%iterations + 1)
		for j := range fit.Names {
			record[j+2] = strconv.FormatFloat(fit.Draws.At(i, j), 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("encode draws: %w", err)
		}
	}
	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("encode draws: %w", err)
	}

	return nil
}

func (w *Writer) write(kind, name string, data []byte) (Artifact, error) {
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Artifact{}, fmt.Errorf("write %s: %w", name, err)
	}

	a := Artifact{Kind: kind, Name: name, Path: path, Bytes: int64(len(data))}
	w.artifacts = append(w.artifacts, a)

	return a, nil
}
