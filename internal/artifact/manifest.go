package artifact

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/arloliu/slumber/bayes"
)

// Number is a float64 that encodes NaN and infinities as JSON null.
type Number float64

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}

	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

// Manifest records what a run did and what it wrote. It is written once and
// never read back by slumber.
type Manifest struct {
	RunID     string    `json:"run_id"`
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`

	Data     DataInfo     `json:"data"`
	Model    ModelInfo    `json:"model"`
	Baseline *BaselineInfo `json:"baseline,omitempty"`

	Summary     []ParamInfo `json:"summary"`
	Warnings    []string    `json:"warnings,omitempty"`
	Artifacts   []Artifact  `json:"artifacts"`
	ElapsedSecs Number      `json:"elapsed_seconds"`
}

// DataInfo describes the model frame.
type DataInfo struct {
	Source      string `json:"source"`
	Fingerprint string `json:"fingerprint"`
	Input       int    `json:"input"`
	Retained    int    `json:"retained"`
	Missing     int    `json:"missing_brainwt"`
	Degenerate  int    `json:"degenerate"`
}

// ModelInfo describes the fitted model and sampler settings.
type ModelInfo struct {
	Response   string   `json:"response"`
	Predictors []string `json:"predictors"`
	Priors     []string `json:"priors"`
	SigmaRate  Number   `json:"sigma_rate"`
	Chains     int      `json:"chains"`
	Warmup     int      `json:"warmup"`
	Iterations int      `json:"iterations"`
	Seed       uint64   `json:"seed"`
}

// BaselineInfo describes the least-squares comparison.
type BaselineInfo struct {
	Formula    string `json:"formula"`
	RSquared   Number `json:"r_squared"`
	RMSE       Number `json:"rmse"`
	OutOfRange int    `json:"grid_out_of_range"`
}

// ParamInfo is one posterior summary line.
type ParamInfo struct {
	Name   string `json:"name"`
	Mean   Number `json:"mean"`
	SD     Number `json:"sd"`
	Q2_5   Number `json:"q2_5"`
	Median Number `json:"q50"`
	Q97_5  Number `json:"q97_5"`
	RHat   Number `json:"rhat"`
	ESS    Number `json:"ess"`
}

// NewManifest starts a manifest with a fresh run ID.
func NewManifest(version string) *Manifest {
	return &Manifest{
		RunID:     uuid.NewString(),
		Version:   version,
		CreatedAt: time.Now().UTC(),
	}
}

// SetFit fills the model and summary sections from fit.
func (m *Manifest) SetFit(fit *bayes.Fit) {
	priors := make([]string, 0, len(fit.Spec.Coefficients)+1)
	for _, p := range fit.Spec.Coefficients {
		priors = append(priors, p.String())
	}
	priors = append(priors, fit.Spec.Sigma.String())

	m.Model = ModelInfo{
		Response:   fit.Spec.Response,
		Predictors: fit.Spec.Predictors,
		Priors:     priors,
		SigmaRate:  Number(fit.SigmaRate),
		Chains:     fit.Config.Chains,
		Warmup:     fit.Config.Warmup,
		Iterations: fit.Config.Iterations,
		Seed:       fit.Config.Seed,
	}

	m.Summary = m.Summary[:0]
	for _, s := range fit.Summary() {
		m.Summary = append(m.Summary, ParamInfo{
			Name:   s.Name,
			Mean:   Number(s.Mean),
			SD:     Number(s.SD),
			Q2_5:   Number(s.Q2_5),
			Median: Number(s.Median),
			Q97_5:  Number(s.Q97_5),
			RHat:   Number(s.RHat),
			ESS:    Number(s.ESS),
		})
	}
	m.Warnings = append(m.Warnings, fit.Warnings...)
}

// Manifest writes m as indented JSON to <dir>/manifest.json. The manifest lists
// every artefact written before it.
func (w *Writer) Manifest(m *Manifest) (Artifact, error) {
	m.Artifacts = w.Artifacts()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return Artifact{}, fmt.Errorf("encode manifest: %w", err)
	}
	data = append(data, '\n')

	return w.write(KindManifest, ManifestName, data)
}
