package regression

import (
	"fmt"
	"strings"

	"github.com/arloliu/slumber/transform"
)

// ModelType represents the type of baseline model.
type ModelType int

const (
	// ModelTypeLinear represents the naive model on the hours scale: sleep = a + b * x
	ModelTypeLinear ModelType = iota
	// ModelTypeLogit represents the logit-scale model: logit(sleep / 24) = a + b * x
	ModelTypeLogit
)

// modelTypeNames maps ModelType to their string representations.
var modelTypeNames = map[ModelType]string{
	ModelTypeLinear: "linear",
	ModelTypeLogit:  "logit",
}

// String returns the string representation of the model type.
func (mt ModelType) String() string {
	if name, exists := modelTypeNames[mt]; exists {
		return name
	}

	return "unknown"
}

// modelTypeFromString maps string names to ModelType.
var modelTypeFromString = map[string]ModelType{
	"linear": ModelTypeLinear,
	"naive":  ModelTypeLinear,
	"logit":  ModelTypeLogit,
}

// ModelTypeFromString returns the ModelType for a given string name.
// Returns ModelType(-1) for unknown names.
func ModelTypeFromString(name string) ModelType {
	if modelType, exists := modelTypeFromString[strings.ToLower(name)]; exists {
		return modelType
	}

	return ModelType(-1)
}

// Estimator predicts sleep hours from the predictor (log10 brain mass).
type Estimator interface {
	// Estimate returns the predicted sleep total in hours for x.
	Estimate(x float64) float64
	// Type returns the model type.
	Type() ModelType
	// Coefficients returns [intercept, slope] on the fitting scale.
	Coefficients() []float64
	// SetCoefficients replaces the coefficients. Exactly two are expected.
	SetCoefficients(coeffs []float64) error
}

// LinearEstimator implements sleep = a + b * x. Its predictions are unbounded.
type LinearEstimator struct {
	a, b   float64
	coeffs []float64 // Cached coefficient slice to avoid allocations
}

// NewLinearEstimator creates a linear estimator with the given coefficients.
func NewLinearEstimator(a, b float64) *LinearEstimator {
	return &LinearEstimator{a: a, b: b, coeffs: make([]float64, 2)}
}

// Estimate returns a + b * x.
func (l *LinearEstimator) Estimate(x float64) float64 {
	return l.a + l.b*x
}

// Type returns the model type.
func (l *LinearEstimator) Type() ModelType {
	return ModelTypeLinear
}

// Coefficients returns the model coefficients [a, b].
func (l *LinearEstimator) Coefficients() []float64 {
	l.coeffs[0] = l.a
	l.coeffs[1] = l.b

	return l.coeffs
}

// SetCoefficients updates the coefficients of the linear model.
func (l *LinearEstimator) SetCoefficients(coeffs []float64) error {
	if len(coeffs) != 2 {
		return fmt.Errorf("linear model expects exactly 2 coefficients, got %d", len(coeffs))
	}
	l.a = coeffs[0]
	l.b = coeffs[1]

	return nil
}

// LogitEstimator implements 24 * sigmoid(a + b * x). Its predictions stay inside
// the open interval (0, 24).
type LogitEstimator struct {
	a, b   float64
	coeffs []float64
}

// NewLogitEstimator creates a logit estimator with the given logit-scale coefficients.
func NewLogitEstimator(a, b float64) *LogitEstimator {
	return &LogitEstimator{a: a, b: b, coeffs: make([]float64, 2)}
}

// Estimate returns 24 * sigmoid(a + b * x).
func (l *LogitEstimator) Estimate(x float64) float64 {
	return transform.ToHours(l.a + l.b*x)
}

// Type returns the model type.
func (l *LogitEstimator) Type() ModelType {
	return ModelTypeLogit
}

// Coefficients returns the logit-scale coefficients [a, b].
func (l *LogitEstimator) Coefficients() []float64 {
	l.coeffs[0] = l.a
	l.coeffs[1] = l.b

	return l.coeffs
}

// SetCoefficients updates the logit-scale coefficients.
func (l *LogitEstimator) SetCoefficients(coeffs []float64) error {
	if len(coeffs) != 2 {
		return fmt.Errorf("logit model expects exactly 2 coefficients, got %d", len(coeffs))
	}
	l.a = coeffs[0]
	l.b = coeffs[1]

	return nil
}

// NewEstimator creates an estimator of the given type from its coefficients.
//
// Example:
//
//	est, err := regression.NewEstimator(regression.ModelTypeLogit, []float64{-0.9, -0.45})
//	hours := est.Estimate(-2) // brain mass of 10 g
func NewEstimator(modelType ModelType, coeffs []float64) (Estimator, error) {
	var est Estimator
	switch modelType {
	case ModelTypeLinear:
		est = NewLinearEstimator(0, 0)
	case ModelTypeLogit:
		est = NewLogitEstimator(0, 0)
	default:
		return nil, fmt.Errorf("unknown model type: %d", modelType)
	}

	if err := est.SetCoefficients(coeffs); err != nil {
		return nil, err
	}

	return est, nil
}
