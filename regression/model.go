package regression

import "fmt"

// Model is a fitted least-squares model with its fit statistics.
type Model struct {
	// Type is the model family.
	Type ModelType
	// Coefficients holds [intercept, slope] on the fitting scale.
	Coefficients []float64
	// StdErrors holds the standard errors of Coefficients.
	StdErrors []float64
	// Sigma is the residual standard error on the fitting scale.
	Sigma float64
	// N is the number of observations used.
	N int
	// RSquared is the coefficient of determination on the hours scale.
	RSquared float64
	// RMSE is the root mean square error on the hours scale.
	RMSE float64
	// Formula is a human-readable representation of the fitted model.
	Formula string
	// Estimator predicts hours from the predictor value.
	Estimator Estimator
}

// String returns a one-line summary of the model.
func (m *Model) String() string {
	return fmt.Sprintf("Model{Type: %s, R²: %.4f, RMSE: %.4f, Formula: %s}",
		m.Type, m.RSquared, m.RMSE, m.Formula)
}

// Result holds every fitted baseline ranked by R² (best first).
type Result struct {
	// BestFit is the model with the highest R².
	BestFit *Model
	// AllModels contains all fitted models, best first.
	AllModels []*Model
	// Predictor and Response name the columns the models were fitted on.
	Predictor string
	Response  string
}

// Model returns the fitted model of the given type, or nil.
func (r *Result) Model(t ModelType) *Model {
	for _, m := range r.AllModels {
		if m.Type == t {
			return m
		}
	}

	return nil
}

// Naive returns the untransformed linear model.
func (r *Result) Naive() *Model {
	return r.Model(ModelTypeLinear)
}

// Logit returns the logit-scale model.
func (r *Result) Logit() *Model {
	return r.Model(ModelTypeLogit)
}

// String returns a one-line summary of the result.
func (r *Result) String() string {
	if r.BestFit == nil {
		return "Result{BestFit: nil}"
	}

	return fmt.Sprintf("Result{BestFit: %s, TotalModels: %d}", r.BestFit, len(r.AllModels))
}
