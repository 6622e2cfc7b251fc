package regression

import (
	"fmt"

	"github.com/arloliu/slumber/dataset"
	"github.com/arloliu/slumber/internal/options"
)

// CompareConfig selects the columns the baselines are fitted on.
type CompareConfig struct {
	// Predictor is the frame column used as x.
	Predictor string
	// Hours is the frame column holding the response in hours.
	Hours string
}

// defaultCompareConfig regresses sleep_total on log10 brain mass.
func defaultCompareConfig() CompareConfig {
	return CompareConfig{
		Predictor: dataset.ColLogBrainWt,
		Hours:     dataset.ColSleepTotal,
	}
}

// CompareOption is a functional option for CompareConfig.
type CompareOption = options.Option[*CompareConfig]

// WithPredictor sets the predictor column.
func WithPredictor(name string) CompareOption {
	return options.New(func(cfg *CompareConfig) error {
		if !dataset.HasColumn(name) {
			return fmt.Errorf("%w: %q", dataset.ErrUnknownColumn, name)
		}
		cfg.Predictor = name

		return nil
	})
}
