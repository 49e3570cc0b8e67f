package classifier

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// StandardScaler centers and scales each feature, (x - mean) / scale
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func (s *StandardScaler) validate(width int) error {
	if len(s.Mean) != width || len(s.Scale) != width {
		return fmt.Errorf("scaler has %d means and %d scales, want %d", len(s.Mean), len(s.Scale), width)
	}
	for i, sc := range s.Scale {
		if sc == 0 {
			return fmt.Errorf("scaler scale[%d] is zero", i)
		}
	}
	return nil
}

// Transform returns a scaled copy of x; a nil scaler is the identity
func (s *StandardScaler) Transform(x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	if s == nil {
		return out
	}
	floats.Sub(out, s.Mean)
	floats.Div(out, s.Scale)
	return out
}
