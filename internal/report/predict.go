package report

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/msrp-cli/internal/pipeline"
	"github.com/KaramelBytes/msrp-cli/internal/regress"
	"github.com/KaramelBytes/msrp-cli/internal/utils"
)

// PredictionReport is a fitted model plus an optional prediction.
type PredictionReport struct {
	Model      *regress.Model     `json:"model,omitempty"`
	Inputs     map[string]float64 `json:"inputs,omitempty"`
	Prediction *float64           `json:"prediction,omitempty"`
	// Unavailable is set instead of Model when features are missing.
	Unavailable string `json:"unavailable,omitempty"`
}

// NewPrediction reports a model; inputs may be nil when only fitting.
func NewPrediction(m *regress.Model, inputs map[string]float64) (*PredictionReport, error) {
	r := &PredictionReport{Model: m}
	if len(inputs) > 0 {
		v, err := m.PredictNamed(inputs)
		if err != nil {
			return nil, err
		}
		r.Inputs = inputs
		r.Prediction = &v
	}
	return r, nil
}

// Unavailable reports a soft PredictionUnavailable notice.
func Unavailable(err *regress.UnavailableError) *PredictionReport {
	return &PredictionReport{Unavailable: err.Error()}
}

// JSON renders the prediction as indented JSON.
func (r *PredictionReport) JSON() ([]byte, error) { return utils.PrettyJSON(r) }

// Markdown renders the prediction.
func (r *PredictionReport) Markdown() string {
	var b strings.Builder
	b.WriteString("# MSRP Prediction\n\n")
	if r.Unavailable != "" {
		b.WriteString("⚠ ")
		b.WriteString(r.Unavailable)
		b.WriteString("\n")
		return b.String()
	}
	m := r.Model
	b.WriteString(fmt.Sprintf("Model: %s = %.2f", m.Target, m.Intercept))
	for i, f := range m.Features {
		b.WriteString(fmt.Sprintf(" %+.4f*%s", m.Coefficients[i], f))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("R²: %.4f (%s rows; train %d, test %d)\n", m.R2, m.ScoredOn, m.TrainRows, m.TestRows))
	if m.DroppedRows > 0 {
		b.WriteString(fmt.Sprintf("Rows skipped for missing features: %d\n", m.DroppedRows))
	}
	if r.Prediction != nil {
		parts := make([]string, 0, len(m.Features))
		for _, f := range m.Features {
			parts = append(parts, fmt.Sprintf("%s=%s", f, pipeline.FormatNumber(r.Inputs[f])))
		}
		b.WriteString(fmt.Sprintf("\nPredicted %s for %s: $%.0f\n", m.Target, strings.Join(parts, ", "), *r.Prediction))
	}
	return b.String()
}
