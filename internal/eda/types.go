package eda

import (
	"math"
	"strconv"

	"cardiorisk/domain/core"
)

// Display labels used for the target and sex columns
const (
	LabelDisease   = "Heart Disease"
	LabelNoDisease = "No Disease"
	LabelFemale    = "Female"
	LabelMale      = "Male"
)

// Coef is a correlation coefficient; undefined values (constant columns) encode as null
type Coef float64

// MarshalJSON writes NaN as null
func (c Coef) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(c)) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(float64(c), 'f', -1, 64)), nil
}

// Valid reports whether the coefficient is defined
func (c Coef) Valid() bool { return !math.IsNaN(float64(c)) }

// Overview holds the headline dataset counts
type Overview struct {
	Records       int    `json:"records"`
	TotalFeatures int    `json:"total_features"`
	InputFeatures int    `json:"input_features"`
	OutputFields  int    `json:"output_features"`
	Positive      int    `json:"positive"`
	Negative      int    `json:"negative"`
	Source        string `json:"source"`
}

// Slice is one pie segment
type Slice struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Crosstab counts rows by two categorical labels
type Crosstab struct {
	Rows    []string `json:"rows"`
	Columns []string `json:"columns"`
	Counts  [][]int  `json:"counts"` // [row][column]
}

// Bin is a half-open histogram interval; the last bin is closed
type Bin struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// HistogramSeries counts one group over shared bins
type HistogramSeries struct {
	Label  string `json:"label"`
	Counts []int  `json:"counts"`
}

// Histogram is a feature distribution split by target
type Histogram struct {
	Feature core.FeatureKey   `json:"feature"`
	Bins    []Bin             `json:"bins"`
	Series  []HistogramSeries `json:"series"`
}

// Summary mirrors a describe() table
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// Rows returns the summary as ordered (statistic, value) pairs for tables
func (s Summary) Rows() []SummaryRow {
	return []SummaryRow{
		{"count", float64(s.Count)},
		{"mean", s.Mean},
		{"std", s.Std},
		{"min", s.Min},
		{"25%", s.Q25},
		{"50%", s.Median},
		{"75%", s.Q75},
		{"max", s.Max},
	}
}

// SummaryRow is one describe() line
type SummaryRow struct {
	Stat  string
	Value float64
}

// CorrelationMatrix holds pairwise Pearson coefficients over every dataset column
type CorrelationMatrix struct {
	Columns []core.FeatureKey `json:"columns"`
	Values  [][]Coef          `json:"values"`
	N       int               `json:"n"`
}

// FeatureCorrelation is one entry of the target ranking
type FeatureCorrelation struct {
	Feature     core.FeatureKey `json:"feature"`
	Correlation Coef            `json:"correlation"`
	PValue      Coef            `json:"p_value"` // two-sided, against zero correlation
}

// Report is the precomputed part of the EDA page
type Report struct {
	Overview      Overview             `json:"overview"`
	Target        []Slice              `json:"target"`
	SexByTarget   Crosstab             `json:"sex_by_target"`
	AgeByTarget   Histogram            `json:"age_by_target"`
	Correlation   CorrelationMatrix    `json:"correlation"`
	TargetRanking []FeatureCorrelation `json:"target_ranking"`
}

// FeatureAnalysis is the histogram and summary for one selected feature
type FeatureAnalysis struct {
	Feature   core.FeatureKey `json:"feature"`
	Histogram Histogram       `json:"histogram"`
	Summary   Summary         `json:"summary"`
}

// ScatterGroup holds the points for one colour value
type ScatterGroup struct {
	Label string    `json:"label"`
	X     []float64 `json:"x"`
	Y     []float64 `json:"y"`
	Age   []float64 `json:"age"`
}

// Scatter is a two-feature scatter plot coloured by target or sex
type Scatter struct {
	X       core.FeatureKey `json:"x"`
	Y       core.FeatureKey `json:"y"`
	ColorBy core.FeatureKey `json:"color_by"`
	Groups  []ScatterGroup  `json:"groups"`
}
