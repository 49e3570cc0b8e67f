package eda

import (
	"fmt"
	"math"
	"sort"

	"cardiorisk/domain/clinical"
	"cardiorisk/domain/core"
	"cardiorisk/domain/dataset"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// AgeBins matches the age histogram on the target tab
const AgeBins = 30

// maxDistinctBins is the largest number of distinct values that still get one bin each
const maxDistinctBins = 10

// defaultBins is used for continuous features on the feature tab
const defaultBins = 20

// ComputeOverview counts rows and classes
func ComputeOverview(ds *dataset.HeartDataset) Overview {
	pos := ds.PositiveCount()
	return Overview{
		Records:       ds.RecordCount(),
		TotalFeatures: ds.FieldCount(),
		InputFeatures: clinical.NumFeatures,
		OutputFields:  1,
		Positive:      pos,
		Negative:      ds.RecordCount() - pos,
		Source:        ds.Source,
	}
}

func targetLabel(t int) string {
	if t == 1 {
		return LabelDisease
	}
	return LabelNoDisease
}

func sexLabel(v float64) string {
	switch v {
	case 0:
		return LabelFemale
	case 1:
		return LabelMale
	default:
		return clinical.FormatValue(v)
	}
}

// TargetDistribution returns class counts, largest first
func TargetDistribution(ds *dataset.HeartDataset) []Slice {
	counts := map[string]int{}
	for _, r := range ds.Rows {
		counts[targetLabel(r.Target)]++
	}
	out := make([]Slice, 0, len(counts))
	for label, n := range counts {
		out = append(out, Slice{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// SexByTarget cross-tabulates sex against target; labels present in the data only, sorted
func SexByTarget(ds *dataset.HeartDataset) Crosstab {
	rowIdx := map[string]int{}
	colIdx := map[string]int{}
	for _, r := range ds.Rows {
		rowIdx[sexLabel(r.Record.Sex)] = 0
		colIdx[targetLabel(r.Target)] = 0
	}
	rows := sortedKeys(rowIdx)
	cols := sortedKeys(colIdx)
	for i, k := range rows {
		rowIdx[k] = i
	}
	for i, k := range cols {
		colIdx[k] = i
	}

	counts := make([][]int, len(rows))
	for i := range counts {
		counts[i] = make([]int, len(cols))
	}
	for _, r := range ds.Rows {
		counts[rowIdx[sexLabel(r.Record.Sex)]][colIdx[targetLabel(r.Target)]]++
	}
	return Crosstab{Rows: rows, Columns: cols, Counts: counts}
}

func sortedKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// EqualBins splits [min, max] into n equal-width bins
func EqualBins(values []float64, n int) []Bin {
	if len(values) == 0 || n < 1 {
		return nil
	}
	lo, hi := floats.Min(values), floats.Max(values)
	if lo == hi {
		return []Bin{{Lo: lo, Hi: hi}}
	}
	width := (hi - lo) / float64(n)
	bins := make([]Bin, n)
	for i := range bins {
		bins[i] = Bin{Lo: lo + float64(i)*width, Hi: lo + float64(i+1)*width}
	}
	bins[n-1].Hi = hi
	return bins
}

// AutoBins gives low-cardinality columns one unit-wide bin per value and
// everything else defaultBins equal-width bins
func AutoBins(values []float64) []Bin {
	distinct := map[float64]bool{}
	for _, v := range values {
		distinct[v] = true
		if len(distinct) > maxDistinctBins {
			return EqualBins(values, defaultBins)
		}
	}
	keys := make([]float64, 0, len(distinct))
	for v := range distinct {
		keys = append(keys, v)
	}
	sort.Float64s(keys)
	bins := make([]Bin, len(keys))
	for i, v := range keys {
		bins[i] = Bin{Lo: v - 0.5, Hi: v + 0.5}
	}
	return bins
}

// binIndex finds the bin holding v; values past the last edge land in the last bin
func binIndex(bins []Bin, v float64) int {
	i := sort.Search(len(bins), func(i int) bool { return v < bins[i].Hi })
	if i == len(bins) {
		return len(bins) - 1
	}
	return i
}

// HistogramByTarget counts a column into bins separately for each target class
func HistogramByTarget(ds *dataset.HeartDataset, key core.FeatureKey, bins []Bin) (Histogram, error) {
	values, err := ds.Column(key)
	if err != nil {
		return Histogram{}, err
	}
	series := []HistogramSeries{
		{Label: LabelNoDisease, Counts: make([]int, len(bins))},
		{Label: LabelDisease, Counts: make([]int, len(bins))},
	}
	if len(bins) > 0 {
		for i, v := range values {
			series[ds.Rows[i].Target].Counts[binIndex(bins, v)]++
		}
	}
	return Histogram{Feature: key, Bins: bins, Series: series}, nil
}

// Describe summarises a column the way a describe() table does: sample standard
// deviation and linearly interpolated quartiles
func Describe(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, fmt.Errorf("%w: no values to describe", core.ErrInsufficientData)
	}
	data := stats.Float64Data(values)

	mean, err := stats.Mean(data)
	if err != nil {
		return Summary{}, err
	}
	minV, err := stats.Min(data)
	if err != nil {
		return Summary{}, err
	}
	maxV, err := stats.Max(data)
	if err != nil {
		return Summary{}, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return Summary{}, err
	}
	var std float64
	if len(values) > 1 {
		if std, err = stats.StandardDeviationSample(data); err != nil {
			return Summary{}, err
		}
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return Summary{
		Count:  len(values),
		Mean:   mean,
		Std:    std,
		Min:    minV,
		Q25:    quantile(sorted, 0.25),
		Median: median,
		Q75:    quantile(sorted, 0.75),
		Max:    maxV,
	}, nil
}

// quantile interpolates between the two nearest ranks of sorted data
func quantile(sorted []float64, q float64) float64 {
	h := q * float64(len(sorted)-1)
	lo := int(math.Floor(h))
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

// Correlation computes the Pearson matrix over the 13 features and the target
func Correlation(ds *dataset.HeartDataset) (CorrelationMatrix, error) {
	cols := clinical.DatasetColumns()
	n := ds.RecordCount()
	if n < 2 {
		return CorrelationMatrix{}, fmt.Errorf("%w: correlation needs at least 2 rows", core.ErrInsufficientData)
	}

	x := mat.NewDense(n, len(cols), nil)
	for j, key := range cols {
		col, err := ds.Column(key)
		if err != nil {
			return CorrelationMatrix{}, err
		}
		x.SetCol(j, col)
	}

	var corr mat.SymDense
	stat.CorrelationMatrix(&corr, x, nil)

	values := make([][]Coef, len(cols))
	for i := range cols {
		values[i] = make([]Coef, len(cols))
		for j := range cols {
			values[i][j] = Coef(corr.At(i, j))
		}
	}
	return CorrelationMatrix{Columns: cols, Values: values, N: n}, nil
}

// TargetRanking orders the features by their correlation with the target, highest
// first. Undefined coefficients sort last.
func TargetRanking(m CorrelationMatrix) []FeatureCorrelation {
	targetIdx := -1
	for i, c := range m.Columns {
		if c == clinical.Target {
			targetIdx = i
		}
	}
	if targetIdx < 0 {
		return nil
	}

	out := make([]FeatureCorrelation, 0, len(m.Columns)-1)
	for i, c := range m.Columns {
		if i != targetIdx {
			r := m.Values[targetIdx][i]
			out = append(out, FeatureCorrelation{Feature: c, Correlation: r, PValue: CorrelationPValue(r, m.N)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Correlation, out[j].Correlation
		if !a.Valid() || !b.Valid() {
			return a.Valid() && !b.Valid()
		}
		return a > b
	})
	return out
}

// CorrelationPValue tests a Pearson coefficient over n rows against zero with a
// Student's t statistic on n-2 degrees of freedom
func CorrelationPValue(r Coef, n int) Coef {
	if !r.Valid() || n < 3 {
		return Coef(math.NaN())
	}
	rr := float64(r)
	if math.Abs(rr) >= 1 {
		return 0
	}
	t := rr * math.Sqrt(float64(n-2)/(1-rr*rr))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
	return Coef(2 * dist.Survival(math.Abs(t)))
}

// FeatureOptions lists the columns selectable on the feature tab
func FeatureOptions() []core.FeatureKey {
	var out []core.FeatureKey
	for _, k := range clinical.FeatureOrder {
		if k != clinical.Sex {
			out = append(out, k)
		}
	}
	return out
}

// ScatterOptions lists the columns selectable as scatter axes
func ScatterOptions() []core.FeatureKey {
	return append([]core.FeatureKey(nil), clinical.FeatureOrder[:]...)
}

// ColorOptions lists the columns a scatter can be coloured by
func ColorOptions() []core.FeatureKey {
	return []core.FeatureKey{clinical.Target, clinical.Sex}
}

// Default scatter axes
const (
	DefaultScatterX = clinical.Age
	DefaultScatterY = clinical.TrestBPS
)

func contains(keys []core.FeatureKey, k core.FeatureKey) bool {
	for _, c := range keys {
		if c == k {
			return true
		}
	}
	return false
}

// BuildScatter groups (x, y) points by target or sex
func BuildScatter(ds *dataset.HeartDataset, x, y, colorBy core.FeatureKey) (Scatter, error) {
	if !contains(ScatterOptions(), x) {
		return Scatter{}, fmt.Errorf("%w %q", core.ErrFeatureNotFound, x)
	}
	if !contains(ScatterOptions(), y) {
		return Scatter{}, fmt.Errorf("%w %q", core.ErrFeatureNotFound, y)
	}
	if !contains(ColorOptions(), colorBy) {
		return Scatter{}, fmt.Errorf("%w %q", core.ErrFeatureNotFound, colorBy)
	}

	xs, err := ds.Column(x)
	if err != nil {
		return Scatter{}, err
	}
	ys, err := ds.Column(y)
	if err != nil {
		return Scatter{}, err
	}

	groups := map[string]*ScatterGroup{}
	for i, row := range ds.Rows {
		label := targetLabel(row.Target)
		if colorBy == clinical.Sex {
			label = sexLabel(row.Record.Sex)
		}
		g, ok := groups[label]
		if !ok {
			g = &ScatterGroup{Label: label}
			groups[label] = g
		}
		g.X = append(g.X, xs[i])
		g.Y = append(g.Y, ys[i])
		g.Age = append(g.Age, row.Record.Age)
	}

	labels := make([]string, 0, len(groups))
	for l := range groups {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	out := Scatter{X: x, Y: y, ColorBy: colorBy}
	for _, l := range labels {
		out.Groups = append(out.Groups, *groups[l])
	}
	return out, nil
}
