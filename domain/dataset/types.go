package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"cardiorisk/domain/clinical"
	"cardiorisk/domain/core"
)

// Row is one labelled patient record from the dataset
type Row struct {
	Record clinical.Record
	Target int
}

// HeartDataset is the read-only clinical dataset
type HeartDataset struct {
	Source         string
	Rows           []Row
	IgnoredColumns []string
	LoadedAt       time.Time
}

// RecordCount returns the number of rows
func (d *HeartDataset) RecordCount() int {
	return len(d.Rows)
}

// FieldCount returns the schema width, features plus target
func (d *HeartDataset) FieldCount() int {
	return clinical.NumFeatures + 1
}

// Column extracts one column, including the target, as float64 values
func (d *HeartDataset) Column(key core.FeatureKey) ([]float64, error) {
	out := make([]float64, len(d.Rows))
	if key == clinical.Target {
		for i, r := range d.Rows {
			out[i] = float64(r.Target)
		}
		return out, nil
	}
	idx := -1
	for i, k := range clinical.FeatureOrder {
		if k == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, core.NewNotFoundError("column", string(key))
	}
	for i, r := range d.Rows {
		out[i] = r.Record.Vector()[idx]
	}
	return out, nil
}

// Targets returns the target column as ints
func (d *HeartDataset) Targets() []int {
	out := make([]int, len(d.Rows))
	for i, r := range d.Rows {
		out[i] = r.Target
	}
	return out
}

// PositiveCount returns how many rows have target 1
func (d *HeartDataset) PositiveCount() int {
	n := 0
	for _, r := range d.Rows {
		n += r.Target
	}
	return n
}

// RawRow maps a header to its cell text
type RawRow map[string]string

// FromRawRows validates headers against the 14-column schema and parses every cell.
// Column order in the source does not matter; unknown columns are ignored and reported.
func FromRawRows(source string, headers []string, rows []RawRow) (*HeartDataset, error) {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[strings.TrimSpace(h)] = true
	}

	var missing []string
	for _, col := range clinical.DatasetColumns() {
		if !present[string(col)] {
			missing = append(missing, string(col))
		}
	}
	if len(missing) > 0 {
		return nil, core.NewSchemaError("missing columns " + strings.Join(missing, ", "))
	}

	known := make(map[string]bool, clinical.NumFeatures+1)
	for _, col := range clinical.DatasetColumns() {
		known[string(col)] = true
	}
	var ignored []string
	for _, h := range headers {
		if h = strings.TrimSpace(h); !known[h] {
			ignored = append(ignored, h)
		}
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: dataset has no rows", core.ErrInsufficientData)
	}

	parsed := make([]Row, 0, len(rows))
	for i, raw := range rows {
		row, err := parseRow(raw)
		if err != nil {
			// data rows start on line 2 of the source
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		parsed = append(parsed, row)
	}

	ds, err := New(source, parsed)
	if err != nil {
		return nil, err
	}
	ds.IgnoredColumns = ignored
	return ds, nil
}

// New builds a dataset from already typed rows, for sources that do not go through text
func New(source string, rows []Row) (*HeartDataset, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: dataset has no rows", core.ErrInsufficientData)
	}
	for i, r := range rows {
		if r.Target != 0 && r.Target != 1 {
			return nil, fmt.Errorf("row %d: %w", i+1, core.NewSchemaError(fmt.Sprintf("target must be 0 or 1, got %d", r.Target)))
		}
	}
	return &HeartDataset{Source: source, Rows: rows, LoadedAt: time.Now()}, nil
}

func parseRow(raw RawRow) (Row, error) {
	vec := make([]float64, clinical.NumFeatures)
	for i, key := range clinical.FeatureOrder {
		v, err := parseCell(raw, string(key))
		if err != nil {
			return Row{}, err
		}
		vec[i] = v
	}
	target, err := parseCell(raw, string(clinical.Target))
	if err != nil {
		return Row{}, err
	}
	if target != 0 && target != 1 {
		return Row{}, core.NewSchemaError(fmt.Sprintf("target must be 0 or 1, got %v", target))
	}
	record, err := clinical.FromVector(vec)
	if err != nil {
		return Row{}, err
	}
	return Row{Record: record, Target: int(target)}, nil
}

func parseCell(raw RawRow, column string) (float64, error) {
	cell := strings.TrimSpace(raw[column])
	if cell == "" {
		return 0, core.NewSchemaError(fmt.Sprintf("%s is empty", column))
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, core.NewSchemaError(fmt.Sprintf("%s=%q is not numeric", column, cell))
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, core.NewSchemaError(fmt.Sprintf("%s=%q is not a finite number", column, cell))
	}
	return v, nil
}
