package clinical

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"cardiorisk/domain/core"
)

// Record is one patient's 13 input measurements.
// Values are stored as submitted; a Record is never mutated after construction.
type Record struct {
	Age      float64 `json:"age"`
	Sex      float64 `json:"sex"`
	CP       float64 `json:"cp"`
	TrestBPS float64 `json:"trestbps"`
	Chol     float64 `json:"chol"`
	FBS      float64 `json:"fbs"`
	RestECG  float64 `json:"restecg"`
	Thalach  float64 `json:"thalach"`
	Exang    float64 `json:"exang"`
	Oldpeak  float64 `json:"oldpeak"`
	Slope    float64 `json:"slope"`
	CA       float64 `json:"ca"`
	Thal     float64 `json:"thal"`
}

// DefaultRecord returns the form defaults
func DefaultRecord() Record {
	values := make(map[core.FeatureKey]float64, NumFeatures)
	for _, f := range catalog {
		values[f.Key] = f.Domain.Default
	}
	r, _ := fromMap(values)
	return r
}

// Vector returns the record in FeatureOrder
func (r Record) Vector() []float64 {
	return []float64{
		r.Age, r.Sex, r.CP, r.TrestBPS, r.Chol, r.FBS, r.RestECG,
		r.Thalach, r.Exang, r.Oldpeak, r.Slope, r.CA, r.Thal,
	}
}

// Value returns a single field by key
func (r Record) Value(key core.FeatureKey) (float64, error) {
	for i, k := range FeatureOrder {
		if k == key {
			return r.Vector()[i], nil
		}
	}
	return 0, core.NewNotFoundError("feature", string(key))
}

// FromVector builds a record from a vector in FeatureOrder
func FromVector(v []float64) (Record, error) {
	if len(v) != NumFeatures {
		return Record{}, fmt.Errorf("%w: got %d, want %d", core.ErrVectorLength, len(v), NumFeatures)
	}
	return Record{
		Age: v[0], Sex: v[1], CP: v[2], TrestBPS: v[3], Chol: v[4], FBS: v[5], RestECG: v[6],
		Thalach: v[7], Exang: v[8], Oldpeak: v[9], Slope: v[10], CA: v[11], Thal: v[12],
	}, nil
}

func fromMap(values map[core.FeatureKey]float64) (Record, error) {
	v := make([]float64, NumFeatures)
	for i, key := range FeatureOrder {
		val, ok := values[key]
		if !ok {
			return Record{}, core.NewValidationError(string(key), "is missing")
		}
		v[i] = val
	}
	return FromVector(v)
}

// FromMap builds and validates a record from keyed values. Every feature is
// required and unknown keys are rejected.
func FromMap(values map[core.FeatureKey]float64) (Record, error) {
	for key := range values {
		if _, err := Lookup(key); err != nil || key == Target {
			return Record{}, core.NewValidationError(string(key), "is not an input feature")
		}
	}
	r, err := fromMap(values)
	if err != nil {
		return Record{}, err
	}
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Validate checks every field against its form domain
func (r Record) Validate() error {
	vec := r.Vector()
	var problems []string
	for i, f := range catalog {
		v := vec[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			problems = append(problems, fmt.Sprintf("%s is not a finite number", f.Key))
			continue
		}
		if !f.Domain.Allows(v) {
			problems = append(problems, fmt.Sprintf("%s=%s outside %s", f.Key, FormatValue(v), describeDomain(f.Domain)))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", core.ErrInvalidRecord, strings.Join(problems, "; "))
	}
	return nil
}

func describeDomain(d Domain) string {
	if d.Kind == KindCategorical {
		vals := make([]string, len(d.Options))
		for i, o := range d.Options {
			vals[i] = FormatValue(o.Value)
		}
		return "{" + strings.Join(vals, ",") + "}"
	}
	return fmt.Sprintf("[%s, %s]", FormatValue(d.Min), FormatValue(d.Max))
}

// ValueSource is satisfied by url.Values and gin's form accessors
type ValueSource interface {
	Get(key string) string
}

// ParseRecord reads the 13 fields from form values. Absent fields take the form
// default; present fields must parse and lie within their domain.
func ParseRecord(src ValueSource) (Record, error) {
	values := make(map[core.FeatureKey]float64, NumFeatures)
	for _, f := range catalog {
		raw := strings.TrimSpace(src.Get(string(f.Key)))
		if raw == "" {
			values[f.Key] = f.Domain.Default
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Record{}, core.NewValidationError(string(f.Key), fmt.Sprintf("%q is not a number", raw))
		}
		values[f.Key] = v
	}
	r, err := fromMap(values)
	if err != nil {
		return Record{}, err
	}
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Describe returns "label: value" pairs in vector order, using option labels for categorical fields
func (r Record) Describe() []FieldValue {
	vec := r.Vector()
	out := make([]FieldValue, len(catalog))
	for i, f := range catalog {
		display := FormatValue(vec[i])
		if label := f.Domain.LabelFor(vec[i]); label != "" {
			display = label
		}
		out[i] = FieldValue{Key: f.Key, Label: f.Label, Value: vec[i], Display: display}
	}
	return out
}

// FieldValue is one rendered record field
type FieldValue struct {
	Key     core.FeatureKey
	Label   string
	Value   float64
	Display string
}

// FormatValue prints whole numbers without a decimal point
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
