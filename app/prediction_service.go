package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"cardiorisk/domain/clinical"
	"cardiorisk/domain/core"
	"cardiorisk/domain/prediction"
	"cardiorisk/internal"
	"cardiorisk/internal/errors"
	"cardiorisk/internal/metrics"
	"cardiorisk/ports"
)

// ModelSpec names one of the classifiers the dashboard offers
type ModelSpec struct {
	ID   core.ModelID
	Name string
}

// DefaultModels is the fixed display and execution order
var DefaultModels = []ModelSpec{
	{ID: "logistic_regression", Name: "Logistic Regression"},
	{ID: "random_forest", Name: "Random Forest"},
	{ID: "knn", Name: "K-Nearest Neighbors"},
}

// ModelStatus reports whether a configured model is usable
type ModelStatus struct {
	Spec   ModelSpec
	Info   ports.ModelInfo
	Loaded bool
	Error  string
}

type loadedModel struct {
	classifier ports.Classifier
	info       ports.ModelInfo
}

// PredictionService runs loaded classifiers against clinical records. Models are
// loaded once and only read afterwards.
type PredictionService struct {
	specs   []ModelSpec
	mu      sync.RWMutex
	models  map[core.ModelID]loadedModel
	failed  map[core.ModelID]error
	metrics *metrics.Recorder
	logger  *internal.Logger
}

// NewPredictionService creates a service for the given models, in order
func NewPredictionService(specs []ModelSpec, recorder *metrics.Recorder) *PredictionService {
	return &PredictionService{
		specs:   specs,
		models:  make(map[core.ModelID]loadedModel, len(specs)),
		failed:  make(map[core.ModelID]error),
		metrics: recorder,
		logger:  internal.DefaultLogger.Named("PredictionService"),
	}
}

// LoadModels loads every configured model from store. A failing model is recorded
// and skipped; the returned count is the number that loaded.
func (s *PredictionService) LoadModels(ctx context.Context, store ports.ModelStore) int {
	loaded := 0
	for _, spec := range s.specs {
		classifier, info, err := store.Load(ctx, spec.ID)
		if err != nil {
			s.logger.Error("failed to load %s: %v", spec.Name, err)
			s.markFailed(spec.ID, errors.ModelUnavailable(spec.Name, err))
			continue
		}
		s.Register(spec.ID, classifier, info)
		loaded++
	}
	s.metrics.SetModelsLoaded(loaded)
	return loaded
}

// Register installs a classifier under id, replacing any earlier load failure
func (s *PredictionService) Register(id core.ModelID, classifier ports.Classifier, info ports.ModelInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if info.ID == "" {
		info.ID = id
	}
	s.models[id] = loadedModel{classifier: classifier, info: info}
	delete(s.failed, id)
}

func (s *PredictionService) markFailed(id core.ModelID, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed[id] = err
}

// Specs returns the configured models in display order
func (s *PredictionService) Specs() []ModelSpec {
	return append([]ModelSpec(nil), s.specs...)
}

// Statuses reports every configured model in display order
func (s *PredictionService) Statuses() []ModelStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ModelStatus, len(s.specs))
	for i, spec := range s.specs {
		st := ModelStatus{Spec: spec}
		if m, ok := s.models[spec.ID]; ok {
			st.Loaded = true
			st.Info = m.info
		} else if err, ok := s.failed[spec.ID]; ok {
			st.Error = err.Error()
		} else {
			st.Error = "not loaded"
		}
		out[i] = st
	}
	return out
}

// LoadErrors returns one "name: reason" line per model that failed to load
func (s *PredictionService) LoadErrors() []string {
	var out []string
	for _, st := range s.Statuses() {
		if !st.Loaded {
			out = append(out, fmt.Sprintf("%s: %s", st.Spec.Name, st.Error))
		}
	}
	sort.Strings(out)
	return out
}

func (s *PredictionService) spec(id core.ModelID) (ModelSpec, bool) {
	for _, spec := range s.specs {
		if spec.ID == id {
			return spec, true
		}
	}
	return ModelSpec{}, false
}

// Predict runs one model on a record
func (s *PredictionService) Predict(ctx context.Context, id core.ModelID, record clinical.Record) (prediction.ModelPrediction, error) {
	if err := ctx.Err(); err != nil {
		return prediction.ModelPrediction{}, err
	}
	spec, ok := s.spec(id)
	if !ok {
		return prediction.ModelPrediction{}, errors.NotFound(fmt.Sprintf("model %q", id))
	}

	s.mu.RLock()
	m, loaded := s.models[id]
	loadErr := s.failed[id]
	s.mu.RUnlock()
	if !loaded {
		if loadErr != nil {
			return prediction.ModelPrediction{}, loadErr
		}
		return prediction.ModelPrediction{}, errors.ModelUnavailable(spec.Name, nil)
	}

	start := time.Now()
	p, err := runModel(m.classifier, record.Vector())
	s.metrics.ObservePrediction(string(id), time.Since(start), err)
	if err != nil {
		return prediction.ModelPrediction{}, errors.PredictionFailed(spec.Name, err)
	}
	return p, nil
}

// runModel is the per-model prediction step: label from Predict, probabilities from PredictProba
func runModel(c ports.Classifier, vector []float64) (prediction.ModelPrediction, error) {
	label, err := c.Predict(vector)
	if err != nil {
		return prediction.ModelPrediction{}, err
	}
	proba, err := c.PredictProba(vector)
	if err != nil {
		return prediction.ModelPrediction{}, err
	}
	return prediction.FromProba(label, proba)
}

// Assess validates the record and runs the selected models, all configured models
// when selection is empty. A failing model does not stop the others. The ensemble
// is computed only when more than one model produced a prediction.
func (s *PredictionService) Assess(ctx context.Context, record clinical.Record, selection []core.ModelID) (*prediction.Assessment, error) {
	if err := record.Validate(); err != nil {
		return nil, errors.InvalidRecord(err)
	}
	if len(selection) == 0 {
		for _, spec := range s.specs {
			selection = append(selection, spec.ID)
		}
	}
	selection = dedupe(selection)

	assessment := &prediction.Assessment{
		ID:        core.NewAssessmentID(),
		Record:    record,
		CreatedAt: time.Now().UTC(),
	}
	for _, id := range selection {
		spec, ok := s.spec(id)
		if !ok {
			return nil, errors.InvalidInput(fmt.Sprintf("unknown model %q", id))
		}
		outcome := prediction.ModelOutcome{Model: id, Name: spec.Name}
		p, err := s.Predict(ctx, id, record)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Warn("%s failed for assessment %s: %v", spec.Name, assessment.ID, err)
			outcome.Error = err.Error()
		} else {
			outcome.Prediction = &p
		}
		assessment.Outcomes = append(assessment.Outcomes, outcome)
	}

	if successful := assessment.Successful(); len(successful) > 1 {
		result, err := prediction.Aggregate(successful)
		if err != nil {
			return nil, err
		}
		assessment.Ensemble = &result
		s.metrics.ObserveEnsemble(result.HighRisk())
	}
	return assessment, nil
}

// dedupe drops repeated ids, keeping the first occurrence. Outcomes and the vote
// are both one per model.
func dedupe(ids []core.ModelID) []core.ModelID {
	seen := make(map[core.ModelID]bool, len(ids))
	out := make([]core.ModelID, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// ParseSelection maps a form or query value to model ids. "all" and "" select every model.
func (s *PredictionService) ParseSelection(value string) ([]core.ModelID, error) {
	if value == "" || value == SelectAll {
		return nil, nil
	}
	if _, ok := s.spec(core.ModelID(value)); !ok {
		return nil, errors.InvalidInput(fmt.Sprintf("unknown model %q", value))
	}
	return []core.ModelID{core.ModelID(value)}, nil
}

// SelectAll is the selection value that runs every model
const SelectAll = "all"
