package api

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"sort"

	"cardiorisk/domain/clinical"
	"cardiorisk/domain/core"
	"cardiorisk/domain/prediction"
	"cardiorisk/internal/errors"

	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds request bodies; a record is a few hundred bytes
const maxBodyBytes = 64 << 10

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed: %v", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Code: errors.GetCode(err)})
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.InvalidInput(fmt.Sprintf("malformed request body: %v", err))
	}
	return nil
}

type modelResponse struct {
	ID       core.ModelID `json:"id"`
	Name     string       `json:"name"`
	Kind     string       `json:"kind,omitempty"`
	Checksum core.Hash    `json:"checksum,omitempty"`
	Loaded   bool         `json:"loaded"`
	Error    string       `json:"error,omitempty"`
}

// handleListModels reports every configured model and whether it loaded
func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	statuses := s.predictions.Statuses()
	out := make([]modelResponse, len(statuses))
	for i, st := range statuses {
		out[i] = modelResponse{ID: st.Spec.ID, Name: st.Spec.Name, Kind: st.Info.Kind, Checksum: st.Info.Checksum, Loaded: st.Loaded, Error: st.Error}
	}
	writeJSON(w, http.StatusOK, out)
}

type optionResponse struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

type featureResponse struct {
	Key         core.FeatureKey  `json:"key"`
	Label       string           `json:"label"`
	Section     string           `json:"section"`
	Kind        string           `json:"kind"`
	Options     []optionResponse `json:"options,omitempty"`
	Min         *float64         `json:"min,omitempty"`
	Max         *float64         `json:"max,omitempty"`
	Step        *float64         `json:"step,omitempty"`
	Default     float64          `json:"default"`
	Description string           `json:"description"`
	Range       string           `json:"typical_range"`
}

// handleListFeatures returns the 13 inputs in vector order with their domains
func (s *Server) handleListFeatures(w http.ResponseWriter, r *http.Request) {
	catalog := clinical.Catalog()
	out := make([]featureResponse, len(catalog))
	for i, f := range catalog {
		d := f.Domain
		fr := featureResponse{
			Key:         f.Key,
			Label:       f.Label,
			Section:     f.Section,
			Kind:        string(d.Kind),
			Default:     d.Default,
			Description: f.Description,
			Range:       f.Range,
		}
		if d.Kind == clinical.KindNumeric {
			min, max, step := d.Min, d.Max, d.Step
			fr.Min, fr.Max, fr.Step = &min, &max, &step
		}
		for _, o := range d.Options {
			fr.Options = append(fr.Options, optionResponse{Value: o.Value, Label: o.Label})
		}
		out[i] = fr
	}
	writeJSON(w, http.StatusOK, out)
}

type predictRequest struct {
	Record map[core.FeatureKey]float64 `json:"record"`
	Models []core.ModelID              `json:"models,omitempty"`
}

func parseRecord(values map[core.FeatureKey]float64) (clinical.Record, error) {
	record, err := clinical.FromMap(values)
	if err != nil {
		return clinical.Record{}, errors.InvalidRecord(err)
	}
	return record, nil
}

// handlePredict runs the listed models, or all of them, on one record. The
// ensemble is included only when more than one model succeeded.
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	record, err := parseRecord(req.Record)
	if err != nil {
		s.writeError(w, err)
		return
	}
	assessment, err := s.predictions.Assess(r.Context(), record, req.Models)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assessment)
}

type predictOneRequest struct {
	Record map[core.FeatureKey]float64 `json:"record"`
}

type predictOneResponse struct {
	Model core.ModelID `json:"model"`
	prediction.ModelPrediction
	Verdict string `json:"verdict"`
}

// handlePredictOne runs a single model
func (s *Server) handlePredictOne(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseModelID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, errors.InvalidInput(err.Error()))
		return
	}
	var req predictOneRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	record, err := parseRecord(req.Record)
	if err != nil {
		s.writeError(w, err)
		return
	}
	p, err := s.predictions.Predict(r.Context(), id, record)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, predictOneResponse{Model: id, ModelPrediction: p, Verdict: p.Label.String()})
}

type ensembleRequest struct {
	Predictions map[string]prediction.ModelPrediction `json:"predictions"`
}

type ensembleResponse struct {
	prediction.EnsembleResult
	Agreement string `json:"agreement"`
	HighRisk  bool   `json:"high_risk"`
}

// handleEnsemble aggregates caller-supplied predictions
func (s *Server) handleEnsemble(w http.ResponseWriter, r *http.Request) {
	var req ensembleRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	names := make([]string, 0, len(req.Predictions))
	for name := range req.Predictions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := req.Predictions[name].Validate(); err != nil {
			s.writeError(w, errors.InvalidInput(fmt.Sprintf("prediction %q: %v", name, err)))
			return
		}
	}

	result, err := prediction.Aggregate(req.Predictions)
	if err != nil {
		if stderrors.Is(err, core.ErrEmptyEnsemble) {
			err = errors.EmptyInput(err)
		}
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ensembleResponse{EnsembleResult: result, Agreement: result.Agreement(), HighRisk: result.HighRisk()})
}

// handleHealth answers 200 while at least one model is usable
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	loaded := 0
	for _, st := range s.predictions.Statuses() {
		if st.Loaded {
			loaded++
		}
	}
	body := map[string]interface{}{"status": "ok", "models_loaded": loaded}
	if s.datasetErr != nil {
		body["dataset"] = s.datasetErr() == nil
	}
	status := http.StatusOK
	if loaded == 0 {
		body["status"] = "unavailable"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, body)
}
