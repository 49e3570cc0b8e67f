package ui

import (
	"html/template"
	"net/http"

	"cardiorisk/app"
	"cardiorisk/domain/clinical"
	"cardiorisk/domain/prediction"
	"cardiorisk/internal/errors"

	"github.com/gin-gonic/gin"
)

type fieldView struct {
	Feature clinical.Feature
	Value   float64
	Numeric bool
	Options []option
}

type sectionView struct {
	Title  string
	Fields []fieldView
}

type modelButton struct {
	Value  string
	Label  string
	Loaded bool
}

type outcomeView struct {
	Name        string
	OK          bool
	Positive    bool
	Headline    string
	Probability float64
	Confidence  float64
	Error       string
}

type ensembleView struct {
	HighRisk           bool
	Headline           string
	Recommendations    template.HTML
	AverageProbability float64
	Agreement          string
}

type predictorView struct {
	Intro      template.HTML
	Sections   []sectionView
	Models     []modelButton
	Selected   string
	Error      string
	Record     []clinical.FieldValue
	Assessment *prediction.Assessment
	Outcomes   []outcomeView
	Ensemble   *ensembleView
	Disclaimer template.HTML
}

func (s *Server) newPredictorView(record clinical.Record, selected string) *predictorView {
	view := &predictorView{
		Intro:      s.content[contentPredictorIntro],
		Selected:   selected,
		Record:     record.Describe(),
		Disclaimer: s.content[contentDisclaimer],
	}

	grouped := clinical.BySection()
	for _, title := range clinical.Sections {
		section := sectionView{Title: title}
		for _, f := range grouped[title] {
			v, _ := record.Value(f.Key)
			fv := fieldView{Feature: f, Value: v, Numeric: f.Domain.Kind == clinical.KindNumeric}
			for _, o := range f.Domain.Options {
				fv.Options = append(fv.Options, option{Value: clinical.FormatValue(o.Value), Label: o.Label, Selected: o.Value == v})
			}
			section.Fields = append(section.Fields, fv)
		}
		view.Sections = append(view.Sections, section)
	}

	for _, st := range s.container.Predictions.Statuses() {
		view.Models = append(view.Models, modelButton{Value: string(st.Spec.ID), Label: st.Spec.Name, Loaded: st.Loaded})
	}
	view.Models = append(view.Models, modelButton{Value: app.SelectAll, Label: "All Models", Loaded: true})
	return view
}

func (v *predictorView) setAssessment(a *prediction.Assessment, content map[string]template.HTML) {
	v.Assessment = a
	for _, o := range a.Outcomes {
		ov := outcomeView{Name: o.Name, OK: o.OK(), Error: o.Error}
		if o.Prediction != nil {
			ov.Positive = o.Prediction.Label.Positive()
			ov.Headline = o.Prediction.Label.String()
			ov.Probability = o.Prediction.Probability
			ov.Confidence = o.Prediction.Confidence
		}
		v.Outcomes = append(v.Outcomes, ov)
	}
	if a.Ensemble == nil {
		return
	}
	ev := &ensembleView{
		HighRisk:           a.Ensemble.HighRisk(),
		Headline:           "Overall: Low Risk of Heart Disease",
		Recommendations:    content[contentLowRisk],
		AverageProbability: a.Ensemble.AverageProbability,
		Agreement:          a.Ensemble.Agreement(),
	}
	if ev.HighRisk {
		ev.Headline = "Overall: High Risk of Heart Disease"
		ev.Recommendations = content[contentHighRisk]
	}
	v.Ensemble = ev
}

// handlePredictorForm renders the form. Query values prefill it; absent fields use
// the form defaults.
func (s *Server) handlePredictorForm(c *gin.Context) {
	record, err := clinical.ParseRecord(c.Request.URL.Query())
	if err != nil {
		view := s.newPredictorView(clinical.DefaultRecord(), "")
		view.Error = err.Error()
		s.renderPage(c, http.StatusBadRequest, PagePredictor, view)
		return
	}
	s.renderPage(c, http.StatusOK, PagePredictor, s.newPredictorView(record, ""))
}

// assess parses the submitted form and runs the chosen models
func (s *Server) assess(c *gin.Context) (clinical.Record, string, *prediction.Assessment, error) {
	if err := c.Request.ParseForm(); err != nil {
		return clinical.DefaultRecord(), "", nil, errors.InvalidInput("malformed form: " + err.Error())
	}
	form := c.Request.PostForm
	selected := form.Get("model")
	record, err := clinical.ParseRecord(form)
	if err != nil {
		return clinical.DefaultRecord(), selected, nil, errors.InvalidRecord(err)
	}
	models, err := s.container.Predictions.ParseSelection(selected)
	if err != nil {
		return record, selected, nil, err
	}
	a, err := s.container.Predictions.Assess(c.Request.Context(), record, models)
	return record, selected, a, err
}

// handlePredict runs the selected model, or all of them, and renders the results
// under the form
func (s *Server) handlePredict(c *gin.Context) {
	record, selected, a, err := s.assess(c)
	view := s.newPredictorView(record, selected)
	if err != nil {
		s.logger.Warn("[handlePredict] %v", err)
		view.Error = err.Error()
		s.renderPage(c, errors.HTTPStatus(err), PagePredictor, view)
		return
	}
	view.setAssessment(a, s.content)
	s.renderPage(c, http.StatusOK, PagePredictor, view)
}
