package ui

import (
	"html/template"
	"net/http"

	"cardiorisk/app"
	"cardiorisk/domain/clinical"
	"cardiorisk/domain/core"

	"github.com/gin-gonic/gin"
)

var team = []string{"Salman Rasheed", "Zakwan Jaleel", "Yousef Alkhalifa", "Ahmad", "Younes"}

type featureCard struct {
	Title string
	Tone  string
	Lines []string
}

type homeView struct {
	Intro    template.HTML
	Team     []string
	Models   []app.ModelSpec
	Features []featureCard
}

// handleHome renders the project introduction
func (s *Server) handleHome(c *gin.Context) {
	models := s.container.Predictions.Specs()
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.Name
	}
	s.renderPage(c, http.StatusOK, PageHome, homeView{
		Intro:  s.content[contentIntro],
		Team:   team,
		Models: models,
		Features: []featureCard{
			{Title: "🤖 Multiple AI Models", Tone: "info", Lines: append([]string{"Choose from three algorithms:"}, names...)},
			{Title: "📊 Comprehensive Analysis", Tone: "success", Lines: []string{"Interactive exploratory analysis of the clinical dataset"}},
			{Title: "🎯 Accurate Predictions", Tone: "warning", Lines: []string{"Heart failure risk from thirteen clinical parameters"}},
		},
	})
}

type keyPredictor struct {
	Key   core.FeatureKey
	Label string
	Hint  string
}

var predictorHints = map[core.FeatureKey]string{
	clinical.Thalach: "lower = higher risk",
	clinical.Exang:   "presence = higher risk",
	clinical.CP:      "asymptomatic = higher risk",
	clinical.Oldpeak: "higher = higher risk",
	clinical.CA:      "more = higher risk",
}

type dataInfoView struct {
	Inputs         []clinical.Feature
	Output         clinical.Feature
	TotalFeatures  int
	InputFeatures  int
	OutputFeatures int
	Records        int
	Source         string
	KeyPredictors  []keyPredictor
	Notes          template.HTML
	Significance   template.HTML
}

// handleDataInfo renders the feature catalog
func (s *Server) handleDataInfo(c *gin.Context) {
	view := dataInfoView{
		Inputs:         clinical.Catalog(),
		Output:         clinical.OutputFeature,
		TotalFeatures:  clinical.NumFeatures + 1,
		InputFeatures:  clinical.NumFeatures,
		OutputFeatures: 1,
		Notes:          s.content[contentDataNotes],
		Significance:   s.content[contentSignificance],
	}
	for _, key := range clinical.KeyPredictors {
		f, err := clinical.Lookup(key)
		if err != nil {
			s.logger.Warn("[handleDataInfo] %v", err)
			continue
		}
		view.KeyPredictors = append(view.KeyPredictors, keyPredictor{Key: key, Label: f.Description, Hint: predictorHints[key]})
	}
	if ds, err := s.container.Dataset(); err == nil {
		view.Records = ds.RecordCount()
		view.Source = ds.Source
	}
	s.renderPage(c, http.StatusOK, PageDataInfo, view)
}

// handleHealth reports what loaded at startup. It always answers 200 so the
// dashboard stays reachable when a dataset or model is missing.
func (s *Server) handleHealth(c *gin.Context) {
	loaded := 0
	for _, st := range s.container.Predictions.Statuses() {
		if st.Loaded {
			loaded++
		}
	}
	status := "ok"
	_, dsErr := s.container.Dataset()
	if dsErr != nil || loaded < len(s.container.Predictions.Specs()) {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        status,
		"models_loaded": loaded,
		"dataset":       dsErr == nil,
	})
}
