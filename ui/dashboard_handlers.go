package ui

import (
	"net/http"

	"cardiorisk/domain/clinical"
	"cardiorisk/domain/core"
	"cardiorisk/internal/eda"
	"cardiorisk/internal/errors"

	"github.com/gin-gonic/gin"
)

// EDA tabs
const (
	tabTarget      = "target"
	tabFeatures    = "features"
	tabCorrelation = "correlation"
	tabScatter     = "scatter"
)

var edaTabs = []option{
	{Value: tabTarget, Label: "Target Analysis"},
	{Value: tabFeatures, Label: "Feature Analysis"},
	{Value: tabCorrelation, Label: "Correlation"},
	{Value: tabScatter, Label: "Interactive Scatter"},
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

func featureOptions(keys []core.FeatureKey, selected core.FeatureKey) []option {
	out := make([]option, len(keys))
	for i, k := range keys {
		label := string(k)
		if f, err := clinical.Lookup(k); err == nil {
			label = f.Label
		}
		out[i] = option{Value: string(k), Label: label, Selected: k == selected}
	}
	return out
}

type edaView struct {
	Available bool
	Error     string
	Tabs      []option
	Tab       string

	Overview eda.Overview
	Ranking  []eda.FeatureCorrelation

	Feature  core.FeatureKey
	Features []option
	Summary  []eda.SummaryRow

	X, Y, Color  core.FeatureKey
	XOptions     []option
	YOptions     []option
	ColorOptions []option
}

// selection reads the EDA query parameters, falling back to the defaults
func selection(c *gin.Context) (feature, x, y, color core.FeatureKey) {
	feature = core.FeatureKey(c.DefaultQuery("feature", string(eda.FeatureOptions()[0])))
	x = core.FeatureKey(c.DefaultQuery("x", string(eda.DefaultScatterX)))
	y = core.FeatureKey(c.DefaultQuery("y", string(eda.DefaultScatterY)))
	color = core.FeatureKey(c.DefaultQuery("color", string(clinical.Target)))
	return
}

// handleEDA renders the four analysis tabs. Charts are drawn client-side from the
// JSON endpoints below; tables are rendered here.
func (s *Server) handleEDA(c *gin.Context) {
	feature, x, y, color := selection(c)
	view := edaView{
		Tab:          c.DefaultQuery("tab", tabTarget),
		Feature:      feature,
		Features:     featureOptions(eda.FeatureOptions(), feature),
		X:            x,
		Y:            y,
		Color:        color,
		XOptions:     featureOptions(eda.ScatterOptions(), x),
		YOptions:     featureOptions(eda.ScatterOptions(), y),
		ColorOptions: featureOptions(eda.ColorOptions(), color),
	}
	view.Tabs = make([]option, len(edaTabs))
	for i, t := range edaTabs {
		t.Selected = t.Value == view.Tab
		view.Tabs[i] = t
	}

	analyzer := s.container.Analyzer
	if analyzer == nil {
		s.renderPage(c, http.StatusOK, PageEDA, view)
		return
	}
	view.Available = true

	ctx := c.Request.Context()
	report, err := analyzer.Report(ctx)
	if err != nil {
		s.logger.Error("[handleEDA] report: %v", err)
		view.Available = false
		view.Error = err.Error()
		s.renderPage(c, errors.HTTPStatus(err), PageEDA, view)
		return
	}
	view.Overview = report.Overview
	view.Ranking = report.TargetRanking

	status := http.StatusOK
	fa, err := analyzer.Feature(ctx, feature)
	if err != nil {
		view.Error = err.Error()
		status = errors.HTTPStatus(err)
	} else {
		view.Summary = fa.Summary.Rows()
	}
	if _, err := analyzer.Scatter(x, y, color); err != nil {
		view.Error = err.Error()
		status = errors.HTTPStatus(err)
	}
	s.renderPage(c, status, PageEDA, view)
}

// writeError answers a JSON endpoint with the error's mapped status
func writeError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(errors.HTTPStatus(err), gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}

func (s *Server) analyzer() (*eda.Analyzer, error) {
	if _, err := s.container.Dataset(); err != nil {
		return nil, err
	}
	return s.container.Analyzer, nil
}

// handleEDAReport returns the target, correlation and overview views
func (s *Server) handleEDAReport(c *gin.Context) {
	a, err := s.analyzer()
	if err != nil {
		writeError(c, err)
		return
	}
	report, err := a.Report(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// handleEDAFeature returns one feature's histogram and summary
func (s *Server) handleEDAFeature(c *gin.Context) {
	a, err := s.analyzer()
	if err != nil {
		writeError(c, err)
		return
	}
	feature, _, _, _ := selection(c)
	if name := c.Query("name"); name != "" {
		feature = core.FeatureKey(name)
	}
	fa, err := a.Feature(c.Request.Context(), feature)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, fa)
}

// handleEDAScatter returns scatter series grouped by target or sex
func (s *Server) handleEDAScatter(c *gin.Context) {
	a, err := s.analyzer()
	if err != nil {
		writeError(c, err)
		return
	}
	_, x, y, color := selection(c)
	scatter, err := a.Scatter(x, y, color)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, scatter)
}
