package ui

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"cardiorisk/domain/clinical"
	"cardiorisk/internal"
	"cardiorisk/internal/container"
	"cardiorisk/internal/eda"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html static content/*.md
var embeddedFiles embed.FS

// Server represents the dashboard web server
type Server struct {
	router        *gin.Engine
	templates     *template.Template
	content       map[string]template.HTML
	embeddedFiles embed.FS
	container     *container.Container
	logger        *internal.Logger
}

// NewServer creates a new dashboard server over a loaded container
func NewServer(c *container.Container) *Server {
	return &Server{
		router:        gin.Default(),
		embeddedFiles: embeddedFiles,
		container:     c,
		logger:        internal.DefaultLogger.Named("ui"),
	}
}

// Initialize parses templates and page content and registers middleware and routes
func (s *Server) Initialize() error {
	funcMap := template.FuncMap{
		"pct": func(v float64) string { return fmt.Sprintf("%.1f%%", v*100) },
		"fixed": func(v float64) string {
			return fmt.Sprintf("%.2f", v)
		},
		"coef": func(c eda.Coef) string {
			if !c.Valid() {
				return "n/a"
			}
			return fmt.Sprintf("%.3f", float64(c))
		},
		"pvalue": func(c eda.Coef) string {
			switch {
			case !c.Valid():
				return "n/a"
			case c < 0.001:
				return "<0.001"
			}
			return fmt.Sprintf("%.3f", float64(c))
		},
		"value": clinical.FormatValue,
		"add":   func(a, b int) int { return a + b },
		"upper": strings.ToUpper,
	}

	templatesFS, err := fs.Sub(s.embeddedFiles, "templates")
	if err != nil {
		return fmt.Errorf("failed to create templates filesystem: %w", err)
	}
	files, err := fs.Glob(templatesFS, "*.html")
	if err != nil {
		return fmt.Errorf("failed to glob templates: %w", err)
	}
	s.logger.Debug("parsing %d templates: %v", len(files), files)

	s.templates = template.New("").Funcs(funcMap)
	for _, file := range files {
		raw, err := fs.ReadFile(templatesFS, file)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", file, err)
		}
		if _, err := s.templates.New(file).Parse(string(raw)); err != nil {
			return fmt.Errorf("failed to parse template %s: %w", file, err)
		}
	}

	s.content, err = loadContent(s.embeddedFiles, "content")
	if err != nil {
		return err
	}

	s.setupMiddleware()
	s.setupRoutes()
	return nil
}

// setupRoutes registers one GET route per page plus the form and chart endpoints
func (s *Server) setupRoutes() {
	for _, p := range Pages {
		s.router.GET(p.Path(), s.pageHandler(p))
	}
	s.router.POST(PagePredictor.Path(), s.handlePredict)
	s.router.POST(PagePredictor.Path()+"/export", s.handleExport)

	charts := s.router.Group(PageEDA.Path())
	charts.GET("/report", s.handleEDAReport)
	charts.GET("/feature", s.handleEDAFeature)
	charts.GET("/scatter", s.handleEDAScatter)
	charts.GET("/export", s.handleSummaryExport)

	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(s.container.Metrics.Handler()))
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	s.logger.Info("starting dashboard on http://%s", addr)
	return s.router.Run(addr)
}
