package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Page is one of the dashboard's fixed pages
type Page int

const (
	PageHome Page = iota
	PageDataInfo
	PageEDA
	PagePredictor
)

// Pages lists the pages in navigation order
var Pages = []Page{PageHome, PageDataInfo, PageEDA, PagePredictor}

// Slug is the page's stable identifier, also accepted as ?page=
func (p Page) Slug() string {
	switch p {
	case PageHome:
		return "home"
	case PageDataInfo:
		return "data-info"
	case PageEDA:
		return "eda"
	case PagePredictor:
		return "predictor"
	default:
		return ""
	}
}

// Path is the route the page is served on
func (p Page) Path() string {
	if p == PageHome {
		return "/"
	}
	return "/" + p.Slug()
}

// Title is the navigation label
func (p Page) Title() string {
	switch p {
	case PageHome:
		return "Home"
	case PageDataInfo:
		return "Data Information"
	case PageEDA:
		return "EDA & Findings"
	case PagePredictor:
		return "Heart Failure Predictor"
	default:
		return ""
	}
}

// Icon is shown next to the title in the sidebar
func (p Page) Icon() string {
	switch p {
	case PageHome:
		return "🏠"
	case PageDataInfo:
		return "📊"
	case PageEDA:
		return "📈"
	case PagePredictor:
		return "❤️"
	default:
		return ""
	}
}

func (p Page) template() string {
	switch p {
	case PageDataInfo:
		return "data_info.html"
	case PageEDA:
		return "eda.html"
	case PagePredictor:
		return "predictor.html"
	default:
		return "home.html"
	}
}

// ParsePage resolves a slug; unknown slugs report false
func ParsePage(slug string) (Page, bool) {
	for _, p := range Pages {
		if p.Slug() == slug {
			return p, true
		}
	}
	return 0, false
}

type navItem struct {
	Path   string
	Title  string
	Icon   string
	Active bool
}

// pageView is the data every page template receives
type pageView struct {
	Title        string
	Nav          []navItem
	DatasetError string
	ModelErrors  []string
	Body         interface{}
}

func (s *Server) newView(p Page, body interface{}) pageView {
	nav := make([]navItem, len(Pages))
	for i, page := range Pages {
		nav[i] = navItem{Path: page.Path(), Title: page.Title(), Icon: page.Icon(), Active: page == p}
	}
	view := pageView{Title: p.Title(), Nav: nav, Body: body}
	if s.container.DatasetErr != nil && (p == PageDataInfo || p == PageEDA) {
		view.DatasetError = s.container.DatasetErr.Error()
	}
	if p == PagePredictor {
		view.ModelErrors = s.container.Predictions.LoadErrors()
	}
	return view
}

func (s *Server) pageHandler(p Page) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := p
		if page == PageHome {
			if slug := c.Query("page"); slug != "" {
				target, ok := ParsePage(slug)
				if !ok {
					c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown page " + slug})
					return
				}
				page = target
			}
		}
		s.showPage(c, page)
	}
}

// showPage dispatches to the page's handler
func (s *Server) showPage(c *gin.Context, p Page) {
	switch p {
	case PageHome:
		s.handleHome(c)
	case PageDataInfo:
		s.handleDataInfo(c)
	case PageEDA:
		s.handleEDA(c)
	case PagePredictor:
		s.handlePredictorForm(c)
	default:
		c.AbortWithStatus(http.StatusNotFound)
	}
}
