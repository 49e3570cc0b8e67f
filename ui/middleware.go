package ui

import (
	"io/fs"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(s.observeRequests())

	staticFS, err := fs.Sub(s.embeddedFiles, "static")
	if err != nil {
		s.logger.Error("[setupMiddleware] static filesystem unavailable: %v", err)
		return
	}
	s.router.StaticFS("/static", http.FS(staticFS))
}

// observeRequests counts responses by route template and status code
func (s *Server) observeRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		s.container.Metrics.ObserveRequest("dashboard", route, strconv.Itoa(c.Writer.Status()))
	}
}
