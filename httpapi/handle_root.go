package httpapi

import "github.com/labstack/echo/v4"

// handleRoot answers GET / with a minimal service banner — enough for a
// human hitting the root URL in a browser to confirm they reached the
// right service.
func (s *Server) handleRoot(c echo.Context) error {
	return c.JSON(200, map[string]string{
		"service": "kgraph",
		"version": version,
	})
}
