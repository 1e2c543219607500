package httpapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Health status values per spec.md line 193: healthy iff every dependent
// service reports connected/loaded; unhealthy if any reports an error;
// else degraded (a service simply not configured, which isn't an error).
const (
	healthStatusHealthy   = "healthy"
	healthStatusDegraded  = "degraded"
	healthStatusUnhealthy = "unhealthy"
)

// healthReport is GET /health's body: an overall status plus the per-
// service breakdown it was computed from.
type healthReport struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
	Version  string            `json:"version"`
	UptimeS  int64             `json:"uptime_seconds"`
}

// handleHealth pings the graph store and the LLM server and reports the
// local NER model's availability, per §6's three-state model: any
// service reporting an error makes the whole response unhealthy; a
// service that's simply not loaded (NER, when running the unified-LLM
// extraction mode) only degrades it.
func (s *Server) handleHealth(c echo.Context) error {
	ctx := c.Request().Context()
	services := make(map[string]string)
	anyError := false
	anyDegraded := false

	if s.deps.Graph != nil {
		if err := s.deps.Graph.PingContext(ctx); err != nil {
			services["graph_store"] = err.Error()
			anyError = true
		} else {
			services["graph_store"] = "connected"
		}
	}

	if s.deps.LLM != nil {
		if err := s.deps.LLM.HealthCheck(ctx); err != nil {
			services["llm"] = err.Error()
			anyError = true
		} else {
			services["llm"] = "connected"
		}
	}

	if s.deps.NERLoaded {
		services["ner"] = "loaded"
	} else {
		services["ner"] = "not_loaded"
		anyDegraded = true
	}

	status := healthStatusHealthy
	httpStatus := http.StatusOK
	switch {
	case anyError:
		status = healthStatusUnhealthy
		httpStatus = http.StatusServiceUnavailable
	case anyDegraded:
		status = healthStatusDegraded
	}

	return c.JSON(httpStatus, healthReport{
		Status:   status,
		Services: services,
		Version:  version,
		UptimeS:  int64(time.Since(s.started).Seconds()),
	})
}
