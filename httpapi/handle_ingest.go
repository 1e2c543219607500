package httpapi

import (
	"github.com/labstack/echo/v4"

	"github.com/siherrmann/kgraph/apperr"
	"github.com/siherrmann/kgraph/model"
)

// handleIngest runs the full C7 pipeline over one document (§4.7/§6). The
// request body decodes directly into model.IngestRequest; validation,
// extraction-mode branching, chunk anchoring, and persistence are entirely
// the pipeline's job, so this handler is just the HTTP boundary around it.
func (s *Server) handleIngest(c echo.Context) error {
	var req model.IngestRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, apperr.Validation("decode ingest request", err))
	}

	resp, err := s.deps.Pipeline.ProcessDocument(c.Request().Context(), req)
	if err != nil {
		s.recordIngest(0, 0, 0, true)
		return writeError(c, err)
	}

	s.recordIngest(len(resp.Entities), len(resp.Relationships), resp.ProcessingTimeMs, false)
	return c.JSON(200, resp)
}
