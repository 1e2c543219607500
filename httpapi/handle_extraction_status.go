package httpapi

import "github.com/labstack/echo/v4"

// extractionStatusReport is GET /api/v1/extraction/status's body, the live
// view of the concurrency gate's four counters (§4.3/§6).
type extractionStatusReport struct {
	Status         string `json:"status"`
	Active         int    `json:"active"`
	Queued         int    `json:"queued"`
	Completed      int    `json:"completed"`
	Failed         int    `json:"failed"`
	MaxConcurrent  int    `json:"max_concurrent"`
	SlotsAvailable int    `json:"slots_available"`
}

// handleExtractionStatus reports the extraction gate's live counters. If no
// extractor was wired (ExtractionMetrics is nil), it reports the zero
// snapshot with status "not_configured" rather than erroring — there is
// nothing wrong with the service, extraction is just not this build's job.
func (s *Server) handleExtractionStatus(c echo.Context) error {
	if s.deps.ExtractionMetrics == nil {
		return c.JSON(200, extractionStatusReport{Status: "not_configured"})
	}

	snap := s.deps.ExtractionMetrics.Metrics()
	return c.JSON(200, extractionStatusReport{
		Status:         snap.Status(),
		Active:         snap.Active,
		Queued:         snap.Queued,
		Completed:      snap.Completed,
		Failed:         snap.Failed,
		MaxConcurrent:  snap.MaxConcurrent,
		SlotsAvailable: snap.SlotsAvailable(),
	})
}
