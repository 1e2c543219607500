package httpapi

import "github.com/labstack/echo/v4"

// modelInfoReport is GET /api/v1/model-info's body: which models this
// build of the service extracts with, per §6.
type modelInfoReport struct {
	Mode     string `json:"mode"`
	LLMModel string `json:"llm_model,omitempty"`
	NERModel string `json:"ner_model,omitempty"`
}

// handleModelInfo reports the configured extraction mode. Unified mode
// names only the LLM model; NER mode names both the NER model and the
// relationship-only LLM model, since both run for every document (§4.7).
func (s *Server) handleModelInfo(c echo.Context) error {
	report := modelInfoReport{LLMModel: s.deps.LLMModel}
	if s.deps.NERLoaded {
		report.Mode = "ner_plus_relationship_llm"
		report.NERModel = s.deps.NERModel
	} else {
		report.Mode = "unified_llm"
	}
	return c.JSON(200, report)
}
