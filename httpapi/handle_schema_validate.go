package httpapi

import (
	"github.com/labstack/echo/v4"

	"github.com/siherrmann/kgraph/apperr"
)

// handleSchemaValidate answers GET /api/v1/schema/validate: the C6 schema
// manager's defensive structural check, exposed for operational tooling
// (§6 doesn't name this endpoint explicitly but doesn't exclude it either).
func (s *Server) handleSchemaValidate(c echo.Context) error {
	result, err := s.deps.Schema.Validate()
	if err != nil {
		return writeError(c, apperr.ServiceUnavailable("validate schema", err))
	}
	return c.JSON(200, result)
}
