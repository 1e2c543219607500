package httpapi

import (
	"github.com/labstack/echo/v4"

	"github.com/siherrmann/kgraph/apperr"
	"github.com/siherrmann/kgraph/model"
)

// handleSearchEnhanced answers POST /api/v1/search/enhanced (C9): the
// single tier-scored traversal described in §4.9. All the scoring and
// traversal logic lives in search.Service; this handler only validates the
// request shape and renders whatever it returns.
func (s *Server) handleSearchEnhanced(c echo.Context) error {
	var req model.EnhancedSearchRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, apperr.Validation("decode enhanced search request", err))
	}
	if len(req.Terms) == 0 {
		return writeError(c, apperr.Validation("validate enhanced search request", errNoTerms))
	}

	resp, err := s.deps.Search.Search(req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(200, resp)
}
