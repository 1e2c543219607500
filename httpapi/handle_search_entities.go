package httpapi

import (
	"github.com/labstack/echo/v4"

	"github.com/siherrmann/kgraph/apperr"
	"github.com/siherrmann/kgraph/model"
)

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 500
)

// handleSearchEntities answers POST /api/v1/search/entities: a free-text
// term matched against Entity.Normalized, each hit paired with the chunks
// it was anchored to so a caller can jump straight to source text.
func (s *Server) handleSearchEntities(c echo.Context) error {
	var req model.EntitySearchRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, apperr.Validation("decode entity search request", err))
	}
	if req.Query == "" {
		return writeError(c, apperr.Validation("validate entity search request", errEmptyQuery))
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	entities, err := s.deps.Entities.SearchEntities(req.Query, req.TypeFull, limit, req.MinMentions)
	if err != nil {
		return writeError(c, apperr.ServiceUnavailable("search entities", err))
	}

	results := make([]model.EntitySearchResult, 0, len(entities))
	for _, e := range entities {
		mentions, err := s.deps.Entities.SelectChunksMentioningEntity(e.ID)
		if err != nil {
			return writeError(c, apperr.ServiceUnavailable("select chunks mentioning entity", err))
		}
		appearances := make([]model.ChunkAppearance, 0, len(mentions))
		for _, m := range mentions {
			appearances = append(appearances, model.ChunkAppearance{
				VectorRowid: m.VectorRowid,
				ChunkIndex:  m.ChunkIndex,
				OffsetStart: m.OffsetStart,
				OffsetEnd:   m.OffsetEnd,
			})
		}
		results = append(results, model.EntitySearchResult{Entity: *e, Chunks: appearances})
	}

	return c.JSON(200, results)
}
