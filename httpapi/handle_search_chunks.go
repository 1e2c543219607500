package httpapi

import (
	"github.com/labstack/echo/v4"

	"github.com/siherrmann/kgraph/apperr"
	"github.com/siherrmann/kgraph/model"
)

// handleSearchChunks answers POST /api/v1/search/chunks: every chunk of
// the document identified by the upstream crawler's content_id.
func (s *Server) handleSearchChunks(c echo.Context) error {
	var req model.ChunkSearchRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, apperr.Validation("decode chunk search request", err))
	}
	if req.ContentID <= 0 {
		return writeError(c, apperr.Validation("validate chunk search request", errNoContentID))
	}

	doc, err := s.deps.Documents.SelectDocumentByContentID(req.ContentID)
	if err != nil {
		return writeError(c, apperr.ServiceUnavailable("select document by content_id", err))
	}

	chunks, err := s.deps.Chunks.SelectChunksByDocument(doc.ID)
	if err != nil {
		return writeError(c, apperr.ServiceUnavailable("select chunks by document", err))
	}

	return c.JSON(200, chunks)
}
