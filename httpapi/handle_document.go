package httpapi

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/siherrmann/kgraph/apperr"
	"github.com/siherrmann/kgraph/model"
)

// handleGetDocument answers GET /api/v1/documents/:content_id: a read-back
// of one ingested document and its chunks, so a caller can inspect what
// process_document actually stored without a second ingest call.
func (s *Server) handleGetDocument(c echo.Context) error {
	contentID, err := strconv.ParseInt(c.Param("content_id"), 10, 64)
	if err != nil || contentID <= 0 {
		return writeError(c, apperr.Validation("parse content_id", errNoContentID))
	}

	doc, err := s.deps.Documents.SelectDocumentByContentID(contentID)
	if err != nil {
		return writeError(c, apperr.ServiceUnavailable("select document by content_id", err))
	}

	chunks, err := s.deps.Chunks.SelectChunksByDocument(doc.ID)
	if err != nil {
		return writeError(c, apperr.ServiceUnavailable("select chunks by document", err))
	}

	return c.JSON(200, model.DocumentDetail{
		Document:   *doc,
		Chunks:     chunks,
		ChunkCount: len(chunks),
	})
}
