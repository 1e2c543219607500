package graphstore

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/siherrmann/kgraph/helper"
	"github.com/siherrmann/kgraph/model"
	"github.com/siherrmann/kgraph/sql"
)

// ChunksHandler handles chunk persistence.
type ChunksHandler struct {
	db *helper.Database
}

// NewChunksHandler loads the chunk SQL functions.
func NewChunksHandler(db *helper.Database, force bool) (*ChunksHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	if err := sql.LoadChunksSql(db.Instance, force); err != nil {
		return nil, helper.NewError("load chunks sql", err)
	}

	db.Logger.Info("initialized chunks handler")

	return &ChunksHandler{db: db}, nil
}

// CreateChunk merges by vector_rowid (§4.5) and attaches the chunk to its
// document.
func (h *ChunksHandler) CreateChunk(documentID uuid.UUID, chunk model.ChunkRange, preview string) (*model.Chunk, error) {
	c := &model.Chunk{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM create_chunk($1, $2, $3, $4, $5, $6)`,
		documentID,
		chunk.VectorRowid,
		chunk.ChunkIndex,
		chunk.CharStart,
		chunk.CharEnd,
		preview,
	)

	err := row.Scan(
		&c.ID,
		&c.DocumentID,
		&c.VectorRowid,
		&c.ChunkIndex,
		&c.CharStart,
		&c.CharEnd,
		&c.TextPreview,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return c, nil
}

// SelectChunksByDocument returns a document's chunks in chunk-index order.
func (h *ChunksHandler) SelectChunksByDocument(documentID uuid.UUID) ([]*model.Chunk, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_chunks_by_document($1)`,
		documentID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var chunks []*model.Chunk
	for rows.Next() {
		c := &model.Chunk{}
		err := rows.Scan(
			&c.ID,
			&c.DocumentID,
			&c.VectorRowid,
			&c.ChunkIndex,
			&c.CharStart,
			&c.CharEnd,
			&c.TextPreview,
			&c.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		chunks = append(chunks, c)
	}

	if err := rows.Err(); err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return chunks, nil
}

// SelectChunkByVectorRowid looks a chunk up by its external vector rowid.
func (h *ChunksHandler) SelectChunkByVectorRowid(vectorRowid int64) (*model.Chunk, error) {
	c := &model.Chunk{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_chunk_by_vector_rowid($1)`,
		vectorRowid,
	)

	err := row.Scan(
		&c.ID,
		&c.DocumentID,
		&c.VectorRowid,
		&c.ChunkIndex,
		&c.CharStart,
		&c.CharEnd,
		&c.TextPreview,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return c, nil
}
