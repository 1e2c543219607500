package model

import (
	"time"

	"github.com/google/uuid"
)

// Chunk is a contiguous character range inside a Document's source text.
// VectorRowid is the external identifier into the upstream vector store and
// is unique across the whole graph (§3); the graph never holds more than a
// short preview of the chunk's text.
type Chunk struct {
	ID          uuid.UUID `json:"id"`
	DocumentID  uuid.UUID `json:"document_id"`
	VectorRowid int64     `json:"vector_rowid"`
	ChunkIndex  int       `json:"chunk_index"`
	CharStart   int       `json:"char_start"`
	CharEnd     int       `json:"char_end"`
	TextPreview string    `json:"text_preview"`
	CreatedAt   time.Time `json:"created_at"`
}

// Len returns the chunk-local character length (CharEnd - CharStart).
func (c *Chunk) Len() int {
	return c.CharEnd - c.CharStart
}

// ChunkRange is the minimal shape the chunk mapper (C4) needs: just enough
// to compute character-overlap against entity/relationship spans. It is
// supplied by the ingest request, not read back from the graph store.
type ChunkRange struct {
	VectorRowid int64  `json:"vector_rowid"`
	ChunkIndex  int    `json:"chunk_index"`
	CharStart   int    `json:"char_start"`
	CharEnd     int    `json:"char_end"`
	Text        string `json:"text"`
}

// Len returns the character length of the range.
func (r ChunkRange) Len() int {
	return r.CharEnd - r.CharStart
}
