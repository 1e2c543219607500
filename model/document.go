package model

import (
	"time"

	"github.com/google/uuid"
)

// Document represents one ingested source document. ContentID is the
// external 64-bit identifier assigned by the upstream crawler; it is the
// merge key for idempotent ingestion (§3). The full markdown is never
// stored here — only a reference back to the upstream vector index via
// its chunks.
type Document struct {
	ID        uuid.UUID `json:"id"`
	ContentID int64     `json:"content_id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentDetail is the GET /api/v1/documents/{content_id} read-back: the
// document plus its chunks in index order and a cheap summary so a caller
// doesn't need a second round trip just to see what ingestion stored.
type DocumentDetail struct {
	Document   Document `json:"document"`
	Chunks     []*Chunk `json:"chunks"`
	ChunkCount int      `json:"chunk_count"`
}
