package model

import "github.com/google/uuid"

// IngestRequest is the §6 POST /api/v1/ingest payload: one document's worth
// of already-chunked text, keyed by the upstream crawler's ContentID. The
// graph never re-chunks text itself; chunk boundaries are supplied as-is,
// and extraction runs once over the full Markdown so entity/relationship
// spans share the same document-global coordinates as the chunk ranges.
type IngestRequest struct {
	ContentID int64        `json:"content_id"`
	URL       string       `json:"url"`
	Title     string       `json:"title"`
	Markdown  string       `json:"markdown"`
	Chunks    []ChunkRange `json:"chunks"`
	Metadata  Metadata     `json:"metadata,omitempty"`
}

// IngestedEntity pairs a persisted Entity with where the chunk mapper (C4)
// anchored it, for the §6 IngestResponse's per-entity detail.
type IngestedEntity struct {
	Entity              Entity            `json:"entity"`
	ChunkAppearances    []ChunkAppearance `json:"chunk_appearances"`
	SpansMultipleChunks bool              `json:"spans_multiple_chunks"`
}

// IngestedRelationship pairs a persisted Relationship with its chunk
// anchors, for the §6 IngestResponse's per-relationship detail.
type IngestedRelationship struct {
	Relationship Relationship `json:"relationship"`
	SpansChunks  bool         `json:"spans_chunks"`
	ChunkRowids  []int64      `json:"chunk_rowids"`
}

// IngestSummary reports the §4.7/§6 summary statistics for one ingest.
type IngestSummary struct {
	EntitiesByType           map[string]int `json:"entities_by_type"`
	RelationshipsByPredicate map[string]int `json:"relationships_by_predicate"`
	ChunksWithEntities       int            `json:"chunks_with_entities"`
	MeanEntitiesPerChunk     float64        `json:"mean_entities_per_chunk"`
}

// IngestResponse reports what the pipeline (C7) did with the document: how
// many graph objects were newly created versus merged into existing ones,
// the per-entity/-relationship detail with chunk anchors, summary
// statistics, and any non-fatal warnings surfaced along the way (§6).
type IngestResponse struct {
	DocumentID            uuid.UUID              `json:"document_id"`
	ChunksProcessed       int                    `json:"chunks_processed"`
	EntitiesCreated       int                    `json:"entities_created"`
	EntitiesUpdated       int                    `json:"entities_updated"`
	RelationshipsCreated  int                    `json:"relationships_created"`
	RelationshipsUpdated  int                    `json:"relationships_updated"`
	CoOccurrencesRecorded int                    `json:"co_occurrences_recorded"`
	Entities              []IngestedEntity       `json:"entities"`
	Relationships         []IngestedRelationship `json:"relationships"`
	Summary               IngestSummary          `json:"summary"`
	ProcessingTimeMs      int64                  `json:"processing_time_ms"`
	Warnings              []string               `json:"warnings,omitempty"`
}
