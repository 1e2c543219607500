package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Relationship is a directed, predicated edge between two Entities,
// aggregated across ingests (§3). Identity is the triple
// (subject.normalized, predicate, object.normalized); re-extraction of the
// same triple updates a running confidence average and bumps
// OccurrenceCount (§4.5).
type Relationship struct {
	ID               uuid.UUID `json:"id"`
	SubjectID        uuid.UUID `json:"subject_id"`
	SubjectNormal    string    `json:"subject_normalized"`
	SubjectText      string    `json:"subject_text"`
	SubjectTypeFull  string    `json:"subject_type_full"`
	ObjectID         uuid.UUID `json:"object_id"`
	ObjectNormal     string    `json:"object_normalized"`
	ObjectText       string    `json:"object_text"`
	ObjectTypeFull   string    `json:"object_type_full"`
	Predicate        string    `json:"predicate"`
	Confidence       float64   `json:"confidence"`
	Context          string    `json:"context,omitempty"`
	OccurrenceCount  int       `json:"occurrence_count"`
	CreatedAt        time.Time `json:"created_at"`
}

// NormalizePredicate lowercases a predicate and replaces spaces/dashes with
// underscores, producing the snake_case vocabulary form required by §3/§4.3.
func NormalizePredicate(predicate string) string {
	p := strings.ToLower(strings.TrimSpace(predicate))
	p = strings.ReplaceAll(p, " ", "_")
	p = strings.ReplaceAll(p, "-", "_")
	return p
}

// RelationshipChunkMapping is C4's output for one relationship: the primary
// chunk it is anchored to (by the priority rule of §4.4) plus the full set
// of chunks either side's mentions touch.
type RelationshipChunkMapping struct {
	PrimaryVectorRowid *int64  `json:"primary_vector_rowid,omitempty"`
	ChunkRowids        []int64 `json:"chunk_rowids"`
	SpansChunks        bool    `json:"spans_chunks"`
}
