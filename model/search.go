package model

// EntitySearchRequest is the §6 GET /api/v1/search/entities query: a free
// text term matched against Entity.Normalized, optionally narrowed by type.
type EntitySearchRequest struct {
	Query    string `json:"query"`
	TypeFull string `json:"type_full,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	// MinMentions drops entities with fewer than this many mentions —
	// a low-signal filter distinct from extraction-time confidence
	// thresholding (§6/§7: do not conflate the two).
	MinMentions int `json:"min_mentions,omitempty"`
}

// EntitySearchResult pairs an Entity with the chunks the mapper anchored it
// to, so a caller can jump straight to source text.
type EntitySearchResult struct {
	Entity Entity            `json:"entity"`
	Chunks []ChunkAppearance `json:"chunks"`
}

// ChunkSearchRequest is the §6 GET /api/v1/search/chunks query, looking up
// chunks by the document's upstream ContentID.
type ChunkSearchRequest struct {
	ContentID int64 `json:"content_id"`
}

// ExpandEntitiesRequest is the §6 POST /api/v1/expand/entities payload: seed
// entity IDs plus how many co-occurrence hops to traverse (C8).
type ExpandEntitiesRequest struct {
	EntityIDs []string `json:"entity_ids"`
	// Hops is the traversal depth (expansion_depth), capped at 3.
	Hops int `json:"hops,omitempty"`
	// MinConfidence drops candidates whose shared-chunk confidence bucket
	// (see ExpandEntitiesResult.Confidence) falls below this floor.
	MinConfidence float64 `json:"min_confidence,omitempty"`
	// MaxExpansions caps the total number of entities returned, capped at 100.
	MaxExpansions int `json:"max_expansions,omitempty"`
}

// ExpandEntitiesResult is one entity reached from a seed by co-occurrence
// (mentioned in a chunk a seed, or a previously reached entity, is also
// mentioned in), scored by how many distinct chunks it shares with the
// node that reached it (§6: ≥5 shared chunks → 0.9, ≥3 → 0.7, else 0.5).
type ExpandEntitiesResult struct {
	Entity           Entity  `json:"entity"`
	SharedChunkCount int     `json:"shared_chunk_count"`
	Confidence       float64 `json:"confidence"`
	HopDistance      int     `json:"hop_distance"`
}

// EnhancedSearchRequest is the §4.9/§6 POST /api/v1/search/enhanced payload:
// one or more free-text search terms resolved to entities in a single
// traversal, whose co-occurring entities and chunks are then tier-scored.
type EnhancedSearchRequest struct {
	Terms []string `json:"terms"`
	Limit int      `json:"limit,omitempty"`
}

// Score tiers for enhanced search results, per §4.9. Entities: a direct
// entity-name match scores ScoreDirectMatch; a co-occurring entity scores
// ScoreCoOccurring. Chunks: two or more matched entities score
// ScoreDirectMatch and exactly one scores ScoreChunkDirect; a chunk with
// no matched entity scores ScoreCoOccurring with more than three
// co-occurring entities, ScoreChunkDirect with two or three, and
// ScoreChunkCoOccurring with one.
const (
	ScoreDirectMatch      = 1.0
	ScoreCoOccurring      = 0.8
	ScoreChunkDirect      = 0.6
	ScoreChunkCoOccurring = 0.4
)

// EnhancedSearchEntityResult is one entity in an enhanced search response,
// scored by how it was reached.
type EnhancedSearchEntityResult struct {
	Entity    Entity  `json:"entity"`
	Score     float64 `json:"score"`
	MatchedBy string  `json:"matched_by"`
}

// EnhancedSearchChunkResult is one chunk in an enhanced search response,
// deduplicated by VectorRowid and scored by the best entity that reached it.
type EnhancedSearchChunkResult struct {
	VectorRowid int64   `json:"vector_rowid"`
	ContentID   int64   `json:"content_id"`
	Score       float64 `json:"score"`
	MatchedBy   string  `json:"matched_by"`
}

// EnhancedSearchStats reports how the traversal resolved, per §4.9.
type EnhancedSearchStats struct {
	QueryTimeMs         int64 `json:"query_time_ms"`
	TotalFound          int   `json:"total_found"`
	Returned            int   `json:"returned"`
	MultiEntityChunks   int   `json:"multi_entity_chunks"`
	SingleEntityChunks  int   `json:"single_entity_chunks"`
	ExpansionOnlyChunks int   `json:"expansion_only_chunks"`
}

// EnhancedSearchResponse is the full §4.9 result set: scored entities and
// chunks, ordered by descending score.
type EnhancedSearchResponse struct {
	Entities []EnhancedSearchEntityResult `json:"entities"`
	Chunks   []EnhancedSearchChunkResult  `json:"chunks"`
	Stats    EnhancedSearchStats          `json:"stats"`
}
