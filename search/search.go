// Package search implements enhanced search (C9): a single traversal that
// resolves free-text terms to entities, gathers the chunks and co-occurring
// entities reached from them, and tier-scores the result the way §4.9
// describes.
package search

import (
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/siherrmann/kgraph/apperr"
	"github.com/siherrmann/kgraph/graphstore"
	"github.com/siherrmann/kgraph/model"
)

// entityStore is the narrow slice of graphstore.EntitiesHandler this
// package needs, kept as an interface so tests can exercise the scorer
// with a fake instead of a live Postgres instance.
type entityStore interface {
	SelectEntityByNormalized(normalized string) (*model.Entity, error)
	SelectChunksMentioningEntity(entityID uuid.UUID) ([]*graphstore.ChunkMention, error)
	SelectEntitiesByChunk(chunkID uuid.UUID) ([]*model.Entity, error)
}

// Service runs enhanced search traversals.
type Service struct {
	entities entityStore
	logger   *slog.Logger
}

// New builds a Service against a store's entity handler.
func New(entities entityStore, logger *slog.Logger) *Service {
	return &Service{entities: entities, logger: logger}
}

// coOccurringThresholdHigh is the co-occurring-entity-count boundary
// separating the 0.8 and 0.6 expansion-chunk tiers (§4.9: >3 vs 2-3).
const coOccurringThresholdHigh = 3

// chunkHit accumulates what one chunk (keyed by vector_rowid) was reached
// by during the traversal: how many resolved (search-term) entities it
// mentions directly, and how many distinct co-occurring entities it
// mentions.
type chunkHit struct {
	contentID     int64
	resolvedCount int
	coOccurring   map[uuid.UUID]bool
}

// Search runs the §4.9 traversal for req and returns scored entities and
// chunks, truncated to req.Limit (default/ceiling 500).
func (s *Service) Search(req model.EnhancedSearchRequest) (*model.EnhancedSearchResponse, error) {
	start := time.Now()

	limit := req.Limit
	if limit <= 0 || limit > 500 {
		limit = 500
	}

	resolved := make(map[uuid.UUID]*model.Entity)
	for _, term := range req.Terms {
		normalized := model.Normalize(term)
		if normalized == "" {
			continue
		}
		entity, err := s.entities.SelectEntityByNormalized(normalized)
		if err != nil {
			// Unresolved search term: recoverable, not a hard failure (§7).
			continue
		}
		resolved[entity.ID] = entity
	}

	resp := &model.EnhancedSearchResponse{}
	if len(resolved) == 0 {
		return resp, nil
	}

	chunks := make(map[int64]*chunkHit)
	coOccurringEntities := make(map[uuid.UUID]*model.Entity)

	for _, entity := range resolved {
		mentions, err := s.entities.SelectChunksMentioningEntity(entity.ID)
		if err != nil {
			return nil, apperr.ServiceUnavailable("select chunks mentioning entity", err)
		}
		for _, m := range mentions {
			hit, ok := chunks[m.VectorRowid]
			if !ok {
				hit = &chunkHit{contentID: m.ContentID, coOccurring: make(map[uuid.UUID]bool)}
				chunks[m.VectorRowid] = hit
			}
			hit.resolvedCount++

			others, err := s.entities.SelectEntitiesByChunk(m.ChunkID)
			if err != nil {
				return nil, apperr.ServiceUnavailable("select entities by chunk", err)
			}
			for _, other := range others {
				if _, isResolved := resolved[other.ID]; isResolved {
					continue
				}
				hit.coOccurring[other.ID] = true
				coOccurringEntities[other.ID] = other
			}
		}
	}

	// Expansion: chunks mentioning a co-occurring entity but no resolved
	// entity (expansion-only chunks per §4.9 step 5).
	for entityID := range coOccurringEntities {
		mentions, err := s.entities.SelectChunksMentioningEntity(entityID)
		if err != nil {
			return nil, apperr.ServiceUnavailable("select chunks mentioning entity", err)
		}
		for _, m := range mentions {
			hit, ok := chunks[m.VectorRowid]
			if !ok {
				hit = &chunkHit{contentID: m.ContentID, coOccurring: make(map[uuid.UUID]bool)}
				chunks[m.VectorRowid] = hit
			}
			if hit.resolvedCount == 0 {
				hit.coOccurring[entityID] = true
			}
		}
	}

	stats := model.EnhancedSearchStats{TotalFound: len(chunks)}

	chunkResults := make([]model.EnhancedSearchChunkResult, 0, len(chunks))
	for rowid, hit := range chunks {
		var score float64
		var matchedBy string

		switch {
		case hit.resolvedCount >= 2:
			score, matchedBy = model.ScoreDirectMatch, "direct"
			stats.MultiEntityChunks++
		case hit.resolvedCount == 1:
			score, matchedBy = model.ScoreChunkDirect, "direct"
			stats.SingleEntityChunks++
		case len(hit.coOccurring) > coOccurringThresholdHigh:
			score, matchedBy = model.ScoreCoOccurring, "expansion"
			stats.ExpansionOnlyChunks++
		case len(hit.coOccurring) >= 2:
			score, matchedBy = model.ScoreChunkDirect, "expansion"
			stats.ExpansionOnlyChunks++
		case len(hit.coOccurring) >= 1:
			score, matchedBy = model.ScoreChunkCoOccurring, "expansion"
			stats.ExpansionOnlyChunks++
		default:
			continue
		}

		chunkResults = append(chunkResults, model.EnhancedSearchChunkResult{
			VectorRowid: rowid,
			ContentID:   hit.contentID,
			Score:       score,
			MatchedBy:   matchedBy,
		})
	}
	sortChunksByScoreDesc(chunkResults)
	if len(chunkResults) > limit {
		chunkResults = chunkResults[:limit]
	}

	entityResults := make([]model.EnhancedSearchEntityResult, 0, len(resolved)+len(coOccurringEntities))
	for _, entity := range resolved {
		entityResults = append(entityResults, model.EnhancedSearchEntityResult{
			Entity:    *entity,
			Score:     model.ScoreDirectMatch,
			MatchedBy: "direct_match",
		})
	}
	for _, entity := range coOccurringEntities {
		entityResults = append(entityResults, model.EnhancedSearchEntityResult{
			Entity:    *entity,
			Score:     model.ScoreCoOccurring,
			MatchedBy: "co_occurring",
		})
	}
	sortEntitiesByScoreDesc(entityResults)

	stats.Returned = len(chunkResults)
	stats.QueryTimeMs = time.Since(start).Milliseconds()

	resp.Entities = entityResults
	resp.Chunks = chunkResults
	resp.Stats = stats

	return resp, nil
}

func sortChunksByScoreDesc(results []model.EnhancedSearchChunkResult) {
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
}

func sortEntitiesByScoreDesc(results []model.EnhancedSearchEntityResult) {
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
}
