package httpapi

import (
	"sort"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/siherrmann/kgraph/apperr"
	"github.com/siherrmann/kgraph/model"
)

const (
	defaultExpandHops      = 1
	maxExpandHops          = 3
	defaultMaxExpansions   = 100
	maxMaxExpansions       = 100
	sharedChunksHighBucket = 5
	sharedChunksMidBucket  = 3
)

// bucketConfidence maps a shared-chunk count to the §6 confidence bucket:
// >=5 shared chunks -> 0.9, >=3 -> 0.7, else 0.5.
func bucketConfidence(sharedChunkCount int) float64 {
	switch {
	case sharedChunkCount >= sharedChunksHighBucket:
		return 0.9
	case sharedChunkCount >= sharedChunksMidBucket:
		return 0.7
	default:
		return 0.5
	}
}

// handleExpandEntities answers POST /api/v1/expand/entities: a breadth-
// first co-occurrence walk out from the seed entities, up to req.Hops deep
// (capped at maxExpandHops). A candidate is reached whenever it shares a
// chunk with something already in the traversal (seed or previously
// reached), per §6/§7: this is chunk co-occurrence via MENTIONED_IN joins,
// independent of the Relationship graph and of §4.9's enhanced-search
// scoring tiers. Each candidate's confidence is bucketed by how many
// distinct chunks it shares with the traversal, not by hop count.
func (s *Server) handleExpandEntities(c echo.Context) error {
	var req model.ExpandEntitiesRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, apperr.Validation("decode expand entities request", err))
	}
	if len(req.EntityIDs) == 0 {
		return writeError(c, apperr.Validation("validate expand entities request", errNoEntityIDs))
	}

	hops := req.Hops
	if hops <= 0 {
		hops = defaultExpandHops
	}
	if hops > maxExpandHops {
		hops = maxExpandHops
	}

	maxExpansions := req.MaxExpansions
	if maxExpansions <= 0 || maxExpansions > maxMaxExpansions {
		maxExpansions = defaultMaxExpansions
	}

	visited := make(map[uuid.UUID]bool, len(req.EntityIDs))
	frontier := make([]uuid.UUID, 0, len(req.EntityIDs))
	for _, raw := range req.EntityIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return writeError(c, apperr.Validation("parse entity id", err))
		}
		visited[id] = true
		frontier = append(frontier, id)
	}

	sharedChunks := make(map[uuid.UUID]map[int64]bool)
	hopOf := make(map[uuid.UUID]int)

	for depth := 1; depth <= hops && len(frontier) > 0; depth++ {
		var next []uuid.UUID
		for _, seedID := range frontier {
			mentions, err := s.deps.Entities.SelectChunksMentioningEntity(seedID)
			if err != nil {
				return writeError(c, apperr.ServiceUnavailable("select chunks mentioning entity", err))
			}
			for _, m := range mentions {
				others, err := s.deps.Entities.SelectEntitiesByChunk(m.ChunkID)
				if err != nil {
					return writeError(c, apperr.ServiceUnavailable("select entities by chunk", err))
				}
				for _, other := range others {
					if other.ID == seedID || visited[other.ID] {
						continue
					}
					set, ok := sharedChunks[other.ID]
					if !ok {
						set = make(map[int64]bool)
						sharedChunks[other.ID] = set
					}
					set[m.VectorRowid] = true
					if _, seen := hopOf[other.ID]; !seen {
						hopOf[other.ID] = depth
						next = append(next, other.ID)
					}
				}
			}
		}
		for _, id := range next {
			visited[id] = true
		}
		frontier = next
	}

	var results []model.ExpandEntitiesResult
	for id, set := range sharedChunks {
		sharedCount := len(set)
		confidence := bucketConfidence(sharedCount)
		if confidence < req.MinConfidence {
			continue
		}

		entity, err := s.deps.Entities.SelectEntityByID(id)
		if err != nil {
			return writeError(c, apperr.ServiceUnavailable("select entity by id", err))
		}

		results = append(results, model.ExpandEntitiesResult{
			Entity:           *entity,
			SharedChunkCount: sharedCount,
			Confidence:       confidence,
			HopDistance:      hopOf[id],
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Confidence != results[j].Confidence {
			return results[i].Confidence > results[j].Confidence
		}
		return results[i].SharedChunkCount > results[j].SharedChunkCount
	})
	if len(results) > maxExpansions {
		results = results[:maxExpansions]
	}

	return c.JSON(200, results)
}
