package graphstore

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/siherrmann/kgraph/helper"
	"github.com/siherrmann/kgraph/model"
	"github.com/siherrmann/kgraph/sql"
)

// EntitiesHandler handles entity persistence and the MENTIONED_IN edge.
type EntitiesHandler struct {
	db *helper.Database
}

// NewEntitiesHandler loads the entity SQL functions.
func NewEntitiesHandler(db *helper.Database, force bool) (*EntitiesHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	if err := sql.LoadEntitiesSql(db.Instance, force); err != nil {
		return nil, helper.NewError("load entities sql", err)
	}

	db.Logger.Info("initialized entities handler")

	return &EntitiesHandler{db: db}, nil
}

// CreateEntity merges by normalized (§4.5): on insert sets mention_count=1
// and avg_confidence=confidence; on a later call applies the running
// average and increments mention_count.
func (h *EntitiesHandler) CreateEntity(text, normalized, typePrimary, typeSub1, typeSub2, typeSub3, typeFull string, confidence float64) (*model.Entity, error) {
	e := &model.Entity{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM create_entity($1, $2, $3, $4, $5, $6, $7, $8)`,
		text, normalized, typePrimary, typeSub1, typeSub2, typeSub3, typeFull, confidence,
	)

	err := row.Scan(
		&e.ID,
		&e.Text,
		&e.Normalized,
		&e.TypePrimary,
		&e.TypeSub1,
		&e.TypeSub2,
		&e.TypeSub3,
		&e.TypeFull,
		&e.MentionCount,
		&e.AvgConfidence,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return e, nil
}

// SelectEntityByNormalized looks an entity up by its identity key.
func (h *EntitiesHandler) SelectEntityByNormalized(normalized string) (*model.Entity, error) {
	e := &model.Entity{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_entity_by_normalized($1)`,
		normalized,
	)

	err := row.Scan(
		&e.ID,
		&e.Text,
		&e.Normalized,
		&e.TypePrimary,
		&e.TypeSub1,
		&e.TypeSub2,
		&e.TypeSub3,
		&e.TypeFull,
		&e.MentionCount,
		&e.AvgConfidence,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return e, nil
}

// SelectEntityByID looks an entity up by its primary key, used by the
// expand-entities handler (C8) to load each entity its co-occurrence walk
// reaches.
func (h *EntitiesHandler) SelectEntityByID(id uuid.UUID) (*model.Entity, error) {
	e := &model.Entity{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_entity_by_id($1)`,
		id,
	)

	err := row.Scan(
		&e.ID,
		&e.Text,
		&e.Normalized,
		&e.TypePrimary,
		&e.TypeSub1,
		&e.TypeSub2,
		&e.TypeSub3,
		&e.TypeFull,
		&e.MentionCount,
		&e.AvgConfidence,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return e, nil
}

// SearchEntities finds entities whose normalized form contains term,
// optionally filtered by primary type and by a minimum mention count (a
// low-signal filter, independent of extraction-time confidence).
func (h *EntitiesHandler) SearchEntities(term, typePrimary string, limit, minMentions int) ([]*model.Entity, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM search_entities($1, $2, $3, $4)`,
		term, typePrimary, limit, minMentions,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var entities []*model.Entity
	for rows.Next() {
		e := &model.Entity{}
		err := rows.Scan(
			&e.ID,
			&e.Text,
			&e.Normalized,
			&e.TypePrimary,
			&e.TypeSub1,
			&e.TypeSub2,
			&e.TypeSub3,
			&e.TypeFull,
			&e.MentionCount,
			&e.AvgConfidence,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		entities = append(entities, e)
	}

	if err := rows.Err(); err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return entities, nil
}

// LinkEntityToChunk merges the MENTIONED_IN edge, overwriting offsets,
// confidence, and context with the latest values on every call (§4.5).
func (h *EntitiesHandler) LinkEntityToChunk(entityID, chunkID uuid.UUID, offsetStart, offsetEnd int, confidence float64, contextBefore, contextAfter, sentence string) error {
	_, err := h.db.Instance.Exec(
		`SELECT link_entity_to_chunk($1, $2, $3, $4, $5, $6, $7, $8)`,
		entityID, chunkID, offsetStart, offsetEnd, confidence, contextBefore, contextAfter, sentence,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// ChunkMention is one row of select_chunks_mentioning_entity: a chunk the
// entity was anchored to, with its chunk-local offsets and the upstream
// document's content_id (so callers never need a second round trip just to
// label a chunk by its source document).
type ChunkMention struct {
	ChunkID     uuid.UUID
	VectorRowid int64
	ChunkIndex  int
	OffsetStart int
	OffsetEnd   int
	Confidence  float64
	ContentID   int64
}

// SelectEntitiesByChunk returns every entity mentioned in chunkID, the
// reverse of SelectChunksMentioningEntity. Enhanced search (C9) uses this
// to find entities co-occurring with a resolved term inside the same chunk.
func (h *EntitiesHandler) SelectEntitiesByChunk(chunkID uuid.UUID) ([]*model.Entity, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_entities_by_chunk($1)`,
		chunkID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var entities []*model.Entity
	for rows.Next() {
		e := &model.Entity{}
		err := rows.Scan(
			&e.ID,
			&e.Text,
			&e.Normalized,
			&e.TypePrimary,
			&e.TypeSub1,
			&e.TypeSub2,
			&e.TypeSub3,
			&e.TypeFull,
			&e.MentionCount,
			&e.AvgConfidence,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		entities = append(entities, e)
	}

	if err := rows.Err(); err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return entities, nil
}

// SelectChunksMentioningEntity returns every chunk an entity was mentioned
// in, ordered by chunk index.
func (h *EntitiesHandler) SelectChunksMentioningEntity(entityID uuid.UUID) ([]*ChunkMention, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_chunks_mentioning_entity($1)`,
		entityID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var mentions []*ChunkMention
	for rows.Next() {
		m := &ChunkMention{}
		err := rows.Scan(&m.ChunkID, &m.VectorRowid, &m.ChunkIndex, &m.OffsetStart, &m.OffsetEnd, &m.Confidence, &m.ContentID)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		mentions = append(mentions, m)
	}

	if err := rows.Err(); err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return mentions, nil
}
