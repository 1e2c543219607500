package graphstore

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/siherrmann/kgraph/helper"
	"github.com/siherrmann/kgraph/model"
	"github.com/siherrmann/kgraph/sql"
)

// CoOccurrenceHandler handles the CO_OCCURS_WITH edge. The orchestrator
// gates writes through this handler off by default (§4.5); it stays fully
// implemented and correct so an operator can enable it via config without
// a code change.
type CoOccurrenceHandler struct {
	db *helper.Database
}

// NewCoOccurrenceHandler loads the co-occurrence SQL function.
func NewCoOccurrenceHandler(db *helper.Database, force bool) (*CoOccurrenceHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	if err := sql.LoadCoOccurrenceSql(db.Instance, force); err != nil {
		return nil, helper.NewError("load co-occurrence sql", err)
	}

	db.Logger.Info("initialized co-occurrence handler")

	return &CoOccurrenceHandler{db: db}, nil
}

// UpdateCoOccurrence records that two entities co-occurred in a chunk. The
// pair is ordered by the entities' normalized names (model.OrderedPair)
// before this is called, so only one edge ever exists per unordered pair.
func (h *CoOccurrenceHandler) UpdateCoOccurrence(entityLowID, entityHighID uuid.UUID, chunkRowid int64) (*model.CoOccurrence, error) {
	co := &model.CoOccurrence{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM update_co_occurrence($1, $2, $3)`,
		entityLowID, entityHighID, chunkRowid,
	)

	err := row.Scan(&co.EntityLowID, &co.EntityHighID, &co.Count, pq.Array(&co.ChunkRowids))
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return co, nil
}
