package graphstore

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/siherrmann/kgraph/helper"
	"github.com/siherrmann/kgraph/model"
	kgsql "github.com/siherrmann/kgraph/sql"
)

// RelationshipsHandler handles relationship persistence.
type RelationshipsHandler struct {
	db *helper.Database
}

// NewRelationshipsHandler loads the relationship SQL functions.
func NewRelationshipsHandler(db *helper.Database, force bool) (*RelationshipsHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	if err := kgsql.LoadRelationshipsSql(db.Instance, force); err != nil {
		return nil, helper.NewError("load relationships sql", err)
	}

	db.Logger.Info("initialized relationships handler")

	return &RelationshipsHandler{db: db}, nil
}

// CreateRelationship merges by the (subject, predicate, object) triple
// (§4.5): on insert occurrence_count=1; on a later call applies the
// running average and increments occurrence_count. primaryVectorRowid is
// only set on insert (COALESCE keeps the first chunk anchor sticky).
func (h *RelationshipsHandler) CreateRelationship(subjectID, objectID uuid.UUID, predicate string, confidence float64, context string, primaryVectorRowid *int64) (*model.Relationship, error) {
	r := &model.Relationship{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM create_relationship($1, $2, $3, $4, $5, $6)`,
		subjectID, predicate, objectID, confidence, context, nullableInt64(primaryVectorRowid),
	)

	var occurrenceCount int
	var primaryRowid sql.NullInt64
	err := row.Scan(
		&r.ID,
		&r.SubjectID,
		&r.ObjectID,
		&r.Predicate,
		&r.Confidence,
		&r.Context,
		&occurrenceCount,
		&primaryRowid,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}
	r.OccurrenceCount = occurrenceCount

	return r, nil
}

// SelectRelationshipsForEntity returns an entity's relationships (as
// subject or object), ordered by confidence.
func (h *RelationshipsHandler) SelectRelationshipsForEntity(entityID uuid.UUID, limit int) ([]*model.Relationship, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_relationships_for_entity($1, $2)`,
		entityID, limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var relationships []*model.Relationship
	for rows.Next() {
		r := &model.Relationship{}
		var occurrenceCount int
		err := rows.Scan(
			&r.ID,
			&r.SubjectID,
			&r.ObjectID,
			&r.Predicate,
			&r.Confidence,
			&r.Context,
			&occurrenceCount,
			&r.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		r.OccurrenceCount = occurrenceCount
		relationships = append(relationships, r)
	}

	if err := rows.Err(); err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return relationships, nil
}

func nullableInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
