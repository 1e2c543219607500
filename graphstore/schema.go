package graphstore

import (
	"fmt"

	"github.com/siherrmann/kgraph/helper"
	"github.com/siherrmann/kgraph/sql"
)

// Schema is the schema manager (C6): it guarantees the uniqueness
// constraints and lookup indexes described in §4.6 exist at first
// connection, and exposes a validation operation for operational
// introspection.
type Schema struct {
	db *helper.Database
}

// NewSchema loads every SQL function set in dependency order and returns
// a ready schema manager. Safe to call repeatedly (force=false skips a
// reload when the functions already exist).
func NewSchema(db *helper.Database, force bool) (*Schema, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	if err := sql.LoadAllSql(db.Instance, force); err != nil {
		return nil, helper.NewError("load all sql", err)
	}

	db.Logger.Info("schema ensured")

	return &Schema{db: db}, nil
}

// ValidationResult reports counts of structural anomalies the schema's
// foreign keys and constraints should already prevent, checked defensively
// (§9's note on the teacher's own CreateTable-style guards against partial
// state).
type ValidationResult struct {
	OrphanedChunks      int64
	MentionlessEntities int64
}

// Validate counts orphaned chunks (a chunk whose document_id has no
// matching Document) and mention-less entities (an entity with no
// MENTIONED_IN edge to any chunk).
func (s *Schema) Validate() (*ValidationResult, error) {
	result := &ValidationResult{}

	if err := s.db.Instance.QueryRow(`SELECT count_orphaned_chunks()`).Scan(&result.OrphanedChunks); err != nil {
		return nil, helper.NewError("count orphaned chunks", err)
	}

	if err := s.db.Instance.QueryRow(`SELECT count_mentionless_entities()`).Scan(&result.MentionlessEntities); err != nil {
		return nil, helper.NewError("count mentionless entities", err)
	}

	return result, nil
}
