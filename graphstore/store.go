package graphstore

import (
	"github.com/siherrmann/kgraph/helper"
)

// Store provides a unified interface to every handler, mirroring the
// teacher's Grapher aggregate: one constructor wires the database
// connection through schema initialization and each per-table handler in
// dependency order.
type Store struct {
	DB            *helper.Database
	Schema        *Schema
	Documents     *DocumentsHandler
	Chunks        *ChunksHandler
	Entities      *EntitiesHandler
	Relationships *RelationshipsHandler
	CoOccurrence  *CoOccurrenceHandler
}

// New creates every handler against db, loading SQL functions in
// dependency order (schema, then documents/chunks/entities/relationships/
// co-occurrence). force=false skips reloading SQL that's already present.
func New(db *helper.Database, force bool) (*Store, error) {
	schema, err := NewSchema(db, force)
	if err != nil {
		return nil, helper.NewError("create schema manager", err)
	}

	documents, err := NewDocumentsHandler(db, force)
	if err != nil {
		return nil, helper.NewError("create documents handler", err)
	}

	chunks, err := NewChunksHandler(db, force)
	if err != nil {
		return nil, helper.NewError("create chunks handler", err)
	}

	entities, err := NewEntitiesHandler(db, force)
	if err != nil {
		return nil, helper.NewError("create entities handler", err)
	}

	relationships, err := NewRelationshipsHandler(db, force)
	if err != nil {
		return nil, helper.NewError("create relationships handler", err)
	}

	coOccurrence, err := NewCoOccurrenceHandler(db, force)
	if err != nil {
		return nil, helper.NewError("create co-occurrence handler", err)
	}

	return &Store{
		DB:            db,
		Schema:        schema,
		Documents:     documents,
		Chunks:        chunks,
		Entities:      entities,
		Relationships: relationships,
		CoOccurrence:  coOccurrence,
	}, nil
}
