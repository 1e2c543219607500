// Package sql embeds the knowledge graph's merge-by-key SQL functions and
// loads them into a Postgres database, following the teacher's
// go:embed-plus-checkFunctions idempotent loading pattern.
package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed schema.sql
var schemaSQL string

//go:embed documents.sql
var documentsSQL string

//go:embed chunks.sql
var chunksSQL string

//go:embed entities.sql
var entitiesSQL string

//go:embed relationships.sql
var relationshipsSQL string

//go:embed cooccurrence.sql
var cooccurrenceSQL string

// SchemaFunctions, DocumentsFunctions, etc. list the functions each SQL
// file is expected to create, used by checkFunctions to verify a load
// actually took effect (or that it was already done).
var SchemaFunctions = []string{"init_schema"}

var DocumentsFunctions = []string{
	"create_document",
	"select_document_by_content_id",
	"count_orphaned_chunks",
}

var ChunksFunctions = []string{
	"create_chunk",
	"select_chunks_by_document",
	"select_chunk_by_vector_rowid",
}

var EntitiesFunctions = []string{
	"create_entity",
	"select_entity_by_normalized",
	"select_entity_by_id",
	"search_entities",
	"link_entity_to_chunk",
	"select_chunks_mentioning_entity",
	"select_entities_by_chunk",
	"count_mentionless_entities",
}

var RelationshipsFunctions = []string{
	"create_relationship",
	"select_relationships_for_entity",
}

var CoOccurrenceFunctions = []string{"update_co_occurrence"}

// LoadSchemaSql creates the base tables, constraints, and indexes.
func LoadSchemaSql(db *sql.DB, force bool) error {
	return loadOnce(db, "schema", schemaSQL, SchemaFunctions, force)
}

// LoadDocumentsSql loads document-related SQL functions.
func LoadDocumentsSql(db *sql.DB, force bool) error {
	return loadOnce(db, "documents", documentsSQL, DocumentsFunctions, force)
}

// LoadChunksSql loads chunk-related SQL functions.
func LoadChunksSql(db *sql.DB, force bool) error {
	return loadOnce(db, "chunks", chunksSQL, ChunksFunctions, force)
}

// LoadEntitiesSql loads entity-related SQL functions.
func LoadEntitiesSql(db *sql.DB, force bool) error {
	return loadOnce(db, "entities", entitiesSQL, EntitiesFunctions, force)
}

// LoadRelationshipsSql loads relationship-related SQL functions.
func LoadRelationshipsSql(db *sql.DB, force bool) error {
	return loadOnce(db, "relationships", relationshipsSQL, RelationshipsFunctions, force)
}

// LoadCoOccurrenceSql loads the co-occurrence SQL function.
func LoadCoOccurrenceSql(db *sql.DB, force bool) error {
	return loadOnce(db, "co-occurrence", cooccurrenceSQL, CoOccurrenceFunctions, force)
}

// LoadAllSql loads every SQL file in dependency order: schema first (the
// tables everything else references), then the per-entity function sets.
func LoadAllSql(db *sql.DB, force bool) error {
	if err := LoadSchemaSql(db, force); err != nil {
		return err
	}
	if err := LoadDocumentsSql(db, force); err != nil {
		return err
	}
	if err := LoadChunksSql(db, force); err != nil {
		return err
	}
	if err := LoadEntitiesSql(db, force); err != nil {
		return err
	}
	if err := LoadRelationshipsSql(db, force); err != nil {
		return err
	}
	return LoadCoOccurrenceSql(db, force)
}

func loadOnce(db *sql.DB, label, sqlText string, functions []string, force bool) error {
	if !force {
		exist, err := checkFunctions(db, functions)
		if err != nil {
			return fmt.Errorf("error checking existing %s functions: %w", label, err)
		}
		if exist {
			return nil
		}
	}

	if _, err := db.Exec(sqlText); err != nil {
		return fmt.Errorf("error executing %s SQL: %w", label, err)
	}

	exist, err := checkFunctions(db, functions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required %s SQL functions were created", label)
	}

	log.Printf("SQL %s functions loaded successfully", label)
	return nil
}

// checkFunctions verifies that all required functions exist in the database.
func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	var allExist bool
	for _, f := range sqlFunctions {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !allExist {
			log.Printf("Function %s does not exist", f)
			break
		}
	}
	return allExist, nil
}
