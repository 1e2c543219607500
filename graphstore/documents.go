// Package graphstore is the idempotent persistence layer (C5/C6): every
// write is a merge-by-key operation against a canonical identifier
// (Document.content_id, Chunk.vector_rowid, Entity.normalized, or the
// relationship triple), backed by the SQL functions in the sql package.
package graphstore

import (
	"fmt"

	"github.com/siherrmann/kgraph/helper"
	"github.com/siherrmann/kgraph/model"
	"github.com/siherrmann/kgraph/sql"
)

// DocumentsHandler handles document persistence.
type DocumentsHandler struct {
	db *helper.Database
}

// NewDocumentsHandler loads the document SQL functions and base schema,
// then returns a ready handler.
func NewDocumentsHandler(db *helper.Database, force bool) (*DocumentsHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	if err := sql.LoadSchemaSql(db.Instance, force); err != nil {
		return nil, helper.NewError("load schema sql", err)
	}
	if err := sql.LoadDocumentsSql(db.Instance, force); err != nil {
		return nil, helper.NewError("load documents sql", err)
	}

	db.Logger.Info("initialized documents handler")

	return &DocumentsHandler{db: db}, nil
}

// CreateDocument merges by content_id (§4.5): insert on first sight, touch
// updated_at and overwrite url/title on every later call.
func (h *DocumentsHandler) CreateDocument(doc *model.Document) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM create_document($1, $2, $3)`,
		doc.ContentID,
		doc.URL,
		doc.Title,
	)

	err := row.Scan(
		&doc.ID,
		&doc.ContentID,
		&doc.URL,
		&doc.Title,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectDocumentByContentID retrieves a document by its external content ID.
func (h *DocumentsHandler) SelectDocumentByContentID(contentID int64) (*model.Document, error) {
	doc := &model.Document{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_document_by_content_id($1)`,
		contentID,
	)

	err := row.Scan(
		&doc.ID,
		&doc.ContentID,
		&doc.URL,
		&doc.Title,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return doc, nil
}
