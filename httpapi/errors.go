package httpapi

import "errors"

// Sentinel validation errors shared by the search/expand handlers, wrapped
// with apperr.Validation at the call site so every handler reports the
// same operation-name/category shape.
var (
	errEmptyQuery     = errors.New("query must not be empty")
	errNoContentID    = errors.New("content_id must be positive")
	errNoEntityIDs    = errors.New("entity_ids must not be empty")
	errNoTerms        = errors.New("terms must not be empty")
)
