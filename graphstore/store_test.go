package graphstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSchema_NilDatabase(t *testing.T) {
	_, err := NewSchema(nil, false)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database connection is nil")
}

func TestNewDocumentsHandler_NilDatabase(t *testing.T) {
	_, err := NewDocumentsHandler(nil, false)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database connection is nil")
}

func TestNewChunksHandler_NilDatabase(t *testing.T) {
	_, err := NewChunksHandler(nil, false)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database connection is nil")
}

func TestNewEntitiesHandler_NilDatabase(t *testing.T) {
	_, err := NewEntitiesHandler(nil, false)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database connection is nil")
}

func TestNewRelationshipsHandler_NilDatabase(t *testing.T) {
	_, err := NewRelationshipsHandler(nil, false)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database connection is nil")
}

func TestNewCoOccurrenceHandler_NilDatabase(t *testing.T) {
	_, err := NewCoOccurrenceHandler(nil, false)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database connection is nil")
}

func TestNullableInt64(t *testing.T) {
	t.Run("Nil pointer yields an invalid NullInt64", func(t *testing.T) {
		n := nullableInt64(nil)
		assert.False(t, n.Valid)
	})

	t.Run("Non-nil pointer yields a valid NullInt64 with the pointee value", func(t *testing.T) {
		v := int64(42)
		n := nullableInt64(&v)
		assert.True(t, n.Valid)
		assert.Equal(t, int64(42), n.Int64)
	})
}
