package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDocument_Fields(t *testing.T) {
	t.Run("Holds content id and url as set", func(t *testing.T) {
		now := time.Now()
		doc := Document{
			ID:        uuid.New(),
			ContentID: 42,
			URL:       "https://example.com/a",
			Title:     "A",
			CreatedAt: now,
			UpdatedAt: now,
		}

		assert.Equal(t, int64(42), doc.ContentID)
		assert.Equal(t, "https://example.com/a", doc.URL)
		assert.Equal(t, "A", doc.Title)
	})
}
