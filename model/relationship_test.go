package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePredicate(t *testing.T) {
	t.Run("Lowercases and underscores spaces", func(t *testing.T) {
		assert.Equal(t, "works_for", NormalizePredicate("Works For"))
	})

	t.Run("Underscores dashes", func(t *testing.T) {
		assert.Equal(t, "co_founded", NormalizePredicate("co-founded"))
	})

	t.Run("Already snake_case is unchanged", func(t *testing.T) {
		assert.Equal(t, "located_in", NormalizePredicate("located_in"))
	})

	t.Run("Trims surrounding whitespace", func(t *testing.T) {
		assert.Equal(t, "acquired", NormalizePredicate("  Acquired  "))
	})
}
