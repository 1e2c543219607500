package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOrderedPair(t *testing.T) {
	t.Run("Keeps order when a is lexicographically smaller", func(t *testing.T) {
		a, b := uuid.New(), uuid.New()

		low, high := OrderedPair(a, b, "apple", "banana")

		assert.Equal(t, a, low)
		assert.Equal(t, b, high)
	})

	t.Run("Swaps order when b is lexicographically smaller", func(t *testing.T) {
		a, b := uuid.New(), uuid.New()

		low, high := OrderedPair(a, b, "zebra", "ant")

		assert.Equal(t, b, low)
		assert.Equal(t, a, high)
	})

	t.Run("Ties keep the given order", func(t *testing.T) {
		a, b := uuid.New(), uuid.New()

		low, high := OrderedPair(a, b, "same", "same")

		assert.Equal(t, a, low)
		assert.Equal(t, b, high)
	})
}
