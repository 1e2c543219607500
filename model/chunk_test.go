package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunk_Len(t *testing.T) {
	t.Run("Computes char span length", func(t *testing.T) {
		c := Chunk{CharStart: 100, CharEnd: 350}
		assert.Equal(t, 250, c.Len())
	})

	t.Run("Zero length for equal bounds", func(t *testing.T) {
		c := Chunk{CharStart: 10, CharEnd: 10}
		assert.Equal(t, 0, c.Len())
	})
}

func TestChunkRange_Len(t *testing.T) {
	t.Run("Computes char span length", func(t *testing.T) {
		r := ChunkRange{CharStart: 0, CharEnd: 512}
		assert.Equal(t, 512, r.Len())
	})
}
