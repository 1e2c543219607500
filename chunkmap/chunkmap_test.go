package chunkmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siherrmann/kgraph/model"
)

func testChunks() []model.ChunkRange {
	return []model.ChunkRange{
		{VectorRowid: 1, ChunkIndex: 0, CharStart: 0, CharEnd: 100},
		{VectorRowid: 2, ChunkIndex: 1, CharStart: 100, CharEnd: 200},
		{VectorRowid: 3, ChunkIndex: 2, CharStart: 200, CharEnd: 300},
	}
}

func TestMapEntity(t *testing.T) {
	t.Run("Maps a single occurrence fully inside one chunk", func(t *testing.T) {
		occs := []Occurrence{{Start: 10, End: 20}}
		appearances := MapEntity(occs, testChunks())

		require.Len(t, appearances, 1)
		assert.Equal(t, int64(1), appearances[0].VectorRowid)
		assert.Equal(t, 10, appearances[0].OffsetStart)
		assert.Equal(t, 20, appearances[0].OffsetEnd)
	})

	t.Run("Drops an occurrence whose boundary overlap is below the threshold", func(t *testing.T) {
		occs := []Occurrence{{Start: 95, End: 100}}
		appearances := MapEntity(occs, testChunks())
		assert.Empty(t, appearances)
	})

	t.Run("Maps an occurrence spanning two chunks to both, clamped to chunk-local offsets", func(t *testing.T) {
		occs := []Occurrence{{Start: 80, End: 130}}
		appearances := MapEntity(occs, testChunks())

		require.Len(t, appearances, 2)
		assert.Equal(t, int64(1), appearances[0].VectorRowid)
		assert.Equal(t, 80, appearances[0].OffsetStart)
		assert.Equal(t, 100, appearances[0].OffsetEnd)
		assert.Equal(t, int64(2), appearances[1].VectorRowid)
		assert.Equal(t, 0, appearances[1].OffsetStart)
		assert.Equal(t, 30, appearances[1].OffsetEnd)
		assert.True(t, SpansMultipleChunks(appearances))
	})

	t.Run("Dedupes multiple occurrences landing in the same chunk", func(t *testing.T) {
		occs := []Occurrence{{Start: 10, End: 20}, {Start: 30, End: 45}}
		appearances := MapEntity(occs, testChunks())
		assert.Len(t, appearances, 1)
	})
}

func TestMapRelationshipPrimary(t *testing.T) {
	t.Run("Picks the lowest shared chunk when subject and object co-occur", func(t *testing.T) {
		subject := []model.ChunkAppearance{{VectorRowid: 2, ChunkIndex: 1}, {VectorRowid: 5, ChunkIndex: 4}}
		object := []model.ChunkAppearance{{VectorRowid: 2, ChunkIndex: 1}, {VectorRowid: 9, ChunkIndex: 8}}

		primary := MapRelationshipPrimary(subject, object)
		require.True(t, primary.Found)
		assert.Equal(t, int64(2), primary.VectorRowid)
		assert.False(t, SpansChunks(subject, object))
	})

	t.Run("Falls back to the closest chunk-index pair when nothing is shared", func(t *testing.T) {
		subject := []model.ChunkAppearance{{VectorRowid: 1, ChunkIndex: 0}}
		object := []model.ChunkAppearance{{VectorRowid: 2, ChunkIndex: 1}, {VectorRowid: 8, ChunkIndex: 10}}

		primary := MapRelationshipPrimary(subject, object)
		require.True(t, primary.Found)
		assert.Equal(t, int64(1), primary.VectorRowid)
		assert.True(t, SpansChunks(subject, object))
	})

	t.Run("Falls back to the lowest subject chunk when the object has no appearances", func(t *testing.T) {
		subject := []model.ChunkAppearance{{VectorRowid: 7, ChunkIndex: 3}, {VectorRowid: 4, ChunkIndex: 1}}
		primary := MapRelationshipPrimary(subject, nil)
		require.True(t, primary.Found)
		assert.Equal(t, int64(4), primary.VectorRowid)
	})

	t.Run("Falls back to the lowest object chunk when the subject has no appearances", func(t *testing.T) {
		object := []model.ChunkAppearance{{VectorRowid: 7, ChunkIndex: 3}, {VectorRowid: 4, ChunkIndex: 1}}
		primary := MapRelationshipPrimary(nil, object)
		require.True(t, primary.Found)
		assert.Equal(t, int64(4), primary.VectorRowid)
	})

	t.Run("Returns not-found when neither side has appearances", func(t *testing.T) {
		primary := MapRelationshipPrimary(nil, nil)
		assert.False(t, primary.Found)
	})
}
