package search

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siherrmann/kgraph/graphstore"
	"github.com/siherrmann/kgraph/model"
)

// fakeEntityStore is an in-memory stand-in for graphstore.EntitiesHandler,
// letting the scorer be exercised without a live Postgres instance (per
// SPEC_FULL.md's ambient test-tooling note).
type fakeEntityStore struct {
	byNormalized map[string]*model.Entity
	mentions     map[uuid.UUID][]*graphstore.ChunkMention
	byChunk      map[uuid.UUID][]*model.Entity
}

func newFakeEntityStore() *fakeEntityStore {
	return &fakeEntityStore{
		byNormalized: make(map[string]*model.Entity),
		mentions:     make(map[uuid.UUID][]*graphstore.ChunkMention),
		byChunk:      make(map[uuid.UUID][]*model.Entity),
	}
}

func (f *fakeEntityStore) SelectEntityByNormalized(normalized string) (*model.Entity, error) {
	e, ok := f.byNormalized[normalized]
	if !ok {
		return nil, fmt.Errorf("no entity for %q", normalized)
	}
	return e, nil
}

func (f *fakeEntityStore) SelectChunksMentioningEntity(entityID uuid.UUID) ([]*graphstore.ChunkMention, error) {
	return f.mentions[entityID], nil
}

func (f *fakeEntityStore) SelectEntitiesByChunk(chunkID uuid.UUID) ([]*model.Entity, error) {
	return f.byChunk[chunkID], nil
}

func (f *fakeEntityStore) addEntity(text string) *model.Entity {
	e := &model.Entity{ID: uuid.New(), Text: text, Normalized: model.Normalize(text)}
	f.byNormalized[e.Normalized] = e
	return e
}

func (f *fakeEntityStore) mention(entity *model.Entity, chunkID uuid.UUID, vectorRowid int64, contentID int64) {
	f.mentions[entity.ID] = append(f.mentions[entity.ID], &graphstore.ChunkMention{
		ChunkID:     chunkID,
		VectorRowid: vectorRowid,
		ContentID:   contentID,
	})
	f.byChunk[chunkID] = append(f.byChunk[chunkID], entity)
}

func TestSearch_ScoresMultiAndSingleEntityChunks(t *testing.T) {
	// §8 scenario 5: a chunk mentioning both search terms scores 1.0; a
	// chunk mentioning only one scores 0.6.
	store := newFakeEntityStore()
	neo4j := store.addEntity("Neo4j")
	python := store.addEntity("Python")

	bothChunk := uuid.New()
	store.mention(neo4j, bothChunk, 1, 100)
	store.mention(python, bothChunk, 1, 100)

	onlyPythonChunk := uuid.New()
	store.mention(python, onlyPythonChunk, 2, 100)

	svc := New(store, nil)
	resp, err := svc.Search(model.EnhancedSearchRequest{Terms: []string{"Neo4j", "Python"}})
	require.NoError(t, err)
	require.Len(t, resp.Chunks, 2)

	assert.Equal(t, int64(1), resp.Chunks[0].VectorRowid)
	assert.Equal(t, model.ScoreDirectMatch, resp.Chunks[0].Score)
	assert.Equal(t, int64(2), resp.Chunks[1].VectorRowid)
	assert.Equal(t, model.ScoreChunkDirect, resp.Chunks[1].Score)

	assert.Equal(t, 1, resp.Stats.MultiEntityChunks)
	assert.Equal(t, 1, resp.Stats.SingleEntityChunks)
}

func TestSearch_ExpansionChunkTiers(t *testing.T) {
	store := newFakeEntityStore()
	seed := store.addEntity("Kubernetes")
	seedChunk := uuid.New()
	store.mention(seed, seedChunk, 1, 100)

	// Four co-occurring entities in seedChunk -> > 3 threshold.
	coEntities := make([]*model.Entity, 4)
	for i := range coEntities {
		coEntities[i] = store.addEntity(fmt.Sprintf("co-entity-%d", i))
		store.byChunk[seedChunk] = append(store.byChunk[seedChunk], coEntities[i])
	}

	expansionChunk := uuid.New()
	for _, e := range coEntities {
		store.mention(e, expansionChunk, 2, 200)
	}

	svc := New(store, nil)
	resp, err := svc.Search(model.EnhancedSearchRequest{Terms: []string{"Kubernetes"}})
	require.NoError(t, err)

	var found bool
	for _, c := range resp.Chunks {
		if c.VectorRowid == 2 {
			assert.Equal(t, model.ScoreCoOccurring, c.Score)
			assert.Equal(t, "expansion", c.MatchedBy)
			found = true
		}
	}
	assert.True(t, found, "expansion chunk should be present in results")
}

func TestSearch_UnresolvedTermsAreSkippedNotFatal(t *testing.T) {
	store := newFakeEntityStore()
	svc := New(store, nil)

	resp, err := svc.Search(model.EnhancedSearchRequest{Terms: []string{"nonexistent-term"}})
	require.NoError(t, err)
	assert.Empty(t, resp.Chunks)
	assert.Empty(t, resp.Entities)
}

func TestSearch_LimitTruncatesResults(t *testing.T) {
	store := newFakeEntityStore()
	seed := store.addEntity("widget")
	for i := int64(1); i <= 5; i++ {
		store.mention(seed, uuid.New(), i, 100)
	}

	svc := New(store, nil)
	resp, err := svc.Search(model.EnhancedSearchRequest{Terms: []string{"widget"}, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, resp.Chunks, 2)
	assert.Equal(t, 2, resp.Stats.Returned)
}
