package extraction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siherrmann/kgraph/apperr"
)

type stubCompleter struct {
	response string
	err      error
	calls    int
}

func (s *stubCompleter) Complete(_ context.Context, _, _ string) (string, error) {
	s.calls++
	return s.response, s.err
}

func TestUnifiedExtractor_Extract(t *testing.T) {
	t.Run("Parses entities and relationships from a clean completion", func(t *testing.T) {
		stub := &stubCompleter{response: `{
			"entities": [{"text":"Acme Corp","type":"org","confidence":0.9}],
			"relationships": [{"subject":"Acme Corp","predicate":"based in","object":"Springfield","confidence":0.8,"context":"Acme Corp, based in Springfield"}]
		}`}
		e := NewUnifiedExtractor(stub, 2, 0, 0)

		result, err := e.Extract(context.Background(), "Acme Corp is based in Springfield.")
		require.NoError(t, err)
		require.Len(t, result.Entities, 1)
		assert.Equal(t, "Acme Corp", result.Entities[0].Text)
		assert.Equal(t, 0, result.Entities[0].Start)
		require.Len(t, result.Relationships, 1)
		assert.Equal(t, "based_in", result.Relationships[0].Predicate)
	})

	t.Run("Heals a truncated completion before parsing", func(t *testing.T) {
		stub := &stubCompleter{response: `{"entities":[{"text":"Acme","type":"org","confidence":0.9}],"relationships":[`}
		e := NewUnifiedExtractor(stub, 2, 0, 0)

		result, err := e.Extract(context.Background(), "Acme builds things.")
		require.NoError(t, err)
		require.Len(t, result.Entities, 1)
		assert.Empty(t, result.Relationships)
	})

	t.Run("Returns an extraction-failure error for unparseable output", func(t *testing.T) {
		stub := &stubCompleter{response: `not json at all`}
		e := NewUnifiedExtractor(stub, 2, 0, 0)

		_, err := e.Extract(context.Background(), "some chunk text")
		require.Error(t, err)
		assert.Equal(t, apperr.CategoryExtractionFailure, apperr.CategoryOf(err))
	})

	t.Run("Propagates an LLM client error unchanged", func(t *testing.T) {
		wantErr := assert.AnError
		stub := &stubCompleter{err: wantErr}
		e := NewUnifiedExtractor(stub, 2, 0, 0)

		_, err := e.Extract(context.Background(), "some chunk text")
		assert.ErrorIs(t, err, wantErr)
	})
}

func TestPostProcess(t *testing.T) {
	t.Run("Drops entities below the confidence threshold", func(t *testing.T) {
		raw := &rawExtraction{
			Entities: []ExtractedEntity{
				{Text: "Acme", Confidence: 0.9},
				{Text: "Widget", Confidence: 0.1},
			},
		}
		out := NewUnifiedExtractor(nil, 2, 0, 0).postProcess(raw, "Acme makes a Widget.")
		require.Len(t, out.Entities, 1)
		assert.Equal(t, "Acme", out.Entities[0].Text)
	})

	t.Run("Drops an entity whose text can't be recovered from the source", func(t *testing.T) {
		raw := &rawExtraction{
			Entities: []ExtractedEntity{{Text: "Nonexistent Co", Confidence: 0.9}},
		}
		out := NewUnifiedExtractor(nil, 2, 0, 0).postProcess(raw, "this text never mentions that company")
		assert.Empty(t, out.Entities)
	})

	t.Run("Rejects a relationship whose subject and object normalize the same", func(t *testing.T) {
		raw := &rawExtraction{
			Relationships: []ExtractedRelationship{
				{Subject: "Acme Corp", Object: "acme corp", Predicate: "owns", Confidence: 0.9},
				{Subject: "Acme Corp", Object: "Springfield", Predicate: "Based In", Confidence: 0.9},
			},
		}
		out := NewUnifiedExtractor(nil, 2, 0, 0).postProcess(raw, "")
		require.Len(t, out.Relationships, 1)
		assert.Equal(t, "Springfield", out.Relationships[0].Object)
		assert.Equal(t, "based_in", out.Relationships[0].Predicate)
	})

	t.Run("Drops a relationship below the confidence threshold", func(t *testing.T) {
		raw := &rawExtraction{
			Relationships: []ExtractedRelationship{
				{Subject: "a", Object: "b", Predicate: "knows", Confidence: 0.2},
			},
		}
		out := NewUnifiedExtractor(nil, 2, 0, 0).postProcess(raw, "")
		assert.Empty(t, out.Relationships)
	})
}
