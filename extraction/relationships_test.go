package extraction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelationshipOnlyExtractor_Extract(t *testing.T) {
	t.Run("Parses relationships constrained to the given entity names", func(t *testing.T) {
		stub := &stubCompleter{response: `{
			"relationships": [{"subject":"Acme Corp","predicate":"based in","object":"Springfield","confidence":0.8,"context":"..."}]
		}`}
		e := NewRelationshipOnlyExtractor(stub, 2, 0)

		result, err := e.Extract(context.Background(), "Acme Corp is based in Springfield.", []string{"Acme Corp", "Springfield"})
		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, "based_in", result[0].Predicate)
		assert.Equal(t, 1, stub.calls)
	})

	t.Run("Fewer than two entities short-circuits without calling the LLM", func(t *testing.T) {
		stub := &stubCompleter{response: `{"relationships": []}`}
		e := NewRelationshipOnlyExtractor(stub, 2, 0)

		result, err := e.Extract(context.Background(), "text", []string{"Acme Corp"})
		require.NoError(t, err)
		assert.Nil(t, result)
		assert.Equal(t, 0, stub.calls)
	})

	t.Run("Drops self-relationships and low-confidence relationships", func(t *testing.T) {
		stub := &stubCompleter{response: `{
			"relationships": [
				{"subject":"Acme","predicate":"is","object":"Acme","confidence":0.9,"context":"..."},
				{"subject":"Acme","predicate":"uses","object":"Go","confidence":0.1,"context":"..."}
			]
		}`}
		e := NewRelationshipOnlyExtractor(stub, 2, 0)

		result, err := e.Extract(context.Background(), "text", []string{"Acme", "Go"})
		require.NoError(t, err)
		assert.Empty(t, result)
	})
}
