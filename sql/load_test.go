package sql

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// These checks run against the embedded SQL text directly rather than a
// live Postgres instance, so the chunk mapper, JSON healer, and scorer
// suites never need Docker to exercise the function surface this package
// promises to load.

func TestEmbeddedSQLDefinesExpectedFunctions(t *testing.T) {
	cases := []struct {
		name      string
		sqlText   string
		functions []string
	}{
		{"schema", schemaSQL, SchemaFunctions},
		{"documents", documentsSQL, DocumentsFunctions},
		{"chunks", chunksSQL, ChunksFunctions},
		{"entities", entitiesSQL, EntitiesFunctions},
		{"relationships", relationshipsSQL, RelationshipsFunctions},
		{"co-occurrence", cooccurrenceSQL, CoOccurrenceFunctions},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			for _, fn := range c.functions {
				assert.Contains(t, c.sqlText, "FUNCTION "+fn+"(", "expected %s to define %s", c.name, fn)
			}
		})
	}
}

func TestEntitiesSqlUsesRunningAverageFormula(t *testing.T) {
	assert.True(t, strings.Contains(entitiesSQL, "entities.avg_confidence * entities.mention_count"))
}

func TestRelationshipsSqlUsesRunningAverageFormula(t *testing.T) {
	assert.True(t, strings.Contains(relationshipsSQL, "relationships.confidence * relationships.occurrence_count"))
}

func TestCoOccurrenceSqlNormalizesByLowHighID(t *testing.T) {
	assert.Contains(t, cooccurrenceSQL, "entity_low_id")
	assert.Contains(t, cooccurrenceSQL, "entity_high_id")
}
