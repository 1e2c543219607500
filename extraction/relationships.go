package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/semaphore"

	"github.com/siherrmann/kgraph/apperr"
)

// relationshipOnlySystemPrompt differs from unifiedSystemPrompt only in
// that the entity set is supplied by the caller (from the NER path) rather
// than left to the model to discover — the LLM's one job here is to find
// edges between already-known entities.
const relationshipOnlySystemPrompt = `You are an information extraction engine. You will be given a passage of text and a list of entities already found in it. Find directed, predicated relationships between those entities only — do not invent new entities.

Respond with ONLY a JSON object of this exact shape, no prose, no markdown fences:
{
  "relationships": [{"subject": "...", "predicate": "...", "object": "...", "confidence": 0.0-1.0, "context": "..."}]
}

Use a concise snake_case predicate (e.g. "works_for", "located_in", "acquired"). subject and object must each exactly match one of the given entity names.`

// rawRelationshipExtraction mirrors the JSON shape the relationship-only
// prompt produces.
type rawRelationshipExtraction struct {
	Relationships []ExtractedRelationship `json:"relationships"`
}

// RelationshipOnlyExtractor runs the relationship half of §4.7's
// "NER → relationship-only LLM pass" branch: entities come from
// NERExtractor, and this only asks the LLM to connect them.
type RelationshipOnlyExtractor struct {
	llm     Completer
	sem     *semaphore.Weighted
	metrics *Metrics

	minRelationshipConfidence float64
}

// NewRelationshipOnlyExtractor builds an extractor sharing the same
// concurrency-gate shape as NewUnifiedExtractor. minRelationshipConfidence
// <= 0 falls back to its §4.3 default (0.45).
func NewRelationshipOnlyExtractor(llm Completer, maxConcurrent int, minRelationshipConfidence float64) *RelationshipOnlyExtractor {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrentExtractions
	}
	if minRelationshipConfidence <= 0 {
		minRelationshipConfidence = defaultMinRelationshipConfidence
	}
	return &RelationshipOnlyExtractor{
		llm:                       llm,
		sem:                       semaphore.NewWeighted(int64(maxConcurrent)),
		metrics:                   NewMetrics(maxConcurrent),
		minRelationshipConfidence: minRelationshipConfidence,
	}
}

// Metrics returns the live extraction-gate counters for this extractor, for
// the GET /api/v1/extraction/status endpoint.
func (e *RelationshipOnlyExtractor) Metrics() Snapshot {
	return e.metrics.Snapshot()
}

// Extract asks the LLM for relationships among entityNames found in text.
func (e *RelationshipOnlyExtractor) Extract(ctx context.Context, text string, entityNames []string) (result []ExtractedRelationship, err error) {
	if len(entityNames) < 2 {
		return nil, nil
	}

	e.metrics.enqueue()
	if acquireErr := e.sem.Acquire(ctx, 1); acquireErr != nil {
		e.metrics.abandoned()
		return nil, apperr.ServiceUnavailable("acquire extraction slot", acquireErr)
	}
	e.metrics.acquired()
	defer func() {
		e.sem.Release(1)
		e.metrics.finished(err)
	}()

	userPrompt := fmt.Sprintf("Entities: %s\n\nText:\n%s", strings.Join(entityNames, ", "), text)

	completion, err := e.llm.Complete(ctx, relationshipOnlySystemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	healed := healJSON(completion)

	var raw rawRelationshipExtraction
	if jsonErr := json.Unmarshal([]byte(healed), &raw); jsonErr != nil {
		err = apperr.ExtractionFailure("parse relationship-only extraction", fmt.Errorf("%w (healed: %.200s)", jsonErr, healed))
		return nil, err
	}

	return postProcessRelationships(raw.Relationships, e.minRelationshipConfidence), nil
}
