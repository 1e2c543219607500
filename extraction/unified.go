// Package extraction implements the two LLM-assisted extraction paths: a
// local NER model for entity spans (ner.go), and a single-pass LLM prompt
// that jointly extracts entities and relationships from chunk text
// (unified.go), with the JSON-healing and escape-sanitizing machinery that
// keeps imperfect model output usable (jsonheal.go).
package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/semaphore"

	"github.com/siherrmann/kgraph/apperr"
	"github.com/siherrmann/kgraph/model"
)

// defaultMaxConcurrentExtractions bounds how many unified-extraction LLM
// calls run at once process-wide, independent of how many documents are
// being ingested concurrently.
const defaultMaxConcurrentExtractions = 4

// defaultMinEntityConfidence and defaultMinRelationshipConfidence are
// §4.3's post-processing defaults: extractions scoring below these are
// dropped before they ever reach the graph store.
const (
	defaultMinEntityConfidence       = 0.45
	defaultMinRelationshipConfidence = 0.45
)

// Completer is the subset of llm.Client the unified extractor depends on,
// kept minimal so tests can stub it without standing up an HTTP server.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ExtractedEntity is one entity surfaced by the unified LLM pass, before
// chunk mapping or merge into the graph store.
type ExtractedEntity struct {
	Text       string  `json:"text"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
	// Start and End are not requested of the LLM; they're recovered by
	// substring search against the source text in postProcessEntities
	// (§4.3). An entity whose span cannot be recovered is dropped there.
	Start int `json:"-"`
	End   int `json:"-"`
}

// ExtractedRelationship is one relationship surfaced by the unified LLM
// pass, referencing its endpoints by entity text rather than ID (IDs don't
// exist until the graph store merges the entities).
type ExtractedRelationship struct {
	Subject    string  `json:"subject"`
	Predicate  string  `json:"predicate"`
	Object     string  `json:"object"`
	Confidence float64 `json:"confidence"`
	Context    string  `json:"context"`
}

// UnifiedExtraction is the full result of one unified-extractor call.
type UnifiedExtraction struct {
	Entities      []ExtractedEntity
	Relationships []ExtractedRelationship
}

// rawExtraction mirrors the JSON shape the LLM is prompted to produce.
type rawExtraction struct {
	Entities      []ExtractedEntity       `json:"entities"`
	Relationships []ExtractedRelationship `json:"relationships"`
}

const unifiedSystemPrompt = `You are an information extraction engine. Given a passage of text, extract:
1. Entities: notable people, organizations, locations, products, concepts, and other named things.
2. Relationships: directed, predicated edges between entities you extracted, using a concise snake_case predicate (e.g. "works_for", "located_in", "acquired").

Respond with ONLY a JSON object of this exact shape, no prose, no markdown fences:
{
  "entities": [{"text": "...", "type": "...", "confidence": 0.0-1.0}],
  "relationships": [{"subject": "...", "predicate": "...", "object": "...", "confidence": 0.0-1.0, "context": "..."}]
}`

// UnifiedExtractor runs the single-pass joint entity/relationship prompt
// against an LLM, gated by a process-wide concurrency limit.
type UnifiedExtractor struct {
	llm     Completer
	sem     *semaphore.Weighted
	metrics *Metrics

	minEntityConfidence       float64
	minRelationshipConfidence float64
}

// NewUnifiedExtractor builds an extractor that allows at most maxConcurrent
// extraction calls in flight at once. maxConcurrent <= 0 falls back to
// defaultMaxConcurrentExtractions; minEntityConfidence/
// minRelationshipConfidence <= 0 fall back to their §4.3 defaults (0.45).
func NewUnifiedExtractor(llm Completer, maxConcurrent int, minEntityConfidence, minRelationshipConfidence float64) *UnifiedExtractor {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrentExtractions
	}
	if minEntityConfidence <= 0 {
		minEntityConfidence = defaultMinEntityConfidence
	}
	if minRelationshipConfidence <= 0 {
		minRelationshipConfidence = defaultMinRelationshipConfidence
	}
	return &UnifiedExtractor{
		llm:                       llm,
		sem:                       semaphore.NewWeighted(int64(maxConcurrent)),
		metrics:                   NewMetrics(maxConcurrent),
		minEntityConfidence:       minEntityConfidence,
		minRelationshipConfidence: minRelationshipConfidence,
	}
}

// Metrics returns the live extraction-gate counters for this extractor, for
// the GET /api/v1/extraction/status endpoint.
func (e *UnifiedExtractor) Metrics() Snapshot {
	return e.metrics.Snapshot()
}

// Extract runs the unified prompt over text, blocking on the concurrency
// gate (FIFO via semaphore.Weighted) until a slot is free or ctx is done.
func (e *UnifiedExtractor) Extract(ctx context.Context, text string) (result *UnifiedExtraction, err error) {
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

	completion, err := e.llm.Complete(ctx, unifiedSystemPrompt, text)
	if err != nil {
		return nil, err
	}

	healed := healJSON(completion)

	var raw rawExtraction
	if jsonErr := json.Unmarshal([]byte(healed), &raw); jsonErr != nil {
		err = apperr.ExtractionFailure("parse unified extraction", fmt.Errorf("%w (healed: %.200s)", jsonErr, healed))
		return nil, err
	}

	return e.postProcess(&raw, text), nil
}

// postProcess drops low-confidence extractions and relationships whose
// subject and object normalize to the same entity (a self-relationship
// carries no graph information and usually indicates a model mistake).
func (e *UnifiedExtractor) postProcess(raw *rawExtraction, sourceText string) *UnifiedExtraction {
	return &UnifiedExtraction{
		Entities:      postProcessEntities(raw.Entities, sourceText, e.minEntityConfidence),
		Relationships: postProcessRelationships(raw.Relationships, e.minRelationshipConfidence),
	}
}

// postProcessEntities trims whitespace, drops entities below
// minConfidence, dedupes by normalized form (keeping the first), and
// recovers each entity's character span by a case-insensitive substring
// search against sourceText (§4.3) — the LLM is never asked for offsets
// directly. An entity whose text can't be found verbatim is dropped rather
// than persisted with a fabricated span.
func postProcessEntities(entities []ExtractedEntity, sourceText string, minConfidence float64) []ExtractedEntity {
	lowerSource := strings.ToLower(sourceText)
	seen := make(map[string]bool)

	var out []ExtractedEntity
	for _, e := range entities {
		text := strings.TrimSpace(e.Text)
		if text == "" || e.Confidence < minConfidence {
			continue
		}

		normalized := model.Normalize(text)
		if seen[normalized] {
			continue
		}

		idx := strings.Index(lowerSource, strings.ToLower(text))
		if idx < 0 {
			continue
		}

		e.Text = text
		e.Start = idx
		e.End = idx + len(text)
		seen[normalized] = true
		out = append(out, e)
	}
	return out
}

// postProcessRelationships drops low-confidence and self relationships and
// normalizes the predicate to snake_case.
func postProcessRelationships(relationships []ExtractedRelationship, minConfidence float64) []ExtractedRelationship {
	var out []ExtractedRelationship
	for _, r := range relationships {
		subject := strings.TrimSpace(r.Subject)
		object := strings.TrimSpace(r.Object)
		if subject == "" || object == "" || r.Confidence < minConfidence {
			continue
		}
		if model.Normalize(subject) == model.Normalize(object) {
			continue
		}
		r.Subject = subject
		r.Object = object
		r.Predicate = model.NormalizePredicate(r.Predicate)
		out = append(out, r)
	}
	return out
}
