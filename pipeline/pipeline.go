// Package pipeline implements the orchestrator (C7): one
// process_document operation that runs extraction, anchors the result to
// chunks via the chunkmap package, and persists everything through the
// graph store in the order Document -> Chunks -> Entities -> Relationships
// (§4.7/§5). The orchestrator is a plain struct built once at startup and
// passed explicitly to the HTTP handlers, per §9's "global mutable state"
// redesign note — there is no package-level singleton here.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/siherrmann/kgraph/apperr"
	"github.com/siherrmann/kgraph/chunkmap"
	"github.com/siherrmann/kgraph/extraction"
	"github.com/siherrmann/kgraph/model"
)

// Mode selects which extraction branch process_document takes (§4.7).
type Mode int

const (
	// ModeUnified runs the single-pass LLM extractor (C3) for both entities
	// and relationships.
	ModeUnified Mode = iota
	// ModeNER runs the local NER model (C2) for entities, then a
	// relationship-only LLM pass constrained to those entities.
	ModeNER
)

// Config shapes the orchestrator's behavior.
type Config struct {
	Mode Mode
	// EnableCoOccurrenceWrites gates the CO_OCCURS_WITH edge writes off by
	// default (§4.5/§4.7 step 4); fully wired, just not invoked unless set.
	EnableCoOccurrenceWrites bool
}

// The following interfaces are the narrow slice of graphstore/extraction
// each step needs, so Pipeline can be exercised with fakes in tests
// instead of a live Postgres instance or LLM server.

type documentStore interface {
	CreateDocument(doc *model.Document) error
}

type chunkStore interface {
	CreateChunk(documentID uuid.UUID, chunk model.ChunkRange, preview string) (*model.Chunk, error)
}

type entityStore interface {
	CreateEntity(text, normalized, typePrimary, typeSub1, typeSub2, typeSub3, typeFull string, confidence float64) (*model.Entity, error)
	LinkEntityToChunk(entityID, chunkID uuid.UUID, offsetStart, offsetEnd int, confidence float64, contextBefore, contextAfter, sentence string) error
}

type relationshipStore interface {
	CreateRelationship(subjectID, objectID uuid.UUID, predicate string, confidence float64, context string, primaryVectorRowid *int64) (*model.Relationship, error)
}

type coOccurrenceStore interface {
	UpdateCoOccurrence(entityLowID, entityHighID uuid.UUID, chunkRowid int64) (*model.CoOccurrence, error)
}

type unifiedExtractor interface {
	Extract(ctx context.Context, text string) (*extraction.UnifiedExtraction, error)
}

type nerExtractor interface {
	Extract(text string) ([]extraction.NERMention, error)
}

type relationshipExtractor interface {
	Extract(ctx context.Context, text string, entityNames []string) ([]extraction.ExtractedRelationship, error)
}

// Dependencies bundles the graph-store handlers and extractors the
// pipeline drives. A *graphstore.Store's handlers and an
// *extraction.UnifiedExtractor/NERExtractor/RelationshipOnlyExtractor
// already satisfy these interfaces structurally; no adapter is needed to
// wire the real implementations.
type Dependencies struct {
	Documents        documentStore
	Chunks           chunkStore
	Entities         entityStore
	Relationships    relationshipStore
	CoOccurrence     coOccurrenceStore
	Unified          unifiedExtractor
	NER              nerExtractor
	RelationshipOnly relationshipExtractor
}

// Pipeline is the orchestrator (C7).
type Pipeline struct {
	deps   Dependencies
	cfg    Config
	logger *slog.Logger

	schemaOnce sync.Once
}

// New builds a Pipeline. The graph store's schema is assumed already
// ensured by graphstore.New at startup; ensureSchema below only satisfies
// §4.7 step 1's letter ("once, guarded by a mutex") for the orchestrator's
// own lifecycle.
func New(deps Dependencies, cfg Config, logger *slog.Logger) *Pipeline {
	return &Pipeline{deps: deps, cfg: cfg, logger: logger}
}

func (p *Pipeline) ensureSchema() {
	p.schemaOnce.Do(func() {
		p.logger.Info("schema initialization ensured for orchestrator")
	})
}

// ProcessDocument is the orchestrator's one public operation (§4.7).
// Extraction failures are recoverable: the document and its chunks still
// persist with an empty knowledge graph (§4.3/§7). Graph-store failures
// are not recoverable and abort the request; because every write is
// idempotent, re-ingest is always a safe retry.
func (p *Pipeline) ProcessDocument(ctx context.Context, req model.IngestRequest) (*model.IngestResponse, error) {
	start := time.Now()

	if err := validateIngestRequest(&req); err != nil {
		return nil, err
	}

	p.ensureSchema()

	rawEntities, rawRelationships, warnings := p.extract(ctx, req.Markdown)

	mappedEntities := buildMappedEntities(rawEntities, req.Chunks)
	entitiesByNormalized := make(map[string]mappedEntity, len(mappedEntities))
	for _, e := range mappedEntities {
		entitiesByNormalized[e.Normalized] = e
	}
	mappedRelationships := buildMappedRelationships(rawRelationships, entitiesByNormalized)

	doc := &model.Document{ContentID: req.ContentID, URL: req.URL, Title: req.Title}
	if err := p.deps.Documents.CreateDocument(doc); err != nil {
		return nil, apperr.ServiceUnavailable("create document", err)
	}

	chunksByRowid := make(map[int64]*model.Chunk, len(req.Chunks))
	for _, cr := range req.Chunks {
		chunk, err := p.deps.Chunks.CreateChunk(doc.ID, cr, chunkPreview(cr.Text))
		if err != nil {
			return nil, apperr.ServiceUnavailable("create chunk", err)
		}
		chunksByRowid[cr.VectorRowid] = chunk
	}

	resp := &model.IngestResponse{
		DocumentID:      doc.ID,
		ChunksProcessed: len(req.Chunks),
		Warnings:        warnings,
	}

	persistedByNormalized := make(map[string]*model.Entity, len(mappedEntities))
	entitiesByType := make(map[string]int)
	chunksWithEntities := make(map[int64]bool)

	for _, me := range mappedEntities {
		entity, err := p.deps.Entities.CreateEntity(me.Text, me.Normalized, me.TypePrimary, me.TypeSub1, me.TypeSub2, me.TypeSub3, me.TypeFull, me.Confidence)
		if err != nil {
			return nil, apperr.ServiceUnavailable("create entity", err)
		}
		if entity.MentionCount <= 1 {
			resp.EntitiesCreated++
		} else {
			resp.EntitiesUpdated++
		}
		persistedByNormalized[me.Normalized] = entity
		entitiesByType[entity.TypePrimary]++

		for _, appearance := range me.Appearances {
			chunk, ok := chunksByRowid[appearance.VectorRowid]
			if !ok {
				continue
			}
			contextBefore, contextAfter := surroundingContext(req.Markdown, chunk.CharStart+appearance.OffsetStart, chunk.CharStart+appearance.OffsetEnd)
			if err := p.deps.Entities.LinkEntityToChunk(entity.ID, chunk.ID, appearance.OffsetStart, appearance.OffsetEnd, me.Confidence, contextBefore, contextAfter, ""); err != nil {
				return nil, apperr.ServiceUnavailable("link entity to chunk", err)
			}
			chunksWithEntities[appearance.VectorRowid] = true
		}

		resp.Entities = append(resp.Entities, model.IngestedEntity{
			Entity:              *entity,
			ChunkAppearances:    me.Appearances,
			SpansMultipleChunks: chunkmap.SpansMultipleChunks(me.Appearances),
		})
	}

	relationshipsByPredicate := make(map[string]int)

	for _, mr := range mappedRelationships {
		subject, ok := persistedByNormalized[mr.SubjectNormalized]
		if !ok {
			continue
		}
		object, ok := persistedByNormalized[mr.ObjectNormalized]
		if !ok {
			continue
		}

		var primaryVectorRowid *int64
		if mr.Primary.Found {
			v := mr.Primary.VectorRowid
			primaryVectorRowid = &v
		}

		relationship, err := p.deps.Relationships.CreateRelationship(subject.ID, object.ID, mr.Predicate, mr.Confidence, mr.Context, primaryVectorRowid)
		if err != nil {
			return nil, apperr.ServiceUnavailable("create relationship", err)
		}
		if relationship.OccurrenceCount <= 1 {
			resp.RelationshipsCreated++
		} else {
			resp.RelationshipsUpdated++
		}
		relationshipsByPredicate[relationship.Predicate]++

		relationship.SubjectNormal = subject.Normalized
		relationship.SubjectText = subject.Text
		relationship.SubjectTypeFull = subject.TypeFull
		relationship.ObjectNormal = object.Normalized
		relationship.ObjectText = object.Text
		relationship.ObjectTypeFull = object.TypeFull

		resp.Relationships = append(resp.Relationships, model.IngestedRelationship{
			Relationship: *relationship,
			SpansChunks:  mr.SpansChunks,
			ChunkRowids:  mr.ChunkRowids,
		})

		if p.cfg.EnableCoOccurrenceWrites {
			p.recordCoOccurrence(subject, object, mr.ChunkRowids, &resp.CoOccurrencesRecorded)
		}
	}

	resp.Summary = model.IngestSummary{
		EntitiesByType:           entitiesByType,
		RelationshipsByPredicate: relationshipsByPredicate,
		ChunksWithEntities:       len(chunksWithEntities),
		MeanEntitiesPerChunk:     meanEntitiesPerChunk(len(mappedEntities), len(req.Chunks)),
	}
	resp.ProcessingTimeMs = time.Since(start).Milliseconds()

	return resp, nil
}

// recordCoOccurrence writes one CO_OCCURS_WITH edge per chunk the
// relationship's two entities share, normalizing the pair direction
// per §3/§4.5. Disabled by default; see Config.EnableCoOccurrenceWrites.
func (p *Pipeline) recordCoOccurrence(subject, object *model.Entity, chunkRowids []int64, counter *int) {
	lowID, highID := model.OrderedPair(subject.ID, object.ID, subject.Normalized, object.Normalized)
	for _, rowid := range chunkRowids {
		if _, err := p.deps.CoOccurrence.UpdateCoOccurrence(lowID, highID, rowid); err != nil {
			p.logger.Warn("update co-occurrence failed", slog.String("error", err.Error()))
			continue
		}
		*counter++
	}
}

// extract runs the configured extraction branch over the document's full
// markdown. Any extraction error is recoverable (§4.3/§7): it's logged as
// a warning and the caller proceeds with an empty knowledge graph rather
// than failing the ingest.
func (p *Pipeline) extract(ctx context.Context, text string) ([]rawEntityMention, []extraction.ExtractedRelationship, []string) {
	switch p.cfg.Mode {
	case ModeNER:
		return p.extractNER(ctx, text)
	default:
		return p.extractUnified(ctx, text)
	}
}

func (p *Pipeline) extractUnified(ctx context.Context, text string) ([]rawEntityMention, []extraction.ExtractedRelationship, []string) {
	result, err := p.deps.Unified.Extract(ctx, text)
	if err != nil {
		p.logger.Warn("unified extraction failed, persisting empty knowledge graph", slog.String("error", err.Error()))
		return nil, nil, []string{fmt.Sprintf("extraction failed: %v", err)}
	}

	mentions := make([]rawEntityMention, 0, len(result.Entities))
	for _, e := range result.Entities {
		mentions = append(mentions, rawEntityMention{Text: e.Text, TypeLabel: e.Type, Confidence: e.Confidence, Start: e.Start, End: e.End})
	}
	return mentions, result.Relationships, nil
}

func (p *Pipeline) extractNER(ctx context.Context, text string) ([]rawEntityMention, []extraction.ExtractedRelationship, []string) {
	nerMentions, err := p.deps.NER.Extract(text)
	if err != nil {
		p.logger.Warn("NER extraction failed, persisting empty knowledge graph", slog.String("error", err.Error()))
		return nil, nil, []string{fmt.Sprintf("NER extraction failed: %v", err)}
	}

	mentions := make([]rawEntityMention, 0, len(nerMentions))
	names := make(map[string]string) // normalized -> display text, for the relationship prompt
	for _, m := range nerMentions {
		mentions = append(mentions, rawEntityMention{Text: m.Text, TypeLabel: m.Label, Confidence: m.Confidence, Start: m.Start, End: m.End})
		names[model.Normalize(m.Text)] = m.Text
	}

	entityNames := make([]string, 0, len(names))
	for _, name := range names {
		entityNames = append(entityNames, name)
	}
	sort.Strings(entityNames)

	relationships, err := p.deps.RelationshipOnly.Extract(ctx, text, entityNames)
	if err != nil {
		p.logger.Warn("relationship-only extraction failed, keeping entities without relationships", slog.String("error", err.Error()))
		return mentions, nil, []string{fmt.Sprintf("relationship extraction failed: %v", err)}
	}

	return mentions, relationships, nil
}

func chunkPreview(text string) string {
	const maxPreviewChars = 200
	if len(text) <= maxPreviewChars {
		return text
	}
	return text[:maxPreviewChars]
}

func surroundingContext(markdown string, globalStart, globalEnd int) (before, after string) {
	if globalStart < 0 || globalEnd > len(markdown) || globalStart >= globalEnd {
		return "", ""
	}
	return model.TrimContext(markdown[:globalStart], true), model.TrimContext(markdown[globalEnd:], false)
}

func meanEntitiesPerChunk(entityCount, chunkCount int) float64 {
	if chunkCount == 0 {
		return 0
	}
	return float64(entityCount) / float64(chunkCount)
}

// validateIngestRequest checks the §6 IngestRequest shape constraints.
func validateIngestRequest(req *model.IngestRequest) error {
	op := "validate ingest request"

	if req.ContentID <= 0 {
		return apperr.Validation(op, fmt.Errorf("content_id must be positive"))
	}
	if !strings.HasPrefix(req.URL, "http://") && !strings.HasPrefix(req.URL, "https://") {
		return apperr.Validation(op, fmt.Errorf("url must be http or https"))
	}
	if len(req.URL) > 2048 {
		return apperr.Validation(op, fmt.Errorf("url exceeds 2048 characters"))
	}
	if len(req.Title) > 500 {
		return apperr.Validation(op, fmt.Errorf("title exceeds 500 characters"))
	}
	if len(req.Markdown) < 50 || len(req.Markdown) > 1_000_000 {
		return apperr.Validation(op, fmt.Errorf("markdown must be between 50 and 1,000,000 characters"))
	}
	if len(req.Chunks) < 1 || len(req.Chunks) > 1000 {
		return apperr.Validation(op, fmt.Errorf("chunks must contain between 1 and 1000 items"))
	}

	prevIndex := -1
	for i, c := range req.Chunks {
		if i > 0 && c.ChunkIndex <= prevIndex {
			return apperr.Validation(op, fmt.Errorf("chunk_index must be strictly increasing"))
		}
		prevIndex = c.ChunkIndex

		if c.CharEnd <= c.CharStart {
			return apperr.Validation(op, fmt.Errorf("chunk %d: char_end must exceed char_start", c.ChunkIndex))
		}
		if len(c.Text) < 10 || len(c.Text) > 10000 {
			return apperr.Validation(op, fmt.Errorf("chunk %d: text must be between 10 and 10000 characters", c.ChunkIndex))
		}
	}

	return nil
}
