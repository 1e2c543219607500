package pipeline

import (
	"sort"

	"github.com/siherrmann/kgraph/chunkmap"
	"github.com/siherrmann/kgraph/extraction"
	"github.com/siherrmann/kgraph/model"
)

// rawEntityMention is the extraction-path-agnostic shape both the unified
// extractor's entities and the NER model's mentions reduce to before
// grouping by normalized form. Start/End are document-global character
// offsets.
type rawEntityMention struct {
	Text       string
	TypeLabel  string
	Confidence float64
	Start      int
	End        int
}

// mappedEntity is one normalized entity, grouped from possibly many raw
// mentions, with its chunk-mapper (C4) appearances resolved and ready to
// persist.
type mappedEntity struct {
	Text        string
	Normalized  string
	TypePrimary string
	TypeSub1    string
	TypeSub2    string
	TypeSub3    string
	TypeFull    string
	Confidence  float64
	Appearances []model.ChunkAppearance
}

// buildMappedEntities groups raw mentions by normalized form, averages
// their confidence, keeps the first-seen display text and hierarchical
// type, and resolves chunk appearances via the chunk mapper (C4).
func buildMappedEntities(mentions []rawEntityMention, chunks []model.ChunkRange) []mappedEntity {
	type group struct {
		text        string
		typeLabel   string
		confSum     float64
		count       int
		occurrences []chunkmap.Occurrence
	}

	order := make([]string, 0)
	groups := make(map[string]*group)

	for _, m := range mentions {
		normalized := model.Normalize(m.Text)
		g, ok := groups[normalized]
		if !ok {
			g = &group{text: m.Text, typeLabel: m.TypeLabel}
			groups[normalized] = g
			order = append(order, normalized)
		}
		g.confSum += m.Confidence
		g.count++
		g.occurrences = append(g.occurrences, chunkmap.Occurrence{Start: m.Start, End: m.End})
	}

	out := make([]mappedEntity, 0, len(order))
	for _, normalized := range order {
		g := groups[normalized]
		primary, sub1, sub2, sub3, full := model.NewHierarchicalType(g.typeLabel)
		out = append(out, mappedEntity{
			Text:        g.text,
			Normalized:  normalized,
			TypePrimary: primary,
			TypeSub1:    sub1,
			TypeSub2:    sub2,
			TypeSub3:    sub3,
			TypeFull:    full,
			Confidence:  g.confSum / float64(g.count),
			Appearances: chunkmap.MapEntity(g.occurrences, chunks),
		})
	}
	return out
}

// mappedRelationship is one relationship ready to persist, with its
// endpoints resolved to normalized keys (so the caller can look up the
// already-persisted entity IDs) and its chunk anchor resolved by the chunk
// mapper (C4).
type mappedRelationship struct {
	SubjectNormalized string
	ObjectNormalized  string
	Predicate         string
	Confidence        float64
	Context           string
	Primary           chunkmap.RelationshipPrimary
	SpansChunks       bool
	ChunkRowids       []int64
}

// buildMappedRelationships resolves each extracted relationship's
// endpoints against the already-grouped entities and computes its chunk
// anchor. A relationship whose subject or object was dropped during entity
// post-processing (low confidence, unrecoverable span) is skipped: it
// cannot be anchored to a persisted entity.
func buildMappedRelationships(relationships []extraction.ExtractedRelationship, entitiesByNormalized map[string]mappedEntity) []mappedRelationship {
	out := make([]mappedRelationship, 0, len(relationships))
	for _, r := range relationships {
		subject, ok := entitiesByNormalized[model.Normalize(r.Subject)]
		if !ok {
			continue
		}
		object, ok := entitiesByNormalized[model.Normalize(r.Object)]
		if !ok {
			continue
		}

		primary := chunkmap.MapRelationshipPrimary(subject.Appearances, object.Appearances)
		out = append(out, mappedRelationship{
			SubjectNormalized: subject.Normalized,
			ObjectNormalized:  object.Normalized,
			Predicate:         r.Predicate,
			Confidence:        r.Confidence,
			Context:           r.Context,
			Primary:           primary,
			SpansChunks:       chunkmap.SpansChunks(subject.Appearances, object.Appearances),
			ChunkRowids:       sharedChunkRowids(subject.Appearances, object.Appearances),
		})
	}
	return out
}

// sharedChunkRowids returns the sorted union of vector_rowids either side
// of a relationship appears in, for the §6 IngestedRelationship detail and
// for co-occurrence recording.
func sharedChunkRowids(subjectAppearances, objectAppearances []model.ChunkAppearance) []int64 {
	seen := make(map[int64]bool)
	var rowids []int64
	for _, a := range subjectAppearances {
		if !seen[a.VectorRowid] {
			seen[a.VectorRowid] = true
			rowids = append(rowids, a.VectorRowid)
		}
	}
	for _, a := range objectAppearances {
		if !seen[a.VectorRowid] {
			seen[a.VectorRowid] = true
			rowids = append(rowids, a.VectorRowid)
		}
	}
	sort.Slice(rowids, func(i, j int) bool { return rowids[i] < rowids[j] })
	return rowids
}
