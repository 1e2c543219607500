// Package chunkmap anchors extracted entities and relationships back onto
// the upstream chunk ranges they were found in, by character-offset overlap
// (C4). Entities and relationships arrive from extraction with offsets
// relative to the whole document text; this package turns those into
// chunk-local appearances addressed by vector_rowid.
package chunkmap

import (
	"sort"

	"github.com/siherrmann/kgraph/model"
)

// minOverlapChars is the overlap floor below which a mention touching a
// chunk boundary is treated as spillover rather than a real appearance
// (§4.4).
const minOverlapChars = 10

// Occurrence is one character span where an entity was found in the
// document's full text, before it is resolved to chunk-local offsets.
type Occurrence struct {
	Start int
	End   int
}

// MapEntity computes, for one entity's raw occurrences against chunks
// (assumed sorted by ChunkIndex), the set of chunk appearances whose
// character overlap with some occurrence is at least minOverlapChars.
// Appearances are deduped by (VectorRowid, ChunkIndex).
func MapEntity(occurrences []Occurrence, chunks []model.ChunkRange) []model.ChunkAppearance {
	seen := make(map[int64]bool)
	var appearances []model.ChunkAppearance

	for _, chunk := range chunks {
		if seen[chunk.VectorRowid] {
			continue
		}
		for _, occ := range occurrences {
			overlap := overlapChars(occ.Start, occ.End, chunk.CharStart, chunk.CharEnd)
			if overlap < minOverlapChars {
				continue
			}
			seen[chunk.VectorRowid] = true

			chunkLen := chunk.Len()
			offsetStart := max(0, occ.Start-chunk.CharStart)
			offsetEnd := min(chunkLen, occ.End-chunk.CharStart)

			appearances = append(appearances, model.ChunkAppearance{
				VectorRowid: chunk.VectorRowid,
				ChunkIndex:  chunk.ChunkIndex,
				OffsetStart: offsetStart,
				OffsetEnd:   offsetEnd,
			})
			break
		}
	}

	return appearances
}

// overlapChars computes the overlap in characters between span [aStart,
// aEnd) and [bStart, bEnd), clamped to zero when they don't intersect.
func overlapChars(aStart, aEnd, bStart, bEnd int) int {
	overlap := min(aEnd, bEnd) - max(aStart, bStart)
	return max(0, overlap)
}

// SpansMultipleChunks reports whether an entity's mapped appearances cross
// more than one chunk.
func SpansMultipleChunks(appearances []model.ChunkAppearance) bool {
	return len(appearances) > 1
}

// RelationshipPrimary is the resolved primary chunk for a relationship, or
// a zero value with Found=false when no chunk could be chosen (§4.4 rule
// 5).
type RelationshipPrimary struct {
	VectorRowid int64
	Found       bool
}

// MapRelationshipPrimary chooses the relationship's primary chunk from the
// subject's and object's mapped appearances, following the five-tier
// priority in §4.4: a shared chunk (lowest vector_rowid) first, then the
// closest-by-chunk-index pair, then the lowest subject chunk, then the
// lowest object chunk, then none.
func MapRelationshipPrimary(subjectAppearances, objectAppearances []model.ChunkAppearance) RelationshipPrimary {
	subjectRowids := rowidSet(subjectAppearances)
	objectRowids := rowidSet(objectAppearances)

	var shared []int64
	for rowid := range subjectRowids {
		if objectRowids[rowid] {
			shared = append(shared, rowid)
		}
	}
	if len(shared) > 0 {
		sort.Slice(shared, func(i, j int) bool { return shared[i] < shared[j] })
		return RelationshipPrimary{VectorRowid: shared[0], Found: true}
	}

	if len(subjectAppearances) > 0 && len(objectAppearances) > 0 {
		best, ok := closestPair(subjectAppearances, objectAppearances)
		if ok {
			return best
		}
	}

	if lowest, ok := lowestRowid(subjectAppearances); ok {
		return RelationshipPrimary{VectorRowid: lowest, Found: true}
	}

	if lowest, ok := lowestRowid(objectAppearances); ok {
		return RelationshipPrimary{VectorRowid: lowest, Found: true}
	}

	return RelationshipPrimary{}
}

// SpansChunks reports whether subject and object share no chunk (§4.4:
// spans_chunks = |shared| == 0).
func SpansChunks(subjectAppearances, objectAppearances []model.ChunkAppearance) bool {
	subjectRowids := rowidSet(subjectAppearances)
	objectRowids := rowidSet(objectAppearances)
	for rowid := range subjectRowids {
		if objectRowids[rowid] {
			return false
		}
	}
	return true
}

func rowidSet(appearances []model.ChunkAppearance) map[int64]bool {
	set := make(map[int64]bool, len(appearances))
	for _, a := range appearances {
		set[a.VectorRowid] = true
	}
	return set
}

func lowestRowid(appearances []model.ChunkAppearance) (int64, bool) {
	if len(appearances) == 0 {
		return 0, false
	}
	lowest := appearances[0].VectorRowid
	for _, a := range appearances[1:] {
		if a.VectorRowid < lowest {
			lowest = a.VectorRowid
		}
	}
	return lowest, true
}

// closestPair finds the subject/object appearance pair minimizing the
// absolute difference in chunk index, returning the lower vector_rowid of
// the winning pair.
func closestPair(subjectAppearances, objectAppearances []model.ChunkAppearance) (RelationshipPrimary, bool) {
	bestDiff := -1
	var bestRowid int64

	for _, s := range subjectAppearances {
		for _, o := range objectAppearances {
			diff := s.ChunkIndex - o.ChunkIndex
			if diff < 0 {
				diff = -diff
			}
			rowid := s.VectorRowid
			if o.VectorRowid < rowid {
				rowid = o.VectorRowid
			}
			if bestDiff == -1 || diff < bestDiff || (diff == bestDiff && rowid < bestRowid) {
				bestDiff = diff
				bestRowid = rowid
			}
		}
	}

	if bestDiff == -1 {
		return RelationshipPrimary{}, false
	}
	return RelationshipPrimary{VectorRowid: bestRowid, Found: true}, true
}
