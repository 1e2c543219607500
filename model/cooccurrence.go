package model

import "github.com/google/uuid"

// CoOccurrence is an undirected edge recording that two entities were
// mentioned in the same chunk. Direction is normalized by lexicographic
// order of the two entities' Normalized values so the same pair always
// merges onto the same edge regardless of extraction order (§3/§4.5).
type CoOccurrence struct {
	EntityLowID  uuid.UUID `json:"entity_low_id"`
	EntityHighID uuid.UUID `json:"entity_high_id"`
	Count        int       `json:"count"`
	ChunkRowids  []int64   `json:"chunk_rowids"`
}

// OrderedPair returns (lowID, highID) such that lowNormalized <= highNormalized
// lexicographically, enforcing the canonical co-occurrence direction.
func OrderedPair(aID, bID uuid.UUID, aNormalized, bNormalized string) (lowID, highID uuid.UUID) {
	if aNormalized <= bNormalized {
		return aID, bID
	}
	return bID, aID
}
