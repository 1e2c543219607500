package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entity is a typed name normalized for identity. Normalized is the
// identity key (§3): two mentions with the same Normalized value, whatever
// their display casing, denote the same entity. MentionCount and
// AvgConfidence are running aggregates maintained by the graph store on
// every merge (§4.5).
type Entity struct {
	ID            uuid.UUID `json:"id"`
	Text          string    `json:"text"`
	Normalized    string    `json:"normalized"`
	TypePrimary   string    `json:"type_primary"`
	TypeSub1      string    `json:"type_sub1,omitempty"`
	TypeSub2      string    `json:"type_sub2,omitempty"`
	TypeSub3      string    `json:"type_sub3,omitempty"`
	TypeFull      string    `json:"type_full"`
	MentionCount  int       `json:"mention_count"`
	AvgConfidence float64   `json:"avg_confidence"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewHierarchicalType splits a "::"-joined type label into up to four
// levels and returns the parsed levels plus the canonical TypeFull string.
// Extra levels beyond four are folded into the fourth (§GLOSSARY
// "Hierarchical type").
func NewHierarchicalType(label string) (primary, sub1, sub2, sub3, full string) {
	label = strings.TrimSpace(label)
	if label == "" {
		label = "unknown"
	}
	parts := strings.Split(label, "::")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}

	primary = parts[0]
	if len(parts) > 1 {
		sub1 = parts[1]
	}
	if len(parts) > 2 {
		sub2 = parts[2]
	}
	if len(parts) > 3 {
		sub3 = strings.Join(parts[3:], "::")
	}
	full = strings.Join(nonEmpty(primary, sub1, sub2, sub3), "::")
	return primary, sub1, sub2, sub3, full
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Normalize lowercases and trims a display-form entity name into its
// identity key, per §3/§4.2.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// EntityMention is the MENTIONED_IN edge: one occurrence of an Entity in
// one Chunk, with chunk-local character offsets and surrounding context.
// Multiple mentions of the same entity within the same chunk collapse to
// one edge whose attributes reflect the last update (§3).
type EntityMention struct {
	EntityID      uuid.UUID `json:"entity_id"`
	ChunkID       uuid.UUID `json:"chunk_id"`
	OffsetStart   int       `json:"offset_start"`
	OffsetEnd     int       `json:"offset_end"`
	Confidence    float64   `json:"confidence"`
	ContextBefore string    `json:"context_before,omitempty"`
	ContextAfter  string    `json:"context_after,omitempty"`
	Sentence      string    `json:"sentence,omitempty"`
}

// ChunkAppearance describes one chunk in which an entity was anchored by
// the chunk mapper (C4). VectorRowid/ChunkIndex identify the chunk;
// OffsetStart/OffsetEnd are chunk-local.
type ChunkAppearance struct {
	VectorRowid int64 `json:"vector_rowid"`
	ChunkIndex  int   `json:"chunk_index"`
	OffsetStart int   `json:"offset_start"`
	OffsetEnd   int   `json:"offset_end"`
}

// maxContextChars bounds the context window captured around a mention (§3).
const (
	maxContextChars  = 100
	maxSentenceChars = 500
)

// TrimContext truncates s to at most maxContextChars bytes, keeping the
// side closest to the mention: the suffix when keepSuffix is set (text
// before a mention), otherwise the prefix (text after it).
func TrimContext(s string, keepSuffix bool) string {
	if len(s) <= maxContextChars {
		return s
	}
	if keepSuffix {
		return s[len(s)-maxContextChars:]
	}
	return s[:maxContextChars]
}

// TrimSentence truncates s to at most maxSentenceChars.
func TrimSentence(s string) string {
	if len(s) <= maxSentenceChars {
		return s
	}
	return s[:maxSentenceChars]
}
