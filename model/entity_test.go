package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewHierarchicalType(t *testing.T) {
	t.Run("Single level label", func(t *testing.T) {
		primary, sub1, sub2, sub3, full := NewHierarchicalType("Person")

		assert.Equal(t, "Person", primary)
		assert.Empty(t, sub1)
		assert.Empty(t, sub2)
		assert.Empty(t, sub3)
		assert.Equal(t, "Person", full)
	})

	t.Run("Four level label", func(t *testing.T) {
		primary, sub1, sub2, sub3, full := NewHierarchicalType("Organization::Company::Public::Tech")

		assert.Equal(t, "Organization", primary)
		assert.Equal(t, "Company", sub1)
		assert.Equal(t, "Public", sub2)
		assert.Equal(t, "Tech", sub3)
		assert.Equal(t, "Organization::Company::Public::Tech", full)
	})

	t.Run("More than four levels folds extras into the last", func(t *testing.T) {
		_, _, _, sub3, full := NewHierarchicalType("A::B::C::D::E")

		assert.Equal(t, "D::E", sub3)
		assert.Equal(t, "A::B::C::D::E", full)
	})

	t.Run("Empty label defaults to unknown", func(t *testing.T) {
		primary, _, _, _, full := NewHierarchicalType("   ")

		assert.Equal(t, "unknown", primary)
		assert.Equal(t, "unknown", full)
	})

	t.Run("Trims whitespace around each level", func(t *testing.T) {
		primary, sub1, _, _, full := NewHierarchicalType(" Person :: Athlete ")

		assert.Equal(t, "Person", primary)
		assert.Equal(t, "Athlete", sub1)
		assert.Equal(t, "Person::Athlete", full)
	})
}

func TestNormalize(t *testing.T) {
	t.Run("Lowercases and trims", func(t *testing.T) {
		assert.Equal(t, "lebron james", Normalize("  LeBron James  "))
	})
}

func TestTrimContext(t *testing.T) {
	t.Run("Returns s unchanged when within the limit", func(t *testing.T) {
		assert.Equal(t, "short", TrimContext("short", false))
	})

	t.Run("Keeps prefix when keepSuffix is false", func(t *testing.T) {
		s := strings.Repeat("a", 150)
		trimmed := TrimContext(s, false)

		assert.Len(t, trimmed, maxContextChars)
		assert.Equal(t, s[:maxContextChars], trimmed)
	})

	t.Run("Keeps suffix when keepSuffix is true", func(t *testing.T) {
		s := strings.Repeat("a", 150)
		trimmed := TrimContext(s, true)

		assert.Len(t, trimmed, maxContextChars)
		assert.Equal(t, s[len(s)-maxContextChars:], trimmed)
	})
}

func TestTrimSentence(t *testing.T) {
	t.Run("Truncates beyond the sentence limit", func(t *testing.T) {
		s := strings.Repeat("b", maxSentenceChars+50)
		trimmed := TrimSentence(s)

		assert.Len(t, trimmed, maxSentenceChars)
	})

	t.Run("Leaves short sentences alone", func(t *testing.T) {
		assert.Equal(t, "hello", TrimSentence("hello"))
	})
}
