package query_test

import (
	"testing"

	"github.com/aretw0/silt/pkg/core"
	"github.com/aretw0/silt/pkg/query"
)

func entry() core.Record {
	return core.MustMap(map[string]any{
		"id":        "e1",
		"date":      "2024-02-01",
		"intensity": 7,
		"summary":   "Team Standup",
		"tags":      []string{"work", "meeting"},
	})
}

func TestMatchesEquality(t *testing.T) {
	t.Run("Literal Field Equality", func(t *testing.T) {
		if !query.Matches(entry(), core.MustMap(map[string]any{"date": "2024-02-01"})) {
			t.Error("expected equality match")
		}
		if query.Matches(entry(), core.MustMap(map[string]any{"date": "2024-02-02"})) {
			t.Error("expected equality mismatch")
		}
	})

	t.Run("Absent Field Never Matches", func(t *testing.T) {
		if query.Matches(entry(), core.MustMap(map[string]any{"missing": nil})) {
			t.Error("absent field must not match, even against null")
		}
	})

	t.Run("Empty Filter Matches Everything", func(t *testing.T) {
		if !query.Matches(entry(), core.Map{}) {
			t.Error("empty filter should match")
		}
	})
}

func TestMatchesRange(t *testing.T) {
	t.Run("String Range Over ISO Dates", func(t *testing.T) {
		filter := core.MustMap(map[string]any{
			"date": map[string]any{"$gte": "2024-01-15", "$lte": "2024-02-15"},
		})
		if !query.Matches(entry(), filter) {
			t.Error("expected date inside range to match")
		}
	})

	t.Run("Numeric Range", func(t *testing.T) {
		filter := core.MustMap(map[string]any{"intensity": map[string]any{"$gte": 5}})
		if !query.Matches(entry(), filter) {
			t.Error("expected intensity >= 5 to match")
		}

		filter = core.MustMap(map[string]any{"intensity": map[string]any{"$lte": 5}})
		if query.Matches(entry(), filter) {
			t.Error("expected intensity <= 5 to fail")
		}
	})

	t.Run("Absent Field Fails Range", func(t *testing.T) {
		filter := core.MustMap(map[string]any{"missing": map[string]any{"$gte": 1}})
		if query.Matches(entry(), filter) {
			t.Error("range against absent field must fail")
		}
	})

	t.Run("Mixed Kinds Fail Range", func(t *testing.T) {
		filter := core.MustMap(map[string]any{"intensity": map[string]any{"$gte": "5"}})
		if query.Matches(entry(), filter) {
			t.Error("number vs string comparison must fail")
		}
	})
}

func TestMatchesIn(t *testing.T) {
	filter := core.MustMap(map[string]any{"id": map[string]any{"$in": []any{"e1", "e2"}}})
	if !query.Matches(entry(), filter) {
		t.Error("expected $in to match")
	}

	filter = core.MustMap(map[string]any{"id": map[string]any{"$in": []any{"e9"}}})
	if query.Matches(entry(), filter) {
		t.Error("expected $in to miss")
	}
}

func TestMatchesRegex(t *testing.T) {
	t.Run("Case Insensitive Substring", func(t *testing.T) {
		filter := core.MustMap(map[string]any{
			"summary": map[string]any{"$regex": "standup", "$options": "i"},
		})
		if !query.Matches(entry(), filter) {
			t.Error("expected case-insensitive match")
		}
	})

	t.Run("Case Sensitive Without Options", func(t *testing.T) {
		filter := core.MustMap(map[string]any{"summary": map[string]any{"$regex": "standup"}})
		if query.Matches(entry(), filter) {
			t.Error("expected case-sensitive mismatch")
		}
	})

	t.Run("Invalid Pattern Fails Condition", func(t *testing.T) {
		filter := core.MustMap(map[string]any{"summary": map[string]any{"$regex": "("}})
		if query.Matches(entry(), filter) {
			t.Error("invalid pattern must not match")
		}
	})
}

func TestMatchesOr(t *testing.T) {
	t.Run("One Branch Suffices", func(t *testing.T) {
		filter := core.MustMap(map[string]any{
			"$or": []any{
				map[string]any{"summary": map[string]any{"$regex": "standup", "$options": "i"}},
				map[string]any{"description": map[string]any{"$regex": "standup", "$options": "i"}},
			},
		})
		if !query.Matches(entry(), filter) {
			t.Error("expected $or to match on the first branch")
		}
	})

	t.Run("Combines With Implicit AND", func(t *testing.T) {
		filter := core.MustMap(map[string]any{
			"date": "1999-01-01",
			"$or":  []any{map[string]any{"id": "e1"}},
		})
		if query.Matches(entry(), filter) {
			t.Error("sibling keys must still be required")
		}
	})

	t.Run("Empty Or Never Matches", func(t *testing.T) {
		filter := core.MustMap(map[string]any{"$or": []any{}})
		if query.Matches(entry(), filter) {
			t.Error("empty $or must not match")
		}
	})
}

func TestMatchesUnknownOperator(t *testing.T) {
	filter := core.MustMap(map[string]any{"intensity": map[string]any{"$near": 7}})
	if query.Matches(entry(), filter) {
		t.Error("unknown operator must fail the condition")
	}
}
