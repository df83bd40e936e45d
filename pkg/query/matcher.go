// Package query implements the filter and update algebra shared by every
// collection: a matcher evaluating filter predicates against records, and
// an applier computing updated records from $set/$inc specifications.
// Both are pure functions; all state lives in the storage adapters.
package query

import (
	"regexp"
	"strings"

	"github.com/aretw0/silt/pkg/core"
)

// Matches reports whether a record satisfies a filter.
//
// Each filter key names a field and maps to either a literal value
// (equality) or an operator map ($gte, $lte, $in, $regex with $options).
// The reserved key $or holds a sequence of sub-filters of which at least
// one must match; it combines by AND with the filter's other keys.
// A missing field never satisfies a condition, not even equality against
// an explicit null.
func Matches(rec core.Record, filter core.Map) bool {
	for field, cond := range filter {
		if field == "$or" {
			if !matchOr(rec, cond) {
				return false
			}
			continue
		}
		if !matchField(rec, field, cond) {
			return false
		}
	}
	return true
}

func matchOr(rec core.Record, cond core.Value) bool {
	branches, ok := cond.(core.List)
	if !ok {
		return false
	}
	for _, branch := range branches {
		sub, ok := branch.(core.Map)
		if ok && Matches(rec, sub) {
			return true
		}
	}
	return false
}

func matchField(rec core.Record, field string, cond core.Value) bool {
	val, present := rec[field]

	if ops, ok := cond.(core.Map); ok && isOperatorMap(ops) {
		return matchOperators(val, present, ops)
	}

	return present && core.Equal(val, cond)
}

// isOperatorMap distinguishes {"$gte": ...} conditions from literal map
// equality. A single $-prefixed key marks the whole map as operators.
func isOperatorMap(m core.Map) bool {
	for k := range m {
		if strings.HasPrefix(k, "$") {
			return true
		}
	}
	return false
}

// matchOperators evaluates every operator in the map against the field
// value (AND semantics). Unknown operators fail the condition rather
// than panic: Matches stays a total predicate.
func matchOperators(val core.Value, present bool, ops core.Map) bool {
	for op, arg := range ops {
		switch op {
		case "$gte":
			c, ordered := core.Compare(val, arg)
			if !present || !ordered || c < 0 {
				return false
			}

		case "$lte":
			c, ordered := core.Compare(val, arg)
			if !present || !ordered || c > 0 {
				return false
			}

		case "$in":
			candidates, ok := arg.(core.List)
			if !ok || !present {
				return false
			}
			if !containsEqual(candidates, val) {
				return false
			}

		case "$regex":
			if !matchRegex(val, present, arg, ops["$options"]) {
				return false
			}

		case "$options":
			// Consumed together with $regex.

		default:
			return false
		}
	}
	return true
}

func containsEqual(candidates core.List, val core.Value) bool {
	for _, c := range candidates {
		if core.Equal(val, c) {
			return true
		}
	}
	return false
}

// matchRegex performs an unanchored pattern test against a string field.
// The only recognized option is "i" (case-insensitive). A pattern that
// does not compile fails the condition.
func matchRegex(val core.Value, present bool, pattern, options core.Value) bool {
	if !present {
		return false
	}
	s, ok := val.(core.String)
	if !ok {
		return false
	}
	p, ok := pattern.(core.String)
	if !ok {
		return false
	}

	expr := string(p)
	if opts, ok := options.(core.String); ok && strings.Contains(string(opts), "i") {
		expr = "(?i)" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return false
	}
	return re.MatchString(string(s))
}
