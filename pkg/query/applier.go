package query

import (
	"fmt"
	"strings"

	"github.com/aretw0/silt/pkg/core"
)

// Apply computes a new record from an update specification without
// mutating the input. The specification carries up to two operator
// groups:
//
//   - $set: dotted path -> value. Missing intermediate segments are
//     created as maps; a non-map intermediate is replaced.
//   - $inc: dotted path -> numeric delta. An absent leaf starts from 0;
//     a present non-numeric leaf is a caller error.
//
// $inc applies before $set, so a simultaneous $set on the same path wins
// deterministically. Any other top-level key, a non-map operator group,
// or a non-numeric delta fails with core.ErrMalformedUpdate.
func Apply(rec core.Record, update core.Map) (core.Record, error) {
	for op := range update {
		if op != "$set" && op != "$inc" {
			return nil, fmt.Errorf("%w: unknown operator %q", core.ErrMalformedUpdate, op)
		}
	}

	out := rec.Clone()

	if group, present := update["$inc"]; present {
		inc, ok := group.(core.Map)
		if !ok {
			return nil, fmt.Errorf("%w: $inc group is not a mapping", core.ErrMalformedUpdate)
		}
		if err := applyInc(out, inc); err != nil {
			return nil, err
		}
	}

	if group, present := update["$set"]; present {
		set, ok := group.(core.Map)
		if !ok {
			return nil, fmt.Errorf("%w: $set group is not a mapping", core.ErrMalformedUpdate)
		}
		for path, v := range set {
			setPath(out, path, core.Clone(v))
		}
	}

	return out, nil
}

func applyInc(rec core.Map, inc core.Map) error {
	for path, delta := range inc {
		d, ok := delta.(core.Number)
		if !ok {
			return fmt.Errorf("%w: $inc delta for %q is not a number", core.ErrMalformedUpdate, path)
		}

		base := core.Number(0)
		if cur, present := getPath(rec, path); present {
			n, ok := cur.(core.Number)
			if !ok {
				return fmt.Errorf("%w: $inc target %q holds non-numeric value", core.ErrMalformedUpdate, path)
			}
			base = n
		}

		setPath(rec, path, base+d)
	}
	return nil
}

// setPath writes a value at a dotted path, creating map intermediates
// as needed. A non-map value sitting on an intermediate segment is
// replaced by a fresh map.
func setPath(m core.Map, path string, v core.Value) {
	segs := strings.Split(path, ".")
	cur := m
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg].(core.Map)
		if !ok {
			next = core.Map{}
			cur[seg] = next
		}
		cur = next
	}
	cur[segs[len(segs)-1]] = v
}

// getPath resolves a dotted path, reporting whether the leaf exists.
func getPath(m core.Map, path string) (core.Value, bool) {
	segs := strings.Split(path, ".")
	cur := m
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg].(core.Map)
		if !ok {
			return nil, false
		}
		cur = next
	}
	v, ok := cur[segs[len(segs)-1]]
	return v, ok
}
