package engine

import "reflect"

// Combine implements the action algebra's central operator (spec.md §4.2):
// given two actions landing at the same registry slot or co-dominating at
// the same argument tuple, decide whether one overrides the other or, if
// neither dominates (or both mutually do), merge them.
func Combine(a1, a2 Action) (Action, error) {
	if a1 == nil {
		return a2, nil
	}
	if a2 == nil {
		return a1, nil
	}
	i12 := Implies(a1, a2)
	i21 := Implies(a2, a1)
	switch {
	case i12 && !i21:
		return a1.Override(a2), nil
	case i21 && !i12:
		return a2.Override(a1), nil
	default:
		return a1.Merge(a2)
	}
}

// AlwaysOverrides declares that every instance of the action kind t1
// implies every instance of t2, and never the reverse — the Go analogue of
// peak/rules/core.py's always_overrides(a, b).
func AlwaysOverrides(t1, t2 reflect.Type) {
	RegisterImplies(t1, t2, func(any, any) bool { return true })
	RegisterImplies(t2, t1, func(any, any) bool { return false })
}

// MergeByDefault declares that two instances of the action kind t never
// imply one another, forcing combine() to merge rather than override —
// the Go analogue of merge_by_default(t).
func MergeByDefault(t reflect.Type) {
	RegisterImplies(t, t, func(any, any) bool { return false })
}

var (
	primaryType      = reflect.TypeOf(&Primary{})
	aroundType       = reflect.TypeOf(&Around{})
	beforeType       = reflect.TypeOf(&Before{})
	afterType        = reflect.TypeOf(&After{})
	noApplicableType = reflect.TypeOf(&NoApplicableMethods{})
	ambiguousType    = reflect.TypeOf(&AmbiguousMethods{})
)
