package engine

import (
	"reflect"
	"sync"

	"github.com/cerevo/PEAK-Rules/internal/model"
)

// Intersect and Disjuncts are the two open generics spec.md §6 names
// alongside Implies: intersect(c1, c2) (the logical AND of two
// conditions, short-circuited by Implies when one side subsumes the
// other) and disjuncts(ob) (the disjunctive alternatives within a
// predicate). Both are extensible by type, like Implies, but neither
// needs the full action-combination algebra — a later registration for
// the same type pair simply replaces the earlier one.

var (
	intersectMu       sync.RWMutex
	intersectRegistry = map[impliesKey]func(a, b any) any{}

	disjunctsMu       sync.RWMutex
	disjunctsRegistry = map[reflect.Type]func(any) []any{}
)

// RegisterIntersect installs an override for Intersect(c1, c2) when c1 has
// dynamic type t1 and c2 has dynamic type t2. Either may be wildcardType
// (see implies.go's wildcard) to match regardless of the other's type.
func RegisterIntersect(t1, t2 reflect.Type, fn func(a, b any) any) {
	intersectMu.Lock()
	defer intersectMu.Unlock()
	intersectRegistry[impliesKey{t1, t2}] = fn
}

// Intersect returns the logical AND of two predicates. The default,
// lowest-precedence behavior uses Implies to short-circuit: if one side
// already implies the other, that side alone represents the conjunction;
// otherwise the pair is wrapped as a Conjunction for a collaborator to
// interpret.
func Intersect(c1, c2 any) any {
	t1, t2 := classKeyOf(c1), classKeyOf(c2)
	intersectMu.RLock()
	fn, ok := intersectRegistry[impliesKey{t1, t2}]
	if !ok {
		fn, ok = intersectRegistry[impliesKey{t1, wildcardType}]
	}
	if !ok {
		fn, ok = intersectRegistry[impliesKey{wildcardType, t2}]
	}
	intersectMu.RUnlock()
	if ok {
		return fn(c1, c2)
	}
	return coreIntersectFallback(c1, c2)
}

func coreIntersectFallback(c1, c2 any) any {
	if Implies(c1, c2) {
		return c1
	}
	if Implies(c2, c1) {
		return c2
	}
	return model.Conjunction{c1, c2}
}

// RegisterDisjuncts installs an override for Disjuncts(ob) when ob has
// dynamic type t.
func RegisterDisjuncts(t reflect.Type, fn func(any) []any) {
	disjunctsMu.Lock()
	defer disjunctsMu.Unlock()
	disjunctsRegistry[t] = fn
}

// Disjuncts returns the disjunctive alternatives within a predicate. The
// default behavior: a bare predicate is its own single alternative; a
// bool expands to its trivial disjunctive form (true → one universally
// matching alternative, false → no alternatives at all); a Disjunction
// recursively flattens.
func Disjuncts(ob any) []any {
	disjunctsMu.RLock()
	fn, ok := disjunctsRegistry[classKeyOf(ob)]
	disjunctsMu.RUnlock()
	if ok {
		return fn(ob)
	}
	return coreDisjunctsFallback(ob)
}

func coreDisjunctsFallback(ob any) []any {
	switch v := ob.(type) {
	case bool:
		if v {
			return []any{true}
		}
		return []any{}
	case model.Disjunction:
		var out []any
		for _, alt := range v {
			out = append(out, Disjuncts(alt)...)
		}
		return out
	default:
		return []any{ob}
	}
}
