package engine

import (
	"reflect"
	"sync"

	"github.com/cerevo/PEAK-Rules/internal/classreg"
	"github.com/cerevo/PEAK-Rules/internal/model"
)

// Implies is itself a generic function (spec.md §4.1): it decides whether
// every argument tuple matching s1 also matches s2. Unlike an ordinary
// Dispatching, it cannot resolve its own applicability by calling itself —
// doing so would recurse before any rule exists to answer with. Instead its
// registry is keyed directly by the exact dynamic type of each argument,
// which needs no recursive call to resolve, and its bottom rule is the
// original, pre-generic identity check every generic function starts from
// (spec.md §9's clone-as-default-rule): s1 == s2.
//
// Everything else — tuples, classes, legacy classes, booleans, and the
// action-kind axioms combine.go declares — is registered through
// RegisterImplies at package init, exactly as downstream code would extend
// it with when(Implies, (T1, T2))(rule).
type impliesKey struct{ t1, t2 reflect.Type }

// wildcard is the "object" side of a signature pair: it matches any
// argument type that has no more specific registration. It is never
// produced by classKeyOf, so it can't collide with a real argument type.
type wildcard struct{}

var wildcardType = reflect.TypeOf(wildcard{})

var (
	impliesMu       sync.RWMutex
	impliesRegistry = map[impliesKey]Action{}
	impliesSeq      uint64
)

func nextImpliesSeq() uint64 {
	impliesSeq++
	return impliesSeq
}

// RegisterImplies is the extension surface spec.md §6 describes as
// when(Implies, (T1, T2))(rule): fn receives the two arguments in their
// original dynamic types and decides whether the first implies the second.
// Registering a second rule at an already-occupied (t1, t2) combines with
// the first via the same algebra as any other generic function.
func RegisterImplies(t1, t2 reflect.Type, fn func(a, b any) bool) {
	body := model.PlainBody(func(args []any) (any, error) {
		return fn(args[0], args[1]), nil
	})
	action := NewPrimary(body, model.Signature{t1, t2}, nextImpliesSeq())

	impliesMu.Lock()
	defer impliesMu.Unlock()
	key := impliesKey{t1, t2}
	if existing, ok := impliesRegistry[key]; ok {
		combined, err := Combine(action, existing)
		if err != nil {
			panic(err)
		}
		impliesRegistry[key] = combined
	} else {
		impliesRegistry[key] = action
	}
}

func classKeyOf(v any) reflect.Type {
	if v == nil {
		return nil
	}
	return reflect.TypeOf(v)
}

// lookupImplies finds the most specific registered rule for (t1, t2),
// preferring an exact match, then a wildcard on the second position, then
// a wildcard on the first, then both.
func lookupImplies(t1, t2 reflect.Type) (Action, bool) {
	impliesMu.RLock()
	defer impliesMu.RUnlock()
	if a, ok := impliesRegistry[impliesKey{t1, t2}]; ok {
		return a, true
	}
	if a, ok := impliesRegistry[impliesKey{t1, wildcardType}]; ok {
		return a, true
	}
	if a, ok := impliesRegistry[impliesKey{wildcardType, t2}]; ok {
		return a, true
	}
	if a, ok := impliesRegistry[impliesKey{wildcardType, wildcardType}]; ok {
		return a, true
	}
	return nil, false
}

// Implies reports whether s1 implies s2: every call matched by s1 is also
// matched by s2. It is the predicate the dominance resolver (C7) and the
// combine algebra (§4.2) are both built on.
func Implies(s1, s2 any) bool {
	t1, t2 := classKeyOf(s1), classKeyOf(s2)
	if action, ok := lookupImplies(t1, t2); ok {
		result, err := action.Call([]any{s1, s2})
		if err == nil {
			if b, ok := result.(bool); ok {
				return b
			}
		}
	}
	return coreImpliesFallback(s1, s2)
}

// coreImpliesFallback is implies's original body, preserved as its
// lowest-precedence rule: two values that have no more specific
// registration imply one another only if they are equal.
func coreImpliesFallback(s1, s2 any) bool {
	return reflect.DeepEqual(s1, s2)
}

func tupleImplies(a, b any) bool {
	s1 := a.(model.Signature)
	s2 := b.(model.Signature)
	if len(s2) > len(s1) {
		return false
	}
	for i := range s2 {
		if !Implies(s1[i], s2[i]) {
			return false
		}
	}
	return true
}

func boolBoolImplies(a, b any) bool {
	c1, c2 := a.(bool), b.(bool)
	return c2 || !c1
}

func boolLeftImplies(a, _ any) bool {
	c1 := a.(bool)
	return !c1
}

func boolRightImplies(_, b any) bool {
	c2 := b.(bool)
	return c2
}

func ambiguousOverridesOther(a, b any) bool {
	am := a.(*AmbiguousMethods)
	for _, m := range am.Methods {
		if Implies(m, b) {
			return true
		}
	}
	return false
}

func otherOverridesAmbiguous(a, b any) bool {
	am := b.(*AmbiguousMethods)
	for _, m := range am.Methods {
		if !Implies(a, m) {
			return false
		}
	}
	return true
}

var bootstrapOnce sync.Once

// bootstrapImplies registers every base rule of the implies generic
// function: signature shapes (tuples, classes, legacy classes, bools) and
// the action-kind axioms the combine algebra depends on. It runs once,
// from this package's init.
func bootstrapImplies() {
	bootstrapOnce.Do(func() {
		signatureType := reflect.TypeOf(model.Signature{})
		RegisterImplies(signatureType, signatureType, tupleImplies)

		classType := reflect.TypeOf(&classreg.Class{})
		legacyType := reflect.TypeOf(&classreg.LegacyClass{})
		RegisterImplies(classType, classType, func(a, b any) bool {
			return a.(*classreg.Class).Implies(b.(*classreg.Class))
		})
		RegisterImplies(legacyType, legacyType, func(a, b any) bool {
			return a.(*classreg.LegacyClass).Implies(b.(*classreg.LegacyClass))
		})
		RegisterImplies(legacyType, classType, func(a, b any) bool {
			return a.(*classreg.LegacyClass).ImpliesNewStyle(b.(*classreg.Class))
		})
		// implies(Class, LegacyClass) is left undeclared: spec.md and the
		// original source are both silent on a new-style class implying a
		// legacy one, so it falls through to coreImpliesFallback and is
		// always false.

		boolType := reflect.TypeOf(true)
		RegisterImplies(boolType, boolType, boolBoolImplies)
		RegisterImplies(boolType, wildcardType, boolLeftImplies)
		RegisterImplies(wildcardType, boolType, boolRightImplies)

		RegisterImplies(primaryType, primaryType, func(a, b any) bool {
			return Implies(a.(*Primary).Signature, b.(*Primary).Signature)
		})
		RegisterImplies(aroundType, aroundType, func(a, b any) bool {
			return Implies(a.(*Around).Signature, b.(*Around).Signature)
		})

		AlwaysOverrides(aroundType, primaryType)
		AlwaysOverrides(aroundType, beforeType)
		AlwaysOverrides(aroundType, afterType)
		AlwaysOverrides(beforeType, afterType)
		AlwaysOverrides(beforeType, primaryType)
		AlwaysOverrides(afterType, primaryType)
		AlwaysOverrides(wildcardType, noApplicableType)
		MergeByDefault(beforeType)
		MergeByDefault(afterType)
		MergeByDefault(noApplicableType)
		MergeByDefault(ambiguousType)

		RegisterImplies(ambiguousType, wildcardType, ambiguousOverridesOther)
		RegisterImplies(wildcardType, ambiguousType, otherOverridesAmbiguous)
	})
}

func init() {
	bootstrapImplies()
}
