package engine

import (
	"reflect"
	"testing"

	"github.com/cerevo/PEAK-Rules/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Single specific override
// =============================================================================

func TestDispatchSpecificOverridesDefault(t *testing.T) {
	d := NewDispatching("greet", nil, nil)
	d.Rules.Add(model.Rule{
		Body:       model.PlainBody(func(args []any) (any, error) { return "any", nil }),
		Predicate:  model.Signature{},
		ActionKind: model.ActionPrimary,
	})
	d.Rules.Add(model.Rule{
		Body:       model.PlainBody(func(args []any) (any, error) { return "str", nil }),
		Predicate:  model.Signature{reflect.TypeOf("")},
		ActionKind: model.ActionPrimary,
	})

	result, err := d.Call([]any{3})
	require.NoError(t, err)
	assert.Equal(t, "any", result)

	result, err = d.Call([]any{"hi"})
	require.NoError(t, err)
	assert.Equal(t, "str", result)
}

// =============================================================================
// Chainable next-method
// =============================================================================

func TestDispatchChainableNextMethod(t *testing.T) {
	intType := reflect.TypeOf(0)
	d := NewDispatching("f", nil, nil)
	d.Rules.Add(model.Rule{
		Body:       model.PlainBody(func(args []any) (any, error) { return 10, nil }),
		Predicate:  model.Signature{},
		ActionKind: model.ActionPrimary,
	})
	d.Rules.Add(model.Rule{
		Body: model.ChainableBody(func(next model.NextMethod, args []any) (any, error) {
			v, err := next(args)
			if err != nil {
				return nil, err
			}
			return v.(int) + 1, nil
		}),
		Predicate:  model.Signature{intType},
		ActionKind: model.ActionPrimary,
	})

	result, err := d.Call([]any{0})
	require.NoError(t, err)
	assert.Equal(t, 11, result)
}

// =============================================================================
// Ambiguity
// =============================================================================

func TestDispatchAmbiguousPrimariesError(t *testing.T) {
	intType := reflect.TypeOf(0)
	d := NewDispatching("weird", nil, nil)
	d.Rules.Add(model.Rule{
		Body:       model.PlainBody(func(args []any) (any, error) { return "a", nil }),
		Predicate:  model.Signature{intType},
		ActionKind: model.ActionPrimary,
	})
	// Re-register at the identical signature with a distinct body: two
	// Primaries at one predicate are equivalent (Implies(sig,sig) is
	// true both ways, so neither strictly overrides), forcing merge.
	d.Rules.Add(model.Rule{
		Body:       model.PlainBody(func(args []any) (any, error) { return "b", nil }),
		Predicate:  model.Signature{intType},
		ActionKind: model.ActionPrimary,
	})

	_, err := d.Call([]any{1})
	require.Error(t, err)
	var ambiguous *AmbiguousMethodsError
	require.ErrorAs(t, err, &ambiguous)
	assert.Len(t, ambiguous.Actions, 2)
}

// =============================================================================
// Around beats Primary
// =============================================================================

func TestDispatchAroundDominatesPrimary(t *testing.T) {
	intType := reflect.TypeOf(0)
	d := NewDispatching("g", nil, nil)
	d.Rules.Add(model.Rule{
		Body:       model.PlainBody(func(args []any) (any, error) { return "primary", nil }),
		Predicate:  model.Signature{intType},
		ActionKind: model.ActionPrimary,
	})
	d.Rules.Add(model.Rule{
		Body: model.ChainableBody(func(next model.NextMethod, args []any) (any, error) {
			return "around", nil
		}),
		Predicate:  model.Signature{intType},
		ActionKind: model.ActionAround,
	})

	result, err := d.Call([]any{1})
	require.NoError(t, err)
	assert.Equal(t, "around", result)
}

// =============================================================================
// Before/After ordering
// =============================================================================

func TestDispatchBeforeAfterOrdering(t *testing.T) {
	intType := reflect.TypeOf(0)
	var trace []string

	d := NewDispatching("h", nil, nil)
	d.Rules.Add(model.Rule{
		Body:       model.PlainBody(func(args []any) (any, error) { return "P", nil }),
		Predicate:  model.Signature{intType},
		ActionKind: model.ActionPrimary,
	})
	d.Rules.Add(model.Rule{
		Body: model.PlainBody(func(args []any) (any, error) {
			trace = append(trace, "B1")
			return nil, nil
		}),
		Predicate:  model.Signature{intType},
		ActionKind: model.ActionBefore,
	})
	d.Rules.Add(model.Rule{
		Body: model.PlainBody(func(args []any) (any, error) {
			trace = append(trace, "B2")
			return nil, nil
		}),
		Predicate:  model.Signature{intType},
		ActionKind: model.ActionBefore,
	})
	d.Rules.Add(model.Rule{
		Body: model.PlainBody(func(args []any) (any, error) {
			trace = append(trace, "A")
			return nil, nil
		}),
		Predicate:  model.Signature{intType},
		ActionKind: model.ActionAfter,
	})

	result, err := d.Call([]any{1})
	require.NoError(t, err)
	assert.Equal(t, "P", result)
	assert.Equal(t, []string{"B1", "B2", "A"}, trace)
}

// =============================================================================
// Removal triggers full reset
// =============================================================================

func TestRemovalForcesFullReset(t *testing.T) {
	intType := reflect.TypeOf(0)
	d := NewDispatching("k", nil, nil)
	h := d.Rules.Add(model.Rule{
		Body:       model.PlainBody(func(args []any) (any, error) { return "specific", nil }),
		Predicate:  model.Signature{intType},
		ActionKind: model.ActionPrimary,
	})
	d.Rules.Add(model.Rule{
		Body:       model.PlainBody(func(args []any) (any, error) { return "default", nil }),
		Predicate:  model.Signature{},
		ActionKind: model.ActionPrimary,
	})

	result, err := d.Call([]any{1})
	require.NoError(t, err)
	assert.Equal(t, "specific", result)

	d.Rules.Remove(h)

	result, err = d.Call([]any{1})
	require.NoError(t, err)
	assert.Equal(t, "default", result)
}

// =============================================================================
// No applicable method
// =============================================================================

func TestDispatchNoApplicableMethod(t *testing.T) {
	d := NewDispatching("abstract", nil, nil)
	_, err := d.Call([]any{1})
	require.Error(t, err)
	var noMethod *NoApplicableMethodsError
	require.ErrorAs(t, err, &noMethod)
}

// =============================================================================
// Implies invariants
// =============================================================================

func TestImpliesReflexive(t *testing.T) {
	intType := reflect.TypeOf(0)
	sig := model.Signature{intType}
	assert.True(t, Implies(sig, sig))
}

func TestImpliesEmptySignatureImpliedByAll(t *testing.T) {
	intType := reflect.TypeOf(0)
	assert.True(t, Implies(model.Signature{intType}, model.Signature{}))
	assert.False(t, Implies(model.Signature{}, model.Signature{intType}))
}

func TestImpliesTupleElementwise(t *testing.T) {
	intType := reflect.TypeOf(0)
	strType := reflect.TypeOf("")
	assert.False(t, Implies(model.Signature{intType}, model.Signature{strType}))
}

func TestAlwaysOverridesInvariant(t *testing.T) {
	type markerA struct{}
	type markerB struct{}
	aType := reflect.TypeOf(markerA{})
	bType := reflect.TypeOf(markerB{})
	AlwaysOverrides(aType, bType)
	assert.True(t, Implies(markerA{}, markerB{}))
	assert.False(t, Implies(markerB{}, markerA{}))
}

func TestMergeByDefaultInvariant(t *testing.T) {
	type markerC struct{}
	cType := reflect.TypeOf(markerC{})
	MergeByDefault(cType)
	assert.False(t, Implies(markerC{}, markerC{}))
}

// =============================================================================
// Dominance (C7)
// =============================================================================

func TestDominantMaximalAntichain(t *testing.T) {
	intType := reflect.TypeOf(0)
	cases := []SigCase{
		{Signature: model.Signature{}, Value: "general"},
		{Signature: model.Signature{intType}, Value: "specific"},
	}
	winners := Dominant(cases)
	require.Len(t, winners, 1)
	assert.Equal(t, "specific", winners[0].Value)
}

func TestDominantMutualImpliesKeepsEarlier(t *testing.T) {
	cases := []SigCase{
		{Signature: model.Signature{}, Value: "first"},
		{Signature: model.Signature{}, Value: "second"},
	}
	winners := Dominant(cases)
	require.Len(t, winners, 1)
	assert.Equal(t, "first", winners[0].Value)
}

func TestDominantIncomparablePreservesOrder(t *testing.T) {
	intType := reflect.TypeOf(0)
	strType := reflect.TypeOf("")
	cases := []SigCase{
		{Signature: model.Signature{intType}, Value: "int"},
		{Signature: model.Signature{strType}, Value: "str"},
	}
	winners := Dominant(cases)
	require.Len(t, winners, 2)
	assert.Equal(t, "int", winners[0].Value)
	assert.Equal(t, "str", winners[1].Value)
}

// =============================================================================
// RuleSet
// =============================================================================

func TestRuleSetPreservesInsertionOrder(t *testing.T) {
	rs := NewRuleSet()
	rs.Add(model.Rule{Predicate: model.Signature{}, ActionKind: model.ActionPrimary})
	rs.Add(model.Rule{Predicate: model.Signature{}, ActionKind: model.ActionPrimary})
	defs := rs.AllDefs()
	require.Len(t, defs, 2)
	assert.Less(t, defs[0].Sequence, defs[1].Sequence)
}

func TestRuleSetRemoveNotifiesListener(t *testing.T) {
	rs := NewRuleSet()
	var gotAdded, gotRemoved int
	rs.Subscribe(func(added, removed []model.ActionDef) {
		gotAdded += len(added)
		gotRemoved += len(removed)
	})
	h := rs.Add(model.Rule{Predicate: model.Signature{}, ActionKind: model.ActionPrimary})
	rs.Remove(h)
	assert.Equal(t, 1, gotAdded)
	assert.Equal(t, 1, gotRemoved)
	assert.Empty(t, rs.AllDefs())
}

// =============================================================================
// Intersect / Disjuncts
// =============================================================================

func TestIntersectShortCircuitsOnImplies(t *testing.T) {
	intType := reflect.TypeOf(0)
	specific := model.Signature{intType}
	general := model.Signature{}
	assert.Equal(t, specific, Intersect(specific, general))
	assert.Equal(t, specific, Intersect(general, specific))
}

func TestIntersectDefaultsToConjunction(t *testing.T) {
	intType := reflect.TypeOf(0)
	strType := reflect.TypeOf("")
	a := model.Signature{intType}
	b := model.Signature{strType}
	got := Intersect(a, b)
	conj, ok := got.(model.Conjunction)
	require.True(t, ok)
	assert.Equal(t, model.Conjunction{a, b}, conj)
}

func TestDisjunctsDefaultsToSingleton(t *testing.T) {
	assert.Equal(t, []any{42}, Disjuncts(42))
}

func TestDisjunctsBool(t *testing.T) {
	assert.Equal(t, []any{true}, Disjuncts(true))
	assert.Empty(t, Disjuncts(false))
}

func TestDisjunctsFlattensDisjunction(t *testing.T) {
	d := model.Disjunction{1, model.Disjunction{2, 3}}
	assert.Equal(t, []any{1, 2, 3}, Disjuncts(d))
}
