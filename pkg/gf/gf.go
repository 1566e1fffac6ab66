// Package gf provides a public API for building generic functions —
// ordinary Go functions whose behavior is selected and composed at call
// time from rules attached to argument classes, rather than fixed at
// definition. See internal/engine for the dispatch algebra this wraps.
package gf

import (
	"io"
	"reflect"

	"github.com/cerevo/PEAK-Rules/internal/aspect"
	"github.com/cerevo/PEAK-Rules/internal/engine"
	"github.com/cerevo/PEAK-Rules/internal/model"
	"go.uber.org/zap"
)

// dispatchingAspectClass is the aspect.Store key-class under which every
// generic function's Dispatching record (C5) is attached. Go has no
// per-object dict to hang state off like peak.rules.core's aspects_for
// does on a Python function object, so the function's registered name
// stands in for "function identity" (spec.md §4.5/§9): two calls to New
// or Abstract with the same name resolve to the same Dispatching, and the
// first caller's construction wins races exactly as the aspect store
// promises.
var dispatchingAspectClass = reflect.TypeOf((*engine.Dispatching)(nil))

// NextMethod is the continuation a chainable rule body may call to reach
// the next, less-specific rule in the override chain.
type NextMethod = model.NextMethod

// PlainFunc is a rule body with no next-method continuation.
type PlainFunc func(args ...any) (any, error)

// ChainFunc is a rule body that receives a next-method continuation as
// its first parameter. Go has no parameter-name reflection, so whether a
// body is chainable is decided by which of Plain or Chain wraps it, not
// by inspecting the function itself.
type ChainFunc func(next NextMethod, args ...any) (any, error)

// Plain wraps fn as a non-chainable rule body.
func Plain(fn PlainFunc) model.Body {
	return model.PlainBody(func(args []any) (any, error) { return fn(args...) })
}

// Chain wraps fn as a chainable rule body.
func Chain(fn ChainFunc) model.Body {
	return model.ChainableBody(func(next NextMethod, args []any) (any, error) { return fn(next, args...) })
}

// Sig builds a Signature from a sequence of per-argument classes. Classes
// are ordinarily reflect.Type values (reflect.TypeOf((*T)(nil)).Elem()) or
// *classreg.Class / *classreg.LegacyClass instances.
func Sig(classes ...any) model.Signature { return model.Signature(classes) }

// RuleHandle identifies a registered rule for later removal via Function.Remove.
type RuleHandle = engine.RuleHandle

// Function is a generic function: a dispatch target that rules are
// attached to, and that can be called once rules are registered. It
// corresponds to the decorator-captured target in spec.md §4.6 — the
// value `when`, `before`, `after`, and `around` take as their first
// argument.
type Function struct {
	name        string
	dispatching *engine.Dispatching
}

// New declares a generic function whose pre-decoration implementation is
// body. rules_for(target) in spec.md §4.6 seeds the rule set with a clone
// of this original implementation as the lowest-precedence default rule
// (the empty Signature, which every call's argument tuple implies); New performs that
// seeding up front instead of lazily, since Go has no runtime decorator
// capture to hook into.
func New(name string, body PlainFunc) *Function {
	d := aspect.Default.GetOrCreate(dispatchingAspectClass, name, func() any {
		d := engine.NewDispatching(name, nil, zap.NewNop())
		d.Rules.Add(model.Rule{Body: Plain(body), Predicate: model.Signature{}, ActionKind: model.ActionPrimary})
		return d
	}).(*engine.Dispatching)
	return &Function{name: name, dispatching: d}
}

// Abstract declares a generic function with no default implementation:
// calls that no rule matches raise NoApplicableMethodsError.
func Abstract(name string) *Function {
	d := aspect.Default.GetOrCreate(dispatchingAspectClass, name, func() any {
		return engine.NewDispatching(name, nil, zap.NewNop())
	}).(*engine.Dispatching)
	return &Function{name: name, dispatching: d}
}

// WithLogger attaches a zap logger for dispatch tracing (cache misses,
// full resets, ambiguity). The default is a no-op logger.
func (f *Function) WithLogger(logger *zap.Logger) *Function {
	f.dispatching.Engine.SetLogger(logger)
	return f
}

// Name returns the function's registered name.
func (f *Function) Name() string { return f.name }

// Call dispatches args through the registry, folding applicable rules
// under the method-combination algebra and invoking the result.
func (f *Function) Call(args ...any) (any, error) {
	return f.dispatching.Call(args)
}

// When adds a Primary rule: the ordinary method-combination kind,
// selected unless an Around exists, composable via a next-method chain
// when body is Chain-wrapped.
func (f *Function) When(sig model.Signature, body model.Body) RuleHandle {
	return f.dispatching.Rules.Add(model.Rule{Body: body, Predicate: sig, ActionKind: model.ActionPrimary})
}

// Around adds an Around rule: it strictly dominates Primary, Before, and
// After at an overlapping signature, and may itself chain to the next
// Around or, eventually, the Primary chain.
func (f *Function) Around(sig model.Signature, body model.Body) RuleHandle {
	return f.dispatching.Rules.Add(model.Rule{Body: body, Predicate: sig, ActionKind: model.ActionAround})
}

// Before adds a Before rule: body runs, for its side effects, ahead of
// the Primary chain in dominance order. body must be Plain — Before/After
// bodies have no next-method continuation.
func (f *Function) Before(sig model.Signature, body model.Body) RuleHandle {
	return f.dispatching.Rules.Add(model.Rule{Body: body, Predicate: sig, ActionKind: model.ActionBefore})
}

// After adds an After rule: body runs, for its side effects, after the
// Primary chain has produced its return value, in reverse dominance
// order. body must be Plain.
func (f *Function) After(sig model.Signature, body model.Body) RuleHandle {
	return f.dispatching.Rules.Add(model.Rule{Body: body, Predicate: sig, ActionKind: model.ActionAfter})
}

// Remove retracts a previously-registered rule. This always forces a
// full registry rebuild and cache reset before Remove returns (spec.md
// §3's monotonicity invariant), since the cache cannot selectively
// un-learn a contribution.
func (f *Function) Remove(h RuleHandle) {
	f.dispatching.Rules.Remove(h)
}

// RulesFor exposes the underlying RuleSet for iteration or direct Rule
// construction, matching spec.md §6's `rules_for(fn) → RuleSet` accessor.
func (f *Function) RulesFor() *engine.RuleSet {
	return f.dispatching.Rules
}

// Dump writes a pretty-printed registry and action tree to w, for
// debugging and the gf CLI's `registry` subcommand.
func (f *Function) Dump(w io.Writer) {
	engine.DumpRegistry(w, f.dispatching)
}

// The following re-export internal/engine's open-generic extensibility
// surface (spec.md §6) under the public package, since internal/engine
// cannot itself be imported outside this module.

// Implies reports whether predicate s1 implies s2.
func Implies(s1, s2 any) bool { return engine.Implies(s1, s2) }

// Intersect returns the logical AND of two predicates.
func Intersect(c1, c2 any) any { return engine.Intersect(c1, c2) }

// Disjuncts returns the disjunctive alternatives within a predicate.
func Disjuncts(ob any) []any { return engine.Disjuncts(ob) }

// RegisterImplies extends Implies with a new signature shape: when(Implies,
// (T1, T2))(rule) in spec.md §6's terms.
func RegisterImplies(t1, t2 reflect.Type, rule func(a, b any) bool) {
	engine.RegisterImplies(t1, t2, rule)
}

// AlwaysOverrides declares that every instance of action kind t1 always
// overrides every instance of t2.
func AlwaysOverrides(t1, t2 reflect.Type) { engine.AlwaysOverrides(t1, t2) }

// MergeByDefault declares that two instances of action kind t never
// imply one another, forcing combine() to merge.
func MergeByDefault(t reflect.Type) { engine.MergeByDefault(t) }

// RegisterKind names an action-kind type for internal/config's axiom-set
// YAML to refer to by string.
func RegisterKind(name string, t reflect.Type) { engine.RegisterKind(name, t) }

// ResolveKind looks up a previously-registered action-kind name, including
// the four built-in kinds (primary, around, before, after). It is the
// config.Resolver a host program passes to an AxiomSet's Apply method.
func ResolveKind(name string) (reflect.Type, bool) { return engine.ResolveKind(name) }
