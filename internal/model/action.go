// Package model holds the plain data types of the rule engine: the shapes
// callers and the engine pass around before any dispatch decision is made.
package model

import "fmt"

// ActionKind tags the method-combination role of a Rule or ActionDef.
// The zero value is ActionPrimary, matching the source's default of
// actiontype=None falling back to the plain Method kind.
type ActionKind int

const (
	ActionPrimary ActionKind = iota
	ActionAround
	ActionBefore
	ActionAfter
)

func (k ActionKind) String() string {
	switch k {
	case ActionPrimary:
		return "primary"
	case ActionAround:
		return "around"
	case ActionBefore:
		return "before"
	case ActionAfter:
		return "after"
	default:
		return fmt.Sprintf("ActionKind(%d)", int(k))
	}
}

// NextMethod is the continuation a chainable body may invoke to reach the
// next, less-specific action in the override chain.
type NextMethod func(args []any) (any, error)

// PlainBody is a rule body with no next-method continuation.
type PlainBody func(args []any) (any, error)

// ChainableBody is a rule body whose first formal is the "next-method"
// sentinel in the source language. Go has no parameter-name reflection, so
// chainability is a property of which constructor registered the body
// rather than something inferred from its signature; see DESIGN.md.
type ChainableBody func(next NextMethod, args []any) (any, error)

// Body is either a PlainBody or a ChainableBody. It exists only so Rule can
// hold "some callable" without committing to which shape at construction.
type Body any

// Predicate is an opaque matching condition. The canonical form is a
// Signature; Disjunction and bool are the other predicate shapes the core
// understands out of the box, and the set is open via the disjuncts()
// generic function (see engine.Disjuncts).
type Predicate any

// Class identifies the type of a dispatched argument. The canonical forms
// are *classreg.Class, *classreg.LegacyClass, and reflect.Type (used
// directly for built-in Go kinds); the implication kernel is itself
// extensible to other Class representations.
type Class any

// Signature is the canonical Predicate form: an ordered sequence of
// per-argument classes. Every Signature implies the empty Signature, which
// therefore matches every call.
type Signature []Class

// Disjunction is a Predicate that expands to one ActionDef per alternative.
type Disjunction []Predicate

// Conjunction is the default shape Intersect produces when neither
// predicate implies the other: a logical AND with no further structure
// the core understands, held only for re-presentation by a collaborator.
type Conjunction []Predicate

// Rule is the caller-facing (body, predicate, actiontype) triple recorded
// by a registration call before it is expanded into ActionDefs.
type Rule struct {
	Body       Body
	Predicate  Predicate
	ActionKind ActionKind
}

// ActionDef is one expansion of a Rule at a single predicate leaf, tagged
// with the insertion-order Sequence used as the last-resort dispatch
// tiebreak. Predicate is the leaf as registered (ordinarily a Signature,
// occasionally a trivial bool); Signature mirrors it when the leaf is in
// fact a Signature, for callers that only deal in the common case.
type ActionDef struct {
	ActionKind ActionKind
	Body       Body
	Predicate  Predicate
	Signature  Signature
	Sequence   uint64
}
