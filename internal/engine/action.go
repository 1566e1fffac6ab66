package engine

import (
	"fmt"

	"github.com/cerevo/PEAK-Rules/internal/model"
)

// Action is the runtime value stored in an Engine's registry and dispatch
// cache: a callable plus the two composition operators the algebra in
// spec.md §4.2 is built from.
type Action interface {
	// Call invokes the action against the dispatched arguments.
	Call(args []any) (any, error)
	// Override returns a new action representing self taking precedence
	// over other, attaching other (or folding it into self's tail).
	Override(other Action) Action
	// Merge returns the combination of two co-dominant (neither implying
	// the other, or mutually implying) actions of compatible kinds.
	Merge(other Action) (Action, error)
}

// chainAction is the shared shape of Primary and Around: a body, its
// originating signature, an insertion-sequence precedence, and an optional
// tail (the next, less-specific action in the override chain).
type chainAction struct {
	Body       model.Body
	Signature  model.Signature
	Precedence uint64
	Tail       Action
}

func (c *chainAction) canTail() bool {
	_, ok := c.Body.(model.ChainableBody)
	return ok
}

func (c *chainAction) call(args []any) (any, error) {
	switch body := c.Body.(type) {
	case model.ChainableBody:
		tail := c.Tail
		if tail == nil {
			tail = defaultNoApplicableMethods
		}
		next := model.NextMethod(func(a []any) (any, error) { return tail.Call(a) })
		return body(next, args)
	case model.PlainBody:
		return body(args)
	default:
		return nil, fmt.Errorf("gf: action body has unsupported type %T", c.Body)
	}
}

// Primary is a regular method: the default action kind, invoked unless an
// Around exists. Chainable Primaries compose via override into a
// next-method chain; non-chainable ones simply replace lower-precedence
// Primaries at the same signature.
type Primary struct{ chainAction }

func NewPrimary(body model.Body, sig model.Signature, precedence uint64) *Primary {
	return &Primary{chainAction{Body: body, Signature: sig, Precedence: precedence}}
}

func (p *Primary) Call(args []any) (any, error) { return p.call(args) }

func (p *Primary) Override(other Action) Action {
	if !p.canTail() {
		return p
	}
	combined, err := Combine(p.Tail, other)
	if err != nil {
		combined = other
	}
	return &Primary{chainAction{Body: p.Body, Signature: p.Signature, Precedence: p.Precedence, Tail: combined}}
}

func (p *Primary) Merge(other Action) (Action, error) {
	if _, ok := other.(*Primary); !ok {
		return nil, errIncompatibleMergeKinds(p, other)
	}
	return NewAmbiguousMethods(p, other), nil
}

// Around is shaped exactly like Primary but strictly dominates
// Primary/Before/After (see AlwaysOverrides declarations in combine.go).
type Around struct{ chainAction }

func NewAround(body model.Body, sig model.Signature, precedence uint64) *Around {
	return &Around{chainAction{Body: body, Signature: sig, Precedence: precedence}}
}

func (a *Around) Call(args []any) (any, error) { return a.call(args) }

func (a *Around) Override(other Action) Action {
	if !a.canTail() {
		return a
	}
	combined, err := Combine(a.Tail, other)
	if err != nil {
		combined = other
	}
	return &Around{chainAction{Body: a.Body, Signature: a.Signature, Precedence: a.Precedence, Tail: combined}}
}

func (a *Around) Merge(other Action) (Action, error) {
	if _, ok := other.(*Around); !ok {
		return nil, errIncompatibleMergeKinds(a, other)
	}
	return NewAmbiguousMethods(a, other), nil
}

// NoApplicableMethods is the error action installed as a RuleSet's default:
// it is what the dispatch fold yields when no registered signature implies
// the call's argument classes.
type NoApplicableMethods struct{}

var defaultNoApplicableMethods Action = &NoApplicableMethods{}

func (n *NoApplicableMethods) Call(args []any) (any, error) {
	return nil, &NoApplicableMethodsError{Args: args}
}

func (n *NoApplicableMethods) Override(other Action) Action { return other }

func (n *NoApplicableMethods) Merge(other Action) (Action, error) {
	return NewAmbiguousMethods(n, other), nil
}

// AmbiguousMethods is the error action produced when two incomparable
// actions co-dominate; it absorbs further peers by flattening.
type AmbiguousMethods struct {
	Methods []Action
}

// NewAmbiguousMethods flattens any nested AmbiguousMethods among items.
func NewAmbiguousMethods(items ...Action) *AmbiguousMethods {
	flat := make([]Action, 0, len(items))
	for _, it := range items {
		if am, ok := it.(*AmbiguousMethods); ok {
			flat = append(flat, am.Methods...)
		} else {
			flat = append(flat, it)
		}
	}
	return &AmbiguousMethods{Methods: flat}
}

func (a *AmbiguousMethods) Call(args []any) (any, error) {
	return nil, &AmbiguousMethodsError{Actions: a.Methods}
}

func (a *AmbiguousMethods) Override(other Action) Action { return a }

func (a *AmbiguousMethods) Merge(other Action) (Action, error) {
	return NewAmbiguousMethods(append(append([]Action{}, a.Methods...), other)...), nil
}
