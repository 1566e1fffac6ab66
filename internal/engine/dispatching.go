package engine

import (
	"github.com/cerevo/PEAK-Rules/internal/model"
	"go.uber.org/zap"
)

// Dispatching is the C5 aspect record attached to every generic function:
// its RuleSet, the Engine that answers dispatch for it, and the name used
// in trace output. pkg/gf's decorator surface (C6) looks this record up
// (or creates it) via the aspect store before adding a rule.
type Dispatching struct {
	Name   string
	Engine *Engine
	Rules  *RuleSet
}

// NewDispatching wires a fresh RuleSet to a fresh Engine: the RuleSet's
// actions_changed notifications drive the Engine's registry and cache, as
// spec.md §4.4 describes.
func NewDispatching(name string, defaultAction Action, logger *zap.Logger) *Dispatching {
	d := &Dispatching{
		Name:   name,
		Engine: NewEngine(name, defaultAction, logger),
		Rules:  NewRuleSet(),
	}
	d.Rules.Subscribe(d.actionsChanged)
	return d
}

// buildAction turns a registered ActionDef into the Action its kind and
// body call for — the actiontype(body, sig, seq) constructor spec.md
// §4.4 names.
func buildAction(def model.ActionDef) Action {
	switch def.ActionKind {
	case model.ActionAround:
		return NewAround(def.Body, def.Signature, def.Sequence)
	case model.ActionBefore:
		return NewBefore(def.Body, def.Signature, def.Sequence)
	case model.ActionAfter:
		return NewAfter(def.Body, def.Signature, def.Sequence)
	default:
		return NewPrimary(def.Body, def.Signature, def.Sequence)
	}
}

func defPredicate(def model.ActionDef) model.Predicate {
	if def.Predicate != nil {
		return def.Predicate
	}
	return def.Signature
}

// actionsChanged implements spec.md §4.4's actions_changed(added, removed):
// any removal forces a full_reset replay of the whole rule set (the cache
// is monotone and cannot selectively un-learn a removed contribution);
// pure additions fold in directly and then mark the engine changed.
//
// Combine can return a structural error only when two actions of
// genuinely incompatible kinds land at the same signature — a programmer
// error at registration time, not a dispatch-time condition, so it
// panics here rather than threading an error through the RuleSet
// listener interface.
func (d *Dispatching) actionsChanged(added, removed []model.ActionDef) {
	if len(removed) > 0 {
		if err := d.Engine.FullReset(d.Rules.AllDefs(), buildAction); err != nil {
			panic(err)
		}
		return
	}
	for _, def := range added {
		if err := d.Engine.AddMethod(defPredicate(def), buildAction(def)); err != nil {
			panic(err)
		}
	}
	d.Engine.Changed()
}

// Call dispatches args through the engine's trampoline.
func (d *Dispatching) Call(args []any) (any, error) {
	return d.Engine.Dispatch(args)
}
