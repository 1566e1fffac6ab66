package engine

import (
	"sync"

	"github.com/cerevo/PEAK-Rules/internal/model"
)

// Listener is notified whenever a RuleSet's membership changes.
// actions_changed(added, removed) in spec.md §3 terms: added/removed are
// the ActionDefs a Dispatching must fold into (or purge from) its
// registry.
type Listener func(added, removed []model.ActionDef)

// RuleHandle identifies a registered rule for later removal. It is opaque
// outside this package; pkg/gf returns it from When/Before/After/Around as
// the value a caller holds onto to later retract a rule.
type RuleHandle uint64

type ruleEntry struct {
	handle RuleHandle
	defs   []model.ActionDef
}

// RuleSet is C3: the observable, sequence-ordered collection of rules
// registered against one generic function. Mirrors peak/rules/core.py's
// Rule/RuleSet pair; the expansion of Disjunction predicates into one
// ActionDef per alternative is predicateSignatures (SPEC_FULL.md §3).
type RuleSet struct {
	mu        sync.Mutex
	entries   []ruleEntry
	listeners []Listener
	seq       uint64
	nextID    RuleHandle
}

func NewRuleSet() *RuleSet {
	return &RuleSet{}
}

func (rs *RuleSet) nextSeq() uint64 {
	rs.seq++
	return rs.seq
}

// predicateSignatures flattens a predicate into its leaf alternatives. A
// Signature or a trivial bool is already a leaf; a Disjunction expands
// each element recursively, matching the source's depth-first flatten.
func predicateSignatures(pred model.Predicate) []model.Predicate {
	switch p := pred.(type) {
	case model.Disjunction:
		var out []model.Predicate
		for _, alt := range p {
			out = append(out, predicateSignatures(alt)...)
		}
		return out
	default:
		return []model.Predicate{pred}
	}
}

// Add registers rule, expanding its Predicate into one ActionDef per
// disjunct (predicateSignatures), and notifies listeners with the newly
// added defs. It returns a RuleHandle the caller can later pass to Remove.
func (rs *RuleSet) Add(rule model.Rule) RuleHandle {
	rs.mu.Lock()
	rs.nextID++
	handle := rs.nextID

	leaves := predicateSignatures(rule.Predicate)
	defs := make([]model.ActionDef, 0, len(leaves))
	for _, leaf := range leaves {
		seq := rs.nextSeq()
		sig, _ := leaf.(model.Signature)
		defs = append(defs, model.ActionDef{ActionKind: rule.ActionKind, Body: rule.Body, Predicate: leaf, Signature: sig, Sequence: seq})
	}
	rs.entries = append(rs.entries, ruleEntry{handle: handle, defs: defs})
	listeners := append([]Listener{}, rs.listeners...)
	rs.mu.Unlock()

	for _, l := range listeners {
		l(defs, nil)
	}
	return handle
}

// Remove retracts the rule identified by handle, notifying listeners with
// its defs as removed. A removal always triggers full_reset downstream
// (spec.md §3's monotonicity invariant), since the cache may contain
// entries this rule contributed to.
func (rs *RuleSet) Remove(handle RuleHandle) {
	rs.mu.Lock()
	var removed []model.ActionDef
	out := rs.entries[:0]
	for _, e := range rs.entries {
		if e.handle == handle {
			removed = append(removed, e.defs...)
			continue
		}
		out = append(out, e)
	}
	rs.entries = out
	listeners := append([]Listener{}, rs.listeners...)
	rs.mu.Unlock()

	if len(removed) == 0 {
		return
	}
	for _, l := range listeners {
		l(nil, removed)
	}
}

// AllDefs returns every currently-registered ActionDef in rule-insertion
// (sequence) order, for full_reset replay.
func (rs *RuleSet) AllDefs() []model.ActionDef {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	var out []model.ActionDef
	for _, e := range rs.entries {
		out = append(out, e.defs...)
	}
	return out
}

// Subscribe registers l to be called on every future Add/Remove. It does
// not replay existing rules — callers that need the current state should
// call AllDefs first. NewDispatching subscribes before any rule is added,
// so it needs no replay.
func (rs *RuleSet) Subscribe(l Listener) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.listeners = append(rs.listeners, l)
}
