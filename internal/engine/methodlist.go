package engine

import (
	"sort"
	"unsafe"

	"github.com/cerevo/PEAK-Rules/internal/model"
)

// methodItem is one entry of a Before/After method list: the signature it
// was registered at (used only for sort-by-dominance), its insertion
// precedence, and its body.
type methodItem struct {
	Signature  model.Signature
	Precedence uint64
	Body       model.PlainBody
}

// bodyIdentity returns the address of fn's closure value, so two bodies
// built from the same function literal (every gf.Plain wrapper, for one)
// stay distinct, while one body shared by several disjunct defs is seen
// as the same body.
func bodyIdentity(fn model.PlainBody) uintptr {
	return *(*uintptr)(unsafe.Pointer(&fn))
}

// sortedMethodItems orders items by ascending precedence, then repeatedly
// applies the dominance resolver to the remainder so the most specific
// survivors of each pass are emitted before the next pass runs, per
// spec.md §4.2. Bodies already emitted are skipped on later passes.
func sortedMethodItems(items []methodItem) []methodItem {
	rest := make([]methodItem, len(items))
	copy(rest, items)
	sort.SliceStable(rest, func(i, j int) bool { return rest[i].Precedence < rest[j].Precedence })

	out := make([]methodItem, 0, len(items))
	seen := map[uintptr]bool{}

	for len(rest) > 0 {
		cases := make([]SigCase, len(rest))
		for i, it := range rest {
			cases[i] = SigCase{Signature: it.Signature, Value: i}
		}
		winners := Dominant(cases)

		winnerIdx := map[int]bool{}
		for _, w := range winners {
			winnerIdx[w.Value.(int)] = true
		}

		var next []methodItem
		for i, it := range rest {
			if winnerIdx[i] {
				key := bodyIdentity(it.Body)
				if !seen[key] {
					seen[key] = true
					out = append(out, it)
				}
			} else {
				next = append(next, it)
			}
		}
		rest = next
	}
	return out
}

// Before is a list of methods invoked, in sorted-dominant order, ahead of
// the primary method chain; their return values are discarded.
type Before struct {
	Items  []methodItem
	Tail   Action
	sorted []methodItem
}

func NewBefore(body model.Body, sig model.Signature, precedence uint64) *Before {
	plain, ok := body.(model.PlainBody)
	if !ok {
		plain = func(args []any) (any, error) {
			return nil, errUnsupportedListBody(sig)
		}
	}
	return &Before{Items: []methodItem{{Signature: sig, Precedence: precedence, Body: plain}}}
}

func (b *Before) order() []methodItem {
	if b.sorted == nil {
		b.sorted = sortedMethodItems(b.Items)
	}
	return b.sorted
}

func (b *Before) Call(args []any) (any, error) {
	for _, it := range b.order() {
		if _, err := it.Body(args); err != nil {
			return nil, err
		}
	}
	tail := b.Tail
	if tail == nil {
		tail = defaultNoApplicableMethods
	}
	return tail.Call(args)
}

func (b *Before) Override(other Action) Action {
	combined, err := Combine(b.Tail, other)
	if err != nil {
		combined = other
	}
	return &Before{Items: b.Items, Tail: combined}
}

func (b *Before) Merge(other Action) (Action, error) {
	ob, ok := other.(*Before)
	if !ok {
		return nil, errIncompatibleMergeKinds(b, other)
	}
	combinedTail, err := Combine(b.Tail, ob.Tail)
	if err != nil {
		return nil, err
	}
	return &Before{Items: append(append([]methodItem{}, b.Items...), ob.Items...), Tail: combinedTail}, nil
}

// After is a list of methods invoked, in reverse sorted-dominant order,
// after the primary chain has produced its return value; the chain's
// return value is what After itself returns.
type After struct {
	Items  []methodItem
	Tail   Action
	sorted []methodItem
}

func NewAfter(body model.Body, sig model.Signature, precedence uint64) *After {
	plain, ok := body.(model.PlainBody)
	if !ok {
		plain = func(args []any) (any, error) {
			return nil, errUnsupportedListBody(sig)
		}
	}
	return &After{Items: []methodItem{{Signature: sig, Precedence: precedence, Body: plain}}}
}

func (a *After) order() []methodItem {
	if a.sorted == nil {
		base := sortedMethodItems(a.Items)
		rev := make([]methodItem, len(base))
		for i, it := range base {
			rev[len(base)-1-i] = it
		}
		a.sorted = rev
	}
	return a.sorted
}

func (a *After) Call(args []any) (any, error) {
	tail := a.Tail
	if tail == nil {
		tail = defaultNoApplicableMethods
	}
	result, err := tail.Call(args)
	if err != nil {
		return nil, err
	}
	for _, it := range a.order() {
		if _, err := it.Body(args); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (a *After) Override(other Action) Action {
	combined, err := Combine(a.Tail, other)
	if err != nil {
		combined = other
	}
	return &After{Items: a.Items, Tail: combined}
}

func (a *After) Merge(other Action) (Action, error) {
	oa, ok := other.(*After)
	if !ok {
		return nil, errIncompatibleMergeKinds(a, other)
	}
	combinedTail, err := Combine(a.Tail, oa.Tail)
	if err != nil {
		return nil, err
	}
	return &After{Items: append(append([]methodItem{}, a.Items...), oa.Items...), Tail: combinedTail}, nil
}
