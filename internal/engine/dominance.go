package engine

import "github.com/cerevo/PEAK-Rules/internal/model"

// SigCase pairs a Predicate (ordinarily a Signature, but a trivial bool is
// valid too — see predicateSignatures) with an arbitrary payload (a rule
// body, a method-list item, ...) for the dominance resolver. Value should
// be a pointer or other identity-comparable handle, not a struct
// containing a func field — case identity is tracked by index internally,
// but callers that inspect Dominant's output commonly compare Values by
// pointer.
type SigCase struct {
	Signature model.Predicate
	Value     any
}

// Dominant implements C7: given cases, return the maximal antichain under
// Implies, preserving the original relative order. Mutual-implies pairs
// keep the earlier case (input-order tiebreak); incomparable pairs both
// survive. Single-element input short-circuits to itself.
func Dominant(cases []SigCase) []SigCase {
	if len(cases) <= 1 {
		out := make([]SigCase, len(cases))
		copy(out, cases)
		return out
	}

	// bestIdx tracks the indices (into cases) currently surviving, in
	// discovery order, so case identity never depends on comparing Value.
	bestIdx := []int{0}
	for i := 1; i < len(cases); i++ {
		next := cases[i]
		add := true
		snapshot := append([]int{}, bestIdx...)
		for _, oi := range snapshot {
			old := cases[oi]
			newImpliesOld := Implies(next.Signature, old.Signature)
			oldImpliesNew := Implies(old.Signature, next.Signature)

			if newImpliesOld && !oldImpliesNew {
				bestIdx = removeIdx(bestIdx, oi)
			} else if oldImpliesNew {
				// old strictly dominates, or the two are equivalent and the
				// earlier case wins the tie.
				add = false
				break
			}
		}
		if add {
			bestIdx = append(bestIdx, i)
		}
	}

	out := make([]SigCase, len(bestIdx))
	for i, idx := range bestIdx {
		out[i] = cases[idx]
	}
	return out
}

func removeIdx(indices []int, target int) []int {
	out := make([]int, 0, len(indices))
	for _, i := range indices {
		if i == target {
			continue
		}
		out = append(out, i)
	}
	return out
}
