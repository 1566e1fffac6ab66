package engine

import (
	"fmt"
	"io"
)

// DumpAction pretty-prints an action tree to w: chain (Primary/Around) with
// its tail, method lists with their items and tail, and the two error
// actions. Adapted from the teacher's recursive indent-prefixed AST
// printer; there node kinds were Python syntax forms, here they are
// action-combination shapes.
func DumpAction(w io.Writer, action Action, indent int) {
	prefix := ""
	for i := 0; i < indent; i++ {
		prefix += "  "
	}

	switch a := action.(type) {
	case *Primary:
		fmt.Fprintf(w, "%sPrimary sig=%v seq=%d\n", prefix, a.Signature, a.Precedence)
		if a.Tail != nil {
			fmt.Fprintf(w, "%s  Tail:\n", prefix)
			DumpAction(w, a.Tail, indent+2)
		}
	case *Around:
		fmt.Fprintf(w, "%sAround sig=%v seq=%d\n", prefix, a.Signature, a.Precedence)
		if a.Tail != nil {
			fmt.Fprintf(w, "%s  Tail:\n", prefix)
			DumpAction(w, a.Tail, indent+2)
		}
	case *Before:
		fmt.Fprintf(w, "%sBefore items=%d\n", prefix, len(a.Items))
		for _, it := range a.order() {
			fmt.Fprintf(w, "%s  item sig=%v seq=%d\n", prefix, it.Signature, it.Precedence)
		}
		if a.Tail != nil {
			fmt.Fprintf(w, "%s  Tail:\n", prefix)
			DumpAction(w, a.Tail, indent+2)
		}
	case *After:
		fmt.Fprintf(w, "%sAfter items=%d\n", prefix, len(a.Items))
		for _, it := range a.order() {
			fmt.Fprintf(w, "%s  item sig=%v seq=%d\n", prefix, it.Signature, it.Precedence)
		}
		if a.Tail != nil {
			fmt.Fprintf(w, "%s  Tail:\n", prefix)
			DumpAction(w, a.Tail, indent+2)
		}
	case *AmbiguousMethods:
		fmt.Fprintf(w, "%sAmbiguousMethods (%d)\n", prefix, len(a.Methods))
		for _, m := range a.Methods {
			DumpAction(w, m, indent+1)
		}
	case *NoApplicableMethods:
		fmt.Fprintf(w, "%sNoApplicableMethods\n", prefix)
	default:
		fmt.Fprintf(w, "%s%T\n", prefix, action)
	}
}

// DumpRegistry prints every registered (predicate, action) entry of d's
// engine, in insertion order.
func DumpRegistry(w io.Writer, d *Dispatching) {
	fmt.Fprintf(w, "Dispatching %q\n", d.Name)
	d.Engine.mu.RLock()
	entries := append([]registryEntry{}, d.Engine.registry...)
	d.Engine.mu.RUnlock()
	for _, e := range entries {
		fmt.Fprintf(w, "  predicate=%v\n", e.Predicate)
		DumpAction(w, e.Action, 2)
	}
}
