package main

import (
	"fmt"
	"reflect"

	"github.com/cerevo/PEAK-Rules/pkg/gf"
)

// buildDemo assembles a small generic function, "describe", exercising
// every method-combination kind: a default Primary, a more specific
// Primary, a chainable Primary, an Around, and a Before/After pair. It
// backs both the `demo` and `registry`/`repl` subcommands so their output
// is comparable.
func buildDemo() *gf.Function {
	intType := reflect.TypeOf(0)
	strType := reflect.TypeOf("")

	f := gf.New("describe", func(args ...any) (any, error) {
		return "something", nil
	})

	f.When(gf.Sig(strType), gf.Plain(func(args ...any) (any, error) {
		return fmt.Sprintf("a string: %q", args[0]), nil
	}))

	f.When(gf.Sig(intType), gf.Chain(func(next gf.NextMethod, args ...any) (any, error) {
		base, err := next(args...)
		if err != nil {
			return nil, err
		}
		return fmt.Sprintf("an int (%v), which is %v", args[0], base), nil
	}))

	f.Before(gf.Sig(intType), gf.Plain(func(args ...any) (any, error) {
		fmt.Printf("  [before] about to describe %v\n", args[0])
		return nil, nil
	}))

	f.After(gf.Sig(intType), gf.Plain(func(args ...any) (any, error) {
		fmt.Printf("  [after] finished describing %v\n", args[0])
		return nil, nil
	}))

	f.Around(gf.Sig(intType), gf.Chain(func(next gf.NextMethod, args ...any) (any, error) {
		fmt.Printf("  [around] intercepting %v\n", args[0])
		return next(args...)
	}))

	return f
}

// demoInputs are the sample calls `demo` walks through.
var demoInputs = []any{42, "hello", 3.14}
