/*
Package gf provides a public API for generic functions: ordinary Go values
whose call behavior is assembled at dispatch time from rules attached to
argument classes, rather than fixed by a single function body.

# Quick Start

Declare a generic function with a default implementation, then attach a
more specific rule:

	greet := gf.New("greet", func(args ...any) (any, error) {
	    return "any", nil
	})
	greet.When(gf.Sig(reflect.TypeOf("")), gf.Plain(func(args ...any) (any, error) {
	    return "str", nil
	}))

	greet.Call(3)     // "any"
	greet.Call("hi")  // "str"

# Chainable Rules

A rule body wrapped with gf.Chain receives a next-method continuation
reaching the next, less-specific rule:

	f := gf.New("f", func(args ...any) (any, error) { return 10, nil })
	f.When(gf.Sig(intType), gf.Chain(func(next gf.NextMethod, args ...any) (any, error) {
	    v, err := next(args...)
	    if err != nil {
	        return nil, err
	    }
	    return v.(int) + 1, nil
	}))
	f.Call(0) // 11

# Before, After, and Around

Before and After rules run for their side effects, in dominance order and
reverse dominance order respectively, around the Primary chain. Around
rules strictly dominate Primary, Before, and After, and may themselves
chain to the next Around or to the Primary chain:

	f.Before(gf.Sig(intType), gf.Plain(logCall))
	f.After(gf.Sig(intType), gf.Plain(logResult))
	f.Around(gf.Sig(intType), gf.Chain(memoize))

# Errors

A call that no rule matches returns a *NoApplicableMethodsError; a call
where two or more rules are mutually incomparable returns an
*AmbiguousMethodsError. Use IsNoApplicableMethods / IsAmbiguousMethods to
test for them.

# Extending the Implication Kernel

implies is itself an open generic function. RegisterImplies adds a rule
for a new pair of signature-element types; AlwaysOverrides and
MergeByDefault declare axioms over action kinds, for host programs that
introduce their own beyond Primary/Around/Before/After.
*/
package gf
