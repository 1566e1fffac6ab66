// Package config loads axiom sets: declarative always_overrides/
// merge_by_default declarations a host program can ship as data instead
// of Go calls. An axiom set has no class-hierarchy declarations; classes
// are still declared in Go via internal/classreg. It never replaces the
// programmatic API in
// pkg/gf — Apply is sugar that makes the same calls on the caller's
// behalf.
package config

import (
	"fmt"
	"io"
	"reflect"

	"gopkg.in/yaml.v3"
)

// OverrideRule is one always_overrides(A, B) declaration, named by the
// action-kind names a host program registered via RegisterKind.
type OverrideRule struct {
	A string `yaml:"a"`
	B string `yaml:"b"`
}

// AxiomSet is the parsed shape of an axiom-set YAML document:
//
//	alwaysOverrides:
//	  - a: around
//	    b: primary
//	mergeByDefault:
//	  - before
//	  - after
type AxiomSet struct {
	AlwaysOverrides []OverrideRule `yaml:"alwaysOverrides"`
	MergeByDefault  []string       `yaml:"mergeByDefault"`
}

// Load decodes an axiom set from r.
func Load(r io.Reader) (*AxiomSet, error) {
	var set AxiomSet
	if err := yaml.NewDecoder(r).Decode(&set); err != nil {
		return nil, fmt.Errorf("config: decode axiom set: %w", err)
	}
	return &set, nil
}

// Resolver maps an action-kind name to its reflect.Type, as a host program
// registers via pkg/gf's kind registry.
type Resolver func(name string) (reflect.Type, bool)

// Apply installs every rule in the set by calling alwaysOverrides and
// mergeByDefault with the resolved reflect.Type of each named kind.
// Unresolvable names are a configuration error, not a panic: the axiom set
// is untrusted input, unlike a Go-source always_overrides call.
func (s *AxiomSet) Apply(resolve Resolver, alwaysOverrides func(a, b reflect.Type), mergeByDefault func(t reflect.Type)) error {
	for _, rule := range s.AlwaysOverrides {
		a, ok := resolve(rule.A)
		if !ok {
			return fmt.Errorf("config: unknown action kind %q in alwaysOverrides", rule.A)
		}
		b, ok := resolve(rule.B)
		if !ok {
			return fmt.Errorf("config: unknown action kind %q in alwaysOverrides", rule.B)
		}
		alwaysOverrides(a, b)
	}
	for _, name := range s.MergeByDefault {
		t, ok := resolve(name)
		if !ok {
			return fmt.Errorf("config: unknown action kind %q in mergeByDefault", name)
		}
		mergeByDefault(t)
	}
	return nil
}
