// Package classreg models the two class hierarchies the implication kernel
// must reason about: an ordinary parent-linked "new-style" hierarchy, and a
// "legacy" hierarchy kept only for the asymmetric implies() exception
// spec.md §4.1 calls out (grounded on peak/rules/core.py's
// classic_implies_new, lines 349-358).
package classreg

// Class is a node in the new-style class hierarchy. Most host values are
// classified by reflect.Type directly (see engine.ClassOf); Class exists
// for callers that want an explicit, named hierarchy independent of Go's
// type system — e.g. domain taxonomies with multiple inheritance.
type Class struct {
	name    string
	parents []*Class
}

// NewClass declares a new-style class with the given parents. With no
// parents, the class is a root of its own and does not imply Object;
// pass Object explicitly to root it in the universal hierarchy.
func NewClass(name string, parents ...*Class) *Class {
	return &Class{name: name, parents: parents}
}

func (c *Class) Name() string { return c.name }

func (c *Class) String() string { return c.name }

// Implies reports whether c is the same class as other, or a descendant of
// it, via a breadth-first walk of the parent graph.
func (c *Class) Implies(other *Class) bool {
	if c == other {
		return true
	}
	seen := map[*Class]bool{c: true}
	queue := append([]*Class{}, c.parents...)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n == other {
			return true
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		queue = append(queue, n.parents...)
	}
	return false
}

// Object is the universal root of the new-style hierarchy.
var Object = NewClass("object")

// LegacyInstanceMarker is the new-style class that "any legacy instance"
// is considered to imply, mirroring Python 2's types.InstanceType — a
// new-style type standing in for every old-style instance regardless of
// its specific legacy class.
var LegacyInstanceMarker = NewClass("legacy-instance")

// LegacyClass is a node in the legacy class hierarchy. Implies against
// another LegacyClass uses the same parent walk as Class; implies against
// a new-style Class is the restricted exception in spec.md §4.1.
type LegacyClass struct {
	name    string
	parents []*LegacyClass
}

func NewLegacyClass(name string, parents ...*LegacyClass) *LegacyClass {
	return &LegacyClass{name: name, parents: parents}
}

func (c *LegacyClass) Name() string { return c.name }

func (c *LegacyClass) String() string { return c.name }

func (c *LegacyClass) Implies(other *LegacyClass) bool {
	if c == other {
		return true
	}
	seen := map[*LegacyClass]bool{c: true}
	queue := append([]*LegacyClass{}, c.parents...)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n == other {
			return true
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		queue = append(queue, n.parents...)
	}
	return false
}

// ImpliesNewStyle encodes the exception: a legacy class implies a
// new-style one only if that new-style class is the universal root or the
// legacy-instance marker.
func (c *LegacyClass) ImpliesNewStyle(other *Class) bool {
	return other == Object || other == LegacyInstanceMarker
}

// Instance is the root of the legacy hierarchy, analogous to old-style
// classes' implicit common ancestor.
var Instance = NewLegacyClass("instance")
