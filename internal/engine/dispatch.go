package engine

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/cerevo/PEAK-Rules/internal/model"
	"go.uber.org/zap"
)

// ClassOf extracts the dispatch class of a value. The uniform "class of
// value" operation spec.md §4.4 requires treats a legacy instance
// identically to a new-style object: both are classified by whatever
// *classreg.Class or *classreg.LegacyClass the caller attached, falling
// back to the value's own reflect.Type for ordinary Go values.
func ClassOf(v any) model.Class {
	if classed, ok := v.(interface{ DispatchClass() model.Class }); ok {
		return classed.DispatchClass()
	}
	if v == nil {
		return reflect.TypeOf((*any)(nil)).Elem()
	}
	return reflect.TypeOf(v)
}

// registryEntry is one (predicate, Action) slot of an Engine's registry.
// Predicate equality is checked structurally (reflect.DeepEqual) rather
// than through a synthetic map key, since a Signature is a slice and
// Go map keys must be comparable.
type registryEntry struct {
	Predicate model.Predicate
	Action    Action
}

// Engine is C4: the per-generic-function registry, dispatch cache, and
// miss-fold trampoline. One Engine backs one Dispatching record (C5).
type Engine struct {
	mu            sync.RWMutex
	registry      []registryEntry
	staticCache   map[string]Action
	cache         map[string]Action
	defaultAction Action
	logger        *zap.Logger
	name          string
}

// NewEngine constructs an Engine with the given default action (ordinarily
// NoApplicableMethods; abstract() passes the same to guarantee it) and an
// optional logger. A nil logger disables tracing.
func NewEngine(name string, defaultAction Action, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultAction == nil {
		defaultAction = defaultNoApplicableMethods
	}
	return &Engine{
		name:          name,
		defaultAction: defaultAction,
		staticCache:   map[string]Action{},
		cache:         map[string]Action{},
		logger:        logger,
	}
}

// SetLogger swaps the engine's tracer. Passing nil restores the no-op
// logger.
func (e *Engine) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	e.mu.Lock()
	e.logger = logger
	e.mu.Unlock()
}

// classTupleKey builds the cache key for an argument-class tuple. Classes
// are compared by their own identity (reflect.Type values are canonical
// per type; *classreg.Class/*classreg.LegacyClass are canonical per
// pointer), so pointer classes are formatted by %T and address, and any
// other class by %T and %v, without requiring Class to be map-key
// comparable itself.
func classTupleKey(classes []model.Class) string {
	key := make([]byte, 0, 16*len(classes))
	for i, c := range classes {
		if i > 0 {
			key = append(key, '|')
		}
		if reflect.ValueOf(c).Kind() == reflect.Pointer {
			key = append(key, []byte(fmt.Sprintf("%T:%p", c, c))...)
		} else {
			key = append(key, []byte(fmt.Sprintf("%T:%v", c, c))...)
		}
	}
	return string(key)
}

func predicateKey(p model.Predicate) string {
	if sig, ok := p.(model.Signature); ok {
		return classTupleKey([]model.Class(sig))
	}
	return fmt.Sprintf("trivial:%v", p)
}

// findEntry locates the registry slot for predicate, if any, returning its
// index or -1.
func (e *Engine) findEntry(predicate model.Predicate) int {
	key := predicateKey(predicate)
	for i, entry := range e.registry {
		if predicateKey(entry.Predicate) == key {
			return i
		}
	}
	return -1
}

// AddMethod is add_method(sig, action): combine(action, registry[sig])
// with new-first precedence if sig is already occupied, else insert.
func (e *Engine) AddMethod(predicate model.Predicate, action Action) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if idx := e.findEntry(predicate); idx >= 0 {
		combined, err := Combine(action, e.registry[idx].Action)
		if err != nil {
			return err
		}
		e.registry[idx].Action = combined
	} else {
		e.registry = append(e.registry, registryEntry{Predicate: predicate, Action: action})
	}
	return nil
}

// FullReset clears the registry and replays defs as additions, in the
// order given (ordinarily rule-insertion order from RuleSet.AllDefs).
// build turns an ActionDef into the Action its kind and body call for.
func (e *Engine) FullReset(defs []model.ActionDef, build func(model.ActionDef) Action) error {
	e.mu.Lock()
	e.registry = nil
	e.mu.Unlock()

	e.logger.Debug("full reset", zap.String("function", e.name), zap.Int("rules", len(defs)))
	for _, def := range defs {
		predicate := def.Predicate
		if predicate == nil {
			predicate = def.Signature
		}
		if err := e.AddMethod(predicate, build(def)); err != nil {
			return err
		}
	}
	e.Changed()
	return nil
}

// SnapshotStatic freezes a copy of the live cache as this Engine's static
// seed, used by Changed to reset the live cache on every future
// regeneration. Ordinary generic functions never call this; it exists for
// engines (only Implies's bootstrap, historically) that want a non-empty
// baseline.
func (e *Engine) SnapshotStatic() {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := make(map[string]Action, len(e.cache))
	for k, v := range e.cache {
		snap[k] = v
	}
	e.staticCache = snap
}

// Changed resets the live cache to a copy of the static seed. Spec.md
// §4.4's "changed()" additionally regenerates a compiled trampoline;
// since Dispatch below always consults the cache directly rather than
// through compiled code, resetting the cache is the entire effect here.
func (e *Engine) Changed() {
	e.mu.Lock()
	defer e.mu.Unlock()
	fresh := make(map[string]Action, len(e.staticCache))
	for k, v := range e.staticCache {
		fresh[k] = v
	}
	e.cache = fresh
}

// Dispatch is the trampoline: extract the class tuple, check the cache,
// and on miss fold the registry under the implication kernel, dominated
// by the action algebra, caching and returning the result.
func (e *Engine) Dispatch(args []any) (any, error) {
	classes := make([]model.Class, len(args))
	for i, a := range args {
		classes[i] = ClassOf(a)
	}
	key := classTupleKey(classes)

	e.mu.RLock()
	action, hit := e.cache[key]
	e.mu.RUnlock()
	if hit {
		return action.Call(args)
	}

	e.mu.RLock()
	registry := append([]registryEntry{}, e.registry...)
	e.mu.RUnlock()

	tuple := model.Signature(classes)
	result := e.defaultAction
	for _, entry := range registry {
		if predicateApplies(tuple, entry.Predicate) {
			combined, err := Combine(result, entry.Action)
			if err != nil {
				return nil, err
			}
			result = combined
		}
	}

	e.mu.Lock()
	e.cache[key] = result
	e.mu.Unlock()

	e.logger.Debug("cache miss", zap.String("function", e.name), zap.Any("args", classes), zap.String("action", fmt.Sprintf("%T", result)))
	if _, ok := result.(*AmbiguousMethods); ok {
		e.logger.Warn("ambiguous dispatch", zap.String("function", e.name), zap.Any("args", classes))
	}
	return result.Call(args)
}

// predicateApplies reports whether the registered predicate matches the
// call's argument-class tuple: exact equality, or tuple ⊇ T implies it.
func predicateApplies(tuple model.Signature, predicate model.Predicate) bool {
	if reflect.DeepEqual(tuple, predicate) {
		return true
	}
	return Implies(tuple, predicate)
}
