package store

import (
	"fmt"
	"log"
	"maps"
	"reflect"
	"slices"
)

// CombineOption configures CombineReducers.
type CombineOption func(*combineConfig)

type combineConfig struct {
	logger *log.Logger
}

// WithWarnings logs skipped reducers and state keys that have no reducer.
// Warnings are off by default.
func WithWarnings(logger *log.Logger) CombineOption {
	return func(c *combineConfig) {
		c.logger = logger
	}
}

// CombineReducers builds a reducer over map[string]any that hands each key's
// slice of state to the reducer registered under that key.
//
// Every reducer must return a non-nil state when called with a nil state and
// either ActionInit or an action type it does not know; otherwise
// ErrInvalidReducerShape is returned. Nil reducers are skipped.
func CombineReducers(reducers map[string]Reducer[any], opts ...CombineOption) (Reducer[map[string]any], error) {
	cfg := &combineConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	// Later changes to reducers do not affect the combined reducer.
	final := make(map[string]Reducer[any], len(reducers))
	for key, r := range reducers {
		if r == nil {
			cfg.warnf("store: no reducer provided for key %q", key)
			continue
		}
		final[key] = r
	}
	keys := slices.Sorted(maps.Keys(final))

	for _, key := range keys {
		if err := assertReducerShape(key, final[key]); err != nil {
			return nil, err
		}
	}

	warned := make(map[string]bool)

	return func(state map[string]any, action Action) (map[string]any, error) {
		if cfg.logger != nil && action.Type() != ActionReplace {
			for _, key := range unexpectedKeys(state, final, warned) {
				cfg.warnf("store: unexpected key %q found in state, expected one of %v; it will be ignored", key, keys)
			}
		}

		hasChanged := false
		next := make(map[string]any, len(keys))
		for _, key := range keys {
			prev := state[key]
			slice, err := final[key](prev, action)
			if err != nil {
				return state, fmt.Errorf("reducer %q: %w", key, err)
			}
			if slice == nil {
				return state, fmt.Errorf("%w: reducer %q returned nil for action %v", ErrInvalidReducerShape, key, action.Type())
			}
			next[key] = slice
			hasChanged = hasChanged || !sameValue(prev, slice)
		}
		hasChanged = hasChanged || len(keys) != len(state)

		if !hasChanged {
			return state, nil
		}
		return next, nil
	}, nil
}

func assertReducerShape(key string, r Reducer[any]) error {
	initial, err := r(nil, Action{TypeKey: ActionInit})
	if err != nil {
		return fmt.Errorf("%w: reducer %q failed during initialization: %v", ErrInvalidReducerShape, key, err)
	}
	if initial == nil {
		return fmt.Errorf("%w: reducer %q returned nil during initialization", ErrInvalidReducerShape, key)
	}

	probed, err := r(nil, Action{TypeKey: actionProbeUnknown})
	if err != nil {
		return fmt.Errorf("%w: reducer %q failed when probed with an unknown action: %v", ErrInvalidReducerShape, key, err)
	}
	if probed == nil {
		return fmt.Errorf("%w: reducer %q returned nil when probed with an unknown action", ErrInvalidReducerShape, key)
	}
	return nil
}

// unexpectedKeys returns state keys with no reducer, each reported once.
func unexpectedKeys(state map[string]any, reducers map[string]Reducer[any], warned map[string]bool) []string {
	var keys []string
	for key := range state {
		if _, ok := reducers[key]; ok || warned[key] {
			continue
		}
		warned[key] = true
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

func (c *combineConfig) warnf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}

// sameValue reports whether a and b are the same state value: equal for
// comparable values, the same backing data for maps, slices and pointers.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}

	if va.Comparable() && vb.Comparable() {
		return va.Equal(vb)
	}
	return false
}
