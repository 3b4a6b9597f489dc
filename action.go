package store

import (
	"fmt"
	"reflect"
)

// TypeKey is the field that identifies the kind of an action.
const TypeKey = "type"

// Action is a tagged record describing one requested transition.
// The value stored under TypeKey is its discriminator.
type Action map[string]any

// NewAction builds an action of the given type from alternating key/value pairs.
// A trailing key without a value is ignored.
func NewAction(typ any, kv ...any) Action {
	a := make(Action, 1+len(kv)/2)
	a[TypeKey] = typ
	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok {
			a[key] = kv[i+1]
		}
	}
	return a
}

// Type returns the discriminator of the action.
func (a Action) Type() any {
	return a[TypeKey]
}

// Sentinel is the discriminator type of actions issued by the store itself.
// Application code never produces a Sentinel, so reserved actions cannot
// collide with application action types.
type Sentinel string

const (
	// ActionInit is dispatched once when a store is created.
	ActionInit Sentinel = "@@store/INIT"

	// ActionReplace is dispatched after ReplaceReducer swaps the reducer.
	ActionReplace Sentinel = "@@store/REPLACE"

	// actionProbeUnknown is used by CombineReducers to check that slice reducers
	// handle actions they do not know.
	actionProbeUnknown Sentinel = "@@store/PROBE_UNKNOWN_ACTION"
)

// IsReserved reports whether typ is the discriminator of a store-issued action.
func IsReserved(typ any) bool {
	_, ok := typ.(Sentinel)
	return ok
}

// TypeOf returns the discriminator of any plain-mapping action.
// The second result is false when action is not a string-keyed map or has no type.
func TypeOf(action any) (any, bool) {
	if a, ok := action.(Action); ok {
		t, found := a[TypeKey]
		return t, found && t != nil
	}
	if m, ok := action.(map[string]any); ok {
		t, found := m[TypeKey]
		return t, found && t != nil
	}

	rv := reflect.ValueOf(action)
	if !isPlainMapping(rv) {
		return nil, false
	}
	v := rv.MapIndex(reflect.ValueOf(TypeKey).Convert(rv.Type().Key()))
	if !v.IsValid() {
		return nil, false
	}
	t := v.Interface()
	return t, t != nil
}

// toAction validates a dispatched value and returns the Action handed to the reducer.
// Action and map[string]any values are passed through untouched.
func toAction(v any) (Action, error) {
	var a Action
	switch m := v.(type) {
	case Action:
		a = m
	case map[string]any:
		a = Action(m)
	default:
		rv := reflect.ValueOf(v)
		if !isPlainMapping(rv) {
			return nil, fmt.Errorf("%w, got %s", ErrInvalidActionShape, kindOf(v))
		}
		a = make(Action, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			a[iter.Key().String()] = iter.Value().Interface()
		}
	}

	t, ok := a[TypeKey]
	if !ok || t == nil {
		return nil, ErrMissingDiscriminator
	}
	if !reflect.ValueOf(t).Comparable() {
		return nil, fmt.Errorf("%w: type field of kind %s is not comparable", ErrInvalidActionShape, kindOf(t))
	}
	return a, nil
}

func isPlainMapping(rv reflect.Value) bool {
	return rv.IsValid() && rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String
}

// kindOf describes a value for error messages.
func kindOf(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).Kind().String()
}
