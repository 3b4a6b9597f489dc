package scenario

import (
	"fmt"
	"maps"

	"github.com/jilio/store"
)

// Action types understood by Counters.
const (
	TypeIncrement = "INC"
	TypeDecrement = "DEC"
	TypeAdd       = "ADD"
	TypeReset     = "RESET"
)

// Counters is a reducer over named integer counters.
//
// INC and DEC change the counter under "key" by one, ADD by "by", and RESET
// clears one counter or, without a key, all of them. Unknown types leave the
// state untouched. The state map is never modified in place.
func Counters(state map[string]int, action store.Action) (map[string]int, error) {
	if state == nil {
		state = map[string]int{}
	}

	typ, ok := action.Type().(string)
	if !ok {
		return state, nil
	}
	key, _ := action["key"].(string)

	switch typ {
	case TypeIncrement, TypeDecrement, TypeAdd:
		if key == "" {
			return state, fmt.Errorf("%s requires a key", typ)
		}
		delta := 1
		switch typ {
		case TypeDecrement:
			delta = -1
		case TypeAdd:
			by, ok := action["by"].(int)
			if !ok {
				return state, fmt.Errorf("%s requires an integer by", typ)
			}
			delta = by
		}
		next := maps.Clone(state)
		next[key] += delta
		return next, nil

	case TypeReset:
		if key == "" {
			return map[string]int{}, nil
		}
		next := maps.Clone(state)
		delete(next, key)
		return next, nil
	}

	return state, nil
}
