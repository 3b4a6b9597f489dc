package store

import (
	"bytes"
	"errors"
	"log"
	"reflect"
	"strings"
	"testing"
)

func countReducer(state any, action Action) (any, error) {
	n, _ := state.(int)
	if action.Type() == "INC" {
		return n + 1, nil
	}
	return n, nil
}

func todosReducer(state any, action Action) (any, error) {
	todos, _ := state.([]string)
	if todos == nil {
		todos = []string{}
	}
	if action.Type() == "ADD_TODO" {
		text, _ := action["text"].(string)
		next := make([]string, 0, len(todos)+1)
		next = append(next, todos...)
		return append(next, text), nil
	}
	return todos, nil
}

func TestCombineReducers(t *testing.T) {
	root, err := CombineReducers(map[string]Reducer[any]{
		"count": countReducer,
		"todos": todosReducer,
	})
	if err != nil {
		t.Fatalf("CombineReducers() failed: %v", err)
	}

	s, err := New(root, nil)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	initial := mustState(t, s)
	if initial["count"] != 0 || !reflect.DeepEqual(initial["todos"], []string{}) {
		t.Fatalf("initial state = %v", initial)
	}

	s.Dispatch(Action{"type": "INC"})
	s.Dispatch(Action{"type": "ADD_TODO", "text": "write tests"})

	got := mustState(t, s)
	if got["count"] != 1 {
		t.Errorf("count = %v, want 1", got["count"])
	}
	if !reflect.DeepEqual(got["todos"], []string{"write tests"}) {
		t.Errorf("todos = %v, want [write tests]", got["todos"])
	}
}

func TestCombineReducersKeepsIdentityWhenUnchanged(t *testing.T) {
	root, err := CombineReducers(map[string]Reducer[any]{
		"count": countReducer,
		"todos": todosReducer,
	})
	if err != nil {
		t.Fatalf("CombineReducers() failed: %v", err)
	}

	state, err := root(nil, Action{TypeKey: ActionInit})
	if err != nil {
		t.Fatalf("reducer failed: %v", err)
	}

	same, err := root(state, Action{"type": "NOTHING"})
	if err != nil {
		t.Fatalf("reducer failed: %v", err)
	}
	if reflect.ValueOf(same).Pointer() != reflect.ValueOf(state).Pointer() {
		t.Error("unchanged state should be returned as is")
	}

	changed, err := root(state, Action{"type": "INC"})
	if err != nil {
		t.Fatalf("reducer failed: %v", err)
	}
	if reflect.ValueOf(changed).Pointer() == reflect.ValueOf(state).Pointer() {
		t.Error("changed state should be a new map")
	}
	if state["count"] != 0 {
		t.Errorf("previous state was mutated: %v", state)
	}
}

func TestCombineReducersShapeErrors(t *testing.T) {
	tests := []struct {
		name    string
		reducer Reducer[any]
	}{
		{
			name:    "nil on init",
			reducer: func(state any, action Action) (any, error) { return state, nil },
		},
		{
			name: "nil on unknown action",
			reducer: func(state any, action Action) (any, error) {
				if action.Type() == ActionInit {
					return 0, nil
				}
				return state, nil
			},
		},
		{
			name: "error on init",
			reducer: func(state any, action Action) (any, error) {
				return nil, errors.New("not ready")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CombineReducers(map[string]Reducer[any]{"bad": tt.reducer})
			if !errors.Is(err, ErrInvalidReducerShape) {
				t.Fatalf("CombineReducers() error = %v, want ErrInvalidReducerShape", err)
			}
			if !strings.Contains(err.Error(), `"bad"`) {
				t.Errorf("error %q should name the key", err)
			}
		})
	}
}

func TestCombineReducersRuntimeErrors(t *testing.T) {
	boom := errors.New("boom")
	root, err := CombineReducers(map[string]Reducer[any]{
		"count": countReducer,
		"flaky": func(state any, action Action) (any, error) {
			switch action.Type() {
			case "FAIL":
				return nil, boom
			case "VANISH":
				return nil, nil
			}
			return "ok", nil
		},
	})
	if err != nil {
		t.Fatalf("CombineReducers() failed: %v", err)
	}

	s, err := New(root, nil)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	before := mustState(t, s)

	if _, err := s.Dispatch(Action{"type": "FAIL"}); !errors.Is(err, boom) {
		t.Errorf("Dispatch(FAIL) error = %v, want boom", err)
	}
	if _, err := s.Dispatch(Action{"type": "VANISH"}); !errors.Is(err, ErrInvalidReducerShape) {
		t.Errorf("Dispatch(VANISH) error = %v, want ErrInvalidReducerShape", err)
	}
	if after := mustState(t, s); !reflect.DeepEqual(after, before) {
		t.Errorf("state changed after failed dispatches: %v", after)
	}
}

func TestCombineReducersWarnings(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	root, err := CombineReducers(map[string]Reducer[any]{
		"count":   countReducer,
		"missing": nil,
	}, WithWarnings(logger))
	if err != nil {
		t.Fatalf("CombineReducers() failed: %v", err)
	}
	if !strings.Contains(buf.String(), `no reducer provided for key "missing"`) {
		t.Errorf("missing reducer warning not logged:\n%s", buf.String())
	}

	buf.Reset()
	state := map[string]any{"count": 1, "stale": true}
	next, err := root(state, Action{"type": "INC"})
	if err != nil {
		t.Fatalf("reducer failed: %v", err)
	}
	root(next, Action{"type": "INC"})
	root(state, Action{"type": "INC"})

	if n := strings.Count(buf.String(), `unexpected key "stale"`); n != 1 {
		t.Errorf("unexpected key warned %d times, want 1:\n%s", n, buf.String())
	}
	if _, ok := next["stale"]; ok {
		t.Error("unexpected keys should be dropped from the next state")
	}
	if next["count"] != 2 {
		t.Errorf("count = %v, want 2", next["count"])
	}

	buf.Reset()
	root(map[string]any{"other": 1}, Action{TypeKey: ActionReplace})
	if buf.Len() != 0 {
		t.Errorf("no warnings expected for the replace action, got:\n%s", buf.String())
	}
}

func TestSameValue(t *testing.T) {
	m := map[string]int{"a": 1}
	sl := []int{1, 2}
	type pair struct{ a, b int }
	type holder struct{ v any }

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"both nil", nil, nil, true},
		{"one nil", nil, 1, false},
		{"equal ints", 1, 1, true},
		{"different ints", 1, 2, false},
		{"different types", 1, int64(1), false},
		{"same map", m, m, true},
		{"equal maps", map[string]int{"a": 1}, map[string]int{"a": 1}, false},
		{"same slice", sl, sl, true},
		{"resliced", sl, sl[:1], false},
		{"equal structs", pair{1, 2}, pair{1, 2}, true},
		{"struct with uncomparable field", holder{[]int{1}}, holder{[]int{1}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sameValue(tt.a, tt.b); got != tt.want {
				t.Errorf("sameValue(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCombineReducersIgnoresLaterMapChanges(t *testing.T) {
	reducers := map[string]Reducer[any]{
		"count": countReducer,
		"todos": todosReducer,
	}
	root, err := CombineReducers(reducers)
	if err != nil {
		t.Fatalf("CombineReducers() failed: %v", err)
	}

	s, err := New(root, nil)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	reducers["todos"] = nil
	delete(reducers, "count")
	reducers["extra"] = func(state any, action Action) (any, error) { return "extra", nil }

	if _, err := s.Dispatch(Action{"type": "INC"}); err != nil {
		t.Fatalf("Dispatch() failed: %v", err)
	}

	got := mustState(t, s)
	if got["count"] != 1 {
		t.Errorf("count = %v, want 1", got["count"])
	}
	if !reflect.DeepEqual(got["todos"], []string{}) {
		t.Errorf("todos = %v, want []", got["todos"])
	}
	if _, ok := got["extra"]; ok {
		t.Errorf("reducer added after construction was used: %v", got)
	}
}

func TestCombineReducersWarnsAboutNilReducerState(t *testing.T) {
	var buf bytes.Buffer
	root, err := CombineReducers(map[string]Reducer[any]{
		"count":    countReducer,
		"disabled": nil,
	}, WithWarnings(log.New(&buf, "", 0)))
	if err != nil {
		t.Fatalf("CombineReducers() failed: %v", err)
	}

	buf.Reset()
	next, err := root(map[string]any{"count": 1, "disabled": 2}, Action{"type": "NOTHING"})
	if err != nil {
		t.Fatalf("reducer failed: %v", err)
	}
	if _, ok := next["disabled"]; ok {
		t.Errorf("state for a nil reducer should be dropped: %v", next)
	}
	if !strings.Contains(buf.String(), `unexpected key "disabled"`) {
		t.Errorf("dropped key not reported:\n%s", buf.String())
	}
}
