// Package scenario loads YAML scenario files and runs them against a
// counters store.
package scenario

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/jilio/store"
	"gopkg.in/yaml.v3"
)

// Scenario is a named list of steps applied to an initial counters state.
type Scenario struct {
	Name    string         `yaml:"name"`
	Initial map[string]int `yaml:"initial,omitempty"`
	Steps   []Step         `yaml:"steps"`
	Expect  map[string]int `yaml:"expect,omitempty"`
}

// Step is one action of a scenario.
type Step struct {
	Type string `yaml:"type"`
	Key  string `yaml:"key,omitempty"`
	By   int    `yaml:"by,omitempty"`
}

// Action converts the step into a dispatchable action.
func (s Step) Action() store.Action {
	a := store.NewAction(s.Type)
	if s.Key != "" {
		a["key"] = s.Key
	}
	if s.By != 0 {
		a["by"] = s.By
	}
	return a
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML scenario.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks that every step names an action type.
func (sc *Scenario) Validate() error {
	if len(sc.Steps) == 0 {
		return errors.New("scenario has no steps")
	}
	for i, step := range sc.Steps {
		if strings.TrimSpace(step.Type) == "" {
			return fmt.Errorf("step %d: missing type", i+1)
		}
	}
	return nil
}

// Marshal encodes the scenario as YAML.
func (sc *Scenario) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(sc)
	if err != nil {
		return nil, fmt.Errorf("yaml marshal: %w", err)
	}
	return data, nil
}

// Run dispatches every step on s in order and returns the final state.
// It stops at the first failed dispatch.
func (sc *Scenario) Run(s store.Store[map[string]int]) (map[string]int, error) {
	for i, step := range sc.Steps {
		if _, err := s.Dispatch(step.Action()); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Type, err)
		}
	}
	return s.GetState()
}

// Verify compares a final state against the scenario's expectations.
// A scenario without expectations always passes.
func (sc *Scenario) Verify(final map[string]int) error {
	if sc.Expect == nil {
		return nil
	}

	var mismatches []string
	keys := slices.Sorted(maps.Keys(sc.Expect))
	for _, key := range keys {
		if got := final[key]; got != sc.Expect[key] {
			mismatches = append(mismatches, fmt.Sprintf("%s = %d, want %d", key, got, sc.Expect[key]))
		}
	}
	for _, key := range slices.Sorted(maps.Keys(final)) {
		if _, ok := sc.Expect[key]; !ok && final[key] != 0 {
			mismatches = append(mismatches, fmt.Sprintf("%s = %d, not expected", key, final[key]))
		}
	}

	if len(mismatches) > 0 {
		return fmt.Errorf("scenario %q: %s", sc.Name, strings.Join(mismatches, "; "))
	}
	return nil
}
