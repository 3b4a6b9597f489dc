package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jilio/store/internal/config"
)

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	return path
}

const passing = `name: pass
steps:
  - type: INC
    key: a
  - type: ADD
    key: a
    by: 2
expect:
  a: 3
`

func TestRun(t *testing.T) {
	var out bytes.Buffer
	cfg := config.Demo{Scenario: writeScenario(t, passing), Service: "test"}

	if err := run(context.Background(), cfg, &out); err != nil {
		t.Fatalf("run() failed: %v\n%s", err, out.String())
	}

	got := out.String()
	for _, want := range []string{
		"state: map[]",
		"state: map[a:1]",
		"state: map[a:3]",
		"store: dispatching INC",
		"pass: final state map[a:3]",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRunQuiet(t *testing.T) {
	var out bytes.Buffer
	cfg := config.Demo{Scenario: writeScenario(t, passing), Quiet: true, Service: "test"}

	if err := run(context.Background(), cfg, &out); err != nil {
		t.Fatalf("run() failed: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "pass: final state map[a:3]" {
		t.Errorf("quiet output = %q", got)
	}
}

func TestRunTrace(t *testing.T) {
	var out bytes.Buffer
	cfg := config.Demo{Scenario: writeScenario(t, passing), Quiet: true, Trace: true, Service: "test"}

	if err := run(context.Background(), cfg, &out); err != nil {
		t.Fatalf("run() failed: %v", err)
	}
	for _, want := range []string{"store.dispatch: INC", "store.dispatch.count"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("trace output missing %q", want)
		}
	}
}

func TestRunExpectationMismatch(t *testing.T) {
	var out bytes.Buffer
	body := strings.Replace(passing, "a: 3", "a: 4", 1)
	cfg := config.Demo{Scenario: writeScenario(t, body), Quiet: true, Service: "test"}

	err := run(context.Background(), cfg, &out)
	if err == nil || !strings.Contains(err.Error(), "a = 3, want 4") {
		t.Errorf("run() error = %v, want expectation mismatch", err)
	}
}

func TestRunFailingStep(t *testing.T) {
	var out bytes.Buffer
	cfg := config.Demo{Scenario: writeScenario(t, "name: bad\nsteps:\n  - type: INC\n"), Quiet: true, Service: "test"}

	err := run(context.Background(), cfg, &out)
	if err == nil || !strings.Contains(err.Error(), "requires a key") {
		t.Errorf("run() error = %v, want reducer failure", err)
	}
}

func TestRunMissingScenario(t *testing.T) {
	cfg := config.Demo{Scenario: filepath.Join(t.TempDir(), "none.yaml")}
	if err := run(context.Background(), cfg, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for missing scenario")
	}
}
