package workflow

import (
	"context"
	"strings"
	"testing"
)

func TestValidate_OrdersDependenciesFirst(t *testing.T) {
	m := newTestManager(&stubScheduler{})
	m.AddTask(parTask("c", "b"))
	m.AddTask(parTask("b", "a"))
	m.AddTask(parTask("a"))

	order, err := m.Validate()
	if err != nil {
		t.Fatalf("expected valid task set, got: %v", err)
	}
	if len(order) != 3 {
		t.Fatalf("expected 3 tasks in order, got %d", len(order))
	}

	pos := map[string]int{}
	for i, id := range order {
		pos[id] = i
	}
	if pos["a"] > pos["b"] || pos["b"] > pos["c"] {
		t.Errorf("expected a before b before c, got %v", order)
	}
}

func TestValidate_DanglingDependency(t *testing.T) {
	m := newTestManager(&stubScheduler{})
	m.AddTask(parTask("d1", "nope"))

	_, err := m.Validate()
	if err == nil {
		t.Fatal("expected error for dangling dependency")
	}
	if !strings.Contains(err.Error(), "nope") {
		t.Errorf("expected error to name the missing id, got: %v", err)
	}
}

func TestValidate_Cycle(t *testing.T) {
	m := newTestManager(&stubScheduler{})
	m.AddTask(parTask("a", "b"))
	m.AddTask(parTask("b", "a"))

	_, err := m.Validate()
	if err == nil {
		t.Fatal("expected error for dependency cycle")
	}
	if !strings.Contains(err.Error(), "cycle") {
		t.Errorf("expected cycle error, got: %v", err)
	}
}

func TestValidate_DoesNotAffectExecution(t *testing.T) {
	stub := &stubScheduler{}
	m := newTestManager(stub)
	m.AddTask(parTask("d1", "nope"))
	m.AddTask(parTask("ok"))
	m.PlanExecution()

	if _, err := m.Validate(); err == nil {
		t.Fatal("expected validation error")
	}

	// Execution still runs with the silent-stall behavior.
	if err := m.ExecuteWorkflow(context.Background()); err != nil {
		t.Fatalf("expected execution to succeed despite invalid task set, got: %v", err)
	}
	if got := m.TaskStatus("ok"); got != StatusCompleted {
		t.Errorf("expected ok completed, got %v", got)
	}
	if got := m.TaskStatus("d1"); got != StatusPending {
		t.Errorf("expected d1 pending, got %v", got)
	}
}
