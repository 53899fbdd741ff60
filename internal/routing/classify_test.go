package routing

import (
	"strings"
	"testing"

	"github.com/kpraveen/agentcompany/internal/workflow"
)

func departments(subtasks []Subtask) map[string]Subtask {
	m := map[string]Subtask{}
	for _, st := range subtasks {
		m[st.Department] = st
	}
	return m
}

func TestClassify_SingleDepartment(t *testing.T) {
	subtasks := Classify("Plan the product launch campaign", "technology")

	if len(subtasks) != 1 {
		t.Fatalf("expected 1 subtask, got %d", len(subtasks))
	}
	st := subtasks[0]
	if st.Department != "marketing" {
		t.Errorf("expected marketing, got %q", st.Department)
	}
	if st.Phase != workflow.PhaseParallel {
		t.Errorf("expected parallel phase, got %v", st.Phase)
	}
	if !strings.Contains(st.Description, "Plan the product launch campaign") {
		t.Errorf("expected original directive embedded, got %q", st.Description)
	}
}

func TestClassify_MultipleDepartments(t *testing.T) {
	subtasks := Classify("Research the market and develop a mobile payment app", "technology")

	byDept := departments(subtasks)
	if len(byDept) != 2 {
		t.Fatalf("expected research and engineering subtasks, got %v", byDept)
	}

	research, ok := byDept["research"]
	if !ok {
		t.Fatal("expected research subtask")
	}
	if research.Phase != workflow.PhaseSequential || research.Priority != 1 {
		t.Errorf("expected sequential priority-1 research task, got %+v", research)
	}

	if _, ok := byDept["engineering"]; !ok {
		t.Error("expected engineering subtask")
	}
}

func TestClassify_ResearchPrecedesParallelWork(t *testing.T) {
	subtasks := Classify("market study for the new platform", "technology")

	if subtasks[0].Department != "research" {
		t.Errorf("expected research first in table order, got %q", subtasks[0].Department)
	}
}

func TestClassify_FallbackBySector(t *testing.T) {
	tech := Classify("do something unspecified", "Technology")
	if len(tech) != 1 || tech[0].Department != "engineering" {
		t.Errorf("expected engineering fallback for tech sector, got %v", tech)
	}

	retail := Classify("do something unspecified", "retail")
	if len(retail) != 1 || retail[0].Department != "marketing" {
		t.Errorf("expected marketing fallback for non-tech sector, got %v", retail)
	}

	if !strings.Contains(retail[0].Description, "Handle strategic task") {
		t.Errorf("expected strategic fallback description, got %q", retail[0].Description)
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	subtasks := Classify("LAUNCH THE BRAND CAMPAIGN", "retail")
	if len(subtasks) != 1 || subtasks[0].Department != "marketing" {
		t.Errorf("expected case-insensitive keyword match, got %v", subtasks)
	}
}

func TestClassify_IsPure(t *testing.T) {
	a := Classify("develop the app", "technology")
	b := Classify("develop the app", "technology")
	if len(a) != len(b) {
		t.Fatalf("expected identical results for identical input: %v vs %v", a, b)
	}
	if a[0].Department != b[0].Department || a[0].Description != b[0].Description {
		t.Errorf("expected identical results for identical input: %v vs %v", a, b)
	}
}
