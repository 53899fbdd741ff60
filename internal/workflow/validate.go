package workflow

import (
	"fmt"
	"strings"

	"github.com/gammazero/toposort"
)

// Validate checks the current task set for dangling dependency references and
// dependency cycles, returning a topological order of task ids on success.
//
// Execution never calls this: a task with an unsatisfiable dependency is
// silently left pending by ExecuteWorkflow. Callers that prefer failing fast
// over a permanent stall run Validate after planning.
func (m *Manager) Validate() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for taskID, task := range m.tasks {
		for _, depID := range task.Dependencies {
			if _, exists := m.tasks[depID]; !exists {
				return nil, fmt.Errorf("task %q depends on non-existent task %q", taskID, depID)
			}
		}
	}

	var edges []toposort.Edge
	for taskID, task := range m.tasks {
		if len(task.Dependencies) == 0 {
			// Root task - edge from nil keeps it in the sort result
			edges = append(edges, toposort.Edge{nil, taskID})
		} else {
			for _, depID := range task.Dependencies {
				edges = append(edges, toposort.Edge{depID, taskID})
			}
		}
	}

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		return nil, fmt.Errorf("task set contains dependency cycle: %w", err)
	}

	order := make([]string, 0, len(sorted))
	for _, id := range sorted {
		if id != nil {
			order = append(order, id.(string))
		}
	}

	// A task can only go missing here if the edge list lost it
	if len(order) != len(m.tasks) {
		missing := []string{}
		found := make(map[string]bool)
		for _, id := range order {
			found[id] = true
		}
		for taskID := range m.tasks {
			if !found[taskID] {
				missing = append(missing, taskID)
			}
		}
		return nil, fmt.Errorf("topological sort lost %d tasks: %s", len(missing), strings.Join(missing, ", "))
	}

	return order, nil
}
