package routing

import (
	"fmt"
	"strings"

	"github.com/kpraveen/agentcompany/internal/workflow"
)

// Subtask is a routed unit of work produced by the classifier. Ids are
// assigned later by the caller registering it with the workflow.
type Subtask struct {
	Department   string
	Description  string
	Phase        workflow.Phase
	Priority     int
	Dependencies []string
}

// rule maps directive keywords to a department subtask. Rules are evaluated
// in table order; every matching rule contributes one subtask.
type rule struct {
	department string
	keywords   []string
	phase      workflow.Phase
	priority   int
	template   string
}

// ruleTable is the ordered routing table. Research runs sequentially at the
// highest precedence so its findings land before the parallel work starts.
var ruleTable = []rule{
	{
		department: "research",
		keywords:   []string{"research", "analysis", "competitor", "market", "study"},
		phase:      workflow.PhaseSequential,
		priority:   1,
		template:   "Conduct research for: %s",
	},
	{
		department: "engineering",
		keywords:   []string{"develop", "app", "platform", "software", "code", "technical", "system", "payment", "e-commerce", "mobile"},
		phase:      workflow.PhaseParallel,
		priority:   1,
		template:   "Develop technical solution for: %s",
	},
	{
		department: "marketing",
		keywords:   []string{"marketing", "campaign", "promotion", "brand", "social", "content", "festival", "launch"},
		phase:      workflow.PhaseParallel,
		priority:   2,
		template:   "Execute marketing strategy for: %s",
	},
	{
		department: "finance",
		keywords:   []string{"budget", "forecast", "pricing", "revenue", "cost", "invoice"},
		phase:      workflow.PhaseParallel,
		priority:   2,
		template:   "Prepare financial plan for: %s",
	},
	{
		department: "sales",
		keywords:   []string{"sales", "customer acquisition", "pipeline", "outreach", "deal"},
		phase:      workflow.PhaseParallel,
		priority:   2,
		template:   "Drive sales execution for: %s",
	},
	{
		department: "support",
		keywords:   []string{"support", "helpdesk", "complaint", "ticket", "onboarding"},
		phase:      workflow.PhaseParallel,
		priority:   3,
		template:   "Handle customer support for: %s",
	},
}

// Classify maps a free-text directive to department subtasks using the
// ordered rule table. A directive matching no rule falls back to a single
// strategic subtask routed by company sector: technology sectors go to
// engineering, everything else to marketing. Pure function, no side effects.
func Classify(directive, sector string) []Subtask {
	lower := strings.ToLower(directive)

	var subtasks []Subtask
	for _, r := range ruleTable {
		if matchesAny(lower, r.keywords) {
			subtasks = append(subtasks, Subtask{
				Department:  r.department,
				Description: fmt.Sprintf(r.template, directive),
				Phase:       r.phase,
				Priority:    r.priority,
			})
		}
	}

	if len(subtasks) == 0 {
		subtasks = append(subtasks, Subtask{
			Department:  fallbackDepartment(sector),
			Description: fmt.Sprintf("Handle strategic task: %s", directive),
			Phase:       workflow.PhaseParallel,
			Priority:    2,
		})
	}

	return subtasks
}

func matchesAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func fallbackDepartment(sector string) string {
	lower := strings.ToLower(sector)
	if strings.Contains(lower, "tech") || strings.Contains(lower, "it") {
		return "engineering"
	}
	return "marketing"
}
