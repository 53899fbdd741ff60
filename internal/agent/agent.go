package agent

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/kpraveen/agentcompany/internal/config"
)

// Completer generates text from a system+user prompt pair. Satisfied by
// llm.Client; tests substitute a stub.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Agent is a role-playing department executor.
type Agent interface {
	Name() string
	Department() string
	ExecuteTask(ctx context.Context, task string) (string, error)
}

// LLMAgent role-plays a department head by expanding tasks through the
// completion service with a role-specific system prompt.
type LLMAgent struct {
	id           string
	name         string
	department   string
	role         string
	systemPrompt string
	completer    Completer
	createdAt    time.Time
}

// NewLLMAgent creates an agent for a department from its config entry,
// folding the company profile into the system prompt.
func NewLLMAgent(department string, agentCfg config.AgentConfig, profile config.CompanyProfile, completer Completer) *LLMAgent {
	systemPrompt := fmt.Sprintf(
		"You are %s, %s at %s, a company in the %s sector.",
		agentCfg.Name, agentCfg.Role, profile.Name, profile.Sector,
	)
	if profile.Description != "" {
		systemPrompt += " " + profile.Description
	}
	if agentCfg.SystemPrompt != "" {
		systemPrompt += " " + agentCfg.SystemPrompt
	}

	return &LLMAgent{
		id:           uuid.NewString(),
		name:         agentCfg.Name,
		department:   department,
		role:         agentCfg.Role,
		systemPrompt: systemPrompt,
		completer:    completer,
		createdAt:    time.Now().UTC(),
	}
}

// ID returns the agent's unique identifier.
func (a *LLMAgent) ID() string { return a.id }

// Name returns the agent's display name.
func (a *LLMAgent) Name() string { return a.name }

// Department returns the department key the agent serves.
func (a *LLMAgent) Department() string { return a.department }

// Role returns the agent's role title.
func (a *LLMAgent) Role() string { return a.role }

// ExecuteTask expands the task through the completion service and returns
// the produced deliverable text.
func (a *LLMAgent) ExecuteTask(ctx context.Context, task string) (string, error) {
	log.Printf("agent %s (%s): executing task", a.name, a.department)

	prompt := fmt.Sprintf(
		"Complete the following task for the %s department. Respond with the deliverable only.\n\nTask: %s",
		a.department, task,
	)

	output, err := a.completer.Complete(ctx, a.systemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("agent %s: %w", a.department, err)
	}
	return output, nil
}

// Roster builds one LLMAgent per configured department.
func Roster(cfg *config.Config, completer Completer) []*LLMAgent {
	agents := make([]*LLMAgent, 0, len(cfg.Agents))
	for department, agentCfg := range cfg.Agents {
		agents = append(agents, NewLLMAgent(department, agentCfg, cfg.Company, completer))
	}
	return agents
}
