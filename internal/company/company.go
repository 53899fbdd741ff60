package company

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kpraveen/agentcompany/internal/config"
	"github.com/kpraveen/agentcompany/internal/events"
	"github.com/kpraveen/agentcompany/internal/persistence"
	"github.com/kpraveen/agentcompany/internal/routing"
	"github.com/kpraveen/agentcompany/internal/scheduler"
	"github.com/kpraveen/agentcompany/internal/workflow"
)

// TaskOutcome is one task's final state in a directive report.
type TaskOutcome struct {
	TaskID      string
	Department  string
	Description string
	Status      workflow.Status
	Result      string
	Err         error
}

// DirectiveReport summarizes one executed directive.
type DirectiveReport struct {
	Directive string
	SessionID string
	Tasks     []TaskOutcome
}

// Company wires the classifier, workflow engine, scheduler, event bus, and
// session store into the executive flow: a free-text directive comes in,
// department deliverables come out.
type Company struct {
	cfg       *config.Config
	scheduler *scheduler.Scheduler
	bus       *events.Bus
	store     persistence.Store // may be nil

	mu          sync.Mutex
	sessionID   string
	taskCounter int
}

// New creates a Company. The store is optional; with a nil store deliverables
// are not recorded. A session is created lazily on the first directive.
func New(cfg *config.Config, sched *scheduler.Scheduler, bus *events.Bus, store persistence.Store) *Company {
	return &Company{
		cfg:       cfg,
		scheduler: sched,
		bus:       bus,
		store:     store,
	}
}

// SessionID returns the current session id, or "" before the first directive.
func (c *Company) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// HandleDirective classifies a free-text directive into department subtasks,
// runs them through a fresh workflow, records deliverables, and returns the
// per-task outcomes. Subtasks routed to departments with no registered agent
// are dropped with a warning, mirroring how an executive ignores departments
// the company does not have.
func (c *Company) HandleDirective(ctx context.Context, directive string) (*DirectiveReport, error) {
	sessionID, err := c.ensureSession(ctx, directive)
	if err != nil {
		return nil, err
	}

	subtasks := routing.Classify(directive, c.cfg.Company.Sector)
	log.Printf("company: directive mapped to %d subtasks", len(subtasks))

	manager := workflow.NewManager(c.scheduler, workflow.WithObserver(c.publishTaskEvent))

	sequential, parallel := 0, 0
	for _, st := range subtasks {
		if !c.scheduler.Has(st.Department) {
			log.Printf("company: no agent for department %q, dropping subtask", st.Department)
			continue
		}
		manager.AddTask(&workflow.Task{
			ID:           c.nextTaskID(),
			Description:  st.Description,
			Department:   st.Department,
			Dependencies: st.Dependencies,
			Phase:        st.Phase,
			Priority:     st.Priority,
		})
		if st.Phase == workflow.PhaseSequential {
			sequential++
		} else {
			parallel++
		}
	}

	manager.PlanExecution()
	c.bus.Publish(events.TopicWorkflow, events.WorkflowStartedEvent{
		Directive:  directive,
		Sequential: sequential,
		Parallel:   parallel,
		Timestamp:  time.Now(),
	})

	execErr := manager.ExecuteWorkflow(ctx)

	report := c.buildReport(directive, sessionID, manager)
	c.recordReport(ctx, sessionID, report)
	c.publishFinished(directive, report)

	if execErr != nil {
		return report, fmt.Errorf("workflow aborted: %w", execErr)
	}
	return report, nil
}

// SendMessage routes an inter-agent message over the bus and records it.
func (c *Company) SendMessage(ctx context.Context, sender, recipient, content string) error {
	c.bus.Publish(events.TopicAgent, events.AgentMessageEvent{
		Sender:    sender,
		Recipient: recipient,
		Content:   content,
		Timestamp: time.Now(),
	})

	c.mu.Lock()
	sessionID := c.sessionID
	c.mu.Unlock()

	if c.store == nil || sessionID == "" {
		return nil
	}
	return c.store.SaveAgentMessage(ctx, sessionID, persistence.AgentMessage{
		Sender:    sender,
		Recipient: recipient,
		Content:   content,
	})
}

func (c *Company) ensureSession(ctx context.Context, project string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sessionID != "" || c.store == nil {
		return c.sessionID, nil
	}

	id, err := c.store.CreateSession(ctx, project, "oneshot")
	if err != nil {
		return "", fmt.Errorf("creating session: %w", err)
	}
	c.sessionID = id
	log.Printf("company: session created: %s", id)
	return id, nil
}

func (c *Company) nextTaskID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.taskCounter++
	return fmt.Sprintf("task_%d", c.taskCounter)
}

func (c *Company) publishTaskEvent(task *workflow.Task) {
	switch task.Status {
	case workflow.StatusCompleted:
		c.bus.Publish(events.TopicTask, events.TaskCompletedEvent{
			ID:         task.ID,
			Department: task.Department,
			Result:     task.Result.Output,
			Timestamp:  time.Now(),
		})
	case workflow.StatusFailed:
		c.bus.Publish(events.TopicTask, events.TaskFailedEvent{
			ID:         task.ID,
			Department: task.Department,
			Err:        task.Result.Err,
			Timestamp:  time.Now(),
		})
	}
}

func (c *Company) buildReport(directive, sessionID string, manager *workflow.Manager) *DirectiveReport {
	report := &DirectiveReport{Directive: directive, SessionID: sessionID}
	for _, task := range manager.Tasks() {
		outcome := TaskOutcome{
			TaskID:      task.ID,
			Department:  task.Department,
			Description: task.Description,
			Status:      task.Status,
		}
		if task.Result != nil {
			outcome.Result = task.Result.Output
			outcome.Err = task.Result.Err
		}
		report.Tasks = append(report.Tasks, outcome)
	}
	return report
}

// recordReport persists settled tasks only; pending tasks produced no
// deliverable worth recording.
func (c *Company) recordReport(ctx context.Context, sessionID string, report *DirectiveReport) {
	if c.store == nil {
		return
	}
	for _, outcome := range report.Tasks {
		if outcome.Status != workflow.StatusCompleted && outcome.Status != workflow.StatusFailed {
			continue
		}
		rec := persistence.TaskReport{
			TaskID:      outcome.TaskID,
			Department:  outcome.Department,
			Description: outcome.Description,
			Status:      outcome.Status.String(),
			Result:      outcome.Result,
		}
		if outcome.Err != nil {
			rec.Error = outcome.Err.Error()
		}
		if err := c.store.SaveTaskReport(ctx, sessionID, rec); err != nil {
			log.Printf("WARNING: failed to record task report %q: %v", outcome.TaskID, err)
		}
	}
}

func (c *Company) publishFinished(directive string, report *DirectiveReport) {
	completed, failed, pending := 0, 0, 0
	for _, outcome := range report.Tasks {
		switch outcome.Status {
		case workflow.StatusCompleted:
			completed++
		case workflow.StatusFailed:
			failed++
		default:
			pending++
		}
	}
	c.bus.Publish(events.TopicWorkflow, events.WorkflowFinishedEvent{
		Directive: directive,
		Completed: completed,
		Failed:    failed,
		Pending:   pending,
		Timestamp: time.Now(),
	})
}
