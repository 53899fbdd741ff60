package events

import "time"

// Event is the base interface for all events on the bus.
type Event interface {
	EventType() string
}

// Topic constants
const (
	TopicTask     = "task"
	TopicWorkflow = "workflow"
	TopicAgent    = "agent"
)

// Event type constants
const (
	EventTypeTaskCompleted    = "task.completed"
	EventTypeTaskFailed       = "task.failed"
	EventTypeWorkflowStarted  = "workflow.started"
	EventTypeWorkflowFinished = "workflow.finished"
	EventTypeAgentMessage     = "agent.message"
)

// TaskCompletedEvent is published when a task settles successfully.
type TaskCompletedEvent struct {
	ID         string
	Department string
	Result     string
	Timestamp  time.Time
}

func (e TaskCompletedEvent) EventType() string { return EventTypeTaskCompleted }

// TaskFailedEvent is published when a task settles with a failure.
type TaskFailedEvent struct {
	ID         string
	Department string
	Err        error
	Timestamp  time.Time
}

func (e TaskFailedEvent) EventType() string { return EventTypeTaskFailed }

// WorkflowStartedEvent is published when a directive's workflow begins.
type WorkflowStartedEvent struct {
	Directive  string
	Sequential int
	Parallel   int
	Timestamp  time.Time
}

func (e WorkflowStartedEvent) EventType() string { return EventTypeWorkflowStarted }

// WorkflowFinishedEvent is published when a directive's workflow settles.
type WorkflowFinishedEvent struct {
	Directive string
	Completed int
	Failed    int
	Pending   int
	Timestamp time.Time
}

func (e WorkflowFinishedEvent) EventType() string { return EventTypeWorkflowFinished }

// AgentMessageEvent carries an inter-agent message.
type AgentMessageEvent struct {
	Sender    string
	Recipient string
	Content   string
	Timestamp time.Time
}

func (e AgentMessageEvent) EventType() string { return EventTypeAgentMessage }
