package workflow

// Phase determines which execution batch a task belongs to.
type Phase int

const (
	PhaseSequential Phase = iota // Strict order, one at a time
	PhaseParallel                // Concurrent dispatch, joint completion
)

// String returns the lowercase phase name.
func (p Phase) String() string {
	switch p {
	case PhaseSequential:
		return "sequential"
	case PhaseParallel:
		return "parallel"
	}
	return "unknown"
}

// Status represents the current state of a task.
// Transitions are monotonic: pending -> completed or pending -> failed.
type Status int

const (
	StatusPending   Status = iota // Not yet executed (or permanently gated)
	StatusCompleted               // Finished successfully
	StatusFailed                  // Scheduler returned an error
	StatusNotFound                // Returned by TaskStatus for unknown ids
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusNotFound:
		return "not_found"
	}
	return "unknown"
}

// Result is the tagged outcome of a task execution. Exactly one of Output
// or Err is meaningful: Err is nil on success and non-nil on failure.
type Result struct {
	Output string
	Err    error
}

// Failed reports whether the result represents a failure.
func (r *Result) Failed() bool {
	return r != nil && r.Err != nil
}

// Task represents one unit of work routed to a department. Identity is
// immutable after construction; Status and Result are populated by the
// Manager during execution.
type Task struct {
	ID           string   // Unique within a Manager's task set
	Description  string   // Free-text instruction, opaque to the engine
	Department   string   // Executor key, validated only at dispatch time
	Dependencies []string // Task ids that must complete before this task runs
	Phase        Phase
	Priority     int // Lower value runs earlier within the sequential batch
	Status       Status
	Result       *Result // Nil until the task settles
}

func cloneTask(task *Task) *Task {
	if task == nil {
		return nil
	}

	cp := *task
	if task.Dependencies != nil {
		cp.Dependencies = append([]string(nil), task.Dependencies...)
	}
	if task.Result != nil {
		r := *task.Result
		cp.Result = &r
	}
	return &cp
}
