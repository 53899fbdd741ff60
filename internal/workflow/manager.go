package workflow

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Scheduler executes a task description on behalf of a department. It is the
// only source of real asynchrony in the engine: calls may block for an
// unbounded duration and may fail with an implementation-defined error.
// Retry, if desired, is the scheduler's responsibility, not the engine's.
type Scheduler interface {
	AssignTask(ctx context.Context, department, description string) (string, error)
}

// Observer receives task status transitions as they happen. Used to feed the
// event bus without coupling the engine to it. May be nil.
type Observer func(task *Task)

// DefaultPacing is the delay inserted after each executed sequential task,
// to avoid overwhelming downstream executors.
const DefaultPacing = time.Second

// phaseBatch is one entry of the execution plan.
type phaseBatch struct {
	phase Phase
	tasks []*Task
}

// Manager owns the task set, computes an execution plan (sequential batch,
// then parallel batch) and drives it to completion, tracking status and
// results. Tasks live for the Manager's whole lifetime; they are never
// destroyed or re-executed once settled.
type Manager struct {
	mu        sync.Mutex
	scheduler Scheduler
	tasks     map[string]*Task
	plan      []phaseBatch
	completed map[string]struct{}
	pacing    time.Duration
	observer  Observer
}

// Option configures a Manager.
type Option func(*Manager)

// WithPacing overrides the inter-task pacing delay of the sequential phase.
func WithPacing(d time.Duration) Option {
	return func(m *Manager) { m.pacing = d }
}

// WithObserver registers a callback invoked after every task status change.
func WithObserver(obs Observer) Option {
	return func(m *Manager) { m.observer = obs }
}

// NewManager creates a Manager bound to the given scheduler for its lifetime.
func NewManager(scheduler Scheduler, opts ...Option) *Manager {
	m := &Manager{
		scheduler: scheduler,
		tasks:     make(map[string]*Task),
		completed: make(map[string]struct{}),
		pacing:    DefaultPacing,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddTask inserts a task into the workflow, overwriting silently if the id
// already exists. Uniqueness is the caller's responsibility.
func (m *Manager) AddTask(task *Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[task.ID] = cloneTask(task)
}

// PlanExecution partitions the current task set into a sequential and a
// parallel batch. The sequential batch is sorted by (priority ascending,
// dependency count ascending); the parallel batch is left unordered.
// Recomputing replaces any previous plan. Planning never touches the
// scheduler, never blocks, and does not mutate tasks.
func (m *Manager) PlanExecution() {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sequential, parallel []*Task
	for _, task := range m.tasks {
		switch task.Phase {
		case PhaseSequential:
			sequential = append(sequential, task)
		default:
			parallel = append(parallel, task)
		}
	}

	sort.SliceStable(sequential, func(i, j int) bool {
		if sequential[i].Priority != sequential[j].Priority {
			return sequential[i].Priority < sequential[j].Priority
		}
		return len(sequential[i].Dependencies) < len(sequential[j].Dependencies)
	})

	m.plan = nil
	if len(sequential) > 0 {
		m.plan = append(m.plan, phaseBatch{phase: PhaseSequential, tasks: sequential})
	}
	if len(parallel) > 0 {
		m.plan = append(m.plan, phaseBatch{phase: PhaseParallel, tasks: parallel})
	}

	log.Printf("workflow: planned execution: %d sequential, %d parallel", len(sequential), len(parallel))
}

// ExecuteWorkflow runs the planned phases strictly in order: the sequential
// batch fully completes (including pacing) before the parallel batch begins.
// If PlanExecution was never called the plan is empty and nothing executes.
//
// A scheduler error during the sequential phase propagates and aborts the
// remaining phases. Parallel failures are isolated per task: the task is
// marked failed and its siblings run to completion.
func (m *Manager) ExecuteWorkflow(ctx context.Context) error {
	m.mu.Lock()
	plan := make([]phaseBatch, len(m.plan))
	copy(plan, m.plan)
	m.mu.Unlock()

	for _, batch := range plan {
		log.Printf("workflow: executing %s phase with %d tasks", batch.phase, len(batch.tasks))
		if batch.phase == PhaseSequential {
			if err := m.executeSequential(ctx, batch.tasks); err != nil {
				return err
			}
		} else {
			if err := m.executeParallel(ctx, batch.tasks); err != nil {
				return err
			}
		}
	}

	m.mu.Lock()
	finished := len(m.completed)
	m.mu.Unlock()
	log.Printf("workflow: execution finished, %d tasks completed", finished)
	return nil
}

// executeSequential runs tasks one at a time in the planned order. Tasks with
// unmet dependencies are skipped for this pass (left pending) and do not
// block later tasks in the batch. A pacing delay follows every task that was
// actually dispatched, not skipped ones.
func (m *Manager) executeSequential(ctx context.Context, tasks []*Task) error {
	for _, task := range tasks {
		m.mu.Lock()
		if !m.canExecute(task) {
			m.mu.Unlock()
			log.Printf("workflow: skipping task %q, dependencies not met", task.ID)
			continue
		}
		department, description := task.Department, task.Description
		m.mu.Unlock()

		output, err := m.scheduler.AssignTask(ctx, department, description)
		if err != nil {
			return fmt.Errorf("sequential task %q: %w", task.ID, err)
		}
		m.settle(task, output, nil)

		select {
		case <-time.After(m.pacing):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// executeParallel dispatches all tasks whose dependency gate passes to the
// scheduler concurrently and waits for the whole batch to settle. The gate is
// evaluated once, up front: tasks in the same batch do not unblock each other
// mid-batch. Gated tasks stay pending.
func (m *Manager) executeParallel(ctx context.Context, tasks []*Task) error {
	m.mu.Lock()
	executable := make([]*Task, 0, len(tasks))
	for _, task := range tasks {
		if m.canExecute(task) {
			executable = append(executable, task)
		} else {
			log.Printf("workflow: skipping task %q, dependencies not met", task.ID)
		}
	}
	m.mu.Unlock()

	if len(executable) == 0 {
		log.Printf("workflow: no executable parallel tasks")
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, task := range executable {
		g.Go(func() error {
			output, err := m.scheduler.AssignTask(gctx, task.Department, task.Description)
			// Task outcome lives on the task record; returning an error here
			// would cancel siblings, so failures settle in place instead.
			m.settle(task, output, err)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// settle records a task's terminal state and notifies the observer.
// Concurrent callers from the parallel phase write to disjoint task records,
// but the completed-set is shared, so all mutation happens under the lock.
func (m *Manager) settle(task *Task, output string, err error) {
	m.mu.Lock()
	if err != nil {
		task.Status = StatusFailed
		task.Result = &Result{Err: err}
		log.Printf("workflow: task %q failed: %v", task.ID, err)
	} else {
		task.Status = StatusCompleted
		task.Result = &Result{Output: output}
		m.completed[task.ID] = struct{}{}
	}
	obs := m.observer
	snapshot := cloneTask(task)
	m.mu.Unlock()

	if obs != nil {
		obs(snapshot)
	}
}

// canExecute reports whether every declared dependency of the task is in the
// completed-set. An empty dependency list is trivially satisfiable. Ids that
// never correspond to a completed task keep the gate closed forever.
// Caller must hold m.mu.
func (m *Manager) canExecute(task *Task) bool {
	for _, depID := range task.Dependencies {
		if _, ok := m.completed[depID]; !ok {
			return false
		}
	}
	return true
}

// TaskStatus returns the current status of the task with the given id, or
// StatusNotFound if no such task exists.
func (m *Manager) TaskStatus(id string) Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[id]
	if !ok {
		return StatusNotFound
	}
	return task.Status
}

// CompletedTasks returns a snapshot of all tasks that completed successfully,
// in no guaranteed order.
func (m *Manager) CompletedTasks() []*Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	var done []*Task
	for _, task := range m.tasks {
		if task.Status == StatusCompleted {
			done = append(done, cloneTask(task))
		}
	}
	return done
}

// Tasks returns a snapshot of every task in the workflow.
func (m *Manager) Tasks() []*Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := make([]*Task, 0, len(m.tasks))
	for _, task := range m.tasks {
		tasks = append(tasks, cloneTask(task))
	}
	return tasks
}
