package scheduler

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
)

// TaskExecutor performs a unit of work for a department. Implemented by the
// role-playing agents; the scheduler treats executors as opaque.
type TaskExecutor interface {
	ExecuteTask(ctx context.Context, task string) (string, error)
}

// assignment is one queued request carrying a reply channel, so the caller
// can wait for the agent runner to settle it.
type assignment struct {
	ctx         context.Context
	description string
	replyCh     chan result
}

type result struct {
	output string
	err    error
}

// Scheduler routes task assignments to registered agents. Each agent gets its
// own buffered queue drained by a dedicated runner goroutine, so work within
// one department is serialized while departments proceed independently.
type Scheduler struct {
	mu        sync.Mutex
	agents    map[string]TaskExecutor
	queues    map[string]chan assignment
	wg        sync.WaitGroup
	queueSize int
	done      chan struct{}
	closed    bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithQueueSize overrides the per-agent queue buffer (default 16).
func WithQueueSize(n int) Option {
	return func(s *Scheduler) { s.queueSize = n }
}

// New creates an empty Scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		agents:    make(map[string]TaskExecutor),
		queues:    make(map[string]chan assignment),
		queueSize: 16,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds an agent under the given department name and starts its
// runner goroutine. Registering the same name twice replaces the executor for
// future assignments but keeps the original queue.
func (s *Scheduler) Register(name string, agent TaskExecutor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.agents[name] = agent
	if _, exists := s.queues[name]; exists {
		return
	}

	queue := make(chan assignment, s.queueSize)
	s.queues[name] = queue
	s.wg.Add(1)
	go s.runAgent(name, queue)
	log.Printf("scheduler: registered agent %q", name)
}

// runAgent drains one department's queue until the scheduler shuts down.
// Assignments still queued at shutdown are dropped; their callers observe
// the shutdown through their own context or the done channel.
func (s *Scheduler) runAgent(name string, queue chan assignment) {
	defer s.wg.Done()

	for {
		select {
		case <-s.done:
			return
		case a := <-queue:
			s.mu.Lock()
			agent := s.agents[name]
			s.mu.Unlock()

			output, err := agent.ExecuteTask(a.ctx, a.description)
			if err != nil {
				log.Printf("scheduler: agent %q task failed: %v", name, err)
			}
			// Reply channel is buffered, the send never blocks the runner.
			a.replyCh <- result{output: output, err: err}
		}
	}
}

// AssignTask enqueues a task for the named department's agent and waits for
// the outcome. Returns an error immediately if the department is not
// registered. Respects ctx at both the enqueue and the wait stage.
func (s *Scheduler) AssignTask(ctx context.Context, department, description string) (string, error) {
	s.mu.Lock()
	queue, ok := s.queues[department]
	closed := s.closed
	s.mu.Unlock()

	if !ok {
		return "", fmt.Errorf("agent %q not registered with scheduler", department)
	}
	if closed {
		return "", fmt.Errorf("scheduler is shut down")
	}

	a := assignment{
		ctx:         ctx,
		description: description,
		replyCh:     make(chan result, 1),
	}

	select {
	case queue <- a:
	case <-s.done:
		return "", fmt.Errorf("scheduler is shut down")
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case res := <-a.replyCh:
		return res.output, res.err
	case <-s.done:
		return "", fmt.Errorf("scheduler is shut down")
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// RegisteredAgents returns the sorted names of all registered departments.
func (s *Scheduler) RegisteredAgents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.agents))
	for name := range s.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a department has a registered agent.
func (s *Scheduler) Has(department string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.agents[department]
	return ok
}

// Shutdown stops all agent runners and waits for them to exit, or for ctx to
// expire. Idempotent; AssignTask fails afterwards.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
