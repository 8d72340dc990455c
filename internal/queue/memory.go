package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

type JobState string

const (
	StateEnqueued   JobState = "enqueued"
	StateProcessing JobState = "processing"
	StateCompleted  JobState = "completed"
	StateFailed     JobState = "failed"
)

func (s JobState) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Job is a snapshot of a job held by the memory queue.
type Job struct {
	ID      int64
	Queue   string
	Payload []byte
	State   JobState
	Reason  string
}

// DefaultRetention is how many finished jobs a Memory queue keeps for
// inspection before dropping the oldest.
const DefaultRetention = 1000

// Memory is an in-process queue with per-job state tracking. Jobs left in a
// queue when Run returns stay enqueued. Only the most recent finished jobs
// are kept; see SetRetention.
type Memory struct {
	log         *zap.Logger
	buffer      int
	concurrency int

	mu       sync.Mutex
	nextID   int64
	retain   int
	finished []int64
	jobs     map[int64]*Job
	queues   map[string]chan int64
	handlers map[string]Handler
}

func NewMemory(log *zap.Logger, buffer, concurrency int) *Memory {
	if buffer < 1 {
		buffer = 1
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Memory{
		log:         log,
		buffer:      buffer,
		concurrency: concurrency,
		retain:      DefaultRetention,
		jobs:        map[int64]*Job{},
		queues:      map[string]chan int64{},
		handlers:    map[string]Handler{},
	}
}

// SetRetention caps the number of finished jobs kept, minimum 1.
func (m *Memory) SetRetention(n int) {
	if n < 1 {
		n = 1
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retain = n
	m.pruneLocked()
}

func (m *Memory) pruneLocked() {
	for len(m.finished) > m.retain {
		delete(m.jobs, m.finished[0])
		m.finished = m.finished[1:]
	}
}

func (m *Memory) Enqueue(ctx context.Context, queue string, payload any) error {
	_, err := m.EnqueueJob(ctx, queue, payload)
	return err
}

// EnqueueJob is Enqueue returning the new job id. It blocks while the queue
// buffer is full.
func (m *Memory) EnqueueJob(ctx context.Context, queue string, payload any) (int64, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("encode %s payload: %w", queue, err)
	}

	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.jobs[id] = &Job{ID: id, Queue: queue, Payload: data, State: StateEnqueued}
	ch := m.channelLocked(queue)
	m.mu.Unlock()

	select {
	case ch <- id:
		return id, nil
	case <-ctx.Done():
		m.mu.Lock()
		delete(m.jobs, id)
		m.mu.Unlock()
		return 0, fmt.Errorf("enqueue %s: %w", queue, ctx.Err())
	}
}

func (m *Memory) channelLocked(queue string) chan int64 {
	ch, ok := m.queues[queue]
	if !ok {
		ch = make(chan int64, m.buffer)
		m.queues[queue] = ch
	}
	return ch
}

func (m *Memory) Process(queue string, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[queue] = h
	m.channelLocked(queue)
}

// Run starts workers for every registered queue and blocks until ctx is done
// and in-flight jobs have finished.
func (m *Memory) Run(ctx context.Context) error {
	m.mu.Lock()
	type binding struct {
		ch chan int64
		h  Handler
	}
	bindings := make([]binding, 0, len(m.handlers))
	for q, h := range m.handlers {
		bindings = append(bindings, binding{ch: m.queues[q], h: h})
	}
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, b := range bindings {
		for i := 0; i < m.concurrency; i++ {
			wg.Add(1)
			go func(ch chan int64, h Handler) {
				defer wg.Done()
				for {
					select {
					case <-ctx.Done():
						return
					case id := <-ch:
						m.run(ctx, id, h)
					}
				}
			}(b.ch, b.h)
		}
	}
	wg.Wait()
	return nil
}

func (m *Memory) run(ctx context.Context, id int64, h Handler) {
	job, ok := m.transition(id, StateProcessing, "")
	if !ok {
		return
	}

	err := safeCall(ctx, h, job.Payload)
	if err != nil {
		m.transition(id, StateFailed, err.Error())
		m.log.Warn("job failed", zap.String("queue", job.Queue), zap.Int64("job_id", id), zap.Error(err))
		return
	}
	m.transition(id, StateCompleted, "")
	m.log.Debug("job completed", zap.String("queue", job.Queue), zap.Int64("job_id", id))
}

func safeCall(ctx context.Context, h Handler, payload []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return h(ctx, payload)
}

// transition moves a job forward. Only enqueued -> processing and
// processing -> completed|failed are allowed.
func (m *Memory) transition(id int64, to JobState, reason string) (Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return Job{}, false
	}
	switch {
	case job.State == StateEnqueued && to == StateProcessing:
	case job.State == StateProcessing && to.Terminal():
	default:
		return *job, false
	}
	job.State = to
	job.Reason = reason
	snapshot := *job
	if to.Terminal() {
		m.finished = append(m.finished, id)
		m.pruneLocked()
	}
	return snapshot, true
}

func (m *Memory) Job(id int64) (Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Jobs returns snapshots of the retained jobs of queue, oldest first.
func (m *Memory) Jobs(queue string) []Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Job, 0)
	for _, job := range m.jobs {
		if job.Queue == queue {
			out = append(out, *job)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// WaitIdle blocks until no job is enqueued or processing.
func (m *Memory) WaitIdle(ctx context.Context) error {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for {
		if m.idle() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (m *Memory) idle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, job := range m.jobs {
		if !job.State.Terminal() {
			return false
		}
	}
	return true
}
