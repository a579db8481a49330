package queue

import (
	"context"
	"log"
	"sync"
	"time"
)

// MemoryQueue, tek process içinde çalışan kuyruk. Redis olmadan geliştirme
// ortamında ve testlerde kullanılır; process kapanınca job'lar kaybolur.
type MemoryQueue struct {
	mu      sync.Mutex
	ready   map[string][]*Job
	delayed map[string][]*Job
	failed  []FailedJob
	logger  *log.Logger
	now     func() time.Time
}

func NewMemoryQueue(logger *log.Logger) *MemoryQueue {
	return &MemoryQueue{
		ready:   make(map[string][]*Job),
		delayed: make(map[string][]*Job),
		logger:  logger,
		now:     time.Now,
	}
}

func (m *MemoryQueue) Push(ctx context.Context, queue string, job *Job) error {
	return m.Later(ctx, queue, job, 0)
}

func (m *MemoryQueue) Later(_ context.Context, queue string, job *Job, delay time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	copied := *job
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = now
	}
	copied.AvailableAt = now.Add(delay)

	if delay > 0 {
		m.delayed[queue] = append(m.delayed[queue], &copied)
		return nil
	}
	m.ready[queue] = append(m.ready[queue], &copied)
	return nil
}

func (m *MemoryQueue) Pop(_ context.Context, queue string) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	pending := m.delayed[queue][:0]
	for _, job := range m.delayed[queue] {
		if !job.AvailableAt.After(now) {
			m.ready[queue] = append(m.ready[queue], job)
			continue
		}
		pending = append(pending, job)
	}
	m.delayed[queue] = pending

	if len(m.ready[queue]) == 0 {
		return nil, nil
	}
	job := m.ready[queue][0]
	m.ready[queue] = m.ready[queue][1:]
	return job, nil
}

func (m *MemoryQueue) Fail(_ context.Context, queue string, job *Job, cause error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := FailedJob{Job: job, Queue: queue, FailedAt: m.now()}
	if cause != nil {
		entry.Error = cause.Error()
	}
	m.failed = append(m.failed, entry)

	m.logger.Printf("⚠️  Job failed listesine taşındı: %s (queue: %s, attempts: %d)", job.ID, queue, job.Attempts)
	return nil
}

func (m *MemoryQueue) Size(_ context.Context, queue string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.ready[queue]) + len(m.delayed[queue])), nil
}

// Failed, failed listesinin kopyasını döndürür.
func (m *MemoryQueue) Failed() []FailedJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]FailedJob(nil), m.failed...)
}
