// -----------------------------------------------------------------------------
// Queue Worker
// -----------------------------------------------------------------------------
// Her kuyruk için bir goroutine job çeker ve Type'a göre kayıtlı handler'ı
// çalıştırır. Hata dönen job, deneme hakkı bitene kadar retryDelay sonra
// tekrar kuyruğa konur; sonra failed listesine taşınır.
//
// Kullanım:
//
//	worker := queue.NewWorker(q, logger)
//	worker.Handle("mail.purchase_receipt", sendReceipt)
//	go worker.Run(ctx, "notifications")
// -----------------------------------------------------------------------------

package queue

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// Handler, bir job tipini işler.
type Handler func(ctx context.Context, job *Job) error

type Worker struct {
	queue      Queue
	logger     *log.Logger
	retryDelay time.Duration

	// Kuyruk boşken bir sonraki Pop'a kadar beklenen süre. Redis'te BLPOP
	// zaten bekler; memory driver için gereklidir.
	idleDelay time.Duration

	mu       sync.RWMutex
	handlers map[string]Handler
	wg       sync.WaitGroup
}

func NewWorker(queue Queue, logger *log.Logger) *Worker {
	return &Worker{
		queue:      queue,
		logger:     logger,
		retryDelay: 30 * time.Second,
		idleDelay:  500 * time.Millisecond,
		handlers:   make(map[string]Handler),
	}
}

// SetRetryDelay, başarısız job'ın tekrar denenmeden önce bekleyeceği süre.
func (w *Worker) SetRetryDelay(delay time.Duration) *Worker {
	w.retryDelay = delay
	return w
}

// Handle, jobType için handler kaydeder.
func (w *Worker) Handle(jobType string, handler Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[jobType] = handler
}

// Run, ctx iptal edilene kadar kuyrukları işler ve tüm goroutine'ler
// bitince döner.
func (w *Worker) Run(ctx context.Context, queues ...string) {
	if len(queues) == 0 {
		queues = []string{"default"}
	}

	w.logger.Printf("🚀 Queue worker başladı: %v", queues)
	for _, name := range queues {
		w.wg.Add(1)
		go w.loop(ctx, name)
	}
	w.wg.Wait()
	w.logger.Println("✅ Queue worker durdu")
}

func (w *Worker) loop(ctx context.Context, queueName string) {
	defer w.wg.Done()

	for {
		if ctx.Err() != nil {
			return
		}

		job, err := w.queue.Pop(ctx, queueName)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Printf("❌ Job pop hatası [%s]: %v", queueName, err)
			w.sleep(ctx, time.Second)
			continue
		}
		if job == nil {
			w.sleep(ctx, w.idleDelay)
			continue
		}

		w.process(ctx, queueName, job)
	}
}

func (w *Worker) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// process, tek bir job'ı çalıştırır ve sonucuna göre tekrar kuyruğa koyar
// ya da failed listesine taşır.
func (w *Worker) process(ctx context.Context, queueName string, job *Job) {
	w.mu.RLock()
	handler, ok := w.handlers[job.Type]
	w.mu.RUnlock()

	if !ok {
		w.logger.Printf("❌ Bilinmeyen job tipi: %s (job: %s)", job.Type, job.ID)
		w.fail(ctx, queueName, job, fmt.Errorf("handler yok: %s", job.Type))
		return
	}

	start := time.Now()
	err := w.safeHandle(ctx, handler, job)
	job.Attempts++

	if err == nil {
		w.logger.Printf("✅ Job tamamlandı: %s %s (%v)", job.Type, job.ID, time.Since(start))
		return
	}

	w.logger.Printf("❌ Job başarısız: %s %s (deneme %d/%d): %v", job.Type, job.ID, job.Attempts, job.MaxAttempts, err)
	if job.Exhausted() {
		w.fail(ctx, queueName, job, err)
		return
	}

	if relErr := w.queue.Later(ctx, queueName, job, w.retryDelay); relErr != nil {
		w.logger.Printf("❌ Job tekrar kuyruğa konamadı: %v", relErr)
	}
}

// safeHandle, handler'daki panic'i hataya çevirir; worker goroutine'i
// ayakta kalır.
func (w *Worker) safeHandle(ctx context.Context, handler Handler, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return handler(ctx, job)
}

func (w *Worker) fail(ctx context.Context, queueName string, job *Job, cause error) {
	if err := w.queue.Fail(ctx, queueName, job, cause); err != nil {
		w.logger.Printf("❌ Job failed listesine yazılamadı: %v", err)
	}
}
