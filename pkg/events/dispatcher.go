// -----------------------------------------------------------------------------
// Event Dispatcher
// -----------------------------------------------------------------------------
// Olay adına göre listener kaydı ve dağıtımı. Wildcard ("*") ile kayıtlı
// listener'lar her olayı alır.
//
// DispatchAsync ile başlatılan goroutine'ler WaitGroup ile izlenir;
// Shutdown bunların bitmesini bekler, kapanış sonrası gelen olaylar
// reddedilir.
// -----------------------------------------------------------------------------

package events

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Dispatcher, thread-safe olay dağıtıcısı.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
	logger    Logger
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewDispatcher(logger Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		listeners: make(map[string][]Listener),
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Listen, eventName için listener kaydeder.
func (d *Dispatcher) Listen(eventName string, listener Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.listeners[eventName] = append(d.listeners[eventName], listener)
	d.logger.Printf("✅ Listener registered for event: %s", eventName)
}

// Subscribe, aynı listener'ı birden fazla olaya kaydeder.
func (d *Dispatcher) Subscribe(eventNames []string, listener Listener) {
	for _, eventName := range eventNames {
		d.Listen(eventName, listener)
	}
}

// Dispatch, olayı senkron olarak tüm listener'lara iletir. Bir listener'ın
// hatası diğerlerini durdurmaz; son hata döner.
func (d *Dispatcher) Dispatch(event Event) error {
	d.mu.RLock()
	listeners := make([]Listener, 0, len(d.listeners[event.Name()])+len(d.listeners[Wildcard]))
	listeners = append(listeners, d.listeners[event.Name()]...)
	listeners = append(listeners, d.listeners[Wildcard]...)
	d.mu.RUnlock()

	if len(listeners) == 0 {
		return nil
	}

	var lastError error
	for _, listener := range listeners {
		if err := listener.Handle(event); err != nil {
			lastError = err
			d.logger.Printf("❌ Listener error for '%s': %v", event.Name(), err)
		}
	}
	return lastError
}

// DispatchAsync, olayı ayrı bir goroutine'de dağıtır.
func (d *Dispatcher) DispatchAsync(event Event) {
	select {
	case <-d.ctx.Done():
		d.logger.Printf("⚠️  Dispatcher is shutting down, async event '%s' ignored", event.Name())
		return
	default:
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		_ = d.Dispatch(event)
	}()
}

// Stats, olay başına kayıtlı listener sayısını döndürür.
func (d *Dispatcher) Stats() map[string]int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stats := make(map[string]int, len(d.listeners))
	for event, listeners := range d.listeners {
		stats[event] = len(listeners)
	}
	return stats
}

// Shutdown, yeni async olayları reddeder ve devam edenleri bekler.
func (d *Dispatcher) Shutdown() {
	d.logger.Println("🔄 Shutting down event dispatcher...")
	d.cancel()
	d.wg.Wait()
	d.logger.Println("✅ Event dispatcher shutdown complete")
}

// ShutdownWithTimeout, Shutdown gibi çalışır ancak en fazla timeout kadar
// bekler.
func (d *Dispatcher) ShutdownWithTimeout(timeout time.Duration) error {
	d.logger.Printf("🔄 Shutting down event dispatcher (timeout: %v)...", timeout)
	d.cancel()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Println("✅ Event dispatcher shutdown complete")
		return nil
	case <-time.After(timeout):
		d.logger.Println("⚠️  Event dispatcher shutdown timeout - some events may not have completed")
		return fmt.Errorf("shutdown timeout exceeded")
	}
}
