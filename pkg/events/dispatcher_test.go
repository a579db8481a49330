// -----------------------------------------------------------------------------
// Event Dispatcher Tests
// -----------------------------------------------------------------------------
// Testler:
// - Senkron ve async dağıtım
// - Wildcard listener
// - Graceful shutdown
// - Concurrent dispatch (race)
// -----------------------------------------------------------------------------

package events

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// MockLogger, test için basit logger.
type MockLogger struct {
	mu   sync.Mutex
	logs []string
}

func (m *MockLogger) Printf(format string, v ...interface{}) {
	m.mu.Lock()
	m.logs = append(m.logs, fmt.Sprintf(format, v...))
	m.mu.Unlock()
}

func (m *MockLogger) Println(v ...interface{}) {
	m.mu.Lock()
	m.logs = append(m.logs, fmt.Sprint(v...))
	m.mu.Unlock()
}

// countingListener, çağrı sayısını tutan listener.
type countingListener struct {
	handled atomic.Int32
	delay   time.Duration
	err     error
}

func (l *countingListener) Handle(Event) error {
	if l.delay > 0 {
		time.Sleep(l.delay)
	}
	l.handled.Add(1)
	return l.err
}

func (l *countingListener) count() int {
	return int(l.handled.Load())
}

func purchased(payload interface{}) Event {
	return NewBaseEvent(EventOrderPurchased, time.Now(), payload)
}

func TestDispatcher_BasicDispatch(t *testing.T) {
	dispatcher := NewDispatcher(&MockLogger{})
	defer dispatcher.Shutdown()

	listener := &countingListener{}
	dispatcher.Listen(EventOrderPurchased, listener)

	if err := dispatcher.Dispatch(purchased(1)); err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if listener.count() != 1 {
		t.Errorf("Expected listener to be called once, got: %d", listener.count())
	}
}

func TestDispatcher_OnlyMatchingName(t *testing.T) {
	dispatcher := NewDispatcher(&MockLogger{})
	defer dispatcher.Shutdown()

	listener := &countingListener{}
	dispatcher.Listen(EventEventApproved, listener)

	_ = dispatcher.Dispatch(purchased(1))

	if listener.count() != 0 {
		t.Errorf("Expected no calls for other event names, got: %d", listener.count())
	}
}

func TestDispatcher_Wildcard(t *testing.T) {
	dispatcher := NewDispatcher(&MockLogger{})
	defer dispatcher.Shutdown()

	all := &countingListener{}
	dispatcher.Listen(Wildcard, all)

	_ = dispatcher.Dispatch(purchased(1))
	_ = dispatcher.Dispatch(NewBaseEvent(EventTicketApproved, time.Now(), 2))

	if all.count() != 2 {
		t.Errorf("Expected wildcard listener to receive 2 events, got: %d", all.count())
	}
	if got := dispatcher.Stats()[Wildcard]; got != 1 {
		t.Errorf("Expected 1 wildcard listener in stats, got: %d", got)
	}
}

func TestDispatcher_Subscribe(t *testing.T) {
	dispatcher := NewDispatcher(&MockLogger{})
	defer dispatcher.Shutdown()

	listener := &countingListener{}
	dispatcher.Subscribe([]string{EventEventApproved, EventEventDeclined}, listener)

	_ = dispatcher.Dispatch(NewBaseEvent(EventEventApproved, time.Now(), nil))
	_ = dispatcher.Dispatch(NewBaseEvent(EventEventDeclined, time.Now(), nil))

	if listener.count() != 2 {
		t.Errorf("Expected 2 calls, got: %d", listener.count())
	}
	if got := dispatcher.Stats()[EventEventApproved]; got != 1 {
		t.Errorf("Expected 1 listener in stats, got: %d", got)
	}
}

func TestDispatcher_AsyncDispatch(t *testing.T) {
	dispatcher := NewDispatcher(&MockLogger{})

	listener := &countingListener{delay: 50 * time.Millisecond}
	dispatcher.Listen(EventOrderPurchased, listener)

	start := time.Now()
	dispatcher.DispatchAsync(purchased(1))
	if elapsed := time.Since(start); elapsed > 40*time.Millisecond {
		t.Errorf("DispatchAsync blocked for %v", elapsed)
	}

	dispatcher.Shutdown()
	if listener.count() != 1 {
		t.Errorf("Expected listener to be called once, got: %d", listener.count())
	}
}

func TestDispatcher_ShutdownWaitsForInflight(t *testing.T) {
	dispatcher := NewDispatcher(&MockLogger{})

	listener := &countingListener{delay: 50 * time.Millisecond}
	dispatcher.Listen(EventOrderPurchased, listener)

	for i := 0; i < 10; i++ {
		dispatcher.DispatchAsync(purchased(i))
	}
	dispatcher.Shutdown()

	if listener.count() != 10 {
		t.Errorf("Expected 10 listener calls, got: %d", listener.count())
	}
}

func TestDispatcher_ShutdownWithTimeout(t *testing.T) {
	dispatcher := NewDispatcher(&MockLogger{})

	listener := &countingListener{delay: 500 * time.Millisecond}
	dispatcher.Listen(EventOrderPurchased, listener)
	dispatcher.DispatchAsync(purchased(1))

	if err := dispatcher.ShutdownWithTimeout(50 * time.Millisecond); err == nil {
		t.Error("Expected timeout error, got nil")
	}
}

func TestDispatcher_AsyncAfterShutdown(t *testing.T) {
	dispatcher := NewDispatcher(&MockLogger{})

	listener := &countingListener{}
	dispatcher.Listen(EventOrderPurchased, listener)
	dispatcher.Shutdown()

	dispatcher.DispatchAsync(purchased(1))
	time.Sleep(50 * time.Millisecond)

	if listener.count() != 0 {
		t.Errorf("Expected 0 listener calls after shutdown, got: %d", listener.count())
	}
}

func TestDispatcher_NoGoroutineLeak(t *testing.T) {
	initial := runtime.NumGoroutine()

	dispatcher := NewDispatcher(&MockLogger{})
	dispatcher.Listen(EventOrderPurchased, &countingListener{})
	for i := 0; i < 100; i++ {
		dispatcher.DispatchAsync(purchased(i))
	}
	dispatcher.Shutdown()
	time.Sleep(50 * time.Millisecond)

	if final := runtime.NumGoroutine(); final > initial+5 {
		t.Errorf("Potential goroutine leak: initial=%d, final=%d", initial, final)
	}
}

func TestDispatcher_ConcurrentDispatch(t *testing.T) {
	dispatcher := NewDispatcher(&MockLogger{})
	defer dispatcher.Shutdown()

	listener := &countingListener{}
	dispatcher.Listen(EventOrderPurchased, listener)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = dispatcher.Dispatch(purchased(id*100 + j))
			}
		}(i)
	}
	wg.Wait()

	if listener.count() != 1000 {
		t.Errorf("Expected 1000 listener calls, got: %d", listener.count())
	}
}

func TestDispatcher_ListenerError(t *testing.T) {
	dispatcher := NewDispatcher(&MockLogger{})
	defer dispatcher.Shutdown()

	first := &countingListener{}
	failing := &countingListener{err: fmt.Errorf("simulated error")}
	last := &countingListener{}

	dispatcher.Listen(EventOrderPurchased, first)
	dispatcher.Listen(EventOrderPurchased, failing)
	dispatcher.Listen(EventOrderPurchased, last)

	if err := dispatcher.Dispatch(purchased(1)); err == nil {
		t.Error("Expected error from failing listener, got nil")
	}
	for i, l := range []*countingListener{first, failing, last} {
		if l.count() != 1 {
			t.Errorf("Listener %d: expected 1 call, got %d", i, l.count())
		}
	}
}

func BenchmarkDispatcher_SyncDispatch(b *testing.B) {
	dispatcher := NewDispatcher(&MockLogger{})
	defer dispatcher.Shutdown()
	dispatcher.Listen(EventOrderPurchased, &countingListener{})

	event := purchased("bench")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = dispatcher.Dispatch(event)
	}
}
