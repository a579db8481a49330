// Package clock, servislere zamanın dışarıdan verilmesini sağlar.
// Durum hesaplamaları (UPCOMING/RUNNING/ENDED gibi) global saat yerine
// buradan okunur.
package clock

import (
	"sync"
	"time"
)

// Clock, şu anki zamanı döndürür.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// NewSystem, time.Now ile çalışan (UTC) bir saat döndürür.
func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// Fixed, testler için elle ilerletilebilen bir saattir.
type Fixed struct {
	mu  sync.RWMutex
	now time.Time
}

// NewFixed, her zaman verilen anı döndüren bir saat üretir.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{now: t.UTC()}
}

func (f *Fixed) Now() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.now
}

// Advance, saati d kadar ileri alır.
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// Set, saati verilen ana ayarlar.
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	f.now = t.UTC()
	f.mu.Unlock()
}
