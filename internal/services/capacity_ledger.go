package services

import (
	"context"
	"fmt"
	"time"

	"github.com/biyonik/ticketbox-core/internal/models"
	"github.com/biyonik/ticketbox-core/internal/repositories"
)

// CapacityLedger, sipariş başına adet sınırlarını ve satılan adetleri
// yönetir. Kapasite sepete eklemede değil, satın alma anında tüketilir.
type CapacityLedger struct {
	store repositories.Store
}

func NewCapacityLedger(store repositories.Store) *CapacityLedger {
	return &CapacityLedger{store: store}
}

// Reserve, qty'nin bilet türünün sipariş başına sınırları içinde olduğunu
// doğrular. Kapasiteden düşüm yapmaz.
func (l *CapacityLedger) Reserve(ticket *models.Ticket, qty int64) error {
	if qty < ticket.MinQtyPerOrder || qty > ticket.MaxQtyPerOrder {
		return models.ErrQuantityOutOfRange
	}
	return nil
}

// CommitSold, satılan adedi qty kadar artırır. sold + qty > capacity ise
// ErrCapacityExceeded döner ve hiçbir değişiklik yapılmaz. Artış koşullu
// bir UPDATE ile yapıldığından eşzamanlı satın almalar kapasiteyi aşamaz.
func (l *CapacityLedger) CommitSold(ctx context.Context, ticketID, qty int64, at time.Time) error {
	if qty <= 0 {
		return models.ErrQuantityOutOfRange
	}

	err := l.store.Tickets().IncrementSold(ctx, ticketID, qty, at)
	if err != nil {
		return fmt.Errorf("commit sold for ticket %d: %w", ticketID, conflictAs(err, models.ErrCapacityExceeded))
	}
	return nil
}
