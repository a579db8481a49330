// -----------------------------------------------------------------------------
// Services
// -----------------------------------------------------------------------------
// Bilet yaşam döngüsünün iş kuralları bu pakette yaşar. Servisler
// veritabanına repositories.Store üzerinden erişir, saati clock.Clock'tan
// okur ve her başarılı geçişten sonra (commit sonrası) bir yaşam döngüsü
// olayı yayınlar.
//
// Hatalar models paketindeki tipli hatalardır; servisler bunları
// fmt.Errorf("...: %w", err) ile sarmalayıp yukarı taşır.
// -----------------------------------------------------------------------------

package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/biyonik/ticketbox-core/internal/clock"
	"github.com/biyonik/ticketbox-core/internal/models"
	"github.com/biyonik/ticketbox-core/internal/repositories"
	"github.com/biyonik/ticketbox-core/pkg/cache"
	"github.com/biyonik/ticketbox-core/pkg/events"
)

// Publisher, yaşam döngüsü olaylarının gönderildiği hedef.
// *events.Dispatcher bu arayüzü sağlar.
type Publisher interface {
	DispatchAsync(event events.Event)
}

// Deps, tüm servislerin paylaştığı bağımlılıklar.
type Deps struct {
	Store     repositories.Store
	Clock     clock.Clock
	Publisher Publisher
	Snapshots *SnapshotCache
	Logger    *log.Logger
}

func (d Deps) publish(name string, payload interface{}) {
	if d.Publisher == nil {
		return
	}
	d.Publisher.DispatchAsync(events.NewBaseEvent(name, d.Clock.Now(), payload))
}

func (d Deps) invalidate(ctx context.Context, eventIDs ...int64) {
	if d.Snapshots != nil {
		d.Snapshots.Invalidate(ctx, eventIDs...)
	}
}

// conflictAs, koşullu güncellemenin ErrConflict hatasını iş kuralına özgü
// hataya çevirir.
func conflictAs(err error, target error) error {
	if errors.Is(err, repositories.ErrConflict) {
		return target
	}
	return err
}

// -----------------------------------------------------------------------------
// Event payloads
// -----------------------------------------------------------------------------

type EventChanged struct {
	EventID int64              `json:"event_id"`
	Status  models.EventStatus `json:"status"`
	ActorID int64              `json:"actor_id"`
}

type TicketChanged struct {
	TicketID int64               `json:"ticket_id"`
	EventID  int64               `json:"event_id"`
	Status   models.TicketStatus `json:"status"`
	ActorID  int64               `json:"actor_id"`
}

type CartChanged struct {
	BuyerID       int64 `json:"buyer_id"`
	OrderID       int64 `json:"order_id"`
	OrderTicketID int64 `json:"order_ticket_id"`
}

type OrderPurchased struct {
	OrderID    int64           `json:"order_id"`
	BuyerID    int64           `json:"buyer_id"`
	Quantity   int64           `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
	EventIDs   []int64         `json:"event_ids"`
}

// PurchasedQuantity, monitoring.PurchaseSummary implementasyonu.
func (o OrderPurchased) PurchasedQuantity() int64 { return o.Quantity }

type CapacityRefused struct {
	BuyerID  int64 `json:"buyer_id"`
	TicketID int64 `json:"ticket_id"`
}

type CredentialChecked struct {
	OrderTicketID int64  `json:"order_ticket_id,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

type UserRegistered struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

// -----------------------------------------------------------------------------
// Event snapshot cache
// -----------------------------------------------------------------------------

// SnapshotCache, etkinlik detay görüntüsünü (etkinlik + bilet türleri +
// kategoriler) cache'ler. Saklanan değer veritabanındaki durumdur; zamana
// bağlı durumlar okuma anında yeniden hesaplanır.
type SnapshotCache struct {
	cache  cache.Cache
	ttl    time.Duration
	logger *log.Logger
}

func NewSnapshotCache(c cache.Cache, ttl time.Duration, logger *log.Logger) *SnapshotCache {
	return &SnapshotCache{cache: c, ttl: ttl, logger: logger}
}

func eventKey(id int64) string {
	return fmt.Sprintf("event:%d", id)
}

func (s *SnapshotCache) Load(ctx context.Context, eventID int64, load func(ctx context.Context) (*models.Event, error)) (*models.Event, error) {
	return cache.Remember(ctx, s.cache, eventKey(eventID), s.ttl, load)
}

func (s *SnapshotCache) Invalidate(ctx context.Context, eventIDs ...int64) {
	if len(eventIDs) == 0 {
		return
	}
	keys := make([]string, len(eventIDs))
	for i, id := range eventIDs {
		keys[i] = eventKey(id)
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Printf("⚠️  Etkinlik cache temizlenemedi %v: %v", eventIDs, err)
	}
}
