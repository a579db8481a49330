// -----------------------------------------------------------------------------
// Domain Events
// -----------------------------------------------------------------------------
// Servisler her başarılı durum geçişinden sonra (transaction commit
// edildikten sonra) bir olay yayınlar. Dinleyiciler: cache invalidation,
// Prometheus sayaçları ve AMQP publisher.
//
// Olaylar bilgilendirme amaçlıdır; bir dinleyicinin hatası servis
// işleminin sonucunu değiştirmez.
// -----------------------------------------------------------------------------

package events

import (
	"time"
)

// Event, yayınlanan her olayın uyması gereken arayüz.
type Event interface {
	Name() string
	OccurredAt() time.Time
	Payload() interface{}
}

// BaseEvent, Event arayüzünün genel implementasyonu.
type BaseEvent struct {
	name       string
	occurredAt time.Time
	payload    interface{}
}

// NewBaseEvent, olay zamanı çağıranın saatinden gelen yeni bir olay
// oluşturur.
func NewBaseEvent(name string, occurredAt time.Time, payload interface{}) *BaseEvent {
	return &BaseEvent{
		name:       name,
		occurredAt: occurredAt,
		payload:    payload,
	}
}

func (e *BaseEvent) Name() string          { return e.name }
func (e *BaseEvent) OccurredAt() time.Time { return e.occurredAt }
func (e *BaseEvent) Payload() interface{}  { return e.payload }

// Olay isimleri. AMQP routing key olarak da kullanılır.
const (
	EventUserRegistered = "user.registered"

	EventEventCreated  = "event.created"
	EventEventUpdated  = "event.updated"
	EventEventApproved = "event.approved"
	EventEventDeclined = "event.declined"
	EventEventCanceled = "event.canceled"

	EventTicketCreated  = "ticket.created"
	EventTicketUpdated  = "ticket.updated"
	EventTicketApproved = "ticket.approved"
	EventTicketDeclined = "ticket.declined"
	EventTicketCanceled = "ticket.canceled"

	EventCartItemAdded   = "cart.item.added"
	EventCartItemUpdated = "cart.item.updated"
	EventCartItemRemoved = "cart.item.removed"

	EventOrderPurchased  = "order.purchased"
	EventCapacityRefused = "capacity.refused"

	EventCredentialScanned   = "credential.scanned"
	EventCredentialConfirmed = "credential.confirmed"
	EventCredentialRejected  = "credential.rejected"
)

// Wildcard, tüm olayları dinlemek için Listen'a verilen isimdir.
const Wildcard = "*"
