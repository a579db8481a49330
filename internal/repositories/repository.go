// -----------------------------------------------------------------------------
// Repository Contracts
// -----------------------------------------------------------------------------
// Servisler veritabanına yalnızca bu arayüzler üzerinden erişir. İki
// implementasyon vardır: MySQL (bu paket) ve bellek içi arena
// (repositories/memory). Transaction context içinde taşınır; WithTx içinde
// çağrılan her repository metodu aynı transaction'ı kullanır.
//
// Koşullu güncellemeler (durum geçişleri, kapasite artırımı) hiçbir satır
// eşleşmediğinde ErrConflict döndürür. Hangi iş kuralının ihlal edildiğine
// servis katmanı karar verir.
// -----------------------------------------------------------------------------

package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/biyonik/ticketbox-core/internal/models"
)

// ErrConflict, koşullu bir güncellemenin hiçbir satırı etkilemediğini belirtir.
var ErrConflict = errors.New("conditional update matched no rows")

// Store, tüm repository'lere ve transaction sınırına erişim sağlar.
type Store interface {
	// WithTx, fn'i tek bir transaction içinde çalıştırır. fn hata döndürürse
	// tüm değişiklikler geri alınır. İç içe çağrılar dıştaki transaction'a
	// katılır.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	Events() EventRepository
	Tickets() TicketRepository
	Orders() OrderRepository
	OrderTickets() OrderTicketRepository
	Relationships() RelationshipRepository
	Categories() CategoryRepository
	Users() UserRepository
}

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id int64) (*models.Event, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	// TransitionStatus, from → to geçişini yapar; approverID nil değilse
	// onaylayıcıyı da yazar.
	TransitionStatus(ctx context.Context, id int64, from, to models.EventStatus, approverID *int64, at time.Time) error
	List(ctx context.Context, filter models.EventFilter, page models.Page) ([]*models.Event, error)
	SetCategories(ctx context.Context, eventID int64, categoryIDs []int64) error
	CategoryIDs(ctx context.Context, eventID int64) ([]int64, error)
}

type TicketRepository interface {
	Create(ctx context.Context, ticket *models.Ticket) error
	FindByID(ctx context.Context, id int64) (*models.Ticket, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*models.Ticket, error)
	ListByEvent(ctx context.Context, eventID int64) ([]*models.Ticket, error)
	Update(ctx context.Context, ticket *models.Ticket) error
	TransitionStatus(ctx context.Context, id int64, from, to models.TicketStatus, at time.Time) error
	// IncrementSold, sold + qty <= capacity koşuluyla sold'u artırır.
	IncrementSold(ctx context.Context, id int64, qty int64, at time.Time) error
	SetAcceptedRelationships(ctx context.Context, ticketID int64, relationshipIDs []int64) error
	AcceptedRelationships(ctx context.Context, ticketID int64) ([]int64, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id int64) (*models.Order, error)
	// CartsForUpdate, alıcının NOT_PURCHASED siparişlerini kilitleyerek döndürür.
	CartsForUpdate(ctx context.Context, buyerID int64) ([]*models.Order, error)
	ListByBuyer(ctx context.Context, buyerID int64, status *models.OrderStatus, page models.Page) ([]*models.Order, error)
	UpdateTotals(ctx context.Context, id int64, totalPrice decimal.Decimal, quantity int64, at time.Time) error
	// MarkPurchased, NOT_PURCHASED → PURCHASED geçişini yapar.
	MarkPurchased(ctx context.Context, id int64, purchaseDate time.Time) error
}

type OrderTicketRepository interface {
	Create(ctx context.Context, item *models.OrderTicket) error
	FindByID(ctx context.Context, id int64) (*models.OrderTicket, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*models.OrderTicket, error)
	ListByOrder(ctx context.Context, orderID int64) ([]*models.OrderTicket, error)
	// UpdateInactive ve DeleteInactive yalnızca INACTIVE kalemlerde çalışır.
	UpdateInactive(ctx context.Context, item *models.OrderTicket) error
	DeleteInactive(ctx context.Context, id int64) error
	// Activate, INACTIVE → ACTIVE geçişini token ile birlikte yazar.
	Activate(ctx context.Context, id int64, token string, at time.Time) error
	TransitionStatus(ctx context.Context, id int64, from, to models.OrderTicketStatus, at time.Time) error
}

type RelationshipRepository interface {
	Create(ctx context.Context, rel *models.Relationship) error
	FindByID(ctx context.Context, id int64) (*models.Relationship, error)
	List(ctx context.Context) ([]*models.Relationship, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	FindByID(ctx context.Context, id int64) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id int64) error
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	AssignRole(ctx context.Context, userID int64, role models.Role) error
	// Update, kullanıcı adını, ad soyadı ve şifre hash'ini yazar.
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, page models.Page) ([]*models.User, error)
}
