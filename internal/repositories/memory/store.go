// Package memory, repositories arayüzlerinin bellek içi implementasyonudur.
//
// Tüm varlıklar id ile anahtarlanmış map'lerde (arena) tutulur; ilişkiler
// yalnızca id referansıdır. WithTx tek bir mutex altında çalışır ve fn hata
// döndürürse verinin transaction öncesi kopyasını geri yükler. Bu sayede
// servis katmanı MySQL ile aynı atomiklik garantilerine sahip olur.
//
// DB_DRIVER=memory ile geliştirme ortamında ve servis testlerinde kullanılır.
package memory

import (
	"context"
	"sync"

	"github.com/biyonik/ticketbox-core/internal/models"
	"github.com/biyonik/ticketbox-core/internal/repositories"
)

type txKey struct{}

// Store, bellek içi repositories.Store implementasyonudur.
type Store struct {
	mu   sync.Mutex
	data *dataset
}

var _ repositories.Store = (*Store)(nil)

type dataset struct {
	nextID int64

	events          map[int64]models.Event
	eventCategories map[int64][]int64
	tickets         map[int64]models.Ticket
	ticketRels      map[int64][]int64
	orders          map[int64]models.Order
	orderTickets    map[int64]models.OrderTicket
	relationships   map[int64]models.Relationship
	categories      map[int64]models.Category
	users           map[int64]models.User
}

// NewStore, boş bir bellek içi store oluşturur.
func NewStore() *Store {
	return &Store{data: newDataset()}
}

func newDataset() *dataset {
	return &dataset{
		events:          make(map[int64]models.Event),
		eventCategories: make(map[int64][]int64),
		tickets:         make(map[int64]models.Ticket),
		ticketRels:      make(map[int64][]int64),
		orders:          make(map[int64]models.Order),
		orderTickets:    make(map[int64]models.OrderTicket),
		relationships:   make(map[int64]models.Relationship),
		categories:      make(map[int64]models.Category),
		users:           make(map[int64]models.User),
	}
}

func (d *dataset) clone() *dataset {
	c := newDataset()
	c.nextID = d.nextID
	for k, v := range d.events {
		c.events[k] = v
	}
	for k, v := range d.eventCategories {
		c.eventCategories[k] = append([]int64(nil), v...)
	}
	for k, v := range d.tickets {
		c.tickets[k] = v
	}
	for k, v := range d.ticketRels {
		c.ticketRels[k] = append([]int64(nil), v...)
	}
	for k, v := range d.orders {
		c.orders[k] = v
	}
	for k, v := range d.orderTickets {
		c.orderTickets[k] = v
	}
	for k, v := range d.relationships {
		c.relationships[k] = v
	}
	for k, v := range d.categories {
		c.categories[k] = v
	}
	for k, v := range d.users {
		v.Roles = append([]models.Role(nil), v.Roles...)
		c.users[k] = v
	}
	return c
}

func (d *dataset) newID() int64 {
	d.nextID++
	return d.nextID
}

// WithTx, fn'i store kilidi altında çalıştırır; hata durumunda veriyi
// geri yükler. İç içe çağrılar dıştaki transaction'a katılır.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	defer func() {
		if r := recover(); r != nil {
			s.data = snapshot
			panic(r)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// lock, transaction dışındaki tekil çağrılar için kilidi alır.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) Events() repositories.EventRepository               { return eventRepo{s} }
func (s *Store) Tickets() repositories.TicketRepository             { return ticketRepo{s} }
func (s *Store) Orders() repositories.OrderRepository               { return orderRepo{s} }
func (s *Store) OrderTickets() repositories.OrderTicketRepository   { return orderTicketRepo{s} }
func (s *Store) Relationships() repositories.RelationshipRepository { return relationshipRepo{s} }
func (s *Store) Categories() repositories.CategoryRepository        { return categoryRepo{s} }
func (s *Store) Users() repositories.UserRepository                 { return userRepo{s} }

// Ping, MySQL store ile aynı sağlık kontrolü arayüzünü sağlar.
func (s *Store) Ping(context.Context) error { return nil }

func copyInt64Ptr(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func paginate[T any](items []T, page models.Page) []T {
	offset, limit := page.Offset(), page.Limit()
	if offset >= len(items) {
		return make([]T, 0)
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
