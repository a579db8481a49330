package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/biyonik/ticketbox-core/internal/clock"
	"github.com/biyonik/ticketbox-core/internal/models"
	"github.com/biyonik/ticketbox-core/internal/repositories/memory"
	"github.com/biyonik/ticketbox-core/pkg/auth"
	"github.com/biyonik/ticketbox-core/pkg/cache"
	"github.com/biyonik/ticketbox-core/pkg/credential"
	"github.com/biyonik/ticketbox-core/pkg/events"
)

// t0, etkinliklerin oluşturulduğu an. Etkinlik t0+1h'de başlar, satış
// t0+2h ile t0+9d arasındadır.
var t0 = time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)

const (
	eventStartOffset = time.Hour
	eventEndOffset   = 10 * 24 * time.Hour
	saleStartOffset  = 2 * time.Hour
	saleEndOffset    = 9 * 24 * time.Hour
	onSaleOffset     = 3 * time.Hour
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) DispatchAsync(event events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) count(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Name() == name {
			n++
		}
	}
	return n
}

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *memory.Store
	clock *clock.Fixed
	pub   *recordingPublisher

	signer    *credential.Signer
	users     *UserService
	carts     *CartService
	catalog   *CatalogService
	approvals *ApprovalService
	creds     *CredentialService

	relationshipID int64
	approverID     int64
	emails         int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := log.New(io.Discard, "", 0)
	mc := cache.NewMemoryCache(logger, 0)
	t.Cleanup(func() { mc.Close() })

	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		store: memory.NewStore(),
		clock: clock.NewFixed(t0),
		pub:   &recordingPublisher{},
	}

	deps := Deps{
		Store:     f.store,
		Clock:     f.clock,
		Publisher: f.pub,
		Snapshots: NewSnapshotCache(mc, time.Minute, logger),
		Logger:    logger,
	}

	signer, err := credential.NewSigner("ticket-credential-secret-0123456789abcdef", "ticketbox-test")
	require.NoError(t, err)
	f.signer = signer

	session := &auth.JWTConfig{
		Secret:           "session-secret-0123456789abcdef-session",
		Issuer:           "ticketbox-test",
		ExpirationTime:   time.Hour,
		RefreshExpiresIn: 48 * time.Hour,
	}

	f.creds = NewCredentialService(deps, signer, credential.NewPNGEncoder())
	f.carts = NewCartService(deps, NewCapacityLedger(f.store), f.creds)
	f.users = NewUserService(deps, auth.NewHasher(bcrypt.MinCost), session, f.carts)
	f.catalog = NewCatalogService(deps)
	f.approvals = NewApprovalService(deps, f.users)

	rel := &models.Relationship{Name: "self"}
	require.NoError(t, f.store.Relationships().Create(f.ctx, rel))
	f.relationshipID = rel.ID

	f.approverID = f.approver()
	return f
}

// approver, APPROVER rolüne sahip yeni bir kullanıcı açar.
func (f *fixture) approver() int64 {
	f.t.Helper()
	user := f.register()
	_, err := f.users.AssignRole(f.ctx, user.ID, models.RoleApprover)
	require.NoError(f.t, err)
	return user.ID
}

func (f *fixture) register() *models.User {
	f.t.Helper()
	f.emails++
	user, err := f.users.Register(f.ctx, RegisterInput{
		Username: "user",
		Email:    fmt.Sprintf("user%d@example.com", f.emails),
		FullName: "Test User",
		Password: "password123",
	})
	require.NoError(f.t, err)
	return user
}

// pendingEvent, t0 anında hostID adına PENDING bir etkinlik açar.
func (f *fixture) pendingEvent(hostID int64) *models.Event {
	f.t.Helper()
	f.clock.Set(t0)
	event, err := f.catalog.CreateEvent(f.ctx, hostID, &models.Event{
		Name:      "Konser",
		Address:   "İstanbul",
		StartDate: t0.Add(eventStartOffset),
		EndDate:   t0.Add(eventEndOffset),
	})
	require.NoError(f.t, err)
	return event
}

func (f *fixture) pendingTicket(hostID, eventID, capacity, minQty, maxQty int64, price string) *models.Ticket {
	f.t.Helper()
	ticket, err := f.catalog.CreateTicket(f.ctx, hostID, eventID, &models.Ticket{
		Type:           "Standart",
		StartSale:      t0.Add(saleStartOffset),
		EndSale:        t0.Add(saleEndOffset),
		UnitPrice:      decimal.RequireFromString(price),
		Capacity:       capacity,
		MinQtyPerOrder: minQty,
		MaxQtyPerOrder: maxQty,
	})
	require.NoError(f.t, err)
	return ticket
}

// onSaleTicket, onaylanmış bir etkinlik ve bilet türü oluşturur ve saati
// satış penceresinin içine alır.
func (f *fixture) onSaleTicket(capacity, minQty, maxQty int64, price string) *models.Ticket {
	f.t.Helper()
	host := f.register()
	event := f.pendingEvent(host.ID)
	ticket := f.pendingTicket(host.ID, event.ID, capacity, minQty, maxQty, price)

	_, err := f.approvals.ApproveEvent(f.ctx, f.approverID, event.ID)
	require.NoError(f.t, err)

	f.clock.Set(t0.Add(onSaleOffset))
	return ticket
}

func (f *fixture) addItem(buyerID, ticketID, qty int64) *models.OrderTicket {
	f.t.Helper()
	item, err := f.carts.AddLineItem(f.ctx, buyerID, models.LineItemRequest{
		TicketID:       ticketID,
		RelationshipID: f.relationshipID,
		OwnerName:      "Ayşe Yılmaz",
		SubQuantity:    qty,
	})
	require.NoError(f.t, err)
	return item
}

// purchasedItem, tek kalemli bir sepeti satın alır ve kalemi döndürür.
func (f *fixture) purchasedItem() *models.OrderTicket {
	f.t.Helper()
	ticket := f.onSaleTicket(10, 1, 5, "100")
	buyer := f.register()
	f.addItem(buyer.ID, ticket.ID, 1)

	order, err := f.carts.Purchase(f.ctx, buyer.ID)
	require.NoError(f.t, err)
	require.Len(f.t, order.OrderTickets, 1)
	return order.OrderTickets[0]
}
