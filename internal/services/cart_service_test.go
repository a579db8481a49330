package services

import (
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyonik/ticketbox-core/internal/models"
	"github.com/biyonik/ticketbox-core/pkg/events"
)

func assertTotals(t *testing.T, f *fixture, buyerID int64, total string, qty int64) {
	t.Helper()
	cart, err := f.carts.GetCart(f.ctx, buyerID)
	require.NoError(t, err)
	assert.True(t, cart.TotalPrice.Equal(decimal.RequireFromString(total)), "total: want %s, got %s", total, cart.TotalPrice)
	assert.Equal(t, qty, cart.Quantity)
}

func TestCart_TotalsFollowLineItems(t *testing.T) {
	f := newFixture(t)
	standard := f.onSaleTicket(50, 1, 10, "10.50")
	buyer := f.register()

	item := f.addItem(buyer.ID, standard.ID, 2)
	assertTotals(t, f, buyer.ID, "21", 2)

	qty := int64(3)
	_, err := f.carts.UpdateLineItem(f.ctx, buyer.ID, item.ID, models.LineItemPatch{SubQuantity: &qty})
	require.NoError(t, err)
	assertTotals(t, f, buyer.ID, "31.5", 3)

	vip := f.onSaleTicket(5, 1, 2, "99.99")
	vipItem := f.addItem(buyer.ID, vip.ID, 2)
	assertTotals(t, f, buyer.ID, "231.48", 5)

	require.NoError(t, f.carts.RemoveLineItem(f.ctx, buyer.ID, vipItem.ID))
	assertTotals(t, f, buyer.ID, "31.5", 3)

	items, err := f.carts.CartItems(f.ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.OrderTicketInactive, items[0].Status)
	assert.Equal(t, 1, f.pub.count(events.EventCartItemRemoved))
}

func TestCart_ZeroQuantityRejected(t *testing.T) {
	f := newFixture(t)
	ticket := f.onSaleTicket(10, 1, 4, "20")
	buyer := f.register()

	_, err := f.carts.AddLineItem(f.ctx, buyer.ID, models.LineItemRequest{
		TicketID:       ticket.ID,
		RelationshipID: f.relationshipID,
		SubQuantity:    0,
	})
	require.ErrorIs(t, err, models.ErrQuantityOutOfRange)

	_, err = f.carts.AddLineItem(f.ctx, buyer.ID, models.LineItemRequest{
		TicketID:       ticket.ID,
		RelationshipID: f.relationshipID,
		SubQuantity:    5,
	})
	require.ErrorIs(t, err, models.ErrQuantityOutOfRange)

	items, err := f.carts.CartItems(f.ctx, buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
	assertTotals(t, f, buyer.ID, "0", 0)
}

func TestCart_TicketMustBeOnSale(t *testing.T) {
	f := newFixture(t)
	host := f.register()
	event := f.pendingEvent(host.ID)
	ticket := f.pendingTicket(host.ID, event.ID, 10, 1, 2, "10")
	buyer := f.register()

	_, err := f.carts.AddLineItem(f.ctx, buyer.ID, models.LineItemRequest{TicketID: ticket.ID, RelationshipID: f.relationshipID, SubQuantity: 1})
	require.ErrorIs(t, err, models.ErrTicketNotOnSale)

	_, err = f.approvals.ApproveEvent(f.ctx, f.approverID, event.ID)
	require.NoError(t, err)

	// Satış henüz başlamadı
	_, err = f.carts.AddLineItem(f.ctx, buyer.ID, models.LineItemRequest{TicketID: ticket.ID, RelationshipID: f.relationshipID, SubQuantity: 1})
	require.ErrorIs(t, err, models.ErrTicketNotOnSale)

	f.clock.Set(t0.Add(onSaleOffset))
	f.addItem(buyer.ID, ticket.ID, 1)
}

func TestCart_RelationshipNotAccepted(t *testing.T) {
	f := newFixture(t)
	friend := &models.Relationship{Name: "friend"}
	require.NoError(t, f.store.Relationships().Create(f.ctx, friend))

	host := f.register()
	event := f.pendingEvent(host.ID)
	ticket, err := f.catalog.CreateTicket(f.ctx, host.ID, event.ID, &models.Ticket{
		Type:                    "Aile",
		StartSale:               t0.Add(saleStartOffset),
		EndSale:                 t0.Add(saleEndOffset),
		UnitPrice:               decimal.NewFromInt(15),
		Capacity:                10,
		MinQtyPerOrder:          1,
		MaxQtyPerOrder:          4,
		AcceptedRelationshipIDs: []int64{f.relationshipID},
	})
	require.NoError(t, err)
	_, err = f.approvals.ApproveEvent(f.ctx, f.approverID, event.ID)
	require.NoError(t, err)
	f.clock.Set(t0.Add(onSaleOffset))

	buyer := f.register()
	_, err = f.carts.AddLineItem(f.ctx, buyer.ID, models.LineItemRequest{TicketID: ticket.ID, RelationshipID: friend.ID, SubQuantity: 1})
	require.ErrorIs(t, err, models.ErrRelationshipNotAccepted)

	_, err = f.carts.AddLineItem(f.ctx, buyer.ID, models.LineItemRequest{TicketID: ticket.ID, RelationshipID: 9999, SubQuantity: 1})
	require.ErrorIs(t, err, models.ErrRelationshipNotFound)

	f.addItem(buyer.ID, ticket.ID, 1)
}

func TestCart_ItemGuards(t *testing.T) {
	f := newFixture(t)
	ticket := f.onSaleTicket(10, 1, 5, "10")
	alice := f.register()
	bob := f.register()

	aliceItem := f.addItem(alice.ID, ticket.ID, 1)

	qty := int64(2)
	_, err := f.carts.UpdateLineItem(f.ctx, bob.ID, aliceItem.ID, models.LineItemPatch{SubQuantity: &qty})
	require.ErrorIs(t, err, models.ErrNotInCart)
	require.ErrorIs(t, f.carts.RemoveLineItem(f.ctx, bob.ID, aliceItem.ID), models.ErrNotInCart)

	_, err = f.carts.Purchase(f.ctx, alice.ID)
	require.NoError(t, err)

	_, err = f.carts.UpdateLineItem(f.ctx, alice.ID, aliceItem.ID, models.LineItemPatch{SubQuantity: &qty})
	require.ErrorIs(t, err, models.ErrOnlyCartIsUpdatable)
	assert.Equal(t, models.KindInvalidState, models.KindOf(err))
}

func TestPurchase_SingleCartInvariant(t *testing.T) {
	f := newFixture(t)
	ticket := f.onSaleTicket(10, 1, 5, "40")
	buyer := f.register()

	before, err := f.carts.GetCart(f.ctx, buyer.ID)
	require.NoError(t, err)

	f.addItem(buyer.ID, ticket.ID, 2)
	order, err := f.carts.Purchase(f.ctx, buyer.ID)
	require.NoError(t, err)

	assert.Equal(t, before.ID, order.ID)
	assert.Equal(t, models.OrderPurchased, order.Status)
	require.NotNil(t, order.PurchaseDate)
	assert.True(t, order.PurchaseDate.Equal(f.clock.Now()))
	assert.True(t, order.TotalPrice.Equal(decimal.NewFromInt(80)))

	carts, err := f.store.Orders().CartsForUpdate(f.ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, carts, 1)
	assert.NotEqual(t, order.ID, carts[0].ID)
	assert.True(t, carts[0].TotalPrice.IsZero())

	history, err := f.carts.OrderHistory(f.ctx, buyer.ID, models.Page{})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, order.ID, history[0].ID)

	stored, err := f.store.Tickets().FindByID(f.ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.Sold)

	for _, item := range order.OrderTickets {
		assert.Equal(t, models.OrderTicketActive, item.Status)
		require.NotNil(t, item.Token)
	}
	assert.Equal(t, 1, f.pub.count(events.EventOrderPurchased))
}

func TestPurchase_EmptyCart(t *testing.T) {
	f := newFixture(t)
	buyer := f.register()

	_, err := f.carts.Purchase(f.ctx, buyer.ID)
	require.ErrorIs(t, err, models.ErrEmptyCart)
}

func TestPurchase_CapacityRace(t *testing.T) {
	f := newFixture(t)
	ticket := f.onSaleTicket(1, 1, 1, "75")
	alice := f.register()
	bob := f.register()

	f.addItem(alice.ID, ticket.ID, 1)
	f.addItem(bob.ID, ticket.ID, 1)

	var (
		wg   sync.WaitGroup
		errs = make([]error, 2)
	)
	for i, buyer := range []int64{alice.ID, bob.ID} {
		wg.Add(1)
		go func(i int, buyer int64) {
			defer wg.Done()
			_, errs[i] = f.carts.Purchase(f.ctx, buyer)
		}(i, buyer)
	}
	wg.Wait()

	succeeded, refused := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, models.ErrCapacityExceeded):
			refused++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, refused)

	stored, err := f.store.Tickets().FindByID(f.ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Sold)
	assert.Equal(t, 1, f.pub.count(events.EventCapacityRefused))
}

func TestPurchase_RollsBackEveryItem(t *testing.T) {
	f := newFixture(t)
	plenty := f.onSaleTicket(100, 1, 5, "10")
	scarce := f.onSaleTicket(2, 1, 2, "50")

	rival := f.register()
	f.addItem(rival.ID, scarce.ID, 2)

	buyer := f.register()
	first := f.addItem(buyer.ID, plenty.ID, 3)
	f.addItem(buyer.ID, scarce.ID, 1)

	_, err := f.carts.Purchase(f.ctx, rival.ID)
	require.NoError(t, err)

	_, err = f.carts.Purchase(f.ctx, buyer.ID)
	require.ErrorIs(t, err, models.ErrCapacityExceeded)

	stored, err := f.store.Tickets().FindByID(f.ctx, plenty.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored.Sold)

	item, err := f.store.OrderTickets().FindByID(f.ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderTicketInactive, item.Status)
	assert.Nil(t, item.Token)

	cart, err := f.carts.GetCart(f.ctx, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderNotPurchased, cart.Status)
	assert.Len(t, cart.OrderTickets, 2)
}

func TestOrderDetail_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	ticket := f.onSaleTicket(10, 1, 5, "10")
	buyer := f.register()
	other := f.register()
	f.addItem(buyer.ID, ticket.ID, 1)

	order, err := f.carts.Purchase(f.ctx, buyer.ID)
	require.NoError(t, err)

	detail, err := f.carts.OrderDetail(f.ctx, buyer.ID, order.ID)
	require.NoError(t, err)
	assert.Len(t, detail.OrderTickets, 1)

	_, err = f.carts.OrderDetail(f.ctx, other.ID, order.ID)
	require.ErrorIs(t, err, models.ErrNotOwner)
}
