package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/biyonik/ticketbox-core/internal/models"
	"github.com/biyonik/ticketbox-core/internal/policy"
	"github.com/biyonik/ticketbox-core/pkg/events"
)

// CartService, alıcının tek sepetini ve satın alma akışını yönetir.
//
// Her alıcının tam olarak bir NOT_PURCHASED siparişi vardır. Kayıt anında
// açılır, satın almada PURCHASED olur ve aynı transaction içinde yerine
// yenisi açılır. Sepet toplamları her değişiklikten sonra kalemlerden
// yeniden hesaplanır.
type CartService struct {
	Deps
	ledger      *CapacityLedger
	credentials *CredentialService
}

func NewCartService(deps Deps, ledger *CapacityLedger, credentials *CredentialService) *CartService {
	return &CartService{
		Deps:        deps,
		ledger:      ledger,
		credentials: credentials,
	}
}

// GetCart, alıcının sepetini kalemleriyle birlikte döndürür.
func (s *CartService) GetCart(ctx context.Context, buyerID int64) (*models.Order, error) {
	var cart *models.Order
	err := s.Store.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if cart, err = s.lockCart(ctx, buyerID); err != nil {
			return err
		}
		cart.OrderTickets, err = s.itemsWithTickets(ctx, cart.ID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("sepet okunamadı: %w", err)
	}
	return cart, nil
}

// CartItems, sepetteki kalemleri döndürür.
func (s *CartService) CartItems(ctx context.Context, buyerID int64) ([]*models.OrderTicket, error) {
	cart, err := s.GetCart(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	return cart.OrderTickets, nil
}

// ProvisionCart, alıcının sepeti yoksa açar. Çağıranın transaction'ına
// katılır; kayıt ve satın alma akışları bunu kullanır.
func (s *CartService) ProvisionCart(ctx context.Context, buyerID int64) (*models.Order, error) {
	var cart *models.Order
	err := s.Store.WithTx(ctx, func(ctx context.Context) error {
		carts, err := s.Store.Orders().CartsForUpdate(ctx, buyerID)
		if err != nil {
			return err
		}
		switch len(carts) {
		case 0:
		case 1:
			cart = carts[0]
			return nil
		default:
			return models.ErrInvalidCartCount
		}

		cart = &models.Order{
			BuyerID:    buyerID,
			Status:     models.OrderNotPurchased,
			TotalPrice: decimal.Zero,
		}
		cart.Initialize(s.Clock.Now())
		return s.Store.Orders().Create(ctx, cart)
	})
	if err != nil {
		return nil, fmt.Errorf("sepet açılamadı (alıcı %d): %w", buyerID, err)
	}
	return cart, nil
}

// AddLineItem, sepete INACTIVE bir kalem ekler. Kapasite burada
// düşülmez; yalnızca o anki kalan adede göre ön kontrol yapılır.
func (s *CartService) AddLineItem(ctx context.Context, buyerID int64, req models.LineItemRequest) (*models.OrderTicket, error) {
	var (
		item *models.OrderTicket
		cart *models.Order
	)

	err := s.Store.WithTx(ctx, func(ctx context.Context) error {
		var err error

		// 1. Sepeti kilitle
		if cart, err = s.lockCart(ctx, buyerID); err != nil {
			return err
		}

		// 2. Bilet türü satışta mı?
		ticket, err := s.sellableTicket(ctx, req.TicketID)
		if err != nil {
			return err
		}

		// 3. Yakınlık ve adet kuralları
		if err := s.checkRelationship(ctx, req.TicketID, req.RelationshipID); err != nil {
			return err
		}
		if err := s.ledger.Reserve(ticket, req.SubQuantity); err != nil {
			return err
		}
		if req.SubQuantity > ticket.Remaining() {
			return models.ErrCapacityExceeded
		}

		// 4. Kalemi yaz ve toplamları yeniden hesapla
		now := s.Clock.Now()
		item = &models.OrderTicket{
			OrderID:        cart.ID,
			TicketID:       ticket.ID,
			RelationshipID: req.RelationshipID,
			OwnerName:      req.OwnerName,
			SubQuantity:    req.SubQuantity,
			Status:         models.OrderTicketInactive,
		}
		item.Initialize(now)
		if err := s.Store.OrderTickets().Create(ctx, item); err != nil {
			return err
		}
		item.Ticket = ticket

		return s.recomputeTotals(ctx, cart.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("sepete eklenemedi: %w", err)
	}

	s.publish(events.EventCartItemAdded, CartChanged{BuyerID: buyerID, OrderID: cart.ID, OrderTicketID: item.ID})
	return item, nil
}

// UpdateLineItem, sepetteki INACTIVE bir kalemi günceller.
func (s *CartService) UpdateLineItem(ctx context.Context, buyerID, itemID int64, patch models.LineItemPatch) (*models.OrderTicket, error) {
	var item *models.OrderTicket

	err := s.Store.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if item, err = s.ownedCartItem(ctx, buyerID, itemID); err != nil {
			return err
		}

		ticket, err := s.Store.Tickets().FindByID(ctx, item.TicketID)
		if err != nil {
			return err
		}

		if patch.RelationshipID != nil {
			if err := s.checkRelationship(ctx, ticket.ID, *patch.RelationshipID); err != nil {
				return err
			}
			item.RelationshipID = *patch.RelationshipID
		}
		if patch.OwnerName != nil {
			item.OwnerName = *patch.OwnerName
		}
		if patch.SubQuantity != nil {
			qty := *patch.SubQuantity
			if err := s.ledger.Reserve(ticket, qty); err != nil {
				return err
			}
			if qty > item.SubQuantity && qty > ticket.Remaining() {
				return models.ErrCapacityExceeded
			}
			item.SubQuantity = qty
		}

		item.Touch(s.Clock.Now())
		if err := s.Store.OrderTickets().UpdateInactive(ctx, item); err != nil {
			return conflictAs(err, models.ErrOnlyInactiveEditable)
		}
		item.Ticket = ticket

		return s.recomputeTotals(ctx, item.OrderID)
	})
	if err != nil {
		return nil, fmt.Errorf("sepet kalemi %d güncellenemedi: %w", itemID, err)
	}

	s.publish(events.EventCartItemUpdated, CartChanged{BuyerID: buyerID, OrderID: item.OrderID, OrderTicketID: item.ID})
	return item, nil
}

// RemoveLineItem, sepetteki INACTIVE bir kalemi siler.
func (s *CartService) RemoveLineItem(ctx context.Context, buyerID, itemID int64) error {
	var orderID int64

	err := s.Store.WithTx(ctx, func(ctx context.Context) error {
		item, err := s.ownedCartItem(ctx, buyerID, itemID)
		if err != nil {
			return err
		}
		orderID = item.OrderID

		if err := s.Store.OrderTickets().DeleteInactive(ctx, item.ID); err != nil {
			return conflictAs(err, models.ErrOnlyInactiveEditable)
		}
		return s.recomputeTotals(ctx, orderID)
	})
	if err != nil {
		return fmt.Errorf("sepet kalemi %d silinemedi: %w", itemID, err)
	}

	s.publish(events.EventCartItemRemoved, CartChanged{BuyerID: buyerID, OrderID: orderID, OrderTicketID: itemID})
	return nil
}

// Purchase, sepeti tek bir transaction içinde satın alır:
//
//  1. Her kalem için kapasite düşülür (CommitSold).
//  2. Sipariş PURCHASED olur, purchaseDate = now.
//  3. Her kalem ACTIVE olur ve imzalı bilet kodu üretilir.
//  4. Alıcıya yeni boş sepet açılır.
//
// Herhangi bir adım başarısız olursa hiçbir değişiklik kalıcı olmaz.
func (s *CartService) Purchase(ctx context.Context, buyerID int64) (*models.Order, error) {
	var (
		order         *models.Order
		summary       OrderPurchased
		refusedTicket int64
	)

	err := s.Store.WithTx(ctx, func(ctx context.Context) error {
		cart, err := s.lockCart(ctx, buyerID)
		if err != nil {
			return err
		}

		items, err := s.Store.OrderTickets().ListByOrder(ctx, cart.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return models.ErrEmptyCart
		}

		now := s.Clock.Now()
		eventIDs := make([]int64, 0, len(items))
		seen := make(map[int64]bool)

		// 1. Kapasite
		for _, item := range items {
			ticket, err := s.sellableTicket(ctx, item.TicketID)
			if err != nil && !errors.Is(err, models.ErrCapacityExceeded) {
				return err
			}
			if err := s.ledger.CommitSold(ctx, item.TicketID, item.SubQuantity, now); err != nil {
				if errors.Is(err, models.ErrCapacityExceeded) {
					refusedTicket = item.TicketID
				}
				return err
			}
			if ticket != nil && !seen[ticket.EventID] {
				seen[ticket.EventID] = true
				eventIDs = append(eventIDs, ticket.EventID)
			}
		}

		// 2. Sipariş
		if err := s.recomputeTotals(ctx, cart.ID); err != nil {
			return err
		}
		if err := s.Store.Orders().MarkPurchased(ctx, cart.ID, now); err != nil {
			return conflictAs(err, models.ErrOnlyCartIsUpdatable)
		}

		// 3. Bilet kodları
		for _, item := range items {
			if _, err := s.credentials.Issue(ctx, item.ID); err != nil {
				return err
			}
		}

		// 4. Yeni sepet
		if _, err := s.ProvisionCart(ctx, buyerID); err != nil {
			return err
		}

		if order, err = s.Store.Orders().FindByID(ctx, cart.ID); err != nil {
			return err
		}
		if order.OrderTickets, err = s.itemsWithTickets(ctx, cart.ID); err != nil {
			return err
		}

		summary = OrderPurchased{
			OrderID:    order.ID,
			BuyerID:    buyerID,
			Quantity:   order.Quantity,
			TotalPrice: order.TotalPrice,
			EventIDs:   eventIDs,
		}
		return nil
	})
	if err != nil {
		if refusedTicket != 0 {
			s.Logger.Printf("⚠️  Kapasite aşıldı: alıcı %d, bilet %d", buyerID, refusedTicket)
			s.publish(events.EventCapacityRefused, CapacityRefused{BuyerID: buyerID, TicketID: refusedTicket})
		}
		return nil, fmt.Errorf("satın alma başarısız: %w", err)
	}

	s.Logger.Printf("✅ Sipariş %d satın alındı (%d adet, %s)", order.ID, order.Quantity, order.TotalPrice.StringFixed(2))
	s.invalidate(ctx, summary.EventIDs...)
	s.publish(events.EventOrderPurchased, summary)
	return order, nil
}

// OrderHistory, alıcının satın alınmış siparişlerini en yeniden eskiye döndürür.
func (s *CartService) OrderHistory(ctx context.Context, buyerID int64, page models.Page) ([]*models.Order, error) {
	status := models.OrderPurchased
	orders, err := s.Store.Orders().ListByBuyer(ctx, buyerID, &status, page)
	if err != nil {
		return nil, fmt.Errorf("sipariş geçmişi okunamadı: %w", err)
	}
	return orders, nil
}

// OrderDetail, alıcıya ait bir siparişi kalemleriyle birlikte döndürür.
func (s *CartService) OrderDetail(ctx context.Context, buyerID, orderID int64) (*models.Order, error) {
	order, err := s.Store.Orders().FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("sipariş %d: %w", orderID, err)
	}
	if order.BuyerID != buyerID {
		return nil, fmt.Errorf("sipariş %d: %w", orderID, models.ErrNotOwner)
	}
	if order.OrderTickets, err = s.itemsWithTickets(ctx, orderID); err != nil {
		return nil, fmt.Errorf("sipariş %d: %w", orderID, err)
	}
	return order, nil
}

// lockCart, alıcının tek sepetini kilitler. Sıfır ya da birden fazla sepet
// veri bütünlüğü hatasıdır.
func (s *CartService) lockCart(ctx context.Context, buyerID int64) (*models.Order, error) {
	carts, err := s.Store.Orders().CartsForUpdate(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if len(carts) != 1 {
		return nil, fmt.Errorf("alıcı %d için %d sepet: %w", buyerID, len(carts), models.ErrInvalidCartCount)
	}
	return carts[0], nil
}

// ownedCartItem, kalemin çağıranın sepetinde olduğunu doğrular.
func (s *CartService) ownedCartItem(ctx context.Context, buyerID, itemID int64) (*models.OrderTicket, error) {
	cart, err := s.lockCart(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	item, err := s.Store.OrderTickets().FindByIDForUpdate(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if item.OrderID != cart.ID {
		order, err := s.Store.Orders().FindByID(ctx, item.OrderID)
		if err != nil {
			return nil, err
		}
		if order.BuyerID == buyerID && !order.IsCart() {
			return nil, models.ErrOnlyCartIsUpdatable
		}
		return nil, models.ErrNotInCart
	}

	if item.Status != models.OrderTicketInactive {
		return nil, models.ErrOnlyInactiveEditable
	}
	return item, nil
}

// sellableTicket, bilet türünü ve etkinliğini okur ve şu an satışta olup
// olmadığını kontrol eder. Tükenmiş bilet türü ErrCapacityExceeded ile
// birlikte döner.
func (s *CartService) sellableTicket(ctx context.Context, ticketID int64) (*models.Ticket, error) {
	ticket, err := s.Store.Tickets().FindByIDForUpdate(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	event, err := s.Store.Events().FindByID(ctx, ticket.EventID)
	if err != nil {
		return nil, err
	}
	if !event.Status.IsApproved() {
		return nil, models.ErrTicketNotOnSale
	}

	now := s.Clock.Now()
	derived := *ticket
	if err := policy.RefreshTicket(now, &derived); err != nil {
		return nil, err
	}

	switch derived.Status {
	case models.TicketRemaining:
		return ticket, nil
	case models.TicketSoldOut:
		return ticket, models.ErrCapacityExceeded
	default:
		return nil, models.ErrTicketNotOnSale
	}
}

func (s *CartService) checkRelationship(ctx context.Context, ticketID, relationshipID int64) error {
	if _, err := s.Store.Relationships().FindByID(ctx, relationshipID); err != nil {
		return err
	}
	accepted, err := s.Store.Tickets().AcceptedRelationships(ctx, ticketID)
	if err != nil {
		return err
	}
	if len(accepted) == 0 {
		return nil
	}
	for _, id := range accepted {
		if id == relationshipID {
			return nil
		}
	}
	return models.ErrRelationshipNotAccepted
}

// recomputeTotals, sipariş toplamlarını kalemlerden yeniden hesaplar:
// totalPrice = Σ subQuantity * unitPrice, quantity = Σ subQuantity.
func (s *CartService) recomputeTotals(ctx context.Context, orderID int64) error {
	items, err := s.Store.OrderTickets().ListByOrder(ctx, orderID)
	if err != nil {
		return err
	}

	prices := make(map[int64]decimal.Decimal)
	total := decimal.Zero
	var quantity int64

	for _, item := range items {
		price, ok := prices[item.TicketID]
		if !ok {
			ticket, err := s.Store.Tickets().FindByID(ctx, item.TicketID)
			if err != nil {
				return err
			}
			price = ticket.UnitPrice
			prices[item.TicketID] = price
		}
		total = total.Add(price.Mul(decimal.NewFromInt(item.SubQuantity)))
		quantity += item.SubQuantity
	}

	return s.Store.Orders().UpdateTotals(ctx, orderID, total, quantity, s.Clock.Now())
}

func (s *CartService) itemsWithTickets(ctx context.Context, orderID int64) ([]*models.OrderTicket, error) {
	items, err := s.Store.OrderTickets().ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	now := s.Clock.Now()
	for _, item := range items {
		ticket, err := s.Store.Tickets().FindByID(ctx, item.TicketID)
		if err != nil {
			return nil, err
		}
		if err := policy.RefreshTicket(now, ticket); err != nil {
			return nil, err
		}
		item.Ticket = ticket
	}
	return items, nil
}
