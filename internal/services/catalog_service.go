package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/biyonik/ticketbox-core/internal/models"
	"github.com/biyonik/ticketbox-core/internal/policy"
	"github.com/biyonik/ticketbox-core/internal/repositories"
	"github.com/biyonik/ticketbox-core/pkg/events"
)

// CatalogService, etkinlik ve bilet türü oluşturma ile okuma tarafını
// yönetir. Okunan her kaydın onay sonrası durumu o anki saate göre
// yeniden hesaplanır.
type CatalogService struct {
	Deps
}

func NewCatalogService(deps Deps) *CatalogService {
	return &CatalogService{Deps: deps}
}

// CreateEvent, organizatör adına PENDING bir etkinlik açar.
func (s *CatalogService) CreateEvent(ctx context.Context, hostID int64, event *models.Event) (*models.Event, error) {
	// 1. Validation
	event.Name = strings.TrimSpace(event.Name)
	if event.Name == "" {
		return nil, fmt.Errorf("etkinlik adı boş olamaz: %w", models.ErrValidation)
	}
	if !policy.ValidateEventWindow(event.StartDate, event.EndDate) {
		return nil, models.ErrInvalidEventWindow
	}
	now := s.Clock.Now()
	if !event.StartDate.After(now) {
		return nil, fmt.Errorf("etkinlik geçmişte başlayamaz: %w", models.ErrInvalidEventWindow)
	}

	// 2. Kaydet
	event.HostID = hostID
	event.Status = models.EventPending
	event.ApproverID = nil
	event.Tickets = nil
	event.Initialize(now)

	err := s.Store.WithTx(ctx, func(ctx context.Context) error {
		for _, id := range event.CategoryIDs {
			if _, err := s.Store.Categories().FindByID(ctx, id); err != nil {
				return err
			}
		}
		if err := s.Store.Events().Create(ctx, event); err != nil {
			return err
		}
		if len(event.CategoryIDs) > 0 {
			return s.Store.Events().SetCategories(ctx, event.ID, event.CategoryIDs)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("etkinlik oluşturulamadı: %w", err)
	}

	s.Logger.Printf("✅ Etkinlik oluşturuldu: %d (%s)", event.ID, event.Name)
	s.publish(events.EventEventCreated, EventChanged{EventID: event.ID, Status: event.Status, ActorID: hostID})
	return event, nil
}

// CreateTicket, PENDING ya da onaylanmış etkinliğe yeni bir bilet türü
// ekler. Yalnızca etkinliğin organizatörü ekleyebilir.
func (s *CatalogService) CreateTicket(ctx context.Context, hostID, eventID int64, ticket *models.Ticket) (*models.Ticket, error) {
	err := s.Store.WithTx(ctx, func(ctx context.Context) error {
		event, err := s.Store.Events().FindByIDForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		if event.HostID != hostID {
			return models.ErrNotOwner
		}
		// Onaylanmış etkinliğe yeni bilet türü eklenebilir; onayı yine
		// etkinliğin onaylayıcısına düşer.
		if event.Status != models.EventPending && !event.Status.IsApproved() {
			return models.ErrOnlyPendingIsUpdatable
		}

		ticket.EventID = eventID
		ticket.Status = models.TicketPending
		ticket.Sold = 0
		ticket.Type = strings.TrimSpace(ticket.Type)
		if err := validateTicket(ticket, event); err != nil {
			return err
		}
		if err := checkRelationships(ctx, s.Store, ticket.AcceptedRelationshipIDs); err != nil {
			return err
		}

		ticket.Initialize(s.Clock.Now())
		if err := s.Store.Tickets().Create(ctx, ticket); err != nil {
			return err
		}
		if len(ticket.AcceptedRelationshipIDs) > 0 {
			return s.Store.Tickets().SetAcceptedRelationships(ctx, ticket.ID, ticket.AcceptedRelationshipIDs)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bilet türü oluşturulamadı: %w", err)
	}

	s.invalidate(ctx, eventID)
	s.publish(events.EventTicketCreated, TicketChanged{TicketID: ticket.ID, EventID: eventID, Status: ticket.Status, ActorID: hostID})
	return ticket, nil
}

// GetEvent, etkinliği kategorileri ve bilet türleriyle birlikte döndürür.
// Görüntü cache'ten gelebilir; durumlar her okumada yeniden hesaplanır.
func (s *CatalogService) GetEvent(ctx context.Context, eventID int64) (*models.Event, error) {
	var (
		event *models.Event
		err   error
	)
	if s.Snapshots != nil {
		event, err = s.Snapshots.Load(ctx, eventID, func(ctx context.Context) (*models.Event, error) {
			return s.loadSnapshot(ctx, eventID)
		})
	} else {
		event, err = s.loadSnapshot(ctx, eventID)
	}
	if err != nil {
		return nil, fmt.Errorf("etkinlik %d: %w", eventID, err)
	}

	now := s.Clock.Now()
	policy.RefreshEvent(now, event)
	for _, t := range event.Tickets {
		if err := policy.RefreshTicket(now, t); err != nil {
			return nil, fmt.Errorf("bilet %d: %w", t.ID, err)
		}
	}
	return event, nil
}

func (s *CatalogService) loadSnapshot(ctx context.Context, eventID int64) (*models.Event, error) {
	event, err := s.Store.Events().FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.CategoryIDs, err = s.Store.Events().CategoryIDs(ctx, eventID); err != nil {
		return nil, err
	}
	if event.Tickets, err = s.ticketsWithRelationships(ctx, eventID); err != nil {
		return nil, err
	}
	return event, nil
}

// ListEvents, etkinlikleri filtreleyerek döndürür. UPCOMING, RUNNING ve
// ENDED filtreleri saklanan duruma değil o anki saate göre uygulanır.
func (s *CatalogService) ListEvents(ctx context.Context, filter models.EventFilter, page models.Page) ([]*models.Event, error) {
	now := s.Clock.Now()
	if filter.Status != nil && filter.Status.IsApproved() {
		phase := *filter.Status
		filter.Phase = &phase
		filter.At = now
		filter.Status = nil
	}

	list, err := s.Store.Events().List(ctx, filter, page.Normalize())
	if err != nil {
		return nil, fmt.Errorf("etkinlikler listelenemedi: %w", err)
	}
	for _, e := range list {
		policy.RefreshEvent(now, e)
	}
	return list, nil
}

// ListTickets, etkinliğin bilet türlerini döndürür.
func (s *CatalogService) ListTickets(ctx context.Context, eventID int64, status *models.TicketStatus) ([]*models.Ticket, error) {
	if _, err := s.Store.Events().FindByID(ctx, eventID); err != nil {
		return nil, fmt.Errorf("etkinlik %d: %w", eventID, err)
	}
	tickets, err := s.ticketsWithRelationships(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("etkinlik %d bilet türleri: %w", eventID, err)
	}
	now := s.Clock.Now()
	filtered := tickets[:0]
	for _, t := range tickets {
		if err := policy.RefreshTicket(now, t); err != nil {
			return nil, fmt.Errorf("bilet %d: %w", t.ID, err)
		}
		// Filtre türetilmiş duruma uygulanır.
		if status == nil || t.Status == *status {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

// GetTicket, tek bir bilet türünü döndürür.
func (s *CatalogService) GetTicket(ctx context.Context, ticketID int64) (*models.Ticket, error) {
	ticket, err := s.Store.Tickets().FindByID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("bilet %d: %w", ticketID, err)
	}
	if ticket.AcceptedRelationshipIDs, err = s.Store.Tickets().AcceptedRelationships(ctx, ticketID); err != nil {
		return nil, fmt.Errorf("bilet %d: %w", ticketID, err)
	}
	if err := policy.RefreshTicket(s.Clock.Now(), ticket); err != nil {
		return nil, fmt.Errorf("bilet %d: %w", ticketID, err)
	}
	return ticket, nil
}

// LowestPrice, etkinliğin onaylanmış bilet türleri arasındaki en düşük
// birim fiyattır. Onaylanmış bilet türü yoksa ErrTicketNotFound döner.
func (s *CatalogService) LowestPrice(ctx context.Context, eventID int64) (decimal.Decimal, error) {
	tickets, err := s.ListTickets(ctx, eventID, nil)
	if err != nil {
		return decimal.Zero, err
	}

	var (
		lowest decimal.Decimal
		found  bool
	)
	for _, t := range tickets {
		if !t.Status.IsApproved() {
			continue
		}
		if !found || t.UnitPrice.LessThan(lowest) {
			lowest = t.UnitPrice
			found = true
		}
	}
	if !found {
		return decimal.Zero, fmt.Errorf("etkinlik %d: %w", eventID, models.ErrTicketNotFound)
	}
	return lowest, nil
}

// -----------------------------------------------------------------------------
// Categories & relationships
// -----------------------------------------------------------------------------

func (s *CatalogService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return s.Store.Categories().List(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("kategori adı boş olamaz: %w", models.ErrValidation)
	}
	category := &models.Category{Name: name}
	category.Initialize(s.Clock.Now())
	if err := s.Store.Categories().Create(ctx, category); err != nil {
		return nil, fmt.Errorf("kategori oluşturulamadı: %w", err)
	}
	return category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id int64, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("kategori adı boş olamaz: %w", models.ErrValidation)
	}
	category, err := s.Store.Categories().FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("kategori %d: %w", id, err)
	}
	category.Name = name
	category.Touch(s.Clock.Now())
	if err := s.Store.Categories().Update(ctx, category); err != nil {
		return nil, fmt.Errorf("kategori %d güncellenemedi: %w", id, err)
	}
	return category, nil
}

// DeleteCategory, kategoriyi ve etkinliklerle bağlarını siler.
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.Store.Categories().Delete(ctx, id); err != nil {
		return fmt.Errorf("kategori %d silinemedi: %w", id, err)
	}
	if s.Snapshots != nil {
		if err := s.Snapshots.cache.Flush(ctx); err != nil {
			s.Logger.Printf("⚠️  Etkinlik cache temizlenemedi: %v", err)
		}
	}
	return nil
}

func (s *CatalogService) ListRelationships(ctx context.Context) ([]*models.Relationship, error) {
	return s.Store.Relationships().List(ctx)
}

// -----------------------------------------------------------------------------
// helpers
// -----------------------------------------------------------------------------

func (s *CatalogService) ticketsWithRelationships(ctx context.Context, eventID int64) ([]*models.Ticket, error) {
	tickets, err := s.Store.Tickets().ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	for _, t := range tickets {
		if t.AcceptedRelationshipIDs, err = s.Store.Tickets().AcceptedRelationships(ctx, t.ID); err != nil {
			return nil, err
		}
	}
	return tickets, nil
}

// validateTicket, bilet türünün statik kurallarını kontrol eder: tür adı,
// fiyat, kapasite, sipariş başına adet sınırları ve satış penceresi.
func validateTicket(t *models.Ticket, event *models.Event) error {
	if t.Type == "" {
		return fmt.Errorf("bilet türü adı boş olamaz: %w", models.ErrValidation)
	}
	if t.UnitPrice.IsNegative() {
		return fmt.Errorf("birim fiyat negatif olamaz: %w", models.ErrValidation)
	}
	if t.Capacity <= 0 {
		return fmt.Errorf("kapasite sıfırdan büyük olmalı: %w", models.ErrValidation)
	}
	if t.MinQtyPerOrder < 1 || t.MaxQtyPerOrder < t.MinQtyPerOrder {
		return models.ErrQuantityOutOfRange
	}
	if !policy.ValidateSaleWindow(t.StartSale, t.EndSale, event.StartDate, event.EndDate) {
		return models.ErrInvalidSaleWindow
	}
	return nil
}

func checkRelationships(ctx context.Context, store repositories.Store, ids []int64) error {
	for _, id := range ids {
		if _, err := store.Relationships().FindByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
