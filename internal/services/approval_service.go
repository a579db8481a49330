package services

import (
	"context"
	"fmt"
	"time"

	"github.com/biyonik/ticketbox-core/internal/models"
	"github.com/biyonik/ticketbox-core/internal/policy"
	"github.com/biyonik/ticketbox-core/pkg/events"
)

// RoleChecker, aktörün onaylayıcı yetkisi olup olmadığını söyler.
type RoleChecker interface {
	IsApprover(ctx context.Context, userID int64) (bool, error)
}

// ApprovalService, Event ve Ticket onay akışını yürütür.
//
// Her iki varlık da PENDING olarak doğar. PENDING'den onay (zamana bağlı
// durum), DECLINED veya CANCELED'a geçer; PENDING dışındaki durumlardan
// başka geçiş yoktur. Etkinlik üzerindeki geçişler tüm bilet türlerine aynı
// transaction içinde yayılır; organizatörün önceden iptal ettiği türler
// dışında PENDING olmayan bir alt bilet türü geçişi durdurur.
type ApprovalService struct {
	Deps
	roles RoleChecker
}

func NewApprovalService(deps Deps, roles RoleChecker) *ApprovalService {
	return &ApprovalService{Deps: deps, roles: roles}
}

// -----------------------------------------------------------------------------
// Events
// -----------------------------------------------------------------------------

// ApproveEvent, etkinliği onaylar ve tüm PENDING bilet türlerini onaylar.
// Bilet türlerinden birinin satış penceresi geçersizse hiçbir şey değişmez.
func (s *ApprovalService) ApproveEvent(ctx context.Context, actorID, eventID int64) (*models.Event, error) {
	if err := s.requireApprover(ctx, actorID); err != nil {
		return nil, fmt.Errorf("etkinlik %d onaylanamadı: %w", eventID, err)
	}

	var (
		event    *models.Event
		approved []*models.Ticket
	)
	err := s.Store.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if event, err = s.pendingEvent(ctx, eventID); err != nil {
			return err
		}

		children, err := s.Store.Tickets().ListByEvent(ctx, eventID)
		if err != nil {
			return err
		}
		if err := checkCascade(children); err != nil {
			return err
		}
		for _, t := range children {
			if t.Status == models.TicketPending && !policy.ValidateSaleWindow(t.StartSale, t.EndSale, event.StartDate, event.EndDate) {
				return fmt.Errorf("bilet %d: %w", t.ID, models.ErrInvalidSaleWindow)
			}
		}

		now := s.Clock.Now()
		status := policy.DeriveEventStatus(now, event.StartDate, event.EndDate)
		if err := s.Store.Events().TransitionStatus(ctx, eventID, models.EventPending, status, &actorID, now); err != nil {
			return conflictAs(err, models.ErrOnlyPendingIsUpdatable)
		}
		event.Status = status
		event.ApproverID = &actorID
		event.Touch(now)

		for _, t := range children {
			if t.Status != models.TicketPending {
				continue
			}
			if err := s.approveTicket(ctx, t, now); err != nil {
				return err
			}
			approved = append(approved, t)
		}
		event.Tickets = children
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("etkinlik %d onaylanamadı: %w", eventID, err)
	}

	s.Logger.Printf("✅ Etkinlik %d onaylandı (%s), %d bilet türü", eventID, event.Status, len(approved))
	s.invalidate(ctx, eventID)
	s.publish(events.EventEventApproved, EventChanged{EventID: eventID, Status: event.Status, ActorID: actorID})
	for _, t := range approved {
		s.publish(events.EventTicketApproved, TicketChanged{TicketID: t.ID, EventID: eventID, Status: t.Status, ActorID: actorID})
	}
	return event, nil
}

// DeclineEvent, etkinliği ve PENDING bilet türlerini DECLINED yapar.
func (s *ApprovalService) DeclineEvent(ctx context.Context, actorID, eventID int64) (*models.Event, error) {
	if err := s.requireApprover(ctx, actorID); err != nil {
		return nil, fmt.Errorf("etkinlik %d reddedilemedi: %w", eventID, err)
	}
	event, err := s.closeEvent(ctx, actorID, eventID, models.EventDeclined, models.TicketDeclined, false)
	if err != nil {
		return nil, fmt.Errorf("etkinlik %d reddedilemedi: %w", eventID, err)
	}
	s.publish(events.EventEventDeclined, EventChanged{EventID: eventID, Status: event.Status, ActorID: actorID})
	return event, nil
}

// CancelEvent, etkinliği ve PENDING bilet türlerini CANCELED yapar.
// Yalnızca etkinliği açan organizatör iptal edebilir.
func (s *ApprovalService) CancelEvent(ctx context.Context, actorID, eventID int64) (*models.Event, error) {
	event, err := s.closeEvent(ctx, actorID, eventID, models.EventCanceled, models.TicketCanceled, true)
	if err != nil {
		return nil, fmt.Errorf("etkinlik %d iptal edilemedi: %w", eventID, err)
	}
	s.publish(events.EventEventCanceled, EventChanged{EventID: eventID, Status: event.Status, ActorID: actorID})
	return event, nil
}

func (s *ApprovalService) closeEvent(ctx context.Context, actorID, eventID int64, to models.EventStatus, childTo models.TicketStatus, hostOnly bool) (*models.Event, error) {
	var event *models.Event

	err := s.Store.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if event, err = s.Store.Events().FindByIDForUpdate(ctx, eventID); err != nil {
			return err
		}
		if hostOnly && event.HostID != actorID {
			return models.ErrNotOwner
		}
		if event.Status != models.EventPending {
			return models.ErrOnlyPendingIsUpdatable
		}

		children, err := s.Store.Tickets().ListByEvent(ctx, eventID)
		if err != nil {
			return err
		}
		if err := checkCascade(children); err != nil {
			return err
		}

		var approver *int64
		if !hostOnly {
			approver = &actorID
		}

		now := s.Clock.Now()
		if err := s.Store.Events().TransitionStatus(ctx, eventID, models.EventPending, to, approver, now); err != nil {
			return conflictAs(err, models.ErrOnlyPendingIsUpdatable)
		}
		event.Status = to
		if approver != nil {
			event.ApproverID = approver
		}
		event.Touch(now)

		for _, t := range children {
			if t.Status != models.TicketPending {
				continue
			}
			if err := s.Store.Tickets().TransitionStatus(ctx, t.ID, models.TicketPending, childTo, now); err != nil {
				return conflictAs(err, models.ErrOnlyPendingIsUpdatable)
			}
			t.Status = childTo
		}
		event.Tickets = children
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Printf("🔄 Etkinlik %d → %s", eventID, to)
	s.invalidate(ctx, eventID)
	return event, nil
}

// UpdateEvent, PENDING etkinliğin nil olmayan alanlarını günceller.
// Tarihler değişirse PENDING bilet türlerinin satış pencereleri yeniden
// doğrulanır.
func (s *ApprovalService) UpdateEvent(ctx context.Context, actorID, eventID int64, patch models.EventPatch) (*models.Event, error) {
	var event *models.Event

	err := s.Store.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if event, err = s.Store.Events().FindByIDForUpdate(ctx, eventID); err != nil {
			return err
		}
		if event.HostID != actorID {
			return models.ErrNotOwner
		}
		if event.Status != models.EventPending {
			return models.ErrOnlyPendingIsUpdatable
		}

		datesChanged := mergeEventPatch(event, patch)
		if !policy.ValidateEventWindow(event.StartDate, event.EndDate) {
			return models.ErrInvalidEventWindow
		}

		if datesChanged {
			children, err := s.Store.Tickets().ListByEvent(ctx, eventID)
			if err != nil {
				return err
			}
			for _, t := range children {
				if t.Status == models.TicketPending && !policy.ValidateSaleWindow(t.StartSale, t.EndSale, event.StartDate, event.EndDate) {
					return fmt.Errorf("bilet %d: %w", t.ID, models.ErrInvalidSaleWindow)
				}
			}
		}

		event.Touch(s.Clock.Now())
		if err := s.Store.Events().Update(ctx, event); err != nil {
			return conflictAs(err, models.ErrOnlyPendingIsUpdatable)
		}

		if patch.CategoryIDs != nil {
			if err := s.checkCategories(ctx, patch.CategoryIDs); err != nil {
				return err
			}
			if err := s.Store.Events().SetCategories(ctx, eventID, patch.CategoryIDs); err != nil {
				return err
			}
		}
		event.CategoryIDs, err = s.Store.Events().CategoryIDs(ctx, eventID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("etkinlik %d güncellenemedi: %w", eventID, err)
	}

	s.invalidate(ctx, eventID)
	s.publish(events.EventEventUpdated, EventChanged{EventID: eventID, Status: event.Status, ActorID: actorID})
	return event, nil
}

// -----------------------------------------------------------------------------
// Tickets
// -----------------------------------------------------------------------------

// ApproveTicket, onaylanmış bir etkinliğe sonradan eklenen PENDING bilet
// türünü onaylar. Yalnızca etkinliği onaylayan kişi karar verebilir; onay
// bekleyen etkinliğin bilet türleri etkinlikle birlikte onaylanır.
func (s *ApprovalService) ApproveTicket(ctx context.Context, actorID, ticketID int64) (*models.Ticket, error) {
	if err := s.requireApprover(ctx, actorID); err != nil {
		return nil, fmt.Errorf("bilet %d onaylanamadı: %w", ticketID, err)
	}

	var ticket *models.Ticket
	err := s.Store.WithTx(ctx, func(ctx context.Context) error {
		var (
			event *models.Event
			err   error
		)
		if ticket, event, err = s.reviewableTicket(ctx, actorID, ticketID); err != nil {
			return err
		}
		if !policy.ValidateSaleWindow(ticket.StartSale, ticket.EndSale, event.StartDate, event.EndDate) {
			return models.ErrInvalidSaleWindow
		}
		return s.approveTicket(ctx, ticket, s.Clock.Now())
	})
	if err != nil {
		return nil, fmt.Errorf("bilet %d onaylanamadı: %w", ticketID, err)
	}

	s.invalidate(ctx, ticket.EventID)
	s.publish(events.EventTicketApproved, TicketChanged{TicketID: ticketID, EventID: ticket.EventID, Status: ticket.Status, ActorID: actorID})
	return ticket, nil
}

// DeclineTicket, PENDING bilet türünü DECLINED yapar.
func (s *ApprovalService) DeclineTicket(ctx context.Context, actorID, ticketID int64) (*models.Ticket, error) {
	if err := s.requireApprover(ctx, actorID); err != nil {
		return nil, fmt.Errorf("bilet %d reddedilemedi: %w", ticketID, err)
	}

	var ticket *models.Ticket
	err := s.Store.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if ticket, _, err = s.reviewableTicket(ctx, actorID, ticketID); err != nil {
			return err
		}
		return s.moveTicket(ctx, ticket, models.TicketDeclined)
	})
	if err != nil {
		return nil, fmt.Errorf("bilet %d reddedilemedi: %w", ticketID, err)
	}

	s.invalidate(ctx, ticket.EventID)
	s.publish(events.EventTicketDeclined, TicketChanged{TicketID: ticketID, EventID: ticket.EventID, Status: ticket.Status, ActorID: actorID})
	return ticket, nil
}

// CancelTicket, organizatörün PENDING bilet türünü iptal etmesidir.
func (s *ApprovalService) CancelTicket(ctx context.Context, actorID, ticketID int64) (*models.Ticket, error) {
	var ticket *models.Ticket

	err := s.Store.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if ticket, _, err = s.ownedPendingTicket(ctx, actorID, ticketID); err != nil {
			return err
		}
		return s.moveTicket(ctx, ticket, models.TicketCanceled)
	})
	if err != nil {
		return nil, fmt.Errorf("bilet %d iptal edilemedi: %w", ticketID, err)
	}

	s.invalidate(ctx, ticket.EventID)
	s.publish(events.EventTicketCanceled, TicketChanged{TicketID: ticketID, EventID: ticket.EventID, Status: ticket.Status, ActorID: actorID})
	return ticket, nil
}

// UpdateTicket, PENDING bilet türünün nil olmayan alanlarını günceller ve
// satış penceresini yeniden doğrular.
func (s *ApprovalService) UpdateTicket(ctx context.Context, actorID, ticketID int64, patch models.TicketPatch) (*models.Ticket, error) {
	var ticket *models.Ticket

	err := s.Store.WithTx(ctx, func(ctx context.Context) error {
		var (
			event *models.Event
			err   error
		)
		if ticket, event, err = s.ownedPendingTicket(ctx, actorID, ticketID); err != nil {
			return err
		}

		mergeTicketPatch(ticket, patch)
		if err := validateTicket(ticket, event); err != nil {
			return err
		}

		ticket.Touch(s.Clock.Now())
		if err := s.Store.Tickets().Update(ctx, ticket); err != nil {
			return conflictAs(err, models.ErrOnlyPendingIsUpdatable)
		}

		if patch.AcceptedRelationshipIDs != nil {
			if err := checkRelationships(ctx, s.Store, patch.AcceptedRelationshipIDs); err != nil {
				return err
			}
			if err := s.Store.Tickets().SetAcceptedRelationships(ctx, ticketID, patch.AcceptedRelationshipIDs); err != nil {
				return err
			}
		}
		ticket.AcceptedRelationshipIDs, err = s.Store.Tickets().AcceptedRelationships(ctx, ticketID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("bilet %d güncellenemedi: %w", ticketID, err)
	}

	s.invalidate(ctx, ticket.EventID)
	s.publish(events.EventTicketUpdated, TicketChanged{TicketID: ticketID, EventID: ticket.EventID, Status: ticket.Status, ActorID: actorID})
	return ticket, nil
}

// -----------------------------------------------------------------------------
// helpers
// -----------------------------------------------------------------------------

func (s *ApprovalService) requireApprover(ctx context.Context, actorID int64) error {
	ok, err := s.roles.IsApprover(ctx, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return models.ErrNotAnApprover
	}
	return nil
}

func (s *ApprovalService) pendingEvent(ctx context.Context, eventID int64) (*models.Event, error) {
	event, err := s.Store.Events().FindByIDForUpdate(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status != models.EventPending {
		return nil, models.ErrOnlyPendingIsUpdatable
	}
	return event, nil
}

// reviewableTicket, onaylayıcının karar verebileceği PENDING bilet türünü
// ve etkinliğini döndürür.
func (s *ApprovalService) reviewableTicket(ctx context.Context, actorID, ticketID int64) (*models.Ticket, *models.Event, error) {
	ticket, err := s.Store.Tickets().FindByIDForUpdate(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	event, err := s.Store.Events().FindByID(ctx, ticket.EventID)
	if err != nil {
		return nil, nil, err
	}
	if ticket.Status != models.TicketPending {
		return nil, nil, models.ErrOnlyPendingIsUpdatable
	}
	// Etkinlik henüz incelenmediyse bilet türü tek başına karara bağlanamaz.
	if event.ApproverID == nil || !event.Status.IsApproved() {
		return nil, nil, models.ErrOnlyPendingIsUpdatable
	}
	if *event.ApproverID != actorID {
		return nil, nil, models.ErrNotAnApprover
	}
	return ticket, event, nil
}

// checkCascade, etkinlik geçişinin yayılacağı bilet türlerini kontrol eder.
// PENDING ve organizatörün iptal ettiği türler dışındaki her durum geçişi
// reddeder; etkinlik ile bilet türleri hiçbir zaman karışık kalmaz.
func checkCascade(children []*models.Ticket) error {
	for _, t := range children {
		if t.Status != models.TicketPending && t.Status != models.TicketCanceled {
			return fmt.Errorf("bilet %d (%s): %w", t.ID, t.Status, models.ErrOnlyPendingIsUpdatable)
		}
	}
	return nil
}

func (s *ApprovalService) ownedPendingTicket(ctx context.Context, actorID, ticketID int64) (*models.Ticket, *models.Event, error) {
	ticket, err := s.Store.Tickets().FindByIDForUpdate(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	event, err := s.Store.Events().FindByID(ctx, ticket.EventID)
	if err != nil {
		return nil, nil, err
	}
	if event.HostID != actorID {
		return nil, nil, models.ErrNotOwner
	}
	if ticket.Status != models.TicketPending {
		return nil, nil, models.ErrOnlyPendingIsUpdatable
	}
	return ticket, event, nil
}

// approveTicket, PENDING bilet türünü now anındaki türetilmiş durumuna taşır.
func (s *ApprovalService) approveTicket(ctx context.Context, ticket *models.Ticket, now time.Time) error {
	status, err := policy.DeriveTicketStatus(now, ticket.StartSale, ticket.EndSale, ticket.Sold, ticket.Capacity)
	if err != nil {
		return err
	}
	if err := s.Store.Tickets().TransitionStatus(ctx, ticket.ID, models.TicketPending, status, now); err != nil {
		return conflictAs(err, models.ErrOnlyPendingIsUpdatable)
	}
	ticket.Status = status
	ticket.Touch(now)
	return nil
}

func (s *ApprovalService) moveTicket(ctx context.Context, ticket *models.Ticket, to models.TicketStatus) error {
	now := s.Clock.Now()
	if err := s.Store.Tickets().TransitionStatus(ctx, ticket.ID, models.TicketPending, to, now); err != nil {
		return conflictAs(err, models.ErrOnlyPendingIsUpdatable)
	}
	ticket.Status = to
	ticket.Touch(now)
	return nil
}

func (s *ApprovalService) checkCategories(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		if _, err := s.Store.Categories().FindByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// mergeEventPatch, patch'teki nil olmayan alanları event'e yazar ve
// tarihlerin değişip değişmediğini döndürür.
func mergeEventPatch(event *models.Event, patch models.EventPatch) bool {
	if patch.Name != nil {
		event.Name = *patch.Name
	}
	if patch.Online != nil {
		event.Online = *patch.Online
	}
	if patch.Address != nil {
		event.Address = *patch.Address
	}
	if patch.OrgName != nil {
		event.OrgName = *patch.OrgName
	}
	if patch.OrgInfo != nil {
		event.OrgInfo = *patch.OrgInfo
	}

	changed := false
	if patch.StartDate != nil && !patch.StartDate.Equal(event.StartDate) {
		event.StartDate = *patch.StartDate
		changed = true
	}
	if patch.EndDate != nil && !patch.EndDate.Equal(event.EndDate) {
		event.EndDate = *patch.EndDate
		changed = true
	}
	return changed
}

func mergeTicketPatch(ticket *models.Ticket, patch models.TicketPatch) {
	if patch.Type != nil {
		ticket.Type = *patch.Type
	}
	if patch.StartSale != nil {
		ticket.StartSale = *patch.StartSale
	}
	if patch.EndSale != nil {
		ticket.EndSale = *patch.EndSale
	}
	if patch.UnitPrice != nil {
		ticket.UnitPrice = *patch.UnitPrice
	}
	if patch.Capacity != nil {
		ticket.Capacity = *patch.Capacity
	}
	if patch.MinQtyPerOrder != nil {
		ticket.MinQtyPerOrder = *patch.MinQtyPerOrder
	}
	if patch.MaxQtyPerOrder != nil {
		ticket.MaxQtyPerOrder = *patch.MaxQtyPerOrder
	}
}
