package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/biyonik/ticketbox-core/internal/models"
	"github.com/biyonik/ticketbox-core/internal/policy"
	"github.com/biyonik/ticketbox-core/internal/repositories"
)

// -----------------------------------------------------------------------------
// Events
// -----------------------------------------------------------------------------

type eventRepo struct{ s *Store }

func storedEvent(e *models.Event) models.Event {
	v := *e
	v.ApproverID = copyInt64Ptr(e.ApproverID)
	v.CategoryIDs = nil
	v.Tickets = nil
	return v
}

func loadedEvent(v models.Event) *models.Event {
	v.ApproverID = copyInt64Ptr(v.ApproverID)
	return &v
}

func (r eventRepo) Create(ctx context.Context, event *models.Event) error {
	defer r.s.lock(ctx)()
	event.ID = r.s.data.newID()
	r.s.data.events[event.ID] = storedEvent(event)
	return nil
}

func (r eventRepo) FindByID(ctx context.Context, id int64) (*models.Event, error) {
	defer r.s.lock(ctx)()
	v, ok := r.s.data.events[id]
	if !ok {
		return nil, models.ErrEventNotFound
	}
	return loadedEvent(v), nil
}

func (r eventRepo) FindByIDForUpdate(ctx context.Context, id int64) (*models.Event, error) {
	return r.FindByID(ctx, id)
}

func (r eventRepo) Update(ctx context.Context, event *models.Event) error {
	defer r.s.lock(ctx)()
	current, ok := r.s.data.events[event.ID]
	if !ok || current.Status != models.EventPending {
		return repositories.ErrConflict
	}
	current.Name = event.Name
	current.Online = event.Online
	current.Address = event.Address
	current.OrgName = event.OrgName
	current.OrgInfo = event.OrgInfo
	current.StartDate = event.StartDate
	current.EndDate = event.EndDate
	current.UpdatedAt = event.UpdatedAt
	r.s.data.events[event.ID] = current
	return nil
}

func (r eventRepo) TransitionStatus(ctx context.Context, id int64, from, to models.EventStatus, approverID *int64, at time.Time) error {
	defer r.s.lock(ctx)()
	current, ok := r.s.data.events[id]
	if !ok || current.Status != from {
		return repositories.ErrConflict
	}
	current.Status = to
	if approverID != nil {
		current.ApproverID = copyInt64Ptr(approverID)
	}
	current.UpdatedAt = at
	r.s.data.events[id] = current
	return nil
}

func (r eventRepo) List(ctx context.Context, filter models.EventFilter, page models.Page) ([]*models.Event, error) {
	defer r.s.lock(ctx)()

	q := strings.ToLower(strings.TrimSpace(filter.Query))
	out := make([]*models.Event, 0)
	for _, v := range r.s.data.events {
		if filter.Status != nil && v.Status != *filter.Status {
			continue
		}
		if filter.Phase != nil && (!v.Status.IsApproved() || policy.DeriveEventStatus(filter.At, v.StartDate, v.EndDate) != *filter.Phase) {
			continue
		}
		if filter.HostID != nil && v.HostID != *filter.HostID {
			continue
		}
		if filter.ApproverID != nil && (v.ApproverID == nil || *v.ApproverID != *filter.ApproverID) {
			continue
		}
		if filter.CategoryID != nil && !containsID(r.s.data.eventCategories[v.ID], *filter.CategoryID) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(v.Name), q) {
			continue
		}
		out = append(out, loadedEvent(v))
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	return paginate(out, page), nil
}

func (r eventRepo) SetCategories(ctx context.Context, eventID int64, categoryIDs []int64) error {
	defer r.s.lock(ctx)()
	r.s.data.eventCategories[eventID] = append([]int64(nil), categoryIDs...)
	return nil
}

func (r eventRepo) CategoryIDs(ctx context.Context, eventID int64) ([]int64, error) {
	defer r.s.lock(ctx)()
	return sortedCopy(r.s.data.eventCategories[eventID]), nil
}

// -----------------------------------------------------------------------------
// Tickets
// -----------------------------------------------------------------------------

type ticketRepo struct{ s *Store }

func (r ticketRepo) Create(ctx context.Context, ticket *models.Ticket) error {
	defer r.s.lock(ctx)()
	ticket.ID = r.s.data.newID()
	v := *ticket
	v.AcceptedRelationshipIDs = nil
	r.s.data.tickets[ticket.ID] = v
	return nil
}

func (r ticketRepo) FindByID(ctx context.Context, id int64) (*models.Ticket, error) {
	defer r.s.lock(ctx)()
	v, ok := r.s.data.tickets[id]
	if !ok {
		return nil, models.ErrTicketNotFound
	}
	return &v, nil
}

func (r ticketRepo) FindByIDForUpdate(ctx context.Context, id int64) (*models.Ticket, error) {
	return r.FindByID(ctx, id)
}

func (r ticketRepo) ListByEvent(ctx context.Context, eventID int64) ([]*models.Ticket, error) {
	defer r.s.lock(ctx)()
	out := make([]*models.Ticket, 0)
	for _, v := range r.s.data.tickets {
		if v.EventID == eventID {
			v := v
			out = append(out, &v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r ticketRepo) Update(ctx context.Context, ticket *models.Ticket) error {
	defer r.s.lock(ctx)()
	current, ok := r.s.data.tickets[ticket.ID]
	if !ok || current.Status != models.TicketPending {
		return repositories.ErrConflict
	}
	current.Type = ticket.Type
	current.StartSale = ticket.StartSale
	current.EndSale = ticket.EndSale
	current.UnitPrice = ticket.UnitPrice
	current.Capacity = ticket.Capacity
	current.MinQtyPerOrder = ticket.MinQtyPerOrder
	current.MaxQtyPerOrder = ticket.MaxQtyPerOrder
	current.UpdatedAt = ticket.UpdatedAt
	r.s.data.tickets[ticket.ID] = current
	return nil
}

func (r ticketRepo) TransitionStatus(ctx context.Context, id int64, from, to models.TicketStatus, at time.Time) error {
	defer r.s.lock(ctx)()
	current, ok := r.s.data.tickets[id]
	if !ok || current.Status != from {
		return repositories.ErrConflict
	}
	current.Status = to
	current.UpdatedAt = at
	r.s.data.tickets[id] = current
	return nil
}

func (r ticketRepo) IncrementSold(ctx context.Context, id int64, qty int64, at time.Time) error {
	defer r.s.lock(ctx)()
	current, ok := r.s.data.tickets[id]
	if !ok || current.Sold+qty > current.Capacity {
		return repositories.ErrConflict
	}
	current.Sold += qty
	current.UpdatedAt = at
	r.s.data.tickets[id] = current
	return nil
}

func (r ticketRepo) SetAcceptedRelationships(ctx context.Context, ticketID int64, relationshipIDs []int64) error {
	defer r.s.lock(ctx)()
	r.s.data.ticketRels[ticketID] = append([]int64(nil), relationshipIDs...)
	return nil
}

func (r ticketRepo) AcceptedRelationships(ctx context.Context, ticketID int64) ([]int64, error) {
	defer r.s.lock(ctx)()
	return sortedCopy(r.s.data.ticketRels[ticketID]), nil
}

// -----------------------------------------------------------------------------
// Orders
// -----------------------------------------------------------------------------

type orderRepo struct{ s *Store }

func loadedOrder(v models.Order) *models.Order {
	if v.PurchaseDate != nil {
		t := *v.PurchaseDate
		v.PurchaseDate = &t
	}
	v.OrderTickets = nil
	return &v
}

func (r orderRepo) Create(ctx context.Context, order *models.Order) error {
	defer r.s.lock(ctx)()
	order.ID = r.s.data.newID()
	r.s.data.orders[order.ID] = *loadedOrder(*order)
	return nil
}

func (r orderRepo) FindByID(ctx context.Context, id int64) (*models.Order, error) {
	defer r.s.lock(ctx)()
	v, ok := r.s.data.orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	return loadedOrder(v), nil
}

func (r orderRepo) CartsForUpdate(ctx context.Context, buyerID int64) ([]*models.Order, error) {
	status := models.OrderNotPurchased
	defer r.s.lock(ctx)()
	return r.filter(buyerID, &status, false), nil
}

func (r orderRepo) ListByBuyer(ctx context.Context, buyerID int64, status *models.OrderStatus, page models.Page) ([]*models.Order, error) {
	defer r.s.lock(ctx)()
	return paginate(r.filter(buyerID, status, true), page), nil
}

func (r orderRepo) filter(buyerID int64, status *models.OrderStatus, newestFirst bool) []*models.Order {
	out := make([]*models.Order, 0)
	for _, v := range r.s.data.orders {
		if v.BuyerID != buyerID {
			continue
		}
		if status != nil && v.Status != *status {
			continue
		}
		out = append(out, loadedOrder(v))
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r orderRepo) UpdateTotals(ctx context.Context, id int64, totalPrice decimal.Decimal, quantity int64, at time.Time) error {
	defer r.s.lock(ctx)()
	current, ok := r.s.data.orders[id]
	if !ok || current.Status != models.OrderNotPurchased {
		return repositories.ErrConflict
	}
	current.TotalPrice = totalPrice
	current.Quantity = quantity
	current.UpdatedAt = at
	r.s.data.orders[id] = current
	return nil
}

func (r orderRepo) MarkPurchased(ctx context.Context, id int64, purchaseDate time.Time) error {
	defer r.s.lock(ctx)()
	current, ok := r.s.data.orders[id]
	if !ok || current.Status != models.OrderNotPurchased {
		return repositories.ErrConflict
	}
	t := purchaseDate
	current.Status = models.OrderPurchased
	current.PurchaseDate = &t
	current.UpdatedAt = purchaseDate
	r.s.data.orders[id] = current
	return nil
}

// -----------------------------------------------------------------------------
// Order tickets
// -----------------------------------------------------------------------------

type orderTicketRepo struct{ s *Store }

func loadedOrderTicket(v models.OrderTicket) *models.OrderTicket {
	if v.Token != nil {
		t := *v.Token
		v.Token = &t
	}
	v.Ticket = nil
	return &v
}

func (r orderTicketRepo) Create(ctx context.Context, item *models.OrderTicket) error {
	defer r.s.lock(ctx)()
	item.ID = r.s.data.newID()
	v := *loadedOrderTicket(*item)
	v.Token = nil
	r.s.data.orderTickets[item.ID] = v
	return nil
}

func (r orderTicketRepo) FindByID(ctx context.Context, id int64) (*models.OrderTicket, error) {
	defer r.s.lock(ctx)()
	v, ok := r.s.data.orderTickets[id]
	if !ok {
		return nil, models.ErrOrderTicketNotFound
	}
	return loadedOrderTicket(v), nil
}

func (r orderTicketRepo) FindByIDForUpdate(ctx context.Context, id int64) (*models.OrderTicket, error) {
	return r.FindByID(ctx, id)
}

func (r orderTicketRepo) ListByOrder(ctx context.Context, orderID int64) ([]*models.OrderTicket, error) {
	defer r.s.lock(ctx)()
	out := make([]*models.OrderTicket, 0)
	for _, v := range r.s.data.orderTickets {
		if v.OrderID == orderID {
			out = append(out, loadedOrderTicket(v))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r orderTicketRepo) UpdateInactive(ctx context.Context, item *models.OrderTicket) error {
	defer r.s.lock(ctx)()
	current, ok := r.s.data.orderTickets[item.ID]
	if !ok || current.Status != models.OrderTicketInactive {
		return repositories.ErrConflict
	}
	current.RelationshipID = item.RelationshipID
	current.OwnerName = item.OwnerName
	current.SubQuantity = item.SubQuantity
	current.UpdatedAt = item.UpdatedAt
	r.s.data.orderTickets[item.ID] = current
	return nil
}

func (r orderTicketRepo) DeleteInactive(ctx context.Context, id int64) error {
	defer r.s.lock(ctx)()
	current, ok := r.s.data.orderTickets[id]
	if !ok || current.Status != models.OrderTicketInactive {
		return repositories.ErrConflict
	}
	delete(r.s.data.orderTickets, id)
	return nil
}

func (r orderTicketRepo) Activate(ctx context.Context, id int64, token string, at time.Time) error {
	defer r.s.lock(ctx)()
	current, ok := r.s.data.orderTickets[id]
	if !ok || current.Status != models.OrderTicketInactive || current.Token != nil {
		return repositories.ErrConflict
	}
	t := token
	current.Status = models.OrderTicketActive
	current.Token = &t
	current.UpdatedAt = at
	r.s.data.orderTickets[id] = current
	return nil
}

func (r orderTicketRepo) TransitionStatus(ctx context.Context, id int64, from, to models.OrderTicketStatus, at time.Time) error {
	defer r.s.lock(ctx)()
	current, ok := r.s.data.orderTickets[id]
	if !ok || current.Status != from {
		return repositories.ErrConflict
	}
	current.Status = to
	current.UpdatedAt = at
	r.s.data.orderTickets[id] = current
	return nil
}

// -----------------------------------------------------------------------------
// Relationships, categories, users
// -----------------------------------------------------------------------------

type relationshipRepo struct{ s *Store }

func (r relationshipRepo) Create(ctx context.Context, rel *models.Relationship) error {
	defer r.s.lock(ctx)()
	rel.ID = r.s.data.newID()
	r.s.data.relationships[rel.ID] = *rel
	return nil
}

func (r relationshipRepo) FindByID(ctx context.Context, id int64) (*models.Relationship, error) {
	defer r.s.lock(ctx)()
	v, ok := r.s.data.relationships[id]
	if !ok {
		return nil, models.ErrRelationshipNotFound
	}
	return &v, nil
}

func (r relationshipRepo) List(ctx context.Context) ([]*models.Relationship, error) {
	defer r.s.lock(ctx)()
	out := make([]*models.Relationship, 0, len(r.s.data.relationships))
	for _, v := range r.s.data.relationships {
		v := v
		out = append(out, &v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type categoryRepo struct{ s *Store }

func (r categoryRepo) Create(ctx context.Context, c *models.Category) error {
	defer r.s.lock(ctx)()
	c.ID = r.s.data.newID()
	r.s.data.categories[c.ID] = *c
	return nil
}

func (r categoryRepo) FindByID(ctx context.Context, id int64) (*models.Category, error) {
	defer r.s.lock(ctx)()
	v, ok := r.s.data.categories[id]
	if !ok {
		return nil, models.ErrCategoryNotFound
	}
	return &v, nil
}

func (r categoryRepo) List(ctx context.Context) ([]*models.Category, error) {
	defer r.s.lock(ctx)()
	out := make([]*models.Category, 0, len(r.s.data.categories))
	for _, v := range r.s.data.categories {
		v := v
		out = append(out, &v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r categoryRepo) Update(ctx context.Context, c *models.Category) error {
	defer r.s.lock(ctx)()
	current, ok := r.s.data.categories[c.ID]
	if !ok {
		return models.ErrCategoryNotFound
	}
	current.Name = c.Name
	current.UpdatedAt = c.UpdatedAt
	r.s.data.categories[c.ID] = current
	return nil
}

func (r categoryRepo) Delete(ctx context.Context, id int64) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.data.categories[id]; !ok {
		return models.ErrCategoryNotFound
	}
	delete(r.s.data.categories, id)
	for eventID, ids := range r.s.data.eventCategories {
		r.s.data.eventCategories[eventID] = removeID(ids, id)
	}
	return nil
}

type userRepo struct{ s *Store }

func (r userRepo) Create(ctx context.Context, user *models.User) error {
	defer r.s.lock(ctx)()
	for _, v := range r.s.data.users {
		if strings.EqualFold(v.Email, user.Email) {
			return models.ErrEmailTaken
		}
	}
	user.ID = r.s.data.newID()
	v := *user
	v.Roles = nil
	r.s.data.users[user.ID] = v
	return nil
}

func (r userRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	defer r.s.lock(ctx)()
	v, ok := r.s.data.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	v.Roles = append([]models.Role(nil), v.Roles...)
	return &v, nil
}

func (r userRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	defer r.s.lock(ctx)()
	for _, v := range r.s.data.users {
		if strings.EqualFold(v.Email, email) {
			v.Roles = append([]models.Role(nil), v.Roles...)
			return &v, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (r userRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r userRepo) AssignRole(ctx context.Context, userID int64, role models.Role) error {
	defer r.s.lock(ctx)()
	v, ok := r.s.data.users[userID]
	if !ok {
		return models.ErrUserNotFound
	}
	for _, have := range v.Roles {
		if have == role {
			return nil
		}
	}
	v.Roles = append(append([]models.Role(nil), v.Roles...), role)
	r.s.data.users[userID] = v
	return nil
}

func (r userRepo) Update(ctx context.Context, user *models.User) error {
	defer r.s.lock(ctx)()
	current, ok := r.s.data.users[user.ID]
	if !ok {
		return models.ErrUserNotFound
	}
	current.Username = user.Username
	current.FullName = user.FullName
	current.Password = user.Password
	current.UpdatedAt = user.UpdatedAt
	r.s.data.users[user.ID] = current
	return nil
}

func (r userRepo) List(ctx context.Context, page models.Page) ([]*models.User, error) {
	defer r.s.lock(ctx)()
	out := make([]*models.User, 0, len(r.s.data.users))
	for _, v := range r.s.data.users {
		v.Roles = append([]models.Role(nil), v.Roles...)
		out = append(out, &v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, page), nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []int64, id int64) []int64 {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func sortedCopy(ids []int64) []int64 {
	out := append([]int64(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
