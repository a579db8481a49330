package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/biyonik/ticketbox-core/internal/models"
	"github.com/biyonik/ticketbox-core/pkg/database"
)

type TicketRepository struct {
	db *sql.DB
}

const ticketColumns = `id, event_id, type, start_sale, end_sale, unit_price, capacity,
	sold, min_qty_per_order, max_qty_per_order, status, created_at, updated_at`

func scanTicket(row rowScanner) (*models.Ticket, error) {
	ticket := &models.Ticket{}
	err := row.Scan(
		&ticket.ID, &ticket.EventID, &ticket.Type, &ticket.StartSale, &ticket.EndSale,
		&ticket.UnitPrice, &ticket.Capacity, &ticket.Sold, &ticket.MinQtyPerOrder,
		&ticket.MaxQtyPerOrder, &ticket.Status, &ticket.CreatedAt, &ticket.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *TicketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	query := `
		INSERT INTO tickets (event_id, type, start_sale, end_sale, unit_price, capacity,
			sold, min_qty_per_order, max_qty_per_order, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := database.Executor(ctx, r.db).ExecContext(ctx, query,
		ticket.EventID, ticket.Type, ticket.StartSale, ticket.EndSale, ticket.UnitPrice,
		ticket.Capacity, ticket.Sold, ticket.MinQtyPerOrder, ticket.MaxQtyPerOrder,
		ticket.Status, ticket.CreatedAt, ticket.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	ticket.ID = id
	return nil
}

func (r *TicketRepository) FindByID(ctx context.Context, id int64) (*models.Ticket, error) {
	return r.findByID(ctx, id, "")
}

func (r *TicketRepository) FindByIDForUpdate(ctx context.Context, id int64) (*models.Ticket, error) {
	return r.findByID(ctx, id, database.LockClause(ctx))
}

func (r *TicketRepository) findByID(ctx context.Context, id int64, lock string) (*models.Ticket, error) {
	query := "SELECT " + ticketColumns + " FROM tickets WHERE id = ?" + lock

	ticket, err := scanTicket(database.Executor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, models.ErrTicketNotFound, "find ticket")
	}
	return ticket, nil
}

func (r *TicketRepository) ListByEvent(ctx context.Context, eventID int64) ([]*models.Ticket, error) {
	query := "SELECT " + ticketColumns + " FROM tickets WHERE event_id = ? ORDER BY id ASC"

	rows, err := database.Executor(ctx, r.db).QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickets: %w", err)
	}
	defer rows.Close()

	tickets := make([]*models.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}

func (r *TicketRepository) Update(ctx context.Context, ticket *models.Ticket) error {
	query := `
		UPDATE tickets
		SET type = ?, start_sale = ?, end_sale = ?, unit_price = ?, capacity = ?,
			min_qty_per_order = ?, max_qty_per_order = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := database.Executor(ctx, r.db).ExecContext(ctx, query,
		ticket.Type, ticket.StartSale, ticket.EndSale, ticket.UnitPrice, ticket.Capacity,
		ticket.MinQtyPerOrder, ticket.MaxQtyPerOrder, ticket.UpdatedAt,
		ticket.ID, models.TicketPending,
	)
	if err != nil {
		return fmt.Errorf("failed to update ticket: %w", err)
	}
	return expectOneRow(result, "update ticket")
}

func (r *TicketRepository) TransitionStatus(ctx context.Context, id int64, from, to models.TicketStatus, at time.Time) error {
	query := "UPDATE tickets SET status = ?, updated_at = ? WHERE id = ? AND status = ?"

	result, err := database.Executor(ctx, r.db).ExecContext(ctx, query, to, at, id, from)
	if err != nil {
		return fmt.Errorf("failed to update ticket status: %w", err)
	}
	return expectOneRow(result, "transition ticket")
}

func (r *TicketRepository) IncrementSold(ctx context.Context, id int64, qty int64, at time.Time) error {
	query := `
		UPDATE tickets
		SET sold = sold + ?, updated_at = ?
		WHERE id = ? AND sold + ? <= capacity
	`

	result, err := database.Executor(ctx, r.db).ExecContext(ctx, query, qty, at, id, qty)
	if err != nil {
		return fmt.Errorf("failed to increment sold: %w", err)
	}
	return expectOneRow(result, "increment sold")
}

func (r *TicketRepository) SetAcceptedRelationships(ctx context.Context, ticketID int64, relationshipIDs []int64) error {
	return replaceLinks(ctx, database.Executor(ctx, r.db),
		"ticket_accepted_relationships", "ticket_id", "relationship_id", ticketID, relationshipIDs)
}

func (r *TicketRepository) AcceptedRelationships(ctx context.Context, ticketID int64) ([]int64, error) {
	return selectLinks(ctx, database.Executor(ctx, r.db),
		"ticket_accepted_relationships", "ticket_id", "relationship_id", ticketID)
}
