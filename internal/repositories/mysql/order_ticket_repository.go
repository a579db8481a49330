package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/biyonik/ticketbox-core/internal/models"
	"github.com/biyonik/ticketbox-core/pkg/database"
)

type OrderTicketRepository struct {
	db *sql.DB
}

const orderTicketColumns = `id, order_id, ticket_id, relationship_id, owner_name, sub_quantity,
	status, token, created_at, updated_at`

func scanOrderTicket(row rowScanner) (*models.OrderTicket, error) {
	item := &models.OrderTicket{}
	var token sql.NullString
	err := row.Scan(
		&item.ID, &item.OrderID, &item.TicketID, &item.RelationshipID, &item.OwnerName,
		&item.SubQuantity, &item.Status, &token, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if token.Valid {
		s := token.String
		item.Token = &s
	}
	return item, nil
}

func (r *OrderTicketRepository) Create(ctx context.Context, item *models.OrderTicket) error {
	query := `
		INSERT INTO order_tickets (order_id, ticket_id, relationship_id, owner_name,
			sub_quantity, status, token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, NULL, ?, ?)
	`

	result, err := database.Executor(ctx, r.db).ExecContext(ctx, query,
		item.OrderID, item.TicketID, item.RelationshipID, item.OwnerName,
		item.SubQuantity, item.Status, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order ticket: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.ID = id
	return nil
}

func (r *OrderTicketRepository) FindByID(ctx context.Context, id int64) (*models.OrderTicket, error) {
	return r.findByID(ctx, id, "")
}

func (r *OrderTicketRepository) FindByIDForUpdate(ctx context.Context, id int64) (*models.OrderTicket, error) {
	return r.findByID(ctx, id, database.LockClause(ctx))
}

func (r *OrderTicketRepository) findByID(ctx context.Context, id int64, lock string) (*models.OrderTicket, error) {
	query := "SELECT " + orderTicketColumns + " FROM order_tickets WHERE id = ?" + lock

	item, err := scanOrderTicket(database.Executor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, models.ErrOrderTicketNotFound, "find order ticket")
	}
	return item, nil
}

func (r *OrderTicketRepository) ListByOrder(ctx context.Context, orderID int64) ([]*models.OrderTicket, error) {
	query := "SELECT " + orderTicketColumns + " FROM order_tickets WHERE order_id = ? ORDER BY id ASC" +
		database.LockClause(ctx)

	rows, err := database.Executor(ctx, r.db).QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order tickets: %w", err)
	}
	defer rows.Close()

	items := make([]*models.OrderTicket, 0)
	for rows.Next() {
		item, err := scanOrderTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order ticket: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *OrderTicketRepository) UpdateInactive(ctx context.Context, item *models.OrderTicket) error {
	query := `
		UPDATE order_tickets
		SET relationship_id = ?, owner_name = ?, sub_quantity = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := database.Executor(ctx, r.db).ExecContext(ctx, query,
		item.RelationshipID, item.OwnerName, item.SubQuantity, item.UpdatedAt,
		item.ID, models.OrderTicketInactive,
	)
	if err != nil {
		return fmt.Errorf("failed to update order ticket: %w", err)
	}
	return expectOneRow(result, "update order ticket")
}

func (r *OrderTicketRepository) DeleteInactive(ctx context.Context, id int64) error {
	query := "DELETE FROM order_tickets WHERE id = ? AND status = ?"

	result, err := database.Executor(ctx, r.db).ExecContext(ctx, query, id, models.OrderTicketInactive)
	if err != nil {
		return fmt.Errorf("failed to delete order ticket: %w", err)
	}
	return expectOneRow(result, "delete order ticket")
}

func (r *OrderTicketRepository) Activate(ctx context.Context, id int64, token string, at time.Time) error {
	query := `
		UPDATE order_tickets SET status = ?, token = ?, updated_at = ?
		WHERE id = ? AND status = ? AND token IS NULL
	`

	result, err := database.Executor(ctx, r.db).ExecContext(ctx, query,
		models.OrderTicketActive, token, at, id, models.OrderTicketInactive)
	if err != nil {
		return fmt.Errorf("failed to activate order ticket: %w", err)
	}
	return expectOneRow(result, "activate order ticket")
}

func (r *OrderTicketRepository) TransitionStatus(ctx context.Context, id int64, from, to models.OrderTicketStatus, at time.Time) error {
	query := "UPDATE order_tickets SET status = ?, updated_at = ? WHERE id = ? AND status = ?"

	result, err := database.Executor(ctx, r.db).ExecContext(ctx, query, to, at, id, from)
	if err != nil {
		return fmt.Errorf("failed to update order ticket status: %w", err)
	}
	return expectOneRow(result, "transition order ticket")
}
