package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/biyonik/ticketbox-core/internal/models"
	"github.com/biyonik/ticketbox-core/pkg/database"
)

type OrderRepository struct {
	db *sql.DB
}

const orderColumns = `id, buyer_id, status, total_price, quantity, purchase_date, created_at, updated_at`

func scanOrder(row rowScanner) (*models.Order, error) {
	order := &models.Order{}
	var purchaseDate sql.NullTime
	err := row.Scan(
		&order.ID, &order.BuyerID, &order.Status, &order.TotalPrice, &order.Quantity,
		&purchaseDate, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if purchaseDate.Valid {
		t := purchaseDate.Time
		order.PurchaseDate = &t
	}
	return order, nil
}

func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (buyer_id, status, total_price, quantity, purchase_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	var purchaseDate sql.NullTime
	if order.PurchaseDate != nil {
		purchaseDate = sql.NullTime{Time: *order.PurchaseDate, Valid: true}
	}

	result, err := database.Executor(ctx, r.db).ExecContext(ctx, query,
		order.BuyerID, order.Status, order.TotalPrice, order.Quantity, purchaseDate,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	order.ID = id
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*models.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders WHERE id = ?"

	order, err := scanOrder(database.Executor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, models.ErrOrderNotFound, "find order")
	}
	return order, nil
}

func (r *OrderRepository) CartsForUpdate(ctx context.Context, buyerID int64) ([]*models.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders WHERE buyer_id = ? AND status = ? ORDER BY id ASC" +
		database.LockClause(ctx)

	return r.query(ctx, query, buyerID, models.OrderNotPurchased)
}

func (r *OrderRepository) ListByBuyer(ctx context.Context, buyerID int64, status *models.OrderStatus, page models.Page) ([]*models.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders WHERE buyer_id = ?"
	args := []any{buyerID}

	if status != nil {
		query += " AND status = ?"
		args = append(args, *status)
	}
	query += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, page.Limit(), page.Offset())

	return r.query(ctx, query, args...)
}

func (r *OrderRepository) query(ctx context.Context, query string, args ...any) ([]*models.Order, error) {
	rows, err := database.Executor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*models.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (r *OrderRepository) UpdateTotals(ctx context.Context, id int64, totalPrice decimal.Decimal, quantity int64, at time.Time) error {
	query := `
		UPDATE orders SET total_price = ?, quantity = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := database.Executor(ctx, r.db).ExecContext(ctx, query,
		totalPrice, quantity, at, id, models.OrderNotPurchased)
	if err != nil {
		return fmt.Errorf("failed to update order totals: %w", err)
	}
	return expectOneRow(result, "update order totals")
}

func (r *OrderRepository) MarkPurchased(ctx context.Context, id int64, purchaseDate time.Time) error {
	query := `
		UPDATE orders SET status = ?, purchase_date = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := database.Executor(ctx, r.db).ExecContext(ctx, query,
		models.OrderPurchased, purchaseDate, purchaseDate, id, models.OrderNotPurchased)
	if err != nil {
		return fmt.Errorf("failed to mark order purchased: %w", err)
	}
	return expectOneRow(result, "mark purchased")
}
