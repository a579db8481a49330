// Package mysql, repositories arayüzlerinin MySQL implementasyonudur.
// Sorgular elle yazılmış SQL ve ? placeholder'ları kullanır; transaction
// context üzerinden pkg/database tarafından taşınır.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/biyonik/ticketbox-core/internal/repositories"
	"github.com/biyonik/ticketbox-core/pkg/database"
)

// Store, MySQL tabanlı repositories.Store implementasyonudur.
type Store struct {
	db     *sql.DB
	logger *log.Logger

	events        *EventRepository
	tickets       *TicketRepository
	orders        *OrderRepository
	orderTickets  *OrderTicketRepository
	relationships *RelationshipRepository
	categories    *CategoryRepository
	users         *UserRepository
}

var _ repositories.Store = (*Store)(nil)

// NewStore, tüm MySQL repository'lerini tek bir *sql.DB üzerinde kurar.
func NewStore(db *sql.DB, logger *log.Logger) *Store {
	return &Store{
		db:            db,
		logger:        logger,
		events:        &EventRepository{db: db},
		tickets:       &TicketRepository{db: db},
		orders:        &OrderRepository{db: db},
		orderTickets:  &OrderTicketRepository{db: db},
		relationships: &RelationshipRepository{db: db},
		categories:    &CategoryRepository{db: db},
		users:         &UserRepository{db: db},
	}
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return database.WithTx(ctx, s.db, s.logger, fn)
}

func (s *Store) Events() repositories.EventRepository               { return s.events }
func (s *Store) Tickets() repositories.TicketRepository             { return s.tickets }
func (s *Store) Orders() repositories.OrderRepository               { return s.orders }
func (s *Store) OrderTickets() repositories.OrderTicketRepository   { return s.orderTickets }
func (s *Store) Relationships() repositories.RelationshipRepository { return s.relationships }
func (s *Store) Categories() repositories.CategoryRepository        { return s.categories }
func (s *Store) Users() repositories.UserRepository                 { return s.users }

// Ping, sağlık kontrolü içindir.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// expectOneRow, koşullu güncellemelerde etkilenen satır sayısını kontrol eder.
func expectOneRow(result sql.Result, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected (%s): %w", op, err)
	}
	if n == 0 {
		return repositories.ErrConflict
	}
	return nil
}

// notFound, sql.ErrNoRows'u varlığa özgü NotFound hatasına çevirir.
func notFound(err error, notFoundErr error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

// replaceLinks, bir ilişki tablosundaki satırları yenileriyle değiştirir.
func replaceLinks(ctx context.Context, exec database.QueryExecutor, table, ownerCol, linkCol string, ownerID int64, ids []int64) error {
	if _, err := exec.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, ownerCol), ownerID); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}

	for _, id := range ids {
		if _, err := exec.ExecContext(ctx,
			fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (?, ?)", table, ownerCol, linkCol), ownerID, id); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}
	return nil
}

func selectLinks(ctx context.Context, exec database.QueryExecutor, table, ownerCol, linkCol string, ownerID int64) ([]int64, error) {
	rows, err := exec.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? ORDER BY %s", linkCol, table, ownerCol, linkCol), ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
