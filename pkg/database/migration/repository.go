package migration

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLRepository, migration kayıtlarını `migrations` tablosunda tutar.
type SQLRepository struct {
	db *sql.DB
}

func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) EnsureTable(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS migrations (
			id INT AUTO_INCREMENT PRIMARY KEY,
			migration VARCHAR(255) NOT NULL,
			batch INT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func (r *SQLRepository) Ran(ctx context.Context) ([]string, error) {
	return r.names(ctx, "SELECT migration FROM migrations ORDER BY id ASC")
}

func (r *SQLRepository) BatchOf(ctx context.Context, batch int) ([]string, error) {
	return r.names(ctx, "SELECT migration FROM migrations WHERE batch = ? ORDER BY id ASC", batch)
}

func (r *SQLRepository) LastBatch(ctx context.Context) (int, error) {
	var batch sql.NullInt64
	if err := r.db.QueryRowContext(ctx, "SELECT MAX(batch) FROM migrations").Scan(&batch); err != nil {
		return 0, fmt.Errorf("failed to read last batch: %w", err)
	}
	if !batch.Valid {
		return 0, nil
	}
	return int(batch.Int64), nil
}

func (r *SQLRepository) Log(ctx context.Context, name string, batch int) error {
	_, err := r.db.ExecContext(ctx, "INSERT INTO migrations (migration, batch) VALUES (?, ?)", name, batch)
	return err
}

func (r *SQLRepository) Delete(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM migrations WHERE migration = ?", name)
	return err
}

func (r *SQLRepository) names(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
