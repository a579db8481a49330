package database

import (
	"context"
	"database/sql"
)

// QueryExecutor, hem *sql.DB (havuz) hem de *sql.Tx (transaction)
// tarafından örtük olarak uygulanan metodları tanımlar. Repository'ler
// bu arayüze bağlıdır; böylece aynı sorgu transaction içinde de dışında
// da çalışır.
type QueryExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
