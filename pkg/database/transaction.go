// -----------------------------------------------------------------------------
// Transaction Yönetimi
// -----------------------------------------------------------------------------
// Transaction, context içinde taşınır. WithTx yeni bir *sql.Tx açar, fn'i
// transaction'lı context ile çağırır ve fn'in sonucuna göre commit ya da
// rollback yapar. Executor, context'te transaction varsa onu, yoksa havuzu
// döndürür.
// -----------------------------------------------------------------------------

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
)

type txKey struct{}

// WithTx, fn'i tek bir transaction içinde çalıştırır. Context zaten bir
// transaction taşıyorsa fn doğrudan o transaction ile çağrılır.
func WithTx(ctx context.Context, db *sql.DB, logger *log.Logger, fn func(ctx context.Context) error) error {
	if TxFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("transaction başlatılamadı: %w", err)
	}
	logger.Println("🔄 Transaction başladı.")

	// fn panic ederse transaction açık kalmaz; geri alınıp panic sürdürülür.
	defer func() {
		if r := recover(); r != nil {
			logger.Printf("🚨 Transaction içinde panic: %v", r)
			rollback(tx, logger)
			panic(r)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		rollback(tx, logger)
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit edilemedi: %w", err)
	}
	logger.Println("✅ Transaction commit edildi.")
	return nil
}

func rollback(tx *sql.Tx, logger *log.Logger) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logger.Printf("❌ Transaction geri alınamadı: %v", err)
		return
	}
	logger.Println("❌ Transaction geri alındı.")
}

// TxFromContext, context'teki transaction'ı döndürür (yoksa nil).
func TxFromContext(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}

// Executor, context'te transaction varsa onu, yoksa db'yi döndürür.
func Executor(ctx context.Context, db *sql.DB) QueryExecutor {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return db
}

// LockClause, transaction içindeyse satır kilidi için " FOR UPDATE" döndürür.
// Transaction dışında kilit anlamsız olduğundan boş döner.
func LockClause(ctx context.Context) string {
	if TxFromContext(ctx) != nil {
		return " FOR UPDATE"
	}
	return ""
}
