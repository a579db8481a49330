// -----------------------------------------------------------------------------
// Database Package
// -----------------------------------------------------------------------------
// Bu dosya, uygulamanın MySQL veritabanına bağlanmasını sağlayan merkezi
// bağlantı fonksiyonunu içerir. Bağlantı havuzu ayarları config üzerinden
// gelir; bağlantı başarılı olduğunda *sql.DB döndürülür.
// -----------------------------------------------------------------------------

package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/go-sql-driver/mysql"
)

// PoolConfig, bağlantı havuzu ayarlarıdır.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultPoolConfig, 25/25/5dk varsayılanlarını döndürür.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    25,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// Connect, verilen DSN ile MySQL veritabanına bağlanır ve *sql.DB döndürür.
//  0. DSN NormalizeDSN ile zorunlu parametrelerle tamamlanır.
//  1. sql.Open ile bağlantı nesnesi oluşturulur.
//  2. Havuz ayarları uygulanır.
//  3. PingContext ile veritabanının ulaşılabilirliği kontrol edilir.
func Connect(ctx context.Context, dsn string, pool PoolConfig, logger *log.Logger) (*sql.DB, error) {
	dsn, err := NormalizeDSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)

	logger.Println("Veritabanına bağlanılıyor...")

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Println("✅ Veritabanı bağlantısı başarılı!")
	return db, nil
}

// NormalizeDSN, repository'lerin dayandığı sürücü ayarlarını zorlar:
//   - parseTime: DATETIME kolonları time.Time olarak okunur.
//   - clientFoundRows: koşullu UPDATE'lerde RowsAffected, değişen değil
//     eşleşen satır sayısını döndürür. Değer değişmeyen bir güncelleme
//     böylece yanlışlıkla "eşleşme yok" sayılmaz.
//   - loc=UTC.
func NormalizeDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid DB_DSN: %w", err)
	}
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}
