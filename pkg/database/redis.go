// -----------------------------------------------------------------------------
// Redis Connection
// -----------------------------------------------------------------------------
// Redis istemcisini yapılandırır ve bağlantıyı doğrular. Etkinlik önbelleği
// (pkg/cache.RedisCache) bu istemciyi kullanır.
// -----------------------------------------------------------------------------

package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig, Redis bağlantı ayarlarını tutar.
type RedisConfig struct {
	Host         string        // Redis sunucu adresi
	Port         int           // Redis port
	Password     string        // Redis şifresi (opsiyonel)
	DB           int           // Database numarası (0-15)
	PoolSize     int           // Connection pool boyutu
	MinIdleConns int           // Minimum idle connection sayısı
	MaxRetries   int           // Maksimum retry sayısı
	DialTimeout  time.Duration // Bağlantı timeout süresi
	ReadTimeout  time.Duration // Okuma timeout süresi
	WriteTimeout time.Duration // Yazma timeout süresi
}

// DefaultRedisConfig, yerel geliştirme için varsayılan ayarları döndürür.
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Host:         "127.0.0.1",
		Port:         6379,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// RedisConfigFor, varsayılan havuz ve timeout ayarlarını koruyarak sunucu
// adresini ve veritabanını ayarlar.
func RedisConfigFor(host string, port int, password string, db int) *RedisConfig {
	cfg := DefaultRedisConfig()
	cfg.Host = host
	cfg.Port = port
	cfg.Password = password
	cfg.DB = db
	return cfg
}

// RedisClient, go-redis istemcisini loglama ile sarmalar.
type RedisClient struct {
	client *redis.Client
	logger *log.Logger
}

// NewRedisClient, bağlantıyı açar ve Ping ile doğrular.
func NewRedisClient(ctx context.Context, config *RedisConfig, logger *log.Logger) (*RedisClient, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Printf("❌ Redis bağlantı hatası: %v", err)
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Printf("✅ Redis bağlantısı başarılı: %s:%d (DB: %d)", config.Host, config.Port, config.DB)

	return &RedisClient{client: client, logger: logger}, nil
}

// Client, alttaki go-redis istemcisini döndürür.
func (r *RedisClient) Client() *redis.Client {
	return r.client
}

// Ping, sağlık kontrolü için kullanılır.
func (r *RedisClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.client.Ping(ctx).Err()
}

// Close, bağlantı havuzunu kapatır.
func (r *RedisClient) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Printf("❌ Redis kapatma hatası: %v", err)
		return err
	}
	r.logger.Println("✅ Redis bağlantısı kapatıldı")
	return nil
}
