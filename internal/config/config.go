// -----------------------------------------------------------------------------
// Config Package
// -----------------------------------------------------------------------------
// Uygulamanın merkezi konfigürasyonu. Ayarlar ortam değişkenlerinden okunur;
// varsa önce .env dosyası yüklenir. Eksik değişkenler için varsayılan değer
// kullanılır ve log'a uyarı düşülür.
//
// İki ayrı gizli anahtar vardır: oturum token'ları için JWT.Secret, bilet
// kimlik bilgileri (QR kodları) için Credential.Secret. İkisinin aynı olması
// hiçbir ortamda kabul edilmez.
// -----------------------------------------------------------------------------

package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultJWTSecret        = "change-me-session-secret-for-local-development"
	defaultCredentialSecret = "change-me-ticket-credential-secret-for-local-dev"

	// MinSecretLength, production'da kabul edilen en kısa anahtar uzunluğu.
	MinSecretLength = 32
)

// Config, uygulamanın yapılandırma nesnesidir.
type Config struct {
	App struct {
		Name string
		Env  string // development, production, test
		URL  string
	}

	Server struct {
		Port            string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
	}

	DB struct {
		Driver          string // mysql, memory
		DSN             string
		MaxOpenConns    int
		MaxIdleConns    int
		ConnMaxLifetime time.Duration
	}

	// Oturum token'ları
	JWT struct {
		Secret            string
		Issuer            string
		Expiration        time.Duration
		RefreshExpiration time.Duration
	}

	// Bilet kimlik bilgileri
	Credential struct {
		Secret string
		Issuer string
	}

	Redis struct {
		Host     string
		Port     int
		Password string
		DB       int
	}

	Cache struct {
		Driver   string // redis, memory
		Prefix   string
		EventTTL time.Duration
	}

	RateLimit struct {
		Enabled           bool
		RequestsPerSecond float64
		Burst             int
	}

	// URL boşsa olaylar broker'a gönderilmez.
	Broker struct {
		URL      string
		Exchange string
	}

	Metrics struct {
		Enabled bool
		Path    string
	}

	// Satın alma makbuzu e-postaları
	Mail struct {
		Driver    string // smtp, log
		Host      string
		Port      int
		Username  string
		Password  string
		FromEmail string
		FromName  string
	}

	Queue struct {
		Driver      string // redis, memory
		Name        string
		MaxAttempts int
		RetryDelay  time.Duration
	}
}

// Load, .env dosyasını (varsa) ve ortam değişkenlerini okuyarak Config
// döndürür. Dosyanın olmaması hata değildir.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("⚠️  .env okunamadı: %v", err)
	}

	cfg := &Config{}

	cfg.App.Name = getEnv("APP_NAME", "ticketbox")
	cfg.App.Env = getEnv("APP_ENV", "development")
	cfg.App.URL = getEnv("APP_URL", "http://localhost:8000")

	cfg.Server.Port = getEnv("PORT", "8000")
	cfg.Server.ReadTimeout = getEnvAsDuration("SERVER_READ_TIMEOUT", 15)
	cfg.Server.WriteTimeout = getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15)
	cfg.Server.ShutdownTimeout = getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10)

	cfg.DB.Driver = getEnv("DB_DRIVER", "mysql")
	cfg.DB.DSN = getEnv("DB_DSN", "root:password@tcp(127.0.0.1:3306)/ticketbox?parseTime=true")
	cfg.DB.MaxOpenConns = getEnvAsInt("DB_MAX_OPEN_CONNS", 25)
	cfg.DB.MaxIdleConns = getEnvAsInt("DB_MAX_IDLE_CONNS", 25)
	cfg.DB.ConnMaxLifetime = getEnvAsDuration("DB_CONN_MAX_LIFETIME", 300)

	cfg.JWT.Secret = getEnv("JWT_SECRET", defaultJWTSecret)
	cfg.JWT.Issuer = getEnv("JWT_ISSUER", "ticketbox")
	cfg.JWT.Expiration = getEnvAsDuration("JWT_EXPIRATION", 3600)
	cfg.JWT.RefreshExpiration = getEnvAsDuration("JWT_REFRESH_EXPIRATION", 172800)

	cfg.Credential.Secret = getEnv("CREDENTIAL_SECRET", defaultCredentialSecret)
	cfg.Credential.Issuer = getEnv("CREDENTIAL_ISSUER", "ticketbox-gate")

	cfg.Redis.Host = getEnv("REDIS_HOST", "127.0.0.1")
	cfg.Redis.Port = getEnvAsInt("REDIS_PORT", 6379)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", 0)

	cfg.Cache.Driver = getEnv("CACHE_DRIVER", "memory")
	cfg.Cache.Prefix = getEnv("CACHE_PREFIX", "ticketbox:")
	cfg.Cache.EventTTL = getEnvAsDuration("CACHE_EVENT_TTL", 60)

	cfg.RateLimit.Enabled = getEnvAsBool("RATE_LIMIT_ENABLED", true)
	cfg.RateLimit.RequestsPerSecond = getEnvAsFloat("RATE_LIMIT_RPS", 10)
	cfg.RateLimit.Burst = getEnvAsInt("RATE_LIMIT_BURST", 20)

	cfg.Broker.URL = getEnv("BROKER_URL", "")
	cfg.Broker.Exchange = getEnv("BROKER_EXCHANGE", "ticketbox.events")

	cfg.Metrics.Enabled = getEnvAsBool("METRICS_ENABLED", true)
	cfg.Metrics.Path = getEnv("METRICS_PATH", "/metrics")

	cfg.Mail.Driver = getEnv("MAIL_DRIVER", "log")
	cfg.Mail.Host = getEnv("MAIL_HOST", "127.0.0.1")
	cfg.Mail.Port = getEnvAsInt("MAIL_PORT", 1025)
	cfg.Mail.Username = getEnv("MAIL_USERNAME", "")
	cfg.Mail.Password = getEnv("MAIL_PASSWORD", "")
	cfg.Mail.FromEmail = getEnv("MAIL_FROM_ADDRESS", "no-reply@ticketbox.local")
	cfg.Mail.FromName = getEnv("MAIL_FROM_NAME", "TicketBox")

	cfg.Queue.Driver = getEnv("QUEUE_DRIVER", "memory")
	cfg.Queue.Name = getEnv("QUEUE_NAME", "notifications")
	cfg.Queue.MaxAttempts = getEnvAsInt("QUEUE_MAX_ATTEMPTS", 3)
	cfg.Queue.RetryDelay = getEnvAsDuration("QUEUE_RETRY_DELAY", 30)

	return cfg
}

// Validate, yapılandırmanın tutarlılığını kontrol eder.
func (c *Config) Validate() error {
	if c.JWT.RefreshExpiration <= c.JWT.Expiration {
		return errors.New("JWT_REFRESH_EXPIRATION, JWT_EXPIRATION'dan uzun olmalı")
	}
	if c.JWT.Secret == c.Credential.Secret {
		return errors.New("JWT_SECRET ve CREDENTIAL_SECRET aynı olamaz")
	}

	if c.IsProduction() {
		if err := strongSecret("JWT_SECRET", c.JWT.Secret, defaultJWTSecret); err != nil {
			return err
		}
		if err := strongSecret("CREDENTIAL_SECRET", c.Credential.Secret, defaultCredentialSecret); err != nil {
			return err
		}
	}

	switch c.DB.Driver {
	case "mysql", "memory":
	default:
		return fmt.Errorf("geçersiz DB_DRIVER: %s (mysql veya memory olmalı)", c.DB.Driver)
	}

	switch c.Cache.Driver {
	case "redis", "memory":
	default:
		return fmt.Errorf("geçersiz CACHE_DRIVER: %s (redis veya memory olmalı)", c.Cache.Driver)
	}

	switch c.Mail.Driver {
	case "smtp", "log":
	default:
		return fmt.Errorf("geçersiz MAIL_DRIVER: %s (smtp veya log olmalı)", c.Mail.Driver)
	}

	switch c.Queue.Driver {
	case "redis", "memory":
	default:
		return fmt.Errorf("geçersiz QUEUE_DRIVER: %s (redis veya memory olmalı)", c.Queue.Driver)
	}
	if c.Queue.MaxAttempts < 1 {
		return errors.New("QUEUE_MAX_ATTEMPTS en az 1 olmalı")
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst < 1) {
		return errors.New("RATE_LIMIT_RPS ve RATE_LIMIT_BURST pozitif olmalı")
	}

	if c.IsProduction() {
		if c.DB.Driver == "memory" {
			log.Println("⚠️  UYARI: Memory storage production ortamı için önerilmez!")
		}
		if c.Cache.Driver == "memory" {
			log.Println("⚠️  UYARI: Memory cache production ortamı için önerilmez!")
		}
	}
	return nil
}

func strongSecret(key, value, fallback string) error {
	if len(value) < MinSecretLength {
		return fmt.Errorf("%s production'da en az %d karakter olmalı", key, MinSecretLength)
	}
	if value == fallback {
		return fmt.Errorf("%s production'da değiştirilmelidir", key)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// Addr, http.Server için dinleme adresi.
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

// -----------------------------------------------------------------------------
// env helpers
// -----------------------------------------------------------------------------

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("⚠️  Uyarı: %s ortam değişkeni bulunamadı, varsayılan (%s) kullanılıyor.", key, redact(key, defaultValue))
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("⚠️  Uyarı: %s için geçersiz değer: %s, varsayılan (%d) kullanılıyor.", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("⚠️  Uyarı: %s için geçersiz değer: %s, varsayılan (%g) kullanılıyor.", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("⚠️  Uyarı: %s için geçersiz boolean değer: %s, varsayılan (%t) kullanılıyor.", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsDuration, saniye cinsinden okur.
func getEnvAsDuration(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvAsInt(key, defaultSeconds)) * time.Second
}

func redact(key, value string) string {
	switch key {
	case "JWT_SECRET", "CREDENTIAL_SECRET", "REDIS_PASSWORD", "DB_DSN", "MAIL_PASSWORD":
		if value == "" {
			return ""
		}
		return "***"
	}
	return value
}
