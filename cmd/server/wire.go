package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/biyonik/ticketbox-core/internal/clock"
	"github.com/biyonik/ticketbox-core/internal/config"
	"github.com/biyonik/ticketbox-core/internal/controllers"
	"github.com/biyonik/ticketbox-core/internal/middleware"
	"github.com/biyonik/ticketbox-core/internal/migrations"
	"github.com/biyonik/ticketbox-core/internal/monitoring"
	"github.com/biyonik/ticketbox-core/internal/notifications"
	"github.com/biyonik/ticketbox-core/internal/repositories"
	"github.com/biyonik/ticketbox-core/internal/repositories/memory"
	"github.com/biyonik/ticketbox-core/internal/repositories/mysql"
	"github.com/biyonik/ticketbox-core/internal/router"
	"github.com/biyonik/ticketbox-core/internal/services"
	"github.com/biyonik/ticketbox-core/pkg/auth"
	"github.com/biyonik/ticketbox-core/pkg/broker"
	"github.com/biyonik/ticketbox-core/pkg/cache"
	"github.com/biyonik/ticketbox-core/pkg/credential"
	"github.com/biyonik/ticketbox-core/pkg/database"
	"github.com/biyonik/ticketbox-core/pkg/events"
	"github.com/biyonik/ticketbox-core/pkg/mail"
	"github.com/biyonik/ticketbox-core/pkg/queue"
)

// application, main'in ihtiyaç duyduğu bağlanmış parçalar.
type application struct {
	handler    http.Handler
	dispatcher *events.Dispatcher
	worker     *queue.Worker
	closers    []func() error
	logger     *log.Logger
}

func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Printf("⚠️  Kapatma hatası: %v", err)
		}
	}
}

func bootstrap(ctx context.Context, cfg *config.Config, logger *log.Logger) (app *application, err error) {
	app = &application{logger: logger}
	defer func() {
		if err != nil {
			app.close()
		}
	}()

	pingers := make(map[string]controllers.Pinger)

	// 1. Storage
	var store repositories.Store
	switch cfg.DB.Driver {
	case "mysql":
		var db *sql.DB
		db, err = database.Connect(ctx, cfg.DB.DSN, database.PoolConfig{
			MaxOpenConns:    cfg.DB.MaxOpenConns,
			MaxIdleConns:    cfg.DB.MaxIdleConns,
			ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		}, logger)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, db.Close)
		mysqlStore := mysql.NewStore(db, logger)
		store = mysqlStore
		pingers["database"] = mysqlStore
	default:
		memStore := memory.NewStore()
		store = memStore
		pingers["database"] = memStore
		// Memory storage her açılışta boştur.
		if err = migrations.SeedRelationships(ctx, store, logger); err != nil {
			return nil, err
		}
		logger.Println("⚠️  Memory storage kullanılıyor; veriler kapanışta kaybolur")
	}

	// 2. Redis (cache ya da kuyruk isterse)
	var redisClient redis.UniversalClient
	if cfg.Cache.Driver == "redis" || cfg.Queue.Driver == "redis" {
		var rc *database.RedisClient
		rc, err = database.NewRedisClient(ctx,
			database.RedisConfigFor(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB), logger)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, rc.Close)
		redisClient = rc.Client()
		pingers["redis"] = rc
	}

	var eventCache cache.Cache
	if cfg.Cache.Driver == "redis" {
		eventCache = cache.NewRedisCache(redisClient, logger, cfg.Cache.Prefix)
	} else {
		mc := cache.NewMemoryCache(logger, 0)
		app.closers = append(app.closers, mc.Close)
		eventCache = mc
	}

	// 3. Olaylar: metrikler, broker, bildirimler
	app.dispatcher = events.NewDispatcher(logger)
	metrics := monitoring.New()
	app.dispatcher.Listen(events.Wildcard, metrics)

	if cfg.Broker.URL != "" {
		var publisher *broker.AMQPPublisher
		publisher, err = broker.Dial(cfg.Broker.URL, cfg.Broker.Exchange, logger)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, publisher.Close)
		app.dispatcher.Listen(events.Wildcard, publisher)
	}

	var jobs queue.Queue
	if cfg.Queue.Driver == "redis" {
		jobs = queue.NewRedisQueue(redisClient, logger, cfg.Cache.Prefix)
	} else {
		jobs = queue.NewMemoryQueue(logger)
	}
	notifier := notifications.NewNotifier(jobs, cfg.Queue.Name, cfg.Queue.MaxAttempts, logger)
	app.dispatcher.Subscribe(notifier.Events(), notifier)
	if cfg.IsDevelopment() {
		logger.Printf("🔄 Olay listener'ları: %v", app.dispatcher.Stats())
	}

	// 4. Servisler
	signer, err := credential.NewSigner(cfg.Credential.Secret, cfg.Credential.Issuer)
	if err != nil {
		return nil, fmt.Errorf("credential signer: %w", err)
	}
	session := &auth.JWTConfig{
		Secret:           cfg.JWT.Secret,
		Issuer:           cfg.JWT.Issuer,
		ExpirationTime:   cfg.JWT.Expiration,
		RefreshExpiresIn: cfg.JWT.RefreshExpiration,
	}

	deps := services.Deps{
		Store:     store,
		Clock:     clock.NewSystem(),
		Publisher: app.dispatcher,
		Snapshots: services.NewSnapshotCache(eventCache, cfg.Cache.EventTTL, logger),
		Logger:    logger,
	}
	creds := services.NewCredentialService(deps, signer, credential.NewPNGEncoder())
	carts := services.NewCartService(deps, services.NewCapacityLedger(store), creds)
	users := services.NewUserService(deps, auth.NewHasher(bcrypt.DefaultCost), session, carts)
	catalog := services.NewCatalogService(deps)
	approvals := services.NewApprovalService(deps, users)

	// 5. Bildirim worker'ı
	var mailer mail.Mailer
	if cfg.Mail.Driver == "smtp" {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:      cfg.Mail.Host,
			Port:      cfg.Mail.Port,
			Username:  cfg.Mail.Username,
			Password:  cfg.Mail.Password,
			FromEmail: cfg.Mail.FromEmail,
			FromName:  cfg.Mail.FromName,
		}, logger)
	} else {
		mailer = mail.NewLogMailer(logger, cfg.Mail.FromEmail, cfg.Mail.FromName)
	}
	app.worker = queue.NewWorker(jobs, logger).SetRetryDelay(cfg.Queue.RetryDelay)
	notifications.NewHandlers(users, carts, creds, mailer, cfg.Mail.FromName, logger).Register(app.worker)

	// 6. HTTP
	r := router.New()
	r.Use(middleware.PanicRecovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.App.URL))

	opts := router.Options{Guard: auth.NewJWTGuard(session)}
	if cfg.RateLimit.Enabled {
		opts.Limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}
	if cfg.Metrics.Enabled {
		r.Use(metrics.Middleware)
		opts.MetricsHandler = metrics.Handler()
		opts.MetricsPath = cfg.Metrics.Path
	}

	router.Register(r, router.Controllers{
		Auth:       controllers.NewAuthController(users, logger),
		Events:     controllers.NewEventController(catalog, approvals, logger),
		Tickets:    controllers.NewTicketController(catalog, approvals, logger),
		Carts:      controllers.NewCartController(carts, creds, logger),
		Gate:       controllers.NewGateController(creds, logger),
		Categories: controllers.NewCategoryController(catalog, logger),
		Health:     controllers.NewHealthController(pingers),
	}, opts)

	app.handler = r
	return app, nil
}
