// -----------------------------------------------------------------------------
// TicketBox API Server
// -----------------------------------------------------------------------------
// Konfigürasyonu yükler, altyapıyı (MySQL/memory, Redis, AMQP, kuyruk)
// açar, servisleri ve route'ları bağlar ve HTTP sunucusunu başlatır.
// SIGINT/SIGTERM ile sırasıyla HTTP, kuyruk worker'ı, olay dağıtıcısı ve
// bağlantılar kapatılır.
// -----------------------------------------------------------------------------

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/biyonik/ticketbox-core/internal/config"
	"github.com/biyonik/ticketbox-core/internal/middleware"
)

func main() {
	logger := log.New(os.Stdout, "[ticketbox] ", log.LstdFlags|log.Lmsgprefix)

	// 1. Konfigürasyon
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("❌ Geçersiz konfigürasyon: %v", err)
	}
	logger.Printf("🚀 %s başlatılıyor (env: %s)", cfg.App.Name, cfg.App.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Altyapı ve servisler
	app, err := bootstrap(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("❌ Uygulama başlatılamadı: %v", err)
	}
	defer app.close()

	// 3. Kuyruk worker'ı
	workerCtx, stopWorker := context.WithCancel(context.Background())
	workerDone := make(chan struct{})
	go func() {
		app.worker.Run(workerCtx, cfg.Queue.Name)
		close(workerDone)
	}()

	// 4. HTTP sunucusu
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      app.handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("✅ HTTP sunucusu dinliyor: %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Println("🔄 Kapatma sinyali alındı")
	case err := <-serverErr:
		logger.Printf("❌ HTTP sunucusu hatası: %v", err)
	}

	// 5. Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("⚠️  HTTP sunucusu zamanında kapanmadı: %v", err)
	}
	middleware.StopAllLimiters()

	stopWorker()
	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		logger.Println("⚠️  Kuyruk worker'ı zamanında durmadı")
	}

	if err := app.dispatcher.ShutdownWithTimeout(5 * time.Second); err != nil {
		logger.Printf("⚠️  Olay dağıtıcısı: %v", err)
	}

	logger.Println("✅ Sunucu kapatıldı")
}
