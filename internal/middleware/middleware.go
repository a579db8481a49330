// -----------------------------------------------------------------------------
// Middleware Package
// -----------------------------------------------------------------------------
// HTTP istek yaşam döngüsüne müdahale eden katman. Her middleware bir
// http.Handler alıp yenisini döndürür; router global ve route bazlı zincirleri
// bu tip üzerinden kurar.
// -----------------------------------------------------------------------------

package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/biyonik/ticketbox-core/internal/http/response"
)

// Middleware, bir sonraki handler'ı saran fonksiyon tipidir.
type Middleware func(next http.Handler) http.Handler

// Logging, her isteği method, path, durum kodu ve süreyle loglar.
func Logging(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := response.NewStatusRecorder(w)

			next.ServeHTTP(rec, r)

			logger.Printf("<- %s %s %d (%s)", r.Method, r.URL.Path, rec.Status, time.Since(start))
		})
	}
}

// Chain, middleware'leri verilen sırayla uygular; ilk eleman en dışta çalışır.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
