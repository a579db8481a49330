package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"github.com/biyonik/ticketbox-core/internal/http/response"
)

// PanicRecovery, handler'daki panic'i yakalar ve standart JSON 500 döner.
func PanicRecovery(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Printf("🚨 PANIC %s %s: %v\n%s", r.Method, r.URL.Path, err, debug.Stack())
					response.ServerError(w, "Sunucuda beklenmedik bir hata oluştu")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
