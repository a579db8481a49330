// -----------------------------------------------------------------------------
// CORS Middleware
// -----------------------------------------------------------------------------
// Tarayıcı tabanlı istemcilerin (bilet satış sitesi, kapı tarama paneli)
// farklı origin'den API'ye erişebilmesi için Access-Control-* başlıklarını
// ekler ve preflight (OPTIONS) isteklerini 204 ile yanıtlar.
// -----------------------------------------------------------------------------

package middleware

import (
	"net/http"
	"strings"
)

// CORS, allowedOrigins listesindeki origin'lere izin verir. "*" her origin'i
// kabul eder.
func CORS(allowedOrigins ...string) Middleware {
	allowAll := false
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[strings.TrimRight(o, "/")] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case allowAll:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin != "" && allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Set("Access-Control-Max-Age", "600")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
