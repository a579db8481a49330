// -----------------------------------------------------------------------------
// Authentication Middleware
// -----------------------------------------------------------------------------
// Authorization başlığındaki oturum token'ını Guard ile doğrular ve kimliği
// request context'ine yazar. Bilet kimlik bilgileri (QR token'ları) farklı
// anahtarla imzalandığı için burada oturum olarak kabul edilmez.
// -----------------------------------------------------------------------------

package middleware

import (
	"net/http"

	"github.com/biyonik/ticketbox-core/internal/http/request"
	"github.com/biyonik/ticketbox-core/internal/http/response"
	"github.com/biyonik/ticketbox-core/pkg/auth"
)

// Auth, geçerli bir Bearer token zorunlu kılar.
//
//	api := r.Group("/api")
//	api.Use(middleware.Auth(auth.NewJWTGuard(jwtConfig)))
func Auth(guard auth.Guard) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Token
			token := request.New(r).BearerToken()
			if token == "" {
				response.Unauthorized(w, "Authorization başlığı gerekli (Bearer token)")
				return
			}

			// 2. Doğrulama
			identity, err := guard.Authenticate(token)
			if err != nil {
				response.Unauthorized(w, "Geçersiz veya süresi dolmuş token")
				return
			}

			// 3. Kimliği context'e ekle
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), identity)))
		})
	}
}
