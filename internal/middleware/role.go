// -----------------------------------------------------------------------------
// Role-Based Authorization Middleware
// -----------------------------------------------------------------------------
// Kimliğin verilen rollerden birine sahip olmasını şart koşar. Auth'tan sonra
// çalışmalıdır. Onay işlemlerinde servis katmanı rolü veritabanından tekrar
// kontrol eder; buradaki kontrol isteği erken reddeder.
// -----------------------------------------------------------------------------

package middleware

import (
	"net/http"

	"github.com/biyonik/ticketbox-core/internal/http/response"
	"github.com/biyonik/ticketbox-core/pkg/auth"
)

// Role, kimliğin allowedRoles'ten birine sahip olmasını ister.
//
//	r.PUT("/api/events/{id}/approve", h).
//	    Middleware(middleware.Role("APPROVER", "ADMIN"))
func Role(allowedRoles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := auth.UserFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "")
				return
			}
			if !identity.HasRole(allowedRoles...) {
				response.Forbidden(w, "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Admin, Role("ADMIN") kısayolu.
func Admin() Middleware {
	return Role("ADMIN")
}

// Approver, onaylayıcı veya admin.
func Approver() Middleware {
	return Role("APPROVER", "ADMIN")
}
