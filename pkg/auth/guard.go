// -----------------------------------------------------------------------------
// Auth Guard
// -----------------------------------------------------------------------------
// Guard, gelen credential'ı (Bearer token) doğrulayıp isteğe bağlı bir
// Identity üretir. Guard durum tutmaz; doğrulanan kimlik request
// context'ine yazılır ve handler'lar UserFromContext ile okur.
//
// Kullanım:
//
//	guard := auth.NewJWTGuard(cfg)
//	identity, err := guard.Authenticate(token)
//	ctx = auth.WithUser(ctx, identity)
// -----------------------------------------------------------------------------

package auth

import (
	"context"
)

// Guard, authentication stratejisini soyutlar.
type Guard interface {
	Authenticate(credential string) (*Identity, error)
}

// Identity, doğrulanmış oturum sahibidir.
type Identity struct {
	ID    int64
	Email string
	Roles []string
}

// HasRole, kimliğin verilen rollerden herhangi birine sahip olup olmadığını
// kontrol eder.
func (i *Identity) HasRole(roles ...string) bool {
	for _, have := range i.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// JWTGuard, session JWT tabanlı Guard implementasyonudur.
type JWTGuard struct {
	config *JWTConfig
}

func NewJWTGuard(config *JWTConfig) *JWTGuard {
	return &JWTGuard{config: config}
}

func (g *JWTGuard) Authenticate(tokenString string) (*Identity, error) {
	claims, err := ParseToken(tokenString, g.config)
	if err != nil {
		return nil, err
	}
	return &Identity{ID: claims.UserID, Email: claims.Email, Roles: claims.Roles}, nil
}

type identityKey struct{}

// WithUser, kimliği context'e ekler.
func WithUser(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// UserFromContext, context'teki kimliği döndürür.
func UserFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*Identity)
	return identity, ok && identity != nil
}
