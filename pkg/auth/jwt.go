// -----------------------------------------------------------------------------
// Session JWT
// -----------------------------------------------------------------------------
// Oturum token'larının oluşturulması ve doğrulanması.
//
// Yapı: Header.Payload.Signature (HS256)
//
// Payload kullanıcı kimliğini, e-postasını ve rollerini taşır. Rol kontrolü
// middleware katmanında bu claim'ler üzerinden yapılır.
//
// Access token kısa ömürlüdür. Refresh token rol taşımaz ve yalnızca yeni
// bir token çifti almak için kullanılır; "typ" claim'i ikisini ayırır.
//
// Not: Bilet kimlik bilgileri (QR token) bu paketi KULLANMAZ; onlar
// pkg/credential içinde ayrı bir anahtarla imzalanır.
// -----------------------------------------------------------------------------

package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// JWTClaims, oturum token'ının payload'ıdır.
type JWTClaims struct {
	UserID int64    `json:"user_id"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles,omitempty"`
	Type   string   `json:"typ"`
	jwt.RegisteredClaims
}

// JWTConfig, token oluşturma ve doğrulama ayarlarını içerir.
type JWTConfig struct {
	Secret           string
	Issuer           string
	ExpirationTime   time.Duration
	RefreshExpiresIn time.Duration // Refresh token geçerlilik süresi
}

// GenerateToken, kullanıcı için now anından itibaren geçerli bir access
// token üretir.
//
// Örnek:
//
//	token, err := auth.GenerateToken(123, "user@example.com", []string{"USER"}, cfg, time.Now())
func GenerateToken(userID int64, email string, roles []string, config *JWTConfig, now time.Time) (string, error) {
	if config == nil || config.Secret == "" {
		return "", errors.New("jwt config is required")
	}
	return sign(JWTClaims{UserID: userID, Email: email, Roles: roles, Type: TokenTypeAccess}, config, now, config.ExpirationTime)
}

// GenerateRefreshToken, uzun ömürlü bir refresh token oluşturur. Refresh
// token rol taşımaz; roller yenileme anında kayıttan okunur.
func GenerateRefreshToken(userID int64, email string, config *JWTConfig, now time.Time) (string, error) {
	if config == nil || config.Secret == "" {
		return "", errors.New("jwt config is required")
	}
	if config.RefreshExpiresIn <= 0 {
		return "", errors.New("refresh token lifetime is not configured")
	}
	return sign(JWTClaims{UserID: userID, Email: email, Type: TokenTypeRefresh}, config, now, config.RefreshExpiresIn)
}

func sign(claims JWTClaims, config *JWTConfig, now time.Time, ttl time.Duration) (string, error) {
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    config.Issuer,
		Subject:   claims.Email,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(config.Secret))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return tokenString, nil
}

// ParseToken, token'ı doğrular ve claim'leri döndürür.
//
// Hata durumları: format hatası, imza hatası (tampered token), süresi
// dolmuş token, HS256 dışındaki algoritmalar.
func ParseToken(tokenString string, config *JWTConfig) (*JWTClaims, error) {
	return parse(tokenString, config, TokenTypeAccess)
}

// ParseRefreshToken, refresh token'ı now anına göre doğrular. Access
// token'lar burada kabul edilmez.
func ParseRefreshToken(tokenString string, config *JWTConfig, now time.Time) (*JWTClaims, error) {
	return parse(tokenString, config, TokenTypeRefresh, jwt.WithTimeFunc(func() time.Time { return now }))
}

func parse(tokenString string, config *JWTConfig, tokenType string, extra ...jwt.ParserOption) (*JWTClaims, error) {
	if config == nil {
		return nil, errors.New("jwt config is required")
	}

	opts := append([]jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(config.Issuer),
	}, extra...)

	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.Secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != tokenType {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, tokenType)
	}
	return claims, nil
}

// ExtractTokenFromHeader, "Authorization: Bearer <token>" başlığından
// token'ı çıkarır. Biçim hatalıysa boş string döner.
func ExtractTokenFromHeader(authHeader string) string {
	const prefix = "Bearer "
	if len(authHeader) > len(prefix) && strings.EqualFold(authHeader[:len(prefix)], prefix) {
		return strings.TrimSpace(authHeader[len(prefix):])
	}
	return ""
}
