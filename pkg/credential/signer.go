// -----------------------------------------------------------------------------
// Ticket Credential Signing
// -----------------------------------------------------------------------------
// Satın alınan her sipariş bileti için kapıda taranacak imzalı bir token
// üretilir. Token yalnızca sipariş bileti kimliğini (otid) taşır; geri kalan
// her şey sunucu tarafında kayıttan okunur.
//
// Token'lar oturum JWT'lerinden farklı bir anahtarla imzalanır. Anahtarlardan
// biri sızarsa diğer tür token'lar etkilenmez.
//
// Token yapısı (HS256):
//
//	header.{"otid":42,"iss":"ticketbox","iat":...,"exp":...,"jti":"..."}.signature
// -----------------------------------------------------------------------------

package credential

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinSecretLength, imza anahtarı için kabul edilen en kısa uzunluktur.
const MinSecretLength = 32

var (
	// ErrInvalidToken, imzası, biçimi veya süresi geçersiz token'lar için döner.
	ErrInvalidToken = errors.New("credential: invalid or expired token")
	// ErrWeakSecret, NewSigner'a kısa bir anahtar verildiğinde döner.
	ErrWeakSecret = errors.New("credential: secret is too short")
)

// Claims, bilet token'ının payload'ıdır.
type Claims struct {
	OrderTicketID int64 `json:"otid"`
	jwt.RegisteredClaims
}

// Signer, bilet token'larını imzalar ve doğrular.
type Signer struct {
	secret []byte
	issuer string
}

// NewSigner, verilen anahtar ile yeni bir Signer oluşturur.
func NewSigner(secret, issuer string) (*Signer, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	return &Signer{secret: []byte(secret), issuer: issuer}, nil
}

// Sign, orderTicketID için issuedAt ile expiresAt arasında geçerli bir
// token üretir.
func (s *Signer) Sign(orderTicketID int64, issuedAt, expiresAt time.Time) (string, error) {
	claims := Claims{
		OrderTicketID: orderTicketID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(ceilSecond(expiresAt)),
			ID:        uuid.NewString(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("credential: sign: %w", err)
	}
	return token, nil
}

// Parse, token'ın imzasını ve süresini now anına göre doğrular ve
// claim'leri döndürür. Her türlü doğrulama hatası ErrInvalidToken olarak
// döner; ayrıntı wrap edilmiş hatadadır.
func (s *Signer) Parse(raw string, now time.Time) (*Claims, error) {
	claims := &Claims{}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(func() time.Time { return now }),
		// jwt yalnızca now < exp iken kabul eder. Son saniye de geçerli
		// olsun diye tolerans verilir; asıl sınır aşağıda now > exp'tir.
		jwt.WithLeeway(time.Second),
	)

	token, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.OrderTicketID <= 0 {
		return nil, ErrInvalidToken
	}
	if now.After(claims.ExpiresAt.Time) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, jwt.ErrTokenExpired)
	}
	return claims, nil
}

// ceilSecond, t'yi bir sonraki tam saniyeye yuvarlar. exp saniye
// hassasiyetinde taşındığı için aşağı yuvarlama bitişten önce geçersiz
// kılardı.
func ceilSecond(t time.Time) time.Time {
	if down := t.Truncate(time.Second); !down.Equal(t) {
		return down.Add(time.Second)
	}
	return t
}
