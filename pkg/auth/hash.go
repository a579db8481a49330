// -----------------------------------------------------------------------------
// Password Hashing
// -----------------------------------------------------------------------------
// bcrypt tabanlı şifre hash'leme. Cost değeri config'ten gelir; testler
// bcrypt.MinCost ile çalışır.
// -----------------------------------------------------------------------------

package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost, production için önerilen bcrypt cost değeri.
const DefaultHashCost = 12

// Hasher, şifreleri bcrypt ile hash'ler ve doğrular.
type Hasher struct {
	cost int
}

// NewHasher, verilen cost ile bir Hasher oluşturur. Geçersiz cost
// DefaultHashCost'a çekilir.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultHashCost
	}
	return &Hasher{cost: cost}
}

func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (h *Hasher) Check(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
