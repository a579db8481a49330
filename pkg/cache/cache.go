// -----------------------------------------------------------------------------
// Cache Interface
// -----------------------------------------------------------------------------
// Tüm cache driver'larının (Redis, Memory) implement ettiği arayüz.
//
// Değerler byte dizisi olarak saklanır; tipli okuma/yazma için GetJSON,
// SetJSON ve Remember yardımcıları kullanılır. Böylece iki driver da aynı
// serileştirme davranışını paylaşır.
//
// Cache hataları iş akışını durdurmaz: Remember, cache okunamazsa veya
// yazılamazsa doğrudan kaynağa gider.
// -----------------------------------------------------------------------------

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Cache, tüm cache driver'ların implement etmesi gereken interface.
type Cache interface {
	// Get, key'e ait değeri döndürür. Key yoksa veya süresi dolmuşsa
	// found=false döner, hata vermez.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set, değeri yazar. ttl = 0 ise süresiz saklanır.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete, verilen key'leri siler. Olmayan key hata değildir.
	Delete(ctx context.Context, keys ...string) error

	// Flush, bu cache'in tüm kayıtlarını siler.
	Flush(ctx context.Context) error
}

// GetJSON, değeri okuyup dst'ye decode eder.
func GetJSON(ctx context.Context, c Cache, key string, dst any) (bool, error) {
	data, found, err := c.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("cache decode [%s]: %w", key, err)
	}
	return true, nil
}

// SetJSON, değeri JSON olarak yazar.
func SetJSON(ctx context.Context, c Cache, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode [%s]: %w", key, err)
	}
	return c.Set(ctx, key, data, ttl)
}

// Remember, key cache'te varsa onu döndürür; yoksa load'u çalıştırıp
// sonucu ttl süresiyle yazar.
//
// Örnek:
//
//	event, err := cache.Remember(ctx, c, "event:42", time.Minute, func(ctx context.Context) (*EventView, error) {
//	    return repo.Load(ctx, 42)
//	})
func Remember[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	var cached T
	if found, err := GetJSON(ctx, c, key, &cached); err == nil && found {
		return cached, nil
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	_ = SetJSON(ctx, c, key, value, ttl)
	return value, nil
}
