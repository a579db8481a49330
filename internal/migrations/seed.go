package migrations

import (
	"context"
	"fmt"
	"log"

	"github.com/biyonik/ticketbox-core/internal/models"
	"github.com/biyonik/ticketbox-core/internal/repositories"
)

// DefaultRelationships, bilet sahibinin alıcıya yakınlığı için başlangıç
// değerleri.
var DefaultRelationships = []string{"self", "family", "friend"}

// SeedRelationships, eksik ilişki kayıtlarını ekler. Var olanlara dokunmaz;
// tekrar çalıştırmak güvenlidir.
func SeedRelationships(ctx context.Context, store repositories.Store, logger *log.Logger) error {
	return store.WithTx(ctx, func(ctx context.Context) error {
		existing, err := store.Relationships().List(ctx)
		if err != nil {
			return err
		}

		have := make(map[string]bool, len(existing))
		for _, rel := range existing {
			have[rel.Name] = true
		}

		for _, name := range DefaultRelationships {
			if have[name] {
				continue
			}
			if err := store.Relationships().Create(ctx, &models.Relationship{Name: name}); err != nil {
				return fmt.Errorf("ilişki eklenemedi (%s): %w", name, err)
			}
			logger.Printf("✅ İlişki eklendi: %s", name)
		}
		return nil
	})
}

// PromoteAdmin, kayıtlı bir kullanıcıya ADMIN rolü verir. İlk yöneticiyi
// oluşturmanın tek yoludur; rol atama uç noktası zaten ADMIN ister.
func PromoteAdmin(ctx context.Context, store repositories.Store, email string, logger *log.Logger) (*models.User, error) {
	user, err := store.Users().FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("yönetici yapılacak kullanıcı (%s): %w", email, err)
	}
	if err := store.Users().AssignRole(ctx, user.ID, models.RoleAdmin); err != nil {
		return nil, fmt.Errorf("ADMIN rolü atanamadı: %w", err)
	}

	logger.Printf("✅ %s ADMIN yapıldı", email)
	return user, nil
}
