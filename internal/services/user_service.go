package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/biyonik/ticketbox-core/internal/models"
	"github.com/biyonik/ticketbox-core/pkg/auth"
	"github.com/biyonik/ticketbox-core/pkg/events"
)

// MinPasswordLength, kayıtta kabul edilen en kısa şifredir.
const MinPasswordLength = 8

// RegisterInput, yeni kullanıcı kaydı için gereken alanlardır.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

// Session, girişte ve yenilemede dönen token çiftidir.
type Session struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"` // saniye
	User         *models.User `json:"user"`
}

// ProfilePatch, kullanıcının kendi profilinde değiştirebileceği alanlardır.
// E-posta giriş kimliği olduğundan değiştirilemez.
type ProfilePatch struct {
	Username *string `json:"username"`
	FullName *string `json:"full_name"`
	Password *string `json:"password"`
}

// UserService, kayıt, giriş ve rol yönetimini yapar. Kayıt olan her
// kullanıcıya aynı transaction içinde bir sepet açılır.
type UserService struct {
	Deps
	hasher  *auth.Hasher
	session *auth.JWTConfig
	carts   *CartService
}

func NewUserService(deps Deps, hasher *auth.Hasher, session *auth.JWTConfig, carts *CartService) *UserService {
	return &UserService{
		Deps:    deps,
		hasher:  hasher,
		session: session,
		carts:   carts,
	}
}

// Register, kullanıcıyı USER rolüyle oluşturur ve sepetini açar.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	// 1. Validation
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("geçersiz e-posta: %w", models.ErrValidation)
	}
	if len(in.Password) < MinPasswordLength {
		return nil, fmt.Errorf("şifre en az %d karakter olmalı: %w", MinPasswordLength, models.ErrValidation)
	}

	// 2. Hash
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("şifre hash'lenemedi: %w", err)
	}

	user := &models.User{
		Username: strings.TrimSpace(in.Username),
		Email:    email,
		FullName: strings.TrimSpace(in.FullName),
		Password: hash,
	}
	user.Initialize(s.Clock.Now())

	// 3. Kullanıcı + rol + sepet
	err = s.Store.WithTx(ctx, func(ctx context.Context) error {
		if err := s.Store.Users().Create(ctx, user); err != nil {
			return err
		}
		if err := s.Store.Users().AssignRole(ctx, user.ID, models.RoleUser); err != nil {
			return err
		}
		_, err := s.carts.ProvisionCart(ctx, user.ID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("kayıt başarısız: %w", err)
	}
	user.Roles = []models.Role{models.RoleUser}

	s.Logger.Printf("✅ Yeni kullanıcı: %d (%s)", user.ID, user.Email)
	s.publish(events.EventUserRegistered, UserRegistered{UserID: user.ID, Email: user.Email})
	return user, nil
}

// Login, e-posta ve şifreyi doğrular ve oturum token çiftini döndürür.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.Store.Users().FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("giriş başarısız: %w", err)
	}
	if !s.hasher.Check(password, user.Password) {
		return nil, models.ErrInvalidCredentials
	}
	return s.newSession(user)
}

// Refresh, geçerli bir refresh token ile yeni bir token çifti üretir.
// Roller kayıttan yeniden okunur; rol değişikliği yenilemeyle token'a
// yansır.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := auth.ParseRefreshToken(refreshToken, s.session, s.Clock.Now())
	if err != nil {
		s.Logger.Printf("⚠️  Refresh token reddedildi: %v", err)
		return nil, models.ErrInvalidSession
	}

	user, err := s.Store.Users().FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, models.ErrInvalidSession
		}
		return nil, fmt.Errorf("oturum yenilenemedi: %w", err)
	}
	return s.newSession(user)
}

func (s *UserService) newSession(user *models.User) (*Session, error) {
	roles := make([]string, len(user.Roles))
	for i, r := range user.Roles {
		roles[i] = string(r)
	}

	now := s.Clock.Now()
	access, err := auth.GenerateToken(user.ID, user.Email, roles, s.session, now)
	if err != nil {
		return nil, fmt.Errorf("token üretilemedi: %w", err)
	}
	refresh, err := auth.GenerateRefreshToken(user.ID, user.Email, s.session, now)
	if err != nil {
		return nil, fmt.Errorf("refresh token üretilemedi: %w", err)
	}

	return &Session{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.session.ExpirationTime.Seconds()),
		User:         user,
	}, nil
}

// GetUser, kullanıcıyı rolleriyle döndürür.
func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.Store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("kullanıcı %d: %w", id, err)
	}
	return user, nil
}

// ViewUser, kullanıcıyı yalnızca kendisine ya da bir ADMIN'e gösterir.
func (s *UserService) ViewUser(ctx context.Context, actorID, userID int64) (*models.User, error) {
	if err := s.requireSelfOrAdmin(ctx, actorID, userID); err != nil {
		return nil, err
	}
	return s.GetUser(ctx, userID)
}

// ListUsers, kullanıcıları id sırasıyla sayfalar.
func (s *UserService) ListUsers(ctx context.Context, page models.Page) ([]*models.User, error) {
	users, err := s.Store.Users().List(ctx, page.Normalize())
	if err != nil {
		return nil, fmt.Errorf("kullanıcılar listelenemedi: %w", err)
	}
	return users, nil
}

// UpdateProfile, nil olmayan alanları yazar. Kullanıcı kendi profilini,
// ADMIN herkesinkini değiştirebilir. Şifre yeniden hash'lenir.
func (s *UserService) UpdateProfile(ctx context.Context, actorID, userID int64, patch ProfilePatch) (*models.User, error) {
	// 1. Yetki
	if err := s.requireSelfOrAdmin(ctx, actorID, userID); err != nil {
		return nil, err
	}

	// 2. Validation
	if patch.Username != nil && strings.TrimSpace(*patch.Username) == "" {
		return nil, fmt.Errorf("kullanıcı adı boş olamaz: %w", models.ErrValidation)
	}
	if patch.Password != nil && len(*patch.Password) < MinPasswordLength {
		return nil, fmt.Errorf("şifre en az %d karakter olmalı: %w", MinPasswordLength, models.ErrValidation)
	}

	// 3. Merge + kaydet
	var user *models.User
	err := s.Store.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if user, err = s.Store.Users().FindByID(ctx, userID); err != nil {
			return err
		}
		if patch.Username != nil {
			user.Username = strings.TrimSpace(*patch.Username)
		}
		if patch.FullName != nil {
			user.FullName = strings.TrimSpace(*patch.FullName)
		}
		if patch.Password != nil {
			if user.Password, err = s.hasher.Hash(*patch.Password); err != nil {
				return fmt.Errorf("şifre hash'lenemedi: %w", err)
			}
		}
		user.Touch(s.Clock.Now())
		return s.Store.Users().Update(ctx, user)
	})
	if err != nil {
		return nil, fmt.Errorf("kullanıcı %d güncellenemedi: %w", userID, err)
	}

	s.Logger.Printf("🔄 Kullanıcı %d profili güncellendi (aktör %d)", userID, actorID)
	return user, nil
}

func (s *UserService) requireSelfOrAdmin(ctx context.Context, actorID, userID int64) error {
	if actorID == userID {
		return nil
	}
	actor, err := s.Store.Users().FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return models.ErrNotOwner
		}
		return err
	}
	if !actor.HasRole(models.RoleAdmin) {
		return models.ErrNotOwner
	}
	return nil
}

// IsApprover, RoleChecker implementasyonu. ADMIN onaylayıcı sayılır.
func (s *UserService) IsApprover(ctx context.Context, userID int64) (bool, error) {
	user, err := s.Store.Users().FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.HasRole(models.RoleApprover, models.RoleAdmin), nil
}

// AssignRole, kullanıcıya rol ekler. Aynı rol ikinci kez eklenmez.
func (s *UserService) AssignRole(ctx context.Context, userID int64, role models.Role) (*models.User, error) {
	switch role {
	case models.RoleUser, models.RoleApprover, models.RoleAdmin:
	default:
		return nil, fmt.Errorf("bilinmeyen rol %q: %w", role, models.ErrValidation)
	}

	if err := s.Store.Users().AssignRole(ctx, userID, role); err != nil {
		return nil, fmt.Errorf("rol atanamadı: %w", err)
	}
	s.Logger.Printf("🔄 Kullanıcı %d → rol %s", userID, role)
	return s.GetUser(ctx, userID)
}
