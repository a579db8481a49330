package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyonik/ticketbox-core/internal/models"
	"github.com/biyonik/ticketbox-core/pkg/auth"
	"github.com/biyonik/ticketbox-core/pkg/events"
)

func TestRegister_ProvisionsCart(t *testing.T) {
	f := newFixture(t)

	user, err := f.users.Register(f.ctx, RegisterInput{
		Username: "mehmet",
		Email:    "  Mehmet@Example.com ",
		FullName: "Mehmet Demir",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "mehmet@example.com", user.Email)
	assert.NotEqual(t, "correct-horse", user.Password)
	assert.Equal(t, []models.Role{models.RoleUser}, user.Roles)

	carts, err := f.store.Orders().CartsForUpdate(f.ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, carts, 1)
	assert.Equal(t, models.OrderNotPurchased, carts[0].Status)

	assert.Equal(t, 2, f.pub.count(events.EventUserRegistered))
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.users.Register(f.ctx, RegisterInput{Email: "not-an-email", Password: "password123"})
	require.ErrorIs(t, err, models.ErrValidation)

	_, err = f.users.Register(f.ctx, RegisterInput{Email: "short@example.com", Password: "123"})
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestRegister_DuplicateEmailRollsBack(t *testing.T) {
	f := newFixture(t)
	in := RegisterInput{Username: "a", Email: "dup@example.com", Password: "password123"}

	_, err := f.users.Register(f.ctx, in)
	require.NoError(t, err)

	in.Email = "DUP@example.com"
	_, err = f.users.Register(f.ctx, in)
	require.ErrorIs(t, err, models.ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.Register(f.ctx, RegisterInput{Username: "z", Email: "zeynep@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = f.users.Login(f.ctx, "zeynep@example.com", "wrong-password")
	require.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = f.users.Login(f.ctx, "nobody@example.com", "password123")
	require.ErrorIs(t, err, models.ErrInvalidCredentials)

	// Oturum token'ı duvar saatine göre doğrulanır.
	f.clock.Set(time.Now())
	session, err := f.users.Login(f.ctx, "Zeynep@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, int64(3600), session.ExpiresIn)
	assert.NotEmpty(t, session.RefreshToken)

	claims, err := auth.ParseToken(session.AccessToken, f.users.session)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)
	assert.Equal(t, []string{"USER"}, claims.Roles)
}

func TestRefresh_ReloadsRoles(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.Register(f.ctx, RegisterInput{Username: "e", Email: "elif@example.com", Password: "password123"})
	require.NoError(t, err)

	f.clock.Set(time.Now())
	session, err := f.users.Login(f.ctx, "elif@example.com", "password123")
	require.NoError(t, err)

	_, err = f.users.AssignRole(f.ctx, session.User.ID, models.RoleApprover)
	require.NoError(t, err)

	f.clock.Advance(2 * time.Hour)
	renewed, err := f.users.Refresh(f.ctx, session.RefreshToken)
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.Role{models.RoleUser, models.RoleApprover}, renewed.User.Roles)

	_, err = f.users.Refresh(f.ctx, session.AccessToken)
	require.ErrorIs(t, err, models.ErrInvalidSession)
	_, err = f.users.Refresh(f.ctx, "garbage")
	require.ErrorIs(t, err, models.ErrInvalidSession)

	f.clock.Advance(72 * time.Hour)
	_, err = f.users.Refresh(f.ctx, renewed.RefreshToken)
	require.ErrorIs(t, err, models.ErrInvalidSession)
	assert.Equal(t, models.KindUnauthorized, models.KindOf(err))
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	owner := f.register()
	stranger := f.register()
	admin := f.register()
	_, err := f.users.AssignRole(f.ctx, admin.ID, models.RoleAdmin)
	require.NoError(t, err)

	name := "Yeni İsim"
	_, err = f.users.UpdateProfile(f.ctx, stranger.ID, owner.ID, ProfilePatch{FullName: &name})
	require.ErrorIs(t, err, models.ErrNotOwner)

	short := "123"
	_, err = f.users.UpdateProfile(f.ctx, owner.ID, owner.ID, ProfilePatch{Password: &short})
	require.ErrorIs(t, err, models.ErrValidation)

	password := "new-password-456"
	updated, err := f.users.UpdateProfile(f.ctx, owner.ID, owner.ID, ProfilePatch{FullName: &name, Password: &password})
	require.NoError(t, err)
	assert.Equal(t, name, updated.FullName)
	assert.Equal(t, "user", updated.Username)

	_, err = f.users.Login(f.ctx, owner.Email, "password123")
	require.ErrorIs(t, err, models.ErrInvalidCredentials)
	_, err = f.users.Login(f.ctx, owner.Email, password)
	require.NoError(t, err)

	username := "moderated"
	byAdmin, err := f.users.UpdateProfile(f.ctx, admin.ID, owner.ID, ProfilePatch{Username: &username})
	require.NoError(t, err)
	assert.Equal(t, username, byAdmin.Username)
	assert.Equal(t, name, byAdmin.FullName)
}

func TestViewAndListUsers(t *testing.T) {
	f := newFixture(t)
	owner := f.register()
	stranger := f.register()

	got, err := f.users.ViewUser(f.ctx, owner.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.Email, got.Email)

	_, err = f.users.ViewUser(f.ctx, stranger.ID, owner.ID)
	require.ErrorIs(t, err, models.ErrNotOwner)

	// Fixture onaylayıcısı + owner + stranger
	users, err := f.users.ListUsers(f.ctx, models.Page{Number: 1, Size: 2})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, f.approverID, users[0].ID)

	rest, err := f.users.ListUsers(f.ctx, models.Page{Number: 2, Size: 2})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, stranger.ID, rest[0].ID)
}

func TestIsApprover(t *testing.T) {
	f := newFixture(t)
	plain := f.register()

	ok, err := f.users.IsApprover(f.ctx, f.approverID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.users.IsApprover(f.ctx, plain.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	admin, err := f.users.AssignRole(f.ctx, plain.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, admin.HasRole(models.RoleAdmin))

	ok, err = f.users.IsApprover(f.ctx, plain.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.users.AssignRole(f.ctx, plain.ID, models.Role("ROOT"))
	require.ErrorIs(t, err, models.ErrValidation)
}
