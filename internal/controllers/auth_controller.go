package controllers

import (
	"log"
	"net/http"

	"github.com/biyonik/ticketbox-core/internal/http/request"
	"github.com/biyonik/ticketbox-core/internal/http/response"
	"github.com/biyonik/ticketbox-core/internal/models"
	"github.com/biyonik/ticketbox-core/internal/services"
	"github.com/biyonik/ticketbox-core/pkg/validation"
	"github.com/biyonik/ticketbox-core/pkg/validation/types"
)

// AuthController, kayıt, giriş, oturum yenileme ve kullanıcı yönetimi uç noktalarıdır. İş kuralları
// UserService'tedir.
type AuthController struct {
	users  *services.UserService
	logger *log.Logger
}

func NewAuthController(users *services.UserService, logger *log.Logger) *AuthController {
	return &AuthController{users: users, logger: logger}
}

var (
	registerSchema = validation.Make().Shape(map[string]validation.Type{
		"username":  types.String().Required().Trim().Min(3).Max(50).Label("Kullanıcı adı"),
		"email":     types.String().Required().Trim().Lower().Email().Label("E-posta"),
		"full_name": types.String().Trim().Max(100).Label("Ad soyad"),
		"password":  types.String().Required().Min(services.MinPasswordLength).Max(72).Label("Şifre"),
	})

	loginSchema = validation.Make().Shape(map[string]validation.Type{
		"email":    types.String().Required().Trim().Lower().Email(),
		"password": types.String().Required(),
	})

	refreshSchema = validation.Make().Shape(map[string]validation.Type{
		"refresh_token": types.String().Required().Trim(),
	})

	profileSchema = validation.Make().Shape(map[string]validation.Type{
		"username":  types.String().Trim().Min(3).Max(50).Label("Kullanıcı adı"),
		"full_name": types.String().Trim().Max(100).Label("Ad soyad"),
		"password":  types.String().Min(services.MinPasswordLength).Max(72).Label("Şifre"),
	})

	roleSchema = validation.Make().Shape(map[string]validation.Type{
		"role": types.String().Required().OneOf(
			string(models.RoleUser), string(models.RoleApprover), string(models.RoleAdmin),
		),
	})
)

// Register handles POST /api/auth/register
func (c *AuthController) Register(w http.ResponseWriter, req *request.Request) {
	// 1. Parse + validate
	data, ok := decodeAndValidate(w, req, registerSchema)
	if !ok {
		return
	}

	// 2. Service
	user, err := c.users.Register(req.Context(), services.RegisterInput{
		Username: str(data, "username"),
		Email:    str(data, "email"),
		FullName: str(data, "full_name"),
		Password: str(data, "password"),
	})
	if err != nil {
		response.FromError(w, c.logger, err)
		return
	}

	// 3. Response
	response.Success(w, http.StatusCreated, user, nil)
}

// Login handles POST /api/auth/login
func (c *AuthController) Login(w http.ResponseWriter, req *request.Request) {
	data, ok := decodeAndValidate(w, req, loginSchema)
	if !ok {
		return
	}

	session, err := c.users.Login(req.Context(), str(data, "email"), str(data, "password"))
	if err != nil {
		response.FromError(w, c.logger, err)
		return
	}

	response.Success(w, http.StatusOK, session, nil)
}

// Refresh handles POST /api/auth/refresh
func (c *AuthController) Refresh(w http.ResponseWriter, req *request.Request) {
	data, ok := decodeAndValidate(w, req, refreshSchema)
	if !ok {
		return
	}

	session, err := c.users.Refresh(req.Context(), str(data, "refresh_token"))
	if err != nil {
		response.FromError(w, c.logger, err)
		return
	}
	response.Success(w, http.StatusOK, session, nil)
}

// Me handles GET /api/auth/me
func (c *AuthController) Me(w http.ResponseWriter, req *request.Request) {
	userID, ok := currentUserID(w, req)
	if !ok {
		return
	}

	user, err := c.users.GetUser(req.Context(), userID)
	if err != nil {
		response.FromError(w, c.logger, err)
		return
	}
	response.Success(w, http.StatusOK, user, nil)
}

// ShowUser handles GET /api/users/{id} (kendisi veya ADMIN)
func (c *AuthController) ShowUser(w http.ResponseWriter, req *request.Request) {
	actorID, ok := currentUserID(w, req)
	if !ok {
		return
	}
	userID, ok := pathID(w, req, "id")
	if !ok {
		return
	}

	user, err := c.users.ViewUser(req.Context(), actorID, userID)
	if err != nil {
		response.FromError(w, c.logger, err)
		return
	}
	response.Success(w, http.StatusOK, user, nil)
}

// ListUsers handles GET /api/users?page=&size= (ADMIN)
func (c *AuthController) ListUsers(w http.ResponseWriter, req *request.Request) {
	page := pageFromQuery(req)
	users, err := c.users.ListUsers(req.Context(), page)
	if err != nil {
		response.FromError(w, c.logger, err)
		return
	}
	response.Success(w, http.StatusOK, users, pageMeta(page, len(users)))
}

// UpdateProfile handles PUT /api/users/{id}
func (c *AuthController) UpdateProfile(w http.ResponseWriter, req *request.Request) {
	actorID, ok := currentUserID(w, req)
	if !ok {
		return
	}
	userID, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	data, ok := decodeAndValidate(w, req, profileSchema)
	if !ok {
		return
	}

	user, err := c.users.UpdateProfile(req.Context(), actorID, userID, services.ProfilePatch{
		Username: strPtr(data, "username"),
		FullName: strPtr(data, "full_name"),
		Password: strPtr(data, "password"),
	})
	if err != nil {
		response.FromError(w, c.logger, err)
		return
	}
	response.Success(w, http.StatusOK, user, nil)
}

// AssignRole handles PUT /api/users/{id}/roles (ADMIN)
func (c *AuthController) AssignRole(w http.ResponseWriter, req *request.Request) {
	userID, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	data, ok := decodeAndValidate(w, req, roleSchema)
	if !ok {
		return
	}

	user, err := c.users.AssignRole(req.Context(), userID, models.Role(str(data, "role")))
	if err != nil {
		response.FromError(w, c.logger, err)
		return
	}

	c.logger.Printf("🔄 Rol atandı: user=%d role=%s", userID, str(data, "role"))
	response.Success(w, http.StatusOK, user, nil)
}
