package controllers

import (
	"log"
	"net/http"

	"github.com/biyonik/ticketbox-core/internal/http/request"
	"github.com/biyonik/ticketbox-core/internal/http/response"
	"github.com/biyonik/ticketbox-core/internal/services"
	"github.com/biyonik/ticketbox-core/pkg/validation"
	"github.com/biyonik/ticketbox-core/pkg/validation/types"
)

// CategoryController, kategori ve yakınlık (relationship) sözlükleri.
type CategoryController struct {
	catalog *services.CatalogService
	logger  *log.Logger
}

func NewCategoryController(catalog *services.CatalogService, logger *log.Logger) *CategoryController {
	return &CategoryController{catalog: catalog, logger: logger}
}

var categorySchema = validation.Make().Shape(map[string]validation.Type{
	"name": types.String().Required().Trim().Max(100).Label("Kategori adı"),
})

// List handles GET /api/categories
func (c *CategoryController) List(w http.ResponseWriter, req *request.Request) {
	categories, err := c.catalog.ListCategories(req.Context())
	if err != nil {
		response.FromError(w, c.logger, err)
		return
	}
	response.Success(w, http.StatusOK, categories, nil)
}

// Create handles POST /api/categories (ADMIN)
func (c *CategoryController) Create(w http.ResponseWriter, req *request.Request) {
	data, ok := decodeAndValidate(w, req, categorySchema)
	if !ok {
		return
	}

	category, err := c.catalog.CreateCategory(req.Context(), str(data, "name"))
	if err != nil {
		response.FromError(w, c.logger, err)
		return
	}
	response.Success(w, http.StatusCreated, category, nil)
}

// Update handles PUT /api/categories/{id} (ADMIN)
func (c *CategoryController) Update(w http.ResponseWriter, req *request.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	data, ok := decodeAndValidate(w, req, categorySchema)
	if !ok {
		return
	}

	category, err := c.catalog.UpdateCategory(req.Context(), id, str(data, "name"))
	if err != nil {
		response.FromError(w, c.logger, err)
		return
	}
	response.Success(w, http.StatusOK, category, nil)
}

// Delete handles DELETE /api/categories/{id} (ADMIN)
func (c *CategoryController) Delete(w http.ResponseWriter, req *request.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}

	if err := c.catalog.DeleteCategory(req.Context(), id); err != nil {
		response.FromError(w, c.logger, err)
		return
	}
	response.Success(w, http.StatusOK, map[string]any{"deleted": id}, nil)
}

// Relationships handles GET /api/relationships
func (c *CategoryController) Relationships(w http.ResponseWriter, req *request.Request) {
	relationships, err := c.catalog.ListRelationships(req.Context())
	if err != nil {
		response.FromError(w, c.logger, err)
		return
	}
	response.Success(w, http.StatusOK, relationships, nil)
}
