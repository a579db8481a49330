package controllers

import (
	"context"
	"log"
	"net/http"

	"github.com/biyonik/ticketbox-core/internal/http/request"
	"github.com/biyonik/ticketbox-core/internal/http/response"
	"github.com/biyonik/ticketbox-core/internal/models"
	"github.com/biyonik/ticketbox-core/internal/services"
	"github.com/biyonik/ticketbox-core/pkg/validation"
	"github.com/biyonik/ticketbox-core/pkg/validation/types"
)

// TicketController, bilet türü (tier) uç noktalarıdır.
type TicketController struct {
	catalog   *services.CatalogService
	approvals *services.ApprovalService
	logger    *log.Logger
}

func NewTicketController(catalog *services.CatalogService, approvals *services.ApprovalService, logger *log.Logger) *TicketController {
	return &TicketController{
		catalog:   catalog,
		approvals: approvals,
		logger:    logger,
	}
}

const (
	saleWindowMessage = "Satış bitişi başlangıçtan sonra olmalı"
	qtyRangeMessage   = "max_qty_per_order min_qty_per_order'dan küçük olamaz"
)

var (
	createTicketSchema = validation.Make().Shape(map[string]validation.Type{
		"type":                      types.String().Required().Trim().Max(100).Label("Bilet türü"),
		"unit_price":                types.Decimal().Required().NonNegative().Places(2),
		"capacity":                  types.Integer().Required().Min(1),
		"min_qty_per_order":         types.Integer().Required().Min(1),
		"max_qty_per_order":         types.Integer().Required().Min(1),
		"start_sale":                types.Date().Required(),
		"end_sale":                  types.Date().Required(),
		"accepted_relationship_ids": types.Array().Elements(types.Integer().Min(1)),
	}).
		CrossValidate(validation.DateOrder("start_sale", "end_sale", saleWindowMessage)).
		CrossValidate(validation.MaxNotBelowMin("min_qty_per_order", "max_qty_per_order", qtyRangeMessage))

	updateTicketSchema = validation.Make().Shape(map[string]validation.Type{
		"type":                      types.String().Trim().Min(1).Max(100),
		"unit_price":                types.Decimal().NonNegative().Places(2),
		"capacity":                  types.Integer().Min(1),
		"min_qty_per_order":         types.Integer().Min(1),
		"max_qty_per_order":         types.Integer().Min(1),
		"start_sale":                types.Date(),
		"end_sale":                  types.Date(),
		"accepted_relationship_ids": types.Array().Elements(types.Integer().Min(1)),
	}).
		CrossValidate(validation.DateOrder("start_sale", "end_sale", saleWindowMessage)).
		CrossValidate(validation.MaxNotBelowMin("min_qty_per_order", "max_qty_per_order", qtyRangeMessage))
)

// Create handles POST /api/events/{id}/tickets
func (c *TicketController) Create(w http.ResponseWriter, req *request.Request) {
	// 1. Identity + payload
	hostID, ok := currentUserID(w, req)
	if !ok {
		return
	}
	eventID, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	data, ok := decodeAndValidate(w, req, createTicketSchema)
	if !ok {
		return
	}

	ticket := &models.Ticket{
		Type:                    str(data, "type"),
		UnitPrice:               *decimalPtr(data, "unit_price"),
		Capacity:                *int64Ptr(data, "capacity"),
		MinQtyPerOrder:          *int64Ptr(data, "min_qty_per_order"),
		MaxQtyPerOrder:          *int64Ptr(data, "max_qty_per_order"),
		StartSale:               *timePtr(data, "start_sale"),
		EndSale:                 *timePtr(data, "end_sale"),
		AcceptedRelationshipIDs: types.Int64s(data["accepted_relationship_ids"]),
	}

	// 2. Service
	created, err := c.catalog.CreateTicket(req.Context(), hostID, eventID, ticket)
	if err != nil {
		response.FromError(w, c.logger, err)
		return
	}

	// 3. Response
	response.Success(w, http.StatusCreated, created, nil)
}

// Show handles GET /api/tickets/{id}
func (c *TicketController) Show(w http.ResponseWriter, req *request.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}

	ticket, err := c.catalog.GetTicket(req.Context(), id)
	if err != nil {
		response.FromError(w, c.logger, err)
		return
	}
	response.Success(w, http.StatusOK, ticket, nil)
}

// Update handles PUT /api/tickets/{id}
func (c *TicketController) Update(w http.ResponseWriter, req *request.Request) {
	hostID, ok := currentUserID(w, req)
	if !ok {
		return
	}
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	data, ok := decodeAndValidate(w, req, updateTicketSchema)
	if !ok {
		return
	}

	patch := models.TicketPatch{
		Type:           strPtr(data, "type"),
		StartSale:      timePtr(data, "start_sale"),
		EndSale:        timePtr(data, "end_sale"),
		UnitPrice:      decimalPtr(data, "unit_price"),
		Capacity:       int64Ptr(data, "capacity"),
		MinQtyPerOrder: int64Ptr(data, "min_qty_per_order"),
		MaxQtyPerOrder: int64Ptr(data, "max_qty_per_order"),
	}
	if data["accepted_relationship_ids"] != nil {
		patch.AcceptedRelationshipIDs = types.Int64s(data["accepted_relationship_ids"])
	}

	ticket, err := c.approvals.UpdateTicket(req.Context(), hostID, id, patch)
	if err != nil {
		response.FromError(w, c.logger, err)
		return
	}
	response.Success(w, http.StatusOK, ticket, nil)
}

// Cancel handles PUT /api/tickets/{id}/cancel
func (c *TicketController) Cancel(w http.ResponseWriter, req *request.Request) {
	c.decide(w, req, c.approvals.CancelTicket)
}

// Approve handles PUT /api/tickets/{id}/approve
func (c *TicketController) Approve(w http.ResponseWriter, req *request.Request) {
	c.decide(w, req, c.approvals.ApproveTicket)
}

// Decline handles PUT /api/tickets/{id}/decline
func (c *TicketController) Decline(w http.ResponseWriter, req *request.Request) {
	c.decide(w, req, c.approvals.DeclineTicket)
}

func (c *TicketController) decide(w http.ResponseWriter, req *request.Request,
	transition func(ctx context.Context, actorID, ticketID int64) (*models.Ticket, error)) {
	actorID, ok := currentUserID(w, req)
	if !ok {
		return
	}
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}

	ticket, err := transition(req.Context(), actorID, id)
	if err != nil {
		response.FromError(w, c.logger, err)
		return
	}
	response.Success(w, http.StatusOK, ticket, nil)
}
