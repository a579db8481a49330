package controllers

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/biyonik/ticketbox-core/internal/http/request"
	"github.com/biyonik/ticketbox-core/internal/http/response"
	"github.com/biyonik/ticketbox-core/internal/models"
	"github.com/biyonik/ticketbox-core/internal/services"
	"github.com/biyonik/ticketbox-core/pkg/validation"
	"github.com/biyonik/ticketbox-core/pkg/validation/types"
)

// EventController handles HTTP requests for events (ultra-thin - no business logic!)
type EventController struct {
	catalog   *services.CatalogService
	approvals *services.ApprovalService
	logger    *log.Logger
}

func NewEventController(catalog *services.CatalogService, approvals *services.ApprovalService, logger *log.Logger) *EventController {
	return &EventController{
		catalog:   catalog,
		approvals: approvals,
		logger:    logger,
	}
}

const eventWindowMessage = "Bitiş tarihi başlangıçtan sonra olmalı"

var (
	createEventSchema = validation.Make().Shape(map[string]validation.Type{
		"name":         types.String().Required().Trim().Max(200).Label("Etkinlik adı"),
		"online":       types.Boolean().Default(false),
		"address":      types.String().Trim().Max(300),
		"org_name":     types.String().Trim().Max(200),
		"org_info":     types.String().Trim().Max(2000),
		"start_date":   types.Date().Required(),
		"end_date":     types.Date().Required(),
		"category_ids": types.Array().Elements(types.Integer().Min(1)),
	}).CrossValidate(validation.DateOrder("start_date", "end_date", eventWindowMessage))

	updateEventSchema = validation.Make().Shape(map[string]validation.Type{
		"name":         types.String().Trim().Min(1).Max(200),
		"online":       types.Boolean(),
		"address":      types.String().Trim().Max(300),
		"org_name":     types.String().Trim().Max(200),
		"org_info":     types.String().Trim().Max(2000),
		"start_date":   types.Date(),
		"end_date":     types.Date(),
		"category_ids": types.Array().Elements(types.Integer().Min(1)),
	}).CrossValidate(validation.DateOrder("start_date", "end_date", eventWindowMessage))
)

// Create handles POST /api/events
func (c *EventController) Create(w http.ResponseWriter, req *request.Request) {
	// 1. Identity + payload
	hostID, ok := currentUserID(w, req)
	if !ok {
		return
	}
	data, ok := decodeAndValidate(w, req, createEventSchema)
	if !ok {
		return
	}

	event := &models.Event{
		Name:        str(data, "name"),
		Address:     str(data, "address"),
		OrgName:     str(data, "org_name"),
		OrgInfo:     str(data, "org_info"),
		StartDate:   *timePtr(data, "start_date"),
		EndDate:     *timePtr(data, "end_date"),
		CategoryIDs: types.Int64s(data["category_ids"]),
	}
	if online := boolPtr(data, "online"); online != nil {
		event.Online = *online
	}

	// 2. Service
	created, err := c.catalog.CreateEvent(req.Context(), hostID, event)
	if err != nil {
		response.FromError(w, c.logger, err)
		return
	}

	// 3. Response
	response.Success(w, http.StatusCreated, created, nil)
}

// Show handles GET /api/events/{id}
func (c *EventController) Show(w http.ResponseWriter, req *request.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}

	event, err := c.catalog.GetEvent(req.Context(), id)
	if err != nil {
		response.FromError(w, c.logger, err)
		return
	}
	response.Success(w, http.StatusOK, event, nil)
}

// List handles GET /api/events?status=&host=&approver=&category=&q=&page=&size=
func (c *EventController) List(w http.ResponseWriter, req *request.Request) {
	// 1. Filters
	filter := models.EventFilter{Query: strings.TrimSpace(req.Query("q", ""))}

	if raw := req.Query("status", ""); raw != "" {
		status, err := models.ParseEventStatus(raw)
		if err != nil {
			response.FieldError(w, "status", "Geçersiz etkinlik durumu")
			return
		}
		filter.Status = &status
	}

	for key, dest := range map[string]**int64{
		"host":     &filter.HostID,
		"approver": &filter.ApproverID,
		"category": &filter.CategoryID,
	} {
		v, err := req.QueryInt64(key)
		if err != nil {
			response.FieldError(w, key, "Sayısal bir ID olmalı")
			return
		}
		*dest = v
	}

	page := pageFromQuery(req)

	// 2. Service
	events, err := c.catalog.ListEvents(req.Context(), filter, page)
	if err != nil {
		response.FromError(w, c.logger, err)
		return
	}

	// 3. Response
	response.Success(w, http.StatusOK, events, pageMeta(page, len(events)))
}

// Tickets handles GET /api/events/{id}/tickets
func (c *EventController) Tickets(w http.ResponseWriter, req *request.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}

	var status *models.TicketStatus
	if raw := req.Query("status", ""); raw != "" {
		parsed, err := models.ParseTicketStatus(raw)
		if err != nil {
			response.FieldError(w, "status", "Geçersiz bilet durumu")
			return
		}
		status = &parsed
	}

	tickets, err := c.catalog.ListTickets(req.Context(), id, status)
	if err != nil {
		response.FromError(w, c.logger, err)
		return
	}
	response.Success(w, http.StatusOK, tickets, nil)
}

// LowestPrice handles GET /api/events/{id}/lowest-price
func (c *EventController) LowestPrice(w http.ResponseWriter, req *request.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}

	price, err := c.catalog.LowestPrice(req.Context(), id)
	if err != nil {
		response.FromError(w, c.logger, err)
		return
	}
	response.Success(w, http.StatusOK, map[string]any{
		"event_id":     id,
		"lowest_price": price.StringFixed(2),
	}, nil)
}

// Update handles PUT /api/events/{id}
func (c *EventController) Update(w http.ResponseWriter, req *request.Request) {
	hostID, ok := currentUserID(w, req)
	if !ok {
		return
	}
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	data, ok := decodeAndValidate(w, req, updateEventSchema)
	if !ok {
		return
	}

	patch := models.EventPatch{
		Name:      strPtr(data, "name"),
		Online:    boolPtr(data, "online"),
		Address:   strPtr(data, "address"),
		OrgName:   strPtr(data, "org_name"),
		OrgInfo:   strPtr(data, "org_info"),
		StartDate: timePtr(data, "start_date"),
		EndDate:   timePtr(data, "end_date"),
	}
	if data["category_ids"] != nil {
		patch.CategoryIDs = types.Int64s(data["category_ids"])
	}

	event, err := c.approvals.UpdateEvent(req.Context(), hostID, id, patch)
	if err != nil {
		response.FromError(w, c.logger, err)
		return
	}
	response.Success(w, http.StatusOK, event, nil)
}

// Cancel handles PUT /api/events/{id}/cancel
func (c *EventController) Cancel(w http.ResponseWriter, req *request.Request) {
	c.decide(w, req, c.approvals.CancelEvent)
}

// Approve handles PUT /api/events/{id}/approve
func (c *EventController) Approve(w http.ResponseWriter, req *request.Request) {
	c.decide(w, req, c.approvals.ApproveEvent)
}

// Decline handles PUT /api/events/{id}/decline
func (c *EventController) Decline(w http.ResponseWriter, req *request.Request) {
	c.decide(w, req, c.approvals.DeclineEvent)
}

// decide, (actor, event) alan durum geçişlerini çalıştırır.
func (c *EventController) decide(w http.ResponseWriter, req *request.Request,
	transition func(ctx context.Context, actorID, eventID int64) (*models.Event, error)) {
	actorID, ok := currentUserID(w, req)
	if !ok {
		return
	}
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}

	event, err := transition(req.Context(), actorID, id)
	if err != nil {
		response.FromError(w, c.logger, err)
		return
	}
	response.Success(w, http.StatusOK, event, nil)
}
