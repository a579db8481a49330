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

// CartController, alıcının sepeti, satın alma ve sipariş geçmişi uç
// noktalarıdır. Tüm route'lar oturum ister.
type CartController struct {
	carts       *services.CartService
	credentials *services.CredentialService
	logger      *log.Logger
}

func NewCartController(carts *services.CartService, credentials *services.CredentialService, logger *log.Logger) *CartController {
	return &CartController{
		carts:       carts,
		credentials: credentials,
		logger:      logger,
	}
}

var (
	addLineItemSchema = validation.Make().Shape(map[string]validation.Type{
		"ticket_id":       types.Integer().Required().Min(1),
		"relationship_id": types.Integer().Required().Min(1),
		"owner_name":      types.String().Required().Trim().Max(200).Label("Bilet sahibi"),
		"sub_quantity":    types.Integer().Required().Min(1),
	})

	updateLineItemSchema = validation.Make().Shape(map[string]validation.Type{
		"relationship_id": types.Integer().Min(1),
		"owner_name":      types.String().Trim().Min(1).Max(200),
		"sub_quantity":    types.Integer().Min(1),
	})
)

// Show handles GET /api/cart
func (c *CartController) Show(w http.ResponseWriter, req *request.Request) {
	buyerID, ok := currentUserID(w, req)
	if !ok {
		return
	}

	cart, err := c.carts.GetCart(req.Context(), buyerID)
	if err != nil {
		response.FromError(w, c.logger, err)
		return
	}
	response.Success(w, http.StatusOK, cart, nil)
}

// AddItem handles POST /api/cart/items
func (c *CartController) AddItem(w http.ResponseWriter, req *request.Request) {
	// 1. Identity + payload
	buyerID, ok := currentUserID(w, req)
	if !ok {
		return
	}
	data, ok := decodeAndValidate(w, req, addLineItemSchema)
	if !ok {
		return
	}

	// 2. Service
	item, err := c.carts.AddLineItem(req.Context(), buyerID, models.LineItemRequest{
		TicketID:       *int64Ptr(data, "ticket_id"),
		RelationshipID: *int64Ptr(data, "relationship_id"),
		OwnerName:      str(data, "owner_name"),
		SubQuantity:    *int64Ptr(data, "sub_quantity"),
	})
	if err != nil {
		response.FromError(w, c.logger, err)
		return
	}

	// 3. Response
	response.Success(w, http.StatusCreated, item, nil)
}

// UpdateItem handles PUT /api/cart/items/{id}
func (c *CartController) UpdateItem(w http.ResponseWriter, req *request.Request) {
	buyerID, ok := currentUserID(w, req)
	if !ok {
		return
	}
	itemID, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	data, ok := decodeAndValidate(w, req, updateLineItemSchema)
	if !ok {
		return
	}

	item, err := c.carts.UpdateLineItem(req.Context(), buyerID, itemID, models.LineItemPatch{
		RelationshipID: int64Ptr(data, "relationship_id"),
		OwnerName:      strPtr(data, "owner_name"),
		SubQuantity:    int64Ptr(data, "sub_quantity"),
	})
	if err != nil {
		response.FromError(w, c.logger, err)
		return
	}
	response.Success(w, http.StatusOK, item, nil)
}

// RemoveItem handles DELETE /api/cart/items/{id}
func (c *CartController) RemoveItem(w http.ResponseWriter, req *request.Request) {
	buyerID, ok := currentUserID(w, req)
	if !ok {
		return
	}
	itemID, ok := pathID(w, req, "id")
	if !ok {
		return
	}

	if err := c.carts.RemoveLineItem(req.Context(), buyerID, itemID); err != nil {
		response.FromError(w, c.logger, err)
		return
	}
	response.Success(w, http.StatusOK, map[string]any{"deleted": itemID}, nil)
}

// Purchase handles POST /api/cart/purchase
func (c *CartController) Purchase(w http.ResponseWriter, req *request.Request) {
	buyerID, ok := currentUserID(w, req)
	if !ok {
		return
	}

	order, err := c.carts.Purchase(req.Context(), buyerID)
	if err != nil {
		response.FromError(w, c.logger, err)
		return
	}
	response.Success(w, http.StatusOK, order, nil)
}

// Orders handles GET /api/orders?page=&size=
func (c *CartController) Orders(w http.ResponseWriter, req *request.Request) {
	buyerID, ok := currentUserID(w, req)
	if !ok {
		return
	}
	page := pageFromQuery(req)

	orders, err := c.carts.OrderHistory(req.Context(), buyerID, page)
	if err != nil {
		response.FromError(w, c.logger, err)
		return
	}
	response.Success(w, http.StatusOK, orders, pageMeta(page, len(orders)))
}

// Order handles GET /api/orders/{id}
func (c *CartController) Order(w http.ResponseWriter, req *request.Request) {
	buyerID, ok := currentUserID(w, req)
	if !ok {
		return
	}
	orderID, ok := pathID(w, req, "id")
	if !ok {
		return
	}

	order, err := c.carts.OrderDetail(req.Context(), buyerID, orderID)
	if err != nil {
		response.FromError(w, c.logger, err)
		return
	}
	response.Success(w, http.StatusOK, order, nil)
}

// QRCode handles GET /api/order-tickets/{id}/qr
func (c *CartController) QRCode(w http.ResponseWriter, req *request.Request) {
	buyerID, ok := currentUserID(w, req)
	if !ok {
		return
	}
	itemID, ok := pathID(w, req, "id")
	if !ok {
		return
	}

	png, err := c.credentials.QRCode(req.Context(), buyerID, itemID)
	if err != nil {
		response.FromError(w, c.logger, err)
		return
	}
	response.Binary(w, "image/png", png)
}
