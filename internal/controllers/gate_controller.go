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

// GateController, kapıdaki tarama (verify) ve giriş onayı (confirm) uç
// noktalarıdır. Route'lar APPROVER/ADMIN rolü ister.
type GateController struct {
	credentials *services.CredentialService
	logger      *log.Logger
}

func NewGateController(credentials *services.CredentialService, logger *log.Logger) *GateController {
	return &GateController{credentials: credentials, logger: logger}
}

var verifySchema = validation.Make().Shape(map[string]validation.Type{
	"token": types.String().Required().Trim().Max(4096).Label("Bilet kodu"),
})

// Verify handles POST /api/gate/verify
func (c *GateController) Verify(w http.ResponseWriter, req *request.Request) {
	data, ok := decodeAndValidate(w, req, verifySchema)
	if !ok {
		return
	}

	item, err := c.credentials.Verify(req.Context(), str(data, "token"))
	if err != nil {
		response.FromError(w, c.logger, err)
		return
	}
	response.Success(w, http.StatusOK, item, nil)
}

// Confirm handles PUT /api/gate/{id}/confirm
func (c *GateController) Confirm(w http.ResponseWriter, req *request.Request) {
	itemID, ok := pathID(w, req, "id")
	if !ok {
		return
	}

	item, err := c.credentials.Confirm(req.Context(), itemID)
	if err != nil {
		response.FromError(w, c.logger, err)
		return
	}
	response.Success(w, http.StatusOK, item, nil)
}
