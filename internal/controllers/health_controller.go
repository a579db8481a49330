package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/biyonik/ticketbox-core/internal/http/request"
	"github.com/biyonik/ticketbox-core/internal/http/response"
)

// Pinger, sağlık kontrolüne katılan bir bağımlılıktır (MySQL, Redis).
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController handles GET /health
type HealthController struct {
	checks  map[string]Pinger
	timeout time.Duration
}

func NewHealthController(checks map[string]Pinger) *HealthController {
	return &HealthController{checks: checks, timeout: 2 * time.Second}
}

// Show, her bağımlılığı ping'ler. Biri bile başarısızsa 503 döner.
func (c *HealthController) Show(w http.ResponseWriter, req *request.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), c.timeout)
	defer cancel()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	results := make(map[string]string, len(names))
	for _, name := range names {
		if err := c.checks[name].Ping(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	if status != http.StatusOK {
		response.Send(w, status, response.JSONResponse{
			Success: false,
			Error:   "Bağımlılıklardan biri erişilemez durumda",
			Data:    results,
		})
		return
	}
	response.Success(w, http.StatusOK, map[string]any{
		"status": "ok",
		"checks": results,
	}, nil)
}
