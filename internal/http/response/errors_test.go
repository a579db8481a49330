package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/biyonik/ticketbox-core/internal/models"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.ErrEventNotFound, http.StatusNotFound},
		{fmt.Errorf("approve: %w", models.ErrNotAnApprover), http.StatusForbidden},
		{models.ErrInvalidCredentials, http.StatusUnauthorized},
		{models.ErrOnlyPendingIsUpdatable, http.StatusConflict},
		{models.ErrCapacityExceeded, http.StatusConflict},
		{models.ErrEmailTaken, http.StatusConflict},
		{models.ErrQuantityOutOfRange, http.StatusUnprocessableEntity},
		{models.ErrCredentialExpired, http.StatusBadRequest},
		{models.ErrTokenMismatch, http.StatusConflict},
		{models.ErrInvalidCartCount, http.StatusInternalServerError},
		{errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestFromError_WritesCode(t *testing.T) {
	var logs bytes.Buffer
	rec := httptest.NewRecorder()

	FromError(rec, log.New(&logs, "", 0), fmt.Errorf("add item: %w", models.ErrCapacityExceeded))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	var body JSONResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success || body.Code != "CAPACITY_EXCEEDED" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if logs.Len() != 0 {
		t.Fatalf("expected no log for client error, got %q", logs.String())
	}
}

func TestFromError_HidesInternalDetails(t *testing.T) {
	var logs bytes.Buffer
	rec := httptest.NewRecorder()

	FromError(rec, log.New(&logs, "", 0), errors.New("dial tcp 10.0.0.1:3306: refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.1") {
		t.Fatalf("internal error leaked to client: %s", rec.Body.String())
	}
	if !strings.Contains(logs.String(), "10.0.0.1") {
		t.Fatalf("expected internal error to be logged")
	}
}

func TestFromError_LogsInvariantViolation(t *testing.T) {
	var logs bytes.Buffer
	rec := httptest.NewRecorder()

	FromError(rec, log.New(&logs, "", 0), models.ErrInvalidCartCount)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(logs.String(), "🚨") {
		t.Fatalf("expected invariant violation log, got %q", logs.String())
	}
}

func TestStatusRecorder(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := NewStatusRecorder(rec)

	if sr.Status != http.StatusOK {
		t.Fatalf("expected default 200, got %d", sr.Status)
	}
	sr.WriteHeader(http.StatusTeapot)
	if sr.Status != http.StatusTeapot || rec.Code != http.StatusTeapot {
		t.Fatalf("expected 418 recorded, got %d / %d", sr.Status, rec.Code)
	}
}
