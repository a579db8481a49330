// -----------------------------------------------------------------------------
// Validation Helper Functions
// -----------------------------------------------------------------------------
// Controller'larda tekrar eden "doğrula, hata varsa 422 dön" kalıbını kısaltır.
// -----------------------------------------------------------------------------

package validation

import (
	"net/http"
	"time"

	"github.com/biyonik/ticketbox-core/internal/http/response"
)

// ValidateAndRespond, data'yı doğrular; hata varsa 422 yazar ve ok=false
// döner.
//
//	valid, ok := validation.ValidateAndRespond(schema, data, w)
//	if !ok {
//	    return
//	}
func ValidateAndRespond(schema Schema, data map[string]any, w http.ResponseWriter) (map[string]any, bool) {
	result := schema.Validate(data)
	if result.HasErrors() {
		response.ValidationError(w, result.Errors())
		return nil, false
	}
	return result.ValidData(), true
}

// DateOrder, iki tarih alanı da doluysa before < after olmasını ister.
func DateOrder(beforeField, afterField, message string) func(map[string]any) error {
	return func(data map[string]any) error {
		before, ok1 := data[beforeField].(time.Time)
		after, ok2 := data[afterField].(time.Time)
		if ok1 && ok2 && !before.Before(after) {
			return NewFieldError(afterField, message)
		}
		return nil
	}
}

// MaxNotBelowMin, iki sayı alanı da doluysa max >= min olmasını ister.
func MaxNotBelowMin(minField, maxField, message string) func(map[string]any) error {
	return func(data map[string]any) error {
		lo, ok1 := data[minField].(int64)
		hi, ok2 := data[maxField].(int64)
		if ok1 && ok2 && hi < lo {
			return NewFieldError(maxField, message)
		}
		return nil
	}
}
