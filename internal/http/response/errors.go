// -----------------------------------------------------------------------------
// Error Responses
// -----------------------------------------------------------------------------
// Servislerden dönen tipli hatalar yalnızca burada HTTP durum kodlarına
// çevrilir (FromError). Diğer yardımcılar middleware ve controller'ların
// doğrudan kullandığı kısa yollardır.
// -----------------------------------------------------------------------------

package response

import (
	"errors"
	"log"
	"net/http"

	"github.com/biyonik/ticketbox-core/internal/models"
)

func InvalidJSON(w http.ResponseWriter) {
	Error(w, http.StatusBadRequest, "Geçersiz JSON formatı")
}

func ValidationError(w http.ResponseWriter, errors map[string][]string) {
	Error(w, http.StatusUnprocessableEntity, errors)
}

func FieldError(w http.ResponseWriter, field string, message string) {
	Error(w, http.StatusUnprocessableEntity, map[string][]string{
		field: {message},
	})
}

func Unauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Kimlik doğrulaması gerekli"
	}
	Error(w, http.StatusUnauthorized, message)
}

func Forbidden(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Bu işlem için yetkiniz yok"
	}
	Error(w, http.StatusForbidden, message)
}

func NotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Kayıt bulunamadı"
	}
	Error(w, http.StatusNotFound, message)
}

func ServerError(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Sunucu hatası"
	}
	Error(w, http.StatusInternalServerError, message)
}

func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

func TooManyRequests(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Çok fazla istek gönderdiniz. Lütfen daha sonra tekrar deneyin."
	}
	Error(w, http.StatusTooManyRequests, message)
}

// StatusFor, hatanın HTTP durum kodunu döndürür.
func StatusFor(err error) int {
	appErr, ok := models.AsAppError(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch appErr.Kind {
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindForbidden:
		return http.StatusForbidden
	case models.KindUnauthorized:
		return http.StatusUnauthorized
	case models.KindInvalidState, models.KindConflict, models.KindCapacityExceeded:
		return http.StatusConflict
	case models.KindInvalidInput:
		return http.StatusUnprocessableEntity
	case models.KindCredential:
		if errors.Is(err, models.ErrTokenMismatch) {
			return http.StatusConflict
		}
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// FromError, servis hatasını uygun durum koduyla yazar. Beklenmeyen
// hatalar ve veri bütünlüğü ihlalleri loglanır; istemciye iç ayrıntı
// sızdırılmaz.
func FromError(w http.ResponseWriter, logger *log.Logger, err error) {
	status := StatusFor(err)
	appErr, ok := models.AsAppError(err)

	switch {
	case ok && appErr.Kind == models.KindInvariantViolation:
		logger.Printf("🚨 Veri bütünlüğü ihlali: %v", err)
	case !ok:
		logger.Printf("❌ Beklenmeyen hata: %v", err)
	}

	if !ok || status == http.StatusInternalServerError {
		Send(w, http.StatusInternalServerError, JSONResponse{Error: "Sunucuda beklenmedik bir hata oluştu"})
		return
	}

	Send(w, status, JSONResponse{Error: appErr.Message, Code: appErr.Code})
}
