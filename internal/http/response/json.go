// -----------------------------------------------------------------------------
// JSON Response Helpers
// -----------------------------------------------------------------------------
// Tüm API yanıtları aynı zarfı kullanır:
//
//	{"success": true, "data": {...}, "meta": {...}}
//	{"success": false, "error": "Bilet kapasitesi aşıldı", "code": "CAPACITY_EXCEEDED"}
// -----------------------------------------------------------------------------

package response

import (
	"encoding/json"
	"net/http"
)

// JSONResponse, standart API yanıt zarfı.
type JSONResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// Send, zarfı verilen HTTP durum koduyla yazar.
func Send(w http.ResponseWriter, status int, payload JSONResponse) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(payload)
}

// Success, başarılı bir yanıt yazar.
func Success(w http.ResponseWriter, status int, data interface{}, meta interface{}) error {
	return Send(w, status, JSONResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

// Error, hata yanıtı yazar. errData string, error veya alan bazlı
// doğrulama hataları (map[string][]string) olabilir.
func Error(w http.ResponseWriter, status int, errData any) error {
	payload := JSONResponse{
		Success: false,
	}

	switch e := errData.(type) {
	case string:
		payload.Error = e
	case error:
		payload.Error = e.Error()
	case map[string][]string:
		payload.Error = "Doğrulama hatası"
		payload.Data = e
	default:
		payload.Error = "Bilinmeyen bir sunucu hatası oluştu"
	}

	return Send(w, status, payload)
}

// Binary, ham içerik yazar (QR PNG gibi).
func Binary(w http.ResponseWriter, contentType string, body []byte) error {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(body)
	return err
}

// StatusRecorder, yazılan HTTP durum kodunu yakalar. Logging ve metrics
// middleware'leri kullanır.
type StatusRecorder struct {
	http.ResponseWriter
	Status int
}

func NewStatusRecorder(w http.ResponseWriter) *StatusRecorder {
	return &StatusRecorder{ResponseWriter: w, Status: http.StatusOK}
}

func (r *StatusRecorder) WriteHeader(status int) {
	r.Status = status
	r.ResponseWriter.WriteHeader(status)
}
