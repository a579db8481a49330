package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/biyonik/ticketbox-core/internal/http/request"
	"github.com/biyonik/ticketbox-core/internal/http/response"
	"github.com/biyonik/ticketbox-core/internal/models"
	"github.com/biyonik/ticketbox-core/pkg/validation"
)

// currentUserID, oturumdaki kullanıcının ID'sini döndürür; yoksa 401 yazar.
func currentUserID(w http.ResponseWriter, req *request.Request) (int64, bool) {
	id, err := req.AuthUserID()
	if err != nil {
		response.Unauthorized(w, "Oturum açmanız gerekiyor")
		return 0, false
	}
	return id, true
}

// pathID, {name} route parametresini pozitif bir ID olarak okur; geçersizse
// 400 yazar.
func pathID(w http.ResponseWriter, req *request.Request, name string) (int64, bool) {
	id, err := req.RouteID(name)
	if err != nil {
		response.BadRequest(w, "Geçersiz ID")
		return 0, false
	}
	return id, true
}

// decodeAndValidate, gövdeyi okur ve şemaya göre doğrular. Hata durumunda
// yanıtı kendisi yazar.
func decodeAndValidate(w http.ResponseWriter, req *request.Request, schema validation.Schema) (map[string]any, bool) {
	data, err := req.ParseJSONMap()
	if err != nil {
		response.InvalidJSON(w)
		return nil, false
	}
	return validation.ValidateAndRespond(schema, data, w)
}

// pageFromQuery, ?page=&size= parametrelerinden sayfa bilgisi üretir.
func pageFromQuery(req *request.Request) models.Page {
	number, _ := strconv.Atoi(req.Query("page", "1"))
	size, _ := strconv.Atoi(req.Query("size", strconv.Itoa(models.DefaultPageSize)))
	return models.Page{Number: number, Size: size}.Normalize()
}

func pageMeta(page models.Page, count int) map[string]any {
	return map[string]any{
		"page":  page.Number,
		"size":  page.Size,
		"count": count,
	}
}

// Doğrulanmış veriden tipli değer okuyucular. Alan yoksa sıfır değer ya da
// nil döner.

func str(data map[string]any, key string) string {
	v, _ := data[key].(string)
	return v
}

func strPtr(data map[string]any, key string) *string {
	if v, ok := data[key].(string); ok {
		return &v
	}
	return nil
}

func boolPtr(data map[string]any, key string) *bool {
	if v, ok := data[key].(bool); ok {
		return &v
	}
	return nil
}

func int64Ptr(data map[string]any, key string) *int64 {
	if v, ok := data[key].(int64); ok {
		return &v
	}
	return nil
}

func timePtr(data map[string]any, key string) *time.Time {
	if v, ok := data[key].(time.Time); ok {
		return &v
	}
	return nil
}

func decimalPtr(data map[string]any, key string) *decimal.Decimal {
	if v, ok := data[key].(decimal.Decimal); ok {
		return &v
	}
	return nil
}
