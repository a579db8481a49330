// Package request, http.Request üzerine route parametreleri, JSON gövde
// okuma ve oturum kimliği gibi yardımcılar ekler.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/biyonik/ticketbox-core/pkg/auth"
)

// @author    Ahmet Altun
// @email     ahmet.altun60@gmail.com
// @github    github.com/biyonik
// @linkedin  linkedin.com/in/biyonik

// MaxBodyBytes, okunacak en büyük istek gövdesi (1MB).
const MaxBodyBytes = 1 << 20

// ErrUnauthenticated, context'te oturum kimliği yoksa döner.
var ErrUnauthenticated = errors.New("unauthorized: no identity in context")

// RequestParamsKeyType, route parametrelerinin context anahtarıdır.
type RequestParamsKeyType struct{}

var RequestParamsKey = RequestParamsKeyType{}

// Request, http.Request sarmalayıcısı.
type Request struct {
	*http.Request
}

func New(r *http.Request) *Request {
	return &Request{Request: r}
}

// IsJSON, Content-Type başlığının application/json olup olmadığını
// kontrol eder.
func (r *Request) IsJSON() bool {
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}

// BearerToken, Authorization başlığından Bearer token'ı ayrıştırır.
func (r *Request) BearerToken() string {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// Query, query parametresini döndürür; yoksa defaultValue.
func (r *Request) Query(key string, defaultValue string) string {
	vals, exists := r.URL.Query()[key]
	if !exists || len(vals) == 0 || vals[0] == "" {
		return defaultValue
	}
	return vals[0]
}

// QueryInt64, sayısal query parametresini okur. Parametre yoksa nil döner.
func (r *Request) QueryInt64(key string) (*int64, error) {
	raw := r.Query(key, "")
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s sayı olmalı", key)
	}
	return &v, nil
}

// RouteParam, route parametresini döndürür.
func (r *Request) RouteParam(key string) string {
	params, ok := r.Context().Value(RequestParamsKey).(map[string]string)
	if !ok {
		return ""
	}
	return params[key]
}

// RouteID, {key} route parametresini pozitif int64 olarak okur.
func (r *Request) RouteID(key string) (int64, error) {
	id, err := strconv.ParseInt(r.RouteParam(key), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("geçersiz %s", key)
	}
	return id, nil
}

// ParseJSON, gövdeyi dest'e çözer. Gövde MaxBodyBytes ile sınırlıdır.
func (r *Request) ParseJSON(dest interface{}) error {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, dest)
}

// ParseJSONMap, gövdeyi doğrulama şeması için map olarak çözer. Sayılar
// json.Number olarak korunur.
func (r *Request) ParseJSONMap() (map[string]any, error) {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	dec.UseNumber()

	data := map[string]any{}
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	return data, nil
}

// GetIP, istemci IP'sini döndürür. X-Forwarded-For yalnızca güvenilir bir
// reverse proxy arkasında anlamlıdır.
func (r *Request) GetIP() string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// AuthUser, Auth middleware'inin context'e yazdığı kimliği döndürür.
func (r *Request) AuthUser() (*auth.Identity, error) {
	identity, ok := auth.UserFromContext(r.Context())
	if !ok {
		return nil, ErrUnauthenticated
	}
	return identity, nil
}

// AuthUserID, oturumdaki kullanıcının ID'si.
func (r *Request) AuthUserID() (int64, error) {
	identity, err := r.AuthUser()
	if err != nil {
		return 0, err
	}
	return identity.ID, nil
}
