// Package validation, istek gövdelerini (map[string]any) tip bazlı şemalarla
// doğrular ve temizler. Tipler pkg/validation/types altındadır.
//
//	schema := validation.Make().Shape(map[string]validation.Type{
//	    "email":    types.String().Required().Trim().Email(),
//	    "password": types.String().Required().Min(8),
//	})
//	result := schema.Validate(data)
package validation

// @author    Ahmet Altun
// @email     ahmet.altun60@gmail.com
// @github    github.com/biyonik
// @linkedin  linkedin.com/in/biyonik

// ValidationResult, alan bazlı hataları ve doğrulanmış veriyi tutar.
type ValidationResult struct {
	errors    map[string][]string
	validData map[string]any
}

func NewResult() *ValidationResult {
	return &ValidationResult{
		errors:    make(map[string][]string),
		validData: make(map[string]any),
	}
}

func (r *ValidationResult) AddError(field, message string) {
	r.errors[field] = append(r.errors[field], message)
}

func (r *ValidationResult) HasErrors() bool {
	return len(r.errors) > 0
}

// HasFieldErrors, yalnızca verilen alan için hata olup olmadığını söyler.
func (r *ValidationResult) HasFieldErrors(field string) bool {
	return len(r.errors[field]) > 0
}

func (r *ValidationResult) Errors() map[string][]string {
	return r.errors
}

// ValidData, hata yoksa şemadaki her alanın dönüştürülmüş değerini içerir.
// Gönderilmeyen opsiyonel alanlar nil'dir.
func (r *ValidationResult) ValidData() map[string]any {
	return r.validData
}

func (r *ValidationResult) SetValidData(data map[string]any) {
	r.validData = data
}

// Type, tek bir alanın dönüşümü ve doğrulaması.
type Type interface {
	// Transform, doğrulamadan önce değeri temizler (trim, tarih parse vb.).
	Transform(value any) (any, error)
	Validate(field string, value any, result *ValidationResult)
}

// Schema, bir veri setinin tamamını doğrular.
type Schema interface {
	Validate(data map[string]any) *ValidationResult
	Shape(shape map[string]Type) Schema
	// CrossValidate, alanlar arası kurallar ekler. Yalnızca alan bazlı
	// doğrulama hatasız geçerse çalışır.
	CrossValidate(fn func(data map[string]any) error) Schema
}
