package validation

import (
	"errors"
	"fmt"
)

// @author    Ahmet Altun
// @email     ahmet.altun60@gmail.com
// @github    github.com/biyonik
// @linkedin  linkedin.com/in/biyonik

// CrossField, çapraz doğrulama hatalarının yazıldığı alan adı.
const CrossField = "_cross_validation"

// ValidationSchema, Schema implementasyonu.
type ValidationSchema struct {
	shape           map[string]Type
	crossValidators []func(data map[string]any) error
}

// Make, boş bir şema döndürür.
func Make() *ValidationSchema {
	return &ValidationSchema{shape: make(map[string]Type)}
}

func (vs *ValidationSchema) Shape(shape map[string]Type) Schema {
	vs.shape = shape
	return vs
}

func (vs *ValidationSchema) CrossValidate(fn func(data map[string]any) error) Schema {
	vs.crossValidators = append(vs.crossValidators, fn)
	return vs
}

// Validate:
//  1. Transform: her alan temizlenir; dönüşemeyen alan hata alır.
//  2. Validate: dönüşen alanlar tip kurallarına göre doğrulanır.
//  3. Cross-validate: alan hatası yoksa alanlar arası kurallar çalışır.
//  4. Hata yoksa validData ayarlanır.
func (vs *ValidationSchema) Validate(data map[string]any) *ValidationResult {
	result := NewResult()
	transformed := make(map[string]any, len(vs.shape))

	for field, typ := range vs.shape {
		value, err := typ.Transform(data[field])
		if err != nil {
			result.AddError(field, fmt.Sprintf("Dönüşüm hatası: %s", err.Error()))
			continue
		}
		transformed[field] = value
	}

	for field, typ := range vs.shape {
		if result.HasFieldErrors(field) {
			continue
		}
		typ.Validate(field, transformed[field], result)
	}

	if !result.HasErrors() {
		for _, fn := range vs.crossValidators {
			if err := fn(transformed); err != nil {
				var fe *FieldError
				if errors.As(err, &fe) {
					result.AddError(fe.Field, fe.Message)
					continue
				}
				result.AddError(CrossField, err.Error())
			}
		}
	}

	if !result.HasErrors() {
		result.SetValidData(transformed)
	}
	return result
}
