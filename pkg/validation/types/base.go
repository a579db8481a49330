// Package types, pkg/validation şemalarında kullanılan alan tipleridir:
// String, Number, Integer, Decimal, Date, Boolean, Array.
package types

import (
	"fmt"

	"github.com/biyonik/ticketbox-core/pkg/validation"
)

// @author    Ahmet Altun
// @email     ahmet.altun60@gmail.com
// @github    github.com/biyonik
// @linkedin  linkedin.com/in/biyonik

// BaseType, tüm tiplerin gömdüğü zorunluluk, etiket, varsayılan değer ve
// dönüşüm zinciri.
type BaseType struct {
	isRequired      bool
	label           string
	defaultValue    any
	transformations []func(any) (any, error)
}

func (b *BaseType) SetRequired() {
	b.isRequired = true
}

func (b *BaseType) SetLabel(label string) {
	b.label = label
}

func (b *BaseType) SetDefault(value any) {
	b.defaultValue = value
}

func (b *BaseType) AddTransform(fn func(any) (any, error)) {
	b.transformations = append(b.transformations, fn)
}

func (b *BaseType) name(field string) string {
	if b.label != "" {
		return b.label
	}
	return field
}

// Transform, varsayılan değeri ve dönüşümleri sırayla uygular.
func (b *BaseType) Transform(value any) (any, error) {
	if value == nil && b.defaultValue != nil {
		value = b.defaultValue
	}
	if value == nil {
		return nil, nil
	}

	var err error
	for _, fn := range b.transformations {
		value, err = fn(value)
		if err != nil {
			return nil, err
		}
	}
	return value, nil
}

// validatePresence, zorunluluk kontrolü. nil ve boş string eksik sayılır. Alan
// eksikse false döner; alt tipler bu durumda kendi kurallarını atlar.
func (b *BaseType) validatePresence(field string, value any, result *validation.ValidationResult) bool {
	missing := value == nil
	if str, ok := value.(string); ok && str == "" {
		missing = true
	}
	if missing {
		if b.isRequired {
			result.AddError(field, fmt.Sprintf("%s alanı zorunludur", b.name(field)))
		}
		return false
	}
	return true
}
