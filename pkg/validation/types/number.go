package types

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/biyonik/ticketbox-core/pkg/validation"
)

// NumberType, sayı alanı. Integer() ile oluşturulduysa değer int64'e,
// aksi halde float64'e dönüşür.
type NumberType struct {
	BaseType
	min       *float64
	max       *float64
	isInteger bool
}

func (n *NumberType) Required() *NumberType {
	n.SetRequired()
	return n
}

func (n *NumberType) Label(label string) *NumberType {
	n.SetLabel(label)
	return n
}

func (n *NumberType) Default(value float64) *NumberType {
	n.SetDefault(value)
	return n
}

func (n *NumberType) Min(val float64) *NumberType {
	n.min = &val
	return n
}

func (n *NumberType) Max(val float64) *NumberType {
	n.max = &val
	return n
}

func (n *NumberType) Transform(value any) (any, error) {
	value, err := n.BaseType.Transform(value)
	if err != nil || value == nil {
		return value, err
	}

	var num float64
	switch v := value.(type) {
	case json.Number:
		if num, err = v.Float64(); err != nil {
			return nil, fmt.Errorf("sayı bekleniyor")
		}
	case float64:
		num = v
	case int:
		num = float64(v)
	case int64:
		num = float64(v)
	default:
		return nil, fmt.Errorf("sayı bekleniyor")
	}

	if !n.isInteger {
		return num, nil
	}
	if num != math.Trunc(num) || math.Abs(num) > 1<<53 {
		return nil, fmt.Errorf("tamsayı bekleniyor")
	}
	return int64(num), nil
}

func (n *NumberType) Validate(field string, value any, result *validation.ValidationResult) {
	if !n.validatePresence(field, value, result) {
		return
	}

	var num float64
	switch v := value.(type) {
	case float64:
		num = v
	case int64:
		num = float64(v)
	default:
		result.AddError(field, fmt.Sprintf("%s alanı sayısal bir değer olmalıdır", n.name(field)))
		return
	}

	if n.min != nil && num < *n.min {
		result.AddError(field, fmt.Sprintf("%s alanı %v değerinden küçük olamaz", n.name(field), *n.min))
	}
	if n.max != nil && num > *n.max {
		result.AddError(field, fmt.Sprintf("%s alanı %v değerinden büyük olamaz", n.name(field), *n.max))
	}
}
