package types

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/biyonik/ticketbox-core/pkg/validation"
)

// DecimalType, para alanı. JSON sayısı veya "49.90" gibi string kabul eder;
// float yuvarlaması olmadan decimal.Decimal'e dönüşür.
type DecimalType struct {
	BaseType
	nonNegative bool
	maxPlaces   *int32
}

func (d *DecimalType) Required() *DecimalType {
	d.SetRequired()
	return d
}

func (d *DecimalType) Label(label string) *DecimalType {
	d.SetLabel(label)
	return d
}

func (d *DecimalType) NonNegative() *DecimalType {
	d.nonNegative = true
	return d
}

// Places, izin verilen en fazla ondalık basamak.
func (d *DecimalType) Places(n int32) *DecimalType {
	d.maxPlaces = &n
	return d
}

func (d *DecimalType) Transform(value any) (any, error) {
	value, err := d.BaseType.Transform(value)
	if err != nil || value == nil {
		return value, err
	}

	var raw string
	switch v := value.(type) {
	case json.Number:
		raw = v.String()
	case string:
		if v == "" {
			return nil, nil
		}
		raw = v
	case float64:
		return decimal.NewFromFloat(v), nil
	case decimal.Decimal:
		return v, nil
	default:
		return nil, fmt.Errorf("ondalık sayı bekleniyor")
	}

	dec, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("ondalık sayı bekleniyor")
	}
	return dec, nil
}

func (d *DecimalType) Validate(field string, value any, result *validation.ValidationResult) {
	if !d.validatePresence(field, value, result) {
		return
	}

	dec, ok := value.(decimal.Decimal)
	if !ok {
		result.AddError(field, fmt.Sprintf("%s alanı ondalık sayı olmalıdır", d.name(field)))
		return
	}
	if d.nonNegative && dec.IsNegative() {
		result.AddError(field, fmt.Sprintf("%s alanı negatif olamaz", d.name(field)))
	}
	if d.maxPlaces != nil && !dec.Equal(dec.Truncate(*d.maxPlaces)) {
		result.AddError(field, fmt.Sprintf("%s alanı en fazla %d ondalık basamak içerebilir", d.name(field), *d.maxPlaces))
	}
}
