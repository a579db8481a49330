package types

import (
	"fmt"
	"time"

	"github.com/biyonik/ticketbox-core/pkg/validation"
)

// DateType, tarih alanı. Değer UTC time.Time'a dönüşür.
type DateType struct {
	BaseType
	format string
}

func (d *DateType) Required() *DateType {
	d.SetRequired()
	return d
}

func (d *DateType) Label(label string) *DateType {
	d.SetLabel(label)
	return d
}

// Format, Go time.Parse formatı.
func (d *DateType) Format(goTimeFormat string) *DateType {
	d.format = goTimeFormat
	return d
}

func (d *DateType) Transform(value any) (any, error) {
	value, err := d.BaseType.Transform(value)
	if err != nil || value == nil {
		return value, err
	}

	switch v := value.(type) {
	case time.Time:
		return v.UTC(), nil
	case string:
		if v == "" {
			return nil, nil
		}
		parsed, err := time.Parse(d.format, v)
		if err != nil {
			return nil, fmt.Errorf("geçerli bir tarih formatı değil. Beklenen: %s", d.format)
		}
		return parsed.UTC(), nil
	default:
		return nil, fmt.Errorf("tarih metin olarak gönderilmelidir")
	}
}

func (d *DateType) Validate(field string, value any, result *validation.ValidationResult) {
	if !d.validatePresence(field, value, result) {
		return
	}
	if _, ok := value.(time.Time); !ok {
		result.AddError(field, fmt.Sprintf("%s alanı geçerli bir tarih olmalıdır", d.name(field)))
	}
}
