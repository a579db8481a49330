package types

import (
	"fmt"

	"github.com/biyonik/ticketbox-core/pkg/validation"
)

type BooleanType struct {
	BaseType
}

func (b *BooleanType) Required() *BooleanType {
	b.SetRequired()
	return b
}

func (b *BooleanType) Label(label string) *BooleanType {
	b.SetLabel(label)
	return b
}

func (b *BooleanType) Default(value bool) *BooleanType {
	b.SetDefault(value)
	return b
}

func (b *BooleanType) Validate(field string, value any, result *validation.ValidationResult) {
	if !b.validatePresence(field, value, result) {
		return
	}
	if _, ok := value.(bool); !ok {
		result.AddError(field, fmt.Sprintf("%s alanı boolean tipinde olmalıdır", b.name(field)))
	}
}
