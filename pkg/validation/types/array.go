package types

import (
	"fmt"

	"github.com/biyonik/ticketbox-core/pkg/validation"
)

// ArrayType, dizi alanı. Elements ile her elemana bir tip uygulanır.
type ArrayType struct {
	BaseType
	minLength     *int
	maxLength     *int
	elementSchema validation.Type
}

func (a *ArrayType) Required() *ArrayType {
	a.SetRequired()
	return a
}

func (a *ArrayType) Label(label string) *ArrayType {
	a.SetLabel(label)
	return a
}

func (a *ArrayType) Min(length int) *ArrayType {
	a.minLength = &length
	return a
}

func (a *ArrayType) Max(length int) *ArrayType {
	a.maxLength = &length
	return a
}

func (a *ArrayType) Elements(schema validation.Type) *ArrayType {
	a.elementSchema = schema
	return a
}

func (a *ArrayType) Transform(value any) (any, error) {
	value, err := a.BaseType.Transform(value)
	if err != nil || value == nil {
		return value, err
	}

	slice, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("dizi (array) tipinde olmalıdır")
	}
	if a.elementSchema == nil {
		return slice, nil
	}

	out := make([]any, len(slice))
	for i, item := range slice {
		if out[i], err = a.elementSchema.Transform(item); err != nil {
			return nil, fmt.Errorf("dizi index %d: %w", i, err)
		}
	}
	return out, nil
}

func (a *ArrayType) Validate(field string, value any, result *validation.ValidationResult) {
	if value == nil {
		a.validatePresence(field, value, result)
		return
	}

	slice, ok := value.([]any)
	if !ok {
		result.AddError(field, fmt.Sprintf("%s alanı dizi (array) tipinde olmalıdır", a.name(field)))
		return
	}

	if a.minLength != nil && len(slice) < *a.minLength {
		result.AddError(field, fmt.Sprintf("%s alanında en az %d eleman olmalıdır", a.name(field), *a.minLength))
	}
	if a.maxLength != nil && len(slice) > *a.maxLength {
		result.AddError(field, fmt.Sprintf("%s alanında en fazla %d eleman olmalıdır", a.name(field), *a.maxLength))
	}
	if a.elementSchema != nil {
		for i, item := range slice {
			a.elementSchema.Validate(fmt.Sprintf("%s[%d]", field, i), item, result)
		}
	}
}

// Int64s, Integer elemanlı dizinin doğrulanmış değerini []int64'e çevirir.
func Int64s(value any) []int64 {
	slice, _ := value.([]any)
	out := make([]int64, 0, len(slice))
	for _, item := range slice {
		if v, ok := item.(int64); ok {
			out = append(out, v)
		}
	}
	return out
}
