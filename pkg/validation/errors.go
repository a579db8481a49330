package validation

import "fmt"

// FieldError, çapraz doğrulamada belirli bir alana yazılacak hata.
//
//	return validation.NewFieldError("end_date", "Bitiş başlangıçtan sonra olmalı")
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewFieldError(field, message string) error {
	return &FieldError{Field: field, Message: message}
}
