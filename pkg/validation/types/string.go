package types

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/biyonik/ticketbox-core/pkg/validation"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// StringType, metin alanı. Uzunluklar karakter (rune) sayısıyla ölçülür.
type StringType struct {
	BaseType
	minLength     *int
	maxLength     *int
	email         bool
	allowedValues []string
}

func (s *StringType) Required() *StringType {
	s.SetRequired()
	return s
}

func (s *StringType) Label(label string) *StringType {
	s.SetLabel(label)
	return s
}

func (s *StringType) Default(value string) *StringType {
	s.SetDefault(value)
	return s
}

func (s *StringType) Min(length int) *StringType {
	s.minLength = &length
	return s
}

func (s *StringType) Max(length int) *StringType {
	s.maxLength = &length
	return s
}

func (s *StringType) Email() *StringType {
	s.email = true
	return s
}

func (s *StringType) OneOf(values ...string) *StringType {
	s.allowedValues = values
	return s
}

// Trim, baştaki ve sondaki boşlukları temizler.
func (s *StringType) Trim() *StringType {
	s.AddTransform(func(value any) (any, error) {
		str, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("metin bekleniyor")
		}
		return strings.TrimSpace(str), nil
	})
	return s
}

// Lower, değeri küçük harfe çevirir.
func (s *StringType) Lower() *StringType {
	s.AddTransform(func(value any) (any, error) {
		str, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("metin bekleniyor")
		}
		return strings.ToLower(str), nil
	})
	return s
}

func (s *StringType) Validate(field string, value any, result *validation.ValidationResult) {
	if !s.validatePresence(field, value, result) {
		return
	}

	fieldName := s.name(field)
	str, ok := value.(string)
	if !ok {
		result.AddError(field, fmt.Sprintf("%s alanı metin tipinde olmalıdır", fieldName))
		return
	}

	length := utf8.RuneCountInString(str)
	if s.minLength != nil && length < *s.minLength {
		result.AddError(field, fmt.Sprintf("%s alanı en az %d karakter olmalıdır", fieldName, *s.minLength))
	}
	if s.maxLength != nil && length > *s.maxLength {
		result.AddError(field, fmt.Sprintf("%s alanı en fazla %d karakter olmalıdır", fieldName, *s.maxLength))
	}
	if s.email && !emailRegex.MatchString(str) {
		result.AddError(field, fmt.Sprintf("%s alanı geçerli bir e-posta formatında değil", fieldName))
	}
	if len(s.allowedValues) > 0 {
		for _, allowed := range s.allowedValues {
			if str == allowed {
				return
			}
		}
		result.AddError(field, fmt.Sprintf("%s alanı şunlardan biri olmalıdır: %s", fieldName, strings.Join(s.allowedValues, ", ")))
	}
}
