// -----------------------------------------------------------------------------
// Domain Errors
// -----------------------------------------------------------------------------
// Bilet yaşam döngüsü boyunca üretilen tüm isimli hatalar burada tanımlanır.
// Her hata bir Kind (sınıf) ve sabit bir Code taşır. Servisler bu hataları
// fmt.Errorf("...: %w", err) ile sarmalayarak yukarı taşır; HTTP katmanı
// yalnızca Kind'a bakarak durum kodunu seçer.
// -----------------------------------------------------------------------------

package models

import "errors"

// ErrorKind, hatanın hangi sınıfa ait olduğunu belirtir.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNotFound
	KindForbidden
	KindUnauthorized
	KindInvalidState
	KindInvalidInput
	KindConflict
	KindCapacityExceeded
	KindCredential
	KindInvariantViolation
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidState:
		return "invalid_state"
	case KindInvalidInput:
		return "invalid_input"
	case KindConflict:
		return "conflict"
	case KindCapacityExceeded:
		return "capacity_exceeded"
	case KindCredential:
		return "credential"
	case KindInvariantViolation:
		return "invariant_violation"
	default:
		return "unknown"
	}
}

// AppError, uygulama genelinde kullanılan tipli hata yapısıdır.
type AppError struct {
	Kind    ErrorKind `json:"-"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Is, iki AppError'ı Code üzerinden karşılaştırır.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func newError(kind ErrorKind, code, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

// AsAppError, zincirdeki ilk AppError'ı döndürür.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf, hatanın sınıfını döndürür. AppError değilse KindUnknown.
func KindOf(err error) ErrorKind {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Kind
	}
	return KindUnknown
}

// NotFound
var (
	ErrEventNotFound        = newError(KindNotFound, "EVENT_NOT_FOUND", "Etkinlik bulunamadı")
	ErrTicketNotFound       = newError(KindNotFound, "TICKET_NOT_FOUND", "Bilet bulunamadı")
	ErrOrderNotFound        = newError(KindNotFound, "ORDER_NOT_FOUND", "Sipariş bulunamadı")
	ErrOrderTicketNotFound  = newError(KindNotFound, "ORDER_TICKET_NOT_FOUND", "Sipariş bileti bulunamadı")
	ErrRelationshipNotFound = newError(KindNotFound, "RELATIONSHIP_NOT_FOUND", "Yakınlık türü bulunamadı")
	ErrCategoryNotFound     = newError(KindNotFound, "CATEGORY_NOT_FOUND", "Kategori bulunamadı")
	ErrUserNotFound         = newError(KindNotFound, "USER_NOT_FOUND", "Kullanıcı bulunamadı")
)

// Forbidden / Unauthorized
var (
	ErrNotOwner           = newError(KindForbidden, "NOT_OWNER", "Bu kaydın sahibi değilsiniz")
	ErrNotAnApprover      = newError(KindForbidden, "NOT_AN_APPROVER", "Bu işlem için onaylayıcı yetkisi gerekli")
	ErrInvalidCredentials = newError(KindUnauthorized, "INVALID_CREDENTIALS", "E-posta veya şifre hatalı")
	ErrInvalidSession     = newError(KindUnauthorized, "INVALID_REFRESH_TOKEN", "Oturum yenilenemedi, tekrar giriş yapın")
)

// InvalidState
var (
	ErrOnlyPendingIsUpdatable = newError(KindInvalidState, "ONLY_PENDING_IS_UPDATABLE", "Yalnızca onay bekleyen kayıtlar değiştirilebilir")
	ErrOnlyInactiveEditable   = newError(KindInvalidState, "ONLY_INACTIVE_EDITABLE", "Yalnızca aktif olmayan sepet kalemleri değiştirilebilir")
	ErrOnlyCartIsUpdatable    = newError(KindInvalidState, "ONLY_CART_IS_UPDATABLE", "Yalnızca satın alınmamış sepet değiştirilebilir")
	ErrNotInCart              = newError(KindInvalidState, "NOT_IN_CART", "Kalem sepetinizde değil")
	ErrNotPending             = newError(KindInvalidState, "NOT_PENDING", "Bilet onay beklemiyor")
	ErrAlreadyUsed            = newError(KindInvalidState, "ALREADY_USED", "Bilet zaten kullanılmış veya taranmış")
	ErrTicketNotOnSale        = newError(KindInvalidState, "TICKET_NOT_ON_SALE", "Bilet şu anda satışta değil")
	ErrEmptyCart              = newError(KindInvalidState, "EMPTY_CART", "Sepet boş")
	ErrNotPurchased           = newError(KindInvalidState, "ORDER_NOT_PURCHASED", "Sipariş henüz satın alınmadı")
)

// InvalidInput
var (
	ErrQuantityOutOfRange      = newError(KindInvalidInput, "QUANTITY_OUT_OF_RANGE", "Adet izin verilen aralığın dışında")
	ErrInvalidSaleWindow       = newError(KindInvalidInput, "INVALID_SALE_WINDOW", "Satış tarihleri geçersiz")
	ErrInvalidEventWindow      = newError(KindInvalidInput, "INVALID_EVENT_WINDOW", "Etkinlik tarihleri geçersiz")
	ErrRelationshipNotAccepted = newError(KindInvalidInput, "RELATIONSHIP_NOT_ACCEPTED", "Bu bilet türü seçilen yakınlık için satılmıyor")
	ErrValidation              = newError(KindInvalidInput, "VALIDATION_FAILED", "Doğrulama hatası")
)

// Conflict
var (
	ErrEmailTaken = newError(KindConflict, "EMAIL_TAKEN", "Bu e-posta adresi zaten kullanımda")
)

// CapacityExceeded
var (
	ErrCapacityExceeded = newError(KindCapacityExceeded, "CAPACITY_EXCEEDED", "Bilet kapasitesi aşıldı")
)

// Credential
var (
	ErrCredentialExpired = newError(KindCredential, "CREDENTIAL_EXPIRED", "Bilet kodu geçersiz veya süresi dolmuş")
	ErrTokenMismatch     = newError(KindCredential, "TOKEN_MISMATCH", "Bilet kodu kayıtlı kod ile eşleşmiyor")
)

// InvariantViolation
var (
	ErrInvalidCartCount  = newError(KindInvariantViolation, "INVALID_CART_COUNT", "Kullanıcının tam olarak bir sepeti olmalı")
	ErrCapacityCorrupted = newError(KindInvariantViolation, "SOLD_EXCEEDS_CAPACITY", "Satılan adet kapasiteyi aşıyor")
)
