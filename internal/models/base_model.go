// internal/models/base_model.go
//
// Bu dosya, tüm modellerin gömülü olarak taşıdığı ortak alanları
// (ID, CreatedAt, UpdatedAt) içerir.
//
// Zaman damgaları dışarıdan verilen saat ile doldurulur; böylece servisler
// tek bir clock.Clock üzerinden deterministik şekilde test edilebilir.
//
// Kullanım:
//    type Category struct {
//        models.BaseModel
//        Name string
//    }

package models

import "time"

// BaseModel
//
// Tüm modellerin gövdesini oluşturur.
//
// Alanlar:
//   - ID:        int64  → birincil anahtar
//   - CreatedAt: time   → oluşturulma zamanı
//   - UpdatedAt: time   → güncellenme zamanı
type BaseModel struct {
	ID        int64     `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Initialize, CreatedAt ve UpdatedAt alanlarını verilen zamana ayarlar.
// Yeni bir kayıt oluşturulmadan önce çağrılır.
func (m *BaseModel) Initialize(now time.Time) {
	m.CreatedAt = now
	m.UpdatedAt = now
}

// Touch, UpdatedAt alanını verilen zamana günceller.
func (m *BaseModel) Touch(now time.Time) {
	m.UpdatedAt = now
}
