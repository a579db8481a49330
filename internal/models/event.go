// -----------------------------------------------------------------------------
// Event Model
// -----------------------------------------------------------------------------
// Etkinlikleri temsil eder (konser, tiyatro, spor maçı vb.). Etkinlik bir
// organizatör (host) tarafından PENDING olarak açılır ve bir onaylayıcı
// (approver) tarafından onaylanır ya da reddedilir.
// -----------------------------------------------------------------------------

package models

import (
	"time"
)

// Event, bir etkinliği temsil eder
type Event struct {
	BaseModel
	Name       string      `json:"name" db:"name"`
	Online     bool        `json:"online" db:"online"`
	Address    string      `json:"address" db:"address"`
	OrgName    string      `json:"org_name" db:"org_name"`
	OrgInfo    string      `json:"org_info" db:"org_info"`
	Status     EventStatus `json:"status" db:"status"`
	StartDate  time.Time   `json:"start_date" db:"start_date"`
	EndDate    time.Time   `json:"end_date" db:"end_date"`
	HostID     int64       `json:"host_id" db:"host_id"`
	ApproverID *int64      `json:"approver_id,omitempty" db:"approver_id"`

	// İlişkili veriler
	CategoryIDs []int64   `json:"category_ids,omitempty" db:"-"`
	Tickets     []*Ticket `json:"tickets,omitempty" db:"-"`
}

// EventPatch, PENDING bir etkinlikte kısmi güncelleme için kullanılır.
// nil alanlar değiştirilmez.
type EventPatch struct {
	Name        *string    `json:"name"`
	Online      *bool      `json:"online"`
	Address     *string    `json:"address"`
	OrgName     *string    `json:"org_name"`
	OrgInfo     *string    `json:"org_info"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	CategoryIDs []int64    `json:"category_ids"`
}

// EventFilter, etkinlik listeleme sorgularının filtreleridir.
type EventFilter struct {
	Status     *EventStatus
	HostID     *int64
	ApproverID *int64
	CategoryID *int64
	Query      string

	// Phase, onaylanmış etkinlikleri At anındaki zamana bağlı durumlarına
	// göre (UPCOMING, RUNNING, ENDED) filtreler. Saklanan durum onay anında
	// hesaplandığı için bu durumlar Status ile filtrelenmez.
	Phase *EventStatus
	At    time.Time
}
