// -----------------------------------------------------------------------------
// Ticket Model
// -----------------------------------------------------------------------------
// Bir etkinliğe ait bilet türünü (kategori/tier) temsil eder: satış penceresi,
// birim fiyat, kapasite ve sipariş başına adet sınırları.
// -----------------------------------------------------------------------------

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ticket, satılabilir bir bilet türüdür
type Ticket struct {
	BaseModel
	EventID        int64           `json:"event_id" db:"event_id"`
	Type           string          `json:"type" db:"type"`
	StartSale      time.Time       `json:"start_sale" db:"start_sale"`
	EndSale        time.Time       `json:"end_sale" db:"end_sale"`
	UnitPrice      decimal.Decimal `json:"unit_price" db:"unit_price"`
	Capacity       int64           `json:"capacity" db:"capacity"`
	Sold           int64           `json:"sold" db:"sold"`
	MinQtyPerOrder int64           `json:"min_qty_per_order" db:"min_qty_per_order"`
	MaxQtyPerOrder int64           `json:"max_qty_per_order" db:"max_qty_per_order"`
	Status         TicketStatus    `json:"status" db:"status"`

	// Boş ise tüm yakınlık türleri kabul edilir.
	AcceptedRelationshipIDs []int64 `json:"accepted_relationship_ids,omitempty" db:"-"`
}

// Remaining, satılabilir kalan adettir.
func (t *Ticket) Remaining() int64 {
	if t.Sold >= t.Capacity {
		return 0
	}
	return t.Capacity - t.Sold
}

// TicketPatch, PENDING bir bilet türünde kısmi güncelleme için kullanılır.
type TicketPatch struct {
	Type                    *string          `json:"type"`
	StartSale               *time.Time       `json:"start_sale"`
	EndSale                 *time.Time       `json:"end_sale"`
	UnitPrice               *decimal.Decimal `json:"unit_price"`
	Capacity                *int64           `json:"capacity"`
	MinQtyPerOrder          *int64           `json:"min_qty_per_order"`
	MaxQtyPerOrder          *int64           `json:"max_qty_per_order"`
	AcceptedRelationshipIDs []int64          `json:"accepted_relationship_ids"`
}
