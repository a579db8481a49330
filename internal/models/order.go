// -----------------------------------------------------------------------------
// Order Model
// -----------------------------------------------------------------------------
// Sipariş. NOT_PURCHASED durumundaki sipariş kullanıcının sepetidir; her
// kullanıcının kayıt anında açılan tam olarak bir sepeti vardır.
// -----------------------------------------------------------------------------

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order, bir alıcının siparişini (veya sepetini) temsil eder
type Order struct {
	BaseModel
	BuyerID      int64           `json:"buyer_id" db:"buyer_id"`
	Status       OrderStatus     `json:"status" db:"status"`
	TotalPrice   decimal.Decimal `json:"total_price" db:"total_price"`
	Quantity     int64           `json:"quantity" db:"quantity"`
	PurchaseDate *time.Time      `json:"purchase_date,omitempty" db:"purchase_date"`

	OrderTickets []*OrderTicket `json:"order_tickets,omitempty" db:"-"`
}

// IsCart, siparişin hâlâ sepet olup olmadığını döndürür.
func (o *Order) IsCart() bool {
	return o.Status == OrderNotPurchased
}
