package models

// OrderTicket, bir siparişteki tek bir bilet kalemidir. Satın alma anında
// imzalı bir token alır ve kapıda bu token ile tek seferlik doğrulanır.
type OrderTicket struct {
	BaseModel
	OrderID        int64             `json:"order_id" db:"order_id"`
	TicketID       int64             `json:"ticket_id" db:"ticket_id"`
	RelationshipID int64             `json:"relationship_id" db:"relationship_id"`
	OwnerName      string            `json:"owner_name" db:"owner_name"`
	SubQuantity    int64             `json:"sub_quantity" db:"sub_quantity"`
	Status         OrderTicketStatus `json:"status" db:"status"`
	Token          *string           `json:"token,omitempty" db:"token"`

	Ticket *Ticket `json:"ticket,omitempty" db:"-"`
}

// LineItemRequest, sepete yeni bir kalem eklemek için gereken alanlardır.
type LineItemRequest struct {
	TicketID       int64  `json:"ticket_id"`
	RelationshipID int64  `json:"relationship_id"`
	OwnerName      string `json:"owner_name"`
	SubQuantity    int64  `json:"sub_quantity"`
}

// LineItemPatch, INACTIVE bir sepet kaleminde kısmi güncellemedir.
type LineItemPatch struct {
	RelationshipID *int64  `json:"relationship_id"`
	OwnerName      *string `json:"owner_name"`
	SubQuantity    *int64  `json:"sub_quantity"`
}
