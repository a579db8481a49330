// -----------------------------------------------------------------------------
// Status Types
// -----------------------------------------------------------------------------
// Event, Ticket, Order ve OrderTicket durumları veritabanında tamsayı olarak
// saklanır. Değerler mevcut kayıtlarla uyumlu kalmak için sabittir; yeniden
// numaralandırılmamalıdır.
// -----------------------------------------------------------------------------

package models

import (
	"fmt"
	"strconv"
	"strings"
)

// EventStatus, etkinlik durumunu temsil eder.
type EventStatus int

const (
	EventDeclined EventStatus = -1
	EventCanceled EventStatus = 0
	EventPending  EventStatus = 1
	EventUpcoming EventStatus = 2
	EventRunning  EventStatus = 3
	EventEnded    EventStatus = 4
)

var eventStatusNames = map[EventStatus]string{
	EventDeclined: "DECLINED",
	EventCanceled: "CANCELED",
	EventPending:  "PENDING",
	EventUpcoming: "UPCOMING",
	EventRunning:  "RUNNING",
	EventEnded:    "ENDED",
}

func (s EventStatus) String() string {
	if name, ok := eventStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("EventStatus(%d)", int(s))
}

// IsApproved, onay sonrası (zamana bağlı) durumlardan biri mi?
func (s EventStatus) IsApproved() bool {
	return s >= EventUpcoming
}

// ParseEventStatus, "PENDING" gibi bir isimden ya da "1" gibi bir sayıdan
// durum üretir.
func ParseEventStatus(raw string) (EventStatus, error) {
	v, err := parseStatus(raw, toNameMap(eventStatusNames))
	return EventStatus(v), err
}

// TicketStatus, bilet türü durumunu temsil eder.
type TicketStatus int

const (
	TicketDeclined  TicketStatus = -1
	TicketCanceled  TicketStatus = 0
	TicketPending   TicketStatus = 1
	TicketUpcoming  TicketStatus = 2
	TicketRemaining TicketStatus = 3
	TicketSoldOut   TicketStatus = 4
	TicketEnded     TicketStatus = 5
)

var ticketStatusNames = map[TicketStatus]string{
	TicketDeclined:  "DECLINED",
	TicketCanceled:  "CANCELED",
	TicketPending:   "PENDING",
	TicketUpcoming:  "UPCOMING",
	TicketRemaining: "REMAINING",
	TicketSoldOut:   "SOLD_OUT",
	TicketEnded:     "ENDED",
}

func (s TicketStatus) String() string {
	if name, ok := ticketStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("TicketStatus(%d)", int(s))
}

func (s TicketStatus) IsApproved() bool {
	return s >= TicketUpcoming
}

func ParseTicketStatus(raw string) (TicketStatus, error) {
	v, err := parseStatus(raw, toNameMap(ticketStatusNames))
	return TicketStatus(v), err
}

// OrderStatus, sipariş durumunu temsil eder. NOT_PURCHASED sipariş sepettir.
type OrderStatus int

const (
	OrderDeclined     OrderStatus = -1
	OrderNotPurchased OrderStatus = 0
	OrderPending      OrderStatus = 1
	OrderPurchased    OrderStatus = 2
)

var orderStatusNames = map[OrderStatus]string{
	OrderDeclined:     "DECLINED",
	OrderNotPurchased: "NOT_PURCHASED",
	OrderPending:      "PENDING",
	OrderPurchased:    "PURCHASED",
}

func (s OrderStatus) String() string {
	if name, ok := orderStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("OrderStatus(%d)", int(s))
}

// OrderTicketStatus, satın alınmış tek bir bilet kaleminin kapı durumudur.
type OrderTicketStatus int

const (
	OrderTicketInactive OrderTicketStatus = 0
	OrderTicketActive   OrderTicketStatus = 1
	OrderTicketPending  OrderTicketStatus = 2
	OrderTicketUsed     OrderTicketStatus = 3
)

var orderTicketStatusNames = map[OrderTicketStatus]string{
	OrderTicketInactive: "INACTIVE",
	OrderTicketActive:   "ACTIVE",
	OrderTicketPending:  "PENDING",
	OrderTicketUsed:     "USED",
}

func (s OrderTicketStatus) String() string {
	if name, ok := orderTicketStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("OrderTicketStatus(%d)", int(s))
}

func toNameMap[T ~int](names map[T]string) map[string]int {
	out := make(map[string]int, len(names))
	for v, name := range names {
		out[name] = int(v)
	}
	return out
}

func parseStatus(raw string, byName map[string]int) (int, error) {
	raw = strings.TrimSpace(raw)
	if v, ok := byName[strings.ToUpper(raw)]; ok {
		return v, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("bilinmeyen durum: %q", raw)
	}
	for _, v := range byName {
		if v == n {
			return n, nil
		}
	}
	return 0, fmt.Errorf("bilinmeyen durum: %q", raw)
}
