// Package policy, Event ve Ticket durumlarını saat, satış penceresi ve
// kapasiteden hesaplayan saf fonksiyonları içerir. Hiçbir fonksiyon
// saat okumaz; "now" her zaman parametre olarak gelir.
package policy

import (
	"time"

	"github.com/biyonik/ticketbox-core/internal/models"
)

// DeriveEventStatus, onaylanmış bir etkinliğin zamana bağlı durumunu döndürür.
// now == start başlamış, now == end henüz bitmemiş sayılır.
func DeriveEventStatus(now, start, end time.Time) models.EventStatus {
	switch {
	case now.Before(start):
		return models.EventUpcoming
	case now.After(end):
		return models.EventEnded
	default:
		return models.EventRunning
	}
}

// DeriveTicketStatus, onaylanmış bir bilet türünün durumunu döndürür.
// sold > capacity hiçbir zaman normal bir durum değildir ve
// ErrCapacityCorrupted ile raporlanır.
func DeriveTicketStatus(now, startSale, endSale time.Time, sold, capacity int64) (models.TicketStatus, error) {
	if sold < 0 || sold > capacity {
		return 0, models.ErrCapacityCorrupted
	}

	switch {
	case now.Before(startSale):
		return models.TicketUpcoming, nil
	case now.After(endSale):
		return models.TicketEnded, nil
	case sold == capacity:
		return models.TicketSoldOut, nil
	default:
		return models.TicketRemaining, nil
	}
}

// ValidateSaleWindow, satış penceresinin etkinlik penceresi içinde kalıp
// kalmadığını kontrol eder. Tüm karşılaştırmalar kesindir; eşit sınırlar
// geçersizdir.
func ValidateSaleWindow(startSale, endSale, eventStart, eventEnd time.Time) bool {
	return startSale.Before(endSale) &&
		startSale.After(eventStart) &&
		endSale.Before(eventEnd)
}

// ValidateEventWindow, etkinliğin başlangıcının bitişinden önce olmasını ister.
func ValidateEventWindow(start, end time.Time) bool {
	return !start.IsZero() && start.Before(end)
}

// RefreshEvent, onaylanmış bir etkinliğin saklanan durumunu now'a göre
// yeniden hesaplar. Onay dışı durumlar (PENDING, DECLINED, CANCELED) olduğu
// gibi bırakılır.
func RefreshEvent(now time.Time, e *models.Event) {
	if e.Status.IsApproved() {
		e.Status = DeriveEventStatus(now, e.StartDate, e.EndDate)
	}
}

// RefreshTicket, RefreshEvent'in bilet karşılığıdır.
func RefreshTicket(now time.Time, t *models.Ticket) error {
	if !t.Status.IsApproved() {
		return nil
	}
	status, err := DeriveTicketStatus(now, t.StartSale, t.EndSale, t.Sold, t.Capacity)
	if err != nil {
		return err
	}
	t.Status = status
	return nil
}
