// -----------------------------------------------------------------------------
// Notifications
// -----------------------------------------------------------------------------
// Yaşam döngüsü olaylarını e-posta job'larına çevirir.
//
//	order.purchased  -> mail.purchase_receipt (QR ekli makbuz)
//	user.registered  -> mail.welcome
//
// Notifier bir events.Listener'dır ve yalnızca kuyruğa yazar; gönderimi
// queue.Worker üzerinde çalışan Handlers yapar. Böylece SMTP hatası satın
// alma isteğini yavaşlatmaz ve worker tarafından tekrar denenir.
// -----------------------------------------------------------------------------

package notifications

import (
	"context"
	"fmt"
	"log"

	"github.com/biyonik/ticketbox-core/internal/services"
	"github.com/biyonik/ticketbox-core/pkg/events"
	"github.com/biyonik/ticketbox-core/pkg/queue"
)

const (
	JobPurchaseReceipt = "mail.purchase_receipt"
	JobWelcome         = "mail.welcome"
)

type receiptPayload struct {
	OrderID int64 `json:"order_id"`
	BuyerID int64 `json:"buyer_id"`
}

type welcomePayload struct {
	UserID int64 `json:"user_id"`
}

// Notifier, olayları bildirim job'ı olarak kuyruğa koyar.
type Notifier struct {
	queue       queue.Queue
	queueName   string
	maxAttempts int
	logger      *log.Logger
}

func NewNotifier(q queue.Queue, queueName string, maxAttempts int, logger *log.Logger) *Notifier {
	return &Notifier{queue: q, queueName: queueName, maxAttempts: maxAttempts, logger: logger}
}

// Events, Notifier'ın dinlediği olay isimleri.
func (n *Notifier) Events() []string {
	return []string{events.EventOrderPurchased, events.EventUserRegistered}
}

// Handle, events.Listener implementasyonu.
func (n *Notifier) Handle(event events.Event) error {
	var (
		jobType string
		payload any
	)

	switch p := event.Payload().(type) {
	case services.OrderPurchased:
		jobType, payload = JobPurchaseReceipt, receiptPayload{OrderID: p.OrderID, BuyerID: p.BuyerID}
	case services.UserRegistered:
		jobType, payload = JobWelcome, welcomePayload{UserID: p.UserID}
	default:
		return nil
	}

	job, err := queue.NewJob(jobType, payload, n.maxAttempts)
	if err != nil {
		return err
	}
	// Olaylar commit sonrası asenkron dağıtılır; istek context'i yoktur.
	if err := n.queue.Push(context.Background(), n.queueName, job); err != nil {
		n.logger.Printf("❌ Bildirim kuyruğa konamadı (%s): %v", event.Name(), err)
		return fmt.Errorf("bildirim kuyruğa konamadı: %w", err)
	}

	n.logger.Printf("🔄 Bildirim kuyruğa kondu: %s (job: %s)", jobType, job.ID)
	return nil
}
