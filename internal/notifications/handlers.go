package notifications

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/biyonik/ticketbox-core/internal/models"
	"github.com/biyonik/ticketbox-core/pkg/mail"
	"github.com/biyonik/ticketbox-core/pkg/queue"
)

// Users, bildirim alıcısını okur. *services.UserService sağlar.
type Users interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// Orders, makbuz için sipariş detayını okur. *services.CartService sağlar.
type Orders interface {
	OrderDetail(ctx context.Context, buyerID, orderID int64) (*models.Order, error)
}

// QRCodes, kalemin QR PNG'sini üretir. *services.CredentialService sağlar.
type QRCodes interface {
	QRCode(ctx context.Context, buyerID, itemID int64) ([]byte, error)
}

// Handlers, bildirim job'larını gönderir.
type Handlers struct {
	users   Users
	orders  Orders
	qr      QRCodes
	mailer  mail.Mailer
	appName string
	logger  *log.Logger
}

func NewHandlers(users Users, orders Orders, qr QRCodes, mailer mail.Mailer, appName string, logger *log.Logger) *Handlers {
	return &Handlers{users: users, orders: orders, qr: qr, mailer: mailer, appName: appName, logger: logger}
}

// Register, handler'ları worker'a kaydeder.
func (h *Handlers) Register(w *queue.Worker) {
	w.Handle(JobPurchaseReceipt, h.SendReceipt)
	w.Handle(JobWelcome, h.SendWelcome)
}

// SendReceipt, satın alınan siparişin makbuzunu her kalemin QR kodu ekli
// olarak gönderir.
func (h *Handlers) SendReceipt(ctx context.Context, job *queue.Job) error {
	var p receiptPayload
	if err := job.Decode(&p); err != nil {
		return err
	}

	// 1. Alıcı ve sipariş
	buyer, err := h.users.GetUser(ctx, p.BuyerID)
	if err != nil {
		return fmt.Errorf("makbuz alıcısı okunamadı: %w", err)
	}
	order, err := h.orders.OrderDetail(ctx, p.BuyerID, p.OrderID)
	if err != nil {
		return fmt.Errorf("makbuz siparişi okunamadı: %w", err)
	}

	// 2. Gövde
	var body strings.Builder
	fmt.Fprintf(&body, "Merhaba %s,\n\n", buyer.FullName)
	fmt.Fprintf(&body, "%d numaralı siparişiniz onaylandı.\n\n", order.ID)
	for _, item := range order.OrderTickets {
		ticketType := fmt.Sprintf("bilet %d", item.TicketID)
		if item.Ticket != nil {
			ticketType = item.Ticket.Type
		}
		fmt.Fprintf(&body, "- %s x%d (%s)\n", ticketType, item.SubQuantity, item.OwnerName)
	}
	fmt.Fprintf(&body, "\nToplam: %s (%d adet)\n", order.TotalPrice.StringFixed(2), order.Quantity)
	body.WriteString("\nKapıda ekteki QR kodlarını gösteriniz.\n")

	msg := mail.NewMessage().
		To(buyer.Email, buyer.FullName).
		Subject(fmt.Sprintf("%s - Sipariş #%d", h.appName, order.ID)).
		Text(body.String())

	// 3. QR ekleri
	for _, item := range order.OrderTickets {
		png, err := h.qr.QRCode(ctx, p.BuyerID, item.ID)
		if err != nil {
			return fmt.Errorf("kalem %d QR eklenemedi: %w", item.ID, err)
		}
		msg.Attach(fmt.Sprintf("bilet-%d.png", item.ID), "image/png", png)
	}

	if err := h.mailer.Send(ctx, msg); err != nil {
		return err
	}
	h.logger.Printf("✅ Makbuz gönderildi: sipariş %d -> %s", order.ID, buyer.Email)
	return nil
}

func (h *Handlers) SendWelcome(ctx context.Context, job *queue.Job) error {
	var p welcomePayload
	if err := job.Decode(&p); err != nil {
		return err
	}

	user, err := h.users.GetUser(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("hoş geldin alıcısı okunamadı: %w", err)
	}

	msg := mail.NewMessage().
		To(user.Email, user.FullName).
		Subject(fmt.Sprintf("%s hesabınız hazır", h.appName)).
		Text(fmt.Sprintf("Merhaba %s,\n\n%s hesabınız oluşturuldu. Kullanıcı adınız: %s\n", user.FullName, h.appName, user.Username))

	return h.mailer.Send(ctx, msg)
}
