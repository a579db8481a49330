package notifications

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyonik/ticketbox-core/internal/models"
	"github.com/biyonik/ticketbox-core/internal/services"
	"github.com/biyonik/ticketbox-core/pkg/events"
	"github.com/biyonik/ticketbox-core/pkg/mail"
	"github.com/biyonik/ticketbox-core/pkg/queue"
)

var quiet = log.New(io.Discard, "", 0)

type fakeUsers map[int64]*models.User

func (f fakeUsers) GetUser(_ context.Context, id int64) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, models.ErrUserNotFound
}

type fakeOrders map[int64]*models.Order

func (f fakeOrders) OrderDetail(_ context.Context, buyerID, orderID int64) (*models.Order, error) {
	o, ok := f[orderID]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	if o.BuyerID != buyerID {
		return nil, models.ErrNotOwner
	}
	return o, nil
}

type fakeQR struct{ err error }

func (f fakeQR) QRCode(_ context.Context, _, itemID int64) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte{0x89, 'P', 'N', 'G', byte(itemID)}, nil
}

type recordingMailer struct{ sent []*mail.Message }

func (r *recordingMailer) Send(_ context.Context, msg *mail.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func buyer() *models.User {
	u := &models.User{Username: "ayse", Email: "ayse@example.com", FullName: "Ayşe Yılmaz"}
	u.ID = 7
	return u
}

func purchasedOrder() *models.Order {
	o := &models.Order{
		BuyerID:    7,
		Status:     models.OrderPurchased,
		TotalPrice: decimal.RequireFromString("350"),
		Quantity:   3,
	}
	o.ID = 12
	first := &models.OrderTicket{TicketID: 1, OwnerName: "Ayşe Yılmaz", SubQuantity: 2, Ticket: &models.Ticket{Type: "VIP"}}
	first.ID = 101
	second := &models.OrderTicket{TicketID: 2, OwnerName: "Ali Yılmaz", SubQuantity: 1}
	second.ID = 102
	o.OrderTickets = []*models.OrderTicket{first, second}
	return o
}

func TestNotifier_EnqueuesJobs(t *testing.T) {
	q := queue.NewMemoryQueue(quiet)
	n := NewNotifier(q, "notifications", 5, quiet)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, n.Handle(events.NewBaseEvent(events.EventOrderPurchased, now,
		services.OrderPurchased{OrderID: 12, BuyerID: 7, Quantity: 3})))
	require.NoError(t, n.Handle(events.NewBaseEvent(events.EventUserRegistered, now,
		services.UserRegistered{UserID: 7, Email: "ayse@example.com"})))
	require.NoError(t, n.Handle(events.NewBaseEvent(events.EventCartItemAdded, now,
		services.CartChanged{BuyerID: 7})))

	size, err := q.Size(ctx, "notifications")
	require.NoError(t, err)
	assert.Equal(t, int64(2), size)

	job, err := q.Pop(ctx, "notifications")
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, JobPurchaseReceipt, job.Type)
	assert.Equal(t, 5, job.MaxAttempts)

	var p receiptPayload
	require.NoError(t, job.Decode(&p))
	assert.Equal(t, receiptPayload{OrderID: 12, BuyerID: 7}, p)

	job, err = q.Pop(ctx, "notifications")
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, JobWelcome, job.Type)
}

func TestHandlers_SendReceipt(t *testing.T) {
	mailer := &recordingMailer{}
	h := NewHandlers(fakeUsers{7: buyer()}, fakeOrders{12: purchasedOrder()}, fakeQR{}, mailer, "TicketBox", quiet)

	job, err := queue.NewJob(JobPurchaseReceipt, receiptPayload{OrderID: 12, BuyerID: 7}, 0)
	require.NoError(t, err)
	require.NoError(t, h.SendReceipt(context.Background(), job))

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, "TicketBox - Sipariş #12", msg.GetSubject())
	assert.Equal(t, "ayse@example.com", msg.GetTo()[0].Email)
	assert.Contains(t, msg.GetText(), "VIP x2 (Ayşe Yılmaz)")
	assert.Contains(t, msg.GetText(), "bilet 2 x1 (Ali Yılmaz)")
	assert.Contains(t, msg.GetText(), "Toplam: 350.00 (3 adet)")

	attachments := msg.GetAttachments()
	require.Len(t, attachments, 2)
	assert.Equal(t, "bilet-101.png", attachments[0].Name)
	assert.Equal(t, "image/png", attachments[1].ContentType)
}

func TestHandlers_SendReceiptFailures(t *testing.T) {
	mailer := &recordingMailer{}
	ctx := context.Background()

	t.Run("başka alıcının siparişi", func(t *testing.T) {
		h := NewHandlers(fakeUsers{8: buyer()}, fakeOrders{12: purchasedOrder()}, fakeQR{}, mailer, "TicketBox", quiet)
		job, _ := queue.NewJob(JobPurchaseReceipt, receiptPayload{OrderID: 12, BuyerID: 8}, 0)
		assert.ErrorIs(t, h.SendReceipt(ctx, job), models.ErrNotOwner)
	})

	t.Run("QR üretilemedi", func(t *testing.T) {
		qrErr := errors.New("encoder kapalı")
		h := NewHandlers(fakeUsers{7: buyer()}, fakeOrders{12: purchasedOrder()}, fakeQR{err: qrErr}, mailer, "TicketBox", quiet)
		job, _ := queue.NewJob(JobPurchaseReceipt, receiptPayload{OrderID: 12, BuyerID: 7}, 0)
		assert.ErrorIs(t, h.SendReceipt(ctx, job), qrErr)
	})

	assert.Empty(t, mailer.sent)
}

func TestHandlers_WorkerDeliversWelcome(t *testing.T) {
	q := queue.NewMemoryQueue(quiet)
	mailer := &recordingMailer{}
	h := NewHandlers(fakeUsers{7: buyer()}, fakeOrders{}, fakeQR{}, mailer, "TicketBox", quiet)

	worker := queue.NewWorker(q, quiet)
	h.Register(worker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n := NewNotifier(q, "notifications", 3, quiet)
	require.NoError(t, n.Handle(events.NewBaseEvent(events.EventUserRegistered, time.Now(), services.UserRegistered{UserID: 7})))

	done := make(chan struct{})
	go func() {
		worker.Run(ctx, "notifications")
		close(done)
	}()

	require.Eventually(t, func() bool {
		size, _ := q.Size(ctx, "notifications")
		return size == 0
	}, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-done

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "TicketBox hesabınız hazır", mailer.sent[0].GetSubject())
	assert.Contains(t, mailer.sent[0].GetText(), "Kullanıcı adınız: ayse")
}
