package services

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyonik/ticketbox-core/internal/models"
	"github.com/biyonik/ticketbox-core/pkg/credential"
	"github.com/biyonik/ticketbox-core/pkg/events"
)

func TestCredential_SingleUse(t *testing.T) {
	f := newFixture(t)
	item := f.purchasedItem()
	token := *item.Token

	scanned, err := f.creds.Verify(f.ctx, token)
	require.NoError(t, err)
	assert.Equal(t, item.ID, scanned.ID)
	assert.Equal(t, models.OrderTicketPending, scanned.Status)
	require.NotNil(t, scanned.Ticket)

	_, err = f.creds.Verify(f.ctx, token)
	require.ErrorIs(t, err, models.ErrAlreadyUsed)

	used, err := f.creds.Confirm(f.ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderTicketUsed, used.Status)

	_, err = f.creds.Confirm(f.ctx, item.ID)
	require.ErrorIs(t, err, models.ErrNotPending)

	_, err = f.creds.Verify(f.ctx, token)
	require.ErrorIs(t, err, models.ErrAlreadyUsed)

	assert.Equal(t, 1, f.pub.count(events.EventCredentialScanned))
	assert.Equal(t, 1, f.pub.count(events.EventCredentialConfirmed))
	assert.Equal(t, 2, f.pub.count(events.EventCredentialRejected))
}

func TestCredential_ConcurrentScan(t *testing.T) {
	f := newFixture(t)
	item := f.purchasedItem()
	token := *item.Token

	const gates = 8
	var (
		wg   sync.WaitGroup
		errs = make([]error, gates)
	)
	for i := 0; i < gates; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.creds.Verify(f.ctx, token)
		}(i)
	}
	wg.Wait()

	scanned, refused := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			scanned++
		case errors.Is(err, models.ErrAlreadyUsed):
			refused++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, scanned)
	assert.Equal(t, gates-1, refused)

	stored, err := f.store.OrderTickets().FindByID(f.ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderTicketPending, stored.Status)
	assert.Equal(t, 1, f.pub.count(events.EventCredentialScanned))
}

func TestCredential_ConfirmRequiresScan(t *testing.T) {
	f := newFixture(t)
	item := f.purchasedItem()

	_, err := f.creds.Confirm(f.ctx, item.ID)
	require.ErrorIs(t, err, models.ErrNotPending)

	_, err = f.creds.Confirm(f.ctx, 424242)
	require.ErrorIs(t, err, models.ErrOrderTicketNotFound)
}

func TestCredential_TamperedToken(t *testing.T) {
	f := newFixture(t)
	item := f.purchasedItem()
	token := *item.Token

	mid := len(token) / 2
	for token[mid] == '.' {
		mid++
	}
	replacement := byte('A')
	if token[mid] == 'A' {
		replacement = 'B'
	}
	tampered := token[:mid] + string(replacement) + token[mid+1:]

	_, err := f.creds.Verify(f.ctx, tampered)
	require.ErrorIs(t, err, models.ErrCredentialExpired)

	stored, err := f.store.OrderTickets().FindByID(f.ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderTicketActive, stored.Status)
}

func TestCredential_ForeignKey(t *testing.T) {
	f := newFixture(t)
	item := f.purchasedItem()

	other, err := credential.NewSigner("another-credential-secret-0123456789abcdef", "ticketbox-test")
	require.NoError(t, err)
	forged, err := other.Sign(item.ID, f.clock.Now(), t0.Add(eventEndOffset))
	require.NoError(t, err)

	_, err = f.creds.Verify(f.ctx, forged)
	require.ErrorIs(t, err, models.ErrCredentialExpired)
}

func TestCredential_TokenMismatch(t *testing.T) {
	f := newFixture(t)
	item := f.purchasedItem()

	// Aynı anahtarla imzalanmış ama kayıtlı olmayan bir kod.
	reissued, err := f.signer.Sign(item.ID, f.clock.Now(), t0.Add(eventEndOffset))
	require.NoError(t, err)
	require.NotEqual(t, *item.Token, reissued)

	_, err = f.creds.Verify(f.ctx, reissued)
	require.ErrorIs(t, err, models.ErrTokenMismatch)

	stored, err := f.store.OrderTickets().FindByID(f.ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderTicketActive, stored.Status)
}

func TestCredential_ExpiresWithEvent(t *testing.T) {
	f := newFixture(t)
	item := f.purchasedItem()

	// Bitiş anı hâlâ RUNNING sayılır; kapı da bileti kabul eder.
	f.clock.Set(t0.Add(eventEndOffset))
	_, err := f.creds.Verify(f.ctx, *item.Token)
	require.NoError(t, err)

	other := f.purchasedItem()
	f.clock.Set(t0.Add(eventEndOffset + time.Minute))
	_, err = f.creds.Verify(f.ctx, *other.Token)
	require.ErrorIs(t, err, models.ErrCredentialExpired)
}

func TestCredential_ClaimsBindPurchase(t *testing.T) {
	f := newFixture(t)
	item := f.purchasedItem()

	claims, err := f.signer.Parse(*item.Token, f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, item.ID, claims.OrderTicketID)
	assert.True(t, claims.IssuedAt.Time.Equal(t0.Add(onSaleOffset)))
	assert.True(t, claims.ExpiresAt.Time.Equal(t0.Add(eventEndOffset)))
}

func TestCredential_QRCodeOwnerOnly(t *testing.T) {
	f := newFixture(t)
	item := f.purchasedItem()
	order, err := f.store.Orders().FindByID(f.ctx, item.OrderID)
	require.NoError(t, err)

	png, err := f.creds.QRCode(f.ctx, order.BuyerID, item.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	stranger := f.register()
	_, err = f.creds.QRCode(f.ctx, stranger.ID, item.ID)
	require.ErrorIs(t, err, models.ErrNotOwner)
}
