package services

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/biyonik/ticketbox-core/internal/models"
	"github.com/biyonik/ticketbox-core/pkg/credential"
	"github.com/biyonik/ticketbox-core/pkg/events"
)

// CredentialService, satın alınan biletler için kapı kodu üretir ve
// kapıda tek seferlik doğrulama yapar.
//
// Kapı durumu: ACTIVE → PENDING (tarandı) → USED (onaylandı). PENDING
// durumu aynı kodun ikinci kez taranmasını engeller; görevli bilet
// sahibini kontrol ettikten sonra Confirm çağrılır.
type CredentialService struct {
	Deps
	signer  *credential.Signer
	encoder credential.QREncoder
}

func NewCredentialService(deps Deps, signer *credential.Signer, encoder credential.QREncoder) *CredentialService {
	return &CredentialService{
		Deps:    deps,
		signer:  signer,
		encoder: encoder,
	}
}

// Issue, satın alınmış siparişteki INACTIVE kalem için imzalı kodu üretir,
// kaleme yazar ve kalemi ACTIVE yapar. Kod order.purchaseDate anında
// verilir ve etkinliğin bitişinde geçersiz olur.
func (s *CredentialService) Issue(ctx context.Context, itemID int64) (string, error) {
	var token string

	err := s.Store.WithTx(ctx, func(ctx context.Context) error {
		item, err := s.Store.OrderTickets().FindByIDForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		order, err := s.Store.Orders().FindByID(ctx, item.OrderID)
		if err != nil {
			return err
		}
		if order.Status != models.OrderPurchased || order.PurchaseDate == nil {
			return models.ErrNotPurchased
		}
		ticket, err := s.Store.Tickets().FindByID(ctx, item.TicketID)
		if err != nil {
			return err
		}
		event, err := s.Store.Events().FindByID(ctx, ticket.EventID)
		if err != nil {
			return err
		}

		if token, err = s.signer.Sign(item.ID, *order.PurchaseDate, event.EndDate); err != nil {
			return err
		}
		if err := s.Store.OrderTickets().Activate(ctx, item.ID, token, s.Clock.Now()); err != nil {
			return conflictAs(err, models.ErrOnlyInactiveEditable)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("bilet kodu üretilemedi (kalem %d): %w", itemID, err)
	}
	return token, nil
}

// Verify, kapıda taranan kodu doğrular ve kalemi ACTIVE → PENDING yapar:
//
//  1. İmza veya süre geçersizse ErrCredentialExpired.
//  2. Kalem yoksa ErrOrderTicketNotFound.
//  3. Kod kayıtlı kod ile aynı değilse ErrTokenMismatch.
//  4. Kalem ACTIVE değilse ErrAlreadyUsed.
//  5. Koşullu geçiş; eşzamanlı ikinci tarama ErrAlreadyUsed alır.
func (s *CredentialService) Verify(ctx context.Context, token string) (*models.OrderTicket, error) {
	claims, err := s.signer.Parse(token, s.Clock.Now())
	if err != nil {
		s.Logger.Printf("⚠️  Bilet kodu çözülemedi: %v", err)
		s.reject(0, models.ErrCredentialExpired)
		return nil, fmt.Errorf("bilet kodu doğrulanamadı: %w", models.ErrCredentialExpired)
	}

	var item *models.OrderTicket
	err = s.Store.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if item, err = s.Store.OrderTickets().FindByIDForUpdate(ctx, claims.OrderTicketID); err != nil {
			return err
		}
		if item.Token == nil || subtle.ConstantTimeCompare([]byte(*item.Token), []byte(token)) != 1 {
			return models.ErrTokenMismatch
		}
		if item.Status != models.OrderTicketActive {
			return models.ErrAlreadyUsed
		}

		now := s.Clock.Now()
		if err := s.Store.OrderTickets().TransitionStatus(ctx, item.ID, models.OrderTicketActive, models.OrderTicketPending, now); err != nil {
			return conflictAs(err, models.ErrAlreadyUsed)
		}
		item.Status = models.OrderTicketPending
		item.Touch(now)

		item.Ticket, err = s.Store.Tickets().FindByID(ctx, item.TicketID)
		return err
	})
	if err != nil {
		if appErr, ok := models.AsAppError(err); ok && appErr.Kind != models.KindNotFound {
			s.reject(claims.OrderTicketID, appErr)
		}
		return nil, fmt.Errorf("bilet kodu doğrulanamadı (kalem %d): %w", claims.OrderTicketID, err)
	}

	s.Logger.Printf("🔄 Bilet taranıyor: kalem %d (%s)", item.ID, item.OwnerName)
	s.publish(events.EventCredentialScanned, CredentialChecked{OrderTicketID: item.ID})
	return item, nil
}

// Confirm, taranmış kalemi PENDING → USED yapar. USED son durumdur.
func (s *CredentialService) Confirm(ctx context.Context, itemID int64) (*models.OrderTicket, error) {
	var item *models.OrderTicket

	err := s.Store.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if item, err = s.Store.OrderTickets().FindByIDForUpdate(ctx, itemID); err != nil {
			return err
		}

		now := s.Clock.Now()
		if err := s.Store.OrderTickets().TransitionStatus(ctx, itemID, models.OrderTicketPending, models.OrderTicketUsed, now); err != nil {
			return conflictAs(err, models.ErrNotPending)
		}
		item.Status = models.OrderTicketUsed
		item.Touch(now)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bilet onaylanamadı (kalem %d): %w", itemID, err)
	}

	s.Logger.Printf("✅ Bilet kullanıldı: kalem %d", itemID)
	s.publish(events.EventCredentialConfirmed, CredentialChecked{OrderTicketID: itemID})
	return item, nil
}

// QRCode, alıcıya ait aktif kalemin kodunu PNG olarak döndürür.
func (s *CredentialService) QRCode(ctx context.Context, buyerID, itemID int64) ([]byte, error) {
	item, err := s.Store.OrderTickets().FindByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("kalem %d: %w", itemID, err)
	}
	order, err := s.Store.Orders().FindByID(ctx, item.OrderID)
	if err != nil {
		return nil, fmt.Errorf("kalem %d: %w", itemID, err)
	}
	if order.BuyerID != buyerID {
		return nil, fmt.Errorf("kalem %d: %w", itemID, models.ErrNotOwner)
	}
	if item.Token == nil {
		return nil, fmt.Errorf("kalem %d: %w", itemID, models.ErrNotPurchased)
	}

	png, err := s.encoder.Encode(*item.Token)
	if err != nil {
		return nil, fmt.Errorf("kalem %d QR üretilemedi: %w", itemID, err)
	}
	return png, nil
}

// reject, sahtecilik takibi için başarısız taramayı loglar ve yayınlar.
func (s *CredentialService) reject(itemID int64, reason *models.AppError) {
	s.Logger.Printf("⚠️  Reddedilen tarama: kalem %d, sebep %s", itemID, reason.Code)
	s.publish(events.EventCredentialRejected, CredentialChecked{OrderTicketID: itemID, Reason: reason.Code})
}
