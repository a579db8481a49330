// -----------------------------------------------------------------------------
// Mailer
// -----------------------------------------------------------------------------
// Driver'lar:
//   - smtp: mailyak üzerinden gerçek gönderim
//   - log:  mesajı loglar, geliştirme ortamı içindir
// -----------------------------------------------------------------------------

package mail

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Mailer, mesaj gönderen driver.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// LogMailer, mesajı göndermek yerine loglar.
type LogMailer struct {
	logger *log.Logger
	from   Address
}

func NewLogMailer(logger *log.Logger, fromEmail, fromName string) *LogMailer {
	return &LogMailer{logger: logger, from: Address{Email: fromEmail, Name: fromName}}
}

func (l *LogMailer) Send(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("geçersiz mesaj: %w", err)
	}

	from := msg.GetFrom()
	if from.Email == "" {
		from = l.from
	}

	recipients := make([]string, 0, len(msg.GetTo()))
	for _, to := range msg.GetTo() {
		recipients = append(recipients, to.String())
	}

	l.logger.Printf("📧 [mail:log] %s -> %s | %s (%d ek)",
		from, strings.Join(recipients, ", "), msg.GetSubject(), len(msg.GetAttachments()))
	return nil
}
