// -----------------------------------------------------------------------------
// Mail Message
// -----------------------------------------------------------------------------
// Fluent builder ile oluşturulan e-posta mesajı.
//
//	msg := mail.NewMessage().
//	    To("buyer@example.com", "Ayşe Yılmaz").
//	    Subject("Biletleriniz hazır").
//	    Text("...").
//	    Attach("bilet-12.png", "image/png", png)
// -----------------------------------------------------------------------------

package mail

import (
	"errors"
	"fmt"
)

// Address, e-posta adresi ve opsiyonel görünen isim.
type Address struct {
	Email string
	Name  string
}

func (a Address) String() string {
	if a.Name != "" {
		return fmt.Sprintf("%s <%s>", a.Name, a.Email)
	}
	return a.Email
}

// Attachment, bellekteki ek dosya (QR PNG gibi).
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

type Message struct {
	from        Address
	to          []Address
	subject     string
	text        string
	html        string
	attachments []Attachment
}

func NewMessage() *Message {
	return &Message{}
}

// From boş bırakılırsa mailer'ın varsayılan göndericisi kullanılır.
func (m *Message) From(email, name string) *Message {
	m.from = Address{Email: email, Name: name}
	return m
}

func (m *Message) To(email, name string) *Message {
	m.to = append(m.to, Address{Email: email, Name: name})
	return m
}

func (m *Message) Subject(subject string) *Message {
	m.subject = subject
	return m
}

// Text, düz metin gövde.
func (m *Message) Text(body string) *Message {
	m.text = body
	return m
}

// HTML, HTML gövde.
func (m *Message) HTML(body string) *Message {
	m.html = body
	return m
}

func (m *Message) Attach(name, contentType string, data []byte) *Message {
	m.attachments = append(m.attachments, Attachment{Name: name, ContentType: contentType, Data: data})
	return m
}

// Validate, gönderimden önce zorunlu alanları kontrol eder.
func (m *Message) Validate() error {
	if len(m.to) == 0 {
		return errors.New("en az bir alıcı gerekli")
	}
	if m.subject == "" {
		return errors.New("konu gerekli")
	}
	if m.text == "" && m.html == "" {
		return errors.New("metin veya HTML gövde gerekli")
	}
	return nil
}

func (m *Message) GetFrom() Address            { return m.from }
func (m *Message) GetTo() []Address            { return m.to }
func (m *Message) GetSubject() string          { return m.subject }
func (m *Message) GetText() string             { return m.text }
func (m *Message) GetHTML() string             { return m.html }
func (m *Message) GetAttachments() []Attachment { return m.attachments }
