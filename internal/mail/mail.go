// mail — исходящая почта сервиса (письма подтверждения e-mail).
// Отправка трактуется как fire-and-forget: ошибка логируется вызывающим,
// но не валит бизнес-операцию.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// Message — минимальное письмо: адресат, тема, HTML-тело.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer — контракт отправки писем.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer отправляет письма через внешний SMTP-релей (PLAIN auth).
// Пакет net/smtp из стандартной библиотеки: отдельная почтовая зависимость
// здесь не нужна.
type SMTPMailer struct {
	addr string
	host string
	user string
	pass string
	from string
}

// NewSMTP создаёт отправителя. addr — host:port релея.
func NewSMTP(addr, host, user, pass, from string) *SMTPMailer {
	return &SMTPMailer{addr: addr, host: host, user: user, pass: pass, from: from}
}

// Send отправляет письмо. Контекст проверяется до сетевого вызова:
// net/smtp не принимает context, поэтому отмена после начала передачи
// не прерывает сессию.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	const op = "mail.SMTPMailer.Send"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}

	if err := smtp.SendMail(m.addr, auth, m.from, []string{msg.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// NoopMailer — заглушка для local/dev окружений без SMTP.
type NoopMailer struct{}

func (NoopMailer) Send(context.Context, Message) error { return nil }

var (
	_ Mailer = (*SMTPMailer)(nil)
	_ Mailer = NoopMailer{}
)
