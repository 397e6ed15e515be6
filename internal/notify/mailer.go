package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"app/internal/domain/model"

	"github.com/wneessen/go-mail"
)

type MailerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTP経由で顧客にメールを送るNotifier
type Mailer struct {
	client *mail.Client
	from   string
}

func NewMailer(cfg MailerConfig) (*Mailer, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTimeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("mailer: %w", err)
	}
	return &Mailer{client: client, from: cfg.From}, nil
}

func (m *Mailer) send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("mailer: from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("mailer: to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mailer: send: %w", err)
	}
	return nil
}

func itemLines(order model.Order) string {
	var b strings.Builder
	for _, it := range order.Items {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		fmt.Fprintf(&b, "- %s x%d ($%d)\n", it.Name, qty, it.UnitPrice*qty)
	}
	fmt.Fprintf(&b, "Total: $%d\n", order.Total)
	return b.String()
}

func (m *Mailer) OrderPaid(ctx context.Context, order model.Order) error {
	if order.Email == "" {
		return nil
	}
	body := fmt.Sprintf("Hola %s,\n\nRecibimos tu pago del pedido #%d.\n\n%s\nTe avisaremos cuando este listo para retirar.\n",
		order.CustomerName, order.ID, itemLines(order))
	return m.send(ctx, order.Email, fmt.Sprintf("Pedido #%d confirmado", order.ID), body)
}

func (m *Mailer) OrderReady(ctx context.Context, order model.Order) error {
	if order.Email == "" {
		return nil
	}
	body := fmt.Sprintf("Hola %s,\n\nTu pedido #%d esta listo para retirar en caja.\n",
		order.CustomerName, order.ID)
	return m.send(ctx, order.Email, fmt.Sprintf("Pedido #%d listo para retirar", order.ID), body)
}
