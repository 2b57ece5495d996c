// Package mailer sends transactional email over SMTP with simple token
// based template substitution.
package mailer

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/sony/gobreaker/v2"
	"github.com/wneessen/go-mail"

	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/user"
)

// Config holds SMTP connection and sender identity.
type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	StoreName string
}

// Mailer delivers templated mail. SMTP calls go through a circuit breaker so
// a dead relay fails fast instead of stalling checkout.
type Mailer struct {
	client  *mail.Client
	breaker *gobreaker.CircuitBreaker[struct{}]
	from    string
	store   string
}

var (
	_ order.ConfirmationSender = (*Mailer)(nil)
	_ user.OnboardingSender    = (*Mailer)(nil)
)

func New(cfg Config) (*Mailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "smtp client")
	}

	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:    "smtp",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	return &Mailer{
		client:  client,
		breaker: breaker,
		from:    cfg.From,
		store:   cfg.StoreName,
	}, nil
}

// SendOrderConfirmation mails the customer after an order is placed.
func (m *Mailer) SendOrderConfirmation(ctx context.Context, to, name, orderNumber, grandTotal string) error {
	data := map[string]string{
		"name":        name,
		"orderNumber": orderNumber,
		"grandTotal":  grandTotal,
		"storeName":   m.store,
	}
	return m.send(ctx, to, Render(orderConfirmationSubject, data), Render(orderConfirmationBody, data))
}

// SendWelcome mails a freshly created account.
func (m *Mailer) SendWelcome(ctx context.Context, to, name string) error {
	data := map[string]string{"name": name, "storeName": m.store}
	return m.send(ctx, to, Render(welcomeSubject, data), Render(welcomeBody, data))
}

// SendVerification mails an email verification code.
func (m *Mailer) SendVerification(ctx context.Context, to, name, code string) error {
	data := map[string]string{"name": name, "code": code, "storeName": m.store}
	return m.send(ctx, to, Render(verificationSubject, data), Render(verificationBody, data))
}

func (m *Mailer) send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return errors.Wrap(err, "from address")
	}
	if err := msg.To(to); err != nil {
		return errors.Wrap(err, "to address")
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	_, err := m.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, m.client.DialAndSendWithContext(ctx, msg)
	})
	if err != nil {
		return errors.Wrap(err, "send mail")
	}
	return nil
}
