package notifier

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridNotifier sends alert emails through the SendGrid v3 API.
type SendGridNotifier struct {
	client *sendgrid.Client
	from   *mail.Email
}

func NewSendGridNotifier(apiKey, fromName, fromEmail string) *SendGridNotifier {
	return &SendGridNotifier{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromEmail),
	}
}

func (n *SendGridNotifier) SendPriceAlert(ctx context.Context, alert PriceAlert) error {
	m := mail.NewV3Mail()
	m.SetFrom(n.from)
	m.Subject = Subject(alert)

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail(alert.Name, alert.Email))
	m.AddPersonalizations(p)
	m.AddContent(mail.NewContent("text/html", RenderPriceAlert(alert)))

	resp, err := n.client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid send to %s: %w", alert.Email, err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d sending to %s: %s", resp.StatusCode, alert.Email, resp.Body)
	}
	return nil
}
