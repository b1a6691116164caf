package notify

import (
	"context"
	"fmt"

	"cityvoice/backend/internal/localization"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailNotifier mails citizens through SendGrid.
type EmailNotifier struct {
	fromName  string
	fromEmail string
	loc       *localization.Localizer
	send      func(*mail.SGMailV3) error
}

func NewEmailNotifier(apiKey, fromName, fromEmail string, loc *localization.Localizer) *EmailNotifier {
	client := sendgrid.NewSendClient(apiKey)
	return &EmailNotifier{
		fromName:  fromName,
		fromEmail: fromEmail,
		loc:       loc,
		send: func(m *mail.SGMailV3) error {
			response, err := client.Send(m)
			if err != nil {
				return err
			}
			if response.StatusCode >= 300 {
				return fmt.Errorf("sendgrid responded %d: %s", response.StatusCode, response.Body)
			}
			return nil
		},
	}
}

func (e *EmailNotifier) Name() string { return "email" }

// Notify skips anonymous reports and citizens without an email address.
func (e *EmailNotifier) Notify(ctx context.Context, n Notification) error {
	if n.Citizen == nil || n.Citizen.Email == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	subject, body := Compose(e.loc, n)

	message := mail.NewV3Mail()
	message.SetFrom(mail.NewEmail(e.fromName, e.fromEmail))
	message.Subject = subject

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail(n.Citizen.Email, n.Citizen.Email))
	message.AddPersonalizations(p)
	message.AddContent(mail.NewContent("text/plain", body))

	return e.send(message)
}
