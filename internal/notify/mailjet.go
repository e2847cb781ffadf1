package notify

import (
	"context"
	"fmt"
	"net/url"

	mailjet "github.com/mailjet/mailjet-apiv3-go/v4"

	"github.com/pBarszczewska/booking-api/internal/app"
)

// MailjetSettings carries the Send API credentials and sender identity.
type MailjetSettings struct {
	APIKey      string
	APISecret   string
	SenderEmail string
	SenderName  string
}

// Configured reports whether both credentials are present.
func (s MailjetSettings) Configured() bool {
	return s.APIKey != "" && s.APISecret != ""
}

// Mailjet sends booking confirmations through the Mailjet Send API v3.1.
type Mailjet struct {
	client   *mailjet.Client
	settings MailjetSettings
}

func NewMailjet(settings MailjetSettings) *Mailjet {
	return &Mailjet{
		client:   mailjet.NewMailjetClient(settings.APIKey, settings.APISecret),
		settings: settings,
	}
}

func (m *Mailjet) BookingConfirmed(ctx context.Context, n app.BookingNotification) error {
	messages := mailjet.MessagesV31{
		Info: []mailjet.InfoMessagesV31{{
			From: &mailjet.RecipientV31{
				Email: m.settings.SenderEmail,
				Name:  m.settings.SenderName,
			},
			To: &mailjet.RecipientsV31{
				mailjet.RecipientV31{Email: n.Email, Name: n.Username},
			},
			Subject:  fmt.Sprintf("Booking confirmed: %s", n.ItemName),
			HTMLPart: confirmationHTML(n),
		}},
	}

	if _, err := m.client.SendMailV31(&messages, mailjet.WithContext(ctx)); err != nil {
		return fmt.Errorf("mailjet send: %w", err)
	}
	return nil
}

func confirmationHTML(n app.BookingNotification) string {
	return fmt.Sprintf(`<h2>Hello %s,</h2>
<p>Your booking for <strong>%s</strong> was confirmed.</p>
<p>From: %s<br/>To: %s</p>
<p><a href="%s" target="_blank">Add to Outlook calendar</a></p>`,
		n.Username,
		n.ItemName,
		n.StartAt.Format("2006-01-02 15:04 MST"),
		n.EndAt.Format("2006-01-02 15:04 MST"),
		outlookCalendarURL(n),
	)
}

// outlookCalendarURL builds the compose deeplink the confirmation mail
// embeds so recipients can add the slot to their calendar.
func outlookCalendarURL(n app.BookingNotification) string {
	const stamp = "2006-01-02T15:04:05Z"
	q := url.Values{}
	q.Set("path", "/calendar/action/compose")
	q.Set("rru", "addevent")
	q.Set("subject", "Booking: "+n.ItemName)
	q.Set("startdt", n.StartAt.UTC().Format(stamp))
	q.Set("enddt", n.EndAt.UTC().Format(stamp))
	return "https://outlook.live.com/calendar/0/deeplink/compose?" + q.Encode()
}
