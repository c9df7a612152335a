// Package mail delivers transactional email. SendGrid is used when an API key is configured;
// otherwise messages are written to the log so development needs no mail account.
package mail

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

var (
	host     = "https://api.sendgrid.com"
	endpoint = "/v3/mail/send"
)

// Message is a single-recipient email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer sends messages. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// sendFunc performs the API call; tests replace it to capture requests.
type sendFunc func(ctx context.Context, req rest.Request) (*rest.Response, error)

func sendgridAPI(_ context.Context, req rest.Request) (*rest.Response, error) {
	return sendgrid.API(req)
}

// SendGrid sends messages through the SendGrid v3 API.
type SendGrid struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
	send       sendFunc
}

func NewSendGrid(key, siteName, fromEmail string) *SendGrid {
	return &SendGrid{
		key:        key,
		from:       sgmail.NewEmail(siteName, fromEmail),
		subjPrefix: "[" + siteName + "] ",
		send:       sendgridAPI,
	}
}

func (s *SendGrid) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = s.subjPrefix + msg.Subject
	p.AddTos(sgmail.NewEmail("", msg.To))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", msg.Text))
	if msg.HTML != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTML))
	}
	return m
}

func (s *SendGrid) Send(ctx context.Context, msg Message) error {
	req := sendgrid.GetRequest(s.key, endpoint, host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.prepare(msg))

	res, err := s.send(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid rejected message: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

// Console logs messages instead of sending them.
type Console struct {
	log zerolog.Logger
}

func NewConsole(log zerolog.Logger) *Console {
	return &Console{log: log}
}

func (c *Console) Send(_ context.Context, msg Message) error {
	c.log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Text).
		Msg("mail_not_sent_console_mode")
	return nil
}

// New picks SendGrid when apiKey is set and the console mailer otherwise.
func New(apiKey, siteName, fromEmail string, log zerolog.Logger) Mailer {
	if apiKey == "" {
		return NewConsole(log)
	}
	return NewSendGrid(apiKey, siteName, fromEmail)
}

// Welcome is the message sent to new newsletter subscribers.
func Welcome(siteName, to string) Message {
	return Message{
		To:      to,
		Subject: "Welcome to the " + siteName + " newsletter",
		Text: "Thanks for subscribing to " + siteName + ".\n\n" +
			"You'll hear from us when new notes, previous year questions and syllabus updates are published.",
		HTML: "<p>Thanks for subscribing to <strong>" + siteName + "</strong>.</p>" +
			"<p>You'll hear from us when new notes, previous year questions and syllabus updates are published.</p>",
	}
}
