package mailqueue

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	"github.com/jobportal-dev/job-portal/backend/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type kind struct {
	subject  string
	template string
	data     func() any
}

var kinds = map[domain.MailType]kind{
	domain.MailSignupOTP: {
		subject:  "Job Portal - verify your email",
		template: "signup_otp.html",
		data:     func() any { return &domain.SignupOTPMailData{} },
	},
	domain.MailHRAccountCreated: {
		subject:  "Job Portal - your HR account",
		template: "hr_account_created.html",
		data:     func() any { return &domain.HRAccountCreatedMailData{} },
	},
}

// Channel is the slice of *amqp.Channel the publisher needs.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// DeclareQueue declares the durable mail queue shared by the api and the
// worker.
func DeclareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		name,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
}

type Publisher struct {
	ch      Channel
	queue   string
	timeout time.Duration
}

func NewPublisher(ch Channel, queue string, timeout time.Duration) *Publisher {
	return &Publisher{ch: ch, queue: queue, timeout: timeout}
}

func (p *Publisher) Publish(ctx context.Context, msg domain.MailMessage) error {
	if _, ok := kinds[msg.Type]; !ok {
		return fmt.Errorf("unsupported mail type %q", msg.Type)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.ch.PublishWithContext(
		ctx,
		"",
		p.queue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// Compose turns a queued message body into a ready to send mail.
func Compose(body []byte, from string) (*mail.Msg, error) {
	var envelope struct {
		Type domain.MailType `json:"type"`
		To   string          `json:"to"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode mail message: %w", err)
	}

	k, ok := kinds[envelope.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported mail type %q", envelope.Type)
	}
	data := k.data()
	if err := json.Unmarshal(envelope.Data, data); err != nil {
		return nil, fmt.Errorf("decode %s data: %w", envelope.Type, err)
	}

	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, err
	}
	if err := m.To(envelope.To); err != nil {
		return nil, err
	}
	m.Subject(k.subject)
	if err := m.SetBodyHTMLTemplate(templates.Lookup(k.template), data); err != nil {
		return nil, err
	}
	return m, nil
}
