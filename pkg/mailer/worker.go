package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	mailtpl "github.com/oksasatya/vendor-directory/pkg/mailer/templates"
)

var ErrEmptyJob = errors.New("email job has nothing to send")

// Outcome tells the consumer what to do with a delivery.
type Outcome int

const (
	Ack Outcome = iota
	Drop
)

// Worker renders queued jobs and sends them.
type Worker struct {
	Sender      Sender
	Branding    mailtpl.Branding
	Resolver    mailtpl.GeoResolver
	Zone        *time.Location
	Logger      *logrus.Logger
	SendTimeout time.Duration
}

// Handle processes one message body. Anything that does not end in a sent
// email is dropped: the code or link it carried is already stale for the user.
func (w *Worker) Handle(ctx context.Context, body []byte) (Outcome, error) {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return Drop, fmt.Errorf("bad message: %w", err)
	}
	if job.To == "" {
		return Drop, ErrNoRecipient
	}

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		if job.Data == nil {
			job.Data = map[string]any{}
		}
		mailtpl.EnsureRecipient(job.Data, job.To)
		w.Branding.Apply(job.Data)
		mailtpl.Localize(ctx, w.Resolver, job.Data, w.Zone)

		var err error
		subject, text, html, err = mailtpl.Render(job.Template, job.Data)
		if err != nil {
			return Drop, fmt.Errorf("render %s: %w", job.Template, err)
		}
	}
	if subject == "" && text == "" && html == "" {
		return Drop, ErrEmptyJob
	}

	timeout := w.SendTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := w.Sender.Send(c, job.To, subject, text, html); err != nil {
		return Drop, fmt.Errorf("send: %w", err)
	}
	return Ack, nil
}

// Run consumes msgs until ctx is done or the channel closes. Failed messages
// are rejected without requeue.
func (w *Worker) Run(ctx context.Context, msgs <-chan amqp.Delivery) {
	log := w.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			outcome, err := w.Handle(ctx, msg.Body)
			entry := log.WithField("delivery_tag", msg.DeliveryTag)
			if outcome == Ack {
				entry.Debug("email sent")
				_ = msg.Ack(false)
				continue
			}
			entry.WithError(err).Error("email dropped")
			_ = msg.Nack(false, false)
		}
	}
}
