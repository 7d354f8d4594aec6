package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	mailtpl "github.com/oksasatya/vendor-directory/pkg/mailer/templates"
)

var (
	ErrNoRecipient     = errors.New("notification has no recipient")
	ErrUnknownTemplate = errors.New("unknown notification template")
)

const publishTimeout = 5 * time.Second

// Publisher puts a JSON message on the email queue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueNotifier hands notifications to the email worker. Send returns once
// the broker has the job; delivery itself is the worker's concern.
type QueueNotifier struct {
	pub    Publisher
	logger *logrus.Logger
}

func NewQueueNotifier(pub Publisher, logger *logrus.Logger) *QueueNotifier {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &QueueNotifier{pub: pub, logger: logger}
}

func (n *QueueNotifier) Send(ctx context.Context, templateID, to string, params map[string]any) error {
	job, err := newJob(templateID, to, params)
	if err != nil {
		return err
	}
	c, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := n.pub.PublishJSON(c, job); err != nil {
		return fmt.Errorf("enqueue %s: %w", templateID, err)
	}
	n.logger.WithFields(logrus.Fields{"template": templateID, "to": to}).Debug("email queued")
	return nil
}

// LogNotifier writes notifications to the log instead of sending them. It is
// what runs when MAIL_SEND_ENABLED=false, so codes stay reachable in development.
type LogNotifier struct {
	Logger *logrus.Logger
}

func (n LogNotifier) Send(_ context.Context, templateID, to string, params map[string]any) error {
	job, err := newJob(templateID, to, params)
	if err != nil {
		return err
	}
	l := n.Logger
	if l == nil {
		l = logrus.StandardLogger()
	}
	l.WithFields(logrus.Fields{"template": job.Template, "to": job.To, "data": job.Data}).Info("email not sent: mail disabled")
	return nil
}

func newJob(templateID, to string, params map[string]any) (EmailJob, error) {
	to = strings.TrimSpace(to)
	if to == "" {
		return EmailJob{}, ErrNoRecipient
	}
	if !mailtpl.Known(templateID) {
		return EmailJob{}, fmt.Errorf("%w: %s", ErrUnknownTemplate, templateID)
	}
	return EmailJob{To: to, Template: templateID, Data: params}, nil
}
