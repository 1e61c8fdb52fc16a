package service

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Mailer delivers account emails. Delivery itself lives outside this service.
type Mailer interface {
	SendConfirmation(ctx context.Context, email, link string) error
	SendPasswordReset(ctx context.Context, email, link string) error
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	from string
	log  logrus.FieldLogger
}

func NewLogMailer(from string, log logrus.FieldLogger) *LogMailer {
	return &LogMailer{from: from, log: log}
}

func (m *LogMailer) SendConfirmation(_ context.Context, email, link string) error {
	m.log.WithFields(logrus.Fields{
		"from":    m.from,
		"to":      email,
		"subject": "Confirm your email",
		"link":    link,
	}).Info("Mail sent")
	return nil
}

func (m *LogMailer) SendPasswordReset(_ context.Context, email, link string) error {
	m.log.WithFields(logrus.Fields{
		"from":    m.from,
		"to":      email,
		"subject": "Reset your password",
		"link":    link,
	}).Info("Mail sent")
	return nil
}

type AsyncRunner func(task func())

type NotifierOption func(*Notifier)

func WithAsyncRunner(runner AsyncRunner) NotifierOption {
	return func(n *Notifier) {
		if runner != nil {
			n.asyncRunner = runner
		}
	}
}

// Notifier sends account emails in the background. Failures are logged and
// never reach the caller.
type Notifier struct {
	mailer      Mailer
	asyncRunner AsyncRunner
}

func NewNotifier(mailer Mailer, opts ...NotifierOption) *Notifier {
	n := &Notifier{
		mailer: mailer,
		asyncRunner: func(task func()) {
			go task()
		},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Notifier) Confirmation(email, link string) {
	n.asyncRunner(func() {
		if err := n.mailer.SendConfirmation(context.Background(), email, link); err != nil {
			logrus.WithError(err).WithField("email", email).Error("Failed to send confirmation email")
		}
	})
}

func (n *Notifier) PasswordReset(email, link string) {
	n.asyncRunner(func() {
		if err := n.mailer.SendPasswordReset(context.Background(), email, link); err != nil {
			logrus.WithError(err).WithField("email", email).Error("Failed to send password reset email")
		}
	})
}
