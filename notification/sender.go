package notification

import (
	"github.com/RoyceAzure/rj/infra/mail"
	"go.uber.org/zap"
)

type Sender interface {
	Send(subject, html string, to []string) error
	Channel() string
}

// MailSender delivers through a Gmail SMTP account.
type MailSender struct {
	mail.EmailSender
}

func NewMailSender(senderName, address, password string) *MailSender {
	return &MailSender{mail.NewGmailSender(senderName, address, password)}
}

func (m *MailSender) Send(subject, html string, to []string) error {
	return m.SendEmail(subject, html, to, nil, nil, nil)
}

func (m *MailSender) Channel() string { return "email" }

// LogSender only records the message. It is used when no mail account is
// configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (l *LogSender) Send(subject, html string, to []string) error {
	l.logger.Info("notification",
		zap.String("subject", subject),
		zap.Strings("to", to),
		zap.Int("bytes", len(html)))
	return nil
}

func (l *LogSender) Channel() string { return "log" }
