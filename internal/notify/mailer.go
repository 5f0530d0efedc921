package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gobapps/gob-api/internal/utils"
)

// LoggingMailer records every attempt made through the wrapped Sender.
type LoggingMailer struct {
	next Sender
	log  *LogBuffer
	now  func() time.Time
}

func NewLoggingMailer(next Sender, log *LogBuffer) *LoggingMailer {
	return &LoggingMailer{next: next, log: log, now: time.Now}
}

func (m *LoggingMailer) Send(ctx context.Context, email Email) (string, error) {
	id, err := m.next.Send(ctx, email)

	entry := LogEntry{
		Timestamp: m.now().UTC(),
		To:        append([]string(nil), email.To...),
		Subject:   email.Subject,
		Status:    StatusSent,
		MessageID: id,
	}
	if err != nil {
		entry.Status = StatusFailed
		entry.Error = err.Error()
		utils.Zlog.Error("Email delivery failed",
			zap.Strings("to", email.To),
			zap.String("subject", email.Subject),
			zap.Error(err))
	} else {
		utils.Zlog.Info("Email sent",
			zap.Strings("to", email.To),
			zap.String("messageId", id))
	}
	m.log.Append(entry)

	return id, err
}
