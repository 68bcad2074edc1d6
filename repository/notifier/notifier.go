package notifier

import (
	"context"

	"go.uber.org/zap"
)

type Message struct {
	To      string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, m Message) error
}

type logSender struct{ log *zap.Logger }

// NewLog returns a Sender that only logs; used when no mail provider is configured.
func NewLog(log *zap.Logger) Sender { return &logSender{log: log} }

func (s *logSender) Send(_ context.Context, m Message) error {
	s.log.Info("email (not sent, no provider configured)",
		zap.String("to", m.To),
		zap.String("subject", m.Subject),
	)
	return nil
}
