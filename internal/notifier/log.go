package notifier

import (
	"context"

	"github.com/dtroode/golekaab-server/internal/logger"
	"github.com/dtroode/golekaab-server/internal/model"
)

var _ model.Notifier = (*Log)(nil)

// Log writes magic links to the application log instead of sending mail.
// Intended for local development only.
type Log struct {
	baseURL string
	logger  *logger.Logger
}

func NewLog(baseURL string, logger *logger.Logger) *Log {
	return &Log{baseURL: baseURL, logger: logger}
}

func (n *Log) SendMagicLink(_ context.Context, email, token string) error {
	link, err := BuildLink(n.baseURL, token)
	if err != nil {
		return err
	}

	n.logger.Info("Log notifier: magic link",
		"email", email,
		"link", link)

	return nil
}
