// Package webhook posts sponsor notices to an external notification service
// over HTTPS. Used where no broker is deployed.
package webhook

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"privescreen/internal/platform/httpclient"
	"privescreen/internal/ports/notify"
)

var ErrNotConfigured = errors.New("sponsor webhook not configured")

type Config struct {
	BaseURL string
	APIKey  string

	APIKeyHeader string
	Timeout      time.Duration
}

type Notifier struct {
	client       *httpclient.Client
	apiKey       string
	apiKeyHeader string
}

func New(cfg Config) (*Notifier, error) {
	header := strings.TrimSpace(cfg.APIKeyHeader)
	if header == "" {
		header = "X-Api-Key"
	}

	client, err := httpclient.NewWithBaseURL(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	return &Notifier{
		client:       client,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: header,
	}, nil
}

func (n *Notifier) IsConfigured() bool {
	return n != nil && n.client != nil && n.client.BaseURL != "" && n.apiKey != ""
}

func (n *Notifier) NotifyResultReady(ctx context.Context, notice notify.CompletionNotice) error {
	if !n.IsConfigured() {
		// Fail explicit rather than silently dropping the notice.
		return ErrNotConfigured
	}

	return n.client.DoJSON(
		ctx,
		http.MethodPost,
		"/v1/notifications/result-ready",
		map[string]string{n.apiKeyHeader: n.apiKey},
		notice,
		nil,
	)
}
