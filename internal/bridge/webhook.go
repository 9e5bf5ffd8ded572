package bridge

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Webhook POSTs each envelope to a URL. Delivery failures are logged and
// otherwise ignored; nothing is retried.
type Webhook struct {
	url     string
	timeout time.Duration
	client  *http.Client
	logger  *zap.Logger
}

// NewWebhook creates a webhook host. timeout bounds each delivery.
func NewWebhook(url string, timeout time.Duration, logger *zap.Logger) *Webhook {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Webhook{
		url:     url,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (h *Webhook) Ready() {
	h.deliver(Envelope{Event: EventReady})
}

func (h *Webhook) SendData(payload string) {
	h.deliver(Envelope{Event: EventData, Payload: payload})
}

func (h *Webhook) Close() {
	h.deliver(Envelope{Event: EventClose})
}

func (h *Webhook) deliver(e Envelope) {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	requestID := uuid.NewString()
	log := h.logger.With(zap.String("event", e.Event), zap.String("request_id", requestID))
	if err := h.post(ctx, requestID, encode(e)); err != nil {
		log.Warn("host webhook delivery failed", zap.Error(err))
		return
	}
	log.Debug("host webhook delivered")
}

func (h *Webhook) post(ctx context.Context, requestID string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
