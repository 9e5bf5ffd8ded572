package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultEndpoint is the key-value store the records are read from.
const DefaultEndpoint = "https://back.4214lut.click/kv-store"

// Source loads the record list for a session.
type Source interface {
	Fetch(ctx context.Context, session Session) ([]Record, error)
	Name() string
}

// =============================================================================
// HTTP SOURCE
// =============================================================================

// HTTPSource reads a JSON array of records from <endpoint>/<session id>.
type HTTPSource struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// NewHTTPSource creates an HTTP source. A zero timeout means no client timeout.
func NewHTTPSource(endpoint string, timeout time.Duration, logger *zap.Logger) *HTTPSource {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPSource{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Fetch performs a single GET. Any failure (transport, status, body, invalid
// records) is returned as an error and is not retried.
func (s *HTTPSource) Fetch(ctx context.Context, session Session) ([]Record, error) {
	target := s.endpoint + "/" + url.PathEscape(session.ID)
	requestID := uuid.NewString()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	log := s.logger.With(zap.String("url", target), zap.String("request_id", requestID))
	start := time.Now()

	resp, err := s.client.Do(req)
	if err != nil {
		log.Warn("record fetch failed", zap.Error(err))
		return nil, fmt.Errorf("record request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Warn("record fetch returned error status", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("record store returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var records []Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	if err := Validate(records); err != nil {
		return nil, fmt.Errorf("invalid record list: %w", err)
	}

	log.Debug("records fetched",
		zap.Int("count", len(records)),
		zap.Duration("elapsed", time.Since(start)))
	return records, nil
}

// Name returns the source name.
func (s *HTTPSource) Name() string {
	return "http:" + s.endpoint
}

// =============================================================================
// SESSION ROUTING
// =============================================================================

// SessionSource sends sessions without an id to the fallback and every other
// session to the remote source.
type SessionSource struct {
	Remote   Source
	Fallback Source
}

// NewSessionSource pairs a remote source with the bundled sample.
func NewSessionSource(remote Source) *SessionSource {
	return &SessionSource{Remote: remote, Fallback: NewStatic(nil)}
}

// Fetch dispatches on the session id.
func (s *SessionSource) Fetch(ctx context.Context, session Session) ([]Record, error) {
	if session.UsesSample() {
		return s.Fallback.Fetch(ctx, session)
	}
	return s.Remote.Fetch(ctx, session)
}

// Name returns the source name.
func (s *SessionSource) Name() string {
	return fmt.Sprintf("session(%s|%s)", s.Remote.Name(), s.Fallback.Name())
}
