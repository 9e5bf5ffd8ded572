package bridge

import (
	"io"
	"sync"

	"go.uber.org/zap"
)

// Stream writes one JSON envelope per line to w.
type Stream struct {
	mu     sync.Mutex
	w      io.Writer
	logger *zap.Logger
}

// NewStream returns a Stream host writing to w.
func NewStream(w io.Writer, logger *zap.Logger) *Stream {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stream{w: w, logger: logger}
}

func (s *Stream) Ready() {
	s.emit(Envelope{Event: EventReady})
}

func (s *Stream) SendData(payload string) {
	s.emit(Envelope{Event: EventData, Payload: payload})
}

func (s *Stream) Close() {
	s.emit(Envelope{Event: EventClose})
}

func (s *Stream) emit(e Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line := append(encode(e), '\n')
	if _, err := s.w.Write(line); err != nil {
		s.logger.Warn("host stream write failed", zap.String("event", e.Event), zap.Error(err))
		return
	}
	s.logger.Debug("host signal sent", zap.String("event", e.Event))
}
