package selection

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rollcall/internal/bridge"
	"rollcall/internal/fuzzy"
	"rollcall/internal/roster"

	"go.uber.org/zap"
)

// Status is the state of the one record fetch a session performs.
type Status int

const (
	StatusPending Status = iota
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	}
	return "pending"
}

// ErrAlreadyResolved is returned when a session's fetch outcome is reported
// a second time.
var ErrAlreadyResolved = errors.New("record load already resolved")

// Manager owns one session's state. It is not safe for concurrent use: all
// calls are expected from a single event loop.
type Manager struct {
	session roster.Session
	host    bridge.Host
	matcher fuzzy.Matcher
	logger  *zap.Logger

	status  Status
	err     error
	records []roster.Record
	names   []string

	selected Set
	query    string
	matches  []string
	group    roster.GroupField

	announced bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithMatcher replaces the default approximate name matcher.
func WithMatcher(matcher fuzzy.Matcher) Option {
	return func(m *Manager) {
		m.matcher = matcher
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithGroupField sets the initial group field.
func WithGroupField(field roster.GroupField) Option {
	return func(m *Manager) {
		m.group = field
	}
}

// New creates a manager in the pending state.
func New(session roster.Session, host bridge.Host, opts ...Option) *Manager {
	m := &Manager{
		session: session,
		host:    host,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.host == nil {
		m.host = bridge.Nop{}
	}
	if m.matcher == nil {
		m.matcher = fuzzy.NewApproximate(fuzzy.DefaultThreshold, fuzzy.DefaultDistance)
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	return m
}

// Start signals the host that the picker may be shown. Only the first call
// reaches the host.
func (m *Manager) Start() {
	if m.announced {
		return
	}
	m.announced = true
	m.host.Ready()
	m.logger.Debug("host notified ready", zap.Bool("sample", m.session.UsesSample()))
}

// Load fetches the record list from src and resolves the load status.
func (m *Manager) Load(ctx context.Context, src roster.Source) error {
	if m.status != StatusPending {
		return ErrAlreadyResolved
	}
	records, err := src.Fetch(ctx, m.session)
	if rerr := m.Resolve(records, err); rerr != nil {
		return rerr
	}
	if err != nil {
		return fmt.Errorf("failed to load records from %s: %w", src.Name(), err)
	}
	return nil
}

// Resolve records the outcome of the fetch. A non-nil fetchErr moves the
// session to StatusFailed, otherwise to StatusReady. The transition happens
// once; later calls return ErrAlreadyResolved.
func (m *Manager) Resolve(records []roster.Record, fetchErr error) error {
	if m.status != StatusPending {
		return ErrAlreadyResolved
	}
	if fetchErr != nil {
		m.status = StatusFailed
		m.err = fetchErr
		m.logger.Warn("record load failed", zap.Error(fetchErr))
		return nil
	}

	m.records = records
	m.names = make([]string, len(records))
	for i, r := range records {
		m.names[i] = r.Name
	}
	m.status = StatusReady
	m.logger.Info("records loaded", zap.Int("count", len(records)))
	return nil
}

// Status returns the load status.
func (m *Manager) Status() Status { return m.status }

// Err returns the fetch error of a failed session.
func (m *Manager) Err() error { return m.err }

// Session returns the session the manager serves.
func (m *Manager) Session() roster.Session { return m.session }

// Records returns the loaded records.
func (m *Manager) Records() []roster.Record {
	out := make([]roster.Record, len(m.records))
	copy(out, m.records)
	return out
}

// Selected returns the current selection.
func (m *Manager) Selected() Set { return m.selected }

// Select adds id to the selection.
func (m *Manager) Select(id string) Set {
	m.selected = m.selected.Add(id)
	return m.selected
}

// Deselect removes id from the selection; absent ids are ignored.
func (m *Manager) Deselect(id string) Set {
	m.selected = m.selected.Remove(id)
	return m.selected
}

// SelectAll adds every id not yet selected. Callers pass the ids of one
// displayed group.
func (m *Manager) SelectAll(ids []string) Set {
	m.selected = m.selected.AddAll(ids)
	return m.selected
}

// DeselectAll removes every id in ids.
func (m *Manager) DeselectAll(ids []string) Set {
	m.selected = m.selected.RemoveAll(ids)
	return m.selected
}

// Search replaces the match set with the ids whose name matches query.
// A blank query clears the filter and returns nil.
func (m *Manager) Search(query string) []string {
	m.query = query
	m.matches = nil
	if strings.TrimSpace(query) != "" {
		for _, i := range m.matcher.Match(query, m.names) {
			m.matches = append(m.matches, m.records[i].ID)
		}
	}
	m.logger.Debug("search", zap.String("query", query), zap.Int("matches", len(m.matches)))
	return m.Matches()
}

// Query returns the last search text.
func (m *Manager) Query() string { return m.query }

// Matches returns the current match set. Empty means no filter.
func (m *Manager) Matches() []string {
	if m.matches == nil {
		return nil
	}
	out := make([]string, len(m.matches))
	copy(out, m.matches)
	return out
}

// SetGroupField changes the grouping.
func (m *Manager) SetGroupField(field roster.GroupField) {
	m.group = field
}

// GroupField returns the grouping.
func (m *Manager) GroupField() roster.GroupField { return m.group }

// Display derives the grouped partition from the current state.
func (m *Manager) Display() Display {
	return Partition(m.records, m.selected, m.matches, m.group)
}

// Submit sends the session id and selected ids to the host and returns the
// payload sent. An empty selection is submitted as is.
func (m *Manager) Submit() Payload {
	p := NewPayload(m.session, m.selected)
	m.host.SendData(p.Encode())
	m.logger.Info("selection submitted", zap.Int("identities", len(p.Identities)))
	return p
}

// Cancel asks the host to close without submitting.
func (m *Manager) Cancel() {
	m.host.Close()
	m.logger.Info("selection cancelled")
}
