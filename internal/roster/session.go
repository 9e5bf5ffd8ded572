package roster

import (
	"fmt"
	"net/url"
)

// SessionParam is the query parameter carrying the session id.
const SessionParam = "id"

// Session identifies one picker invocation. Present is false when the
// launching URL carried no id at all, in which case the submission reports a
// null id.
type Session struct {
	ID      string
	Present bool
}

// NewSession returns a session with a known id.
func NewSession(id string) Session {
	return Session{ID: id, Present: true}
}

// SessionFromURL extracts the session from the "id" query parameter.
func SessionFromURL(raw string) (Session, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Session{}, fmt.Errorf("failed to parse launch url: %w", err)
	}
	q := u.Query()
	if !q.Has(SessionParam) {
		return Session{}, nil
	}
	return NewSession(q.Get(SessionParam)), nil
}

// UsesSample reports whether the session falls back to the bundled sample.
func (s Session) UsesSample() bool {
	return s.ID == ""
}

// IDPtr returns the id for a JSON payload: nil when absent.
func (s Session) IDPtr() *string {
	if !s.Present {
		return nil
	}
	id := s.ID
	return &id
}
