package selection

import (
	"encoding/json"

	"rollcall/internal/roster"
)

// Payload is the submission handed to the host.
type Payload struct {
	ID         *string  `json:"id"`
	Identities []string `json:"identities"`
}

// NewPayload builds the submission for a session. Identities is never nil so
// an empty selection encodes as [].
func NewPayload(session roster.Session, selected Set) Payload {
	return Payload{
		ID:         session.IDPtr(),
		Identities: selected.IDs(),
	}
}

// Encode returns the compact JSON form.
func (p Payload) Encode() string {
	// Payload holds only string data, so Marshal cannot fail.
	b, _ := json.Marshal(p)
	return string(b)
}
