// Package bridge connects a picker session to the application that launched
// it. Every signal is one-way: the host never answers.
package bridge

import (
	"encoding/json"
)

// Host receives the three signals a picker session can emit.
type Host interface {
	// Ready signals once at startup that the picker may be shown.
	Ready()
	// SendData delivers the JSON-encoded submission. Hosts conventionally
	// close the picker after receiving it.
	SendData(payload string)
	// Close asks the host to dismiss the picker without a submission.
	Close()
}

// Event names used on the wire.
const (
	EventReady = "ready"
	EventData  = "data"
	EventClose = "close"
)

// Envelope is the wire form of a signal for hosts reached over a stream or
// HTTP.
type Envelope struct {
	Event   string `json:"event"`
	Payload string `json:"payload,omitempty"`
}

func encode(e Envelope) []byte {
	// Envelope holds only strings, so Marshal cannot fail.
	b, _ := json.Marshal(e)
	return b
}

// Nop discards every signal.
type Nop struct{}

func (Nop) Ready()          {}
func (Nop) SendData(string) {}
func (Nop) Close()          {}
