package bridge

import "sync"

// Recorder keeps every signal in memory. It is meant for tests and dry runs.
type Recorder struct {
	mu     sync.Mutex
	events []Envelope
}

func (r *Recorder) Ready() {
	r.add(Envelope{Event: EventReady})
}

func (r *Recorder) SendData(payload string) {
	r.add(Envelope{Event: EventData, Payload: payload})
}

func (r *Recorder) Close() {
	r.add(Envelope{Event: EventClose})
}

func (r *Recorder) add(e Envelope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded signals in order.
func (r *Recorder) Events() []Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Envelope, len(r.events))
	copy(out, r.events)
	return out
}

// Payloads returns the payloads of every data signal.
func (r *Recorder) Payloads() []string {
	var out []string
	for _, e := range r.Events() {
		if e.Event == EventData {
			out = append(out, e.Payload)
		}
	}
	return out
}

// Count returns how many signals of the given event were recorded.
func (r *Recorder) Count(event string) int {
	n := 0
	for _, e := range r.Events() {
		if e.Event == event {
			n++
		}
	}
	return n
}
