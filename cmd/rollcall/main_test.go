package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"rollcall/internal/bridge"
	"rollcall/internal/config"
	"rollcall/internal/logging"
	"rollcall/internal/roster"
)

const testRecords = `[
	{"id":"3","rank":"PTE","name":"John Smith","appt":"trooper","subunit2":"2"},
	{"id":"5","rank":"3SG","name":"David Doe","appt":"wospec","subunit2":"1"},
	{"id":"8","rank":"CPL","name":"Ann Lee","appt":"medic","subunit2":"2"}
]`

// setup resets the globals PersistentPreRunE would have set.
func setup(t *testing.T) {
	t.Helper()
	cfg = config.DefaultConfig()
	logs = logging.Nop()
	sessionID = ""
	launchURL = ""
}

func newCommand(t *testing.T, addFlags func(*cobra.Command), args ...string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	c := &cobra.Command{}
	if addFlags != nil {
		addFlags(c)
	}
	if err := c.Flags().Parse(args); err != nil {
		t.Fatalf("failed to parse flags %v: %v", args, err)
	}
	var out bytes.Buffer
	c.SetOut(&out)
	return c, &out
}

func recordServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/kv-store/abc" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(testRecords))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunSample(t *testing.T) {
	setup(t)
	c, out := newCommand(t, nil)

	if err := runSample(c, nil); err != nil {
		t.Fatalf("runSample returned error: %v", err)
	}

	var records []roster.Record
	if err := json.Unmarshal(out.Bytes(), &records); err != nil {
		t.Fatalf("sample output is not a record list: %v\n%s", err, out.String())
	}
	if len(records) != 7 || records[0].Name != "John Doe" {
		t.Fatalf("unexpected sample records: %+v", records)
	}
}

func TestResolveSession(t *testing.T) {
	setup(t)

	s, err := resolveSession()
	if err != nil || s.Present {
		t.Fatalf("expected no session, got %+v (err %v)", s, err)
	}

	launchURL = "https://app.example/?id=fromurl"
	s, err = resolveSession()
	if err != nil || s.ID != "fromurl" {
		t.Fatalf("expected session from url, got %+v (err %v)", s, err)
	}

	sessionID = "flag"
	s, err = resolveSession()
	if err != nil || s.ID != "flag" {
		t.Fatalf("expected --session to win, got %+v (err %v)", s, err)
	}
}

func TestRunShow_GroupedText(t *testing.T) {
	setup(t)
	c, out := newCommand(t, addShowFlags, "--select", "1,5", "--group", "rank")

	if err := runShow(c, nil); err != nil {
		t.Fatalf("runShow returned error: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Unselected (5)",
		"Selected (2)",
		"Rank: PTE",
		"Rank: 2LT",
		"Sam Doe (officer, platoon 1)",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, got)
		}
	}
	if strings.Index(got, "Unselected") > strings.Index(got, "Selected (2)") {
		t.Fatalf("unselected records should be listed first:\n%s", got)
	}
}

func TestRunShow_SearchJSON(t *testing.T) {
	setup(t)
	c, out := newCommand(t, addShowFlags, "--search", "John", "--format", "json")

	if err := runShow(c, nil); err != nil {
		t.Fatalf("runShow returned error: %v", err)
	}

	var got displayJSON
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if got.ID != nil {
		t.Fatalf("expected null id for the sample session, got %q", *got.ID)
	}
	if len(got.Unselected) != 1 || strings.Join(got.Unselected[0].IDs, ",") != "1,3" {
		t.Fatalf("expected one group with ids 1,3, got %+v", got.Unselected)
	}
	if len(got.Selected) != 0 {
		t.Fatalf("expected no selected groups, got %+v", got.Selected)
	}
}

func TestRunShow_InvalidFlags(t *testing.T) {
	setup(t)

	c, _ := newCommand(t, addShowFlags, "--group", "height")
	if err := runShow(c, nil); err == nil {
		t.Fatal("expected error for unknown group field")
	}

	c, _ = newCommand(t, addShowFlags, "--format", "xml")
	if err := runShow(c, nil); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestRunShow_FetchFailure(t *testing.T) {
	setup(t)
	srv := recordServer(t)
	cfg.Source.Endpoint = srv.URL + "/kv-store"
	sessionID = "missing"

	c, _ := newCommand(t, addShowFlags)
	err := runShow(c, nil)
	if err == nil {
		t.Fatal("expected error when the record store returns 404")
	}
	if !strings.Contains(err.Error(), "failed to load records") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunSubmit_Stream(t *testing.T) {
	setup(t)
	srv := recordServer(t)
	cfg.Source.Endpoint = srv.URL + "/kv-store"
	launchURL = "https://app.example/?id=abc"

	c, out := newCommand(t, addSubmitFlags, "--select", "3,5,3")
	if err := runSubmit(c, nil); err != nil {
		t.Fatalf("runSubmit returned error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected ready then data, got %q", out.String())
	}
	var ready, data bridge.Envelope
	if err := json.Unmarshal([]byte(lines[0]), &ready); err != nil {
		t.Fatalf("host signal is not JSON: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &data); err != nil {
		t.Fatalf("host signal is not JSON: %v", err)
	}
	if ready.Event != bridge.EventReady {
		t.Fatalf("expected ready first, got %q", ready.Event)
	}
	if data.Event != bridge.EventData {
		t.Fatalf("expected data event, got %q", data.Event)
	}
	if data.Payload != `{"id":"abc","identities":["3","5"]}` {
		t.Fatalf("unexpected payload: %s", data.Payload)
	}
}

func TestRunSubmit_UnknownID(t *testing.T) {
	setup(t)
	c, out := newCommand(t, addSubmitFlags, "--select", "1,42")

	err := runSubmit(c, nil)
	if err == nil || !strings.Contains(err.Error(), "42") {
		t.Fatalf("expected unknown id error naming 42, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("nothing should reach the host, got %q", out.String())
	}
}

func TestRunSubmit_Webhook(t *testing.T) {
	setup(t)

	var received []bridge.Envelope
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var env bridge.Envelope
		if err := json.NewDecoder(r.Body).Decode(&env); err == nil {
			received = append(received, env)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer hook.Close()
	cfg.Host.Kind = "webhook"
	cfg.Host.WebhookURL = hook.URL

	c, out := newCommand(t, addSubmitFlags)
	if err := runSubmit(c, nil); err != nil {
		t.Fatalf("runSubmit returned error: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("webhook host should not write to stdout, got %q", out.String())
	}
	if len(received) != 2 || received[0].Event != bridge.EventReady ||
		received[1].Payload != `{"id":null,"identities":[]}` {
		t.Fatalf("unexpected webhook deliveries: %+v", received)
	}
}
