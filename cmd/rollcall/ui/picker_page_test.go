package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollcall/internal/bridge"
	"rollcall/internal/roster"
	"rollcall/internal/selection"
)

func newTestPicker(t *testing.T, session roster.Session) (PickerPageModel, *selection.Manager, *bridge.Recorder) {
	t.Helper()
	host := &bridge.Recorder{}
	mgr := selection.New(session, host)
	m := NewPickerPageModel(mgr, roster.NewStatic(nil), PickerOptions{Styles: NewStyles(LightTheme())})
	return m, mgr, host
}

func send(t *testing.T, m PickerPageModel, msgs ...tea.Msg) (PickerPageModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		var ok bool
		m, ok = next.(PickerPageModel)
		require.True(t, ok, "Update returned %T", next)
	}
	return m, cmd
}

func load(t *testing.T, m PickerPageModel) PickerPageModel {
	t.Helper()
	m, _ = send(t, m, m.fetchCmd()())
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestPickerPage_LoadingThenReady(t *testing.T) {
	m, mgr, _ := newTestPicker(t, roster.Session{})
	assert.Contains(t, m.View(), "Loading...")

	m = load(t, m)
	assert.Equal(t, selection.StatusReady, mgr.Status())
	// One group header plus seven records.
	assert.Len(t, m.rows, 8)

	view := m.View()
	assert.Contains(t, view, "PTE John Doe")
	assert.Contains(t, view, "Appointment: officer, Platoon: 1")
	assert.Contains(t, view, "0 selected")
}

func TestPickerPage_FailedLoad(t *testing.T) {
	m, mgr, host := newTestPicker(t, roster.NewSession("abc"))
	m, _ = send(t, m, recordsLoadedMsg{err: errors.New("dial tcp: refused")})

	assert.Equal(t, selection.StatusFailed, mgr.Status())
	assert.Contains(t, m.View(), "Something went wrong")

	// Selection keys do nothing in the failed state.
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter}, runes("s"))
	assert.Nil(t, cmd)
	assert.Empty(t, host.Payloads())

	m, cmd = send(t, m, runes("q"))
	assert.True(t, isQuit(cmd))
	assert.Equal(t, OutcomeCancelled, m.Outcome())
	assert.Equal(t, 1, host.Count(bridge.EventClose))
}

func TestPickerPage_ToggleRecord(t *testing.T) {
	m, mgr, _ := newTestPicker(t, roster.Session{})
	m = load(t, m)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"1"}, mgr.Selected().IDs())
	assert.Contains(t, m.View(), "Selected")

	// Row 1 is now "2"; selecting it then walking to the Selected section
	// and deselecting "1" leaves only "2".
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"1", "2"}, mgr.Selected().IDs())

	last := len(m.rows) - 1
	for i := 0; i < last; i++ {
		m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	require.NotNil(t, m.rows[m.cursor].record)
	assert.True(t, m.rows[m.cursor].selected)
	assert.Equal(t, "2", m.rows[m.cursor].record.ID)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyUp}, runes(" "))
	assert.Equal(t, []string{"2"}, mgr.Selected().IDs())
}

func TestPickerPage_GroupBulkToggle(t *testing.T) {
	m, mgr, _ := newTestPicker(t, roster.Session{})
	m = load(t, m)

	// Tab groups by rank: PTE, 3SG, 2LT.
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, roster.GroupRank, mgr.GroupField())
	assert.Equal(t, []string{"PTE", "3SG", "2LT"}, mgr.Display().Unselected.Keys())

	// Cursor is on the PTE header; enter selects the whole group.
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"1", "2", "3", "4"}, mgr.Selected().IDs())

	// "a" on a record row acts on that record's group.
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown}, runes("a"))
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, mgr.Selected().IDs())

	// Find the selected PTE header and deselect it.
	for i, r := range m.rows {
		if r.selected && r.record == nil && r.group.Key == "PTE" {
			m.cursor = i
		}
	}
	m, _ = send(t, m, runes("a"))
	assert.Equal(t, []string{"5", "6"}, mgr.Selected().IDs())
}

func TestPickerPage_Search(t *testing.T) {
	m, mgr, host := newTestPicker(t, roster.Session{})
	m = load(t, m)

	m, _ = send(t, m, runes("/"))
	assert.True(t, m.searchFocused)

	m, _ = send(t, m, runes("John"))
	assert.Equal(t, []string{"1", "3"}, mgr.Matches())
	assert.Len(t, m.rows, 3)

	// Keys typed into the search box are not commands.
	m, _ = send(t, m, runes("q"))
	assert.Zero(t, host.Count(bridge.EventClose))
	assert.Equal(t, "Johnq", mgr.Query())

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyBackspace}, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.searchFocused)
	assert.Equal(t, "John", mgr.Query())

	// Select-all on the filtered group only takes the visible records.
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"1", "3"}, mgr.Selected().IDs())
	assert.True(t, strings.Contains(m.View(), "2 match"))
}

func TestPickerPage_Submit(t *testing.T) {
	m, _, host := newTestPicker(t, roster.NewSession("abc"))
	m = load(t, m)

	// Select "3" then "5".
	m, _ = send(t, m,
		tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyEnter},
		tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter},
	)
	m, cmd := send(t, m, runes("s"))
	assert.True(t, isQuit(cmd))
	assert.Equal(t, OutcomeSubmitted, m.Outcome())
	assert.Equal(t, []string{`{"id":"abc","identities":["3","5"]}`}, host.Payloads())
}

func TestPickerPage_CtrlCCancels(t *testing.T) {
	m, _, host := newTestPicker(t, roster.Session{})
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, isQuit(cmd))
	assert.Equal(t, OutcomeCancelled, m.Outcome())
	assert.Equal(t, 1, host.Count(bridge.EventClose))
}

func TestPickerPage_Help(t *testing.T) {
	m, _, _ := newTestPicker(t, roster.Session{})
	m = load(t, m)

	m, _ = send(t, m, runes("?"))
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "Selecting")

	m, _ = send(t, m, runes("x"))
	assert.False(t, m.showHelp)
}

func TestPickerPage_ScrollKeepsCursorVisible(t *testing.T) {
	m, _, _ := newTestPicker(t, roster.Session{})
	m = load(t, m)
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 12})
	require.Equal(t, 3, m.listHeight())

	for i := 0; i < 6; i++ {
		m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.Equal(t, 6, m.cursor)
	assert.Equal(t, 4, m.offset)
	assert.Contains(t, m.View(), "David Smith")
	assert.NotContains(t, m.View(), "John Doe")
}

func TestDetectTheme(t *testing.T) {
	t.Setenv("COLORFGBG", "15;0")
	assert.True(t, DetectTheme().IsDark)

	t.Setenv("COLORFGBG", "0;15")
	assert.False(t, DetectTheme().IsDark)

	assert.True(t, ThemeByName("dark").IsDark)
	assert.False(t, ThemeByName("light").IsDark)
}
