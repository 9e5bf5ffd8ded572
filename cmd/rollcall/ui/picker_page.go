package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"rollcall/internal/roster"
	"rollcall/internal/selection"
)

// Outcome is how a picker session ended.
type Outcome int

const (
	OutcomeOpen Outcome = iota
	OutcomeSubmitted
	OutcomeCancelled
)

// recordsLoadedMsg carries the result of the one record fetch.
type recordsLoadedMsg struct {
	records []roster.Record
	err     error
}

// row is one selectable line: a group header or a record.
type row struct {
	selected bool // row belongs to the Selected section
	group    selection.Group
	record   *roster.Record
}

// PickerOptions configures a PickerPageModel.
type PickerOptions struct {
	Styles       Styles
	Logger       *zap.Logger
	FetchTimeout time.Duration
}

// PickerPageModel is the personnel picker page.
type PickerPageModel struct {
	width  int
	height int

	manager      *selection.Manager
	source       roster.Source
	fetchTimeout time.Duration

	spinner       spinner.Model
	searchInput   textinput.Model
	searchFocused bool
	keys          KeyMap
	help          help.Model
	showHelp      bool

	rows    []row
	cursor  int
	offset  int
	outcome Outcome

	styles Styles
	logger *zap.Logger
}

// NewPickerPageModel creates the picker over a manager whose records will be
// fetched from source when the program starts.
func NewPickerPageModel(manager *selection.Manager, source roster.Source, opts PickerOptions) PickerPageModel {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Styles.Theme.Primary == "" {
		opts.Styles = DefaultStyles()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = opts.Styles.Spinner

	si := textinput.New()
	si.Placeholder = "Search"
	si.Prompt = "⌕ "
	si.CharLimit = 64
	si.Width = 40

	return PickerPageModel{
		manager:      manager,
		source:       source,
		fetchTimeout: opts.FetchTimeout,
		spinner:      sp,
		searchInput:  si,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		styles:       opts.Styles,
		logger:       opts.Logger,
	}
}

// Init starts the spinner and the record fetch.
func (m PickerPageModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchCmd())
}

func (m PickerPageModel) fetchCmd() tea.Cmd {
	src, session, timeout := m.source, m.manager.Session(), m.fetchTimeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		records, err := src.Fetch(ctx, session)
		return recordsLoadedMsg{records: records, err: err}
	}
}

// Update handles messages.
func (m PickerPageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case recordsLoadedMsg:
		if err := m.manager.Resolve(msg.records, msg.err); err != nil {
			m.logger.Warn("ignoring second load result", zap.Error(err))
		}
		m.rebuild()
		return m, nil

	case spinner.TickMsg:
		if m.manager.Status() != selection.StatusPending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m PickerPageModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m.cancel()
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.manager.Status() != selection.StatusReady {
		if key.Matches(msg, m.keys.Cancel) {
			return m.cancel()
		}
		return m, nil
	}
	if m.searchFocused {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Toggle):
		m.toggleCurrent()
	case key.Matches(msg, m.keys.ToggleAll):
		m.toggleCurrentGroup()
	case key.Matches(msg, m.keys.Search):
		m.searchFocused = true
		return m, m.searchInput.Focus()
	case key.Matches(msg, m.keys.Group):
		m.manager.SetGroupField(m.manager.GroupField().Next())
		m.rebuild()
	case key.Matches(msg, m.keys.Submit):
		m.manager.Submit()
		m.outcome = OutcomeSubmitted
		return m, tea.Quit
	case key.Matches(msg, m.keys.Cancel):
		return m.cancel()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	}
	return m, nil
}

func (m PickerPageModel) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		m.searchFocused = false
		m.searchInput.Blur()
		return m, nil
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if after := m.searchInput.Value(); after != before {
		m.manager.Search(after)
		m.rebuild()
	}
	return m, cmd
}

func (m PickerPageModel) cancel() (tea.Model, tea.Cmd) {
	m.manager.Cancel()
	m.outcome = OutcomeCancelled
	return m, tea.Quit
}

// toggleCurrent selects or deselects the record under the cursor; on a group
// row it acts on the whole group.
func (m *PickerPageModel) toggleCurrent() {
	if m.cursor >= len(m.rows) {
		return
	}
	r := m.rows[m.cursor]
	if r.record == nil {
		m.toggleGroup(r)
		return
	}
	if r.selected {
		m.manager.Deselect(r.record.ID)
	} else {
		m.manager.Select(r.record.ID)
	}
	m.logger.Debug("record toggled", zap.String("id", r.record.ID), zap.Bool("was_selected", r.selected))
	m.rebuild()
}

func (m *PickerPageModel) toggleCurrentGroup() {
	if m.cursor >= len(m.rows) {
		return
	}
	m.toggleGroup(m.rows[m.cursor])
}

// toggleGroup applies to exactly the ids currently shown in the group.
func (m *PickerPageModel) toggleGroup(r row) {
	ids := r.group.IDs()
	if r.selected {
		m.manager.DeselectAll(ids)
	} else {
		m.manager.SelectAll(ids)
	}
	m.logger.Debug("group toggled", zap.String("group", r.group.Key), zap.Int("records", len(ids)))
	m.rebuild()
}

// rebuild recomputes the display and the row list, keeping the cursor in range.
func (m *PickerPageModel) rebuild() {
	d := m.manager.Display()
	m.rows = nil
	for _, sec := range []struct {
		selected bool
		view     selection.View
	}{{false, d.Unselected}, {true, d.Selected}} {
		for _, g := range sec.view {
			m.rows = append(m.rows, row{selected: sec.selected, group: g})
			for i := range g.Records {
				m.rows = append(m.rows, row{selected: sec.selected, group: g, record: &g.Records[i]})
			}
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.scrollToCursor()
}

func (m *PickerPageModel) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	m.scrollToCursor()
}

// listHeight is the number of rows that fit below the header and filter bar.
// Zero means unbounded.
func (m PickerPageModel) listHeight() int {
	if m.height == 0 {
		return 0
	}
	h := m.height - 9
	if h < 3 {
		h = 3
	}
	return h
}

func (m *PickerPageModel) scrollToCursor() {
	h := m.listHeight()
	if h == 0 {
		m.offset = 0
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
}

// SetSize updates the size.
func (m *PickerPageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.help.Width = w
	m.searchInput.Width = max(10, w/2)
	m.scrollToCursor()
}

// Outcome reports how the session ended.
func (m PickerPageModel) Outcome() Outcome {
	return m.outcome
}

// View renders the page.
func (m PickerPageModel) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Header.Render(" Select Personnel "))
	sb.WriteString("\n\n")

	switch m.manager.Status() {
	case selection.StatusPending:
		sb.WriteString(m.spinner.View() + " Loading...")
		return sb.String()
	case selection.StatusFailed:
		sb.WriteString(m.styles.Error.Render("Something went wrong"))
		sb.WriteString("\n\n")
		sb.WriteString(m.styles.Muted.Render("[q] Close"))
		return sb.String()
	}

	if m.showHelp {
		sb.WriteString(renderHelp(m.styles.Theme, m.width))
		sb.WriteString(m.styles.Muted.Render("press any key to return"))
		return sb.String()
	}

	sb.WriteString(m.renderFilterBar())
	sb.WriteString("\n")
	sb.WriteString(m.renderRows())
	sb.WriteString("\n")
	sb.WriteString(m.renderStatus())
	sb.WriteString("\n")
	sb.WriteString(m.styles.Footer.Render(m.help.View(m.keys)))

	return sb.String()
}

// renderFilterBar renders the search input and the group-by tabs
func (m PickerPageModel) renderFilterBar() string {
	var sb strings.Builder

	box := m.styles.FilterBox
	if m.searchFocused {
		box = box.BorderForeground(m.styles.Theme.Primary)
	}
	sb.WriteString(box.Render(m.searchInput.View()))
	sb.WriteString("  ")

	sb.WriteString(m.styles.Muted.Render("Group By: "))
	for _, f := range roster.GroupFields {
		style := m.styles.Muted
		if m.manager.GroupField() == f {
			style = lipgloss.NewStyle().
				Foreground(m.styles.Theme.Primary).
				Bold(true).
				Underline(true)
		}
		sb.WriteString(style.Render(f.Label()))
		sb.WriteString("  ")
	}
	return sb.String()
}

func (m PickerPageModel) renderRows() string {
	if len(m.rows) == 0 {
		return m.styles.Muted.Render("  No personnel to show") + "\n"
	}

	end := len(m.rows)
	if h := m.listHeight(); h > 0 && m.offset+h < end {
		end = m.offset + h
	}

	var sb strings.Builder
	inSelected := m.offset > 0 && m.rows[m.offset-1].selected
	for i := m.offset; i < end; i++ {
		r := m.rows[i]
		if r.selected && !inSelected {
			inSelected = true
			sb.WriteString(m.styles.RenderDivider(m.width - 2))
			sb.WriteString("\n")
			sb.WriteString(m.styles.Title.Render("Selected"))
			sb.WriteString("\n")
		}

		cursor := "  "
		if i == m.cursor {
			cursor = m.styles.Cursor.Render("> ")
		}
		sb.WriteString(cursor)
		sb.WriteString(m.renderRow(r))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m PickerPageModel) renderRow(r row) string {
	if r.record == nil {
		label := r.group.Key
		if label == "" {
			label = "All"
		}
		action := "[Select All]"
		if r.selected {
			action = "[Deselect All]"
		}
		return m.styles.GroupHeader.Render(fmt.Sprintf("%s (%d)", label, len(r.group.Records))) +
			"  " + m.styles.Muted.Render(action)
	}

	p := r.record
	line := fmt.Sprintf("%s %s  %s", p.Rank, p.Name,
		m.styles.Muted.Render(fmt.Sprintf("Appointment: %s, Platoon: %s", p.Appt, p.Subunit2)))
	if r.selected {
		return m.styles.ItemSelected.Render("✓ ") + line
	}
	return m.styles.Item.Render("  ") + line
}

func (m PickerPageModel) renderStatus() string {
	status := fmt.Sprintf("%d selected", m.manager.Selected().Len())
	if q := strings.TrimSpace(m.manager.Query()); q != "" {
		if n := len(m.manager.Matches()); n > 0 {
			status += fmt.Sprintf(" · %d match %q", n, q)
		} else {
			status += fmt.Sprintf(" · no match for %q, showing everyone", q)
		}
	}
	return m.styles.Badge.Render(status)
}
