package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rollcall/cmd/rollcall/ui"
	"rollcall/internal/logging"
	"rollcall/internal/roster"
	"rollcall/internal/selection"
)

// runPick runs the interactive picker. The picker renders on stderr so a
// stream host keeps stdout to itself.
func runPick(cmd *cobra.Command, args []string) error {
	session, err := resolveSession()
	if err != nil {
		return err
	}
	host := buildHost(cfg, cmd.OutOrStdout(), logs)
	manager, err := buildManager(cfg, session, host, logs)
	if err != nil {
		return err
	}
	manager.Start()

	theme := ui.ThemeByName(cfg.UI.Theme)
	model := ui.NewPickerPageModel(manager, buildSource(cfg, logs), ui.PickerOptions{
		Styles:       ui.NewStyles(theme),
		Logger:       logs.For(logging.CategoryUI),
		FetchTimeout: cfg.GetSourceTimeout(),
	})

	opts := []tea.ProgramOption{tea.WithOutput(os.Stderr)}
	if cfg.UI.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	final, err := tea.NewProgram(model, opts...).Run()
	if err != nil {
		return fmt.Errorf("picker failed: %w", err)
	}

	if m, ok := final.(ui.PickerPageModel); ok && m.Outcome() == ui.OutcomeOpen {
		// Interrupted before either action reached the host.
		manager.Cancel()
	}
	return nil
}

// loadManager builds a manager for the current session and loads it
// synchronously.
func loadManager(cmd *cobra.Command, host io.Writer) (*selection.Manager, error) {
	session, err := resolveSession()
	if err != nil {
		return nil, err
	}
	manager, err := buildManager(cfg, session, buildHost(cfg, host, logs), logs)
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.GetSourceTimeout())
	defer cancel()

	if err := manager.Load(ctx, buildSource(cfg, logs)); err != nil {
		return nil, err
	}
	return manager, nil
}

func runShow(cmd *cobra.Command, args []string) error {
	selected, _ := cmd.Flags().GetStringSlice("select")
	query, _ := cmd.Flags().GetString("search")
	groupName, _ := cmd.Flags().GetString("group")
	format, _ := cmd.Flags().GetString("format")

	field, err := roster.ParseGroupField(groupName)
	if err != nil {
		return err
	}
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown format %q (want text or json)", format)
	}

	// show never submits, so nothing reaches the host.
	manager, err := loadManager(cmd, io.Discard)
	if err != nil {
		return err
	}
	manager.SetGroupField(field)
	manager.SelectAll(selected)
	matches := manager.Search(query)
	if strings.TrimSpace(query) != "" && len(matches) == 0 {
		logs.For(logging.CategorySelection).Info("no name matches search, showing everyone",
			zap.String("query", query))
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		return writeDisplayJSON(out, manager)
	}
	writeDisplayText(out, manager)
	return nil
}

func runSubmit(cmd *cobra.Command, args []string) error {
	ids, _ := cmd.Flags().GetStringSlice("select")

	manager, err := loadManager(cmd, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(manager.Records()))
	for _, r := range manager.Records() {
		known[r.ID] = true
	}
	var unknown []string
	for _, id := range ids {
		if !known[id] {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("unknown record ids: %s", strings.Join(unknown, ", "))
	}

	manager.Start()
	manager.SelectAll(ids)
	p := manager.Submit()
	logs.For(logging.CategoryBridge).Debug("submitted", zap.String("payload", p.Encode()))
	return nil
}

func runSample(cmd *cobra.Command, args []string) error {
	data, err := json.MarshalIndent(roster.Sample(), "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func writeDisplayText(w io.Writer, manager *selection.Manager) {
	d := manager.Display()
	field := manager.GroupField()

	writeView := func(title string, v selection.View) {
		fmt.Fprintf(w, "%s (%d)\n", title, v.Len())
		for _, g := range v {
			key := g.Key
			if key == "" {
				key = "All"
			}
			if field != roster.GroupNone {
				key = field.Label() + ": " + key
			}
			fmt.Fprintf(w, "  %s\n", key)
			for _, r := range g.Records {
				fmt.Fprintf(w, "    %-4s %s %s (%s, platoon %s)\n", r.ID, r.Rank, r.Name, r.Appt, r.Subunit2)
			}
		}
	}
	writeView("Unselected", d.Unselected)
	writeView("Selected", d.Selected)
}

type groupJSON struct {
	Key string   `json:"key"`
	IDs []string `json:"ids"`
}

type displayJSON struct {
	ID         *string     `json:"id"`
	GroupBy    string      `json:"group_by"`
	Query      string      `json:"query,omitempty"`
	Selected   []groupJSON `json:"selected"`
	Unselected []groupJSON `json:"unselected"`
}

func writeDisplayJSON(w io.Writer, manager *selection.Manager) error {
	d := manager.Display()
	toGroups := func(v selection.View) []groupJSON {
		out := make([]groupJSON, 0, len(v))
		for _, g := range v {
			out = append(out, groupJSON{Key: g.Key, IDs: g.IDs()})
		}
		return out
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(displayJSON{
		ID:         manager.Session().IDPtr(),
		GroupBy:    manager.GroupField().String(),
		Query:      manager.Query(),
		Selected:   toGroups(d.Selected),
		Unselected: toGroups(d.Unselected),
	})
}
