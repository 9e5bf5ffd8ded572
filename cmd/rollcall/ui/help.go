package ui

import (
	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# Selecting personnel

Records you have not picked are listed first, grouped by the current
**group by** field. Picked records follow under **Selected**.

| Key | Action |
|-----|--------|
| ↑ ↓ / k j | move |
| enter / space | select or deselect the record, or the whole group on a group row |
| a | select or deselect every visible record of the current group |
| / | search names (typos are tolerated); esc leaves the search box |
| tab | cycle group by: none, rank, appointment, platoon |
| s / ctrl+s | submit the selection |
| q / esc | cancel without submitting |

An empty search shows everybody. Searching never changes what is selected.
`

// renderHelp renders the help screen as markdown. It falls back to the raw
// text when the renderer cannot be built.
func renderHelp(theme Theme, width int) string {
	if width <= 0 || width > 100 {
		width = 80
	}
	style := "light"
	if theme.IsDark {
		style = "dark"
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := renderer.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return out
}
