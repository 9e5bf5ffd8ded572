package config

// UIConfig holds terminal picker configuration.
type UIConfig struct {
	// Theme is "light", "dark" or "auto" (detect from the terminal)
	Theme string `yaml:"theme"`

	// GroupBy is the initial group field: none, rank, appt, subunit2
	GroupBy string `yaml:"group_by"`

	// AltScreen renders the picker in the terminal's alternate screen
	AltScreen bool `yaml:"alt_screen"`
}

// ValidThemes lists the accepted theme names.
var ValidThemes = []string{"auto", "light", "dark"}

// DefaultUIConfig returns UI defaults.
func DefaultUIConfig() UIConfig {
	return UIConfig{
		Theme:     "auto",
		GroupBy:   "none",
		AltScreen: true,
	}
}
