// Package theme provides color theming for the md4qt CLI's AST output.
package theme

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color palette the AST printer and viewer use.
type Theme struct {
	Primary       lipgloss.Color // Block item names
	Secondary     lipgloss.Color // Inline item names
	Literal       lipgloss.Color // Text content previews
	Attr          lipgloss.Color // URLs, labels, syntax names
	Muted         lipgloss.Color // Positions, tree guides
	Error         lipgloss.Color // Errors
	GradientStart lipgloss.Color // Title gradient start (the viewer uses fixed colors)
	GradientEnd   lipgloss.Color // Title gradient end (the viewer uses fixed colors)
}

// Default theme.
var defaultTheme = &Theme{
	Primary:       lipgloss.Color("99"),  // Purple for block nodes
	Secondary:     lipgloss.Color("170"), // Pink for inline nodes
	Literal:       lipgloss.Color("252"), // Near-white text
	Attr:          lipgloss.Color("42"),  // Green attributes
	Muted:         lipgloss.Color("240"), // Dim gray positions
	Error:         lipgloss.Color("196"), // Red
	GradientStart: lipgloss.Color("99"),  // Purple
	GradientEnd:   lipgloss.Color("205"), // Pink
}

// Dark theme: brighter colors for dark backgrounds.
var darkTheme = &Theme{
	Primary:       lipgloss.Color("141"),
	Secondary:     lipgloss.Color("213"),
	Literal:       lipgloss.Color("231"),
	Attr:          lipgloss.Color("46"),
	Muted:         lipgloss.Color("243"),
	Error:         lipgloss.Color("196"),
	GradientStart: lipgloss.Color("141"),
	GradientEnd:   lipgloss.Color("213"),
}

// Light theme: darker accents for light backgrounds.
var lightTheme = &Theme{
	Primary:       lipgloss.Color("55"),
	Secondary:     lipgloss.Color("125"),
	Literal:       lipgloss.Color("16"),
	Attr:          lipgloss.Color("28"),
	Muted:         lipgloss.Color("246"),
	Error:         lipgloss.Color("160"),
	GradientStart: lipgloss.Color("55"),
	GradientEnd:   lipgloss.Color("125"),
}

// themes is the registry of all available themes.
var themes = map[string]*Theme{
	"default": defaultTheme,
	"dark":    darkTheme,
	"light":   lightTheme,
}

// current holds the currently active theme.
var current *Theme

// Get returns the theme with the given name.
// Returns an error if the theme does not exist.
func Get(name string) (*Theme, error) {
	theme, ok := themes[name]
	if !ok {
		return nil, fmt.Errorf("theme not found: %s", name)
	}

	return theme, nil
}

// Load loads the theme with the given name as the current theme.
// Returns an error if the theme does not exist.
func Load(name string) error {
	theme, err := Get(name)
	if err != nil {
		return err
	}
	current = theme

	return nil
}

// Current returns the currently active theme.
// If no theme has been loaded, returns the default theme.
func Current() *Theme {
	if current == nil {
		return defaultTheme
	}

	return current
}

// Available returns a sorted list of all available theme names.
func Available() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
