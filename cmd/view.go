// This file contains the view command: an interactive, scrollable AST
// browser built on Bubble Tea.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/igormironchik/md4qt/internal/mderrs"
	"github.com/igormironchik/md4qt/md"
)

const (
	// viewerHeaderLines is the space the title and separator take.
	viewerHeaderLines = 2

	// viewerFooterLines is the space the help bar takes.
	viewerFooterLines = 1

	// gradientStartHex and gradientEndHex are the title gradient
	// endpoints.
	gradientStartHex = "#7D56F4"
	gradientEndHex   = "#F25D94"
)

// ViewCmd opens a scrollable viewer over the parsed AST.
//
// Keys: arrows and page keys scroll, q or esc quits.
type ViewCmd struct {
	// Path is the markdown file to view.
	Path string `arg:"" help:"Markdown file to view"`

	// Recursive follows local markdown links.
	Recursive bool `help:"Follow local markdown links" short:"r"`
}

// Run executes the view command.
func (c *ViewCmd) Run() error {
	if _, err := os.Stat(c.Path); err != nil {
		return &mderrs.InputNotFoundError{Path: c.Path, Err: err}
	}

	doc := md.NewParser().Parse(c.Path, c.Recursive)
	model := newViewerModel(c.Path, renderTree(doc, colorEnabled))

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("viewer failed: %w", err)
	}

	return nil
}

// viewerModel is the Bubble Tea model for the AST browser.
type viewerModel struct {
	title    string
	content  string
	viewport viewport.Model
	ready    bool
}

// newViewerModel creates a viewer over pre-rendered tree content.
func newViewerModel(title, content string) *viewerModel {
	return &viewerModel{
		title:   title,
		content: content,
	}
}

// Init implements tea.Model.
func (m *viewerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		height := msg.Height - viewerHeaderLines - viewerFooterLines
		if height < 1 {
			height = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.viewport.SetContent(m.content)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)

	return m, cmd
}

// View implements tea.Model.
func (m *viewerModel) View() string {
	if !m.ready {
		return "loading..."
	}

	help := lipgloss.NewStyle().Faint(true).
		Render("↑/↓ scroll · q quit")

	return gradientTitle(m.title) + "\n" + m.viewport.View() + "\n" + help
}

// gradientTitle renders the file name with a horizontal color
// gradient.
func gradientTitle(text string) string {
	start, err1 := colorful.Hex(gradientStartHex)
	end, err2 := colorful.Hex(gradientEndHex)
	if err1 != nil || err2 != nil {
		return text
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return text
	}

	var b strings.Builder
	for i, r := range runes {
		ratio := 0.0
		if len(runes) > 1 {
			ratio = float64(i) / float64(len(runes)-1)
		}
		c := start.BlendLuv(end, ratio)
		b.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.Hex())).
			Bold(true).
			Render(string(r)))
	}

	return b.String()
}
