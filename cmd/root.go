// Package cmd provides command-line interface implementations for the
// md4qt parser.
package cmd

import (
	"os"

	"github.com/mattn/go-isatty"

	kongcompletion "github.com/jotaen/kong-completion"

	"github.com/igormironchik/md4qt/internal/theme"
)

// CLI represents the root command structure for Kong.
type CLI struct {
	// Global flags (apply to all commands)
	NoColor bool   `help:"Disable colored output"       name:"no-color"`                                       //nolint:lll,revive // Kong struct tag
	Theme   string `help:"Color theme for tree output"  name:"theme"    default:"default" enum:"default,dark,light"` //nolint:lll,revive // Kong struct tag

	// Commands
	Parse      ParseCmd                  `cmd:"" help:"Parse markdown and print the positioned AST"` //nolint:lll,revive // Kong struct tag with alignment
	Watch      WatchCmd                  `cmd:"" help:"Re-parse and print on file changes"`          //nolint:lll,revive // Kong struct tag with alignment
	View       ViewCmd                   `cmd:"" help:"Browse the AST interactively"`                //nolint:lll,revive // Kong struct tag with alignment
	Version    VersionCmd                `cmd:"" help:"Show version info"`                           //nolint:lll,revive // Kong struct tag with alignment
	Completion kongcompletion.Completion `cmd:"" help:"Generate completions"`                        //nolint:lll,revive // Kong struct tag with alignment
}

// colorEnabled tells the printers whether styling is wanted.
var colorEnabled = true

// AfterApply is called by Kong after parsing flags but before running
// the command. It loads the selected theme and settles the color mode.
func (c *CLI) AfterApply() error {
	if err := theme.Load(c.Theme); err != nil {
		return err
	}

	colorEnabled = !c.NoColor &&
		(isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))

	return nil
}
