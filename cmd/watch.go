// This file contains the watch command: re-parse a file whenever it
// changes and print the fresh AST.
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"

	"github.com/igormironchik/md4qt/internal/mderrs"
	"github.com/igormironchik/md4qt/md"
)

// WatchCmd watches one markdown file and reprints its AST on every
// write. Editors that replace the file on save are handled by
// watching the parent directory.
type WatchCmd struct {
	// Path is the markdown file to watch.
	Path string `arg:"" help:"Markdown file to watch"`

	// Recursive follows local markdown links on each re-parse.
	Recursive bool `help:"Follow local markdown links" short:"r"`
}

// Run executes the watch command. It blocks until interrupted.
func (c *WatchCmd) Run() error {
	if _, err := os.Stat(c.Path); err != nil {
		return &mderrs.InputNotFoundError{Path: c.Path, Err: err}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return &mderrs.WatchError{Path: c.Path, Err: err}
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: editors often rename-and-replace, which
	// drops a watch placed on the file itself.
	dir := filepath.Dir(c.Path)
	if err := watcher.Add(dir); err != nil {
		return &mderrs.WatchError{Path: dir, Err: err}
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	c.reparse()

	target := filepath.Clean(c.Path)
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			c.reparse()

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch: %v\n", watchErr)

		case <-interrupt:
			return nil
		}
	}
}

// reparse parses the watched file and prints the tree.
func (c *WatchCmd) reparse() {
	doc := md.NewParser().Parse(c.Path, c.Recursive)

	fmt.Print("\033[H\033[2J") // Clear the screen between renders.
	fmt.Print(renderTree(doc, colorEnabled))
}
