package mderrs

import "fmt"

// InputNotFoundError indicates an input file does not exist or is not
// readable.
type InputNotFoundError struct {
	Path string
	Err  error
}

func (e *InputNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("input file %s: %v", e.Path, e.Err)
	}

	return fmt.Sprintf("input file not found: %s", e.Path)
}

func (e *InputNotFoundError) Unwrap() error {
	return e.Err
}

// NotMarkdownError indicates a path with an extension the parser does
// not recognize as markdown.
type NotMarkdownError struct {
	Path string
}

func (e *NotMarkdownError) Error() string {
	return fmt.Sprintf("not a markdown file: %s", e.Path)
}

// WatchError indicates the file watcher could not be established.
type WatchError struct {
	Path string
	Err  error
}

func (e *WatchError) Error() string {
	return fmt.Sprintf("cannot watch %s: %v", e.Path, e.Err)
}

func (e *WatchError) Unwrap() error {
	return e.Err
}

// ClipboardError indicates copying output to the system clipboard
// failed.
type ClipboardError struct {
	Err error
}

func (e *ClipboardError) Error() string {
	return fmt.Sprintf("cannot copy to clipboard: %v", e.Err)
}

func (e *ClipboardError) Unwrap() error {
	return e.Err
}
