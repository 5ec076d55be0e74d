// Package clipboard implements ports.Clipboard on the system clipboard via
// github.com/atotto/clipboard (pbcopy on macOS, xclip/xsel/wl-copy on Linux,
// the Win32 API on Windows).
package clipboard

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// System writes to the operating system clipboard.
type System struct{}

// New returns the system clipboard sink.
func New() *System {
	return &System{}
}

// Available reports whether a clipboard utility was found.
func (s *System) Available() bool {
	return !clipboard.Unsupported
}

// WriteText replaces the clipboard contents with text.
func (s *System) WriteText(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard unavailable: no clipboard utility found")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard write: %w", err)
	}
	return nil
}
