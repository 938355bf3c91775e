package tui

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"
)

// ErrNotInteractive is returned by Run when the sweep screen cannot take
// over the terminal. The wrapped message names the reason.
var ErrNotInteractive = errors.New("tui needs an interactive terminal; use convert instead")

// terminal describes where the sweep screen would run.
type terminal struct {
	getenv  func(string) string
	in, out uintptr
}

func stdTerminal() terminal {
	return terminal{getenv: os.Getenv, in: os.Stdin.Fd(), out: os.Stdout.Fd()}
}

// check returns nil when keys can be read and the alt screen drawn.
// DATASWEEPER_NON_INTERACTIVE=1 and CI force batch use even on a tty.
func (t terminal) check() error {
	switch {
	case t.getenv("DATASWEEPER_NON_INTERACTIVE") == "1":
		return fmt.Errorf("%w (DATASWEEPER_NON_INTERACTIVE=1)", ErrNotInteractive)
	case t.getenv("CI") != "":
		return fmt.Errorf("%w (CI is set)", ErrNotInteractive)
	case !term.IsTerminal(int(t.in)):
		return fmt.Errorf("%w (stdin is not a terminal)", ErrNotInteractive)
	case !term.IsTerminal(int(t.out)):
		return fmt.Errorf("%w (stdout is not a terminal)", ErrNotInteractive)
	}
	return nil
}
