package cli

import (
	"io"
	"os"

	"golang.org/x/term"
)

// waitForKey returns a channel that closes once a single byte arrives on the
// input. When the input is a terminal it is switched to raw mode so that a
// bare keypress, not a full line, releases the wait; the returned restore
// function undoes that and must be called before the run exits. On a
// non-terminal input that reaches EOF the channel never closes and shutdown
// relies on the signal trigger alone.
func waitForKey(in io.Reader) (<-chan struct{}, func()) {
	restore := func() {}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		if state, err := term.MakeRaw(fd); err == nil {
			restore = func() { _ = term.Restore(fd, state) }
		}
	}

	ch := make(chan struct{})
	go func() {
		buf := make([]byte, 1)
		if _, err := in.Read(buf); err == nil {
			close(ch)
		}
	}()
	return ch, restore
}
