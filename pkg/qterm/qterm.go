// Package qterm provides the QNX terminal size query.
package qterm

import (
	"golang.org/x/sys/unix"
)

// Size reported when the descriptor is not a terminal or has no size set
const (
	DefaultRows = 24
	DefaultCols = 80
)

// Tcgetsize returns the rows and columns of the terminal on fd. When the
// host has no size for fd the classic 24x80 is returned without error.
func Tcgetsize(fd int) (rows, cols int) {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil || ws.Row == 0 || ws.Col == 0 {
		return DefaultRows, DefaultCols
	}
	return int(ws.Row), int(ws.Col)
}
