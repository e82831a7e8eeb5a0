// Package terminal provides the physical terminal the renderer draws on.
package terminal

import "github.com/gdamore/tcell/v2"

type ClearType int

const (
	ClearAll ClearType = iota
	ClearFromCursorDown
	ClearUntilNewLine
)

// Terminal is the set of primitive operations the renderer needs. Every
// operation is synchronous; errors are reported as-is and never retried.
type Terminal interface {
	// Size returns the viewport dimensions in cells.
	Size() (width, height int, err error)

	// Write prints s at the cursor. s holds no control characters.
	Write(s string) error

	// LineFeed moves to column 0 of the next row, scrolling the viewport up
	// by one row when the cursor is already on the last row.
	LineFeed() error

	MoveTo(col, row int) error
	Clear(ct ClearType) error

	// ScrollUp shifts the viewport contents up by n rows. The cursor does
	// not move.
	ScrollUp(n int) error

	SetForeground(c tcell.Color) error
	ResetStyle() error
	HideCursor() error
	ShowCursor() error

	// Flush pushes pending output to the device.
	Flush() error
}
