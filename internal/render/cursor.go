package render

// Bound is the viewport size at the last measurement.
type Bound struct {
	Width  int
	Height int
}

// Pos is a physical cell position inside the viewport.
type Pos struct {
	Col int
	Row int
}

// Cursor is the bookkeeping side of the engine: where the physical cursor
// is, where the current prompt starts, and one saved position slot. It never
// talks to the terminal.
type Cursor struct {
	Bound       Bound
	Pos         Pos
	StartingRow int
	saved       Pos
}

func (c *Cursor) LastRow() int {
	if c.Bound.Height < 1 {
		return 0
	}
	return c.Bound.Height - 1
}

// OverflowByNewLines is how many rows the viewport must scroll before n more
// rows can be added below the current one.
func (c *Cursor) OverflowByNewLines(n int) int {
	return overflow(c.Pos.Row+n, c.LastRow())
}

// InputOverflow is how many rows the viewport must scroll so that an input
// spanning relRow rows below the starting row stays visible.
func (c *Cursor) InputOverflow(relRow int) int {
	return overflow(c.StartingRow+relRow, c.LastRow())
}

func overflow(projected, last int) int {
	if projected <= last {
		return 0
	}
	return projected - last
}

// Shift moves every row reference up by n after the viewport scrolled.
func (c *Cursor) Shift(n int) {
	c.Pos.Row = satSub(c.Pos.Row, n)
	c.StartingRow = satSub(c.StartingRow, n)
	c.saved.Row = satSub(c.saved.Row, n)
}

func (c *Cursor) Save()    { c.saved = c.Pos }
func (c *Cursor) Restore() { c.Pos = c.saved }

func (c *Cursor) UseCurrentRowAsStartingRow() {
	c.StartingRow = c.Pos.Row
}

// Clamp pulls every position back inside the bound, for use after a resize.
func (c *Cursor) Clamp() {
	last := c.LastRow()
	c.Pos.Row = clampInt(c.Pos.Row, 0, last)
	c.Pos.Col = clampInt(c.Pos.Col, 0, c.Bound.Width)
	c.StartingRow = clampInt(c.StartingRow, 0, last)
	c.saved.Row = clampInt(c.saved.Row, 0, last)
	c.saved.Col = clampInt(c.saved.Col, 0, c.Bound.Width)
}

func satSub(v, n int) int {
	if v < n {
		return 0
	}
	return v - n
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
