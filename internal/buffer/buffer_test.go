package buffer

import "testing"

func TestInsertAndRemove(t *testing.T) {
	b := New(80)
	b.InsertString("hllo")
	b.GotoStart()
	b.MoveForward()
	b.Insert('e')
	if got := b.String(); got != "hello" {
		t.Fatalf("content = %q, want %q", got, "hello")
	}
	if b.Cursor() != 2 {
		t.Fatalf("cursor = %d, want 2", b.Cursor())
	}

	r, ok := b.RemoveCurrent()
	if !ok || r != 'l' {
		t.Fatalf("RemoveCurrent = %q,%v, want 'l',true", r, ok)
	}
	if b.Cursor() != 2 {
		t.Fatalf("cursor moved on remove: %d", b.Cursor())
	}
	b.GotoEnd()
	if _, ok := b.RemoveCurrent(); ok {
		t.Fatalf("RemoveCurrent at end should be a no-op")
	}
	if got := b.String(); got != "helo" {
		t.Fatalf("content = %q, want %q", got, "helo")
	}
}

func TestInsertRemoveInverse(t *testing.T) {
	for _, start := range []int{0, 2, 5} {
		b := FromString("abcde", 3)
		b.SetCursor(start)
		before := b.String()
		b.Insert('x')
		b.MoveBackward()
		b.RemoveCurrent()
		if b.String() != before || b.Cursor() != start {
			t.Fatalf("start %d: got %q cursor %d, want %q cursor %d", start, b.String(), b.Cursor(), before, start)
		}
	}
}

func TestMovementSaturates(t *testing.T) {
	b := FromString("ab", 10)
	b.MoveBackward()
	if b.Cursor() != 0 {
		t.Fatalf("cursor = %d, want 0", b.Cursor())
	}
	b.MoveForward()
	b.MoveForward()
	b.MoveForward()
	if !b.IsAtEnd() || b.Cursor() != 2 {
		t.Fatalf("cursor = %d, want 2 at end", b.Cursor())
	}
	b.SetCursor(-4)
	if !b.IsAtStart() {
		t.Fatalf("SetCursor(-4) should clamp to start")
	}
	b.SetCursor(99)
	if !b.IsAtEnd() {
		t.Fatalf("SetCursor(99) should clamp to end")
	}
}

func TestPeek(t *testing.T) {
	b := FromString("xyz", 10)
	if _, ok := b.Previous(); ok {
		t.Fatalf("Previous at start should be empty")
	}
	if r, ok := b.Current(); !ok || r != 'x' {
		t.Fatalf("Current = %q,%v", r, ok)
	}
	if r, ok := b.Next(); !ok || r != 'y' {
		t.Fatalf("Next = %q,%v", r, ok)
	}
	b.GotoEnd()
	if r, ok := b.Previous(); !ok || r != 'z' {
		t.Fatalf("Previous = %q,%v", r, ok)
	}
	if _, ok := b.Current(); ok {
		t.Fatalf("Current at end should be empty")
	}
	if _, ok := b.Next(); ok {
		t.Fatalf("Next at end should be empty")
	}
}

func TestIsAtLineStart(t *testing.T) {
	if !New(4).IsAtLineStart() {
		t.Fatalf("empty buffer should be at line start")
	}
	b := New(40)
	b.InsertString("a\n")
	if !b.IsAtLineStart() {
		t.Fatalf("after newline should be at line start")
	}
	b.InsertString("\t")
	if !b.IsAtLineStart() {
		t.Fatalf("after tab should be at line start")
	}
	b.Insert('x')
	if b.IsAtLineStart() {
		t.Fatalf("after rune should not be at line start")
	}
}

func TestPositionToCoord(t *testing.T) {
	tests := []struct {
		name string
		text string
		wrap int
		pos  int
		want Coord
	}{
		{"empty", "", 5, 0, Coord{}},
		{"origin", "abcdefghij", 5, 0, Coord{}},
		{"before wrap", "abcdefghij", 5, 4, Coord{Col: 4}},
		{"wrap boundary", "abcdefghij", 5, 5, Coord{Col: 0, Row: 1}},
		{"second wrap", "abcdefghij", 5, 10, Coord{Col: 0, Row: 2}},
		{"after newline", "ab\ncde", 3, 3, Coord{Col: 0, Row: 1}},
		{"newline then text", "ab\ncde", 3, 5, Coord{Col: 2, Row: 1}},
		{"newline then wrap", "ab\ncde", 3, 6, Coord{Col: 0, Row: 2}},
		{"wrap width equals length", "abc", 3, 3, Coord{Col: 0, Row: 1}},
		{"width one", "abc", 1, 2, Coord{Col: 0, Row: 2}},
		{"clamped", "ab", 5, 40, Coord{Col: 2}},
		{"wide runes", "ab漢字", 6, 3, Coord{Col: 4}},
		{"wide rune fills row", "ab漢字", 6, 4, Coord{Col: 0, Row: 1}},
		{"wide rune moves to next row", "ab漢字", 5, 4, Coord{Col: 2, Row: 1}},
		{"combining mark", "e\u0301x", 5, 3, Coord{Col: 2}},
	}
	for _, tt := range tests {
		b := FromString(tt.text, tt.wrap)
		if got := b.PositionToCoord(tt.pos); got != tt.want {
			t.Fatalf("%s: PositionToCoord(%d) = %+v, want %+v", tt.name, tt.pos, got, tt.want)
		}
	}
}

func TestPositionToCoordProperties(t *testing.T) {
	texts := []string{"", "a", "hello world", "fn main() {\n    1 + 1\n}\n", "\n\n\nxyz", "αβγδεζηθ"}
	for _, text := range texts {
		for wrap := 1; wrap <= 7; wrap++ {
			b := FromString(text, wrap)
			if got := b.PositionToCoord(0); got != (Coord{}) {
				t.Fatalf("%q/%d: origin = %+v", text, wrap, got)
			}
			for p := 0; p <= b.Len(); p++ {
				c := b.PositionToCoord(p)
				if c.Col < 0 || c.Col >= wrap || c.Row < 0 {
					t.Fatalf("%q/%d: PositionToCoord(%d) = %+v out of range", text, wrap, p, c)
				}
				if again := b.PositionToCoord(p); again != c {
					t.Fatalf("%q/%d: PositionToCoord(%d) not stable: %+v vs %+v", text, wrap, p, c, again)
				}
			}
		}
	}
}

func TestRewrapKeepsContentAndCursor(t *testing.T) {
	b := FromString("abcdef", 3)
	b.SetCursor(4)
	nb := b.Rewrap(2)
	if nb.String() != "abcdef" || nb.Cursor() != 4 || nb.WrapWidth() != 2 {
		t.Fatalf("Rewrap = %q cursor %d wrap %d", nb.String(), nb.Cursor(), nb.WrapWidth())
	}
	if b.WrapWidth() != 3 {
		t.Fatalf("Rewrap mutated receiver")
	}
	if got := nb.CursorCoord(); got != (Coord{Col: 0, Row: 2}) {
		t.Fatalf("CursorCoord = %+v", got)
	}
	if got := New(0).WrapWidth(); got != 1 {
		t.Fatalf("wrap width floor = %d, want 1", got)
	}
}
