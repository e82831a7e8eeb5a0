package app

import (
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
)

// Decoder turns raw terminal input into key events. Incomplete escape
// sequences and partial UTF-8 runes stay buffered until more bytes arrive.
type Decoder struct {
	pending []byte
}

func (d *Decoder) Feed(data []byte) []*tcell.EventKey {
	buf := append(d.pending, data...)
	var out []*tcell.EventKey
	for len(buf) > 0 {
		if buf[0] == 0x1b {
			n, ev := decodeEscape(buf)
			if n == 0 {
				break
			}
			if ev != nil {
				out = append(out, ev)
			}
			buf = buf[n:]
			continue
		}
		if buf[0] >= utf8.RuneSelf {
			if !utf8.FullRune(buf) {
				break
			}
			r, size := utf8.DecodeRune(buf)
			if r != utf8.RuneError {
				out = append(out, tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
			}
			buf = buf[size:]
			continue
		}
		if ev := decodeByte(buf[0]); ev != nil {
			out = append(out, ev)
		}
		buf = buf[1:]
	}
	d.pending = append(d.pending[:0], buf...)
	return out
}

// Flush reports a lone buffered ESC once no more input followed it.
func (d *Decoder) Flush() []*tcell.EventKey {
	if len(d.pending) == 1 && d.pending[0] == 0x1b {
		d.pending = d.pending[:0]
		return []*tcell.EventKey{tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)}
	}
	return nil
}

func decodeByte(b byte) *tcell.EventKey {
	switch b {
	case '\r':
		return tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone)
	case '\n':
		return tcell.NewEventKey(tcell.KeyCtrlJ, 0, tcell.ModNone)
	case '\t':
		return tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone)
	case 127:
		return tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone)
	case 8:
		return tcell.NewEventKey(tcell.KeyBackspace, 0, tcell.ModNone)
	}
	if b < ' ' {
		// Control codes sit 64 below their key: 0x01 is Ctrl+A.
		return tcell.NewEventKey(tcell.KeyCtrlSpace+tcell.Key(b), 0, tcell.ModCtrl)
	}
	return tcell.NewEventKey(tcell.KeyRune, rune(b), tcell.ModNone)
}

var csiKeys = map[string]tcell.Key{
	"A": tcell.KeyUp, "B": tcell.KeyDown, "C": tcell.KeyRight, "D": tcell.KeyLeft,
	"H": tcell.KeyHome, "F": tcell.KeyEnd,
	"1~": tcell.KeyHome, "7~": tcell.KeyHome, "4~": tcell.KeyEnd, "8~": tcell.KeyEnd,
	"3~": tcell.KeyDelete, "2~": tcell.KeyInsert, "5~": tcell.KeyPgUp, "6~": tcell.KeyPgDn,
}

// decodeEscape returns how many bytes the sequence at buf[0] spans and the
// key it stands for. A zero length means the sequence is still incomplete.
func decodeEscape(buf []byte) (int, *tcell.EventKey) {
	if len(buf) < 2 {
		return 0, nil
	}
	switch buf[1] {
	case '[', 'O':
		for i := 2; i < len(buf) && i < 16; i++ {
			c := buf[i]
			if c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c == '~' {
				return i + 1, csiKey(string(buf[2 : i+1]))
			}
		}
		if len(buf) >= 16 {
			// Not a sequence we understand; drop the introducer.
			return 2, nil
		}
		return 0, nil
	case '\r':
		return 2, tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModAlt)
	case 0x7f:
		return 2, tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModAlt)
	case 0x1b:
		return 1, tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)
	}
	if buf[1] >= ' ' && buf[1] < utf8.RuneSelf {
		return 2, tcell.NewEventKey(tcell.KeyRune, rune(buf[1]), tcell.ModAlt)
	}
	return 1, tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)
}

// csiKey maps the tail of a CSI sequence. A modifier parameter as in
// "1;5C" or "3;5~" is folded into the event.
func csiKey(tail string) *tcell.EventKey {
	mod := tcell.ModNone
	if i := strings.LastIndexByte(tail, ';'); i >= 0 {
		final := tail[len(tail)-1:]
		switch tail[i+1 : len(tail)-1] {
		case "2":
			mod = tcell.ModShift
		case "3":
			mod = tcell.ModAlt
		case "5":
			mod = tcell.ModCtrl
		}
		if final == "~" {
			tail = tail[:i] + final
		} else {
			tail = final
		}
	}
	if k, ok := csiKeys[tail]; ok {
		return tcell.NewEventKey(k, 0, mod)
	}
	return nil
}
