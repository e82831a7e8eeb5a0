package printer

import "github.com/gdamore/tcell/v2"

// Palette maps classes to foreground colors.
type Palette struct {
	colors [ClassCustom + 1]tcell.Color
}

func DefaultPalette() Palette {
	var p Palette
	p.Set(ClassEvaluation, tcell.ColorWhite)
	p.Set(ClassOk, tcell.ColorBlue)
	p.Set(ClassWarning, tcell.ColorYellow)
	p.Set(ClassRawOutput, tcell.ColorGreen)
	p.Set(ClassShellOutput, tcell.ColorGreen)
	p.Set(ClassError, tcell.ColorRed)
	p.Set(ClassCustom, tcell.ColorWhite)
	return p
}

// Set assigns the color for class. Setting ClassCustom changes the color used
// for Custom items that carry no explicit color.
func (p *Palette) Set(class Class, color tcell.Color) {
	if class < 0 || class > ClassCustom || class == ClassNewLine {
		return
	}
	p.colors[class] = color
}

// Color resolves the color for item. NewLine items are layout only and
// report false.
func (p Palette) Color(item Item) (tcell.Color, bool) {
	switch item.Class {
	case ClassNewLine:
		return tcell.ColorDefault, false
	case ClassCustom:
		if item.HasColor {
			return item.Color, true
		}
		return p.colors[ClassCustom], true
	case ClassEvaluation, ClassOk, ClassWarning, ClassRawOutput, ClassShellOutput, ClassError:
		return p.colors[item.Class], true
	}
	return p.colors[ClassCustom], true
}
