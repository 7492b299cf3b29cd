package terminal

import (
	"github.com/gdamore/tcell/v2"

	"github.com/robalobadob/stardust-blast/internal/board"
	"github.com/robalobadob/stardust-blast/internal/gem"
)

const (
	gemGlyph = '●'
	cellW    = 3 // " ● "
	originX  = 2
	originY  = 2
)

// kindColors indexes by gem.Kind; MaxKinds entries.
var kindColors = [gem.MaxKinds]tcell.Color{
	tcell.ColorRed,
	tcell.ColorGreen,
	tcell.ColorBlue,
	tcell.ColorYellow,
	tcell.ColorPurple,
	tcell.ColorOrange,
	tcell.ColorTeal,
	tcell.ColorWhite,
}

// KindColor returns the foreground colour used for a gem kind.
func KindColor(k gem.Kind) tcell.Color {
	if int(k) >= len(kindColors) {
		return tcell.ColorGray
	}
	return kindColors[k]
}

// screenPos returns the top-left screen cell of grid position p.
func screenPos(p board.Pos) (x, y int) {
	return originX + p.X*cellW, originY + p.Y
}

// cellAt maps a screen coordinate (e.g. a mouse click) onto the grid.
func cellAt(sx, sy, cols, rows int) (board.Pos, bool) {
	if sx < originX || sy < originY {
		return board.Pos{}, false
	}
	p := board.Pos{X: (sx - originX) / cellW, Y: sy - originY}
	if p.X >= cols || p.Y >= rows {
		return board.Pos{}, false
	}
	return p, true
}

// footerRow is the first screen row below a grid of the given height.
func footerRow(rows int) int { return originY + rows + 1 }
