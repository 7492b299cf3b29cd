// internal/board/types.go
//
// Core type definitions for the match-3 board.
// Defines:
//   - Pos:       a grid coordinate (X = column, Y = row, Y grows downward).
//   - Direction: orientation of a detected run.
//   - Match:     descriptor of one run of three or more identical gems.

package board

import (
	"errors"
	"fmt"
)

// MinRun is the shortest run of identical gems that counts as a match.
const MinRun = 3

var (
	ErrEmptyGrid  = errors.New("board: grid must have at least one row and one column")
	ErrRaggedGrid = errors.New("board: all rows must have the same length")
)

// Pos addresses a single cell.
type Pos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Pos) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Adjacent reports whether p and q are orthogonal neighbours (Manhattan distance 1).
func (p Pos) Adjacent(q Pos) bool {
	dx, dy := abs(p.X-q.X), abs(p.Y-q.Y)
	return dx+dy == 1
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Direction is the orientation of a run.
type Direction uint8

const (
	Horizontal Direction = iota
	Vertical
)

func (d Direction) String() string {
	if d == Vertical {
		return "V"
	}
	return "H"
}

// MarshalText encodes a direction as "H" or "V".
func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText accepts "H" or "V".
func (d *Direction) UnmarshalText(b []byte) error {
	switch string(b) {
	case "H":
		*d = Horizontal
	case "V":
		*d = Vertical
	default:
		return fmt.Errorf("board: unknown direction %q", b)
	}
	return nil
}

// Match describes one run. Line is the row for Horizontal runs and the column
// for Vertical runs; Start is the offset of the first cell along that line.
type Match struct {
	Dir    Direction `json:"direction"`
	Line   int       `json:"line"`
	Start  int       `json:"start"`
	Length int       `json:"length"`
}

// Cells lists the positions covered by the run.
func (m Match) Cells() []Pos {
	out := make([]Pos, m.Length)
	for i := range out {
		if m.Dir == Horizontal {
			out[i] = Pos{X: m.Start + i, Y: m.Line}
		} else {
			out[i] = Pos{X: m.Line, Y: m.Start + i}
		}
	}
	return out
}
