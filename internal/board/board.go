// internal/board/board.go
//
// Board state machine for a single match-3 grid.
// Responsibilities:
//   - Own a fixed cols×rows grid where every cell always holds a gem.
//   - Swap two cells in place (adjacency is the caller's contract).
//   - Scan the whole grid for runs of MinRun or more and mark them.
//   - Collapse marked cells: survivors fall, vacated cells refill from the Source.
//
// Notes:
//   - Removal marks are transient; they are only set between FindMatches and the
//     following Collapse, and every other mutation leaves them cleared.
//   - Cells are stored row-major in a flat slice.
package board

import (
	"strings"

	"github.com/robalobadob/stardust-blast/internal/gem"
)

type cell struct {
	gem    gem.Gem
	marked bool
}

// Board is a fixed-size grid of gems. It is not safe for concurrent use.
type Board struct {
	cols, rows int
	cells      []cell
	src        gem.Source
}

// New builds a cols×rows board filled independently at random from src.
// Dimensions below 1 are raised to 1. The fill is not guaranteed match-free;
// see Settle.
func New(cols, rows int, src gem.Source) *Board {
	cols, rows = max(cols, 1), max(rows, 1)
	b := &Board{
		cols:  cols,
		rows:  rows,
		cells: make([]cell, cols*rows),
		src:   src,
	}
	for x := 0; x < cols; x++ {
		for y := 0; y < rows; y++ {
			b.cells[b.idx(x, y)] = cell{gem: src.Next()}
		}
	}
	return b
}

// FromKinds builds a board from explicit kinds indexed [y][x].
// src supplies refills for later collapses.
func FromKinds(grid [][]gem.Kind, src gem.Source) (*Board, error) {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return nil, ErrEmptyGrid
	}
	rows, cols := len(grid), len(grid[0])
	b := &Board{cols: cols, rows: rows, cells: make([]cell, cols*rows), src: src}
	for y, line := range grid {
		if len(line) != cols {
			return nil, ErrRaggedGrid
		}
		for x, k := range line {
			b.cells[b.idx(x, y)] = cell{gem: gem.Gem{Kind: k}}
		}
	}
	return b, nil
}

func (b *Board) idx(x, y int) int { return y*b.cols + x }

func (b *Board) kind(x, y int) gem.Kind { return b.cells[b.idx(x, y)].gem.Kind }

// Cols returns the grid width.
func (b *Board) Cols() int { return b.cols }

// Rows returns the grid height.
func (b *Board) Rows() int { return b.rows }

// InBounds reports whether (x, y) addresses a cell.
func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.cols && y < b.rows
}

// TokenAt returns the gem at (x, y). Callers check InBounds first.
func (b *Board) TokenAt(x, y int) gem.Gem { return b.cells[b.idx(x, y)].gem }

// Marked reports whether (x, y) is marked for removal by the last FindMatches.
func (b *Board) Marked(x, y int) bool { return b.cells[b.idx(x, y)].marked }

// Swap exchanges the gems at p and q. It does not check adjacency.
func (b *Board) Swap(p, q Pos) {
	i, j := b.idx(p.X, p.Y), b.idx(q.X, q.Y)
	b.cells[i], b.cells[j] = b.cells[j], b.cells[i]
}

// FindMatches clears every mark, then scans rows and columns for runs of at
// least MinRun identical kinds. Each run is marked and reported once per
// direction; a cell where a horizontal and a vertical run cross is marked once
// but appears in both descriptors. A stable board yields nil.
func (b *Board) FindMatches() []Match {
	b.ClearMarks()

	var matches []Match
	for y := 0; y < b.rows; y++ {
		start := 0
		for x := 1; x <= b.cols; x++ {
			if x < b.cols && b.kind(x, y) == b.kind(start, y) {
				continue
			}
			if n := x - start; n >= MinRun {
				for i := start; i < x; i++ {
					b.cells[b.idx(i, y)].marked = true
				}
				matches = append(matches, Match{Dir: Horizontal, Line: y, Start: start, Length: n})
			}
			start = x
		}
	}

	for x := 0; x < b.cols; x++ {
		start := 0
		for y := 1; y <= b.rows; y++ {
			if y < b.rows && b.kind(x, y) == b.kind(x, start) {
				continue
			}
			if n := y - start; n >= MinRun {
				for i := start; i < y; i++ {
					b.cells[b.idx(x, i)].marked = true
				}
				matches = append(matches, Match{Dir: Vertical, Line: x, Start: start, Length: n})
			}
			start = y
		}
	}
	return matches
}

// Collapse removes every marked gem. In each column the survivors settle toward
// the bottom keeping their order and the vacated top cells are refilled from
// the source. Returns the number of gems removed; 0 means nothing was marked.
func (b *Board) Collapse() int {
	removed := 0
	for x := 0; x < b.cols; x++ {
		write := b.rows - 1
		for y := b.rows - 1; y >= 0; y-- {
			c := b.cells[b.idx(x, y)]
			if c.marked {
				removed++
				continue
			}
			b.cells[b.idx(x, write)] = cell{gem: c.gem}
			write--
		}
		for y := write; y >= 0; y-- {
			b.cells[b.idx(x, y)] = cell{gem: b.src.Next()}
		}
	}
	return removed
}

// Settle re-draws matched cells until the grid holds no run, giving up after
// maxRounds. It reports whether the board ended stable. Marks are always
// cleared on return.
func (b *Board) Settle(maxRounds int) bool {
	defer b.ClearMarks()
	for i := 0; i < maxRounds; i++ {
		if len(b.FindMatches()) == 0 {
			return true
		}
		for j := range b.cells {
			if b.cells[j].marked {
				b.cells[j] = cell{gem: b.src.Next()}
			}
		}
	}
	return len(b.FindMatches()) == 0
}

// Clone returns an independent copy of the grid that shares the gem source.
func (b *Board) Clone() *Board {
	c := &Board{cols: b.cols, rows: b.rows, src: b.src, cells: make([]cell, len(b.cells))}
	copy(c.cells, b.cells)
	return c
}

// ClearMarks drops every removal mark, e.g. after an aborted cascade.
func (b *Board) ClearMarks() {
	for i := range b.cells {
		b.cells[i].marked = false
	}
}

// String renders one line per row with a digit per kind.
func (b *Board) String() string {
	var sb strings.Builder
	for y := 0; y < b.rows; y++ {
		for x := 0; x < b.cols; x++ {
			sb.WriteByte('0' + byte(b.kind(x, y)))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
