package game

import "github.com/robalobadob/stardust-blast/internal/board"

// Hint returns the first swap, in row-major order trying the right then the
// lower neighbour, that would create a run. ok is false when no swap on the
// board matches. The live board is never touched.
func (s *Session) Hint() (a, b board.Pos, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return FindMove(s.board)
}

// FindMove searches a clone of bd for a matching swap.
func FindMove(bd *board.Board) (a, b board.Pos, ok bool) {
	c := bd.Clone()
	for y := 0; y < c.Rows(); y++ {
		for x := 0; x < c.Cols(); x++ {
			p := board.Pos{X: x, Y: y}
			for _, q := range []board.Pos{{X: x + 1, Y: y}, {X: x, Y: y + 1}} {
				if !c.InBounds(q.X, q.Y) || c.TokenAt(x, y).Kind == c.TokenAt(q.X, q.Y).Kind {
					continue
				}
				c.Swap(p, q)
				found := len(c.FindMatches()) > 0
				c.Swap(p, q)
				if found {
					return p, q, true
				}
			}
		}
	}
	return board.Pos{}, board.Pos{}, false
}
