package game

import (
	"github.com/robalobadob/stardust-blast/internal/board"
	"github.com/robalobadob/stardust-blast/internal/gem"
)

// View is the read-only snapshot handed to renderers and API clients.
// Grid is indexed [y][x].
type View struct {
	ID        string      `json:"id"`
	Cols      int         `json:"cols"`
	Rows      int         `json:"rows"`
	Grid      [][]gem.Gem `json:"grid"`
	Selected  *board.Pos  `json:"selected"`
	Score     int         `json:"score"`
	MovesLeft int         `json:"movesLeft"`
	MovesUsed int         `json:"movesUsed"`
	State     State       `json:"state"`
}

// View copies the current board and counters.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.board
	grid := make([][]gem.Gem, b.Rows())
	for y := range grid {
		grid[y] = make([]gem.Gem, b.Cols())
		for x := range grid[y] {
			grid[y][x] = b.TokenAt(x, y)
		}
	}

	var sel *board.Pos
	if s.selected != nil {
		p := *s.selected
		sel = &p
	}

	return View{
		ID:        s.ID,
		Cols:      b.Cols(),
		Rows:      b.Rows(),
		Grid:      grid,
		Selected:  sel,
		Score:     s.score,
		MovesLeft: s.movesLeft,
		MovesUsed: s.movesUsed,
		State:     s.state,
	}
}
