// internal/game/engine.go
//
// Game engine for a single match-3 session.
// Responsibilities:
//   - Create sessions with a seeded gem source and an optionally settled board.
//   - Validate swap requests (bounds, adjacency, moves remaining).
//   - Run the swap → match → revert-or-cascade protocol.
//   - Track score and the move counter: playing → finished.
//
// Notes:
//   - A swap that makes no run is reverted and costs no move.
//   - A swap that makes a run is never reverted; the cascade runs until a scan
//     finds nothing or MaxCascade collapse passes have been spent.
package game

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/stardust-blast/internal/board"
	"github.com/robalobadob/stardust-blast/internal/gem"
)

// New constructs a session from opts. Zero-valued fields fall back to defaults.
func New(opts Options) *Session {
	opts = normalize(opts)
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	src := gem.NewRandom(opts.Kinds, opts.Seed)
	b := board.New(opts.Cols, opts.Rows, src)
	if opts.StableStart && !b.Settle(settleRounds) {
		log.Warn().Int64("seed", opts.Seed).Msg("opening board still holds a run")
	}
	return newSession(b, opts)
}

// NewWithBoard wraps an existing board, e.g. a fixture built with board.FromKinds.
// Board dimensions win over opts.Cols/Rows.
func NewWithBoard(b *board.Board, opts Options) *Session {
	opts = normalize(opts)
	opts.Cols, opts.Rows = b.Cols(), b.Rows()
	return newSession(b, opts)
}

func newSession(b *board.Board, opts Options) *Session {
	return &Session{
		ID:        randomID(),
		Seed:      opts.Seed,
		CreatedAt: time.Now().UTC(),
		opts:      opts,
		board:     b,
		movesLeft: opts.Moves,
		state:     StatePlaying,
	}
}

func normalize(o Options) Options {
	d := DefaultOptions()
	if o.Cols <= 0 {
		o.Cols = d.Cols
	}
	if o.Rows <= 0 {
		o.Rows = d.Rows
	}
	if o.Kinds <= 0 {
		o.Kinds = d.Kinds
	}
	o.Kinds = gem.ClampKinds(o.Kinds)
	if o.Moves <= 0 {
		o.Moves = d.Moves
	}
	if o.PointsPerGem <= 0 {
		o.PointsPerGem = d.PointsPerGem
	}
	if o.MaxCascade < 0 {
		o.MaxCascade = 0
	}
	return o
}

// Swap attempts to exchange a and b.
//
// Validation rules:
//   - Session must not be finished.
//   - Both positions must be on the board.
//   - Positions must be orthogonal neighbours.
//
// A swap that creates no run is undone and returns Accepted=false with no error.
func (s *Session) Swap(a, b board.Pos) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.swap(a, b)
}

func (s *Session) swap(a, b board.Pos) (Result, error) {
	if s.state == StateFinished {
		return Result{State: s.state}, ErrGameFinished
	}
	if !s.board.InBounds(a.X, a.Y) || !s.board.InBounds(b.X, b.Y) {
		return Result{State: s.state}, ErrOutOfBounds
	}
	if !a.Adjacent(b) {
		return Result{State: s.state}, ErrNotAdjacent
	}

	s.board.Swap(a, b)
	matches := s.board.FindMatches()
	if len(matches) == 0 {
		s.board.Swap(a, b)
		return Result{State: s.state}, nil
	}

	removed, cascades, err := Resolve(s.board, s.opts.MaxCascade)
	if err != nil {
		log.Error().Err(err).Str("game", s.ID).Int("cascades", cascades).Msg("cascade aborted")
	}

	delta := removed * s.opts.PointsPerGem
	s.score += delta
	s.movesLeft--
	s.movesUsed++
	if s.movesLeft <= 0 {
		s.state = StateFinished
	}

	log.Debug().
		Str("game", s.ID).
		Str("a", a.String()).
		Str("b", b.String()).
		Int("removed", removed).
		Int("cascades", cascades).
		Int("score", s.score).
		Msg("swap resolved")

	return Result{
		Accepted:   true,
		Removed:    removed,
		ScoreDelta: delta,
		Cascades:   cascades,
		Matches:    matches,
		State:      s.state,
	}, err
}

// Resolve runs the cascade on a board whose last FindMatches found runs:
// collapse, re-scan, repeat until a collapse removes nothing or a scan finds
// nothing. maxCascade caps the number of collapse passes (0 = unbounded); when
// the cap is hit with runs still on the board ErrCascadeLimit is returned and
// those runs stay unmarked on the grid.
func Resolve(b *board.Board, maxCascade int) (removed, cascades int, err error) {
	for {
		if maxCascade > 0 && cascades >= maxCascade {
			b.ClearMarks()
			return removed, cascades, ErrCascadeLimit
		}
		n := b.Collapse()
		if n == 0 {
			return removed, cascades, nil
		}
		removed += n
		cascades++
		if len(b.FindMatches()) == 0 {
			return removed, cascades, nil
		}
	}
}

// Select applies one pointer click using the anchor protocol:
//   - no anchor yet        → the clicked cell becomes the anchor;
//   - neighbour of anchor  → swap is attempted and the anchor cleared;
//   - anything else        → the anchor moves to the clicked cell.
//
// swapped reports whether a swap was attempted.
func (s *Session) Select(p board.Pos) (res Result, swapped bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.board.InBounds(p.X, p.Y) {
		return Result{State: s.state}, false, ErrOutOfBounds
	}
	if s.selected == nil || !s.selected.Adjacent(p) {
		s.selected = &p
		return Result{State: s.state}, false, nil
	}
	anchor := *s.selected
	s.selected = nil
	res, err = s.swap(anchor, p)
	return res, true, err
}

// ClearSelection drops the anchor, if any.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	s.selected = nil
	s.mu.Unlock()
}

// Selected returns a copy of the anchor, or nil.
func (s *Session) Selected() *board.Pos {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return nil
	}
	p := *s.selected
	return &p
}

// Score returns the accumulated score.
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// MovesLeft returns how many accepted swaps remain.
func (s *Session) MovesLeft() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.movesLeft
}

// MovesUsed returns how many swaps have been accepted.
func (s *Session) MovesUsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.movesUsed
}

// State reports the coarse session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// randomID returns a compact 16‑hex‑char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
