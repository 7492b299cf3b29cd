// internal/game/types.go
//
// Core type definitions for a match-3 game session.
// Defines:
//   - State:   coarse session state (playing/finished).
//   - Options: rules for a new session (board size, kinds, moves, scoring).
//   - Result:  outcome of one swap attempt, including the whole cascade.
//   - Session: board + score + move counter + advisory selection.

package game

import (
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/stardust-blast/internal/board"
	"github.com/robalobadob/stardust-blast/internal/config"
	"github.com/robalobadob/stardust-blast/internal/gem"
)

// State is the coarse lifecycle of a session.
type State string

const (
	StatePlaying  State = "playing"
	StateFinished State = "finished"
)

var (
	ErrOutOfBounds  = errors.New("position out of bounds")
	ErrNotAdjacent  = errors.New("positions are not adjacent")
	ErrGameFinished = errors.New("game finished")
	ErrCascadeLimit = errors.New("cascade limit exceeded")
)

const (
	defaultCols         = 8
	defaultRows         = 8
	defaultMoves        = 20
	defaultPointsPerGem = 10
	defaultMaxCascade   = 1000
	settleRounds        = 1000
)

// Options configures a new session.
type Options struct {
	Cols         int
	Rows         int
	Kinds        int
	Moves        int   // accepted swaps allowed before the session finishes
	PointsPerGem int   // score per removed gem
	MaxCascade   int   // collapse passes per swap before giving up; 0 = unbounded
	Seed         int64 // gem source seed; 0 = time-based
	StableStart  bool  // re-roll the opening board until it holds no run
}

// DefaultOptions returns the classic 8×8, six-kind, twenty-move game.
func DefaultOptions() Options {
	return Options{
		Cols:         defaultCols,
		Rows:         defaultRows,
		Kinds:        gem.DefaultKinds,
		Moves:        defaultMoves,
		PointsPerGem: defaultPointsPerGem,
		MaxCascade:   defaultMaxCascade,
		StableStart:  true,
	}
}

// OptionsFromConfig maps environment board settings onto Options.
func OptionsFromConfig(c config.Board) Options {
	return Options{
		Cols:         c.Cols,
		Rows:         c.Rows,
		Kinds:        c.Kinds,
		Moves:        c.Moves,
		PointsPerGem: c.PointsPerGem,
		MaxCascade:   c.MaxCascade,
		StableStart:  c.StableStart,
	}
}

// Result reports one swap attempt. A rejected (no-match) swap has Accepted=false
// and leaves the board, score and move counter untouched.
type Result struct {
	Accepted   bool          `json:"accepted"`
	Removed    int           `json:"removed"`    // gems removed across the whole cascade
	ScoreDelta int           `json:"scoreDelta"` // Removed × PointsPerGem
	Cascades   int           `json:"cascades"`   // collapse passes that removed gems
	Matches    []board.Match `json:"matches"`    // runs created by the swap itself
	State      State         `json:"state"`
}

// Session holds one player's board and counters. All methods are safe for
// concurrent use; each swap and its cascade complete under one lock.
type Session struct {
	mu sync.Mutex

	ID        string
	Seed      int64
	CreatedAt time.Time
	Owner     string // player (user or guest ID) allowed to move; empty means anyone

	opts      Options
	board     *board.Board
	selected  *board.Pos
	score     int
	movesLeft int
	movesUsed int
	state     State
}
