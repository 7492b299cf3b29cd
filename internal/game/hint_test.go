package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/robalobadob/stardust-blast/internal/board"
	"github.com/robalobadob/stardust-blast/internal/gem"
)

func TestHint_FindsFirstMatchingSwap(t *testing.T) {
	s := NewWithBoard(simpleMatch(t), DefaultOptions())
	before := s.board.String()

	a, b, ok := s.Hint()
	assert.True(t, ok)
	assert.Equal(t, board.Pos{X: 0, Y: 0}, a)
	assert.Equal(t, board.Pos{X: 0, Y: 1}, b)
	assert.Equal(t, before, s.board.String())
}

func TestHint_NoMoveAvailable(t *testing.T) {
	s := NewWithBoard(fixture(t, gem.Sequence(9), "01", "10"), DefaultOptions())
	_, _, ok := s.Hint()
	assert.False(t, ok)
}
