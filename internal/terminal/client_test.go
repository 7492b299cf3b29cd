package terminal

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/stardust-blast/internal/board"
	"github.com/robalobadob/stardust-blast/internal/game"
	"github.com/robalobadob/stardust-blast/internal/gem"
)

// testClient plays a board where swapping (0,0) with (0,1) completes row 1.
func testClient(t *testing.T) (*Client, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)
	screen.SetSize(40, 12)

	b, err := board.FromKinds([][]gem.Kind{
		{0, 1, 2, 3},
		{1, 0, 0, 2},
		{2, 3, 1, 0},
	}, gem.Sequence(5, 6, 7))
	require.NoError(t, err)
	opts := game.Options{Moves: 5}
	return newClient(screen, game.NewWithBoard(b, opts), opts, nil), screen
}

func key(r rune) *tcell.EventKey { return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone) }

func TestCellAt(t *testing.T) {
	tests := []struct {
		sx, sy int
		want   board.Pos
		ok     bool
	}{
		{2, 2, board.Pos{X: 0, Y: 0}, true},
		{4, 2, board.Pos{X: 0, Y: 0}, true},
		{5, 2, board.Pos{X: 1, Y: 0}, true},
		{13, 4, board.Pos{X: 3, Y: 2}, true},
		{1, 2, board.Pos{}, false},
		{2, 1, board.Pos{}, false},
		{14, 2, board.Pos{}, false},
		{2, 5, board.Pos{}, false},
	}
	for _, tt := range tests {
		got, ok := cellAt(tt.sx, tt.sy, 4, 3)
		assert.Equal(t, tt.ok, ok, "(%d,%d)", tt.sx, tt.sy)
		assert.Equal(t, tt.want, got, "(%d,%d)", tt.sx, tt.sy)
	}

	for _, p := range []board.Pos{{X: 0, Y: 0}, {X: 3, Y: 1}} {
		sx, sy := screenPos(p)
		got, ok := cellAt(sx+1, sy, 4, 3)
		require.True(t, ok)
		assert.Equal(t, p, got)
	}
}

func TestKindColor(t *testing.T) {
	seen := map[tcell.Color]bool{}
	for k := 0; k < gem.MaxKinds; k++ {
		seen[KindColor(gem.Kind(k))] = true
	}
	assert.Len(t, seen, gem.MaxKinds, "every kind gets its own colour")
	assert.Equal(t, tcell.ColorGray, KindColor(gem.MaxKinds))
}

func TestChimeFreq(t *testing.T) {
	assert.Equal(t, 660.0, chimeFreq(0))
	assert.Equal(t, 660.0, chimeFreq(1))
	assert.Equal(t, 880.0, chimeFreq(3))
	assert.Equal(t, 1320.0, chimeFreq(50))

	var silent *Sound
	silent.Chime(2) // nil sound is a no-op
	silent.Close()
}

func TestKeys_MoveCursorWithinBoard(t *testing.T) {
	c, _ := testClient(t)

	assert.True(t, c.handleEvent(key('l')))
	assert.Equal(t, board.Pos{X: 1, Y: 0}, c.cursor)

	c.handleEvent(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone))
	assert.Equal(t, board.Pos{X: 1, Y: 0}, c.cursor, "clamped at the top edge")

	c.handleEvent(key('j'))
	c.handleEvent(key('j'))
	c.handleEvent(key('j'))
	assert.Equal(t, board.Pos{X: 1, Y: 2}, c.cursor, "clamped at the bottom edge")

	c.handleEvent(tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone))
	c.handleEvent(key('h'))
	assert.Equal(t, board.Pos{X: 0, Y: 2}, c.cursor)
}

func TestKeys_SelectAndSwap(t *testing.T) {
	c, _ := testClient(t)

	c.handleEvent(key(' '))
	require.NotNil(t, c.game.Selected())

	c.handleEvent(key('j'))
	c.handleEvent(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	assert.Nil(t, c.game.Selected())
	assert.Equal(t, 30, c.game.Score())
	assert.Equal(t, 4, c.game.MovesLeft())
	assert.True(t, strings.HasPrefix(c.message, "+30"), c.message)
}

func TestKeys_Hint(t *testing.T) {
	c, _ := testClient(t)
	c.handleEvent(key('?'))
	assert.Equal(t, []board.Pos{{X: 0, Y: 0}, {X: 0, Y: 1}}, c.hint)
}

func TestKeys_Quit(t *testing.T) {
	c, _ := testClient(t)
	assert.False(t, c.handleEvent(key('q')))
	assert.False(t, c.handleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
	assert.False(t, c.handleEvent(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModNone)))
}

func TestRun_QuitKeyReturns(t *testing.T) {
	c, screen := testClient(t)
	errc := make(chan error, 1)
	go func() { errc <- c.Run(context.Background()) }()

	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after q")
	}
}

func TestPump_StopsOnceLoopIsGone(t *testing.T) {
	c, screen := testClient(t)
	events := make(chan tcell.Event) // no reader, like a loop that has returned
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		c.pump(events, done)
		close(stopped)
	}()

	close(done)
	screen.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("pump blocked on an event nobody reads")
	}
}

func TestMouse_ClickSelectsOncePerPress(t *testing.T) {
	c, _ := testClient(t)
	x0, y0 := screenPos(board.Pos{X: 0, Y: 0})
	x1, y1 := screenPos(board.Pos{X: 0, Y: 1})

	c.handleEvent(tcell.NewEventMouse(x0+1, y0, tcell.Button1, tcell.ModNone))
	require.NotNil(t, c.game.Selected())

	// dragging with the button held is not a second click
	c.handleEvent(tcell.NewEventMouse(x1+1, y1, tcell.Button1, tcell.ModNone))
	assert.Equal(t, 0, c.game.Score())

	c.handleEvent(tcell.NewEventMouse(x1+1, y1, tcell.ButtonNone, tcell.ModNone))
	c.handleEvent(tcell.NewEventMouse(x1+1, y1, tcell.Button1, tcell.ModNone))
	assert.Equal(t, 30, c.game.Score())
	assert.Equal(t, board.Pos{X: 0, Y: 1}, c.cursor)
}

func TestRestart_NewBoard(t *testing.T) {
	c, _ := testClient(t)
	old := c.game.ID
	c.handleEvent(key('r'))
	assert.NotEqual(t, old, c.game.ID)
	assert.Equal(t, game.StatePlaying, c.game.State())
}

func TestDraw_GlyphsAndHeader(t *testing.T) {
	c, screen := testClient(t)
	c.draw()

	sx, sy := screenPos(board.Pos{X: 2, Y: 1})
	r, _, style, _ := screen.GetContent(sx+1, sy)
	assert.Equal(t, gemGlyph, r)
	fg, _, _ := style.Decompose()
	assert.Equal(t, KindColor(0), fg)

	var header []rune
	for x := originX; x < originX+14; x++ {
		r, _, _, _ := screen.GetContent(x, 0)
		header = append(header, r)
	}
	assert.Equal(t, "Stardust Blast", string(header))
	assert.False(t, c.dirty)
}
