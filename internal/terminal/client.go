// Package terminal is the interactive tcell front end.
//
// One goroutine polls tcell events into a channel; the main loop drains it and
// redraws on a ~60 FPS ticker. Only the main loop touches the Session.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/stardust-blast/internal/board"
	"github.com/robalobadob/stardust-blast/internal/game"
)

const frameInterval = 16 * time.Millisecond

// Client renders one Session and turns keys and clicks into moves.
type Client struct {
	screen tcell.Screen
	opts   game.Options
	game   *game.Session
	sound  *Sound

	cursor  board.Pos
	hint    []board.Pos
	message string
	buttons tcell.ButtonMask // last mouse state, so a held button fires once
	dirty   bool
}

// New starts a session from opts on an initialised screen. sound may be nil.
func New(screen tcell.Screen, opts game.Options, sound *Sound) *Client {
	return newClient(screen, game.New(opts), opts, sound)
}

func newClient(screen tcell.Screen, g *game.Session, opts game.Options, sound *Sound) *Client {
	return &Client{
		screen:  screen,
		opts:    opts,
		game:    g,
		sound:   sound,
		message: "arrows/hjkl move, space selects, ? hint, q quits",
		dirty:   true,
	}
}

// Session exposes the session being played.
func (c *Client) Session() *game.Session { return c.game }

// Run drives the event and draw loop until the player quits or ctx ends.
func (c *Client) Run(ctx context.Context) error {
	c.screen.EnableMouse()
	c.screen.HideCursor()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	done := make(chan struct{})
	defer close(done)
	go c.pump(events, done)

	c.draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !c.handleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			if c.dirty {
				c.draw()
			}
		}
	}
}

// pump forwards screen events until the screen is finalised or done closes.
func (c *Client) pump(events chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := c.screen.PollEvent()
		if ev == nil {
			return // screen finalised
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

// handleEvent applies one event and reports whether the loop should continue.
func (c *Client) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return c.handleKey(ev)
	case *tcell.EventMouse:
		c.handleMouse(ev)
	case *tcell.EventResize:
		c.screen.Sync()
		c.dirty = true
	}
	return true
}

func (c *Client) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		c.moveCursor(0, -1)
	case tcell.KeyDown:
		c.moveCursor(0, 1)
	case tcell.KeyLeft:
		c.moveCursor(-1, 0)
	case tcell.KeyRight:
		c.moveCursor(1, 0)
	case tcell.KeyEnter:
		c.selectAt(c.cursor)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case 'k':
			c.moveCursor(0, -1)
		case 'j':
			c.moveCursor(0, 1)
		case 'h':
			c.moveCursor(-1, 0)
		case 'l':
			c.moveCursor(1, 0)
		case ' ':
			c.selectAt(c.cursor)
		case '?':
			c.showHint()
		case 'r':
			c.restart()
		}
	}
	return true
}

func (c *Client) handleMouse(ev *tcell.EventMouse) {
	btn := ev.Buttons()
	pressed := btn&tcell.Button1 != 0 && c.buttons&tcell.Button1 == 0
	c.buttons = btn
	if !pressed {
		return
	}
	x, y := ev.Position()
	v := c.game.View()
	p, ok := cellAt(x, y, v.Cols, v.Rows)
	if !ok {
		return
	}
	c.cursor = p
	c.selectAt(p)
}

func (c *Client) moveCursor(dx, dy int) {
	v := c.game.View()
	nx, ny := c.cursor.X+dx, c.cursor.Y+dy
	if nx < 0 || ny < 0 || nx >= v.Cols || ny >= v.Rows {
		return
	}
	c.cursor = board.Pos{X: nx, Y: ny}
	c.dirty = true
}

// selectAt feeds one click into the session's anchor protocol.
func (c *Client) selectAt(p board.Pos) {
	c.dirty = true
	res, swapped, err := c.game.Select(p)
	switch {
	case errors.Is(err, game.ErrGameFinished):
		c.message = fmt.Sprintf("game over, final score %d. r for a new board", c.game.Score())
		return
	case errors.Is(err, game.ErrCascadeLimit):
		log.Warn().Str("game", c.game.ID).Msg("cascade limit reached")
	case err != nil:
		c.message = err.Error()
		return
	}
	if !swapped {
		c.message = fmt.Sprintf("selected %s", p)
		return
	}
	c.hint = nil
	if !res.Accepted {
		c.message = "no match"
		return
	}
	c.sound.Chime(res.Cascades)
	c.message = fmt.Sprintf("+%d (%d removed, %d cascades)", res.ScoreDelta, res.Removed, res.Cascades)
	if res.State == game.StateFinished {
		c.message = fmt.Sprintf("game over, final score %d. r for a new board", c.game.Score())
	}
	log.Debug().Str("game", c.game.ID).Int("delta", res.ScoreDelta).Msg("terminal swap")
}

func (c *Client) showHint() {
	c.dirty = true
	a, b, ok := c.game.Hint()
	if !ok {
		c.hint = nil
		c.message = "no moves left on this board"
		return
	}
	c.hint = []board.Pos{a, b}
	c.message = fmt.Sprintf("try %s with %s", a, b)
}

func (c *Client) restart() {
	opts := c.opts
	opts.Seed = 0
	c.game = game.New(opts)
	c.cursor = board.Pos{}
	c.hint = nil
	c.message = "new board"
	c.dirty = true
}

func (c *Client) draw() {
	c.dirty = false
	c.screen.Clear()
	v := c.game.View()

	drawText(c.screen, originX, 0, tcell.StyleDefault.Bold(true),
		fmt.Sprintf("Stardust Blast   score %d   moves %d   %s", v.Score, v.MovesLeft, v.State))

	for y := 0; y < v.Rows; y++ {
		for x := 0; x < v.Cols; x++ {
			p := board.Pos{X: x, Y: y}
			sx, sy := screenPos(p)
			bg := tcell.ColorDefault
			switch {
			case p == c.cursor:
				bg = tcell.ColorDarkSlateGray
			case v.Selected != nil && *v.Selected == p:
				bg = tcell.ColorNavy
			case c.isHint(p):
				bg = tcell.ColorDarkGreen
			}
			style := tcell.StyleDefault.Background(bg).Foreground(KindColor(v.Grid[y][x].Kind))
			c.screen.SetContent(sx, sy, ' ', nil, style)
			c.screen.SetContent(sx+1, sy, gemGlyph, nil, style)
			c.screen.SetContent(sx+2, sy, ' ', nil, style)
		}
	}

	drawText(c.screen, originX, footerRow(v.Rows), tcell.StyleDefault, c.message)
	c.screen.Show()
}

func (c *Client) isHint(p board.Pos) bool {
	for _, h := range c.hint {
		if h == p {
			return true
		}
	}
	return false
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, style)
	}
}
