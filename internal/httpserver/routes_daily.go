// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start today's board (creates or reuses session)
//   - POST /daily/swap        → swap two cells on today's board
//   - GET  /daily/leaderboard → top 20 scores for today (or a given date)
//
// Everyone gets the same opening board and refill sequence for a given UTC
// date (seed = HMAC(salt, date)). Each player can submit one result per day;
// the result is written when the move counter runs out.
//
// Daily boards live in the shared session store, so GET /game/{id} and the
// hint route work for them and the idle-session pruner reclaims them. This
// file only keeps a small player|date index on top.

package httpserver

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/stardust-blast/internal/daily"
	"github.com/robalobadob/stardust-blast/internal/game"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv     *Server
	store   *daily.Store
	salt    string
	now     func() time.Time
	mu      sync.Mutex             // guards entries, byGame, day
	entries map[string]*dailyEntry // keyed by playerID|date
	byGame  map[string]*dailyEntry // keyed by game ID
	day     string                 // date the index was last used for
}

// dailyEntry links a player's day to a board in the session store.
type dailyEntry struct {
	GameID   string
	UserID   string
	Date     string
	Start    time.Time
	recorded bool
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:     s,
		store:   daily.NewStore(s.db),
		salt:    s.cfg.DailySalt,
		now:     time.Now,
		entries: make(map[string]*dailyEntry),
		byGame:  make(map[string]*dailyEntry),
	}
	s.daily = dd
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Post("/swap", dd.handleSwap)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// options returns the rules for today's board.
func (d *dailyServer) options(t time.Time) game.Options {
	opts := d.srv.opts
	opts.Seed = daily.Seed(t, d.salt)
	opts.StableStart = true
	return opts
}

// holds reports whether id is a daily board.
func (d *dailyServer) holds(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.byGame[id]
	return ok
}

// rollover forgets every entry from an earlier date. Caller holds d.mu.
func (d *dailyServer) rollover(date string) {
	if d.day == date {
		return
	}
	n := len(d.entries)
	d.entries = make(map[string]*dailyEntry)
	d.byGame = make(map[string]*dailyEntry)
	d.day = date
	if n > 0 {
		log.Info().Int("dropped", n).Str("date", date).Msg("daily index rolled over")
	}
}

// lookup returns the player's entry for date and its live board. An entry
// whose board has been pruned from the session store is dropped.
func (d *dailyServer) lookup(r *http.Request, key string) (*dailyEntry, *game.Session) {
	d.mu.Lock()
	e, ok := d.entries[key]
	d.mu.Unlock()
	if !ok {
		return nil, nil
	}
	g, err := d.srv.store.Get(r.Context(), e.GameID)
	if err != nil {
		d.mu.Lock()
		delete(d.entries, key)
		delete(d.byGame, e.GameID)
		d.mu.Unlock()
		return nil, nil
	}
	return e, g
}

type dailyNewRes struct {
	GameID string     `json:"gameId"`
	Date   string     `json:"date"`
	Played bool       `json:"played"`
	View   *game.View `json:"view,omitempty"`
}

// handleNew creates or reuses a daily session for the current date.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	uid := d.srv.playerID(w, r)
	now := d.now()
	date := daily.DateKey(now)

	if played, err := d.store.AlreadyPlayed(r.Context(), uid, date); err == nil && played {
		writeJSON(w, dailyNewRes{Date: date, Played: true})
		return
	}

	d.mu.Lock()
	d.rollover(date)
	d.mu.Unlock()

	key := uid + "|" + date
	_, g := d.lookup(r, key)
	if g == nil {
		g = game.New(d.options(now))
		g.Owner = uid
		if err := d.srv.store.Save(r.Context(), g); err != nil {
			log.Error().Err(err).Msg("save daily game")
			writeErr(w, http.StatusInternalServerError, "save_failed")
			return
		}
		e := &dailyEntry{GameID: g.ID, UserID: uid, Date: date, Start: now}
		d.mu.Lock()
		d.entries[key] = e
		d.byGame[g.ID] = e
		d.mu.Unlock()
	}

	v := g.View()
	writeJSON(w, dailyNewRes{GameID: g.ID, Date: date, Played: false, View: &v})
}

// handleSwap validates and applies a swap on today's board.
func (d *dailyServer) handleSwap(w http.ResponseWriter, r *http.Request) {
	uid := d.srv.playerID(w, r)

	var req swapReq
	if err := decode(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}
	date := daily.DateKey(d.now())

	e, g := d.lookup(r, uid+"|"+date)
	if g == nil || g.ID != req.GameID {
		writeErr(w, http.StatusConflict, "no_session")
		return
	}

	// a finished board answers with its final state instead of an error
	res, err := g.Swap(req.A, req.B)
	if err != nil && !errors.Is(err, game.ErrGameFinished) && !errors.Is(err, game.ErrCascadeLimit) {
		writeErr(w, moveErrStatus(err), moveErrCode(err))
		return
	}
	v := g.View()

	if v.State == game.StateFinished {
		d.record(r, e, v)
	}
	writeJSON(w, moveRes{Result: res, Swapped: true, View: v})
}

// record writes the day's result once.
func (d *dailyServer) record(r *http.Request, e *dailyEntry, v game.View) {
	d.mu.Lock()
	if e.recorded {
		d.mu.Unlock()
		return
	}
	e.recorded = true
	d.mu.Unlock()

	err := d.store.InsertResult(r.Context(), daily.Result{
		UserID:    e.UserID,
		Date:      e.Date,
		Score:     v.Score,
		MovesUsed: v.MovesUsed,
		ElapsedMs: int(d.now().Sub(e.Start).Milliseconds()),
	})
	if err != nil {
		log.Warn().Err(err).Str("user", e.UserID).Msg("insert daily result")
	}
}

type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(d.now())
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, lbRes{Date: date, Top: rows})
}
