// internal/httpserver/server.go
//
// HTTP server wiring for the Stardust Blast backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Game endpoints (optional auth): new, view, swap, select, hint.
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints (require auth): /auth/*, /stats/me, /games/mine.
//
// Notes:
//   - Boards live only in the session store; the database keeps accounts and
//     per-game summaries (score, moves used, status).
//   - Each swap runs its whole cascade under the session lock before the
//     response is written, so clients never observe a half-resolved board.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/stardust-blast/internal/board"
	"github.com/robalobadob/stardust-blast/internal/config"
	"github.com/robalobadob/stardust-blast/internal/game"
	"github.com/robalobadob/stardust-blast/internal/store"
)

const (
	minBoardSide = 3
	maxBoardSide = 16
)

// Server bundles router, in-memory session store, and DB handle.
type Server struct {
	r       *chi.Mux
	store   store.Store
	db      *sql.DB
	players players
	cfg     config.Config
	opts    game.Options
	daily   *dailyServer
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, db *sql.DB, cfg config.Config) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		store:   st,
		db:      db,
		players: players{db: db},
		cfg:     cfg,
		opts:    game.OptionsFromConfig(cfg.Board),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(cors(cfg.ClientOrigin))          // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"stardust-blast","endpoints":["/health","POST /game/new","POST /game/swap","POST /game/select","/daily/*","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// Game endpoints: optional auth, guests can play
	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth())
		r.Post("/game/new", s.handleNewGame)
		r.Get("/game/{id}", s.handleGetGame)
		r.Get("/game/{id}/hint", s.handleHint)
		r.Post("/game/swap", s.handleSwap)
		r.Post("/game/select", s.handleSelect)
		s.mountDaily(r)
	})

	s.mountAuthRoutes()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusNotFound, "not_found")
	})

	return s
}

// Run serves HTTP on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ------------------------------ GAME ---------------------------------------

type newGameReq struct {
	Cols int   `json:"cols"`
	Rows int   `json:"rows"`
	Seed int64 `json:"seed"` // optional fixed seed (replays, testing)
}

type swapReq struct {
	GameID string    `json:"gameId"`
	A      board.Pos `json:"a"`
	B      board.Pos `json:"b"`
}

type selectReq struct {
	GameID string `json:"gameId"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

// moveRes answers both /game/swap and /game/select.
type moveRes struct {
	game.Result
	Swapped bool      `json:"swapped"`
	View    game.View `json:"view"`
}

type hintRes struct {
	OK bool       `json:"ok"`
	A  *board.Pos `json:"a,omitempty"`
	B  *board.Pos `json:"b,omitempty"`
}

// handleNewGame creates a session and records its owner row.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := decode(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}

	opts := s.opts
	if req.Cols != 0 || req.Rows != 0 {
		if !validSide(req.Cols) || !validSide(req.Rows) {
			writeErr(w, http.StatusBadRequest, "invalid_size")
			return
		}
		opts.Cols, opts.Rows = req.Cols, req.Rows
	}
	opts.Seed = req.Seed

	g := game.New(opts)
	g.Owner = s.playerID(w, r)
	if err := s.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save game")
		writeErr(w, http.StatusInternalServerError, "save_failed")
		return
	}
	s.recordNewGame(r, g)
	writeJSON(w, g.View())
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusNotFound, "not_found")
		return
	}
	writeJSON(w, g.View())
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	g, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusNotFound, "not_found")
		return
	}
	a, b, ok := g.Hint()
	if !ok {
		writeJSON(w, hintRes{})
		return
	}
	writeJSON(w, hintRes{OK: true, A: &a, B: &b})
}

// handleSwap applies a two-coordinate swap and persists progress when accepted.
func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	var req swapReq
	if err := decode(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}
	g, ok := s.movable(w, r, req.GameID)
	if !ok {
		return
	}
	res, err := g.Swap(req.A, req.B)
	s.finishMove(w, r, g, res, true, err)
}

// handleSelect applies one click of the anchor protocol.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectReq
	if err := decode(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}
	g, ok := s.movable(w, r, req.GameID)
	if !ok {
		return
	}
	res, swapped, err := g.Select(board.Pos{X: req.X, Y: req.Y})
	s.finishMove(w, r, g, res, swapped, err)
}

// movable loads a session the caller may move on. Daily boards only take
// moves through /daily/swap, which records the day's result.
func (s *Server) movable(w http.ResponseWriter, r *http.Request, id string) (*game.Session, bool) {
	g, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeErr(w, http.StatusNotFound, "not_found")
		return nil, false
	}
	if s.daily != nil && s.daily.holds(id) {
		writeErr(w, http.StatusConflict, "daily_game")
		return nil, false
	}
	if !owns(r, g) {
		writeErr(w, http.StatusForbidden, "forbidden")
		return nil, false
	}
	return g, true
}

// owns reports whether the caller started g, either signed in or through
// the guest cookie it still carries after logging in.
func owns(r *http.Request, g *game.Session) bool {
	if g.Owner == "" {
		return true
	}
	if me := userFrom(r); me != nil && me.ID == g.Owner {
		return true
	}
	c, err := r.Cookie(anonCookieName)
	return err == nil && c.Value == g.Owner
}

func (s *Server) finishMove(w http.ResponseWriter, r *http.Request, g *game.Session, res game.Result, swapped bool, err error) {
	if err != nil && !errors.Is(err, game.ErrCascadeLimit) {
		writeErr(w, moveErrStatus(err), moveErrCode(err))
		return
	}
	v := g.View()
	if res.Accepted {
		s.recordProgress(r.Context(), v)
	}
	writeJSON(w, moveRes{Result: res, Swapped: swapped, View: v})
}

// moveErrStatus maps session errors onto HTTP statuses.
func moveErrStatus(err error) int {
	if errors.Is(err, game.ErrGameFinished) {
		return http.StatusConflict
	}
	return http.StatusBadRequest
}

func moveErrCode(err error) string {
	switch {
	case errors.Is(err, game.ErrOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, game.ErrNotAdjacent):
		return "not_adjacent"
	case errors.Is(err, game.ErrGameFinished):
		return "game_finished"
	}
	return "invalid_move"
}

func validSide(n int) bool { return n >= minBoardSide && n <= maxBoardSide }

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
