// internal/httpserver/auth.go
//
// Player accounts over HTTP: signup/login/logout, JWT issuing, the auth
// cookie and the anonymous-player cookie that lets guests keep history.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

const (
	anonCookieName = "stardust_anon"
	anonCookieTTL  = 180 * 24 * time.Hour
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type accountRes struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// mountAuthRoutes registers authentication + gated routes (/auth/*, /stats/me, /games/mine).
func (s *Server) mountAuthRoutes() {
	s.r.Post("/auth/signup", s.handleSignup)
	s.r.Post("/auth/login", s.handleLogin)
	s.r.Post("/auth/logout", s.handleLogout)

	gated := s.r.With(s.requireAuth())
	gated.Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, userFrom(r))
	})
	gated.Get("/stats/me", s.handleStats)
	gated.Get("/games/mine", s.handleMyGames)
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := decode(r, &body); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}
	u, err := s.players.create(r.Context(), strings.TrimSpace(body.Username), body.Password)
	switch {
	case errors.Is(err, errUsernameTaken):
		writeErr(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, errInvalidUsername), errors.Is(err, errInvalidPassword):
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Error().Err(err).Msg("signup")
		writeErr(w, http.StatusInternalServerError, "server_error")
		return
	}
	s.startSession(w, r, u)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := decode(r, &body); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}
	u, ok := s.players.authenticate(r.Context(), strings.TrimSpace(body.Username), body.Password)
	if !ok {
		writeErr(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}
	s.startSession(w, r, u)
}

// handleLogout clears the auth cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.setAuthCookie(w, "", time.Unix(0, 0), -1)
	writeJSON(w, map[string]bool{"ok": true})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	u, err := s.players.byID(r.Context(), userFrom(r).ID)
	if err != nil {
		writeErr(w, http.StatusNotFound, "not_found")
		return
	}
	writeJSON(w, map[string]any{
		"id":          u.ID,
		"gamesPlayed": u.GamesPlayed,
		"bestScore":   u.BestScore,
		"totalScore":  u.TotalScore,
	})
}

// startSession signs a token, sets the cookie, moves guest history onto the
// account and answers with the account summary.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, u *player) {
	tok, exp, err := s.signJWT(u.ID, u.Username)
	if err != nil {
		log.Error().Err(err).Msg("sign jwt")
		writeErr(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.setAuthCookie(w, tok, exp, 0)
	s.claimAnonGames(r.Context(), s.ensureAnonID(w, r), u.ID)
	writeJSON(w, accountRes{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt})
}

// signJWT issues an HS256 token carrying id and username.
func (s *Server) signJWT(id, username string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(time.Duration(s.cfg.JWTExpiresDays) * 24 * time.Hour)
	claims := jwt.MapClaims{
		"id":       id,
		"username": username,
		"iat":      now.Unix(),
		"exp":      exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	return signed, exp, err
}

// setAuthCookie writes (or with maxAge<0 deletes) the auth token cookie.
func (s *Server) setAuthCookie(w http.ResponseWriter, token string, exp time.Time, maxAge int) {
	http.SetCookie(w, s.cookie(s.cfg.CookieName, token, exp, maxAge))
}

func (s *Server) cookie(name, value string, exp time.Time, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Production,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
		MaxAge:   maxAge,
	}
	if s.cfg.Production {
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}

// ensureAnonID returns the guest cookie value, minting one when absent.
func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := genID()
	http.SetCookie(w, s.cookie(anonCookieName, id, time.Now().Add(anonCookieTTL), 0))
	return id
}

// playerID returns the signed-in user ID, or the anonymous cookie ID for guests.
func (s *Server) playerID(w http.ResponseWriter, r *http.Request) string {
	if me := userFrom(r); me != nil {
		return me.ID
	}
	return s.ensureAnonID(w, r)
}

// claimAnonGames moves a guest's game rows onto a user account.
func (s *Server) claimAnonGames(ctx context.Context, anonID, userID string) {
	if anonID == "" || userID == "" {
		return
	}
	res, err := s.db.ExecContext(ctx, `UPDATE games SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID)
	if err != nil {
		log.Warn().Err(err).Msg("claim anon games")
		return
	}
	if n, _ := res.RowsAffected(); n > 0 {
		log.Info().Int64("games", n).Str("user", userID).Msg("claimed guest games")
	}
}
