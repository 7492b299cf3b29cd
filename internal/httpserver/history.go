package httpserver

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/stardust-blast/internal/game"
)

// recordNewGame persists the owner row for a new session (user_id or anonymous_id).
// g.Owner already holds the caller's player ID. Failures are logged; play
// continues without history.
func (s *Server) recordNewGame(r *http.Request, g *game.Session) {
	v := g.View()
	now := g.CreatedAt.Format(time.RFC3339)
	var err error
	if userFrom(r) != nil {
		_, err = s.db.ExecContext(r.Context(), `INSERT INTO games (id, user_id, seed, cols, rows, status, started_at)
		                     VALUES (?,?,?,?,?,?,?)`, g.ID, g.Owner, g.Seed, v.Cols, v.Rows, string(v.State), now)
	} else {
		_, err = s.db.ExecContext(r.Context(), `INSERT INTO games (id, anonymous_id, seed, cols, rows, status, started_at)
		                     VALUES (?,?,?,?,?,?,?)`, g.ID, g.Owner, g.Seed, v.Cols, v.Rows, string(v.State), now)
	}
	if err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("insert game row")
	}
}

// recordProgress updates the history row after an accepted swap and, when the
// session has just finished, folds the score into the owner's stats.
func (s *Server) recordProgress(ctx context.Context, v game.View) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Warn().Err(err).Msg("begin progress tx")
		return
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE games SET score=?, moves_used=?, status=? WHERE id=?`,
		v.Score, v.MovesUsed, string(v.State), v.ID); err != nil {
		log.Warn().Err(err).Str("gameId", v.ID).Msg("update game row")
		return
	}

	if v.State == game.StateFinished {
		if _, err := tx.ExecContext(ctx, `UPDATE games SET finished_at=? WHERE id=?`,
			time.Now().UTC().Format(time.RFC3339), v.ID); err != nil {
			log.Warn().Err(err).Msg("finish game")
		}
		var owner sql.NullString
		if err := tx.QueryRowContext(ctx, `SELECT user_id FROM games WHERE id=?`, v.ID).Scan(&owner); err == nil && owner.Valid {
			if err := bumpStats(ctx, tx, owner.String, v.Score); err != nil {
				log.Warn().Err(err).Str("user", owner.String).Msg("bump stats")
			}
		}
	}
	if err := tx.Commit(); err != nil {
		log.Warn().Err(err).Msg("commit progress")
	}
}

// bumpStats increments games played and folds in the final score (within tx).
func bumpStats(ctx context.Context, tx *sql.Tx, userID string, score int) error {
	_, err := tx.ExecContext(ctx, `UPDATE users
		SET games_played = games_played + 1,
		    total_score  = total_score + ?,
		    best_score   = MAX(best_score, ?)
		WHERE id=?`, score, score, userID)
	return err
}

// handleMyGames lists the caller's 50 most recent games.
func (s *Server) handleMyGames(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.QueryContext(r.Context(), `SELECT id, status, score, moves_used, started_at, COALESCE(finished_at,'')
	                         FROM games WHERE user_id=? ORDER BY started_at DESC LIMIT 50`, userFrom(r).ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	defer rows.Close()

	type gameRow struct {
		ID         string `json:"id"`
		Status     string `json:"status"`
		Score      int    `json:"score"`
		MovesUsed  int    `json:"movesUsed"`
		StartedAt  string `json:"startedAt"`
		FinishedAt string `json:"finishedAt,omitempty"`
	}
	out := []gameRow{}
	for rows.Next() {
		var gr gameRow
		if err := rows.Scan(&gr.ID, &gr.Status, &gr.Score, &gr.MovesUsed, &gr.StartedAt, &gr.FinishedAt); err == nil {
			out = append(out, gr)
		}
	}
	writeJSON(w, out)
}
