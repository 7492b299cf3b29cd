package httpserver

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
)

var (
	errUsernameTaken   = errors.New("username_taken")
	errInvalidUsername = errors.New("invalid_username")
	errInvalidPassword = errors.New("invalid_password")
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,24}$`)

const (
	minPasswordLen = 8
	maxPasswordLen = 100
)

// player is one row of the users table.
type player struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	GamesPlayed  int
	BestScore    int
	TotalScore   int
}

// players reads and writes the users table.
type players struct {
	db *sql.DB
}

const playerColumns = `id, username, password_hash, created_at, games_played, best_score, total_score`

// create hashes pw and inserts a new player. Uniqueness is left to the
// NOCASE unique index.
func (p players) create(ctx context.Context, username, pw string) (*player, error) {
	if !usernamePattern.MatchString(username) {
		return nil, errInvalidUsername
	}
	if len(pw) < minPasswordLen || len(pw) > maxPasswordLen {
		return nil, errInvalidPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &player{
		ID:           genID(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	_, err = p.db.ExecContext(ctx, `INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		u.ID, u.Username, u.PasswordHash, u.CreatedAt.Format(time.RFC3339))
	var se sqlite3.Error
	if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
		return nil, errUsernameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (p players) byUsername(ctx context.Context, username string) (*player, error) {
	return scanPlayer(p.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM users WHERE username=?`, username))
}

func (p players) byID(ctx context.Context, id string) (*player, error) {
	return scanPlayer(p.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM users WHERE id=?`, id))
}

// authenticate returns the player when pw matches the stored hash.
func (p players) authenticate(ctx context.Context, username, pw string) (*player, bool) {
	u, err := p.byUsername(ctx, username)
	if err != nil {
		return nil, false
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(pw)) != nil {
		return nil, false
	}
	return u, true
}

func scanPlayer(row *sql.Row) (*player, error) {
	var (
		u       player
		created string
	)
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &created, &u.GamesPlayed, &u.BestScore, &u.TotalScore)
	if err != nil {
		return nil, err
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &u, nil
}

// genID returns 22 URL-safe characters of crypto randomness.
func genID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
