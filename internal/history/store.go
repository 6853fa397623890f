// internal/history/store.go
//
// Results history: one row per finished game.
// Only outcomes are recorded; live session state stays in memory.

package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shash-786/wordle-engine/internal/game"
)

// Result is one finished game.
type Result struct {
	GameID          string    `json:"gameId"`
	SessionID       string    `json:"sessionId"`
	Secret          string    `json:"secret"`
	Won             bool      `json:"won"`
	Attempts        int       `json:"attempts"`
	InvalidAttempts int       `json:"invalidAttempts"`
	StartedAt       time.Time `json:"startedAt"`
	FinishedAt      time.Time `json:"finishedAt"`
}

// FromOutcome converts a finished game summary into a Result.
func FromOutcome(o game.Outcome) Result {
	return Result{
		GameID:          o.GameID,
		SessionID:       o.SessionID,
		Secret:          o.Secret,
		Won:             o.Won,
		Attempts:        o.Attempts,
		InvalidAttempts: o.InvalidAttempts,
		StartedAt:       o.StartedAt,
		FinishedAt:      o.FinishedAt,
	}
}

// timeLayout is fixed-width so that text ordering in SQLite is chronological.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Stats aggregates every recorded game.
type Stats struct {
	GamesPlayed   int         `json:"gamesPlayed"`
	Wins          int         `json:"wins"`
	CurrentStreak int         `json:"currentStreak"`
	Distribution  map[int]int `json:"distribution"` // accepted guesses -> wins
}

// Store persists results in SQLite.
type Store struct{ db *sql.DB }

// Open opens dsn and applies migrations.
func Open(dsn string) (*Store, error) {
	db, err := openDB(dsn)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Record inserts r. Recording the same game twice is a no-op.
func (s *Store) Record(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO game_results
            (game_id, session_id, secret, won, attempts, invalid, started_at, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.GameID, r.SessionID, r.Secret, r.Won, r.Attempts, r.InvalidAttempts,
		r.StartedAt.UTC().Format(timeLayout), r.FinishedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("record %s: %w", r.GameID, err)
	}
	return nil
}

// Stats computes totals, the current win streak, and the guess distribution.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	st := Stats{Distribution: map[int]int{}}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1), COALESCE(SUM(won), 0) FROM game_results`,
	).Scan(&st.GamesPlayed, &st.Wins); err != nil {
		return Stats{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT attempts, COUNT(1) FROM game_results WHERE won=1 GROUP BY attempts`)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var attempts, n int
		if err := rows.Scan(&attempts, &n); err != nil {
			return Stats{}, err
		}
		st.Distribution[attempts] = n
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}

	streak, err := s.db.QueryContext(ctx,
		`SELECT won FROM game_results ORDER BY finished_at DESC, rowid DESC`)
	if err != nil {
		return Stats{}, err
	}
	defer streak.Close()
	for streak.Next() {
		var won bool
		if err := streak.Scan(&won); err != nil {
			return Stats{}, err
		}
		if !won {
			break
		}
		st.CurrentStreak++
	}
	return st, streak.Err()
}

// Recent returns the latest results, newest first. Default limit is 20.
func (s *Store) Recent(ctx context.Context, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT game_id, session_id, secret, won, attempts, invalid, started_at, finished_at
        FROM game_results
        ORDER BY finished_at DESC, rowid DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Result, 0, limit)
	for rows.Next() {
		var r Result
		var started, finished string
		if err := rows.Scan(&r.GameID, &r.SessionID, &r.Secret, &r.Won, &r.Attempts, &r.InvalidAttempts, &started, &finished); err != nil {
			return nil, err
		}
		r.StartedAt = mustParse(started)
		r.FinishedAt = mustParse(finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

// mustParse parses stored timestamps; on error returns zero time.
func mustParse(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}
