// internal/game/types.go
//
// Core type definitions for the game engine.
// Defines:
//   - Mark: per-letter verdict inside a feedback code (G/Y/R).
//   - Status: the session's finite states.
//   - Attempt: one recorded submission.
//   - SubmitResult, Snapshot, Outcome: read models handed to callers.

package game

import "time"

// Mark is one character of a feedback code.
type Mark byte

const (
	MarkHit     Mark = 'G' // right letter, right position
	MarkPresent Mark = 'Y' // letter elsewhere in the secret
	MarkMiss    Mark = 'R' // letter absent (or already fully credited)
)

// Status is the state of a Session.
type Status string

const (
	StatusLoading    Status = "loading"
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusLost       Status = "lost"
	StatusLoadError  Status = "load_error"
)

// Terminal reports whether no more guesses are accepted in the current game.
func (s Status) Terminal() bool {
	return s == StatusWon || s == StatusLost
}

// Attempt is one submitted guess. Feedback is empty when the guess was not
// in the valid-guess set.
type Attempt struct {
	Guess          string `json:"guess"`
	Feedback       string `json:"feedback"`
	IsCorrect      bool   `json:"isCorrect"`
	IsValidGuess   bool   `json:"isValidGuess"`
	RevealedAnswer string `json:"revealedAnswer,omitempty"`
}

// SubmitResult is returned from SubmitGuess.
type SubmitResult struct {
	Attempt             Attempt `json:"attempt"`
	Status              Status  `json:"status"`
	CurrentAttemptIndex int     `json:"currentAttemptIndex"`
	Message             string  `json:"message,omitempty"`
}

// Snapshot is a copy of everything a UI needs to render a session.
type Snapshot struct {
	ID                  string    `json:"id"`
	GameID              string    `json:"gameId,omitempty"`
	Status              Status    `json:"status"`
	WordLength          int       `json:"wordLength"`
	MaxGuesses          int       `json:"maxGuesses"`
	CurrentAttemptIndex int       `json:"currentAttemptIndex"`
	History             []Attempt `json:"history"`
	Message             string    `json:"message,omitempty"`
	RevealedAnswer      string    `json:"revealedAnswer,omitempty"`
	Error               string    `json:"error,omitempty"`
}

// Outcome summarizes a finished game.
type Outcome struct {
	SessionID       string
	GameID          string
	Secret          string
	Won             bool
	Attempts        int // accepted guesses
	InvalidAttempts int // rejected-as-invalid guesses
	StartedAt       time.Time
	FinishedAt      time.Time
}
