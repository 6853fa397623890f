// internal/game/engine.go
//
// Game state machine for a single player session.
// Responsibilities:
//   - Load the word corpus and draw a secret (Loading → InProgress | LoadError).
//   - Validate and score guesses, tracking accepted attempt slots.
//   - Detect win/loss and reset for a new game.
//
// Notes:
//   - Only dictionary-valid guesses consume an attempt slot. Invalid words are
//     still appended to the history so the caller can show them.
//   - Won/Lost reject further guesses until StartNewGame.
//   - All methods are safe for concurrent use; each command completes its
//     read-modify-write before the next one starts.

package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"github.com/rs/zerolog"

	"github.com/shash-786/wordle-engine/internal/words"
)

const (
	defaultMaxGuesses = 6

	winMessage     = "Congratulations! You guessed the word!"
	lossMessageFmt = "Game Over! The word was %q."
)

var (
	ErrGameNotActive = errors.New("game is not active")
	ErrWrongLength   = errors.New("wrong guess length")
	ErrInvalidWord   = errors.New("not in word list")
)

// fsm events
const (
	evLoaded     = "loaded"
	evLoadFailed = "load_failed"
	evWon        = "won"
	evLost       = "lost"
	evReload     = "reload"
	evRestart    = "restart"
)

// Session is one player's game. The zero value is not usable; call NewSession.
type Session struct {
	mu sync.RWMutex

	id         string
	source     words.Source
	selector   words.Selector
	wordLength int
	maxGuesses int
	log        zerolog.Logger
	now        func() time.Time

	machine    *fsm.FSM
	corpus     *words.Corpus
	gameID     string
	secret     string
	history    []Attempt
	current    int
	message    string
	err        error
	startedAt  time.Time
	finishedAt time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithID sets the session identifier (defaults to a random UUID).
func WithID(id string) Option { return func(s *Session) { s.id = id } }

// WithWordLength overrides the default word length of 5.
func WithWordLength(n int) Option { return func(s *Session) { s.wordLength = n } }

// WithMaxGuesses overrides the default budget of 6 accepted guesses.
func WithMaxGuesses(n int) Option { return func(s *Session) { s.maxGuesses = n } }

// WithSelector sets how secrets are drawn (defaults to words.RandomSelector).
func WithSelector(sel words.Selector) Option { return func(s *Session) { s.selector = sel } }

// WithLogger attaches a logger. Sessions are silent by default.
func WithLogger(l zerolog.Logger) Option { return func(s *Session) { s.log = l } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(s *Session) { s.now = now } }

// NewSession returns a session in the Loading state. Call Load to fetch the
// corpus and start the first game.
func NewSession(src words.Source, opts ...Option) *Session {
	s := &Session{
		source:     src,
		selector:   words.RandomSelector,
		wordLength: words.DefaultWordLength,
		maxGuesses: defaultMaxGuesses,
		log:        zerolog.Nop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.wordLength < 1 {
		s.wordLength = words.DefaultWordLength
	}
	if s.maxGuesses < 1 {
		s.maxGuesses = defaultMaxGuesses
	}
	s.log = s.log.With().Str("session", s.id).Logger()
	s.machine = fsm.NewFSM(
		string(StatusLoading),
		fsm.Events{
			{Name: evLoaded, Src: []string{string(StatusLoading)}, Dst: string(StatusInProgress)},
			{Name: evLoadFailed, Src: []string{string(StatusLoading)}, Dst: string(StatusLoadError)},
			{Name: evWon, Src: []string{string(StatusInProgress)}, Dst: string(StatusWon)},
			{Name: evLost, Src: []string{string(StatusInProgress)}, Dst: string(StatusLost)},
			{Name: evReload, Src: []string{
				string(StatusInProgress), string(StatusWon), string(StatusLost), string(StatusLoadError),
			}, Dst: string(StatusLoading)},
			{Name: evRestart, Src: []string{
				string(StatusWon), string(StatusLost), string(StatusLoadError),
			}, Dst: string(StatusInProgress)},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				s.log.Debug().Str("event", e.Event).Str("from", e.Src).Str("to", e.Dst).Msg("state transition")
			},
		},
	)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Load fetches the corpus and, on success, starts a new game.
// On failure the session moves to LoadError and the cause is kept in Err.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// StartNewGame draws a new secret and clears the board. If the corpus has not
// been loaded (or either list came back empty) the load is retried instead.
func (s *Session) StartNewGame(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.corpus.Ready() {
		return s.load(ctx)
	}
	return s.begin(ctx)
}

// SubmitGuess validates raw, scores it and advances the game.
//
// Rejections, in order:
//   - ErrGameNotActive: status is not InProgress. Nothing changes.
//   - ErrWrongLength: the trimmed guess has the wrong length. Nothing changes.
//   - ErrInvalidWord: the guess is recorded in the history, but it does not
//     consume an attempt slot and win/loss is not evaluated. The returned
//     result carries the recorded attempt.
func (s *Session) SubmitGuess(raw string) (SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st := s.status(); st != StatusInProgress {
		return s.result(Attempt{}), fmt.Errorf("%w: status is %s", ErrGameNotActive, st)
	}
	guess := words.Normalize(raw)
	if n := utf8.RuneCountInString(guess); n != s.wordLength {
		return s.result(Attempt{}), fmt.Errorf("%w: got %d letters, want %d", ErrWrongLength, n, s.wordLength)
	}

	if !s.corpus.IsValidGuess(guess) {
		a := Attempt{Guess: guess}
		s.history = append(s.history, a)
		s.log.Debug().Str("guess", guess).Int("row", s.current).Msg("guess not in word list")
		return s.result(a), ErrInvalidWord
	}

	code := Score(guess, s.secret)
	last := s.current == s.maxGuesses-1
	a := Attempt{Guess: guess, Feedback: code, IsCorrect: IsWin(code), IsValidGuess: true}
	if !a.IsCorrect && last {
		a.RevealedAnswer = s.secret
	}
	s.history = append(s.history, a)
	s.log.Debug().Str("guess", guess).Str("feedback", code).Int("row", s.current).Msg("guess scored")

	var err error
	switch {
	case a.IsCorrect:
		s.message = winMessage
		err = s.fire(context.Background(), evWon)
	case last:
		s.message = fmt.Sprintf(lossMessageFmt, s.secret)
		err = s.fire(context.Background(), evLost)
	default:
		s.current++
	}
	if s.status().Terminal() {
		s.finishedAt = s.now()
		s.log.Info().Str("game", s.gameID).Str("status", string(s.status())).Int("attempts", s.current+1).Msg("game finished")
	}
	return s.result(a), err
}

// ---------------------------------------------------------------------------
// queries

// Status returns the current state.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status()
}

// CurrentAttemptIndex is the number of accepted guesses in the current game
// (the row being played while InProgress).
func (s *Session) CurrentAttemptIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// MaxGuesses is the number of accepted guesses allowed per game.
func (s *Session) MaxGuesses() int { return s.maxGuesses }

// WordLength is the number of letters in every secret and guess.
func (s *Session) WordLength() int { return s.wordLength }

// FeedbackFor returns the feedback code of history entry i, or "" when there is
// no such entry or it was rejected as an invalid word.
func (s *Session) FeedbackFor(i int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.history) || !s.history[i].IsValidGuess {
		return ""
	}
	return s.history[i].Feedback
}

// IsRowLocked reports whether row i no longer takes input: it was already
// played, the game is over, or there is no playable game.
func (s *Session) IsRowLocked(i int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch st := s.status(); {
	case st.Terminal(), st == StatusLoading, st == StatusLoadError:
		return true
	default:
		return i < s.current
	}
}

// History returns a copy of every attempt in the current game, valid or not.
func (s *Session) History() []Attempt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Attempt(nil), s.history...)
}

// Board returns only the accepted attempts, one per played row.
func (s *Session) Board() []Attempt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Attempt
	for _, a := range s.history {
		if a.IsValidGuess {
			out = append(out, a)
		}
	}
	return out
}

// Message is the end-of-game text, empty while playing.
func (s *Session) Message() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.message
}

// RevealedAnswer is the secret once the game has been lost.
func (s *Session) RevealedAnswer() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.status() != StatusLost {
		return ""
	}
	return s.secret
}

// Err is the cause of the last LoadError, nil otherwise.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Snapshot copies the session state for rendering.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		ID:                  s.id,
		GameID:              s.gameID,
		Status:              s.status(),
		WordLength:          s.wordLength,
		MaxGuesses:          s.maxGuesses,
		CurrentAttemptIndex: s.current,
		History:             append([]Attempt{}, s.history...),
		Message:             s.message,
	}
	if snap.Status == StatusLost {
		snap.RevealedAnswer = s.secret
	}
	if s.err != nil {
		snap.Error = s.err.Error()
	}
	return snap
}

// Outcome summarizes the current game once it is Won or Lost.
func (s *Session) Outcome() (Outcome, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.status()
	if !st.Terminal() {
		return Outcome{}, false
	}
	o := Outcome{
		SessionID:  s.id,
		GameID:     s.gameID,
		Secret:     s.secret,
		Won:        st == StatusWon,
		StartedAt:  s.startedAt,
		FinishedAt: s.finishedAt,
	}
	for _, a := range s.history {
		if a.IsValidGuess {
			o.Attempts++
		} else {
			o.InvalidAttempts++
		}
	}
	return o, true
}

// ---------------------------------------------------------------------------
// internals (callers hold s.mu)

func (s *Session) status() Status { return Status(s.machine.Current()) }

func (s *Session) fire(ctx context.Context, event string) error {
	if err := s.machine.Event(ctx, event); err != nil {
		return fmt.Errorf("game: %s from %s: %w", event, s.machine.Current(), err)
	}
	return nil
}

// load runs the loading sequence and starts a game on success.
func (s *Session) load(ctx context.Context) error {
	if s.status() != StatusLoading {
		if err := s.fire(ctx, evReload); err != nil {
			return err
		}
	}
	s.reset()

	corpus, err := words.LoadFrom(ctx, s.source, s.wordLength)
	if err != nil {
		s.corpus = nil
		return s.fail(ctx, err)
	}
	s.corpus = corpus
	answers, allowed := corpus.Stats()
	s.log.Info().Int("answers", answers).Int("allowed", allowed).Msg("word lists loaded")
	return s.begin(ctx)
}

// begin draws a secret and puts the session into InProgress.
func (s *Session) begin(ctx context.Context) error {
	secret, err := s.selector.Select(s.corpus)
	if err != nil {
		if s.status() != StatusLoading {
			if ferr := s.fire(ctx, evReload); ferr != nil {
				return ferr
			}
		}
		s.reset()
		return s.fail(ctx, err)
	}

	s.reset()
	s.gameID = uuid.NewString()
	s.secret = secret
	s.startedAt = s.now()

	switch s.status() {
	case StatusLoading:
		err = s.fire(ctx, evLoaded)
	case StatusInProgress:
		// already playing; the reset above is the whole restart
	default:
		err = s.fire(ctx, evRestart)
	}
	if err != nil {
		return err
	}
	s.log.Info().Str("game", s.gameID).Msg("new game started")
	return nil
}

// result reports a submission against the current session state.
func (s *Session) result(a Attempt) SubmitResult {
	return SubmitResult{
		Attempt:             a,
		Status:              s.status(),
		CurrentAttemptIndex: s.current,
		Message:             s.message,
	}
}

func (s *Session) fail(ctx context.Context, cause error) error {
	s.err = cause
	s.log.Error().Err(cause).Msg("session unavailable")
	if err := s.fire(ctx, evLoadFailed); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

func (s *Session) reset() {
	s.gameID = ""
	s.secret = ""
	s.history = nil
	s.current = 0
	s.message = ""
	s.err = nil
	s.startedAt = time.Time{}
	s.finishedAt = time.Time{}
}
