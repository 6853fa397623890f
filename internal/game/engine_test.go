package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shash-786/wordle-engine/internal/words"
)

// stubSource serves fixed text and counts fetches.
type stubSource struct {
	mu      sync.Mutex
	answers string
	allowed string
	err     error
	fetches int
}

func (s *stubSource) Fetch(ctx context.Context) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++
	if s.err != nil {
		return "", "", s.err
	}
	return s.answers, s.allowed, nil
}

const (
	testAnswers = "angle\ncrane\nerase"
	testAllowed = "angle\nangry\nagnel\ncrane\nerase\nspeed\nbumpy\nplumb\nfjord"
)

func newLoadedSession(t *testing.T, secret string, opts ...Option) *Session {
	t.Helper()
	src := &stubSource{answers: testAnswers, allowed: testAllowed}
	opts = append([]Option{WithSelector(words.FixedSelector(secret))}, opts...)
	s := NewSession(src, opts...)
	require.Equal(t, StatusLoading, s.Status())
	require.NoError(t, s.Load(context.Background()))
	require.Equal(t, StatusInProgress, s.Status())
	return s
}

func TestNewSession_Defaults(t *testing.T) {
	s := NewSession(&stubSource{})
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, 5, s.WordLength())
	assert.Equal(t, 6, s.MaxGuesses())
	assert.Equal(t, StatusLoading, s.Status())
	assert.True(t, s.IsRowLocked(0), "rows are locked while loading")

	_, err := s.SubmitGuess("angle")
	assert.ErrorIs(t, err, ErrGameNotActive)
}

func TestSubmitGuess_GoldenCodes(t *testing.T) {
	s := newLoadedSession(t, "ANGLE")

	res, err := s.SubmitGuess("angry")
	require.NoError(t, err)
	assert.Equal(t, "GGGRR", res.Attempt.Feedback)
	assert.Equal(t, StatusInProgress, res.Status)
	assert.Equal(t, 1, res.CurrentAttemptIndex)

	res, err = s.SubmitGuess("AGNEL")
	require.NoError(t, err)
	assert.Equal(t, "GYYYY", res.Attempt.Feedback)
	assert.False(t, res.Attempt.IsCorrect)
	assert.Equal(t, 2, s.CurrentAttemptIndex())
}

func TestSubmitGuess_Win(t *testing.T) {
	s := newLoadedSession(t, "angle")

	_, err := s.SubmitGuess("crane")
	require.NoError(t, err)
	res, err := s.SubmitGuess("  Angle ")
	require.NoError(t, err)

	assert.Equal(t, Attempt{Guess: "ANGLE", Feedback: "GGGGG", IsCorrect: true, IsValidGuess: true}, res.Attempt)
	assert.Equal(t, StatusWon, s.Status())
	assert.Equal(t, "Congratulations! You guessed the word!", s.Message())
	assert.Empty(t, s.RevealedAnswer())
	assert.Equal(t, 1, s.CurrentAttemptIndex(), "winning guess does not advance the row")

	for i := 0; i < 6; i++ {
		assert.True(t, s.IsRowLocked(i))
	}
}

func TestSubmitGuess_LoseAfterMaxGuesses(t *testing.T) {
	s := newLoadedSession(t, "ANGLE")

	for i := 0; i < 5; i++ {
		res, err := s.SubmitGuess("speed")
		require.NoError(t, err)
		assert.Empty(t, res.Attempt.RevealedAnswer)
		assert.Equal(t, StatusInProgress, res.Status)
	}
	res, err := s.SubmitGuess("crane")
	require.NoError(t, err)

	assert.Equal(t, StatusLost, res.Status)
	assert.Equal(t, "ANGLE", res.Attempt.RevealedAnswer)
	assert.Equal(t, "ANGLE", s.RevealedAnswer())
	assert.Equal(t, `Game Over! The word was "ANGLE".`, s.Message())
	assert.Equal(t, 5, s.CurrentAttemptIndex())
	assert.Len(t, s.History(), 6)
}

func TestSubmitGuess_WinOnLastAttemptDoesNotReveal(t *testing.T) {
	s := newLoadedSession(t, "ANGLE", WithMaxGuesses(2))

	_, err := s.SubmitGuess("crane")
	require.NoError(t, err)
	res, err := s.SubmitGuess("angle")
	require.NoError(t, err)
	assert.Equal(t, StatusWon, res.Status)
	assert.Empty(t, res.Attempt.RevealedAnswer)
}

func TestSubmitGuess_TerminalRejectsWithoutMutation(t *testing.T) {
	for _, final := range []string{"angle", "crane"} {
		s := newLoadedSession(t, "ANGLE", WithMaxGuesses(1))
		_, err := s.SubmitGuess(final)
		require.NoError(t, err)
		require.True(t, s.Status().Terminal())

		before := s.History()
		idx := s.CurrentAttemptIndex()
		for _, g := range []string{"angle", "xx", "zzzzz"} {
			_, err := s.SubmitGuess(g)
			assert.ErrorIs(t, err, ErrGameNotActive)
		}
		if diff := cmp.Diff(before, s.History()); diff != "" {
			t.Errorf("history changed after terminal submit (-want +got):\n%s", diff)
		}
		assert.Equal(t, idx, s.CurrentAttemptIndex())
	}
}

func TestSubmitGuess_WrongLength(t *testing.T) {
	s := newLoadedSession(t, "ANGLE")

	for _, g := range []string{"", "ang", "angles", "   an  "} {
		_, err := s.SubmitGuess(g)
		assert.ErrorIs(t, err, ErrWrongLength, "guess %q", g)
	}
	assert.Empty(t, s.History())
	assert.Equal(t, 0, s.CurrentAttemptIndex())
}

func TestSubmitGuess_InvalidWordKeepsSlot(t *testing.T) {
	s := newLoadedSession(t, "ANGLE")

	res, err := s.SubmitGuess("zzzzz")
	assert.ErrorIs(t, err, ErrInvalidWord)
	assert.Equal(t, Attempt{Guess: "ZZZZZ"}, res.Attempt)
	assert.Equal(t, 0, res.CurrentAttemptIndex)
	assert.Len(t, s.History(), 1)
	assert.Equal(t, 0, s.CurrentAttemptIndex())
	assert.False(t, s.IsRowLocked(0), "the same row can be retried")
	assert.Equal(t, "", s.FeedbackFor(0))

	res, err = s.SubmitGuess("angry")
	require.NoError(t, err)
	assert.Equal(t, 1, res.CurrentAttemptIndex)

	want := []Attempt{
		{Guess: "ZZZZZ"},
		{Guess: "ANGRY", Feedback: "GGGRR", IsValidGuess: true},
	}
	if diff := cmp.Diff(want, s.History()); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, want[1:], s.Board())
	assert.GreaterOrEqual(t, len(s.History()), s.CurrentAttemptIndex())
}

func TestSubmitGuess_InvalidWordsDoNotExhaustBudget(t *testing.T) {
	s := newLoadedSession(t, "ANGLE", WithMaxGuesses(2))

	for i := 0; i < 10; i++ {
		_, err := s.SubmitGuess("qqqqq")
		require.ErrorIs(t, err, ErrInvalidWord)
	}
	assert.Equal(t, StatusInProgress, s.Status())

	_, err := s.SubmitGuess("crane")
	require.NoError(t, err)
	_, err = s.SubmitGuess("speed")
	require.NoError(t, err)
	assert.Equal(t, StatusLost, s.Status())
	assert.Len(t, s.History(), 12)
}

func TestFeedbackFor_Idempotent(t *testing.T) {
	s := newLoadedSession(t, "ANGLE")
	_, err := s.SubmitGuess("angry")
	require.NoError(t, err)

	first := s.FeedbackFor(0)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, s.FeedbackFor(0))
	}
	assert.Equal(t, "GGGRR", first)
	assert.Equal(t, "", s.FeedbackFor(1))
	assert.Equal(t, "", s.FeedbackFor(-1))
}

func TestIsRowLocked(t *testing.T) {
	s := newLoadedSession(t, "ANGLE")
	assert.False(t, s.IsRowLocked(0))
	assert.False(t, s.IsRowLocked(3))

	_, err := s.SubmitGuess("crane")
	require.NoError(t, err)
	assert.True(t, s.IsRowLocked(0))
	assert.False(t, s.IsRowLocked(1))
}

func TestStartNewGame_Resets(t *testing.T) {
	s := newLoadedSession(t, "ANGLE")
	firstGame := s.Snapshot().GameID

	_, err := s.SubmitGuess("angle")
	require.NoError(t, err)
	require.Equal(t, StatusWon, s.Status())

	require.NoError(t, s.StartNewGame(context.Background()))
	snap := s.Snapshot()
	assert.Equal(t, StatusInProgress, snap.Status)
	assert.Empty(t, snap.History)
	assert.Zero(t, snap.CurrentAttemptIndex)
	assert.Empty(t, snap.Message)
	assert.NotEqual(t, firstGame, snap.GameID)

	// restart mid-game is also allowed
	_, err = s.SubmitGuess("crane")
	require.NoError(t, err)
	require.NoError(t, s.StartNewGame(context.Background()))
	assert.Equal(t, StatusInProgress, s.Status())
	assert.Empty(t, s.History())
}

func TestSubmitGuess_ResultMirrorsSession(t *testing.T) {
	s := newLoadedSession(t, "ANGLE", WithMaxGuesses(2))

	res, err := s.SubmitGuess("bumpy")
	require.NoError(t, err)
	assert.Equal(t, SubmitResult{
		Attempt:             Attempt{Guess: "BUMPY", Feedback: "RRRRR", IsValidGuess: true},
		Status:              StatusInProgress,
		CurrentAttemptIndex: 1,
	}, res)

	res, err = s.SubmitGuess("zzzzz")
	assert.ErrorIs(t, err, ErrInvalidWord)
	assert.Equal(t, SubmitResult{
		Attempt:             Attempt{Guess: "ZZZZZ"},
		Status:              StatusInProgress,
		CurrentAttemptIndex: 1,
	}, res)

	res, err = s.SubmitGuess("crane")
	require.NoError(t, err)
	assert.Equal(t, StatusLost, res.Status)
	assert.Equal(t, 1, res.CurrentAttemptIndex)
	assert.Equal(t, `Game Over! The word was "ANGLE".`, res.Message)
	assert.Equal(t, "ANGLE", res.Attempt.RevealedAnswer)

	res, err = s.SubmitGuess("angle")
	assert.ErrorIs(t, err, ErrGameNotActive)
	assert.Equal(t, StatusLost, res.Status)
	assert.Equal(t, s.Message(), res.Message)
}

func TestStartNewGame_SelectorFailureClearsBoard(t *testing.T) {
	calls := 0
	sel := words.SelectorFunc(func(c *words.Corpus) (string, error) {
		calls++
		if calls > 1 {
			return "", errors.New("selector unavailable")
		}
		return "ANGLE", nil
	})
	src := &stubSource{answers: testAnswers, allowed: testAllowed}
	s := NewSession(src, WithSelector(sel))
	require.NoError(t, s.Load(context.Background()))

	_, err := s.SubmitGuess("crane")
	require.NoError(t, err)
	require.Len(t, s.History(), 1)

	err = s.StartNewGame(context.Background())
	require.Error(t, err)

	snap := s.Snapshot()
	assert.Equal(t, StatusLoadError, snap.Status)
	assert.Empty(t, snap.History)
	assert.Zero(t, snap.CurrentAttemptIndex)
	assert.Empty(t, snap.Message)
	assert.Empty(t, snap.GameID)
	assert.EqualError(t, s.Err(), "selector unavailable")
}

func TestStartNewGame_DrawsFromPool(t *testing.T) {
	src := &stubSource{answers: testAnswers, allowed: testAllowed}
	s := NewSession(src)
	require.NoError(t, s.Load(context.Background()))

	for i := 0; i < 20; i++ {
		require.NoError(t, s.StartNewGame(context.Background()))
		_, err := s.SubmitGuess("angle")
		require.NoError(t, err)
		// the secret is one of the pool words; only ANGLE wins on this guess
		if s.Status() == StatusWon {
			continue
		}
		assert.Equal(t, StatusInProgress, s.Status())
	}
	assert.Equal(t, 1, src.fetches, "a loaded corpus is reused across games")
}

func TestLoad_FailureThenRetry(t *testing.T) {
	src := &stubSource{err: errors.New("connection refused")}
	s := NewSession(src)

	err := s.Load(context.Background())
	assert.ErrorIs(t, err, words.ErrLoad)
	assert.Equal(t, StatusLoadError, s.Status())
	assert.ErrorIs(t, s.Err(), words.ErrLoad)
	assert.True(t, s.IsRowLocked(0))
	assert.NotEmpty(t, s.Snapshot().Error)

	_, err = s.SubmitGuess("angle")
	assert.ErrorIs(t, err, ErrGameNotActive)

	src.mu.Lock()
	src.err = nil
	src.answers, src.allowed = testAnswers, testAllowed
	src.mu.Unlock()

	require.NoError(t, s.StartNewGame(context.Background()))
	assert.Equal(t, StatusInProgress, s.Status())
	assert.NoError(t, s.Err())
	assert.Equal(t, 2, src.fetches)
}

func TestLoad_EmptyPool(t *testing.T) {
	src := &stubSource{answers: "toolong\nab", allowed: testAllowed}
	s := NewSession(src)

	err := s.Load(context.Background())
	assert.ErrorIs(t, err, words.ErrEmptyPool)
	assert.NotErrorIs(t, err, words.ErrLoad)
	assert.Equal(t, StatusLoadError, s.Status())

	// the corpus is not usable, so a new game reloads it
	err = s.StartNewGame(context.Background())
	assert.ErrorIs(t, err, words.ErrEmptyPool)
	assert.Equal(t, 2, src.fetches)
}

func TestLoad_EmptyGuessListReloads(t *testing.T) {
	src := &stubSource{answers: testAnswers, allowed: ""}
	s := NewSession(src)
	// pool is fine, so a game starts, but the corpus is not considered loaded
	require.NoError(t, s.Load(context.Background()))

	_, err := s.SubmitGuess("angle")
	assert.ErrorIs(t, err, ErrInvalidWord)

	require.NoError(t, s.StartNewGame(context.Background()))
	assert.Equal(t, 2, src.fetches)
}

func TestLoad_ReloadFromInProgress(t *testing.T) {
	s := newLoadedSession(t, "ANGLE")
	_, err := s.SubmitGuess("crane")
	require.NoError(t, err)

	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, StatusInProgress, s.Status())
	assert.Empty(t, s.History())
}

func TestOutcome(t *testing.T) {
	start := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	tick := start
	clock := func() time.Time { tick = tick.Add(time.Second); return tick }

	s := newLoadedSession(t, "ANGLE", WithClock(clock), WithID("sess-1"))
	_, ok := s.Outcome()
	assert.False(t, ok)

	_, _ = s.SubmitGuess("zzzzz")
	_, _ = s.SubmitGuess("crane")
	_, err := s.SubmitGuess("angle")
	require.NoError(t, err)

	o, ok := s.Outcome()
	require.True(t, ok)
	assert.Equal(t, "sess-1", o.SessionID)
	assert.Equal(t, "ANGLE", o.Secret)
	assert.True(t, o.Won)
	assert.Equal(t, 2, o.Attempts)
	assert.Equal(t, 1, o.InvalidAttempts)
	assert.True(t, o.FinishedAt.After(o.StartedAt))
	assert.NotEmpty(t, o.GameID)
}

func TestWithWordLength(t *testing.T) {
	src := &stubSource{answers: "cat\ndog", allowed: "cat\ndog\nowl"}
	s := NewSession(src, WithWordLength(3), WithSelector(words.FixedSelector("cat")))
	require.NoError(t, s.Load(context.Background()))

	_, err := s.SubmitGuess("angle")
	assert.ErrorIs(t, err, ErrWrongLength)

	res, err := s.SubmitGuess("act")
	assert.ErrorIs(t, err, ErrInvalidWord)
	assert.Empty(t, res.Attempt.Feedback)

	res, err = s.SubmitGuess("owl")
	require.NoError(t, err)
	assert.Equal(t, "RRR", res.Attempt.Feedback)
}

func TestSession_ConcurrentSubmits(t *testing.T) {
	s := newLoadedSession(t, "ANGLE")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.SubmitGuess("crane")
			_ = s.Snapshot()
		}()
	}
	wg.Wait()

	assert.Equal(t, StatusLost, s.Status())
	assert.Len(t, s.History(), 6, "exactly maxGuesses submissions are accepted")
}
