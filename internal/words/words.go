// internal/words/words.go
//
// Word corpus for the game engine.
//
// Responsibilities:
//   - Build the secret-word pool and the valid-guess set from raw text.
//   - Pick a secret uniformly at random (crypto/rand).
//   - Answer membership questions for submitted guesses.
//
// Word Lists:
//   - "answers": candidate secrets, kept in source order.
//   - "allowed": words a player may submit. Only membership is ever queried.
//
// Normalization:
//   - Every line is trimmed and uppercased.
//   - Lines that are not exactly wordLength characters are dropped at load time.
//   - An empty pool is not a load failure; it surfaces as ErrEmptyPool when a
//     secret is requested.

package words

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
)

// DefaultWordLength is the classic Wordle word length.
const DefaultWordLength = 5

var (
	// ErrLoad reports that a word list could not be fetched.
	ErrLoad = errors.New("words: word lists unavailable")

	// ErrEmptyPool reports that the corpus has no candidate secrets.
	ErrEmptyPool = errors.New("words: secret pool is empty")
)

// Corpus holds one loaded pair of word lists. It is immutable after Load.
type Corpus struct {
	wordLength int
	pool       []string
	valid      map[string]struct{}
}

// Load builds a corpus from newline-delimited secret and guess text.
func Load(secretText, guessText string, wordLength int) *Corpus {
	pool := normalizeLines(secretText, wordLength)
	valid := lo.Associate(normalizeLines(guessText, wordLength), func(w string) (string, struct{}) {
		return w, struct{}{}
	})
	return &Corpus{wordLength: wordLength, pool: pool, valid: valid}
}

// Normalize trims surrounding whitespace and uppercases w.
func Normalize(w string) string {
	return strings.ToUpper(strings.TrimSpace(w))
}

// normalizeLines splits s on line breaks and keeps the normalized lines
// that are exactly n characters long.
func normalizeLines(s string, n int) []string {
	return lo.FilterMap(strings.Split(s, "\n"), func(line string, _ int) (string, bool) {
		w := Normalize(line)
		return w, w != "" && utf8.RuneCountInString(w) == n
	})
}

// WordLength reports the length every word in the corpus has.
func (c *Corpus) WordLength() int { return c.wordLength }

// Ready reports whether both lists have at least one word.
func (c *Corpus) Ready() bool {
	return c != nil && len(c.pool) > 0 && len(c.valid) > 0
}

// Pool returns a copy of the secret-word pool.
func (c *Corpus) Pool() []string {
	return append([]string(nil), c.pool...)
}

// SelectRandomSecret returns a uniformly chosen entry of the secret pool.
func (c *Corpus) SelectRandomSecret() (string, error) {
	return c.SelectSecret(cryptoIntn)
}

// SelectSecret returns the pool entry at pick(len(pool)).
// pick must return an index in [0, n).
func (c *Corpus) SelectSecret(pick func(n int) (int, error)) (string, error) {
	if c == nil || len(c.pool) == 0 {
		return "", ErrEmptyPool
	}
	i, err := pick(len(c.pool))
	if err != nil {
		return "", fmt.Errorf("words: select secret: %w", err)
	}
	if i < 0 || i >= len(c.pool) {
		return "", fmt.Errorf("words: select secret: index %d out of range [0,%d)", i, len(c.pool))
	}
	return c.pool[i], nil
}

// IsValidGuess reports whether w, once normalized, is in the valid-guess set.
func (c *Corpus) IsValidGuess(w string) bool {
	if c == nil {
		return false
	}
	_, ok := c.valid[Normalize(w)]
	return ok
}

// Stats returns counts of loaded words: (answers, allowed).
func (c *Corpus) Stats() (answersCount int, allowedCount int) {
	if c == nil {
		return 0, 0
	}
	return len(c.pool), len(c.valid)
}

// cryptoIntn draws from [0, n) using crypto/rand.
func cryptoIntn(n int) (int, error) {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(nBig.Int64()), nil
}
