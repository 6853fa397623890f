package words

import (
	"fmt"
	"unicode/utf8"
)

// Selector chooses the secret word for a new game.
type Selector interface {
	Select(c *Corpus) (string, error)
}

// SelectorFunc adapts a function to the Selector interface.
type SelectorFunc func(c *Corpus) (string, error)

// Select calls f(c).
func (f SelectorFunc) Select(c *Corpus) (string, error) { return f(c) }

// RandomSelector draws a fresh secret uniformly from the pool on every call.
// Repeats across games are possible.
var RandomSelector Selector = SelectorFunc(func(c *Corpus) (string, error) {
	return c.SelectRandomSecret()
})

// FixedSelector always returns word. The pool must still be non-empty and word
// must match the corpus word length.
func FixedSelector(word string) Selector {
	w := Normalize(word)
	return SelectorFunc(func(c *Corpus) (string, error) {
		if answers, _ := c.Stats(); answers == 0 {
			return "", ErrEmptyPool
		}
		if n := utf8.RuneCountInString(w); n != c.WordLength() {
			return "", fmt.Errorf("words: fixed secret %q has %d letters, want %d", w, n, c.WordLength())
		}
		return w, nil
	})
}
