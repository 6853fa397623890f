// internal/daily/daily.go
//
// Deterministic "word of the day" selection.
// Every session started on the same UTC date with the same salt gets the
// same secret, drawn from the corpus pool by HMAC(salt, YYYY-MM-DD).

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/shash-786/wordle-engine/internal/words"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// WordIndex returns a deterministic index for a date using HMAC(salt, YYYY-MM-DD) % answersLen.
func WordIndex(date time.Time, salt string, answersLen int) int {
	if answersLen <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// take first 8 bytes to uint64 for modulus distribution
	n := binary.BigEndian.Uint64(sum[:8])
	return int(n % uint64(answersLen))
}

// Selector picks the day's secret from the corpus pool.
type Selector struct {
	Salt string
	Now  func() time.Time // nil means time.Now
}

// Select implements words.Selector.
func (s Selector) Select(c *words.Corpus) (string, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	day := now()
	return c.SelectSecret(func(n int) (int, error) {
		return WordIndex(day, s.Salt, n), nil
	})
}
