package game

import "strings"

// Score compares guess against secret and returns the feedback code.
//
// Pass 1:
//   - Mark exact matches as Hit and consume those secret letters.
//
// Pass 2:
//   - For each non-hit guess letter, take the leftmost unconsumed secret letter
//     that equals it: mark Present and consume it. Otherwise Miss.
//
// Exact matches are locked in before any Present credit is handed out, so a
// repeated letter is never credited more times than it occurs in the secret.
// Both words must be normalized and the same length; extra guess letters
// beyond the secret are reported as Miss.
func Score(guess, secret string) string {
	g, s := []rune(guess), []rune(secret)
	code := make([]byte, len(g))
	used := make([]bool, len(s))

	for i := range code {
		code[i] = byte(MarkMiss)
	}

	// First pass: exact position.
	for i := 0; i < len(g) && i < len(s); i++ {
		if g[i] == s[i] {
			code[i] = byte(MarkHit)
			used[i] = true
		}
	}

	// Second pass: present elsewhere, first unconsumed occurrence wins.
	for i := range g {
		if code[i] == byte(MarkHit) {
			continue
		}
		for j := range s {
			if !used[j] && s[j] == g[i] {
				code[i] = byte(MarkPresent)
				used[j] = true
				break
			}
		}
	}
	return string(code)
}

// IsWin reports whether code is a non-empty run of hits.
func IsWin(code string) bool {
	return code != "" && strings.Trim(code, string(rune(MarkHit))) == ""
}

