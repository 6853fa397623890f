// assets/embed.go
//
// Embedded default word lists.
//   - answers.txt: the secret-word pool (one word per line).
//   - allowed.txt: the valid-guess list (one word per line).
//
// The lists are exposed as raw text; normalization and length filtering
// happen in the words package so every source goes through the same path.

package assets

import (
	"embed"
)

//go:embed allowed.txt answers.txt
var FS embed.FS

func readText(name string) (string, error) {
	b, err := FS.ReadFile(name)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// AnswersText returns the embedded secret-word pool.
func AnswersText() (string, error) {
	return readText("answers.txt")
}

// AllowedText returns the embedded valid-guess list.
func AllowedText() (string, error) {
	return readText("allowed.txt")
}
