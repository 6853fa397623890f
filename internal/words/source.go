// internal/words/source.go
//
// Corpus sources. A Source hands back the two raw word-list blobs; it knows
// nothing about normalization or word length.
//
// Selection (NewSource):
//   1. If both URLs are set, fetch the lists over HTTP.
//   2. If WORDS_ANSWERS_FILE and/or WORDS_ALLOWED_FILE are set, read files.
//      When only the allowed file is set it serves both lists.
//   3. Otherwise fall back to the embedded defaults in the assets package.

package words

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/shash-786/wordle-engine/assets"
)

// Source supplies raw newline-delimited word lists.
type Source interface {
	Fetch(ctx context.Context) (secretText, guessText string, err error)
}

// SourceConfig describes where word lists come from.
type SourceConfig struct {
	AnswersFile string
	AllowedFile string
	AnswersURL  string
	AllowedURL  string
}

// NewSource picks HTTP, file, or embedded lists from sc.
func NewSource(sc SourceConfig, client *http.Client) Source {
	switch {
	case sc.AnswersURL != "" && sc.AllowedURL != "":
		return HTTPSource{AnswersURL: sc.AnswersURL, AllowedURL: sc.AllowedURL, Client: client}
	case sc.AnswersFile != "" || sc.AllowedFile != "":
		return FileSource{AnswersPath: sc.AnswersFile, AllowedPath: sc.AllowedFile}
	default:
		return EmbeddedSource{}
	}
}

// LoadFrom fetches both lists from src and builds a Corpus.
// Any fetch failure is reported as ErrLoad.
func LoadFrom(ctx context.Context, src Source, wordLength int) (*Corpus, error) {
	secretText, guessText, err := src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return Load(secretText, guessText, wordLength), nil
}

// EmbeddedSource serves the word lists compiled into the binary.
type EmbeddedSource struct{}

func (EmbeddedSource) Fetch(ctx context.Context) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	answers, err := assets.AnswersText()
	if err != nil {
		return "", "", fmt.Errorf("embedded answers: %w", err)
	}
	allowed, err := assets.AllowedText()
	if err != nil {
		return "", "", fmt.Errorf("embedded allowed: %w", err)
	}
	return answers, allowed, nil
}

// FileSource reads the word lists from disk.
type FileSource struct {
	AnswersPath string
	AllowedPath string
}

func (f FileSource) Fetch(ctx context.Context) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	answersPath, allowedPath := f.AnswersPath, f.AllowedPath
	switch {
	case answersPath == "" && allowedPath == "":
		return "", "", fmt.Errorf("file source: no paths configured")
	case answersPath == "":
		answersPath = allowedPath
	case allowedPath == "":
		allowedPath = answersPath
	}

	answers, err := os.ReadFile(answersPath)
	if err != nil {
		return "", "", err
	}
	allowed, err := os.ReadFile(allowedPath)
	if err != nil {
		return "", "", err
	}
	return string(answers), string(allowed), nil
}

// HTTPSource downloads both lists as whole-text blobs.
type HTTPSource struct {
	AnswersURL string
	AllowedURL string
	Client     *http.Client // nil means http.DefaultClient
}

func (h HTTPSource) Fetch(ctx context.Context) (string, string, error) {
	answers, err := h.get(ctx, h.AnswersURL)
	if err != nil {
		return "", "", err
	}
	allowed, err := h.get(ctx, h.AllowedURL)
	if err != nil {
		return "", "", err
	}
	return answers, allowed, nil
}

func (h HTTPSource) get(ctx context.Context, url string) (string, error) {
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("GET %s: %w", url, err)
	}
	return string(body), nil
}
