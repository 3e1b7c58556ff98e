// Package dictionary loads the word list used for spell checking submissions.
// The list is loaded once at startup; lookups after that are lock-free.
package dictionary

import (
	"bufio"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Small embedded fallback so the server runs without a configured word file.
//
//go:embed default_words.txt
var embeddedWords string

const envWordsFile = "WORDS_FILE"

type Dictionary struct {
	path string

	once    sync.Once
	loadErr error
	loaded  bool
	words   map[string]struct{}
}

// New builds a dictionary backed by the word file at path. An empty path
// selects the embedded default list.
func New(path string) *Dictionary {
	return &Dictionary{path: path}
}

// NewFromEnv reads WORDS_FILE for the list location, falling back to the
// embedded defaults when unset.
func NewFromEnv() *Dictionary {
	return New(os.Getenv(envWordsFile))
}

// Load reads and indexes the word list. Safe to call more than once; only the
// first call does work. An empty resulting list is an error.
func (d *Dictionary) Load() error {
	d.once.Do(func() {
		words := make(map[string]struct{})

		if d.path != "" {
			f, err := os.Open(d.path)
			if err != nil {
				d.loadErr = fmt.Errorf("open word list: %w", err)
				return
			}
			defer f.Close()

			sc := bufio.NewScanner(f)
			for sc.Scan() {
				addWord(words, sc.Text())
			}
			if err := sc.Err(); err != nil {
				d.loadErr = fmt.Errorf("read word list: %w", err)
				return
			}
		} else {
			for _, line := range strings.Split(embeddedWords, "\n") {
				addWord(words, line)
			}
		}

		if len(words) == 0 {
			d.loadErr = fmt.Errorf("word list is empty")
			return
		}
		d.words = words
		d.loaded = true
	})
	return d.loadErr
}

func addWord(words map[string]struct{}, raw string) {
	w := strings.ToLower(strings.TrimSpace(raw))
	if w != "" {
		words[w] = struct{}{}
	}
}

// IsValidWord reports whether the word appears in the list. Lookups are
// case-insensitive and anything shorter than two letters is rejected.
// Panics if Load has not succeeded; call sites must load at startup.
func (d *Dictionary) IsValidWord(word string) bool {
	if !d.loaded {
		panic("dictionary: IsValidWord before Load")
	}
	w := strings.ToLower(strings.TrimSpace(word))
	if len(w) < 2 {
		return false
	}
	_, ok := d.words[w]
	return ok
}

func (d *Dictionary) WordCount() int {
	return len(d.words)
}
