// Package demo replays a recorded game one ply per advance signal, until a
// live move interrupts it.
package demo

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/park285/termchess/internal/game"
	"github.com/park285/termchess/internal/movetext"
)

// ErrMalformedEntry marks a recorded line that fails the grammar or cannot be
// played against the replayed position. It is fatal for the demo.
var ErrMalformedEntry = errors.New("malformed demo entry")

// EntryError locates a bad recorded line. It matches ErrMalformedEntry and
// the underlying cause under errors.Is.
type EntryError struct {
	Line int
	Text string
	Err  error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%v: line %d %q: %v", ErrMalformedEntry, e.Line, e.Text, e.Err)
}

func (e *EntryError) Unwrap() []error { return []error{ErrMalformedEntry, e.Err} }

// Entry is one recorded ply.
type Entry struct {
	Line   int
	Text   string
	Action game.Action
}

// Script is a parsed demo file.
type Script struct {
	entries []Entry
}

// Load reads one move-text line per ply. Blank lines are skipped; the first
// line that fails to parse aborts the load.
func Load(r io.Reader) (*Script, error) {
	s := &Script{}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		a, err := movetext.Parse(text)
		if err != nil {
			return nil, &EntryError{Line: line, Text: text, Err: err}
		}
		s.entries = append(s.entries, Entry{Line: line, Text: text, Action: a})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read demo: %w", err)
	}
	return s, nil
}

// LoadFile opens path and calls Load.
func LoadFile(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open demo %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Len is the number of recorded plies.
func (s *Script) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Entries returns a copy of the recorded plies.
func (s *Script) Entries() []Entry {
	if s == nil {
		return nil
	}
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}
