// Package ledger records applied moves in order. Entries are never modified
// or removed once appended.
package ledger

import "github.com/park285/termchess/internal/board"

// Entry is one applied ply.
type Entry struct {
	// Ply is the 1-based half-move number within the game.
	Ply       int
	Color     board.Color
	Move      board.Move
	DrawOffer bool
	Check     bool
	Mate      bool
}

// Notation is the move text with "+" for check and "++" for mate.
func (e Entry) Notation() string {
	s := e.Move.String()
	switch {
	case e.Mate:
		s += "++"
	case e.Check:
		s += "+"
	}
	return s
}

// TurnNumber is the full-move number the entry belongs to.
func (e Entry) TurnNumber() int { return (e.Ply-1)/2 + 1 }

// Turn pairs the white and black entries of one full move. Either side may be
// absent: Black before the reply is played, White when a game starts from a
// Black-to-move setup.
type Turn struct {
	Number int
	White  *Entry
	Black  *Entry
}

// Ledger is an append-only move history. The zero value is empty and ready.
type Ledger struct {
	entries []Entry
}

// Append adds e at the end.
func (l *Ledger) Append(e Entry) {
	l.entries = append(l.entries, e)
}

// Len is the number of recorded plies.
func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// Entries returns a copy of the full history.
func (l *Ledger) Entries() []Entry {
	if l == nil || len(l.entries) == 0 {
		return nil
	}
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// At returns the i-th entry, 0-based.
func (l *Ledger) At(i int) (Entry, bool) {
	if l == nil || i < 0 || i >= len(l.entries) {
		return Entry{}, false
	}
	return l.entries[i], true
}

// Last returns the most recent entry.
func (l *Ledger) Last() (Entry, bool) {
	return l.At(l.Len() - 1)
}

// Turns groups the history into full moves.
func (l *Ledger) Turns() []Turn {
	var out []Turn
	for _, e := range l.Entries() {
		n := e.TurnNumber()
		if len(out) == 0 || out[len(out)-1].Number != n {
			out = append(out, Turn{Number: n})
		}
		t := &out[len(out)-1]
		if e.Color == board.White {
			t.White = &e
		} else {
			t.Black = &e
		}
	}
	return out
}

// Turn returns the full move numbered n.
func (l *Ledger) Turn(n int) (Turn, bool) {
	for _, t := range l.Turns() {
		if t.Number == n {
			return t, true
		}
	}
	return Turn{}, false
}

// UCI lists the moves in UCI coordinates.
func (l *Ledger) UCI() []string {
	out := make([]string, 0, l.Len())
	for _, e := range l.Entries() {
		out = append(out, e.Move.UCI())
	}
	return out
}

// Captured lists, per capturing color, the piece types taken so far.
func (l *Ledger) Captured() [2][]board.PieceType {
	var out [2][]board.PieceType
	for _, e := range l.Entries() {
		if e.Move.IsCapture() {
			out[e.Color] = append(out[e.Color], e.Move.Captured)
		}
	}
	return out
}

// Clone returns an independent ledger with the same entries.
func (l *Ledger) Clone() *Ledger {
	return &Ledger{entries: l.Entries()}
}
