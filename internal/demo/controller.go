package demo

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/park285/termchess/internal/game"
	"github.com/park285/termchess/internal/movetext"
	"github.com/park285/termchess/internal/obslog"
)

var (
	// ErrNotPlaying rejects an advance once the demo was interrupted.
	ErrNotPlaying = errors.New("demo is not playing")
	// ErrExhausted rejects an advance after the last recorded ply.
	ErrExhausted = errors.New("demo is exhausted")
	// ErrAborted rejects all input after a recorded ply failed.
	ErrAborted = errors.New("demo was aborted")
)

// State is the controller mode.
type State uint8

const (
	// Playing replays recorded plies on each advance signal.
	Playing State = iota
	// Interrupted means a live move took over; recorded plies are discarded.
	Interrupted
	// Aborted means a recorded ply could not be played.
	Aborted
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Interrupted:
		return "interrupted"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Controller feeds a Script into a Game. It does not own any rules: every
// recorded and live ply goes through game.Apply.
type Controller struct {
	game   *game.Game
	script *Script
	cursor int
	state  State
	logger *zap.Logger
}

// NewController starts in Playing with the cursor on the first recorded ply.
func NewController(g *game.Game, s *Script) *Controller {
	return &Controller{game: g, script: s, logger: obslog.L()}
}

// State reports the current mode.
func (c *Controller) State() State { return c.state }

// Cursor is the index of the next recorded ply.
func (c *Controller) Cursor() int { return c.cursor }

// Remaining counts recorded plies still to be replayed. Interruption discards
// them, so it is zero afterwards.
func (c *Controller) Remaining() int {
	if c.state != Playing {
		return 0
	}
	return c.script.Len() - c.cursor
}

// Exhausted reports that every recorded ply has been replayed.
func (c *Controller) Exhausted() bool {
	return c.state == Playing && c.cursor >= c.script.Len()
}

// Game returns the controlled game.
func (c *Controller) Game() *game.Game { return c.game }

// Advance replays the next recorded ply. A ply the game rejects aborts the
// demo with an *EntryError.
func (c *Controller) Advance() (game.Result, error) {
	switch {
	case c.state == Aborted:
		return game.Result{}, ErrAborted
	case c.state != Playing:
		return game.Result{}, ErrNotPlaying
	case c.Exhausted():
		return game.Result{}, ErrExhausted
	}

	e := c.script.entries[c.cursor]
	res, err := c.game.Apply(e.Action)
	if err != nil {
		c.state = Aborted
		c.logger.Error("demo_aborted",
			zap.String("game_id", c.game.ID()),
			zap.Int("line", e.Line),
			zap.String("entry", e.Text),
			zap.Error(err),
		)
		return game.Result{}, &EntryError{Line: e.Line, Text: e.Text, Err: err}
	}
	c.cursor++
	c.logger.Info("demo_advance",
		zap.String("game_id", c.game.ID()),
		zap.Int("cursor", c.cursor),
		zap.Int("remaining", c.Remaining()),
		zap.String("entry", e.Text),
	)
	return res, nil
}

// Submit handles one line of input. Blank input advances the demo while it is
// playing. Anything else is a live action: while recorded plies remain it
// first interrupts the demo, even if the action turns out to be invalid.
func (c *Controller) Submit(input string) (game.Result, error) {
	if c.state == Aborted {
		return game.Result{}, ErrAborted
	}
	line := strings.TrimSpace(input)
	if line == "" && c.state == Playing && !c.Exhausted() {
		return c.Advance()
	}
	if line != "" && c.state == Playing && !c.Exhausted() {
		c.interrupt()
	}

	a, err := movetext.Parse(line)
	if err != nil {
		return game.Result{}, err
	}
	res, err := c.game.Apply(a)
	if err != nil {
		return game.Result{}, fmt.Errorf("live %q: %w", line, err)
	}
	return res, nil
}

func (c *Controller) interrupt() {
	discarded := c.script.Len() - c.cursor
	c.state = Interrupted
	c.logger.Info("demo_interrupted",
		zap.String("game_id", c.game.ID()),
		zap.Int("cursor", c.cursor),
		zap.Int("discarded", discarded),
	)
}
