package chesspresenter

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/park285/termchess/pkg/chessdto"
)

// ImageSink receives the board image after each shown snapshot.
type ImageSink func(ctx context.Context, snap *chessdto.Snapshot) error

// Presenter writes formatted text to an output stream and optionally hands
// each snapshot to an image sink, without coupling to the input loop.
type Presenter struct {
	out   io.Writer
	fmt   *Formatter
	image ImageSink
}

func NewPresenter(out io.Writer, f *Formatter, image ImageSink) *Presenter {
	if f == nil {
		f = NewFormatter(nil)
	}
	return &Presenter{out: out, fmt: f, image: image}
}

func (p *Presenter) Formatter() *Formatter { return p.fmt }

// Show prints the board followed by the status or outcome.
func (p *Presenter) Show(ctx context.Context, snap *chessdto.Snapshot) error {
	if p == nil || snap == nil {
		return nil
	}
	if err := p.Message(p.fmt.Board(snap) + "\n" + p.fmt.Status(snap)); err != nil {
		return err
	}
	if p.image != nil {
		if err := p.image(ctx, snap); err != nil {
			return fmt.Errorf("board image: %w", err)
		}
	}
	return nil
}

// Message writes text on its own line; blank text is skipped.
func (p *Presenter) Message(text string) error {
	if p == nil || p.out == nil || strings.TrimSpace(text) == "" {
		return nil
	}
	_, err := io.WriteString(p.out, strings.TrimRight(text, "\n")+"\n")
	return err
}

// Prompt writes text without a trailing newline.
func (p *Presenter) Prompt(text string) error {
	if p == nil || p.out == nil {
		return nil
	}
	_, err := io.WriteString(p.out, text)
	return err
}

func (p *Presenter) Error(err error) error {
	return p.Message(p.fmt.Error(err))
}
