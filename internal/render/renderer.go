// Package render draws a game snapshot as a PNG board image.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/park285/termchess/internal/board"
	"github.com/park285/termchess/pkg/chessdto"
)

type Options struct {
	// Flip draws the board from Black's side.
	Flip bool
	// Header replaces the "White vs Black" title.
	Header string
	// Turn replaces the status line under the title.
	Turn string
	// NoHighlight suppresses the last-move marker.
	NoHighlight bool
}

type Renderer interface {
	RenderPNG(ctx context.Context, snap chessdto.Snapshot, opts Options) ([]byte, error)
}

type svgRenderer struct {
	face font.Face
}

func NewRenderer() Renderer {
	return &svgRenderer{face: basicfont.Face7x13}
}

// RenderPNG is a convenience over NewRenderer().RenderPNG.
func RenderPNG(ctx context.Context, snap chessdto.Snapshot, opts Options) ([]byte, error) {
	return NewRenderer().RenderPNG(ctx, snap, opts)
}

const (
	cell         = 64
	boardPx      = cell * 8
	sideMargin   = 32
	topMargin    = 96
	bottomMargin = 32
	panelRadius  = 10
	panelHeight  = 28
	panelGap     = 10
	boardGap     = 16
)

var (
	lightSquare    = color.RGBA{233, 207, 163, 255}
	darkSquare     = color.RGBA{187, 136, 96, 255}
	background     = color.RGBA{22, 24, 34, 255}
	whiteMoveFill  = color.NRGBA{R: 255, G: 228, B: 120, A: 140}
	blackMoveArrow = color.NRGBA{R: 148, G: 207, B: 255, A: 170}
	checkFill      = color.NRGBA{R: 230, G: 60, B: 60, A: 150}
	panelColor     = color.NRGBA{R: 28, G: 31, B: 46, A: 250}
	panelShadow    = color.NRGBA{0, 0, 0, 50}
	textPrimary    = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	textSecondary  = color.NRGBA{R: 204, G: 210, B: 236, A: 255}
	coordColor     = color.NRGBA{R: 8, G: 214, B: 120, A: 255}
)

// layout maps board squares to pixel rectangles for one orientation.
type layout struct {
	origin image.Point
	flip   bool
}

func (l layout) rect(sq board.Square) image.Rectangle {
	col, row := sq.File(), 7-sq.Rank()
	if l.flip {
		col, row = 7-col, sq.Rank()
	}
	x := l.origin.X + col*cell
	y := l.origin.Y + row*cell
	return image.Rect(x, y, x+cell, y+cell)
}

func (r *svgRenderer) RenderPNG(ctx context.Context, snap chessdto.Snapshot, opts Options) ([]byte, error) {
	if len(snap.Board) != 8 {
		return nil, fmt.Errorf("snapshot board has %d ranks", len(snap.Board))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, boardPx+sideMargin*2, boardPx+topMargin+bottomMargin))
	fillRect(img, img.Bounds(), background)
	l := layout{origin: image.Pt(sideMargin, topMargin), flip: opts.Flip}

	r.drawHUD(img, snap, opts, image.Rect(l.origin.X, l.origin.Y, l.origin.X+boardPx, l.origin.Y+boardPx))
	drawSquares(img, l)
	if !opts.NoHighlight {
		drawLastMove(img, l, snap)
	}
	if snap.InCheck {
		drawCheck(img, l, snap)
	}
	if err := drawPieces(img, l, snap.Board); err != nil {
		return nil, err
	}
	r.drawCoordinates(img, l)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawSquares(img *image.RGBA, l layout) {
	for sq := board.Square(0); sq < 64; sq++ {
		clr := lightSquare
		if (sq.File()+sq.Rank())%2 == 0 {
			clr = darkSquare
		}
		fillRect(img, l.rect(sq), clr)
	}
}

// drawPieces reads the grid rows, rank 8 first, one FEN letter or '.' per file.
func drawPieces(img *image.RGBA, l layout, grid []string) error {
	for row, line := range grid {
		if len(line) != 8 {
			return fmt.Errorf("rank %d has %d files", 8-row, len(line))
		}
		for file := 0; file < 8; file++ {
			letter := line[file]
			if letter == '.' || letter == ' ' {
				continue
			}
			piece, err := pieceImage(letter, cell)
			if err != nil {
				return err
			}
			dst := l.rect(board.NewSquare(file, 7-row))
			drawOver(img, dst, piece)
		}
	}
	return nil
}

func drawOver(img *image.RGBA, dst image.Rectangle, src image.Image) {
	b := src.Bounds()
	for y := 0; y < dst.Dy() && y < b.Dy(); y++ {
		for x := 0; x < dst.Dx() && x < b.Dx(); x++ {
			blendPixel(img, dst.Min.X+x, dst.Min.Y+y, src.At(b.Min.X+x, b.Min.Y+y))
		}
	}
}

// lastMoveSquares reads the final UCI move of the snapshot.
func lastMoveSquares(snap chessdto.Snapshot) (from, to board.Square, ok bool) {
	if len(snap.MovesUCI) == 0 {
		return board.NoSquare, board.NoSquare, false
	}
	uci := snap.MovesUCI[len(snap.MovesUCI)-1]
	if len(uci) < 4 {
		return board.NoSquare, board.NoSquare, false
	}
	f, err1 := board.ParseSquare(uci[0:2])
	t, err2 := board.ParseSquare(uci[2:4])
	if err1 != nil || err2 != nil {
		return board.NoSquare, board.NoSquare, false
	}
	return f, t, true
}

// White moves are shaded, Black moves get an arrow. The mover is the side
// not to move now; a resignation does not change the turn.
func drawLastMove(img *image.RGBA, l layout, snap chessdto.Snapshot) {
	from, to, ok := lastMoveSquares(snap)
	if !ok {
		return
	}
	if snap.Turn == board.Black.String() {
		fillRect(img, l.rect(from), whiteMoveFill)
		fillRect(img, l.rect(to), whiteMoveFill)
		return
	}
	drawArrow(img, l.rect(from), l.rect(to), blackMoveArrow)
}

func drawCheck(img *image.RGBA, l layout, snap chessdto.Snapshot) {
	king := byte('K')
	if snap.Turn == board.Black.String() {
		king = 'k'
	}
	for row, line := range snap.Board {
		if i := strings.IndexByte(line, king); i >= 0 {
			rc := l.rect(board.NewSquare(i, 7-row))
			drawDisc(img, rc.Min.Add(image.Pt(cell/2, cell/2)), cell/2-4, checkFill)
			return
		}
	}
}

func (r *svgRenderer) drawHUD(img *image.RGBA, snap chessdto.Snapshot, opts Options, boardRect image.Rectangle) {
	d := &font.Drawer{Dst: img, Face: r.face}

	title := strings.TrimSpace(opts.Header)
	if title == "" {
		title = fmt.Sprintf("%s vs %s", orDefault(snap.White, "White"), orDefault(snap.Black, "Black"))
	}
	turn := strings.TrimSpace(opts.Turn)
	if turn == "" {
		turn = hudStatus(snap)
	}
	score := materialText(snap.Material)

	turnBottom := boardRect.Min.Y - boardGap
	turnRect := image.Rect(boardRect.Min.X, turnBottom-panelHeight, boardRect.Max.X, turnBottom)
	titleBottom := turnRect.Min.Y - panelGap
	scoreW := d.MeasureString(score).Round() + 32
	titleRect := image.Rect(boardRect.Min.X, titleBottom-panelHeight, boardRect.Max.X-scoreW-panelGap, titleBottom)
	scoreRect := image.Rect(boardRect.Max.X-scoreW, titleRect.Min.Y, boardRect.Max.X, titleRect.Max.Y)

	for _, rc := range []image.Rectangle{titleRect, scoreRect, turnRect} {
		roundedPanel(img, rc.Add(image.Pt(0, 4)), panelRadius, panelShadow)
		roundedPanel(img, rc, panelRadius, panelColor)
	}
	centerText(d, titleRect, ellipsize(r.face, title, titleRect.Dx()-24), textPrimary)
	centerText(d, scoreRect, score, textPrimary)
	centerText(d, turnRect, ellipsize(r.face, turn, turnRect.Dx()-24), textSecondary)
}

func hudStatus(snap chessdto.Snapshot) string {
	switch snap.Status {
	case "", chessdto.StatusOngoing:
		s := fmt.Sprintf("%s to move", titleCase(snap.Turn))
		if snap.InCheck {
			s += " (check)"
		}
		if snap.DrawOffer != "" {
			s += ", draw offered by " + titleCase(snap.DrawOffer)
		}
		return s
	case chessdto.StatusStalemate:
		return "Stalemate, draw"
	case chessdto.StatusDrawByAgreement:
		return "Draw by agreement"
	default:
		return fmt.Sprintf("%s, %s wins", titleCase(strings.ReplaceAll(snap.Status, "_", " ")), titleCase(snap.Winner))
	}
}

func materialText(m chessdto.MaterialScore) string {
	if diff := m.Diff(); diff != 0 {
		return fmt.Sprintf("%d:%d (%+d)", m.White, m.Black, diff)
	}
	return fmt.Sprintf("%d:%d", m.White, m.Black)
}

func (r *svgRenderer) drawCoordinates(img *image.RGBA, l layout) {
	d := &font.Drawer{Dst: img, Face: r.face, Src: image.NewUniform(coordColor)}
	ascent := r.face.Metrics().Ascent.Ceil()
	for i := 0; i < 8; i++ {
		rankRect := l.rect(board.NewSquare(0, i))
		fileRect := l.rect(board.NewSquare(i, 0))
		if l.flip {
			rankRect = l.rect(board.NewSquare(7, i))
			fileRect = l.rect(board.NewSquare(i, 7))
		}
		left := l.origin.X - sideMargin/2
		bottom := l.origin.Y + boardPx + ascent + 4
		textAt(d, string(rune('1'+i)), left, rankRect.Min.Y+cell/2+ascent/2)
		textAt(d, string(rune('a'+i)), fileRect.Min.X+cell/2, bottom)
	}
}

func textAt(d *font.Drawer, s string, centerX, baseline int) {
	w := d.MeasureString(s).Round()
	d.Dot = fixed.P(centerX-w/2, baseline)
	d.DrawString(s)
}

func centerText(d *font.Drawer, rc image.Rectangle, s string, clr color.Color) {
	if s == "" {
		return
	}
	m := d.Face.Metrics()
	w := d.MeasureString(s).Round()
	x := max(rc.Min.X+(rc.Dx()-w)/2, rc.Min.X)
	baseline := rc.Min.Y + (rc.Dy()+m.Ascent.Ceil()-m.Descent.Ceil())/2
	d.Src = image.NewUniform(clr)
	d.Dot = fixed.P(x, baseline)
	d.DrawString(s)
}

func ellipsize(face font.Face, s string, maxWidth int) string {
	d := font.Drawer{Face: face}
	if maxWidth <= 0 || d.MeasureString(s).Round() <= maxWidth {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		if c := string(runes) + "..."; d.MeasureString(c).Round() <= maxWidth {
			return c
		}
	}
	return ""
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
