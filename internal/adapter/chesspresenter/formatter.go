package chesspresenter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/park285/termchess/internal/movetext"
	"github.com/park285/termchess/internal/msgcat"
	"github.com/park285/termchess/pkg/chessdto"
)

const capturedRecentLimit = 8

// Formatter renders snapshots and errors into plain text blocks.
type Formatter struct {
	cat *msgcat.Catalog
}

// NewFormatter uses the embedded catalog when cat is nil.
func NewFormatter(cat *msgcat.Catalog) *Formatter {
	if cat == nil {
		cat = msgcat.Default()
	}
	return &Formatter{cat: cat}
}

func (f *Formatter) Banner() string {
	return f.cat.Text("banner", nil, "termchess")
}

// Prompt asks the side to move for input.
func (f *Formatter) Prompt(s *chessdto.Snapshot) string {
	player, color := sideToMove(s)
	return f.cat.Text("prompt.move", map[string]any{"Player": player, "Color": color}, player+" to move: ")
}

func (f *Formatter) DemoPrompt(cursor, total int) string {
	return f.cat.Text("prompt.demo", map[string]any{"Cursor": cursor, "Total": total}, "> ")
}

func (f *Formatter) DemoLoaded(total int) string {
	return f.cat.Text("demo.loaded", map[string]any{"Total": total}, "")
}

func (f *Formatter) DemoInterrupted(discarded int) string {
	return f.cat.Text("demo.interrupted", map[string]any{"Discarded": discarded}, "")
}

func (f *Formatter) DemoExhausted() string {
	return f.cat.Text("demo.exhausted", nil, "")
}

// WatchHeader introduces a snapshot seen from outside the game.
func (f *Formatter) WatchHeader(s *chessdto.Snapshot) string {
	return f.cat.Text("watch.header", map[string]any{
		"GameID": s.GameID,
		"White":  s.White,
		"Black":  s.Black,
		"Ply":    s.Ply,
		"Move":   s.LastMove,
	}, s.White+" vs "+s.Black)
}

// Joined tells the player which hosted game they are in.
func (f *Formatter) Joined(gameID, server string) string {
	return f.cat.Text("remote.joined", map[string]any{"GameID": gameID, "Server": server}, gameID)
}

// Status lists turn, check, draw offer, material and captures for an
// ongoing game, or the outcome once it is over.
func (f *Formatter) Status(s *chessdto.Snapshot) string {
	if s == nil {
		return ""
	}
	if s.Finished() {
		return f.Outcome(s)
	}
	player, color := sideToMove(s)
	var lines []string
	lines = append(lines, f.cat.Text("status.turn", map[string]any{
		"Number": fullMoveNumber(s),
		"Player": player,
		"Color":  color,
	}, player+" to move."))
	if s.InCheck {
		lines = append(lines, f.cat.Text("status.check", map[string]any{"Player": player}, player+" is in check."))
	}
	if s.DrawOffer != "" {
		by := playerName(s, s.DrawOffer)
		lines = append(lines, f.cat.Text("status.draw_offer", map[string]any{"Player": by}, by+" offers a draw."))
	}
	lines = append(lines, f.Material(s))
	if line := f.captured(s.White, s.Captured.White); line != "" {
		lines = append(lines, line)
	}
	if line := f.captured(s.Black, s.Captured.Black); line != "" {
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (f *Formatter) Material(s *chessdto.Snapshot) string {
	lead := ""
	switch d := s.Material.Diff(); {
	case d > 0:
		lead = fmt.Sprintf("%s +%d", s.White, d)
	case d < 0:
		lead = fmt.Sprintf("%s +%d", s.Black, -d)
	}
	return f.cat.Text("status.material", map[string]any{
		"White": s.Material.White,
		"Black": s.Material.Black,
		"Lead":  lead,
	}, fmt.Sprintf("Material %d : %d", s.Material.White, s.Material.Black))
}

func (f *Formatter) captured(player string, pieces []string) string {
	if len(pieces) == 0 {
		return ""
	}
	if len(pieces) > capturedRecentLimit {
		pieces = pieces[len(pieces)-capturedRecentLimit:]
	}
	symbols := make([]string, 0, len(pieces))
	for _, p := range pieces {
		symbols = append(symbols, capturedSymbol(p))
	}
	text := strings.Join(symbols, " ")
	return f.cat.Text("status.captured", map[string]any{"Player": player, "Pieces": text}, player+": "+text)
}

// Outcome describes how the game ended.
func (f *Formatter) Outcome(s *chessdto.Snapshot) string {
	status := s.Status
	if status == "" {
		status = chessdto.StatusOngoing
	}
	data := map[string]any{}
	if s.Winner != "" {
		winner := playerName(s, s.Winner)
		loser := s.White
		if winner == s.White {
			loser = s.Black
		}
		data["Winner"] = winner
		data["Loser"] = loser
	}
	return f.cat.Text("outcome."+status, data, status)
}

// History renders the paired move list, one numbered full move per line.
func (f *Formatter) History(s *chessdto.Snapshot) string {
	if s == nil || len(s.History) == 0 {
		return f.cat.Text("history.empty", nil, "")
	}
	width := 0
	for _, row := range s.History {
		width = max(width, len(row.White))
	}
	var sb strings.Builder
	sb.WriteString(f.cat.Text("history.header", nil, "Moves"))
	for _, row := range s.History {
		white := row.White
		if white == "" {
			white = "..."
		}
		line := fmt.Sprintf("%3d. %-*s  %s", row.Number, max(width, 3), white, row.Black)
		sb.WriteByte('\n')
		sb.WriteString(strings.TrimRight(line, " "))
	}
	return sb.String()
}

// Board draws the grid with rank and file labels, rank 8 at the top.
func (f *Formatter) Board(s *chessdto.Snapshot) string {
	if s == nil || len(s.Board) != 8 {
		return ""
	}
	var sb strings.Builder
	for i, row := range s.Board {
		sb.WriteString(strconv.Itoa(8 - i))
		for _, c := range row {
			sb.WriteByte(' ')
			sb.WriteRune(c)
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  a b c d e f g h")
	return sb.String()
}

// Error explains a rejected input or a failure.
func (f *Formatter) Error(err error) string {
	if err == nil {
		return ""
	}
	de := chessdto.FromError(err)
	detail := chessdto.Detail(err)
	switch de.Code {
	case chessdto.CodeIllegalMove:
		return f.cat.Text("error.illegal_move", map[string]any{"Detail": detail}, de.Message)
	case chessdto.CodeMissingPromotion:
		return f.cat.Text("error.missing_promotion", nil, de.Message)
	case chessdto.CodeInvalidCastle:
		return f.cat.Text("error.invalid_castle", map[string]any{"Detail": detail}, de.Message)
	case chessdto.CodeMalformed:
		return f.cat.Text("error.malformed", map[string]any{"Input": syntaxInput(err)}, de.Message)
	case chessdto.CodeGameOver:
		return f.cat.Text("error.game_over", nil, de.Message)
	case chessdto.CodeNoDrawOffer:
		return f.cat.Text("error.no_draw_offer", nil, de.Message)
	case chessdto.CodeMalformedDemoEntry:
		return f.cat.Text("error.demo", map[string]any{"Detail": de.Message}, de.Message)
	case chessdto.CodeInvalidPosition:
		return f.cat.Text("error.invalid_position", map[string]any{"Detail": de.Message}, de.Message)
	case chessdto.CodeNotFound:
		return f.cat.Text("error.not_found", nil, de.Message)
	default:
		return f.cat.Text("error.internal", map[string]any{"Detail": de.Message}, de.Message)
	}
}

func syntaxInput(err error) string {
	var se *movetext.SyntaxError
	if errors.As(err, &se) {
		return se.Input
	}
	return ""
}

func sideToMove(s *chessdto.Snapshot) (player, color string) {
	if s == nil {
		return "", ""
	}
	return playerName(s, s.Turn), s.Turn
}

func playerName(s *chessdto.Snapshot, color string) string {
	if color == "black" {
		return s.Black
	}
	return s.White
}

// fullMoveNumber reads the FEN move counter, which also covers games set up
// from a position.
func fullMoveNumber(s *chessdto.Snapshot) int {
	fields := strings.Fields(s.FEN)
	if len(fields) == 6 {
		if n, err := strconv.Atoi(fields[5]); err == nil {
			return n
		}
	}
	return s.Ply/2 + 1
}

func capturedSymbol(piece string) string {
	switch strings.ToLower(strings.TrimSpace(piece)) {
	case "queen":
		return "Q"
	case "rook":
		return "R"
	case "bishop":
		return "B"
	case "knight":
		return "N"
	case "pawn":
		return "P"
	case "":
		return ""
	default:
		return strings.ToUpper(piece[:1])
	}
}
