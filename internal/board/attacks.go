package board

// Delta is a file/rank step.
type Delta struct{ DF, DR int }

var (
	KnightJumps = [8]Delta{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	KingSteps   = [8]Delta{{0, 1}, {1, 1}, {1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1}}
	// Rook and bishop ray directions.
	OrthogonalRays = [4]Delta{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}
	DiagonalRays   = [4]Delta{{1, 1}, {1, -1}, {-1, -1}, {-1, 1}}
)

// PawnForward is the rank direction pawns of c advance in.
func PawnForward(c Color) int {
	if c == White {
		return 1
	}
	return -1
}

// AttacksOn reports whether any piece of color by attacks sq. Occupancy of sq
// itself is irrelevant; pawns attack diagonally only.
func (b *Board) AttacksOn(sq Square, by Color) bool {
	// A by-colored pawn attacking sq sits one rank behind it from by's view.
	back := -PawnForward(by)
	for _, df := range [2]int{-1, 1} {
		if from, ok := sq.Offset(df, back); ok && b.squares[from] == (Piece{Pawn, by}) {
			return true
		}
	}
	for _, d := range KnightJumps {
		if from, ok := sq.Offset(d.DF, d.DR); ok && b.squares[from] == (Piece{Knight, by}) {
			return true
		}
	}
	for _, d := range KingSteps {
		if from, ok := sq.Offset(d.DF, d.DR); ok && b.squares[from] == (Piece{King, by}) {
			return true
		}
	}
	if b.rayHits(sq, by, OrthogonalRays, Rook) || b.rayHits(sq, by, DiagonalRays, Bishop) {
		return true
	}
	return false
}

// rayHits walks each ray from sq and reports whether the first piece met is a
// by-colored slider of kind or a queen.
func (b *Board) rayHits(sq Square, by Color, rays [4]Delta, kind PieceType) bool {
	for _, d := range rays {
		cur := sq
		for {
			next, ok := cur.Offset(d.DF, d.DR)
			if !ok {
				break
			}
			p := b.squares[next]
			if !p.IsNone() {
				if p.Color == by && (p.Type == kind || p.Type == Queen) {
					return true
				}
				break
			}
			cur = next
		}
	}
	return false
}
