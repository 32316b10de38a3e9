// features/features.go
package features

import (
	"math/bits"

	"github.com/dylhunn/dragontoothmg"
)

const (
	materialScale   = 800.0
	positionalScale = 300.0
	pieceScale      = 30.0
)

// Column indices of a design-matrix row.
const (
	ColMaterial = iota
	ColPositional
	ColPawn
	ColKnight
	ColBishop
	ColRook
	ColQueen

	NumColumns
)

// Extractor computes one white-minus-black scalar from a board.
type Extractor struct {
	Name string
	Fn   func(b *dragontoothmg.Board) float64
}

// Columns lists the extractors in design-matrix column order.
var Columns = [NumColumns]Extractor{
	ColMaterial:   {"material", MaterialDiff},
	ColPositional: {"positional", PositionalDiff},
	ColPawn:       {"pawn_positional", PawnPositionalDiff},
	ColKnight:     {"knight_positional", KnightPositionalDiff},
	ColBishop:     {"bishop_positional", BishopPositionalDiff},
	ColRook:       {"rook_positional", RookPositionalDiff},
	ColQueen:      {"queen_positional", QueenPositionalDiff},
}

// Names returns the column names in order.
func Names() []string {
	out := make([]string, NumColumns)
	for i, c := range Columns {
		out[i] = c.Name
	}
	return out
}

// Row writes every column for b into dst, which must hold NumColumns values,
// and returns dst[:NumColumns].
func Row(b *dragontoothmg.Board, dst []float64) []float64 {
	dst = dst[:NumColumns]
	for i, c := range Columns {
		dst[i] = c.Fn(b)
	}
	return dst
}

func pieceSets(bb *dragontoothmg.Bitboards) [7]uint64 {
	return [7]uint64{
		dragontoothmg.Pawn:   bb.Pawns,
		dragontoothmg.Knight: bb.Knights,
		dragontoothmg.Bishop: bb.Bishops,
		dragontoothmg.Rook:   bb.Rooks,
		dragontoothmg.Queen:  bb.Queens,
		dragontoothmg.King:   bb.Kings,
	}
}

func materialBalance(b *dragontoothmg.Board) int {
	w, bl := pieceSets(&b.White), pieceSets(&b.Black)
	score := 0
	for p := dragontoothmg.Piece(dragontoothmg.Pawn); p <= dragontoothmg.King; p++ {
		score += pieceValue[p] * (bits.OnesCount64(w[p]) - bits.OnesCount64(bl[p]))
	}
	return score
}

// tableBalance sums the table over white's pieces and subtracts it over
// black's mirrored squares.
func tableBalance(white, black uint64, table *[64]int) int {
	score := 0
	for x := white; x != 0; x &= x - 1 {
		score += table[bits.TrailingZeros64(x)]
	}
	for x := black; x != 0; x &= x - 1 {
		score -= table[flipView[bits.TrailingZeros64(x)]]
	}
	return score
}

func pieceBalance(b *dragontoothmg.Board, p dragontoothmg.Piece) int {
	w, bl := pieceSets(&b.White), pieceSets(&b.Black)
	return tableBalance(w[p], bl[p], pieceTables[p])
}

// MaterialDiff is the signed material balance divided by 800.
func MaterialDiff(b *dragontoothmg.Board) float64 {
	return float64(materialBalance(b)) / materialScale
}

// PositionalDiff is the piece-square balance over all piece types,
// kings included, divided by 300.
func PositionalDiff(b *dragontoothmg.Board) float64 {
	score := 0
	for p := dragontoothmg.Piece(dragontoothmg.Pawn); p <= dragontoothmg.King; p++ {
		score += pieceBalance(b, p)
	}
	return float64(score) / positionalScale
}

func PawnPositionalDiff(b *dragontoothmg.Board) float64 {
	return float64(pieceBalance(b, dragontoothmg.Pawn)) / pieceScale
}

func KnightPositionalDiff(b *dragontoothmg.Board) float64 {
	return float64(pieceBalance(b, dragontoothmg.Knight)) / pieceScale
}

func BishopPositionalDiff(b *dragontoothmg.Board) float64 {
	return float64(pieceBalance(b, dragontoothmg.Bishop)) / pieceScale
}

func RookPositionalDiff(b *dragontoothmg.Board) float64 {
	return float64(pieceBalance(b, dragontoothmg.Rook)) / pieceScale
}

func QueenPositionalDiff(b *dragontoothmg.Board) float64 {
	return float64(pieceBalance(b, dragontoothmg.Queen)) / pieceScale
}
