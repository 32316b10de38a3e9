// features/tables.go
package features

import "github.com/dylhunn/dragontoothmg"

// flipView maps a square to its mirror across the board's horizontal axis,
// so black pieces can be looked up in white-oriented tables.
var flipView = [64]int{
	56, 57, 58, 59, 60, 61, 62, 63,
	48, 49, 50, 51, 52, 53, 54, 55,
	40, 41, 42, 43, 44, 45, 46, 47,
	32, 33, 34, 35, 36, 37, 38, 39,
	24, 25, 26, 27, 28, 29, 30, 31,
	16, 17, 18, 19, 20, 21, 22, 23,
	8, 9, 10, 11, 12, 13, 14, 15,
	0, 1, 2, 3, 4, 5, 6, 7,
}

// pieceValue is indexed by dragontoothmg.Piece. Kings carry no material.
var pieceValue = [7]int{
	dragontoothmg.Nothing: 0,
	dragontoothmg.Pawn:    88,
	dragontoothmg.Knight:  316,
	dragontoothmg.Bishop:  331,
	dragontoothmg.Rook:    494,
	dragontoothmg.Queen:   993,
	dragontoothmg.King:    0,
}

// Piece-square tables from white's point of view, a1 first, rank by rank.
var (
	pawnTable = [64]int{
		0, 0, 0, 0, 0, 0, 0, 0,
		-46, -41, -42, -39, -40, -12, 1, -21,
		-51, -52, -45, -45, -37, -37, -20, -30,
		-46, -40, -33, -33, -23, -26, -15, -30,
		-36, -27, -27, -11, 1, 2, -4, -21,
		-33, -6, 7, 13, 27, 57, 19, -11,
		57, 54, 55, 54, 46, 32, 4, 9,
		0, 0, 0, 0, 0, 0, 0, 0,
	}
	knightTable = [64]int{
		-24, -28, -46, -30, -25, -21, -27, -40,
		-35, -32, -18, -10, -14, -12, -20, -18,
		-25, -8, -4, 6, 7, -1, -1, -17,
		-14, -1, 8, 5, 13, 10, 26, -1,
		-5, 8, 30, 35, 24, 43, 19, 22,
		-21, 12, 40, 49, 67, 64, 37, 14,
		-17, -12, 20, 33, 33, 37, -8, 3,
		-61, -6, -12, -2, 1, -6, -1, -16,
	}
	bishopTable = [64]int{
		4, -2, -15, -21, -18, -8, -8, 2,
		4, 8, 11, -2, 1, 5, 20, 11,
		-2, 11, 8, 13, 10, 8, 10, 13,
		-7, 10, 15, 21, 26, 11, 10, 7,
		-4, 22, 24, 49, 34, 37, 20, 6,
		4, 18, 36, 36, 47, 55, 37, 24,
		-22, 6, 3, -7, 4, 14, -3, 8,
		-27, -8, -13, -12, -8, -21, 1, -10,
	}
	rookTable = [64]int{
		-46, -41, -37, -34, -36, -40, -19, -42,
		-71, -45, -44, -43, -47, -37, -25, -51,
		-60, -46, -50, -44, -47, -48, -21, -38,
		-49, -45, -43, -35, -37, -34, -13, -29,
		-33, -21, -11, 6, 0, 7, 8, 2,
		-22, 10, 4, 25, 41, 38, 44, 20,
		-3, -5, 16, 28, 31, 37, 9, 30,
		23, 22, 19, 24, 23, 20, 21, 34,
	}
	queenTable = [64]int{
		-6, -17, -12, -3, -6, -28, -27, -12,
		-11, -4, 2, -2, -1, 7, 8, -7,
		-8, -1, -2, -4, -4, -1, 8, 7,
		-5, -3, -2, -6, -6, 10, 7, 16,
		-11, -6, -2, -1, 12, 22, 26, 26,
		-13, -6, -1, 14, 36, 58, 71, 42,
		-11, -40, 5, 5, 20, 44, -2, 27,
		0, 16, 21, 29, 36, 38, 25, 36,
	}
	kingTable = [64]int{
		-4, 36, -1, -69, -23, -74, 19, 26,
		12, 0, -18, -53, -33, -39, 7, 25,
		-6, -4, -3, -11, -6, -8, 4, -15,
		-1, 8, 16, 10, 15, 12, 23, -9,
		0, 9, 16, 10, 13, 15, 15, -8,
		1, 11, 12, 9, 8, 14, 12, 0,
		-2, 6, 6, 2, 3, 4, 3, -2,
		-1, 0, 0, 2, 0, 0, 0, -2,
	}
)

// pieceTables is indexed by dragontoothmg.Piece.
var pieceTables = [7]*[64]int{
	dragontoothmg.Pawn:   &pawnTable,
	dragontoothmg.Knight: &knightTable,
	dragontoothmg.Bishop: &bishopTable,
	dragontoothmg.Rook:   &rookTable,
	dragontoothmg.Queen:  &queenTable,
	dragontoothmg.King:   &kingTable,
}

// Mirror returns the square seen from the other side of the board.
func Mirror(sq int) int { return flipView[sq] }

// Value is the material value of a piece type.
func Value(p dragontoothmg.Piece) int {
	if int(p) >= len(pieceValue) {
		return 0
	}
	return pieceValue[p]
}

// Table returns a copy of the piece-square table for p, white's view.
func Table(p dragontoothmg.Piece) [64]int {
	if int(p) >= len(pieceTables) || pieceTables[p] == nil {
		return [64]int{}
	}
	return *pieceTables[p]
}
