package features

import (
	"testing"

	"github.com/dylhunn/dragontoothmg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestEmptyBoardIsZero(t *testing.T) {
	var b dragontoothmg.Board
	row := Row(&b, make([]float64, NumColumns))
	for i, v := range row {
		assert.Zero(t, v, "column %s", Columns[i].Name)
	}
}

func TestStartPositionIsBalanced(t *testing.T) {
	b := dragontoothmg.ParseFen(startFEN)
	row := Row(&b, make([]float64, NumColumns+3))
	require.Len(t, row, NumColumns)
	for i, v := range row {
		assert.Zero(t, v, "column %s", Columns[i].Name)
	}
}

func TestExtraWhiteQueen(t *testing.T) {
	// kings on e1/e8 cancel, the queen sits on d1
	b := dragontoothmg.ParseFen("4k3/8/8/8/8/8/8/3QK3 w - - 0 1")
	assert.InDelta(t, 993.0/800.0, MaterialDiff(&b), 1e-12)
	assert.InDelta(t, -3.0/300.0, PositionalDiff(&b), 1e-12)
	assert.InDelta(t, -3.0/30.0, QueenPositionalDiff(&b), 1e-12)
	assert.Zero(t, PawnPositionalDiff(&b))
	assert.Zero(t, KnightPositionalDiff(&b))
	assert.Zero(t, BishopPositionalDiff(&b))
	assert.Zero(t, RookPositionalDiff(&b))
}

func TestBlackUsesMirroredSquares(t *testing.T) {
	// black knight on f6 mirrors to f3, table value -1
	b := dragontoothmg.ParseFen("4k3/8/5n2/8/8/8/8/4K3 w - - 0 1")
	assert.InDelta(t, -316.0/800.0, MaterialDiff(&b), 1e-12)
	assert.InDelta(t, 1.0/30.0, KnightPositionalDiff(&b), 1e-12)
	assert.Equal(t, 21, Mirror(45))
	assert.Equal(t, -1, Table(dragontoothmg.Knight)[Mirror(45)])
}

func TestColumnsOrder(t *testing.T) {
	assert.Equal(t, []string{
		"material", "positional", "pawn_positional", "knight_positional",
		"bishop_positional", "rook_positional", "queen_positional",
	}, Names())
	assert.Equal(t, 0, Value(dragontoothmg.King))
	assert.Equal(t, 88, Value(dragontoothmg.Pawn))
	assert.Equal(t, [64]int{}, Table(dragontoothmg.Nothing))
}
