package eval_test

import (
	"strings"
	"testing"

	"github.com/herohde/freja/pkg/board"
	"github.com/herohde/freja/pkg/board/fen"
	"github.com/herohde/freja/pkg/eval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateSymmetry(t *testing.T) {
	e := eval.NewTapered()

	// Mirrored positions must evaluate to zero for both sides.
	tests := []string{
		fen.Initial,
		"4k3/8/8/8/8/8/8/4K3 w - - 0 1",
		"r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w - - 0 1",
	}

	for _, position := range tests {
		white, err := fen.Decode(position)
		require.NoError(t, err)
		assert.Zerof(t, e.Evaluate(white), "white to move: %v", position)

		black, err := fen.Decode(strings.Replace(position, " w ", " b ", 1))
		require.NoError(t, err)
		assert.Zerof(t, e.Evaluate(black), "black to move: %v", position)
	}
}

func TestEvaluateSideRelative(t *testing.T) {
	e := eval.NewTapered()

	// White is a queen up: positive for white to move, negative for black.
	white, err := fen.Decode("4k3/8/8/8/8/8/8/3QK3 w - - 0 1")
	require.NoError(t, err)
	black, err := fen.Decode("4k3/8/8/8/8/8/8/3QK3 b - - 0 1")
	require.NoError(t, err)

	ws, bs := e.Evaluate(white), e.Evaluate(black)
	assert.Greater(t, ws, eval.Score(0))
	assert.Less(t, bs, eval.Score(0))
	assert.Equal(t, ws, -bs)
}

func TestEvaluateMaterial(t *testing.T) {
	e := eval.NewTapered()

	// A lone extra rook dominates the positional terms.
	b, err := fen.Decode("4k3/8/8/8/8/8/8/R3K3 w - - 0 1")
	require.NoError(t, err)

	score := e.Evaluate(b)
	assert.Greater(t, score, eval.Score(400))
	assert.Less(t, score, eval.Score(700))
}

func TestEvaluateTaper(t *testing.T) {
	e := eval.NewTapered()

	// The same advanced pawn counts for more in the endgame blend than in the
	// full-material midgame, where the remaining pieces cancel out by symmetry.
	ending, err := fen.Decode("4k3/4P3/8/8/8/8/8/4K3 w - - 0 1")
	require.NoError(t, err)
	middlegame, err := fen.Decode("rnbqkbnr/4P3/8/8/8/8/8/RNBQKBNR w KQkq - 0 1")
	require.NoError(t, err)

	assert.Greater(t, e.Evaluate(ending), e.Evaluate(middlegame))
}

func TestEvaluateFlip(t *testing.T) {
	e := eval.NewTapered()

	// A white knight on f3 and a black knight on f6 are the same score mirrored.
	white, err := fen.Decode("4k3/8/8/8/8/5N2/8/4K3 w - - 0 1")
	require.NoError(t, err)
	black, err := fen.Decode("4k3/8/5n2/8/8/8/8/4K3 w - - 0 1")
	require.NoError(t, err)

	assert.Equal(t, e.Evaluate(white), -e.Evaluate(black))
}

func TestNominalValues(t *testing.T) {
	assert.Equal(t, eval.Score(100), eval.NominalValue[board.Pawn])
	assert.Equal(t, eval.Score(300), eval.NominalValue[board.Bishop])
	assert.Equal(t, eval.Score(320), eval.NominalValue[board.Knight])
	assert.Equal(t, eval.Score(500), eval.NominalValue[board.Rook])
	assert.Equal(t, eval.Score(900), eval.NominalValue[board.Queen])
	assert.Equal(t, eval.Score(0), eval.NominalValue[board.King])
}

func TestMateScores(t *testing.T) {
	assert.Equal(t, eval.Inf-3, eval.MateIn(3))

	d, ok := (eval.Inf - 5).MateDistance()
	assert.True(t, ok)
	assert.Equal(t, 5, d)

	d, ok = (eval.NegInf + 4).MateDistance()
	assert.True(t, ok)
	assert.Equal(t, -4, d)

	_, ok = eval.Score(150).MateDistance()
	assert.False(t, ok)
}
