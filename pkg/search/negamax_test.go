package search_test

import (
	"context"
	"testing"
	"time"

	"github.com/herohde/freja/pkg/board"
	"github.com/herohde/freja/pkg/board/fen"
	"github.com/herohde/freja/pkg/eval"
	"github.com/herohde/freja/pkg/search"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNegamax(t *testing.T) search.Negamax {
	t.Helper()

	return search.Negamax{
		Eval: eval.NewTapered(),
		TT:   search.NewTranspositionTable(context.Background(), 1<<22),
	}
}

func decode(t *testing.T, position string) *board.Board {
	t.Helper()

	b, err := fen.Decode(position)
	require.NoError(t, err)
	return b
}

func isLegal(b *board.Board, m board.Move) bool {
	var moves board.MoveList
	b.LegalMoves(&moves)
	for i := 0; i < moves.Len(); i++ {
		if moves.At(i) == m {
			return true
		}
	}
	return false
}

func TestNegamaxMateInOne(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		fen  string
		best string
	}{
		// Back-rank mates.
		{"6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1", "a1a8"},
		{"r5k1/5ppp/8/8/8/8/5PPP/6K1 b - - 0 1", "a8a1"},
	}

	for _, tt := range tests {
		b := decode(t, tt.fen)

		_, score, moves, err := newNegamax(t).Search(ctx, b, 3, make(chan struct{}))
		require.NoError(t, err)
		require.NotEmptyf(t, moves, "no move found: %v", tt.fen)

		assert.Equalf(t, eval.MateIn(1), score, "expected mate score: %v", tt.fen)
		assert.Equalf(t, tt.best, moves[0].String(), "expected mating move: %v", tt.fen)
	}
}

func TestNegamaxMated(t *testing.T) {
	ctx := context.Background()

	// Black is checkmated: no moves, score is the mated bound.
	b := decode(t, "R5k1/5ppp/8/8/8/8/5PPP/6K1 b - - 0 1")

	_, score, moves, err := newNegamax(t).Search(ctx, b, 3, make(chan struct{}))
	require.NoError(t, err)
	assert.Empty(t, moves)
	assert.Equal(t, eval.NegInf, score)
}

func TestNegamaxStalemate(t *testing.T) {
	ctx := context.Background()

	// Black to move is stalemated.
	b := decode(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")

	_, score, moves, err := newNegamax(t).Search(ctx, b, 3, make(chan struct{}))
	require.NoError(t, err)
	assert.Empty(t, moves)
	assert.Equal(t, eval.Score(0), score)
}

// TestNegamaxMinimaxOracle checks that the pruned search returns the plain
// full-width negamax score. The unsound prunings (null move, reverse futility,
// reductions) all require depth >= 3, so searches from depth <= 3 cannot
// trigger them anywhere in the tree and must agree exactly.
func TestNegamaxMinimaxOracle(t *testing.T) {
	ctx := context.Background()

	tests := []string{
		fen.Initial,
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"4k3/8/8/8/8/8/4P3/4K3 b - - 0 1",
	}

	for _, position := range tests {
		depths := []int{1, 2}
		if !testing.Short() && position != kiwipeteFEN {
			depths = append(depths, 3) // the full-width oracle is slow on wide positions
		}

		for _, depth := range depths {
			pruned := newNegamax(t)
			oracle := search.Minimax{Eval: pruned.Eval}

			n, actual, _, err := pruned.Search(ctx, decode(t, position), depth, make(chan struct{}))
			require.NoError(t, err)
			m, expected, _, err := oracle.Search(ctx, decode(t, position), depth, make(chan struct{}))
			require.NoError(t, err)

			assert.Equalf(t, expected, actual, "score mismatch at depth=%v: %v", depth, position)
			assert.LessOrEqualf(t, n, m, "pruned search visited more nodes at depth=%v: %v", depth, position)
		}
	}
}

func TestNegamaxDeterminism(t *testing.T) {
	ctx := context.Background()

	for run := 0; run < 2; run++ {
		var scores []eval.Score
		var moves []board.Move

		for i := 0; i < 2; i++ {
			_, score, pv, err := newNegamax(t).Search(ctx, decode(t, kiwipeteFEN), 3, make(chan struct{}))
			require.NoError(t, err)
			require.NotEmpty(t, pv)

			scores = append(scores, score)
			moves = append(moves, pv[0])
		}

		assert.Equal(t, scores[0], scores[1], "search is not deterministic")
		assert.Equal(t, moves[0], moves[1], "search is not deterministic")
	}
}

const kiwipeteFEN = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"

func TestNegamaxThreefold(t *testing.T) {
	ctx := context.Background()

	// Reach the knight-shuffle position for the third time: the search has no
	// moves and scores the claimed draw as zero.
	b := decode(t, fen.Initial)
	shuffle := []string{"g1f3", "g8f6", "f3g1", "f6g8"}
	for round := 0; round < 3; round++ {
		for _, str := range shuffle {
			pm, err := board.ParseMove(str)
			require.NoError(t, err)

			var moves board.MoveList
			b.LegalMoves(&moves)
			for i := 0; i < moves.Len(); i++ {
				if pm.Matches(moves.At(i)) {
					b.DoMove(moves.At(i))
					break
				}
			}
		}
	}

	_, score, moves, err := newNegamax(t).Search(ctx, b, 3, make(chan struct{}))
	require.NoError(t, err)
	assert.Empty(t, moves)
	assert.Equal(t, eval.Score(0), score)
}

func TestNegamaxHalt(t *testing.T) {
	ctx := context.Background()

	quit := make(chan struct{})
	close(quit)

	// Halted before any work: the placeholder root move still comes back.
	_, _, moves, err := newNegamax(t).Search(ctx, decode(t, fen.Initial), 6, quit)
	assert.Equal(t, search.ErrHalted, err)
	require.NotEmpty(t, moves, "halted search must return the placeholder move")
	assert.Truef(t, isLegal(decode(t, fen.Initial), moves[0]), "illegal placeholder: %v", moves[0])
}

func TestNegamaxExpiredContext(t *testing.T) {
	// A deadline in the past cancels the search before the first node; the
	// placeholder is the answer of last resort.
	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()

	_, _, moves, err := newNegamax(t).Search(ctx, decode(t, fen.Initial), 1, make(chan struct{}))
	assert.Equal(t, search.ErrHalted, err)
	require.NotEmpty(t, moves, "expired search must return the placeholder move")
	assert.Truef(t, isLegal(decode(t, fen.Initial), moves[0]), "illegal placeholder: %v", moves[0])
}

func TestNegamaxHaltTerminal(t *testing.T) {
	ctx := context.Background()

	quit := make(chan struct{})
	close(quit)

	// A terminal position has no placeholder: checkmated side to move.
	_, _, moves, err := newNegamax(t).Search(ctx, decode(t, "R5k1/5ppp/8/8/8/8/5PPP/6K1 b - - 0 1"), 3, quit)
	assert.Equal(t, search.ErrHalted, err)
	assert.Empty(t, moves)
}

// TestIterativeSearch is the end-to-end scenario: the engine never returns an
// illegal move, from the start position and again after playing the result.
func TestIterativeSearch(t *testing.T) {
	ctx := context.Background()

	b := decode(t, fen.Initial)
	launcher := &search.Iterative{Root: newNegamax(t)}

	for i := 0; i < 2; i++ {
		handle, out := launcher.Launch(ctx, b.Fork(), search.Options{
			DepthLimit: lang.Some[uint](4),
		})

		var last search.PV
		for pv := range out {
			last = pv
		}
		handle.Halt()

		require.NotEmpty(t, last.Moves)
		assert.Equal(t, 4, last.Depth)
		require.Truef(t, isLegal(b, last.Moves[0]), "illegal best move: %v", last.Moves[0])

		b.DoMove(last.Moves[0])
	}
}

func TestIterativeHalt(t *testing.T) {
	ctx := context.Background()

	launcher := &search.Iterative{Root: newNegamax(t)}
	handle, _ := launcher.Launch(ctx, decode(t, fen.Initial), search.Options{})

	time.Sleep(50 * time.Millisecond)
	pv := handle.Halt()

	require.NotEmpty(t, pv.Moves, "halt must return the last completed iteration")
	assert.GreaterOrEqual(t, pv.Depth, 1)
	assert.Truef(t, isLegal(decode(t, fen.Initial), pv.Moves[0]), "illegal best move: %v", pv.Moves[0])
}

func TestIterativeExpiredDeadline(t *testing.T) {
	ctx := context.Background()

	// The deadline expires before depth 1 can complete: the launcher must
	// still publish a legal placeholder move, never an empty PV.
	launcher := &search.Iterative{Root: newNegamax(t)}
	handle, out := launcher.Launch(ctx, decode(t, fen.Initial), search.Options{
		MoveTime: lang.Some(time.Duration(0)),
	})

	var last search.PV
	for pv := range out {
		last = pv
	}

	require.NotEmpty(t, last.Moves, "expired deadline must still yield the placeholder")
	assert.Truef(t, isLegal(decode(t, fen.Initial), last.Moves[0]), "illegal placeholder: %v", last.Moves[0])
	assert.Equal(t, last.Moves, handle.Halt().Moves)
}

func TestIterativeMoveTime(t *testing.T) {
	ctx := context.Background()

	launcher := &search.Iterative{Root: newNegamax(t)}
	_, out := launcher.Launch(ctx, decode(t, fen.Initial), search.Options{
		MoveTime: lang.Some(200 * time.Millisecond),
	})

	start := time.Now()
	var last search.PV
	for pv := range out {
		last = pv
	}

	assert.Less(t, time.Since(start), 5*time.Second, "deadline not honored")
	require.NotEmpty(t, last.Moves)
	assert.True(t, isLegal(decode(t, fen.Initial), last.Moves[0]))
}
