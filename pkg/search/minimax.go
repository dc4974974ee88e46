package search

import (
	"context"

	"github.com/herohde/freja/pkg/board"
	"github.com/herohde/freja/pkg/eval"
	"github.com/seekerror/stdlib/pkg/util/contextx"
)

// Minimax implements a full-width negamax search with no pruning, no windows and
// no transposition table, over the same game tree as Negamax (same terminal
// rules, check extension and capture quiescence). It is far too slow to play
// with; it exists as the regression oracle: at depths where the unsound prunings
// cannot trigger, Negamax must return the same score.
type Minimax struct {
	Eval *eval.Tapered
}

func (n Minimax) Search(ctx context.Context, b *board.Board, depth int, quit <-chan struct{}) (uint64, eval.Score, []board.Move, error) {
	run := &runMinimax{eval: n.Eval, b: b, quit: quit}

	// The first legal root move is the placeholder answer if cancelled.
	var roots board.MoveList
	b.LegalMovesNoRep(&roots)

	score, best := run.search(ctx, depth, 0)
	if run.cancelled(ctx) {
		if roots.Len() == 0 {
			return 0, 0, nil, ErrHalted
		}
		return run.nodes, 0, []board.Move{roots.At(0)}, ErrHalted
	}
	if best == board.NoMove {
		return run.nodes, score, nil, nil
	}
	return run.nodes, score, []board.Move{best}, nil
}

type runMinimax struct {
	eval  *eval.Tapered
	b     *board.Board
	nodes uint64

	quit <-chan struct{}
}

func (m *runMinimax) search(ctx context.Context, depth, ply int) (eval.Score, board.Move) {
	if m.cancelled(ctx) {
		return 0, board.NoMove
	}

	inCheck := m.b.InCheck(m.b.Us())
	if depth == 0 {
		if inCheck && ply < checkExtensionLimit {
			depth++
		} else {
			return m.quiesce(ctx, quiescenceDepth), board.NoMove
		}
	}

	m.nodes++

	var moves board.MoveList
	m.b.LegalMovesNoRep(&moves)
	if moves.Len() == 0 {
		if inCheck {
			return eval.NegInf + eval.Score(ply), board.NoMove
		}
		return 0, board.NoMove
	}

	best, bestMove := eval.NegInf, board.NoMove
	for i := 0; i < moves.Len(); i++ {
		mv := moves.At(i)

		m.b.DoMove(mv)
		reply, _ := m.search(ctx, depth-1, ply+1)
		m.b.UndoMove(mv)

		if score := -reply; score > best {
			best, bestMove = score, mv
		}
	}
	return best, bestMove
}

func (m *runMinimax) quiesce(ctx context.Context, depth int) eval.Score {
	if m.cancelled(ctx) {
		return 0
	}
	m.nodes++

	standPat := m.eval.Evaluate(m.b)
	if depth == 0 {
		return standPat
	}

	var moves board.MoveList
	m.b.LegalMoves(&moves)
	if moves.Len() == 0 {
		if m.b.InCheck(m.b.Us()) {
			return eval.NegInf
		}
		return 0
	}

	best := standPat
	for i := 0; i < moves.Len(); i++ {
		mv := moves.At(i)
		if _, ok := mv.Capture(); !ok {
			continue
		}

		m.b.DoMove(mv)
		score := -m.quiesce(ctx, depth-1)
		m.b.UndoMove(mv)

		if score > best {
			best = score
		}
	}
	return best
}

func (m *runMinimax) cancelled(ctx context.Context) bool {
	return contextx.IsCancelled(ctx) || isClosed(m.quit)
}
