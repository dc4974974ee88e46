package search

import (
	"context"
	"math"

	"github.com/herohde/freja/pkg/board"
	"github.com/herohde/freja/pkg/eval"
	"github.com/seekerror/stdlib/pkg/util/contextx"
)

const (
	// maxPly bounds the killer-move bookkeeping.
	maxPly = 64

	// checkExtensionLimit bounds check extensions: perpetual-check lines would
	// otherwise extend without end.
	checkExtensionLimit = 10

	// quiescenceDepth is the capture-search budget below the horizon.
	quiescenceDepth = 10

	// nullReduction is the null-move depth reduction R.
	nullReduction = 3

	// rfpMargin is the reverse-futility margin per remaining depth, in centipawns.
	rfpMargin = 150
)

// mvvlva points per piece kind, in pawn units.
var points = [board.NumPieceTypes]int{1, 3, 3, 5, 9, 0}

// Negamax implements the full-strength search: negamax with alpha-beta and
// null-window re-searches, transposition table, check extensions, reverse
// futility pruning, null-move pruning with verification, killer/hash move
// ordering by MVV-LVA, late-move reductions and capture quiescence. Scores are
// relative to the side to move; mate scores encode distance as Inf-ply.
type Negamax struct {
	Eval *eval.Tapered
	TT   *TranspositionTable
}

func (n Negamax) Search(ctx context.Context, b *board.Board, depth int, quit <-chan struct{}) (uint64, eval.Score, []board.Move, error) {
	run := &runNegamax{eval: n.Eval, tt: n.TT, b: b, quit: quit}

	// The first-ordered root move is the placeholder answer: if not even this
	// search completes, the caller still has a legal move to play.
	placeholder := run.placeholder()

	score := run.negamax(ctx, depth, 0, eval.NegInf, eval.Inf)
	if run.cancelled(ctx) {
		if placeholder == board.NoMove {
			return 0, 0, nil, ErrHalted
		}
		return run.nodes, 0, []board.Move{placeholder}, ErrHalted
	}
	if run.best == board.NoMove {
		return run.nodes, score, nil, nil // terminal: mate, stalemate or threefold
	}
	return run.nodes, score, []board.Move{run.best}, nil
}

type runNegamax struct {
	eval *eval.Tapered
	tt   *TranspositionTable
	b    *board.Board

	killers [maxPly][2]board.Move
	best    board.Move
	nodes   uint64

	quit <-chan struct{}
}

// negamax returns the score of the position relative to the side to move.
func (m *runNegamax) negamax(ctx context.Context, depth, ply int, alpha, beta eval.Score) eval.Score {
	if m.cancelled(ctx) {
		return 0 // caller discards
	}

	us := m.b.Us()
	inCheck := m.b.InCheck(us)

	if depth == 0 {
		if inCheck && ply < checkExtensionLimit {
			depth++ // check extension
		} else {
			return m.quiesce(ctx, quiescenceDepth, alpha, beta)
		}
	}

	m.nodes++

	var moves board.MoveList
	m.b.LegalMovesNoRep(&moves)
	if moves.Len() == 0 {
		if inCheck {
			return eval.NegInf + eval.Score(ply) // mated; the distance makes shorter mates preferable
		}
		return 0 // stalemate or threefold repetition
	}

	hash := m.b.Hash()

	ttMove := board.NoMove
	estimation, haveEstimation := eval.Score(0), false
	if bound, d, score, move, ok := m.tt.Read(hash); ok {
		ttMove = move
		estimation, haveEstimation = score, true
		if d >= depth {
			switch bound {
			case ExactBound:
				if ply == 0 {
					m.best = move
				}
				return score
			case LowerBound:
				if score >= beta {
					return score
				}
			case UpperBound:
				if score <= alpha {
					return score
				}
			}
		}
	}
	if !haveEstimation {
		estimation = m.eval.Evaluate(m.b)
	}

	// Reverse futility pruning: a static eval far above beta fails high without
	// a search. Not with an infinite beta, not in check.
	if depth >= 3 && !inCheck && eval.NegInf < beta && beta < eval.Inf {
		if estimation >= beta+rfpMargin*eval.Score(depth) {
			return estimation
		}
	}

	// Null-move pruning, on null-window nodes only: if passing still fails high
	// at reduced depth, verify and cut. Requires an officer so zugzwang-prone
	// endings are exempt.
	if !inCheck && depth >= 3 && ply > 0 && m.b.State().CanNullmove && alpha == beta-1 && m.hasOfficer(us) {
		st := m.b.DoNull()
		score := -m.negamax(ctx, depth-nullReduction, ply+1, -beta, -(beta - 1))
		m.b.UndoNull(st)

		if score >= beta {
			m.b.SetNullmove(false)
			verified := m.negamax(ctx, depth-nullReduction+1, ply, beta-1, beta)
			m.b.SetNullmove(true)
			if verified >= beta {
				return verified
			}
		}
	}

	m.order(&moves, ttMove, ply)

	alphaIn := alpha
	best, bestMove := eval.NegInf, board.NoMove

	for i := 0; i < moves.Len(); i++ {
		mv := moves.At(i)

		m.b.DoMove(mv)
		m.b.SetNullmove(true)

		var score eval.Score
		if i == 0 {
			score = -m.negamax(ctx, depth-1, ply+1, -beta, -alpha)
		} else {
			r := 0
			if depth >= 3 && i >= 3 && !inCheck && mv.IsQuiet() && beta < eval.Inf {
				r = lateMoveReduction(depth, i)
				if r > depth-1 {
					r = depth - 1
				}
			}

			score = -m.negamax(ctx, depth-1-r, ply+1, -(alpha + 1), -alpha)
			if score > alpha {
				// Null window failed high: re-search with the full window at full depth.
				score = -m.negamax(ctx, depth-1, ply+1, -beta, -alpha)
			}
		}

		m.b.UndoMove(mv)

		if score > best {
			best, bestMove = score, mv
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			if mv.IsQuiet() && ply < maxPly && m.killers[ply][0] != mv {
				m.killers[ply][1] = m.killers[ply][0]
				m.killers[ply][0] = mv
			}
			break // fail high
		}
	}

	if m.cancelled(ctx) {
		return 0 // partial result: do not pollute the table
	}

	bound := ExactBound
	switch {
	case best <= alphaIn:
		bound = UpperBound
	case best >= beta:
		bound = LowerBound
	}
	m.tt.Write(hash, bound, depth, best, bestMove)

	if ply == 0 {
		m.best = bestMove
	}
	return best
}

// order sorts moves for the search: hash move first, then captures by MVV-LVA,
// then killer moves, then the remaining quiet moves.
func (m *runNegamax) order(moves *board.MoveList, ttMove board.Move, ply int) {
	moves.Sort(func(mv board.Move) int {
		switch {
		case mv == ttMove:
			return -1 << 20
		case mv.IsQuiet():
			if ply < maxPly && (mv == m.killers[ply][0] || mv == m.killers[ply][1]) {
				return 0
			}
			return 1
		default:
			victim, ok := mv.Capture()
			if !ok {
				return 1 // en passant and quiet promotions
			}
			return -(10*points[victim] - points[mv.Piece()])
		}
	})
}

// placeholder returns the first-ordered legal root move, or NoMove if the
// position is terminal.
func (m *runNegamax) placeholder() board.Move {
	var moves board.MoveList
	m.b.LegalMovesNoRep(&moves)
	if moves.Len() == 0 {
		return board.NoMove
	}

	ttMove := board.NoMove
	if _, _, _, move, ok := m.tt.Read(m.b.Hash()); ok {
		ttMove = move
	}
	m.order(&moves, ttMove, 0)
	return moves.At(0)
}

// quiesce searches captures only, using the static evaluation as the stand-pat
// bound for the side to move.
func (m *runNegamax) quiesce(ctx context.Context, depth int, alpha, beta eval.Score) eval.Score {
	if m.cancelled(ctx) {
		return 0
	}
	m.nodes++

	standPat := m.eval.Evaluate(m.b)
	if standPat >= beta {
		return standPat
	}
	if standPat > alpha {
		alpha = standPat
	}
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

	var captures board.MoveList
	for i := 0; i < moves.Len(); i++ {
		if _, ok := moves.At(i).Capture(); ok {
			captures.Push(moves.At(i))
		}
	}
	if captures.Len() == 0 {
		return standPat
	}

	captures.Sort(func(mv board.Move) int {
		victim, _ := mv.Capture()
		return -(10*points[victim] - points[mv.Piece()])
	})

	best := standPat
	for i := 0; i < captures.Len(); i++ {
		mv := captures.At(i)

		m.b.DoMove(mv)
		score := -m.quiesce(ctx, depth-1, -beta, -alpha)
		m.b.UndoMove(mv)

		if score > best {
			best = score
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			break
		}
	}
	return best
}

// hasOfficer returns true iff the side has at least one non-king, non-pawn piece.
func (m *runNegamax) hasOfficer(side board.Color) bool {
	officers := m.b.All(side) &^ (m.b.Piece(side, board.Pawn) | m.b.Piece(side, board.King))
	return officers != 0
}

func (m *runNegamax) cancelled(ctx context.Context) bool {
	return contextx.IsCancelled(ctx) || isClosed(m.quit)
}

// lateMoveReduction returns the depth reduction for a late quiet move.
func lateMoveReduction(depth, count int) int {
	d := math.Log(math.Min(float64(depth), 32))
	c := math.Log(math.Min(float64(count), 32))
	return int(2.78 + d*c*0.40)
}
