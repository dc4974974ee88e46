// Package eval contains position evaluation logic and utilities.
package eval

import (
	"github.com/herohde/freja/pkg/board"
)

// NominalValue is the material value per piece kind in centipawns, in piece
// encoding order: pawn, bishop, knight, rook, queen, king.
var NominalValue = [board.NumPieceTypes]Score{100, 300, 320, 500, 900, 0}

// phaseWeight is the game-phase contribution per piece kind. A full opening
// position sums to 24; a bare-kings endgame to 0.
var phaseWeight = [board.NumPieceTypes]int{0, 1, 1, 2, 4, 0}

const (
	fullPhase = 24
	numBlends = 257 // phase weights 0..256
)

// Tapered is a tapered material + piece-square evaluator. The midgame and
// endgame tables are blended per phase weight w as (mid*(256-w) + end*w)/256;
// all 257 blends are precomputed at construction so Evaluate never interpolates.
type Tapered struct {
	blends [numBlends][board.NumPieceTypes][64]Score
}

func NewTapered() *Tapered {
	e := &Tapered{}
	for w := 0; w < numBlends; w++ {
		for p := board.ZeroPiece; p < board.NumPieceTypes; p++ {
			for sq := 0; sq < 64; sq++ {
				mid, end := int(midgame[p][sq]), int(endgame[p][sq])
				e.blends[w][p][sq] = Score((mid*(256-w) + end*w) / 256)
			}
		}
	}
	return e
}

// Evaluate returns the static score of the position, relative to the side to
// move so the search can negamax it.
func (e *Tapered) Evaluate(b *board.Board) Score {
	psqt := &e.blends[phaseIndex(b)]

	var score Score
	for p := board.ZeroPiece; p < board.NumPieceTypes; p++ {
		white := b.Piece(board.White, p)
		for white != 0 {
			var sq board.Square
			sq, white = white.PopFirst()
			score += NominalValue[p] + psqt[p][sq]
		}

		black := b.Piece(board.Black, p)
		for black != 0 {
			var sq board.Square
			sq, black = black.PopFirst()
			score -= NominalValue[p] + psqt[p][FLIP[sq]]
		}
	}

	if b.Us() == board.Black {
		return -score
	}
	return score
}

// phaseIndex returns the blend weight w in [0;256]: 0 at the opening, 256 with
// all minor and major pieces traded off.
func phaseIndex(b *board.Board) int {
	phase := fullPhase
	for p := board.ZeroPiece; p < board.NumPieceTypes; p++ {
		n := b.Piece(board.White, p).PopCount() + b.Piece(board.Black, p).PopCount()
		phase -= n * phaseWeight[p]
	}
	if phase < 0 {
		phase = 0
	}
	return phase * 256 / fullPhase
}
