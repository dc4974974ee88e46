package search

import (
	"context"
	"fmt"
	"math/bits"

	"github.com/herohde/freja/pkg/board"
	"github.com/herohde/freja/pkg/eval"
	"github.com/seekerror/logw"
)

// Bound represents the bound of a -- possibly inexact -- search score.
type Bound uint8

const (
	// ExactBound means the score is the minimax value within the searched window.
	ExactBound Bound = iota
	// LowerBound means the search failed high (beta cutoff): the true score is >= the stored score.
	LowerBound
	// UpperBound means the search failed low: the true score is <= the stored score.
	UpperBound
)

func (b Bound) String() string {
	switch b {
	case ExactBound:
		return "Exact"
	case LowerBound:
		return "Lower"
	case UpperBound:
		return "Upper"
	default:
		return "?"
	}
}

// entry is a transposition table entry. 24 bytes.
type entry struct {
	hash  board.ZobristHash // full hash, for collision detection
	move  board.Move
	score eval.Score
	depth uint8
	bound Bound
	age   uint8
}

// TranspositionTable is a fixed-size, index-addressed position cache used to
// reuse search results and seed move ordering. Single bucket per index; the
// full hash disambiguates collisions. The search is single-threaded, so the
// table takes no locks.
type TranspositionTable struct {
	entries []entry
	mask    uint64
	age     uint8
	used    uint64
}

// NewTranspositionTable allocates a table of approximately the given size in
// bytes, rounded down to a power-of-two entry count.
func NewTranspositionTable(ctx context.Context, size uint64) *TranspositionTable {
	n := uint64(1) << (63 - 5 - bits.LeadingZeros64(size))

	logw.Infof(ctx, "Allocating %vMB TT with %v entries", size>>20, n)

	return &TranspositionTable{
		entries: make([]entry, n),
		mask:    n - 1,
	}
}

// Read returns the bound, depth, score and best move for the given position
// hash, if present.
func (t *TranspositionTable) Read(hash board.ZobristHash) (Bound, int, eval.Score, board.Move, bool) {
	e := &t.entries[uint64(hash)&t.mask]
	if e.hash != hash || e.move == board.NoMove {
		return 0, 0, 0, board.NoMove, false
	}
	return e.bound, int(e.depth), e.score, e.move, true
}

// Write stores the entry, replacing the bucket if it is empty, from an older
// search, or searched no deeper than the new entry.
func (t *TranspositionTable) Write(hash board.ZobristHash, bound Bound, depth int, score eval.Score, move board.Move) bool {
	e := &t.entries[uint64(hash)&t.mask]

	if e.move != board.NoMove && e.age == t.age && int(e.depth) > depth {
		return false // keep: deeper result from this search
	}
	if e.move == board.NoMove {
		t.used++
	}

	*e = entry{
		hash:  hash,
		move:  move,
		score: score,
		depth: uint8(depth),
		bound: bound,
		age:   t.age,
	}
	return true
}

// Advance ages the table. Called once per top-level search, before it is
// launched, so stale entries lose their replacement preference.
func (t *TranspositionTable) Advance() {
	t.age++
}

// Size returns the size of the table in bytes.
func (t *TranspositionTable) Size() uint64 {
	return uint64(len(t.entries)) * 24
}

// Used returns the utilization as a fraction [0;1].
func (t *TranspositionTable) Used() float64 {
	return float64(t.used) / float64(len(t.entries))
}

func (t *TranspositionTable) String() string {
	return fmt.Sprintf("TT[%v @ %v%%]", t.Size(), int(100*t.Used()))
}
