// Package search contains search functionality and utilities.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/herohde/freja/pkg/board"
	"github.com/herohde/freja/pkg/eval"
	"github.com/seekerror/stdlib/pkg/lang"
)

// ErrHalted is an error indicating that the search was halted.
var ErrHalted = errors.New("search halted")

// PV represents the principal variation for some search depth.
type PV struct {
	Depth int
	Score eval.Score
	Moves []board.Move
	Nodes uint64
	Time  time.Duration
}

func (p PV) String() string {
	moves := make([]string, len(p.Moves))
	for i, m := range p.Moves {
		moves[i] = m.String()
	}
	return fmt.Sprintf("depth=%v score=%v nodes=%v time=%v pv=%v", p.Depth, p.Score, p.Nodes, p.Time, strings.Join(moves, " "))
}

// Options hold dynamic search options. The user may change these on a particular search.
type Options struct {
	// DepthLimit, if set, limits the search to the given ply depth.
	DepthLimit lang.Optional[uint]
	// TimeControl, if set, limits the search to the given time parameters.
	TimeControl lang.Optional[TimeControl]
	// MoveTime, if set, fixes the time to spend on the search.
	MoveTime lang.Optional[time.Duration]
}

func (o Options) String() string {
	var ret []string
	if v, ok := o.DepthLimit.V(); ok {
		ret = append(ret, fmt.Sprintf("depth=%v", v))
	}
	if v, ok := o.TimeControl.V(); ok {
		ret = append(ret, fmt.Sprintf("time=%v", v))
	}
	if v, ok := o.MoveTime.V(); ok {
		ret = append(ret, fmt.Sprintf("movetime=%v", v))
	}
	return fmt.Sprintf("[%v]", strings.Join(ret, ", "))
}

// Searcher implements search of the game tree to a given depth. The board is
// owned exclusively by the search for its duration.
type Searcher interface {
	// Search searches the position to the given depth. It returns the node count,
	// the score relative to the side to move, and the best line found (empty if
	// the position is terminal). It returns ErrHalted if cancelled before
	// completing; the partial score must then be discarded, but the moves still
	// carry the first-ordered legal root move as a placeholder, if any, so a
	// caller without a completed iteration is never left without a legal move.
	Search(ctx context.Context, b *board.Board, depth int, quit <-chan struct{}) (uint64, eval.Score, []board.Move, error)
}

// Launcher is an interface for managing searches.
type Launcher interface {
	// Launch a new search from the given position. It expects an exclusive
	// (forked) board and returns a PV channel for iteratively deeper searches.
	// If the search is exhausted, the channel is closed. The search can be
	// stopped at any time.
	Launch(ctx context.Context, b *board.Board, opt Options) (Handle, <-chan PV)
}

// Handle is an interface for the engine to manage searches. The engine is
// expected to spin off searches with forked boards and close/abandon them when
// no longer needed. This design keeps stopping conditions and re-synchronization
// trivial.
type Handle interface {
	// Halt halts the search, if running. Idempotent.
	Halt() PV
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
