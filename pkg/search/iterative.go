package search

import (
	"context"
	"sync"
	"time"

	"github.com/herohde/freja/pkg/board"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/iox"
)

// Iterative is a search harness for iterative-deepening search. It runs the root
// searcher at depth 1, 2, .. and publishes the principal variation after each
// completed iteration. The result of the last completed iteration stands when
// the search is halted or the deadline expires mid-iteration.
type Iterative struct {
	Root Searcher
}

func (i *Iterative) Launch(ctx context.Context, b *board.Board, opt Options) (Handle, <-chan PV) {
	out := make(chan PV, 1)
	h := &handle{
		init: iox.NewAsyncCloser(),
		quit: iox.NewAsyncCloser(),
	}
	go h.process(ctx, i.Root, b, opt, out)

	return h, out
}

type handle struct {
	init, quit iox.AsyncCloser

	pv PV
	mu sync.Mutex
}

func (h *handle) process(ctx context.Context, root Searcher, b *board.Board, opt Options, out chan PV) {
	defer h.init.Close()
	defer close(out)

	soft, useSoft := EnforceTimeControl(ctx, h, opt.TimeControl, b.Us())
	if mt, ok := opt.MoveTime.V(); ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, mt)
		defer cancel()
	}

	depth := 1
	for !h.quit.IsClosed() {
		start := time.Now()

		nodes, score, moves, err := root.Search(ctx, b, depth, h.quit.Closed())
		if err != nil {
			if err == ErrHalted {
				// Halt was called or the deadline expired. If not even the first
				// iteration completed, publish the searcher's placeholder so the
				// caller still has a legal move to play.
				if depth == 1 && len(moves) > 0 {
					pv := PV{Moves: moves}

					h.mu.Lock()
					h.pv = pv
					h.mu.Unlock()

					out <- pv
				}
				return
			}
			logw.Errorf(ctx, "Search failed on %v at depth=%v: %v", b, depth, err)
			return
		}

		pv := PV{
			Depth: depth,
			Nodes: nodes,
			Score: score,
			Moves: moves,
			Time:  time.Since(start),
		}

		logw.Debugf(ctx, "Searched %v: %v", b, pv)

		h.mu.Lock()
		h.pv = pv
		h.mu.Unlock()

		select {
		case <-out:
		default:
		}
		out <- pv

		h.init.Close()
		if len(moves) == 0 {
			return // halt: no legal moves
		}
		if limit, ok := opt.DepthLimit.V(); ok && uint(depth) == limit {
			return // halt: reached max depth
		}
		if md, ok := score.MateDistance(); ok && md >= 0 && md <= depth {
			return // halt: forced mate found within full-width depth. Exact result.
		}
		if useSoft && soft < time.Since(start) {
			return // halt: exceeded soft time limit. Do not start a new iteration.
		}
		depth++
	}
}

func (h *handle) Halt() PV {
	<-h.init.Closed()
	h.quit.Close()

	h.mu.Lock()
	defer h.mu.Unlock()

	return h.pv
}
