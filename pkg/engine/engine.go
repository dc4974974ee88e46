// Package engine contains the engine shell: position bookkeeping and search
// management behind the protocol drivers.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/herohde/freja/pkg/board"
	"github.com/herohde/freja/pkg/board/fen"
	"github.com/herohde/freja/pkg/search"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
)

var version = build.NewVersion(0, 9, 0)

// Options are engine creation options.
type Options struct {
	// Depth is the search depth limit. If zero, there is no limit.
	Depth uint
	// Hash is the transposition table size in MB.
	Hash uint
}

func (o Options) String() string {
	return fmt.Sprintf("{depth=%v, hash=%v}", o.Depth, o.Hash)
}

// Engine encapsulates game-playing logic, search and evaluation.
type Engine struct {
	name, author string

	launcher search.Launcher
	tt       *search.TranspositionTable
	opts     Options

	b      *board.Board
	played []board.Move
	active search.Handle
	mu     sync.Mutex
}

// Option is an engine creation option.
type Option func(*Engine)

// WithOptions sets default runtime options.
func WithOptions(opts Options) Option {
	return func(e *Engine) {
		e.opts = opts
	}
}

// New returns an engine using the given launcher. The transposition table is
// created by the caller and reused across searches.
func New(ctx context.Context, name, author string, launcher search.Launcher, tt *search.TranspositionTable, opts ...Option) *Engine {
	e := &Engine{
		name:     name,
		author:   author,
		launcher: launcher,
		tt:       tt,
	}
	for _, fn := range opts {
		fn(e)
	}

	_ = e.Reset(ctx, fen.Initial)

	logw.Infof(ctx, "Initialized engine: %v, options=%v", e.Name(), e.opts)
	return e
}

// Name returns the engine name and version.
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", e.name, version)
}

// Author returns the author.
func (e *Engine) Author() string {
	return e.author
}

func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.opts
}

func (e *Engine) SetDepth(depth uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Depth = depth
}

// Board returns a forked board.
func (e *Engine) Board() *board.Board {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.b.Fork()
}

// Position returns the current position in FEN format. Convenience function.
func (e *Engine) Position() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return fen.Encode(e.b)
}

// Reset resets the engine to a new starting position in FEN format.
func (e *Engine) Reset(ctx context.Context, position string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Reset %v, depth=%v", position, e.opts.Depth)

	_, _ = e.haltSearchIfActive(ctx)

	b, err := fen.Decode(position)
	if err != nil {
		return err
	}
	e.b = b
	e.played = nil

	logw.Infof(ctx, "New board: %v", e.b)
	return nil
}

// Move plays the given move in coordinate notation, usually an opponent move.
func (e *Engine) Move(ctx context.Context, move string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	candidate, err := board.ParseMove(move)
	if err != nil {
		return err
	}

	_, _ = e.haltSearchIfActive(ctx)

	var moves board.MoveList
	e.b.LegalMoves(&moves)
	for i := 0; i < moves.Len(); i++ {
		m := moves.At(i)
		if !candidate.Matches(m) {
			continue
		}

		e.b.DoMove(m)
		e.played = append(e.played, m)
		logw.Infof(ctx, "Move %v: %v", m, e.b)
		return nil
	}
	return fmt.Errorf("illegal move: %v", move)
}

// TakeBack undoes the latest move.
func (e *Engine) TakeBack(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, _ = e.haltSearchIfActive(ctx)

	if len(e.played) == 0 {
		return fmt.Errorf("no move to take back")
	}
	m := e.played[len(e.played)-1]
	e.played = e.played[:len(e.played)-1]
	e.b.UndoMove(m)

	logw.Infof(ctx, "Takeback %v", m)
	return nil
}

// Analyze analyzes the current position.
func (e *Engine) Analyze(ctx context.Context, opt search.Options) (<-chan search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := opt.DepthLimit.V(); !ok && e.opts.Depth > 0 {
		opt.DepthLimit = lang.Some(e.opts.Depth)
	}

	logw.Infof(ctx, "Analyze %v, opt=%v", e.b, opt)

	if e.active != nil {
		return nil, fmt.Errorf("search already active")
	}

	e.tt.Advance()
	handle, out := e.launcher.Launch(ctx, e.b.Fork(), opt)
	e.active = handle
	return out, nil
}

// Halt halts the active search and returns the principal variation, if any.
func (e *Engine) Halt(ctx context.Context) (search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pv, ok := e.haltSearchIfActive(ctx)
	if !ok {
		return search.PV{}, fmt.Errorf("no active search")
	}
	return pv, nil
}

func (e *Engine) haltSearchIfActive(ctx context.Context) (search.PV, bool) {
	if e.active != nil {
		pv := e.active.Halt()
		logw.Infof(ctx, "Search %v halted: %v", e.b, pv)

		e.active = nil
		return pv, true
	}
	return search.PV{}, false
}
