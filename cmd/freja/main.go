package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/herohde/freja/pkg/engine"
	"github.com/herohde/freja/pkg/engine/uci"
	"github.com/herohde/freja/pkg/eval"
	"github.com/herohde/freja/pkg/search"
	"github.com/seekerror/logw"
)

var (
	hash  = flag.Uint("hash", 64, "Transposition table size in MB")
	depth = flag.Uint("depth", 0, "Search depth limit (zero if no limit)")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: freja [options]

FREJA is a bitboard UCI chess engine.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	tt := search.NewTranspositionTable(ctx, uint64(*hash)<<20)
	root := search.Negamax{
		Eval: eval.NewTapered(),
		TT:   tt,
	}
	e := engine.New(ctx, "freja", "herohde", &search.Iterative{Root: root}, tt,
		engine.WithOptions(engine.Options{Depth: *depth, Hash: *hash}),
	)

	in := engine.ReadStdinLines(ctx)
	switch <-in {
	case uci.ProtocolName:
		// Use UCI protocol.

		driver, out := uci.NewDriver(ctx, e, in)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	default:
		flag.Usage()
		logw.Exitf(ctx, "Protocol not supported")
	}
}
