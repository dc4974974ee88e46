package board_test

import (
	"testing"

	"github.com/herohde/freja/pkg/board"
	"github.com/herohde/freja/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const kiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"

// positions covers quiet moves, captures, castling, en passant and promotions.
var positions = []string{
	fen.Initial,
	kiwipete,
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"R6R/3Q4/1Q4Q1/4Q3/2Q4Q/Q4Q2/pp1Q4/kBNN1KB1 w - - 0 1",
	"rnbqkbnr/ppp1pppp/8/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3",
	"8/P6k/8/8/8/8/p6K/8 w - - 0 1",
}

func TestDoUndoRestoresState(t *testing.T) {
	for _, position := range positions {
		b, err := fen.Decode(position)
		require.NoError(t, err)

		before := b.String()
		hash := b.Hash()
		count := b.History().Count(hash)

		var moves board.MoveList
		b.PseudoLegalMoves(&moves)
		require.NotZero(t, moves.Len())

		for i := 0; i < moves.Len(); i++ {
			m := moves.At(i)

			b.DoMove(m)
			b.UndoMove(m)

			assert.Equalf(t, before, b.String(), "state not restored by %v on %v", m, position)
			assert.Equalf(t, hash, b.Hash(), "hash not restored by %v on %v", m, position)
			assert.Equalf(t, count, b.History().Count(hash), "repetitions not restored by %v on %v", m, position)
		}
	}
}

func TestDoMoveOccupancyInvariants(t *testing.T) {
	for _, position := range positions {
		b, err := fen.Decode(position)
		require.NoError(t, err)

		var moves board.MoveList
		b.LegalMoves(&moves)

		for i := 0; i < moves.Len(); i++ {
			m := moves.At(i)
			b.DoMove(m)

			white, black := b.All(board.White), b.All(board.Black)
			assert.Zerof(t, white&black, "overlapping occupancy after %v on %v", m, position)
			assert.Equalf(t, white|black, b.Occupied(), "inconsistent aggregate after %v on %v", m, position)

			// The piece-at table must agree with the bitboards.
			var fromPieces board.Bitboard
			for c := board.ZeroColor; c < board.NumColors; c++ {
				for p := board.ZeroPiece; p < board.NumPieceTypes; p++ {
					fromPieces |= b.Piece(c, p)
				}
			}
			assert.Equalf(t, b.Occupied(), fromPieces, "piece boards disagree after %v on %v", m, position)
			for sq := board.ZeroSquare; sq < board.NumSquares; sq++ {
				assert.Equalf(t, b.Occupied().IsSet(sq), b.PieceAt(sq) != board.NoPiece, "piece-at table disagrees at %v after %v", sq, m)
			}

			b.UndoMove(m)
		}
	}
}

func TestDoMoveCastling(t *testing.T) {
	b, err := fen.Decode("4k3/8/8/8/8/8/R7/4K2R w K - 0 1")
	require.NoError(t, err)

	castle := board.NewCastleMove(board.E1, board.G1, b)
	b.DoMove(castle)

	assert.Equal(t, board.King, b.PieceAt(board.G1))
	assert.Equal(t, board.Rook, b.PieceAt(board.F1))
	assert.Equal(t, board.NoPiece, b.PieceAt(board.E1))
	assert.Equal(t, board.NoPiece, b.PieceAt(board.H1))
	assert.False(t, b.State().Castling.CanCastle(board.White, false))
	assert.False(t, b.State().Castling.CanCastle(board.White, true))

	b.UndoMove(castle)
	assert.Equal(t, board.King, b.PieceAt(board.E1))
	assert.Equal(t, board.Rook, b.PieceAt(board.H1))
	assert.True(t, b.State().Castling.CanCastle(board.White, false))
}

func TestDoMoveEnPassant(t *testing.T) {
	// After the en passant capture d5xc6, the black c5 pawn disappears; undo
	// restores it.
	b, err := fen.Decode("rnbqkbnr/pp1ppppp/8/2pP4/8/8/PPP1PPPP/PPPP1PPP w - c6 0 2")
	require.NoError(t, err)

	require.True(t, b.IsEnPassant(board.C6))
	ep := board.NewEnPassantMove(board.D5, board.C6, b)

	b.DoMove(ep)
	assert.Equal(t, board.Pawn, b.PieceAt(board.C6))
	assert.Equal(t, board.NoPiece, b.PieceAt(board.C5))
	assert.Equal(t, board.NoPiece, b.PieceAt(board.D5))

	b.UndoMove(ep)
	assert.Equal(t, board.Pawn, b.PieceAt(board.C5))
	assert.True(t, b.IsOccupied(board.Black, board.C5))
	assert.Equal(t, board.Pawn, b.PieceAt(board.D5))
	assert.True(t, b.IsOccupied(board.White, board.D5))
	assert.Equal(t, board.NoPiece, b.PieceAt(board.C6))
}

func TestDoMoveEnPassantTarget(t *testing.T) {
	b, err := fen.Decode(fen.Initial)
	require.NoError(t, err)

	jump := board.NewMove(board.E2, board.E4, b)
	b.DoMove(jump)
	assert.Equal(t, board.E3, b.State().EnPassant)

	reply := board.NewMove(board.G8, board.F6, b)
	b.DoMove(reply)
	assert.Equal(t, board.NoSquare, b.State().EnPassant, "en passant target cleared on any other move")

	b.UndoMove(reply)
	assert.Equal(t, board.E3, b.State().EnPassant)
	b.UndoMove(jump)
	assert.Equal(t, board.NoSquare, b.State().EnPassant)
}

func TestDoMovePromotion(t *testing.T) {
	b, err := fen.Decode("8/P7/8/8/8/8/8/k6K w - - 0 1")
	require.NoError(t, err)

	m := board.NewPromotionMove(board.A7, board.A8, b, board.Knight)
	b.DoMove(m)
	assert.Equal(t, board.Knight, b.PieceAt(board.A8))
	assert.True(t, b.IsOccupied(board.White, board.A8))
	assert.Zero(t, b.Piece(board.White, board.Pawn))

	b.UndoMove(m)
	assert.Equal(t, board.Pawn, b.PieceAt(board.A7))
	assert.Equal(t, board.NoPiece, b.PieceAt(board.A8))
}

func TestDoMoveRookCornerRights(t *testing.T) {
	b, err := fen.Decode("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	require.NoError(t, err)

	// A rook move voids its own right; capturing the enemy rook voids theirs.
	m := board.NewMove(board.A1, board.A8, b)
	b.DoMove(m)

	st := b.State()
	assert.False(t, st.Castling.CanCastle(board.White, true))
	assert.True(t, st.Castling.CanCastle(board.White, false))
	assert.False(t, st.Castling.CanCastle(board.Black, true))
	assert.True(t, st.Castling.CanCastle(board.Black, false))

	b.UndoMove(m)
	assert.Equal(t, board.FullCastlingRights, b.State().Castling)
}

func TestZobristDeterminism(t *testing.T) {
	for _, position := range positions {
		a, err := fen.Decode(position)
		require.NoError(t, err)
		b, err := fen.Decode(position)
		require.NoError(t, err)

		assert.Equalf(t, a.Hash(), b.Hash(), "hash differs for %v", position)
	}

	a, err := fen.Decode(fen.Initial)
	require.NoError(t, err)
	b, err := fen.Decode(kiwipete)
	require.NoError(t, err)
	assert.NotEqual(t, a.Hash(), b.Hash())
}

func TestZobristSideAndEnPassant(t *testing.T) {
	white, err := fen.Decode("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	require.NoError(t, err)
	black, err := fen.Decode("4k3/8/8/8/8/8/8/4K3 b - - 0 1")
	require.NoError(t, err)
	assert.NotEqual(t, white.Hash(), black.Hash(), "side to move must hash differently")

	noEP, err := fen.Decode("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1")
	require.NoError(t, err)
	withEP, err := fen.Decode("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	require.NoError(t, err)
	assert.NotEqual(t, noEP.Hash(), withEP.Hash(), "en passant target must hash differently")
}

func TestFork(t *testing.T) {
	b, err := fen.Decode(fen.Initial)
	require.NoError(t, err)

	m := board.NewMove(board.E2, board.E4, b)
	b.DoMove(m)

	fork := b.Fork()
	assert.Equal(t, b.String(), fork.String())
	assert.Equal(t, b.Hash(), fork.Hash())

	// Mutating the fork must not affect the original.
	reply := board.NewMove(board.E7, board.E5, fork)
	fork.DoMove(reply)
	assert.NotEqual(t, b.String(), fork.String())
	assert.Equal(t, board.Pawn, b.PieceAt(board.E7))

	fork.UndoMove(reply)
	assert.Equal(t, b.String(), fork.String())
}

func TestDoNull(t *testing.T) {
	b, err := fen.Decode("rnbqkbnr/ppp1pppp/8/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3")
	require.NoError(t, err)

	before := b.String()
	st := b.DoNull()

	assert.Equal(t, board.Black, b.Us())
	assert.Equal(t, board.NoSquare, b.State().EnPassant)
	assert.False(t, b.State().CanNullmove)

	b.UndoNull(st)
	assert.Equal(t, before, b.String())
	assert.True(t, b.State().CanNullmove)
}
