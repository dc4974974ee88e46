// Package board contains the chess board representation: bitboards, packed moves,
// reversible move application and move generation.
package board

import (
	"fmt"
	"strings"
)

// historyReserve is the pre-reserved history capacity. A full game rarely exceeds
// a few hundred plies; 2048 leaves room for long searches on top.
const historyReserve = 2048

// GameState holds the irreversible part of a position. DoMove snapshots it onto
// the history stack so UndoMove can restore castling rights, the en passant
// target, the side to move and the null-move permission without recomputation.
type GameState struct {
	ActiveColor Color
	Castling    Castling
	EnPassant   Square // NoSquare if no en passant target
	CanNullmove bool
}

// History is the stack of prior game states plus a multiset of position hashes
// for threefold-repetition detection. Both grow monotonically during a game.
type History struct {
	stack  []GameState
	counts map[ZobristHash]int
}

func newHistory() History {
	return History{
		stack:  make([]GameState, 0, historyReserve),
		counts: make(map[ZobristHash]int, historyReserve),
	}
}

func (h *History) push(st GameState) {
	h.stack = append(h.stack, st)
}

func (h *History) pop() GameState {
	st := h.stack[len(h.stack)-1]
	h.stack = h.stack[:len(h.stack)-1]
	return st
}

func (h *History) increment(hash ZobristHash) {
	h.counts[hash]++
}

func (h *History) decrement(hash ZobristHash) {
	n := h.counts[hash] - 1
	if n <= 0 {
		delete(h.counts, hash)
		return
	}
	h.counts[hash] = n
}

// Count returns the number of times the given hash has been reached by DoMove.
func (h *History) Count(hash ZobristHash) int {
	return h.counts[hash]
}

// Placement defines a piece placement.
type Placement struct {
	Square Square
	Color  Color
	Piece  Piece
}

func (p Placement) String() string {
	return fmt.Sprintf("%v@%v", printPiece(p.Color, p.Piece), p.Square)
}

// Board represents a chess position with its game history. It is mutated in place
// by DoMove/UndoMove; the search owns it exclusively. Not thread-safe.
type Board struct {
	pieces  [NumColors][NumPieceTypes]Bitboard
	sides   [3]Bitboard // White, Black, Both
	squares [NumSquares]Piece

	state   GameState
	history History
}

const (
	// bothSides indexes the union occupancy in Board.sides.
	bothSides = 2
)

// New returns a board from the given placements and state. The placements must be
// unique per square, with at most one king per side.
func New(pieces []Placement, state GameState) (*Board, error) {
	b := &Board{
		state:   state,
		history: newHistory(),
	}
	for sq := range b.squares {
		b.squares[sq] = NoPiece
	}

	for _, p := range pieces {
		if b.squares[p.Square] != NoPiece {
			return nil, fmt.Errorf("duplicate placement: %v", p)
		}
		b.addPiece(p.Square, p.Piece, p.Color)
	}

	if b.pieces[White][King].PopCount() > 1 || b.pieces[Black][King].PopCount() > 1 {
		return nil, fmt.Errorf("invalid number of kings")
	}
	if wk := b.pieces[White][King]; wk != 0 && KingAttackboard(wk.FirstSquare())&b.pieces[Black][King] != 0 {
		return nil, fmt.Errorf("kings cannot be adjacent")
	}
	return b, nil
}

// Fork returns a deep copy of the board, including its history. The engine hands
// each search an exclusive fork so the mutable board never has two owners.
func (b *Board) Fork() *Board {
	fork := &Board{
		pieces:  b.pieces,
		sides:   b.sides,
		squares: b.squares,
		state:   b.state,
	}
	fork.history.stack = make([]GameState, len(b.history.stack), historyReserve+len(b.history.stack))
	copy(fork.history.stack, b.history.stack)
	fork.history.counts = make(map[ZobristHash]int, len(b.history.counts)+historyReserve)
	for k, v := range b.history.counts {
		fork.history.counts[k] = v
	}
	return fork
}

// Us returns the side to move.
func (b *Board) Us() Color {
	return b.state.ActiveColor
}

// Them returns the side not to move.
func (b *Board) Them() Color {
	return b.state.ActiveColor.Opponent()
}

// State returns the current game state.
func (b *Board) State() GameState {
	return b.state
}

// History returns the game history.
func (b *Board) History() *History {
	return &b.history
}

// Piece returns the bitboard for the given side and piece kind.
func (b *Board) Piece(side Color, piece Piece) Bitboard {
	return b.pieces[side][piece]
}

// All returns the aggregate bitboard for the given side.
func (b *Board) All(side Color) Bitboard {
	return b.sides[side]
}

// Occupied returns the aggregate bitboard for both sides.
func (b *Board) Occupied() Bitboard {
	return b.sides[bothSides]
}

// PieceAt returns the piece kind at the given square, or NoPiece.
func (b *Board) PieceAt(sq Square) Piece {
	return b.squares[sq]
}

func (b *Board) mustPieceAt(sq Square) Piece {
	p := b.squares[sq]
	if p == NoPiece {
		panic(fmt.Sprintf("move from empty square %v", sq))
	}
	return p
}

// IsOccupied returns true iff the square holds a piece of the given side.
func (b *Board) IsOccupied(side Color, sq Square) bool {
	return b.sides[side].IsSet(sq)
}

// IsEmpty returns true iff the square is empty.
func (b *Board) IsEmpty(sq Square) bool {
	return b.squares[sq] == NoPiece
}

// IsEnPassant returns true iff the square is the current en passant target.
func (b *Board) IsEnPassant(sq Square) bool {
	return b.state.EnPassant == sq
}

// SetNullmove sets the null-move permission on the current state. The search
// grants it to child nodes and revokes it below a null move.
func (b *Board) SetNullmove(allowed bool) {
	b.state.CanNullmove = allowed
}

// DoMove applies a pseudo-legal move. It snapshots the game state onto the
// history stack and increments the repetition count of the resulting position.
// The move may leave the own king in check; callers filter with InCheck.
func (b *Board) DoMove(m Move) {
	b.history.push(b.state)
	us := b.Us()

	b.removePiece(m.To())
	b.removePiece(m.From())
	if m.IsPromotion() {
		b.addPiece(m.To(), m.PromotionPiece(), us)
	} else {
		b.addPiece(m.To(), m.Piece(), us)
	}

	if m.IsCastle() {
		// The rook jumps from its corner to the square the king passed through.
		switch int(m.To()) - int(m.From()) {
		case -2: // long
			b.removePiece(m.To() - 2)
			b.addPiece(m.To()+1, Rook, us)
		case 2: // short
			b.removePiece(m.To() + 1)
			b.addPiece(m.To()-1, Rook, us)
		default:
			panic(fmt.Sprintf("invalid castle delta: %v", m))
		}
		b.state.Castling = b.state.Castling.Disable(us, true).Disable(us, false)
	}

	b.state.EnPassant = NoSquare
	if m.Piece() == Pawn && m.IsDoublePush() {
		if us == White {
			b.state.EnPassant = m.To() + 8
		} else {
			b.state.EnPassant = m.To() - 8
		}
	}

	if m.IsEnPassant() {
		if us == White {
			b.removePiece(m.To() + 8)
		} else {
			b.removePiece(m.To() - 8)
		}
	}

	// Any move that touches a rook corner voids that castling right. This covers
	// both rook moves and rook captures in one test.
	disableCorner(&b.state, m.To())
	disableCorner(&b.state, m.From())

	if m.Piece() == King {
		b.state.Castling = b.state.Castling.Disable(us, true).Disable(us, false)
	}

	b.state.ActiveColor = b.Them()
	b.history.increment(b.Hash())
}

// UndoMove reverses DoMove. A DoMove/UndoMove pair restores every bit of board
// state: bitboards, piece table, game state, history and repetition counts.
func (b *Board) UndoMove(m Move) {
	b.history.decrement(b.Hash())
	b.state = b.history.pop()
	us := b.Us()

	b.removePiece(m.To())

	if capture, ok := m.Capture(); ok && !m.IsEnPassant() {
		b.addPiece(m.To(), capture, b.Them())
	}

	if m.IsEnPassant() {
		if us == White {
			b.addPiece(m.To()+8, Pawn, Black)
		} else {
			b.addPiece(m.To()-8, Pawn, White)
		}
	}

	if m.IsCastle() {
		switch int(m.To()) - int(m.From()) {
		case -2: // long
			b.removePiece(m.To() + 1)
			b.addPiece(m.To()-2, Rook, us)
		case 2: // short
			b.removePiece(m.To() - 1)
			b.addPiece(m.To()+1, Rook, us)
		default:
			panic(fmt.Sprintf("invalid castle delta: %v", m))
		}
	}

	b.addPiece(m.From(), m.Piece(), us)
}

// DoNull plays a null move: the side to move passes. It returns the prior game
// state for UndoNull. The history stack and repetition counts are not touched.
func (b *Board) DoNull() GameState {
	st := b.state
	b.state.ActiveColor = b.Them()
	b.state.EnPassant = NoSquare
	b.state.CanNullmove = false
	return st
}

// UndoNull reverses DoNull.
func (b *Board) UndoNull(st GameState) {
	b.state = st
}

func (b *Board) addPiece(sq Square, piece Piece, side Color) {
	mask := BitMask(sq)
	b.pieces[side][piece] |= mask
	b.sides[side] |= mask
	b.sides[bothSides] |= mask
	b.squares[sq] = piece
}

func (b *Board) removePiece(sq Square) {
	piece := b.squares[sq]
	if piece == NoPiece {
		return
	}

	side := White
	if b.sides[Black].IsSet(sq) {
		side = Black
	}

	mask := BitMask(sq)
	b.pieces[side][piece] &^= mask
	b.sides[side] &^= mask
	b.sides[bothSides] &^= mask
	b.squares[sq] = NoPiece
}

func disableCorner(st *GameState, sq Square) {
	switch sq {
	case H1:
		st.Castling = st.Castling.Disable(White, false)
	case A1:
		st.Castling = st.Castling.Disable(White, true)
	case H8:
		st.Castling = st.Castling.Disable(Black, false)
	case A8:
		st.Castling = st.Castling.Disable(Black, true)
	}
}

func (b *Board) String() string {
	var sb strings.Builder
	for sq := ZeroSquare; sq < NumSquares; sq++ {
		if sq != 0 && sq%8 == 0 {
			sb.WriteRune('/')
		}
		if p := b.squares[sq]; p != NoPiece {
			side := White
			if b.sides[Black].IsSet(sq) {
				side = Black
			}
			sb.WriteString(printPiece(side, p))
		} else {
			sb.WriteRune('-')
		}
	}

	return fmt.Sprintf("board{%v %v %v(%v), hash=%x (%v)}", sb.String(), b.state.ActiveColor, b.state.Castling, b.state.EnPassant, b.Hash(), b.history.Count(b.Hash()))
}

func printPiece(c Color, p Piece) string {
	if c == White {
		return strings.ToUpper(p.String())
	}
	return p.String()
}
