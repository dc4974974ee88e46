package board

// Move generation is pseudo-legal plus an explicit legality filter: each generator
// emits moves that respect piece movement but may leave the own king in check;
// LegalMoves applies every candidate and drops the ones that do.

var (
	rookDirections   = [4]int{1, -1, 8, -8}
	bishopDirections = [4]int{9, -9, 7, -7}
	queenDirections  = [8]int{9, -9, 7, -7, 1, -1, 8, -8}
)

// PseudoLegalMoves generates all pseudo-legal moves for the side to move,
// including castling.
func (b *Board) PseudoLegalMoves(list *MoveList) {
	us := b.Us()
	b.genPawnMoves(us, list)
	b.genKnightMoves(us, list)
	b.genSliderMoves(us, Rook, rookDirections[:], list)
	b.genSliderMoves(us, Bishop, bishopDirections[:], list)
	b.genSliderMoves(us, Queen, queenDirections[:], list)
	b.genKingMoves(us, list)
	b.genCastleMoves(us, list)
}

// LegalMoves generates all legal moves for the side to move.
func (b *Board) LegalMoves(list *MoveList) {
	var pseudo MoveList
	b.PseudoLegalMoves(&pseudo)

	us := b.Us()
	for i := 0; i < pseudo.Len(); i++ {
		m := pseudo.At(i)
		b.DoMove(m)
		if !b.InCheck(us) {
			list.Push(m)
		}
		b.UndoMove(m)
	}
}

// LegalMovesNoRep generates all legal moves, unless the current position has
// occurred three or more times in the game history, in which case the list stays
// empty: the threefold-repetition draw terminates the line.
func (b *Board) LegalMovesNoRep(list *MoveList) {
	if b.history.Count(b.Hash()) >= 3 {
		return
	}
	b.LegalMoves(list)
}

// AttackBitboard returns the union of destination squares of all pseudo-legal
// piece moves and pawn captures for the given side. Own-occupied squares reached
// by pawns count as attacked; squares defended by other pieces do not, which the
// legality filter compensates for.
func (b *Board) AttackBitboard(side Color) Bitboard {
	var list MoveList
	b.genKnightMoves(side, &list)
	b.genSliderMoves(side, Rook, rookDirections[:], &list)
	b.genSliderMoves(side, Bishop, bishopDirections[:], &list)
	b.genSliderMoves(side, Queen, queenDirections[:], &list)
	b.genKingMoves(side, &list)

	bb := PawnCaptureboard(side, b.pieces[side][Pawn])
	for i := 0; i < list.Len(); i++ {
		bb |= BitMask(list.At(i).To())
	}
	return bb
}

// InCheck returns true iff the given side's king is attacked.
func (b *Board) InCheck(side Color) bool {
	return b.pieces[side][King]&b.AttackBitboard(side.Opponent()) != 0
}

func (b *Board) genPawnMoves(us Color, list *MoveList) {
	them := us.Opponent()

	// Rank indices here are rows from the top (square/8), not chess ranks.
	forward, startRow, promoRow := -8, 6, 0
	attacks := [2]int{-9, -7}
	if us == Black {
		forward, startRow, promoRow = 8, 1, 7
		attacks = [2]int{7, 9}
	}

	pawns := b.pieces[us][Pawn]
	for pawns != 0 {
		var sq Square
		sq, pawns = pawns.PopFirst()
		row, file := int(sq)/8, int(sq)%8

		steps := 1
		if row == startRow {
			steps = 2
		}
		for i := 1; i <= steps; i++ {
			target := Square(int(sq) + i*forward)
			if !b.IsEmpty(target) {
				break
			}
			if int(target)/8 == promoRow {
				b.pushPromotions(sq, target, list)
			} else {
				list.Push(NewMove(sq, target, b))
			}
		}

		for i, offset := range attacks {
			if (file == 0 && i == 0) || (file == 7 && i == 1) {
				continue // off the board
			}
			target := Square(int(sq) + offset)

			if b.IsOccupied(them, target) {
				if int(target)/8 == promoRow {
					b.pushPromotions(sq, target, list)
				} else {
					list.Push(NewMove(sq, target, b))
				}
			}
			if b.IsEnPassant(target) {
				list.Push(NewEnPassantMove(sq, target, b))
			}
		}
	}
}

func (b *Board) pushPromotions(from, to Square, list *MoveList) {
	list.Push(NewPromotionMove(from, to, b, Queen))
	list.Push(NewPromotionMove(from, to, b, Rook))
	list.Push(NewPromotionMove(from, to, b, Bishop))
	list.Push(NewPromotionMove(from, to, b, Knight))
}

func (b *Board) genKnightMoves(us Color, list *MoveList) {
	knights := b.pieces[us][Knight]
	for knights != 0 {
		var sq Square
		sq, knights = knights.PopFirst()

		targets := KnightAttackboard(sq) &^ b.sides[us]
		for targets != 0 {
			var target Square
			target, targets = targets.PopFirst()
			list.Push(NewMove(sq, target, b))
		}
	}
}

func (b *Board) genKingMoves(us Color, list *MoveList) {
	kings := b.pieces[us][King]
	for kings != 0 {
		var sq Square
		sq, kings = kings.PopFirst()

		targets := KingAttackboard(sq) &^ b.sides[us]
		for targets != 0 {
			var target Square
			target, targets = targets.PopFirst()
			list.Push(NewMove(sq, target, b))
		}
	}
}

func (b *Board) genSliderMoves(us Color, piece Piece, directions []int, list *MoveList) {
	them := us.Opponent()

	sliders := b.pieces[us][piece]
	for sliders != 0 {
		var sq Square
		sq, sliders = sliders.PopFirst()
		row, file := int(sq)/8, int(sq)%8

		for _, offset := range directions {
			target := int(sq)
			for step := 0; step < 7; step++ {
				target += offset
				if target < 0 || target > 63 {
					break
				}
				trow, tfile := target/8, target%8

				// Rank/file consistency catches horizontal wraparound.
				wrapped := false
				switch offset {
				case 1, -1:
					wrapped = trow != row
				case 8, -8:
					wrapped = tfile != file
				case 7, -7:
					wrapped = trow+tfile != row+file
				case 9, -9:
					wrapped = trow-tfile != row-file
				}
				if wrapped {
					break
				}

				if b.IsOccupied(us, Square(target)) {
					break
				}
				list.Push(NewMove(sq, Square(target), b))
				if b.IsOccupied(them, Square(target)) {
					break
				}
			}
		}
	}
}

func (b *Board) genCastleMoves(us Color, list *MoveList) {
	if !b.state.Castling.CanCastle(us, false) && !b.state.Castling.CanCastle(us, true) {
		return
	}
	if b.pieces[us][King] == 0 {
		return
	}

	king := b.pieces[us][King].FirstSquare()
	attacked := b.AttackBitboard(us.Opponent())

	// The attacked-mask test includes the king square itself, so a checked king
	// cannot castle. The destination square is covered by the legality filter.
	if b.state.Castling.CanCastle(us, false) {
		if b.IsEmpty(king+1) && b.IsEmpty(king+2) &&
			attacked&(BitMask(king)|BitMask(king+1)) == 0 {
			list.Push(NewCastleMove(king, king+2, b))
		}
	}
	if b.state.Castling.CanCastle(us, true) {
		if b.IsEmpty(king-1) && b.IsEmpty(king-2) && b.IsEmpty(king-3) &&
			attacked&(BitMask(king)|BitMask(king-1)) == 0 {
			list.Push(NewCastleMove(king, king-2, b))
		}
	}
}
