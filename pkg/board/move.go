package board

import "fmt"

// Move represents a move as a packed 24-bit word. It is passed by value throughout
// the search, so it must stay a plain integer. The layout is:
//
//	bits  0-5:  from square
//	bits  6-11: to square
//	bits 12-14: moving piece kind
//	bits 15-17: captured piece kind (7 if no capture)
//	bit  18:    castle flag
//	bit  19:    en passant flag
//	bit  20:    promotion flag
//	bits 21-22: promotion piece, encoded as piece-1 over {Bishop, Knight, Rook, Queen}
//
// A double pawn push is not a stored flag; it is derived from |from-to| = 16.
type Move uint32

const (
	shiftFrom      = 0
	shiftTo        = 6
	shiftPiece     = 12
	shiftCapture   = 15
	shiftCastle    = 18
	shiftEnPassant = 19
	shiftPromotion = 20
	shiftPromoted  = 21
)

// NoMove is the zero sentinel. It is not a legal move of any position.
const NoMove Move = 0

// NewMove returns an ordinary move or capture. The moving piece is read from the
// board; the captured piece, if any, from the destination square. Panics if the
// source square is empty, which indicates a generator bug.
func NewMove(from, to Square, b *Board) Move {
	return pack(from, to, b.mustPieceAt(from), b.PieceAt(to))
}

// NewEnPassantMove returns an en passant capture onto the given target square.
func NewEnPassantMove(from, to Square, b *Board) Move {
	return pack(from, to, Pawn, b.PieceAt(to)) | 1<<shiftEnPassant
}

// NewCastleMove returns a castling move for the king.
func NewCastleMove(from, to Square, b *Board) Move {
	return pack(from, to, b.mustPieceAt(from), b.PieceAt(to)) | 1<<shiftCastle
}

// NewPromotionMove returns a pawn promotion to the given piece.
func NewPromotionMove(from, to Square, b *Board, promotion Piece) Move {
	m := pack(from, to, b.mustPieceAt(from), b.PieceAt(to))
	return m | 1<<shiftPromotion | Move(promotion-1)<<shiftPromoted
}

func pack(from, to Square, piece, capture Piece) Move {
	return Move(from)<<shiftFrom | Move(to)<<shiftTo | Move(piece)<<shiftPiece | Move(capture)<<shiftCapture
}

func (m Move) From() Square {
	return Square(m >> shiftFrom & 0x3f)
}

func (m Move) To() Square {
	return Square(m >> shiftTo & 0x3f)
}

// Piece returns the moving piece kind.
func (m Move) Piece() Piece {
	return Piece(m >> shiftPiece & 0x7)
}

// Capture returns the captured piece kind, if any. For en passant captures the
// captured pawn does not stand on the destination square, so Capture reports false.
func (m Move) Capture() (Piece, bool) {
	p := Piece(m >> shiftCapture & 0x7)
	return p, p != NoPiece
}

func (m Move) IsCastle() bool {
	return m>>shiftCastle&1 == 1
}

func (m Move) IsEnPassant() bool {
	return m>>shiftEnPassant&1 == 1
}

func (m Move) IsPromotion() bool {
	return m>>shiftPromotion&1 == 1
}

// PromotionPiece returns the promoted-to piece. Only meaningful if IsPromotion.
func (m Move) PromotionPiece() Piece {
	return Piece(m>>shiftPromoted&0x3) + 1
}

// IsDoublePush returns true iff the move is a two-square pawn move.
func (m Move) IsDoublePush() bool {
	d := int(m.From()) - int(m.To())
	return (d == 16 || d == -16) && m.Piece() == Pawn
}

// IsQuiet returns true iff the move is neither a capture, an en passant capture,
// nor a promotion.
func (m Move) IsQuiet() bool {
	_, capture := m.Capture()
	return !capture && !m.IsEnPassant() && !m.IsPromotion()
}

// String formats the move in pure coordinate notation, such as "e2e4" or "e7e8q".
func (m Move) String() string {
	if m.IsPromotion() {
		return fmt.Sprintf("%v%v%v", m.From(), m.To(), m.PromotionPiece())
	}
	return fmt.Sprintf("%v%v", m.From(), m.To())
}

// ParsedMove is a move in pure coordinate notation, such as "a2a4" or "a7a8q". It
// carries no board context and must be matched against generated moves to be played.
type ParsedMove struct {
	From, To  Square
	Promotion Piece // NoPiece if not specified; a bare promotion move implies Queen
}

// ParseMove parses a move in pure coordinate notation.
func ParseMove(str string) (ParsedMove, error) {
	if len(str) < 4 || len(str) > 5 {
		return ParsedMove{}, fmt.Errorf("invalid move: '%v'", str)
	}

	from, err := ParseSquare(str[0:2])
	if err != nil {
		return ParsedMove{}, fmt.Errorf("invalid move: '%v': %w", str, err)
	}
	to, err := ParseSquare(str[2:4])
	if err != nil {
		return ParsedMove{}, fmt.Errorf("invalid move: '%v': %w", str, err)
	}

	promo := NoPiece
	if len(str) == 5 {
		p, ok := ParsePiece(rune(str[4]))
		if !ok || p == Pawn || p == King {
			return ParsedMove{}, fmt.Errorf("invalid promotion: '%v'", str)
		}
		promo = p
	}

	return ParsedMove{From: from, To: to, Promotion: promo}, nil
}

// Matches returns true iff the parsed move identifies the given generated move. A
// parsed move without a promotion letter matches a queen promotion.
func (p ParsedMove) Matches(m Move) bool {
	if p.From != m.From() || p.To != m.To() {
		return false
	}
	if !m.IsPromotion() {
		return p.Promotion == NoPiece
	}
	if p.Promotion == NoPiece {
		return m.PromotionPiece() == Queen
	}
	return m.PromotionPiece() == p.Promotion
}
