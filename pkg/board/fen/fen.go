// Package fen contains utilities for reading and writing positions in FEN notation.
package fen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/herohde/freja/pkg/board"
)

const (
	// Initial is the standard chess starting position.
	Initial = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
)

// Decode error kinds. The frontend decides whether to abort or prompt.
var (
	ErrInvalidPartCount          = errors.New("fen: invalid part count")
	ErrInvalidRankCount          = errors.New("fen: invalid rank count")
	ErrInvalidActiveColor        = errors.New("fen: invalid active color")
	ErrInvalidCastlingPermission = errors.New("fen: invalid castling permission")
	ErrInvalidEnPassantSquare    = errors.New("fen: invalid en passant square")
)

// Decode returns a new board from a FEN description. At least the four first
// fields (placement, active color, castling, en passant) must be present; the
// halfmove clock and fullmove number are ignored if given.
//
// Example:
//
//	"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
func Decode(fen string) (*board.Board, error) {
	parts := strings.Fields(strings.TrimSpace(fen))
	if len(parts) < 4 {
		return nil, fmt.Errorf("%w: '%v'", ErrInvalidPartCount, fen)
	}

	// (1) Piece placement, from white's perspective: rank 8 first, each rank from
	// file a through file h, digits for empty runs.

	ranks := strings.Split(parts[0], "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("%w: '%v'", ErrInvalidRankCount, fen)
	}

	var pieces []board.Placement
	for row, rank := range ranks {
		file := 0
		for _, r := range rank {
			if unicode.IsDigit(r) {
				file += int(r - '0')
				continue
			}

			piece, ok := board.ParsePiece(r)
			if !ok {
				continue
			}
			if file > 7 {
				return nil, fmt.Errorf("%w: '%v'", ErrInvalidRankCount, fen)
			}
			color := board.Black
			if unicode.IsUpper(r) {
				color = board.White
			}
			pieces = append(pieces, board.Placement{
				Square: board.Square(row*8 + file),
				Color:  color,
				Piece:  piece,
			})
			file++
		}
	}

	// (2) Active color.

	var active board.Color
	switch parts[1] {
	case "w":
		active = board.White
	case "b":
		active = board.Black
	default:
		return nil, fmt.Errorf("%w: '%v'", ErrInvalidActiveColor, fen)
	}

	// (3) Castling availability: a subset of "KQkq", or "-".

	var castling board.Castling
	if parts[2] != "-" {
		for _, r := range parts[2] {
			switch r {
			case 'K':
				castling |= board.WhiteShortCastle
			case 'Q':
				castling |= board.WhiteLongCastle
			case 'k':
				castling |= board.BlackShortCastle
			case 'q':
				castling |= board.BlackLongCastle
			default:
				return nil, fmt.Errorf("%w: '%v'", ErrInvalidCastlingPermission, fen)
			}
		}
	}

	// (4) En passant target square, or "-".

	ep := board.NoSquare
	if parts[3] != "-" {
		sq, err := board.ParseSquare(parts[3])
		if err != nil {
			return nil, fmt.Errorf("%w: '%v'", ErrInvalidEnPassantSquare, fen)
		}
		ep = sq
	}

	state := board.GameState{
		ActiveColor: active,
		Castling:    castling,
		EnPassant:   ep,
		CanNullmove: true,
	}
	return board.New(pieces, state)
}

// Encode encodes the board in FEN notation. The halfmove clock and fullmove
// number are not tracked by the board and are emitted as "0 1".
func Encode(b *board.Board) string {
	var sb strings.Builder
	for row := 0; row < 8; row++ {
		blanks := 0
		for file := 0; file < 8; file++ {
			sq := board.Square(row*8 + file)
			piece := b.PieceAt(sq)
			if piece == board.NoPiece {
				blanks++
				continue
			}

			if blanks > 0 {
				sb.WriteString(strconv.Itoa(blanks))
				blanks = 0
			}

			s := piece.String()
			if b.IsOccupied(board.White, sq) {
				s = strings.ToUpper(s)
			}
			sb.WriteString(s)
		}

		if blanks > 0 {
			sb.WriteString(strconv.Itoa(blanks))
		}
		if row < 7 {
			sb.WriteString("/")
		}
	}

	st := b.State()
	ep := "-"
	if st.EnPassant != board.NoSquare {
		ep = st.EnPassant.String()
	}

	return fmt.Sprintf("%v %v %v %v 0 1", sb.String(), st.ActiveColor, st.Castling, ep)
}
