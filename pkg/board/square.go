package board

import "fmt"

// Square represents a square on the board, ordered A8=0, B8=1 .., H1=63. The numbering
// follows FEN reading order: rank 8 first, each rank from file a to file h:
//
//	A8 =  0, B8 =  1, C8 =  2, D8 =  3, E8 =  4, F8 =  5, G8 =  6, H8 =  7,
//	A7 =  8, B7 =  9, C7 = 10, D7 = 11, E7 = 12, F7 = 13, G7 = 14, H7 = 15,
//	A6 = 16, B6 = 17, C6 = 18, D6 = 19, E6 = 20, F6 = 21, G6 = 22, H6 = 23,
//	A5 = 24, B5 = 25, C5 = 26, D5 = 27, E5 = 28, F5 = 29, G5 = 30, H5 = 31,
//	A4 = 32, B4 = 33, C4 = 34, D4 = 35, E4 = 36, F4 = 37, G4 = 38, H4 = 39,
//	A3 = 40, B3 = 41, C3 = 42, D3 = 43, E3 = 44, F3 = 45, G3 = 46, H3 = 47,
//	A2 = 48, B2 = 49, C2 = 50, D2 = 51, E2 = 52, F2 = 53, G2 = 54, H2 = 55,
//	A1 = 56, B1 = 57, C1 = 58, D1 = 59, E1 = 60, F1 = 61, G1 = 62, H1 = 63
//
// A square is a bit-index into the bitboard layout. 6 bits.
type Square uint8

const (
	A8 Square = iota
	B8
	C8
	D8
	E8
	F8
	G8
	H8

	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7

	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6

	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5

	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4

	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3

	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2

	A1
	B1
	C1
	D1
	E1
	F1
	G1
	H1
)

// Iteration helpers to enable "for sq := ZeroSquare; sq < NumSquares; sq++".
const (
	ZeroSquare Square = 0
	NumSquares Square = 64

	// NoSquare is the sentinel for "no square", notably an absent en passant target.
	NoSquare Square = 64
)

// NewSquare returns the square at the given file (0 = a) and rank (0 = rank 1).
func NewSquare(file, rank int) Square {
	return Square((7-rank)*8 + file)
}

// ParseSquare parses a square in algebraic notation, such as "e3".
func ParseSquare(str string) (Square, error) {
	runes := []rune(str)
	if len(runes) != 2 {
		return 0, fmt.Errorf("invalid square: %v", str)
	}

	file := int(runes[0] - 'a')
	rank := int(runes[1] - '1')
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return 0, fmt.Errorf("invalid square: %v", str)
	}
	return NewSquare(file, rank), nil
}

func (s Square) IsValid() bool {
	return s < NumSquares
}

// File returns the file index, 0 (file a) to 7 (file h).
func (s Square) File() int {
	return int(s) & 0x7
}

// Rank returns the rank index, 0 (rank 1) to 7 (rank 8).
func (s Square) Rank() int {
	return 7 - int(s)>>3
}

func (s Square) String() string {
	if !s.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+s.File(), '1'+s.Rank())
}
