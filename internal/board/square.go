// Package board implements chess board representation using bitboards.
package board

import "fmt"

// Square identifies one of the 64 board squares using Little-Endian
// Rank-File Mapping: A1=0, H1=7, A8=56, H8=63. Bit index == square index,
// so a Square doubles as the shift amount for SquareBB.
type Square uint8

// The 64 squares, plus the NoSquare sentinel used for "no en passant
// target" and similar absent-square cases.
const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
	NoSquare Square = 64
)

// NewSquare builds a square from a 0-indexed file and rank.
func NewSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

// ParseSquare parses algebraic notation such as "e4".
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square %q: want 2 characters", s)
	}

	file := int(s[0] - 'a')
	rank := int(s[1] - '1')
	if rank < 0 || rank > 7 || file < 0 || file > 7 {
		return NoSquare, fmt.Errorf("invalid square %q", s)
	}

	return NewSquare(file, rank), nil
}

// File reports the square's column, 0 (a-file) through 7 (h-file).
func (sq Square) File() int {
	return int(sq) & 7
}

// Rank reports the square's row, 0 (1st rank) through 7 (8th rank).
func (sq Square) Rank() int {
	return int(sq) >> 3
}

// IsValid reports whether sq is one of the 64 real board squares.
func (sq Square) IsValid() bool {
	return sq < NoSquare
}

// String renders the square in algebraic notation, or "-" for NoSquare.
func (sq Square) String() string {
	if !sq.IsValid() {
		return "-"
	}
	letters := "abcdefgh"
	digits := "12345678"
	return string(letters[sq.File()]) + string(digits[sq.Rank()])
}

// Mirror flips a square across the board's horizontal midline (rank 4/5
// boundary), turning White's-eye-view squares into Black's and back.
func (sq Square) Mirror() Square {
	return NewSquare(sq.File(), 7-sq.Rank())
}

// RelativeRank reports the rank as seen by color c: rank 0 is always that
// color's back rank, rank 7 its promotion rank.
func (sq Square) RelativeRank(c Color) int {
	if c == White {
		return sq.Rank()
	}
	return 7 - sq.Rank()
}
