// Package features computes HalfKP feature indices: one index per
// (own king square, non-king piece type, piece color, piece square) tuple,
// from each side's own perspective.
package features

import "github.com/chego/engine/internal/board"

const (
	NumKingSquares  = 64
	NumPieceTypes   = 10 // P, N, B, R, Q for both colors, kings excluded
	NumPieceSquares = 64

	// PSEnd is the piece-square index space: 640 real pieces plus index 0
	// reserved for "no piece", matching the classic HalfKP encoding.
	PSEnd = NumPieceTypes*NumPieceSquares + 1

	// Dimensions is the feature count per perspective (king square * PSEnd).
	Dimensions = NumKingSquares * PSEnd
)

// pieceSquareIndex maps (PieceType, Color) to a 1..640 slot; 0 is reserved.
func pieceSquareIndex(pt board.PieceType, c board.Color) int {
	if pt == board.King || pt > board.Queen {
		return 0
	}
	base := int(pt) // Pawn=0 .. Queen=4
	if c == board.Black {
		base += 5
	}
	return 1 + base*NumPieceSquares
}

// Index computes the feature index for a piece from a perspective.
// perspective is the side whose accumulator this feeds; their king square
// anchors the index so the same physical piece maps to a different feature
// depending which side is "looking".
func Index(perspective board.Color, kingSquare board.Square,
	pieceType board.PieceType, pieceColor board.Color, pieceSquare board.Square) int {

	kingSq := int(kingSquare)
	pieceSq := int(pieceSquare)
	pc := pieceColor

	if perspective == board.Black {
		kingSq = int(kingSquare.Mirror())
		pieceSq = int(pieceSquare.Mirror())
		pc = pieceColor.Other()
	}

	psIdx := pieceSquareIndex(pieceType, pc)
	if psIdx == 0 {
		return -1
	}

	return kingSq*PSEnd + psIdx + pieceSq
}

// Active returns all active feature indices for a position from both
// perspectives.
func Active(pos *board.Position) (white, black []int) {
	white = make([]int, 0, 32)
	black = make([]int, 0, 32)

	whiteKingSq := pos.KingSquare[board.White]
	blackKingSq := pos.KingSquare[board.Black]

	for color := board.White; color <= board.Black; color++ {
		for pt := board.Pawn; pt < board.King; pt++ {
			pieces := pos.Pieces[color][pt]
			for pieces != 0 {
				sq := pieces.PopLSB()

				if idx := Index(board.White, whiteKingSq, pt, color, sq); idx >= 0 {
					white = append(white, idx)
				}
				if idx := Index(board.Black, blackKingSq, pt, color, sq); idx >= 0 {
					black = append(black, idx)
				}
			}
		}
	}

	return white, black
}

// Changed returns the feature indices to add/remove for both perspectives
// after a move has been made on pos. Returns ok=false if the move can't be
// handled incrementally (a king move invalidates both perspectives' anchor
// square and needs a full Active() recompute instead).
func Changed(pos *board.Position, m board.Move, captured board.Piece) (whiteAdd, whiteRem, blackAdd, blackRem []int, ok bool) {
	whiteKingSq := pos.KingSquare[board.White]
	blackKingSq := pos.KingSquare[board.Black]

	from := m.From()
	to := m.To()
	movedPiece := pos.PieceAt(to)
	if movedPiece == board.NoPiece {
		return nil, nil, nil, nil, false
	}

	movingPT := movedPiece.Type()
	movingColor := movedPiece.Color()
	if movingPT == board.King {
		return nil, nil, nil, nil, false
	}

	addIdx := func(idx int, side *[]int) {
		if idx >= 0 {
			*side = append(*side, idx)
		}
	}

	addIdx(Index(board.White, whiteKingSq, movingPT, movingColor, from), &whiteRem)
	addIdx(Index(board.Black, blackKingSq, movingPT, movingColor, from), &blackRem)

	addPT := movingPT
	if m.IsPromotion() {
		addPT = m.Promotion()
	}
	addIdx(Index(board.White, whiteKingSq, addPT, movingColor, to), &whiteAdd)
	addIdx(Index(board.Black, blackKingSq, addPT, movingColor, to), &blackAdd)

	if captured != board.NoPiece && captured.Type() != board.King {
		capturedPT := captured.Type()
		capturedColor := captured.Color()
		capturedSq := to
		if m.IsEnPassant() {
			if movingColor == board.White {
				capturedSq = to - 8
			} else {
				capturedSq = to + 8
			}
		}
		addIdx(Index(board.White, whiteKingSq, capturedPT, capturedColor, capturedSq), &whiteRem)
		addIdx(Index(board.Black, blackKingSq, capturedPT, capturedColor, capturedSq), &blackRem)
	}

	return whiteAdd, whiteRem, blackAdd, blackRem, true
}
