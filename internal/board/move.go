package board

import "fmt"

// Move encodes a chess move in 32 bits:
// bits 0-5:   from square (0-63)
// bits 6-11:  to square (0-63)
// bits 12-15: promotion piece type (PieceType value, only meaningful under FlagPromotion)
// bits 16-21: flag bits (independent, see below)
// bit  31:    null-move marker, distinct from the zero value used by NoMove
//
// Castling is encoded as "king captures its own rook": From is the king's
// square, To is the square of the rook taking part in the castle. This
// lets the same encoding describe Chess960 castling, where the rook is not
// necessarily on the corner square a king move alone could reach.
type Move uint32

const (
	moveFromMask  = 0x3F
	moveToShift   = 6
	moveToMask    = 0x3F << moveToShift
	movePromoShift = 12
	movePromoMask  = 0xF << movePromoShift
	moveFlagShift  = 16
	nullMoveBit    = uint32(1) << 31
)

// Move flag bits (independent, a move may set more than one).
const (
	FlagQuiet          uint32 = 1 << (moveFlagShift + 0)
	FlagCapture        uint32 = 1 << (moveFlagShift + 1)
	FlagEnPassant      uint32 = 1 << (moveFlagShift + 2)
	FlagPromotion      uint32 = 1 << (moveFlagShift + 3)
	FlagKingCastle     uint32 = 1 << (moveFlagShift + 4)
	FlagQueenCastle    uint32 = 1 << (moveFlagShift + 5)
)

// NoMove represents the absence of a move (e.g. an empty TT slot).
const NoMove Move = 0

// NullMove represents a deliberate null move made during null-move pruning.
// It is distinct from NoMove so search code can tell "no move recorded"
// from "a null move was played here".
const NullMove Move = Move(nullMoveBit)

// NewMove creates a normal, non-capturing move.
func NewMove(from, to Square) Move {
	return Move(from) | Move(to)<<moveToShift | Move(FlagQuiet)
}

// NewCapture creates a capturing move.
func NewCapture(from, to Square) Move {
	return Move(from) | Move(to)<<moveToShift | Move(FlagCapture)
}

// NewPromotion creates a (non-capturing) promotion move.
func NewPromotion(from, to Square, promo PieceType) Move {
	return Move(from) | Move(to)<<moveToShift | Move(promo)<<movePromoShift | Move(FlagPromotion)
}

// NewPromotionCapture creates a capturing promotion move.
func NewPromotionCapture(from, to Square, promo PieceType) Move {
	return Move(from) | Move(to)<<moveToShift | Move(promo)<<movePromoShift | Move(FlagPromotion) | Move(FlagCapture)
}

// NewEnPassant creates an en passant capture move.
func NewEnPassant(from, to Square) Move {
	return Move(from) | Move(to)<<moveToShift | Move(FlagEnPassant) | Move(FlagCapture)
}

// NewCastling creates a castling move. from is the king's square, to is the
// square of the castling rook ("king captures own rook").
func NewCastling(from, rookSq Square, kingSide bool) Move {
	flag := Move(FlagQueenCastle)
	if kingSide {
		flag = Move(FlagKingCastle)
	}
	return Move(from) | Move(rookSq)<<moveToShift | flag
}

// From returns the origin square (the king's square for castling moves).
func (m Move) From() Square {
	return Square(m & moveFromMask)
}

// To returns the destination square. For castling moves this is the
// square of the rook taking part in the castle, not the king's landing
// square — use CastleKingTo/CastleRookTo for those.
func (m Move) To() Square {
	return Square((m & moveToMask) >> moveToShift)
}

// Promotion returns the promotion piece type (only valid if IsPromotion() is true).
func (m Move) Promotion() PieceType {
	return PieceType((m & movePromoMask) >> movePromoShift)
}

// IsPromotion returns true if this is a promotion move.
func (m Move) IsPromotion() bool {
	return m&Move(FlagPromotion) != 0
}

// IsCastling returns true if this is a castling move (either side).
func (m Move) IsCastling() bool {
	return m&Move(FlagKingCastle|FlagQueenCastle) != 0
}

// IsKingSideCastle returns true if this is a king-side castle.
func (m Move) IsKingSideCastle() bool {
	return m&Move(FlagKingCastle) != 0
}

// IsQueenSideCastle returns true if this is a queen-side castle.
func (m Move) IsQueenSideCastle() bool {
	return m&Move(FlagQueenCastle) != 0
}

// CastleKingTo returns the king's landing square for a castling move.
func (m Move) CastleKingTo() Square {
	rank := m.From().Rank()
	if m.IsKingSideCastle() {
		return NewSquare(6, rank) // g-file
	}
	return NewSquare(2, rank) // c-file
}

// CastleRookFrom returns the castling rook's starting square (alias of To()
// for a castling move, named for readability at call sites).
func (m Move) CastleRookFrom() Square {
	return m.To()
}

// CastleRookTo returns the castling rook's landing square.
func (m Move) CastleRookTo() Square {
	rank := m.From().Rank()
	if m.IsKingSideCastle() {
		return NewSquare(5, rank) // f-file
	}
	return NewSquare(3, rank) // d-file
}

// IsEnPassant returns true if this is an en passant capture.
func (m Move) IsEnPassant() bool {
	return m&Move(FlagEnPassant) != 0
}

// IsCapture returns true if this move captures a piece.
func (m Move) IsCapture() bool {
	return m&Move(FlagCapture) != 0
}

// IsQuiet returns true if this is not a capture or promotion.
func (m Move) IsQuiet() bool {
	return !m.IsCapture() && !m.IsPromotion()
}

// IsNull returns true if this is the dedicated null move.
func (m Move) IsNull() bool {
	return m == NullMove
}

// String returns the UCI format of the move (e.g., "e2e4", "e7e8q").
// Castling is rendered as the king's two-square move, not the internal
// king-captures-rook encoding.
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	if m.IsNull() {
		return "0000"
	}

	var s string
	if m.IsCastling() {
		s = m.From().String() + m.CastleKingTo().String()
	} else {
		s = m.From().String() + m.To().String()
	}

	if m.IsPromotion() {
		promoChars := []byte{0, 'n', 'b', 'r', 'q'}
		s += string(promoChars[m.Promotion()-Knight+1])
	}

	return s
}

// ParseMove parses a UCI format move string.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) < 4 {
		return NoMove, fmt.Errorf("invalid move string: %s", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}

	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return NoMove, fmt.Errorf("no piece at %s", from)
	}
	pt := piece.Type()

	// Castling: UCI gives the king's two-square hop; translate to the
	// internal king-captures-own-rook encoding.
	if pt == King && abs(int(to)-int(from)) == 2 {
		kingSide := to > from
		rookSq := pos.CastlingRookSquare(piece.Color(), kingSide)
		return NewCastling(from, rookSq, kingSide), nil
	}

	// Check for promotion
	if len(s) == 5 {
		var promo PieceType
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
		if pos.PieceAt(to) != NoPiece {
			return NewPromotionCapture(from, to, promo), nil
		}
		return NewPromotion(from, to, promo), nil
	}

	// En passant
	if pt == Pawn && to == pos.EnPassant && to != NoSquare {
		return NewEnPassant(from, to), nil
	}

	if pos.PieceAt(to) != NoPiece {
		return NewCapture(from, to), nil
	}
	return NewMove(from, to), nil
}

// MoveList is a fixed-size list of moves to avoid allocations.
type MoveList struct {
	moves [256]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Set sets the move at index i.
func (ml *MoveList) Set(i int, m Move) {
	ml.moves[i] = m
}

// Swap swaps two moves in the list.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Clear clears the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// UndoInfo is the record MakeMove returns and the caller passes back to
// UnmakeMove; Position itself keeps no undo stack. It holds what cannot be
// recovered from the move alone. MakeMove leaves KingSquare, Pieces,
// Occupied and AllOccupied unset: UnmakeMove restores the board by
// reversing the move.
type UndoInfo struct {
	Move           Move
	MovedPiece     Piece
	CapturedPiece  Piece
	CastlingRights CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	Hash           uint64
	PawnKey        uint64
	Checkers       Bitboard
	KingSquare     [2]Square      // King positions before move
	Pieces         [2][6]Bitboard // Full piece bitboards for reliable restoration
	Occupied       [2]Bitboard    // Occupancy bitboards
	AllOccupied    Bitboard       // All pieces
	Valid          bool           // True if move was actually applied
}
