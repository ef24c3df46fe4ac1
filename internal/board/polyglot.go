package board

// Polyglot-style Zobrist keys, kept separate from the engine's own
// incrementally-maintained Position.Hash so PolyglotHash stays a pure
// function of board state and can be recomputed from scratch for opening
// book lookups without touching search's hash maintenance.
var (
	polyglotPieces     [12][64]uint64 // [pieceKind][square]
	polyglotCastling   [4]uint64      // [WK, WQ, BK, BQ]
	polyglotEnPassant  [8]uint64      // [file]
	polyglotSideToMove uint64
)

func init() {
	initPolyglotKeys()
}

// polyglotKeyGen is an xorshift64* generator seeded once at package
// init, used only to fill the polyglot key tables deterministically.
type polyglotKeyGen struct{ state uint64 }

func (g *polyglotKeyGen) next() uint64 {
	g.state ^= g.state >> 12
	g.state ^= g.state << 25
	g.state ^= g.state >> 27
	return g.state * 0x2545F4914F6CDD1D
}

func initPolyglotKeys() {
	gen := &polyglotKeyGen{state: 0x37b4a4b3f0d1c0d0}

	for piece := range polyglotPieces {
		for sq := range polyglotPieces[piece] {
			polyglotPieces[piece][sq] = gen.next()
		}
	}
	for i := range polyglotCastling {
		polyglotCastling[i] = gen.next()
	}
	for i := range polyglotEnPassant {
		polyglotEnPassant[i] = gen.next()
	}
	polyglotSideToMove = gen.next()
}

// polyglotPieceKind maps our (Color, PieceType) encoding to Polyglot's
// piece-kind index: black pawn..king are 0-5, white pawn..king are 6-11.
var polyglotPieceKind = [2][6]int{
	{6, 7, 8, 9, 10, 11}, // White
	{0, 1, 2, 3, 4, 5},   // Black
}

// enPassantCapturer reports whether a pawn of color side sits on a file
// adjacent to the en passant file, i.e. whether the ep square is actually
// capturable and so should be folded into the Polyglot key.
func enPassantCapturer(p *Position, side Color, file int, captureRank int) bool {
	pawns := p.Pieces[side][Pawn]
	if file > 0 && pawns&SquareBB(NewSquare(file-1, captureRank)) != 0 {
		return true
	}
	if file < 7 && pawns&SquareBB(NewSquare(file+1, captureRank)) != 0 {
		return true
	}
	return false
}

// PolyglotHash computes a Polyglot-book-compatible zobrist key for the
// position: XOR of a key per piece placement, per active castling right,
// per capturable en passant file, and one key if White is to move.
func (p *Position) PolyglotHash() uint64 {
	var hash uint64

	for color := White; color <= Black; color++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := p.Pieces[color][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				hash ^= polyglotPieces[polyglotPieceKind[color][pt]][sq]
			}
		}
	}

	if p.CastlingRights&WhiteKingSideCastle != 0 {
		hash ^= polyglotCastling[0]
	}
	if p.CastlingRights&WhiteQueenSideCastle != 0 {
		hash ^= polyglotCastling[1]
	}
	if p.CastlingRights&BlackKingSideCastle != 0 {
		hash ^= polyglotCastling[2]
	}
	if p.CastlingRights&BlackQueenSideCastle != 0 {
		hash ^= polyglotCastling[3]
	}

	if p.EnPassant != NoSquare {
		file := p.EnPassant.File()
		var capturable bool
		if p.SideToMove == White {
			capturable = enPassantCapturer(p, White, file, 4)
		} else {
			capturable = enPassantCapturer(p, Black, file, 3)
		}
		if capturable {
			hash ^= polyglotEnPassant[file]
		}
	}

	if p.SideToMove == White {
		hash ^= polyglotSideToMove
	}

	return hash
}
