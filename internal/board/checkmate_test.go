package board

import "testing"

func TestCheckmate(t *testing.T) {
	// Back-rank mate: White Ra8 + Ka1 vs Black Kh8 boxed in by its own
	// g7/h7 pawns. Black to move, already mated.
	pos, err := ParseFEN("R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	if err != nil {
		t.Fatalf("parse FEN: %v", err)
	}

	pos.UpdateCheckers()
	if !pos.InCheck() {
		t.Fatal("expected the black king to be in check")
	}

	moves := pos.GenerateLegalMoves()
	if moves.Len() != 0 {
		t.Errorf("expected no legal moves in checkmate, got %d", moves.Len())
	}
	if pos.HasLegalMoves() {
		t.Error("expected HasLegalMoves to report false in checkmate")
	}
	if !pos.IsCheckmate() {
		t.Error("expected IsCheckmate to report true")
	}
	if pos.IsStalemate() {
		t.Error("a position in check can't be stalemate")
	}
}

func TestNotCheckmate(t *testing.T) {
	// Same back-rank shape, but the checking rook sits adjacent to the
	// king on g8 and can simply be captured: not mate.
	pos, err := ParseFEN("6Rk/8/8/8/8/8/8/K7 b - - 0 1")
	if err != nil {
		t.Fatalf("parse FEN: %v", err)
	}

	pos.UpdateCheckers()
	if !pos.InCheck() {
		t.Fatal("expected the black king to be in check")
	}

	moves := pos.GenerateLegalMoves()
	if moves.Len() == 0 {
		t.Fatal("expected Kxg8 to be available")
	}
	if pos.IsCheckmate() {
		t.Error("expected IsCheckmate to report false when the king can capture the checker")
	}
}
