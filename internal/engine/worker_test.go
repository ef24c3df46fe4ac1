package engine

import (
	"sync/atomic"
	"testing"

	"github.com/chego/engine/internal/board"
)

// TestSearchFindsForcedMate checks that from a textbook KQ-vs-K position the
// search reports a mate score at shallow depth.
func TestSearchFindsForcedMate(t *testing.T) {
	pos, err := board.ParseFEN("4k3/8/4K3/4Q3/8/8/8/8 w - -")
	if err != nil {
		t.Fatalf("parse FEN: %v", err)
	}

	eng := NewEngine(16)

	var lastScore int
	eng.OnInfo = func(info SearchInfo) {
		lastScore = info.Score
	}

	limits := SearchLimits{Depth: 4}
	move := eng.SearchWithLimits(pos, limits)
	if move == board.NoMove {
		t.Fatal("expected a move from a position with a forced mate")
	}

	if lastScore <= MateScore-100 {
		t.Errorf("expected a reported mate score > %d, got %d", MateScore-100, lastScore)
	}
}

// TestWorkerRepetitionIsDraw checks that a position already reached twice
// before (so the current occurrence is the third) is reported as a draw by
// isDraw, which negamax scores 0.
func TestWorkerRepetitionIsDraw(t *testing.T) {
	pos := board.NewPosition()

	tt := NewTranspositionTable(1)
	pawnTable := NewPawnTable(1)
	var stopFlag atomic.Bool

	w := NewWorker(0, tt, pawnTable, NewSharedHistory(), &stopFlag)
	w.SetRootHistory([]uint64{pos.Hash, pos.Hash})
	w.InitSearch(pos)

	if !w.isDraw() {
		t.Fatal("expected isDraw to report true when the current hash already occurred twice")
	}

	score := w.negamax(2, 1, -Infinity, Infinity, board.NoMove, board.NoMove, false)
	if score != 0 {
		t.Errorf("expected negamax to score a repeated position 0, got %d", score)
	}
}
