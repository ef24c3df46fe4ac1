package nnue

import (
	"bytes"
	"testing"

	"github.com/chego/engine/internal/board"
)

func TestTotalFileSizeMatchesArchitecture(t *testing.T) {
	const want = 21022697
	if TotalFileSize != want {
		t.Fatalf("TotalFileSize = %d, want %d", TotalFileSize, want)
	}
}

func TestNetworkSaveLoadRoundTrip(t *testing.T) {
	net := NewNetwork()
	net.InitRandom(1)

	var buf bytes.Buffer
	if err := net.SaveToWriter(&buf, "round trip test"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if buf.Len() != TotalFileSize {
		t.Fatalf("encoded size = %d, want %d", buf.Len(), TotalFileSize)
	}

	loaded := NewNetwork()
	if err := loaded.LoadFromReader(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.FTBias != net.FTBias {
		t.Fatalf("FTBias mismatch after round trip")
	}
	if loaded.FTWeights[0] != net.FTWeights[0] {
		t.Fatalf("FTWeights[0] mismatch after round trip")
	}
}

func TestAccumulatorIncrementalMatchesFull(t *testing.T) {
	net := NewNetwork()
	net.InitRandom(7)

	pos := board.NewPosition()

	full := &Accumulator{}
	full.ComputeFull(pos, net)

	stack := NewAccumulatorStack()
	stack.Current().ComputeFull(pos, net)
	stack.Push()

	move, err := board.ParseMove("e2e4", pos)
	if err != nil {
		t.Fatalf("parse move: %v", err)
	}
	captured := pos.PieceAt(move.To())
	undo := pos.MakeMove(move)
	if !undo.Valid {
		t.Fatalf("illegal move in test position")
	}

	stack.Current().UpdateIncremental(pos, move, captured, net)

	wantAcc := &Accumulator{}
	wantAcc.ComputeFull(pos, net)

	got := stack.Current()
	if got.White != wantAcc.White {
		t.Fatalf("incremental update diverged from full recompute (white)")
	}
	if got.Black != wantAcc.Black {
		t.Fatalf("incremental update diverged from full recompute (black)")
	}
}

func TestForwardIsDeterministic(t *testing.T) {
	net := NewNetwork()
	net.InitRandom(42)

	pos := board.NewPosition()
	acc := &Accumulator{}
	acc.ComputeFull(pos, net)

	a := net.Forward(acc, pos.SideToMove)
	b := net.Forward(acc, pos.SideToMove)
	if a != b {
		t.Fatalf("Forward not deterministic: %d != %d", a, b)
	}
}
