package engine

import (
	"testing"
	"time"

	"github.com/chego/engine/internal/board"
)

func TestSetPositionStartpos(t *testing.T) {
	eng := NewEngine(16)

	if err := eng.SetPosition("startpos", []string{"e2e4", "e7e5"}); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}

	if eng.currentPos.SideToMove != board.White {
		t.Errorf("expected white to move after e4 e5, got %v", eng.currentPos.SideToMove)
	}
	if eng.ply != 2 {
		t.Errorf("expected ply 2 after two moves, got %d", eng.ply)
	}
	if len(eng.rootPosHashes) != 3 {
		t.Errorf("expected 3 recorded hashes (start + 2 moves), got %d", len(eng.rootPosHashes))
	}
}

func TestSetPositionRejectsIllegalMove(t *testing.T) {
	eng := NewEngine(16)

	if err := eng.SetPosition("startpos", []string{"e2e5"}); err == nil {
		t.Fatal("expected error for illegal move e2e5 from startpos")
	}
}

func TestSetOptionHashResizesTable(t *testing.T) {
	eng := NewEngine(16)
	original := eng.tt

	if err := eng.SetOption("Hash", "32"); err != nil {
		t.Fatalf("SetOption Hash: %v", err)
	}
	if eng.tt == original {
		t.Error("expected a new transposition table after SetOption Hash")
	}
	for _, w := range eng.workers {
		if w.tt != eng.tt {
			t.Error("worker still points at the old transposition table")
		}
	}
}

func TestSetOptionThreadsResizesWorkerPool(t *testing.T) {
	eng := NewEngine(16)

	if err := eng.SetOption("Threads", "2"); err != nil {
		t.Fatalf("SetOption Threads: %v", err)
	}
	if len(eng.workers) != 2 {
		t.Errorf("expected 2 workers, got %d", len(eng.workers))
	}
}

func TestSetOptionUnknownName(t *testing.T) {
	eng := NewEngine(16)

	if err := eng.SetOption("NotARealOption", "1"); err == nil {
		t.Error("expected error for unknown option name")
	}
}

func TestSetOptionInvalidValue(t *testing.T) {
	eng := NewEngine(16)

	if err := eng.SetOption("Hash", "not-a-number"); err == nil {
		t.Error("expected error for non-numeric Hash value")
	}
	if err := eng.SetOption("UseNNUE", "not-a-bool"); err == nil {
		t.Error("expected error for non-boolean UseNNUE value")
	}
}

func TestGoReturnsBestMoveAndPonderMove(t *testing.T) {
	eng := NewEngine(16)
	if err := eng.SetPosition("startpos", nil); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}

	best, ponder := eng.Go(GoParams{UCILimits{MoveTime: 200 * time.Millisecond, Depth: 6}})
	if best == board.NoMove {
		t.Fatal("Go returned NoMove for the starting position")
	}
	t.Logf("best=%s ponder=%s", best.String(), ponder.String())
}

func TestPonderHitIsNoopWithoutInFlightSearch(t *testing.T) {
	eng := NewEngine(16)
	eng.PonderHit() // must not panic when no search has started
}

func TestPonderHitSwitchesTimeManagerOffUnboundedBudget(t *testing.T) {
	eng := NewEngine(16)
	if err := eng.SetPosition("startpos", nil); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		eng.Go(GoParams{UCILimits{
			Ponder: true,
			Time:   [2]time.Duration{2 * time.Second, 2 * time.Second},
			Inc:    [2]time.Duration{0, 0},
		}})
	}()

	// Give the search a moment to install its TimeManager, then simulate the
	// opponent's move arriving.
	time.Sleep(20 * time.Millisecond)
	eng.PonderHit()
	if tm := eng.tm.Load(); tm != nil && tm.MaximumTime() >= time.Hour {
		t.Error("PonderHit left the search on the unbounded ponder budget")
	}
	eng.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Go did not return after Stop")
	}
}

func TestNewGameResetsState(t *testing.T) {
	eng := NewEngine(16)
	if err := eng.SetPosition("startpos", []string{"e2e4"}); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}

	eng.NewGame()

	if eng.ply != 0 {
		t.Errorf("expected ply reset to 0, got %d", eng.ply)
	}
	if eng.rootPosHashes != nil {
		t.Errorf("expected rootPosHashes cleared, got %v", eng.rootPosHashes)
	}
	if eng.currentPos.Hash != board.NewPosition().Hash {
		t.Error("expected currentPos reset to the starting position")
	}
}

func TestRegistryReportsIterationMetrics(t *testing.T) {
	eng := NewEngine(16)
	pos := board.NewPosition()

	eng.SearchWithLimits(pos, SearchLimits{Depth: 4, MoveTime: 300 * time.Millisecond})

	mf, err := eng.Registry().Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if len(mf) != 3 {
		t.Fatalf("expected 3 registered metric families, got %d", len(mf))
	}

	found := map[string]bool{}
	for _, f := range mf {
		found[f.GetName()] = true
		for _, m := range f.GetMetric() {
			if m.GetGauge() == nil {
				t.Errorf("metric %s is not a gauge", f.GetName())
			}
		}
	}
	for _, name := range []string{
		"chego_search_nodes_per_second",
		"chego_tt_hash_full_permille",
		"chego_tt_hit_rate_percent",
	} {
		if !found[name] {
			t.Errorf("missing expected metric %s", name)
		}
	}
}
