package engine

import (
	"sync"
	"time"

	"github.com/chego/engine/internal/board"
)

// UCILimits contains UCI time control parameters.
type UCILimits struct {
	Time      [2]time.Duration // wtime, btime (remaining time for each color)
	Inc       [2]time.Duration // winc, binc (increment per move)
	MovesToGo int              // moves until next time control (0 = sudden death)
	MoveTime  time.Duration    // fixed time per move (overrides other time controls)
	Depth     int              // maximum search depth
	Nodes     uint64           // maximum nodes to search
	Infinite  bool             // search until stopped
	Ponder    bool             // ponder mode
}

// TimeManager handles time allocation for searches.
type TimeManager struct {
	mu          sync.Mutex
	optimumTime time.Duration // Target time for this move
	maximumTime time.Duration // Maximum time allowed
	startTime   time.Time     // When search started

	pondering bool
	limits    UCILimits
	us        board.Color
	ply       int
}

// NewTimeManager creates a new time manager.
func NewTimeManager() *TimeManager {
	return &TimeManager{}
}

// Init initializes the time manager for a new search.
// ply is the current game ply (half-move number).
func (tm *TimeManager) Init(limits UCILimits, us board.Color, ply int) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	tm.startTime = time.Now()
	tm.limits = limits
	tm.us = us
	tm.ply = ply

	// Pondering: the clock doesn't start for real until PonderHit, so run
	// unbounded until then.
	if limits.Ponder {
		tm.pondering = true
		tm.optimumTime = time.Hour
		tm.maximumTime = time.Hour
		return
	}

	tm.pondering = false
	tm.optimumTime, tm.maximumTime = allocate(limits, us, ply)
}

// PonderHit switches a pondering search onto its normal time budget. Time
// spent pondering isn't charged against the position's clock, so the
// allocation window restarts from now.
func (tm *TimeManager) PonderHit() {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if !tm.pondering {
		return
	}
	tm.pondering = false
	tm.startTime = time.Now()
	tm.optimumTime, tm.maximumTime = allocate(tm.limits, tm.us, tm.ply)
}

// allocate computes the optimum/maximum time budget for a move from UCI
// time-control parameters. Factored out of Init so PonderHit can recompute
// the same allocation once real time starts flowing.
func allocate(limits UCILimits, us board.Color, ply int) (time.Duration, time.Duration) {
	// Fixed move time mode
	if limits.MoveTime > 0 {
		return limits.MoveTime, limits.MoveTime
	}

	// Infinite or depth-limited mode
	if limits.Infinite || (limits.Time[us] == 0 && limits.MoveTime == 0) {
		return time.Hour, time.Hour
	}

	// Calculate time allocation based on remaining time and increment
	timeLeft := limits.Time[us]
	inc := limits.Inc[us]

	// Estimate moves to go
	mtg := limits.MovesToGo
	if mtg == 0 {
		// Sudden death: estimate moves remaining based on game phase
		// Early game: more moves expected, late game: fewer
		mtg = 50 - ply/4
		if mtg < 10 {
			mtg = 10
		}
		if mtg > 50 {
			mtg = 50
		}
	}

	// Base time per move (simple division)
	baseTime := timeLeft / time.Duration(mtg)

	// Add most of the increment
	baseTime += inc * 9 / 10

	// Use baseTime directly as the optimum
	// No aggressive scaling - we need time to search!
	optimum := baseTime

	// Slight reduction for very early moves (give some buffer)
	if ply < 8 {
		optimum = baseTime * 85 / 100
	}

	// Maximum time: 5x optimum or 80% of remaining, whichever is smaller
	maxFromOptimum := optimum * 5
	maxFromRemaining := timeLeft * 8 / 10

	var maximum time.Duration
	if maxFromOptimum < maxFromRemaining {
		maximum = maxFromOptimum
	} else {
		maximum = maxFromRemaining
	}

	// Safety margin: never use more than 95% of remaining time
	safetyMargin := timeLeft * 95 / 100
	if maximum > safetyMargin {
		maximum = safetyMargin
	}

	// Minimum times
	if optimum < 10*time.Millisecond {
		optimum = 10 * time.Millisecond
	}
	if maximum < 50*time.Millisecond {
		maximum = 50 * time.Millisecond
	}

	return optimum, maximum
}

// Elapsed returns the time elapsed since search started.
func (tm *TimeManager) Elapsed() time.Duration {
	tm.mu.Lock()
	start := tm.startTime
	tm.mu.Unlock()
	return time.Since(start)
}

// OptimumTime returns the target time for this move.
func (tm *TimeManager) OptimumTime() time.Duration {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.optimumTime
}

// MaximumTime returns the maximum time allowed.
func (tm *TimeManager) MaximumTime() time.Duration {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.maximumTime
}

// ShouldStop returns true if we should stop searching.
func (tm *TimeManager) ShouldStop() bool {
	return tm.Elapsed() >= tm.MaximumTime()
}

// PastOptimum returns true if we've exceeded the optimum time.
func (tm *TimeManager) PastOptimum() bool {
	return tm.Elapsed() >= tm.OptimumTime()
}

// AdjustForStability adjusts time allocation based on best move stability.
// If the best move hasn't changed for several depths, we can stop earlier.
// stability: number of consecutive depths with same best move
func (tm *TimeManager) AdjustForStability(stability int) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if stability >= 6 {
		// Very stable: use only 40% of optimum
		tm.optimumTime = tm.optimumTime * 40 / 100
	} else if stability >= 4 {
		// Stable: use only 60% of optimum
		tm.optimumTime = tm.optimumTime * 60 / 100
	} else if stability >= 2 {
		// Somewhat stable: use 80% of optimum
		tm.optimumTime = tm.optimumTime * 80 / 100
	}
}

// AdjustForInstability increases time when best move keeps changing.
// changes: number of best move changes in recent depths
func (tm *TimeManager) AdjustForInstability(changes int) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if changes >= 4 {
		// Very unstable: use 200% of optimum (up to maximum)
		tm.optimumTime = tm.optimumTime * 200 / 100
		if tm.optimumTime > tm.maximumTime {
			tm.optimumTime = tm.maximumTime
		}
	} else if changes >= 2 {
		// Unstable: use 150% of optimum
		tm.optimumTime = tm.optimumTime * 150 / 100
		if tm.optimumTime > tm.maximumTime {
			tm.optimumTime = tm.maximumTime
		}
	}
}
