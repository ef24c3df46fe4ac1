package engine

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chego/engine/internal/board"
	"github.com/chego/engine/internal/book"
	"github.com/chego/engine/internal/nnue"
	"github.com/chego/engine/internal/tablebase"
)

// NumWorkers is the number of parallel search workers (matches CPU cores).
var NumWorkers = runtime.GOMAXPROCS(0)

// SearchInfo contains information about the current search.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int // Permille of hash table used
}

// SearchLimits specifies constraints on the search.
type SearchLimits struct {
	Depth    int           // Maximum depth (0 = no limit)
	Nodes    uint64        // Maximum nodes (0 = no limit)
	MoveTime time.Duration // Time for this move (0 = no limit)
	Infinite bool          // Search until stopped
	MultiPV  int           // Number of principal variations to find (0 or 1 = single best move)
}

// SearchResult contains the result of a single PV search.
type SearchResult struct {
	Move  board.Move
	Score int
	PV    []board.Move
	Depth int
}

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy   Difficulty = iota // ~2-3 ply, 500ms
	Medium                   // up to 7 ply, 1s
	Hard                     // up to 40 ply, 3s
)

// DifficultySettings maps difficulty to search limits.
var DifficultySettings = map[Difficulty]SearchLimits{
	Easy:   {Depth: 3, MoveTime: 500 * time.Millisecond},
	Medium: {Depth: 7, MoveTime: 1 * time.Second},
	Hard:   {Depth: 40, MoveTime: 3 * time.Second}, // Max strength (time-limited)
}

// Engine is the chess AI engine.
type Engine struct {
	// Workers for parallel search
	workers       []*Worker
	pawnTable     *PawnTable
	tt            *TranspositionTable
	sharedHistory *SharedHistory // Shared history for Lazy SMP
	stopFlag      atomic.Bool

	// Legacy single-threaded searcher (for Multi-PV compatibility)
	searcher *Searcher

	difficulty Difficulty
	book       *book.Book
	tablebase  tablebase.Prober

	// Position history for repetition detection
	rootPosHashes []uint64

	// Current position and ply, set by SetPosition and consumed by Go.
	currentPos *board.Position
	ply        int

	// NNUE evaluation
	useNNUE bool
	nnueNet *nnue.Network // Shared network (immutable after load)

	// metrics is a per-engine Prometheus registry updated after each
	// completed iteration.
	metrics *metrics

	// tm is the time manager for the in-flight UCI search, if any; set at
	// the start of Go() and read by PonderHit() from another goroutine.
	tm atomic.Pointer[TimeManager]

	// lastPV is the principal variation from the most recently completed
	// search, so Go() can report a ponder move (pv[1]) alongside the best
	// move.
	lastPV atomic.Pointer[[]board.Move]

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates a new chess engine with the given transposition table size in MB.
func NewEngine(ttSizeMB int) *Engine {
	tt := NewTranspositionTable(ttSizeMB)
	sharedHistory := NewSharedHistory()

	e := &Engine{
		tt:            tt,
		pawnTable:     NewPawnTable(1), // Shared pawn table for legacy searcher
		sharedHistory: sharedHistory,
		difficulty:    Medium,
		workers:       make([]*Worker, NumWorkers),
		metrics:       newMetrics(),
	}

	logger.Info("creating search workers", zap.Int("workers", NumWorkers), zap.Int("gomaxprocs", runtime.GOMAXPROCS(0)))

	// Create workers, each with its own pawn table for thread safety
	for i := 0; i < NumWorkers; i++ {
		workerPawnTable := NewPawnTable(1) // 1MB per worker
		e.workers[i] = NewWorker(i, tt, workerPawnTable, sharedHistory, &e.stopFlag)
	}

	// Create legacy searcher for Multi-PV
	e.searcher = NewSearcher(tt)

	return e
}

// SetDifficulty sets the engine difficulty.
func (e *Engine) SetDifficulty(d Difficulty) {
	e.difficulty = d
}

// LoadBook loads an opening book from a Polyglot file.
func (e *Engine) LoadBook(filename string) error {
	b, err := book.LoadPolyglot(filename)
	if err != nil {
		return err
	}
	e.book = b
	return nil
}

// SetBook sets the opening book.
func (e *Engine) SetBook(b *book.Book) {
	e.book = b
}

// HasBook returns true if an opening book is loaded.
func (e *Engine) HasBook() bool {
	return e.book != nil
}

// SetTablebase sets the tablebase prober.
func (e *Engine) SetTablebase(tb tablebase.Prober) {
	e.tablebase = tb
}

// EnableLichessTablebase enables Lichess online tablebase lookups.
func (e *Engine) EnableLichessTablebase() {
	e.tablebase = tablebase.NewLichessProber()
}

// HasTablebase returns true if a tablebase is available.
func (e *Engine) HasTablebase() bool {
	return e.tablebase != nil && e.tablebase.Available()
}

// SetPositionHistory sets the position history for repetition detection.
// This should be called before Search() with hashes from the game's move history.
func (e *Engine) SetPositionHistory(hashes []uint64) {
	e.rootPosHashes = make([]uint64, len(hashes))
	copy(e.rootPosHashes, hashes)

	// Set for all workers
	for _, w := range e.workers {
		w.SetRootHistory(hashes)
	}

	// Set for legacy searcher
	e.searcher.SetRootHistory(hashes)
}

// Search finds the best move for the given position.
func (e *Engine) Search(pos *board.Position) board.Move {
	limits := DifficultySettings[e.difficulty]
	return e.SearchWithLimits(pos, limits)
}

// SearchWithLimits finds the best move with specific search limits.
// Uses Lazy SMP with multiple workers searching in parallel.
func (e *Engine) SearchWithLimits(pos *board.Position, limits SearchLimits) board.Move {
	logger.Debug("search requested", zap.Stringer("side", sideLogger(pos.SideToMove)))

	// Try opening book first
	if e.book != nil {
		if move, ok := e.book.Probe(pos); ok {
			return move
		}
	}

	// Try tablebase for endgames
	if e.tablebase != nil && e.tablebase.Available() {
		pieceCount := tablebase.CountPieces(pos)
		if pieceCount <= e.tablebase.MaxPieces() {
			result := e.tablebase.ProbeRoot(pos)
			if result.Found && result.Move != board.NoMove {
				return result.Move
			}
		}
	}

	// Reset for new search
	e.stopFlag.Store(false)
	e.tt.NewSearch()

	if e.useNNUE && e.nnueNet != nil {
		logger.Debug("starting search", zap.String("eval", "nnue"))
	} else {
		logger.Debug("starting search", zap.String("eval", "classical"))
	}

	// Reset all workers
	for _, w := range e.workers {
		w.Reset()
	}

	startTime := time.Now()
	var bestMove board.Move
	var bestScore int
	var bestPV []board.Move
	var bestDepth int

	// Determine maximum depth
	maxDepth := MaxPly
	if limits.Depth > 0 {
		maxDepth = limits.Depth
	}

	// Determine deadline
	var deadline time.Time
	if limits.MoveTime > 0 {
		deadline = startTime.Add(limits.MoveTime)
	}

	// Create result channel
	resultCh := make(chan WorkerResult, NumWorkers*maxDepth)

	// Start workers. errgroup.Group joins the pool without a separate
	// WaitGroup/done-channel pair: closing resultCh once every worker
	// returns is g.Wait()'s job, run in its own goroutine so the result
	// loop below can select on resultCh and done concurrently.
	g, _ := errgroup.WithContext(context.Background())
	for i := 0; i < NumWorkers; i++ {
		workerID := i
		g.Go(func() error {
			e.workerSearch(workerID, pos, maxDepth, resultCh)
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(resultCh)
		close(done)
	}()

	// Track nodes across all workers
	var totalNodes uint64

	// Process results
resultLoop:
	for {
		select {
		case result, ok := <-resultCh:
			if !ok {
				break resultLoop
			}

			// Update total nodes
			totalNodes += result.Nodes

			// Update best result if this is deeper or same depth with better score
			if result.Move != board.NoMove {
				if result.Depth > bestDepth ||
					(result.Depth == bestDepth && result.Score > bestScore) {
					bestMove = result.Move
					bestScore = result.Score
					bestPV = result.PV
					bestDepth = result.Depth

					e.reportIteration(startTime, bestDepth, bestScore, bestPV)

					// Early termination: found mate
					if bestScore > MateScore-100 || bestScore < -MateScore+100 {
						e.stopFlag.Store(true)
						break resultLoop
					}
				}
			}

			// Check time limit
			if !deadline.IsZero() && time.Now().After(deadline) {
				e.stopFlag.Store(true)
				break resultLoop
			}

		case <-done:
			break resultLoop
		}
	}

	// Ensure all workers are stopped
	e.stopFlag.Store(true)

	// Wait for workers to finish
	<-done

	pv := append([]board.Move(nil), bestPV...)
	e.lastPV.Store(&pv)

	return bestMove
}

// reportIteration fires OnInfo and refreshes the Prometheus gauges after a
// deeper (or better same-depth) result arrives from any worker.
func (e *Engine) reportIteration(startTime time.Time, depth, score int, pv []board.Move) {
	elapsed := time.Since(startTime)
	nodes := e.getTotalNodes()

	if e.OnInfo != nil {
		e.OnInfo(SearchInfo{
			Depth:    depth,
			Score:    score,
			Nodes:    nodes,
			Time:     elapsed,
			PV:       pv,
			HashFull: e.tt.HashFull(),
		})
	}

	var nps float64
	if elapsed > 0 {
		nps = float64(nodes) / elapsed.Seconds()
	}
	e.metrics.update(nps, e.tt.HashFull(), e.tt.HitRate())
}

// sideLogger adapts board.Color to zap.Stringer without importing zap into
// the board package.
type sideLogger board.Color

func (s sideLogger) String() string {
	if board.Color(s) == board.White {
		return "white"
	}
	return "black"
}

// SearchWithUCILimits finds the best move using UCI time controls.
// Supports wtime/btime/winc/binc for proper tournament time management.
func (e *Engine) SearchWithUCILimits(pos *board.Position, limits UCILimits, ply int) board.Move {
	// Try opening book first
	if e.book != nil {
		if move, ok := e.book.Probe(pos); ok {
			return move
		}
	}

	// Try tablebase for endgames
	if e.tablebase != nil && e.tablebase.Available() {
		pieceCount := tablebase.CountPieces(pos)
		if pieceCount <= e.tablebase.MaxPieces() {
			result := e.tablebase.ProbeRoot(pos)
			if result.Found && result.Move != board.NoMove {
				return result.Move
			}
		}
	}

	// Initialize time manager. Stored on the engine so a concurrent
	// PonderHit() call can find it and switch it off ponder mode.
	tm := NewTimeManager()
	tm.Init(limits, pos.SideToMove, ply)
	e.tm.Store(tm)
	defer e.tm.Store(nil)

	// Reset for new search
	e.stopFlag.Store(false)
	e.tt.NewSearch()

	// Reset all workers
	for _, w := range e.workers {
		w.Reset()
	}

	startTime := time.Now()
	var bestMove board.Move
	var bestScore int
	var bestPV []board.Move
	var bestDepth int
	var lastBestMove board.Move
	var stabilityCount int
	var instabilityCount int

	// Determine maximum depth
	maxDepth := MaxPly
	if limits.Depth > 0 {
		maxDepth = limits.Depth
	}

	// Create result channel
	resultCh := make(chan WorkerResult, NumWorkers*maxDepth)

	// Start workers via errgroup instead of a hand-rolled
	// WaitGroup/channel-close pair.
	g, _ := errgroup.WithContext(context.Background())
	for i := 0; i < NumWorkers; i++ {
		workerID := i
		g.Go(func() error {
			e.workerSearch(workerID, pos, maxDepth, resultCh)
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(resultCh)
		close(done)
	}()

	// Process results
resultLoop:
	for {
		select {
		case result, ok := <-resultCh:
			if !ok {
				break resultLoop
			}

			// Update best result if this is deeper or same depth with better score
			if result.Move != board.NoMove {
				if result.Depth > bestDepth ||
					(result.Depth == bestDepth && result.Score > bestScore) {

					// Track move stability
					if result.Depth > bestDepth {
						if result.Move == lastBestMove {
							stabilityCount++
							instabilityCount = 0
						} else {
							instabilityCount++
							stabilityCount = 0
						}
						lastBestMove = result.Move
					}

					bestMove = result.Move
					bestScore = result.Score
					bestPV = result.PV
					bestDepth = result.Depth

					e.reportIteration(startTime, bestDepth, bestScore, bestPV)

					// Early termination: found mate
					if bestScore > MateScore-100 || bestScore < -MateScore+100 {
						e.stopFlag.Store(true)
						break resultLoop
					}

					// Time management: check if we should stop based on stability
					if tm.PastOptimum() {
						if stabilityCount >= 4 {
							// Move is very stable, stop early
							e.stopFlag.Store(true)
							break resultLoop
						}
					}
				}
			}

			// Check time limit
			if tm.ShouldStop() {
				e.stopFlag.Store(true)
				break resultLoop
			}

			// Node limit check
			if limits.Nodes > 0 && e.getTotalNodes() >= limits.Nodes {
				e.stopFlag.Store(true)
				break resultLoop
			}

		case <-done:
			break resultLoop
		}
	}

	// Ensure all workers are stopped
	e.stopFlag.Store(true)
	<-done

	pv := append([]board.Move(nil), bestPV...)
	e.lastPV.Store(&pv)

	return bestMove
}

// workerSearch runs iterative deepening search in a worker goroutine.
// Uses depth staggering: workers start at different depths to reduce redundant shallow work.
func (e *Engine) workerSearch(workerID int, pos *board.Position, maxDepth int, resultCh chan<- WorkerResult) {
	worker := e.workers[workerID]
	worker.InitSearch(pos.Copy())

	var prevScore int

	// Depth staggering: helper workers skip shallow depths
	// Worker 0 (main): starts at depth 1
	// Workers 1-2: start at depth 2
	// Workers 3-5: start at depth 3
	// Workers 6+: start at depth 4
	startDepth := 1
	if workerID >= 6 {
		startDepth = 4
	} else if workerID >= 3 {
		startDepth = 3
	} else if workerID >= 1 {
		startDepth = 2
	}

	// Track recent scores for volatility calculation
	recentScores := make([]int, 0, 10)

	for depth := startDepth; depth <= maxDepth; depth++ {
		if e.stopFlag.Load() {
			return
		}

		var move board.Move
		var score int

		// Use dynamic aspiration windows after depth 4
		// Window size adapts based on score volatility
		if depth >= 5 && prevScore != 0 {
			// Calculate volatility from recent scores
			volatility := 0
			if len(recentScores) >= 2 {
				minScore, maxScore := recentScores[0], recentScores[0]
				for _, s := range recentScores {
					if s < minScore {
						minScore = s
					}
					if s > maxScore {
						maxScore = s
					}
				}
				volatility = maxScore - minScore
			}

			// Dynamic window size based on volatility
			var window int
			if volatility > 400 {
				// High volatility (tactical position): use wider window
				window = 150 + volatility/4
			} else if volatility < 50 {
				// Stable position: use tight window
				window = 25
			} else {
				// Normal: moderate window
				window = 50 + volatility/8
			}

			// Add worker-specific variation for search diversity
			window += (workerID % 8) * 3

			alpha := prevScore - window
			beta := prevScore + window
			retryCount := 0

			for {
				move, score = worker.SearchDepth(depth, alpha, beta)

				if e.stopFlag.Load() {
					return
				}

				if score <= alpha {
					// Failed low: gradually expand alpha
					retryCount++
					if retryCount >= 2 {
						alpha = -Infinity
					} else {
						alpha = prevScore - window*2
					}
				} else if score >= beta {
					// Failed high: gradually expand beta
					retryCount++
					if retryCount >= 2 {
						beta = Infinity
					} else {
						beta = prevScore + window*2
					}
				} else {
					break
				}

				if alpha == -Infinity && beta == Infinity {
					break
				}
			}
		} else {
			move, score = worker.SearchDepth(depth, -Infinity, Infinity)
		}

		if e.stopFlag.Load() {
			return
		}

		prevScore = score

		// Track score for volatility calculation
		recentScores = append(recentScores, score)
		if len(recentScores) > 10 {
			recentScores = recentScores[1:] // Keep last 10 scores
		}

		// Send result
		pv := worker.GetPV()
		resultCh <- WorkerResult{
			WorkerID: workerID,
			Depth:    depth,
			Score:    score,
			Move:     move,
			PV:       pv,
			Nodes:    worker.Nodes(),
		}
	}
}

// getTotalNodes returns the total nodes searched by all workers.
func (e *Engine) getTotalNodes() uint64 {
	var total uint64
	for _, w := range e.workers {
		total += w.Nodes()
	}
	return total
}

// SearchMultiPV finds multiple best moves (principal variations) for analysis.
func (e *Engine) SearchMultiPV(pos *board.Position, limits SearchLimits) []SearchResult {
	numPV := limits.MultiPV
	if numPV <= 0 {
		numPV = 1
	}

	results := make([]SearchResult, 0, numPV)
	excludedMoves := make([]board.Move, 0, numPV)

	for i := 0; i < numPV; i++ {
		// Search excluding already-found best moves
		move, score, pv, depth := e.searchWithExclusions(pos, limits, excludedMoves)
		if move == board.NoMove {
			break
		}

		results = append(results, SearchResult{
			Move:  move,
			Score: score,
			PV:    pv,
			Depth: depth,
		})
		excludedMoves = append(excludedMoves, move)
	}

	// Sort results by score (descending) to ensure best moves are first
	for i := 0; i < len(results)-1; i++ {
		maxIdx := i
		for j := i + 1; j < len(results); j++ {
			if results[j].Score > results[maxIdx].Score {
				maxIdx = j
			}
		}
		if maxIdx != i {
			results[i], results[maxIdx] = results[maxIdx], results[i]
		}
	}

	return results
}

// searchWithExclusions searches for best move excluding certain moves at the root.
func (e *Engine) searchWithExclusions(pos *board.Position, limits SearchLimits, excluded []board.Move) (board.Move, int, []board.Move, int) {
	e.searcher.Reset()
	e.searcher.SetExcludedMoves(excluded)
	e.tt.NewSearch()

	startTime := time.Now()
	var bestMove board.Move
	var bestScore int
	var bestDepth int

	maxDepth := MaxPly
	if limits.Depth > 0 {
		maxDepth = limits.Depth
	}

	var deadline time.Time
	if limits.MoveTime > 0 {
		deadline = startTime.Add(limits.MoveTime)
	}

	for depth := 1; depth <= maxDepth; depth++ {
		if !deadline.IsZero() && time.Now().After(deadline) {
			break
		}

		move, score := e.searcher.Search(pos, depth)

		if e.searcher.IsStopped() {
			break
		}

		if move != board.NoMove {
			bestMove = move
			bestScore = score
			bestDepth = depth
		}

		if score > MateScore-100 || score < -MateScore+100 {
			break
		}

		if !deadline.IsZero() {
			elapsed := time.Since(startTime)
			remaining := limits.MoveTime - elapsed
			if remaining < elapsed {
				break
			}
		}
	}

	pv := e.searcher.GetPV()
	e.searcher.SetExcludedMoves(nil) // Clear exclusions

	return bestMove, bestScore, pv, bestDepth
}

// Stop stops the current search.
func (e *Engine) Stop() {
	e.stopFlag.Store(true)
	e.searcher.Stop()
}

// Clear clears the transposition table and other caches.
func (e *Engine) Clear() {
	e.tt.Clear()
	// Clear all worker orderers
	for _, w := range e.workers {
		w.orderer.Clear()
	}
	e.searcher.ClearOrderer()
}

// Perft performs a perft test (for debugging move generation).
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}

	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		move := moves.Get(i)
		undo := pos.MakeMove(move)
		nodes += e.Perft(pos, depth-1)
		pos.UnmakeMove(move, undo)
	}

	return nodes
}

// Evaluate returns the static evaluation of a position.
func (e *Engine) Evaluate(pos *board.Position) int {
	return Evaluate(pos)
}

// LoadNNUE loads an NNUE network file.
func (e *Engine) LoadNNUE(path string) error {
	logger.Info("loading NNUE network", zap.String("path", path))

	net := nnue.NewNetwork()
	if err := net.Load(path); err != nil {
		logger.Error("failed to load NNUE network", zap.Error(err))
		return fmt.Errorf("load NNUE network: %w", err)
	}
	e.nnueNet = net

	// Initialize NNUE evaluators for all workers. The legacy Searcher used
	// for Multi-PV evaluates classically only (see search.go), so it has
	// nothing to initialize here.
	for _, w := range e.workers {
		w.initNNUE(net)
	}

	logger.Info("NNUE network loaded")
	return nil
}

// SetUseNNUE enables or disables NNUE evaluation.
func (e *Engine) SetUseNNUE(use bool) {
	e.useNNUE = use
	for _, w := range e.workers {
		w.useNNUE = use
	}

	if use {
		logger.Info("evaluation mode set", zap.String("mode", "nnue"))
	} else {
		logger.Info("evaluation mode set", zap.String("mode", "classical"))
	}
}

// UseNNUE returns whether NNUE evaluation is enabled.
func (e *Engine) UseNNUE() bool {
	return e.useNNUE
}

// HasNNUE returns whether NNUE networks are loaded.
func (e *Engine) HasNNUE() bool {
	return e.nnueNet != nil
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	if score > MateScore-100 {
		mateIn := (MateScore - score + 1) / 2
		return "Mate in " + itoa(mateIn)
	}
	if score < -MateScore+100 {
		mateIn := (MateScore + score + 1) / 2
		return "Mated in " + itoa(mateIn)
	}

	// Convert centipawns to pawns
	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	pawns := score / 100
	centipawns := score % 100

	return sign + itoa(pawns) + "." + itoa(centipawns)
}

// NewGame resets all state tied to a previous game: transposition table,
// move-ordering history tables, and position history. Callers that reuse
// one Engine across many games should call this between them so stale
// history from the last game doesn't bias move ordering in the next.
func (e *Engine) NewGame() {
	e.Clear()
	for _, w := range e.workers {
		*w.orderer = MoveOrderer{}
	}
	e.sharedHistory.Clear()
	e.rootPosHashes = nil
	e.currentPos = board.NewPosition()
	e.ply = 0
}

// SetPosition sets the position to search from. fen is a FEN string, or
// "startpos" (or "") for the initial position; moves is a sequence of
// moves in UCI coordinate notation (e.g. "e2e4") played from that FEN.
func (e *Engine) SetPosition(fen string, moves []string) error {
	var pos *board.Position
	if fen == "" || fen == "startpos" {
		pos = board.NewPosition()
	} else {
		var err error
		pos, err = board.ParseFEN(fen)
		if err != nil {
			return fmt.Errorf("set position: %w", err)
		}
	}

	hashes := []uint64{pos.Hash}
	for _, ms := range moves {
		move, err := board.ParseMove(ms, pos)
		if err != nil {
			return fmt.Errorf("set position: move %q: %w", ms, err)
		}
		if !pos.GenerateLegalMoves().Contains(move) {
			return fmt.Errorf("set position: move %q: illegal move", ms)
		}
		pos.MakeMove(move)
		hashes = append(hashes, pos.Hash)
	}

	e.currentPos = pos
	e.ply = len(moves)
	e.SetPositionHistory(hashes)
	return nil
}

// SetOption configures an engine-wide setting by name. Supported options:
//
//	Hash     - transposition table size in MB
//	Threads  - number of Lazy SMP search workers
//	UseNNUE  - "true"/"false", selects NNUE vs classical evaluation
//	OwnBook  - path to a Polyglot opening book file, or "" to disable
func (e *Engine) SetOption(name, value string) error {
	switch name {
	case "Hash":
		mb, err := strconv.Atoi(value)
		if err != nil || mb <= 0 {
			return fmt.Errorf("set option Hash: invalid size %q", value)
		}
		e.resizeHash(mb)
	case "Threads":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("set option Threads: invalid count %q", value)
		}
		e.resizeWorkers(n)
	case "UseNNUE":
		use, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("set option UseNNUE: invalid value %q", value)
		}
		e.SetUseNNUE(use)
	case "OwnBook":
		if value == "" {
			e.book = nil
			return nil
		}
		return e.LoadBook(value)
	default:
		return fmt.Errorf("set option: unknown option %q", name)
	}
	return nil
}

// resizeHash replaces the transposition table, repointing every worker and
// the legacy searcher at the new one.
func (e *Engine) resizeHash(mb int) {
	e.tt = NewTranspositionTable(mb)
	for _, w := range e.workers {
		w.tt = e.tt
	}
	e.searcher.tt = e.tt
}

// resizeWorkers rebuilds the Lazy SMP worker pool at a new size, carrying
// over the current NNUE/evaluation settings.
func (e *Engine) resizeWorkers(n int) {
	NumWorkers = n
	workers := make([]*Worker, n)
	for i := 0; i < n; i++ {
		workerPawnTable := NewPawnTable(1)
		workers[i] = NewWorker(i, e.tt, workerPawnTable, e.sharedHistory, &e.stopFlag)
		workers[i].useNNUE = e.useNNUE
		if e.nnueNet != nil {
			workers[i].initNNUE(e.nnueNet)
		}
	}
	e.workers = workers
}

// GoParams bundles the search limits accepted by Go, covering both
// tournament UCI time controls and the simpler fixed-depth/fixed-time
// limits used by callers that don't need clock-based allocation.
type GoParams struct {
	UCILimits
}

// Go starts a search on the position set by SetPosition (or the initial
// position, if SetPosition was never called) and blocks until the search
// completes, returning the best move and, if the principal variation is at
// least two moves deep, the move to ponder on.
//
// Stop and PonderHit are safe to call from another goroutine while Go is
// blocked.
func (e *Engine) Go(params GoParams) (bestMove, ponderMove board.Move) {
	pos := e.currentPos
	if pos == nil {
		pos = board.NewPosition()
		e.currentPos = pos
	}

	bestMove = e.SearchWithUCILimits(pos, params.UCILimits, e.ply)

	if pv := e.lastPV.Load(); pv != nil && len(*pv) >= 2 {
		ponderMove = (*pv)[1]
	}
	return bestMove, ponderMove
}

// PonderHit signals that the opponent played the move the engine was
// pondering on, switching the in-flight search from unbounded ponder time
// onto its normal time budget. It is a no-op if no search is in flight or
// the in-flight search wasn't started in ponder mode.
func (e *Engine) PonderHit() {
	if tm := e.tm.Load(); tm != nil {
		tm.PonderHit()
	}
}

// itoa is a small integer-to-string helper kept separate from fmt.Sprintf
// since ScoreToString's mate/pawns/centipawns formatting doesn't need it.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	if n < 0 {
		return "-" + itoa(-n)
	}
	s := ""
	for n > 0 {
		s = string('0'+byte(n%10)) + s
		n /= 10
	}
	return s
}
