package engine

import (
	"github.com/chego/engine/internal/board"
)

// nnueCapturedPiece returns the piece m removes from the board, or
// board.NoPiece if m is not a capture. Must be called before MakeMove.
func (w *Worker) nnueCapturedPiece(m board.Move) board.Piece {
	if m.IsEnPassant() {
		return board.NewPiece(board.Pawn, w.pos.SideToMove.Other())
	}
	return w.pos.PieceAt(m.To())
}

// nnuePush saves the accumulator state before a move is made and records
// the piece the move captures (if any), for nnueUpdate to use once the move
// has actually been applied to the position.
func (w *Worker) nnuePush(m board.Move) {
	if !w.useNNUE || w.nnueAcc == nil {
		return
	}
	w.pendingCapture = w.nnueCapturedPiece(m)
	w.nnueAcc.Push()
}

// nnueUpdate applies the incremental feature-transformer update for a move
// that was just made on the position. Must be called after MakeMove, paired
// with the nnuePush call made before it.
func (w *Worker) nnueUpdate(m board.Move) {
	if !w.useNNUE || w.nnueAcc == nil {
		return
	}
	w.nnueAcc.Current().UpdateIncremental(w.pos, m, w.pendingCapture, w.nnueNet)
}

// nnuePop restores accumulator state after unmaking a move.
func (w *Worker) nnuePop() {
	if w.useNNUE && w.nnueAcc != nil {
		w.nnueAcc.Pop()
	}
}

// resetNNUEAccumulators marks the accumulator stack as needing recomputation
// from scratch, e.g. at the start of a new search.
func (w *Worker) resetNNUEAccumulators() {
	if w.nnueAcc != nil {
		w.nnueAcc.Reset()
	}
}

// nnueEvaluate returns the NNUE evaluation for the worker's position,
// in centipawns from the side to move's perspective, with the same
// optimism and fifty-move dampening terms the classical evaluator's
// callers expect.
func (w *Worker) nnueEvaluate() int {
	if w.nnueNet == nil || w.nnueAcc == nil {
		return EvaluateWithPawnTable(w.pos, w.pawnTable)
	}

	acc := w.nnueAcc.Current()
	if !acc.Computed {
		acc.ComputeFull(w.pos, w.nnueNet)
	}
	score := w.nnueNet.Forward(acc, w.pos.SideToMove)

	sideToMove := 0
	if w.pos.SideToMove == board.Black {
		sideToMove = 1
	}
	optimism := w.optimism[sideToMove]

	pawnCount := popCount64(uint64(w.pos.Pieces[board.White][board.Pawn])) +
		popCount64(uint64(w.pos.Pieces[board.Black][board.Pawn]))
	material := 534*pawnCount + nonPawnMaterial(w.pos)
	score += optimism * (7191 + material) / 77871

	rule50 := int(w.pos.HalfMoveClock)
	score -= score * rule50 / 199

	return score
}

// nonPawnMaterial calculates the total material value excluding pawns.
// Used for material scaling in NNUE evaluation.
func nonPawnMaterial(pos *board.Position) int {
	pieceValues := [6]int{0, 320, 330, 500, 900, 0}
	total := 0
	for c := 0; c < 2; c++ {
		for pt := board.Knight; pt <= board.Queen; pt++ {
			total += popCount64(uint64(pos.Pieces[c][pt])) * pieceValues[pt]
		}
	}
	return total
}

func popCount64(x uint64) int {
	count := 0
	for x != 0 {
		x &= x - 1
		count++
	}
	return count
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
