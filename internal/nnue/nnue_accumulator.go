// NNUE accumulator for incremental feature-transformer updates.

package nnue

import (
	"github.com/chego/engine/internal/board"
	"github.com/chego/engine/internal/nnue/features"
)

// Accumulator stores the feature transformer's hidden layer output for each
// perspective, before the clipped ReLU and the rest of the network run.
type Accumulator struct {
	White    [L1Size]int16
	Black    [L1Size]int16
	Computed bool
}

// AccumulatorStack tracks one Accumulator per ply of the search so Push/Pop
// around make/unmake avoid recomputing from scratch at every node.
type AccumulatorStack struct {
	stack [MaxSearchPly]Accumulator
	top   int
}

func NewAccumulatorStack() *AccumulatorStack {
	return &AccumulatorStack{}
}

// Push copies the current accumulator down onto the next ply. The caller
// mutates the copy in place via Update/ComputeFull after making the move.
func (s *AccumulatorStack) Push() {
	if s.top < MaxSearchPly-1 {
		s.stack[s.top+1] = s.stack[s.top]
		s.top++
	}
}

func (s *AccumulatorStack) Pop() {
	if s.top > 0 {
		s.top--
	}
}

func (s *AccumulatorStack) Current() *Accumulator {
	return &s.stack[s.top]
}

func (s *AccumulatorStack) Reset() {
	s.top = 0
	s.stack[0].Computed = false
}

// ComputeFull rebuilds both perspectives from scratch.
func (acc *Accumulator) ComputeFull(pos *board.Position, net *Network) {
	white, black := features.Active(pos)

	copy(acc.White[:], net.FTBias[:])
	copy(acc.Black[:], net.FTBias[:])

	for _, idx := range white {
		for i := 0; i < L1Size; i++ {
			acc.White[i] += net.FTWeights[idx][i]
		}
	}
	for _, idx := range black {
		for i := 0; i < L1Size; i++ {
			acc.Black[i] += net.FTWeights[idx][i]
		}
	}

	acc.Computed = true
}

// UpdateIncremental applies only the feature deltas caused by a move,
// falling back to ComputeFull when the move isn't incrementally safe (an
// uncomputed accumulator, or a king move that changes both perspectives'
// anchor square).
func (acc *Accumulator) UpdateIncremental(pos *board.Position, m board.Move, captured board.Piece, net *Network) {
	if !acc.Computed {
		acc.ComputeFull(pos, net)
		return
	}

	movedPiece := pos.PieceAt(m.To())
	if movedPiece == board.NoPiece || movedPiece.Type() == board.King {
		acc.ComputeFull(pos, net)
		return
	}

	whiteAdd, whiteRem, blackAdd, blackRem, ok := features.Changed(pos, m, captured)
	if !ok {
		acc.ComputeFull(pos, net)
		return
	}

	for _, idx := range whiteRem {
		for i := 0; i < L1Size; i++ {
			acc.White[i] -= net.FTWeights[idx][i]
		}
	}
	for _, idx := range blackRem {
		for i := 0; i < L1Size; i++ {
			acc.Black[i] -= net.FTWeights[idx][i]
		}
	}
	for _, idx := range whiteAdd {
		for i := 0; i < L1Size; i++ {
			acc.White[i] += net.FTWeights[idx][i]
		}
	}
	for _, idx := range blackAdd {
		for i := 0; i < L1Size; i++ {
			acc.Black[i] += net.FTWeights[idx][i]
		}
	}
}
