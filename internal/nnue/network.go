// NNUE network loading and evaluation: a classic HalfKP(256x2-32-32-1)
// feature transformer feeding two affine+clipped-ReLU hidden layers and a
// scalar output, the architecture Stockfish shipped before the multi-bucket
// HalfKAv2 nets.

package nnue

import (
	"fmt"
	"io"
	"os"

	"github.com/chego/engine/internal/board"
	"github.com/chego/engine/internal/nnue/common"
	"github.com/chego/engine/internal/nnue/layers"
)

// Network holds the feature transformer and the three affine layers that
// turn its output into a centipawn score.
type Network struct {
	FTBias    [L1Size]int16
	FTWeights [HalfKPSize][L1Size]int16

	L1 *layers.AffineTransform // L1Size*2 -> L2Size
	L2 *layers.AffineTransform // L2Size -> L3Size
	L3 *layers.AffineTransform // L3Size -> 1
}

// NewNetwork creates a network with zero weights; call Load or InitRandom
// before evaluating with it.
func NewNetwork() *Network {
	return &Network{
		L1: layers.NewAffineTransform(L1Size*2, L2Size),
		L2: layers.NewAffineTransform(L2Size, L3Size),
		L3: layers.NewAffineTransform(L3Size, 1),
	}
}

// Load reads network weights from a file on disk.
func (n *Network) Load(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("open network file: %w", err)
	}
	defer f.Close()
	return n.LoadFromReader(f)
}

// LoadFromReader reads and validates the header, then the feature
// transformer and layer-stack sections, from r.
func (n *Network) LoadFromReader(r io.Reader) error {
	version, err := common.ReadLittleEndian[uint32](r)
	if err != nil {
		return fmt.Errorf("read version: %w", err)
	}
	if version != versionMagic {
		return fmt.Errorf("version mismatch: expected %08x, got %08x", versionMagic, version)
	}

	hash, err := common.ReadLittleEndian[uint32](r)
	if err != nil {
		return fmt.Errorf("read network hash: %w", err)
	}
	if hash != networkHashMagic {
		return fmt.Errorf("network hash mismatch: expected %08x, got %08x", networkHashMagic, hash)
	}

	descSize, err := common.ReadLittleEndian[uint32](r)
	if err != nil {
		return fmt.Errorf("read description size: %w", err)
	}
	if descSize != descriptionSize {
		return fmt.Errorf("description size mismatch: expected %d, got %d", descriptionSize, descSize)
	}
	desc := make([]byte, descSize)
	if _, err := io.ReadFull(r, desc); err != nil {
		return fmt.Errorf("read description: %w", err)
	}

	stamp, err := common.ReadLittleEndian[uint32](r)
	if err != nil {
		return fmt.Errorf("read transformer stamp: %w", err)
	}
	if stamp != transformerMagic {
		return fmt.Errorf("transformer stamp mismatch: expected %08x, got %08x", transformerMagic, stamp)
	}
	if err := common.ReadLittleEndianSlice(r, n.FTBias[:]); err != nil {
		return fmt.Errorf("read transformer bias: %w", err)
	}
	for i := range n.FTWeights {
		if err := common.ReadLittleEndianSlice(r, n.FTWeights[i][:]); err != nil {
			return fmt.Errorf("read transformer weights at %d: %w", i, err)
		}
	}

	stamp, err = common.ReadLittleEndian[uint32](r)
	if err != nil {
		return fmt.Errorf("read network stamp: %w", err)
	}
	if stamp != networkMagic {
		return fmt.Errorf("network stamp mismatch: expected %08x, got %08x", networkMagic, stamp)
	}
	if err := n.L1.ReadParameters(r); err != nil {
		return fmt.Errorf("read layer 1: %w", err)
	}
	if err := n.L2.ReadParameters(r); err != nil {
		return fmt.Errorf("read layer 2: %w", err)
	}
	if err := n.L3.ReadParameters(r); err != nil {
		return fmt.Errorf("read layer 3: %w", err)
	}

	return nil
}

// Save writes the network in the same format LoadFromReader expects, with a
// fixed description padded/truncated to descriptionSize bytes.
func (n *Network) Save(filename, description string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create network file: %w", err)
	}
	defer f.Close()
	return n.SaveToWriter(f, description)
}

// SaveToWriter writes the network to w in the format LoadFromReader expects.
func (n *Network) SaveToWriter(f io.Writer, description string) error {
	desc := make([]byte, descriptionSize)
	copy(desc, description)

	if err := common.WriteLittleEndian(f, versionMagic); err != nil {
		return err
	}
	if err := common.WriteLittleEndian(f, networkHashMagic); err != nil {
		return err
	}
	if err := common.WriteLittleEndian(f, uint32(descriptionSize)); err != nil {
		return err
	}
	if _, err := f.Write(desc); err != nil {
		return err
	}

	if err := common.WriteLittleEndian(f, transformerMagic); err != nil {
		return err
	}
	if err := common.WriteLittleEndianSlice(f, n.FTBias[:]); err != nil {
		return err
	}
	for i := range n.FTWeights {
		if err := common.WriteLittleEndianSlice(f, n.FTWeights[i][:]); err != nil {
			return err
		}
	}

	if err := common.WriteLittleEndian(f, networkMagic); err != nil {
		return err
	}
	if err := n.L1.WriteParameters(f); err != nil {
		return err
	}
	if err := n.L2.WriteParameters(f); err != nil {
		return err
	}
	return n.L3.WriteParameters(f)
}

// ClampedReLU clamps an accumulator value to [0, 127] for quantized inference.
func ClampedReLU(x int16) int8 {
	if x < 0 {
		return 0
	}
	if x > 127 {
		return 127
	}
	return int8(x)
}

// Forward computes the network output given an accumulator, in centipawns
// from the side-to-move's perspective.
func (n *Network) Forward(acc *Accumulator, sideToMove board.Color) int {
	var stmAcc, nstmAcc *[L1Size]int16
	if sideToMove == board.White {
		stmAcc, nstmAcc = &acc.White, &acc.Black
	} else {
		stmAcc, nstmAcc = &acc.Black, &acc.White
	}

	var l0Out [L1Size * 2]uint8
	for i := 0; i < L1Size; i++ {
		l0Out[i] = uint8(ClampedReLU(stmAcc[i]))
		l0Out[L1Size+i] = uint8(ClampedReLU(nstmAcc[i]))
	}

	var l1Raw [L2Size]int32
	n.L1.Propagate(l0Out[:], l1Raw[:])
	var l1Out [L2Size]uint8
	layers.ClampedReLUSlice(l1Raw[:], l1Out[:])

	var l2Raw [L3Size]int32
	n.L2.Propagate(l1Out[:], l2Raw[:])
	var l2Out [L3Size]uint8
	layers.ClampedReLUSlice(l2Raw[:], l2Out[:])

	var outRaw [1]int32
	n.L3.Propagate(l2Out[:], outRaw[:])

	return int(outRaw[0]) / FVScale
}

// InitRandom fills the weights with small reproducible values, for tests
// and for running without a real network file.
func (n *Network) InitRandom(seed int64) {
	state := uint64(seed)
	next := func() int16 {
		state = state*6364136223846793005 + 1442695040888963407
		return int16((state>>48)&0xFF) - 128
	}

	for i := 0; i < L1Size; i++ {
		n.FTBias[i] = next() >> 3
	}
	for i := range n.FTWeights {
		for j := 0; j < L1Size; j++ {
			n.FTWeights[i][j] = next() >> 5
		}
	}

	randomizeAffine(n.L1, next)
	randomizeAffine(n.L2, next)
	randomizeAffine(n.L3, next)
}

func randomizeAffine(a *layers.AffineTransform, next func() int16) {
	for i := range a.Biases {
		a.Biases[i] = int32(next())
	}
	for i := range a.Weights {
		v := next() >> 6
		if v > 127 {
			v = 127
		} else if v < -128 {
			v = -128
		}
		a.Weights[i] = int8(v)
	}
}

// Evaluator is the high-level NNUE evaluation interface used by the search.
type Evaluator struct {
	net   *Network
	stack *AccumulatorStack
}

// NewEvaluator creates an evaluator. If weightsFile is empty, the network
// is initialized with small random weights (for tests only).
func NewEvaluator(weightsFile string) (*Evaluator, error) {
	net := NewNetwork()
	if weightsFile != "" {
		if err := net.Load(weightsFile); err != nil {
			return nil, err
		}
	} else {
		net.InitRandom(12345)
	}
	return &Evaluator{net: net, stack: NewAccumulatorStack()}, nil
}

func (e *Evaluator) Evaluate(pos *board.Position) int {
	acc := e.stack.Current()
	if !acc.Computed {
		acc.ComputeFull(pos, e.net)
	}
	return e.net.Forward(acc, pos.SideToMove)
}

func (e *Evaluator) Push() { e.stack.Push() }
func (e *Evaluator) Pop()  { e.stack.Pop() }

func (e *Evaluator) Refresh(pos *board.Position) {
	e.stack.Current().ComputeFull(pos, e.net)
}

func (e *Evaluator) Update(pos *board.Position, m board.Move, captured board.Piece) {
	e.stack.Current().UpdateIncremental(pos, m, captured, e.net)
}

func (e *Evaluator) Reset() {
	e.stack.Reset()
}
