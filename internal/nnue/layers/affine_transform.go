// AffineTransform is a small fully-connected layer: output = weights*input + bias.

package layers

import (
	"fmt"
	"io"

	"github.com/chego/engine/internal/nnue/common"
)

type AffineTransform struct {
	InputDimensions  int
	OutputDimensions int

	Biases  []int32
	Weights []int8 // row-major: OutputDimensions x InputDimensions
}

func NewAffineTransform(inputDims, outputDims int) *AffineTransform {
	return &AffineTransform{
		InputDimensions:  inputDims,
		OutputDimensions: outputDims,
		Biases:           make([]int32, outputDims),
		Weights:          make([]int8, outputDims*inputDims),
	}
}

func (a *AffineTransform) ReadParameters(r io.Reader) error {
	if err := common.ReadLittleEndianSlice(r, a.Biases); err != nil {
		return fmt.Errorf("read biases: %w", err)
	}
	if err := common.ReadLittleEndianSlice(r, a.Weights); err != nil {
		return fmt.Errorf("read weights: %w", err)
	}
	return nil
}

func (a *AffineTransform) WriteParameters(w io.Writer) error {
	if err := common.WriteLittleEndianSlice(w, a.Biases); err != nil {
		return fmt.Errorf("write biases: %w", err)
	}
	return common.WriteLittleEndianSlice(w, a.Weights)
}

// Propagate performs output = weights*input + bias. Input is the clamped
// ReLU output of the previous layer (or the feature transformer for layer
// one), output is raw pre-activation values for the next ClampedReLU.
func (a *AffineTransform) Propagate(input []uint8, output []int32) {
	for i := 0; i < a.OutputDimensions; i++ {
		row := a.Weights[i*a.InputDimensions : (i+1)*a.InputDimensions]
		sum := a.Biases[i]
		for j := 0; j < a.InputDimensions; j++ {
			sum += int32(row[j]) * int32(input[j])
		}
		output[i] = sum
	}
}
