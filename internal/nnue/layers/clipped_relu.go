// ClippedReLU activation: clamp(x >> WeightScaleBits, 0, 127).

package layers

// WeightScaleBits is the fixed-point shift applied between affine layers,
// matching the int8 weight quantization scale.
const WeightScaleBits = 6

// ClampedReLUSlice applies the activation elementwise, input from an
// AffineTransform's int32 output, output ready for the next layer's int8
// weights.
func ClampedReLUSlice(input []int32, output []uint8) {
	for i, v := range input {
		v >>= WeightScaleBits
		if v < 0 {
			v = 0
		} else if v > 127 {
			v = 127
		}
		output[i] = uint8(v)
	}
}
