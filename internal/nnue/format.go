package nnue

// Network architecture: classic HalfKP(256x2-32-32-1).
const (
	L1Size = 256 // feature transformer output size, per perspective
	L2Size = 32
	L3Size = 32

	HalfKPSize = 64 * 641 // king squares * piece-square index space

	FVScale = 16

	MaxSearchPly = 128
)

// Binary format: header, feature transformer section, network section.
// Offsets are derived from the section sizes below rather than hardcoded,
// since they fall out of the architecture constants exactly.
const (
	versionMagic     uint32 = 0x7AF32F16
	networkHashMagic uint32 = 0x3E5AA6EE
	descriptionSize         = 177

	transformerMagic uint32 = 0x5D69D7B8
	networkMagic     uint32 = 0x63337156
)

const headerSize = 4 + 4 + 4 + descriptionSize // version + hash + descSize + desc

// TransformerStart is the byte offset of the feature transformer section.
const TransformerStart = headerSize

const transformerSectionSize = 4 + // stamp
	L1Size*2 + // biases, int16
	HalfKPSize*L1Size*2 // weights, int16

// NetworkStart is the byte offset of the layer-stack section.
const NetworkStart = TransformerStart + transformerSectionSize

const networkSectionSize = 4 + // stamp
	(L2Size*4 + L1Size*2*L2Size) + // L1->L2: int32 biases, int8 weights
	(L3Size*4 + L2Size*L3Size) + // L2->L3
	(1*4 + L3Size*1) // L3->output

// TotalFileSize is the exact expected byte length of a network file for
// this architecture.
const TotalFileSize = NetworkStart + networkSectionSize
