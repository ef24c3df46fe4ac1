/*
Package nnue implements NNUE (Efficiently Updatable Neural Network)
evaluation, in the classic HalfKP(256x2-32-32-1) shape.

# Architecture

This package implements the classic HalfKP(256x2-32-32-1) NNUE architecture:
a HalfKP feature transformer (own king square x non-king piece x square, one
perspective per side) feeding two affine+clipped-ReLU hidden layers and a
scalar output layer. Incremental accumulator updates track the feature deltas
of each move so most nodes avoid a full feature recomputation.

# Usage

	eval, err := nnue.NewEvaluator("nn-xxx.nnue")
	if err != nil {
		log.Fatal(err)
	}

	score := eval.Evaluate(position)
*/
package nnue
