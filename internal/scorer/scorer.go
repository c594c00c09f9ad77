// Package scorer holds the fixed-weight feed-forward network that maps a
// feature vector to a small score vector. The weights are drawn once at
// construction and never updated; the engine treats the whole thing as an
// opaque scoring function.
package scorer

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Network is a two-layer feed-forward network with fast-sigmoid
// activations. Safe for concurrent readers once constructed; weights are
// immutable after New.
type Network struct {
	weights1 [][]float64 // inputSize x hiddenSize
	weights2 [][]float64 // hiddenSize x outputSize
	bias1    []float64
	bias2    []float64

	inputSize  int
	hiddenSize int
	outputSize int
}

// New creates a network with Xavier-scaled random weights drawn from rng.
// A nil rng falls back to a time-seeded source.
func New(inputSize, hiddenSize, outputSize int, rng *rand.Rand) (*Network, error) {
	if inputSize < 1 || hiddenSize < 1 || outputSize < 1 {
		return nil, fmt.Errorf("scorer: layer sizes must be >= 1, got %d/%d/%d",
			inputSize, hiddenSize, outputSize)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	scale1 := math.Sqrt(2 / float64(inputSize))
	scale2 := math.Sqrt(2 / float64(hiddenSize))

	n := &Network{
		weights1:   randomMatrix(rng, inputSize, hiddenSize, scale1),
		weights2:   randomMatrix(rng, hiddenSize, outputSize, scale2),
		bias1:      make([]float64, hiddenSize),
		bias2:      make([]float64, outputSize),
		inputSize:  inputSize,
		hiddenSize: hiddenSize,
		outputSize: outputSize,
	}
	return n, nil
}

func randomMatrix(rng *rand.Rand, rows, cols int, scale float64) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
		for j := range m[i] {
			m[i][j] = -scale + rng.Float64()*2*scale
		}
	}
	return m
}

// fastSigmoid approximates the logistic function without calling Exp:
// σ(x) ≈ 0.5 + x / (2(1+|x|)). Output stays in (0,1).
func fastSigmoid(x float64) float64 {
	return 0.5 + x/(2*(1+math.Abs(x)))
}

// Forward runs the network on a feature vector and returns the score
// vector. Inputs beyond the network's input size are ignored; missing
// inputs are treated as 0.
func (n *Network) Forward(inputs []float64) []float64 {
	hidden := make([]float64, n.hiddenSize)
	for j := 0; j < n.hiddenSize; j++ {
		sum := n.bias1[j]
		for i := 0; i < n.inputSize && i < len(inputs); i++ {
			sum += inputs[i] * n.weights1[i][j]
		}
		hidden[j] = fastSigmoid(sum)
	}

	output := make([]float64, n.outputSize)
	for j := 0; j < n.outputSize; j++ {
		sum := n.bias2[j]
		for i, h := range hidden {
			sum += h * n.weights2[i][j]
		}
		output[j] = fastSigmoid(sum)
	}
	return output
}

// OutputSize returns the length of the vectors Forward produces.
func (n *Network) OutputSize() int { return n.outputSize }
