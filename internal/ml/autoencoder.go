package ml

import (
	"math"

	"github.com/pkg/errors"
)

// DenseLayer is one fully connected layer of the exported autoencoder.
// Weights[i][j] connects input j to output i.
type DenseLayer struct {
	Weights    [][]float64 `json:"weights"`
	Biases     []float64   `json:"biases"`
	Activation string      `json:"activation"`
}

// SequenceAutoencoder reconstructs a scaled feature vector through its
// encoder/decoder stack; a reconstruction error above Threshold marks the
// input as anomalous. The artifact is optional; cyber classification works
// without it.
type SequenceAutoencoder struct {
	Layers    []DenseLayer `json:"layers"`
	Threshold float64      `json:"threshold"`
}

func (l *DenseLayer) forward(input []float64) ([]float64, error) {
	out := make([]float64, len(l.Weights))
	for i, row := range l.Weights {
		if len(row) != len(input) {
			return nil, errors.Errorf("layer expects %d inputs, got %d", len(row), len(input))
		}
		sum := l.Biases[i]
		for j, w := range row {
			sum += w * input[j]
		}
		out[i] = sum
	}

	switch l.Activation {
	case "relu":
		for i, v := range out {
			if v < 0 {
				out[i] = 0
			}
		}
	case "tanh":
		for i, v := range out {
			out[i] = math.Tanh(v)
		}
	case "linear", "":
	default:
		return nil, errors.Errorf("unsupported activation %q", l.Activation)
	}
	return out, nil
}

// Reconstruct runs the full forward pass.
func (a *SequenceAutoencoder) Reconstruct(input []float64) ([]float64, error) {
	if len(a.Layers) == 0 {
		return nil, errors.New("autoencoder has no layers")
	}

	current := input
	for i := range a.Layers {
		next, err := a.Layers[i].forward(current)
		if err != nil {
			return nil, errors.Wrapf(err, "layer %d", i)
		}
		current = next
	}
	if len(current) != len(input) {
		return nil, errors.Errorf("reconstruction has %d features, input had %d", len(current), len(input))
	}
	return current, nil
}

// ReconstructionError returns the mean squared error between the input and
// its reconstruction.
func (a *SequenceAutoencoder) ReconstructionError(input []float64) (float64, error) {
	reconstructed, err := a.Reconstruct(input)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i, v := range input {
		d := v - reconstructed[i]
		sum += d * d
	}
	return sum / float64(len(input)), nil
}

// IsAnomalous reports whether the reconstruction error exceeds the fitted
// threshold.
func (a *SequenceAutoencoder) IsAnomalous(input []float64) (bool, error) {
	mse, err := a.ReconstructionError(input)
	if err != nil {
		return false, err
	}
	return mse > a.Threshold, nil
}
