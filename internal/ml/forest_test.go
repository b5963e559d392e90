package ml

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// leafTree always predicts the given class.
func leafTree(class int) DecisionTree {
	return DecisionTree{
		ChildrenLeft:  []int{-1},
		ChildrenRight: []int{-1},
		Feature:       []int{-2},
		Threshold:     []float64{0},
		Classes:       []int{class},
	}
}

// splitTree predicts 0 when feature 0 <= 0.5, else 1.
func splitTree() DecisionTree {
	return DecisionTree{
		ChildrenLeft:  []int{1, -1, -1},
		ChildrenRight: []int{2, -1, -1},
		Feature:       []int{0, -2, -2},
		Threshold:     []float64{0.5, 0, 0},
		Classes:       []int{0, 0, 1},
	}
}

func TestForestPredictSplit(t *testing.T) {
	f := Forest{Trees: []DecisionTree{splitTree()}}
	require.NoError(t, f.Validate())

	pred, err := f.Predict([]float64{0.3})
	require.NoError(t, err)
	require.Equal(t, 0, pred)

	pred, err = f.Predict([]float64{0.9})
	require.NoError(t, err)
	require.Equal(t, 1, pred)

	// Left branch is inclusive of the threshold.
	pred, err = f.Predict([]float64{0.5})
	require.NoError(t, err)
	require.Equal(t, 0, pred)
}

func TestForestMajorityVote(t *testing.T) {
	f := Forest{Trees: []DecisionTree{leafTree(1), leafTree(1), leafTree(0)}}

	pred, err := f.Predict([]float64{0})
	require.NoError(t, err)
	require.Equal(t, 1, pred)
}

func TestForestTieBreaksLow(t *testing.T) {
	f := Forest{Trees: []DecisionTree{leafTree(0), leafTree(1)}}

	pred, err := f.Predict([]float64{0})
	require.NoError(t, err)
	require.Equal(t, 0, pred)
}

func TestForestPredictErrors(t *testing.T) {
	empty := Forest{}
	_, err := empty.Predict([]float64{1})
	require.Error(t, err)

	badFeature := Forest{Trees: []DecisionTree{{
		ChildrenLeft:  []int{1, -1},
		ChildrenRight: []int{1, -1},
		Feature:       []int{5, -2},
		Threshold:     []float64{0.5, 0},
		Classes:       []int{0, 1},
	}}}
	_, err = badFeature.Predict([]float64{1})
	require.Error(t, err)

	escaped := Forest{Trees: []DecisionTree{{
		ChildrenLeft:  []int{7},
		ChildrenRight: []int{7},
		Feature:       []int{0},
		Threshold:     []float64{0.5},
		Classes:       []int{0},
	}}}
	_, err = escaped.Predict([]float64{1})
	require.Error(t, err)
}

func TestForestValidate(t *testing.T) {
	require.Error(t, (&Forest{}).Validate())

	inconsistent := Forest{Trees: []DecisionTree{{
		ChildrenLeft:  []int{-1},
		ChildrenRight: []int{-1, -1},
		Feature:       []int{-2},
		Threshold:     []float64{0},
		Classes:       []int{0},
	}}}
	require.Error(t, inconsistent.Validate())

	ok := Forest{Trees: []DecisionTree{leafTree(1)}}
	require.NoError(t, ok.Validate())
}
