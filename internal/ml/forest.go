package ml

import (
	"github.com/pkg/errors"
)

// DecisionTree is one estimator exported in the flattened array layout:
// node i branches left when feature[Feature[i]] <= Threshold[i]; leaves have
// ChildrenLeft[i] == -1 and predict Classes[i].
type DecisionTree struct {
	ChildrenLeft  []int     `json:"children_left"`
	ChildrenRight []int     `json:"children_right"`
	Feature       []int     `json:"feature"`
	Threshold     []float64 `json:"threshold"`
	Classes       []int     `json:"classes"`
}

// Forest is a majority-vote ensemble of decision trees, the exported form of
// the trained random-forest detectors and classifiers.
type Forest struct {
	Trees []DecisionTree `json:"trees"`
}

// predict walks a single tree down to a leaf.
func (t *DecisionTree) predict(features []float64) (int, error) {
	node := 0
	for {
		if node < 0 || node >= len(t.ChildrenLeft) {
			return 0, errors.Errorf("tree walk escaped node table at node %d", node)
		}
		if t.ChildrenLeft[node] == -1 {
			if node >= len(t.Classes) {
				return 0, errors.Errorf("leaf %d has no class entry", node)
			}
			return t.Classes[node], nil
		}

		featureIdx := t.Feature[node]
		if featureIdx < 0 || featureIdx >= len(features) {
			return 0, errors.Errorf("node %d references feature %d of %d", node, featureIdx, len(features))
		}
		if features[featureIdx] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
}

// Predict returns the majority class across all trees for one feature
// vector.
func (f *Forest) Predict(features []float64) (int, error) {
	if len(f.Trees) == 0 {
		return 0, errors.New("forest has no trees")
	}

	votes := make(map[int]int)
	for i := range f.Trees {
		class, err := f.Trees[i].predict(features)
		if err != nil {
			return 0, errors.Wrapf(err, "tree %d", i)
		}
		votes[class]++
	}

	best, bestCount := 0, -1
	for class, count := range votes {
		if count > bestCount || (count == bestCount && class < best) {
			best, bestCount = class, count
		}
	}
	return best, nil
}

// Validate checks the array layout is internally consistent so a corrupt
// artifact is rejected at load time instead of mid-request.
func (f *Forest) Validate() error {
	if len(f.Trees) == 0 {
		return errors.New("forest has no trees")
	}
	for i, t := range f.Trees {
		n := len(t.ChildrenLeft)
		if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Classes) != n {
			return errors.Errorf("tree %d has inconsistent node arrays", i)
		}
		if n == 0 {
			return errors.Errorf("tree %d is empty", i)
		}
	}
	return nil
}
