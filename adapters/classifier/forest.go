package classifier

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// TreeNode is one node of a fitted decision tree. Leaves have Left and Right set to -1
// and carry per-class sample counts in Value.
type TreeNode struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value,omitempty"`
}

func (n TreeNode) leaf() bool { return n.Left < 0 && n.Right < 0 }

// Tree is a flat array of nodes rooted at index 0
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// ForestParams holds the fitted trees
type ForestParams struct {
	Trees []Tree `json:"trees"`
}

// RandomForest averages per-tree leaf class distributions
type RandomForest struct {
	trees []Tree
	width int
}

// NewRandomForest checks every tree is well formed before it can be used
func NewRandomForest(params ForestParams, width int) (*RandomForest, error) {
	if len(params.Trees) == 0 {
		return nil, fmt.Errorf("random forest has no trees")
	}
	for ti, tree := range params.Trees {
		if err := validateTree(tree, width); err != nil {
			return nil, fmt.Errorf("tree %d: %w", ti, err)
		}
	}
	return &RandomForest{trees: params.Trees, width: width}, nil
}

func validateTree(tree Tree, width int) error {
	n := len(tree.Nodes)
	if n == 0 {
		return fmt.Errorf("no nodes")
	}
	for i, node := range tree.Nodes {
		if node.leaf() {
			if len(node.Value) != 2 || floats.Min(node.Value) < 0 || floats.Sum(node.Value) <= 0 {
				return fmt.Errorf("leaf %d needs two non-negative class counts with a positive sum", i)
			}
			continue
		}
		if node.Feature < 0 || node.Feature >= width {
			return fmt.Errorf("node %d splits on feature %d outside [0,%d)", i, node.Feature, width)
		}
		// children always point forward, which also rules out cycles
		if node.Left <= i || node.Left >= n || node.Right <= i || node.Right >= n {
			return fmt.Errorf("node %d has invalid children %d/%d", i, node.Left, node.Right)
		}
	}
	return nil
}

func (t Tree) leafDistribution(x []float64) []float64 {
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.leaf() {
			dist := make([]float64, len(node.Value))
			copy(dist, node.Value)
			floats.Scale(1/floats.Sum(dist), dist)
			return dist
		}
		if x[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}

// PredictProba averages normalized leaf distributions across trees
func (m *RandomForest) PredictProba(features []float64) ([]float64, error) {
	if err := checkWidth(features, m.width); err != nil {
		return nil, err
	}
	proba := make([]float64, 2)
	for _, tree := range m.trees {
		floats.Add(proba, tree.leafDistribution(features))
	}
	floats.Scale(1/float64(len(m.trees)), proba)
	return proba, nil
}

// Predict returns the class with the highest averaged probability, class 0 on ties
func (m *RandomForest) Predict(features []float64) (int, error) {
	proba, err := m.PredictProba(features)
	if err != nil {
		return 0, err
	}
	return argmax(proba), nil
}
