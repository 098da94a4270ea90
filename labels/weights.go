package labels

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/avollmer/deepfeat/table"
)

// ClassWeights computes inverse-frequency weights for a nominal label
// column, the form the downstream sequence classifiers consume to balance
// skewed class distributions: weight = total / (classes * count), so a
// uniformly distributed column yields 1.0 for every class.
func (a *Assignment) ClassWeights(column int) (map[string]float64, error) {
	if column < 0 || column >= len(a.Columns) {
		return nil, fmt.Errorf("label column %d out of range", column)
	}
	if a.Columns[column].Type != table.TypeNominal {
		return nil, fmt.Errorf("label column %q is not nominal", a.Columns[column].Name)
	}

	counts := make(map[string]float64)
	for _, tuple := range a.Dict {
		counts[tuple[column]]++
	}

	perClass := make([]float64, 0, len(counts))
	for _, c := range counts {
		perClass = append(perClass, c)
	}
	total := floats.Sum(perClass)

	weights := make(map[string]float64, len(counts))
	for class, count := range counts {
		weights[class] = total / (float64(len(counts)) * count)
	}
	return weights, nil
}
