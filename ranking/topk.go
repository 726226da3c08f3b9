// Package ranking selects the highest-edge items from an unordered candidate set.
package ranking

import (
	"fmt"
	"math"

	"github.com/bcdannyboy/qengine/models"
	"github.com/tidwall/btree"
)

type ranked[T any] struct {
	edge  float64
	index int
	item  T
}

// better orders by descending edge, then ascending input position.
func better[T any](a, b ranked[T]) bool {
	if a.edge != b.edge {
		return a.edge > b.edge
	}
	return a.index < b.index
}

// TopK returns the k items with the largest edge, best first. Equal edges keep
// their input order. If k exceeds len(items) every item is returned sorted.
//
// The working set never holds more than k items, so selection costs O(N log k).
func TopK[T any](items []T, k int, edge func(T) float64) ([]T, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", models.ErrInvalidInput, k)
	}

	set := btree.NewBTreeGOptions(better[T], btree.Options{NoLocks: true})
	for i, item := range items {
		e := edge(item)
		if math.IsNaN(e) {
			return nil, fmt.Errorf("%w: item %d has NaN edge", models.ErrInvalidInput, i)
		}
		set.Set(ranked[T]{edge: e, index: i, item: item})
		if set.Len() > k {
			set.PopMax()
		}
	}

	out := make([]T, 0, set.Len())
	set.Scan(func(r ranked[T]) bool {
		out = append(out, r.item)
		return true
	})
	return out, nil
}

// TopCandidates ranks candidates by their Edge field.
func TopCandidates(candidates []models.Candidate, k int) ([]models.Candidate, error) {
	return TopK(candidates, k, func(c models.Candidate) float64 { return c.Edge })
}
