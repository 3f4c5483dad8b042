package analytics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"coin-insights/internal/errs"
	"coin-insights/internal/market"
)

const (
	// SelectorClusters is the number of clusters, and so the number of coins picked.
	SelectorClusters = 4
	// SelectorSeed fixes k-means seeding so the same year always yields the same picks.
	SelectorSeed = 42
)

// ClusterAssignment places one coin in a cluster.
type ClusterAssignment struct {
	CoinName           string
	ClusterID          int
	DistanceToCentroid float64
}

// Pick is the representative coin of a cluster.
type Pick struct {
	Metrics            YearMetrics
	ClusterID          int
	DistanceToCentroid float64
}

// Selection is the outcome of clustering a year's coins.
type Selection struct {
	Picks       []Pick
	Assignments []ClusterAssignment
}

// SelectInteresting clusters the standardized yearly metrics of every coin and returns, for
// each cluster in id order, the coin nearest to its centroid. Distance ties go to the
// alphabetically first coin.
func SelectInteresting(year *market.Table) (Selection, error) {
	if year.Len() == 0 {
		return Selection{}, fmt.Errorf("%w: no rows for the requested year", errs.ErrNotFound)
	}

	metrics := ComputeYearMetrics(year)
	if len(metrics) < SelectorClusters {
		return Selection{}, fmt.Errorf("%w: clustering needs at least %d coins with metrics, got %d",
			errs.ErrComputation, SelectorClusters, len(metrics))
	}

	raw := make([][]float64, len(metrics))
	for i, m := range metrics {
		raw[i] = m.Features()
	}
	scaler := FitScaler(raw)
	points := make([][]float64, len(raw))
	for i, row := range raw {
		points[i] = scaler.Transform(row)
	}

	clustering, err := KMeans{K: SelectorClusters, Seed: SelectorSeed, NInit: 10, MaxIter: 300, Tol: 1e-10}.Fit(points)
	if err != nil {
		return Selection{}, err
	}

	sel := Selection{Assignments: make([]ClusterAssignment, len(metrics))}
	bestIdx := make([]int, SelectorClusters)
	bestDist := make([]float64, SelectorClusters)
	for c := range bestIdx {
		bestIdx[c], bestDist[c] = -1, math.Inf(1)
	}

	for i, m := range metrics {
		c := clustering.Labels[i]
		d := floats.Distance(points[i], clustering.Centroids[c], 2)
		sel.Assignments[i] = ClusterAssignment{CoinName: m.CoinName, ClusterID: c, DistanceToCentroid: d}
		if d < bestDist[c] {
			bestIdx[c], bestDist[c] = i, d
		}
	}

	for c := 0; c < SelectorClusters; c++ {
		if bestIdx[c] < 0 {
			continue
		}
		sel.Picks = append(sel.Picks, Pick{
			Metrics:            metrics[bestIdx[c]],
			ClusterID:          c,
			DistanceToCentroid: bestDist[c],
		})
	}
	return sel, nil
}
