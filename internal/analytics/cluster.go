package analytics

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"coin-insights/internal/errs"
)

// Scaler standardises features to zero mean and unit population variance.
type Scaler struct {
	Mean  []float64
	Scale []float64
}

// FitScaler learns per-column mean and scale. Constant columns keep a scale of 1.
func FitScaler(rows [][]float64) Scaler {
	if len(rows) == 0 {
		return Scaler{}
	}
	dims := len(rows[0])
	s := Scaler{Mean: make([]float64, dims), Scale: make([]float64, dims)}
	column := make([]float64, len(rows))
	for j := 0; j < dims; j++ {
		for i, row := range rows {
			column[i] = row[j]
		}
		m, std := stat.PopMeanStdDev(column, nil)
		s.Mean[j] = m
		s.Scale[j] = std
		if std == 0 || math.IsNaN(std) {
			s.Scale[j] = 1
		}
	}
	return s
}

// Transform standardises a single row.
func (s Scaler) Transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Mean[j]) / s.Scale[j]
	}
	return out
}

// KMeans configures Lloyd's algorithm with k-means++ seeding.
type KMeans struct {
	K       int
	Seed    uint64
	NInit   int
	MaxIter int
	Tol     float64
}

// Clustering is the best partition found across initialisations.
type Clustering struct {
	Labels    []int
	Centroids [][]float64
	Inertia   float64
}

// Fit partitions points into K clusters. The same points and seed always give the same result.
func (km KMeans) Fit(points [][]float64) (Clustering, error) {
	if km.K <= 0 {
		return Clustering{}, fmt.Errorf("%w: cluster count must be positive", errs.ErrComputation)
	}
	if len(points) < km.K {
		return Clustering{}, fmt.Errorf("%w: %d points cannot form %d clusters", errs.ErrComputation, len(points), km.K)
	}
	nInit := km.NInit
	if nInit <= 0 {
		nInit = 10
	}
	maxIter := km.MaxIter
	if maxIter <= 0 {
		maxIter = 300
	}

	rng := rand.New(rand.NewPCG(km.Seed, km.Seed))
	var best Clustering
	for run := 0; run < nInit; run++ {
		centroids := seedPlusPlus(points, km.K, rng)
		candidate := lloyd(points, centroids, maxIter, km.Tol)
		if run == 0 || candidate.Inertia < best.Inertia {
			best = candidate
		}
	}
	return best, nil
}

func seedPlusPlus(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	first := points[rng.IntN(len(points))]
	centroids = append(centroids, append([]float64(nil), first...))

	dist := make([]float64, len(points))
	for len(centroids) < k {
		total := 0.0
		for i, p := range points {
			d := math.Inf(1)
			for _, c := range centroids {
				d = math.Min(d, sqDist(p, c))
			}
			dist[i] = d
			total += d
		}

		idx := 0
		if total == 0 {
			idx = rng.IntN(len(points))
		} else {
			target := rng.Float64() * total
			acc := 0.0
			for i, d := range dist {
				acc += d
				if acc >= target && d > 0 {
					idx = i
					break
				}
				idx = i
			}
		}
		centroids = append(centroids, append([]float64(nil), points[idx]...))
	}
	return centroids
}

func lloyd(points [][]float64, centroids [][]float64, maxIter int, tol float64) Clustering {
	k := len(centroids)
	dims := len(points[0])
	labels := make([]int, len(points))

	for iter := 0; iter < maxIter; iter++ {
		assign(points, centroids, labels)

		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dims)
		}
		for i, p := range points {
			floats.Add(sums[labels[i]], p)
			counts[labels[i]]++
		}

		next := make([][]float64, k)
		for c := range next {
			if counts[c] == 0 {
				// empty cluster: move it onto the point farthest from its centroid
				far := farthestPoint(points, centroids, labels)
				next[c] = append([]float64(nil), points[far]...)
				labels[far] = c
				continue
			}
			floats.Scale(1/float64(counts[c]), sums[c])
			next[c] = sums[c]
		}

		shift := 0.0
		for c := range next {
			shift += sqDist(next[c], centroids[c])
		}
		centroids = next
		if shift <= tol {
			break
		}
	}

	assign(points, centroids, labels)
	inertia := 0.0
	for i, p := range points {
		inertia += sqDist(p, centroids[labels[i]])
	}
	return Clustering{Labels: labels, Centroids: centroids, Inertia: inertia}
}

// assign labels each point with its nearest centroid; ties go to the lower cluster id.
func assign(points [][]float64, centroids [][]float64, labels []int) {
	for i, p := range points {
		best, bestDist := 0, math.Inf(1)
		for c, centroid := range centroids {
			if d := sqDist(p, centroid); d < bestDist {
				best, bestDist = c, d
			}
		}
		labels[i] = best
	}
}

func farthestPoint(points [][]float64, centroids [][]float64, labels []int) int {
	far, farDist := 0, -1.0
	for i, p := range points {
		if d := sqDist(p, centroids[labels[i]]); d > farDist {
			far, farDist = i, d
		}
	}
	return far
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}
