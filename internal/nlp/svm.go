package nlp

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// trainBinary fits an L2-regularized hinge-loss linear SVM by dual coordinate descent, visiting
// samples in their given order. labels are +1/-1 and upper holds each sample's box constraint
// (C times its class weight). The returned weights carry the bias as their last element.
func trainBinary(x [][]float64, labels, upper []float64, maxIter int, tol float64) []float64 {
	dims := len(x[0])
	w := make([]float64, dims+1)
	alpha := make([]float64, len(x))
	qii := make([]float64, len(x))
	for i, xi := range x {
		qii[i] = floats.Dot(xi, xi) + 1
	}

	for iter := 0; iter < maxIter; iter++ {
		maxPG, minPG := math.Inf(-1), math.Inf(1)
		for i, xi := range x {
			g := labels[i]*decision(w, xi) - 1

			pg := g
			switch {
			case alpha[i] == 0:
				pg = math.Min(g, 0)
			case alpha[i] == upper[i]:
				pg = math.Max(g, 0)
			}
			maxPG = math.Max(maxPG, pg)
			minPG = math.Min(minPG, pg)
			if math.Abs(pg) < 1e-12 {
				continue
			}

			old := alpha[i]
			alpha[i] = math.Min(math.Max(old-g/qii[i], 0), upper[i])
			step := (alpha[i] - old) * labels[i]
			floats.AddScaled(w[:dims], step, xi)
			w[dims] += step
		}
		if iter > 0 && maxPG-minPG < tol {
			break
		}
	}
	return w
}

func decision(w, x []float64) float64 {
	dims := len(x)
	return floats.Dot(w[:dims], x) + w[dims]
}

func softmax(scores []float64) []float64 {
	out := make([]float64, len(scores))
	peak := floats.Max(scores)
	for i, s := range scores {
		out[i] = math.Exp(s - peak)
	}
	floats.Scale(1/floats.Sum(out), out)
	return out
}
