package projection

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// powerIterations is the number of multiply-renormalize rounds per axis.
// Enough for the deflation to converge to stable top axes on typical inputs.
const powerIterations = 50

// principalAxes finds the top outDim principal axes of the centered matrix by
// power iteration on XᵗX, removing previously found components via
// Gram-Schmidt before each renormalization.
func principalAxes(x *mat.Dense, outDim int, rng *rand.Rand) []*mat.VecDense {
	_, d := x.Dims()
	axes := make([]*mat.VecDense, 0, outDim)

	for k := 0; k < outDim; k++ {
		v := randomUnitVector(d, rng)
		for iter := 0; iter < powerIterations; iter++ {
			// w = Xᵗ (X v)
			xv := mat.NewVecDense(mustRows(x), nil)
			xv.MulVec(x, v)
			w := mat.NewVecDense(d, nil)
			w.MulVec(x.T(), xv)

			for _, prev := range axes {
				proj := mat.Dot(w, prev)
				w.AddScaledVec(w, -proj, prev)
			}

			norm := mat.Norm(w, 2)
			if norm == 0 {
				// degenerate direction, keep the previous estimate
				break
			}
			w.ScaleVec(1/norm, w)
			v = w
		}
		axes = append(axes, v)
	}
	return axes
}

// PCAProject projects vectors onto their top outDim principal axes.
// This is the deterministic numerical fallback used when the primary
// projection engine is unavailable.
func PCAProject(vectors [][]float64, outDim int, rng *rand.Rand) [][]float64 {
	n := len(vectors)
	if n == 0 {
		return [][]float64{}
	}
	d := len(vectors[0])
	if outDim > d {
		outDim = d
	}

	x := centeredMatrix(vectors, n, d)
	axes := principalAxes(x, outDim, rng)

	result := make([][]float64, n)
	row := mat.NewVecDense(d, nil)
	for i := 0; i < n; i++ {
		row.CopyVec(x.RowView(i).(*mat.VecDense))
		coords := make([]float64, outDim)
		for k, axis := range axes {
			coords[k] = mat.Dot(row, axis)
		}
		result[i] = coords
	}
	return result
}

// centeredMatrix builds an n×d matrix with every column centered on its mean.
func centeredMatrix(vectors [][]float64, n, d int) *mat.Dense {
	x := mat.NewDense(n, d, nil)
	for i, v := range vectors {
		x.SetRow(i, v)
	}
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		mat.Col(col, j, x)
		mean := stat.Mean(col, nil)
		for i := 0; i < n; i++ {
			x.Set(i, j, x.At(i, j)-mean)
		}
	}
	return x
}

func randomUnitVector(d int, rng *rand.Rand) *mat.VecDense {
	v := mat.NewVecDense(d, nil)
	for i := 0; i < d; i++ {
		v.SetVec(i, rng.NormFloat64())
	}
	norm := mat.Norm(v, 2)
	if norm == 0 {
		v.SetVec(0, 1)
		return v
	}
	v.ScaleVec(1/norm, v)
	return v
}

func mustRows(m *mat.Dense) int {
	r, _ := m.Dims()
	return r
}

// minMaxNormalize rescales one axis of the coordinate set into [lo, hi]
// in place. Constant axes collapse to the midpoint.
func minMaxNormalize(coords [][]float64, axis int, lo, hi float64) {
	minV, maxV := math.Inf(1), math.Inf(-1)
	for _, c := range coords {
		if c[axis] < minV {
			minV = c[axis]
		}
		if c[axis] > maxV {
			maxV = c[axis]
		}
	}
	span := maxV - minV
	for _, c := range coords {
		if span == 0 {
			c[axis] = (lo + hi) / 2
			continue
		}
		c[axis] = lo + (c[axis]-minV)/span*(hi-lo)
	}
}
