package outliers

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"sort"

	"datalens/domain/profile"
)

const eulerGamma = 0.5772156649015329

// isolationScanner scores every value with a one-dimensional isolation
// forest. Rows at or above the (1 - contamination) score quantile whose
// score also exceeds 0.5 are flagged.
func isolationScanner(opts Options) columnScanner {
	trees := opts.Trees
	if trees < 1 {
		trees = 100
	}
	sampleSize := opts.SampleSize
	if sampleSize < 2 {
		sampleSize = 256
	}

	return func(ctx context.Context, name string, ns *profile.NumericStats) (scanResult, error) {
		xs, rows := present(ns.Values)
		if len(xs) < 3 {
			return scanResult{skipReason: "insufficient data"}, nil
		}
		if ns.Min == ns.Max {
			return scanResult{skipReason: "zero variance"}, nil
		}

		rng := columnStream(opts.Seed, name)
		psi := min(sampleSize, len(xs))
		heightLimit := int(math.Ceil(math.Log2(float64(psi))))

		forest := make([]*isoNode, 0, trees)
		sample := make([]float64, psi)
		for t := 0; t < trees; t++ {
			if err := ctx.Err(); err != nil {
				return scanResult{}, err
			}
			for i, idx := range sampleIndices(rng, len(xs), psi) {
				sample[i] = xs[idx]
			}
			forest = append(forest, buildTree(rng, append([]float64(nil), sample...), 0, heightLimit))
		}

		norm := averagePathLength(psi)
		scores := make([]float64, len(xs))
		for i, x := range xs {
			if i%4096 == 0 {
				if err := ctx.Err(); err != nil {
					return scanResult{}, err
				}
			}
			total := 0.0
			for _, tree := range forest {
				total += pathLength(tree, x, 0)
			}
			scores[i] = math.Pow(2, -(total/float64(len(forest)))/norm)
		}

		threshold := scoreThreshold(scores, opts.Contamination)
		var res scanResult
		for i, s := range scores {
			if s >= threshold && s > 0.5 {
				res.flags = append(res.flags, flag{row: rows[i], severity: s})
			}
		}
		return res, nil
	}
}

// columnStream derives a per-column generator from the base seed so each
// column's forest is reproducible regardless of scan order.
func columnStream(seed uint64, column string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(column))
	return rand.New(rand.NewSource(int64(seed ^ h.Sum64())))
}

// sampleIndices draws k distinct indices from [0, n) with Floyd's algorithm.
func sampleIndices(rng *rand.Rand, n, k int) []int {
	if k >= n {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
	chosen := make(map[int]struct{}, k)
	out := make([]int, 0, k)
	for j := n - k; j < n; j++ {
		t := rng.Intn(j + 1)
		if _, dup := chosen[t]; dup {
			t = j
		}
		chosen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

type isoNode struct {
	split       float64
	left, right *isoNode
	size        int
}

func (n *isoNode) leaf() bool { return n.left == nil }

func buildTree(rng *rand.Rand, xs []float64, depth, limit int) *isoNode {
	if depth >= limit || len(xs) <= 1 {
		return &isoNode{size: len(xs)}
	}
	lo, hi := xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	if lo == hi {
		return &isoNode{size: len(xs)}
	}

	split := lo + rng.Float64()*(hi-lo)
	var left, right []float64
	for _, x := range xs {
		if x < split {
			left = append(left, x)
		} else {
			right = append(right, x)
		}
	}
	return &isoNode{
		split: split,
		left:  buildTree(rng, left, depth+1, limit),
		right: buildTree(rng, right, depth+1, limit),
	}
}

func pathLength(n *isoNode, x float64, depth int) float64 {
	if n.leaf() {
		return float64(depth) + averagePathLength(n.size)
	}
	if x < n.split {
		return pathLength(n.left, x, depth+1)
	}
	return pathLength(n.right, x, depth+1)
}

// averagePathLength is c(n), the mean unsuccessful-search depth of a BST.
func averagePathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	}
	fn := float64(n)
	return 2*(math.Log(fn-1)+eulerGamma) - 2*(fn-1)/fn
}

func scoreThreshold(scores []float64, contamination float64) float64 {
	sorted := append([]float64(nil), scores...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	k := int(math.Ceil(contamination * float64(len(sorted))))
	k = max(1, min(k, len(sorted)))
	return sorted[k-1]
}
