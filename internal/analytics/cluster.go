// Package analytics holds the offline batch jobs run at startup: rating
// clustering, pie-chart rendering and the HTML report.
package analytics

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/4TRICK/GPN/internal/store"
)

const (
	// RatingClusters is the fixed group count for rating answers.
	RatingClusters = 3
	// clusterSeed makes centroid initialization reproducible across runs.
	clusterSeed = 42

	maxClusterIterations = 100
)

// ClusterStore is the slice of the answer store the clustering job needs.
type ClusterStore interface {
	StaticResponsesForQuestions(ctx context.Context, prompts []string) ([]store.StaticResponse, error)
	SetCluster(ctx context.Context, cluster int, question, answer string) error
}

// ClusterRatings fetches every answer to the given rating prompts, groups the
// numeric values into RatingClusters clusters and writes each row's label
// back keyed by (question, answer). A non-numeric answer aborts the whole
// job; nothing is written in that case.
func ClusterRatings(ctx context.Context, st ClusterStore, ratingPrompts []string) error {
	rows, err := st.StaticResponsesForQuestions(ctx, ratingPrompts)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	values := make([]float64, len(rows))
	for i, r := range rows {
		v, err := strconv.ParseFloat(r.Answer, 64)
		if err != nil {
			return fmt.Errorf("non-numeric rating answer %q for %q: %w", r.Answer, r.Question, err)
		}
		values[i] = v
	}

	labels := assignClusters(normalize(values), RatingClusters)

	for i, r := range rows {
		if err := st.SetCluster(ctx, labels[i], r.Question, r.Answer); err != nil {
			return err
		}
	}
	return nil
}

// normalize scales values to zero mean and unit variance. A constant series
// maps to all zeros.
func normalize(values []float64) []float64 {
	mean := stat.Mean(values, nil)
	std := stat.StdDev(values, nil)

	out := make([]float64, len(values))
	if std == 0 || math.IsNaN(std) {
		return out
	}
	for i, v := range values {
		out[i] = (v - mean) / std
	}
	return out
}

// assignClusters runs Lloyd's iteration over one-dimensional values.
// Centroids are seeded from distinct values picked with a fixed-seed
// permutation, so assignments are deterministic for a given input.
func assignClusters(values []float64, k int) []int {
	distinct := make([]float64, 0, len(values))
	seen := map[float64]struct{}{}
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		distinct = append(distinct, v)
	}
	sort.Float64s(distinct)
	if len(distinct) < k {
		k = len(distinct)
	}

	rng := rand.New(rand.NewSource(clusterSeed))
	perm := rng.Perm(len(distinct))
	centroids := make([]float64, k)
	for i := 0; i < k; i++ {
		centroids[i] = distinct[perm[i]]
	}

	labels := make([]int, len(values))
	for iter := 0; iter < maxClusterIterations; iter++ {
		changed := false
		for i, v := range values {
			best := 0
			bestDist := math.Abs(v - centroids[0])
			for c := 1; c < k; c++ {
				if d := math.Abs(v - centroids[c]); d < bestDist {
					best, bestDist = c, d
				}
			}
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		sums := make([]float64, k)
		counts := make([]int, k)
		for i, v := range values {
			sums[labels[i]] += v
			counts[labels[i]]++
		}
		for c := 0; c < k; c++ {
			if counts[c] > 0 {
				centroids[c] = sums[c] / float64(counts[c])
			}
		}
	}
	return labels
}
