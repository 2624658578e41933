package analytics

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/4TRICK/GPN/internal/store"
	"github.com/4TRICK/GPN/internal/survey"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "survey.db"))
	if err != nil {
		t.Fatalf("store.Open returned error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNormalize(t *testing.T) {
	out := normalize([]float64{2, 5, 8})
	if out[1] != 0 {
		t.Fatalf("middle value should normalize to 0, got %v", out[1])
	}
	if out[0] >= 0 || out[2] <= 0 {
		t.Fatalf("normalization lost ordering: %v", out)
	}
	if out[0] != -out[2] {
		t.Fatalf("symmetric input should normalize symmetrically: %v", out)
	}

	if got := normalize([]float64{7, 7, 7}); !reflect.DeepEqual(got, []float64{0, 0, 0}) {
		t.Fatalf("constant series should normalize to zeros, got %v", got)
	}
}

func TestAssignClusters_ThreeDistinctValues(t *testing.T) {
	values := normalize([]float64{1, 5, 10})

	labels := assignClusters(values, RatingClusters)
	if len(labels) != 3 {
		t.Fatalf("expected 3 labels, got %d", len(labels))
	}
	seen := map[int]struct{}{}
	for _, l := range labels {
		if l < 0 || l >= RatingClusters {
			t.Fatalf("label out of range: %d", l)
		}
		seen[l] = struct{}{}
	}
	if len(seen) != 3 {
		t.Fatalf("three distinct values must land in three groups, got labels %v", labels)
	}

	// Deterministic: same input, same assignment, every run.
	for i := 0; i < 5; i++ {
		again := assignClusters(values, RatingClusters)
		if !reflect.DeepEqual(labels, again) {
			t.Fatalf("assignment not deterministic: %v vs %v", labels, again)
		}
	}
}

func TestAssignClusters_SameValueSameGroup(t *testing.T) {
	values := normalize([]float64{1, 1, 10, 10, 5})
	labels := assignClusters(values, RatingClusters)
	if labels[0] != labels[1] || labels[2] != labels[3] {
		t.Fatalf("identical values must share a group: %v", labels)
	}
	if labels[0] == labels[2] {
		t.Fatalf("far-apart values must not share a group: %v", labels)
	}
}

func TestClusterRatings_WritesBackByQuestionAndAnswer(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	q := "Оцените практику в целом (1-10)"
	id, _ := s.InsertStudent(ctx, "A", "X")
	for _, answer := range []string{"1", "5", "10"} {
		if err := s.InsertStaticResponse(ctx, id, q, answer); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	// A non-rating answer must stay untouched.
	if err := s.InsertStaticResponse(ctx, id, "Рекомендовали бы вы эту практику другим студентам?", "Да"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := ClusterRatings(ctx, s, []string{q}); err != nil {
		t.Fatalf("ClusterRatings returned error: %v", err)
	}

	clustered, err := s.ClusteredResponses(ctx)
	if err != nil {
		t.Fatalf("ClusteredResponses returned error: %v", err)
	}
	if len(clustered) != 3 {
		t.Fatalf("expected 3 clustered rows, got %d", len(clustered))
	}
	groups := map[int64]struct{}{}
	for _, r := range clustered {
		if r.Question != q {
			t.Fatalf("non-rating row got clustered: %+v", r)
		}
		groups[*r.Cluster] = struct{}{}
	}
	if len(groups) != 3 {
		t.Fatalf("expected 3 distinct groups, got %v", groups)
	}
}

func TestClusterRatings_NonNumericAborts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	q := "Оцените практику в целом (1-10)"
	id, _ := s.InsertStudent(ctx, "A", "X")
	if err := s.InsertStaticResponse(ctx, id, q, "отлично"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := ClusterRatings(ctx, s, []string{q}); err == nil {
		t.Fatalf("expected error for non-numeric rating answer")
	}

	clustered, err := s.ClusteredResponses(ctx)
	if err != nil {
		t.Fatalf("ClusteredResponses returned error: %v", err)
	}
	if len(clustered) != 0 {
		t.Fatalf("aborted job must not write labels, got %d rows", len(clustered))
	}
}

func TestClusterRatings_EmptyStore(t *testing.T) {
	s := openTestStore(t)
	if err := ClusterRatings(context.Background(), s, survey.RatingPrompts(survey.Questions)); err != nil {
		t.Fatalf("empty store should be a no-op, got %v", err)
	}
}
