package store

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "survey.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStudentAndResponses(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.InsertStudent(ctx, "Иванов Иван", "ИТ")
	if err != nil {
		t.Fatalf("InsertStudent returned error: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected non-zero student id")
	}

	if err := s.InsertStaticResponse(ctx, id, "Оцените практику в целом (1-10)", "8"); err != nil {
		t.Fatalf("InsertStaticResponse returned error: %v", err)
	}
	if err := s.InsertDynamicResponse(ctx, id, "Что можно улучшить?", "Больше задач", "Ключевые моменты: больше задач"); err != nil {
		t.Fatalf("InsertDynamicResponse returned error: %v", err)
	}

	static, err := s.StaticResponses(ctx)
	if err != nil {
		t.Fatalf("StaticResponses returned error: %v", err)
	}
	if len(static) != 1 {
		t.Fatalf("expected 1 static row, got %d", len(static))
	}
	if static[0].Cluster != nil {
		t.Fatalf("expected nil cluster on fresh row, got %d", *static[0].Cluster)
	}

	dynamic, err := s.DynamicResponses(ctx)
	if err != nil {
		t.Fatalf("DynamicResponses returned error: %v", err)
	}
	if len(dynamic) != 1 || dynamic[0].ProcessedComment == "" {
		t.Fatalf("unexpected dynamic rows: %+v", dynamic)
	}

	n, err := s.CountStudents(ctx)
	if err != nil {
		t.Fatalf("CountStudents returned error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 student, got %d", n)
	}
}

func TestSetClusterKeyedByQuestionAndAnswer(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a, _ := s.InsertStudent(ctx, "A", "X")
	b, _ := s.InsertStudent(ctx, "B", "Y")

	q := "Оцените практику в целом (1-10)"
	if err := s.InsertStaticResponse(ctx, a, q, "8"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.InsertStaticResponse(ctx, b, q, "8"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.InsertStaticResponse(ctx, b, q, "3"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := s.SetCluster(ctx, 2, q, "8"); err != nil {
		t.Fatalf("SetCluster returned error: %v", err)
	}

	clustered, err := s.ClusteredResponses(ctx)
	if err != nil {
		t.Fatalf("ClusteredResponses returned error: %v", err)
	}
	// Both respondents share the same (question, answer) pair, so both rows
	// pick up the label.
	if len(clustered) != 2 {
		t.Fatalf("expected 2 clustered rows, got %d", len(clustered))
	}
	for _, r := range clustered {
		if r.Answer != "8" || r.Cluster == nil || *r.Cluster != 2 {
			t.Fatalf("unexpected clustered row: %+v", r)
		}
	}
}

func TestStaticResponsesForQuestions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, _ := s.InsertStudent(ctx, "A", "X")
	if err := s.InsertStaticResponse(ctx, id, "Оцените практику в целом (1-10)", "7"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.InsertStaticResponse(ctx, id, "Рекомендовали бы вы эту практику другим студентам?", "Да"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	rows, err := s.StaticResponsesForQuestions(ctx, []string{"Оцените практику в целом (1-10)"})
	if err != nil {
		t.Fatalf("StaticResponsesForQuestions returned error: %v", err)
	}
	if len(rows) != 1 || rows[0].Answer != "7" {
		t.Fatalf("unexpected rows: %+v", rows)
	}

	rows, err = s.StaticResponsesForQuestions(ctx, nil)
	if err != nil {
		t.Fatalf("empty prompt list should not error: %v", err)
	}
	if rows != nil {
		t.Fatalf("expected no rows for empty prompt list, got %+v", rows)
	}
}
