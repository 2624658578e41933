package analytics

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/4TRICK/GPN/internal/store"
)

// ChartStore is the slice of the answer store the chart job needs.
type ChartStore interface {
	StaticResponses(ctx context.Context) ([]store.StaticResponse, error)
}

// RenderCharts draws one pie chart per distinct fixed-form question, with a
// slice per distinct answer, and writes each as PNG under dir keyed by the
// question text.
func RenderCharts(ctx context.Context, st ChartStore, dir string) error {
	rows, err := st.StaticResponses(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create charts dir: %w", err)
	}

	counts := map[string]map[string]int{}
	var questions []string
	for _, r := range rows {
		byAnswer, ok := counts[r.Question]
		if !ok {
			byAnswer = map[string]int{}
			counts[r.Question] = byAnswer
			questions = append(questions, r.Question)
		}
		byAnswer[r.Answer]++
	}

	for _, question := range questions {
		byAnswer := counts[question]
		answers := make([]string, 0, len(byAnswer))
		for a := range byAnswer {
			answers = append(answers, a)
		}
		sort.Strings(answers)

		values := make([]chart.Value, 0, len(answers))
		for _, a := range answers {
			values = append(values, chart.Value{
				Label: a,
				Value: float64(byAnswer[a]),
			})
		}

		pie := chart.PieChart{
			Title:  question,
			Width:  800,
			Height: 600,
			Values: values,
		}

		path := filepath.Join(dir, question+".png")
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create chart file: %w", err)
		}
		if err := pie.Render(chart.PNG, f); err != nil {
			f.Close()
			return fmt.Errorf("render chart for %q: %w", question, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close chart file: %w", err)
		}
	}
	return nil
}
