package analytics

import (
	"context"
	"fmt"
	"html/template"
	"os"

	"github.com/4TRICK/GPN/internal/store"
)

// ReportStore is the slice of the answer store the report job needs.
type ReportStore interface {
	ClusteredResponses(ctx context.Context) ([]store.StaticResponse, error)
	DynamicResponses(ctx context.Context) ([]store.DynamicResponse, error)
}

// ClusterRow is one clustered fixed-form answer as the template sees it.
type ClusterRow struct {
	Question string
	Answer   string
	Cluster  int64
}

// ReportData is what the report template renders.
type ReportData struct {
	Clusters []ClusterRow
	Comments []store.DynamicResponse
}

// RenderReport reads the template at templatePath, fills it with every
// clustered fixed-form row and every enriched comment, and overwrites
// outPath.
func RenderReport(ctx context.Context, st ReportStore, templatePath, outPath string) error {
	clusters, err := st.ClusteredResponses(ctx)
	if err != nil {
		return err
	}
	comments, err := st.DynamicResponses(ctx)
	if err != nil {
		return err
	}

	data := ReportData{Comments: comments}
	for _, r := range clusters {
		row := ClusterRow{Question: r.Question, Answer: r.Answer}
		if r.Cluster != nil {
			row.Cluster = *r.Cluster
		}
		data.Clusters = append(data.Clusters, row)
	}

	tmpl, err := template.ParseFiles(templatePath)
	if err != nil {
		return fmt.Errorf("parse report template: %w", err)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := tmpl.Execute(f, data); err != nil {
		f.Close()
		return fmt.Errorf("render report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report file: %w", err)
	}
	return nil
}
