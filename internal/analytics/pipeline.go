package analytics

import (
	"context"
	"log"
	"os"
)

// PipelineStore is the full store surface required by the startup pipeline.
type PipelineStore interface {
	ClusterStore
	ChartStore
	ReportStore
}

// RunPipeline runs clustering, chart rendering and report rendering in
// order. Failures are logged and skipped: a broken batch job must never
// block the conversation loop from starting.
func RunPipeline(ctx context.Context, st PipelineStore, ratingPrompts []string, chartsDir, templatePath, outPath, logPrefix string) {
	if err := os.MkdirAll(chartsDir, 0o755); err != nil {
		log.Printf("%s chart dir: %v", logPrefix, err)
	}
	if err := ClusterRatings(ctx, st, ratingPrompts); err != nil {
		log.Printf("%s rating clustering failed: %v", logPrefix, err)
	}
	if err := RenderCharts(ctx, st, chartsDir); err != nil {
		log.Printf("%s chart rendering failed: %v", logPrefix, err)
	}
	if err := RenderReport(ctx, st, templatePath, outPath); err != nil {
		log.Printf("%s report rendering failed: %v", logPrefix, err)
	}
}
