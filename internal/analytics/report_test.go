package analytics

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const reportTemplatePath = "../../templates/survey_report_template.html"

func TestRenderReport(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, _ := s.InsertStudent(ctx, "Иванов Иван", "ИТ")
	q := "Оцените практику в целом (1-10)"
	if err := s.InsertStaticResponse(ctx, id, q, "8"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.SetCluster(ctx, 1, q, "8"); err != nil {
		t.Fatalf("set cluster: %v", err)
	}
	if err := s.InsertDynamicResponse(ctx, id, "Что можно улучшить?", "Больше встреч", "Ключевые моменты: встречи"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	out := filepath.Join(t.TempDir(), "survey_report.html")
	if err := RenderReport(ctx, s, reportTemplatePath, out); err != nil {
		t.Fatalf("RenderReport returned error: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		t.Fatalf("parse report: %v", err)
	}

	clusterRows := doc.Find("#clusters tr").Length()
	if clusterRows != 2 { // header + one data row
		t.Fatalf("expected 2 cluster table rows, got %d", clusterRows)
	}
	commentRows := doc.Find("#comments tr").Length()
	if commentRows != 2 {
		t.Fatalf("expected 2 comment table rows, got %d", commentRows)
	}

	if html, _ := doc.Find("#clusters").Html(); !strings.Contains(html, "8") {
		t.Fatalf("cluster table missing the answer: %s", html)
	}
	if html, _ := doc.Find("#comments").Html(); !strings.Contains(html, "Ключевые моменты: встречи") {
		t.Fatalf("comment table missing the summary: %s", html)
	}
}

func TestRenderReport_OverwritesPreviousRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	out := filepath.Join(t.TempDir(), "survey_report.html")
	if err := os.WriteFile(out, []byte("stale"), 0o644); err != nil {
		t.Fatalf("seed stale report: %v", err)
	}

	if err := RenderReport(ctx, s, reportTemplatePath, out); err != nil {
		t.Fatalf("RenderReport returned error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if strings.Contains(string(data), "stale") {
		t.Fatalf("report was not overwritten")
	}
	if !strings.Contains(string(data), "Отчет по опросу") {
		t.Fatalf("report missing template content")
	}
}

func TestRenderReport_MissingTemplate(t *testing.T) {
	s := openTestStore(t)
	out := filepath.Join(t.TempDir(), "survey_report.html")
	if err := RenderReport(context.Background(), s, "no-such-template.html", out); err == nil {
		t.Fatalf("expected error for missing template")
	}
}
