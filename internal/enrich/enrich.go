// Package enrich sends free-text survey comments to an external
// summarization service and returns the extracted key points.
package enrich

import "context"

// FailureSentinel is stored in place of a summary when enrichment fails.
// Finalize never aborts on enrichment errors.
const FailureSentinel = "Ошибка обработки"

// SummaryPrompt prefixes every comment sent to the model.
const SummaryPrompt = "Обработай комментарий и выдели ключевые моменты:\n"

// Enricher summarizes one free-text comment.
type Enricher interface {
	Summarize(ctx context.Context, comment string) (string, error)
}

// SummarizeOrSentinel runs e and substitutes the failure sentinel on any
// error or empty result.
func SummarizeOrSentinel(ctx context.Context, e Enricher, comment string) string {
	if e == nil {
		return FailureSentinel
	}
	out, err := e.Summarize(ctx, comment)
	if err != nil || out == "" {
		return FailureSentinel
	}
	return out
}
