// GPN practice-survey bot: walks each respondent through a fixed
// questionnaire over the chat gateway, stores the answers, and regenerates
// the rating clusters, pie charts and HTML report on every startup.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/4TRICK/GPN/internal/config"
	"github.com/4TRICK/GPN/internal/enrich"
	"github.com/4TRICK/GPN/internal/flow"
	"github.com/4TRICK/GPN/internal/store"
	"github.com/4TRICK/GPN/internal/survey"
)

const logPrefix = "[survey-bot]"

func main() {
	config.LoadDotEnv(logPrefix)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("%s config: %v", logPrefix, err)
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("%s open store: %v", logPrefix, err)
	}
	defer st.Close()

	enricher, err := newEnricher(cfg)
	if err != nil {
		log.Fatalf("%s enrichment client: %v", logPrefix, err)
	}

	controller, err := flow.New(survey.Questions, st, enricher, logPrefix)
	if err != nil {
		log.Fatalf("%s controller: %v", logPrefix, err)
	}

	runner := NewSurveyRunner(cfg, st, controller, logPrefix)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runner.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("%s runner stopped: %v", logPrefix, err)
	}
	log.Printf("%s shutting down", logPrefix)
}

func newEnricher(cfg config.Config) (enrich.Enricher, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return enrich.NewOpenAIClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.EnrichTimeout)
	default:
		return enrich.NewYandexClient(cfg.YandexURL, cfg.YandexAPIKey, cfg.YandexFolderID, enrich.YandexOptions{
			HTTPTimeout: cfg.EnrichTimeout,
			MaxTokens:   cfg.EnrichMaxTokens,
		})
	}
}
