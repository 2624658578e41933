// Package config loads the bot configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Provider selects the comment-enrichment backend.
type Provider string

const (
	ProviderYandex Provider = "yandex"
	ProviderOpenAI Provider = "openai"
)

// Config is the full runtime configuration of the survey bot.
type Config struct {
	// Transport.
	BotToken   string
	GatewayURL string

	// Answer store.
	DatabasePath string

	// Comment enrichment.
	Provider        Provider
	YandexAPIKey    string
	YandexFolderID  string
	YandexURL       string
	LLMBaseURL      string
	LLMAPIKey       string
	LLMModel        string
	EnrichTimeout   time.Duration
	EnrichMaxTokens int

	// Analytics output.
	ChartsDir      string
	ReportTemplate string
	ReportPath     string
}

const (
	defaultGatewayURL = "http://localhost:3000"
	defaultYandexURL  = "https://llm.api.cloud.yandex.net/foundationModels/v1/completion"

	defaultDatabasePath   = "survey_bot.db"
	defaultChartsDir      = "survey_bot/charts"
	defaultReportTemplate = "templates/survey_report_template.html"
	defaultReportPath     = "survey_report.html"

	defaultEnrichTimeout   = 30 * time.Second
	defaultEnrichMaxTokens = 2000
)

// Load reads configuration from environment variables. BOT_TOKEN is always
// required; the enrichment provider decides which credentials are.
func Load() (Config, error) {
	cfg := Config{
		BotToken:     strings.TrimSpace(os.Getenv("BOT_TOKEN")),
		GatewayURL:   strings.TrimSpace(os.Getenv("GATEWAY_URL")),
		DatabasePath: strings.TrimSpace(os.Getenv("DATABASE_PATH")),

		YandexAPIKey:   strings.TrimSpace(os.Getenv("YANDEX_GPT_API_KEY")),
		YandexFolderID: strings.TrimSpace(os.Getenv("YANDEX_FOLDER_ID")),
		YandexURL:      strings.TrimSpace(os.Getenv("YANDEX_GPT_URL")),
		LLMBaseURL:     strings.TrimSpace(os.Getenv("LLM_BASE_URL")),
		LLMAPIKey:      strings.TrimSpace(os.Getenv("LLM_API_KEY")),
		LLMModel:       strings.TrimSpace(os.Getenv("LLM_MODEL")),

		ChartsDir:      strings.TrimSpace(os.Getenv("CHARTS_DIR")),
		ReportTemplate: strings.TrimSpace(os.Getenv("REPORT_TEMPLATE")),
		ReportPath:     strings.TrimSpace(os.Getenv("REPORT_PATH")),
	}

	if cfg.BotToken == "" {
		return Config{}, fmt.Errorf("BOT_TOKEN is required")
	}

	if cfg.GatewayURL == "" {
		cfg.GatewayURL = defaultGatewayURL
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = defaultDatabasePath
	}
	if cfg.YandexURL == "" {
		cfg.YandexURL = defaultYandexURL
	}
	if cfg.ChartsDir == "" {
		cfg.ChartsDir = defaultChartsDir
	}
	if cfg.ReportTemplate == "" {
		cfg.ReportTemplate = defaultReportTemplate
	}
	if cfg.ReportPath == "" {
		cfg.ReportPath = defaultReportPath
	}

	switch p := strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER"))); p {
	case "", string(ProviderYandex):
		cfg.Provider = ProviderYandex
		if cfg.YandexAPIKey == "" {
			return Config{}, fmt.Errorf("YANDEX_GPT_API_KEY is required")
		}
		if cfg.YandexFolderID == "" {
			return Config{}, fmt.Errorf("YANDEX_FOLDER_ID is required")
		}
	case string(ProviderOpenAI):
		cfg.Provider = ProviderOpenAI
		if cfg.LLMAPIKey == "" {
			return Config{}, fmt.Errorf("LLM_API_KEY is required")
		}
		if cfg.LLMModel == "" {
			return Config{}, fmt.Errorf("LLM_MODEL is required")
		}
	default:
		return Config{}, fmt.Errorf("invalid LLM_PROVIDER: %q", p)
	}

	cfg.EnrichTimeout = defaultEnrichTimeout
	if v := strings.TrimSpace(os.Getenv("ENRICH_TIMEOUT_SECONDS")); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return Config{}, fmt.Errorf("invalid ENRICH_TIMEOUT_SECONDS: %q", v)
		}
		cfg.EnrichTimeout = time.Duration(secs) * time.Second
	}

	cfg.EnrichMaxTokens = defaultEnrichMaxTokens
	if v := strings.TrimSpace(os.Getenv("ENRICH_MAX_TOKENS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid ENRICH_MAX_TOKENS: %q", v)
		}
		cfg.EnrichMaxTokens = n
	}

	return cfg, nil
}
