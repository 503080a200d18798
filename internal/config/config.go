package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Patch modes for AI file suggestions
const (
	PatchModeAdvisory = "advisory"
	PatchModeApply    = "apply"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	// Logging
	LogDir      string
	LogMaxFiles int
	// AI providers, tried in order when their credential is present
	AIProviders     []string
	AIProxyURL      string
	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIBaseURL   string
	AnthropicAPIKey string
	AnthropicModel  string
	GeminiAPIKey    string
	GeminiModel     string
	AIRulesFile     string
	// AI timing and limits
	ProviderTimeout  time.Duration
	ResponseDeadline time.Duration
	AIRateLimit      float64
	AIRateBurst      int
	// PatchMode decides whether AI file patches are merged server-side
	PatchMode string
	// Store
	MessageRetention int
	ImportMaxBytes   int64
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:5173"),
		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getEnvInt("LOG_MAX_FILES", 10),
		// AI Configuration
		AIProviders:     splitList(getEnv("AI_PROVIDERS", "proxy,openai,anthropic,gemini")),
		AIProxyURL:      strings.TrimRight(getEnv("AI_PROXY_URL", ""), "/"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-haiku-4-5-20251001"),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		AIRulesFile:     getEnv("AI_RULES_FILE", ""),
		// Timeouts
		ProviderTimeout:  getEnvDuration("AI_PROVIDER_TIMEOUT", 30*time.Second),
		ResponseDeadline: getEnvDuration("AI_RESPONSE_DEADLINE", 45*time.Second),
		AIRateLimit:      getEnvFloat("AI_RATE_LIMIT", 2),
		AIRateBurst:      getEnvInt("AI_RATE_BURST", 5),
		PatchMode:        getPatchMode(getEnv("AI_PATCH_MODE", PatchModeAdvisory)),
		MessageRetention: getEnvInt("MESSAGE_RETENTION", 0),
		ImportMaxBytes:   int64(getEnvInt("IMPORT_MAX_BYTES", DefaultImportMaxBytes)),
	}
}

// getPatchMode normalizes AI_PATCH_MODE, falling back to advisory for unknown values
func getPatchMode(mode string) string {
	if strings.EqualFold(mode, PatchModeApply) {
		return PatchModeApply
	}
	return PatchModeAdvisory
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	f, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return f
}

// getEnvDuration accepts Go durations ("30s") or plain seconds ("30")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
