package llm

import "time"

// Config holds LLM adapter configuration
type Config struct {
	Model       string        // e.g., "gpt-4.1-mini"
	APIKey      string        // OpenAI API key
	BaseURL     string        // Optional override (default: https://api.openai.com/v1)
	Temperature float64       // 0.0-1.0, lower = more deterministic
	MaxTokens   int           // Max tokens in response
	Timeout     time.Duration // Request timeout
	MaxRetries  int           // Extra attempts on 429 and 5xx answers
}

// DefaultConfig returns conservative settings for report narration.
func DefaultConfig() Config {
	return Config{
		Model:       "gpt-4.1-mini",
		Temperature: 0.2,
		MaxTokens:   600,
		Timeout:     30 * time.Second,
		MaxRetries:  2,
	}
}
