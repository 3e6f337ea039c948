package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"datalens/domain/analysis"
	"datalens/domain/core"
	"datalens/ports"
)

// Narrator implements ports.Narrator with a chat-completion model.
type Narrator struct {
	config Config
	client ports.LLMClient
}

var _ ports.Narrator = (*Narrator)(nil)

// NewNarrator builds a narrator backed by the OpenAI-compatible client.
func NewNarrator(config Config) (*Narrator, error) {
	client, err := NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return NewNarratorWithClient(config, client), nil
}

// NewNarratorWithClient wires an existing client, used by tests.
func NewNarratorWithClient(config Config, client ports.LLMClient) *Narrator {
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = DefaultConfig().MaxTokens
	}
	return &Narrator{config: config, client: client}
}

func (n *Narrator) Name() string { return "llm:" + n.config.Model }

// Summarize asks the model for a short narrative over the findings. Only the
// structured findings are sent, never raw rows.
func (n *Narrator) Summarize(ctx context.Context, findings analysis.Findings) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, n.config.Timeout)
	defer cancel()

	prompt, err := BuildPrompt(findings)
	if err != nil {
		return "", err
	}
	promptHash := core.NewHash([]byte(prompt))

	start := time.Now()
	response, err := n.client.ChatCompletion(ctx, n.config.Model, prompt, n.config.MaxTokens)
	if err != nil {
		return "", fmt.Errorf("LLM call failed: %w", err)
	}
	summary := cleanResponse(response)
	if summary == "" {
		return "", fmt.Errorf("LLM returned an empty summary")
	}
	log.Printf("[Narrator] %s summarized findings in %s (prompt %s)", n.config.Model,
		time.Since(start).Round(time.Millisecond), promptHash.Short())
	return summary, nil
}

// BuildPrompt renders the findings as JSON inside fixed instructions.
func BuildPrompt(findings analysis.Findings) (string, error) {
	jsonData, err := json.MarshalIndent(findings, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal prompt data: %w", err)
	}

	prompt := fmt.Sprintf(`You are a senior data scientist writing the executive summary of a dataset analysis report.

Analysis findings:
%s

Requirements:
- Write 3 to 5 sentences of plain prose for a technical reader
- Mention dataset size, data quality, and the most important preprocessing step
- If a target column and problem type are given, name the suggested starting model
- Refer only to columns that appear in the findings
- Do not invent numbers that are not in the findings

Output ONLY the summary text, no headings, lists, or code blocks.`, string(jsonData))
	return prompt, nil
}

// cleanResponse strips code fences and surrounding whitespace.
func cleanResponse(response string) string {
	text := strings.TrimSpace(response)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if nl := strings.Index(text, "\n"); nl >= 0 {
			text = text[nl+1:]
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return strings.TrimSpace(text)
}
