package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"datalens/domain/analysis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFindings() analysis.Findings {
	return analysis.Findings{
		RowCount:              1200,
		ColumnCount:           8,
		NumericColumns:        5,
		CategoricalColumns:    2,
		MissingCellPercentage: 3.2,
		TargetColumn:          "churned",
		ProblemType:           analysis.ProblemClassification,
		TopModel:              "Random Forest",
		SkewedColumns:         []string{"income"},
		KeyFindings:           []string{"Excellent data quality"},
		Recommendations:       []string{"Start with Random Forest"},
		Difficulty:            "beginner",
		EstimatedEffort:       "30-60 minutes",
	}
}

func TestNarratorSendsFindingsOnly(t *testing.T) {
	client := &MockLLMClient{Response: "```\nA tidy dataset of 1200 rows.\n```"}
	n := NewNarratorWithClient(Config{Model: "test-model"}, client)

	summary, err := n.Summarize(context.Background(), sampleFindings())
	require.NoError(t, err)
	assert.Equal(t, "A tidy dataset of 1200 rows.", summary)
	assert.Equal(t, "llm:test-model", n.Name())

	require.Len(t, client.Prompts, 1)
	assert.Contains(t, client.Prompts[0], `"target_column": "churned"`)
	assert.Contains(t, client.Prompts[0], `"skewed_columns"`)
}

func TestNarratorErrors(t *testing.T) {
	t.Run("client error", func(t *testing.T) {
		n := NewNarratorWithClient(Config{Model: "m"}, &MockLLMClient{Error: errors.New("rate limited")})
		_, err := n.Summarize(context.Background(), sampleFindings())
		assert.ErrorContains(t, err, "rate limited")
	})

	t.Run("blank response", func(t *testing.T) {
		n := NewNarratorWithClient(Config{Model: "m"}, &MockLLMClient{Response: "```\n```"})
		_, err := n.Summarize(context.Background(), sampleFindings())
		assert.Error(t, err)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		n := NewNarratorWithClient(Config{Model: "m"}, &MockLLMClient{})
		_, err := n.Summarize(ctx, sampleFindings())
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestOpenAIClientChatCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body struct {
			Model     string `json:"model"`
			MaxTokens int    `json:"max_tokens"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-test", body.Model)
		assert.Equal(t, 64, body.MaxTokens)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hello"}}]}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{APIKey: "secret", BaseURL: srv.URL + "/", Timeout: 5 * time.Second})
	require.NoError(t, err)

	out, err := client.ChatCompletion(context.Background(), "gpt-test", "hi", 64)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestOpenAIClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)

	_, err = client.ChatCompletion(context.Background(), "m", "hi", 0)
	assert.ErrorContains(t, err, "429")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.Retryable())
}

func TestOpenAIClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}],"usage":{"prompt_tokens":3,"completion_tokens":1}}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL, Timeout: 5 * time.Second, MaxRetries: 1})
	require.NoError(t, err)

	out, err := client.ChatCompletion(context.Background(), "m", "hi", 0)
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.EqualValues(t, 2, calls.Load())
}

func TestOpenAIClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL, Timeout: 5 * time.Second, MaxRetries: 3})
	require.NoError(t, err)

	_, err = client.ChatCompletion(context.Background(), "m", "hi", 0)
	assert.ErrorContains(t, err, "401")
	assert.EqualValues(t, 1, calls.Load())
}
