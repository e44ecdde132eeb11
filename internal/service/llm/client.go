package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"scribechat/internal/config"
)

// DefaultTimeout bounds a single inference call.
const DefaultTimeout = 300 * time.Second

const defaultBaseURL = "https://api-inference.huggingface.co/models/mistralai/Mistral-7B-Instruct-v0.1"

// answerMarker separates the prompt's instructions from the completion.
// Completions echoing the prompt are trimmed to the text after its last
// occurrence.
const answerMarker = "Answer:"

// NoValidResponse is returned as the answer when the backend responds with a
// shape that is neither a candidate list nor an error object. The request
// itself still succeeds.
const NoValidResponse = "Error: No valid response from inference backend."

// BackendError reports an inference backend failure.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("inference backend returned %d: %s", e.Status, e.Message)
	}
	return "inference backend: " + e.Message
}

// Client calls a hosted text-generation inference API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	timeout    time.Duration
}

// NewClient builds the inference client from a provider config entry.
func NewClient(cfg config.ProviderConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{},
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		timeout:    DefaultTimeout,
	}
}

type generateRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters generateParameters `json:"parameters"`
}

type generateParameters struct {
	MaxLength   int     `json:"max_length"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

// Answer builds the bounded prompt from the transcript and question and
// returns the backend's completion. Single attempt, no retry.
func (c *Client) Answer(ctx context.Context, transcript, question string) (string, error) {
	prompt := fmt.Sprintf(
		"Use the transcript to answer the question.\n\nTranscript: %s\n\nQuestion: %s\n%s",
		transcript, question, answerMarker,
	)

	payload, err := json.Marshal(generateRequest{
		Inputs: prompt,
		Parameters: generateParameters{
			MaxLength:   200,
			Temperature: 0.7,
			TopP:        0.9,
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode inference request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build inference request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &BackendError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &BackendError{Status: resp.StatusCode, Message: err.Error()}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &BackendError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	return parseCompletion(body)
}

// parseCompletion interprets the three response shapes the backend is known
// to produce: a candidate list, an error object, or something else entirely.
// Only the error object fails the request.
func parseCompletion(body []byte) (string, error) {
	var candidates []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.Unmarshal(body, &candidates); err == nil && len(candidates) > 0 {
		text := strings.TrimSpace(candidates[0].GeneratedText)
		if idx := strings.LastIndex(text, answerMarker); idx >= 0 {
			return strings.TrimSpace(text[idx+len(answerMarker):]), nil
		}
		return text, nil
	}

	var errObj struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &errObj); err == nil && errObj.Error != "" {
		return "", &BackendError{Message: errObj.Error}
	}

	return NoValidResponse, nil
}
