package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"scribechat/internal/config"
)

// DefaultTimeout bounds a single transcription or summarization call.
// Larger media files can take minutes to process.
const DefaultTimeout = 300 * time.Second

const defaultBaseURL = "https://api.deepgram.com"

// BackendError reports a transcription backend failure: transport error,
// non-success status, or a response the client cannot interpret.
type BackendError struct {
	Op      string
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: backend returned %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Summary is the outcome of a best-effort summarization pass. Available is
// false when the backend produced no summary, which is distinct from the
// backend literally returning an empty string.
type Summary struct {
	Text      string
	Available bool
}

// Client calls a Deepgram-style prerecorded speech API. The same endpoint
// serves transcription and, with summarize enabled, summarization.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	timeout    time.Duration
}

// NewClient builds the backend client from a provider config entry.
func NewClient(cfg config.ProviderConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "nova-2"
	}
	return &Client{
		httpClient: &http.Client{},
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		model:      model,
		timeout:    DefaultTimeout,
	}
}

// TranscribeFile sends the staged media bytes for transcription and returns
// the extracted text. Any failure is fatal to the caller's operation.
func (c *Client) TranscribeFile(ctx context.Context, path string) (string, error) {
	resp, err := c.listen(ctx, "transcribe", path, false)
	if err != nil {
		return "", err
	}
	alt, err := resp.firstAlternative("transcribe")
	if err != nil {
		return "", err
	}
	return alt.Transcript, nil
}

// SummarizeFile re-submits the staged bytes with summarization enabled.
// Callers treat both an error and an unavailable summary as non-fatal.
func (c *Client) SummarizeFile(ctx context.Context, path string) (Summary, error) {
	resp, err := c.listen(ctx, "summarize", path, true)
	if err != nil {
		return Summary{}, err
	}
	alt, err := resp.firstAlternative("summarize")
	if err != nil {
		return Summary{}, err
	}
	if alt.Summary == nil {
		return Summary{}, nil
	}
	return Summary{Text: *alt.Summary, Available: true}, nil
}

type listenResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Summary    *string `json:"summary"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
	ErrCode string `json:"err_code"`
	ErrMsg  string `json:"err_msg"`
}

func (r *listenResponse) firstAlternative(op string) (*struct {
	Transcript string  `json:"transcript"`
	Summary    *string `json:"summary"`
}, error) {
	if len(r.Results.Channels) == 0 || len(r.Results.Channels[0].Alternatives) == 0 {
		return nil, &BackendError{Op: op, Message: "invalid backend response"}
	}
	return &r.Results.Channels[0].Alternatives[0], nil
}

func (c *Client) listen(ctx context.Context, op, path string, summarize bool) (*listenResponse, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: open staged file: %w", op, err)
	}
	defer file.Close()

	query := url.Values{}
	query.Set("model", c.model)
	query.Set("smart_format", "true")
	query.Set("language", "en-US")
	if summarize {
		query.Set("summarize", "v2")
	}
	endpoint := fmt.Sprintf("%s/v1/listen?%s", c.baseURL, query.Encode())

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, endpoint, file)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &BackendError{Op: op, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &BackendError{Op: op, Status: resp.StatusCode, Message: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &BackendError{Op: op, Status: resp.StatusCode, Message: backendMessage(body)}
	}

	var parsed listenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &BackendError{Op: op, Status: resp.StatusCode, Message: "invalid backend response"}
	}
	if parsed.ErrCode != "" {
		return nil, &BackendError{Op: op, Status: resp.StatusCode, Message: parsed.ErrMsg}
	}
	return &parsed, nil
}

// backendMessage surfaces the backend's own error text verbatim when the
// body carries one, falling back to the raw body.
func backendMessage(body []byte) string {
	var payload struct {
		ErrMsg string `json:"err_msg"`
		Err    string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.ErrMsg != "" {
			return payload.ErrMsg
		}
		if payload.Err != "" {
			return payload.Err
		}
	}
	return strings.TrimSpace(string(body))
}
