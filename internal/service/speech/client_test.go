package speech

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"scribechat/internal/config"
)

func stageFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp3")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.ProviderConfig{BaseURL: srv.URL, APIKey: "test-key"})
}

func TestTranscribeFile(t *testing.T) {
	var gotAuth, gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"results":{"channels":[{"alternatives":[{"transcript":"hello world"}]}]}}`))
	})

	text, err := client.TranscribeFile(context.Background(), stageFixture(t, "audio"))
	if err != nil {
		t.Fatalf("TranscribeFile error: %v", err)
	}
	if text != "hello world" {
		t.Fatalf("unexpected transcript: %q", text)
	}
	if gotAuth != "Token test-key" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if gotQuery != "language=en-US&model=nova-2&smart_format=true" {
		t.Fatalf("unexpected query: %q", gotQuery)
	}
}

func TestSummarizeFile(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"results":{"channels":[{"alternatives":[{"transcript":"hello","summary":"a greeting"}]}]}}`))
	})

	sum, err := client.SummarizeFile(context.Background(), stageFixture(t, "audio"))
	if err != nil {
		t.Fatalf("SummarizeFile error: %v", err)
	}
	if !sum.Available || sum.Text != "a greeting" {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if gotQuery != "language=en-US&model=nova-2&smart_format=true&summarize=v2" {
		t.Fatalf("unexpected query: %q", gotQuery)
	}
}

func TestSummarizeFileMissingSummary(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":{"channels":[{"alternatives":[{"transcript":"hello"}]}]}}`))
	})

	sum, err := client.SummarizeFile(context.Background(), stageFixture(t, "audio"))
	if err != nil {
		t.Fatalf("SummarizeFile error: %v", err)
	}
	if sum.Available {
		t.Fatalf("summary must be unavailable when the field is absent: %+v", sum)
	}
}

func TestTranscribeFileBackendStatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"err_msg":"unsupported codec"}`))
	})

	_, err := client.TranscribeFile(context.Background(), stageFixture(t, "audio"))
	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("expected BackendError, got %v", err)
	}
	if backendErr.Status != http.StatusBadRequest || backendErr.Message != "unsupported codec" {
		t.Fatalf("unexpected backend error: %+v", backendErr)
	}
}

func TestTranscribeFileErrorBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"err_code":"INVALID_AUTH","err_msg":"bad key"}`))
	})

	_, err := client.TranscribeFile(context.Background(), stageFixture(t, "audio"))
	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("expected BackendError, got %v", err)
	}
	if backendErr.Message != "bad key" {
		t.Fatalf("unexpected message: %q", backendErr.Message)
	}
}

func TestTranscribeFileInvalidJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway</html>"))
	})

	_, err := client.TranscribeFile(context.Background(), stageFixture(t, "audio"))
	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("expected BackendError, got %v", err)
	}
	if backendErr.Message != "invalid backend response" {
		t.Fatalf("unexpected message: %q", backendErr.Message)
	}
}

func TestTranscribeFileEmptyChannels(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":{"channels":[]}}`))
	})

	_, err := client.TranscribeFile(context.Background(), stageFixture(t, "audio"))
	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("expected BackendError, got %v", err)
	}
}
