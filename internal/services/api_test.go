package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/prepx/internal/shared"
	tu "github.com/desertthunder/prepx/internal/testing"
	"golang.org/x/time/rate"
)

func TestAPIService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			customClient := &http.Client{}
			srv := NewAPIService("http://example.com/", customClient)

			if srv.BaseURL() != "http://example.com" {
				t.Errorf("expected baseURL 'http://example.com', got %s", srv.BaseURL())
			}
			if srv.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
		})

		t.Run("With Empty BaseURL", func(t *testing.T) {
			srv := NewAPIService("", nil)

			if srv.BaseURL() != defaultBaseURL {
				t.Errorf("expected default baseURL %s, got %s", defaultBaseURL, srv.BaseURL())
			}
			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})

		t.Run("SetClient", func(t *testing.T) {
			srv := NewAPIService("", nil)
			client := &http.Client{}
			srv.SetClient(client)
			if srv.httpClient != client {
				t.Error("expected client to be replaced")
			}
			srv.SetClient(nil)
			if srv.httpClient != http.DefaultClient {
				t.Error("expected nil client to fall back to http.DefaultClient")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("Successful Request With JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				if r.URL.Path != "/test" {
					t.Errorf("expected path '/test', got %s", r.URL.Path)
				}

				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]string{"status": "success"})
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, nil).Get(context.Background(), "test")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.OK() {
				t.Errorf("expected status 200, got %d", resp.StatusCode)
			}
			if !resp.IsJSON || resp.JSONData == nil {
				t.Error("expected response to be JSON")
			}
		})

		t.Run("Successful Request With Non-JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/plain")
				w.Write([]byte("plain text response"))
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, nil).Get(context.Background(), "/test")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.IsJSON {
				t.Error("expected response to not be JSON")
			}
			if string(resp.Body) != "plain text response" {
				t.Errorf("expected body 'plain text response', got %s", string(resp.Body))
			}
		})

		t.Run("Multipart Body Is Not Parsed As JSON", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "multipart/mixed; boundary=x")
				w.Write([]byte(`{"looks":"like json"}`))
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, nil).Get(context.Background(), "/test")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.IsJSON {
				t.Error("expected multipart body to be left raw")
			}
		})

		t.Run("Failed Request Creation", func(t *testing.T) {
			_, err := NewAPIService("http://example.com", nil).Get(context.Background(), "/test\x00invalid")
			if err == nil || !strings.Contains(err.Error(), "failed to create request") {
				t.Errorf("expected 'failed to create request' error, got %v", err)
			}
		})

		t.Run("Failed HTTP Request", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed"))}

			_, err := NewAPIService("http://example.com", client).Get(context.Background(), "/test")
			if err == nil || !strings.Contains(err.Error(), "request failed") {
				t.Errorf("expected 'request failed' error, got %v", err)
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     http.Header{},
				}, nil),
			}

			_, err := NewAPIService("http://example.com", client).Get(context.Background(), "/test")
			if err == nil || !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected 'failed to read response' error, got %v", err)
			}
		})

		t.Run("With Canceled Context", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			defer server.Close()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			if _, err := NewAPIService(server.URL, nil).Get(ctx, "/test"); err == nil {
				t.Error("expected error for canceled context")
			}
		})

		t.Run("Absolute URL Bypasses Base", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("ok"))
			}))
			defer server.Close()

			resp, err := NewAPIService("http://unreachable.invalid", nil).Get(context.Background(), server.URL+"/x")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if string(resp.Body) != "ok" {
				t.Errorf("unexpected body %q", resp.Body)
			}
		})
	})

	t.Run("Post", func(t *testing.T) {
		t.Run("Sends JSON Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST method, got %s", r.Method)
				}
				if r.Header.Get("Content-Type") != "application/json" {
					t.Errorf("expected Content-Type 'application/json', got %s", r.Header.Get("Content-Type"))
				}
				body, _ := io.ReadAll(r.Body)
				w.Write(body)
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, nil).PostJSON(context.Background(), "/echo", map[string]int{"n": 1})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if string(resp.Body) != `{"n":1}` {
				t.Errorf("expected echoed body, got %s", resp.Body)
			}
		})

		t.Run("Unencodable Payload", func(t *testing.T) {
			_, err := NewAPIService("http://example.com", nil).PostJSON(context.Background(), "/x", make(chan int))
			if err == nil || !strings.Contains(err.Error(), "failed to encode request") {
				t.Errorf("expected encode error, got %v", err)
			}
		})
	})

	t.Run("Limiter", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer server.Close()

		srv := NewAPIService(server.URL, nil).WithLimiter(rate.NewLimiter(rate.Every(time.Hour), 1))
		if _, err := srv.Get(context.Background(), "/"); err != nil {
			t.Fatalf("expected first request to use the burst, got %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		if _, err := srv.Get(ctx, "/"); err == nil {
			t.Error("expected second request to be held back by the limiter")
		}
	})
}

func TestAPIResponse(t *testing.T) {
	t.Run("ErrorMessage", func(t *testing.T) {
		tc := []struct {
			name string
			resp *APIResponse
			want string
		}{
			{
				name: "message field",
				resp: &APIResponse{StatusCode: 400, IsJSON: true, JSONData: map[string]any{"message": "bad answer", "detail": "x"}},
				want: "bad answer",
			},
			{
				name: "detail field",
				resp: &APIResponse{StatusCode: 422, IsJSON: true, JSONData: map[string]any{"detail": "missing text"}},
				want: "missing text",
			},
			{
				name: "error field",
				resp: &APIResponse{StatusCode: 500, IsJSON: true, JSONData: map[string]any{"error": "boom"}},
				want: "boom",
			},
			{
				name: "plain body",
				resp: &APIResponse{StatusCode: 502, Body: []byte(" upstream down \n")},
				want: "upstream down",
			},
			{
				name: "json without known fields",
				resp: &APIResponse{StatusCode: 404, Body: []byte(`{"x":1}`), IsJSON: true, JSONData: map[string]any{"x": 1.0}},
				want: "Not Found",
			},
			{
				name: "empty body",
				resp: &APIResponse{StatusCode: 500},
				want: "Internal Server Error",
			},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if got := tt.resp.ErrorMessage(); got != tt.want {
					t.Errorf("expected %q, got %q", tt.want, got)
				}
			})
		}
	})

	t.Run("Err", func(t *testing.T) {
		if err := (&APIResponse{StatusCode: 204}).Err(); err != nil {
			t.Errorf("expected nil for 2xx, got %v", err)
		}

		tc := []struct {
			status int
			want   error
		}{
			{status: 401, want: shared.ErrNotAuthenticated},
			{status: 503, want: shared.ErrServiceUnavailable},
			{status: 400, want: shared.ErrAPIRequest},
		}
		for _, tt := range tc {
			err := (&APIResponse{StatusCode: tt.status}).Err()
			if !errors.Is(err, tt.want) {
				t.Errorf("status %d: expected %v, got %v", tt.status, tt.want, err)
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.StatusCode != tt.status {
				t.Errorf("status %d: expected *APIError, got %v", tt.status, err)
			}
		}
	})

	t.Run("decodeData", func(t *testing.T) {
		resp := &APIResponse{StatusCode: 200, Body: []byte(`{"message":"ok","data":{"id":"q1"}}`)}
		data, err := decodeData[struct {
			ID string `json:"id"`
		}](resp)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if data.ID != "q1" {
			t.Errorf("expected id q1, got %s", data.ID)
		}

		if _, err := decodeData[map[string]any](&APIResponse{StatusCode: 200, Body: []byte("nope")}); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest for bad body, got %v", err)
		}
	})
}
