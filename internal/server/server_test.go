package server

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/prepx/internal/shared"
	"golang.org/x/oauth2"
)

type mockExchanger struct {
	mu    sync.Mutex
	codes []string
	err   error
}

func (m *mockExchanger) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes = append(m.codes, code)
	if m.err != nil {
		return nil, m.err
	}
	return &oauth2.Token{AccessToken: "token-for-" + code}, nil
}

func TestOAuthHandler(t *testing.T) {
	t.Run("successful callback", func(t *testing.T) {
		ex := &mockExchanger{}
		h := NewOAuthHandler(ex, "st-1", "")

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/callback?state=st-1&code=abc", nil))

		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "Logged in") {
			t.Errorf("expected success page, got %s", w.Body.String())
		}

		res := <-h.Result()
		if res.Error() != nil || res.Token.AccessToken != "token-for-abc" {
			t.Errorf("unexpected result %+v", res)
		}
		if _, open := <-h.Result(); open {
			t.Error("expected result channel to be closed")
		}
	})

	t.Run("invalid state", func(t *testing.T) {
		ex := &mockExchanger{}
		h := NewOAuthHandler(ex, "st-1", "/callback")

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/callback?state=other&code=abc", nil))

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
		res := <-h.Result()
		if !errors.Is(res.Error(), shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", res.Error())
		}
		if len(ex.codes) != 0 {
			t.Error("expected no exchange for invalid state")
		}
	})

	t.Run("provider error", func(t *testing.T) {
		h := NewOAuthHandler(&mockExchanger{}, "st-1", "")

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/callback?state=st-1&error=access_denied&error_description=user+said+no", nil))

		res := <-h.Result()
		if res.Error() == nil || !strings.Contains(res.Error().Error(), "access_denied - user said no") {
			t.Errorf("expected provider error, got %v", res.Error())
		}
		if !strings.Contains(w.Body.String(), "Login failed") {
			t.Errorf("expected failure page, got %s", w.Body.String())
		}
	})

	t.Run("exchange failure", func(t *testing.T) {
		h := NewOAuthHandler(&mockExchanger{err: shared.ErrAuthFailed}, "st-1", "")

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/callback?state=st-1&code=abc", nil))

		if w.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", w.Code)
		}
		if res := <-h.Result(); !errors.Is(res.Error(), shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", res.Error())
		}
	})

	t.Run("only first callback is processed", func(t *testing.T) {
		ex := &mockExchanger{}
		h := NewOAuthHandler(ex, "st-1", "")

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?state=st-1&code=one", nil))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/callback?state=st-1&code=two", nil))

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected replay to be rejected, got %d", w.Code)
		}
		if len(ex.codes) != 1 {
			t.Errorf("expected one exchange, got %d", len(ex.codes))
		}
	})

	t.Run("page escapes messages", func(t *testing.T) {
		h := NewOAuthHandler(&mockExchanger{}, "st-1", "")

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/callback?state=st-1&error=%3Cscript%3E", nil))
		if strings.Contains(w.Body.String(), "<script>") {
			t.Error("expected error text to be escaped")
		}
	})

	t.Run("custom path", func(t *testing.T) {
		h := NewOAuthHandler(&mockExchanger{}, "s", "/oauth/done")
		if routes := h.Routes(); len(routes) != 1 || routes[0] != "/oauth/done" {
			t.Errorf("unexpected routes %v", routes)
		}
	})

	t.Run("state tokens are unique", func(t *testing.T) {
		if NewState() == NewState() {
			t.Error("expected distinct state tokens")
		}
	})
}

func TestServe(t *testing.T) {
	t.Run("returns token from callback", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}
		h := NewOAuthHandler(&mockExchanger{}, "st-1", "/callback")

		go func() {
			resp, err := http.Get("http://" + ln.Addr().String() + "/callback?state=st-1&code=xyz")
			if err == nil {
				resp.Body.Close()
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		token, err := Serve(ctx, ln, h)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if token.AccessToken != "token-for-xyz" {
			t.Errorf("unexpected token %s", token.AccessToken)
		}
	})

	t.Run("times out without callback", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := WaitForCallback(ctx, "127.0.0.1:0", NewOAuthHandler(&mockExchanger{}, "s", ""))
		if !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})

	t.Run("address in use", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}
		defer ln.Close()

		if _, err := WaitForCallback(context.Background(), ln.Addr().String(), NewOAuthHandler(&mockExchanger{}, "s", "")); err == nil {
			t.Error("expected listen error")
		}
	})
}

func TestCallbackMux(t *testing.T) {
	h := NewOAuthHandler(&mockExchanger{}, "s", "/done")

	t.Run("only GET on the callback path", func(t *testing.T) {
		mux := callbackMux(h)

		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/done", nil))
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", w.Code)
		}

		w = httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", w.Code)
		}
	})

	t.Run("middleware order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}), mark("first"), mark("second"))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if strings.Join(order, ",") != "first,second,handler" {
			t.Errorf("unexpected order %v", order)
		}
	})
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)

	t.Run("logging omits query", func(t *testing.T) {
		buf.Reset()
		h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?code=secret", nil))

		out := buf.String()
		if !strings.Contains(out, "request failed") || !strings.Contains(out, "418") {
			t.Errorf("expected warning with status, got %q", out)
		}
		if strings.Contains(out, "secret") {
			t.Error("expected query string to be omitted")
		}
	})

	t.Run("recover", func(t *testing.T) {
		buf.Reset()
		h := Recover(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", w.Code)
		}
		if !strings.Contains(buf.String(), "boom") {
			t.Error("expected panic to be logged")
		}
	})
}
