package apihttp

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"
)

type recordingRenderer struct {
	calls int
}

func (r *recordingRenderer) renderPanic(w http.ResponseWriter, _ *http.Request, _ any, _ []byte) {
	r.calls++
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = io.WriteString(w, "error page")
}

func TestRecoveryLeavesPartialPageAlone(t *testing.T) {
	renderer := &recordingRenderer{}
	handler := recoveryMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil)), renderer,
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "<html><body>")
			panic("template failed halfway")
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=x", nil))

	if renderer.calls != 0 {
		t.Fatalf("expected error page to be skipped after a partial write")
	}
	if rec.Code != http.StatusOK || rec.Body.String() != "<html><body>" {
		t.Fatalf("unexpected response: %d %q", rec.Code, rec.Body.String())
	}
}

func TestRecoveryRendersErrorPageBeforeAnyWrite(t *testing.T) {
	renderer := &recordingRenderer{}
	handler := recoveryMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil)), renderer,
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("loader failed")
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if renderer.calls != 1 || rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected error page with 500, got %d calls and status %d", renderer.calls, rec.Code)
	}
}

func TestLoggingMiddlewareRecordsRouteAndKeyword(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	handler := loggingMiddleware(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/channels/c1/media/m1?sel=1-3", nil)
	req.Header.Set("Referer", "http://localhost/search?q=naruto")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	for _, want := range []string{
		`msg="page request"`,
		`route=/channels/{channel}/media/{id}`,
		`status=404`,
		`query="sel=1-3"`,
		`referer="http://localhost/search?q=naruto"`,
	} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in log line %q", want, line)
		}
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		realIP     string
		remoteAddr string
		want       string
	}{
		{name: "forwarded chain", forwarded: "203.0.113.7, 10.0.0.1", remoteAddr: "10.0.0.1:5000", want: "203.0.113.7"},
		{name: "garbage forwarded", forwarded: "unknown", realIP: "198.51.100.2", remoteAddr: "10.0.0.1:5000", want: "198.51.100.2"},
		{name: "ipv6 peer", remoteAddr: "[2001:db8::1]:443", want: "2001:db8::1"},
		{name: "peer without port", remoteAddr: "pipe", want: "pipe"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			if tc.realIP != "" {
				req.Header.Set("X-Real-IP", tc.realIP)
			}
			if got := clientIP(req); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	got := truncate("q=ナルト疾風伝", 6)
	if !utf8.ValidString(got) {
		t.Fatalf("truncate produced invalid UTF-8: %q", got)
	}
	if got != "q=ナ..." {
		t.Fatalf("got %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("expected short value untouched, got %q", got)
	}
}
