package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type plainWriter struct {
	http.ResponseWriter
}

func TestOpenStreamWritesEvents(t *testing.T) {
	h := newTestHandler()
	r := httptest.NewRequest(http.MethodGet, "/transactions/stream", nil)
	rr := httptest.NewRecorder()

	ew, err := h.OpenStream(rr, r)
	if err != nil {
		t.Fatalf("OpenStream error: %v", err)
	}
	if err := ew.Send("khata", map[string]int{"net": 5}); err != nil {
		t.Fatalf("Send error: %v", err)
	}

	if ct := rr.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}
	if !rr.Flushed {
		t.Fatalf("response was not flushed")
	}
	if got := rr.Body.String(); got != "event: khata\ndata: {\"net\":5}\n\n" {
		t.Fatalf("body = %q", got)
	}
}

func TestOpenStreamWithoutFlusher(t *testing.T) {
	h := newTestHandler()
	r := httptest.NewRequest(http.MethodGet, "/transactions/stream", nil)

	_, err := h.OpenStream(plainWriter{httptest.NewRecorder()}, r)
	if !errors.Is(err, ErrStreamingUnsupported) {
		t.Fatalf("expected ErrStreamingUnsupported, got %v", err)
	}
}
