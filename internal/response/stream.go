package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// EventWriter writes server-sent events to one client.
type EventWriter interface {
	Send(event string, data any) error
}

var ErrStreamingUnsupported = errors.New("streaming unsupported")

type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// OpenStream switches the response to text/event-stream. Nothing is written
// if the ResponseWriter cannot flush.
func (h *responseHandler) OpenStream(w http.ResponseWriter, r *http.Request) (EventWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &sseWriter{w: w, flusher: flusher}, nil
}

func (s *sseWriter) Send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
