package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// SSEChunkData is the data for "chunk" events.
type SSEChunkData struct {
	Text string `json:"text"`
}

// sseStream writes Server-Sent Events, deferring the protocol switch until
// the first event. Before Start the response is still a plain HTTP response,
// so early failures can carry real status codes; after Start everything,
// including errors, travels as events.
//
// Event types:
//   - chunk: partial generated text {"text": "..."}
//   - done:  final result, payload depends on the endpoint
//   - error: failure after streaming began, same shape as ErrorResponse
type sseStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
}

// newSSEStream wraps w. Returns an error if w cannot flush, which SSE needs.
func newSSEStream(w http.ResponseWriter) (*sseStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support streaming")
	}
	return &sseStream{w: w, flusher: flusher}, nil
}

// Started reports whether SSE headers have been written.
func (s *sseStream) Started() bool {
	return s.started
}

// Start switches the response to an event stream. Idempotent.
func (s *sseStream) Start() {
	if s.started {
		return
	}
	s.started = true
	s.w.Header().Set("Content-Type", "text/event-stream")
	s.w.Header().Set("Cache-Control", "no-cache")
	s.w.Header().Set("Connection", "keep-alive")
	s.w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	s.w.WriteHeader(http.StatusOK)
	s.flusher.Flush()
}

// Chunk writes a chunk event, starting the stream if needed.
func (s *sseStream) Chunk(text string) {
	s.Start()
	s.write("chunk", SSEChunkData{Text: text})
}

// Done writes the final done event, starting the stream if needed.
func (s *sseStream) Done(payload any) {
	s.Start()
	s.write("done", payload)
}

// Error writes an error event. Only valid after Start; callers that have not
// started the stream should send a plain JSON error instead.
func (s *sseStream) Error(resp ErrorResponse) {
	s.write("error", resp)
}

func (s *sseStream) write(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data)
	s.flusher.Flush()
}
