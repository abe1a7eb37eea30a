package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// keepaliveInterval is how often the stream emits an SSE comment so proxies
// do not close an idle connection.
const keepaliveInterval = 25 * time.Second

// stream handles GET /api/stream. It delivers stock events as server-sent
// events until the client disconnects. A slow client may miss events; the
// data_changed contract is "re-fetch", so a missed event is recovered by the
// next one.
func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	if h.notifier == nil {
		writeError(w, r, "event stream unavailable", "STREAM_UNAVAILABLE", http.StatusServiceUnavailable)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, "streaming unsupported", "STREAM_UNAVAILABLE", http.StatusServiceUnavailable)
		return
	}

	events, cancel := h.notifier.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case ev, open := <-events:
			if !open {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				h.logger.Error("marshal stock event", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, payload)
			flusher.Flush()
		}
	}
}
