package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/pinatlas/pinatlasbackend/events"
)

// EventsHandler streams album/photo notifications as server-sent
// events, the non-blocking notification channel for no-results and
// load failures.
type EventsHandler struct {
	Hub *events.Hub
}

func (eh *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteAPIError(w, http.StatusInternalServerError, "streaming_unsupported", "Response writer does not support streaming")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := events.Subscribe(eh.Hub, "album.*", "photo.*")
	defer events.Unsubscribe(eh.Hub, sub)

	for {
		select {
		case msg := <-sub.Receiver:
			payload, err := json.Marshal(msg.Fields)
			if err != nil {
				log.Printf("Error encoding event %s: %v", msg.Name, err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Name, payload)
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}
