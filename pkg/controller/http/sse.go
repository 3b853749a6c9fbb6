package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/formloom/formloom/pkg/utils/errutil"
	"github.com/m-mizutani/goerr/v2"
)

// streamSSE relays watch channel values to the client as server-sent
// events, one data frame per value. The stream ends when the channel
// closes, which the repository ties to request cancellation and to
// deletion of the watched resource. Idle periods are bridged with
// comment-line heartbeats.
func streamSSE[T any](w http.ResponseWriter, r *http.Request, heartbeat time.Duration, ch <-chan T, encode func(T) any) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		errutil.HandleHTTP(r.Context(), w, goerr.New("streaming is not supported"), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case value, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(encode(value))
			if err != nil {
				errutil.Handle(r.Context(), goerr.Wrap(err, "failed to encode event"), "encode event")
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}
