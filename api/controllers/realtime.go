package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/coupleshub/backend/api/middleware"
	"github.com/coupleshub/backend/api/responses"
	syncstream "github.com/coupleshub/backend/internal/sync"
	pkgerrors "github.com/coupleshub/backend/pkg/errors"
	"github.com/coupleshub/backend/pkg/logger"
)

const heartbeatInterval = 25 * time.Second

// RealtimeStream serves the couple's change feed over server-sent events.
// The connection stays open until the client goes away; a periodic comment
// line keeps intermediaries from closing the idle stream.
func RealtimeStream(hub *syncstream.Hub, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if hub == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "realtime hub unavailable"))
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		coupleID := middleware.CoupleIDFromContext(r.Context())
		changes, cancel := hub.Subscribe(coupleID)
		defer cancel()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		fmt.Fprint(w, ": connected\n\n")
		flusher.Flush()

		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-heartbeat.C:
				fmt.Fprint(w, ": keepalive\n\n")
				flusher.Flush()
			case envelope, open := <-changes:
				if !open {
					// Hub dropped this subscriber; the client reconnects.
					return
				}
				payload, err := json.Marshal(envelope)
				if err != nil {
					if logg != nil {
						logg.Error(r.Context(), "encode change event", err)
					}
					continue
				}
				fmt.Fprintf(w, "event: change\ndata: %s\n\n", payload)
				flusher.Flush()
			}
		}
	}
}
