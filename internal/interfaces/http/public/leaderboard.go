package public

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mcupsell/upsell-board/api/internal/interfaces/http/common"
	"github.com/mcupsell/upsell-board/api/internal/leaderboard/domain"
)

const streamHeartbeat = 25 * time.Second

// leaderboardHandler returns the latest snapshot, waiting briefly for the
// initial recompute when the location's scheduler has just been created.
func (h *Handler) leaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locationID := strings.TrimSpace(chi.URLParam(r, "id"))
		if locationID == "" {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "location id is required"})
			return
		}

		scheduler := h.schedulers.For(locationID)
		snapshot, ok := scheduler.Latest()
		if !ok {
			snapshots, cancel := scheduler.Subscribe()
			defer cancel()
			select {
			case snapshot, ok = <-snapshots:
				if !ok {
					common.WriteJSON(h.logger, w, http.StatusServiceUnavailable, map[string]string{"error": "leaderboard unavailable"})
					return
				}
			case <-time.After(5 * time.Second):
				common.WriteJSON(h.logger, w, http.StatusServiceUnavailable, map[string]string{"error": "leaderboard not ready"})
				return
			case <-r.Context().Done():
				return
			}
		}

		common.WriteJSON(h.logger, w, http.StatusOK, buildSnapshotResponse(snapshot))
	}
}

// leaderboardStreamHandler pushes snapshots over SSE as they are published.
// A staff viewer whose shift gets closed remotely receives a final signout
// event before the stream ends; disconnecting cancels only this
// subscription, never an in-flight recompute.
func (h *Handler) leaderboardStreamHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locationID := strings.TrimSpace(chi.URLParam(r, "id"))
		if locationID == "" {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "location id is required"})
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
			return
		}

		snapshots, cancelSnapshots := h.schedulers.For(locationID).Subscribe()
		defer cancelSnapshots()

		var signOuts <-chan struct{}
		if user, ok := common.UserFromContext(r.Context()); ok && user.Role == common.RoleStaff {
			ch, cancelSignOut := h.tracker.SubscribeSignOut(user.EmployeeID)
			defer cancelSignOut()
			signOuts = ch
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		heartbeat := time.NewTicker(streamHeartbeat)
		defer heartbeat.Stop()

		for {
			select {
			case snapshot, open := <-snapshots:
				if !open {
					return
				}
				if err := writeSnapshotEvent(w, snapshot); err != nil {
					return
				}
				flusher.Flush()
			case <-signOuts:
				fmt.Fprint(w, "event: signout\ndata: {}\n\n")
				flusher.Flush()
				return
			case <-heartbeat.C:
				fmt.Fprint(w, ": ping\n\n")
				flusher.Flush()
			case <-r.Context().Done():
				return
			}
		}
	}
}

func writeSnapshotEvent(w http.ResponseWriter, snapshot domain.Snapshot) error {
	payload, err := json.Marshal(buildSnapshotResponse(snapshot))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", payload)
	return err
}
