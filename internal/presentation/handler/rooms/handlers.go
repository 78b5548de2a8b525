package rooms

import (
	"errors"
	"log"
	"net/http"

	"github.com/RishitTandon7/CineVerse/internal/domain"
	"github.com/RishitTandon7/CineVerse/internal/infrastructure/json"
	"github.com/RishitTandon7/CineVerse/internal/infrastructure/ws"
	"github.com/RishitTandon7/CineVerse/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	coordinator  *session.Coordinator
	clientBuffer int
}

func NewHandler(coordinator *session.Coordinator, clientBuffer int) *Handler {
	return &Handler{
		coordinator:  coordinator,
		clientBuffer: clientBuffer,
	}
}

// AttachHandler upgrades the request to a websocket and registers the
// connection in the Unjoined state. Room membership is driven entirely by
// commands on the socket, so join, leave, and playback all flow through the
// same dispatch path.
func (h *Handler) AttachHandler(w http.ResponseWriter, r *http.Request) {
	label := r.URL.Query().Get("username")
	if label == "" {
		label = "guest-" + uuid.NewString()[:8]
	} else {
		normalized, err := domain.NormalizeLabel(label)
		if err != nil {
			json.WriteValidationError(w, err)
			return
		}
		label = normalized
	}

	conn, err := ws.Upgrade(w, r)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	client := ws.NewClient(conn, uuid.NewString(), label, h.clientBuffer, h.coordinator)

	if _, err := h.coordinator.Connect(client.ID, label, client); err != nil {
		_ = conn.WriteJSON(session.NewError("", "CONNECT_FAILED", "failed to register connection"))
		_ = conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

// PeekRoomHandler reports a room's mode and snapshot without touching core
// state. The page-serving layer uses it to decide which template to render;
// mutating the store from a GET would leak empty rooms.
func (h *Handler) PeekRoomHandler(w http.ResponseWriter, r *http.Request) {
	roomID, err := domain.NormalizeRoomID(chi.URLParam(r, "roomId"))
	if err != nil {
		json.WriteValidationError(w, err)
		return
	}

	mode := domain.ParseRoomMode(r.URL.Query().Get("mode"))
	view, exists := h.coordinator.Store().Describe(roomID, mode)

	json.Write(w, http.StatusOK, peekRoomResponse{
		RoomID:      view.ID,
		Mode:        string(view.Mode),
		Exists:      exists,
		MemberCount: view.MemberCount,
		Playback: playbackResponse{
			Position: view.Playback.Position,
			Paused:   view.Playback.Paused,
		},
	})
}

// GetRoomHandler is the strict lookup: 404 when the room does not exist.
func (h *Handler) GetRoomHandler(w http.ResponseWriter, r *http.Request) {
	roomID, err := domain.NormalizeRoomID(chi.URLParam(r, "roomId"))
	if err != nil {
		json.WriteValidationError(w, err)
		return
	}

	view, err := h.coordinator.Store().Get(roomID)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			json.WriteNotFoundError(w, "Room not found")
			return
		}
		json.WriteInternalError(w, err)
		return
	}

	json.Write(w, http.StatusOK, peekRoomResponse{
		RoomID:      view.ID,
		Mode:        string(view.Mode),
		Exists:      true,
		MemberCount: view.MemberCount,
		Playback: playbackResponse{
			Position: view.Playback.Position,
			Paused:   view.Playback.Paused,
		},
	})
}
