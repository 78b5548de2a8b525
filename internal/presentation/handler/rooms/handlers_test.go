package rooms

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/RishitTandon7/CineVerse/internal/domain"
	"github.com/RishitTandon7/CineVerse/internal/session"
	"github.com/go-chi/chi/v5"
)

type noopSender struct{}

func (noopSender) Send(*session.Event) error { return nil }
func (noopSender) Close() error              { return nil }

func newTestRouter(t *testing.T) (*chi.Mux, *session.Coordinator) {
	t.Helper()

	registry := session.NewRegistry()
	store := session.NewStore()
	broadcaster := session.NewBroadcaster(store, registry, nil, nil)
	coordinator := session.NewCoordinator(registry, store, broadcaster, nil, nil, nil)

	handler := NewHandler(coordinator, 8)

	r := chi.NewRouter()
	r.Get("/api/rooms/{roomId}", handler.GetRoomHandler)
	r.Get("/api/rooms/{roomId}/peek", handler.PeekRoomHandler)

	return r, coordinator
}

func TestPeekRoomHandler(t *testing.T) {
	router, coordinator := newTestRouter(t)

	// Peeking an absent room reports exists=false and must not create it.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rooms/movie-night/peek?mode=private", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		RoomID      string `json:"roomId"`
		Mode        string `json:"mode"`
		Exists      bool   `json:"exists"`
		MemberCount int    `json:"memberCount"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Exists {
		t.Fatal("peek reported a room that does not exist")
	}
	if resp.Mode != "private" {
		t.Fatalf("mode = %q, want private fallback", resp.Mode)
	}
	if coordinator.Store().Len() != 0 {
		t.Fatal("peek created a room")
	}

	// After someone joins, the peek reflects live state.
	if _, err := coordinator.Connect("c1", "alice", noopSender{}); err != nil {
		t.Fatal(err)
	}
	if _, err := coordinator.Join("c1", "movie-night", domain.RoomModePublic); err != nil {
		t.Fatal(err)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rooms/movie-night/peek", nil))

	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Exists || resp.MemberCount != 1 {
		t.Fatalf("peek = %+v, want existing room with one member", resp)
	}
}

func TestGetRoomHandler(t *testing.T) {
	router, coordinator := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rooms/ghost", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	if _, err := coordinator.Connect("c1", "alice", noopSender{}); err != nil {
		t.Fatal(err)
	}
	if _, err := coordinator.Join("c1", "ghost", domain.RoomModePrivate); err != nil {
		t.Fatal(err)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rooms/ghost", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		RoomID string `json:"roomId"`
		Mode   string `json:"mode"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.RoomID != "ghost" || resp.Mode != "private" {
		t.Fatalf("response = %+v", resp)
	}
}

func TestGetRoomHandlerRejectsBadIDs(t *testing.T) {
	router, _ := newTestRouter(t)

	long := strings.Repeat("a", 80)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rooms/"+long+"/peek", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
