package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/kickbu2towski/breakout-api/internal/data"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubStore is a minimal in-memory RoomStore for handler tests.
type stubStore struct {
	mu    sync.Mutex
	rooms map[string]*data.Room
}

func newStubStore(rooms ...*data.Room) *stubStore {
	s := &stubStore{rooms: make(map[string]*data.Room)}
	for _, room := range rooms {
		cp := *room
		if cp.Version == 0 {
			cp.Version = 1
		}
		s.rooms[cp.ID] = &cp
	}
	return s
}

func (s *stubStore) Get(ctx context.Context, id string) (*data.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, data.ErrNotFound
	}
	cp := *room
	return &cp, nil
}

func (s *stubStore) ListFree(ctx context.Context, category string) ([]*data.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	free := make([]*data.Room, 0)
	for _, room := range s.rooms {
		if room.Category == category && room.Status == data.StatusFree {
			cp := *room
			free = append(free, &cp)
		}
	}
	sort.Slice(free, func(i, j int) bool { return free[i].ID < free[j].ID })
	return free, nil
}

func (s *stubStore) ConditionalUpdate(ctx context.Context, room *data.Room, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.rooms[room.ID]
	if !ok || cur.Version != expectedVersion {
		return data.ErrVersionConflict
	}
	cp := *room
	cp.Version = expectedVersion + 1
	s.rooms[cp.ID] = &cp
	room.Version = cp.Version
	return nil
}

func (s *stubStore) Upsert(ctx context.Context, room *data.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *room
	if cur, ok := s.rooms[cp.ID]; ok {
		cp.Version = cur.Version + 1
	} else {
		cp.Version = 1
	}
	s.rooms[cp.ID] = &cp
	room.Version = cp.Version
	return nil
}

func (s *stubStore) EnsureTable(ctx context.Context) error { return nil }

func newTestApplication(store data.RoomStore) *application {
	logger := zap.NewNop()
	app := &application{
		logger: logger,
		hub:    NewHub(logger),
	}
	app.config.categories = []string{"1"}
	app.config.roomsPerCategory = 2
	app.config.cors.allowedOrigins = []string{}

	models := &data.Models{
		Rooms: data.RoomModel{
			Store:    store,
			Logger:   logger,
			LinkBase: "https://teams.microsoft.com/l/meetup-join",
		},
	}
	app.models = models
	return app
}

func testFreeRoom(category string, ordinal int) *data.Room {
	return &data.Room{
		Category: category,
		ID:       data.RoomID(category, ordinal),
		Status:   data.StatusFree,
		Link:     fmt.Sprintf("https://teams.microsoft.com/l/meetup-join/mock_link_%s_%d", category, ordinal),
	}
}

func decodeRoom(t *testing.T, res *http.Response) *data.Room {
	t.Helper()
	var body struct {
		Room *data.Room `json:"room"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.NotNil(t, body.Room)
	return body.Room
}

func TestClaimRoomHandler(t *testing.T) {
	app := newTestApplication(newStubStore(testFreeRoom("1", 1)))
	srv := httptest.NewServer(app.routes())
	defer srv.Close()

	res, err := http.Post(srv.URL+"/v1/claims", "application/json",
		strings.NewReader(`{"category": "1", "participant_id": "alice-id", "participant_name": "Alice"}`))
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)
	room := decodeRoom(t, res)
	require.Equal(t, data.StatusAssigned, room.Status)
	require.Equal(t, "alice-id", room.AssignedParticipantID)
	require.False(t, room.OrganizerPresent)
	require.False(t, room.ParticipantPresent)
}

func TestClaimRoomHandlerNoFreeRooms(t *testing.T) {
	app := newTestApplication(newStubStore())
	srv := httptest.NewServer(app.routes())
	defer srv.Close()

	res, err := http.Post(srv.URL+"/v1/claims", "application/json",
		strings.NewReader(`{"category": "1", "participant_id": "alice-id", "participant_name": "Alice"}`))
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestClaimRoomHandlerRequiresCategory(t *testing.T) {
	app := newTestApplication(newStubStore())
	srv := httptest.NewServer(app.routes())
	defer srv.Close()

	res, err := http.Post(srv.URL+"/v1/claims", "application/json",
		strings.NewReader(`{"participant_id": "alice-id"}`))
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestGetRoomHandler(t *testing.T) {
	app := newTestApplication(newStubStore(testFreeRoom("1", 1)))
	srv := httptest.NewServer(app.routes())
	defer srv.Close()

	res, err := http.Get(srv.URL + "/v1/rooms/Room_1_1")
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)
	room := decodeRoom(t, res)
	require.Equal(t, "Room_1_1", room.ID)

	res, err = http.Get(srv.URL + "/v1/rooms/Room_1_99")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestRecordPresenceHandlerReleasesRoom(t *testing.T) {
	store := newStubStore(testFreeRoom("1", 1))
	app := newTestApplication(store)
	srv := httptest.NewServer(app.routes())
	defer srv.Close()

	res, err := http.Post(srv.URL+"/v1/claims", "application/json",
		strings.NewReader(`{"category": "1", "participant_id": "alice-id", "participant_name": "Alice"}`))
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	presence := func(userID string, joining bool) *http.Response {
		body := fmt.Sprintf(`{"user_id": %q, "joining": %t}`, userID, joining)
		res, err := http.Post(srv.URL+"/v1/rooms/Room_1_1/presence", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		return res
	}

	for _, userID := range []string{"alice-id", "organizer-id"} {
		res := presence(userID, true)
		require.Equal(t, http.StatusOK, res.StatusCode)
		res.Body.Close()
	}

	res = presence("organizer-id", false)
	require.Equal(t, http.StatusOK, res.StatusCode)
	room := decodeRoom(t, res)
	res.Body.Close()
	require.Equal(t, data.StatusAssigned, room.Status)

	res = presence("alice-id", false)
	require.Equal(t, http.StatusOK, res.StatusCode)
	room = decodeRoom(t, res)
	res.Body.Close()
	require.Equal(t, data.StatusFree, room.Status)
	require.Empty(t, room.AssignedParticipantID)
}

func TestRecordPresenceHandlerDuplicateIsUnchanged(t *testing.T) {
	store := newStubStore()
	room := testFreeRoom("1", 1)
	room.Status = data.StatusAssigned
	room.AssignedParticipantID = "alice-id"
	room.AssignedParticipantName = "Alice"
	require.NoError(t, store.Upsert(context.Background(), room))

	app := newTestApplication(store)
	srv := httptest.NewServer(app.routes())
	defer srv.Close()

	post := func() bool {
		res, err := http.Post(srv.URL+"/v1/rooms/Room_1_1/presence", "application/json",
			strings.NewReader(`{"user_id": "alice-id", "joining": true}`))
		require.NoError(t, err)
		defer res.Body.Close()
		require.Equal(t, http.StatusOK, res.StatusCode)

		var body struct {
			Changed bool `json:"changed"`
		}
		require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
		return body.Changed
	}

	require.True(t, post())
	require.False(t, post())
}

func TestRecordPresenceHandlerUnknownRoom(t *testing.T) {
	app := newTestApplication(newStubStore())
	srv := httptest.NewServer(app.routes())
	defer srv.Close()

	res, err := http.Post(srv.URL+"/v1/rooms/Room_1_99/presence", "application/json",
		strings.NewReader(`{"user_id": "alice-id", "joining": true}`))
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestInitializeRoomsHandlerRequiresSession(t *testing.T) {
	app := newTestApplication(newStubStore())
	srv := httptest.NewServer(app.routes())
	defer srv.Close()

	res, err := http.Post(srv.URL+"/v1/admin/initialize", "application/json", nil)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestClaimRoomHandlerStoreNotConfigured(t *testing.T) {
	app := newTestApplication(nil)
	srv := httptest.NewServer(app.routes())
	defer srv.Close()

	res, err := http.Post(srv.URL+"/v1/claims", "application/json",
		strings.NewReader(`{"category": "1", "participant_id": "alice-id", "participant_name": "Alice"}`))
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
}
