package api_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/roomhub/internal/api"
	"github.com/mcoot/roomhub/internal/api/apierr"
	"github.com/mcoot/roomhub/internal/api/response"
	"github.com/mcoot/roomhub/internal/factory"
	"github.com/mcoot/roomhub/internal/model"
	"github.com/mcoot/roomhub/internal/services/coordinator"
	"github.com/mcoot/roomhub/internal/testutil"
)

// testServer wraps a production-wired app
type testServer struct {
	app *factory.App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	// API tests are integration tests - use production factory with real random/clock
	app, err := factory.New(factory.Config{Logger: testutil.NopLogger()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	return &testServer{app: app}
}

func (ts *testServer) request(method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	rr := httptest.NewRecorder()
	ts.app.Router.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) createRoom(t *testing.T, names ...string) model.RoomID {
	t.Helper()
	ctx := context.Background()

	id, err := ts.app.Rooms.CreateRoom(ctx, model.Participant{ID: "host", DisplayName: names[0]})
	require.NoError(t, err)
	for i, name := range names[1:] {
		p := model.Participant{ID: model.ConnID("guest-" + string(rune('a'+i))), DisplayName: name}
		_, err := ts.app.Rooms.JoinRoom(ctx, id, p, nil)
		require.NoError(t, err)
	}
	return id
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apierr.Detail {
	t.Helper()
	var body apierr.Body
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Error
}

func TestBanner(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "roomhub signaling server is running", rr.Body.String())
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestStats(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"rooms":0,"connections":0}`, rr.Body.String())

	ts.createRoom(t, "Alice")
	ts.createRoom(t, "Carol")

	rr = ts.request(http.MethodGet, "/api/v1/stats", nil)
	var stats response.Stats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Rooms)
	assert.Equal(t, 0, stats.Connections)
}

func TestGetRoom(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createRoom(t, "Alice", "Bob")

	_, err := ts.app.Rooms.AppendMessage(context.Background(), id,
		model.NewMessage("hello", "Alice", "host", time.Now()), nil)
	require.NoError(t, err)

	rr := ts.request(http.MethodGet, "/api/v1/rooms/"+strings.ToLower(string(id)), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var room response.Room
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &room))
	assert.Equal(t, string(id), room.ID)
	require.Len(t, room.Participants, 2)
	assert.Equal(t, "Alice", room.Participants[0].DisplayName)
	assert.Equal(t, "Bob", room.Participants[1].DisplayName)
	assert.Equal(t, 1, room.MessageCount)
	assert.Empty(t, room.ActiveGame)
	assert.NotContains(t, rr.Body.String(), "hello")
}

func TestGetRoomNotFound(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/rooms/ZZZZ9999", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	apiErr := decodeError(t, rr)
	assert.Equal(t, apierr.CodeRoomNotFound, apiErr.Code)
	assert.Equal(t, "Room not found", apiErr.Message)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/lobbies", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeNotFound, decodeError(t, rr).Code)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodOptions, "/api/v1/stats", http.Header{
		"Origin":                        {"https://app.example"},
		"Access-Control-Request-Method": {"GET"},
	})
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "600", rr.Header().Get("Access-Control-Max-Age"))
}

func TestCORSHeaderOnSimpleRequest(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", http.Header{"Origin": {"https://app.example"}})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

type panickingStats struct{}

func (panickingStats) Stats(context.Context) (coordinator.Stats, error) { panic("boom") }

func TestPanicBecomesInternalError(t *testing.T) {
	router := api.NewRouter(api.RouterConfig{
		Logger:    testutil.NopLogger(),
		Stats:     panickingStats{},
		WebSocket: http.NotFoundHandler(),
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, apierr.CodeInternalError, decodeError(t, rr).Code)
}

func TestWebSocketThroughRouter(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.app.Router)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(frame), `"event":"me"`)

	assert.Eventually(t, func() bool {
		stats, err := ts.app.Coordinator.Stats(context.Background())
		return err == nil && stats.Connections == 1
	}, time.Second, 10*time.Millisecond)
}

func TestServerShutdownRunsHooks(t *testing.T) {
	ts := newTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := api.NewServer(ts.app.Router, api.DefaultServerConfig(), testutil.NopLogger())
	var hookRan atomic.Bool
	server.RegisterOnShutdown(func() { hookRan.Store(true) })

	errCh := make(chan error, 1)
	go func() { errCh <- server.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/v1/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, server.Shutdown(context.Background()))
	require.NoError(t, <-errCh)
	assert.Eventually(t, hookRan.Load, time.Second, 10*time.Millisecond)
}

func TestServerRunStopsOnCancel(t *testing.T) {
	ts := newTestServer(t)

	cfg := api.DefaultServerConfig()
	cfg.Host, cfg.Port = "127.0.0.1", 0
	server := api.NewServer(ts.app.Router, cfg, testutil.NopLogger())
	server.RegisterOnShutdown(ts.app.WebSocket.CloseAll)

	ln, err := server.Listen()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Run(ctx, ln) }()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws", nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	_, _, err = conn.ReadMessage()
	require.NoError(t, err)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	// The shutdown hook closed the websocket
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}

func TestServerConfigAddr(t *testing.T) {
	cfg := api.DefaultServerConfig()
	assert.Equal(t, ":8080", cfg.Addr())

	cfg.Host = "::1"
	assert.Equal(t, "[::1]:8080", cfg.Addr())
}
