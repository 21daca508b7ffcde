package realtime

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digi3/internal/models"
)

func newBoardServer(t *testing.T, hub *BoardHub) *httptest.Server {
	t.Helper()
	up := NewUpgrader(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.URL.Query().Get("project"), 10, 64)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		NewClient(conn).Serve(hub, id)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, projectID int64) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?project=" + strconv.FormatInt(projectID, 10)
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestBoardHubDeliversToProjectViewers(t *testing.T) {
	hub := NewBoardHub()
	srv := newBoardServer(t, hub)

	viewer := dial(t, srv, 10)
	outsider := dial(t, srv, 11)
	require.Eventually(t, func() bool { return hub.Viewers(10) == 1 && hub.Viewers(11) == 1 }, time.Second, 10*time.Millisecond)

	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	hub.Publish(models.BoardEvent{Type: models.BoardTaskMoved, ProjectID: 10, TaskID: 2, Status: models.StatusReview, ActorID: 1, At: at})

	var got models.BoardEvent
	require.NoError(t, viewer.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, viewer.ReadJSON(&got))
	assert.Equal(t, models.BoardTaskMoved, got.Type)
	assert.Equal(t, int64(2), got.TaskID)
	assert.Equal(t, models.StatusReview, got.Status)
	assert.True(t, at.Equal(got.At))

	require.NoError(t, outsider.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := outsider.ReadMessage()
	assert.Error(t, err)
}

func TestBoardHubForgetsClosedSockets(t *testing.T) {
	hub := NewBoardHub()
	srv := newBoardServer(t, hub)

	conn := dial(t, srv, 7)
	require.Eventually(t, func() bool { return hub.Viewers(7) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	_ = conn.Close()
	assert.Eventually(t, func() bool { return hub.Viewers(7) == 0 }, time.Second, 10*time.Millisecond)

	// no viewers left; must not block
	hub.Publish(models.BoardEvent{Type: models.BoardTaskCreated, ProjectID: 7, TaskID: 1})
}

func TestUpgraderOrigins(t *testing.T) {
	up := NewUpgrader([]string{"https://board.digi3.fr/"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://board.digi3.fr")
	assert.True(t, up.CheckOrigin(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, up.CheckOrigin(req))

	assert.Nil(t, NewUpgrader(nil).CheckOrigin)
}
