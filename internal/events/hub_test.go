package events

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startServer(t *testing.T) (*Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := NewHub(zap.NewNop())
	router := gin.New()
	NewHandler(hub, zap.NewNop()).RegisterRoutes(router.Group("/api"))

	server := httptest.NewServer(router)
	t.Cleanup(func() {
		hub.Close()
		server.Close()
	})
	return hub, "ws" + strings.TrimPrefix(server.URL, "http") + "/api/events/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	var status Event
	require.NoError(t, conn.ReadJSON(&status))
	assert.Equal(t, TypeStatus, status.Type)
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Clients() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestHubFiltersByShip(t *testing.T) {
	hub, url := startServer(t)

	all := dial(t, url)
	s1 := dial(t, url+"?shipId=S1")
	waitForClients(t, hub, 2)

	hub.Publish(Event{Type: TypeSurplusBanked, ShipIDs: []string{"S2"}, Year: 2025})
	hub.Publish(Event{Type: TypePoolCreated, ShipIDs: []string{"S1", "S3"}, Year: 2025})

	var got Event
	require.NoError(t, all.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, all.ReadJSON(&got))
	assert.Equal(t, TypeSurplusBanked, got.Type)
	require.NoError(t, all.ReadJSON(&got))
	assert.Equal(t, TypePoolCreated, got.Type)

	require.NoError(t, s1.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, s1.ReadJSON(&got))
	assert.Equal(t, TypePoolCreated, got.Type)
	assert.False(t, got.Timestamp.IsZero())
}

func TestHubResubscribe(t *testing.T) {
	hub, url := startServer(t)

	conn := dial(t, url+"?shipId=S1")
	waitForClients(t, hub, 1)

	require.NoError(t, conn.WriteJSON(Event{Type: TypeSubscribe, ShipIDs: []string{"S9"}}))

	// The new filter is applied asynchronously, so publish until it lands.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				hub.Publish(Event{Type: TypeSurplusBorrowed, ShipIDs: []string{"S9"}})
			}
		}
	}()

	var got Event
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, TypeSurplusBorrowed, got.Type)
	assert.Equal(t, []string{"S9"}, got.ShipIDs)
}

func TestHubRejectsPlainHTTP(t *testing.T) {
	_, url := startServer(t)

	resp, err := http.Get("http" + strings.TrimPrefix(url, "ws"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRecorder(t *testing.T) {
	var r Recorder
	var p Publisher = &r
	p.Publish(Event{Type: TypeBankedApplied})
	assert.Len(t, r.Events(), 1)

	Nop{}.Publish(Event{Type: TypeBankedApplied})
}
