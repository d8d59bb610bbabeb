package web

import (
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() (*Server, *httptest.Server) {
	s := NewServer(0)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/api/health", s.handleHealth)
	return s, httptest.NewServer(mux)
}

func TestHandleHealth_ReportsOK(t *testing.T) {
	s, ts := newTestServer()
	_ = s
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestBroadcast_SendsHeaderThenFrameToConnectedClient(t *testing.T) {
	s, ts := newTestServer()
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give the server a moment to register the connection before broadcasting.
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return len(s.conns) == 1
	}, time.Second, 10*time.Millisecond)

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	s.Broadcast(img, 3.5)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	msgType, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, msgType)

	var header FrameMessage
	require.NoError(t, json.Unmarshal(data, &header))
	assert.Equal(t, 3.5, header.AverageSamples)
	assert.Equal(t, 2, header.Width)
	assert.Equal(t, 2, header.Height)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	msgType, frame, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, msgType)
	assert.NotZero(t, len(frame))
}
