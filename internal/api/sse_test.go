package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"studyviz/domain/view"
	"studyviz/ports"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sseEvent struct {
	name string
	data string
}

func readEvent(t *testing.T, r *bufio.Reader) sseEvent {
	t.Helper()
	var ev sseEvent
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			if ev.name != "" {
				return ev
			}
		case strings.HasPrefix(line, "event:"):
			ev.name = strings.TrimPrefix(line, "event:")
		case strings.HasPrefix(line, "data:"):
			ev.data = strings.TrimPrefix(line, "data:")
		}
	}
}

func TestHandleSSE_DeliversUpdatesDispatchedDuringSnapshot(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(DefaultHubOptions())
	defer hub.Close()

	router := gin.New()
	router.GET("/stream", func(c *gin.Context) {
		err := hub.HandleSSE(c, "s", func(ctx context.Context) (interface{}, int64, error) {
			// Generation 4 is part of the snapshot, generation 5 lands after it.
			hub.Broadcast(ports.Update{SessionID: "s", View: view.Histogram, Generation: 4})
			hub.Broadcast(ports.Update{SessionID: "s", View: view.Histogram, Generation: 5})
			return gin.H{"generation": 4}, 4, nil
		}, time.Minute)
		assert.NoError(t, err)
	})
	srv := httptest.NewServer(router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	r := bufio.NewReader(resp.Body)
	assert.Equal(t, "snapshot", readEvent(t, r).name)

	ev := readEvent(t, r)
	require.Equal(t, "update", ev.name)
	var update ports.Update
	require.NoError(t, json.Unmarshal([]byte(ev.data), &update))
	assert.Equal(t, int64(5), update.Generation)
	assert.Equal(t, view.Histogram, update.View)
}

func TestHandleSSE_SnapshotErrorWritesNothing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(DefaultHubOptions())
	defer hub.Close()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/stream", nil)

	err := hub.HandleSSE(c, "s", func(ctx context.Context) (interface{}, int64, error) {
		return nil, 0, errors.New("session gone")
	}, time.Minute)
	require.Error(t, err)
	assert.Empty(t, w.Header().Get("Content-Type"))
	assert.Zero(t, w.Body.Len())
	require.Eventually(t, func() bool { return hub.GetClientCount("s") == 0 }, time.Second, 5*time.Millisecond)
}
