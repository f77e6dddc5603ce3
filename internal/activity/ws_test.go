package activity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"degenscore-lab/internal/domain"
)

func TestFeed_SubscribesAndStreams(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		var sub wsSubscribe
		require.NoError(t, conn.ReadJSON(&sub))
		assert.Equal(t, "subscribe", sub.Type)
		assert.Equal(t, "wallet-1", sub.Address)

		for i := 1; i <= 2; i++ {
			record := wireSwap(i, "ACTIVITY_TOKEN_SWAP")
			require.NoError(t, conn.WriteJSON(wsFrame{Type: "activity", Data: &record}))
		}

		// Hold the connection open until the client walks away.
		conn.ReadMessage()
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	feed, err := NewFeed(context.Background(), wsURL, "wallet-1", nil)
	require.NoError(t, err)
	defer feed.Close()

	var got []domain.RawActivity
	for len(got) < 2 {
		select {
		case a := <-feed.Activities():
			got = append(got, a)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for activities")
		}
	}

	assert.Equal(t, "sig-1", got[0].Signature)
	assert.Equal(t, "sig-2", got[1].Signature)
	require.NotNil(t, got[0].Swap)
	assert.Equal(t, domain.BaseMint, got[0].Swap.MintIn)
}

func TestFeed_CloseIsIdempotent(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		conn.ReadMessage()
		conn.ReadMessage()
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	feed, err := NewFeed(context.Background(), wsURL, "wallet-1", nil)
	require.NoError(t, err)

	require.NoError(t, feed.Close())
	require.NoError(t, feed.Close())

	_, open := <-feed.Activities()
	assert.False(t, open)
}

func TestFeed_IgnoresUnknownFrames(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		var sub wsSubscribe
		require.NoError(t, conn.ReadJSON(&sub))

		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"heartbeat"}`)))
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
		record := wireSwap(7, "ACTIVITY_TOKEN_SWAP")
		require.NoError(t, conn.WriteJSON(wsFrame{Type: "activity", Data: &record}))

		conn.ReadMessage()
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	feed, err := NewFeed(context.Background(), wsURL, "wallet-1", nil)
	require.NoError(t, err)
	defer feed.Close()

	select {
	case a := <-feed.Activities():
		assert.Equal(t, "sig-7", a.Signature)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for activity")
	}
}
