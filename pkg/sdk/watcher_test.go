package sdk_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfstream-dev/shelfstream/internal/api"
	"github.com/shelfstream-dev/shelfstream/internal/catalog"
	"github.com/shelfstream-dev/shelfstream/internal/hub"
	"github.com/shelfstream-dev/shelfstream/pkg/schema"
	"github.com/shelfstream-dev/shelfstream/pkg/sdk"
)

// startDaemon wires the full server stack onto a test listener: store,
// broadcaster, mutation service and HTTP handlers.
func startDaemon(t *testing.T) (*catalog.Service, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := catalog.NewStore(nil, nil)
	broadcaster := hub.NewHub(store.List)
	ctx, cancel := context.WithCancel(context.Background())
	go broadcaster.Run(ctx)

	svc := catalog.NewService(store, broadcaster)
	h := &api.Handler{Catalog: svc, Hub: broadcaster}

	r := gin.New()
	h.Register(r.Group("/api"))
	r.GET("/ws", broadcaster.ServeWS)

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return svc, srv
}

func input(title string, year int) schema.BookInput {
	return schema.BookInput{
		Title:         title,
		Author:        "Frank Herbert",
		Genre:         "SciFi",
		PublishedYear: schema.Year(year),
	}
}

func TestWatcherMirrorsLiveMutations(t *testing.T) {
	svc, srv := startDaemon(t)

	// One record exists before the watcher connects; it must arrive via the
	// snapshot, not an incremental event.
	pre, err := svc.CreateBook(input("Dune", 1965))
	require.NoError(t, err)

	client, err := sdk.Connect(srv.URL)
	require.NoError(t, err)

	w := client.Watch(context.Background(), nil)
	defer w.Close()

	require.Eventually(t, func() bool {
		state, _ := w.State()
		return state == sdk.StateConnected
	}, 2*time.Second, 10*time.Millisecond, "watcher never connected")

	require.Eventually(t, func() bool { return w.Mirror().Len() == 1 },
		2*time.Second, 10*time.Millisecond, "snapshot never arrived")

	books := w.Books()
	require.Len(t, books, 1)
	assert.Equal(t, pre.ID, books[0].ID)
	assert.Equal(t, "Dune", books[0].Title)
	assert.True(t, pre.CreatedAt.Equal(books[0].CreatedAt))

	// A create on the server shows up as an added event
	created, err := svc.CreateBook(input("Children of Dune", 1976))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return w.Mirror().Len() == 2 },
		2*time.Second, 10*time.Millisecond, "added event never arrived")

	books = w.Books()
	assert.Equal(t, created.ID, books[1].ID)
	assert.Equal(t, created.PublishedYear, books[1].PublishedYear)

	// An update converges the mirror to the new record
	updated, err := svc.UpdateBook(created.ID, input("Children of Dune", 1977))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		for _, b := range w.Books() {
			if b.ID == updated.ID && b.PublishedYear == 1977 {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond, "updated event never arrived")

	// A delete shrinks the mirror
	_, err = svc.DeleteBook(pre.ID)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return w.Mirror().Len() == 1 },
		2*time.Second, 10*time.Millisecond, "deleted event never arrived")
	assert.Equal(t, updated.ID, w.Books()[0].ID)

	// The daemon sees the live subscriber
	health, err := client.Health()
	require.NoError(t, err)
	assert.Equal(t, "OK", health.Status)
	assert.Equal(t, 1, health.ConnectedClients)
}

func TestWatcherClientMutationsRoundTrip(t *testing.T) {
	_, srv := startDaemon(t)

	client, err := sdk.Connect(srv.URL)
	require.NoError(t, err)

	created, err := client.CreateBook(input("Dune", 1965))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := client.GetBook(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Title, got.Title)

	_, err = client.CreateBook(schema.BookInput{Author: "A", Genre: "G", PublishedYear: 2020})
	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")

	_, err = client.GetBook("missing")
	require.ErrorIs(t, err, schema.ErrBookNotFound)

	id, err := client.DeleteBook(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, id)

	books, err := client.ListBooks()
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestWatcherSurfacesPersistentErrorAndKeepsData(t *testing.T) {
	svc, srv := startDaemon(t)

	_, err := svc.CreateBook(input("Dune", 1965))
	require.NoError(t, err)

	settings := sdk.DefaultWatcherSettings()
	settings.ReconnectDelay = 20 * time.Millisecond
	settings.ReconnectAttempts = 3

	w := sdk.NewWatcher(context.Background(), "ws"+srv.URL[4:]+"/ws", settings)
	defer w.Close()

	require.Eventually(t, func() bool { return w.Mirror().Len() == 1 },
		2*time.Second, 10*time.Millisecond, "snapshot never arrived")

	// Take the daemon away; the watcher must exhaust its retries and settle
	// into a persistent error state without dropping the last snapshot.
	srv.CloseClientConnections()
	srv.Close()

	select {
	case <-w.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not give up after its retry budget")
	}

	state, lastErr := w.State()
	assert.Equal(t, sdk.StateDisconnected, state)
	assert.Error(t, lastErr)
	assert.Equal(t, 1, w.Mirror().Len(), "mirror must keep the last known data")
}

func TestWatcherRetryBudgetAgainstDeadEndpoint(t *testing.T) {
	settings := sdk.DefaultWatcherSettings()
	settings.HandshakeTimeout = 200 * time.Millisecond
	settings.ReconnectDelay = 10 * time.Millisecond
	settings.ReconnectAttempts = 2

	w := sdk.NewWatcher(context.Background(), "ws://127.0.0.1:1/ws", settings)
	defer w.Close()

	select {
	case <-w.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not give up after its retry budget")
	}

	state, err := w.State()
	assert.Equal(t, sdk.StateDisconnected, state)
	assert.Error(t, err)
	assert.Empty(t, w.Books())
}
