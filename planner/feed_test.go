package planner_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/theoremus-urban-solutions/transit-fol-planner/graph"
	"github.com/theoremus-urban-solutions/transit-fol-planner/gtfs"
	"github.com/theoremus-urban-solutions/transit-fol-planner/gtfsrt"
	"github.com/theoremus-urban-solutions/transit-fol-planner/internal"
	"github.com/theoremus-urban-solutions/transit-fol-planner/internal/testfeed"
	"github.com/theoremus-urban-solutions/transit-fol-planner/planner"
)

func writeZip(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gtfs.zip")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestFeedSource_LocalFile(t *testing.T) {
	store := graph.NewStore()
	snapshot := filepath.Join(t.TempDir(), "feed.gob")
	src := &planner.FeedSource{
		Path:         writeZip(t, testfeed.ThreeStop(t)),
		SnapshotPath: snapshot,
		Options:      gtfs.DefaultOptions(),
		Store:        store,
		Logger:       zap.NewNop(),
		Metrics:      internal.NewMetrics("test"),
	}
	require.NoError(t, src.Load(context.Background()))

	g, err := store.Current()
	require.NoError(t, err)
	assert.Equal(t, 4, g.StopCount())
	assert.Equal(t, 2, g.ConnectionCount())
	assert.FileExists(t, snapshot)
}

func TestFeedSource_AlertsCloseRoute(t *testing.T) {
	alerts := testfeed.Alerts(t, testfeed.Alert{
		ID: "strike", Effect: gtfsrtpb.Alert_NO_SERVICE,
		Selectors: []testfeed.Selector{{RouteID: "2"}},
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(alerts)
	}))
	defer srv.Close()

	store := graph.NewStore()
	src := &planner.FeedSource{
		Path:      writeZip(t, testfeed.ThreeStop(t)),
		AlertsURL: srv.URL,
		Alerts:    gtfsrt.NewClient(time.Second),
		Options:   gtfs.DefaultOptions(),
		Store:     store,
	}
	require.NoError(t, src.Load(context.Background()))
	g, err := store.Current()
	require.NoError(t, err)
	assert.Equal(t, 1, g.ConnectionCount())
	assert.Empty(t, g.Neighbors("B"))
}

func TestFeedSource_AlertsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	store := graph.NewStore()
	src := &planner.FeedSource{
		Path:      writeZip(t, testfeed.ThreeStop(t)),
		AlertsURL: srv.URL,
		Alerts:    gtfsrt.NewClient(time.Second),
		Options:   gtfs.DefaultOptions(),
		Store:     store,
	}
	require.NoError(t, src.Load(context.Background()))
	g, err := store.Current()
	require.NoError(t, err)
	assert.Equal(t, 2, g.ConnectionCount())
}

func TestFeedSource_StaticURL(t *testing.T) {
	body := testfeed.ThreeStop(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	store := graph.NewStore()
	src := &planner.FeedSource{URL: srv.URL + "/gtfs.zip", HTTP: srv.Client(), Options: gtfs.DefaultOptions(), Store: store}
	require.NoError(t, src.Load(context.Background()))
	_, err := store.Current()
	assert.NoError(t, err)
}

func TestFeedSource_Failures(t *testing.T) {
	t.Run("integrity failure blocks planning", func(t *testing.T) {
		files := testfeed.ThreeStopFiles()
		files["stops.txt"] += "A,Duplicate,44.0,26.0\n"
		store := graph.NewStore()
		src := &planner.FeedSource{Path: writeZip(t, testfeed.Zip(t, files)), Options: gtfs.DefaultOptions(), Store: store}

		err := src.Load(context.Background())
		var dataErr *graph.DataIntegrityError
		require.ErrorAs(t, err, &dataErr)
		_, err = store.Current()
		assert.ErrorAs(t, err, &dataErr)
	})

	t.Run("missing file keeps current graph", func(t *testing.T) {
		store := graph.NewStore()
		path := writeZip(t, testfeed.ThreeStop(t))
		src := &planner.FeedSource{Path: path, Options: gtfs.DefaultOptions(), Store: store}
		require.NoError(t, src.Load(context.Background()))

		require.NoError(t, os.Remove(path))
		assert.Error(t, src.Load(context.Background()))
		g, err := store.Current()
		require.NoError(t, err)
		assert.Equal(t, 2, g.ConnectionCount())
	})

	t.Run("snapshot fallback", func(t *testing.T) {
		feed, err := gtfs.LoadFromBytes(testfeed.ThreeStop(t), gtfs.DefaultOptions())
		require.NoError(t, err)
		snapshot := filepath.Join(t.TempDir(), "feed.gob")
		require.NoError(t, gtfs.SaveSnapshot(feed, snapshot))

		store := graph.NewStore()
		src := &planner.FeedSource{
			Path:         filepath.Join(t.TempDir(), "missing.zip"),
			SnapshotPath: snapshot,
			Options:      gtfs.DefaultOptions(),
			Store:        store,
		}
		require.NoError(t, src.Load(context.Background()))
		g, err := store.Current()
		require.NoError(t, err)
		assert.Equal(t, 2, g.ConnectionCount())
	})

	t.Run("nothing configured", func(t *testing.T) {
		store := graph.NewStore()
		src := &planner.FeedSource{Store: store}
		assert.Error(t, src.Load(context.Background()))
		_, err := store.Current()
		assert.ErrorIs(t, err, graph.ErrNotLoaded)
	})
}
