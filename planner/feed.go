package planner

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/theoremus-urban-solutions/transit-fol-planner/graph"
	"github.com/theoremus-urban-solutions/transit-fol-planner/gtfs"
	"github.com/theoremus-urban-solutions/transit-fol-planner/gtfsrt"
	"github.com/theoremus-urban-solutions/transit-fol-planner/internal"
)

// FeedSource loads the static feed plus service alerts and publishes the
// resulting graph.
type FeedSource struct {
	// Path is a local GTFS zip; URL is used when Path is empty.
	Path         string
	URL          string
	AlertsURL    string
	SnapshotPath string
	Options      gtfs.Options

	HTTP    *http.Client
	Alerts  *gtfsrt.Client
	Store   *graph.Store
	Logger  *zap.Logger
	Metrics *internal.Metrics

	// Now decides which alerts are active; defaults to time.Now.
	Now func() time.Time

	mu sync.Mutex
}

// Load fetches both feeds concurrently, applies NO_SERVICE closures and
// swaps the graph into the store. A feed that fails its integrity checks
// blocks planning until the next successful load. A fetch failure keeps the
// current graph; with none published yet the last snapshot is used.
func (f *FeedSource) Load(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	logger := f.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		static []byte
		alerts []byte
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		static, err = f.readStatic(gctx)
		return err
	})
	g.Go(func() error {
		if f.AlertsURL == "" || f.Alerts == nil {
			return nil
		}
		data, err := f.Alerts.Fetch(gctx, f.AlertsURL)
		if err != nil {
			// alerts are optional
			logger.Warn("service alerts unavailable", zap.Error(err))
			return nil
		}
		alerts = data
		return nil
	})

	var feed *gtfs.Feed
	fetchErr := g.Wait()
	if fetchErr == nil {
		feed, fetchErr = gtfs.LoadFromBytes(static, f.Options)
	}
	fresh := fetchErr == nil
	if fresh {
		feed.Warnings.Log(logger, f.source())
	}
	if fetchErr != nil {
		if _, err := f.Store.Current(); err == nil {
			f.Metrics.ObserveReload("error")
			logger.Warn("feed reload failed, keeping current graph", zap.Error(fetchErr))
			return fetchErr
		}
		if f.SnapshotPath == "" {
			f.Metrics.ObserveReload("error")
			return fmt.Errorf("load feed: %w", fetchErr)
		}
		snap, err := gtfs.LoadSnapshot(f.SnapshotPath)
		if err != nil {
			f.Metrics.ObserveReload("error")
			return fmt.Errorf("load feed: %w", errors.Join(fetchErr, err))
		}
		logger.Warn("feed unavailable, using snapshot", zap.String("snapshot", f.SnapshotPath), zap.Error(fetchErr))
		feed = snap
	}

	closures, err := gtfsrt.ParseClosures(alerts, f.clock())
	if err != nil {
		logger.Warn("ignoring malformed service alerts", zap.Error(err))
		closures = nil
	}

	tg, err := feed.Without(closures).Graph()
	if err != nil {
		f.Store.Fail(err)
		f.Metrics.ObserveReload("error")
		logger.Error("feed failed integrity checks", zap.Error(err))
		return err
	}
	f.Store.Swap(tg)
	f.Metrics.SetGraphSize(tg.StopCount(), tg.ConnectionCount())
	f.Metrics.ObserveReload("ok")

	if fresh && f.SnapshotPath != "" {
		if err := gtfs.SaveSnapshot(feed, f.SnapshotPath); err != nil {
			logger.Warn("failed to save feed snapshot", zap.Error(err))
		}
	}
	logger.Info("transit graph published",
		zap.String("agency", feed.AgencyName),
		zap.Int("stops", tg.StopCount()),
		zap.Int("connections", tg.ConnectionCount()),
		zap.Bool("snapshot", !fresh),
		zap.Bool("closures", !closures.Empty()),
	)
	return nil
}

func (f *FeedSource) readStatic(ctx context.Context) ([]byte, error) {
	if f.Path != "" {
		return os.ReadFile(f.Path)
	}
	if f.URL == "" {
		return nil, errors.New("no GTFS path or URL configured")
	}
	return gtfs.Fetch(ctx, f.HTTP, f.URL)
}

// Watch reloads the feed whenever the local zip changes. It blocks until
// ctx is done and is a no-op without a local Path.
func (f *FeedSource) Watch(ctx context.Context) error {
	if f.Path == "" {
		<-ctx.Done()
		return nil
	}
	w := &gtfs.Watcher{
		Path:   f.Path,
		Logger: f.Logger,
		OnChange: func() {
			// errors are logged and counted by Load
			_ = f.Load(ctx)
		},
	}
	return w.Run(ctx)
}

func (f *FeedSource) source() string {
	if f.Path != "" {
		return f.Path
	}
	return f.URL
}

func (f *FeedSource) clock() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}
