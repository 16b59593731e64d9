package artifacts

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Repository writes artifacts to a store and indexes them in the catalog.
type Repository struct {
	store   Store
	catalog *Catalog
	logger  *zap.Logger
	now     func() time.Time
}

// NewRepository wires a store with an optional catalog (nil disables indexing).
func NewRepository(store Store, catalog *Catalog, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{store: store, catalog: catalog, logger: logger, now: time.Now}
}

// Save writes one artifact and returns its generated name.
func (r *Repository) Save(ctx context.Context, run RunID, engine string, kind Kind, verdict string, data []byte) (string, error) {
	at := r.now()
	name := NewName(engine, kind, at, run)
	if err := r.store.Put(ctx, name, data); err != nil {
		return "", err
	}
	if r.catalog != nil {
		err := r.catalog.Record(ctx, Entry{
			Name: name, RunID: run, Engine: engine, Kind: kind,
			Verdict: verdict, Size: len(data), CreatedAt: at,
		})
		if err != nil {
			// the file is already final; a missing index row only hides it from listings
			r.logger.Warn("artifact catalog write failed", zap.String("name", name), zap.Error(err))
		}
	}
	r.logger.Debug("saved artifact", zap.String("name", name), zap.Int("bytes", len(data)))
	return name, nil
}

// Open reads an artifact by name.
func (r *Repository) Open(ctx context.Context, name string) ([]byte, error) {
	return r.store.Get(ctx, name)
}

// List returns catalog entries when a catalog is configured, otherwise
// entries synthesized from the store listing.
func (r *Repository) List(ctx context.Context, limit int) ([]Entry, error) {
	if r.catalog != nil {
		return r.catalog.Recent(ctx, limit)
	}
	names, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []Entry
	for i := len(names) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, Entry{Name: names[i], Kind: kindOf(names[i])})
	}
	return out, nil
}

func kindOf(name string) Kind {
	if len(name) > 4 && name[len(name)-4:] == ".out" {
		return KindOutput
	}
	return KindInput
}
