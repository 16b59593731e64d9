package gtfs

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

// SaveSnapshot writes a gob copy of the feed, replacing any previous one
// atomically via rename.
func SaveSnapshot(feed *Feed, path string) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(feed); err != nil {
		return fmt.Errorf("failed to encode feed: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".feed-*.gob")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// LoadSnapshot reads a feed written by SaveSnapshot.
func LoadSnapshot(path string) (*Feed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var feed Feed
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&feed); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &feed, nil
}
