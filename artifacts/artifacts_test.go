package artifacts

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewName(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.FixedZone("EET", 2*3600))
	run := RunID("0a1b2c3d-4e5f-6789-abcd-ef0123456789")

	name := NewName("Mace4", KindInput, at, run)
	assert.Equal(t, "mace4_20240309T120507_0a1b2c3d.in", name)
	require.NoError(t, ValidateName(name))

	assert.Len(t, NewRunID().Suffix(), 8)
	assert.NotEqual(t, NewRunID(), NewRunID())
}

func TestValidateName(t *testing.T) {
	for _, bad := range []string{
		"", "../etc/passwd", "mace4_20240309T120507_0a1b2c3d.txt",
		"mace4_20240309T120507_0A1B2C3D.in", "prover9_2024_0a1b2c3d.out", "x/mace4_20240309T120507_0a1b2c3d.in",
	} {
		assert.ErrorIs(t, ValidateName(bad), ErrInvalidName, bad)
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "fol")
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	name := "prover9_20240309T120507_0a1b2c3d.out"
	require.NoError(t, s.Put(ctx, name, []byte("THEOREM PROVED")))

	t.Run("write once", func(t *testing.T) {
		err := s.Put(ctx, name, []byte("overwrite"))
		assert.ErrorIs(t, err, ErrExists)
		got, err := s.Get(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, "THEOREM PROVED", string(got))
	})

	t.Run("missing", func(t *testing.T) {
		_, err := s.Get(ctx, "prover9_20240309T120507_ffffffff.out")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list skips foreign files", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
		require.NoError(t, s.Put(ctx, "mace4_20240309T120507_0a1b2c3d.in", []byte("formulas(assumptions).")))
		names, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"mace4_20240309T120507_0a1b2c3d.in", name}, names)
	})

	t.Run("traversal rejected", func(t *testing.T) {
		_, err := s.Get(ctx, "../secret")
		assert.ErrorIs(t, err, ErrInvalidName)
	})
}

func TestRepositoryWithCatalog(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(filepath.Join(dir, "files"))
	require.NoError(t, err)
	cat, err := OpenCatalog(ctx, filepath.Join(dir, "catalog.db"))
	require.NoError(t, err)
	defer cat.Close()

	repo := NewRepository(store, cat, zap.NewNop())
	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	run := NewRunID()
	in, err := repo.Save(ctx, run, "mace4", KindInput, "", []byte("program"))
	require.NoError(t, err)
	out, err := repo.Save(ctx, run, "mace4", KindOutput, "succeeded", []byte("Exiting with 1 model."))
	require.NoError(t, err)

	data, err := repo.Open(ctx, out)
	require.NoError(t, err)
	assert.Equal(t, "Exiting with 1 model.", string(data))

	entries, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, out, entries[0].Name)
	assert.Equal(t, "succeeded", entries[0].Verdict)
	assert.Equal(t, KindOutput, entries[0].Kind)
	assert.Equal(t, in, entries[1].Name)
	assert.Equal(t, len("program"), entries[1].Size)

	byRun, err := cat.ByRun(ctx, run)
	require.NoError(t, err)
	assert.Len(t, byRun, 2)
	t.Logf("✓ catalogued %d artifacts for run %s", len(byRun), run)
}

func TestCatalogRecentOrdersByTime(t *testing.T) {
	ctx := context.Background()
	cat, err := OpenCatalog(ctx, filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer cat.Close()

	base := time.Date(2024, 1, 1, 8, 0, 5, 0, time.UTC)
	run := NewRunID()
	// whole second, then half a second later, then a tenth of a second before
	times := []time.Time{base, base.Add(500 * time.Millisecond), base.Add(-100 * time.Millisecond)}
	for i, at := range times {
		require.NoError(t, cat.Record(ctx, Entry{
			Name: []string{"first", "second", "third"}[i], RunID: run,
			Engine: "prover9", Kind: KindOutput, Size: i, CreatedAt: at,
		}))
	}

	entries, err := cat.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"second", "first", "third"}, []string{entries[0].Name, entries[1].Name, entries[2].Name})
	assert.True(t, entries[0].CreatedAt.Equal(times[1]))
	assert.Equal(t, time.UTC, entries[0].CreatedAt.Location())
}

func TestRepositoryWithoutCatalog(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	repo := NewRepository(store, nil, nil)

	name, err := repo.Save(ctx, NewRunID(), "prover9", KindOutput, "proved", []byte("x"))
	require.NoError(t, err)

	entries, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, name, entries[0].Name)
	assert.Equal(t, KindOutput, entries[0].Kind)
}
