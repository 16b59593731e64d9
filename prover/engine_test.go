package prover

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine writes an executable shell script standing in for a LADR binary.
func fakeEngine(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake engines are shell scripts")
	}
	path := filepath.Join(t.TempDir(), "engine.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

// fakeMace4 reports no model for programs containing a negated reachable fact.
const fakeMace4 = `prog=$(cat)
case "$prog" in
  *-reachable*) echo "Exiting with failure."; echo "Process 1 exit (exhausted)."; exit 2;;
esac
echo "Exiting with 1 model."
echo "Process 1 exit (max_models)."
exit 0`

const fakeProver9 = `cat >/dev/null
echo "THEOREM PROVED"
echo "Process 2 exit (max_proofs)."
exit 0`

func TestEngineRun(t *testing.T) {
	ctx := context.Background()

	t.Run("program on stdin", func(t *testing.T) {
		e := NewMace4(fakeEngine(t, fakeMace4), 5*time.Second)
		ok := e.Run(ctx, "formulas(assumptions).\nreachable(1).\nend_of_list.\n")
		assert.Equal(t, Succeeded, ok.Verdict)
		assert.Equal(t, 0, ok.ExitCode)
		assert.Contains(t, ok.Transcript, "Exiting with 1 model")
		assert.NoError(t, ok.Err)

		bad := e.Run(ctx, "formulas(assumptions).\nreachable(1).\n-reachable(1).\nend_of_list.\n")
		assert.Equal(t, Disproved, bad.Verdict)
		assert.Equal(t, 2, bad.ExitCode)
	})

	t.Run("deadline kills the child", func(t *testing.T) {
		e := NewProver9(fakeEngine(t, "exec sleep 30"), 200*time.Millisecond)
		start := time.Now()
		res := e.Run(ctx, "x")
		assert.Less(t, time.Since(start), 10*time.Second)
		assert.Equal(t, TimedOut, res.Verdict)
		var te *EngineTimeoutError
		assert.ErrorAs(t, res.Err, &te)
		assert.False(t, res.Cancelled)
	})

	t.Run("caller cancellation", func(t *testing.T) {
		e := NewProver9(fakeEngine(t, "exec sleep 30"), time.Minute)
		cctx, cancel := context.WithCancel(ctx)
		time.AfterFunc(100*time.Millisecond, cancel)
		res := e.Run(cctx, "x")
		assert.True(t, res.Cancelled)
		assert.Equal(t, Errored, res.Verdict)
		assert.ErrorIs(t, res.Err, context.Canceled)
	})

	t.Run("missing binary", func(t *testing.T) {
		e := NewMace4(filepath.Join(t.TempDir(), "no-such-mace4"), time.Second)
		res := e.Run(ctx, "x")
		assert.Equal(t, Errored, res.Verdict)
		var ce *EngineCrashError
		assert.ErrorAs(t, res.Err, &ce)
	})

	t.Run("clean exit without markers", func(t *testing.T) {
		e := NewProver9(fakeEngine(t, "cat >/dev/null; echo hello"), time.Second)
		res := e.Run(ctx, "x")
		assert.Equal(t, Errored, res.Verdict)
		var ce *EngineCrashError
		require.ErrorAs(t, res.Err, &ce)
		assert.Equal(t, 0, ce.ExitCode)
	})

	t.Run("exit code fallback", func(t *testing.T) {
		e := NewProver9(fakeEngine(t, "cat >/dev/null; echo oops >&2; exit 2"), time.Second)
		res := e.Run(ctx, "x")
		assert.Equal(t, Disproved, res.Verdict)
		assert.Equal(t, "oops", res.Stderr)
	})
}
