package acquire

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/trialrecon/internal/config"
	"github.com/leapstack-labs/trialrecon/internal/testutil"
)

func touch(t *testing.T, path string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("id\n"), 0o600))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestLatestFile(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2016, 7, 5, 12, 0, 0, 0, time.UTC)
	touch(t, filepath.Join(dir, "sfdc_1.csv"), base)
	touch(t, filepath.Join(dir, "sfdc_2.csv"), base.Add(time.Hour))
	touch(t, filepath.Join(dir, "sfdc_3.txt"), base.Add(2*time.Hour))
	touch(t, filepath.Join(dir, "feed_1.csv"), base.Add(3*time.Hour))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sfdc_dir.csv"), 0o750))

	got, err := LatestFile(dir, "sfdc_*.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sfdc_2.csv"), got)

	_, err = LatestFile(dir, "amarillo_*.csv")
	assert.ErrorIs(t, err, ErrNoMatch)

	_, err = LatestFile(dir, "[")
	assert.Error(t, err)
}

func TestLatestFile_TieBreaksByName(t *testing.T) {
	dir := t.TempDir()
	mod := time.Date(2016, 7, 5, 12, 0, 0, 0, time.UTC)
	touch(t, filepath.Join(dir, "a_1.csv"), mod)
	touch(t, filepath.Join(dir, "a_2.csv"), mod)

	got, err := LatestFile(dir, "a_*.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a_2.csv"), got)
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "explicit.csv"), time.Now())
	touch(t, filepath.Join(dir, "amarillo_x.csv"), time.Now())

	got, err := Resolve(dir, config.Source{Name: "Amarillo", File: "explicit.csv", Pattern: "amarillo_*.csv"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "explicit.csv"), got)

	got, err = Resolve(dir, config.Source{Name: "Amarillo", Pattern: "amarillo_*.csv"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "amarillo_x.csv"), got)

	_, err = Resolve(dir, config.Source{Name: "SFDC", File: "missing.csv"})
	assert.ErrorContains(t, err, "SFDC export")

	_, err = Resolve(dir, config.Source{Name: "Feed"})
	assert.ErrorContains(t, err, "no file or pattern")
}

func TestWatcher_Matches(t *testing.T) {
	w := &Watcher{Patterns: []string{"sfdc_*.csv", "feed_*.csv"}}
	assert.True(t, w.Matches("/data/sfdc_2016.csv"))
	assert.True(t, w.Matches("feed_1.csv"))
	assert.False(t, w.Matches("/data/notes.txt"))
}

func TestWatcher_Run(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan []string, 4)
	w := &Watcher{
		Dir:      dir,
		Patterns: []string{"*.csv"},
		Debounce: 50 * time.Millisecond,
		Logger:   testutil.NewTestLogger(t),
		OnChange: func(_ context.Context, changed []string) {
			calls <- changed
		},
	}

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sfdc_1.csv"), []byte("id\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sfdc_1.csv"), []byte("id\n1\n"), 0o600))

	select {
	case changed := <-calls:
		assert.Equal(t, []string{filepath.Join(dir, "sfdc_1.csv")}, changed)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not report the change")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_MissingDir(t *testing.T) {
	w := &Watcher{Dir: filepath.Join(t.TempDir(), "missing")}
	assert.Error(t, w.Run(context.Background()))
}
