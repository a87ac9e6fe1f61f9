// SPDX-License-Identifier: Apache-2.0

package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joomcode/errorx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedClock returns a clock that advances one minute per call, so every
// snapshot in a test gets a distinct directory name.
func fixedClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		now := t
		t = t.Add(time.Minute)
		return now
	}
}

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	root := t.TempDir()
	m, err := NewManager(root, WithClock(fixedClock(time.Date(2021, 3, 14, 9, 26, 53, 0, time.UTC))))
	require.NoError(t, err)
	return m, root
}

func seedSource(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestCreate(t *testing.T) {
	m, root := newTestManager(t)
	source := seedSource(t, map[string]string{
		"dags/report.py":        "dag source",
		"dags/nested/helper.py": "helper source",
	})

	snap, err := m.Create("airflow_migration", source)
	require.NoError(t, err)

	assert.Equal(t, "airflow_migration", snap.Name)
	assert.Equal(t, filepath.Join(root, "airflow_migration_20210314T092653"), snap.Path)

	data, err := os.ReadFile(filepath.Join(snap.Path, "dags", "report.py"))
	require.NoError(t, err)
	assert.Equal(t, "dag source", string(data))
	assert.FileExists(t, filepath.Join(snap.Path, "dags", "nested", "helper.py"))
}

func TestCreateMissingSource(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Create("airflow_migration", filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.True(t, errorx.IsOfType(err, SnapshotError))
}

func TestRestore(t *testing.T) {
	m, _ := newTestManager(t)
	source := seedSource(t, map[string]string{"report.py": "original"})

	snap, err := m.Create("airflow_migration", source)
	require.NoError(t, err)

	// Damage the live directory, then restore from the snapshot.
	require.NoError(t, os.WriteFile(filepath.Join(source, "report.py"), []byte("corrupted"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(source, "stray.py"), []byte("stray"), 0o644))

	require.NoError(t, m.Restore(snap, source))

	data, err := os.ReadFile(filepath.Join(source, "report.py"))
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
	assert.NoFileExists(t, filepath.Join(source, "stray.py"))
	assert.NoDirExists(t, source+".restoring")
}

func TestRestoreIntoMissingTarget(t *testing.T) {
	m, _ := newTestManager(t)
	source := seedSource(t, map[string]string{"report.py": "original"})

	snap, err := m.Create("airflow_migration", source)
	require.NoError(t, err)

	target := filepath.Join(t.TempDir(), "fresh")
	require.NoError(t, m.Restore(snap, target))
	assert.FileExists(t, filepath.Join(target, "report.py"))
}

func TestLatestAndList(t *testing.T) {
	m, _ := newTestManager(t)
	source := seedSource(t, map[string]string{"report.py": "v"})

	first, err := m.Create("airflow_migration", source)
	require.NoError(t, err)
	second, err := m.Create("airflow_migration", source)
	require.NoError(t, err)
	_, err = m.Create("other_backup", source)
	require.NoError(t, err)

	snaps, err := m.List("airflow_migration")
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, first.Path, snaps[0].Path)
	assert.Equal(t, second.Path, snaps[1].Path)

	latest, err := m.Latest("airflow_migration")
	require.NoError(t, err)
	assert.Equal(t, second.Path, latest.Path)
}

func TestLatestNoSnapshots(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Latest("airflow_migration")
	require.Error(t, err)
	assert.True(t, errorx.HasTrait(err, errorx.NotFound()))
}

func TestPrune(t *testing.T) {
	m, _ := newTestManager(t)
	source := seedSource(t, map[string]string{"report.py": "v"})

	var paths []string
	for i := 0; i < 5; i++ {
		snap, err := m.Create("airflow_migration", source)
		require.NoError(t, err)
		paths = append(paths, snap.Path)
	}

	removed, err := m.Prune("airflow_migration", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	snaps, err := m.List("airflow_migration")
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, paths[3], snaps[0].Path)
	assert.Equal(t, paths[4], snaps[1].Path)

	// Pruning again is a no-op.
	removed, err = m.Prune("airflow_migration", 2)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestPruneRejectsZeroKeep(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Prune("airflow_migration", 0)
	require.Error(t, err)
	assert.True(t, errorx.IsOfType(err, SnapshotError))
}

func TestSnapshotNamesAreScoped(t *testing.T) {
	m, root := newTestManager(t)
	source := seedSource(t, map[string]string{"report.py": "v"})

	_, err := m.Create("airflow_migration", source)
	require.NoError(t, err)

	// Unrelated directories under the backup root are ignored.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "scratch"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "airflow_migration_notadate"), 0o755))

	snaps, err := m.List("airflow_migration")
	require.NoError(t, err)
	assert.Len(t, snaps, 1)
}
