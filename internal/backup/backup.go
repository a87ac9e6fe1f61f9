// SPDX-License-Identifier: Apache-2.0

// Package backup creates and restores timestamped snapshots of deployment
// directories. Snapshots live side by side under a single backup root and
// are named "<name>_<timestamp>" so the latest one can be recovered by a
// lexicographic sort. A file lock on the backup root keeps concurrent
// invocations from interleaving snapshot writes.
package backup

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
)

const (
	snapshotTimeFormat = "20060102T150405"
	lockFileName       = ".airlift.lock"

	dirPerm  = os.FileMode(0o755)
	filePerm = os.FileMode(0o644)
)

var reSnapshot = regexp.MustCompile(`^(.+)_([0-9]{8}T[0-9]{6})$`)

// Snapshot is one timestamped copy of a source directory.
type Snapshot struct {
	// Name is the logical name shared by all snapshots of the same source.
	Name string
	// Date is the creation time encoded in the directory name.
	Date time.Time
	// Path is the absolute path of the snapshot directory.
	Path string
}

// Manager creates, restores and prunes snapshots under one backup root.
type Manager struct {
	root   string
	clock  func() time.Time
	logger *zerolog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// NewManager returns a Manager rooted at the given backup directory. The
// directory is created if it does not exist.
func NewManager(root string, opts ...Option) (*Manager, error) {
	nop := zerolog.Nop()
	m := &Manager{
		root:   root,
		clock:  time.Now,
		logger: &nop,
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := os.MkdirAll(root, dirPerm); err != nil {
		return nil, SnapshotError.Wrap(err, "failed to create backup root %s", root)
	}
	return m, nil
}

// Create copies sourceDir into a new snapshot named after name and the
// current time and returns the snapshot.
func (m *Manager) Create(name string, sourceDir string) (*Snapshot, error) {
	lock, err := m.acquireLock()
	if err != nil {
		return nil, err
	}
	defer func() { _ = lock.Unlock() }()

	date := m.clock().UTC().Truncate(time.Second)
	snap := &Snapshot{
		Name: name,
		Date: date,
		Path: filepath.Join(m.root, name+"_"+date.Format(snapshotTimeFormat)),
	}

	if _, err := os.Stat(snap.Path); err == nil {
		return nil, SnapshotError.New("snapshot %s already exists", snap.Path)
	}

	m.logger.Info().
		Str("source", sourceDir).
		Str("snapshot", snap.Path).
		Msg("Creating backup snapshot")

	if err := copyTree(sourceDir, snap.Path); err != nil {
		// Leave no partial snapshot behind.
		_ = os.RemoveAll(snap.Path)
		return nil, SnapshotError.Wrap(err, "failed to snapshot %s", sourceDir)
	}
	return snap, nil
}

// Restore replaces targetDir with the contents of the snapshot. The existing
// target is moved aside until the copy succeeds, then removed.
func (m *Manager) Restore(snap *Snapshot, targetDir string) error {
	lock, err := m.acquireLock()
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	m.logger.Info().
		Str("snapshot", snap.Path).
		Str("target", targetDir).
		Msg("Restoring backup snapshot")

	staging := targetDir + ".restoring"
	_ = os.RemoveAll(staging)
	if _, err := os.Stat(targetDir); err == nil {
		if err := os.Rename(targetDir, staging); err != nil {
			return SnapshotError.Wrap(err, "failed to move aside %s", targetDir)
		}
	}

	if err := copyTree(snap.Path, targetDir); err != nil {
		// Put the original back if the copy failed part way.
		_ = os.RemoveAll(targetDir)
		_ = os.Rename(staging, targetDir)
		return SnapshotError.Wrap(err, "failed to restore snapshot %s", snap.Path)
	}

	_ = os.RemoveAll(staging)
	return nil
}

// Latest returns the most recent snapshot for name.
func (m *Manager) Latest(name string) (*Snapshot, error) {
	snaps, err := m.List(name)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, NotFoundError.New("no snapshots found for %s under %s", name, m.root)
	}
	return snaps[len(snaps)-1], nil
}

// List returns all snapshots for name, oldest first.
func (m *Manager) List(name string) ([]*Snapshot, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		return nil, SnapshotError.Wrap(err, "failed to read backup root %s", m.root)
	}

	var snaps []*Snapshot
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		match := reSnapshot.FindStringSubmatch(entry.Name())
		if match == nil || match[1] != name {
			continue
		}
		date, err := time.Parse(snapshotTimeFormat, match[2])
		if err != nil {
			continue
		}
		snaps = append(snaps, &Snapshot{
			Name: name,
			Date: date,
			Path: filepath.Join(m.root, entry.Name()),
		})
	}

	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Date.Before(snaps[j].Date) })
	return snaps, nil
}

// Prune removes the oldest snapshots for name until at most keep remain.
// A keep value below one is rejected since it would delete every snapshot.
func (m *Manager) Prune(name string, keep int) (int, error) {
	if keep < 1 {
		return 0, SnapshotError.New("keep must be at least 1, got %d", keep)
	}

	lock, err := m.acquireLock()
	if err != nil {
		return 0, err
	}
	defer func() { _ = lock.Unlock() }()

	snaps, err := m.List(name)
	if err != nil {
		return 0, err
	}

	removed := 0
	for len(snaps)-removed > keep {
		victim := snaps[removed]
		m.logger.Info().Str("snapshot", victim.Path).Msg("Pruning backup snapshot")
		if err := os.RemoveAll(victim.Path); err != nil {
			return removed, SnapshotError.Wrap(err, "failed to prune %s", victim.Path)
		}
		removed++
	}
	return removed, nil
}

func (m *Manager) acquireLock() (*flock.Flock, error) {
	lock := flock.New(filepath.Join(m.root, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, LockError.Wrap(err, "failed to lock backup root %s", m.root)
	}
	if !locked {
		return nil, LockError.New("backup root %s is locked by another process", m.root)
	}
	return lock, nil
}

// copyTree recursively copies src to dst preserving regular files and
// symlinks. dst must not exist beforehand.
func copyTree(src string, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(src)
		if err != nil {
			return err
		}
		return os.Symlink(target, dst)
	case info.IsDir():
		if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
			return err
		}
		entries, err := os.ReadDir(src)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if entry.Name() == lockFileName {
				continue
			}
			err := copyTree(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name()))
			if err != nil {
				return err
			}
		}
		return nil
	default:
		return copyFile(src, dst, info.Mode().Perm())
	}
}

func copyFile(src string, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
