package webapi

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/selarassehat/rula/internal/export"
	"github.com/selarassehat/rula/internal/series"
)

// ErrRunNotFound is returned when a run ID does not match any stored run.
var ErrRunNotFound = errors.New("run not found")

// RunStore provides access to analysed runs.
type RunStore interface {
	// ListRuns returns every stored run in no particular order.
	ListRuns() ([]*export.Run, error)
	// GetRun returns a single run.
	GetRun(id string) (*export.Run, error)
	// SaveAdjustment records a recalculation against a stored run.
	SaveAdjustment(id string, adj *series.Adjusted) error
}

// FileStore reads run JSON files from a directory.
type FileStore struct {
	dir string

	mu      sync.RWMutex
	runs    map[string]*export.Run
	loaded  bool
	loadErr error
}

// NewFileStore creates a FileStore that reads results from dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{
		dir:  dir,
		runs: make(map[string]*export.Run),
	}
}

// load reads all run files from the configured directory. Files that do not
// parse as runs are skipped.
func (fs *FileStore) load() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.runs = make(map[string]*export.Run)

	if fs.dir == "" {
		fs.loaded = true
		return nil
	}

	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		if os.IsNotExist(err) {
			fs.loaded = true
			return nil
		}
		fs.loadErr = err
		return err
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		run, err := export.LoadRun(filepath.Join(fs.dir, e.Name()))
		if err != nil {
			continue
		}
		fs.runs[run.ID] = run
	}

	fs.loaded = true
	fs.loadErr = nil
	return nil
}

// ensureLoaded loads data if not already loaded.
func (fs *FileStore) ensureLoaded() error {
	fs.mu.RLock()
	if fs.loaded {
		fs.mu.RUnlock()
		return nil
	}
	fs.mu.RUnlock()
	return fs.load()
}

// Reload forces a fresh reload of all run files from disk.
func (fs *FileStore) Reload() error {
	return fs.load()
}

// ListRuns returns every stored run.
func (fs *FileStore) ListRuns() ([]*export.Run, error) {
	if err := fs.ensureLoaded(); err != nil {
		return nil, err
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	runs := make([]*export.Run, 0, len(fs.runs))
	for _, r := range fs.runs {
		runs = append(runs, r)
	}
	return runs, nil
}

// GetRun returns a single run.
func (fs *FileStore) GetRun(id string) (*export.Run, error) {
	if err := fs.ensureLoaded(); err != nil {
		return nil, err
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	r, ok := fs.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	return r, nil
}

// SaveAdjustment stores adj on the run and rewrites its file.
func (fs *FileStore) SaveAdjustment(id string, adj *series.Adjusted) error {
	if err := fs.ensureLoaded(); err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	r, ok := fs.runs[id]
	if !ok {
		return ErrRunNotFound
	}
	updated := *r
	updated.Adjusted = adj
	if _, err := export.SaveRun(fs.dir, &updated); err != nil {
		return err
	}
	fs.runs[id] = &updated
	return nil
}

// Ensure FileStore satisfies RunStore.
var _ RunStore = (*FileStore)(nil)
