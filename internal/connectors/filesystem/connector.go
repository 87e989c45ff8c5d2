// Package filesystem reads uploadable documents from a local folder and
// watches it for new or changed files.
package filesystem

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/acadrag/internal/logger"
)

// DefaultSettle is how long a file must stay quiet before a change is emitted.
const DefaultSettle = 500 * time.Millisecond

// ErrAlreadyWatching is returned when Watch is called twice.
var ErrAlreadyWatching = errors.New("filesystem: already watching")

// ChangeType describes what happened to a file.
type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// Change is one settled file event.
type Change struct {
	Type ChangeType
	Path string
}

// Connector lists and watches files with supported extensions under a root.
type Connector struct {
	rootPath   string
	extensions map[string]bool
	settle     time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// New creates a connector for rootPath. With no extensions, .pdf, .txt and
// .md files are accepted.
func New(rootPath string, extensions ...string) *Connector {
	if len(extensions) == 0 {
		extensions = []string{".pdf", ".txt", ".md"}
	}
	ext := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		ext[strings.ToLower(e)] = true
	}
	return &Connector{rootPath: rootPath, extensions: ext, settle: DefaultSettle}
}

// WithSettle overrides the quiet period before a change is emitted.
func (c *Connector) WithSettle(d time.Duration) *Connector {
	c.settle = d
	return c
}

// Type returns the connector type name.
func (c *Connector) Type() string {
	return "filesystem"
}

// RootPath returns the watched folder.
func (c *Connector) RootPath() string {
	return c.rootPath
}

func (c *Connector) accepts(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return c.extensions[strings.ToLower(filepath.Ext(base))]
}

// FullSync returns every accepted file under the root, sorted by path.
// Hidden directories are skipped.
func (c *Connector) FullSync(ctx context.Context) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if path != c.rootPath && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if c.accepts(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// Watch emits settled changes to accepted files directly under the root
// until ctx is cancelled or Close is called.
func (c *Connector) Watch(ctx context.Context) (<-chan Change, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watcher != nil {
		return nil, ErrAlreadyWatching
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(c.rootPath); err != nil {
		w.Close()
		return nil, err
	}
	c.watcher = w

	out := make(chan Change)
	go c.loop(ctx, w, out)
	return out, nil
}

func (c *Connector) loop(ctx context.Context, w *fsnotify.Watcher, out chan<- Change) {
	done := make(chan struct{})
	pending := make(map[string]*Change)
	ready := make(chan string)
	timers := make(map[string]*time.Timer)
	defer func() {
		close(done)
		for _, t := range timers {
			t.Stop()
		}
		close(out)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			change := c.handleFsEvent(ev)
			if change == nil {
				continue
			}
			// a create followed by writes is still a create
			if prev, ok := pending[change.Path]; ok && prev.Type == ChangeCreated && change.Type == ChangeUpdated {
				change.Type = ChangeCreated
			}
			pending[change.Path] = change
			path := change.Path
			if t, ok := timers[path]; ok {
				t.Stop()
			}
			timers[path] = time.AfterFunc(c.settle, func() {
				select {
				case ready <- path:
				case <-done:
				}
			})

		case path := <-ready:
			change, ok := pending[path]
			if !ok {
				continue
			}
			delete(pending, path)
			delete(timers, path)
			select {
			case out <- *change:
			case <-ctx.Done():
				return
			}

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Warn("watch %s: %v", c.rootPath, err)
		}
	}
}

// handleFsEvent maps a raw event to a change, or nil when it is ignored.
func (c *Connector) handleFsEvent(ev fsnotify.Event) *Change {
	if !c.accepts(ev.Name) {
		return nil
	}

	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return &Change{Type: ChangeDeleted, Path: ev.Name}
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		info, err := os.Stat(ev.Name)
		if err != nil || info.IsDir() {
			return nil
		}
		if ev.Has(fsnotify.Create) {
			return &Change{Type: ChangeCreated, Path: ev.Name}
		}
		return &Change{Type: ChangeUpdated, Path: ev.Name}
	}
	return nil
}

// Close stops watching.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watcher == nil {
		return nil
	}
	err := c.watcher.Close()
	c.watcher = nil
	return err
}
