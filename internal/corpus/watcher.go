package corpus

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watcher monitors the corpus root and its project directories, evicting
// metadata-cache entries when transcripts change on disk. Without a watcher
// the cache is still correct (entries are revalidated by size and mtime);
// the watcher just keeps it from accumulating entries for deleted files.
type Watcher struct {
	root    string
	cache   *Cache
	watcher *fsnotify.Watcher
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	running bool
}

// NewWatcher creates a Watcher for the given corpus root and cache.
func NewWatcher(root string, cache *Cache) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		root:    root,
		cache:   cache,
		watcher: fsw,
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Start begins watching. A missing corpus root is tolerated; the root watch
// is established once the directory appears on a later Start call.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.addWatches(); err != nil {
		log.Warn().Err(err).Str("path", w.root).Msg("Failed to add corpus watch")
		// Continue anyway; cache revalidation covers correctness
	}

	go w.watchLoop()
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	w.running = false
	w.cancel()
	return w.watcher.Close()
}

// addWatches watches the root and each existing project directory.
func (w *Watcher) addWatches() error {
	if _, err := os.Stat(w.root); err != nil {
		return err
	}
	if err := w.watcher.Add(w.root); err != nil {
		return err
	}

	entries, err := os.ReadDir(w.root)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := w.watcher.Add(filepath.Join(w.root, entry.Name())); err != nil {
			log.Warn().Err(err).Str("dir", entry.Name()).Msg("Failed to watch project directory")
		}
	}
	return nil
}

// watchLoop is the main event loop.
func (w *Watcher) watchLoop() {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("Corpus watcher error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)

	// New project directory: start watching it
	if event.Op&fsnotify.Create != 0 && filepath.Dir(path) == filepath.Clean(w.root) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				log.Warn().Err(err).Str("dir", path).Msg("Failed to watch new project directory")
			}
			return
		}
	}

	if !strings.HasSuffix(path, SessionExt) {
		return
	}

	if event.Op&(fsnotify.Write|fsnotify.Remove|fsnotify.Rename|fsnotify.Create) != 0 {
		log.Debug().Str("file", path).Str("op", event.Op.String()).Msg("Transcript changed, evicting cached metadata")
		w.cache.Invalidate(path)
	}
}
