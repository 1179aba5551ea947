package assets

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/stratus/engine/core"
)

var ErrWatcherClosed = errors.New("scene watcher already closed")

/**
 * @brief Watches a scene manifest on disk. Bursts of writes to the manifest
 * are collapsed into a single notification on Changes once the file has been
 * quiet for the debounce interval. The watcher never loads anything itself;
 * the main loop decides what to do with a change.
 */
type SceneWatcher struct {
	path     string
	debounce time.Duration

	mutex    sync.Mutex
	isClosed bool
	done     chan struct{}
	wg       sync.WaitGroup
	fsnotify *fsnotify.Watcher
	changes  chan string
}

// NewSceneWatcher starts watching the directory holding manifestPath.
// Editors often replace files instead of writing them in place, so the
// directory is watched rather than the file.
func NewSceneWatcher(manifestPath string, debounce time.Duration) (*SceneWatcher, error) {
	abs, err := filepath.Abs(manifestPath)
	if err != nil {
		return nil, err
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatch.Add(filepath.Dir(abs)); err != nil {
		fsWatch.Close()
		return nil, err
	}

	sw := &SceneWatcher{
		path:     abs,
		debounce: debounce,
		done:     make(chan struct{}),
		fsnotify: fsWatch,
		changes:  make(chan string, 1),
	}
	sw.wg.Add(1)
	go sw.start()

	core.LogDebug("watching scene manifest %s", abs)
	return sw, nil
}

// Changes delivers the manifest path after each settled burst of writes.
// At most one notification is pending at a time.
func (sw *SceneWatcher) Changes() <-chan string {
	return sw.changes
}

// Poll reports a pending change without blocking.
func (sw *SceneWatcher) Poll() (string, bool) {
	select {
	case path := <-sw.changes:
		return path, true
	default:
		return "", false
	}
}

func (sw *SceneWatcher) Close() error {
	sw.mutex.Lock()
	if sw.isClosed {
		sw.mutex.Unlock()
		return ErrWatcherClosed
	}
	sw.isClosed = true
	sw.mutex.Unlock()

	close(sw.done)
	sw.wg.Wait()
	return sw.fsnotify.Close()
}

func (sw *SceneWatcher) start() {
	defer sw.wg.Done()

	timer := time.NewTimer(sw.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case e, ok := <-sw.fsnotify.Events:
			if !ok {
				return
			}
			if !sw.isManifest(e) {
				continue
			}
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(sw.debounce)
			pending = true

		case <-timer.C:
			pending = false
			sw.notify()

		case err, ok := <-sw.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("scene watcher: %s", err)

		case <-sw.done:
			timer.Stop()
			return
		}
	}
}

func (sw *SceneWatcher) isManifest(e fsnotify.Event) bool {
	if filepath.Clean(e.Name) != sw.path {
		return false
	}
	return e.Op&(fsnotify.Create|fsnotify.Write) != 0
}

// notify drops the change if one is already waiting; the reader reloads the
// whole manifest either way.
func (sw *SceneWatcher) notify() {
	select {
	case sw.changes <- sw.path:
	default:
	}
}
