// Copyright 2019 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package cache

import (
	"sync"

	"github.com/juju/pubsub/v2"
	"gopkg.in/tomb.v2"
)

// LinodeWatcher notifies when the cached state of one linode changes.
// Receivers read the new state back from the Store.
type LinodeWatcher interface {
	Changes() <-chan struct{}
	Kill()
	Wait() error
	Stop() error
}

type linodeWatcher struct {
	tomb    tomb.Tomb
	changes chan struct{}
	// We can't send down a closed channel, so protect the sending
	// with a mutex and bool.
	closed bool
	mu     sync.Mutex

	linodeID string
}

func newLinodeWatcher(id string, hub *pubsub.SimpleHub) *linodeWatcher {
	// A single entry buffer coalesces notifications the receiver has
	// not consumed yet.
	w := &linodeWatcher{
		changes:  make(chan struct{}, 1),
		linodeID: id,
	}
	w.changes <- struct{}{}
	unsub := hub.Subscribe(linodeUpdatedTopic, w.onUpdate)
	w.tomb.Go(func() error {
		<-w.tomb.Dying()
		unsub()
		return nil
	})
	return w
}

// Changes returns the notification channel. It is closed when the
// watcher is killed.
func (w *linodeWatcher) Changes() <-chan struct{} {
	return w.changes
}

// Kill stops the watcher.
func (w *linodeWatcher) Kill() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	// The watcher must be dying or dead before we close the channel.
	w.tomb.Kill(nil)
	w.closed = true
	close(w.changes)
}

// Wait waits for the watcher to finish.
func (w *linodeWatcher) Wait() error {
	return w.tomb.Wait()
}

// Stop kills the watcher and waits for it to finish.
func (w *linodeWatcher) Stop() error {
	w.Kill()
	return w.Wait()
}

func (w *linodeWatcher) onUpdate(topic string, data interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	id, ok := data.(string)
	if !ok {
		logger.Criticalf("programming error: topic data expected string, got %T", data)
		return
	}
	if id != w.linodeID {
		return
	}
	select {
	case w.changes <- struct{}{}:
	default:
		// A notification is already pending.
	}
}
