// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher observes the session file for writes by other processes and
// reloads the store when they happen. This is how a second farqad
// instance's changes (new token, switched project, cleared history)
// become visible without restarting.
type Watcher struct {
	store    *Store
	watcher  *fsnotify.Watcher
	debounce time.Duration
	changes  chan struct{}
}

// NewWatcher creates a watcher for the store's backing file. The parent
// directory is watched rather than the file itself: atomic writes replace
// the file by rename, which would silently drop a direct file watch.
func NewWatcher(s *Store) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(s.path)); err != nil {
		fsw.Close()
		return nil, err
	}

	return &Watcher{
		store:    s,
		watcher:  fsw,
		debounce: 100 * time.Millisecond,
		changes:  make(chan struct{}, 1),
	}, nil
}

// Changes delivers one (coalesced) notification per external rewrite of
// the session file. The store has already been reloaded by the time a
// notification is readable.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Run processes filesystem events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.store.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Debounce: an atomic replace produces several events.
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			// A fingerprint match means the event was this process's
			// own atomic rewrite; only foreign writes notify.
			changed, err := w.store.ReloadIfChanged()
			if err != nil || !changed {
				continue
			}
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
