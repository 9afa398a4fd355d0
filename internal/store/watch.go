package store

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultPollInterval = 2 * time.Second

// Snapshot is one full value observed at a watched path. Consumers receive
// the entire subtree on every change, never a diff.
type Snapshot struct {
	Path  string
	Value any
}

// Watcher turns the Store's point reads into live subscriptions by polling
// each watched path and delivering a snapshot whenever the serialized value
// changes. The Go Realtime Database client exposes no streaming listeners,
// so polling is the live mechanism here.
type Watcher struct {
	store    Store
	interval time.Duration
	logger   *zap.Logger
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithPollInterval overrides the poll cadence.
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithWatcherLogger attaches a logger for poll failures.
func WithWatcherLogger(logger *zap.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWatcher builds a Watcher over s.
func NewWatcher(s Store, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		store:    s,
		interval: defaultPollInterval,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Subscription is one active watch. Close is synchronous: once it returns,
// the handler will not be invoked again.
type Subscription struct {
	mu     sync.Mutex
	closed bool
	cancel context.CancelFunc
	done   chan struct{}
}

// Close stops the subscription. Safe to call more than once. An in-flight
// handler invocation completes before Close returns.
func (s *Subscription) Close() {
	s.mu.Lock()
	already := s.closed
	s.closed = true
	s.mu.Unlock()
	s.cancel()
	if !already {
		<-s.done
	}
}

// deliver invokes fn unless the subscription has been closed. Holding the
// mutex across the call is what makes Close synchronous.
func (s *Subscription) deliver(fn func(Snapshot), snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	fn(snap)
}

// Subscribe watches path, delivering the current snapshot immediately and a
// fresh one after every observed change. Poll failures are logged and the
// previous snapshot stands until the next successful read.
func (w *Watcher) Subscribe(ctx context.Context, path string, fn func(Snapshot)) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{cancel: cancel, done: make(chan struct{})}

	var value any
	if err := w.store.Get(ctx, path, &value); err != nil {
		cancel()
		close(sub.done)
		return nil, err
	}
	last, err := json.Marshal(value)
	if err != nil {
		cancel()
		close(sub.done)
		return nil, wrapError("watch", path, err)
	}
	sub.deliver(fn, Snapshot{Path: path, Value: value})

	go func() {
		defer close(sub.done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			var next any
			if err := w.store.Get(ctx, path, &next); err != nil {
				if ctx.Err() != nil {
					return
				}
				w.logger.Warn("watch poll failed", zap.String("path", path), zap.Error(err))
				continue
			}
			raw, err := json.Marshal(next)
			if err != nil {
				w.logger.Warn("watch snapshot not serializable", zap.String("path", path), zap.Error(err))
				continue
			}
			if bytes.Equal(raw, last) {
				continue
			}
			last = raw
			sub.deliver(fn, Snapshot{Path: path, Value: next})
		}
	}()
	return sub, nil
}
