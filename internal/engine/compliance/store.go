// internal/engine/compliance/store.go
package compliance

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"lesson-template-workers/internal/common/logger"
	"lesson-template-workers/internal/common/metrics"

	"github.com/fsnotify/fsnotify"
)

// RuleSource hands out the rule book an evaluation should run against.
// Implementations must return a book that is never mutated afterwards.
type RuleSource interface {
	Current() RuleBook
}

type staticSource struct {
	book RuleBook
}

func (s staticSource) Current() RuleBook { return s.book }

// StaticRules wraps a fixed rule book.
func StaticRules(book RuleBook) RuleSource {
	return staticSource{book: book.Clone()}
}

// RuleStore keeps the active rule book, optionally backed by a YAML file that
// is re-read whenever it changes. A failed reload keeps the previous book.
type RuleStore struct {
	path     string
	debounce time.Duration
	logger   logger.Logger

	mu   sync.RWMutex
	book RuleBook
}

func NewRuleStore(path string, log logger.Logger) (*RuleStore, error) {
	s := &RuleStore{
		path:     path,
		debounce: 200 * time.Millisecond,
		logger:   log.WithFields(map[string]interface{}{"component": "compliance-rules"}),
		book:     DefaultRuleBook(),
	}
	if path == "" {
		return s, nil
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *RuleStore) Current() RuleBook {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.book
}

func (s *RuleStore) Reload() error {
	if s.path == "" {
		return nil
	}
	book, err := LoadRuleBookFile(s.path, DefaultRuleBook())
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.book = book
	s.mu.Unlock()

	s.logger.Info("compliance rule book loaded", map[string]interface{}{
		"path":      s.path,
		"standards": book.Names(),
	})
	return nil
}

// Watch reloads the rule book on file changes until ctx is done. The parent
// directory is watched so editors that replace the file atomically are seen.
func (s *RuleStore) Watch(ctx context.Context) error {
	if s.path == "" {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watch %s: %w", s.path, err)
	}
	target := filepath.Clean(s.path)

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != target || event.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}
			timerMu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(s.debounce, func() {
				if err := s.Reload(); err != nil {
					metrics.ComplianceRuleReloads.WithLabelValues("failure").Inc()
					s.logger.Error("compliance rule book reload failed", map[string]interface{}{
						"path":  s.path,
						"error": err.Error(),
					})
					return
				}
				metrics.ComplianceRuleReloads.WithLabelValues("success").Inc()
			})
			timerMu.Unlock()

		case err, ok := <-w.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			s.logger.Warn("rule book watcher error", map[string]interface{}{"error": err.Error()})
		}
	}
}
