// Package session persists the logged-in session to disk and watches the
// file for logins and logouts made by other processes.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/openai-costs-tui/internal/logger"
	"github.com/j-veylop/openai-costs-tui/internal/models"
)

// Event represents a session store event.
type Event struct {
	Error   error
	Session *models.Session
	Type    EventType
}

// EventType defines the type of session event.
type EventType int

const (
	// EventSessionLoaded is sent once after the store reads the file at startup.
	EventSessionLoaded EventType = iota
	// EventSessionChanged indicates a different session was saved.
	EventSessionChanged
	// EventSessionCleared indicates the session was removed.
	EventSessionCleared
	// EventSessionError indicates the file could not be read or watched.
	EventSessionError
)

const debounceInterval = 100 * time.Millisecond

// sessionFile is the on-disk format.
type sessionFile struct {
	Session *models.Session `json:"session"`
	Version int             `json:"version"`
}

// Store keeps the current session in sync with a JSON file.
type Store struct {
	current       *models.Session
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
	filePath      string
	mu            sync.RWMutex
	closeOnce     sync.Once
}

// New opens the store at filePath and starts watching it. A missing file
// means nobody is logged in.
func New(filePath string) (*Store, error) {
	s := &Store{
		filePath:  filePath,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	current, err := s.read()
	if err != nil {
		// A corrupt file is treated as logged out rather than fatal.
		logger.Warn("ignoring unreadable session file", "path", filePath, "error", err)
		current = nil
	}
	s.current = current

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	s.sendEvent(Event{Type: EventSessionLoaded, Session: s.Current()})

	return s, nil
}

// Events returns the event channel for subscribing to session changes.
func (s *Store) Events() <-chan Event {
	return s.eventChan
}

// Current returns a copy of the current session, or nil.
func (s *Store) Current() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil
	}
	sess := *s.current
	return &sess
}

// Save persists sess and makes it current.
func (s *Store) Save(sess *models.Session) error {
	if sess == nil {
		return errors.New("session is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(sessionFile{Session: sess, Version: 1}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	// Write to temp file first, then rename
	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpFile, s.filePath); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	saved := *sess
	s.current = &saved
	return nil
}

// Clear removes the session file. Clearing an absent session is not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	s.current = nil
	return nil
}

func (s *Store) read() (*models.Session, error) {
	data, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return parseSession(data)
}

func parseSession(data []byte) (*models.Session, error) {
	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	if f.Session == nil || f.Session.Token == "" {
		return nil, nil
	}
	return f.Session, nil
}

// startWatcher starts the file system watcher.
func (s *Store) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	// Watch the directory (to catch file creation/deletion)
	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

// watchLoop handles file system events with debouncing.
func (s *Store) watchLoop() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filepath.Base(s.filePath) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				s.mu.Lock()
				if s.debounceTimer != nil {
					s.debounceTimer.Stop()
				}
				s.debounceTimer = time.AfterFunc(debounceInterval, s.handleFileChange)
				s.mu.Unlock()
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventSessionError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// handleFileChange reloads the session after an external change. Writes
// made by this store reload to the same token and emit nothing. The read
// and the swap share the lock Save and Clear write under, so a reload
// never replaces a newer save with older file contents.
func (s *Store) handleFileChange() {
	s.mu.Lock()
	next, err := s.read()
	if err != nil {
		s.mu.Unlock()
		s.sendEvent(Event{Type: EventSessionError, Error: err})
		return
	}
	prev := s.current
	s.current = next
	s.mu.Unlock()

	switch {
	case next == nil && prev != nil:
		s.sendEvent(Event{Type: EventSessionCleared})
	case next != nil && (prev == nil || prev.Token != next.Token):
		sess := *next
		s.sendEvent(Event{Type: EventSessionChanged, Session: &sess})
	}
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Store) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher and cleans up resources.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stopChan)

		s.mu.Lock()
		if s.debounceTimer != nil {
			s.debounceTimer.Stop()
		}
		s.mu.Unlock()

		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}
