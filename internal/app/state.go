// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"sync"
	"time"

	"github.com/j-veylop/openai-costs-tui/internal/models"
	"github.com/j-veylop/openai-costs-tui/internal/services/billing"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

// LoadingNotificationID is the fixed ID for loading notifications.
const LoadingNotificationID = "__loading__"

const maxNotifications = 10

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	CreatedAt time.Time
	ID        string
	Message   string
	Type      NotificationType
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// LoadStatus describes what the data views should render.
type LoadStatus int

const (
	// StatusIdle means no load has been started yet.
	StatusIdle LoadStatus = iota
	// StatusLoading means a load is in flight and nothing has been applied for it.
	StatusLoading
	// StatusReady means the latest load succeeded.
	StatusReady
	// StatusFailed means the latest load failed.
	StatusFailed
)

// State is shared between the root model and its tabs.
type State struct {
	lastUpdated   time.Time
	session       *models.Session
	snapshot      *billing.Snapshot
	loadErr       error
	dateRange     models.DateRange
	notifications []Notification
	pendingSeq    uint64
	preset        models.DateRangePreset
	status        LoadStatus
	notifySeq     int
	mu            sync.RWMutex
}

// NewState creates the shared state with the default date range.
func NewState() *State {
	return &State{
		preset:        models.RangeLast30Days,
		notifications: make([]Notification, 0),
	}
}

// SetSession records the logged-in session. nil logs out and drops loaded data.
func (s *State) SetSession(sess *models.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = sess
	if sess == nil {
		s.snapshot = nil
		s.loadErr = nil
		s.status = StatusIdle
		s.pendingSeq = 0
	}
}

// Session returns the logged-in session, or nil.
func (s *State) Session() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// IsLoggedIn reports whether a session is set.
func (s *State) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session != nil
}

// Preset returns the selected date range preset.
func (s *State) Preset() models.DateRangePreset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.preset
}

// SetPreset selects a date range preset.
func (s *State) SetPreset(p models.DateRangePreset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preset = p
}

// CyclePreset advances to the next preset and returns it.
func (s *State) CyclePreset() models.DateRangePreset {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preset = s.preset.Next()
	return s.preset
}

// BeginLoad marks seq as the only load whose result may be applied.
func (s *State) BeginLoad(seq uint64, r models.DateRange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pendingSeq = seq
	s.dateRange = r
	s.status = StatusLoading
	s.loadErr = nil
}

// ApplySnapshot stores snap if it belongs to the latest load. It reports
// whether the snapshot was applied.
func (s *State) ApplySnapshot(snap *billing.Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap == nil || snap.Seq != s.pendingSeq {
		return false
	}
	s.snapshot = snap
	s.dateRange = snap.Range
	s.status = StatusReady
	s.loadErr = nil
	s.lastUpdated = snap.FetchedAt
	return true
}

// ApplyError records a failed load if seq is the latest. The previous
// snapshot is dropped so that no view shows stale figures as current.
func (s *State) ApplyError(seq uint64, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.pendingSeq {
		return false
	}
	s.snapshot = nil
	s.status = StatusFailed
	s.loadErr = err
	return true
}

// Snapshot returns the applied snapshot, or nil.
func (s *State) Snapshot() *billing.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Status returns the current load status.
func (s *State) Status() LoadStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// IsLoading reports whether a load is in flight.
func (s *State) IsLoading() bool {
	return s.Status() == StatusLoading
}

// LoadError returns the error of the latest load, if it failed.
func (s *State) LoadError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// DateRange returns the range of the latest load.
func (s *State) DateRange() models.DateRange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dateRange
}

// PendingSeq returns the sequence number of the latest load.
func (s *State) PendingSeq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pendingSeq
}

// LastUpdated returns when the applied snapshot was fetched.
func (s *State) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifySeq++
	id := time.Now().Format("20060102150405") + "-" + string(rune('A'+s.notifySeq%26))

	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.RemoveNotification(LoadingNotificationID)
}
