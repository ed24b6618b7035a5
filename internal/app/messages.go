package app

import (
	"time"

	"github.com/j-veylop/openai-costs-tui/internal/models"
	"github.com/j-veylop/openai-costs-tui/internal/services"
	"github.com/j-veylop/openai-costs-tui/internal/services/billing"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// SessionRestoredMsg carries the result of validating the stored session
// at startup or after another process changed it.
type SessionRestoredMsg struct {
	Session *models.Session
	Err     error
}

// LoginRequestMsg is sent by the login view when the form is submitted.
type LoginRequestMsg struct {
	Username string
	Password string
}

// LoginResultMsg carries the outcome of a login attempt.
type LoginResultMsg struct {
	Session *models.Session
	Err     error
}

// LogoutResultMsg signals that the session was cleared.
type LogoutResultMsg struct {
	Err error
}

// LoggedOutMsg tells views to reset after the session ended.
type LoggedOutMsg struct {
	Reason error
}

// LoadStartedMsg tells views a new load is in flight.
type LoadStartedMsg struct {
	Range models.DateRange
	Seq   uint64
}

// DataLoadedMsg carries the result of the load identified by Seq.
type DataLoadedMsg struct {
	Snapshot *billing.Snapshot
	Err      error
	Seq      uint64
}

// DataAppliedMsg tells views that a fresh snapshot is in State.
type DataAppliedMsg struct {
	Snapshot *billing.Snapshot
}

// RangeChangedMsg is sent after the date range preset changed.
type RangeChangedMsg struct {
	Preset models.DateRangePreset
}

// RefreshMsg requests a fresh load that bypasses the response cache.
type RefreshMsg struct{}

// ChangePasswordRequestMsg is sent by the info tab's password form.
type ChangePasswordRequestMsg struct {
	Current string
	Next    string
}

// PasswordChangedMsg carries the outcome of a password change.
type PasswordChangedMsg struct {
	Err error
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Message  string
	Type     NotificationType
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}
