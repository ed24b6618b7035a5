package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/openai-costs-tui/internal/models"
	"github.com/j-veylop/openai-costs-tui/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// restoreSessionCmd validates the stored session.
func restoreSessionCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		sess, err := mgr.RestoreSession(context.Background())
		return SessionRestoredMsg{Session: sess, Err: err}
	}
}

// loginCmd authenticates and persists the session.
func loginCmd(mgr *services.Manager, username, password string) tea.Cmd {
	return func() tea.Msg {
		sess, err := mgr.Login(context.Background(), username, password)
		return LoginResultMsg{Session: sess, Err: err}
	}
}

// logoutCmd clears the stored session.
func logoutCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		return LogoutResultMsg{Err: mgr.Logout()}
	}
}

// fetchCmd runs the load identified by seq. The context was issued by
// BeginFetch and is cancelled when a newer load starts.
func fetchCmd(ctx context.Context, mgr *services.Manager, seq uint64, r models.DateRange) tea.Cmd {
	return func() tea.Msg {
		snap, err := mgr.Fetch(ctx, seq, r)
		return DataLoadedMsg{Seq: seq, Snapshot: snap, Err: err}
	}
}

// changePasswordCmd changes the logged-in user's password.
func changePasswordCmd(mgr *services.Manager, current, next string) tea.Cmd {
	return func() tea.Msg {
		return PasswordChangedMsg{Err: mgr.ChangePassword(context.Background(), current, next)}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

func notifyCmd(t NotificationType, message string, d time.Duration) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: t, Message: message, Duration: d}
	}
}

func notifySuccessCmd(message string) tea.Cmd {
	return notifyCmd(NotificationSuccess, message, DefaultNotificationDuration)
}

func notifyErrorCmd(message string) tea.Cmd {
	return notifyCmd(NotificationError, message, LongNotificationDuration)
}

func notifyWarningCmd(message string) tea.Cmd {
	return notifyCmd(NotificationWarning, message, DefaultNotificationDuration)
}

func notifyInfoCmd(message string) tea.Cmd {
	return notifyCmd(NotificationInfo, message, QuickNotificationDuration)
}

// NotifyError returns a command that shows an error toast. Tabs use it for
// local validation failures.
func NotifyError(message string) tea.Cmd {
	return notifyErrorCmd(message)
}
