package app

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/openai-costs-tui/internal/services"
)

func TestTickCmd(t *testing.T) {
	if tickCmd(time.Millisecond) == nil {
		t.Error("tickCmd returned nil")
	}
	if defaultTickCmd() == nil {
		t.Error("defaultTickCmd returned nil")
	}
}

func TestNotifyCmds(t *testing.T) {
	tests := []struct {
		name         string
		fn           func(string) tea.Cmd
		want         NotificationType
		wantDuration time.Duration
	}{
		{"Success", notifySuccessCmd, NotificationSuccess, DefaultNotificationDuration},
		{"Error", notifyErrorCmd, NotificationError, LongNotificationDuration},
		{"Warning", notifyWarningCmd, NotificationWarning, DefaultNotificationDuration},
		{"Info", notifyInfoCmd, NotificationInfo, QuickNotificationDuration},
		{"Exported", NotifyError, NotificationError, LongNotificationDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := tt.fn("hello")().(AddNotificationMsg)
			if !ok {
				t.Fatal("expected AddNotificationMsg")
			}
			if msg.Type != tt.want || msg.Message != "hello" || msg.Duration != tt.wantDuration {
				t.Errorf("msg = %+v", msg)
			}
		})
	}
}

func TestWaitForServiceEventCmd(t *testing.T) {
	ch := make(chan services.ServiceEvent, 1)
	ch <- services.ErrorEvent{Service: "x"}

	msg, ok := waitForServiceEventCmd(ch)().(ServiceEventMsg)
	if !ok {
		t.Fatal("expected ServiceEventMsg")
	}
	if e, ok := msg.Event.(services.ErrorEvent); !ok || e.Service != "x" {
		t.Errorf("Event = %#v", msg.Event)
	}

	close(ch)
	if got := waitForServiceEventCmd(ch)(); got != nil {
		t.Errorf("closed channel should yield nil, got %#v", got)
	}
}
