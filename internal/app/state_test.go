package app

import (
	"errors"
	"testing"
	"time"

	"github.com/j-veylop/openai-costs-tui/internal/models"
	"github.com/j-veylop/openai-costs-tui/internal/services/billing"
	"github.com/j-veylop/openai-costs-tui/internal/usage"
)

func testSnapshot(seq uint64) *billing.Snapshot {
	return &billing.Snapshot{
		Seq:       seq,
		Range:     models.RangeLast30Days.Resolve(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)),
		Usage:     usage.New(nil),
		FetchedAt: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewState(t *testing.T) {
	s := NewState()
	if s == nil {
		t.Fatal("NewState returned nil")
	}
	if s.Preset() != models.RangeLast30Days {
		t.Errorf("Preset() = %v, want Last 30 Days", s.Preset())
	}
	if s.Status() != StatusIdle {
		t.Errorf("Status() = %v, want idle", s.Status())
	}
	if s.IsLoggedIn() {
		t.Error("new state should be logged out")
	}
}

func TestState_CyclePreset(t *testing.T) {
	s := NewState()
	seen := map[models.DateRangePreset]bool{s.Preset(): true}

	for range len(models.DateRangePresets()) - 1 {
		seen[s.CyclePreset()] = true
	}
	if len(seen) != len(models.DateRangePresets()) {
		t.Errorf("cycling visited %d presets, want %d", len(seen), len(models.DateRangePresets()))
	}
	if s.CyclePreset() != models.RangeLast30Days {
		t.Error("cycling should wrap back to the start")
	}
}

func TestState_LastRequestWins(t *testing.T) {
	s := NewState()
	r := models.RangeToday.Resolve(time.Now())

	s.BeginLoad(1, r)
	s.BeginLoad(2, r)

	if s.ApplySnapshot(testSnapshot(1)) {
		t.Error("stale snapshot applied")
	}
	if s.Status() != StatusLoading {
		t.Errorf("Status() = %v, want loading", s.Status())
	}
	if s.ApplyError(1, errors.New("cancelled")) {
		t.Error("stale error applied")
	}

	snap := testSnapshot(2)
	if !s.ApplySnapshot(snap) {
		t.Fatal("current snapshot rejected")
	}
	if s.Snapshot() != snap || s.Status() != StatusReady {
		t.Errorf("Snapshot() = %v, Status() = %v", s.Snapshot(), s.Status())
	}
	if !s.LastUpdated().Equal(snap.FetchedAt) {
		t.Errorf("LastUpdated() = %v", s.LastUpdated())
	}
}

func TestState_ApplyErrorDropsSnapshot(t *testing.T) {
	s := NewState()
	r := models.RangeToday.Resolve(time.Now())

	s.BeginLoad(1, r)
	s.ApplySnapshot(testSnapshot(1))

	s.BeginLoad(2, r)
	boom := errors.New("boom")
	if !s.ApplyError(2, boom) {
		t.Fatal("current error rejected")
	}
	if s.Snapshot() != nil {
		t.Error("failed load should not leave the old snapshot visible")
	}
	if s.Status() != StatusFailed || !errors.Is(s.LoadError(), boom) {
		t.Errorf("Status() = %v, LoadError() = %v", s.Status(), s.LoadError())
	}

	s.BeginLoad(3, r)
	if s.LoadError() != nil {
		t.Error("BeginLoad should clear the previous error")
	}
}

func TestState_SetSessionNilResets(t *testing.T) {
	s := NewState()
	s.SetSession(&models.Session{Username: "ada", Token: "t"})
	s.BeginLoad(1, models.RangeToday.Resolve(time.Now()))
	s.ApplySnapshot(testSnapshot(1))

	s.SetSession(nil)

	if s.IsLoggedIn() || s.Snapshot() != nil || s.Status() != StatusIdle {
		t.Error("logging out should drop data")
	}
	if s.ApplySnapshot(testSnapshot(1)) {
		t.Error("a load started before logout must not apply")
	}
}

func TestState_Notifications(t *testing.T) {
	s := NewState()

	id := s.AddNotification(NotificationInfo, "hello", 0)
	if len(s.GetNotifications()) != 1 {
		t.Fatal("notification not added")
	}
	s.RemoveNotification(id)
	if len(s.GetNotifications()) != 0 {
		t.Error("notification not removed")
	}

	for range maxNotifications + 5 {
		s.AddNotification(NotificationInfo, "x", 0)
	}
	if got := len(s.GetNotifications()); got != maxNotifications {
		t.Errorf("kept %d notifications, want %d", got, maxNotifications)
	}

	s.AddNotification(NotificationInfo, "old", time.Nanosecond)
	time.Sleep(time.Millisecond)
	s.ClearExpiredNotifications()
	for _, n := range s.GetNotifications() {
		if n.Message == "old" {
			t.Error("expired notification kept")
		}
	}
}

func TestState_LoadingNotification(t *testing.T) {
	s := NewState()

	s.SetLoadingNotification("Loading...")
	s.SetLoadingNotification("Still loading...")

	notifs := s.GetNotifications()
	if len(notifs) != 1 || notifs[0].Message != "Still loading..." {
		t.Fatalf("GetNotifications() = %+v", notifs)
	}

	s.ClearLoadingNotification()
	if len(s.GetNotifications()) != 0 {
		t.Error("loading notification not cleared")
	}
}

func TestNotificationType_String(t *testing.T) {
	tests := []struct {
		typ  NotificationType
		want string
	}{
		{NotificationSuccess, "success"},
		{NotificationError, "error"},
		{NotificationWarning, "warning"},
		{NotificationInfo, "info"},
		{NotificationLoading, "loading"},
		{NotificationType(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
