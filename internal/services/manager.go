// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"
	"github.com/shopspring/decimal"

	"github.com/j-veylop/openai-costs-tui/internal/config"
	"github.com/j-veylop/openai-costs-tui/internal/db"
	"github.com/j-veylop/openai-costs-tui/internal/logger"
	"github.com/j-veylop/openai-costs-tui/internal/models"
	"github.com/j-veylop/openai-costs-tui/internal/services/auth"
	"github.com/j-veylop/openai-costs-tui/internal/services/billing"
	"github.com/j-veylop/openai-costs-tui/internal/services/session"
)

type (
	// SessionChangedEvent is emitted when another process saved a session.
	SessionChangedEvent struct {
		Session *models.Session
	}

	// SessionClearedEvent is emitted when the session was removed, either
	// by another process or because it failed validation.
	SessionClearedEvent struct {
		Reason error
	}

	// CostAlertEvent is emitted when a range's total crosses the alert
	// threshold upward.
	CostAlertEvent struct {
		Range     models.DateRange
		Total     decimal.Decimal
		Threshold decimal.Decimal
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (SessionChangedEvent) isServiceEvent() {}
func (SessionClearedEvent) isServiceEvent() {}
func (CostAlertEvent) isServiceEvent()      {}
func (ErrorEvent) isServiceEvent()          {}

// Manager orchestrates services and event routing.
type Manager struct {
	mu             sync.RWMutex
	cfg            *config.Config
	database       *db.DB
	auth           *auth.Service
	sessions       *session.Store
	client         *billing.Client
	billing        *billing.Service
	notify         func(title, body string) error
	stopChan       chan struct{}
	subscribers    []chan<- ServiceEvent
	previousTotals map[models.DateRangePreset]decimal.Decimal
	closeOnce      sync.Once
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		cfg:            cfg,
		stopChan:       make(chan struct{}),
		previousTotals: make(map[models.DateRangePreset]decimal.Decimal),
		notify: func(title, body string) error {
			return beeep.Notify(title, body, "")
		},
	}

	var err error
	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	m.auth = auth.New(m.database, auth.Config{
		Secret:     cfg.SessionSecret,
		SessionTTL: cfg.SessionTTL,
	})
	if err := m.auth.SeedDefaultAdmin(context.Background()); err != nil {
		_ = m.database.Close()
		return nil, err
	}

	m.sessions, err = session.New(cfg.SessionPath)
	if err != nil {
		_ = m.database.Close()
		return nil, err
	}

	m.client, err = billing.NewClient(billing.Config{
		BaseURL:        cfg.APIBase,
		AdminKey:       cfg.AdminKey,
		OrganizationID: cfg.OrganizationID,
		Timeout:        cfg.RequestTimeout,
		CacheTTL:       cfg.CacheTTL,
	})
	if err != nil {
		_ = m.sessions.Close()
		_ = m.database.Close()
		return nil, err
	}

	m.billing = billing.NewService(m.client, billing.ServiceConfig{
		CostsLimit:    cfg.CostsLimit,
		ProjectsLimit: cfg.ProjectsLimit,
	})

	go m.routeEvents()

	return m, nil
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.sessions.Events():
			m.handleSessionEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

// handleSessionEvent converts and broadcasts session store events. The
// startup state is read through RestoreSession, so Loaded is not forwarded.
func (m *Manager) handleSessionEvent(event session.Event) {
	switch event.Type {
	case session.EventSessionChanged:
		m.broadcast(SessionChangedEvent{Session: event.Session})

	case session.EventSessionCleared:
		m.broadcast(SessionClearedEvent{})

	case session.EventSessionError:
		m.broadcast(ErrorEvent{
			Service: "session",
			Error:   event.Error,
		})
	}
}

// isAuthFailure reports whether err means the session can no longer be used.
func isAuthFailure(err error) bool {
	return errors.Is(err, auth.ErrSessionExpired) || errors.Is(err, auth.ErrInvalidSession)
}

// dropSession clears the stored session after an auth-surface failure.
func (m *Manager) dropSession(reason error) {
	if err := m.sessions.Clear(); err != nil {
		logger.Error("failed to clear session", "error", err)
	}
	logger.Info("session dropped", "reason", reason)
	m.broadcast(SessionClearedEvent{Reason: reason})
}

// Login authenticates and persists the new session.
func (m *Manager) Login(ctx context.Context, username, password string) (*models.Session, error) {
	sess, err := m.auth.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if err := m.sessions.Save(sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return sess, nil
}

// Logout forgets the current session.
func (m *Manager) Logout() error {
	return m.sessions.Clear()
}

// RestoreSession validates the stored session. A nil session with a nil
// error means nobody is logged in. An expired or invalid session is
// cleared and its error returned.
func (m *Manager) RestoreSession(ctx context.Context) (*models.Session, error) {
	sess := m.sessions.Current()
	if sess == nil {
		return nil, nil
	}

	if err := m.auth.Validate(ctx, sess); err != nil {
		if isAuthFailure(err) {
			m.dropSession(err)
		}
		return nil, err
	}
	return sess, nil
}

// ChangePassword changes the logged-in user's password.
func (m *Manager) ChangePassword(ctx context.Context, current, next string) error {
	sess := m.sessions.Current()
	if sess == nil {
		return auth.ErrInvalidSession
	}

	err := m.auth.ChangePassword(ctx, sess, current, next)
	if isAuthFailure(err) {
		m.dropSession(err)
	}
	return err
}

// BeginFetch starts a new load and cancels the previous one.
func (m *Manager) BeginFetch(parent context.Context) (context.Context, uint64) {
	return m.billing.BeginFetch(parent)
}

// Fetch runs the load identified by seq. Billing errors, including
// billing.ErrUnauthorized, never touch the session.
func (m *Manager) Fetch(ctx context.Context, seq uint64, r models.DateRange) (*billing.Snapshot, error) {
	snap, err := m.billing.Fetch(ctx, seq, r)
	if err != nil {
		return nil, err
	}
	if m.billing.IsCurrent(seq) {
		m.checkCostAlert(snap)
	}
	return snap, nil
}

// IsCurrent reports whether seq is the latest load.
func (m *Manager) IsCurrent(seq uint64) bool {
	return m.billing.IsCurrent(seq)
}

// Refresh drops cached billing responses.
func (m *Manager) Refresh() {
	m.billing.Refresh()
}

// checkCostAlert notifies when a range's total crosses the threshold upward
// relative to the previous load of the same range.
func (m *Manager) checkCostAlert(snap *billing.Snapshot) {
	if m.cfg.CostAlertThreshold <= 0 || snap.Usage == nil {
		return
	}
	threshold := decimal.NewFromFloat(m.cfg.CostAlertThreshold)
	total := snap.Usage.TotalCost()

	m.mu.Lock()
	prev, exists := m.previousTotals[snap.Range.Preset]
	m.previousTotals[snap.Range.Preset] = total
	m.mu.Unlock()

	if !exists {
		return
	}

	if total.GreaterThanOrEqual(threshold) && prev.LessThan(threshold) {
		title := fmt.Sprintf("Cost alert: %s", snap.Range.Label)
		body := fmt.Sprintf("Spend reached $%s (threshold $%s)", total.StringFixed(2), threshold.StringFixed(2))
		if err := m.notify(title, body); err != nil {
			logger.Warn("failed to send notification", "error", err)
		}
		m.broadcast(CostAlertEvent{
			Range:     snap.Range,
			Total:     total,
			Threshold: threshold,
		})
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	var errs []error
	m.closeOnce.Do(func() {
		close(m.stopChan)

		m.mu.Lock()
		for _, sub := range m.subscribers {
			close(sub)
		}
		m.subscribers = nil
		m.mu.Unlock()

		m.billing.Close()
		m.client.Close()

		if err := m.sessions.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}
