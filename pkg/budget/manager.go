// Package budget implements the process-wide Token Budget Manager: a
// single accountant that tracks total/used/reserved tokens, serializes
// reserve/consume/release against a shared counter, and fires one-shot
// warning and exceeded signals.
package budget

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
	"github.com/google/uuid"
)

// WarnFunc is invoked at most once per Manager when used/total crosses the
// warning threshold. ExceededFunc fires every time a consume pushes used
// past total (it is not one-shot, since repeated overshoot is meaningful).
type WarnFunc func(report Report)
type ExceededFunc func(report Report)

// CategoryUsage is the consumed-token total for one budget category.
type CategoryUsage struct {
	Category models.BudgetCategory `json:"category"`
	Consumed int                   `json:"consumed"`
}

// Report is a point-in-time snapshot of the budget manager's state.
type Report struct {
	Total             int                      `json:"total"`
	Used              int                      `json:"used"`
	Reserved          int                      `json:"reserved"`
	Available         int                      `json:"available"`
	ByCategory        []CategoryUsage          `json:"byCategory"`
	LiveReservations  []models.Reservation     `json:"liveReservations"`
	WarningFired      bool                     `json:"warningFired"`
	Exceeded          bool                     `json:"exceeded"`
}

// Manager is the Token Budget Manager described in spec §4.1.
type Manager struct {
	mu            sync.Mutex
	total         int
	used          int
	reserved      int
	warnThreshold float64

	reservations map[string]*models.Reservation
	byCategory   map[models.BudgetCategory]int

	warningFired bool
	onWarn       WarnFunc
	onExceeded   ExceededFunc

	log *slog.Logger
}

// Option configures a new Manager.
type Option func(*Manager)

// WithWarnThreshold overrides the default 0.8 used/total warning ratio.
func WithWarnThreshold(ratio float64) Option {
	return func(m *Manager) { m.warnThreshold = ratio }
}

// WithWarnCallback registers the one-shot warning callback.
func WithWarnCallback(f WarnFunc) Option {
	return func(m *Manager) { m.onWarn = f }
}

// WithExceededCallback registers the exceeded-signal callback.
func WithExceededCallback(f ExceededFunc) Option {
	return func(m *Manager) { m.onExceeded = f }
}

// NewManager constructs a Manager with a total token budget T.
func NewManager(total int, opts ...Option) *Manager {
	m := &Manager{
		total:         total,
		warnThreshold: 0.8,
		reservations:  make(map[string]*models.Reservation),
		byCategory:    make(map[models.BudgetCategory]int),
		log:           slog.With("component", "budget"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Reserve commits amount against the available budget for category and
// returns a reservation id. Callbacks, if any, fire outside the lock.
func (m *Manager) Reserve(category models.BudgetCategory, amount int) (string, error) {
	m.mu.Lock()

	available := m.total - m.used - m.reserved
	if amount > available {
		m.mu.Unlock()
		return "", fmt.Errorf("%w: requested %d, available %d", ErrInsufficientBudget, amount, available)
	}

	id := uuid.NewString()
	m.reservations[id] = &models.Reservation{
		ID:        id,
		Category:  category,
		Reserved:  amount,
		Consumed:  0,
		CreatedAt: time.Now().UTC(),
	}
	m.reserved += amount
	m.log.Debug("reserved tokens", "id", id, "category", category, "amount", amount)
	m.mu.Unlock()
	return id, nil
}

// Consume records amount of actual usage against reservationID, moving it
// from reserved to used. When consumed reaches reserved the reservation is
// removed. Firing a one-shot warning and a (non-one-shot) exceeded signal
// happens synchronously but outside the internal lock.
func (m *Manager) Consume(reservationID string, amount int) error {
	m.mu.Lock()

	r, ok := m.reservations[reservationID]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrInvalidReservation, reservationID)
	}
	if r.Consumed+amount > r.Reserved {
		m.mu.Unlock()
		return fmt.Errorf("%w: reservation %s has %d remaining, tried to consume %d",
			ErrReservationExceeded, reservationID, r.Reserved-r.Consumed, amount)
	}

	r.Consumed += amount
	m.reserved -= amount
	m.used += amount
	m.byCategory[r.Category] += amount

	if r.Consumed == r.Reserved {
		delete(m.reservations, reservationID)
	}

	shouldWarn := !m.warningFired && m.total > 0 && float64(m.used)/float64(m.total) >= m.warnThreshold
	if shouldWarn {
		m.warningFired = true
	}
	exceeded := m.used > m.total

	report := m.snapshotLocked()
	m.mu.Unlock()

	if shouldWarn && m.onWarn != nil {
		m.onWarn(report)
	}
	if exceeded && m.onExceeded != nil {
		m.onExceeded(report)
	}
	return nil
}

// Release returns the unconsumed remainder of a reservation to available
// and removes it.
func (m *Manager) Release(reservationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.reservations[reservationID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidReservation, reservationID)
	}
	remaining := r.Reserved - r.Consumed
	m.reserved -= remaining
	delete(m.reservations, reservationID)
	m.log.Debug("released reservation", "id", reservationID, "remaining", remaining)
	return nil
}

// CanAfford reports whether amount is currently available without reserving it.
func (m *Manager) CanAfford(amount int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return amount <= m.total-m.used-m.reserved
}

// GetRemaining returns the currently available token count.
func (m *Manager) GetRemaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total - m.used - m.reserved
}

// GetReport returns a snapshot of the manager's full state.
func (m *Manager) GetReport() Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Report {
	byCategory := make([]CategoryUsage, 0, len(m.byCategory))
	for cat, used := range m.byCategory {
		byCategory = append(byCategory, CategoryUsage{Category: cat, Consumed: used})
	}
	live := make([]models.Reservation, 0, len(m.reservations))
	for _, r := range m.reservations {
		live = append(live, *r)
	}
	return Report{
		Total:            m.total,
		Used:             m.used,
		Reserved:         m.reserved,
		Available:        m.total - m.used - m.reserved,
		ByCategory:       byCategory,
		LiveReservations: live,
		WarningFired:     m.warningFired,
		Exceeded:         m.used > m.total,
	}
}
