package network

import (
	"context"
	"slices"
	"sync"

	"github.com/ayoisaiah/focusguard/internal/models"
)

// DefaultHistoryLimit is the number of attempts a MemoryHistory keeps.
const DefaultHistoryLimit = 500

// History is a bounded log of blocked access attempts. When full, the oldest
// entries are evicted.
type History interface {
	Record(ctx context.Context, a models.BlockedAttempt) error
	Entries(ctx context.Context) ([]models.BlockedAttempt, error)
	Clear(ctx context.Context) error
}

// MemoryHistory keeps attempts in memory.
type MemoryHistory struct {
	entries []models.BlockedAttempt
	limit   int
	mu      sync.Mutex
}

// NewMemoryHistory returns a history that keeps the most recent limit
// entries.
func NewMemoryHistory(limit int) *MemoryHistory {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	return &MemoryHistory{limit: limit}
}

func (h *MemoryHistory) Record(_ context.Context, a models.BlockedAttempt) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, a)

	if excess := len(h.entries) - h.limit; excess > 0 {
		h.entries = slices.Delete(h.entries, 0, excess)
	}

	return nil
}

func (h *MemoryHistory) Entries(_ context.Context) ([]models.BlockedAttempt, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return slices.Clone(h.entries), nil
}

func (h *MemoryHistory) Clear(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = nil

	return nil
}
