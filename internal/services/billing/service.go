package billing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/j-veylop/openai-costs-tui/internal/logger"
	"github.com/j-veylop/openai-costs-tui/internal/models"
	"github.com/j-veylop/openai-costs-tui/internal/projects"
	"github.com/j-veylop/openai-costs-tui/internal/usage"
)

// ErrLoadFailed wraps any failure that prevented a snapshot from being built.
var ErrLoadFailed = errors.New("data load failed")

// Fetcher is the part of Client the service depends on.
type Fetcher interface {
	Costs(ctx context.Context, q CostsQuery) (*models.CostsPage, error)
	Projects(ctx context.Context, q ProjectsQuery) (*models.ProjectsPage, error)
	Invalidate()
}

// Snapshot is the result of one completed load.
type Snapshot struct {
	FetchedAt time.Time
	Usage     *usage.Usage
	Directory *projects.Directory
	Range     models.DateRange
	Seq       uint64
}

// ServiceConfig holds the request limits used for every load.
type ServiceConfig struct {
	CostsLimit      int
	ProjectsLimit   int
	IncludeArchived bool
}

// Service coordinates loads so that only the most recently started one is
// applied. Starting a load cancels the one before it.
type Service struct {
	fetcher Fetcher
	cancel  context.CancelFunc
	now     func() time.Time
	config  ServiceConfig
	latest  uint64
	mu      sync.Mutex
}

// NewService creates a fetch coordinator around f.
func NewService(f Fetcher, cfg ServiceConfig) *Service {
	return &Service{
		fetcher: f,
		config:  cfg,
		now:     time.Now,
	}
}

// BeginFetch issues the next sequence number and a context for it. The
// previous in-flight load, if any, is cancelled.
func (s *Service) BeginFetch(parent context.Context) (context.Context, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.latest++

	return ctx, s.latest
}

// IsCurrent reports whether seq belongs to the most recently started load.
func (s *Service) IsCurrent(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return seq == s.latest
}

// Fetch loads projects and costs for r concurrently and aggregates them.
// Either request failing fails the whole load.
func (s *Service) Fetch(ctx context.Context, seq uint64, r models.DateRange) (*Snapshot, error) {
	var (
		costs    *models.CostsPage
		projList *models.ProjectsPage
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := s.fetcher.Projects(gctx, ProjectsQuery{
			Limit:           s.config.ProjectsLimit,
			IncludeArchived: s.config.IncludeArchived,
		})
		if err != nil {
			return err
		}
		projList = page
		return nil
	})
	g.Go(func() error {
		page, err := s.fetcher.Costs(gctx, CostsQuery{
			Start: r.Start,
			End:   r.End,
			Limit: s.config.CostsLimit,
		})
		if err != nil {
			return err
		}
		costs = page
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Warn("load failed", "seq", seq, "range", r.Label, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	snap := &Snapshot{
		Seq:       seq,
		Range:     r,
		Usage:     usage.New(costs),
		Directory: projects.New(projList.Data),
		FetchedAt: s.now(),
	}

	logger.Info("load completed",
		"seq", seq,
		"range", r.Label,
		"projects", snap.Usage.ProjectCount(),
		"total", snap.Usage.TotalCost().StringFixed(2))

	return snap, nil
}

// Refresh drops cached responses so the next load hits the API.
func (s *Service) Refresh() {
	s.fetcher.Invalidate()
}

// Close cancels any in-flight load.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
