package refresher

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"partsbot/internal/access"
	"partsbot/internal/catalog"
	"partsbot/internal/export"
)

// Service reloads the catalog and the users sheet on a fixed interval so
// requests rarely pay for a reload.
type Service struct {
	catalog  *catalog.Catalog
	policy   *access.Policy
	interval time.Duration
	// exportDir, when set, receives catalog.xlsx after every cycle.
	exportDir string
}

func NewService(cat *catalog.Catalog, policy *access.Policy, interval time.Duration, exportDir string) *Service {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Service{catalog: cat, policy: policy, interval: interval, exportDir: exportDir}
}

func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.RunCycle(ctx); err != nil {
			log.Error().Err(err).Msg("refresh cycle")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.interval):
		}
	}
}

func (s *Service) RunCycle(ctx context.Context) error {
	started := time.Now()
	snap, err := s.catalog.EnsureFresh(ctx, true)
	if err != nil {
		return err
	}
	if s.policy != nil {
		if err := s.policy.Refresh(ctx, true); err != nil {
			log.Warn().Err(err).Msg("refresh users")
		}
	}

	if s.exportDir != "" {
		items := make([]catalog.Item, 0, snap.Len())
		for i := 0; i < snap.Len(); i++ {
			if it, ok := snap.Item(i); ok {
				items = append(items, it)
			}
		}
		if err := export.SaveXLSX(items, filepath.Join(s.exportDir, "catalog.xlsx")); err != nil {
			return err
		}
	}

	log.Info().
		Str("source", snap.Source).
		Int("records", snap.Len()).
		Dur("took", time.Since(started)).
		Msg("refresh cycle done")
	return nil
}
