package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"partsbot/internal"
	"partsbot/internal/connectors"
	"partsbot/internal/fields"
	"partsbot/internal/metrics"
	"partsbot/internal/storage"
)

const metaLastLoad = "catalog.last_load"

// Catalog keeps the current inventory snapshot and reloads it from the record
// source once the TTL has passed.
type Catalog struct {
	source  connectors.RecordSource
	db      *storage.DB
	aliases fields.AliasTable
	ttl     time.Duration
	metrics *metrics.Registry
	now     func() time.Time

	reload    sync.Mutex
	mu        sync.RWMutex
	snap      *Snapshot
	checkedAt time.Time
}

// New builds a catalog. db and m may be nil.
func New(source connectors.RecordSource, db *storage.DB, aliases fields.AliasTable, ttl time.Duration, m *metrics.Registry) *Catalog {
	if aliases == nil {
		aliases = fields.DefaultAliases()
	}
	return &Catalog{
		source:  source,
		db:      db,
		aliases: aliases,
		ttl:     ttl,
		metrics: m,
		now:     time.Now,
	}
}

func (c *Catalog) Aliases() fields.AliasTable { return c.aliases }

// Current returns the loaded snapshot without triggering a reload.
func (c *Catalog) Current() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

func (c *Catalog) stale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap == nil || c.now().Sub(c.checkedAt) >= c.ttl
}

// EnsureFresh returns a usable snapshot, reloading first when forced or when
// the TTL elapsed. A failed reload keeps serving the previous snapshot; with
// nothing loaded yet the rows persisted by the last good load are used.
func (c *Catalog) EnsureFresh(ctx context.Context, force bool) (*Snapshot, error) {
	if !force && !c.stale() {
		return c.Current(), nil
	}

	c.reload.Lock()
	defer c.reload.Unlock()
	if !force && !c.stale() {
		return c.Current(), nil
	}

	snap, err := c.load(ctx)
	if err == nil {
		return snap, nil
	}

	c.mu.Lock()
	c.checkedAt = c.now()
	prev := c.snap
	c.mu.Unlock()
	if prev != nil {
		log.Warn().Err(err).Str("source", c.source.Name()).Msg("catalog reload failed, serving previous snapshot")
		return prev, nil
	}

	stored, serr := c.loadStored()
	if serr != nil || stored == nil {
		return nil, err
	}
	log.Warn().Err(err).Int("records", stored.Len()).Msg("catalog source unavailable, serving stored snapshot")
	return stored, nil
}

// Reload loads the source unconditionally and reports the record count.
func (c *Catalog) Reload(ctx context.Context) (int, error) {
	c.reload.Lock()
	defer c.reload.Unlock()
	snap, err := c.load(ctx)
	if err != nil {
		return 0, err
	}
	return snap.Len(), nil
}

func (c *Catalog) load(ctx context.Context) (*Snapshot, error) {
	started := time.Now()
	records, err := c.source.LoadRecords(ctx)
	if err != nil {
		c.metrics.ObserveReload(started, 0, err)
		return nil, fmt.Errorf("load %s: %w", c.source.Name(), err)
	}

	now := c.now()
	snap := BuildSnapshot(records, c.aliases, c.source.Name(), now)
	c.mu.Lock()
	c.snap = snap
	c.checkedAt = now
	c.mu.Unlock()
	c.metrics.ObserveReload(started, snap.Len(), nil)

	tokens, images := snap.IndexSize()
	log.Info().
		Str("source", snap.Source).
		Int("records", snap.Len()).
		Int("tokens", tokens).
		Int("images", images).
		Dur("took", time.Since(started)).
		Msg("catalog loaded")

	if c.db != nil {
		if err := c.db.ReplaceRecords(records, c.codeOf); err != nil {
			log.Warn().Err(err).Msg("persist catalog")
		} else {
			_ = c.db.SetMetadata(metaLastLoad, now.UTC().Format(time.RFC3339))
		}
	}
	return snap, nil
}

func (c *Catalog) loadStored() (*Snapshot, error) {
	if c.db == nil {
		return nil, nil
	}
	records, err := c.db.ListRecords()
	if err != nil || len(records) == 0 {
		return nil, err
	}

	loadedAt := c.now()
	if last, err := c.db.GetMetadata(metaLastLoad); err == nil && last != nil {
		if parsed, err := time.Parse(time.RFC3339, *last); err == nil {
			loadedAt = parsed
		}
	}
	snap := BuildSnapshot(records, c.aliases, "storage", loadedAt)
	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()
	return snap, nil
}

func (c *Catalog) codeOf(r internal.Record) string {
	return strings.ToLower(c.aliases.Resolve(r, internal.FieldCode, ""))
}

// Search refreshes if needed and runs the lookup chain.
func (c *Catalog) Search(ctx context.Context, q string) (Result, error) {
	if strings.TrimSpace(q) == "" {
		return Result{}, ErrEmptyQuery
	}
	snap, err := c.EnsureFresh(ctx, false)
	if err != nil {
		return Result{}, err
	}
	res, err := snap.Search(q)
	if err == nil {
		c.metrics.ObserveSearch(res.Tier)
	}
	return res, err
}

func (c *Catalog) FindByCode(ctx context.Context, code string) (Item, error) {
	snap, err := c.EnsureFresh(ctx, false)
	if err != nil {
		return Item{}, err
	}
	item, ok := snap.FindByCode(code)
	if !ok {
		return Item{}, ErrNotFound
	}
	return item, nil
}

func (c *Catalog) FindImage(ctx context.Context, code string) (string, error) {
	snap, err := c.EnsureFresh(ctx, false)
	if err != nil {
		return "", err
	}
	return snap.FindImage(code), nil
}
