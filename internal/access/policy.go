package access

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"partsbot/internal/connectors"
	"partsbot/internal/storage"
)

// Policy answers access questions from the users sheet plus the ADMINS list
// from the environment. Without a users source everybody is allowed.
type Policy struct {
	source connectors.UserSource
	db     *storage.DB
	admins map[int64]struct{}
	ttl    time.Duration
	now    func() time.Time

	reload    sync.Mutex
	mu        sync.RWMutex
	sets      Sets
	loaded    bool
	checkedAt time.Time
}

func NewPolicy(source connectors.UserSource, db *storage.DB, envAdmins []int64, ttl time.Duration) *Policy {
	admins := make(map[int64]struct{}, len(envAdmins))
	for _, id := range envAdmins {
		admins[id] = struct{}{}
	}
	return &Policy{
		source: source,
		db:     db,
		admins: admins,
		ttl:    ttl,
		now:    time.Now,
		sets:   newSets(),
	}
}

func (p *Policy) stale() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return !p.loaded || p.now().Sub(p.checkedAt) >= p.ttl
}

// Refresh reloads the users sheet when forced or stale. On failure the
// previous sets stay; before the first success the stored copy is used.
func (p *Policy) Refresh(ctx context.Context, force bool) error {
	if p.source == nil {
		return nil
	}
	if !force && !p.stale() {
		return nil
	}
	p.reload.Lock()
	defer p.reload.Unlock()
	if !force && !p.stale() {
		return nil
	}

	rows, err := p.source.LoadUserRows(ctx)
	if err != nil {
		p.mu.Lock()
		p.checkedAt = p.now()
		first := !p.loaded
		p.loaded = true
		p.mu.Unlock()
		if first && p.db != nil {
			if stored, serr := p.db.ListUsers(); serr == nil && len(stored) > 0 {
				p.setSets(SetsFromRows(stored))
				log.Warn().Err(err).Int("users", len(stored)).Msg("users sheet unavailable, using stored users")
			}
		}
		return err
	}

	sets := ParseUsers(rows)
	p.setSets(sets)
	p.mu.Lock()
	p.checkedAt = p.now()
	p.loaded = true
	p.mu.Unlock()
	log.Info().
		Int("allowed", len(sets.Allowed)).
		Int("admins", len(sets.Admins)).
		Int("blocked", len(sets.Blocked)).
		Msg("users loaded")

	if p.db != nil {
		if err := p.db.ReplaceUsers(sets.Rows()); err != nil {
			log.Warn().Err(err).Msg("persist users")
		}
	}
	return nil
}

func (p *Policy) setSets(s Sets) {
	p.mu.Lock()
	p.sets = s
	p.mu.Unlock()
}

func (p *Policy) ensure(ctx context.Context) {
	if err := p.Refresh(ctx, false); err != nil {
		log.Warn().Err(err).Msg("refresh users")
	}
}

func (p *Policy) IsBlocked(ctx context.Context, uid int64) bool {
	p.ensure(ctx)
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, blocked := p.sets.Blocked[uid]
	return blocked
}

// IsAllowed: blocked users never pass. When the sheet lists allowed users the
// id must be among them or be an admin; an empty list allows everyone.
func (p *Policy) IsAllowed(ctx context.Context, uid int64) bool {
	p.ensure(ctx)
	p.mu.RLock()
	defer p.mu.RUnlock()
	if _, ok := p.sets.Blocked[uid]; ok {
		return false
	}
	if len(p.sets.Allowed) == 0 {
		return true
	}
	if _, ok := p.sets.Allowed[uid]; ok {
		return true
	}
	if _, ok := p.sets.Admins[uid]; ok {
		return true
	}
	_, ok := p.admins[uid]
	return ok
}

func (p *Policy) IsAdmin(ctx context.Context, uid int64) bool {
	if _, ok := p.admins[uid]; ok {
		return true
	}
	p.ensure(ctx)
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.sets.Admins[uid]
	return ok
}
