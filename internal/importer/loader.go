package importer

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tourdesk/tourdesk/internal/domain"
)

// EntitySource lists the master entities of one kind.
// repo.MasterRepo satisfies it.
type EntitySource interface {
	ListAll(ctx context.Context, kind domain.Kind, onlyActive bool) ([]domain.MasterEntity, error)
}

// ListCache is a shared cache of active entity lists keyed by kind, such as
// cache.RedisListCache. A miss is reported with ok == false and a nil error.
type ListCache interface {
	Get(ctx context.Context, kind domain.Kind) (list []domain.MasterEntity, ok bool, err error)
	Set(ctx context.Context, kind domain.Kind, list []domain.MasterEntity) error
}

type session struct {
	cache    *EntityCache
	loadedAt time.Time
}

// Loader builds EntityCaches for import sessions. Within a session the cache
// is built once: concurrent Load calls for the same session share a single
// fetch, and later calls reuse the result until it is older than ttl or the
// session is forgotten.
type Loader struct {
	src   EntitySource
	lists ListCache // nil disables the shared cache
	ttl   time.Duration
	now   func() time.Time

	group    singleflight.Group
	mu       sync.Mutex
	gen      uint64 // bumped whenever memoized caches go stale
	sessions map[string]session
}

// NewLoader constructs a Loader. lists may be nil.
func NewLoader(src EntitySource, lists ListCache, ttl time.Duration) *Loader {
	return &Loader{
		src:      src,
		lists:    lists,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]session),
	}
}

// Load returns the EntityCache for sessionID, fetching it on first use.
// An empty sessionID still deduplicates concurrent fetches but memoizes
// nothing. The shared fetch runs detached from any one caller's
// cancellation, so a caller that gives up does not fail the others.
func (l *Loader) Load(ctx context.Context, sessionID string) (*EntityCache, error) {
	l.mu.Lock()
	gen := l.gen
	l.mu.Unlock()

	if sessionID != "" {
		if c, ok := l.cached(sessionID); ok {
			return c, nil
		}
	}

	key := fmt.Sprintf("session:%d:%s", gen, sessionID)
	ch := l.group.DoChan(key, func() (any, error) {
		c, err := l.build(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		if sessionID != "" {
			l.mu.Lock()
			if l.gen == gen {
				l.sessions[sessionID] = session{cache: c, loadedAt: l.now()}
			}
			l.mu.Unlock()
		}
		return c, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("importer.Loader.Load: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("importer.Loader.Load: %w", res.Err)
		}
		return res.Val.(*EntityCache), nil
	}
}

// Forget drops the memoized cache of a session, e.g. when the import dialog
// is closed.
func (l *Loader) Forget(sessionID string) {
	l.mu.Lock()
	delete(l.sessions, sessionID)
	l.mu.Unlock()
}

// Invalidate drops every memoized session after a write to kind, so an
// entity created during review is visible to the next preview. Kinds the
// resolver does not use are ignored. It satisfies service.ListInvalidator.
func (l *Loader) Invalidate(_ context.Context, kind domain.Kind) error {
	if !slices.ContainsFunc(Fields, func(f Field) bool { return f.Kind() == kind }) {
		return nil
	}
	l.mu.Lock()
	l.gen++
	clear(l.sessions)
	l.mu.Unlock()
	return nil
}

func (l *Loader) cached(sessionID string) (*EntityCache, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for id, s := range l.sessions {
		if l.ttl > 0 && now.Sub(s.loadedAt) > l.ttl {
			delete(l.sessions, id)
		}
	}
	s, ok := l.sessions[sessionID]
	return s.cache, ok
}

func (l *Loader) build(ctx context.Context) (*EntityCache, error) {
	companies, err := l.list(ctx, domain.KindCompany)
	if err != nil {
		return nil, err
	}
	guides, err := l.list(ctx, domain.KindGuide)
	if err != nil {
		return nil, err
	}
	nationalities, err := l.list(ctx, domain.KindNationality)
	if err != nil {
		return nil, err
	}
	return BuildCache(companies, guides, nationalities), nil
}

// list reads one kind through the shared cache. Cache failures are logged and
// fall through to the source.
func (l *Loader) list(ctx context.Context, kind domain.Kind) ([]domain.MasterEntity, error) {
	if l.lists != nil {
		list, ok, err := l.lists.Get(ctx, kind)
		if err != nil {
			slog.WarnContext(ctx, "entity list cache read failed", "kind", kind, "error", err)
		} else if ok {
			return list, nil
		}
	}
	list, err := l.src.ListAll(ctx, kind, true)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	if l.lists != nil {
		if err := l.lists.Set(ctx, kind, list); err != nil {
			slog.WarnContext(ctx, "entity list cache write failed", "kind", kind, "error", err)
		}
	}
	return list, nil
}
