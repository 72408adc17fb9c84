// Copyright (c) 2025 @AmarnathCJD

package session

import (
	"context"
	"sync"
	"time"

	"github.com/amarnathcjd/moocauth/internal/utils"
	"github.com/pkg/errors"
)

// Acquirer performs a fresh login. The browser-driven login lives outside
// this module; callers plug it in here.
type Acquirer func(ctx context.Context) (*Credential, error)

// Provider hands out a usable credential.
type Provider interface {
	Credential(ctx context.Context) (*Credential, error)
	Invalidate() error
}

// CachedProvider serves the stored credential while it is valid and falls
// back to the acquirer otherwise, persisting what it returns. Concurrent
// callers share a single acquisition.
type CachedProvider struct {
	mu      sync.Mutex
	store   Store
	acquire Acquirer
	log     *utils.Logger
	now     func() time.Time
}

var _ Provider = (*CachedProvider)(nil)

func NewCachedProvider(store Store, acquire Acquirer, log *utils.Logger) *CachedProvider {
	if store == nil {
		store = NewInMemory()
	}
	if log == nil {
		log = utils.Discard()
	}
	return &CachedProvider{store: store, acquire: acquire, log: log, now: time.Now}
}

func (p *CachedProvider) Credential(ctx context.Context) (*Credential, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	c, err := p.store.Load()
	switch {
	case err == nil && c.Valid(p.now()):
		p.log.Debugf("using cached credential from %s", p.store.Path())
		return c, nil
	case err == nil:
		p.log.Info("cached credential expired")
	case errors.Is(err, ErrSessionNotFound):
		p.log.Debug("no cached credential")
	default:
		p.log.WithError(err).Warn("ignoring unreadable credential cache")
	}

	if p.acquire == nil {
		return nil, errors.WithStack(ErrSessionNotFound)
	}
	c, err = p.acquire(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "acquiring credential")
	}
	if !c.Valid(p.now()) {
		return nil, errors.New("session: acquirer returned an unusable credential")
	}
	if err := p.store.Store(c); err != nil {
		p.log.WithError(err).Warn("could not persist credential")
	}
	return c, nil
}

// Invalidate drops the cached credential so the next call logs in again.
func (p *CachedProvider) Invalidate() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.store.Delete()
}
