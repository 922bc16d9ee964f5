package services

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/CrowderSoup/taskboard/api"
)

// Profiler fetches the profile behind the stored token.
type Profiler interface {
	Me(ctx context.Context) (*api.User, error)
}

// ProfileCache keeps the last fetched profile around between runs.
type ProfileCache interface {
	SaveUser(user *api.User) error
}

// IdentityStore holds the current user. It is built once at start and
// shared; callers read it instead of fetching /me themselves.
type IdentityStore struct {
	profiles Profiler
	tokens   api.TokenSource
	cache    ProfileCache
	log      *zap.Logger

	mu      sync.RWMutex
	user    *api.User
	loading bool
	err     error
}

func NewIdentityStore(profiles Profiler, tokens api.TokenSource, cache ProfileCache, log *zap.Logger) *IdentityStore {
	if log == nil {
		log = zap.L()
	}
	return &IdentityStore{profiles: profiles, tokens: tokens, cache: cache, log: log}
}

// Current returns a copy of the current user, or nil.
func (s *IdentityStore) Current() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *IdentityStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err is the error of the last refresh.
func (s *IdentityStore) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Invalidate forgets the current user.
func (s *IdentityStore) Invalidate() {
	s.mu.Lock()
	s.user = nil
	s.err = nil
	s.mu.Unlock()
}

// Refresh drops the current user and fetches it again. Without a stored
// token there is nothing to fetch: the store ends up empty and not loading.
func (s *IdentityStore) Refresh(ctx context.Context) (*api.User, error) {
	token, err := s.tokens.Token()
	if err != nil {
		s.finish(nil, err)
		return nil, err
	}
	if token == "" {
		s.finish(nil, nil)
		return nil, nil
	}

	s.mu.Lock()
	s.user = nil
	s.err = nil
	s.loading = true
	s.mu.Unlock()

	user, err := s.profiles.Me(ctx)
	if errors.Is(err, api.ErrNotAuthenticated) {
		s.finish(nil, nil)
		return nil, nil
	}
	if err != nil {
		s.log.Warn("failed to fetch user", zap.Error(err))
		s.finish(nil, err)
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SaveUser(user); err != nil {
			s.log.Warn("failed to cache user", zap.Error(err))
		}
	}
	s.finish(user, nil)
	return s.Current(), nil
}

func (s *IdentityStore) finish(user *api.User, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.err = err
	s.loading = false
}
