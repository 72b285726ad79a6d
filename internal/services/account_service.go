package services

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/caching"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
)

// AccountService answers per-request identity questions. Both answers are
// kept in capped in-process TTL caches keyed by user id.
type AccountService interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
	// EnsureRegistered records a token principal the first time it is seen
	EnsureRegistered(ctx context.Context, user *models.User) error
	// PurgeExpired drops expired cache entries and returns how many remain
	PurgeExpired() int
}

type accountService struct {
	userRepo   repositories.UserRepository
	adminCache *caching.TTLCache[uuid.UUID, bool]
	seenCache  *caching.TTLCache[uuid.UUID, struct{}]
}

func NewAccountService(userRepo repositories.UserRepository, ttl time.Duration, maxEntries int) AccountService {
	return &accountService{
		userRepo:   userRepo,
		adminCache: caching.NewTTLCache[uuid.UUID, bool](ttl, maxEntries),
		seenCache:  caching.NewTTLCache[uuid.UUID, struct{}](ttl, maxEntries),
	}
}

func (s *accountService) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	if isAdmin, ok := s.adminCache.Get(userID); ok {
		return isAdmin, nil
	}

	isAdmin, err := s.userRepo.IsAdmin(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to look up admin role: %w", err)
	}
	s.adminCache.Set(userID, isAdmin)
	return isAdmin, nil
}

func (s *accountService) EnsureRegistered(ctx context.Context, user *models.User) error {
	if _, ok := s.seenCache.Get(user.ID); ok {
		return nil
	}
	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	s.seenCache.Set(user.ID, struct{}{})
	return nil
}

func (s *accountService) PurgeExpired() int {
	return s.adminCache.Purge() + s.seenCache.Purge()
}
