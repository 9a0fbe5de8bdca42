package service

import (
	"context"
	"strings"
	"time"

	"team-dashboard/backend/internal/models"
	"team-dashboard/backend/internal/repository"
	"team-dashboard/backend/pkg/events"
	"team-dashboard/backend/pkg/logger"
	"team-dashboard/backend/shared/observability"
)

// IdentityService owns the currentRole key of each profile
type IdentityService struct {
	repo       repository.IdentityRepository
	pageBus    events.Bus
	storageBus events.Bus
	roles      []models.Role
	metrics    *observability.Metrics
	log        *logger.Logger
	now        func() time.Time
}

// NewIdentityService creates the service. pageBus carries in-page events and
// storageBus carries key changes to the other pages of a profile.
func NewIdentityService(
	repo repository.IdentityRepository,
	pageBus, storageBus events.Bus,
	roles []models.Role,
	metrics *observability.Metrics,
	log *logger.Logger,
) *IdentityService {
	if metrics == nil {
		metrics = observability.NoopMetrics()
	}
	if log == nil {
		log = logger.Discard()
	}
	return &IdentityService{
		repo:       repo,
		pageBus:    pageBus,
		storageBus: storageBus,
		roles:      roles,
		metrics:    metrics,
		log:        log,
		now:        time.Now,
	}
}

// IsSelected reports whether name is a usable identity
func IsSelected(name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && name != models.IdentityUnselected && name != models.IdentityPlaceholder
}

// Roles returns the selector options
func (s *IdentityService) Roles() []models.Role {
	out := make([]models.Role, len(s.roles))
	copy(out, s.roles)
	return out
}

// Get returns the stored identity or the unselected sentinel
func (s *IdentityService) Get(ctx context.Context, profileID string) (string, error) {
	name, ok, err := s.repo.Get(ctx, profileID)
	if err != nil {
		return "", err
	}
	if !ok {
		return models.IdentityUnselected, nil
	}
	return name, nil
}

// Set stores name even when it is the placeholder, then notifies the writing
// page and the other pages of the profile.
func (s *IdentityService) Set(ctx context.Context, scope models.Scope, name string) error {
	ctx, span := observability.Tracer().Start(ctx, "IdentityService.Set")
	defer span.End()

	if err := s.repo.Set(ctx, scope.ProfileID, name); err != nil {
		return err
	}
	s.metrics.IdentityChanged(ctx)

	e := events.Event{
		Profile: scope.ProfileID,
		Page:    scope.PageID,
		Key:     models.KeyCurrentRole,
		Value:   name,
		At:      s.now(),
	}

	inPage := e
	inPage.Topic = events.TopicIdentityChanged
	if err := s.pageBus.Publish(ctx, inPage); err != nil {
		s.log.Warn("Failed to publish identity change", "error", err.Error())
	}

	e.Topic = events.TopicStorage
	if err := s.storageBus.Publish(ctx, e); err != nil {
		s.log.Warn("Failed to publish storage change", "key", e.Key, "error", err.Error())
	}
	return nil
}
