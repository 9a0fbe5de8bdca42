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

	"github.com/google/uuid"
)

// WelcomeMessageID is the id of the seeded board message
const WelcomeMessageID = "system-welcome"

// MessageServiceConfig defines how messages are stamped
type MessageServiceConfig struct {
	TimeLayout     string
	WelcomeUser    string
	WelcomeMessage string
}

// DefaultMessageServiceConfig returns default configuration
func DefaultMessageServiceConfig() MessageServiceConfig {
	return MessageServiceConfig{
		TimeLayout:     "2006/1/2 15:04:05",
		WelcomeUser:    "System",
		WelcomeMessage: "欢迎来到团队讨论区！请先选择身份后参与讨论。",
	}
}

// MessageService owns the team_messages key of each profile
type MessageService struct {
	repo       repository.MessageRepository
	storageBus events.Bus
	config     MessageServiceConfig
	metrics    *observability.Metrics
	log        *logger.Logger
	locks      *keyedMutex

	now   func() time.Time
	newID func() string
}

// NewMessageService creates a new message service
func NewMessageService(
	repo repository.MessageRepository,
	storageBus events.Bus,
	config MessageServiceConfig,
	metrics *observability.Metrics,
	log *logger.Logger,
) *MessageService {
	if metrics == nil {
		metrics = observability.NoopMetrics()
	}
	if log == nil {
		log = logger.Discard()
	}
	return &MessageService{
		repo:       repo,
		storageBus: storageBus,
		config:     config,
		metrics:    metrics,
		log:        log,
		locks:      newKeyedMutex(),
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

func (s *MessageService) lock(profileID string) func() {
	return s.locks.Lock(profileID + ":" + models.KeyMessages)
}

// Append stores one message from user and returns it. Nothing is written when
// user is not a selected identity or content is blank.
func (s *MessageService) Append(ctx context.Context, scope models.Scope, user, content string) (*models.Message, error) {
	ctx, span := observability.Tracer().Start(ctx, "MessageService.Append")
	defer span.End()

	if !IsSelected(user) {
		return nil, ErrIdentityRequired
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	unlock := s.lock(scope.ProfileID)
	messages, err := s.repo.List(ctx, scope.ProfileID)
	if err != nil {
		unlock()
		return nil, err
	}

	taken := make(map[string]struct{}, len(messages))
	for _, m := range messages {
		taken[m.EffectiveID()] = struct{}{}
	}
	id := s.newID()
	for {
		if _, dup := taken[id]; !dup {
			break
		}
		id = s.newID()
	}

	msg := models.Message{
		ID:      id,
		User:    user,
		Content: content,
		Time:    s.now().Format(s.config.TimeLayout),
	}
	err = s.repo.Replace(ctx, scope.ProfileID, append(messages, msg))
	unlock()
	if err != nil {
		return nil, err
	}

	s.metrics.MessageAppended(ctx)
	s.notify(ctx, scope)
	s.syncToServer(msg)
	return &msg, nil
}

// LoadAll returns the board in stored order, seeding the welcome message into
// an empty board first.
func (s *MessageService) LoadAll(ctx context.Context, scope models.Scope) ([]models.Message, error) {
	unlock := s.lock(scope.ProfileID)
	messages, err := s.repo.List(ctx, scope.ProfileID)
	if err != nil || len(messages) > 0 {
		unlock()
		return messages, err
	}

	messages = []models.Message{{
		ID:      WelcomeMessageID,
		User:    s.config.WelcomeUser,
		Content: s.config.WelcomeMessage,
		Time:    s.now().Format(s.config.TimeLayout),
	}}
	err = s.repo.Replace(ctx, scope.ProfileID, messages)
	unlock()
	if err != nil {
		return nil, err
	}

	s.notify(ctx, scope)
	return messages, nil
}

// Deduplicate rewrites the board keeping the first message of each effective
// id. The board is only written when something changed.
func (s *MessageService) Deduplicate(ctx context.Context, scope models.Scope) ([]models.Message, error) {
	unlock := s.lock(scope.ProfileID)
	messages, err := s.repo.List(ctx, scope.ProfileID)
	if err != nil {
		unlock()
		return nil, err
	}

	unique, changed := DeduplicateMessages(messages)
	if !changed {
		unlock()
		return unique, nil
	}

	err = s.repo.Replace(ctx, scope.ProfileID, unique)
	unlock()
	if err != nil {
		return nil, err
	}

	s.log.Info("Removed duplicate messages",
		"profile", scope.ProfileID,
		"before", len(messages),
		"after", len(unique),
	)
	s.notify(ctx, scope)
	return unique, nil
}

// DeduplicateMessages keeps the first occurrence of each effective id and
// gives every message its effective id. changed reports whether the result
// differs from the input.
func DeduplicateMessages(messages []models.Message) (unique []models.Message, changed bool) {
	seen := make(map[string]struct{}, len(messages))
	unique = make([]models.Message, 0, len(messages))

	for _, m := range messages {
		id := m.EffectiveID()
		if _, dup := seen[id]; dup {
			changed = true
			continue
		}
		seen[id] = struct{}{}
		if m.ID != id {
			m.ID = id
			changed = true
		}
		unique = append(unique, m)
	}
	return unique, changed
}

func (s *MessageService) notify(ctx context.Context, scope models.Scope) {
	err := s.storageBus.Publish(ctx, events.Event{
		Topic:   events.TopicStorage,
		Profile: scope.ProfileID,
		Page:    scope.PageID,
		Key:     models.KeyMessages,
		At:      s.now(),
	})
	if err != nil {
		s.log.Warn("Failed to publish storage change", "key", models.KeyMessages, "error", err.Error())
	}
}

// syncToServer stands in for a remote board; it only records the message
func (s *MessageService) syncToServer(msg models.Message) {
	s.log.Info("Message sent", "user", msg.User, "message_id", msg.ID, "content", msg.Content)
}
