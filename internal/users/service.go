package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nmelnikov/authcove/internal/cache"
	"github.com/nmelnikov/authcove/internal/events"
	"github.com/nmelnikov/authcove/internal/observability"
)

// Service owns account creation, credential checks, and cache-aside reads of
// user records. The cache is an accelerator only: every cache fault on the
// read path falls through to the database.
type Service struct {
	repo      Repository
	store     cache.Store
	publisher events.Publisher
	logger    observability.Logger
	metrics   *observability.Metrics
	userTTL   time.Duration
}

// NewService wires a user service.
func NewService(repo Repository, store cache.Store, publisher events.Publisher,
	logger observability.Logger, metrics *observability.Metrics, userTTL time.Duration) *Service {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if metrics == nil {
		metrics = observability.NopMetrics()
	}
	if publisher == nil {
		publisher = events.NewNop()
	}
	return &Service{
		repo:      repo,
		store:     store,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		userTTL:   userTTL,
	}
}

func userKey(id int64) string {
	return fmt.Sprintf("user:%d", id)
}

// Register creates an account with a bcrypt-hashed password and announces it
// on the event queues.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, &User{
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Registrations.Inc()
	s.logger.Info("user registered",
		observability.Int64("userId", user.ID))

	s.publisher.Publish(ctx, events.QueueUserEvents,
		events.NewMessage(events.EventUserRegistered, user.ID, map[string]any{
			"email": user.Email,
		}))
	s.publisher.Publish(ctx, events.QueueEmailNotifications,
		events.NewEmailNotification(user.Email, "Welcome!",
			fmt.Sprintf("Welcome aboard, %s!", user.Email)))

	return user, nil
}

// Authenticate verifies an email/password pair. An unknown email and a wrong
// password produce the same ErrInvalidCredentials; a bcrypt comparison runs
// in both cases so response timing does not reveal which one happened.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			CheckPassword(dummyHash, password)
			s.metrics.Logins.WithLabelValues("failure").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPassword(user.PasswordHash, password) {
		s.metrics.Logins.WithLabelValues("failure").Inc()
		return nil, ErrInvalidCredentials
	}

	s.metrics.Logins.WithLabelValues("success").Inc()
	return user, nil
}

// GetByID resolves a user, consulting the cache first. A cached snapshot
// carries no password hash; callers needing credentials must go through
// Authenticate.
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	if cached, err := s.store.Get(ctx, userKey(id)); err == nil {
		var user User
		if unmarshalErr := json.Unmarshal(cached, &user); unmarshalErr == nil {
			return &user, nil
		}
		s.logger.Warn("corrupt user cache entry, falling through",
			observability.Int64("userId", id))
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("user cache read failed, falling through",
			observability.Int64("userId", id),
			observability.Error(err))
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cacheUser(ctx, user)
	return user, nil
}

// Update applies profile changes, refreshes the cache snapshot, and
// announces the change.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (*User, error) {
	user, err := s.repo.Update(ctx, id, input)
	if err != nil {
		return nil, err
	}

	s.cacheUser(ctx, user)
	s.logger.Info("user updated",
		observability.Int64("userId", user.ID))

	s.publisher.Publish(ctx, events.QueueUserEvents,
		events.NewMessage(events.EventUserUpdated, user.ID, map[string]any{
			"email": user.Email,
		}))

	return user, nil
}

// Delete removes the account, drops its cache entry, and announces the
// deletion.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, userKey(id)); err != nil {
		s.logger.Warn("user cache invalidation failed",
			observability.Int64("userId", id),
			observability.Error(err))
	}

	s.logger.Info("user deleted",
		observability.Int64("userId", id))

	s.publisher.Publish(ctx, events.QueueUserEvents,
		events.NewMessage(events.EventUserDeleted, id, nil))

	return nil
}

// cacheUser stores a snapshot of the user. Failures are logged only; the
// database remains the source of truth.
func (s *Service) cacheUser(ctx context.Context, user *User) {
	data, err := json.Marshal(user)
	if err != nil {
		s.logger.Warn("user cache marshal failed",
			observability.Int64("userId", user.ID),
			observability.Error(err))
		return
	}
	if err := s.store.Set(ctx, userKey(user.ID), data, s.userTTL); err != nil {
		s.logger.Warn("user cache write failed",
			observability.Int64("userId", user.ID),
			observability.Error(err))
	}
}
