package service

import (
	"context"
	"errors"
	"time"

	notificationserrors "unilab/internal/notifications/errors"
	"unilab/internal/notifications/repository"
	"unilab/pkg/config"
	apperrors "unilab/pkg/errors"
	"unilab/pkg/model"
)

// Dispatcher persists notifications. An empty recipient list creates nothing.
type Dispatcher interface {
	CreateNotification(ctx context.Context, title, msg string, recipients []string) (*model.Notification, error)
}

// EventPublisher forwards created notifications to an external feed.
type EventPublisher interface {
	PublishNotification(ctx context.Context, notification *model.Notification) error
}

type NotificationService interface {
	Dispatcher
	MarkAsSeen(ctx context.Context, id string, userID string) (*model.Notification, error)
	GetUserNotifications(ctx context.Context, userID string, limit int, offset int64) ([]*model.Notification, error)
}

type notificationService struct {
	repo      repository.NotificationRepository
	publisher EventPublisher
	cfg       *config.Config
}

// NewNotificationService wires the repository and an optional event publisher
// (nil disables the feed).
func NewNotificationService(repo repository.NotificationRepository, publisher EventPublisher, cfg *config.Config) NotificationService {
	return &notificationService{
		repo:      repo,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *notificationService) CreateNotification(ctx context.Context, title, msg string, recipients []string) (*model.Notification, error) {
	to := make([]model.Recipient, 0, len(recipients))
	for _, id := range recipients {
		if id == "" {
			continue
		}
		to = append(to, model.Recipient{User: id, Seen: false})
	}
	if len(to) == 0 {
		return nil, nil
	}

	notification := &model.Notification{
		Title:   title,
		Message: msg,
		To:      to,
		Date:    time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		s.cfg.Log.Error("Failed to create notification", "title", title, "error", err)
		return nil, apperrors.Internal("Failed to create notification", err)
	}

	s.cfg.Log.Info("Notification created",
		"id", notification.ID,
		"title", title,
		"recipients", len(to),
	)

	if s.publisher != nil {
		if err := s.publisher.PublishNotification(ctx, notification); err != nil {
			s.cfg.Log.Warn("Failed to publish notification event", "id", notification.ID, "error", err)
		}
	}

	return notification, nil
}

func (s *notificationService) MarkAsSeen(ctx context.Context, id string, userID string) (*model.Notification, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Notification ID cannot be empty")
	}

	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id)
	}

	recipient := notification.Recipient(userID)
	if recipient == nil {
		return nil, apperrors.NotFound("User in notification recipients")
	}

	if err := s.repo.MarkSeen(ctx, id, userID); err != nil {
		return nil, s.translate(err, id)
	}
	recipient.Seen = true

	s.cfg.Log.Debug("Notification marked as seen", "id", id, "user_id", userID)
	return notification, nil
}

func (s *notificationService) GetUserNotifications(ctx context.Context, userID string, limit int, offset int64) ([]*model.Notification, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}

	notifications, err := s.repo.FindByUser(ctx, userID, config.NormalizePaginationLimit(limit), config.NormalizeOffset(offset))
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve notifications", err)
	}
	return notifications, nil
}

func (s *notificationService) translate(err error, id string) error {
	switch {
	case errors.Is(err, notificationserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Notification", id)
	case errors.Is(err, notificationserrors.ErrRecipientNotFound):
		return apperrors.NotFound("User in notification recipients")
	case errors.Is(err, notificationserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid notification ID format")
	default:
		return apperrors.Internal("Failed to update notification", err)
	}
}
