package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/taskboard-api/internal/dto"
	"github.com/noah-isme/taskboard-api/internal/models"
	"github.com/noah-isme/taskboard-api/internal/repository"
)

// ErrForbidden indicates the caller is authenticated but lacks the role or ownership.
var ErrForbidden = errors.New("forbidden")

// ActivityEntry captures the details required to persist an audit entry.
type ActivityEntry struct {
	UserID   *uint
	Action   string
	Metadata map[string]interface{}
}

// ActivityRecorder appends audit entries. Recording never fails the caller.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry)
}

// ActivityService exposes methods to query and persist activity logs.
type ActivityService interface {
	ActivityRecorder
	Append(ctx context.Context, entry ActivityEntry) (models.ActivityLog, error)
	List(ctx context.Context, actor Actor, req dto.ActivityListRequest) ([]dto.ActivityResponse, error)
}

type activityService struct {
	repo      repository.ActivityLogRepository
	users     repository.UserRepository
	publisher ActivityPublisher
	logger    zerolog.Logger
}

// NewActivityService constructs the activity log service. publisher may be nil.
func NewActivityService(repo repository.ActivityLogRepository, users repository.UserRepository, publisher ActivityPublisher, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:      repo,
		users:     users,
		publisher: publisher,
		logger:    logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) {
	if _, err := s.Append(ctx, entry); err != nil {
		s.logger.Error().Err(err).Str("action", entry.Action).Msg("failed to record activity")
	}
}

func (s *activityService) Append(ctx context.Context, entry ActivityEntry) (models.ActivityLog, error) {
	action := strings.TrimSpace(entry.Action)
	if action == "" {
		return models.ActivityLog{}, fmt.Errorf("action is required")
	}

	if entry.UserID != nil {
		user, err := s.users.GetByID(ctx, *entry.UserID)
		if err != nil {
			s.logger.Warn().Err(err).Uint("user_id", *entry.UserID).Msg("activity actor not found")
		} else {
			action = fmt.Sprintf("%s, %s", user.DisplayName(), action)
		}
	}

	model := models.ActivityLog{
		UserID:   entry.UserID,
		Action:   truncate(action, 255),
		Metadata: sanitizeMetadata(entry.Metadata),
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		return models.ActivityLog{}, err
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, NewActivityEvent(model)); err != nil {
			s.logger.Warn().Err(err).Uint("log_id", model.ID).Msg("failed to publish activity event")
		}
	}

	return model, nil
}

func (s *activityService) List(ctx context.Context, actor Actor, req dto.ActivityListRequest) ([]dto.ActivityResponse, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	entries, _, err := s.repo.List(ctx, repository.ActivityLogFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
		UserID:   req.UserID,
	})
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewActivityResponse(entry))
	}
	return responses, nil
}

func sanitizeMetadata(metadata map[string]interface{}) datatypes.JSONMap {
	if metadata == nil {
		return datatypes.JSONMap{}
	}

	sanitized := datatypes.JSONMap{}
	for key, value := range metadata {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "email") || strings.Contains(lower, "token") {
			sanitized[key] = "***"
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
