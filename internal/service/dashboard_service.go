package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/taskboard-api/internal/dto"
	"github.com/noah-isme/taskboard-api/internal/models"
	"github.com/noah-isme/taskboard-api/internal/observability"
	"github.com/noah-isme/taskboard-api/internal/repository"
)

// DashboardService summarises the caller's tasks and caches the result per user.
type DashboardService interface {
	DashboardInvalidator
	Get(ctx context.Context, actor Actor) (dto.DashboardResponse, error)
}

type dashboardService struct {
	tasks    repository.TaskRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewDashboardService builds the dashboard aggregator. cache may be nil.
func NewDashboardService(tasks repository.TaskRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &dashboardService{
		tasks:    tasks,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "dashboard_service").Logger(),
		now:      time.Now,
	}
}

func dashboardCacheKey(userID uint) string {
	return fmt.Sprintf("dashboard:user:%d", userID)
}

func (s *dashboardService) Get(ctx context.Context, actor Actor) (dto.DashboardResponse, error) {
	var filter repository.TaskFilter
	switch {
	case actor.IsTeacher():
		filter.TeacherID = &actor.ID
	case actor.IsStudent():
		filter.StudentID = &actor.ID
	default:
		return dto.DashboardResponse{}, ErrForbidden
	}

	cacheKey := dashboardCacheKey(actor.ID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.DashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil && response.Role == actor.Role {
				observability.DashboardCacheLookups().WithLabelValues("hit").Inc()
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
		observability.DashboardCacheLookups().WithLabelValues("miss").Inc()
	}

	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	response := s.buildResponse(actor.Role, tasks)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}

func (s *dashboardService) Invalidate(ctx context.Context, userIDs ...uint) {
	if s.cache == nil || len(userIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if id != 0 {
			keys = append(keys, dashboardCacheKey(id))
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn().Err(err).Strs("keys", keys).Msg("failed to invalidate dashboard cache")
	}
}

func (s *dashboardService) buildResponse(role string, tasks []models.Task) dto.DashboardResponse {
	now := s.now()
	response := dto.DashboardResponse{Role: role, Total: len(tasks)}
	for _, task := range tasks {
		switch {
		case task.IsGraded():
			response.Completed++
			response.Graded++
		case task.Completed:
			response.Completed++
		default:
			response.Pending++
		}
		if task.IsOverdue(now) {
			response.Overdue++
		}
	}
	return response
}
