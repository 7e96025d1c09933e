package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/taskboard-api/internal/dto"
	"github.com/noah-isme/taskboard-api/internal/models"
	"github.com/noah-isme/taskboard-api/internal/repository"
)

var (
	// ErrTaskNotFound indicates a task could not be found.
	ErrTaskNotFound = errors.New("task not found")
	// ErrStudentNotFound indicates the assignee is missing or not a student.
	ErrStudentNotFound = errors.New("student not found")
	// ErrTaskAccessDenied covers both a missing task and a task owned by someone else.
	ErrTaskAccessDenied = errors.New("unauthorized or task not found")
	// ErrAnswerRequired indicates an empty submission.
	ErrAnswerRequired = errors.New("answer is required")
	// ErrInvalidGrade indicates the grade is out of range or the task is not completed.
	ErrInvalidGrade = errors.New("invalid action")
	// ErrInvalidDueDate indicates a due date not in YYYY-MM-DD form.
	ErrInvalidDueDate = errors.New("invalid due date")
)

// DashboardInvalidator drops cached dashboards after task changes.
type DashboardInvalidator interface {
	Invalidate(ctx context.Context, userIDs ...uint)
}

// TaskService orchestrates the task lifecycle.
type TaskService interface {
	ListStudents(ctx context.Context, actor Actor) ([]dto.StudentResponse, error)
	List(ctx context.Context, actor Actor) ([]dto.TaskListItem, error)
	Get(ctx context.Context, actor Actor, id uint) (dto.TaskDetailResponse, error)
	Create(ctx context.Context, actor Actor, payload dto.TaskCreateRequest) (dto.TaskDetailResponse, error)
	Complete(ctx context.Context, actor Actor, id uint, payload dto.TaskCompleteRequest) (dto.TaskDetailResponse, error)
	Grade(ctx context.Context, actor Actor, id uint, payload dto.TaskGradeRequest) (dto.TaskDetailResponse, error)
}

type taskService struct {
	tasks      repository.TaskRepository
	users      repository.UserRepository
	activity   ActivityRecorder
	dashboards DashboardInvalidator
	validator  *validator.Validate
	logger     zerolog.Logger
	now        func() time.Time
}

// NewTaskService constructs a TaskService instance. dashboards may be nil.
func NewTaskService(tasks repository.TaskRepository, users repository.UserRepository, activity ActivityRecorder, dashboards DashboardInvalidator, validate *validator.Validate, logger zerolog.Logger) TaskService {
	return &taskService{
		tasks:      tasks,
		users:      users,
		activity:   activity,
		dashboards: dashboards,
		validator:  validate,
		logger:     logger.With().Str("component", "task_service").Logger(),
		now:        time.Now,
	}
}

func (s *taskService) ListStudents(ctx context.Context, actor Actor) ([]dto.StudentResponse, error) {
	if !actor.IsTeacher() {
		return nil, ErrForbidden
	}

	students, err := s.users.ListByRole(ctx, models.RoleStudent)
	if err != nil {
		return nil, err
	}

	return dto.NewStudentResponseSlice(students), nil
}

func (s *taskService) List(ctx context.Context, actor Actor) ([]dto.TaskListItem, error) {
	switch {
	case actor.IsTeacher():
		tasks, err := s.tasks.List(ctx, repository.TaskFilter{TeacherID: &actor.ID})
		if err != nil {
			return nil, err
		}
		return dto.NewTeacherTaskList(tasks), nil
	case actor.IsStudent():
		tasks, err := s.tasks.List(ctx, repository.TaskFilter{StudentID: &actor.ID})
		if err != nil {
			return nil, err
		}
		return dto.NewStudentTaskList(tasks), nil
	default:
		return nil, ErrForbidden
	}
}

func (s *taskService) Get(ctx context.Context, actor Actor, id uint) (dto.TaskDetailResponse, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TaskDetailResponse{}, ErrTaskNotFound
		}
		return dto.TaskDetailResponse{}, err
	}

	if !actor.IsAdmin() && !task.OwnedBy(actor.ID) {
		s.recordDenied(ctx, actor, "view", id)
		return dto.TaskDetailResponse{}, ErrForbidden
	}

	return dto.NewTaskDetailResponse(task), nil
}

func (s *taskService) Create(ctx context.Context, actor Actor, payload dto.TaskCreateRequest) (dto.TaskDetailResponse, error) {
	if !actor.IsTeacher() {
		s.recordDenied(ctx, actor, "create", 0)
		return dto.TaskDetailResponse{}, ErrForbidden
	}

	payload.Content = sanitizeText(payload.Content)
	if err := s.validator.Struct(payload); err != nil {
		return dto.TaskDetailResponse{}, err
	}

	dueDate, err := parseDueDate(payload.DueDate)
	if err != nil {
		return dto.TaskDetailResponse{}, err
	}

	if _, err := s.users.GetByIDAndRole(ctx, payload.StudentID, models.RoleStudent); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TaskDetailResponse{}, ErrStudentNotFound
		}
		return dto.TaskDetailResponse{}, err
	}

	task := models.Task{
		Content:   payload.Content,
		StudentID: payload.StudentID,
		TeacherID: actor.ID,
		DueDate:   dueDate,
		MaxPoints: payload.MaxPoints,
	}

	if err := s.tasks.Create(ctx, &task); err != nil {
		return dto.TaskDetailResponse{}, err
	}

	created, err := s.tasks.GetByID(ctx, task.ID)
	if err != nil {
		return dto.TaskDetailResponse{}, err
	}

	s.logger.Info().Uint("task_id", created.ID).Uint("teacher_id", actor.ID).Msg("task created")
	s.activity.Record(ctx, ActivityEntry{
		UserID:   &actor.ID,
		Action:   fmt.Sprintf("Created task %d for %s", created.ID, created.Student.DisplayName()),
		Metadata: map[string]interface{}{"task_id": created.ID, "student_id": created.StudentID},
	})
	s.invalidate(ctx, created)

	return dto.NewTaskDetailResponse(created), nil
}

func (s *taskService) Complete(ctx context.Context, actor Actor, id uint, payload dto.TaskCompleteRequest) (dto.TaskDetailResponse, error) {
	task, err := s.ownedTask(ctx, id, func(task models.Task) bool {
		return actor.IsStudent() && task.StudentID == actor.ID
	})
	if err != nil {
		if errors.Is(err, ErrTaskAccessDenied) {
			s.recordDenied(ctx, actor, "complete", id)
		}
		return dto.TaskDetailResponse{}, err
	}

	answer := sanitizeText(payload.Answer)
	if answer == "" {
		return dto.TaskDetailResponse{}, ErrAnswerRequired
	}
	answer = truncate(answer, 200)

	now := s.now()
	task.Answer = &answer
	task.SentDate = &now
	task.Completed = true

	if err := s.tasks.MarkCompleted(ctx, &task); err != nil {
		return dto.TaskDetailResponse{}, err
	}

	s.logger.Info().Uint("task_id", task.ID).Uint("student_id", actor.ID).Msg("task completed")
	s.activity.Record(ctx, ActivityEntry{
		UserID:   &actor.ID,
		Action:   fmt.Sprintf("Completed task %d", task.ID),
		Metadata: map[string]interface{}{"task_id": task.ID},
	})
	s.invalidate(ctx, task)

	return dto.NewTaskDetailResponse(task), nil
}

func (s *taskService) Grade(ctx context.Context, actor Actor, id uint, payload dto.TaskGradeRequest) (dto.TaskDetailResponse, error) {
	task, err := s.ownedTask(ctx, id, func(task models.Task) bool {
		return actor.IsTeacher() && task.TeacherID == actor.ID
	})
	if err != nil {
		if errors.Is(err, ErrTaskAccessDenied) {
			s.recordDenied(ctx, actor, "grade", id)
		}
		return dto.TaskDetailResponse{}, err
	}

	grade, ok := payload.GradeValue()
	if !ok || !task.CanBeGraded(grade) {
		return dto.TaskDetailResponse{}, ErrInvalidGrade
	}

	task.Grade = &grade
	task.Comment = nil
	if payload.Comment != nil {
		if comment := truncate(sanitizeText(*payload.Comment), 200); comment != "" {
			task.Comment = &comment
		}
	}

	if err := s.tasks.SaveGrade(ctx, &task); err != nil {
		return dto.TaskDetailResponse{}, err
	}

	s.logger.Info().Uint("task_id", task.ID).Int("grade", grade).Msg("task graded")
	s.activity.Record(ctx, ActivityEntry{
		UserID:   &actor.ID,
		Action:   fmt.Sprintf("Graded task %d with %d/%d", task.ID, grade, *task.MaxPoints),
		Metadata: map[string]interface{}{"task_id": task.ID, "grade": grade},
	})
	s.invalidate(ctx, task)

	return dto.NewTaskDetailResponse(task), nil
}

// ownedTask loads a task and applies the ownership rule; a missing task and a
// foreign task are reported the same way.
func (s *taskService) ownedTask(ctx context.Context, id uint, allowed func(models.Task) bool) (models.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, ErrTaskAccessDenied
		}
		return models.Task{}, err
	}
	if !allowed(task) {
		return models.Task{}, ErrTaskAccessDenied
	}
	return task, nil
}

func (s *taskService) recordDenied(ctx context.Context, actor Actor, operation string, taskID uint) {
	if actor.ID == 0 {
		return
	}
	action := fmt.Sprintf("Unauthorized attempt to %s task", operation)
	metadata := map[string]interface{}{"operation": operation}
	if taskID != 0 {
		action = fmt.Sprintf("Unauthorized attempt to %s task %d", operation, taskID)
		metadata["task_id"] = taskID
	}
	s.activity.Record(ctx, ActivityEntry{UserID: &actor.ID, Action: action, Metadata: metadata})
}

func (s *taskService) invalidate(ctx context.Context, task models.Task) {
	if s.dashboards != nil {
		s.dashboards.Invalidate(ctx, task.TeacherID, task.StudentID)
	}
}

func parseDueDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dto.DateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDueDate, value)
	}
	return &parsed, nil
}
