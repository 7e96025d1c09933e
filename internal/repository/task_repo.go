package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/taskboard-api/internal/models"
)

// TaskFilter narrows task queries to one participant.
type TaskFilter struct {
	TeacherID *uint
	StudentID *uint
}

// TaskRepository defines data operations for tasks.
type TaskRepository interface {
	List(ctx context.Context, filter TaskFilter) ([]models.Task, error)
	GetByID(ctx context.Context, id uint) (models.Task, error)
	Create(ctx context.Context, task *models.Task) error
	MarkCompleted(ctx context.Context, task *models.Task) error
	SaveGrade(ctx context.Context, task *models.Task) error
	SetFilePath(ctx context.Context, id uint, path string) error
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository instantiates the repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Task{}).
		Preload("Student").
		Preload("Teacher")
}

func (r *taskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	query := r.baseQuery(ctx)

	if filter.TeacherID != nil {
		query = query.Where("teacher_id = ?", *filter.TeacherID)
	}

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}

	var tasks []models.Task
	if err := query.Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *taskRepository) GetByID(ctx context.Context, id uint) (models.Task, error) {
	var task models.Task
	if err := r.baseQuery(ctx).First(&task, id).Error; err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Omit("Student", "Teacher").Create(task).Error
}

// MarkCompleted writes only the submission columns so a concurrent grade is not clobbered.
func (r *taskRepository) MarkCompleted(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Model(&models.Task{ID: task.ID}).
		Select("answer", "sent_date", "completed").
		Updates(map[string]interface{}{
			"answer":    task.Answer,
			"sent_date": task.SentDate,
			"completed": task.Completed,
		}).Error
}

// SaveGrade writes only the grading columns.
func (r *taskRepository) SaveGrade(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Model(&models.Task{ID: task.ID}).
		Select("grade", "comment").
		Updates(map[string]interface{}{
			"grade":   task.Grade,
			"comment": task.Comment,
		}).Error
}

func (r *taskRepository) SetFilePath(ctx context.Context, id uint, path string) error {
	return r.db.WithContext(ctx).Model(&models.Task{ID: id}).
		Update("file_path", path).Error
}
