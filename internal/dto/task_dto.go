package dto

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/taskboard-api/internal/models"
)

// Wire formats for dates and timestamps.
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

// TaskCreateRequest is the payload accepted by POST /tasks.
type TaskCreateRequest struct {
	Content   string `json:"content" form:"content" validate:"required,max=200"`
	StudentID uint   `json:"student_id" form:"student_id" validate:"required,gt=0"`
	DueDate   string `json:"due_date" form:"due_date"`
	MaxPoints *int   `json:"max_points" form:"max_points" validate:"omitempty,gt=0"`
}

// TaskCompleteRequest carries a student's answer.
type TaskCompleteRequest struct {
	Answer string `json:"answer" form:"answer"`
}

// TaskGradeRequest carries the teacher's grade and optional comment. Grade
// accepts 8, 8.0 and "8" alike since form posts only carry strings.
type TaskGradeRequest struct {
	Grade   json.Number `json:"grade" form:"grade"`
	Comment *string     `json:"comment" form:"comment"`
}

// GradeValue returns the grade as a whole number. ok is false when the grade
// is missing, malformed or fractional.
func (r TaskGradeRequest) GradeValue() (int, bool) {
	raw := strings.TrimSpace(r.Grade.String())
	if raw == "" {
		return 0, false
	}
	if value, err := strconv.Atoi(raw); err == nil {
		return value, true
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value != math.Trunc(value) {
		return 0, false
	}
	if value > math.MaxInt32 || value < math.MinInt32 {
		return 0, false
	}
	return int(value), true
}

// TaskListItem is a task as shown on a dashboard. Teachers see the student's
// name, students see the teacher's name.
type TaskListItem struct {
	ID          uint    `json:"id"`
	Content     string  `json:"content"`
	DueDate     *string `json:"due_date"`
	Answer      *string `json:"answer"`
	Completed   bool    `json:"completed"`
	MaxPoints   *int    `json:"max_points"`
	Grade       *int    `json:"grade"`
	FilePath    *string `json:"file_path"`
	StudentName string  `json:"student_name,omitempty"`
	TeacherName string  `json:"teacher_name,omitempty"`
}

// TaskDetailResponse is the full task record.
type TaskDetailResponse struct {
	ID          uint    `json:"id"`
	Content     string  `json:"content"`
	StudentID   uint    `json:"student_id"`
	TeacherID   uint    `json:"teacher_id"`
	DueDate     *string `json:"due_date"`
	SentDate    *string `json:"sent_date"`
	Answer      *string `json:"answer"`
	Completed   bool    `json:"completed"`
	MaxPoints   *int    `json:"max_points"`
	Grade       *int    `json:"grade"`
	Comment     *string `json:"comment"`
	FilePath    *string `json:"file_path"`
	StudentName string  `json:"student_name"`
	TeacherName string  `json:"teacher_name"`
}

// NewTeacherTaskList builds the teacher view of tasks.
func NewTeacherTaskList(tasks []models.Task) []TaskListItem {
	result := make([]TaskListItem, 0, len(tasks))
	for _, task := range tasks {
		item := newTaskListItem(task)
		item.StudentName = task.Student.DisplayName()
		result = append(result, item)
	}
	return result
}

// NewStudentTaskList builds the student view of tasks.
func NewStudentTaskList(tasks []models.Task) []TaskListItem {
	result := make([]TaskListItem, 0, len(tasks))
	for _, task := range tasks {
		item := newTaskListItem(task)
		item.TeacherName = task.Teacher.DisplayName()
		result = append(result, item)
	}
	return result
}

// NewTaskDetailResponse converts a task with loaded participants.
func NewTaskDetailResponse(task models.Task) TaskDetailResponse {
	return TaskDetailResponse{
		ID:          task.ID,
		Content:     task.Content,
		StudentID:   task.StudentID,
		TeacherID:   task.TeacherID,
		DueDate:     FormatDate(task.DueDate),
		SentDate:    FormatTimestamp(task.SentDate),
		Answer:      task.Answer,
		Completed:   task.Completed,
		MaxPoints:   task.MaxPoints,
		Grade:       task.Grade,
		Comment:     task.Comment,
		FilePath:    task.FilePath,
		StudentName: task.Student.DisplayName(),
		TeacherName: task.Teacher.DisplayName(),
	}
}

// FormatDate renders an optional date as YYYY-MM-DD.
func FormatDate(value *time.Time) *string {
	if value == nil {
		return nil
	}
	formatted := value.Format(DateLayout)
	return &formatted
}

// FormatTimestamp renders an optional timestamp as YYYY-MM-DD HH:MM:SS.
func FormatTimestamp(value *time.Time) *string {
	if value == nil {
		return nil
	}
	formatted := value.Format(TimestampLayout)
	return &formatted
}

func newTaskListItem(task models.Task) TaskListItem {
	return TaskListItem{
		ID:        task.ID,
		Content:   task.Content,
		DueDate:   FormatDate(task.DueDate),
		Answer:    task.Answer,
		Completed: task.Completed,
		MaxPoints: task.MaxPoints,
		Grade:     task.Grade,
		FilePath:  task.FilePath,
	}
}
