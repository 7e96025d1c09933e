package models

import "time"

// Task is a unit of work a teacher assigns to exactly one student.
type Task struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Content   string     `gorm:"size:200;not null" json:"content"`
	StudentID uint       `gorm:"not null;index" json:"student_id"`
	TeacherID uint       `gorm:"not null;index" json:"teacher_id"`
	Completed bool       `gorm:"not null;default:false" json:"completed"`
	DueDate   *time.Time `json:"due_date"`
	SentDate  *time.Time `json:"sent_date"`
	Answer    *string    `gorm:"size:200" json:"answer"`
	MaxPoints *int       `json:"max_points"`
	Grade     *int       `json:"grade"`
	Comment   *string    `gorm:"size:200" json:"comment"`
	FilePath  *string    `gorm:"size:255" json:"file_path"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Student   User       `gorm:"foreignKey:StudentID" json:"-"`
	Teacher   User       `gorm:"foreignKey:TeacherID" json:"-"`
}

// CanBeGraded reports whether grade is an acceptable score for the task.
// A grade is accepted only for completed tasks with a point limit and must
// satisfy 0 < grade <= max_points.
func (t Task) CanBeGraded(grade int) bool {
	if !t.Completed || t.MaxPoints == nil {
		return false
	}
	return grade > 0 && grade <= *t.MaxPoints
}

// IsGraded reports whether the task carries a grade.
func (t Task) IsGraded() bool {
	return t.Grade != nil
}

// IsOverdue reports whether the due date passed without a submission.
func (t Task) IsOverdue(reference time.Time) bool {
	if t.Completed || t.DueDate == nil {
		return false
	}
	return reference.After(t.DueDate.Add(24 * time.Hour))
}

// OwnedBy reports whether userID is the task's student or teacher.
func (t Task) OwnedBy(userID uint) bool {
	return userID != 0 && (t.StudentID == userID || t.TeacherID == userID)
}
