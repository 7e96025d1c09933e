package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/taskboard-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Task{}, &models.ActivityLog{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, email, role string) models.User {
	t.Helper()
	user := models.User{Name: "Jan", Surname: "Nowak", Email: email, Password: "hash", Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestUserRepositoryLookups(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	teacher := createUser(t, db, "teacher@test.com", models.RoleTeacher)
	student := createUser(t, db, "student@test.com", models.RoleStudent)

	exists, err := repo.EmailExists(ctx, "teacher@test.com")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.EmailExists(ctx, "nobody@test.com")
	require.NoError(t, err)
	require.False(t, exists)

	found, err := repo.GetByEmail(ctx, "student@test.com")
	require.NoError(t, err)
	require.Equal(t, student.ID, found.ID)

	_, err = repo.GetByIDAndRole(ctx, teacher.ID, models.RoleStudent)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	students, err := repo.ListByRole(ctx, models.RoleStudent)
	require.NoError(t, err)
	require.Len(t, students, 1)
	require.Equal(t, student.ID, students[0].ID)
}

func TestTaskRepositoryListFiltersByParticipant(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	teacherA := createUser(t, db, "a@test.com", models.RoleTeacher)
	teacherB := createUser(t, db, "b@test.com", models.RoleTeacher)
	student := createUser(t, db, "s@test.com", models.RoleStudent)

	require.NoError(t, repo.Create(ctx, &models.Task{Content: "A1", TeacherID: teacherA.ID, StudentID: student.ID}))
	require.NoError(t, repo.Create(ctx, &models.Task{Content: "B1", TeacherID: teacherB.ID, StudentID: student.ID}))

	tasks, err := repo.List(ctx, TaskFilter{TeacherID: &teacherA.ID})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, "A1", tasks[0].Content)
	require.Equal(t, "Jan Nowak", tasks[0].Student.DisplayName())

	tasks, err = repo.List(ctx, TaskFilter{StudentID: &student.ID})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.False(t, tasks[0].Completed)
}

func TestTaskRepositoryPartialUpdates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	teacher := createUser(t, db, "t@test.com", models.RoleTeacher)
	student := createUser(t, db, "s@test.com", models.RoleStudent)

	maxPoints := 10
	task := models.Task{Content: "Essay", TeacherID: teacher.ID, StudentID: student.ID, MaxPoints: &maxPoints}
	require.NoError(t, repo.Create(ctx, &task))

	answer := "done"
	now := time.Now()
	task.Answer = &answer
	task.SentDate = &now
	task.Completed = true
	require.NoError(t, repo.MarkCompleted(ctx, &task))

	grade := 7
	task.Grade = &grade
	require.NoError(t, repo.SaveGrade(ctx, &task))
	require.NoError(t, repo.SetFilePath(ctx, task.ID, "uploads/1_2_essay.txt"))

	stored, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	require.True(t, stored.Completed)
	require.Equal(t, "done", *stored.Answer)
	require.NotNil(t, stored.SentDate)
	require.Equal(t, 7, *stored.Grade)
	require.Nil(t, stored.Comment)
	require.Equal(t, "uploads/1_2_essay.txt", *stored.FilePath)
	require.Equal(t, "Essay", stored.Content)

	_, err = repo.GetByID(ctx, 9999)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestActivityLogRepositoryOrdersNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActivityLogRepository(db)
	ctx := context.Background()

	admin := createUser(t, db, "admin@test.com", models.RoleAdmin)

	older := models.ActivityLog{UserID: &admin.ID, Action: "first", Timestamp: time.Now().Add(-time.Hour)}
	newer := models.ActivityLog{Action: "second", Timestamp: time.Now()}
	require.NoError(t, repo.Create(ctx, &older))
	require.NoError(t, repo.Create(ctx, &newer))

	entries, total, err := repo.List(ctx, ActivityLogFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Equal(t, "second", entries[0].Action)
	require.Nil(t, entries[0].User)
	require.NotNil(t, entries[1].User)
	require.Equal(t, admin.ID, entries[1].User.ID)

	entries, total, err = repo.List(ctx, ActivityLogFilter{UserID: &admin.ID, PageSize: 1, Page: 1})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	require.Equal(t, "first", entries[0].Action)
}
