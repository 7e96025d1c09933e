package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/taskboard-api/internal/models"
	"github.com/noah-isme/taskboard-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type fixture struct {
	db       *gorm.DB
	users    repository.UserRepository
	tasks    repository.TaskRepository
	logs     repository.ActivityLogRepository
	activity ActivityService
	validate *validator.Validate
}

func newFixture(t *testing.T) *fixture {
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

	users := repository.NewUserRepository(db)
	logs := repository.NewActivityLogRepository(db)
	return &fixture{
		db:       db,
		users:    users,
		tasks:    repository.NewTaskRepository(db),
		logs:     logs,
		activity: NewActivityService(logs, users, nil, testLogger()),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (f *fixture) user(t *testing.T, name, email, role string) models.User {
	t.Helper()
	user := models.User{Name: name, Surname: "Kowalski", Email: email, Password: "hash", Role: role}
	require.NoError(t, f.db.Create(&user).Error)
	return user
}

func (f *fixture) task(t *testing.T, teacher, student models.User, maxPoints int) models.Task {
	t.Helper()
	task := models.Task{Content: "Essay", TeacherID: teacher.ID, StudentID: student.ID, MaxPoints: &maxPoints}
	require.NoError(t, f.db.Omit("Student", "Teacher").Create(&task).Error)
	return task
}

func (f *fixture) actions(t *testing.T) []string {
	t.Helper()
	var entries []models.ActivityLog
	require.NoError(t, f.db.Order("id ASC").Find(&entries).Error)
	actions := make([]string, 0, len(entries))
	for _, entry := range entries {
		actions = append(actions, entry.Action)
	}
	return actions
}

type invalidatorStub struct {
	mu  sync.Mutex
	ids []uint
}

func (s *invalidatorStub) Invalidate(_ context.Context, userIDs ...uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, userIDs...)
}

type publisherStub struct {
	events []ActivityEvent
	err    error
}

func (p *publisherStub) Publish(_ context.Context, event ActivityEvent) error {
	p.events = append(p.events, event)
	return p.err
}

func intPtr(v int) *int {
	return &v
}

func stringPtr(v string) *string {
	return &v
}
