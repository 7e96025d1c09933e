package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/taskboard-api/internal/dto"
	"github.com/noah-isme/taskboard-api/internal/handler"
	"github.com/noah-isme/taskboard-api/internal/service"
)

type mockTaskService struct {
	lastActor  service.Actor
	lastID     uint
	lastCreate dto.TaskCreateRequest
	lastGrade  dto.TaskGradeRequest
	lastAnswer string
	tasks      []dto.TaskListItem
	detail     dto.TaskDetailResponse
	err        error
}

func (m *mockTaskService) ListStudents(_ context.Context, actor service.Actor) ([]dto.StudentResponse, error) {
	m.lastActor = actor
	if m.err != nil {
		return nil, m.err
	}
	return []dto.StudentResponse{{ID: 2, Name: "Sam Kowalski"}}, nil
}

func (m *mockTaskService) List(_ context.Context, actor service.Actor) ([]dto.TaskListItem, error) {
	m.lastActor = actor
	return m.tasks, m.err
}

func (m *mockTaskService) Get(_ context.Context, actor service.Actor, id uint) (dto.TaskDetailResponse, error) {
	m.lastActor, m.lastID = actor, id
	return m.detail, m.err
}

func (m *mockTaskService) Create(_ context.Context, actor service.Actor, payload dto.TaskCreateRequest) (dto.TaskDetailResponse, error) {
	m.lastActor, m.lastCreate = actor, payload
	return m.detail, m.err
}

func (m *mockTaskService) Complete(_ context.Context, actor service.Actor, id uint, payload dto.TaskCompleteRequest) (dto.TaskDetailResponse, error) {
	m.lastActor, m.lastID, m.lastAnswer = actor, id, payload.Answer
	return m.detail, m.err
}

func (m *mockTaskService) Grade(_ context.Context, actor service.Actor, id uint, payload dto.TaskGradeRequest) (dto.TaskDetailResponse, error) {
	m.lastActor, m.lastID, m.lastGrade = actor, id, payload
	return m.detail, m.err
}

func newTaskApp(svc *mockTaskService) *fiber.App {
	return newTestApp(func(router fiber.Router) {
		handler.NewTaskHandler(svc, testLogger()).Register(router)
	})
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	return req
}

func TestTaskHandler_RequiresIdentity(t *testing.T) {
	app := newTaskApp(&mockTaskService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/tasks", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Unauthorized", decodeMessage(t, resp))
}

func TestTaskHandler_StudentsIsTeacherOnly(t *testing.T) {
	svc := &mockTaskService{}
	app := newTaskApp(svc)

	resp, err := app.Test(as(httptest.NewRequest(http.MethodGet, "/students", nil), "2", "student"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(as(httptest.NewRequest(http.MethodGet, "/students", nil), "1", "teacher"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var students []dto.StudentResponse
	decodeResponse(t, resp, &students)
	require.Len(t, students, 1)
	require.Equal(t, "Sam Kowalski", students[0].Name)
	require.Equal(t, service.Actor{ID: 1, Role: "teacher"}, svc.lastActor)
}

func TestTaskHandler_ListReturnsBareArray(t *testing.T) {
	svc := &mockTaskService{}
	app := newTaskApp(svc)

	resp, err := app.Test(as(httptest.NewRequest(http.MethodGet, "/tasks", nil), "2", "student"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var items []dto.TaskListItem
	decodeResponse(t, resp, &items)
	require.NotNil(t, items)
	require.Empty(t, items)

	svc.err = service.ErrForbidden
	resp, err = app.Test(as(httptest.NewRequest(http.MethodGet, "/tasks", nil), "3", "admin"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Equal(t, "Invalid role", decodeMessage(t, resp))
}

func TestTaskHandler_Create(t *testing.T) {
	svc := &mockTaskService{detail: dto.TaskDetailResponse{ID: 42}}
	app := newTaskApp(svc)

	req := as(jsonRequest(http.MethodPost, "/tasks", `{"content":"Essay","student_id":2,"due_date":"2025-01-01","max_points":10}`), "1", "teacher")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		TaskID  uint   `json:"task_id"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, "Task created successfully", body.Message)
	require.Equal(t, uint(42), body.TaskID)
	require.Equal(t, uint(2), svc.lastCreate.StudentID)
	require.Equal(t, 10, *svc.lastCreate.MaxPoints)
}

func TestTaskHandler_CreateErrors(t *testing.T) {
	validationErr := validator.New().Struct(dto.TaskCreateRequest{StudentID: 2})
	require.Error(t, validationErr)

	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"forbidden", service.ErrForbidden, fiber.StatusForbidden, "Unauthorized"},
		{"student", service.ErrStudentNotFound, fiber.StatusNotFound, "Student not found"},
		{"due date", service.ErrInvalidDueDate, fiber.StatusBadRequest, "Invalid due date, expected YYYY-MM-DD"},
		{"validation", validationErr, fiber.StatusBadRequest, "content is required"},
		{"internal", errors.New("boom"), fiber.StatusInternalServerError, "internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTaskApp(&mockTaskService{err: tc.err})
			resp, err := app.Test(as(jsonRequest(http.MethodPost, "/tasks", `{"content":"x","student_id":2}`), "1", "teacher"))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
			require.Equal(t, tc.message, decodeMessage(t, resp))
		})
	}
}

func TestTaskHandler_Get(t *testing.T) {
	svc := &mockTaskService{detail: dto.TaskDetailResponse{ID: 5, Content: "Essay", StudentName: "Sam Kowalski"}}
	app := newTaskApp(svc)

	resp, err := app.Test(as(httptest.NewRequest(http.MethodGet, "/task/5", nil), "2", "student"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var detail dto.TaskDetailResponse
	decodeResponse(t, resp, &detail)
	require.Equal(t, "Essay", detail.Content)
	require.Equal(t, uint(5), svc.lastID)

	resp, err = app.Test(as(httptest.NewRequest(http.MethodGet, "/task/abc", nil), "2", "student"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	svc.err = service.ErrTaskNotFound
	resp, err = app.Test(as(httptest.NewRequest(http.MethodGet, "/task/9", nil), "2", "student"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.Equal(t, "Task not found", decodeMessage(t, resp))

	svc.err = service.ErrForbidden
	resp, err = app.Test(as(httptest.NewRequest(http.MethodGet, "/task/5", nil), "7", "student"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Equal(t, "Unauthorized access", decodeMessage(t, resp))
}

func TestTaskHandler_Complete(t *testing.T) {
	svc := &mockTaskService{}
	app := newTaskApp(svc)

	resp, err := app.Test(as(jsonRequest(http.MethodPost, "/task/complete/3", `{"answer":"42"}`), "2", "student"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "Task marked as completed", decodeMessage(t, resp))
	require.Equal(t, "42", svc.lastAnswer)
	require.Equal(t, uint(3), svc.lastID)

	svc.err = service.ErrAnswerRequired
	resp, err = app.Test(as(jsonRequest(http.MethodPost, "/task/complete/3", `{"answer":""}`), "2", "student"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Answer is required", decodeMessage(t, resp))

	svc.err = service.ErrTaskAccessDenied
	resp, err = app.Test(as(jsonRequest(http.MethodPost, "/task/complete/3", `{"answer":"42"}`), "1", "teacher"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Equal(t, "Unauthorized or task not found", decodeMessage(t, resp))
}

func TestTaskHandler_Grade(t *testing.T) {
	svc := &mockTaskService{}
	app := newTaskApp(svc)

	resp, err := app.Test(as(jsonRequest(http.MethodPost, "/task/grade/3", `{"grade":8,"comment":"good"}`), "1", "teacher"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "Task graded successfully", decodeMessage(t, resp))
	grade, ok := svc.lastGrade.GradeValue()
	require.True(t, ok)
	require.Equal(t, 8, grade)
	require.Equal(t, "good", *svc.lastGrade.Comment)

	resp, err = app.Test(as(jsonRequest(http.MethodPost, "/task/grade/3", `{"grade":"7"}`), "1", "teacher"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	grade, ok = svc.lastGrade.GradeValue()
	require.True(t, ok)
	require.Equal(t, 7, grade)

	form := httptest.NewRequest(http.MethodPost, "/task/grade/3", strings.NewReader("grade=6&comment=ok"))
	form.Header.Set("Content-Type", fiber.MIMEApplicationForm)
	resp, err = app.Test(as(form, "1", "teacher"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	grade, ok = svc.lastGrade.GradeValue()
	require.True(t, ok)
	require.Equal(t, 6, grade)

	svc.err = service.ErrInvalidGrade
	resp, err = app.Test(as(jsonRequest(http.MethodPost, "/task/grade/3", `{"grade":99}`), "1", "teacher"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Invalid action", decodeMessage(t, resp))

	svc.err = service.ErrTaskAccessDenied
	resp, err = app.Test(as(jsonRequest(http.MethodPost, "/task/grade/3", `{"grade":5}`), "9", "teacher"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestTaskHandler_UnreadableBodyStillChecksOwnership(t *testing.T) {
	svc := &mockTaskService{err: service.ErrTaskAccessDenied}
	app := newTaskApp(svc)

	resp, err := app.Test(as(httptest.NewRequest(http.MethodPost, "/task/grade/4", strings.NewReader("grade=5")), "9", "teacher"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Equal(t, "Unauthorized or task not found", decodeMessage(t, resp))
	require.Equal(t, uint(4), svc.lastID)
	_, ok := svc.lastGrade.GradeValue()
	require.False(t, ok)

	resp, err = app.Test(as(jsonRequest(http.MethodPost, "/task/complete/6", `{"answer":`), "8", "student"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Equal(t, uint(6), svc.lastID)
	require.Empty(t, svc.lastAnswer)

	svc.err = service.ErrAnswerRequired
	resp, err = app.Test(as(httptest.NewRequest(http.MethodPost, "/task/complete/6", nil), "2", "student"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Answer is required", decodeMessage(t, resp))
}
