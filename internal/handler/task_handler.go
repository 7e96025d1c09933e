package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/taskboard-api/internal/dto"
	"github.com/noah-isme/taskboard-api/internal/middleware"
	"github.com/noah-isme/taskboard-api/internal/service"
	"github.com/noah-isme/taskboard-api/internal/utils"
)

// TaskHandler serves the task lifecycle endpoints.
type TaskHandler struct {
	service service.TaskService
	logger  zerolog.Logger
}

// NewTaskHandler constructs a task handler.
func NewTaskHandler(service service.TaskService, logger zerolog.Logger) *TaskHandler {
	return &TaskHandler{
		service: service,
		logger:  logger.With().Str("component", "task_handler").Logger(),
	}
}

// Register wires task routes.
func (h *TaskHandler) Register(router fiber.Router) {
	router.Get("/students", middleware.WithAuth(h.students, middleware.AuthOptions{Role: middleware.AuthRoleTeacher}))
	router.Get("/tasks", middleware.WithAuth(h.list, middleware.AuthOptions{}))
	router.Post("/tasks", middleware.WithAuth(h.create, middleware.AuthOptions{}))
	router.Get("/task/:id", middleware.WithAuth(h.get, middleware.AuthOptions{}))
	router.Post("/task/complete/:id", middleware.WithAuth(h.complete, middleware.AuthOptions{}))
	router.Post("/task/grade/:id", middleware.WithAuth(h.grade, middleware.AuthOptions{}))
}

func (h *TaskHandler) students(c *fiber.Ctx) error {
	students, err := h.service.ListStudents(c.UserContext(), actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "list_students")
	}
	return utils.SendList(c, students)
}

func (h *TaskHandler) list(c *fiber.Ctx) error {
	tasks, err := h.service.List(c.UserContext(), actorFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			return utils.SendError(c, fiber.StatusForbidden, "Invalid role")
		}
		return respondError(c, h.logger, err, "list_tasks")
	}
	return utils.SendList(c, tasks)
}

func (h *TaskHandler) create(c *fiber.Ctx) error {
	var payload dto.TaskCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	task, err := h.service.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStudentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "Student not found")
		case errors.Is(err, service.ErrInvalidDueDate):
			return utils.SendError(c, fiber.StatusBadRequest, "Invalid due date, expected YYYY-MM-DD")
		default:
			return respondError(c, h.logger, err, "create_task")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "Task created successfully", fiber.Map{"task_id": task.ID})
}

func (h *TaskHandler) get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusNotFound, "Task not found")
	}

	task, err := h.service.Get(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTaskNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "Task not found")
		case errors.Is(err, service.ErrForbidden):
			return utils.SendError(c, fiber.StatusForbidden, "Unauthorized access")
		default:
			return respondError(c, h.logger, err, "get_task")
		}
	}

	return c.JSON(task)
}

func (h *TaskHandler) complete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusForbidden, "Unauthorized or task not found")
	}

	// An unreadable body counts as an empty answer so the ownership check
	// still decides between 403 and 400.
	var payload dto.TaskCompleteRequest
	if err := c.BodyParser(&payload); err != nil {
		h.logger.Debug().Err(err).Msg("unreadable completion body")
		payload = dto.TaskCompleteRequest{}
	}

	if _, err := h.service.Complete(c.UserContext(), actorFromContext(c), id, payload); err != nil {
		switch {
		case errors.Is(err, service.ErrTaskAccessDenied):
			return utils.SendError(c, fiber.StatusForbidden, "Unauthorized or task not found")
		case errors.Is(err, service.ErrAnswerRequired):
			return utils.SendError(c, fiber.StatusBadRequest, "Answer is required")
		default:
			return respondError(c, h.logger, err, "complete_task")
		}
	}

	return utils.SendSuccess(c, "Task marked as completed", nil)
}

func (h *TaskHandler) grade(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusForbidden, "Unauthorized or task not found")
	}

	var payload dto.TaskGradeRequest
	if err := c.BodyParser(&payload); err != nil {
		h.logger.Debug().Err(err).Msg("unreadable grade body")
		payload = dto.TaskGradeRequest{}
	}

	if _, err := h.service.Grade(c.UserContext(), actorFromContext(c), id, payload); err != nil {
		switch {
		case errors.Is(err, service.ErrTaskAccessDenied):
			return utils.SendError(c, fiber.StatusForbidden, "Unauthorized or task not found")
		case errors.Is(err, service.ErrInvalidGrade):
			return utils.SendError(c, fiber.StatusBadRequest, "Invalid action")
		default:
			return respondError(c, h.logger, err, "grade_task")
		}
	}

	return utils.SendSuccess(c, "Task graded successfully", nil)
}
