package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"
	"unicode"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/noah-isme/taskboard-api/internal/dto"
	"github.com/noah-isme/taskboard-api/internal/observability"
	"github.com/noah-isme/taskboard-api/internal/repository"
	"github.com/noah-isme/taskboard-api/pkg/storage"
)

var (
	// ErrNoFilePart indicates the multipart body carried no "file" part.
	ErrNoFilePart = errors.New("no file part")
	// ErrNoSelectedFile indicates the file part had an empty filename.
	ErrNoSelectedFile = errors.New("no selected file")
	// ErrEmptyFile indicates a zero byte upload.
	ErrEmptyFile = errors.New("empty file")
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrTaskNotAssigned indicates the task is missing or belongs to another student.
	ErrTaskNotAssigned = errors.New("task not found or not assigned to you")
	// ErrInvalidFileType indicates the extension is not on the allow list.
	ErrInvalidFileType = errors.New("invalid file type")
	// ErrFileNotFound indicates a download for an unknown stored file.
	ErrFileNotFound = errors.New("file not found")
)

var allowedExtensions = map[string]struct{}{
	"txt":  {},
	"pdf":  {},
	"png":  {},
	"jpg":  {},
	"jpeg": {},
}

// FileStorage abstracts where attachments are written and read back from.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
	Resolve(name string) (string, error)
}

// AttachmentService validates and stores task attachments.
type AttachmentService interface {
	Upload(ctx context.Context, actor Actor, taskID uint, file *multipart.FileHeader) (dto.UploadResponse, error)
	Resolve(ctx context.Context, name string) (string, error)
}

type attachmentService struct {
	storage    FileStorage
	tasks      repository.TaskRepository
	activity   ActivityRecorder
	dashboards DashboardInvalidator
	logger     zerolog.Logger
	maxSize    int64
	tracer     trace.Tracer
}

// NewAttachmentService constructs an attachment service. dashboards may be nil.
func NewAttachmentService(storage FileStorage, tasks repository.TaskRepository, activity ActivityRecorder, dashboards DashboardInvalidator, maxSizeMB int, logger zerolog.Logger) AttachmentService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &attachmentService{
		storage:    storage,
		tasks:      tasks,
		activity:   activity,
		dashboards: dashboards,
		logger:     logger.With().Str("component", "attachment_service").Logger(),
		maxSize:    int64(maxSizeMB) * 1024 * 1024,
		tracer:     otel.Tracer("github.com/noah-isme/taskboard-api/internal/service/attachment"),
	}
}

func (s *attachmentService) Upload(ctx context.Context, actor Actor, taskID uint, file *multipart.FileHeader) (dto.UploadResponse, error) {
	ctx, span := s.tracer.Start(ctx, "attachment.store")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("upload.max_bytes", s.maxSize),
		attribute.Int("upload.task_id", int(taskID)),
	)

	start := time.Now()
	defer func() {
		observability.UploadLatency().Observe(time.Since(start).Seconds())
	}()

	reject := func(reason string, err error) (dto.UploadResponse, error) {
		observability.UploadRejected().WithLabelValues(reason).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
		return dto.UploadResponse{}, err
	}

	if !actor.IsStudent() {
		if actor.ID != 0 {
			s.activity.Record(ctx, ActivityEntry{
				UserID:   &actor.ID,
				Action:   fmt.Sprintf("Unauthorized attempt to upload file for task %d", taskID),
				Metadata: map[string]interface{}{"task_id": taskID, "operation": "upload"},
			})
		}
		return reject("role", ErrForbidden)
	}

	if file == nil {
		return reject("missing", ErrNoFilePart)
	}

	original := strings.TrimSpace(file.Filename)
	span.SetAttributes(
		attribute.String("upload.original_name", original),
		attribute.Int64("upload.request_size", file.Size),
	)
	if original == "" {
		return reject("missing", ErrNoSelectedFile)
	}
	if file.Size == 0 {
		return reject("empty", ErrEmptyFile)
	}
	if file.Size > s.maxSize {
		return reject("size", ErrUploadTooLarge)
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return reject("task", ErrTaskNotAssigned)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "task lookup failed")
		return dto.UploadResponse{}, err
	}
	if task.StudentID != actor.ID {
		return reject("task", ErrTaskNotAssigned)
	}

	if !allowedFile(original) {
		return reject("type", ErrInvalidFileType)
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return dto.UploadResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return dto.UploadResponse{}, err
	}
	if buf.Len() == 0 {
		return reject("empty", ErrEmptyFile)
	}
	if int64(buf.Len()) > s.maxSize {
		return reject("size", ErrUploadTooLarge)
	}

	mime := mimetype.Detect(buf.Bytes()).String()
	name := secureFilename(fmt.Sprintf("%d_%d_%s", task.ID, actor.ID, original))
	span.SetAttributes(
		attribute.String("upload.detected_mime", mime),
		attribute.String("upload.stored_name", name),
		attribute.Int64("upload.size_bytes", int64(buf.Len())),
	)

	path, err := s.storage.Upload(ctx, name, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return reject("storage", err)
	}

	if err := s.tasks.SetFilePath(ctx, task.ID, truncate(path, 255)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.UploadResponse{}, err
	}

	observability.UploadAccepted().Inc()
	span.SetStatus(codes.Ok, "stored")

	s.logger.Info().Uint("task_id", task.ID).Uint("student_id", actor.ID).Str("file", name).Str("mime_type", mime).Msg("attachment stored")
	s.activity.Record(ctx, ActivityEntry{
		UserID:   &actor.ID,
		Action:   fmt.Sprintf("Uploaded file %s for task %d", name, task.ID),
		Metadata: map[string]interface{}{"task_id": task.ID, "file": name, "mime_type": mime},
	})
	if s.dashboards != nil {
		s.dashboards.Invalidate(ctx, task.TeacherID, task.StudentID)
	}

	return dto.UploadResponse{
		FileName:  name,
		Path:      path,
		MimeType:  mime,
		SizeBytes: int64(buf.Len()),
	}, nil
}

func (s *attachmentService) Resolve(ctx context.Context, name string) (string, error) {
	path, err := s.storage.Resolve(name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrFileNotFound
		}
		return "", err
	}
	return path, nil
}

func allowedFile(name string) bool {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return false
	}
	_, ok := allowedExtensions[strings.ToLower(name[idx+1:])]
	return ok
}

// secureFilename reduces name to ASCII letters, digits, '_', '.' and '-',
// folding whitespace and path separators into underscores.
func secureFilename(name string) string {
	name = norm.NFKD.String(name)
	name = strings.Map(func(r rune) rune {
		switch {
		case r > unicode.MaxASCII:
			return -1
		case r == '/' || r == '\\':
			return ' '
		}
		return r
	}, name)
	name = strings.Join(strings.Fields(name), "_")
	name = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		if r == '_' || r == '.' || r == '-' {
			return r
		}
		return -1
	}, name)
	name = strings.Trim(name, "._")
	if name == "" {
		return fmt.Sprintf("upload-%d", time.Now().Unix())
	}
	return name
}
