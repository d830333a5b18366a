package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edunexa/assessment-api/internal/models"
	"github.com/edunexa/assessment-api/internal/repository"
	appErrors "github.com/edunexa/assessment-api/pkg/errors"
)

type markStore interface {
	List(ctx context.Context, filter models.MarkFilter) ([]models.Mark, error)
	Upsert(ctx context.Context, mark *models.Mark) error
	BulkUpsert(ctx context.Context, marks []models.Mark) error
}

type examReader interface {
	FindByID(ctx context.Context, tenantID, examID string) (*models.Exam, error)
}

type classLocker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// UpsertMarkRequest records or corrects a single mark entry.
type UpsertMarkRequest struct {
	ExamID        string  `json:"exam_id" validate:"required"`
	ClassID       string  `json:"class_id" validate:"required"`
	SubjectID     string  `json:"subject_id" validate:"required"`
	StudentID     string  `json:"student_id" validate:"required"`
	MarksObtained float64 `json:"marks_obtained" validate:"min=0"`
	MaxMarks      float64 `json:"max_marks" validate:"required,gt=0"`
	Remarks       *string `json:"remarks,omitempty"`
}

// BulkMarkItem is one entry of a bulk save.
type BulkMarkItem struct {
	SubjectID     string  `json:"subject_id" validate:"required"`
	StudentID     string  `json:"student_id" validate:"required"`
	MarksObtained float64 `json:"marks_obtained" validate:"min=0"`
	MaxMarks      float64 `json:"max_marks" validate:"required,gt=0"`
	Remarks       *string `json:"remarks,omitempty"`
}

// BulkMarksRequest saves a batch of marks for one exam/class.
type BulkMarksRequest struct {
	ExamID  string         `json:"exam_id" validate:"required"`
	ClassID string         `json:"class_id" validate:"required"`
	Marks   []BulkMarkItem `json:"marks" validate:"required,min=1,dive"`
}

// BulkSaveResult reports how many entries a bulk save touched.
type BulkSaveResult struct {
	SavedCount int `json:"saved_count"`
}

// MarkService handles mark entry. Writes are refused once the exam is
// approved; corrections then go through the complaint flow.
type MarkService struct {
	marks      markStore
	exams      examReader
	locks      classLocker
	results    *ResultService
	audit      auditWriter
	validator  *validator.Validate
	logger     *zap.Logger
	batchLimit int
}

// NewMarkService constructs MarkService.
func NewMarkService(marks markStore, exams examReader, locks classLocker, results *ResultService, audit auditWriter, batchLimit int, validate *validator.Validate, logger *zap.Logger) *MarkService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if batchLimit <= 0 {
		batchLimit = 500
	}
	return &MarkService{marks: marks, exams: exams, locks: locks, results: results, audit: audit, validator: validate, logger: logger, batchLimit: batchLimit}
}

// List returns marks matching the filter.
func (s *MarkService) List(ctx context.Context, filter models.MarkFilter) ([]models.Mark, error) {
	marks, err := s.marks.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list marks")
	}
	return marks, nil
}

// Upsert records a single mark, replacing any previous entry for the same
// exam/subject/student.
func (s *MarkService) Upsert(ctx context.Context, tenantID string, req UpsertMarkRequest, actorID string) (*models.Mark, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mark payload")
	}
	if req.MarksObtained > req.MaxMarks {
		return nil, appErrors.Clone(appErrors.ErrDataIntegrity,
			fmt.Sprintf("obtained %.1f exceeds maximum %.1f", req.MarksObtained, req.MaxMarks))
	}
	if err := s.requireUnapproved(ctx, tenantID, req.ExamID); err != nil {
		return nil, err
	}

	mark := &models.Mark{
		TenantID:      tenantID,
		ExamID:        req.ExamID,
		ClassID:       req.ClassID,
		SubjectID:     req.SubjectID,
		StudentID:     req.StudentID,
		MarksObtained: req.MarksObtained,
		MaxMarks:      req.MaxMarks,
		Remarks:       req.Remarks,
	}
	if err := s.marks.Upsert(ctx, mark); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save mark")
	}

	s.results.InvalidateExamClass(ctx, tenantID, req.ExamID, req.ClassID)
	s.writeAudit(ctx, tenantID, actorID, models.AuditActionMarkWrite, "mark", mark.ID, mark)
	return mark, nil
}

// BulkUpsert saves a batch of marks for one exam/class under the class lock.
// A single out-of-range entry rejects the whole batch; concurrent saves on
// the same class surface ErrClassLocked instead of interleaving.
func (s *MarkService) BulkUpsert(ctx context.Context, tenantID string, req BulkMarksRequest, actorID string) (*BulkSaveResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk marks payload")
	}
	if len(req.Marks) > s.batchLimit {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("batch exceeds %d entries", s.batchLimit))
	}
	for _, item := range req.Marks {
		if item.MarksObtained > item.MaxMarks {
			return nil, appErrors.Clone(appErrors.ErrDataIntegrity,
				fmt.Sprintf("obtained %.1f exceeds maximum %.1f for student %s in subject %s", item.MarksObtained, item.MaxMarks, item.StudentID, item.SubjectID))
		}
	}
	if err := s.requireUnapproved(ctx, tenantID, req.ExamID); err != nil {
		return nil, err
	}

	marks := make([]models.Mark, 0, len(req.Marks))
	for _, item := range req.Marks {
		marks = append(marks, models.Mark{
			TenantID:      tenantID,
			ExamID:        req.ExamID,
			ClassID:       req.ClassID,
			SubjectID:     item.SubjectID,
			StudentID:     item.StudentID,
			MarksObtained: item.MarksObtained,
			MaxMarks:      item.MaxMarks,
			Remarks:       item.Remarks,
		})
	}

	lockKey := repository.ClassLockKey(tenantID, req.ClassID)
	err := s.locks.WithLock(ctx, lockKey, func(ctx context.Context) error {
		return s.marks.BulkUpsert(ctx, marks)
	})
	if err != nil {
		if errors.Is(err, appErrors.ErrClassLocked) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save marks")
	}

	s.results.InvalidateExamClass(ctx, tenantID, req.ExamID, req.ClassID)
	s.writeAudit(ctx, tenantID, actorID, models.AuditActionMarkWrite, "marks", req.ExamID, map[string]interface{}{
		"exam_id":  req.ExamID,
		"class_id": req.ClassID,
		"count":    len(marks),
	})
	return &BulkSaveResult{SavedCount: len(marks)}, nil
}

func (s *MarkService) requireUnapproved(ctx context.Context, tenantID, examID string) error {
	exam, err := s.exams.FindByID(ctx, tenantID, examID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	if exam.IsApproved {
		return appErrors.Clone(appErrors.ErrExamApproved, "marks are locked once the exam is approved")
	}
	return nil
}

func (s *MarkService) writeAudit(ctx context.Context, tenantID, actorID, action, resource, resourceID string, newValues interface{}) {
	payload, err := json.Marshal(newValues)
	if err != nil {
		s.logger.Warn("failed to marshal audit payload", zap.Error(err))
		payload = nil
	}
	log := &models.AuditLog{
		TenantID:   tenantID,
		Action:     action,
		Resource:   resource,
		ResourceID: &resourceID,
		NewValues:  payload,
	}
	if actorID != "" {
		log.UserID = &actorID
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to write audit log", zap.String("action", action), zap.Error(err))
	}
}
