package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/edunexa/assessment-api/internal/models"
	appErrors "github.com/edunexa/assessment-api/pkg/errors"
)

type examStore interface {
	FindByID(ctx context.Context, tenantID, examID string) (*models.Exam, error)
	Approve(ctx context.Context, tenantID, examID string) (int64, error)
}

// ExamService exposes exam lookup and the approval gate. Approval publishes
// results to students and parents and freezes direct mark writes.
type ExamService struct {
	exams  examStore
	audit  auditWriter
	logger *zap.Logger
}

// NewExamService constructs ExamService.
func NewExamService(exams examStore, audit auditWriter, logger *zap.Logger) *ExamService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamService{exams: exams, audit: audit, logger: logger}
}

// Get loads an exam with its class list.
func (s *ExamService) Get(ctx context.Context, tenantID, examID string) (*models.Exam, error) {
	exam, err := s.exams.FindByID(ctx, tenantID, examID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	return exam, nil
}

// Approve marks the exam as published. Re-approving an already approved exam
// is a no-op: the gate only ever moves one way.
func (s *ExamService) Approve(ctx context.Context, tenantID, examID, actorID string) (*models.Exam, error) {
	affected, err := s.exams.Approve(ctx, tenantID, examID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve exam")
	}

	exam, err := s.Get(ctx, tenantID, examID)
	if err != nil {
		return nil, err
	}

	if affected > 0 {
		log := &models.AuditLog{
			TenantID:   tenantID,
			Action:     models.AuditActionExamApprove,
			Resource:   "exam",
			ResourceID: &exam.ID,
		}
		if actorID != "" {
			log.UserID = &actorID
		}
		if err := s.audit.CreateAuditLog(ctx, log); err != nil {
			s.logger.Warn("failed to write audit log", zap.String("action", models.AuditActionExamApprove), zap.Error(err))
		}
	}
	return exam, nil
}
