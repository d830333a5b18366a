package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edunexa/assessment-api/internal/models"
	appErrors "github.com/edunexa/assessment-api/pkg/errors"
	"github.com/edunexa/assessment-api/pkg/jobs"
)

type complaintStore interface {
	Create(ctx context.Context, complaint *models.Complaint) error
	FindByID(ctx context.Context, tenantID, id string) (*models.Complaint, error)
	List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, error)
	Resolve(ctx context.Context, tenantID, id, resolvedBy, note string) error
}

type markCorrector interface {
	FindByExamSubjectStudent(ctx context.Context, tenantID, examID, subjectID, studentID string) (*models.Mark, error)
	CorrectMark(ctx context.Context, tenantID, markID string, obtained float64) error
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// ReaggregateJobType labels queued result recomputation work.
const ReaggregateJobType = "results.reaggregate"

// ReaggregateJob asks the worker pool to rebuild one exam/class result set.
type ReaggregateJob struct {
	TenantID string `json:"tenant_id"`
	ExamID   string `json:"exam_id"`
	ClassID  string `json:"class_id"`
}

// CreateComplaintRequest opens a dispute against one published mark.
type CreateComplaintRequest struct {
	ExamID    string `json:"exam_id" validate:"required"`
	ClassID   string `json:"class_id" validate:"required"`
	SubjectID string `json:"subject_id" validate:"required"`
	StudentID string `json:"student_id" validate:"required"`
	Reason    string `json:"reason" validate:"required,min=10"`
}

// ResolveComplaintRequest closes a dispute, optionally correcting the mark.
type ResolveComplaintRequest struct {
	CorrectedMark *float64 `json:"corrected_mark,omitempty" validate:"omitempty,min=0"`
	Note          string   `json:"note" validate:"required"`
}

// ComplaintService runs the grade dispute workflow. A resolution that
// corrects a mark re-aggregates the whole class so ranks and grades stay
// consistent with the stored marks.
type ComplaintService struct {
	complaints complaintStore
	marks      markCorrector
	exams      examReader
	results    *ResultService
	queue      jobEnqueuer
	audit      auditWriter

	validator *validator.Validate
	logger    *zap.Logger
}

// NewComplaintService constructs ComplaintService. The queue may be nil; the
// next result read then recomputes on demand after cache invalidation.
func NewComplaintService(complaints complaintStore, marks markCorrector, exams examReader, results *ResultService, queue jobEnqueuer, audit auditWriter, validate *validator.Validate, logger *zap.Logger) *ComplaintService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComplaintService{
		complaints: complaints,
		marks:      marks,
		exams:      exams,
		results:    results,
		queue:      queue,
		audit:      audit,
		validator:  validate,
		logger:     logger,
	}
}

// Create opens a complaint against a published mark. Disputes only exist for
// approved exams; before approval the mark is simply corrected in place.
func (s *ComplaintService) Create(ctx context.Context, tenantID string, req CreateComplaintRequest, actorID string) (*models.Complaint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid complaint payload")
	}

	exam, err := s.exams.FindByID(ctx, tenantID, req.ExamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	if !exam.IsApproved {
		return nil, appErrors.Clone(appErrors.ErrExamNotApproved, "complaints can only target published marks")
	}

	mark, err := s.marks.FindByExamSubjectStudent(ctx, tenantID, req.ExamID, req.SubjectID, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "disputed mark not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load disputed mark")
	}

	complaint := &models.Complaint{
		TenantID:    tenantID,
		ExamID:      req.ExamID,
		ClassID:     req.ClassID,
		SubjectID:   req.SubjectID,
		StudentID:   req.StudentID,
		CurrentMark: mark.MarksObtained,
		Reason:      req.Reason,
	}
	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create complaint")
	}

	s.writeAudit(ctx, tenantID, actorID, models.AuditActionComplaintCreate, complaint.ID, nil, complaint)
	return complaint, nil
}

// List returns complaints matching the filter.
func (s *ComplaintService) List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, error) {
	complaints, err := s.complaints.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list complaints")
	}
	return complaints, nil
}

// Get loads a single complaint.
func (s *ComplaintService) Get(ctx context.Context, tenantID, complaintID string) (*models.Complaint, error) {
	complaint, err := s.complaints.FindByID(ctx, tenantID, complaintID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load complaint")
	}
	return complaint, nil
}

// Resolve closes a pending complaint. When a corrected mark is supplied the
// stored mark is updated, cached results are dropped and the class is queued
// for re-aggregation.
func (s *ComplaintService) Resolve(ctx context.Context, tenantID, complaintID string, req ResolveComplaintRequest, resolverID string) (*models.Complaint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid resolution payload")
	}

	complaint, err := s.Get(ctx, tenantID, complaintID)
	if err != nil {
		return nil, err
	}
	if complaint.Status == models.ComplaintStatusResolved {
		return nil, appErrors.Clone(appErrors.ErrConflict, "complaint already resolved")
	}

	if req.CorrectedMark != nil {
		mark, err := s.marks.FindByExamSubjectStudent(ctx, tenantID, complaint.ExamID, complaint.SubjectID, complaint.StudentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "disputed mark not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load disputed mark")
		}
		if *req.CorrectedMark > mark.MaxMarks {
			return nil, appErrors.Clone(appErrors.ErrDataIntegrity,
				fmt.Sprintf("corrected mark %.1f exceeds maximum %.1f", *req.CorrectedMark, mark.MaxMarks))
		}
		if err := s.marks.CorrectMark(ctx, tenantID, mark.ID, *req.CorrectedMark); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to correct mark")
		}

		s.results.InvalidateExamClass(ctx, tenantID, complaint.ExamID, complaint.ClassID)
		s.enqueueReaggregation(tenantID, complaint.ExamID, complaint.ClassID)
	}

	if err := s.complaints.Resolve(ctx, tenantID, complaintID, resolverID, req.Note); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "complaint already resolved")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve complaint")
	}

	resolved, err := s.Get(ctx, tenantID, complaintID)
	if err != nil {
		return nil, err
	}
	s.writeAudit(ctx, tenantID, resolverID, models.AuditActionComplaintResolve, complaintID, complaint, resolved)
	return resolved, nil
}

// enqueueReaggregation schedules the class rebuild. A full queue is logged
// and skipped: the cache was already invalidated, so the next read recomputes.
func (s *ComplaintService) enqueueReaggregation(tenantID, examID, classID string) {
	if s.queue == nil {
		return
	}
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    ReaggregateJobType,
		Payload: ReaggregateJob{TenantID: tenantID, ExamID: examID, ClassID: classID},
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue re-aggregation",
			zap.String("exam_id", examID),
			zap.String("class_id", classID),
			zap.Error(err))
	}
}

func (s *ComplaintService) writeAudit(ctx context.Context, tenantID, actorID, action, complaintID string, oldValue, newValue interface{}) {
	var oldPayload, newPayload []byte
	if oldValue != nil {
		oldPayload, _ = json.Marshal(oldValue)
	}
	if newValue != nil {
		newPayload, _ = json.Marshal(newValue)
	}
	log := &models.AuditLog{
		TenantID:   tenantID,
		Action:     action,
		Resource:   "complaint",
		ResourceID: &complaintID,
		OldValues:  oldPayload,
		NewValues:  newPayload,
	}
	if actorID != "" {
		log.UserID = &actorID
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to write audit log", zap.String("action", action), zap.Error(err))
	}
}

// NewReaggregateHandler returns the queue handler that rebuilds result sets
// after dispute-driven mark corrections.
func NewReaggregateHandler(results *ResultService, logger *zap.Logger) jobs.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, job jobs.Job) error {
		payload, ok := job.Payload.(ReaggregateJob)
		if !ok {
			logger.Error("unexpected re-aggregation payload", zap.String("job_id", job.ID))
			return nil
		}
		if _, err := results.Recompute(ctx, payload.TenantID, payload.ExamID, payload.ClassID); err != nil {
			return fmt.Errorf("reaggregate %s/%s: %w", payload.ExamID, payload.ClassID, err)
		}
		logger.Info("result set re-aggregated",
			zap.String("tenant_id", payload.TenantID),
			zap.String("exam_id", payload.ExamID),
			zap.String("class_id", payload.ClassID))
		return nil
	}
}
