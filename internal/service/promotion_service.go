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

type promotionStore interface {
	CreateRun(ctx context.Context, run *models.PromotionRun) error
	UpsertDecisions(ctx context.Context, decisions []models.PromotionDecision) error
	FindRun(ctx context.Context, tenantID, runID string) (*models.PromotionRun, error)
	ListDecisions(ctx context.Context, tenantID, runID string) ([]models.PromotionDecision, error)
	FindAutoRun(ctx context.Context, tenantID, examID, fromClassID string) (*models.PromotionRun, error)
}

type studentStore interface {
	ListByClass(ctx context.Context, tenantID, classID string) ([]models.Student, error)
	FindByIDs(ctx context.Context, tenantID string, studentIDs []string) (map[string]models.Student, error)
	ReassignClass(ctx context.Context, tenantID string, studentIDs []string, toClassID, toSection string) (int64, error)
}

// ManualPromotionRequest moves an explicit roster regardless of results.
type ManualPromotionRequest struct {
	StudentIDs []string `json:"student_ids" validate:"required,min=1,dive,required"`
	ToClassID  string   `json:"to_class_id" validate:"required"`
	ToSection  string   `json:"to_section" validate:"required"`
	Reason     string   `json:"reason"`
}

// AutoPromotionRequest promotes a whole class from an approved exam's results.
type AutoPromotionRequest struct {
	ExamID      string `json:"exam_id" validate:"required"`
	FromClassID string `json:"from_class_id" validate:"required"`
	ToClassID   string `json:"to_class_id" validate:"required"`
	ToSection   string `json:"to_section" validate:"required"`
}

// PromotionService decides and applies student promotion. Automatic runs are
// idempotent: retrying the same exam/class run reuses the original run
// identity and re-applying a decision is a no-op.
type PromotionService struct {
	runs     promotionStore
	students studentStore
	exams    examReader
	results  *ResultService
	scales   *GradeScaleService
	locks    classLocker
	audit    auditWriter
	metrics  *MetricsService

	validator *validator.Validate
	logger    *zap.Logger
}

// NewPromotionService constructs PromotionService.
func NewPromotionService(runs promotionStore, students studentStore, exams examReader, results *ResultService, scales *GradeScaleService, locks classLocker, audit auditWriter, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *PromotionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PromotionService{
		runs:      runs,
		students:  students,
		exams:     exams,
		results:   results,
		scales:    scales,
		locks:     locks,
		audit:     audit,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// PromoteManual moves the listed students into the target class. Students
// that cannot be found or are inactive land in the failures list; the rest
// are promoted with a manual-override decision.
func (s *PromotionService) PromoteManual(ctx context.Context, tenantID string, req ManualPromotionRequest, actorID string) (*models.PromotionRunResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid promotion payload")
	}

	found, err := s.students.FindByIDs(ctx, tenantID, req.StudentIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	reason := req.Reason
	if reason == "" {
		reason = "manual promotion"
	}

	var failures []models.PromotionFailure
	eligible := make([]models.Student, 0, len(req.StudentIDs))
	for _, studentID := range req.StudentIDs {
		student, ok := found[studentID]
		if !ok {
			failures = append(failures, models.PromotionFailure{StudentID: studentID, Reason: "student not found"})
			continue
		}
		if !student.Active {
			failures = append(failures, models.PromotionFailure{StudentID: studentID, Reason: "student is inactive"})
			continue
		}
		eligible = append(eligible, student)
	}
	if len(eligible) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no promotable students in request")
	}

	run := &models.PromotionRun{
		TenantID:   tenantID,
		Mode:       models.PromotionModeManual,
		ToClassID:  req.ToClassID,
		ToSection:  req.ToSection,
		ExecutedBy: actorID,
	}

	var result *models.PromotionRunResult
	lockKey := repository.ClassLockKey(tenantID, req.ToClassID)
	err = s.locks.WithLock(ctx, lockKey, func(ctx context.Context) error {
		if err := s.runs.CreateRun(ctx, run); err != nil {
			return fmt.Errorf("create run: %w", err)
		}

		decisions := make([]models.PromotionDecision, 0, len(eligible))
		promotedIDs := make([]string, 0, len(eligible))
		for _, student := range eligible {
			decisions = append(decisions, models.PromotionDecision{
				TenantID:    tenantID,
				RunID:       run.ID,
				StudentID:   student.ID,
				FromClassID: student.ClassID,
				ToClassID:   req.ToClassID,
				ToSection:   req.ToSection,
				Outcome:     models.PromotionOutcomePromoted,
				Reason:      reason,
			})
			promotedIDs = append(promotedIDs, student.ID)
		}
		if err := s.runs.UpsertDecisions(ctx, decisions); err != nil {
			return fmt.Errorf("store decisions: %w", err)
		}
		if _, err := s.students.ReassignClass(ctx, tenantID, promotedIDs, req.ToClassID, req.ToSection); err != nil {
			return fmt.Errorf("reassign students: %w", err)
		}

		result = &models.PromotionRunResult{
			RunID:         run.ID,
			PromotedCount: len(promotedIDs),
			Failures:      failures,
			Decisions:     decisions,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, appErrors.ErrClassLocked) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "manual promotion failed")
	}

	s.writeAudit(ctx, tenantID, actorID, run.ID, result)
	return result, nil
}

// PromoteAuto runs the exam-driven promotion pipeline for one class. The exam
// must be approved. The run holds the source class lock so it cannot race
// with mark writes, and a retried run reuses the prior run identity.
func (s *PromotionService) PromoteAuto(ctx context.Context, tenantID string, req AutoPromotionRequest, actorID string) (*models.PromotionRunResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid promotion payload")
	}

	exam, err := s.exams.FindByID(ctx, tenantID, req.ExamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	if !exam.IsApproved {
		return nil, appErrors.Clone(appErrors.ErrExamNotApproved, "promotion requires an approved exam")
	}

	policy, err := s.scales.ResolvePolicy(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	threshold := policy.Threshold
	if threshold <= 0 {
		bands, err := s.scales.ResolveScale(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		threshold = PassThreshold(bands)
	}

	var result *models.PromotionRunResult
	lockKey := repository.ClassLockKey(tenantID, req.FromClassID)
	err = s.locks.WithLock(ctx, lockKey, func(ctx context.Context) error {
		results, err := s.results.Aggregate(ctx, tenantID, req.ExamID, req.FromClassID)
		if err != nil {
			return err
		}
		roster, err := s.students.ListByClass(ctx, tenantID, req.FromClassID)
		if err != nil {
			return fmt.Errorf("load roster: %w", err)
		}

		run, err := s.resolveRun(ctx, tenantID, req, actorID)
		if err != nil {
			return err
		}

		decisions, failures := s.decide(tenantID, run.ID, req, roster, results, policy.Mode, threshold, policy.MaxFailedSubjects)
		if err := s.runs.UpsertDecisions(ctx, decisions); err != nil {
			return fmt.Errorf("store decisions: %w", err)
		}

		promotedIDs := make([]string, 0, len(decisions))
		promoted, retained := 0, 0
		for _, decision := range decisions {
			s.metrics.RecordPromotionDecision(decision.Outcome)
			if decision.Outcome == models.PromotionOutcomePromoted {
				promotedIDs = append(promotedIDs, decision.StudentID)
				promoted++
			} else {
				retained++
			}
		}
		if _, err := s.students.ReassignClass(ctx, tenantID, promotedIDs, req.ToClassID, req.ToSection); err != nil {
			return fmt.Errorf("reassign students: %w", err)
		}

		result = &models.PromotionRunResult{
			RunID:         run.ID,
			PromotedCount: promoted,
			RetainedCount: retained,
			Failures:      failures,
			Decisions:     decisions,
		}
		return nil
	})
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "automatic promotion failed")
	}

	s.writeAudit(ctx, tenantID, actorID, result.RunID, result)
	return result, nil
}

// GetRun returns a run header with its full decision log.
func (s *PromotionService) GetRun(ctx context.Context, tenantID, runID string) (*models.PromotionRun, []models.PromotionDecision, error) {
	run, err := s.runs.FindRun(ctx, tenantID, runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "promotion run not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load promotion run")
	}
	decisions, err := s.runs.ListDecisions(ctx, tenantID, runID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load promotion decisions")
	}
	return run, decisions, nil
}

// resolveRun reuses the previous automatic run for the same exam/class when
// its target matches, so a retried run overwrites its own decisions instead
// of minting a second history entry.
func (s *PromotionService) resolveRun(ctx context.Context, tenantID string, req AutoPromotionRequest, actorID string) (*models.PromotionRun, error) {
	prior, err := s.runs.FindAutoRun(ctx, tenantID, req.ExamID, req.FromClassID)
	if err == nil && prior.ToClassID == req.ToClassID && prior.ToSection == req.ToSection {
		return prior, nil
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("look up prior run: %w", err)
	}

	run := &models.PromotionRun{
		TenantID:    tenantID,
		Mode:        models.PromotionModeAuto,
		ExamID:      &req.ExamID,
		FromClassID: &req.FromClassID,
		ToClassID:   req.ToClassID,
		ToSection:   req.ToSection,
		ExecutedBy:  actorID,
	}
	if err := s.runs.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	return run, nil
}

// decide applies the tenant's promotion rule to every roster student. A
// student with no result cannot be decided and lands in the failures list.
func (s *PromotionService) decide(tenantID, runID string, req AutoPromotionRequest, roster []models.Student, results []models.AggregatedResult, mode models.PromotionPolicyMode, threshold float64, maxFailedSubjects int) ([]models.PromotionDecision, []models.PromotionFailure) {
	byStudent := make(map[string]models.AggregatedResult, len(results))
	for _, result := range results {
		byStudent[result.StudentID] = result
	}

	decisions := make([]models.PromotionDecision, 0, len(roster))
	var failures []models.PromotionFailure

	for _, student := range roster {
		result, ok := byStudent[student.ID]
		if !ok {
			failures = append(failures, models.PromotionFailure{StudentID: student.ID, Reason: "no marks recorded for exam"})
			continue
		}

		outcome := models.PromotionOutcomePromoted
		reason := fmt.Sprintf("overall percentage %.1f%% meets %.1f%% threshold", result.Percentage, threshold)

		switch mode {
		case models.PromotionPolicyPerSubject:
			failed := failedSubjects(result, threshold)
			if failed > maxFailedSubjects {
				outcome = models.PromotionOutcomeRetained
				reason = fmt.Sprintf("failed %d of %d subjects, %d allowed", failed, result.SubjectCount, maxFailedSubjects)
			} else {
				reason = fmt.Sprintf("failed %d of %d subjects, within %d allowed", failed, result.SubjectCount, maxFailedSubjects)
			}
		default:
			if result.Percentage < threshold {
				outcome = models.PromotionOutcomeRetained
				reason = fmt.Sprintf("overall percentage %.1f%% below %.1f%% threshold", result.Percentage, threshold)
			}
		}

		decisions = append(decisions, models.PromotionDecision{
			TenantID:    tenantID,
			RunID:       runID,
			StudentID:   student.ID,
			FromClassID: req.FromClassID,
			ToClassID:   req.ToClassID,
			ToSection:   req.ToSection,
			Outcome:     outcome,
			Reason:      reason,
		})
	}
	return decisions, failures
}

func failedSubjects(result models.AggregatedResult, threshold float64) int {
	failed := 0
	for _, score := range result.Subjects {
		pct := 0.0
		if score.Max > 0 {
			pct = score.Obtained / score.Max * 100
		}
		if pct < threshold {
			failed++
		}
	}
	return failed
}

func (s *PromotionService) writeAudit(ctx context.Context, tenantID, actorID, runID string, result *models.PromotionRunResult) {
	payload, err := json.Marshal(map[string]interface{}{
		"run_id":         result.RunID,
		"promoted_count": result.PromotedCount,
		"retained_count": result.RetainedCount,
		"failure_count":  len(result.Failures),
	})
	if err != nil {
		payload = nil
	}
	log := &models.AuditLog{
		TenantID:   tenantID,
		Action:     models.AuditActionPromotionRun,
		Resource:   "promotion_run",
		ResourceID: &runID,
		NewValues:  payload,
	}
	if actorID != "" {
		log.UserID = &actorID
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to write audit log", zap.String("action", models.AuditActionPromotionRun), zap.Error(err))
	}
}
