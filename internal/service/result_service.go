package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/edunexa/assessment-api/internal/models"
	"github.com/edunexa/assessment-api/internal/repository"
	appErrors "github.com/edunexa/assessment-api/pkg/errors"
)

type markReader interface {
	ListForExamClass(ctx context.Context, tenantID, examID, classID string) ([]models.Mark, error)
}

type studentResolver interface {
	FindByIDs(ctx context.Context, tenantID string, studentIDs []string) (map[string]models.Student, error)
}

type resultCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ResultService turns raw marks into ranked, graded result sheets. The
// pipeline is deterministic: the same marks and scale always produce the
// same output, so cached and recomputed payloads are interchangeable.
// Students are resolved tenant-wide from the mark set itself rather than
// from the live class roster, so promoting a student later never rewrites
// the sheet their marks belong to.
type ResultService struct {
	marks    markReader
	students studentResolver
	scales   *GradeScaleService
	cache    resultCache
	cacheTTL time.Duration
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewResultService constructs ResultService. The cache and metrics service
// may be nil; the service then recomputes on every request.
func NewResultService(marks markReader, students studentResolver, scales *GradeScaleService, cache resultCache, cacheTTL time.Duration, metrics *MetricsService, logger *zap.Logger) *ResultService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultService{marks: marks, students: students, scales: scales, cache: cache, cacheTTL: cacheTTL, metrics: metrics, logger: logger}
}

// Aggregate returns the ranked result sheet for an exam/class, serving from
// cache when possible.
func (s *ResultService) Aggregate(ctx context.Context, tenantID, examID, classID string) ([]models.AggregatedResult, error) {
	key := repository.ResultKey(tenantID, examID, classID)
	if s.cache != nil {
		var cached []models.AggregatedResult
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("result cache read failed", zap.String("key", key), zap.Error(err))
		}
		s.metrics.RecordCacheOperation(false)
	}

	results, err := s.compute(ctx, tenantID, examID, classID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && len(results) > 0 {
		if err := s.cache.Set(ctx, key, results, s.cacheTTL); err != nil {
			s.logger.Warn("result cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return results, nil
}

// Recompute bypasses the cache, rebuilds the result sheet and refreshes the
// cached copy. Dispute resolution uses it to republish corrected results.
func (s *ResultService) Recompute(ctx context.Context, tenantID, examID, classID string) ([]models.AggregatedResult, error) {
	results, err := s.compute(ctx, tenantID, examID, classID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		key := repository.ResultKey(tenantID, examID, classID)
		if err := s.cache.Set(ctx, key, results, s.cacheTTL); err != nil {
			s.logger.Warn("result cache refresh failed", zap.String("key", key), zap.Error(err))
		}
	}
	return results, nil
}

// InvalidateExamClass drops every cached payload derived from an exam/class.
func (s *ResultService) InvalidateExamClass(ctx context.Context, tenantID, examID, classID string) {
	if s.cache == nil {
		return
	}
	pattern := repository.ExamClassPattern(tenantID, examID, classID)
	if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
	}
}

// SubjectMatrix returns the per-subject breakdown view of a result sheet.
func (s *ResultService) SubjectMatrix(ctx context.Context, tenantID, examID, classID string) (*models.SubjectMatrix, error) {
	results, err := s.Aggregate(ctx, tenantID, examID, classID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	subjects := make([]string, 0)
	for i := range results {
		for subjectID := range results[i].Subjects {
			if !seen[subjectID] {
				seen[subjectID] = true
				subjects = append(subjects, subjectID)
			}
		}
	}
	sort.Strings(subjects)

	return &models.SubjectMatrix{ExamID: examID, ClassID: classID, Subjects: subjects, Results: results}, nil
}

func (s *ResultService) compute(ctx context.Context, tenantID, examID, classID string) ([]models.AggregatedResult, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveAggregation(time.Since(start))
	}()

	marks, err := s.marks.ListForExamClass(ctx, tenantID, examID, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load marks")
	}
	if len(marks) == 0 {
		return []models.AggregatedResult{}, nil
	}

	students, err := s.students.FindByIDs(ctx, tenantID, markStudentIDs(marks))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve students")
	}

	results, err := s.aggregate(marks, students, examID)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return []models.AggregatedResult{}, nil
	}

	bands, err := s.scales.ResolveScale(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if err := classifyResults(results, bands); err != nil {
		return nil, err
	}

	rankResults(results)
	return results, nil
}

// aggregate groups marks by student and totals them. The whole batch is
// rejected when any mark exceeds its maximum; marks whose student no longer
// exists in the tenant directory are skipped and logged. Students keep the
// order in which their first mark appears, which is the stable order ranking
// ties fall back on.
func (s *ResultService) aggregate(marks []models.Mark, students map[string]models.Student, examID string) ([]models.AggregatedResult, error) {
	byStudent := make(map[string]*models.AggregatedResult)
	order := make([]string, 0, len(students))

	for i := range marks {
		mark := marks[i]
		if mark.MarksObtained < 0 || mark.MarksObtained > mark.MaxMarks {
			return nil, appErrors.Clone(appErrors.ErrDataIntegrity,
				fmt.Sprintf("mark %.1f/%.1f for student %s in subject %s is out of range", mark.MarksObtained, mark.MaxMarks, mark.StudentID, mark.SubjectID))
		}

		student, ok := students[mark.StudentID]
		if !ok {
			s.logger.Warn("skipping mark for unknown student",
				zap.String("student_id", mark.StudentID),
				zap.String("exam_id", mark.ExamID),
				zap.String("subject_id", mark.SubjectID))
			continue
		}

		result, ok := byStudent[mark.StudentID]
		if !ok {
			result = &models.AggregatedResult{
				StudentID:   student.ID,
				StudentName: student.FullName,
				ExamID:      examID,
				Subjects:    make(map[string]models.SubjectScore),
			}
			byStudent[mark.StudentID] = result
			order = append(order, mark.StudentID)
		}

		result.Subjects[mark.SubjectID] = models.SubjectScore{Obtained: mark.MarksObtained, Max: mark.MaxMarks}
		result.TotalObtained += mark.MarksObtained
		result.TotalMax += mark.MaxMarks
	}

	results := make([]models.AggregatedResult, 0, len(order))
	for _, studentID := range order {
		result := byStudent[studentID]
		result.SubjectCount = len(result.Subjects)
		if result.TotalMax > 0 {
			result.Percentage = result.TotalObtained / result.TotalMax * 100
		}
		results = append(results, *result)
	}
	return results, nil
}

// markStudentIDs returns the distinct student IDs of a mark set in first
// appearance order.
func markStudentIDs(marks []models.Mark) []string {
	seen := make(map[string]bool, len(marks))
	ids := make([]string, 0, len(marks))
	for i := range marks {
		if !seen[marks[i].StudentID] {
			seen[marks[i].StudentID] = true
			ids = append(ids, marks[i].StudentID)
		}
	}
	return ids
}

// classifyResults grades every result: the overall grade comes from the
// overall percentage, the GPA is the mean of per-subject band GPAs.
func classifyResults(results []models.AggregatedResult, bands []models.GradeBand) error {
	for i := range results {
		overall, err := ClassifyWithScale(bands, results[i].Percentage)
		if err != nil {
			return err
		}
		results[i].Grade = overall.Grade

		var gpaSum float64
		for _, score := range results[i].Subjects {
			pct := 0.0
			if score.Max > 0 {
				pct = score.Obtained / score.Max * 100
			}
			subject, err := ClassifyWithScale(bands, pct)
			if err != nil {
				return err
			}
			gpaSum += subject.GPA
		}
		if results[i].SubjectCount > 0 {
			results[i].GPA = gpaSum / float64(results[i].SubjectCount)
		}
	}
	return nil
}

// rankResults assigns dense 1-based ranks by descending percentage. Equal
// percentages get distinct sequential ranks in the incoming stable order;
// the sort never reorders ties.
func rankResults(results []models.AggregatedResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Percentage > results[j].Percentage
	})
	for i := range results {
		results[i].Rank = i + 1
	}
}
