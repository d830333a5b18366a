package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/edunexa/assessment-api/internal/models"
	"github.com/edunexa/assessment-api/internal/repository"
	appErrors "github.com/edunexa/assessment-api/pkg/errors"
)

// AnalyticsService computes per-subject statistics and class performance
// distributions over aggregated results.
type AnalyticsService struct {
	results  *ResultService
	scales   *GradeScaleService
	cache    resultCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewAnalyticsService constructs AnalyticsService.
func NewAnalyticsService(results *ResultService, scales *GradeScaleService, cache resultCache, cacheTTL time.Duration, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{results: results, scales: scales, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Analyze builds the analytics report for an exam/class, serving from cache
// when possible.
func (s *AnalyticsService) Analyze(ctx context.Context, tenantID, examID, classID string) (*models.AnalyticsReport, error) {
	key := repository.AnalyticsKey(tenantID, examID, classID)
	if s.cache != nil {
		var cached models.AnalyticsReport
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("analytics cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	results, err := s.results.Aggregate(ctx, tenantID, examID, classID)
	if err != nil {
		return nil, err
	}

	threshold, err := s.passThreshold(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	report := buildReport(examID, classID, results, threshold)

	if s.cache != nil && report.TotalStudents > 0 {
		if err := s.cache.Set(ctx, key, report, s.cacheTTL); err != nil {
			s.logger.Warn("analytics cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return report, nil
}

// passThreshold resolves the pass boundary: the tenant's policy threshold
// when set, otherwise derived from the grade scale.
func (s *AnalyticsService) passThreshold(ctx context.Context, tenantID string) (float64, error) {
	policy, err := s.scales.ResolvePolicy(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	if policy.Threshold > 0 {
		return policy.Threshold, nil
	}
	bands, err := s.scales.ResolveScale(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	return PassThreshold(bands), nil
}

// buildReport computes the subject statistics and distribution buckets.
// Every ranked student lands in exactly one bucket, so the bucket counts
// always sum to the student total.
func buildReport(examID, classID string, results []models.AggregatedResult, threshold float64) *models.AnalyticsReport {
	report := &models.AnalyticsReport{
		ExamID:        examID,
		ClassID:       classID,
		TotalStudents: len(results),
		PassThreshold: threshold,
	}

	type subjectAcc struct {
		sum     float64
		highest float64
		lowest  float64
		passed  int
		count   int
	}
	bySubject := make(map[string]*subjectAcc)

	for i := range results {
		switch pct := results[i].Percentage; {
		case pct >= 90:
			report.PerformanceDistribution.Excellent++
		case pct >= 70:
			report.PerformanceDistribution.Good++
		case pct >= 50:
			report.PerformanceDistribution.Average++
		default:
			report.PerformanceDistribution.BelowAverage++
		}

		for subjectID, score := range results[i].Subjects {
			acc, ok := bySubject[subjectID]
			if !ok {
				acc = &subjectAcc{highest: score.Obtained, lowest: score.Obtained}
				bySubject[subjectID] = acc
			}
			acc.sum += score.Obtained
			acc.count++
			if score.Obtained > acc.highest {
				acc.highest = score.Obtained
			}
			if score.Obtained < acc.lowest {
				acc.lowest = score.Obtained
			}
			pct := 0.0
			if score.Max > 0 {
				pct = score.Obtained / score.Max * 100
			}
			if pct >= threshold {
				acc.passed++
			}
		}
	}

	subjects := make([]string, 0, len(bySubject))
	for subjectID := range bySubject {
		subjects = append(subjects, subjectID)
	}
	sort.Strings(subjects)

	report.SubjectAnalytics = make([]models.SubjectAnalytics, 0, len(subjects))
	for _, subjectID := range subjects {
		acc := bySubject[subjectID]
		report.SubjectAnalytics = append(report.SubjectAnalytics, models.SubjectAnalytics{
			SubjectID: subjectID,
			Average:   acc.sum / float64(acc.count),
			Highest:   acc.highest,
			Lowest:    acc.lowest,
			PassRate:  float64(acc.passed) / float64(acc.count) * 100,
		})
	}
	return report
}
