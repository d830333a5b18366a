package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edunexa/assessment-api/internal/models"
)

func newTestAnalyticsService(marks []models.Mark, students []models.Student, policy *models.PromotionPolicy) *AnalyticsService {
	scales := newTestScaleService(testScale(), policy)
	results := NewResultService(&fakeMarkReader{marks: marks}, &fakeStudentDirectory{students: students}, scales, nil, time.Minute, nil, zap.NewNop())
	return NewAnalyticsService(results, scales, nil, time.Minute, zap.NewNop())
}

func TestAnalyticsDistributionBucketsSumToTotal(t *testing.T) {
	students := []models.Student{
		testStudent("s1", "Asha"), testStudent("s2", "Bo"),
		testStudent("s3", "Chen"), testStudent("s4", "Dia"),
	}
	marks := []models.Mark{
		testMark("s1", "math", 90, 100),
		testMark("s2", "math", 70, 100),
		testMark("s3", "math", 50, 100),
		testMark("s4", "math", 49, 100),
	}
	svc := newTestAnalyticsService(marks, students, nil)

	report, err := svc.Analyze(context.Background(), "t1", "midterm", "c1")
	require.NoError(t, err)

	dist := report.PerformanceDistribution
	assert.Equal(t, 1, dist.Excellent)
	assert.Equal(t, 1, dist.Good)
	assert.Equal(t, 1, dist.Average)
	assert.Equal(t, 1, dist.BelowAverage)
	assert.Equal(t, report.TotalStudents, dist.Excellent+dist.Good+dist.Average+dist.BelowAverage)
}

func TestAnalyticsSubjectStatistics(t *testing.T) {
	students := []models.Student{testStudent("s1", "Asha"), testStudent("s2", "Bo"), testStudent("s3", "Chen")}
	marks := []models.Mark{
		testMark("s1", "math", 90, 100),
		testMark("s2", "math", 60, 100),
		testMark("s3", "math", 30, 100),
		testMark("s1", "eng", 80, 100),
		testMark("s2", "eng", 70, 100),
		testMark("s3", "eng", 60, 100),
	}
	svc := newTestAnalyticsService(marks, students, nil)

	report, err := svc.Analyze(context.Background(), "t1", "midterm", "c1")
	require.NoError(t, err)
	require.Len(t, report.SubjectAnalytics, 2)

	// threshold derives from the lowest non-fail band
	assert.Equal(t, 50.0, report.PassThreshold)

	eng := report.SubjectAnalytics[0]
	assert.Equal(t, "eng", eng.SubjectID)
	assert.InDelta(t, 70.0, eng.Average, 0.001)
	assert.Equal(t, 80.0, eng.Highest)
	assert.Equal(t, 60.0, eng.Lowest)
	assert.InDelta(t, 100.0, eng.PassRate, 0.001)

	math := report.SubjectAnalytics[1]
	assert.Equal(t, "math", math.SubjectID)
	assert.InDelta(t, 60.0, math.Average, 0.001)
	assert.Equal(t, 90.0, math.Highest)
	assert.Equal(t, 30.0, math.Lowest)
	assert.InDelta(t, 66.666, math.PassRate, 0.01)
}

func TestAnalyticsPolicyThresholdOverride(t *testing.T) {
	students := []models.Student{testStudent("s1", "Asha"), testStudent("s2", "Bo")}
	marks := []models.Mark{
		testMark("s1", "math", 65, 100),
		testMark("s2", "math", 55, 100),
	}
	policy := &models.PromotionPolicy{TenantID: "t1", Mode: models.PromotionPolicyOverall, Threshold: 60}
	svc := newTestAnalyticsService(marks, students, policy)

	report, err := svc.Analyze(context.Background(), "t1", "midterm", "c1")
	require.NoError(t, err)
	assert.Equal(t, 60.0, report.PassThreshold)
	require.Len(t, report.SubjectAnalytics, 1)
	assert.InDelta(t, 50.0, report.SubjectAnalytics[0].PassRate, 0.001)
}

func TestAnalyticsEmptyClass(t *testing.T) {
	svc := newTestAnalyticsService(nil, nil, nil)

	report, err := svc.Analyze(context.Background(), "t1", "midterm", "c1")
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalStudents)
	assert.Empty(t, report.SubjectAnalytics)
}
