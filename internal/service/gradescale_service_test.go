package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edunexa/assessment-api/internal/models"
	appErrors "github.com/edunexa/assessment-api/pkg/errors"
)

func TestClassifyWithScaleUniqueMatch(t *testing.T) {
	bands := testScale()

	cases := []struct {
		percentage float64
		grade      string
		gpa        float64
	}{
		{95, "A+", 4.0},
		{90, "A+", 4.0},
		{89, "B", 3.0},
		{60, "C", 2.0},
		{50, "C", 2.0},
		{49, "F", 0},
		{0, "F", 0},
		{100, "A+", 4.0},
	}
	for _, tc := range cases {
		classification, err := ClassifyWithScale(bands, tc.percentage)
		require.NoError(t, err, "percentage %.1f", tc.percentage)
		assert.Equal(t, tc.grade, classification.Grade, "percentage %.1f", tc.percentage)
		assert.Equal(t, tc.gpa, classification.GPA, "percentage %.1f", tc.percentage)
	}
}

func TestClassifyWithScaleSeamClassifiesUp(t *testing.T) {
	bands := testScale()

	// fractional values inside the one-point seam of an integer-edged table
	// take the band above instead of aborting the pipeline
	classification, err := ClassifyWithScale(bands, 49.5)
	require.NoError(t, err)
	assert.Equal(t, "C", classification.Grade)

	classification, err = ClassifyWithScale(bands, 89.2)
	require.NoError(t, err)
	assert.Equal(t, "A+", classification.Grade)
}

func TestClassifyWithScaleGapFailsLoudly(t *testing.T) {
	bands := []models.GradeBand{
		{Grade: "F", MinPercentage: 0, MaxPercentage: 49},
		{Grade: "A", MinPercentage: 90, MaxPercentage: 100},
	}

	_, err := ClassifyWithScale(bands, 75)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrGradeScaleConfig.Code, appErrors.FromError(err).Code)
}

func TestClassifyWithScaleOverlapFailsLoudly(t *testing.T) {
	bands := []models.GradeBand{
		{Grade: "C", MinPercentage: 0, MaxPercentage: 60},
		{Grade: "B", MinPercentage: 55, MaxPercentage: 100},
	}

	_, err := ClassifyWithScale(bands, 58)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrGradeScaleConfig.Code, appErrors.FromError(err).Code)
}

func TestValidateScale(t *testing.T) {
	require.NoError(t, ValidateScale(testScale()))

	cases := []struct {
		name  string
		bands []models.GradeBand
	}{
		{"empty", nil},
		{"does not start at zero", []models.GradeBand{{Grade: "A", MinPercentage: 10, MaxPercentage: 100}}},
		{"does not end at hundred", []models.GradeBand{{Grade: "A", MinPercentage: 0, MaxPercentage: 90}}},
		{"min above max", []models.GradeBand{{Grade: "A", MinPercentage: 0, MaxPercentage: 100}, {Grade: "B", MinPercentage: 60, MaxPercentage: 50}}},
		{"overlap", []models.GradeBand{
			{Grade: "F", MinPercentage: 0, MaxPercentage: 55},
			{Grade: "C", MinPercentage: 50, MaxPercentage: 100},
		}},
		{"gap", []models.GradeBand{
			{Grade: "F", MinPercentage: 0, MaxPercentage: 49},
			{Grade: "A", MinPercentage: 90, MaxPercentage: 100},
		}},
	}
	for _, tc := range cases {
		err := ValidateScale(tc.bands)
		require.Error(t, err, tc.name)
		assert.Equal(t, appErrors.ErrGradeScaleConfig.Code, appErrors.FromError(err).Code, tc.name)
	}
}

func TestPassThreshold(t *testing.T) {
	assert.Equal(t, 50.0, PassThreshold(testScale()))
	assert.Equal(t, 0.0, PassThreshold([]models.GradeBand{{Grade: "P", MinPercentage: 0, MaxPercentage: 100}}))
	assert.Equal(t, 0.0, PassThreshold(nil))
}

func TestGradeScaleServiceReplaceScaleValidates(t *testing.T) {
	svc := newTestScaleService(nil, nil)

	_, err := svc.ReplaceScale(context.Background(), "t1", ReplaceScaleRequest{Bands: []GradeBandInput{
		{Grade: "F", MinPercentage: 0, MaxPercentage: 49},
		{Grade: "A", MinPercentage: 90, MaxPercentage: 100},
	}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrGradeScaleConfig.Code, appErrors.FromError(err).Code)

	bands, err := svc.ReplaceScale(context.Background(), "t1", ReplaceScaleRequest{Bands: []GradeBandInput{
		{Grade: "A", MinPercentage: 90, MaxPercentage: 100, GPA: 4},
		{Grade: "F", MinPercentage: 0, MaxPercentage: 49},
		{Grade: "C", MinPercentage: 50, MaxPercentage: 69, GPA: 2},
		{Grade: "B", MinPercentage: 70, MaxPercentage: 89, GPA: 3},
	}})
	require.NoError(t, err)
	require.Len(t, bands, 4)
	assert.Equal(t, "F", bands[0].Grade)
	assert.Equal(t, "A", bands[3].Grade)
}

func TestGradeScaleServiceResolveScaleEmpty(t *testing.T) {
	svc := newTestScaleService(nil, nil)

	_, err := svc.ResolveScale(context.Background(), "t1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrGradeScaleConfig.Code, appErrors.FromError(err).Code)
}

func TestGradeScaleServiceResolvePolicyFallback(t *testing.T) {
	svc := newTestScaleService(testScale(), nil)

	policy, err := svc.ResolvePolicy(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, models.PromotionPolicyOverall, policy.Mode)
	assert.Equal(t, 0.0, policy.Threshold)
}

func TestGradeScaleServiceResolvePolicyStored(t *testing.T) {
	stored := &models.PromotionPolicy{TenantID: "t1", Mode: models.PromotionPolicyPerSubject, Threshold: 40, MaxFailedSubjects: 1}
	svc := newTestScaleService(testScale(), stored)

	policy, err := svc.ResolvePolicy(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, models.PromotionPolicyPerSubject, policy.Mode)
	assert.Equal(t, 40.0, policy.Threshold)
	assert.Equal(t, 1, policy.MaxFailedSubjects)
}
