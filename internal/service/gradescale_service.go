package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edunexa/assessment-api/internal/models"
	"github.com/edunexa/assessment-api/pkg/config"
	appErrors "github.com/edunexa/assessment-api/pkg/errors"
)

type gradeScaleStore interface {
	ListByTenant(ctx context.Context, tenantID string) ([]models.GradeBand, error)
	ReplaceScale(ctx context.Context, tenantID string, bands []models.GradeBand) error
	FindPromotionPolicy(ctx context.Context, tenantID string) (*models.PromotionPolicy, error)
	UpsertPromotionPolicy(ctx context.Context, policy *models.PromotionPolicy) error
}

// GradeBandInput is a single band within a scale replacement payload.
type GradeBandInput struct {
	Grade         string  `json:"grade" validate:"required"`
	MinPercentage float64 `json:"min_percentage" validate:"min=0,max=100"`
	MaxPercentage float64 `json:"max_percentage" validate:"min=0,max=100"`
	GPA           float64 `json:"gpa" validate:"min=0"`
	Remarks       string  `json:"remarks"`
}

// ReplaceScaleRequest swaps a tenant's whole grade-band table.
type ReplaceScaleRequest struct {
	Bands []GradeBandInput `json:"bands" validate:"required,min=1,dive"`
}

// UpsertPromotionPolicyRequest stores the tenant's promotion rule.
type UpsertPromotionPolicyRequest struct {
	Mode              models.PromotionPolicyMode `json:"mode" validate:"required,oneof=OVERALL PER_SUBJECT"`
	Threshold         float64                    `json:"threshold" validate:"min=0,max=100"`
	MaxFailedSubjects int                        `json:"max_failed_subjects" validate:"min=0"`
}

// GradeScaleService resolves and maintains per-tenant grade-band tables and
// maps percentages onto them.
type GradeScaleService struct {
	scales    gradeScaleStore
	validator *validator.Validate
	logger    *zap.Logger
	defaults  config.PromotionConfig
}

// NewGradeScaleService constructs GradeScaleService.
func NewGradeScaleService(scales gradeScaleStore, defaults config.PromotionConfig, validate *validator.Validate, logger *zap.Logger) *GradeScaleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeScaleService{scales: scales, defaults: defaults, validator: validate, logger: logger}
}

// ResolveScale returns the tenant's active grade-band table ordered from the
// lowest to the highest range. A tenant without a scale cannot grade.
func (s *GradeScaleService) ResolveScale(ctx context.Context, tenantID string) ([]models.GradeBand, error) {
	bands, err := s.scales.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade scale")
	}
	if len(bands) == 0 {
		return nil, appErrors.Clone(appErrors.ErrGradeScaleConfig, "no grade scale configured for tenant")
	}
	return bands, nil
}

// ReplaceScale validates and atomically swaps the tenant's grade scale.
func (s *GradeScaleService) ReplaceScale(ctx context.Context, tenantID string, req ReplaceScaleRequest) ([]models.GradeBand, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade scale payload")
	}
	bands := make([]models.GradeBand, 0, len(req.Bands))
	for _, input := range req.Bands {
		bands = append(bands, models.GradeBand{
			Grade:         input.Grade,
			MinPercentage: input.MinPercentage,
			MaxPercentage: input.MaxPercentage,
			GPA:           input.GPA,
			Remarks:       input.Remarks,
		})
	}
	sort.SliceStable(bands, func(i, j int) bool { return bands[i].MinPercentage < bands[j].MinPercentage })
	if err := ValidateScale(bands); err != nil {
		return nil, err
	}
	if err := s.scales.ReplaceScale(ctx, tenantID, bands); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store grade scale")
	}
	return bands, nil
}

// Classify maps a percentage onto the tenant's grade scale.
func (s *GradeScaleService) Classify(ctx context.Context, tenantID string, percentage float64) (*models.Classification, error) {
	bands, err := s.ResolveScale(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return ClassifyWithScale(bands, percentage)
}

// ClassifyWithScale finds the band containing the percentage on a scale
// sorted by min percentage. Band edges are inclusive on both ends. A
// fractional value inside the one-point seam an integer-edged table leaves
// (49 < pct < 50 on a 0-49/50-69 scale) classifies into the band above the
// seam. More than one match, or a value no band or seam covers, is a
// configuration error: the classifier fails loudly rather than guessing.
func ClassifyWithScale(bands []models.GradeBand, percentage float64) (*models.Classification, error) {
	var match *models.GradeBand
	for i := range bands {
		if percentage >= bands[i].MinPercentage && percentage <= bands[i].MaxPercentage {
			if match != nil {
				return nil, appErrors.Clone(appErrors.ErrGradeScaleConfig, fmt.Sprintf("grade bands %s and %s overlap at %.2f%%", match.Grade, bands[i].Grade, percentage))
			}
			match = &bands[i]
		}
	}
	if match == nil {
		for i := 1; i < len(bands); i++ {
			prev, curr := bands[i-1], bands[i]
			if curr.MinPercentage-prev.MaxPercentage <= 1 && percentage > prev.MaxPercentage && percentage < curr.MinPercentage {
				match = &bands[i]
				break
			}
		}
	}
	if match == nil {
		return nil, appErrors.Clone(appErrors.ErrGradeScaleConfig, fmt.Sprintf("no grade band covers %.2f%%", percentage))
	}
	return &models.Classification{Grade: match.Grade, GPA: match.GPA, Remarks: match.Remarks}, nil
}

// ValidateScale checks a band set sorted by min percentage for overlaps and
// gaps. Integer-edged tables (0-49, 50-69, ...) are treated as contiguous:
// a seam of at most one percentage point between inclusive edges is allowed.
func ValidateScale(bands []models.GradeBand) error {
	if len(bands) == 0 {
		return appErrors.Clone(appErrors.ErrGradeScaleConfig, "grade scale is empty")
	}
	for i := range bands {
		if bands[i].MinPercentage > bands[i].MaxPercentage {
			return appErrors.Clone(appErrors.ErrGradeScaleConfig, fmt.Sprintf("band %s has min above max", bands[i].Grade))
		}
	}
	if bands[0].MinPercentage != 0 {
		return appErrors.Clone(appErrors.ErrGradeScaleConfig, "grade scale must start at 0%")
	}
	if bands[len(bands)-1].MaxPercentage != 100 {
		return appErrors.Clone(appErrors.ErrGradeScaleConfig, "grade scale must end at 100%")
	}
	for i := 1; i < len(bands); i++ {
		prev, curr := bands[i-1], bands[i]
		if curr.MinPercentage <= prev.MaxPercentage {
			return appErrors.Clone(appErrors.ErrGradeScaleConfig, fmt.Sprintf("bands %s and %s overlap", prev.Grade, curr.Grade))
		}
		if curr.MinPercentage-prev.MaxPercentage > 1 {
			return appErrors.Clone(appErrors.ErrGradeScaleConfig, fmt.Sprintf("gap between bands %s and %s", prev.Grade, curr.Grade))
		}
	}
	return nil
}

// PassThreshold derives the pass boundary from a sorted scale: the minimum
// percentage of the lowest non-fail band. A single-band scale has no fail
// band and the threshold collapses to zero.
func PassThreshold(bands []models.GradeBand) float64 {
	if len(bands) < 2 {
		return 0
	}
	return bands[1].MinPercentage
}

// ResolvePolicy returns the tenant's promotion policy, falling back to the
// service-level defaults when none is stored. A zero threshold means
// "derive from the grade scale".
func (s *GradeScaleService) ResolvePolicy(ctx context.Context, tenantID string) (*models.PromotionPolicy, error) {
	policy, err := s.scales.FindPromotionPolicy(ctx, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			mode := models.PromotionPolicyMode(s.defaults.DefaultMode)
			if mode == "" {
				mode = models.PromotionPolicyOverall
			}
			return &models.PromotionPolicy{TenantID: tenantID, Mode: mode, Threshold: s.defaults.DefaultThreshold}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load promotion policy")
	}
	return policy, nil
}

// UpsertPolicy stores the tenant's promotion rule.
func (s *GradeScaleService) UpsertPolicy(ctx context.Context, tenantID string, req UpsertPromotionPolicyRequest) (*models.PromotionPolicy, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid promotion policy payload")
	}
	policy := &models.PromotionPolicy{
		TenantID:          tenantID,
		Mode:              req.Mode,
		Threshold:         req.Threshold,
		MaxFailedSubjects: req.MaxFailedSubjects,
	}
	if err := s.scales.UpsertPromotionPolicy(ctx, policy); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store promotion policy")
	}
	return policy, nil
}
