package models

import "time"

// PromotionMode distinguishes manual roster promotion from exam-driven runs.
type PromotionMode string

const (
	PromotionModeManual PromotionMode = "MANUAL"
	PromotionModeAuto   PromotionMode = "AUTO"
)

// PromotionOutcome is the per-student decision of a promotion run.
type PromotionOutcome string

const (
	PromotionOutcomePromoted PromotionOutcome = "PROMOTED"
	PromotionOutcomeRetained PromotionOutcome = "RETAINED"
)

// PromotionPolicyMode selects the automatic pass/fail rule for a tenant.
type PromotionPolicyMode string

const (
	// PromotionPolicyOverall promotes when the overall percentage meets the threshold.
	PromotionPolicyOverall PromotionPolicyMode = "OVERALL"
	// PromotionPolicyPerSubject retains when more subjects than allowed fall
	// below the pass threshold.
	PromotionPolicyPerSubject PromotionPolicyMode = "PER_SUBJECT"
)

// PromotionPolicy is the tenant's promotion configuration. Threshold zero
// means "derive from the grade scale": the minimum percentage of the lowest
// non-fail band.
type PromotionPolicy struct {
	TenantID          string              `db:"tenant_id" json:"tenant_id"`
	Mode              PromotionPolicyMode `db:"mode" json:"mode"`
	Threshold         float64             `db:"threshold" json:"threshold"`
	MaxFailedSubjects int                 `db:"max_failed_subjects" json:"max_failed_subjects"`
	UpdatedAt         time.Time           `db:"updated_at" json:"updated_at"`
}

// PromotionRun records one execution of the promotion engine.
type PromotionRun struct {
	ID          string        `db:"id" json:"id"`
	TenantID    string        `db:"tenant_id" json:"tenant_id"`
	Mode        PromotionMode `db:"mode" json:"mode"`
	ExamID      *string       `db:"exam_id" json:"exam_id,omitempty"`
	FromClassID *string       `db:"from_class_id" json:"from_class_id,omitempty"`
	ToClassID   string        `db:"to_class_id" json:"to_class_id"`
	ToSection   string        `db:"to_section" json:"to_section"`
	ExecutedBy  string        `db:"executed_by" json:"executed_by"`
	ExecutedAt  time.Time     `db:"executed_at" json:"executed_at"`
}

// PromotionDecision is one student's outcome within a run.
type PromotionDecision struct {
	ID          string           `db:"id" json:"id"`
	TenantID    string           `db:"tenant_id" json:"tenant_id"`
	RunID       string           `db:"run_id" json:"run_id"`
	StudentID   string           `db:"student_id" json:"student_id"`
	FromClassID string           `db:"from_class_id" json:"from_class_id"`
	ToClassID   string           `db:"to_class_id" json:"to_class_id"`
	ToSection   string           `db:"to_section" json:"to_section"`
	Outcome     PromotionOutcome `db:"outcome" json:"outcome"`
	Reason      string           `db:"reason" json:"reason"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
}

// PromotionFailure reports a student the run could not decide on.
type PromotionFailure struct {
	StudentID string `json:"student_id"`
	Reason    string `json:"reason"`
}

// PromotionRunResult is the aggregate outcome returned to the caller.
type PromotionRunResult struct {
	RunID         string              `json:"run_id"`
	PromotedCount int                 `json:"promoted_count"`
	RetainedCount int                 `json:"retained_count"`
	Failures      []PromotionFailure  `json:"failures,omitempty"`
	Decisions     []PromotionDecision `json:"decisions"`
}
