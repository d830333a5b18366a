package models

// SubjectScore is the per-subject slice of an aggregated result.
type SubjectScore struct {
	Obtained float64 `json:"obtained"`
	Max      float64 `json:"max"`
}

// AggregatedResult is the derived per-student summary for one exam/class run.
// It is recomputed whenever the underlying mark set changes and cached per
// (tenant, exam, class); it is never the source of truth.
type AggregatedResult struct {
	StudentID     string                  `json:"student_id"`
	StudentName   string                  `json:"student_name"`
	ExamID        string                  `json:"exam_id"`
	Subjects      map[string]SubjectScore `json:"subjects"`
	SubjectCount  int                     `json:"subject_count"`
	TotalObtained float64                 `json:"total_obtained"`
	TotalMax      float64                 `json:"total_max"`
	Percentage    float64                 `json:"percentage"`
	Rank          int                     `json:"rank,omitempty"`
	Grade         string                  `json:"grade,omitempty"`
	GPA           float64                 `json:"gpa,omitempty"`
}

// SubjectMatrix is the list/matrix view of a class result set: a fixed
// subject ordering plus one row of per-subject scores per student.
type SubjectMatrix struct {
	ExamID   string             `json:"exam_id"`
	ClassID  string             `json:"class_id"`
	Subjects []string           `json:"subjects"`
	Results  []AggregatedResult `json:"results"`
}
