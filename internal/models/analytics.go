package models

import "time"

// SubjectAnalytics summarises one subject across a class result set.
type SubjectAnalytics struct {
	SubjectID string  `json:"subject_id"`
	Average   float64 `json:"average"`
	Highest   float64 `json:"highest"`
	Lowest    float64 `json:"lowest"`
	PassRate  float64 `json:"pass_rate"`
}

// PerformanceDistribution counts students into exactly one cohort bucket.
// Buckets are half-open on the lower edge: Excellent >= 90, Good [70,90),
// Average [50,70), BelowAverage < 50; the bucket counts always sum to the
// total number of students.
type PerformanceDistribution struct {
	Excellent    int `json:"excellent"`
	Good         int `json:"good"`
	Average      int `json:"average"`
	BelowAverage int `json:"below_average"`
}

// SystemMetrics is a lightweight runtime snapshot for status endpoints.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	AggregationRuns          uint64    `json:"aggregation_runs"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}

// AnalyticsReport is the cohort analytics payload for one exam/class.
type AnalyticsReport struct {
	ExamID                  string                  `json:"exam_id"`
	ClassID                 string                  `json:"class_id"`
	TotalStudents           int                     `json:"total_students"`
	PassThreshold           float64                 `json:"pass_threshold"`
	SubjectAnalytics        []SubjectAnalytics      `json:"subject_analytics"`
	PerformanceDistribution PerformanceDistribution `json:"performance_distribution"`
}
