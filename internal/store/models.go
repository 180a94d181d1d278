// internal/store/models.go
package store

import (
	"time"

	"github.com/google/uuid"
)

// Scan lifecycle states.
const (
	ScanStatusPending   = "pending"
	ScanStatusRunning   = "running"
	ScanStatusCompleted = "completed"
	ScanStatusFailed    = "failed"
)

// Company is one scanned company.
type Company struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Domain      string    `db:"domain" json:"domain"`
	Description string    `db:"description" json:"description"`
	Location    string    `db:"location" json:"location"`
	IndustryID  string    `db:"industry_id" json:"industry_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Scan is one visibility scan run for a company. Result payloads are
// stored as JSONB blobs; the Go-side shapes live in internal/models.
type Scan struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	CompanyID       uuid.UUID  `db:"company_id" json:"company_id"`
	Status          string     `db:"status" json:"status"`
	QueryVersion    string     `db:"query_version" json:"query_version"`
	OverallScore    *float64   `db:"overall_score" json:"overall_score"`
	PlatformScores  []byte     `db:"platform_scores" json:"-"`
	Analysis        []byte     `db:"analysis" json:"-"`
	QueryResults    []byte     `db:"query_results" json:"-"`
	Recommendations []byte     `db:"recommendations" json:"-"`
	ReportHTML      string     `db:"report_html" json:"-"`
	TotalCost       float64    `db:"total_cost" json:"total_cost"`
	ErrorMessage    string     `db:"error_message" json:"error_message"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	StartedAt       *time.Time `db:"started_at" json:"started_at"`
	CompletedAt     *time.Time `db:"completed_at" json:"completed_at"`
}
