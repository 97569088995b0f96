package models

import "time"

// ValidationStatus is the lifecycle state of a student record. Records are
// created unvalidated, may move to pending during review, and become official
// once promoted. Reset always returns to unvalidated, never to pending.
type ValidationStatus string

const (
	StatusUnvalidated ValidationStatus = "unvalidated"
	StatusPending     ValidationStatus = "pending"
	StatusOfficial    ValidationStatus = "official"
)

// Valid returns true when the status is a supported value.
func (s ValidationStatus) Valid() bool {
	switch s {
	case StatusUnvalidated, StatusPending, StatusOfficial:
		return true
	default:
		return false
	}
}

// StudentRecord is a student master row subject to the validation lifecycle.
type StudentRecord struct {
	ID               string           `db:"id" json:"id"`
	StudentID        string           `db:"student_id" json:"student_id"`
	FirstName        string           `db:"first_name" json:"first_name"`
	LastName         string           `db:"last_name" json:"last_name"`
	Year             string           `db:"year" json:"year"`
	Section          string           `db:"section" json:"section"`
	Email            *string          `db:"email" json:"email,omitempty"`
	ValidationStatus ValidationStatus `db:"validation_status" json:"validation_status"`
	ValidationDate   *time.Time       `db:"validation_date" json:"validation_date,omitempty"`
	ValidatedBy      *string          `db:"validated_by" json:"validated_by,omitempty"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
}

// StudentRecordFilter scopes student record listings.
type StudentRecordFilter struct {
	Status    ValidationStatus
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// ValidationStatistics counts records per status bucket. Computed by
// re-querying each bucket rather than from a cached counter.
type ValidationStatistics struct {
	Official    int `json:"official"`
	Unvalidated int `json:"unvalidated"`
	Pending     int `json:"pending"`
	Total       int `json:"total"`
}

// BulkOfficialResult summarises a sequential bulk promotion. Failed carries
// the student IDs that could not be promoted, in input order.
type BulkOfficialResult struct {
	Success int      `json:"success"`
	Failed  []string `json:"failed"`
	Total   int      `json:"total"`
}
