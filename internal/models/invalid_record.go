package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ValidationErrorList stores structured findings as JSONB.
type ValidationErrorList []ValidationError

// Value marshals the list for persistence.
func (l ValidationErrorList) Value() (driver.Value, error) {
	if l == nil {
		l = ValidationErrorList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshal validation errors: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the list.
func (l *ValidationErrorList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for ValidationErrorList", value)
	}
	if len(data) == 0 {
		*l = nil
		return nil
	}
	if err := json.Unmarshal(data, l); err != nil {
		return fmt.Errorf("unmarshal validation errors: %w", err)
	}
	return nil
}

// Metadata holds free-form context persisted as JSONB.
type Metadata map[string]string

// Value marshals metadata for persistence.
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		m = Metadata{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into metadata.
func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for Metadata", value)
	}
	if len(data) == 0 {
		*m = nil
		return nil
	}
	if err := json.Unmarshal(data, m); err != nil {
		return fmt.Errorf("unmarshal metadata: %w", err)
	}
	return nil
}

// InvalidRecordLog is an immutable ledger entry for one rejected write
// attempt. RecordData carries the verbatim attempted payload for forensic
// replay; entries are never mutated after creation.
type InvalidRecordLog struct {
	ID               string              `db:"id" json:"id"`
	RecordType       RecordKind          `db:"record_type" json:"record_type"`
	RecordData       json.RawMessage     `db:"record_data" json:"record_data"`
	ValidationErrors ValidationErrorList `db:"validation_errors" json:"validation_errors"`
	RejectionReason  string              `db:"rejection_reason" json:"rejection_reason"`
	UserID           string              `db:"user_id" json:"user_id"`
	UserEmail        string              `db:"user_email" json:"user_email"`
	EntityID         string              `db:"entity_id" json:"entity_id"`
	AttemptedAt      time.Time           `db:"attempted_at" json:"attempted_at"`
	Metadata         Metadata            `db:"metadata" json:"metadata,omitempty"`
}

// InvalidRecordFilter scopes ledger queries.
type InvalidRecordFilter struct {
	RecordType RecordKind
	EntityID   string
	UserID     string
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
}

// FieldErrorCount aggregates rejections per offending field.
type FieldErrorCount struct {
	Field      string  `db:"field" json:"field"`
	Count      int     `db:"count" json:"count"`
	Percentage float64 `json:"percentage"`
}

// InvalidRecordSummary aggregates the rejection ledger.
type InvalidRecordSummary struct {
	TotalInvalidRecords int                `json:"total_invalid_records"`
	ByType              map[RecordKind]int `json:"by_type"`
	MostCommonErrors    []FieldErrorCount  `json:"most_common_errors"`
	GeneratedAt         time.Time          `json:"generated_at"`
}
