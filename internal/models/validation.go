package models

// Severity ranks a validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationError describes a single field-level finding.
type ValidationError struct {
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// ValidationResult is the verdict for one candidate record.
// BlockedFromSave is true iff at least one error-severity finding exists.
type ValidationResult struct {
	IsValid         bool              `json:"is_valid"`
	Errors          []ValidationError `json:"errors"`
	Warnings        []ValidationError `json:"warnings"`
	BlockedFromSave bool              `json:"blocked_from_save"`
}

// AddError appends an error-severity finding and flips the verdict.
func (r *ValidationResult) AddError(field, message string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message, Severity: SeverityError})
	r.IsValid = false
	r.BlockedFromSave = true
}

// AddWarning appends a warning-severity finding without affecting the verdict.
func (r *ValidationResult) AddWarning(field, message string) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Message: message, Severity: SeverityWarning})
}

// NewValidationResult returns a passing result ready for findings.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{IsValid: true}
}

// ValidationSummary condenses a result for display.
type ValidationSummary struct {
	ErrorCount    int    `json:"error_count"`
	WarningCount  int    `json:"warning_count"`
	BlockedStatus string `json:"blocked_status"`
}

// StudentRecordInput is an imported student row awaiting field validation.
type StudentRecordInput struct {
	StudentID string `json:"student_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Year      string `json:"year"`
	Section   string `json:"section"`
	Email     string `json:"email,omitempty"`
}

// StudentFieldValidationResult reports one row's field findings. Missing and
// invalid fields are tracked separately so callers can distinguish "not
// filled in" from "malformed".
type StudentFieldValidationResult struct {
	RowIndex      int               `json:"row_index"`
	IsValid       bool              `json:"is_valid"`
	MissingFields []string          `json:"missing_fields"`
	InvalidFields []string          `json:"invalid_fields"`
	Errors        []ValidationError `json:"errors"`
}

// BatchFieldValidationResult aggregates a batch of student rows.
type BatchFieldValidationResult struct {
	Processed     int                            `json:"processed"`
	Valid         []StudentRecordInput           `json:"valid"`
	Invalid       []StudentFieldValidationResult `json:"invalid"`
	MissingCounts map[string]int                 `json:"missing_counts"`
}

// RequiredField pairs a payload field name with its display name.
type RequiredField struct {
	Name        string
	DisplayName string
}

// DefaultRequiredStudentFields is the baseline required-field table; override
// via configuration per deployment.
var DefaultRequiredStudentFields = []RequiredField{
	{Name: "student_id", DisplayName: "Student ID"},
	{Name: "first_name", DisplayName: "First Name"},
	{Name: "last_name", DisplayName: "Last Name"},
	{Name: "year", DisplayName: "Year Level"},
	{Name: "section", DisplayName: "Section"},
}
