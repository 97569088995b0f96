package models

// RecordKind tags the candidate record families handled by the validation guard.
type RecordKind string

const (
	RecordKindGrade      RecordKind = "grade"
	RecordKindAttendance RecordKind = "attendance"
	RecordKindReport     RecordKind = "report"
)

// Valid returns true when the kind is a supported value.
func (k RecordKind) Valid() bool {
	switch k {
	case RecordKindGrade, RecordKindAttendance, RecordKindReport:
		return true
	default:
		return false
	}
}

// Label returns a human-readable name used in rejection reasons.
func (k RecordKind) Label() string {
	switch k {
	case RecordKindGrade:
		return "Grade"
	case RecordKindAttendance:
		return "Attendance"
	case RecordKindReport:
		return "Report"
	default:
		return string(k)
	}
}

// GradeLetter enumerates accepted letter grades.
var DefaultGradeLetters = []string{"A", "B", "C", "D", "F", "INC"}

// GradeRecord is a candidate grade write submitted for validation.
type GradeRecord struct {
	StudentID   string   `json:"student_id"`
	ExamID      string   `json:"exam_id"`
	ClassID     string   `json:"class_id"`
	Score       *float64 `json:"score,omitempty"`
	GradeLetter string   `json:"grade_letter,omitempty"`
	RecordedBy  string   `json:"recorded_by"`
}

// AttendanceRecordStatus represents the attendance status vocabulary.
type AttendanceRecordStatus string

const (
	AttendancePresent AttendanceRecordStatus = "present"
	AttendanceAbsent  AttendanceRecordStatus = "absent"
	AttendanceLate    AttendanceRecordStatus = "late"
	AttendanceExcused AttendanceRecordStatus = "excused"
	AttendanceOnLeave AttendanceRecordStatus = "on-leave"
)

// Valid returns true when the status is a supported value.
func (s AttendanceRecordStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused, AttendanceOnLeave:
		return true
	default:
		return false
	}
}

// AttendanceRecord is a candidate attendance write submitted for validation.
type AttendanceRecord struct {
	StudentID  string                 `json:"student_id"`
	ClassID    string                 `json:"class_id"`
	Date       string                 `json:"date"`
	Status     AttendanceRecordStatus `json:"status"`
	RecordedBy string                 `json:"recorded_by"`
}

// ReportType enumerates the report categories accepted by the guard.
type ReportType string

const (
	ReportTypeGradeSummary      ReportType = "grade_summary"
	ReportTypeAttendanceSummary ReportType = "attendance_summary"
	ReportTypeClassPerformance  ReportType = "class_performance"
	ReportTypeStudentProgress   ReportType = "student_progress"
)

// Valid returns true when the report type is a supported value.
func (t ReportType) Valid() bool {
	switch t {
	case ReportTypeGradeSummary, ReportTypeAttendanceSummary, ReportTypeClassPerformance, ReportTypeStudentProgress:
		return true
	default:
		return false
	}
}

// ReportRecord is a candidate report definition submitted for validation.
type ReportRecord struct {
	ReportType     ReportType `json:"report_type"`
	EntityID       string     `json:"entity_id,omitempty"`
	DateRangeStart string     `json:"date_range_start,omitempty"`
	DateRangeEnd   string     `json:"date_range_end,omitempty"`
	GeneratedBy    string     `json:"generated_by"`
}
