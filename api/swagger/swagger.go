package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SIA Validation API",
        "description": "Record validation guard, rejection ledger and official record promotion service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Validation", "description": "Record validation guard"},
        {"name": "InvalidRecords", "description": "Rejection ledger"},
        {"name": "ValidationActions", "description": "Validation action audit trail"},
        {"name": "StudentRecords", "description": "Student record lifecycle"},
        {"name": "Exports", "description": "Asynchronous ledger exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and obtain an access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/change-password": {
            "post": {
                "tags": ["Auth"],
                "summary": "Change the current user's password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangePasswordRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/validations/grade": {
            "post": {
                "tags": ["Validation"],
                "summary": "Validate a candidate grade record",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GradeRecord"}}
                ],
                "responses": {
                    "200": {"description": "Passed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Blocked by validation errors", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/validations/attendance": {
            "post": {
                "tags": ["Validation"],
                "summary": "Validate a candidate attendance record",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AttendanceRecord"}}
                ],
                "responses": {
                    "200": {"description": "Passed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Blocked by validation errors", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/validations/report": {
            "post": {
                "tags": ["Validation"],
                "summary": "Validate a candidate report definition",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReportRecord"}}
                ],
                "responses": {
                    "200": {"description": "Passed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Blocked by validation errors", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/validations/students/bulk": {
            "post": {
                "tags": ["Validation"],
                "summary": "Field-validate a batch of imported student rows",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkStudentValidationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/invalid-records": {
            "get": {
                "tags": ["InvalidRecords"],
                "summary": "List rejection ledger entries",
                "parameters": [
                    {"name": "record_type", "in": "query", "type": "string"},
                    {"name": "entity_id", "in": "query", "type": "string"},
                    {"name": "user_id", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/invalid-records/summary": {
            "get": {
                "tags": ["InvalidRecords"],
                "summary": "Aggregate the rejection ledger",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/invalid-records/export": {
            "get": {
                "tags": ["InvalidRecords"],
                "summary": "Download the rejection ledger as CSV",
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "CSV file"}
                }
            }
        },
        "/validation-actions": {
            "get": {
                "tags": ["ValidationActions"],
                "summary": "List validation action audit entries",
                "parameters": [
                    {"name": "action_type", "in": "query", "type": "string"},
                    {"name": "admin_id", "in": "query", "type": "string"},
                    {"name": "target_id", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/validation-actions/export": {
            "get": {
                "tags": ["ValidationActions"],
                "summary": "Download the action audit trail as CSV",
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "CSV file"}
                }
            }
        },
        "/student-records": {
            "get": {
                "tags": ["StudentRecords"],
                "summary": "List student records",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["StudentRecords"],
                "summary": "Register a student record",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStudentRecordRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Student record already exists"}
                }
            }
        },
        "/student-records/statistics": {
            "get": {
                "tags": ["StudentRecords"],
                "summary": "Count records per validation status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/student-records/{id}": {
            "get": {
                "tags": ["StudentRecords"],
                "summary": "Fetch one student record",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/student-records/{id}/official": {
            "post": {
                "tags": ["StudentRecords"],
                "summary": "Promote one record to official",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/student-records/official": {
            "post": {
                "tags": ["StudentRecords"],
                "summary": "Promote multiple records to official",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkOfficialRequest"}}
                ],
                "responses": {
                    "200": {"description": "All promoted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "207": {"description": "Partial success", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/student-records/{id}/pending": {
            "post": {
                "tags": ["StudentRecords"],
                "summary": "Move one record into pending review",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/student-records/{id}/reset": {
            "post": {
                "tags": ["StudentRecords"],
                "summary": "Reset a record to the unvalidated state (admin only)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ResetValidationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue a ledger export job",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Fetch export job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/download/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export by signed token",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "403": {"description": "Invalid or expired token"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "ChangePasswordRequest": {
            "type": "object",
            "properties": {
                "old_password": {"type": "string"},
                "new_password": {"type": "string"}
            },
            "required": ["old_password", "new_password"]
        },
        "GradeRecord": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "exam_id": {"type": "string"},
                "class_id": {"type": "string"},
                "score": {"type": "number"},
                "grade_letter": {"type": "string"},
                "recorded_by": {"type": "string"}
            }
        },
        "AttendanceRecord": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "class_id": {"type": "string"},
                "date": {"type": "string"},
                "status": {"type": "string", "enum": ["present", "absent", "late", "excused", "on-leave"]},
                "recorded_by": {"type": "string"}
            }
        },
        "ReportRecord": {
            "type": "object",
            "properties": {
                "report_type": {"type": "string", "enum": ["grade_summary", "attendance_summary", "class_performance", "student_progress"]},
                "entity_id": {"type": "string"},
                "date_range_start": {"type": "string"},
                "date_range_end": {"type": "string"},
                "generated_by": {"type": "string"}
            }
        },
        "BulkStudentValidationRequest": {
            "type": "object",
            "properties": {
                "records": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/StudentRecordInput"}
                }
            }
        },
        "StudentRecordInput": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "year": {"type": "string"},
                "section": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "CreateStudentRecordRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "year": {"type": "string"},
                "section": {"type": "string"},
                "email": {"type": "string"}
            },
            "required": ["student_id"]
        },
        "BulkOfficialRequest": {
            "type": "object",
            "properties": {
                "student_ids": {
                    "type": "array",
                    "items": {"type": "string"}
                }
            },
            "required": ["student_ids"]
        },
        "ResetValidationRequest": {
            "type": "object",
            "properties": {
                "reason": {"type": "string"}
            },
            "required": ["reason"]
        },
        "CreateExportRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["invalid_records", "validation_actions"]},
                "params": {"$ref": "#/definitions/ExportJobParams"}
            },
            "required": ["type"]
        },
        "ExportJobParams": {
            "type": "object",
            "properties": {
                "format": {"type": "string", "enum": ["csv", "pdf"]},
                "recordType": {"type": "string"},
                "actionType": {"type": "string"},
                "entityId": {"type": "string"},
                "fromDate": {"type": "string"},
                "toDate": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
