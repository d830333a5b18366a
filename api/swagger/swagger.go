package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Assessment Engine API",
        "description": "Multi-tenant assessment, ranking and promotion engine",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Results", "description": "Aggregated, ranked result sheets"},
        {"name": "Analytics", "description": "Cohort statistics and distributions"},
        {"name": "GradeScale", "description": "Grade bands and promotion policy"},
        {"name": "Marks", "description": "Raw mark entry"},
        {"name": "Exams", "description": "Exam lookup and approval"},
        {"name": "Promotions", "description": "Manual and automatic promotion runs"},
        {"name": "Complaints", "description": "Grade dispute workflow"}
    ],
    "paths": {
        "/results/{examId}/{classId}": {
            "get": {
                "tags": ["Results"],
                "summary": "Aggregated, ranked results for an exam and class",
                "parameters": [
                    {"name": "examId", "in": "path", "required": true, "type": "string"},
                    {"name": "classId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/results/{examId}/{classId}/matrix": {
            "get": {
                "tags": ["Results"],
                "summary": "Per-subject result matrix",
                "parameters": [
                    {"name": "examId", "in": "path", "required": true, "type": "string"},
                    {"name": "classId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/{examId}/{classId}": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Subject statistics and performance distribution",
                "parameters": [
                    {"name": "examId", "in": "path", "required": true, "type": "string"},
                    {"name": "classId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grade-scale": {
            "get": {
                "tags": ["GradeScale"],
                "summary": "Active grade scale",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["GradeScale"],
                "summary": "Replace the grade scale",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReplaceScaleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Scale has gaps or overlaps"}
                }
            }
        },
        "/grade-scale/classify": {
            "get": {
                "tags": ["GradeScale"],
                "summary": "Classify a percentage",
                "parameters": [
                    {"name": "percentage", "in": "query", "required": true, "type": "number"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/promotion-policy": {
            "get": {
                "tags": ["GradeScale"],
                "summary": "Effective promotion policy",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["GradeScale"],
                "summary": "Store the promotion policy",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertPromotionPolicyRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/marks": {
            "get": {
                "tags": ["Marks"],
                "summary": "List mark entries",
                "parameters": [
                    {"name": "examId", "in": "query", "type": "string"},
                    {"name": "classId", "in": "query", "type": "string"},
                    {"name": "subjectId", "in": "query", "type": "string"},
                    {"name": "studentId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Marks"],
                "summary": "Record or correct a single mark",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertMarkRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Exam already approved"},
                    "422": {"description": "Mark exceeds maximum"}
                }
            }
        },
        "/marks/bulk": {
            "post": {
                "tags": ["Marks"],
                "summary": "Save a batch of marks",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkMarksRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Class locked by another operation"},
                    "422": {"description": "Batch contains out-of-range marks"}
                }
            }
        },
        "/exams/{examId}": {
            "get": {
                "tags": ["Exams"],
                "summary": "Exam detail with class list",
                "parameters": [
                    {"name": "examId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exams/{examId}/approve": {
            "post": {
                "tags": ["Exams"],
                "summary": "Approve an exam, publishing its results",
                "parameters": [
                    {"name": "examId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/promotions/manual": {
            "post": {
                "tags": ["Promotions"],
                "summary": "Promote an explicit list of students",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ManualPromotionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/promotions/auto": {
            "post": {
                "tags": ["Promotions"],
                "summary": "Promote a class from an approved exam's results",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AutoPromotionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Class locked by another operation"},
                    "412": {"description": "Exam not approved"}
                }
            }
        },
        "/promotions/runs/{runId}": {
            "get": {
                "tags": ["Promotions"],
                "summary": "Promotion run with its decision log",
                "parameters": [
                    {"name": "runId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/complaints": {
            "get": {
                "tags": ["Complaints"],
                "summary": "List complaints",
                "parameters": [
                    {"name": "examId", "in": "query", "type": "string"},
                    {"name": "studentId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "offset", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Complaints"],
                "summary": "Open a complaint against a published mark",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateComplaintRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Exam not approved"}
                }
            }
        },
        "/complaints/{complaintId}/resolve": {
            "post": {
                "tags": ["Complaints"],
                "summary": "Resolve a complaint, optionally correcting the mark",
                "parameters": [
                    {"name": "complaintId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ResolveComplaintRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Complaint already resolved"}
                }
            }
        }
    },
    "definitions": {
        "GradeBand": {
            "type": "object",
            "properties": {
                "grade": {"type": "string"},
                "min_percentage": {"type": "number"},
                "max_percentage": {"type": "number"},
                "gpa": {"type": "number"},
                "remarks": {"type": "string"}
            }
        },
        "ReplaceScaleRequest": {
            "type": "object",
            "properties": {
                "bands": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/GradeBand"}
                }
            },
            "required": ["bands"]
        },
        "UpsertPromotionPolicyRequest": {
            "type": "object",
            "properties": {
                "mode": {"type": "string", "enum": ["OVERALL", "PER_SUBJECT"]},
                "threshold": {"type": "number"},
                "max_failed_subjects": {"type": "integer"}
            },
            "required": ["mode"]
        },
        "UpsertMarkRequest": {
            "type": "object",
            "properties": {
                "exam_id": {"type": "string"},
                "class_id": {"type": "string"},
                "subject_id": {"type": "string"},
                "student_id": {"type": "string"},
                "marks_obtained": {"type": "number"},
                "max_marks": {"type": "number"},
                "remarks": {"type": "string"}
            },
            "required": ["exam_id", "class_id", "subject_id", "student_id", "max_marks"]
        },
        "BulkMarksRequest": {
            "type": "object",
            "properties": {
                "exam_id": {"type": "string"},
                "class_id": {"type": "string"},
                "marks": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/UpsertMarkRequest"}
                }
            },
            "required": ["exam_id", "class_id", "marks"]
        },
        "ManualPromotionRequest": {
            "type": "object",
            "properties": {
                "student_ids": {"type": "array", "items": {"type": "string"}},
                "to_class_id": {"type": "string"},
                "to_section": {"type": "string"},
                "reason": {"type": "string"}
            },
            "required": ["student_ids", "to_class_id", "to_section"]
        },
        "AutoPromotionRequest": {
            "type": "object",
            "properties": {
                "exam_id": {"type": "string"},
                "from_class_id": {"type": "string"},
                "to_class_id": {"type": "string"},
                "to_section": {"type": "string"}
            },
            "required": ["exam_id", "from_class_id", "to_class_id", "to_section"]
        },
        "CreateComplaintRequest": {
            "type": "object",
            "properties": {
                "exam_id": {"type": "string"},
                "class_id": {"type": "string"},
                "subject_id": {"type": "string"},
                "student_id": {"type": "string"},
                "reason": {"type": "string"}
            },
            "required": ["exam_id", "class_id", "subject_id", "student_id", "reason"]
        },
        "ResolveComplaintRequest": {
            "type": "object",
            "properties": {
                "corrected_mark": {"type": "number"},
                "note": {"type": "string"}
            },
            "required": ["note"]
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
                "status": {"type": "integer"},
                "retryable": {"type": "boolean"}
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
