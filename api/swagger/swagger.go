package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Attendance Sync API",
        "description": "Classroom attendance backend with offline sync for mobile clients",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Health", "description": "Liveness and readiness probes"},
        {"name": "Authentication", "description": "Account bootstrap from a verified ID token"},
        {"name": "Profile", "description": "Registration number and department"},
        {"name": "Courses", "description": "Lecturer course management"},
        {"name": "Sessions", "description": "Attendance sessions and exports"},
        {"name": "Student", "description": "Student enrollments and sessions"},
        {"name": "Sync", "description": "Offline operation replay"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Liveness",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "tags": ["Health"],
                "summary": "Readiness",
                "responses": {
                    "200": {"description": "All dependencies reachable"},
                    "503": {"description": "A dependency is unavailable"}
                }
            }
        },
        "/auth/bootstrap": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Bootstrap account",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/BootstrapRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/profile/complete": {
            "post": {
                "tags": ["Profile"],
                "summary": "Complete profile",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CompleteProfileRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Registration number taken", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/profile/info": {
            "get": {
                "tags": ["Profile"],
                "summary": "Profile with role record",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/profile/update": {
            "patch": {
                "tags": ["Profile"],
                "summary": "Update profile",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateProfileRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/courses/create": {
            "post": {
                "tags": ["Courses"],
                "summary": "Create course",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not a lecturer", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Course code taken", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/my-courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "Courses taught by the caller",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/courses/{id}": {
            "patch": {
                "tags": ["Courses"],
                "summary": "Update course",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not the owner", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Courses"],
                "summary": "Delete course",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/courses/{id}/sessions": {
            "get": {
                "tags": ["Courses"],
                "summary": "Sessions of a course",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/courses/{id}/students": {
            "get": {
                "tags": ["Courses"],
                "summary": "Students enrolled in a course",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/sessions/create": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Start session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSessionRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/sessions/{id}/attendance": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Attendance of a session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/sessions/{id}/attendance/export": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Export session attendance",
                "produces": ["text/csv", "application/pdf"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {"200": {"description": "File attachment"}}
            }
        },
        "/student/my-courses": {
            "get": {
                "tags": ["Student"],
                "summary": "My enrollments",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/student/my-sessions": {
            "get": {
                "tags": ["Student"],
                "summary": "Sessions of my courses",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/student/enroll": {
            "post": {
                "tags": ["Student"],
                "summary": "Enroll by course code",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already enrolled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sync/push": {
            "post": {
                "tags": ["Sync"],
                "summary": "Push offline operations",
                "description": "Results are wrapped in the standard envelope: the body is {\"data\": {\"results\": [...], \"cursor\": null}}, not a bare {results, cursor} object. Clients read data.results in input order.",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SyncPushRequest"}}
                ],
                "responses": {"200": {"description": "Per operation results", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/sync/pull": {
            "get": {
                "tags": ["Sync"],
                "summary": "Pull server changes",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "cursor", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "BootstrapRequest": {
            "type": "object",
            "properties": {
                "role": {"type": "string", "enum": ["student", "lecturer"]}
            }
        },
        "CompleteProfileRequest": {
            "type": "object",
            "properties": {
                "external_id": {"type": "string"},
                "department": {"type": "string"},
                "name": {"type": "string"}
            },
            "required": ["external_id", "department"]
        },
        "UpdateProfileRequest": {
            "type": "object",
            "properties": {
                "external_id": {"type": "string"},
                "department": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "CourseRequest": {
            "type": "object",
            "properties": {
                "course_code": {"type": "string"},
                "course_name": {"type": "string"},
                "description": {"type": "string"}
            },
            "required": ["course_code", "course_name"]
        },
        "CreateSessionRequest": {
            "type": "object",
            "properties": {
                "course_id": {"type": "integer"}
            },
            "required": ["course_id"]
        },
        "EnrollRequest": {
            "type": "object",
            "properties": {
                "course_code": {"type": "string"}
            },
            "required": ["course_code"]
        },
        "SyncOperation": {
            "type": "object",
            "properties": {
                "op_id": {"type": "string"},
                "entity": {"type": "string"},
                "op": {"type": "string"},
                "entity_id": {"type": "string"},
                "payload": {"type": "object"},
                "client_ts": {"type": "string"}
            },
            "required": ["op_id", "entity", "op"]
        },
        "SyncPushRequest": {
            "type": "object",
            "properties": {
                "ops": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/SyncOperation"}
                }
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
