package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Peach Brawl Dashboard",
        "description": "Course assignments and schedule dashboard kept in sync with the calendar API",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Dashboard", "description": "Page shell and display regions"},
        {"name": "Sync", "description": "Fetch and render cycles"},
        {"name": "Calendar", "description": "Weekly view of upcoming assignments"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "description": "Ready once the first sync cycle has finished",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "First cycle still running"}
                }
            }
        },
        "/fragments/{region}": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Current HTML of a display region",
                "produces": ["text/html"],
                "parameters": [
                    {"name": "region", "in": "path", "required": true, "type": "string", "enum": ["assignments", "schedule"]}
                ],
                "responses": {
                    "200": {"description": "Fragment markup"},
                    "404": {"description": "Unknown region", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/sync/status": {
            "get": {
                "tags": ["Sync"],
                "summary": "Latest sync cycle",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SyncStatusEnvelope"}}
                }
            }
        },
        "/api/v1/sync/refresh": {
            "post": {
                "tags": ["Sync"],
                "summary": "Schedule an extra sync cycle",
                "produces": ["application/json"],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Sync queue not running", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/calendar": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Assignments grouped into Monday-based weeks",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "No successful sync yet", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/calendar/export": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Download the weekly calendar",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "required": true, "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download"},
                    "400": {"description": "Invalid format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "No successful sync yet", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
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
        },
        "SyncStatus": {
            "type": "object",
            "properties": {
                "cycle_id": {"type": "string"},
                "ok": {"type": "boolean"},
                "error_code": {"type": "string"},
                "error": {"type": "string"},
                "started_at": {"type": "string", "format": "date-time"},
                "finished_at": {"type": "string", "format": "date-time"},
                "last_success_at": {"type": "string", "format": "date-time"},
                "assignments_count": {"type": "integer"},
                "schedule_count": {"type": "integer"},
                "endpoint": {"type": "string"},
                "interval": {"type": "string"},
                "pending_cycles": {"type": "integer"}
            }
        },
        "SyncStatusEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/SyncStatus"},
                "error": {"$ref": "#/definitions/APIError"}
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
