// Package docs registers the OpenAPI document served by gin-swagger
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "email": "support@skillmart.local"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {"tags": ["health"], "summary": "Health check", "produces": ["application/json"], "responses": {"200": {"description": "Service is up"}, "503": {"description": "A required dependency is down"}}}
        },
        "/courses": {
            "get": {
                "tags": ["courses"],
                "summary": "List courses",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "keyword", "in": "query"},
                    {"type": "integer", "name": "categoryId", "in": "query", "minimum": 1},
                    {"type": "string", "enum": ["BEGINNER", "INTERMEDIATE", "ADVANCED", "ALL_LEVELS"], "name": "level", "in": "query"},
                    {"type": "number", "name": "minPrice", "in": "query", "minimum": 0},
                    {"type": "number", "name": "maxPrice", "in": "query", "minimum": 0},
                    {"type": "number", "name": "minRating", "in": "query", "minimum": 0, "maximum": 5},
                    {"type": "string", "name": "language", "in": "query"},
                    {"type": "integer", "name": "pageNumber", "in": "query", "minimum": 1},
                    {"type": "integer", "name": "pageSize", "in": "query", "minimum": 1, "maximum": 100}
                ],
                "responses": {"200": {"description": "Courses retrieved", "schema": {"$ref": "#/definitions/dto.APIResponse"}}, "502": {"description": "Backend unavailable", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}}
            }
        },
        "/courses/query": {
            "post": {
                "tags": ["courses"],
                "summary": "Change the course listing query",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.QueryChangeRequest"}}],
                "responses": {"200": {"description": "Query to navigate to", "schema": {"$ref": "#/definitions/dto.APIResponse"}}, "400": {"description": "Invalid request data", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}}
            }
        },
        "/categories": {
            "get": {"tags": ["courses"], "summary": "List course categories", "produces": ["application/json"], "responses": {"200": {"description": "Categories retrieved", "schema": {"$ref": "#/definitions/dto.APIResponse"}}}}
        },
        "/banks": {
            "get": {"tags": ["courses"], "summary": "List payout banks", "produces": ["application/json"], "responses": {"200": {"description": "Banks retrieved", "schema": {"$ref": "#/definitions/dto.APIResponse"}}}}
        },
        "/me/dashboard": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["profile"],
                "summary": "Get my dashboard",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "default": 1, "name": "pageNumber", "in": "query", "minimum": 1},
                    {"type": "integer", "default": 10, "name": "pageSize", "in": "query", "minimum": 1, "maximum": 100}
                ],
                "responses": {"200": {"description": "Dashboard retrieved", "schema": {"$ref": "#/definitions/dto.APIResponse"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}}
            }
        },
        "/admin/registrations": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "List instructor applications",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "enum": ["PENDING", "APPROVED", "REJECTED"], "name": "status", "in": "query"},
                    {"type": "string", "name": "keyword", "in": "query"},
                    {"type": "string", "enum": ["createdAt", "fullName", "status"], "name": "sortBy", "in": "query"},
                    {"type": "integer", "name": "pageNumber", "in": "query", "minimum": 1},
                    {"type": "integer", "name": "pageSize", "in": "query", "minimum": 1, "maximum": 100}
                ],
                "responses": {"200": {"description": "Applications retrieved", "schema": {"$ref": "#/definitions/dto.APIResponse"}}, "403": {"description": "Forbidden - Admins only", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}}
            }
        },
        "/admin/registrations/query": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "Change the application table query",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.QueryChangeRequest"}}],
                "responses": {"200": {"description": "Query to navigate to", "schema": {"$ref": "#/definitions/dto.APIResponse"}}}
            }
        },
        "/wizards/{kind}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["wizards"],
                "summary": "Start a wizard",
                "produces": ["application/json"],
                "parameters": [
                    {"enum": ["registration", "course", "application-review"], "type": "string", "name": "kind", "in": "path", "required": true},
                    {"type": "integer", "name": "registrationId", "in": "query", "minimum": 1}
                ],
                "responses": {"201": {"description": "Wizard session created", "schema": {"$ref": "#/definitions/dto.APIResponse"}}, "403": {"description": "Role cannot start this wizard", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}, "404": {"description": "Unknown wizard or registration", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}}
            }
        },
        "/wizards/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["wizards"],
                "summary": "Get wizard session",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "Wizard session retrieved", "schema": {"$ref": "#/definitions/dto.APIResponse"}}, "404": {"description": "Session not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}}
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["wizards"],
                "summary": "Update wizard form data",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {"200": {"description": "Form data updated", "schema": {"$ref": "#/definitions/dto.APIResponse"}}, "400": {"description": "Invalid form data", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}, "409": {"description": "Session closed or upload in progress", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["wizards"],
                "summary": "Abandon the wizard",
                "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "Session abandoned"}, "409": {"description": "Submission in progress", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}}
            }
        },
        "/wizards/{id}/navigate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["wizards"],
                "summary": "Go to a wizard step",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.NavigateRequest"}}
                ],
                "responses": {"200": {"description": "Navigation decided", "schema": {"$ref": "#/definitions/dto.APIResponse"}}}
            }
        },
        "/wizards/{id}/next": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["wizards"], "summary": "Go to the next wizard step", "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "Navigation decided", "schema": {"$ref": "#/definitions/dto.APIResponse"}}}}
        },
        "/wizards/{id}/back": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["wizards"], "summary": "Go to the previous wizard step", "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "Navigation decided", "schema": {"$ref": "#/definitions/dto.APIResponse"}}}}
        },
        "/wizards/{id}/lists/{list}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["wizards"],
                "summary": "Add a list item",
                "parameters": [
                    {"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "list", "in": "path", "required": true}
                ],
                "responses": {"201": {"description": "Item added", "schema": {"$ref": "#/definitions/dto.APIResponse"}}}
            }
        },
        "/wizards/{id}/lists/{list}/{index}": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["wizards"],
                "summary": "Update a list item field",
                "consumes": ["application/json"],
                "parameters": [
                    {"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "list", "in": "path", "required": true},
                    {"type": "integer", "name": "index", "in": "path", "required": true, "minimum": 0},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateItemRequest"}}
                ],
                "responses": {"200": {"description": "Item updated", "schema": {"$ref": "#/definitions/dto.APIResponse"}}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["wizards"],
                "summary": "Remove a list item",
                "parameters": [
                    {"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "list", "in": "path", "required": true},
                    {"type": "integer", "name": "index", "in": "path", "required": true, "minimum": 0}
                ],
                "responses": {"200": {"description": "Item removed", "schema": {"$ref": "#/definitions/dto.APIResponse"}}, "409": {"description": "Upload in progress", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}}
            }
        },
        "/wizards/{id}/uploads/{slot}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["wizards"],
                "summary": "Upload a wizard file",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true},
                    {"enum": ["avatar", "certificate", "thumbnail", "promoVideo", "lessonVideo"], "type": "string", "name": "slot", "in": "path", "required": true},
                    {"type": "file", "name": "file", "in": "formData", "required": true},
                    {"type": "integer", "name": "index", "in": "formData", "minimum": 0},
                    {"type": "integer", "name": "subIndex", "in": "formData", "minimum": 0}
                ],
                "responses": {"200": {"description": "File uploaded", "schema": {"$ref": "#/definitions/dto.APIResponse"}}, "400": {"description": "File rejected", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}, "409": {"description": "Slot already uploading", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}}
            }
        },
        "/wizards/{id}/ai-review": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["wizards"], "summary": "Run the AI profile review", "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "Review outcome", "schema": {"$ref": "#/definitions/dto.APIResponse"}}}}
        },
        "/wizards/{id}/ai-review/skip": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["wizards"], "summary": "Skip the AI review", "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "Review skipped", "schema": {"$ref": "#/definitions/dto.APIResponse"}}, "409": {"description": "Review cannot be skipped", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}}}
        },
        "/wizards/{id}/ai-review/retry": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["wizards"], "summary": "Retry the AI review", "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "Review outcome", "schema": {"$ref": "#/definitions/dto.APIResponse"}}, "409": {"description": "Review cannot be retried", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}}}
        },
        "/wizards/{id}/submit": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["wizards"], "summary": "Submit the wizard", "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "Wizard submitted", "schema": {"$ref": "#/definitions/dto.APIResponse"}}, "422": {"description": "Wizard incomplete or rejected", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}, "502": {"description": "Backend unavailable", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}}}
        }
    },
    "definitions": {
        "dto.APIResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": true},
                "message": {"type": "string"},
                "data": {},
                "error": {"$ref": "#/definitions/dto.ErrorDetail"},
                "timestamp": {"type": "string", "example": "2025-04-23T12:01:05.123Z"}
            }
        },
        "dto.ErrorDetail": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "VAL_001"},
                "message": {"type": "string", "example": "Validation failed"},
                "field": {"type": "string", "example": "target"},
                "severity": {"type": "string", "example": "ERROR"},
                "details": {}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": false},
                "error": {"$ref": "#/definitions/dto.ErrorDetail"},
                "timestamp": {"type": "string", "example": "2025-04-23T12:01:05.123Z"}
            }
        },
        "dto.NavigateRequest": {
            "type": "object",
            "required": ["target"],
            "properties": {"target": {"type": "integer", "minimum": 1, "example": 3}}
        },
        "dto.UpdateItemRequest": {
            "type": "object",
            "required": ["field", "value"],
            "properties": {"field": {"type": "string", "example": "institution"}, "value": {"type": "object"}}
        },
        "dto.QueryChangeRequest": {
            "type": "object",
            "required": ["changes"],
            "properties": {
                "query": {"type": "string", "example": "categoryId=3&pageNumber=4"},
                "changes": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "JWT token for authorization",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "SkillMart Portal API",
	Description:      "Backend-for-frontend of the SkillMart course marketplace: instructor registration, course authoring and application review wizards, course browsing and the profile dashboard.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
