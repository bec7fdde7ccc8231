// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/main.go -o internal/docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/auth/sign-up": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register operator",
                "parameters": [
                    {"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.authCredentials"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "integer"}}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/auth/sign-in": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Issue operator token",
                "parameters": [
                    {"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.authCredentials"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/station/status": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Latest snapshot, runtime config, persisted state, notifications and upload targets",
                "produces": ["application/json"],
                "tags": ["station"],
                "summary": "Get station status",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/station/targets": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["station"],
                "summary": "Get upload targets",
                "responses": {
                    "200": {"description": "targets, consecutive_failures", "schema": {"type": "object"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/station/directive": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Queues a control directive; it is applied at the start of the next engine tick",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["station"],
                "summary": "Submit directive",
                "parameters": [
                    {"description": "Directive payload", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.DirectiveRequest"}}
                ],
                "responses": {
                    "202": {"description": "status, directive", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/logs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Events oldest first. 'from'/'to' accept RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD' (UTC); a date-only 'to' covers the whole day. 'target' matches upload failures of one collector.",
                "produces": ["application/json"],
                "tags": ["logs"],
                "summary": "List station events",
                "parameters": [
                    {"type": "string", "example": "2025-08-01", "description": "Start of range", "name": "from", "in": "query"},
                    {"type": "string", "example": "2025-08-31", "description": "End of range", "name": "to", "in": "query"},
                    {"enum": ["STARTUP", "DIRECTIVE", "UPLOAD_FAILED", "REBOOT_REQUESTED", "STATE_WRITE_FAILED", "SHUTDOWN"], "type": "string", "description": "Event type", "name": "type", "in": "query"},
                    {"enum": ["primary", "secondary"], "type": "string", "description": "Upload target", "name": "target", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.logsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/ws": {
            "get": {
                "description": "Upgrades to a WebSocket, sends the current status, then pushes {\"type\":\"status\",\"data\":...} each time the engine publishes. view=snapshot sends {\"type\":\"snapshot\",\"data\":<weather snapshot>} instead.",
                "tags": ["station"],
                "summary": "Stream station status",
                "parameters": [
                    {"enum": ["status", "snapshot"], "type": "string", "description": "Payload", "name": "view", "in": "query"}
                ],
                "responses": {}
            }
        }
    },
    "definitions": {
        "handlers.logsResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "by_type": {"type": "object", "additionalProperties": {"type": "integer"}},
                "events": {"type": "array", "items": {"type": "object"}}
            }
        },
        "handlers.authCredentials": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {
                "password": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "handlers.DirectiveRequest": {
            "type": "object",
            "properties": {
                "PiShutdown": {"description": "true requests a host shutdown; other values are rejected", "type": "boolean"},
                "PiReboot": {"description": "true requests a host reboot; other values are rejected", "type": "boolean"},
                "WeatherPiOff": {"description": "true stops the agent; other values are rejected", "type": "boolean"},
                "DisplayDim": {"description": "\"Yes\" dims the display", "type": "string", "example": "Yes"},
                "DisplayOn": {"description": "\"Yes\" turns the display on", "type": "string", "example": "Yes"},
                "ColdFrame": {"description": "\"On\" enables the secondary zone", "type": "string", "example": "On"},
                "PiServerUploadInterval": {"description": "Primary upload interval in minutes; 0 disables", "type": "integer", "example": 2},
                "WUServerUploadInterval": {"description": "Secondary upload interval in minutes; below 15 disables", "type": "integer", "example": 15}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Weather Station API",
	Description:      "Local operator API of the weather station agent.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
