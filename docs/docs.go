// Package docs registers the OpenAPI document served at /swagger.
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
        "/decide": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Resolve a remediation action for an environment and event type, clipped to the environment's action scope. Malformed requests yield a noop with a reason.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Decisions"],
                "summary": "Make a decision",
                "parameters": [
                    {
                        "description": "Decision request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.DecisionRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.DecisionResponse"}},
                    "401": {"description": "Missing or invalid token", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "413": {"description": "Body too large", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/scope": {
            "get": {
                "description": "Allowed actions per environment",
                "produces": ["application/json"],
                "tags": ["Decisions"],
                "summary": "Action scope",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}}}
                }
            }
        },
        "/health": {
            "get": {
                "description": "Constant operational status of the frozen decision core",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Decision core health",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.HealthStatus"}}
                }
            }
        },
        "/health/live": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ProbeResponse"}}
                }
            }
        },
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ProbeResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.ProbeResponse"}}
                }
            }
        },
        "/decisions/recent": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Most recent audited decisions, newest first",
                "produces": ["application/json"],
                "tags": ["Audit"],
                "summary": "Recent decisions",
                "parameters": [
                    {"type": "integer", "default": 20, "description": "Maximum records (1-200)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Audit disabled", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/decisions/stats": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Audit"],
                "summary": "Decision statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.DecisionStats"}},
                    "503": {"description": "Audit disabled", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "handlers.DecisionRequest": {
            "type": "object",
            "properties": {
                "environment": {"type": "string", "enum": ["dev", "stage", "prod"], "example": "dev"},
                "event_type": {"type": "string", "example": "high_cpu"},
                "metrics": {"type": "object", "additionalProperties": {"type": "number"}}
            }
        },
        "handlers.ProbeResponse": {
            "type": "object",
            "properties": {
                "checks": {"type": "object", "additionalProperties": {"type": "string"}},
                "status": {"type": "string", "example": "ready"},
                "timestamp": {"type": "string", "example": "2026-10-14T12:00:00Z"}
            }
        },
        "models.DecisionResponse": {
            "type": "object",
            "properties": {
                "action": {"type": "string", "enum": ["noop", "scale_up", "scale_down", "restart"], "example": "scale_up"},
                "reason": {"type": "string"},
                "demo_frozen": {"type": "boolean", "example": true},
                "timestamp": {"type": "number"},
                "environment": {"type": "string", "example": "dev"},
                "safety_filtered": {"type": "boolean"},
                "proposed_action": {"type": "string"}
            }
        },
        "models.HealthStatus": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "healthy"},
                "demo_frozen": {"type": "boolean", "example": true},
                "learning_enabled": {"type": "boolean"},
                "exploration_enabled": {"type": "boolean"},
                "stateless": {"type": "boolean", "example": true}
            }
        },
        "models.DecisionStats": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "filtered": {"type": "integer"},
                "by_action": {"type": "object", "additionalProperties": {"type": "object", "additionalProperties": {"type": "integer"}}}
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
	Title:            "Decision Brain API",
	Description:      "Frozen, deterministic remediation decisions with an environment safety cage.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
