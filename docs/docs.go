// Package docs registers the OpenAPI document served under /swagger when
// the daemon is built with -tags=swagger. Regenerate with `swag init -g cmd/shufflerd/docs.go`.
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
        "/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["pipeline"],
                "summary": "Pipeline status",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}}
            }
        },
        "/params": {
            "get": {
                "produces": ["application/json"],
                "tags": ["params"],
                "summary": "Generation parameters",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Params"}}}
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["params"],
                "summary": "Update generation parameters",
                "parameters": [{"description": "parameter changes", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.ParamsUpdate"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Params"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/prompts": {
            "get": {
                "produces": ["application/json"],
                "tags": ["params"],
                "summary": "Prompt bank",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.PromptsResponse"}}}
            }
        },
        "/prompt/{index}": {
            "post": {
                "produces": ["application/json"],
                "tags": ["params"],
                "summary": "Select a prompt from the bank",
                "parameters": [{"type": "integer", "description": "prompt index", "name": "index", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Params"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/frame.png": {
            "get": {
                "produces": ["image/png"],
                "tags": ["pipeline"],
                "summary": "Current composited frame",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/events": {
            "get": {
                "produces": ["application/x-ndjson"],
                "tags": ["pipeline"],
                "summary": "Pipeline event stream",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Event"}}}
            }
        }
    },
    "definitions": {
        "types.Params": {
            "type": "object",
            "properties": {
                "prompt": {"type": "string", "example": "Surrealistic painting by J. C. Leyendecker"},
                "strength": {"type": "number", "example": 0.5},
                "step_count": {"type": "integer", "example": 7},
                "guidance": {"type": "number", "example": 1.25},
                "seed": {"type": "integer", "example": 1}
            }
        },
        "types.ParamsUpdate": {
            "type": "object",
            "properties": {
                "prompt": {"type": "string", "example": "vincent van gogh"},
                "strength": {"type": "number", "example": 0.7},
                "step_count": {"type": "integer", "example": 5},
                "guidance": {"type": "number", "example": 6}
            }
        },
        "types.PromptsResponse": {
            "type": "object",
            "properties": {
                "prompts": {"type": "array", "items": {"type": "string"}},
                "current": {"type": "string"}
            }
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "invalid JSON body"},
                "code": {"type": "integer", "example": 400}
            }
        },
        "types.Event": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "rotate"},
                "cycle": {"type": "integer", "example": 42},
                "fields": {"type": "object", "additionalProperties": true},
                "time_ms": {"type": "integer", "example": 1700000000000}
            }
        },
        "types.BufferCensus": {
            "type": "object",
            "properties": {
                "free": {"type": "integer"},
                "stock": {"type": "integer"},
                "slots": {"type": "integer"},
                "inflight": {"type": "integer"},
                "refilling": {"type": "integer"},
                "total": {"type": "integer"}
            }
        },
        "types.GenerationStats": {
            "type": "object",
            "properties": {
                "started": {"type": "integer"},
                "completed": {"type": "integer"},
                "failed": {"type": "integer"},
                "cancelled": {"type": "integer"},
                "inflight": {"type": "boolean"}
            }
        },
        "types.StatusResponse": {
            "type": "object",
            "properties": {
                "state": {"type": "string", "example": "running"},
                "last_error": {"type": "string"},
                "cycles": {"type": "integer"},
                "rotations": {"type": "integer"},
                "refills": {"type": "integer"},
                "integrated": {"type": "integer"},
                "generation": {"$ref": "#/definitions/types.GenerationStats"},
                "buffers": {"$ref": "#/definitions/types.BufferCensus"},
                "flip_progress": {"type": "number"},
                "reveal_progress": {"type": "number"},
                "reveal_visible": {"type": "boolean"},
                "flip_interval_sec": {"type": "number"},
                "reveal_interval_sec": {"type": "number"},
                "insertion_count": {"type": "integer"},
                "admission": {"type": "string"},
                "params": {"$ref": "#/definitions/types.Params"},
                "uptime_seconds": {"type": "integer"},
                "server_time_unix": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "shufflerd API",
	Description:      "Control and observe the frame shuffling pipeline.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
