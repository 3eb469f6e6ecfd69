// Package docs registers the OpenAPI description served on /swagger.
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
        "/login": {
            "get": {
                "description": "Reads the trusted identity header, resolves the user and binds it to the session.",
                "produces": ["text/html"],
                "tags": ["session"],
                "summary": "Log in through the trusted proxy",
                "parameters": [
                    {"type": "string", "description": "Local path to redirect to after login", "name": "next", "in": "query"}
                ],
                "responses": {
                    "302": {"description": "redirect to the post-login URL", "schema": {"type": "string"}},
                    "403": {"description": "insufficient privileges page", "schema": {"type": "string"}},
                    "500": {"description": "proxy misconfiguration diagnostic", "schema": {"type": "string"}}
                }
            }
        },
        "/logout": {
            "get": {
                "tags": ["session"],
                "summary": "Log out",
                "responses": {
                    "302": {"description": "redirect to the post-logout URL or root", "schema": {"type": "string"}}
                }
            }
        },
        "/api/me": {
            "get": {
                "produces": ["application/json"],
                "tags": ["identity"],
                "summary": "Current identity",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Identity"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/token": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["identity"],
                "summary": "Issue identity token",
                "parameters": [
                    {"description": "Optional lifetime", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/handler.tokenRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.tokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/people/{username}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["identity"],
                "summary": "Look up a person",
                "parameters": [
                    {"type": "string", "description": "Username", "name": "username", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Person"}},
                    "403": {"description": "Forbidden", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "domain.Identity": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "username": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "group_ids": {"type": "array", "items": {"type": "string"}},
                "permissions": {"type": "object", "additionalProperties": {"type": "boolean"}},
                "origin": {"type": "string", "enum": ["hardcoded", "persisted"]},
                "fields": {"type": "object", "additionalProperties": true}
            }
        },
        "domain.Person": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "type": {"type": "string"},
                "username": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "group_ids": {"type": "array", "items": {"type": "string"}},
                "permissions": {"type": "object", "additionalProperties": {"type": "boolean"}},
                "login": {"type": "boolean"},
                "fields": {"type": "object", "additionalProperties": true},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "handler.tokenRequest": {
            "type": "object",
            "properties": {
                "ttl_seconds": {"type": "integer", "minimum": 60, "maximum": 86400}
            }
        },
        "handler.tokenResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "token_type": {"type": "string"},
                "expires_at": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Proxy Auth API",
	Description:      "Trusted-header authentication behind a reverse proxy.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
