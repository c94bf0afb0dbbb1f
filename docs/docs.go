// Package docs registers the OpenAPI document served at /swagger/index.html.
// Regenerate with `swag init -g cmd/main.go` after changing handler annotations.
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
            "get": {"tags": ["system"], "summary": "Health check", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/message"}}}}
        },
        "/api/auth/register": {
            "post": {"tags": ["auth"], "summary": "Sign up", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/signUpInput"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/error"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/error"}}}}
        },
        "/api/auth/login": {
            "post": {"tags": ["auth"], "summary": "Sign in", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/signInInput"}}],
                "responses": {"200": {"description": "token, user"}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/error"}}}}
        },
        "/api/auth/me": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Current user", "produces": ["application/json"],
                "responses": {"200": {"description": "user", "schema": {"$ref": "#/definitions/models.User"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/error"}}}}
        },
        "/api/stoves": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["stoves"], "summary": "List my stoves", "produces": ["application/json"],
                "responses": {"200": {"description": "stoves"}}}
        },
        "/api/stoves/pair": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["stoves"], "summary": "Pair stove", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/pairStoveInput"}}],
                "responses": {"200": {"description": "message, stove"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/error"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/error"}}}}
        },
        "/api/stoves/data": {
            "post": {"security": [{"ApiKeyAuth": []}], "tags": ["stoves"], "summary": "Submit usage", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/usageInput"}}],
                "responses": {"201": {"description": "message, usage"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/error"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/error"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/error"}}}}
        },
        "/api/stoves/data/open": {
            "post": {"tags": ["stoves"], "summary": "Submit usage without credentials", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/usageInput"}}],
                "responses": {"201": {"description": "message, usage"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/error"}}, "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/error"}}}}
        },
        "/api/usage/summary": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["usage"], "summary": "Usage summary", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}}
        },
        "/api/usage/stats": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["usage"], "summary": "Weekly usage stats", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}}
        },
        "/api/usage/stove/{stoveId}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["usage"], "summary": "Stove usage history", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "stoveId", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/error"}}}}
        },
        "/api/admin/stoves/register": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Register stove", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/registerStoveInput"}}],
                "responses": {"201": {"description": "message, stove"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/error"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/error"}}}}
        },
        "/api/admin/usage": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Usage grouped by owner and stove", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/error"}}}}
        },
        "/api/admin/users": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Users with usage rollups", "produces": ["application/json"],
                "responses": {"200": {"description": "users"}}}
        },
        "/api/admin/users/{userId}/role": {
            "patch": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Change user role", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "userId", "in": "path", "required": true}, {"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/changeRoleInput"}}],
                "responses": {"200": {"description": "message, user"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/error"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/error"}}}}
        },
        "/api/admin/stoves": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Stoves with usage rollups", "produces": ["application/json"],
                "responses": {"200": {"description": "stoves"}}}
        },
        "/api/admin/stats": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Fleet stats for the last 7 days", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}}
        },
        "/api/admin/stats/ws": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Fleet stats stream (websocket)",
                "parameters": [{"type": "string", "name": "interval", "in": "query"}, {"type": "integer", "name": "interval_ms", "in": "query"}],
                "responses": {"101": {"description": "Switching Protocols"}}}
        },
        "/api/admin/events": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "List activity events", "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"},
                    {"enum": ["STOVE_REGISTERED", "STOVE_PAIRED", "USAGE_RECORDED", "ROLE_CHANGED"], "type": "string", "name": "type", "in": "query"},
                    {"type": "string", "name": "stoveId", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "count, events"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/error"}}}}
        }
    },
    "definitions": {
        "error": {"type": "object", "properties": {"error": {"type": "string"}}},
        "message": {"type": "object", "properties": {"status": {"type": "string"}, "message": {"type": "string"}}},
        "signUpInput": {"type": "object", "properties": {"name": {"type": "string"}, "email": {"type": "string"}, "password": {"type": "string"}}},
        "signInInput": {"type": "object", "required": ["email", "password"], "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
        "registerStoveInput": {"type": "object", "properties": {"stoveId": {"type": "string"}, "model": {"type": "string"}, "stoveModel": {"type": "string"}}},
        "pairStoveInput": {"type": "object", "properties": {"stoveId": {"type": "string"}, "pairingCode": {"type": "string"}}},
        "usageInput": {"type": "object", "properties": {
            "stoveId": {"type": "string"}, "date": {"type": "string", "example": "2024-03-07"},
            "cookingEvents": {"type": "integer"}, "totalMinutes": {"type": "integer"}, "fuelUsedKg": {"type": "number"}}},
        "changeRoleInput": {"type": "object", "properties": {"newRole": {"type": "string", "enum": ["user", "admin"]}}},
        "models.User": {"type": "object", "properties": {
            "id": {"type": "integer"}, "name": {"type": "string"}, "email": {"type": "string"},
            "role": {"type": "string"}, "created_at": {"type": "string"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"},
        "ApiKeyAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Cookstove Tracker API",
	Description:      "Stove pairing, telemetry ingestion and usage reporting.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
