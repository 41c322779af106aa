// Package docs registers the OpenAPI description served at /swagger.
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
        "/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Регистрация пользователя",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.RegisterRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.AuthResponse"}}, "409": {"description": "Conflict"}}
            }
        },
        "/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Вход пользователя",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.LoginRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AuthResponse"}}, "401": {"description": "Unauthorized"}}
            }
        },
        "/tasks": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["tasks"],
                "summary": "Последние задачи пользователя",
                "parameters": [{"type": "integer", "name": "limit", "in": "query"}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/x-www-form-urlencoded", "multipart/form-data"],
                "tags": ["tasks"],
                "summary": "Создание задачи",
                "parameters": [
                    {"type": "string", "name": "title", "in": "formData", "required": true},
                    {"type": "string", "name": "markdown_content", "in": "formData"},
                    {"type": "string", "name": "is_private", "in": "formData"},
                    {"type": "string", "name": "priority", "in": "formData"},
                    {"type": "string", "name": "status", "in": "formData"},
                    {"type": "string", "name": "project_id", "in": "formData"},
                    {"type": "string", "name": "assignee_ids", "in": "formData"},
                    {"type": "string", "name": "due_date", "in": "formData"},
                    {"type": "string", "name": "end_date", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/service.ActionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/service.ActionResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/service.ActionResponse"}}
                }
            }
        },
        "/tasks/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["tasks"], "summary": "Получение задачи", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["tasks"], "summary": "Обновление задачи", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/service.ActionResponse"}}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["tasks"], "summary": "Удаление задачи", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/service.ActionResponse"}}}}
        },
        "/projects": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["projects"], "summary": "Проекты пользователя", "parameters": [{"type": "boolean", "name": "with_members", "in": "query"}], "responses": {"200": {"description": "OK"}}},
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "tags": ["projects"],
                "summary": "Создание проекта",
                "parameters": [
                    {"type": "string", "name": "name", "in": "formData", "required": true},
                    {"type": "string", "name": "description", "in": "formData"},
                    {"type": "string", "name": "cover_url", "in": "formData"},
                    {"type": "file", "name": "cover_file", "in": "formData"}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/service.ActionResponse"}}}
            }
        },
        "/projects/{id}/members": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["members"], "summary": "Участники проекта", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/dashboard/stats": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["dashboard"], "summary": "Статистика для дашборда", "responses": {"200": {"description": "OK"}}}
        },
        "/drafts/task": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["drafts"], "summary": "Черновик формы задачи", "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "handler.RegisterRequest": {
            "type": "object",
            "required": ["email", "password", "username"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}, "username": {"type": "string"}}
        },
        "handler.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "handler.AuthResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "user": {"type": "object", "properties": {"id": {"type": "string"}, "email": {"type": "string"}, "username": {"type": "string"}}}
            }
        },
        "service.ActionResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["idle", "error", "created", "updated", "deleted"]},
                "message": {"type": "string"},
                "errors": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}},
                "data": {"type": "object", "properties": {"projectId": {"type": "string"}, "taskId": {"type": "string"}}},
                "partial": {"type": "boolean"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
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
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Taskboard API",
	Description:      "Projects, tasks and memberships with dashboard read models.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
