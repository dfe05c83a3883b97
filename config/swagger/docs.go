// Package swagger registers the API description served at /swagger.
package swagger

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
        "/ping": {
            "get": {"description": "Returns a basic message", "produces": ["application/json"], "tags": ["test"], "summary": "Endpoint just pings the server", "responses": {"200": {"description": "OK"}}}
        },
        "/login": {
            "post": {"consumes": ["application/x-www-form-urlencoded"], "produces": ["application/json"], "tags": ["user"], "summary": "Logs in with phone and password",
                "parameters": [
                    {"type": "string", "description": "Phone", "name": "phone", "in": "formData", "required": true},
                    {"type": "string", "description": "Password", "name": "password", "in": "formData", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/signup": {
            "post": {"consumes": ["application/x-www-form-urlencoded"], "produces": ["application/json"], "tags": ["user"], "summary": "Signs up a new user",
                "parameters": [
                    {"type": "string", "description": "Display name", "name": "name", "in": "formData", "required": true},
                    {"type": "string", "description": "Phone", "name": "phone", "in": "formData", "required": true},
                    {"type": "string", "description": "Password", "name": "password", "in": "formData", "required": true}
                ],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/games": {
            "get": {"produces": ["application/json"], "tags": ["games"], "summary": "Lists the public games of a viewport",
                "parameters": [
                    {"type": "string", "description": "RFC3339 start time to continue after", "name": "cursor", "in": "query"},
                    {"type": "string", "description": "SPORT, BOARD, CARD or VIDEO", "name": "category", "in": "query"},
                    {"type": "string", "description": "Sport name", "name": "sport", "in": "query"},
                    {"type": "string", "description": "TODAY, TOMORROW, LATER_THIS_WEEK, NEXT_WEEK or LATER", "name": "start_date", "in": "query"},
                    {"type": "string", "description": "north,west,south,east", "name": "bounds", "in": "query"},
                    {"type": "integer", "description": "Minimum open spots", "name": "min_open_spots", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/games/{id}": {
            "get": {"produces": ["application/json"], "tags": ["games"], "summary": "Gets a game with its roster",
                "parameters": [{"type": "integer", "description": "Game id", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/games/{id}/messages": {
            "get": {"produces": ["application/json"], "tags": ["messages"], "summary": "Lists the messages of a game",
                "parameters": [
                    {"type": "integer", "description": "Game id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "RFC3339 updated_at to continue before", "name": "cursor", "in": "query"},
                    {"type": "integer", "description": "Only this message", "name": "message_id", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}}
        },
        "/auth/games": {
            "post": {"security": [{"ApiKeyAuth": []}], "consumes": ["application/json"], "produces": ["application/json"], "tags": ["games"], "summary": "Creates a game hosted by the caller",
                "responses": {"201": {"description": "Created"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/auth/games/{id}": {
            "patch": {"security": [{"ApiKeyAuth": []}], "consumes": ["application/json"], "produces": ["application/json"], "tags": ["games"], "summary": "Updates a game",
                "parameters": [{"type": "integer", "description": "Game id", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}},
            "delete": {"security": [{"ApiKeyAuth": []}], "tags": ["games"], "summary": "Deletes a game",
                "parameters": [{"type": "integer", "description": "Game id", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/auth/games/{id}/join": {
            "post": {"security": [{"ApiKeyAuth": []}], "produces": ["application/json"], "tags": ["roster"], "summary": "Joins a game",
                "parameters": [{"type": "integer", "description": "Game id", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        },
        "/auth/games/{id}/leave": {
            "post": {"security": [{"ApiKeyAuth": []}], "produces": ["application/json"], "tags": ["roster"], "summary": "Leaves a game",
                "parameters": [{"type": "integer", "description": "Game id", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        },
        "/auth/games/{id}/subscribe": {
            "post": {"security": [{"ApiKeyAuth": []}], "produces": ["application/json"], "tags": ["roster"], "summary": "Follows a game without playing",
                "parameters": [{"type": "integer", "description": "Game id", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/auth/games/{id}/unsubscribe": {
            "post": {"security": [{"ApiKeyAuth": []}], "produces": ["application/json"], "tags": ["roster"], "summary": "Stops following a game",
                "parameters": [{"type": "integer", "description": "Game id", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/auth/games/{id}/invite": {
            "post": {"security": [{"ApiKeyAuth": []}], "consumes": ["application/json"], "produces": ["application/json"], "tags": ["roster"], "summary": "Invites users to a game",
                "parameters": [{"type": "integer", "description": "Game id", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/auth/games/{id}/messages": {
            "post": {"security": [{"ApiKeyAuth": []}], "consumes": ["application/json"], "produces": ["application/json"], "tags": ["messages"], "summary": "Posts a message to a game",
                "parameters": [{"type": "integer", "description": "Game id", "name": "id", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "403": {"description": "Forbidden"}}}
        },
        "/auth/messages/{id}": {
            "patch": {"security": [{"ApiKeyAuth": []}], "consumes": ["application/json"], "produces": ["application/json"], "tags": ["messages"], "summary": "Edits a message",
                "parameters": [{"type": "integer", "description": "Message id", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"ApiKeyAuth": []}], "tags": ["messages"], "summary": "Deletes a message",
                "parameters": [{"type": "integer", "description": "Message id", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/auth/me": {
            "get": {"security": [{"ApiKeyAuth": []}], "produces": ["application/json"], "tags": ["user"], "summary": "Returns the logged in user", "responses": {"200": {"description": "OK"}}}
        },
        "/auth/me/games": {
            "get": {"security": [{"ApiKeyAuth": []}], "produces": ["application/json"], "tags": ["games"], "summary": "Lists the games the caller plays in",
                "parameters": [
                    {"type": "boolean", "description": "Past games instead of upcoming ones", "name": "past", "in": "query"},
                    {"type": "string", "description": "RFC3339 start time to continue from", "name": "cursor", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}}
        },
        "/auth/logout": {
            "delete": {"produces": ["application/json"], "tags": ["user"], "summary": "Logs out", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/auth/notifications": {
            "get": {"security": [{"ApiKeyAuth": []}], "produces": ["application/json"], "tags": ["notifications"], "summary": "Lists the conversations with unseen activity", "responses": {"200": {"description": "OK"}}}
        },
        "/auth/notifications/{id}": {
            "delete": {"security": [{"ApiKeyAuth": []}], "produces": ["application/json"], "tags": ["notifications"], "summary": "Marks the activity of a conversation as seen",
                "parameters": [{"type": "integer", "description": "Conversation id", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}}
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Recit API",
	Description:      "Gin-Gonic server for the Recit pickup games API",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
