// Package docs provides Swagger documentation for the API.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/chat": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["chat"],
                "summary": "Process a conversation turn",
                "responses": {}
            }
        },
        "/api/v1/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {}
            }
        },
        "/api/v1/sessions/{sessionid}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Get session state",
                "responses": {}
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Delete a session",
                "responses": {}
            }
        },
        "/api/v1/promotions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["promotions"],
                "summary": "List archived promotions",
                "responses": {}
            }
        },
        "/api/v1/export/{filename}": {
            "get": {
                "tags": ["export"],
                "summary": "Download an exported Excel file",
                "responses": {}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "PromoAgente API",
	Description:      "Conversational collection of B2B retail promotions",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
