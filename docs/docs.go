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
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Register an MSME or institute account", "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterInput"}}], "responses": {"201": {"description": "Created"}, "409": {"description": "Email or phone already registered"}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Sign in with email or phone", "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/LoginInput"}}], "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid credentials"}}}},
        "/auth/google": {"post": {"tags": ["auth"], "summary": "Sign in with a Google ID token", "responses": {"200": {"description": "OK"}}}},
        "/instruments": {
            "get": {"tags": ["instruments"], "summary": "Browse the catalog", "parameters": [
                {"in": "query", "name": "q", "type": "string"},
                {"in": "query", "name": "category", "type": "string"},
                {"in": "query", "name": "city", "type": "string"},
                {"in": "query", "name": "page", "type": "integer"},
                {"in": "query", "name": "limit", "type": "integer"}
            ], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["instruments"], "summary": "List a new instrument", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}
        },
        "/instruments/{id}": {"get": {"tags": ["instruments"], "summary": "Instrument details", "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}},
        "/instruments/{id}/availability": {"get": {"tags": ["instruments"], "summary": "Booked windows", "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}, {"in": "query", "name": "from", "type": "string"}, {"in": "query", "name": "to", "type": "string"}], "responses": {"200": {"description": "OK"}}}},
        "/bookings/quote": {"post": {"tags": ["bookings"], "summary": "Price a booking window", "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/QuoteInput"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Quote"}}, "400": {"description": "INVALID_WINDOW, NO_APPLICABLE_TIER or ZERO_DURATION"}}}},
        "/bookings": {
            "get": {"tags": ["bookings"], "summary": "Bookings visible to the caller", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["bookings"], "summary": "Create a pending booking", "security": [{"BearerAuth": []}], "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/QuoteInput"}}], "responses": {"201": {"description": "Created"}, "409": {"description": "Window already booked"}}}
        },
        "/bookings/{id}/status": {"patch": {"tags": ["bookings"], "summary": "Confirm, reject, complete or cancel", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "INVALID_STATUS_TRANSITION"}}}},
        "/payments": {"post": {"tags": ["payments"], "summary": "Pay a confirmed booking", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "502": {"description": "Payment failed"}}}},
        "/reviews": {"post": {"tags": ["reviews"], "summary": "Review a completed booking", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}},
        "/notifications": {"get": {"tags": ["notifications"], "summary": "Caller's notifications", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/admin/stats": {"get": {"tags": ["admin"], "summary": "Platform statistics", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}}
    },
    "definitions": {
        "RegisterInput": {"type": "object", "required": ["name", "email", "password", "phoneNumber"], "properties": {
            "name": {"type": "string"}, "email": {"type": "string"}, "password": {"type": "string"},
            "phoneNumber": {"type": "string"}, "role": {"type": "integer", "enum": [0, 1]}, "organization": {"type": "string"}
        }},
        "LoginInput": {"type": "object", "required": ["identifier", "password"], "properties": {"identifier": {"type": "string"}, "password": {"type": "string"}}},
        "QuoteInput": {"type": "object", "required": ["instrumentId", "startDate", "endDate"], "properties": {
            "instrumentId": {"type": "integer"}, "startDate": {"type": "string", "format": "date-time"},
            "endDate": {"type": "string", "format": "date-time"}, "notes": {"type": "string"}
        }},
        "Quote": {"type": "object", "properties": {
            "instrumentId": {"type": "integer"}, "rateType": {"type": "string", "enum": ["hourly", "daily", "weekly", "monthly"]},
            "unitRate": {"type": "number"}, "unitsCharged": {"type": "integer"}, "totalHours": {"type": "number"}, "totalDays": {"type": "number"},
            "baseAmount": {"type": "integer"}, "securityFeeAmount": {"type": "integer"}, "taxAmount": {"type": "integer"}, "totalAmount": {"type": "integer"}
        }}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "LabLinc API",
	Description:      "Book research lab instruments from institutes.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
