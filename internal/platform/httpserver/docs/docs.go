// Package docs registers the OpenAPI document served at /swagger/doc.json.
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
        "/v1/mail/messages": {
            "get": {
                "produces": ["application/json"],
                "tags": ["mail"],
                "summary": "List outbound messages by status",
                "parameters": [
                    {"type": "string", "name": "status", "in": "query", "required": true},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["mail"],
                "summary": "Enqueue an outbound message",
                "responses": {
                    "202": {"description": "Accepted"},
                    "400": {"description": "Bad Request"}
                }
            }
        },
        "/v1/mail/messages/{message_id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["mail"],
                "summary": "Get one outbound message",
                "parameters": [
                    {"type": "string", "name": "message_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/v1/tenants/{tenant_id}/webhooks": {
            "get": {
                "produces": ["application/json"],
                "tags": ["webhooks"],
                "summary": "List webhook subscriptions for a tenant",
                "parameters": [
                    {"type": "string", "name": "tenant_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["webhooks"],
                "summary": "Register a webhook subscription",
                "parameters": [
                    {"type": "string", "name": "tenant_id", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"}
                }
            }
        },
        "/v1/tenants/{tenant_id}/webhooks/{webhook_id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["webhooks"],
                "summary": "Get one webhook subscription",
                "parameters": [
                    {"type": "string", "name": "tenant_id", "in": "path", "required": true},
                    {"type": "string", "name": "webhook_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            },
            "delete": {
                "tags": ["webhooks"],
                "summary": "Remove a webhook subscription",
                "parameters": [
                    {"type": "string", "name": "tenant_id", "in": "path", "required": true},
                    {"type": "string", "name": "webhook_id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/v1/tenants/{tenant_id}/webhooks/{webhook_id}/rotate-secret": {
            "post": {
                "produces": ["application/json"],
                "tags": ["webhooks"],
                "summary": "Rotate a subscription secret",
                "parameters": [
                    {"type": "string", "name": "tenant_id", "in": "path", "required": true},
                    {"type": "string", "name": "webhook_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/v1/tenants/{tenant_id}/webhooks/{webhook_id}/status": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["webhooks"],
                "summary": "Activate or deactivate a subscription",
                "parameters": [
                    {"type": "string", "name": "tenant_id", "in": "path", "required": true},
                    {"type": "string", "name": "webhook_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/v1/tenants/{tenant_id}/events": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["webhooks"],
                "summary": "Trigger webhook fan-out for a tenant event",
                "parameters": [
                    {"type": "string", "name": "tenant_id", "in": "path", "required": true}
                ],
                "responses": {
                    "202": {"description": "Accepted"}
                }
            }
        },
        "/v1/inbound/{subscription_id}": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["webhooks"],
                "summary": "Receive and verify an inbound webhook",
                "parameters": [
                    {"type": "string", "name": "subscription_id", "in": "path", "required": true},
                    {"type": "string", "name": "X-Beacon-Signature", "in": "header", "required": true}
                ],
                "responses": {
                    "202": {"description": "Accepted"},
                    "401": {"description": "Unauthorized"}
                }
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Beacon Outbound Delivery API",
	Description:      "Outbound mail queue and webhook fan-out endpoints.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
