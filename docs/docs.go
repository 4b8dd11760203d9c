// Package docs registers the OpenAPI description of the import API with swag.
// Regenerate it after changing handler annotations:
//
//	swag init -g cmd/server/main.go -o docs
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "url": "https://github.com/lpcheniris/shopify-demo"
        },
        "license": {
            "name": "MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "description": "Reports service health and database connectivity",
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "operationId": "getHealth",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.HealthResponse"}}
                }
            }
        },
        "/api/products-count": {
            "get": {
                "description": "Returns the number of products in the shop",
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Count shop products",
                "operationId": "countProducts",
                "parameters": [
                    {"type": "string", "description": "Shop domain", "name": "X-Shopify-Shop-Domain", "in": "header"},
                    {"type": "string", "description": "Admin API access token", "name": "X-Shopify-Access-Token", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.CountResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/newproducts": {
            "get": {
                "description": "Reads the configured workbook, groups its rows by handle and creates one product per handle",
                "produces": ["application/json"],
                "tags": ["import"],
                "summary": "Import the bundled product sheet",
                "operationId": "importDefaultSheet",
                "parameters": [
                    {"type": "string", "description": "Shop domain", "name": "X-Shopify-Shop-Domain", "in": "header"},
                    {"type": "string", "description": "Admin API access token", "name": "X-Shopify-Access-Token", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ImportResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.ImportResponse"}}
                }
            }
        },
        "/api/v1/imports": {
            "get": {
                "description": "Returns the shop's recorded import runs, newest first unless sort_by and order say otherwise",
                "produces": ["application/json"],
                "tags": ["import"],
                "summary": "List import runs",
                "operationId": "listImports",
                "parameters": [
                    {"type": "string", "description": "Shop domain", "name": "X-Shopify-Shop-Domain", "in": "header"},
                    {"enum": ["pending", "processing", "completed", "partial", "failed"], "type": "string", "description": "Run status", "name": "status", "in": "query"},
                    {"type": "integer", "description": "Maximum runs (default 20, max 100)", "name": "limit", "in": "query"},
                    {"enum": ["created_at", "updated_at", "completed_at", "source_file", "status", "total_rows", "created_count", "failed_count"], "type": "string", "description": "Sort field", "name": "sort_by", "in": "query"},
                    {"enum": ["asc", "desc"], "type": "string", "description": "Sort order", "name": "order", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.RunListResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "501": {"description": "Not Implemented", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Imports the products of an uploaded .xlsx workbook and records the run",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["import"],
                "summary": "Import an uploaded product sheet",
                "operationId": "uploadImport",
                "parameters": [
                    {"type": "string", "description": "Shop domain", "name": "X-Shopify-Shop-Domain", "in": "header"},
                    {"type": "string", "description": "Admin API access token", "name": "X-Shopify-Access-Token", "in": "header"},
                    {"type": "file", "description": "Workbook (.xlsx)", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.ImportResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.ImportResponse"}}
                }
            }
        },
        "/api/v1/imports/preview": {
            "post": {
                "description": "Groups the rows of an uploaded workbook, or of the bundled sheet when no file is sent, without creating anything",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["import"],
                "summary": "Preview a product sheet",
                "operationId": "previewImport",
                "parameters": [
                    {"type": "file", "description": "Workbook (.xlsx)", "name": "file", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.PreviewResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/v1/imports/{id}": {
            "get": {
                "description": "Returns an import run with the publish state of every item",
                "produces": ["application/json"],
                "tags": ["import"],
                "summary": "Get an import run",
                "operationId": "getImport",
                "parameters": [
                    {"type": "string", "description": "Shop domain", "name": "X-Shopify-Shop-Domain", "in": "header"},
                    {"type": "string", "format": "uuid", "description": "Run ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.RunDetailResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/v1/imports/{id}/failures.csv": {
            "get": {
                "description": "Downloads the failed items of a run as CSV",
                "produces": ["text/csv"],
                "tags": ["import"],
                "summary": "Export failed items",
                "operationId": "exportImportFailures",
                "parameters": [
                    {"type": "string", "description": "Shop domain", "name": "X-Shopify-Shop-Domain", "in": "header"},
                    {"type": "string", "format": "uuid", "description": "Run ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/v1/imports/{id}/retry": {
            "post": {
                "description": "Publishes the failed items of a run again. Created items are never sent twice.",
                "produces": ["application/json"],
                "tags": ["import"],
                "summary": "Retry failed items",
                "operationId": "retryImport",
                "parameters": [
                    {"type": "string", "description": "Shop domain", "name": "X-Shopify-Shop-Domain", "in": "header"},
                    {"type": "string", "description": "Admin API access token", "name": "X-Shopify-Access-Token", "in": "header"},
                    {"type": "string", "format": "uuid", "description": "Run ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ImportResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.ImportResponse"}}
                }
            }
        },
        "/api/v1/system/info": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Service name and version",
                "operationId": "getSystemSystemInfo",
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            }
        },
        "/api/v1/system/ping": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Ping",
                "operationId": "pingSystem",
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            }
        }
    },
    "definitions": {
        "dto.ErrorInfo": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "ERR_IMPORT_MALFORMED_SHEET"},
                "message": {"type": "string"},
                "request_id": {"type": "string"},
                "details": {"type": "array", "items": {"$ref": "#/definitions/dto.ValidationDetail"}}
            }
        },
        "dto.ValidationDetail": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "dto.CountResponse": {
            "type": "object",
            "properties": {"count": {"type": "integer", "example": 42}}
        },
        "handler.ErrorResponse": {
            "description": "Standard error response",
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": false},
                "error": {"$ref": "#/definitions/dto.ErrorInfo"}
            }
        },
        "handler.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "healthy"},
                "time": {"type": "string"},
                "database": {"type": "string", "example": "ok"}
            }
        },
        "handler.ImportResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {"$ref": "#/definitions/importapp.ImportResult"},
                "error": {"$ref": "#/definitions/dto.ErrorInfo"}
            }
        },
        "handler.PreviewResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {"$ref": "#/definitions/importapp.PreviewResult"}
            }
        },
        "handler.RunListResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {"type": "array", "items": {"$ref": "#/definitions/importapp.RunSummary"}}
            }
        },
        "handler.RunDetailResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {"$ref": "#/definitions/importapp.RunDetail"}
            }
        },
        "catalog.Stats": {
            "type": "object",
            "properties": {
                "items": {"type": "integer"},
                "variants": {"type": "integer"},
                "images": {"type": "integer"}
            }
        },
        "sheet.RowWarning": {
            "type": "object",
            "properties": {
                "row": {"type": "integer"},
                "column": {"type": "string"},
                "code": {"type": "string"},
                "message": {"type": "string"},
                "value": {"type": "string"}
            }
        },
        "integration.PublishedItem": {
            "type": "object",
            "properties": {
                "handle": {"type": "string"},
                "remote_id": {"type": "integer"},
                "created_at": {"type": "string"}
            }
        },
        "integration.FailedItem": {
            "type": "object",
            "properties": {
                "handle": {"type": "string"},
                "error_code": {"type": "string", "example": "ERR_IMPORT_REMOTE_CREATE_FAILED"},
                "error_message": {"type": "string"}
            }
        },
        "importapp.ImportResult": {
            "type": "object",
            "properties": {
                "source": {"type": "string"},
                "total_rows": {"type": "integer"},
                "skipped_rows": {"type": "integer"},
                "stats": {"$ref": "#/definitions/catalog.Stats"},
                "warnings": {"type": "array", "items": {"$ref": "#/definitions/sheet.RowWarning"}},
                "total_warnings": {"type": "integer"},
                "run_id": {"type": "string", "format": "uuid"},
                "status": {"type": "string", "enum": ["SUCCESS", "PARTIAL", "FAILED", "EMPTY"]},
                "created": {"type": "array", "items": {"$ref": "#/definitions/integration.PublishedItem"}},
                "failed": {"type": "array", "items": {"$ref": "#/definitions/integration.FailedItem"}},
                "skipped": {"type": "array", "items": {"type": "string"}},
                "duration_ms": {"type": "integer"}
            }
        },
        "importapp.PreviewResult": {
            "type": "object",
            "properties": {
                "source": {"type": "string"},
                "total_rows": {"type": "integer"},
                "skipped_rows": {"type": "integer"},
                "stats": {"$ref": "#/definitions/catalog.Stats"},
                "warnings": {"type": "array", "items": {"$ref": "#/definitions/sheet.RowWarning"}},
                "items": {"type": "array", "items": {"type": "object"}}
            }
        },
        "importapp.RunSummary": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid"},
                "shop": {"type": "string"},
                "source_file": {"type": "string"},
                "file_size": {"type": "integer"},
                "status": {"type": "string", "enum": ["pending", "processing", "completed", "partial", "failed"]},
                "total_rows": {"type": "integer"},
                "skipped_rows": {"type": "integer"},
                "created_count": {"type": "integer"},
                "failed_count": {"type": "integer"},
                "skipped_count": {"type": "integer"},
                "retry_count": {"type": "integer"},
                "error_code": {"type": "string"},
                "error_message": {"type": "string"},
                "started_at": {"type": "string"},
                "completed_at": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "importapp.RunItem": {
            "type": "object",
            "properties": {
                "position": {"type": "integer"},
                "handle": {"type": "string"},
                "status": {"type": "string", "enum": ["pending", "created", "failed", "skipped"]},
                "remote_id": {"type": "integer"},
                "error_code": {"type": "string"},
                "error_message": {"type": "string"},
                "attempts": {"type": "integer"}
            }
        },
        "importapp.RunDetail": {
            "allOf": [
                {"$ref": "#/definitions/importapp.RunSummary"},
                {"type": "object", "properties": {"items": {"type": "array", "items": {"$ref": "#/definitions/importapp.RunItem"}}}}
            ]
        }
    },
    "securityDefinitions": {
        "ShopToken": {
            "description": "Admin API access token of the shop named by X-Shopify-Shop-Domain",
            "type": "apiKey",
            "name": "X-Shopify-Access-Token",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8081",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Shopify Demo Import API",
	Description:      "Creates shop products from a spreadsheet: rows are grouped by handle and each group becomes one product with its variants, options and images.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
