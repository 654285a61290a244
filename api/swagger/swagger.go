package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Library Visitor API",
        "description": "Library entry/exit tracking with an authenticated admin console",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "SessionCookie": {
            "type": "apiKey",
            "in": "header",
            "name": "Cookie",
            "description": "admin_token session cookie set by /admin/login"
        }
    },
    "tags": [
        {
            "name": "Student",
            "description": "Kiosk check-in and check-out"
        },
        {
            "name": "Admin Auth",
            "description": "Administrator sessions"
        },
        {
            "name": "Admin Visitors",
            "description": "Visit records"
        },
        {
            "name": "Admin Analytics",
            "description": "Dashboard statistics"
        },
        {
            "name": "Admin Transfer",
            "description": "Bulk import and export"
        }
    ],
    "paths": {
        "/student/visit": {
            "post": {
                "tags": [
                    "Student"
                ],
                "summary": "Record library entry",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/VisitRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Already inside",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "429": {
                        "description": "Rate limited",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Store unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/student/check/{roll_no}": {
            "get": {
                "tags": [
                    "Student"
                ],
                "summary": "Check visitor status",
                "parameters": [
                    {
                        "name": "roll_no",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "429": {
                        "description": "Rate limited",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Store unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/student/exit/{id}": {
            "put": {
                "tags": [
                    "Student"
                ],
                "summary": "Record library exit",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "integer",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "429": {
                        "description": "Rate limited",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Store unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/student/exit/roll/{roll_no}": {
            "put": {
                "tags": [
                    "Student"
                ],
                "summary": "Record library exit by roll number",
                "parameters": [
                    {
                        "name": "roll_no",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "429": {
                        "description": "Rate limited",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Store unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/admin/login": {
            "post": {
                "tags": [
                    "Admin Auth"
                ],
                "summary": "Administrator login",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/LoginRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Not authenticated",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/admin/logout": {
            "post": {
                "tags": [
                    "Admin Auth"
                ],
                "summary": "Administrator logout",
                "responses": {
                    "204": {
                        "description": "No Content"
                    }
                }
            }
        },
        "/admin/check-session": {
            "get": {
                "tags": [
                    "Admin Auth"
                ],
                "summary": "Session introspection",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/admin/visitors": {
            "get": {
                "tags": [
                    "Admin Visitors"
                ],
                "summary": "List visitors",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "name": "level",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "date",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "start_date",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "end_date",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "page_size",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Not authenticated",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Store unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "Admin Visitors"
                ],
                "summary": "Add a visit manually",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AdminVisitRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Not authenticated",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Store unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/admin/visitors/today": {
            "get": {
                "tags": [
                    "Admin Visitors"
                ],
                "summary": "Today's visitors",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Not authenticated",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Store unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/admin/visitors/bulk": {
            "post": {
                "tags": [
                    "Admin Visitors"
                ],
                "summary": "Bulk visitor action",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/BulkActionRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Not authenticated",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/admin/analytics": {
            "get": {
                "tags": [
                    "Admin Analytics"
                ],
                "summary": "Visitor analytics",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "parameters": [
                    {
                        "name": "start_date",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "end_date",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "include_visitors",
                        "in": "query",
                        "type": "boolean"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Not authenticated",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Store unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/admin/import": {
            "post": {
                "tags": [
                    "Admin Transfer"
                ],
                "summary": "Import visitors from CSV or XLSX",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "consumes": [
                    "multipart/form-data"
                ],
                "parameters": [
                    {
                        "name": "file",
                        "in": "formData",
                        "type": "file",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Not authenticated",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "413": {
                        "description": "Upload too large",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Store unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/admin/export": {
            "get": {
                "tags": [
                    "Admin Transfer"
                ],
                "summary": "Export visitors",
                "security": [
                    {
                        "SessionCookie": []
                    }
                ],
                "produces": [
                    "text/csv",
                    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
                    "application/pdf"
                ],
                "parameters": [
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "start_date",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "end_date",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "File",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "VisitRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "roll_no": {
                    "type": "string"
                },
                "level": {
                    "type": "string"
                },
                "course": {
                    "type": "string"
                },
                "year": {
                    "type": "string"
                },
                "jc_year": {
                    "type": "string"
                },
                "jc_stream": {
                    "type": "string"
                },
                "purpose": {
                    "type": "string"
                }
            },
            "required": [
                "name",
                "roll_no",
                "level",
                "purpose"
            ]
        },
        "AdminVisitRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "roll_no": {
                    "type": "string"
                },
                "level": {
                    "type": "string"
                },
                "course": {
                    "type": "string"
                },
                "year": {
                    "type": "string"
                },
                "jc_year": {
                    "type": "string"
                },
                "jc_stream": {
                    "type": "string"
                },
                "purpose": {
                    "type": "string"
                },
                "visit_date": {
                    "type": "string"
                },
                "entry_time": {
                    "type": "string"
                },
                "exit_time": {
                    "type": "string"
                }
            },
            "required": [
                "name",
                "roll_no",
                "level",
                "purpose",
                "visit_date",
                "entry_time"
            ]
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "username": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                }
            },
            "required": [
                "username",
                "password"
            ]
        },
        "BulkActionRequest": {
            "type": "object",
            "properties": {
                "action": {
                    "type": "string",
                    "enum": [
                        "mark_exit",
                        "delete"
                    ]
                },
                "visitor_ids": {
                    "type": "array",
                    "items": {
                        "type": "integer"
                    }
                }
            },
            "required": [
                "action",
                "visitor_ids"
            ]
        },
        "Visitor": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "name": {
                    "type": "string"
                },
                "roll_no": {
                    "type": "string"
                },
                "level": {
                    "type": "string"
                },
                "course": {
                    "type": "string"
                },
                "year": {
                    "type": "string"
                },
                "jc_year": {
                    "type": "string"
                },
                "jc_stream": {
                    "type": "string"
                },
                "purpose": {
                    "type": "string"
                },
                "entry_time": {
                    "type": "string"
                },
                "exit_time": {
                    "type": "string"
                },
                "visit_date": {
                    "type": "string"
                },
                "visit_day": {
                    "type": "string"
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "meta": {
                    "type": "object"
                }
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
