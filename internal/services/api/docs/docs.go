// Package docs holds the OpenAPI document for the hamfinder read API.
// It is maintained by hand; keep paths in step with the meta and history routes
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "openapi": "3.0.3",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "servers": [{"url": "{{.BasePath}}"}],
    "tags": [
        {"name": "Meta", "description": "liveness, readiness and build info"},
        {"name": "History", "description": "ingest ledger and dated match sets"}
    ],
    "paths": {
        "/meta/health": {
            "get": {
                "tags": ["Meta"],
                "summary": "Liveness",
                "operationId": "metaHealth",
                "responses": {"200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/HealthEnvelope"}}}}}
            }
        },
        "/meta/ready": {
            "get": {
                "tags": ["Meta"],
                "summary": "Readiness of the optional pg and ch backends",
                "operationId": "metaReady",
                "responses": {"200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ReadyEnvelope"}}}}}
            }
        },
        "/meta/version": {
            "get": {
                "tags": ["Meta"],
                "summary": "Build info",
                "operationId": "metaVersion",
                "responses": {"200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/VersionEnvelope"}}}}}
            }
        },
        "/v1/ledger": {
            "get": {
                "tags": ["History"],
                "summary": "Ledger entries in record order",
                "operationId": "historyLedger",
                "parameters": [
                    {"name": "source", "in": "query", "description": "weekday source name", "schema": {"type": "string", "enum": ["mon", "tue", "wed", "thu", "fri", "sat", "sun"]}},
                    {"name": "run_date", "in": "query", "description": "YYYY-MM-DD", "schema": {"type": "string", "format": "date"}}
                ],
                "responses": {"200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/LedgerEnvelope"}}}}}
            }
        },
        "/v1/matches/{date}": {
            "get": {
                "tags": ["History"],
                "summary": "Eligible new licensees persisted for a run date",
                "operationId": "historyMatches",
                "parameters": [
                    {"name": "date", "in": "path", "required": true, "description": "YYYY-MM-DD", "schema": {"type": "string", "format": "date"}}
                ],
                "responses": {
                    "200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/MatchesEnvelope"}}}},
                    "404": {"description": "Nothing recorded for that date", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ErrorResponse"}}}}
                }
            }
        }
    },
    "components": {
        "schemas": {
            "LedgerEntry": {
                "type": "object",
                "properties": {
                    "fingerprint": {"type": "string"},
                    "run_date": {"type": "string", "format": "date"},
                    "source": {"type": "string"}
                }
            },
            "HamRecord": {
                "type": "object",
                "properties": {
                    "callsign": {"type": "string"},
                    "fullname": {"type": "string"},
                    "firstname": {"type": "string"},
                    "lastname": {"type": "string"},
                    "address": {"type": "string"},
                    "city": {"type": "string"},
                    "state": {"type": "string"},
                    "zipcode": {"type": "string"},
                    "date": {"type": "string", "format": "date"}
                }
            },
            "LedgerEnvelope": {
                "type": "object",
                "properties": {
                    "status_code": {"type": "integer"},
                    "status": {"type": "string"},
                    "count": {"type": "integer"},
                    "data": {"type": "array", "items": {"$ref": "#/components/schemas/LedgerEntry"}}
                }
            },
            "MatchesEnvelope": {
                "type": "object",
                "properties": {
                    "status_code": {"type": "integer"},
                    "status": {"type": "string"},
                    "count": {"type": "integer"},
                    "data": {"type": "array", "items": {"$ref": "#/components/schemas/HamRecord"}}
                }
            },
            "HealthEnvelope": {
                "type": "object",
                "properties": {
                    "status_code": {"type": "integer"},
                    "status": {"type": "string"},
                    "data": {
                        "type": "object",
                        "properties": {
                            "ok": {"type": "boolean"},
                            "service": {"type": "string"},
                            "started": {"type": "string", "format": "date-time"},
                            "uptime": {"type": "integer"},
                            "now": {"type": "string", "format": "date-time"}
                        }
                    }
                }
            },
            "ReadyEnvelope": {
                "type": "object",
                "properties": {
                    "status_code": {"type": "integer"},
                    "status": {"type": "string"},
                    "data": {
                        "type": "object",
                        "properties": {
                            "status": {"type": "string", "enum": ["ok", "degraded", "fail"]},
                            "checks": {
                                "type": "array",
                                "items": {
                                    "type": "object",
                                    "properties": {
                                        "name": {"type": "string"},
                                        "status": {"type": "string", "enum": ["ok", "fail", "skipped", "unknown"]},
                                        "error": {"type": "string"}
                                    }
                                }
                            },
                            "now": {"type": "string", "format": "date-time"}
                        }
                    }
                }
            },
            "VersionEnvelope": {
                "type": "object",
                "properties": {
                    "status_code": {"type": "integer"},
                    "status": {"type": "string"},
                    "data": {
                        "type": "object",
                        "properties": {
                            "service": {"type": "string"},
                            "version": {"type": "string"},
                            "commit": {"type": "string"},
                            "date": {"type": "string"}
                        }
                    }
                }
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
	Title:            "hamfinder API",
	Description:      "Read only view over the FCC ULS ingest ledger and the eligible new licensees each run found.",
	InfoInstanceName: "hamfinder",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
