package swaggerkit

import (
	"encoding/json"
	"net/http"

	"hamfinder/internal/platform/logger"
	"hamfinder/internal/platform/version"
	docs "hamfinder/internal/services/api/docs"
)

// SpecMutator adjusts the parsed document before it is served
type SpecMutator func(map[string]any)

var mutators []SpecMutator

// docReader is a seam so tests can serve a broken document
var docReader = func() string { return docs.SwaggerInfo.ReadDoc() }

// Register adds a mutator applied to every served document
func Register(m SpecMutator) {
	if m != nil {
		mutators = append(mutators, m)
	}
}

func serveDocJSON(opt Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var doc map[string]any
		if err := json.Unmarshal([]byte(docReader()), &doc); err != nil {
			logger.C(r.Context()).Error().Err(err).Msg("openapi document does not parse")
			http.Error(w, "openapi document parse error", http.StatusInternalServerError)
			return
		}

		if info, ok := doc["info"].(map[string]any); ok {
			if v := version.Info(opt.Service).Version; v != "" {
				info["version"] = v
			}
			if opt.TitleSuffix != "" {
				if title, ok := info["title"].(string); ok {
					info["title"] = title + " " + opt.TitleSuffix
				}
			}
		}

		ensureErrorResponse(doc)
		addDefaultResponse(doc, "400", badRequest)
		addDefaultResponse(doc, "500", internalError)

		for _, m := range mutators {
			m(doc)
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(doc)
	}
}

// ensureErrorResponse adds the error envelope schema phttp writes on failure
func ensureErrorResponse(doc map[string]any) {
	comps, ok := doc["components"].(map[string]any)
	if !ok {
		comps = map[string]any{}
		doc["components"] = comps
	}
	schemas, ok := comps["schemas"].(map[string]any)
	if !ok {
		schemas = map[string]any{}
		comps["schemas"] = schemas
	}
	if _, ok := schemas["ErrorResponse"]; ok {
		return
	}
	schemas["ErrorResponse"] = map[string]any{
		"type":        "object",
		"description": "Error envelope",
		"properties": map[string]any{
			"status_code": map[string]any{"type": "integer", "format": "int32"},
			"status":      map[string]any{"type": "string"},
			"code":        map[string]any{"type": "string"},
			"error":       map[string]any{"type": "string"},
			"field":       map[string]any{"type": "string"},
			"request_id":  map[string]any{"type": "string"},
		},
		"required": []any{"status_code", "status"},
	}
}

var (
	badRequest = errorResponse("Bad Request", map[string]any{
		"status_code": 400,
		"status":      "Bad Request",
		"code":        "validation",
		"error":       "source must be a weekday",
		"field":       "source",
	})
	internalError = errorResponse("Internal Server Error", map[string]any{
		"status_code": 500,
		"status":      "Internal Server Error",
		"code":        "persistence",
		"error":       "read ledger",
	})
)

func errorResponse(desc string, example map[string]any) map[string]any {
	return map[string]any{
		"description": desc,
		"content": map[string]any{
			"application/json": map[string]any{
				"schema":  map[string]any{"$ref": "#/components/schemas/ErrorResponse"},
				"example": example,
			},
		},
	}
}

// addDefaultResponse gives every operation resp under status unless it declares its own
func addDefaultResponse(doc map[string]any, status string, resp map[string]any) {
	paths, ok := doc["paths"].(map[string]any)
	if !ok {
		return
	}
	for _, p := range paths {
		node, ok := p.(map[string]any)
		if !ok {
			continue
		}
		for _, opAny := range node {
			op, ok := opAny.(map[string]any)
			if !ok {
				continue
			}
			responses, ok := op["responses"].(map[string]any)
			if !ok {
				responses = map[string]any{}
				op["responses"] = responses
			}
			if _, exists := responses[status]; !exists {
				responses[status] = resp
			}
		}
	}
}
