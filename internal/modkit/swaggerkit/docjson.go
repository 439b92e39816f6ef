package swaggerkit

import (
	_ "embed"
	"encoding/json"
	"net/http"
	"strings"

	"paygate/internal/modkit/httpkit"
)

//go:embed openapi.json
var openapiJSON string

// seams for tests
var (
	docReader  = func() string { return openapiJSON }
	paidRoutes = httpkit.PaidRoutes
)

// doc is a decoded OpenAPI document
type doc map[string]any

// obj returns the object under key, creating it when missing or mistyped
func (d doc) obj(key string) doc {
	if m, ok := d[key].(map[string]any); ok {
		return m
	}
	m := map[string]any{}
	d[key] = m
	return m
}

// operations calls fn for every operation under each path keep accepts
func (d doc) operations(keep func(path string) bool, fn func(op doc)) {
	for path, node := range d.obj("paths") {
		methods, ok := node.(map[string]any)
		if !ok || !keep(path) {
			continue
		}
		for _, op := range methods {
			if m, ok := op.(map[string]any); ok {
				fn(m)
			}
		}
	}
}

var errorEnvelope = map[string]any{
	"type":        "object",
	"description": "Error envelope every non 2xx response carries",
	"required":    []any{"status_code", "status"},
	"properties": map[string]any{
		"status_code": map[string]any{"type": "integer", "format": "int32"},
		"status":      map[string]any{"type": "string"},
		"code":        map[string]any{"type": "integer", "format": "int32"},
		"reason":      map[string]any{"type": "string"},
		"error":       map[string]any{"type": "string"},
		"details":     map[string]any{"type": "object", "additionalProperties": map[string]any{"type": "integer", "format": "int64"}},
		"request_id":  map[string]any{"type": "string"},
	},
}

// errorResponse is a response object pointing at the envelope schema
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

// render decodes the embedded document and fills in what the runtime adds:
// a 3.0 version the bundled UI can draw, the server base, the error envelope,
// a 500 on every operation and a 402 on the paid ones
func render(titleSuffix string) (doc, error) {
	var d doc
	if err := json.Unmarshal([]byte(docReader()), &d); err != nil {
		return nil, err
	}
	if v, _ := d["openapi"].(string); !strings.HasPrefix(v, "3.0") {
		d["openapi"] = "3.0.3"
	}
	if _, ok := d["servers"]; !ok {
		d["servers"] = []any{map[string]any{"url": httpkit.V1Prefix}}
	}
	if titleSuffix != "" {
		info := d.obj("info")
		info["title"] = strings.TrimSpace(strings.Join([]string{toString(info["title"]), titleSuffix}, " "))
	}
	schemas := d.obj("components").obj("schemas")
	if _, ok := schemas["ErrorResponse"]; !ok {
		schemas["ErrorResponse"] = errorEnvelope
	}

	paid := map[string]bool{}
	for _, rt := range paidRoutes() {
		if _, path, ok := strings.Cut(rt, " "); ok {
			paid[strings.TrimPrefix(path, httpkit.V1Prefix)] = true
		}
	}
	internal := errorResponse("Internal Server Error", map[string]any{
		"status_code": 500, "status": "Internal Server Error", "code": 0, "error": "internal error",
	})
	payment := errorResponse("Payment Required", map[string]any{
		"status_code": 402, "status": "Payment Required", "code": 11, "reason": "AlreadyUsed",
		"error": "payment reference already used",
	})
	d.operations(func(string) bool { return true }, func(op doc) { setDefault(op.obj("responses"), "500", internal) })
	d.operations(func(p string) bool { return paid[p] }, func(op doc) { setDefault(op.obj("responses"), "402", payment) })
	return d, nil
}

func setDefault(responses doc, status string, resp map[string]any) {
	if _, ok := responses[status]; !ok {
		responses[status] = resp
	}
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}

// serveDocJSON renders the document per request so routes marked paid after mount still show a 402
func serveDocJSON(titleSuffix string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		d, err := render(titleSuffix)
		if err != nil {
			http.Error(w, "openapi document parse error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(d)
	}
}
