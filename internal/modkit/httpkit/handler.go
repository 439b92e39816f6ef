// Package httpkit is what modules mount routes with; it re-exports the platform http seam
// so services never import internal/platform/net/http themselves
package httpkit

import (
	"net/http"

	phttp "paygate/internal/platform/net/http"
)

type (
	// Router is the routing seam
	Router = phttp.Router

	// Handler is the function shape registered on a Router
	Handler = phttp.Handler

	// Response is a return style answer
	Response = phttp.Response
)

// List answers 200 with items and a page block
func List(items any, total, page, size int, cursor string) Response {
	return phttp.List(items, total, page, size, cursor)
}

// Handle adapts a Response returning func
func Handle(fn func(*http.Request) Response) Handler { return phttp.Handle(fn) }

// Call adapts a (value, error) func; a returned Response is written as is, any other value as 200 data
func Call(fn func(*http.Request) (any, error)) Handler {
	return phttp.Handle(func(r *http.Request) phttp.Response {
		out, err := fn(r)
		if err != nil {
			return phttp.Error(err)
		}
		if resp, ok := out.(phttp.Response); ok {
			return resp
		}
		return phttp.OK(out)
	})
}

// Get registers fn under GET path
func Get(r Router, path string, fn func(*http.Request) (any, error)) { r.Get(path, Call(fn)) }

// Post registers fn under POST path; fn decodes its own body
func Post(r Router, path string, fn func(*http.Request) (any, error)) { r.Post(path, Call(fn)) }
